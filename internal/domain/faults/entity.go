package faults

import "time"

// Fault represents a persisted analysis failure entry
type Fault struct {
	ID          int64     `json:"id"`
	TenantID    string    `json:"tenant_id"`
	FileMD5     string    `json:"file_md5"`
	Phase       string    `json:"phase,omitempty"` // validate | hash | header | extract | persist
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}
