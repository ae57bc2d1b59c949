package analyst

import "time"

// AnalysisID identifier type
type AnalysisID string

// Analysis represents an AI second-opinion result stored for auditing and retrieval
type Analysis struct {
	ID        AnalysisID `json:"id"`
	TenantID  string     `json:"tenant_id"`
	FileMD5   string     `json:"file_md5,omitempty"`
	Result    string     `json:"result"` // JSON string from AI
	CreatedAt time.Time  `json:"created_at"`
}
