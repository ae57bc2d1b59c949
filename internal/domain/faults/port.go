package faults

import (
	"context"
)

// Repository defines persistence for analysis faults
type Repository interface {
	Save(ctx context.Context, f *Fault) error
	ListByFile(ctx context.Context, tenant string, fileMD5 string, limit int) ([]*Fault, error)
}
