package media

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrMissingIdentity: work item tanpa owner/project setelah backfill katalog
	ErrMissingIdentity = errors.New("media: work item missing owner or project identity")
	// ErrNotFound: record tidak ada di repository
	ErrNotFound = errors.New("media: record not found")
)

// Summary is an aggregate view over stored records for one tenant.
type Summary struct {
	Total      int `json:"total"`
	HighRisk   int `json:"high_risk"`
	MediumRisk int `json:"medium_risk"`
	LowRisk    int `json:"low_risk"`
	Failed     int `json:"failed"`
}

// Repository menyimpan hasil analisis (MySQL / Postgres)
type Repository interface {
	Save(ctx context.Context, rec *AnalysisRecord) error
	Find(ctx context.Context, tenant, owner, fileMD5 string) (*AnalysisRecord, error)
	Get(ctx context.Context, tenant, fileMD5 string) (*AnalysisRecord, error)
	Delete(ctx context.Context, tenant, owner, fileMD5 string) error
	Latest(ctx context.Context, tenant string, limit int) ([]*AnalysisRecord, error)
	Summary(ctx context.Context, tenant string, days int) (*Summary, error)
}

// Catalog adalah read-model katalog file untuk backfill work item.
type Catalog interface {
	FindByFingerprint(ctx context.Context, fileMD5 string) (*CatalogEntry, error)
}

// FileStore abstraksi object storage (MinIO)
type FileStore interface {
	OpenStream(ctx context.Context, objectKey string) (io.ReadCloser, error)
	ContentType(ctx context.Context, objectKey string) (string, error)
	PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	PutBytes(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)
}

// Prober runs a container-level probe against a media URL.
type Prober interface {
	Probe(ctx context.Context, url string) (*ProbeResult, error)
}

// TagReader decodes an image stream into metadata tag groups plus the raw
// textual dump those groups were rendered from.
type TagReader interface {
	Read(r io.Reader) ([]TagGroup, string, error)
}
