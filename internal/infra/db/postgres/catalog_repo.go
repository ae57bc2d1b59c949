package postgres

import (
	"context"
	"database/sql"
	"strings"

	domain "github.com/bryanwahyu/forensight/internal/domain/media"
)

// CatalogRepository baca katalog file milik aplikasi upload, dipakai untuk
// backfill work item yang payload-nya tidak lengkap.
type CatalogRepository struct{ db *sql.DB }

func NewCatalogRepository(db *sql.DB) *CatalogRepository { return &CatalogRepository{db: db} }

func (r *CatalogRepository) FindByFingerprint(ctx context.Context, fileMD5 string) (*domain.CatalogEntry, error) {
	const q = `
SELECT file_md5, file_name, media_kind, object_key, owner_id, project_id
FROM media_files
WHERE file_md5 = $1
ORDER BY uploaded_at DESC
LIMIT 1;`

	var e domain.CatalogEntry
	var kind string
	err := r.db.QueryRowContext(ctx, q, fileMD5).
		Scan(&e.FileMD5, &e.FileName, &kind, &e.ObjectKey, &e.OwnerID, &e.ProjectID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(kind, "video") {
		e.Kind = domain.KindVideo
	} else {
		e.Kind = domain.KindImage
	}
	return &e, nil
}
