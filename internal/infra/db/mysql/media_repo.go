package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/forensight/internal/domain/media"
)

type MediaRepository struct{ db *sql.DB }

func NewMediaRepository(db *sql.DB) *MediaRepository { return &MediaRepository{db: db} }

const mediaColumns = `
id, tenant_id, file_md5, owner_id, project_id, file_name, kind, extraction_status,
sha1_hash, sha256_hash, file_format, mime_type, image_width, image_height, compression_level,
camera_make, camera_model, date_taken, orientation, color_space,
gps_latitude, gps_longitude, gps_location,
video_duration, frame_rate, video_codec, audio_codec, bit_rate,
detected_format, expected_format, format_match, signature_hex, integrity_status,
risk_score, assessment_conclusion, suspicious_indicators, analysis_notes, raw_metadata, created_at`

// Save insert/update satu record analisis
func (r *MediaRepository) Save(ctx context.Context, rec *domain.AnalysisRecord) error {
	const q = `
INSERT INTO media_analysis
(id, tenant_id, file_md5, owner_id, project_id, file_name, kind, extraction_status,
 sha1_hash, sha256_hash, file_format, mime_type, image_width, image_height, compression_level,
 camera_make, camera_model, date_taken, orientation, color_space,
 gps_latitude, gps_longitude, gps_location,
 video_duration, frame_rate, video_codec, audio_codec, bit_rate,
 detected_format, expected_format, format_match, signature_hex, integrity_status,
 risk_score, assessment_conclusion, suspicious_indicators, analysis_notes, raw_metadata, created_at)
VALUES (?,?,?,?,?,?,?,?,
        ?,?,?,?,?,?,?,
        ?,?,?,?,?,
        ?,?,?,
        ?,?,?,?,?,
        ?,?,?,?,?,
        ?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 extraction_status = VALUES(extraction_status),
 sha1_hash = VALUES(sha1_hash),
 sha256_hash = VALUES(sha256_hash),
 file_format = VALUES(file_format),
 mime_type = VALUES(mime_type),
 image_width = VALUES(image_width),
 image_height = VALUES(image_height),
 compression_level = VALUES(compression_level),
 camera_make = VALUES(camera_make),
 camera_model = VALUES(camera_model),
 date_taken = VALUES(date_taken),
 orientation = VALUES(orientation),
 color_space = VALUES(color_space),
 gps_latitude = VALUES(gps_latitude),
 gps_longitude = VALUES(gps_longitude),
 gps_location = VALUES(gps_location),
 video_duration = VALUES(video_duration),
 frame_rate = VALUES(frame_rate),
 video_codec = VALUES(video_codec),
 audio_codec = VALUES(audio_codec),
 bit_rate = VALUES(bit_rate),
 detected_format = VALUES(detected_format),
 expected_format = VALUES(expected_format),
 format_match = VALUES(format_match),
 signature_hex = VALUES(signature_hex),
 integrity_status = VALUES(integrity_status),
 risk_score = VALUES(risk_score),
 assessment_conclusion = VALUES(assessment_conclusion),
 suspicious_indicators = VALUES(suspicious_indicators),
 analysis_notes = VALUES(analysis_notes),
 raw_metadata = VALUES(raw_metadata);`

	_, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.TenantID, rec.FileMD5, stringOrDash(rec.OwnerID), stringOrDash(rec.ProjectID),
		rec.FileName, string(rec.Kind), string(rec.Status),
		rec.SHA1Hash, rec.SHA256Hash, rec.FileFormat, rec.MimeType,
		nullInt(rec.ImageWidth), nullInt(rec.ImageHeight), nullInt(rec.CompressionLevel),
		rec.CameraMake, rec.CameraModel, nullTime(rec.DateTaken), nullInt(rec.Orientation), rec.ColorSpace,
		nullFloat(rec.GpsLatitude), nullFloat(rec.GpsLongitude), rec.GpsLocation,
		nullInt(rec.VideoDuration), nullFloat(rec.FrameRate), rec.VideoCodec, rec.AudioCodec, nullInt(rec.BitRate),
		rec.Header.DetectedFormat, rec.Header.ExpectedFormat, rec.Header.FormatMatch,
		rec.Header.SignatureHex, string(rec.Header.Integrity),
		nullInt(rec.RiskScore), rec.AssessmentConclusion,
		joinList(rec.SuspiciousIndicators), joinList(rec.AnalysisNotes), rec.RawMetadata,
		rec.CreatedAt,
	)
	return err
}

func (r *MediaRepository) Find(ctx context.Context, tenant, owner, fileMD5 string) (*domain.AnalysisRecord, error) {
	const q = `SELECT ` + mediaColumns + `
FROM media_analysis
WHERE tenant_id = ? AND owner_id = ? AND file_md5 = ?
LIMIT 1;`
	return r.queryOne(ctx, q, tenant, stringOrDash(owner), fileMD5)
}

// Get ambil record terbaru untuk satu fingerprint tanpa peduli owner
func (r *MediaRepository) Get(ctx context.Context, tenant, fileMD5 string) (*domain.AnalysisRecord, error) {
	const q = `SELECT ` + mediaColumns + `
FROM media_analysis
WHERE tenant_id = ? AND file_md5 = ?
ORDER BY created_at DESC
LIMIT 1;`
	return r.queryOne(ctx, q, tenant, fileMD5)
}

func (r *MediaRepository) Delete(ctx context.Context, tenant, owner, fileMD5 string) error {
	const q = `DELETE FROM media_analysis WHERE tenant_id = ? AND owner_id = ? AND file_md5 = ?;`
	_, err := r.db.ExecContext(ctx, q, tenant, stringOrDash(owner), fileMD5)
	return err
}

func (r *MediaRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `SELECT ` + mediaColumns + `
FROM media_analysis
WHERE tenant_id = ?
ORDER BY created_at DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AnalysisRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Summary hitung distribusi risiko untuk dashboard
func (r *MediaRepository) Summary(ctx context.Context, tenant string, days int) (*domain.Summary, error) {
	if days <= 0 {
		days = 7
	}
	const q = `
SELECT
 COUNT(*),
 COALESCE(SUM(CASE WHEN risk_score >= 70 THEN 1 ELSE 0 END), 0),
 COALESCE(SUM(CASE WHEN risk_score >= 40 AND risk_score < 70 THEN 1 ELSE 0 END), 0),
 COALESCE(SUM(CASE WHEN risk_score < 40 THEN 1 ELSE 0 END), 0),
 COALESCE(SUM(CASE WHEN extraction_status = 'FAILED' THEN 1 ELSE 0 END), 0)
FROM media_analysis
WHERE tenant_id = ? AND created_at >= DATE_SUB(NOW(), INTERVAL ? DAY);`

	var s domain.Summary
	err := r.db.QueryRowContext(ctx, q, tenant, days).
		Scan(&s.Total, &s.HighRisk, &s.MediumRisk, &s.LowRisk, &s.Failed)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *MediaRepository) queryOne(ctx context.Context, q string, args ...any) (*domain.AnalysisRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, domain.ErrNotFound
	}
	return scanRecord(rows)
}

func scanRecord(rows *sql.Rows) (*domain.AnalysisRecord, error) {
	var (
		rec                                     domain.AnalysisRecord
		kind, status                            string
		owner, proj                             string
		width, height, compression, orientation sql.NullInt64
		dateTaken                               sql.NullTime
		lat, long, frameRate                    sql.NullFloat64
		duration, bitRate, riskScore            sql.NullInt64
		integrity                               string
		indicators, notes                       string
	)
	err := rows.Scan(
		&rec.ID, &rec.TenantID, &rec.FileMD5, &owner, &proj, &rec.FileName, &kind, &status,
		&rec.SHA1Hash, &rec.SHA256Hash, &rec.FileFormat, &rec.MimeType,
		&width, &height, &compression,
		&rec.CameraMake, &rec.CameraModel, &dateTaken, &orientation, &rec.ColorSpace,
		&lat, &long, &rec.GpsLocation,
		&duration, &frameRate, &rec.VideoCodec, &rec.AudioCodec, &bitRate,
		&rec.Header.DetectedFormat, &rec.Header.ExpectedFormat, &rec.Header.FormatMatch,
		&rec.Header.SignatureHex, &integrity,
		&riskScore, &rec.AssessmentConclusion, &indicators, &notes, &rec.RawMetadata,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.OwnerID = dashToEmpty(owner)
	rec.ProjectID = dashToEmpty(proj)
	rec.Kind = domain.Kind(kind)
	rec.Status = domain.ExtractionStatus(status)
	rec.Header.Integrity = domain.IntegrityStatus(integrity)
	rec.ImageWidth = int64Ptr(width)
	rec.ImageHeight = int64Ptr(height)
	rec.CompressionLevel = int64Ptr(compression)
	rec.Orientation = int64Ptr(orientation)
	rec.VideoDuration = int64Ptr(duration)
	rec.BitRate = int64Ptr(bitRate)
	rec.RiskScore = int64Ptr(riskScore)
	rec.GpsLatitude = floatPtr(lat)
	rec.GpsLongitude = floatPtr(long)
	rec.FrameRate = floatPtr(frameRate)
	if dateTaken.Valid {
		t := dateTaken.Time
		rec.DateTaken = &t
	}
	rec.SuspiciousIndicators = splitList(indicators)
	rec.AnalysisNotes = splitList(notes)
	return &rec, nil
}

// list disimpan sebagai satu kolom text dipisah "; "
const listSeparator = "; "

func joinList(items []string) string { return strings.Join(items, listSeparator) }

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func dashToEmpty(s string) string {
	if s == "-" {
		return ""
	}
	return s
}
