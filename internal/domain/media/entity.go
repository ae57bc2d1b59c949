package media

import "time"

// Kind membedakan jalur ekstraksi file
type Kind string

const (
	KindImage Kind = "IMAGE"
	KindVideo Kind = "VIDEO"
)

// ExtractionStatus lifecycle: PENDING -> SUCCESS | PARTIAL | FAILED
type ExtractionStatus string

const (
	StatusPending ExtractionStatus = "PENDING"
	StatusSuccess ExtractionStatus = "SUCCESS"
	StatusPartial ExtractionStatus = "PARTIAL"
	StatusFailed  ExtractionStatus = "FAILED"
)

// IntegrityStatus hasil verifikasi magic bytes vs ekstensi
type IntegrityStatus string

const (
	IntegrityIntact         IntegrityStatus = "INTACT"
	IntegrityFormatMismatch IntegrityStatus = "FORMAT_MISMATCH"
	IntegrityUnknownFormat  IntegrityStatus = "UNKNOWN_FORMAT"
	IntegrityAnalysisFailed IntegrityStatus = "ANALYSIS_FAILED"
)

// HeaderAnalysis is the outcome of the magic-byte signature check.
// An empty IntegrityStatus means the header was never inspected.
type HeaderAnalysis struct {
	DetectedFormat string
	ExpectedFormat string
	FormatMatch    bool
	SignatureHex   string
	Integrity      IntegrityStatus
}

// AnalysisRecord adalah agregat utama: satu baris per (tenant, owner, file_md5).
// Pointer fields membedakan "tidak terisi" dari nilai nol; string kosong = unset.
type AnalysisRecord struct {
	ID        string
	TenantID  string
	FileMD5   string
	OwnerID   string
	ProjectID string
	FileName  string
	Kind      Kind
	Status    ExtractionStatus

	SHA1Hash   string
	SHA256Hash string

	FileFormat       string
	MimeType         string
	ImageWidth       *int
	ImageHeight      *int
	CompressionLevel *int

	CameraMake   string
	CameraModel  string
	DateTaken    *time.Time
	Orientation  *int
	ColorSpace   string
	GpsLatitude  *float64
	GpsLongitude *float64
	GpsLocation  string

	VideoDuration *int
	FrameRate     *float64
	VideoCodec    string
	AudioCodec    string
	BitRate       *int

	Header HeaderAnalysis

	RiskScore            *int
	AssessmentConclusion string
	SuspiciousIndicators []string
	AnalysisNotes        []string

	RawMetadata string
	CreatedAt   time.Time
}

// NewRecord membuat record PENDING untuk satu work item
func NewRecord(id, tenant string, item WorkItem, now time.Time) *AnalysisRecord {
	return &AnalysisRecord{
		ID:        id,
		TenantID:  tenant,
		FileMD5:   item.FileMD5,
		OwnerID:   item.OwnerID,
		ProjectID: item.ProjectID,
		FileName:  item.FileName,
		Kind:      item.Kind,
		Status:    StatusPending,
		CreatedAt: now,
	}
}

// IsVideo reports whether the record went through the video extraction path.
func (r *AnalysisRecord) IsVideo() bool {
	if r.Kind == KindVideo {
		return true
	}
	return r.VideoDuration != nil || r.VideoCodec != ""
}

// Note appends a processing note without touching extraction results.
func (r *AnalysisRecord) Note(msg string) {
	r.AnalysisNotes = append(r.AnalysisNotes, msg)
}

// SetDimensions fills width/height only when still unset, so an earlier
// extraction step is never overwritten by a later fallback.
func (r *AnalysisRecord) SetDimensions(w, h int) {
	if r.ImageWidth == nil && w > 0 {
		r.ImageWidth = intPtr(w)
	}
	if r.ImageHeight == nil && h > 0 {
		r.ImageHeight = intPtr(h)
	}
}

func intPtr(v int) *int            { return &v }
func floatPtr(v float64) *float64  { return &v }
func timePtr(t time.Time) *time.Time { return &t }
