package media

import (
	"strings"
	"time"
)

// Report is the read-side projection of one analysis record, shaped for the
// HTTP API. Parsed raw metadata rides along as a tree so clients never have
// to re-parse the text dump.
type Report struct {
	FileMD5          string    `json:"file_md5"`
	FileName         string    `json:"file_name,omitempty"`
	ExtractionStatus string    `json:"extraction_status"`
	AnalysisTime     time.Time `json:"analysis_time"`

	Basic     BasicBlock     `json:"basic_info"`
	Exif      *ExifBlock     `json:"exif_info,omitempty"`
	Video     *VideoBlock    `json:"video_info,omitempty"`
	Hashes    HashBlock      `json:"hash_info"`
	Header    HeaderBlock    `json:"file_header_analysis"`
	Container ContainerBlock `json:"container_integrity"`

	SuspiciousIndicators []string `json:"suspicious_indicators"`
	RiskScore            int      `json:"risk_score"`
	AssessmentConclusion string   `json:"assessment_conclusion"`

	AnalysisNotes string    `json:"analysis_notes,omitempty"`
	RawMetadata   string    `json:"raw_metadata,omitempty"`
	Parsed        *MetaTree `json:"parsed_metadata,omitempty"`
}

type BasicBlock struct {
	FileFormat       string `json:"file_format,omitempty"`
	MimeType         string `json:"mime_type,omitempty"`
	ImageWidth       *int   `json:"image_width,omitempty"`
	ImageHeight      *int   `json:"image_height,omitempty"`
	CompressionLevel *int   `json:"compression_level,omitempty"`
}

type ExifBlock struct {
	CameraMake   string     `json:"camera_make,omitempty"`
	CameraModel  string     `json:"camera_model,omitempty"`
	DateTaken    *time.Time `json:"date_taken,omitempty"`
	Orientation  *int       `json:"orientation,omitempty"`
	ColorSpace   string     `json:"color_space,omitempty"`
	GpsLatitude  *float64   `json:"gps_latitude,omitempty"`
	GpsLongitude *float64   `json:"gps_longitude,omitempty"`
	GpsLocation  string     `json:"gps_location,omitempty"`
}

type VideoBlock struct {
	Duration   *int     `json:"duration_sec,omitempty"`
	FrameRate  *float64 `json:"frame_rate,omitempty"`
	VideoCodec string   `json:"video_codec,omitempty"`
	AudioCodec string   `json:"audio_codec,omitempty"`
	BitRate    *int     `json:"bit_rate,omitempty"`
}

type HashBlock struct {
	MD5    string `json:"md5"`
	SHA1   string `json:"sha1,omitempty"`
	SHA256 string `json:"sha256,omitempty"`
}

// ContainerBlock is the reserved slot for box/chunk-level structure checks.
// No analyzer fills it yet, so every report carries the pending status.
type ContainerBlock struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

const containerStatusPending = "PENDING_IMPLEMENTATION"

type HeaderBlock struct {
	DetectedFormat  string `json:"detected_format,omitempty"`
	ExpectedFormat  string `json:"expected_format,omitempty"`
	FormatMatch     bool   `json:"format_match"`
	SignatureHex    string `json:"signature_hex,omitempty"`
	IntegrityStatus string `json:"integrity_status,omitempty"`
	RiskLevel       string `json:"risk_level"`
}

// BuildReport projects a stored record into its API shape.
func BuildReport(rec *AnalysisRecord) *Report {
	rep := &Report{
		FileMD5:          rec.FileMD5,
		FileName:         rec.FileName,
		ExtractionStatus: string(rec.Status),
		AnalysisTime:     rec.CreatedAt,
		Basic: BasicBlock{
			FileFormat:       rec.FileFormat,
			MimeType:         rec.MimeType,
			ImageWidth:       rec.ImageWidth,
			ImageHeight:      rec.ImageHeight,
			CompressionLevel: rec.CompressionLevel,
		},
		Hashes: HashBlock{
			MD5:    rec.FileMD5,
			SHA1:   rec.SHA1Hash,
			SHA256: rec.SHA256Hash,
		},
		Header: HeaderBlock{
			DetectedFormat:  rec.Header.DetectedFormat,
			ExpectedFormat:  rec.Header.ExpectedFormat,
			FormatMatch:     rec.Header.FormatMatch,
			SignatureHex:    rec.Header.SignatureHex,
			IntegrityStatus: string(rec.Header.Integrity),
			RiskLevel:       HeaderRiskLevel(rec.Header.Integrity),
		},
		Container: ContainerBlock{
			Status:  containerStatusPending,
			Message: "Container structure verification is not available yet",
		},
		SuspiciousIndicators: rec.SuspiciousIndicators,
		AssessmentConclusion: rec.AssessmentConclusion,
		AnalysisNotes:        strings.Join(rec.AnalysisNotes, "; "),
		RawMetadata:          rec.RawMetadata,
	}
	if rep.SuspiciousIndicators == nil {
		rep.SuspiciousIndicators = []string{}
	}
	if rec.RiskScore != nil {
		rep.RiskScore = *rec.RiskScore
	}

	if rec.IsVideo() {
		rep.Video = &VideoBlock{
			Duration:   rec.VideoDuration,
			FrameRate:  rec.FrameRate,
			VideoCodec: rec.VideoCodec,
			AudioCodec: rec.AudioCodec,
			BitRate:    rec.BitRate,
		}
	} else {
		rep.Exif = &ExifBlock{
			CameraMake:   rec.CameraMake,
			CameraModel:  rec.CameraModel,
			DateTaken:    rec.DateTaken,
			Orientation:  rec.Orientation,
			ColorSpace:   rec.ColorSpace,
			GpsLatitude:  rec.GpsLatitude,
			GpsLongitude: rec.GpsLongitude,
			GpsLocation:  rec.GpsLocation,
		}
	}

	if strings.TrimSpace(rec.RawMetadata) != "" {
		tree := ParseMetaTree(rec.RawMetadata)
		if len(tree.Groups) > 0 {
			rep.Parsed = &tree
		}
	}
	return rep
}
