package media

import (
	"fmt"
	"strings"
)

// ProbeResult is the normalized output of an ffprobe run.
type ProbeResult struct {
	FormatName  string // raw container name, may hold comma aliases ("mov,mp4,m4a,3gp,3g2,mj2")
	DurationSec float64
	FrameRate   float64
	VideoCodec  string
	AudioCodec  string
	BitRate     int
	Width       int
	Height      int
}

// ApplyVideoMetadata maps a probe result onto the record. Fields already
// set by an earlier step stay untouched.
func ApplyVideoMetadata(rec *AnalysisRecord, pr *ProbeResult) {
	if pr == nil {
		return
	}
	if rec.VideoDuration == nil && pr.DurationSec > 0 {
		rec.VideoDuration = intPtr(int(pr.DurationSec))
	}
	if rec.FrameRate == nil && pr.FrameRate > 0 {
		rec.FrameRate = floatPtr(pr.FrameRate)
	}
	if rec.VideoCodec == "" {
		rec.VideoCodec = pr.VideoCodec
	}
	if rec.AudioCodec == "" {
		rec.AudioCodec = pr.AudioCodec
	}
	if rec.BitRate == nil && pr.BitRate > 0 {
		rec.BitRate = intPtr(pr.BitRate)
	}
	rec.SetDimensions(pr.Width, pr.Height)

	if rec.CompressionLevel == nil {
		if est, ok := EstimateVideoCompression(rec); ok {
			rec.CompressionLevel = intPtr(est)
		}
	}
}

// NormalizeVideoFormat memilih format container + MIME dengan prioritas:
// content-type storage, ekstensi file, raw format ffprobe, lalu codec.
func NormalizeVideoFormat(rec *AnalysisRecord, contentType, rawFormat string) {
	canonical := formatFromContentType(contentType)
	if canonical == "" {
		canonical = formatFromExtension(extensionOf(rec.FileName))
	}
	if canonical == "" {
		canonical = formatFromRawName(rawFormat)
	}
	if canonical == "" {
		canonical = formatFromCodec(rec.VideoCodec)
	}
	if canonical == "" {
		canonical = rec.FileFormat
	}
	if canonical == "" {
		canonical = "VIDEO"
	}
	rec.FileFormat = canonical

	if rec.MimeType == "" {
		if ct := strings.TrimSpace(contentType); ct != "" && isCleanVideoMime(ct) {
			rec.MimeType = ct
		} else {
			rec.MimeType = videoMimeFor(canonical)
		}
	}
}

func formatFromContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" || strings.Contains(ct, ",") || !strings.HasPrefix(ct, "video/") {
		return ""
	}
	switch strings.TrimPrefix(ct, "video/") {
	case "mp4":
		return "MP4"
	case "quicktime":
		return "MOV"
	case "webm":
		return "WEBM"
	case "x-matroska":
		return "MKV"
	case "avi", "x-msvideo":
		return "AVI"
	case "x-ms-wmv":
		return "WMV"
	case "x-flv":
		return "FLV"
	default:
		return ""
	}
}

func formatFromExtension(ext string) string {
	switch ext {
	case "mp4", "m4v":
		return "MP4"
	case "mov":
		return "MOV"
	case "webm":
		return "WEBM"
	case "mkv":
		return "MKV"
	case "avi":
		return "AVI"
	case "wmv":
		return "WMV"
	case "flv":
		return "FLV"
	default:
		return ""
	}
}

// formatFromRawName resolves ffprobe muxer alias strings: the mp4 muxer
// reports "mov,mp4,m4a,3gp,3g2,mj2" and matroska reports "matroska,webm".
func formatFromRawName(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch {
	case raw == "":
		return ""
	case strings.Contains(raw, "mp4"):
		return "MP4"
	case strings.Contains(raw, "webm"):
		return "WEBM"
	case strings.Contains(raw, "matroska"):
		return "MKV"
	case strings.Contains(raw, "avi"):
		return "AVI"
	case strings.Contains(raw, "asf"):
		return "WMV"
	case strings.Contains(raw, "flv"):
		return "FLV"
	case strings.Contains(raw, "mov"):
		return "MOV"
	default:
		return ""
	}
}

func formatFromCodec(codec string) string {
	switch strings.ToLower(codec) {
	case "h264", "avc", "avc1", "hevc", "h265":
		return "MP4"
	case "vp8", "vp9":
		return "WEBM"
	default:
		return ""
	}
}

func isCleanVideoMime(ct string) bool {
	return strings.HasPrefix(ct, "video/") && !strings.Contains(ct, ",") && !strings.Contains(ct, " ")
}

func videoMimeFor(format string) string {
	switch strings.ToUpper(format) {
	case "MP4":
		return "video/mp4"
	case "MOV":
		return "video/quicktime"
	case "WEBM":
		return "video/webm"
	case "MKV":
		return "video/x-matroska"
	case "AVI":
		return "video/avi"
	case "WMV":
		return "video/x-ms-wmv"
	case "FLV":
		return "video/x-flv"
	default:
		return "video/unknown"
	}
}

// EstimateVideoCompression menghitung skor 0-100 dari bits per pixel per
// frame; makin tinggi bpp makin rendah kompresi.
func EstimateVideoCompression(rec *AnalysisRecord) (int, bool) {
	if rec.BitRate == nil || rec.FrameRate == nil ||
		rec.ImageWidth == nil || rec.ImageHeight == nil {
		return 0, false
	}
	pixelsPerFrame := float64(*rec.ImageWidth) * float64(*rec.ImageHeight)
	if pixelsPerFrame <= 0 || *rec.FrameRate <= 0 {
		return 0, false
	}
	bpp := float64(*rec.BitRate) / (pixelsPerFrame * *rec.FrameRate)
	switch {
	case bpp > 1.0:
		return 95, true
	case bpp > 0.5:
		return 85, true
	case bpp > 0.2:
		return 70, true
	case bpp > 0.1:
		return 50, true
	default:
		return 30, true
	}
}

// BuildVideoRawMetadata renders the video fields in the same group/leaf
// layout the tree parser reads back.
func BuildVideoRawMetadata(rec *AnalysisRecord, rawFormat string) string {
	var b strings.Builder
	b.WriteString("Video:\n")
	writeLeaf(&b, "Format", rec.FileFormat)
	writeLeaf(&b, "MIME Type", rec.MimeType)
	if rawFormat != "" {
		writeLeaf(&b, "Container Name", rawFormat)
	}
	if rec.ImageWidth != nil {
		writeLeaf(&b, "Width", fmt.Sprintf("%d pixels", *rec.ImageWidth))
	}
	if rec.ImageHeight != nil {
		writeLeaf(&b, "Height", fmt.Sprintf("%d pixels", *rec.ImageHeight))
	}
	if rec.VideoDuration != nil {
		writeLeaf(&b, "Duration", fmt.Sprintf("%d sec", *rec.VideoDuration))
	}
	if rec.FrameRate != nil {
		writeLeaf(&b, "Frame Rate", fmt.Sprintf("%.3f", *rec.FrameRate))
	}
	if rec.BitRate != nil {
		writeLeaf(&b, "Bit Rate", fmt.Sprintf("%d", *rec.BitRate))
	}
	writeLeaf(&b, "Video Codec", rec.VideoCodec)
	writeLeaf(&b, "Audio Codec", rec.AudioCodec)
	if rec.CompressionLevel != nil {
		writeLeaf(&b, "Compression Estimate", fmt.Sprintf("%d %%", *rec.CompressionLevel))
	}
	return b.String()
}

func writeLeaf(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString("  ")
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

// repairVideoFromGroups rebuilds video fields from a stored raw dump.
func repairVideoFromGroups(rec *AnalysisRecord, groups []TagGroup) {
	for _, g := range groups {
		if g.Name != "Video" {
			continue
		}
		for _, t := range g.Tags {
			switch t.Name {
			case "Format":
				if rec.FileFormat == "" {
					rec.FileFormat = t.Value
				}
			case "MIME Type":
				if rec.MimeType == "" {
					rec.MimeType = t.Value
				}
			case "Width":
				if rec.ImageWidth == nil {
					if n, ok := leadingInt(t.Value); ok {
						rec.ImageWidth = intPtr(n)
					}
				}
			case "Height":
				if rec.ImageHeight == nil {
					if n, ok := leadingInt(t.Value); ok {
						rec.ImageHeight = intPtr(n)
					}
				}
			case "Duration":
				if rec.VideoDuration == nil {
					if n, ok := leadingInt(t.Value); ok {
						rec.VideoDuration = intPtr(n)
					}
				}
			case "Video Codec":
				if rec.VideoCodec == "" {
					rec.VideoCodec = t.Value
				}
			case "Audio Codec":
				if rec.AudioCodec == "" {
					rec.AudioCodec = t.Value
				}
			case "Compression Estimate":
				if rec.CompressionLevel == nil {
					if n, ok := leadingInt(t.Value); ok {
						rec.CompressionLevel = intPtr(n)
					}
				}
			}
		}
	}
	if rec.FileFormat == "" || rec.FileFormat == "VIDEO" {
		NormalizeVideoFormat(rec, "", "")
	}
}
