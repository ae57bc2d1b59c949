package media

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Tag is one named metadata value inside a tag group.
type Tag struct {
	Name  string
	Value string
}

// TagGroup mirrors one metadata directory (Exif IFD0, GPS, File Type, ...).
type TagGroup struct {
	Name string
	Tags []Tag
}

const exifTimeLayout = "2006:01:02 15:04:05"

// defaultJpegQuality dipakai saat file JPEG tidak membawa tag kualitas
const defaultJpegQuality = 85

var leadingIntRe = regexp.MustCompile(`^-?\d+`)

// ApplyImageMetadata maps extracted tag groups onto the record. Each field
// is only filled while still unset: the first group that knows a value wins
// and the final backfill sweep can never clobber it.
func ApplyImageMetadata(rec *AnalysisRecord, groups []TagGroup) {
	for _, g := range groups {
		switch {
		case g.Name == "File Type":
			applyFileTypeGroup(rec, g)
		case strings.HasPrefix(g.Name, "Exif"):
			applyExifGroup(rec, g)
		case g.Name == "GPS":
			applyGpsGroup(rec, g)
		case g.Name == "JPEG":
			applyJpegGroup(rec, g)
		case g.Name == "PNG", g.Name == "PNG-IHDR":
			applyPngGroup(rec, g)
		case strings.HasPrefix(g.Name, "GIF"):
			applyDimensionTags(rec, g)
		}
	}

	// sweep terakhir: grup apa pun boleh mengisi dimensi / color space yang masih kosong
	for _, g := range groups {
		for _, t := range g.Tags {
			name := strings.ToLower(t.Name)
			switch {
			case strings.Contains(name, "width") && rec.ImageWidth == nil:
				if n, ok := leadingInt(t.Value); ok && n > 0 {
					rec.ImageWidth = intPtr(n)
				}
			case strings.Contains(name, "height") && rec.ImageHeight == nil:
				if n, ok := leadingInt(t.Value); ok && n > 0 {
					rec.ImageHeight = intPtr(n)
				}
			case strings.Contains(name, "color space") && rec.ColorSpace == "":
				rec.ColorSpace = t.Value
			}
		}
	}

	if rec.FileFormat == "JPEG" && rec.CompressionLevel == nil {
		rec.CompressionLevel = intPtr(defaultJpegQuality)
	}
}

func applyFileTypeGroup(rec *AnalysisRecord, g TagGroup) {
	for _, t := range g.Tags {
		switch t.Name {
		case "Detected File Type Name":
			if rec.FileFormat == "" {
				rec.FileFormat = strings.ToUpper(t.Value)
			}
		case "Detected MIME Type":
			if rec.MimeType == "" {
				rec.MimeType = t.Value
			}
		}
	}
	applyDimensionTags(rec, g)
	if rec.MimeType == "" && rec.FileFormat != "" {
		rec.MimeType = imageMimeFor(rec.FileFormat)
	}
}

func applyExifGroup(rec *AnalysisRecord, g TagGroup) {
	for _, t := range g.Tags {
		switch t.Name {
		case "Make":
			if rec.CameraMake == "" {
				rec.CameraMake = strings.TrimSpace(t.Value)
			}
		case "Model":
			if rec.CameraModel == "" {
				rec.CameraModel = strings.TrimSpace(t.Value)
			}
		case "DateTime", "DateTimeOriginal", "Date/Time", "Date/Time Original":
			if rec.DateTaken == nil {
				if ts, err := time.Parse(exifTimeLayout, strings.TrimSpace(t.Value)); err == nil {
					rec.DateTaken = timePtr(ts)
				}
			}
		case "Orientation":
			if rec.Orientation == nil {
				if n, ok := leadingInt(t.Value); ok {
					rec.Orientation = intPtr(n)
				}
			}
		case "ColorSpace", "Color Space":
			if rec.ColorSpace == "" {
				rec.ColorSpace = t.Value
			}
		}
	}
	applyDimensionTags(rec, g)
}

func applyGpsGroup(rec *AnalysisRecord, g TagGroup) {
	for _, t := range g.Tags {
		name := strings.ToLower(t.Name)
		switch {
		case strings.Contains(name, "latitude") && rec.GpsLatitude == nil:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t.Value), 64); err == nil {
				rec.GpsLatitude = floatPtr(f)
			}
		case strings.Contains(name, "longitude") && rec.GpsLongitude == nil:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t.Value), 64); err == nil {
				rec.GpsLongitude = floatPtr(f)
			}
		}
	}
	if rec.GpsLocation == "" && rec.GpsLatitude != nil && rec.GpsLongitude != nil {
		rec.GpsLocation = strconv.FormatFloat(*rec.GpsLatitude, 'f', 6, 64) + "," +
			strconv.FormatFloat(*rec.GpsLongitude, 'f', 6, 64)
	}
}

func applyJpegGroup(rec *AnalysisRecord, g TagGroup) {
	applyDimensionTags(rec, g)
	for _, t := range g.Tags {
		if !strings.Contains(strings.ToLower(t.Name), "quality") {
			continue
		}
		if n, ok := leadingInt(t.Value); ok && n >= 1 && n <= 100 && rec.CompressionLevel == nil {
			rec.CompressionLevel = intPtr(n)
		}
	}
}

func applyPngGroup(rec *AnalysisRecord, g TagGroup) {
	applyDimensionTags(rec, g)
	for _, t := range g.Tags {
		if !strings.Contains(strings.ToLower(t.Name), "compression") {
			continue
		}
		if n, ok := leadingInt(t.Value); ok && n >= 0 && n <= 9 && rec.CompressionLevel == nil {
			rec.CompressionLevel = intPtr(n)
		}
	}
}

func applyDimensionTags(rec *AnalysisRecord, g TagGroup) {
	for _, t := range g.Tags {
		name := strings.ToLower(t.Name)
		switch {
		case strings.Contains(name, "width"):
			if rec.ImageWidth == nil {
				if n, ok := leadingInt(t.Value); ok && n > 0 {
					rec.ImageWidth = intPtr(n)
				}
			}
		case strings.Contains(name, "height"):
			if rec.ImageHeight == nil {
				if n, ok := leadingInt(t.Value); ok && n > 0 {
					rec.ImageHeight = intPtr(n)
				}
			}
		}
	}
}

// leadingInt parses the integer prefix of values like "4032 pixels".
func leadingInt(s string) (int, bool) {
	m := leadingIntRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

func imageMimeFor(format string) string {
	switch strings.ToUpper(format) {
	case "JPEG", "JPG":
		return "image/jpeg"
	case "PNG":
		return "image/png"
	case "GIF":
		return "image/gif"
	case "BMP":
		return "image/bmp"
	case "TIFF", "TIF":
		return "image/tiff"
	case "WEBP":
		return "image/webp"
	default:
		return "image/unknown"
	}
}

// RepairFromRaw backfills structured fields from an already stored raw dump.
// Used on read when an old row has raw metadata but lost its parsed fields.
func RepairFromRaw(rec *AnalysisRecord) bool {
	if strings.TrimSpace(rec.RawMetadata) == "" {
		return false
	}
	tree := ParseMetaTree(rec.RawMetadata)
	if len(tree.Groups) == 0 {
		return false
	}

	var groups []TagGroup
	for _, g := range tree.Groups {
		tg := TagGroup{Name: g.Name}
		for _, e := range g.Entries {
			tg.Tags = append(tg.Tags, Tag{Name: e.Key, Value: e.Value.Raw})
		}
		groups = append(groups, tg)
	}

	before := *rec
	if rec.IsVideo() {
		repairVideoFromGroups(rec, groups)
	} else {
		ApplyImageMetadata(rec, groups)
	}
	return changedDuringRepair(&before, rec)
}

func changedDuringRepair(before, after *AnalysisRecord) bool {
	return before.FileFormat != after.FileFormat ||
		before.MimeType != after.MimeType ||
		(before.ImageWidth == nil) != (after.ImageWidth == nil) ||
		(before.ImageHeight == nil) != (after.ImageHeight == nil) ||
		(before.CompressionLevel == nil) != (after.CompressionLevel == nil) ||
		before.CameraMake != after.CameraMake ||
		before.CameraModel != after.CameraModel
}
