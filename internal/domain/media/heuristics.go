package media

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Findings is the append-only output of the forensic checks. Checks receive
// a value and return an extended copy, they never mutate shared state.
type Findings struct {
	Indicators []string
	Notes      []string
}

func (f Findings) WithIndicator(s string) Findings {
	out := f
	out.Indicators = append(append([]string(nil), f.Indicators...), s)
	return out
}

func (f Findings) WithNote(s string) Findings {
	out := f
	out.Notes = append(append([]string(nil), f.Notes...), s)
	return out
}

type checkFunc func(rec *AnalysisRecord, now time.Time, f Findings) Findings

type namedCheck struct {
	name string
	fn   checkFunc
}

// forensicChecks run in order; each is isolated so a panic in one check
// becomes a note instead of killing the whole analysis.
var forensicChecks = []namedCheck{
	{"header_integrity", checkHeaderIntegrity},
	{"exif_consistency", checkExifConsistency},
	{"dimensions", checkDimensions},
	{"mime_consistency", checkMimeConsistency},
	{"compression", checkCompression},
	{"temporal", checkTemporal},
	{"gps", checkGps},
	{"device_profile", checkDeviceProfile},
	{"generator_traces", checkGeneratorTraces},
}

// RunForensicChecks executes every heuristic check against the record and
// stores the indicators, the aggregated risk score and the conclusion.
func RunForensicChecks(rec *AnalysisRecord, now time.Time) {
	var f Findings
	for _, c := range forensicChecks {
		f = runIsolated(c, rec, now, f)
	}

	score := ScoreIndicators(f.Indicators)
	rec.SuspiciousIndicators = f.Indicators
	rec.RiskScore = intPtr(score)
	rec.AssessmentConclusion = Conclusion(score, rec.IsVideo())
	rec.AnalysisNotes = append(rec.AnalysisNotes, f.Notes...)
}

func runIsolated(c namedCheck, rec *AnalysisRecord, now time.Time, f Findings) (out Findings) {
	defer func() {
		if r := recover(); r != nil {
			out = f.WithNote(fmt.Sprintf("forensic check %s aborted: %v", c.name, r))
		}
	}()
	return c.fn(rec, now, f)
}

// ---- severity classification ----

type severityRule struct {
	points   int
	keywords []string
}

// severityRules are scanned top to bottom against the lowercased indicator;
// the first rule with a matching keyword decides the weight.
var severityRules = []severityRule{
	{40, []string{"signature anomaly", "file format spoofing", "tampering"}},
	{35, []string{"high suspicion of ai", "ai generation tool", "artificial intelligence"}},
	{15, []string{"missing camera info", "missing capture info", "completely missing", "format mismatch", "ai common dimensions"}},
	{8, []string{"compression", "time anomaly", "incomplete metadata"}},
}

const baselineIndicatorPoints = 3

// ClassifyIndicator maps one indicator sentence to its risk weight.
func ClassifyIndicator(indicator string) int {
	lower := strings.ToLower(indicator)
	for _, rule := range severityRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.points
			}
		}
	}
	return baselineIndicatorPoints
}

// ScoreIndicators sums indicator weights and clamps to [0,100].
func ScoreIndicators(indicators []string) int {
	total := 0
	for _, ind := range indicators {
		total += ClassifyIndicator(ind)
	}
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return total
}

// Conclusion renders the human verdict for a risk score. Confidence is the
// inverse of the score with a floor of 85.
func Conclusion(score int, video bool) string {
	mediaType := "image"
	if video {
		mediaType = "video"
	}
	conf := 100 - score
	if conf < 85 {
		conf = 85
	}
	switch {
	case score >= 70:
		return fmt.Sprintf("This %s is highly suspicious: strong signs of manipulation or AI generation (confidence %d%%)", mediaType, conf)
	case score >= 40:
		return fmt.Sprintf("This %s shows clear anomalies that suggest possible manipulation (confidence %d%%)", mediaType, conf)
	case score >= 20:
		return fmt.Sprintf("This %s has some suspicious characteristics and deserves a closer look (confidence %d%%)", mediaType, conf)
	case score >= 10:
		return fmt.Sprintf("This %s shows minor anomalies, most likely from normal processing (confidence %d%%)", mediaType, conf)
	default:
		return fmt.Sprintf("No significant signs of manipulation found in this %s (confidence %d%%)", mediaType, conf)
	}
}

// ---- individual checks ----

// suspiciousJpegMarkers are APP-segment byte runs seen in re-encoded output
// of common generators, compared against the hex after the FFD8FF prefix.
var suspiciousJpegMarkers = []string{
	"E000104A464946", // bare JFIF header with stripped density fields
	"E1001845786966", // truncated Exif segment
}

func checkHeaderIntegrity(rec *AnalysisRecord, _ time.Time, f Findings) Findings {
	h := rec.Header
	switch h.Integrity {
	case "":
		return f.WithIndicator("File header analysis data missing: unable to verify file integrity")
	case IntegrityAnalysisFailed:
		return f.WithIndicator("File header analysis failed: unable to verify file integrity")
	case IntegrityUnknownFormat:
		return f.WithIndicator("Unknown file signature: file may be corrupted or concealing its real format")
	case IntegrityFormatMismatch:
		f = f.WithIndicator(fmt.Sprintf(
			"File header signature anomaly: extension claims %s but content is %s, possible file format spoofing or tampering",
			h.ExpectedFormat, h.DetectedFormat))
	}

	if len(h.SignatureHex) < 8 {
		f = f.WithIndicator("File signature too short: file may be truncated or corrupted")
		return f
	}

	if strings.HasPrefix(h.SignatureHex, "FFD8FF") {
		marker := h.SignatureHex[6:]
		for _, m := range suspiciousJpegMarkers {
			if strings.HasPrefix(marker, m) {
				f = f.WithNote("JPEG APP segment matches a known generator re-encode pattern")
				break
			}
		}
	}
	if strings.HasPrefix(h.SignatureHex, "66747970") || strings.Contains(h.SignatureHex, "66747970") {
		if strings.Contains(h.SignatureHex, "6D703432") || strings.Contains(h.SignatureHex, "69736F6D") {
			f = f.WithNote("Standard MP4 container brand detected")
		} else {
			f = f.WithNote("Non-standard container brand code in ftyp box")
		}
	}
	return f
}

func checkExifConsistency(rec *AnalysisRecord, _ time.Time, f Findings) Findings {
	if rec.IsVideo() {
		if rec.VideoCodec == "" && rec.VideoDuration == nil && rec.ImageWidth == nil {
			return f.WithIndicator("Video completely missing technical information: may have anomalies")
		}
		populated, total := videoCompleteness(rec)
		if total > 0 && float64(populated)/float64(total) < 0.1 {
			f = f.WithIndicator("Incomplete metadata: video missing most core technical parameters")
		}
		return f
	}

	if rec.CameraMake == "" && rec.CameraModel == "" {
		f = f.WithIndicator("Image missing camera info: may be a screenshot, edited export, or generated content")
	}

	exifFields := 0
	if rec.CameraMake != "" {
		exifFields++
	}
	if rec.CameraModel != "" {
		exifFields++
	}
	if rec.DateTaken != nil {
		exifFields++
	}
	if rec.Orientation != nil {
		exifFields++
	}
	if rec.ColorSpace != "" {
		exifFields++
	}
	if exifFields == 1 {
		f = f.WithIndicator("Incomplete metadata: EXIF carries only a single capture field")
	}

	populated, total := imageCompleteness(rec)
	if total > 0 && float64(populated)/float64(total) < 0.3 {
		f = f.WithIndicator("Incomplete metadata: image metadata nearly empty, may have been cleaned")
	}
	return f
}

func videoCompleteness(rec *AnalysisRecord) (populated, total int) {
	total = 3
	if rec.VideoCodec != "" {
		populated++
	}
	if rec.VideoDuration != nil && *rec.VideoDuration > 0 {
		populated++
	}
	if rec.ImageWidth != nil && rec.ImageHeight != nil {
		populated++
	}
	if rec.FrameRate != nil {
		total++
		if *rec.FrameRate > 0 {
			populated++
		}
	}
	if rec.BitRate != nil {
		total++
		if *rec.BitRate > 0 {
			populated++
		}
	}
	return populated, total
}

func imageCompleteness(rec *AnalysisRecord) (populated, total int) {
	total = 5
	if rec.CameraMake != "" {
		populated++
	}
	if rec.CameraModel != "" {
		populated++
	}
	if rec.FileFormat != "" {
		populated++
	}
	if rec.MimeType != "" {
		populated++
	}
	if rec.ColorSpace != "" {
		populated++
	}
	return populated, total
}

// aiCommonDims are output resolutions that generator defaults produce.
var aiCommonDims = [][2]int{
	{256, 256}, {512, 512}, {768, 768}, {1024, 1024},
	{512, 768}, {768, 512}, {1024, 768}, {768, 1024},
	{512, 256}, {256, 512}, {2048, 2048},
}

// IsAICommonResolution reports whether w x h (either orientation) is a
// generator default output size.
func IsAICommonResolution(w, h int) bool {
	for _, d := range aiCommonDims {
		if (d[0] == w && d[1] == h) || (d[0] == h && d[1] == w) {
			return true
		}
	}
	return false
}

func checkDimensions(rec *AnalysisRecord, _ time.Time, f Findings) Findings {
	if rec.IsVideo() || rec.ImageWidth == nil || rec.ImageHeight == nil {
		return f
	}
	w, h := *rec.ImageWidth, *rec.ImageHeight
	if w <= 0 || h <= 0 {
		return f
	}

	if IsAICommonResolution(w, h) {
		f = f.WithIndicator("Image dimensions match AI common dimensions: typical of generator default output")
	}
	if w == h && w >= 256 && w <= 2048 {
		f = f.WithIndicator("Perfect square aspect ratio in the AI common dimensions range: may be generated or center-cropped")
	}
	if (w > 4000 || h > 4000) && rec.CameraMake == "" {
		f = f.WithIndicator("High resolution image missing camera info: may be an upscaled render")
	}
	return f
}

func checkMimeConsistency(rec *AnalysisRecord, _ time.Time, f Findings) Findings {
	if rec.FileFormat == "" || rec.MimeType == "" {
		return f
	}
	var expected string
	if rec.IsVideo() {
		expected = videoMimeFor(rec.FileFormat)
	} else {
		expected = imageMimeFor(rec.FileFormat)
	}
	if strings.HasSuffix(expected, "/unknown") {
		return f
	}
	got := strings.ToLower(strings.TrimSpace(rec.MimeType))
	if got == expected {
		return f
	}
	// container keluarga MP4 berbagi MIME, jangan dianggap anomali
	if rec.IsVideo() && isMp4Family(expected) && isMp4Family(got) {
		return f
	}
	return f.WithIndicator(fmt.Sprintf(
		"File format mismatch between container %s and MIME type %s: may have undergone format conversion",
		rec.FileFormat, rec.MimeType))
}

func isMp4Family(mime string) bool {
	return mime == "video/mp4" || mime == "video/quicktime"
}

func checkCompression(rec *AnalysisRecord, _ time.Time, f Findings) Findings {
	if rec.CompressionLevel == nil {
		return f
	}
	level := *rec.CompressionLevel
	switch {
	case rec.IsVideo():
		if level >= 90 {
			f = f.WithNote("Estimated bitrate unusually high for the container, possible transcode from a lossless source")
		}
	case rec.FileFormat == "JPEG" && level < 50:
		f = f.WithIndicator("JPEG compression quality very low: may have been re-saved multiple times or heavily processed")
	case rec.FileFormat == "PNG" && level > 6:
		f = f.WithIndicator("PNG compression level abnormal: may have undergone special processing")
	}
	return f
}

func checkTemporal(rec *AnalysisRecord, now time.Time, f Findings) Findings {
	if rec.DateTaken == nil {
		return f
	}
	taken := *rec.DateTaken
	switch {
	case taken.After(now):
		f = f.WithIndicator("Capture time anomaly: timestamp is in the future, EXIF data may have been altered")
	case taken.Year() < 1990:
		f = f.WithIndicator("Capture time anomaly: timestamp predates 1990, likely a device default or reset clock")
	}
	if taken.Minute()%5 == 0 {
		f = f.WithNote("Round capture time detected, may have been set manually")
	}
	return f
}

// phoneBrands are makes expected to geotag by default.
var phoneBrands = []string{"iphone", "apple", "samsung", "google", "huawei", "xiaomi"}

func checkGps(rec *AnalysisRecord, _ time.Time, f Findings) Findings {
	if rec.IsVideo() || rec.CameraMake == "" {
		return f
	}
	make := strings.ToLower(rec.CameraMake)
	for _, brand := range phoneBrands {
		if strings.Contains(make, brand) {
			if rec.GpsLatitude == nil && rec.GpsLongitude == nil {
				return f.WithIndicator("Smartphone capture but GPS data absent: location services may be off or data stripped")
			}
			return f
		}
	}
	return f
}

// modelTokens: kata yang wajar muncul di model untuk tiap make
var modelTokens = map[string][]string{
	"canon": {"canon", "eos", "powershot"},
	"nikon": {"nikon", "d", "coolpix", "z"},
	"sony":  {"sony", "alpha", "dsc", "ilce"},
}

func checkDeviceProfile(rec *AnalysisRecord, _ time.Time, f Findings) Findings {
	if rec.IsVideo() {
		return checkVideoDeviceProfile(rec, f)
	}

	if rec.CameraMake != "" && rec.CameraModel != "" {
		make := strings.ToLower(rec.CameraMake)
		model := strings.ToLower(rec.CameraModel)
		for brand, tokens := range modelTokens {
			if !strings.Contains(make, brand) {
				continue
			}
			ok := false
			for _, tok := range tokens {
				if strings.Contains(model, tok) {
					ok = true
					break
				}
			}
			if !ok {
				f = f.WithIndicator("Camera make does not match model: EXIF data may be forged")
			}
			break
		}
	}

	noCapture := rec.CameraMake == "" && rec.CameraModel == "" && rec.DateTaken == nil
	aiDims := rec.ImageWidth != nil && rec.ImageHeight != nil &&
		IsAICommonResolution(*rec.ImageWidth, *rec.ImageHeight)
	if noCapture && aiDims {
		f = f.WithIndicator("Completely missing capture info combined with AI common dimensions: high suspicion of AI-generated content")
	}
	return f
}

// checkVideoDeviceProfile: video tanpa info perangkat plus frame rate aneh
// atau frame hampir persegi, pola khas output generator.
func checkVideoDeviceProfile(rec *AnalysisRecord, f Findings) Findings {
	if rec.CameraMake != "" || rec.CameraModel != "" {
		return f
	}

	abnormalFps := rec.FrameRate != nil && (*rec.FrameRate < 15 || *rec.FrameRate > 120)

	nearSquare := false
	if rec.ImageWidth != nil && rec.ImageHeight != nil && *rec.ImageHeight > 0 && *rec.ImageWidth > 0 {
		ratio := float64(*rec.ImageWidth) / float64(*rec.ImageHeight)
		nearSquare = math.Abs(ratio-1) < 0.1
	}

	if abnormalFps || nearSquare {
		f = f.WithIndicator("Video missing device info and has abnormal technical parameters: high suspicion of AI generation")
	}
	return f
}

// generatorTokens are tool identifiers that sometimes survive in software
// tags or raw metadata of generated files.
var generatorTokens = []string{
	"stable diffusion", "midjourney", "dall-e", "dalle",
	"adobe firefly", "ai generated", "comfyui",
}

func checkGeneratorTraces(rec *AnalysisRecord, _ time.Time, f Findings) Findings {
	if rec.RawMetadata == "" {
		return f
	}
	raw := strings.ToLower(rec.RawMetadata)
	for _, tok := range generatorTokens {
		if strings.Contains(raw, tok) {
			return f.WithIndicator(fmt.Sprintf(
				"AI generation tool identifier %q found in metadata: generated content", tok))
		}
	}
	return f
}
