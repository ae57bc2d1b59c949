package media

import (
	"bytes"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// HeaderWindow is how many leading bytes the signature engine inspects.
const HeaderWindow = 64

// signatureHexBytes: only the first 16 bytes are rendered as the hex
// signature and used for prefix matching; the full window is only scanned
// for the floating "ftyp" box.
const signatureHexBytes = 16

// AnalyzeHeader classifies the leading bytes of a file against known magic
// signatures and compares the detected format with the file extension.
func AnalyzeHeader(header []byte, fileName string) HeaderAnalysis {
	sigLen := len(header)
	if sigLen > signatureHexBytes {
		sigLen = signatureHexBytes
	}
	sig := strings.ToUpper(hex.EncodeToString(header[:sigLen]))

	detected := DetectFormat(header)
	expected := expectedFormatFromName(fileName)
	match := detected != "UNKNOWN" && formatMatchesExtension(detected, extensionOf(fileName))

	h := HeaderAnalysis{
		DetectedFormat: detected,
		ExpectedFormat: expected,
		FormatMatch:    match,
		SignatureHex:   sig,
	}
	switch {
	case detected == "UNKNOWN":
		h.Integrity = IntegrityUnknownFormat
	case !match:
		h.Integrity = IntegrityFormatMismatch
	default:
		h.Integrity = IntegrityIntact
	}
	return h
}

// DetectFormat maps magic bytes to a canonical format name, or "UNKNOWN".
func DetectFormat(header []byte) string {
	if len(header) == 0 {
		return "UNKNOWN"
	}
	n := len(header)
	if n > signatureHexBytes {
		n = signatureHexBytes
	}
	sig := strings.ToUpper(hex.EncodeToString(header[:n]))

	switch {
	case strings.HasPrefix(sig, "FFD8FF"):
		return "JPEG"
	case strings.HasPrefix(sig, "89504E47"):
		return "PNG"
	case strings.HasPrefix(sig, "474946"):
		return "GIF"
	case strings.HasPrefix(sig, "424D"):
		return "BMP"
	case strings.HasPrefix(sig, "49492A00"), strings.HasPrefix(sig, "4D4D002A"):
		return "TIFF"
	case strings.HasPrefix(sig, "52494646") && strings.Contains(sig, "57454250"):
		return "WEBP"
	case strings.HasPrefix(sig, "52494646") && strings.Contains(sig, "41564920"):
		return "AVI"
	// ISO BMFF: ukuran box kecil di depan lalu "ftyp"
	case strings.HasPrefix(sig, "0000001"), strings.HasPrefix(sig, "66747970"):
		return "MP4"
	case strings.HasPrefix(sig, "1A45DFA3"):
		return "WEBM"
	case strings.HasPrefix(sig, "464C5601"):
		return "FLV"
	case strings.HasPrefix(sig, "30264DE1"):
		return "WMV"
	case strings.Contains(sig, "6D6F6F76"), strings.Contains(sig, "66726565"),
		strings.Contains(sig, "6D646174"), strings.Contains(sig, "77696465"):
		return "MOV"
	case strings.HasPrefix(sig, "255044462D"):
		return "PDF"
	case strings.HasPrefix(sig, "504B0304"):
		return "ZIP"
	}

	// "ftyp" bisa muncul lebih dalam dari 16 byte pada beberapa container
	if bytes.Contains(header, []byte("ftyp")) {
		return "MP4"
	}
	return "UNKNOWN"
}

// compatibleExtensions: detected format -> extensions that are not a lie.
// MP4-family containers share brands so mp4/mov/m4v cross-match.
var compatibleExtensions = map[string][]string{
	"JPEG": {"jpg", "jpeg"},
	"PNG":  {"png"},
	"GIF":  {"gif"},
	"BMP":  {"bmp"},
	"TIFF": {"tif", "tiff"},
	"WEBP": {"webp"},
	"MP4":  {"mp4", "m4v", "mov"},
	"MOV":  {"mov", "mp4", "m4v"},
	"WEBM": {"webm"},
	"AVI":  {"avi"},
	"FLV":  {"flv"},
	"WMV":  {"wmv", "asf"},
	"PDF":  {"pdf"},
	"ZIP":  {"zip"},
}

func formatMatchesExtension(detected, ext string) bool {
	if ext == "" {
		return false
	}
	for _, e := range compatibleExtensions[detected] {
		if e == ext {
			return true
		}
	}
	return false
}

func extensionOf(fileName string) string {
	ext := strings.TrimPrefix(filepath.Ext(fileName), ".")
	return strings.ToLower(ext)
}

func expectedFormatFromName(fileName string) string {
	ext := extensionOf(fileName)
	if ext == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(ext)
}

// HeaderRiskLevel translates an integrity status into the coarse risk label
// surfaced on read responses.
func HeaderRiskLevel(s IntegrityStatus) string {
	switch s {
	case IntegrityIntact:
		return "LOW"
	case IntegrityFormatMismatch:
		return "HIGH"
	case IntegrityUnknownFormat:
		return "MEDIUM"
	default:
		return "UNKNOWN"
	}
}
