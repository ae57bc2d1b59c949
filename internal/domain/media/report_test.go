package media

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport_Image(t *testing.T) {
	rec := cameraRecord()
	rec.FileMD5 = "0123456789abcdef0123456789abcdef"
	rec.SHA1Hash = "aaa"
	rec.SHA256Hash = "bbb"
	rec.Status = StatusSuccess
	rec.RiskScore = intPtr(0)
	rec.AnalysisNotes = []string{"first", "second"}
	rec.RawMetadata = "Exif IFD0:\n  Make: Canon\n"

	rep := BuildReport(rec)

	assert.Equal(t, rec.FileMD5, rep.FileMD5)
	assert.Equal(t, rec.FileMD5, rep.Hashes.MD5)
	assert.Equal(t, "SUCCESS", rep.ExtractionStatus)
	require.NotNil(t, rep.Exif)
	assert.Nil(t, rep.Video)
	assert.Equal(t, "Canon", rep.Exif.CameraMake)
	assert.Equal(t, "LOW", rep.Header.RiskLevel)
	assert.Equal(t, "INTACT", rep.Header.IntegrityStatus)
	assert.Equal(t, "first; second", rep.AnalysisNotes)

	require.NotNil(t, rep.Parsed)
	v, ok := rep.Parsed.Lookup("Exif IFD0", "Make")
	require.True(t, ok)
	assert.Equal(t, "Canon", v.Str)
}

// the container block is reserved: always present, always pending
func TestBuildReport_ContainerBlockIsReserved(t *testing.T) {
	rep := BuildReport(cameraRecord())
	assert.Equal(t, "PENDING_IMPLEMENTATION", rep.Container.Status)
	assert.NotEmpty(t, rep.Container.Message)

	raw, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"container_integrity"`)
	assert.Contains(t, string(raw), `"PENDING_IMPLEMENTATION"`)
}

func TestBuildReport_VideoBlockSelection(t *testing.T) {
	rec := &AnalysisRecord{
		Kind:          KindVideo,
		FileMD5:       "ffffffffffffffffffffffffffffffff",
		Status:        StatusPartial,
		VideoDuration: intPtr(12),
		VideoCodec:    "h264",
	}
	rep := BuildReport(rec)
	require.NotNil(t, rep.Video)
	assert.Nil(t, rep.Exif)
	assert.Equal(t, 12, *rep.Video.Duration)
	assert.Equal(t, "UNKNOWN", rep.Header.RiskLevel)
	assert.Nil(t, rep.Parsed)
}

// indicators serialize as an empty array, never null
func TestBuildReport_IndicatorsNeverNull(t *testing.T) {
	rep := BuildReport(&AnalysisRecord{Kind: KindImage, FileMD5: "x"})
	raw, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"suspicious_indicators":[]`)
}
