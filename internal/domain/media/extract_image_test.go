package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jpegTagGroups() []TagGroup {
	return []TagGroup{
		{Name: "File Type", Tags: []Tag{
			{Name: "Detected File Type Name", Value: "JPEG"},
			{Name: "Detected MIME Type", Value: "image/jpeg"},
			{Name: "Image Width", Value: "4032 pixels"},
			{Name: "Image Height", Value: "3024 pixels"},
		}},
		{Name: "Exif IFD0", Tags: []Tag{
			{Name: "Make", Value: "Canon"},
			{Name: "Model", Value: "Canon EOS R5"},
			{Name: "DateTime", Value: "2023:05:10 14:23:11"},
			{Name: "Orientation", Value: "1"},
			{Name: "Color Space", Value: "sRGB"},
		}},
		{Name: "GPS", Tags: []Tag{
			{Name: "GPS Latitude", Value: "-6.21462"},
			{Name: "GPS Longitude", Value: "106.84513"},
		}},
	}
}

func TestApplyImageMetadata_FullJpeg(t *testing.T) {
	rec := &AnalysisRecord{Kind: KindImage, FileName: "holiday.jpg"}
	ApplyImageMetadata(rec, jpegTagGroups())

	assert.Equal(t, "JPEG", rec.FileFormat)
	assert.Equal(t, "image/jpeg", rec.MimeType)
	require.NotNil(t, rec.ImageWidth)
	assert.Equal(t, 4032, *rec.ImageWidth)
	require.NotNil(t, rec.ImageHeight)
	assert.Equal(t, 3024, *rec.ImageHeight)
	assert.Equal(t, "Canon", rec.CameraMake)
	assert.Equal(t, "Canon EOS R5", rec.CameraModel)
	require.NotNil(t, rec.DateTaken)
	assert.Equal(t, time.Date(2023, 5, 10, 14, 23, 11, 0, time.UTC), *rec.DateTaken)
	require.NotNil(t, rec.Orientation)
	assert.Equal(t, 1, *rec.Orientation)
	assert.Equal(t, "sRGB", rec.ColorSpace)
	require.NotNil(t, rec.GpsLatitude)
	assert.InDelta(t, -6.21462, *rec.GpsLatitude, 1e-9)
	assert.Equal(t, "-6.214620,106.845130", rec.GpsLocation)

	// JPEG without a quality tag falls back to the encoder default
	require.NotNil(t, rec.CompressionLevel)
	assert.Equal(t, defaultJpegQuality, *rec.CompressionLevel)
}

func TestApplyImageMetadata_FirstValueWins(t *testing.T) {
	rec := &AnalysisRecord{Kind: KindImage, CameraMake: "Apple", ImageWidth: intPtr(1170)}
	ApplyImageMetadata(rec, jpegTagGroups())

	assert.Equal(t, "Apple", rec.CameraMake)
	assert.Equal(t, 1170, *rec.ImageWidth)
	// unset fields still fill
	assert.Equal(t, "Canon EOS R5", rec.CameraModel)
	assert.Equal(t, 3024, *rec.ImageHeight)
}

func TestApplyImageMetadata_JpegQualityTag(t *testing.T) {
	groups := append(jpegTagGroups(), TagGroup{Name: "JPEG", Tags: []Tag{
		{Name: "Quality", Value: "62"},
	}})
	rec := &AnalysisRecord{Kind: KindImage}
	ApplyImageMetadata(rec, groups)
	require.NotNil(t, rec.CompressionLevel)
	assert.Equal(t, 62, *rec.CompressionLevel)
}

func TestApplyImageMetadata_PngCompression(t *testing.T) {
	rec := &AnalysisRecord{Kind: KindImage}
	ApplyImageMetadata(rec, []TagGroup{
		{Name: "File Type", Tags: []Tag{{Name: "Detected File Type Name", Value: "PNG"}}},
		{Name: "PNG-IHDR", Tags: []Tag{
			{Name: "Image Width", Value: "512"},
			{Name: "Image Height", Value: "512"},
			{Name: "Compression Type", Value: "0"},
		}},
	})
	assert.Equal(t, "PNG", rec.FileFormat)
	assert.Equal(t, "image/png", rec.MimeType) // inferred from format
	require.NotNil(t, rec.CompressionLevel)
	assert.Equal(t, 0, *rec.CompressionLevel)
	assert.Equal(t, 512, *rec.ImageWidth)
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"4032 pixels", 4032, true},
		{" 72 dpi", 72, true},
		{"-3", -3, true},
		{"8", 8, true},
		{"pixels 4032", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := leadingInt(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestImageMimeFor(t *testing.T) {
	assert.Equal(t, "image/jpeg", imageMimeFor("JPEG"))
	assert.Equal(t, "image/jpeg", imageMimeFor("jpg"))
	assert.Equal(t, "image/tiff", imageMimeFor("TIF"))
	assert.Equal(t, "image/unknown", imageMimeFor("HEIF"))
}

func TestRepairFromRaw_Image(t *testing.T) {
	raw := "File Type:\n" +
		"  Detected File Type Name: PNG\n" +
		"  Detected MIME Type: image/png\n" +
		"  Image Width: 512 pixels\n" +
		"  Image Height: 512 pixels\n"
	rec := &AnalysisRecord{Kind: KindImage, RawMetadata: raw}

	require.True(t, RepairFromRaw(rec))
	assert.Equal(t, "PNG", rec.FileFormat)
	assert.Equal(t, "image/png", rec.MimeType)
	require.NotNil(t, rec.ImageWidth)
	assert.Equal(t, 512, *rec.ImageWidth)

	// second pass has nothing left to fill
	assert.False(t, RepairFromRaw(rec))
}

func TestRepairFromRaw_NoRaw(t *testing.T) {
	assert.False(t, RepairFromRaw(&AnalysisRecord{Kind: KindImage}))
	assert.False(t, RepairFromRaw(&AnalysisRecord{Kind: KindImage, RawMetadata: "   \n"}))
	assert.False(t, RepairFromRaw(&AnalysisRecord{Kind: KindImage, RawMetadata: "no groups here"}))
}
