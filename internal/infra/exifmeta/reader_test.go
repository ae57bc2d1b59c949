package exifmeta

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/forensight/internal/domain/media"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), 100, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRead_PngWithoutExif(t *testing.T) {
	data := encodePNG(t, 320, 200)

	groups, raw, err := New().Read(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, groups, 1, "png carries no exif, only the file type group")

	g := groups[0]
	assert.Equal(t, "File Type", g.Name)
	tags := map[string]string{}
	for _, tag := range g.Tags {
		tags[tag.Name] = tag.Value
	}
	assert.Equal(t, "PNG", tags["Detected File Type Name"])
	assert.Equal(t, "image/png", tags["Detected MIME Type"])
	assert.Equal(t, "320 pixels", tags["Image Width"])
	assert.Equal(t, "200 pixels", tags["Image Height"])

	// raw dump parses back into the same structure
	tree := media.ParseMetaTree(raw)
	require.Len(t, tree.Groups, 1)
	v, ok := tree.Lookup("File Type", "Image Width")
	require.True(t, ok)
	assert.EqualValues(t, 320, v.Int)
}

func TestRead_JpegWithoutExif(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}))

	groups, raw, err := New().Read(&buf)
	require.NoError(t, err)
	require.NotEmpty(t, groups)
	assert.Equal(t, "File Type", groups[0].Name)
	assert.Equal(t, "JPEG", groups[0].Tags[0].Value)
	assert.True(t, strings.HasPrefix(raw, "File Type:\n"))
}

func TestRead_RejectsNonImage(t *testing.T) {
	_, _, err := New().Read(strings.NewReader("definitely not an image"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding image config")
}

func TestRead_FeedsExtractionPipeline(t *testing.T) {
	data := encodePNG(t, 512, 512)
	groups, raw, err := New().Read(bytes.NewReader(data))
	require.NoError(t, err)

	rec := &media.AnalysisRecord{Kind: media.KindImage, FileName: "art.png"}
	media.ApplyImageMetadata(rec, groups)
	rec.RawMetadata = raw

	assert.Equal(t, "PNG", rec.FileFormat)
	assert.Equal(t, "image/png", rec.MimeType)
	require.NotNil(t, rec.ImageWidth)
	assert.Equal(t, 512, *rec.ImageWidth)
}

func TestCanonicalNames(t *testing.T) {
	assert.Equal(t, "JPEG", canonicalFormatName("jpeg"))
	assert.Equal(t, "WEBP", canonicalFormatName("webp"))
	assert.Equal(t, "HEIF", canonicalFormatName("heif"))
	assert.Equal(t, "image/gif", mimeForFormat("gif"))
	assert.Equal(t, "image/unknown", mimeForFormat("heif"))
}
