package pixel

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestELA_UniformImageIsQuiet(t *testing.T) {
	src := uniformImage(64, 64, color.RGBA{128, 128, 128, 255})

	res, err := ELA(src, DefaultELAQuality, DefaultELAScale)
	require.NoError(t, err)
	require.NotNil(t, res.Image)

	assert.Equal(t, 64*64, res.TotalPixels)
	assert.Equal(t, 0, res.SuspiciousPixels)
	assert.Equal(t, 0, res.SuspiciousRegions)
	assert.Zero(t, res.Confidence)
	assert.Equal(t, "Uniform compression response, no locally edited areas detected", res.Summary)
}

func TestELA_OutputDimensionsFollowSource(t *testing.T) {
	src := uniformImage(33, 17, color.RGBA{200, 40, 90, 255})
	res, err := ELA(src, 75, 5)
	require.NoError(t, err)
	b := res.Image.Bounds()
	assert.Equal(t, 33, b.Dx())
	assert.Equal(t, 17, b.Dy())
	assert.Equal(t, 33*17, res.TotalPixels)
}

func TestELA_ZeroScaleIsBlack(t *testing.T) {
	// scale 0 nulls every amplified difference, whatever the content
	src := image.NewRGBA(image.Rect(0, 0, 24, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			src.SetRGBA(x, y, color.RGBA{uint8(x * 10), uint8(y * 10), 77, 255})
		}
	}
	res, err := ELA(src, 40, 0)
	require.NoError(t, err)
	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			px := res.Image.RGBAAt(x, y)
			require.Equal(t, color.RGBA{0, 0, 0, 255}, px, "pixel %d,%d", x, y)
		}
	}
	assert.Equal(t, 0, res.SuspiciousPixels)
}

func TestELA_InvalidParamsFallBackToDefaults(t *testing.T) {
	src := uniformImage(16, 16, color.RGBA{128, 128, 128, 255})
	for _, q := range []int{0, -3, 101} {
		res, err := ELA(src, q, -1)
		require.NoError(t, err, "quality %d", q)
		assert.NotNil(t, res.Image)
	}
}

func TestELA_ConfidenceBoundedAt100(t *testing.T) {
	// a hard edge pattern produces strong recompression differences once
	// amplified, but confidence must still clamp
	src := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if (x/2+y/2)%2 == 0 {
				src.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				src.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}
	res, err := ELA(src, 50, 40)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Confidence, 100.0)
	assert.GreaterOrEqual(t, res.Confidence, 0.0)
	assert.LessOrEqual(t, res.SuspiciousPixels, res.TotalPixels)
}

func TestCountRegions_Connectivity(t *testing.T) {
	// two diagonal pixels touch under 8-connectivity only
	mask := []bool{
		true, false,
		false, true,
	}
	assert.Equal(t, 1, countRegions(mask, 2, 2, true))
	assert.Equal(t, 2, countRegions(mask, 2, 2, false))
}

func TestCountRegions_SeparateIslands(t *testing.T) {
	// 4x3 mask with an island in each corner column
	mask := []bool{
		true, false, false, true,
		true, false, false, false,
		false, false, false, true,
	}
	assert.Equal(t, 3, countRegions(mask, 4, 3, false))
	// corner islands at (3,0) and (3,2) stay apart even with diagonals
	assert.Equal(t, 3, countRegions(mask, 4, 3, true))
}

func TestCountRegions_Empty(t *testing.T) {
	assert.Equal(t, 0, countRegions(nil, 0, 0, true))
	assert.Equal(t, 0, countRegions([]bool{false, false}, 2, 1, false))
}

func TestClamp8(t *testing.T) {
	assert.Equal(t, uint8(0), clamp8(-5))
	assert.Equal(t, uint8(0), clamp8(0))
	assert.Equal(t, uint8(200), clamp8(200))
	assert.Equal(t, uint8(255), clamp8(255))
	assert.Equal(t, uint8(255), clamp8(2550))
}
