package pixel

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noiseImage fills every pixel with seeded noise so no two blocks look alike
// unless they were deliberately cloned.
func noiseImage(w, h int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(rng.Intn(256))
			img.SetRGBA(x, y, color.RGBA{v, uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255})
		}
	}
	return img
}

func cloneRegion(img *image.RGBA, sx, sy, dx, dy, size int) {
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(dx+x, dy+y, img.RGBAAt(sx+x, sy+y))
		}
	}
}

func TestCopyMove_DetectsClonedRegion(t *testing.T) {
	img := noiseImage(128, 128, 42)
	cloneRegion(img, 8, 8, 80, 80, 32)

	res := CopyMove(img, 16, DefaultSimilarityThreshold)
	require.NotEmpty(t, res.Pairs)
	assert.Greater(t, res.Confidence, 0.0)
	assert.LessOrEqual(t, res.Confidence, 100.0)
	assert.Contains(t, res.Summary, "matched block pairs")

	for _, p := range res.Pairs {
		assert.LessOrEqual(t, p.Distance, DefaultSimilarityThreshold)
		// matches must be spatially distant in at least one axis
		far := absInt(p.A.X-p.B.X) >= 32 || absInt(p.A.Y-p.B.Y) >= 32
		assert.True(t, far, "pair at (%d,%d)/(%d,%d)", p.A.X, p.A.Y, p.B.X, p.B.Y)
	}
}

func TestCopyMove_CleanImageHasNoPairs(t *testing.T) {
	img := noiseImage(96, 96, 7)
	res := CopyMove(img, 16, DefaultSimilarityThreshold)
	assert.Empty(t, res.Pairs)
	assert.Zero(t, res.Confidence)
	assert.Equal(t, "No duplicated regions detected", res.Summary)
}

func TestCandidatePairs_ThresholdIsMonotone(t *testing.T) {
	img := noiseImage(128, 128, 42)
	cloneRegion(img, 8, 8, 80, 80, 32)

	prev := -1
	for _, th := range []float64{1, 10, 50, 200} {
		n := len(candidatePairs(img, 16, th))
		assert.GreaterOrEqual(t, n, prev, "threshold %v", th)
		prev = n
	}
}

func TestCopyMove_InvalidParamsFallBack(t *testing.T) {
	img := noiseImage(64, 64, 3)
	res := CopyMove(img, 0, -1)
	require.NotNil(t, res)
	assert.NotNil(t, res.Image)
	b := res.Image.Bounds()
	assert.Equal(t, 64, b.Dx())
	assert.Equal(t, 64, b.Dy())
}

func TestBlocksOverlap(t *testing.T) {
	a := Block{X: 10, Y: 10}
	assert.True(t, blocksOverlap(a, Block{X: 10, Y: 10}, 16))
	assert.True(t, blocksOverlap(a, Block{X: 17, Y: 3}, 16))
	// half the block footprint apart no longer counts as overlap
	assert.False(t, blocksOverlap(a, Block{X: 18, Y: 10}, 16))
	assert.False(t, blocksOverlap(a, Block{X: 10, Y: 40}, 16))
}

func TestDedupPairs_KeepsBestNonOverlapping(t *testing.T) {
	near := Pair{A: Block{X: 0, Y: 0}, B: Block{X: 100, Y: 100}, Distance: 1}
	shifted := Pair{A: Block{X: 4, Y: 4}, B: Block{X: 104, Y: 104}, Distance: 2}
	distinct := Pair{A: Block{X: 0, Y: 48}, B: Block{X: 100, Y: 0}, Distance: 3}

	out := dedupPairs([]Pair{near, shifted, distinct}, 16)
	require.Len(t, out, 2)
	assert.Equal(t, near, out[0])
	assert.Equal(t, distinct, out[1])
}

func TestBlockFeatures_IdenticalBlocksMatch(t *testing.T) {
	img := noiseImage(64, 64, 11)
	cloneRegion(img, 0, 0, 32, 32, 16)

	a := blockFeatures(img, 0, 0, 16)
	b := blockFeatures(img, 32, 32, 16)
	c := blockFeatures(img, 16, 0, 16)

	assert.Len(t, a, 16)
	assert.Zero(t, featureDistance(a, b))
	assert.Greater(t, featureDistance(a, c), DefaultSimilarityThreshold)
}

func TestBlockFeatures_SmallBlockCount(t *testing.T) {
	img := noiseImage(8, 8, 5)
	assert.Len(t, blockFeatures(img, 0, 0, 4), 4)
}

func TestFeatureDistance(t *testing.T) {
	assert.Zero(t, featureDistance([]float64{1, 2}, []float64{1, 2}))
	assert.InDelta(t, 5, featureDistance([]float64{0, 0}, []float64{3, 4}), 1e-9)
}

func TestAnnotatePairs_DrawsOnCopy(t *testing.T) {
	img := uniformImage(40, 40, color.RGBA{50, 50, 50, 255})
	pairs := []Pair{{A: Block{X: 2, Y: 2}, B: Block{X: 22, Y: 22}, Distance: 0}}
	out := annotatePairs(img, pairs, 8)

	// rectangle corners take the palette color
	assert.Equal(t, pairPalette[0], out.RGBAAt(2, 2))
	assert.Equal(t, pairPalette[0], out.RGBAAt(22, 22))
	// untouched pixels keep the source color
	assert.Equal(t, color.RGBA{50, 50, 50, 255}, out.RGBAAt(38, 2))
	// the source itself is untouched
	assert.Equal(t, color.RGBA{50, 50, 50, 255}, img.RGBAAt(2, 2))
}
