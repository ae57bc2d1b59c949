package pixel

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"strconv"
)

const (
	// DefaultBlockSize is the sliding-window edge length in pixels.
	DefaultBlockSize = 16
	// DefaultSimilarityThreshold is the max feature distance for a match.
	DefaultSimilarityThreshold = 10.0
)

// Block is one candidate window with its compressed feature vector.
type Block struct {
	X, Y     int
	Features []float64
}

// Pair is a matched source/target block with its feature distance.
type Pair struct {
	A, B     Block
	Distance float64
}

// CopyMoveResult carries the accepted pairs and the annotated image.
type CopyMoveResult struct {
	Image       *image.RGBA
	Pairs       []Pair
	AvgDistance float64
	Confidence  float64
	Summary     string
}

// CopyMove slides a window over the image, compresses each block into a
// small frequency signature and matches distant blocks with near-identical
// signatures. Cloned areas produce pairs; the result image draws them.
func CopyMove(src image.Image, blockSize int, threshold float64) *CopyMoveResult {
	if blockSize < 4 {
		blockSize = DefaultBlockSize
	}
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	pairs := candidatePairs(src, blockSize, threshold)
	pairs = dedupPairs(pairs, blockSize)

	res := &CopyMoveResult{
		Image: annotatePairs(src, pairs, blockSize),
		Pairs: pairs,
	}
	if len(pairs) > 0 {
		var sum float64
		for _, p := range pairs {
			sum += p.Distance
		}
		res.AvgDistance = sum / float64(len(pairs))
		res.Confidence = minFloat(100, float64(len(pairs))*20)
	}
	res.Summary = copyMoveSummary(res)
	return res
}

// candidatePairs collects all block pairs that are feature-close and
// spatially far apart, sorted by ascending distance.
func candidatePairs(src image.Image, blockSize int, threshold float64) []Pair {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := blockSize / 2
	if stride < 1 {
		stride = 1
	}

	// bucket kandidat pakai kuantisasi fitur supaya perbandingan tidak O(n^2)
	buckets := make(map[string][]Block)
	for y := 0; y+blockSize <= h; y += stride {
		for x := 0; x+blockSize <= w; x += stride {
			blk := Block{X: x, Y: y, Features: blockFeatures(src, b.Min.X+x, b.Min.Y+y, blockSize)}
			buckets[quantizeKey(blk.Features)] = append(buckets[quantizeKey(blk.Features)], blk)
		}
	}

	minOffset := float64(2 * blockSize)
	var pairs []Pair
	for _, blocks := range buckets {
		for i := 0; i < len(blocks); i++ {
			for j := i + 1; j < len(blocks); j++ {
				a, bb := blocks[i], blocks[j]
				dx := math.Abs(float64(a.X - bb.X))
				dy := math.Abs(float64(a.Y - bb.Y))
				if dx < minOffset && dy < minOffset {
					continue
				}
				d := featureDistance(a.Features, bb.Features)
				if d <= threshold {
					pairs = append(pairs, Pair{A: a, B: bb, Distance: d})
				}
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Distance < pairs[j].Distance })
	return pairs
}

// blockFeatures projects the block's luminance onto a few cosine basis
// rows, a cheap stand-in for a full 2D DCT that still separates textures.
func blockFeatures(src image.Image, ox, oy, blockSize int) []float64 {
	n := blockSize * blockSize
	lum := make([]float64, n)
	for y := 0; y < blockSize; y++ {
		for x := 0; x < blockSize; x++ {
			r, g, b := rgb8(src.At(ox+x, oy+y))
			lum[y*blockSize+x] = 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
		}
	}

	featureCount := n / 4
	if featureCount > 16 {
		featureCount = 16
	}
	if featureCount < 1 {
		featureCount = 1
	}
	features := make([]float64, featureCount)
	for i := 0; i < featureCount; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += lum[j] * math.Cos(math.Pi*float64(i)*float64(j)/float64(n))
		}
		features[i] = sum
	}
	return features
}

func quantizeKey(features []float64) string {
	key := make([]byte, 0, len(features)*4)
	for _, f := range features {
		key = strconv.AppendInt(key, int64(f/10), 10)
		key = append(key, ':')
	}
	return string(key)
}

func featureDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// dedupPairs keeps the best pairs greedily, dropping any later pair whose
// blocks overlap an accepted block by more than half the block footprint.
func dedupPairs(pairs []Pair, blockSize int) []Pair {
	var accepted []Pair
	for _, p := range pairs {
		overlaps := false
		for _, q := range accepted {
			if blocksOverlap(p.A, q.A, blockSize) || blocksOverlap(p.A, q.B, blockSize) ||
				blocksOverlap(p.B, q.A, blockSize) || blocksOverlap(p.B, q.B, blockSize) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, p)
		}
	}
	return accepted
}

// blocksOverlap reports whether two blocks share more than 50% of the block
// footprint in both axes.
func blocksOverlap(a, b Block, blockSize int) bool {
	half := blockSize / 2
	return absInt(a.X-b.X) < half && absInt(a.Y-b.Y) < half
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

var pairPalette = []color.RGBA{
	{255, 0, 0, 255},
	{0, 255, 0, 255},
	{0, 128, 255, 255},
	{255, 255, 0, 255},
	{255, 0, 255, 255},
	{0, 255, 255, 255},
}

// annotatePairs copies the source and draws each matched pair as two
// rectangles joined by a line, cycling through the palette.
func annotatePairs(src image.Image, pairs []Pair, blockSize int) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl := rgb8(src.At(b.Min.X+x, b.Min.Y+y))
			out.SetRGBA(x, y, color.RGBA{uint8(r), uint8(g), uint8(bl), 255})
		}
	}
	for i, p := range pairs {
		c := pairPalette[i%len(pairPalette)]
		drawRect(out, p.A.X, p.A.Y, blockSize, c)
		drawRect(out, p.B.X, p.B.Y, blockSize, c)
		drawLine(out,
			p.A.X+blockSize/2, p.A.Y+blockSize/2,
			p.B.X+blockSize/2, p.B.Y+blockSize/2, c)
	}
	return out
}

func drawRect(img *image.RGBA, x, y, size int, c color.RGBA) {
	for i := 0; i < size; i++ {
		setIfInside(img, x+i, y, c)
		setIfInside(img, x+i, y+size-1, c)
		setIfInside(img, x, y+i, c)
		setIfInside(img, x+size-1, y+i, c)
	}
}

// drawLine is Bresenham on the annotated copy.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		setIfInside(img, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func setIfInside(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func copyMoveSummary(res *CopyMoveResult) string {
	switch {
	case len(res.Pairs) >= 5:
		return fmt.Sprintf("Strong cloning evidence: %d matched block pairs, average feature distance %.2f", len(res.Pairs), res.AvgDistance)
	case len(res.Pairs) > 0:
		return fmt.Sprintf("Possible cloned areas: %d matched block pairs, average feature distance %.2f", len(res.Pairs), res.AvgDistance)
	default:
		return "No duplicated regions detected"
	}
}
