package pixel

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// CFAMethod selects the interpolation-artifact detector.
type CFAMethod string

const (
	CFALaplacian CFAMethod = "laplacian"
	CFAGradient  CFAMethod = "gradient"

	cfaAnomalyThreshold = 128
)

// CFAResult is the false-color heatmap plus its summary metrics.
type CFAResult struct {
	Heatmap       *image.RGBA
	TotalPixels   int
	AnomalyPixels int
	AvgIntensity  float64
	AnomalyRegions int
	Confidence    float64
	Summary       string
}

// CFA measures demosaicing artifacts on the green channel. Camera sensors
// interpolate green in a regular pattern; spliced or generated areas break
// that regularity and show up as hot spots on the heatmap.
func CFA(src image.Image, method CFAMethod) *CFAResult {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	green := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_, g, _ := rgb8(src.At(b.Min.X+x, b.Min.Y+y))
			green[y*w+x] = float64(g)
		}
	}

	response := make([]float64, w*h)
	maxResp := 0.0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var v float64
			if method == CFAGradient {
				v = sobelMagnitude(green, w, x, y)
			} else {
				v = laplacian(green, w, x, y)
			}
			response[y*w+x] = v
			if v > maxResp {
				maxResp = v
			}
		}
	}

	heat := image.NewRGBA(image.Rect(0, 0, w, h))
	res := &CFAResult{Heatmap: heat, TotalPixels: w * h}
	anomaly := make([]bool, w*h)
	var sum float64

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			intensity := 0
			if maxResp > 0 {
				intensity = int(response[y*w+x] / maxResp * 255)
			}
			sum += float64(intensity)
			c := heatColor(intensity)
			heat.SetRGBA(x, y, c)
			if maxRGB(c) > cfaAnomalyThreshold {
				anomaly[y*w+x] = true
				res.AnomalyPixels++
			}
		}
	}

	if res.TotalPixels > 0 {
		res.AvgIntensity = sum / float64(res.TotalPixels)
		ratio := float64(res.AnomalyPixels) / float64(res.TotalPixels)
		res.Confidence = minFloat(100, ratio*150)
	}
	res.AnomalyRegions = countRegions(anomaly, w, h, false)
	res.Summary = cfaSummary(res, method)
	return res
}

func laplacian(px []float64, w, x, y int) float64 {
	v := 4*px[y*w+x] - px[(y-1)*w+x] - px[(y+1)*w+x] - px[y*w+x-1] - px[y*w+x+1]
	return math.Abs(v)
}

func sobelMagnitude(px []float64, w, x, y int) float64 {
	gx := -px[(y-1)*w+x-1] + px[(y-1)*w+x+1] +
		-2*px[y*w+x-1] + 2*px[y*w+x+1] +
		-px[(y+1)*w+x-1] + px[(y+1)*w+x+1]
	gy := -px[(y-1)*w+x-1] - 2*px[(y-1)*w+x] - px[(y-1)*w+x+1] +
		px[(y+1)*w+x-1] + 2*px[(y+1)*w+x] + px[(y+1)*w+x+1]
	return math.Sqrt(gx*gx + gy*gy)
}

// heatColor maps a 0-255 response onto a blue -> cyan -> green -> yellow ->
// red ramp, four linear segments.
func heatColor(i int) color.RGBA {
	switch {
	case i < 64:
		return color.RGBA{0, 0, clamp8(i * 4), 255}
	case i < 128:
		return color.RGBA{0, clamp8((i - 64) * 4), clamp8(255 - (i-64)*4), 255}
	case i < 192:
		return color.RGBA{clamp8((i - 128) * 4), 255, 0, 255}
	default:
		return color.RGBA{255, clamp8(255 - (i-192)*4), 0, 255}
	}
}

func maxRGB(c color.RGBA) int {
	m := int(c.R)
	if int(c.G) > m {
		m = int(c.G)
	}
	if int(c.B) > m {
		m = int(c.B)
	}
	return m
}

func cfaSummary(res *CFAResult, method CFAMethod) string {
	ratio := 0.0
	if res.TotalPixels > 0 {
		ratio = float64(res.AnomalyPixels) / float64(res.TotalPixels) * 100
	}
	switch {
	case ratio > 20:
		return fmt.Sprintf("Strong interpolation anomalies (%s): %.1f%% of pixels in %d regions break the sensor pattern", method, ratio, res.AnomalyRegions)
	case ratio > 5:
		return fmt.Sprintf("Localized interpolation anomalies (%s): %.1f%% of pixels, possible splicing", method, ratio)
	case ratio > 0:
		return fmt.Sprintf("Weak interpolation response (%s): %.1f%% of pixels, within normal range", method, ratio)
	default:
		return "No interpolation anomalies, sensor pattern is uniform"
	}
}
