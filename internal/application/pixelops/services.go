package pixelops

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/forensight/internal/domain/media"
	"github.com/bryanwahyu/forensight/internal/domain/pixel"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Service runs the pixel-level analyses on stored objects and writes the
// rendered artifact back to object storage.
type Service struct {
	files media.FileStore
	log   *logrus.Logger
}

func NewService(files media.FileStore, log *logrus.Logger) *Service {
	return &Service{files: files, log: log}
}

// ELAReport is the API response of one error level analysis run.
type ELAReport struct {
	Quality           int     `json:"quality"`
	Scale             int     `json:"scale"`
	TotalPixels       int     `json:"total_pixels"`
	SuspiciousPixels  int     `json:"suspicious_pixels"`
	SuspiciousPercent float64 `json:"suspicious_percent"`
	AvgBrightness     float64 `json:"avg_brightness"`
	SuspiciousRegions int     `json:"suspicious_regions"`
	Confidence        float64 `json:"confidence"`
	Summary           string  `json:"summary"`
	ArtifactURL       string  `json:"artifact_url,omitempty"`
}

// CFAReport is the API response of one CFA anomaly run.
type CFAReport struct {
	Method         string  `json:"method"`
	TotalPixels    int     `json:"total_pixels"`
	AnomalyPixels  int     `json:"anomaly_pixels"`
	AnomalyPercent float64 `json:"anomaly_percent"`
	AvgIntensity   float64 `json:"avg_intensity"`
	AnomalyRegions int     `json:"anomaly_regions"`
	Confidence     float64 `json:"confidence"`
	Summary        string  `json:"summary"`
	ArtifactURL    string  `json:"artifact_url,omitempty"`
}

// CopyMoveReport is the API response of one copy-move run.
type CopyMoveReport struct {
	BlockSize    int             `json:"block_size"`
	Threshold    float64         `json:"threshold"`
	MatchedPairs int             `json:"matched_pairs"`
	Pairs        []CopyMovePair  `json:"pairs,omitempty"`
	AvgDistance  float64         `json:"avg_distance"`
	Confidence   float64         `json:"confidence"`
	Summary      string          `json:"summary"`
	ArtifactURL  string          `json:"artifact_url,omitempty"`
}

type CopyMovePair struct {
	SourceX  int     `json:"source_x"`
	SourceY  int     `json:"source_y"`
	TargetX  int     `json:"target_x"`
	TargetY  int     `json:"target_y"`
	Distance float64 `json:"distance"`
}

// RunELA decodes the object, runs error level analysis and stores the
// difference image under forensics/<tenant>/ela/.
func (s *Service) RunELA(ctx context.Context, tenant, objectKey string, quality, scale int) (*ELAReport, error) {
	img, err := s.decodeObject(ctx, objectKey)
	if err != nil {
		return nil, err
	}
	if quality == 0 {
		quality = pixel.DefaultELAQuality
	}
	if scale == 0 {
		scale = pixel.DefaultELAScale
	}

	res, err := pixel.ELA(img, quality, scale)
	if err != nil {
		return nil, err
	}

	rep := &ELAReport{
		Quality:           quality,
		Scale:             scale,
		TotalPixels:       res.TotalPixels,
		SuspiciousPixels:  res.SuspiciousPixels,
		AvgBrightness:     res.AvgBrightness,
		SuspiciousRegions: res.SuspiciousRegions,
		Confidence:        res.Confidence,
		Summary:           res.Summary,
	}
	if res.TotalPixels > 0 {
		rep.SuspiciousPercent = float64(res.SuspiciousPixels) / float64(res.TotalPixels) * 100
	}
	rep.ArtifactURL = s.storeArtifact(ctx, tenant, "ela", res.Image)
	return rep, nil
}

// RunCFA renders the demosaicing-anomaly heatmap for the object.
func (s *Service) RunCFA(ctx context.Context, tenant, objectKey string, method string) (*CFAReport, error) {
	img, err := s.decodeObject(ctx, objectKey)
	if err != nil {
		return nil, err
	}
	m := pixel.CFALaplacian
	if method == string(pixel.CFAGradient) {
		m = pixel.CFAGradient
	}

	res := pixel.CFA(img, m)
	rep := &CFAReport{
		Method:         string(m),
		TotalPixels:    res.TotalPixels,
		AnomalyPixels:  res.AnomalyPixels,
		AvgIntensity:   res.AvgIntensity,
		AnomalyRegions: res.AnomalyRegions,
		Confidence:     res.Confidence,
		Summary:        res.Summary,
	}
	if res.TotalPixels > 0 {
		rep.AnomalyPercent = float64(res.AnomalyPixels) / float64(res.TotalPixels) * 100
	}
	rep.ArtifactURL = s.storeArtifact(ctx, tenant, "cfa", res.Heatmap)
	return rep, nil
}

// RunCopyMove matches duplicated blocks and stores the annotated image.
func (s *Service) RunCopyMove(ctx context.Context, tenant, objectKey string, blockSize int, threshold float64) (*CopyMoveReport, error) {
	img, err := s.decodeObject(ctx, objectKey)
	if err != nil {
		return nil, err
	}
	if blockSize == 0 {
		blockSize = pixel.DefaultBlockSize
	}
	if threshold == 0 {
		threshold = pixel.DefaultSimilarityThreshold
	}

	res := pixel.CopyMove(img, blockSize, threshold)
	rep := &CopyMoveReport{
		BlockSize:    blockSize,
		Threshold:    threshold,
		MatchedPairs: len(res.Pairs),
		AvgDistance:  res.AvgDistance,
		Confidence:   res.Confidence,
		Summary:      res.Summary,
	}
	for _, p := range res.Pairs {
		rep.Pairs = append(rep.Pairs, CopyMovePair{
			SourceX:  p.A.X,
			SourceY:  p.A.Y,
			TargetX:  p.B.X,
			TargetY:  p.B.Y,
			Distance: p.Distance,
		})
	}
	rep.ArtifactURL = s.storeArtifact(ctx, tenant, "copymove", res.Image)
	return rep, nil
}

func (s *Service) decodeObject(ctx context.Context, objectKey string) (image.Image, error) {
	rc, err := s.files.OpenStream(ctx, objectKey)
	if err != nil {
		return nil, fmt.Errorf("opening object %s: %w", objectKey, err)
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decoding object %s: %w", objectKey, err)
	}
	return img, nil
}

// storeArtifact uploads the rendered PNG; failures only cost the URL.
func (s *Service) storeArtifact(ctx context.Context, tenant, kind string, img image.Image) string {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.log.WithError(err).Warn("encoding artifact")
		return ""
	}
	key := fmt.Sprintf("forensics/%s/%s/%s.png", tenant, kind, uuid.NewString())
	url, err := s.files.PutBytes(ctx, key, buf.Bytes(), "image/png")
	if err != nil {
		s.log.WithError(err).Warn("uploading artifact")
		return ""
	}
	return url
}
