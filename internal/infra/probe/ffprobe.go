// Package probe wraps ffprobe for container-level video inspection.
package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	ffprobe "gopkg.in/vansante/go-ffprobe.v2"

	"github.com/bryanwahyu/forensight/internal/domain/media"
)

type FFProbe struct {
	timeout time.Duration
}

func New(timeout time.Duration) *FFProbe {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FFProbe{timeout: timeout}
}

// Probe runs ffprobe against a (presigned) URL so the object never has to
// be downloaded first.
func (p *FFProbe) Probe(ctx context.Context, url string) (*media.ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	data, err := ffprobe.ProbeURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	res := &media.ProbeResult{}
	if data.Format != nil {
		res.FormatName = data.Format.FormatName
		res.DurationSec = data.Format.DurationSeconds
		res.BitRate = parseIntString(data.Format.BitRate)
	}
	if vs := data.FirstVideoStream(); vs != nil {
		res.VideoCodec = vs.CodecName
		res.Width = vs.Width
		res.Height = vs.Height
		res.FrameRate = parseFrameRate(vs.RFrameRate)
		if res.FrameRate == 0 {
			res.FrameRate = parseFrameRate(vs.AvgFrameRate)
		}
		if res.BitRate == 0 {
			res.BitRate = parseIntString(vs.BitRate)
		}
	}
	if as := data.FirstAudioStream(); as != nil {
		res.AudioCodec = as.CodecName
	}
	return res, nil
}

// parseFrameRate resolves ffprobe rationals like "30000/1001".
func parseFrameRate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "0/0" {
		return 0
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0
		}
		return n / d
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseIntString(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
