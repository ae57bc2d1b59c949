package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyVideoMetadata(t *testing.T) {
	rec := &AnalysisRecord{Kind: KindVideo, FileName: "clip.mp4"}
	ApplyVideoMetadata(rec, &ProbeResult{
		FormatName:  "mov,mp4,m4a,3gp,3g2,mj2",
		DurationSec: 12.7,
		FrameRate:   29.97,
		VideoCodec:  "h264",
		AudioCodec:  "aac",
		BitRate:     2_500_000,
		Width:       1920,
		Height:      1080,
	})

	require.NotNil(t, rec.VideoDuration)
	assert.Equal(t, 12, *rec.VideoDuration)
	require.NotNil(t, rec.FrameRate)
	assert.InDelta(t, 29.97, *rec.FrameRate, 1e-9)
	assert.Equal(t, "h264", rec.VideoCodec)
	assert.Equal(t, "aac", rec.AudioCodec)
	require.NotNil(t, rec.BitRate)
	assert.Equal(t, 2_500_000, *rec.BitRate)
	assert.Equal(t, 1920, *rec.ImageWidth)
	assert.Equal(t, 1080, *rec.ImageHeight)

	// 2.5 Mbps over 1080p30 is ~0.04 bpp, deep in the compressed band
	require.NotNil(t, rec.CompressionLevel)
	assert.Equal(t, 30, *rec.CompressionLevel)
}

func TestApplyVideoMetadata_NilAndUnsetSafe(t *testing.T) {
	rec := &AnalysisRecord{Kind: KindVideo, VideoCodec: "vp9"}
	ApplyVideoMetadata(rec, nil)
	assert.Equal(t, "vp9", rec.VideoCodec)
	assert.Nil(t, rec.VideoDuration)

	ApplyVideoMetadata(rec, &ProbeResult{VideoCodec: "h264"})
	assert.Equal(t, "vp9", rec.VideoCodec, "existing codec must not be overwritten")
}

func TestNormalizeVideoFormat_Priority(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		rawFormat   string
		codec       string
		wantFormat  string
		wantMime    string
	}{
		{
			name:        "clean content type wins",
			fileName:    "clip.mkv",
			contentType: "video/quicktime",
			rawFormat:   "matroska,webm",
			wantFormat:  "MOV",
			wantMime:    "video/quicktime",
		},
		{
			name:       "extension beats raw alias",
			fileName:   "clip.webm",
			rawFormat:  "mov,mp4,m4a,3gp,3g2,mj2",
			wantFormat: "WEBM",
			wantMime:   "video/webm",
		},
		{
			name:       "ffprobe mp4 alias string",
			fileName:   "clip.bin",
			rawFormat:  "mov,mp4,m4a,3gp,3g2,mj2",
			wantFormat: "MP4",
			wantMime:   "video/mp4",
		},
		{
			// the matroska muxer alias carries a webm token, which wins
			name:       "matroska alias",
			fileName:   "clip.bin",
			rawFormat:  "matroska,webm",
			wantFormat: "WEBM",
			wantMime:   "video/webm",
		},
		{
			name:       "bare matroska raw name",
			fileName:   "clip.bin",
			rawFormat:  "matroska",
			wantFormat: "MKV",
			wantMime:   "video/x-matroska",
		},
		{
			name:       "codec fallback",
			fileName:   "clip.bin",
			codec:      "hevc",
			wantFormat: "MP4",
			wantMime:   "video/mp4",
		},
		{
			name:        "aliased content type is ignored",
			fileName:    "clip.bin",
			contentType: "video/mp4, video/quicktime",
			codec:       "vp8",
			wantFormat:  "WEBM",
			wantMime:    "video/webm",
		},
		{
			name:       "nothing known",
			fileName:   "clip.bin",
			wantFormat: "VIDEO",
			wantMime:   "video/unknown",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &AnalysisRecord{Kind: KindVideo, FileName: tt.fileName, VideoCodec: tt.codec}
			NormalizeVideoFormat(rec, tt.contentType, tt.rawFormat)
			assert.Equal(t, tt.wantFormat, rec.FileFormat)
			assert.Equal(t, tt.wantMime, rec.MimeType)
		})
	}
}

func TestNormalizeVideoFormat_KeepsExistingMime(t *testing.T) {
	rec := &AnalysisRecord{Kind: KindVideo, FileName: "clip.mp4", MimeType: "video/mp4"}
	NormalizeVideoFormat(rec, "application/octet-stream", "")
	assert.Equal(t, "MP4", rec.FileFormat)
	assert.Equal(t, "video/mp4", rec.MimeType)
}

func TestEstimateVideoCompression(t *testing.T) {
	build := func(bitRate int, fps float64, w, h int) *AnalysisRecord {
		return &AnalysisRecord{
			Kind:        KindVideo,
			BitRate:     intPtr(bitRate),
			FrameRate:   floatPtr(fps),
			ImageWidth:  intPtr(w),
			ImageHeight: intPtr(h),
		}
	}
	tests := []struct {
		name string
		rec  *AnalysisRecord
		want int
	}{
		// 640x480 @ 10fps = 3.072 Mpx/s
		{"near lossless", build(4_000_000, 10, 640, 480), 95},
		{"light compression", build(2_000_000, 10, 640, 480), 85},
		{"moderate", build(1_000_000, 10, 640, 480), 70},
		{"strong", build(500_000, 10, 640, 480), 50},
		{"heavy", build(100_000, 10, 640, 480), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EstimateVideoCompression(tt.rec)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEstimateVideoCompression_MissingInputs(t *testing.T) {
	_, ok := EstimateVideoCompression(&AnalysisRecord{Kind: KindVideo})
	assert.False(t, ok)

	rec := &AnalysisRecord{
		Kind:        KindVideo,
		BitRate:     intPtr(1_000_000),
		FrameRate:   floatPtr(0),
		ImageWidth:  intPtr(1920),
		ImageHeight: intPtr(1080),
	}
	_, ok = EstimateVideoCompression(rec)
	assert.False(t, ok)
}

func TestBuildVideoRawMetadata_RepairRoundTrip(t *testing.T) {
	src := &AnalysisRecord{
		Kind:             KindVideo,
		FileName:         "clip.mp4",
		FileFormat:       "MP4",
		MimeType:         "video/mp4",
		ImageWidth:       intPtr(1920),
		ImageHeight:      intPtr(1080),
		VideoDuration:    intPtr(12),
		FrameRate:        floatPtr(29.97),
		BitRate:          intPtr(2_500_000),
		VideoCodec:       "h264",
		AudioCodec:       "aac",
		CompressionLevel: intPtr(30),
	}
	raw := BuildVideoRawMetadata(src, "mov,mp4,m4a,3gp,3g2,mj2")

	tree := ParseMetaTree(raw)
	require.Len(t, tree.Groups, 1)
	assert.Equal(t, "Video", tree.Groups[0].Name)
	w, ok := tree.Lookup("Video", "Width")
	require.True(t, ok)
	assert.EqualValues(t, 1920, w.Int)

	restored := &AnalysisRecord{Kind: KindVideo, FileName: "clip.mp4", RawMetadata: raw}
	require.True(t, RepairFromRaw(restored))
	assert.Equal(t, "MP4", restored.FileFormat)
	assert.Equal(t, "video/mp4", restored.MimeType)
	assert.Equal(t, 1920, *restored.ImageWidth)
	assert.Equal(t, 1080, *restored.ImageHeight)
	assert.Equal(t, 12, *restored.VideoDuration)
	assert.Equal(t, "h264", restored.VideoCodec)
	assert.Equal(t, "aac", restored.AudioCodec)
	assert.Equal(t, 30, *restored.CompressionLevel)
}
