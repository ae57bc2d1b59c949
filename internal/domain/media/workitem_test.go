package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkItem_Backfill(t *testing.T) {
	item := WorkItem{FileMD5: "abc", OwnerID: "owner-from-webhook"}
	item.Backfill(&CatalogEntry{
		FileName:  "holiday.jpg",
		Kind:      KindImage,
		ObjectKey: "uploads/holiday.jpg",
		OwnerID:   "owner-from-catalog",
		ProjectID: "project-1",
	})

	// existing values win, gaps are filled
	assert.Equal(t, "owner-from-webhook", item.OwnerID)
	assert.Equal(t, "project-1", item.ProjectID)
	assert.Equal(t, "holiday.jpg", item.FileName)
	assert.Equal(t, KindImage, item.Kind)
	assert.Equal(t, "uploads/holiday.jpg", item.ObjectKey)
}

func TestWorkItem_BackfillNilEntry(t *testing.T) {
	item := WorkItem{FileMD5: "abc"}
	item.Backfill(nil)
	assert.Equal(t, WorkItem{FileMD5: "abc"}, item)
}

func TestNewRecord(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	rec := NewRecord("id-1", "acme", WorkItem{
		FileMD5: "abc", FileName: "clip.mp4", Kind: KindVideo,
		OwnerID: "o", ProjectID: "p",
	}, now)

	assert.Equal(t, StatusPending, rec.Status)
	assert.Equal(t, "acme", rec.TenantID)
	assert.Equal(t, now, rec.CreatedAt)
	assert.True(t, rec.IsVideo())
}

func TestAnalysisRecord_IsVideo(t *testing.T) {
	assert.False(t, (&AnalysisRecord{Kind: KindImage}).IsVideo())
	assert.True(t, (&AnalysisRecord{Kind: KindVideo}).IsVideo())
	// records with video traits count even if the kind was lost
	assert.True(t, (&AnalysisRecord{VideoCodec: "h264"}).IsVideo())
	assert.True(t, (&AnalysisRecord{VideoDuration: intPtr(5)}).IsVideo())
}

func TestAnalysisRecord_SetDimensions(t *testing.T) {
	rec := &AnalysisRecord{}
	rec.SetDimensions(1920, 1080)
	require.NotNil(t, rec.ImageWidth)
	assert.Equal(t, 1920, *rec.ImageWidth)

	rec.SetDimensions(640, 480)
	assert.Equal(t, 1920, *rec.ImageWidth, "existing dimensions stay")
	assert.Equal(t, 1080, *rec.ImageHeight)

	empty := &AnalysisRecord{}
	empty.SetDimensions(0, -1)
	assert.Nil(t, empty.ImageWidth)
	assert.Nil(t, empty.ImageHeight)
}
