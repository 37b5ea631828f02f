package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casesurf/casesurf/pkg/models"
)

func ptr(v int64) *int64 {
	return &v
}

func sampleVideos() []*models.Video {
	return []*models.Video{
		{
			ID:          1,
			URL:         "https://www.tiktok.com/@a/video/1",
			Description: "Morning skincare routine",
			Keywords:    []string{"skincare", "serum"},
			Click:       ptr(5),
			Tym:         ptr(2),
			Tags:        models.VideoTags{Niche: "Beauty", HookType: "question"},
		},
		{
			ID:          2,
			URL:         "https://www.tiktok.com/@b/video/2",
			Description: "Desk gadget unboxing",
			Keywords:    []string{"gadget"},
			Click:       ptr(9),
			Tym:         nil,
			Tags:        models.VideoTags{Niche: "Tech"},
		},
		{
			ID:          3,
			URL:         "https://www.tiktok.com/@c/video/3",
			Description: "Budget meal prep",
			Keywords:    []string{"cooking", "mealprep"},
			Click:       nil,
			Tym:         ptr(7),
		},
		{
			ID:          4,
			URL:         "https://www.tiktok.com/@d/video/4",
			Description: "Skincare myths debunked",
			Keywords:    []string{"SKINCARE"},
			Click:       ptr(9),
			Tym:         ptr(2),
		},
	}
}

func TestFilterVideosByURL(t *testing.T) {
	videos := sampleVideos()

	matched := filterVideos(videos, "https://www.tiktok.com/@b/video/2")
	require.Len(t, matched, 1)
	assert.Equal(t, int64(2), matched[0].ID)

	// An unknown URL matches nothing even when keywords would
	matched = filterVideos(videos, "https://www.tiktok.com/@z/video/999")
	assert.Empty(t, matched)
}

func TestFilterVideosByKeyword(t *testing.T) {
	videos := sampleVideos()

	// Case-insensitive on both sides
	matched := filterVideos(videos, "SkinCare")
	require.Len(t, matched, 2)
	assert.Equal(t, int64(1), matched[0].ID)
	assert.Equal(t, int64(4), matched[1].ID)
}

func TestFilterVideosByTag(t *testing.T) {
	videos := sampleVideos()

	matched := filterVideos(videos, "tech")
	require.Len(t, matched, 1)
	assert.Equal(t, int64(2), matched[0].ID)
}

func TestFilterVideosByDescription(t *testing.T) {
	videos := sampleVideos()

	matched := filterVideos(videos, "meal prep")
	require.Len(t, matched, 1)
	assert.Equal(t, int64(3), matched[0].ID)
}

func TestFilterVideosEmpty(t *testing.T) {
	videos := sampleVideos()

	assert.Len(t, filterVideos(videos, ""), len(videos))
	assert.Len(t, filterVideos(videos, "   "), len(videos))
}

func TestSortVideosDefault(t *testing.T) {
	videos := sampleVideos()
	// Shuffle the input order
	shuffled := []*models.Video{videos[2], videos[0], videos[3], videos[1]}

	sorted := sortVideos(shuffled, SortDefault)

	ids := []int64{sorted[0].ID, sorted[1].ID, sorted[2].ID, sorted[3].ID}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)

	// Input slice is untouched
	assert.Equal(t, int64(3), shuffled[0].ID)
}

func TestSortVideosClickDesc(t *testing.T) {
	sorted := sortVideos(sampleVideos(), SortClickDesc)

	ids := []int64{sorted[0].ID, sorted[1].ID, sorted[2].ID, sorted[3].ID}

	// Videos 2 and 4 tie at 9 clicks and keep their relative order;
	// the nil counter sorts as zero, last
	assert.Equal(t, []int64{2, 4, 1, 3}, ids)
}

func TestSortVideosTymDesc(t *testing.T) {
	sorted := sortVideos(sampleVideos(), SortTymDesc)

	ids := []int64{sorted[0].ID, sorted[1].ID, sorted[2].ID, sorted[3].ID}

	// Videos 1 and 4 tie at 2 likes, stable; nil sorts as zero
	assert.Equal(t, []int64{3, 1, 4, 2}, ids)
}

func TestPaginate(t *testing.T) {
	videos := sampleVideos()

	page := paginate(videos, 2, 0)
	assert.Len(t, page.Videos, 2)
	assert.Equal(t, 4, page.Total)
	assert.True(t, page.HasMore)

	page = paginate(videos, 2, 2)
	assert.Len(t, page.Videos, 2)
	assert.False(t, page.HasMore)

	// Offset past the end yields an empty page, not an error
	page = paginate(videos, 2, 10)
	assert.Empty(t, page.Videos)
	assert.Equal(t, 4, page.Total)
	assert.False(t, page.HasMore)
}

func TestPaginateDefaults(t *testing.T) {
	videos := make([]*models.Video, 30)
	for i := range videos {
		videos[i] = &models.Video{ID: int64(i + 1)}
	}

	page := paginate(videos, 0, -5)
	assert.Len(t, page.Videos, DefaultPageSize)
	assert.Equal(t, 0, page.Offset)
	assert.True(t, page.HasMore)
}
