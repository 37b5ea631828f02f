package library

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/casesurf/casesurf/internal/cache"
	"github.com/casesurf/casesurf/internal/logging"
	"github.com/casesurf/casesurf/pkg/models"
)

type mockFeedSource struct {
	mock.Mock
}

func (m *mockFeedSource) FetchFeed(ctx context.Context) ([]models.FeedRow, error) {
	args := m.Called(ctx)
	if rows := args.Get(0); rows != nil {
		return rows.([]models.FeedRow), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockVideoStore struct {
	mock.Mock
}

func (m *mockVideoStore) UpsertVideos(ctx context.Context, videos []*models.Video) error {
	args := m.Called(ctx, videos)
	return args.Error(0)
}

func (m *mockVideoStore) ListVideos(ctx context.Context) ([]*models.Video, error) {
	args := m.Called(ctx)
	if videos := args.Get(0); videos != nil {
		return videos.([]*models.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVideoStore) IncrementClick(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *mockVideoStore) AddLike(ctx context.Context, url string, delta int64) error {
	args := m.Called(ctx, url, delta)
	return args.Error(0)
}

func (m *mockVideoStore) ListKeywords(ctx context.Context) ([]models.KeywordCount, error) {
	args := m.Called(ctx)
	if keywords := args.Get(0); keywords != nil {
		return keywords.([]models.KeywordCount), args.Error(1)
	}
	return nil, args.Error(1)
}

func setupService(t *testing.T, source FeedSource, store VideoStore) (*Service, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	c, err := cache.NewCache(mr.Host(), mr.Server().Addr().Port, "", 0)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	return NewService(source, store, c, 30*time.Minute, 0, logging.NewNopLogger()), mr
}

func TestSyncFeed(t *testing.T) {
	source := new(mockFeedSource)
	store := new(mockVideoStore)

	click := int64(3)
	source.On("FetchFeed", mock.Anything).Return([]models.FeedRow{
		{ID: 1, URL: "https://www.tiktok.com/@a/video/1", Description: "demo", Keyword: []byte(`["skincare"]`), Click: &click},
		{ID: 2, URL: "https://www.tiktok.com/@b/video/2", Keyword: []byte(`"[\"gadget\"]"`)},
		{ID: 3, URL: ""}, // rows without a URL are dropped
	}, nil)

	store.On("UpsertVideos", mock.Anything, mock.MatchedBy(func(videos []*models.Video) bool {
		return len(videos) == 2 &&
			videos[0].Keywords[0] == "skincare" &&
			videos[1].Keywords[0] == "gadget"
	})).Return(nil)
	store.On("ListVideos", mock.Anything).Return([]*models.Video{
		{ID: 1, URL: "https://www.tiktok.com/@a/video/1"},
		{ID: 2, URL: "https://www.tiktok.com/@b/video/2"},
	}, nil)

	svc, _ := setupService(t, source, store)

	err := svc.SyncFeed(context.Background())
	require.NoError(t, err)

	store.AssertCalled(t, "UpsertVideos", mock.Anything, mock.Anything)

	// The snapshot now backs reads without touching the store again
	page, err := svc.ListVideos(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	store.AssertNumberOfCalls(t, "ListVideos", 1)
}

func TestSyncFeedNormalizesMissingKeywords(t *testing.T) {
	source := new(mockFeedSource)
	store := new(mockVideoStore)

	source.On("FetchFeed", mock.Anything).Return([]models.FeedRow{
		{ID: 1, URL: "https://www.tiktok.com/@a/video/1"},
		{ID: 2, URL: "https://www.tiktok.com/@b/video/2", Keyword: []byte(`null`)},
	}, nil)

	// Keyword-less rows must reach the store as an empty array, not nil,
	// so the stored column stays a JSON array
	store.On("UpsertVideos", mock.Anything, mock.MatchedBy(func(videos []*models.Video) bool {
		for _, v := range videos {
			if v.Keywords == nil {
				return false
			}
		}
		return len(videos) == 2
	})).Return(nil)
	store.On("ListVideos", mock.Anything).Return([]*models.Video{}, nil)

	svc, _ := setupService(t, source, store)

	err := svc.SyncFeed(context.Background())
	require.NoError(t, err)

	store.AssertExpectations(t)
}

func TestListVideosFallsBackToStore(t *testing.T) {
	store := new(mockVideoStore)
	store.On("ListVideos", mock.Anything).Return([]*models.Video{
		{ID: 1, URL: "https://www.tiktok.com/@a/video/1", Keywords: []string{"skincare"}},
		{ID: 2, URL: "https://www.tiktok.com/@b/video/2", Keywords: []string{"gadget"}},
	}, nil)

	svc, _ := setupService(t, nil, store)

	// First read misses the snapshot and hits the store
	page, err := svc.ListVideos(context.Background(), Query{Filter: "gadget"})
	require.NoError(t, err)
	require.Len(t, page.Videos, 1)
	assert.Equal(t, int64(2), page.Videos[0].ID)

	// Second read is served from the repopulated snapshot
	_, err = svc.ListVideos(context.Background(), Query{})
	require.NoError(t, err)
	store.AssertNumberOfCalls(t, "ListVideos", 1)
}

func TestListVideosUsesConfiguredPageSize(t *testing.T) {
	videos := make([]*models.Video, 10)
	for i := range videos {
		videos[i] = &models.Video{ID: int64(i + 1), URL: "https://www.tiktok.com/@a/video/" + string(rune('0'+i))}
	}

	store := new(mockVideoStore)
	store.On("ListVideos", mock.Anything).Return(videos, nil)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	c, err := cache.NewCache(mr.Host(), mr.Server().Addr().Port, "", 0)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	svc := NewService(nil, store, c, 30*time.Minute, 4, logging.NewNopLogger())

	// No explicit limit serves the configured page size
	page, err := svc.ListVideos(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, page.Videos, 4)
	assert.Equal(t, 4, page.Limit)
	assert.True(t, page.HasMore)

	// An explicit limit still wins
	page, err = svc.ListVideos(context.Background(), Query{Limit: 7})
	require.NoError(t, err)
	assert.Len(t, page.Videos, 7)
}

func TestRecordClick(t *testing.T) {
	store := new(mockVideoStore)
	store.On("IncrementClick", mock.Anything, "https://www.tiktok.com/@a/video/1").Return(nil)

	svc, _ := setupService(t, nil, store)

	err := svc.RecordClick(context.Background(), "https://www.tiktok.com/@a/video/1")
	require.NoError(t, err)

	store.AssertCalled(t, "IncrementClick", mock.Anything, "https://www.tiktok.com/@a/video/1")
}

func TestToggleLike(t *testing.T) {
	store := new(mockVideoStore)
	url := "https://www.tiktok.com/@a/video/1"
	store.On("AddLike", mock.Anything, url, int64(1)).Return(nil)
	store.On("AddLike", mock.Anything, url, int64(-1)).Return(nil)

	svc, _ := setupService(t, nil, store)
	ctx := context.Background()

	// First toggle likes
	liked, err := svc.ToggleLike(ctx, "session-1", url)
	require.NoError(t, err)
	assert.True(t, liked)
	store.AssertCalled(t, "AddLike", mock.Anything, url, int64(1))

	// Second toggle unlikes
	liked, err = svc.ToggleLike(ctx, "session-1", url)
	require.NoError(t, err)
	assert.False(t, liked)
	store.AssertCalled(t, "AddLike", mock.Anything, url, int64(-1))

	// Another session likes independently
	liked, err = svc.ToggleLike(ctx, "session-2", url)
	require.NoError(t, err)
	assert.True(t, liked)

	store.AssertNumberOfCalls(t, "AddLike", 3)
}

func TestLikedVideos(t *testing.T) {
	store := new(mockVideoStore)
	store.On("AddLike", mock.Anything, mock.Anything, int64(1)).Return(nil)

	svc, _ := setupService(t, nil, store)
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, "session-1", "https://www.tiktok.com/@a/video/1")
	require.NoError(t, err)

	urls, err := svc.LikedVideos(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.tiktok.com/@a/video/1"}, urls)
}

func TestKeywords(t *testing.T) {
	store := new(mockVideoStore)
	store.On("ListKeywords", mock.Anything).Return([]models.KeywordCount{
		{Keyword: "skincare", Count: 12},
		{Keyword: "gadget", Count: 4},
	}, nil)

	svc, _ := setupService(t, nil, store)

	keywords, err := svc.Keywords(context.Background())
	require.NoError(t, err)
	require.Len(t, keywords, 2)
	assert.Equal(t, "skincare", keywords[0].Keyword)
}
