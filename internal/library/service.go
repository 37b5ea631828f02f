package library

import (
	"context"
	"time"

	"github.com/casesurf/casesurf/internal/logging"
	"github.com/casesurf/casesurf/internal/metrics"
	"github.com/casesurf/casesurf/pkg/models"
)

// FeedSource fetches the raw upstream video feed
type FeedSource interface {
	FetchFeed(ctx context.Context) ([]models.FeedRow, error)
}

// VideoStore is the persistent video library
type VideoStore interface {
	UpsertVideos(ctx context.Context, videos []*models.Video) error
	ListVideos(ctx context.Context) ([]*models.Video, error)
	IncrementClick(ctx context.Context, url string) error
	AddLike(ctx context.Context, url string, delta int64) error
	ListKeywords(ctx context.Context) ([]models.KeywordCount, error)
}

// SnapshotCache caches the feed snapshot and per-session like sets
type SnapshotCache interface {
	GetFeedSnapshot(ctx context.Context) (*models.FeedSnapshot, error)
	SetFeedSnapshot(ctx context.Context, snapshot *models.FeedSnapshot, ttl time.Duration) error
	AddLikedVideo(ctx context.Context, sessionID, url string, ttl time.Duration) (bool, error)
	RemoveLikedVideo(ctx context.Context, sessionID, url string) (bool, error)
	IsVideoLiked(ctx context.Context, sessionID, url string) (bool, error)
	ListLikedVideos(ctx context.Context, sessionID string) ([]string, error)
	AcquireLock(ctx context.Context, resource string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, resource string) error
}

const (
	syncLockResource = "feed-sync"
	likedSetTTL      = 30 * 24 * time.Hour
)

// Service owns the video library: feed synchronization, the filtered
// and sorted paging view, and the click and like counters.
type Service struct {
	source      FeedSource
	store       VideoStore
	cache       SnapshotCache
	snapshotTTL time.Duration
	pageSize    int
	logger      *logging.Logger
}

// NewService creates a new library service. pageSize is the page served
// when a request does not ask for a limit; values below one fall back
// to DefaultPageSize.
func NewService(source FeedSource, store VideoStore, cache SnapshotCache, snapshotTTL time.Duration, pageSize int, logger *logging.Logger) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{
		source:      source,
		store:       store,
		cache:       cache,
		snapshotTTL: snapshotTTL,
		pageSize:    pageSize,
		logger:      logger,
	}
}

// SyncFeed pulls the upstream feed, merges it into the library and
// replaces the cached snapshot. Overlapping syncs are skipped via a
// distributed lock.
func (s *Service) SyncFeed(ctx context.Context) error {
	if s.cache != nil {
		acquired, err := s.cache.AcquireLock(ctx, syncLockResource, 5*time.Minute)
		if err != nil {
			s.logger.WithError(err).Warn("feed sync lock check failed, proceeding")
		} else if !acquired {
			s.logger.Debug("feed sync already running elsewhere, skipping")
			return nil
		} else {
			defer func() {
				if err := s.cache.ReleaseLock(ctx, syncLockResource); err != nil {
					s.logger.WithError(err).Warn("failed to release feed sync lock")
				}
			}()
		}
	}

	start := time.Now()

	rows, err := s.source.FetchFeed(ctx)
	if err != nil {
		metrics.RecordFeedSync("error", time.Since(start).Seconds(), 0)
		return err
	}

	videos := make([]*models.Video, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		if row.URL == "" {
			continue
		}
		videos = append(videos, &models.Video{
			ID:          row.ID,
			URL:         row.URL,
			Description: row.Description,
			Keywords:    row.DecodeKeywords(),
			Click:       row.Click,
			Tym:         row.Tym,
			UserID:      row.UserID,
			Tags:        row.Tags,
		})
	}

	if err := s.store.UpsertVideos(ctx, videos); err != nil {
		metrics.RecordFeedSync("error", time.Since(start).Seconds(), 0)
		return err
	}

	if err := s.refreshSnapshot(ctx); err != nil {
		s.logger.WithError(err).Warn("failed to refresh feed snapshot")
	}

	metrics.RecordFeedSync("success", time.Since(start).Seconds(), len(videos))
	s.logger.WithField("videos", len(videos)).Info("feed sync complete")

	return nil
}

func (s *Service) refreshSnapshot(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	videos, err := s.store.ListVideos(ctx)
	if err != nil {
		return err
	}

	return s.cache.SetFeedSnapshot(ctx, &models.FeedSnapshot{
		Videos:    videos,
		Timestamp: time.Now(),
	}, s.snapshotTTL)
}

// ListVideos serves one library page. The cached snapshot backs the
// hot path; a miss falls through to the database and repopulates it.
func (s *Service) ListVideos(ctx context.Context, query Query) (*models.VideoPage, error) {
	videos, err := s.loadVideos(ctx)
	if err != nil {
		return nil, err
	}

	videos = filterVideos(videos, query.Filter)
	videos = sortVideos(videos, query.Sort)

	if query.Limit <= 0 {
		query.Limit = s.pageSize
	}
	return paginate(videos, query.Limit, query.Offset), nil
}

func (s *Service) loadVideos(ctx context.Context) ([]*models.Video, error) {
	if s.cache != nil {
		snapshot, err := s.cache.GetFeedSnapshot(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("feed snapshot lookup failed")
		} else if snapshot != nil {
			metrics.RecordCacheAccess("feed", true)
			return snapshot.Videos, nil
		}
		metrics.RecordCacheAccess("feed", false)
	}

	videos, err := s.store.ListVideos(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetFeedSnapshot(ctx, &models.FeedSnapshot{
			Videos:    videos,
			Timestamp: time.Now(),
		}, s.snapshotTTL); err != nil {
			s.logger.WithError(err).Warn("failed to cache feed snapshot")
		}
	}

	return videos, nil
}

// Keywords returns the aggregated keyword list
func (s *Service) Keywords(ctx context.Context) ([]models.KeywordCount, error) {
	return s.store.ListKeywords(ctx)
}

// RecordClick bumps a video's click counter
func (s *Service) RecordClick(ctx context.Context, url string) error {
	if err := s.store.IncrementClick(ctx, url); err != nil {
		return err
	}
	metrics.RecordVideoClick()
	return nil
}

// ToggleLike flips the session's like for a video and adjusts the
// counter accordingly. Returns the new liked state.
func (s *Service) ToggleLike(ctx context.Context, sessionID, url string) (bool, error) {
	liked, err := s.cache.IsVideoLiked(ctx, sessionID, url)
	if err != nil {
		return false, err
	}

	if liked {
		removed, err := s.cache.RemoveLikedVideo(ctx, sessionID, url)
		if err != nil {
			return true, err
		}
		if removed {
			if err := s.store.AddLike(ctx, url, -1); err != nil {
				return true, err
			}
			metrics.RecordVideoLike("unlike")
		}
		return false, nil
	}

	added, err := s.cache.AddLikedVideo(ctx, sessionID, url, likedSetTTL)
	if err != nil {
		return false, err
	}
	if added {
		if err := s.store.AddLike(ctx, url, 1); err != nil {
			return false, err
		}
		metrics.RecordVideoLike("like")
	}
	return true, nil
}

// LikedVideos returns the session's liked video URLs
func (s *Service) LikedVideos(ctx context.Context, sessionID string) ([]string, error) {
	return s.cache.ListLikedVideos(ctx, sessionID)
}
