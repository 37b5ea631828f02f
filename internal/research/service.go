package research

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/casesurf/casesurf/internal/database"
	"github.com/casesurf/casesurf/internal/logging"
	"github.com/casesurf/casesurf/internal/metrics"
	"github.com/casesurf/casesurf/internal/scripts"
	"github.com/casesurf/casesurf/pkg/models"
)

// ReportGenerator produces analysis reports from the backend
type ReportGenerator interface {
	GenerateReport(ctx context.Context, product, userID string) (string, error)
}

// ReportCache stores generated reports keyed by document key
type ReportCache interface {
	GetReport(ctx context.Context, docKey string) (string, error)
	SetReport(ctx context.Context, docKey, text string, ttl time.Duration) error
}

// ScriptStore reads a user's saved scripts
type ScriptStore interface {
	GetScript(ctx context.Context, userID, docKey string) (*models.SavedScript, error)
}

// VideoStore reads and annotates library rows. A generated report is
// written back onto the matching video row so later visitors get it
// without another generation.
type VideoStore interface {
	GetVideo(ctx context.Context, url string) (*models.Video, error)
	SetDescription(ctx context.Context, url, description string) error
}

// Archiver stores raw generation payloads for audit
type Archiver interface {
	ArchiveGeneration(ctx context.Context, kind string, payload []byte) (string, error)
}

// Service produces video analysis reports. Generation is free but
// expensive, so a saved document or cached report short-circuits the
// backend call.
type Service struct {
	backend  ReportGenerator
	cache    ReportCache
	saved    ScriptStore
	videos   VideoStore
	archive  Archiver
	cacheTTL time.Duration
	logger   *logging.Logger
}

// NewService creates a new research service. cache, saved, videos and
// archive may be nil when those integrations are disabled.
func NewService(backend ReportGenerator, cache ReportCache, saved ScriptStore, videos VideoStore, archive Archiver, cacheTTL time.Duration, logger *logging.Logger) *Service {
	return &Service{
		backend:  backend,
		cache:    cache,
		saved:    saved,
		videos:   videos,
		archive:  archive,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// GenerateReport returns the analysis report for a video URL or product
// description. userID may be empty for anonymous visitors.
func (s *Service) GenerateReport(ctx context.Context, product, userID string) (*models.Report, error) {
	docKey := scripts.EncodeDocKey(product)

	// A previously saved document already carries the report
	if s.saved != nil && userID != "" {
		saved, err := s.saved.GetScript(ctx, userID, docKey)
		if err == nil && saved.OriginalReport != "" {
			metrics.RecordCacheAccess("report", true)
			return &models.Report{Text: saved.OriginalReport, FromCache: true}, nil
		}
		if err != nil && !errors.Is(err, database.ErrScriptNotFound) {
			s.logger.WithUserID(userID).WithError(err).Warn("failed to check saved document")
		}
	}

	// Library rows carry the report in their description once one has
	// been generated
	if s.videos != nil {
		video, err := s.videos.GetVideo(ctx, product)
		if err == nil && video.Description != "" {
			metrics.RecordCacheAccess("report", true)
			return &models.Report{Text: video.Description, FromCache: true}, nil
		}
		if err != nil && !errors.Is(err, database.ErrVideoNotFound) {
			s.logger.WithVideoURL(product).WithError(err).Warn("failed to check video row")
		}
	}

	if s.cache != nil {
		cached, err := s.cache.GetReport(ctx, docKey)
		if err != nil {
			s.logger.WithError(err).Warn("report cache lookup failed")
		} else if cached != "" {
			metrics.RecordCacheAccess("report", true)
			return &models.Report{Text: cached, FromCache: true}, nil
		}
	}
	metrics.RecordCacheAccess("report", false)

	start := time.Now()
	text, err := s.backend.GenerateReport(ctx, product, userID)
	if err != nil {
		metrics.RecordGeneration("report", "error", time.Since(start).Seconds())
		s.logger.LogGenerationEvent(userID, "report", 0, time.Since(start), err)
		return nil, err
	}

	metrics.RecordGeneration("report", "success", time.Since(start).Seconds())
	s.logger.LogGenerationEvent(userID, "report", 0, time.Since(start), nil)

	if s.cache != nil {
		if err := s.cache.SetReport(ctx, docKey, text, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("failed to cache report")
		}
	}

	if s.videos != nil {
		if err := s.videos.SetDescription(ctx, product, text); err != nil {
			s.logger.WithVideoURL(product).WithError(err).Warn("failed to persist report on video row")
		}
	}

	s.archivePayload(ctx, product, userID, text)

	return &models.Report{Text: text}, nil
}

func (s *Service) archivePayload(ctx context.Context, product, userID, text string) {
	if s.archive == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"product":      product,
		"user_id":      userID,
		"result":       text,
		"generated_at": time.Now().UTC(),
	})
	if err != nil {
		return
	}

	// Best effort, the report is already on its way to the caller
	if _, err := s.archive.ArchiveGeneration(ctx, "report", payload); err != nil {
		s.logger.WithError(err).Warn("failed to archive report payload")
	}
}
