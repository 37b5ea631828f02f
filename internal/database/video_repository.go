package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/casesurf/casesurf/pkg/models"
)

// ErrVideoNotFound is returned when no video matches the given URL
var ErrVideoNotFound = errors.New("video not found")

// VideoRepository provides video library operations
type VideoRepository struct {
	db *DB
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// UpsertVideos merges a synced feed batch into the library. Metadata
// is refreshed on conflict while locally accumulated click and like
// counters are preserved.
func (r *VideoRepository) UpsertVideos(ctx context.Context, videos []*models.Video) error {
	if len(videos) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO videos (url, description, keywords, click, tym, user_id, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (url) DO UPDATE
		SET description = EXCLUDED.description,
		    keywords = EXCLUDED.keywords,
		    user_id = EXCLUDED.user_id,
		    tags = EXCLUDED.tags,
		    updated_at = NOW()
	`

	for _, video := range videos {
		batch.Queue(query,
			video.URL, video.Description, video.Keywords,
			video.Click, video.Tym, video.UserID, video.Tags,
		)
	}

	results := r.db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	for range videos {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert videos: %w", err)
		}
	}

	return nil
}

// GetVideo retrieves a video by URL
func (r *VideoRepository) GetVideo(ctx context.Context, url string) (*models.Video, error) {
	var video models.Video

	query := `
		SELECT id, url, description, keywords, click, tym, user_id, tags, created_at, updated_at
		FROM videos
		WHERE url = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, url).Scan(
		&video.ID, &video.URL, &video.Description, &video.Keywords,
		&video.Click, &video.Tym, &video.UserID, &video.Tags,
		&video.CreatedAt, &video.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	return &video, nil
}

// SetDescription writes a generated report onto the video row. URLs
// that never appeared in the feed have no row and are silently skipped.
func (r *VideoRepository) SetDescription(ctx context.Context, url, description string) error {
	query := `UPDATE videos SET description = $2, updated_at = NOW() WHERE url = $1`

	if _, err := r.db.Pool.Exec(ctx, query, url, description); err != nil {
		return fmt.Errorf("failed to set description: %w", err)
	}

	return nil
}

// ListVideos retrieves the whole library in insertion order
func (r *VideoRepository) ListVideos(ctx context.Context) ([]*models.Video, error) {
	query := `
		SELECT id, url, description, keywords, click, tym, user_id, tags, created_at, updated_at
		FROM videos
		ORDER BY id ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []*models.Video
	for rows.Next() {
		var video models.Video
		err := rows.Scan(
			&video.ID, &video.URL, &video.Description, &video.Keywords,
			&video.Click, &video.Tym, &video.UserID, &video.Tags,
			&video.CreatedAt, &video.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, &video)
	}

	return videos, rows.Err()
}

// IncrementClick bumps the click counter for a video
func (r *VideoRepository) IncrementClick(ctx context.Context, url string) error {
	query := `
		UPDATE videos
		SET click = COALESCE(click, 0) + 1, updated_at = NOW()
		WHERE url = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, url)
	if err != nil {
		return fmt.Errorf("failed to increment click: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVideoNotFound
	}

	return nil
}

// AddLike adjusts the like counter by delta, floored at zero
func (r *VideoRepository) AddLike(ctx context.Context, url string, delta int64) error {
	query := `
		UPDATE videos
		SET tym = GREATEST(COALESCE(tym, 0) + $2, 0), updated_at = NOW()
		WHERE url = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, url, delta)
	if err != nil {
		return fmt.Errorf("failed to update likes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVideoNotFound
	}

	return nil
}

// ListKeywords returns every distinct keyword with its video count,
// most frequent first
func (r *VideoRepository) ListKeywords(ctx context.Context) ([]models.KeywordCount, error) {
	// Rows synced before keyword extraction may hold a JSON null instead
	// of an array, which jsonb_array_elements_text rejects
	query := `
		SELECT kw, COUNT(*) AS cnt
		FROM videos, jsonb_array_elements_text(keywords) AS kw
		WHERE jsonb_typeof(keywords) = 'array'
		GROUP BY kw
		ORDER BY cnt DESC, kw ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	defer rows.Close()

	var keywords []models.KeywordCount
	for rows.Next() {
		var kc models.KeywordCount
		if err := rows.Scan(&kc.Keyword, &kc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}
		keywords = append(keywords, kc)
	}

	return keywords, rows.Err()
}
