package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/casesurf/casesurf/pkg/models"
)

// ErrScriptNotFound is returned when a user has no saved script under
// the given document key
var ErrScriptNotFound = errors.New("saved script not found")

// ScriptRepository provides saved script operations
type ScriptRepository struct {
	db *DB
}

// NewScriptRepository creates a new script repository
func NewScriptRepository(db *DB) *ScriptRepository {
	return &ScriptRepository{db: db}
}

// SaveScript stores a script under (user, document key), replacing any
// previous save for the same video
func (r *ScriptRepository) SaveScript(ctx context.Context, script *models.SavedScript) error {
	query := `
		INSERT INTO saved_scripts (user_id, doc_key, video_url, original_report, improved_script, saved_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, doc_key) DO UPDATE
		SET original_report = EXCLUDED.original_report,
		    improved_script = EXCLUDED.improved_script,
		    saved_at = NOW()
		RETURNING saved_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		script.UserID, script.DocKey, script.VideoURL,
		script.OriginalReport, script.ImprovedScript,
	).Scan(&script.SavedAt)

	if err != nil {
		return fmt.Errorf("failed to save script: %w", err)
	}

	return nil
}

// GetScript retrieves one saved script
func (r *ScriptRepository) GetScript(ctx context.Context, userID, docKey string) (*models.SavedScript, error) {
	var script models.SavedScript

	query := `
		SELECT user_id, doc_key, video_url, original_report, improved_script, saved_at
		FROM saved_scripts
		WHERE user_id = $1 AND doc_key = $2
	`

	err := r.db.Pool.QueryRow(ctx, query, userID, docKey).Scan(
		&script.UserID, &script.DocKey, &script.VideoURL,
		&script.OriginalReport, &script.ImprovedScript, &script.SavedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, ErrScriptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get script: %w", err)
	}

	return &script, nil
}

// ListScripts retrieves all scripts saved by a user, newest first
func (r *ScriptRepository) ListScripts(ctx context.Context, userID string) ([]*models.SavedScript, error) {
	query := `
		SELECT user_id, doc_key, video_url, original_report, improved_script, saved_at
		FROM saved_scripts
		WHERE user_id = $1
		ORDER BY saved_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}
	defer rows.Close()

	var scripts []*models.SavedScript
	for rows.Next() {
		var script models.SavedScript
		err := rows.Scan(
			&script.UserID, &script.DocKey, &script.VideoURL,
			&script.OriginalReport, &script.ImprovedScript, &script.SavedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan script: %w", err)
		}
		scripts = append(scripts, &script)
	}

	return scripts, rows.Err()
}

// DeleteScript removes a saved script
func (r *ScriptRepository) DeleteScript(ctx context.Context, userID, docKey string) error {
	query := `DELETE FROM saved_scripts WHERE user_id = $1 AND doc_key = $2`

	tag, err := r.db.Pool.Exec(ctx, query, userID, docKey)
	if err != nil {
		return fmt.Errorf("failed to delete script: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrScriptNotFound
	}

	return nil
}
