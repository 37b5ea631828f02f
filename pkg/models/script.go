package models

import (
	"time"
)

// SavedScript is a per-user saved analysis document, keyed by the encoded
// form of the video URL. Saving the same video again overwrites the row.
type SavedScript struct {
	UserID         string    `json:"user_id" db:"user_id"`
	DocKey         string    `json:"doc_key" db:"doc_key"`
	VideoURL       string    `json:"video_url" db:"video_url"`
	OriginalReport string    `json:"original_report" db:"original_report"`
	ImprovedScript string    `json:"improved_script" db:"improved_script"`
	SavedAt        time.Time `json:"saved_at" db:"saved_at"`
}

// Report is the AI-generated analysis for a video URL.
type Report struct {
	Text      string `json:"text"`
	FromCache bool   `json:"from_cache"`
}
