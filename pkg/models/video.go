package models

import (
	"encoding/json"
	"time"
)

// Video represents a library video record. The URL is the de facto primary
// key; click and like counters may be absent for rows that were ingested
// before engagement tracking existed.
type Video struct {
	ID          int64     `json:"id" db:"id"`
	URL         string    `json:"url_tiktok" db:"url"`
	Description string    `json:"description,omitempty" db:"description"`
	Keywords    []string  `json:"keyword,omitempty" db:"keywords"`
	Click       *int64    `json:"click" db:"click"`
	Tym         *int64    `json:"tym" db:"tym"`
	UserID      string    `json:"userId,omitempty" db:"user_id"`
	Tags        VideoTags `json:"tags" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// VideoTags holds the optional marketing classification fields.
type VideoTags struct {
	Niche           string `json:"niche,omitempty" db:"niche"`
	ContentAngle    string `json:"content_angle,omitempty" db:"content_angle"`
	HookType        string `json:"hook_type,omitempty" db:"hook_type"`
	CTAType         string `json:"cta_type,omitempty" db:"cta_type"`
	TrustTactic     string `json:"trust_tactic,omitempty" db:"trust_tactic"`
	ProductType     string `json:"product_type,omitempty" db:"product_type"`
	Title           string `json:"title,omitempty" db:"title"`
	TargetPersona   string `json:"target_persona,omitempty" db:"target_persona"`
	ScriptFramework string `json:"script_framework,omitempty" db:"script_framework"`
	CoreEmotion     string `json:"core_emotion,omitempty" db:"core_emotion"`
}

// Clicks returns the click counter with absent values counted as zero.
func (v *Video) Clicks() int64 {
	if v.Click == nil {
		return 0
	}
	return *v.Click
}

// Likes returns the like counter with absent values counted as zero.
func (v *Video) Likes() int64 {
	if v.Tym == nil {
		return 0
	}
	return *v.Tym
}

// VideoPage is one page of a filtered, sorted library view.
type VideoPage struct {
	Videos  []*Video `json:"videos"`
	Total   int      `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
	HasMore bool     `json:"has_more"`
}

// FeedSnapshot is the cached library list together with its fetch time.
// A fresh sync always supersedes the snapshot.
type FeedSnapshot struct {
	Videos    []*Video  `json:"videos"`
	Timestamp time.Time `json:"timestamp"`
}

// KeywordCount is one entry of the aggregated keyword list.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// FeedRow is a raw video row as returned by the upstream data feed. The
// keyword field arrives either as a JSON array or as a JSON-encoded string
// depending on the upstream revision.
type FeedRow struct {
	ID          int64           `json:"id"`
	URL         string          `json:"url_tiktok"`
	Description string          `json:"description"`
	Keyword     json.RawMessage `json:"keyword"`
	Click       *int64          `json:"click"`
	Tym         *int64          `json:"tym"`
	UserID      string          `json:"userId"`
	Tags        VideoTags       `json:"tags"`
}

// DecodeKeywords normalizes the keyword field across upstream revisions.
// It never returns nil, so the stored column is always a JSON array.
func (r *FeedRow) DecodeKeywords() []string {
	if len(r.Keyword) == 0 {
		return []string{}
	}

	var keywords []string
	if err := json.Unmarshal(r.Keyword, &keywords); err == nil && keywords != nil {
		return keywords
	}

	// Older rows double-encode the array as a JSON string.
	var encoded string
	if err := json.Unmarshal(r.Keyword, &encoded); err != nil {
		return []string{}
	}
	if err := json.Unmarshal([]byte(encoded), &keywords); err != nil || keywords == nil {
		return []string{}
	}
	return keywords
}
