package models

import "time"

// ReviewEvent is a single card review from the append-only review log.
// Rows are written by the scheduler pipeline; this engine only reads them.
type ReviewEvent struct {
	ID              int64     `json:"id" db:"id"`
	UserID          int64     `json:"user_id" db:"user_id"`
	CardID          int64     `json:"card_id" db:"card_id"`
	DeckID          int64     `json:"deck_id" db:"deck_id"`
	SessionID       string    `json:"session_id" db:"session_id"`
	ReviewedAt      time.Time `json:"reviewed_at" db:"reviewed_at"`
	ResponseQuality int       `json:"response_quality" db:"response_quality"` // 1-5 recall rating
	ResponseTimeMs  int       `json:"response_time_ms" db:"response_time_ms"`
	IntervalBefore  float64   `json:"interval_before" db:"interval_before"` // days, from the scheduler
	IntervalAfter   float64   `json:"interval_after" db:"interval_after"`   // days, from the scheduler
	EaseFactor      float64   `json:"ease_factor" db:"ease_factor"`
	WasCorrect      bool      `json:"was_correct" db:"was_correct"`
}
