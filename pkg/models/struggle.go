package models

import "time"

// StruggleScore is the [0,1] composite struggle signal for one card:
// recency-weighted error rate, lapse count and response-time excess blended
// by configured weights.
type StruggleScore struct {
	CardID         int64     `json:"card_id"`
	DeckID         int64     `json:"deck_id"`
	Score          float64   `json:"score"`
	ErrorRate      float64   `json:"error_rate"` // recency-weighted
	LapseCount     int       `json:"lapse_count"`
	ResponseExcess float64   `json:"response_excess"` // vs the user's own median response time
	ReviewCount    int       `json:"review_count"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
}

// DeckStruggles is the top struggling cards within one deck.
type DeckStruggles struct {
	DeckID int64           `json:"deck_id"`
	Cards  []StruggleScore `json:"cards"`
}
