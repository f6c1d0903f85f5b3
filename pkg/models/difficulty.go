package models

// CardDifficultyMetric aggregates a card's difficulty across every user who
// reviewed it. UserMetrics and Percentile are only present when a comparison
// user was requested; Percentile stays nil below the minimum population size.
type CardDifficultyMetric struct {
	CardID         int64            `json:"card_id"`
	ReviewCount    int              `json:"review_count"`
	DistinctUsers  int              `json:"distinct_users"`
	MeanEaseFactor float64          `json:"mean_ease_factor"`
	LapseRate      float64          `json:"lapse_rate"`
	MeanResponseMs float64          `json:"mean_response_ms"`
	UserMetrics    *UserCardMetrics `json:"user_metrics,omitempty"`
	Percentile     *float64         `json:"percentile,omitempty"` // comparison user's accuracy rank, nearest-rank
}

// UserCardMetrics is one user's own performance on a card.
type UserCardMetrics struct {
	UserID         int64   `json:"user_id"`
	ReviewCount    int     `json:"review_count"`
	Accuracy       float64 `json:"accuracy"`
	LapseRate      float64 `json:"lapse_rate"`
	MeanResponseMs float64 `json:"mean_response_ms"`
}

// HardestCard is one entry of a deck's difficulty ranking.
type HardestCard struct {
	CardID         int64   `json:"card_id"`
	Score          float64 `json:"score"` // blended min-max normalized lapse rate and response time
	LapseRate      float64 `json:"lapse_rate"`
	MeanResponseMs float64 `json:"mean_response_ms"`
	ReviewCount    int     `json:"review_count"`
}
