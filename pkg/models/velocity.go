package models

import "time"

// TrendDirection classifies the slope of a velocity series.
type TrendDirection string

const (
	TrendAccelerating TrendDirection = "accelerating"
	TrendDecelerating TrendDirection = "decelerating"
	TrendStable       TrendDirection = "stable"
)

// VelocityPoint is one ISO-week bucket of mastery transitions.
type VelocityPoint struct {
	WeekStart     time.Time `json:"week_start"`
	MasteredCount int       `json:"mastered_count"`
}

// VelocityHistory is the per-week mastery series for a user. Trend is nil
// when fewer than three non-empty buckets exist.
type VelocityHistory struct {
	UserID int64           `json:"user_id"`
	Weeks  []VelocityPoint `json:"weeks"`
	Trend  *TrendDirection `json:"trend"`
	Slope  float64         `json:"slope"` // mastered cards per week, OLS fit
}

// DailySummaryPoint is one calendar day of review activity. Days with no
// activity are present with zero counts so charts get a contiguous series.
type DailySummaryPoint struct {
	Date        time.Time `json:"date"`
	Reviews     int       `json:"reviews"`
	Correct     int       `json:"correct"`
	Incorrect   int       `json:"incorrect"`
	StudyTimeMs int64     `json:"study_time_ms"`
}

// DailySummary is the contiguous per-day activity series for a user.
type DailySummary struct {
	UserID int64               `json:"user_id"`
	Days   []DailySummaryPoint `json:"days"`
}
