package models

// HealthLabel is the ternary session health classification.
type HealthLabel string

const (
	HealthHealthy   HealthLabel = "healthy"
	HealthDeclining HealthLabel = "declining"
	HealthPoor      HealthLabel = "poor"
)

// QuartileStat is accuracy and response time over one quartile of a session.
type QuartileStat struct {
	Quartile       int     `json:"quartile"` // 1-4
	Reviews        int     `json:"reviews"`
	Accuracy       float64 `json:"accuracy"`
	MeanResponseMs float64 `json:"mean_response_ms"`
}

// SessionHealthSnapshot is the health read of one session, retrospective or
// live. Callers receive nil instead of a snapshot when the session holds too
// few reviews to say anything.
type SessionHealthSnapshot struct {
	SessionID         string         `json:"session_id"`
	Live              bool           `json:"live"`
	Reviews           int            `json:"reviews"`
	OverallAccuracy   float64        `json:"overall_accuracy"`
	Quartiles         []QuartileStat `json:"quartiles"`
	AccuracyDelta     float64        `json:"accuracy_delta"`      // last quartile minus first
	ResponseTimeDelta float64        `json:"response_time_delta"` // ms, last quartile minus first
	Label             HealthLabel    `json:"label"`
}
