package models

// Confidence qualifies an analysis result by its sample size.
type Confidence string

const (
	ConfidenceLow  Confidence = "low"
	ConfidenceHigh Confidence = "high"
)

// InterferencePair is an unordered pair of cards the learner appears to
// confuse: reviews of the two in close proximity fail together more often
// than each card's own error rate explains.
type InterferencePair struct {
	CardA          int64   `json:"card_a"`
	CardB          int64   `json:"card_b"`
	Cooccurrences  int     `json:"cooccurrences"`
	JointErrorRate float64 `json:"joint_error_rate"`
	ErrorRateA     float64 `json:"error_rate_a"`
	ErrorRateB     float64 `json:"error_rate_b"`
	Strength       float64 `json:"strength"` // joint rate over the larger independent rate
}

// PrerequisiteGap flags a struggling card whose declared prerequisites are
// themselves weak.
type PrerequisiteGap struct {
	CardID              int64   `json:"card_id"`
	StruggleScore       float64 `json:"struggle_score"`
	WeakPrerequisiteIDs []int64 `json:"weak_prerequisite_ids"`
}

// PrerequisiteGapReport carries the gap list together with the graph state;
// GraphKnown false means no prerequisite data exists for the scope, which is
// an input condition rather than "no gaps".
type PrerequisiteGapReport struct {
	GraphKnown bool              `json:"graph_known"`
	Gaps       []PrerequisiteGap `json:"gaps"`
}

// FatigueCurvePoint is aggregate accuracy and response time at one review
// position across sessions.
type FatigueCurvePoint struct {
	Position       int     `json:"position"`
	Accuracy       float64 `json:"accuracy"`
	MeanResponseMs float64 `json:"mean_response_ms"`
	Samples        int     `json:"samples"`
}

// FatigueAnalysis summarizes where in a session performance typically breaks
// down. RecommendedLength is nil when no session ever showed a breakdown.
type FatigueAnalysis struct {
	UserID            int64               `json:"user_id"`
	SessionsAnalyzed  int                 `json:"sessions_analyzed"`
	SessionsWithDecay int                 `json:"sessions_with_decay"`
	RecommendedLength *int                `json:"recommended_length"` // reviews before fatigue, median across sessions
	Curve             []FatigueCurvePoint `json:"curve"`
	Confidence        Confidence          `json:"confidence"`
}

// CircadianBucket is one local hour-of-day bucket of review performance.
// Buckets below the minimum sample size keep their raw numbers but are
// excluded from best/worst selection.
type CircadianBucket struct {
	Hour           int     `json:"hour"`
	Reviews        int     `json:"reviews"`
	Accuracy       float64 `json:"accuracy"`
	MeanResponseMs float64 `json:"mean_response_ms"`
	Qualified      bool    `json:"qualified"`
}

// TimeOfDayEffects is the full 24-bucket circadian profile. BestHour and
// WorstHour are nil when no bucket reaches the minimum sample size.
type TimeOfDayEffects struct {
	UserID    int64             `json:"user_id"`
	Buckets   []CircadianBucket `json:"buckets"`
	BestHour  *int              `json:"best_hour"`
	WorstHour *int              `json:"worst_hour"`
}
