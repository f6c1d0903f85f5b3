package models

import "time"

// SectionStatus reports whether one profile section computed successfully.
type SectionStatus string

const (
	SectionOK          SectionStatus = "ok"
	SectionUnavailable SectionStatus = "unavailable"
)

// ProfileSection wraps one sub-analysis of the composite profile so a failed
// or timed-out section degrades alone instead of failing the whole profile.
type ProfileSection[T any] struct {
	Status SectionStatus `json:"status"`
	Data   T             `json:"data,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

// LearningProfile is the composite analytics snapshot for one user.
type LearningProfile struct {
	UserID       int64                                  `json:"user_id"`
	AsOf         time.Time                              `json:"as_of"`
	Velocity     ProfileSection[*VelocityHistory]       `json:"velocity"`
	Struggles    ProfileSection[[]StruggleScore]        `json:"struggles"`
	Interference ProfileSection[[]InterferencePair]     `json:"interference"`
	Gaps         ProfileSection[*PrerequisiteGapReport] `json:"prerequisite_gaps"`
	Fatigue      ProfileSection[*FatigueAnalysis]       `json:"fatigue"`
	Circadian    ProfileSection[*TimeOfDayEffects]      `json:"time_of_day"`
}
