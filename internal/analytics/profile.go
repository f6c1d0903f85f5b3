package analytics

import (
	"context"
	"errors"

	"github.com/example/flashlytics/pkg/models"
)

// UserLearningProfile aggregates velocity, struggle and the four pattern
// analyses into one composite snapshot. The as-of instant is pinned once and
// threaded through every sub-analysis so all sections observe the same data.
// Each sub-analysis runs isolated: a failure or timeout in one degrades only
// that section to "unavailable" and the rest of the profile is still returned.
func (e *Engine) UserLearningProfile(ctx context.Context, userID int64) (*models.LearningProfile, error) {
	asOf := e.now()
	profile := &models.LearningProfile{UserID: userID, AsOf: asOf}

	profile.Velocity = section(func() (*models.VelocityHistory, error) {
		return e.velocityHistory(ctx, userID, e.cfg.DefaultVelocityWeeks, asOf)
	})
	profile.Struggles = section(func() ([]models.StruggleScore, error) {
		return e.strugglingCards(ctx, userID, 0, e.cfg.DefaultStruggleLimit, asOf)
	})
	profile.Interference = section(func() ([]models.InterferencePair, error) {
		return e.interferencePairs(ctx, userID, nil, asOf)
	})
	profile.Gaps = section(func() (*models.PrerequisiteGapReport, error) {
		return e.prerequisiteGaps(ctx, userID, nil, asOf)
	})
	profile.Fatigue = section(func() (*models.FatigueAnalysis, error) {
		return e.fatigueAnalysis(ctx, userID, asOf)
	})
	profile.Circadian = section(func() (*models.TimeOfDayEffects, error) {
		return e.timeOfDayEffects(ctx, userID, asOf)
	})

	return profile, nil
}

// section runs one sub-analysis and folds its outcome into the per-section
// status instead of letting it fail the composite.
func section[T any](compute func() (T, error)) models.ProfileSection[T] {
	data, err := compute()
	if err != nil {
		return models.ProfileSection[T]{
			Status: models.SectionUnavailable,
			Reason: sectionReason(err),
		}
	}
	return models.ProfileSection[T]{Status: models.SectionOK, Data: data}
}

func sectionReason(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrRangeTooLarge):
		return "range_too_large"
	case errors.Is(err, ErrNotFound):
		return "no_data"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
