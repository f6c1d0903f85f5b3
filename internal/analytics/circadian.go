package analytics

import (
	"context"
	"time"

	"github.com/example/flashlytics/pkg/models"
)

// TimeOfDayEffects buckets the user's reviews by local hour of day and finds
// the best and worst hours by accuracy. The local hour comes from the
// session's recorded UTC offset, falling back to UTC when a session never
// reported one. All 24 buckets are always present; buckets below the minimum
// sample size keep their raw numbers but never win best/worst.
func (e *Engine) TimeOfDayEffects(ctx context.Context, userID int64) (*models.TimeOfDayEffects, error) {
	asOf := e.now()

	return cached(ctx, e, userID, "time_of_day", "", func() (*models.TimeOfDayEffects, error) {
		return e.timeOfDayEffects(ctx, userID, asOf)
	})
}

func (e *Engine) timeOfDayEffects(ctx context.Context, userID int64, asOf time.Time) (*models.TimeOfDayEffects, error) {
	events, err := e.reviews.Query(ctx, ReviewFilter{
		UserID: &userID,
		AsOf:   asOf,
	})
	if err != nil {
		return nil, err
	}
	sessions, err := e.sessions.Query(ctx, SessionFilter{UserID: &userID, AsOf: asOf})
	if err != nil {
		return nil, err
	}

	locations := make(map[string]*time.Location, len(sessions))
	for _, s := range sessions {
		locations[s.SessionID] = s.Location()
	}

	var correct, total [24]int
	var responseSum [24]float64
	for _, ev := range events {
		loc := locations[ev.SessionID]
		if loc == nil {
			loc = time.UTC
		}
		hour := ev.ReviewedAt.In(loc).Hour()
		total[hour]++
		if ev.WasCorrect {
			correct[hour]++
		}
		responseSum[hour] += float64(ev.ResponseTimeMs)
	}

	effects := &models.TimeOfDayEffects{UserID: userID}
	for hour := 0; hour < 24; hour++ {
		bucket := models.CircadianBucket{
			Hour:      hour,
			Reviews:   total[hour],
			Qualified: total[hour] >= e.cfg.MinBucketSamples,
		}
		if total[hour] > 0 {
			bucket.Accuracy = float64(correct[hour]) / float64(total[hour])
			bucket.MeanResponseMs = responseSum[hour] / float64(total[hour])
		}
		effects.Buckets = append(effects.Buckets, bucket)

		if !bucket.Qualified {
			continue
		}
		if effects.BestHour == nil || bucket.Accuracy > effects.Buckets[*effects.BestHour].Accuracy {
			h := hour
			effects.BestHour = &h
		}
		if effects.WorstHour == nil || bucket.Accuracy < effects.Buckets[*effects.WorstHour].Accuracy {
			h := hour
			effects.WorstHour = &h
		}
	}
	return effects, nil
}
