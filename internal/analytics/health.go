package analytics

import (
	"context"

	"github.com/example/flashlytics/pkg/models"
)

// SessionHealth computes the retrospective health read of a session:
// accuracy and response-time trends across its quartiles and a ternary
// label. A session with too few reviews yields a nil snapshot ("no data",
// not an error). Results are never cached: session health feeds live views.
func (e *Engine) SessionHealth(ctx context.Context, sessionID string) (*models.SessionHealthSnapshot, error) {
	return e.sessionHealth(ctx, sessionID)
}

// LiveSessionHealth is SessionHealth over the reviews recorded so far in an
// in-progress session. It recomputes from scratch on every call, so polling
// while reviews stream in always reflects the session's current shape.
func (e *Engine) LiveSessionHealth(ctx context.Context, sessionID string) (*models.SessionHealthSnapshot, error) {
	return e.sessionHealth(ctx, sessionID)
}

func (e *Engine) sessionHealth(ctx context.Context, sessionID string) (*models.SessionHealthSnapshot, error) {
	asOf := e.now()

	session, err := e.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	events, err := e.reviews.Query(ctx, ReviewFilter{
		SessionID: &sessionID,
		AsOf:      asOf,
	})
	if err != nil {
		return nil, err
	}
	if len(events) < e.cfg.MinSessionReviews {
		return nil, nil
	}

	snapshot := &models.SessionHealthSnapshot{
		SessionID:       sessionID,
		Live:            session.IsLive(),
		Reviews:         len(events),
		OverallAccuracy: accuracy(events),
	}

	n := len(events)
	for q := 0; q < 4; q++ {
		from, to := q*n/4, (q+1)*n/4
		if to <= from {
			continue
		}
		part := events[from:to]
		var responseSum float64
		for _, ev := range part {
			responseSum += float64(ev.ResponseTimeMs)
		}
		snapshot.Quartiles = append(snapshot.Quartiles, models.QuartileStat{
			Quartile:       q + 1,
			Reviews:        len(part),
			Accuracy:       accuracy(part),
			MeanResponseMs: responseSum / float64(len(part)),
		})
	}

	first := snapshot.Quartiles[0]
	last := snapshot.Quartiles[len(snapshot.Quartiles)-1]
	snapshot.AccuracyDelta = last.Accuracy - first.Accuracy
	snapshot.ResponseTimeDelta = last.MeanResponseMs - first.MeanResponseMs
	snapshot.Label = healthLabel(snapshot.AccuracyDelta, snapshot.ResponseTimeDelta, e.cfg.FatigueDropTolerance)
	return snapshot, nil
}

// healthLabel applies the fatigue drop heuristic to a single session.
func healthLabel(accuracyDelta, responseDelta, tolerance float64) models.HealthLabel {
	switch {
	case accuracyDelta <= -2*tolerance,
		accuracyDelta <= -tolerance && responseDelta > 0:
		return models.HealthPoor
	case accuracyDelta <= -tolerance:
		return models.HealthDeclining
	default:
		return models.HealthHealthy
	}
}
