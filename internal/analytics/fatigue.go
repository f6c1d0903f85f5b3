package analytics

import (
	"context"
	"time"

	"github.com/example/flashlytics/pkg/models"
)

// Review positions beyond this are not reported in the aggregate curve;
// sessions that long are far past every breakpoint of interest.
const fatigueCurveMaxPositions = 50

// FatigueAnalysis estimates how deep into a session the user's performance
// typically degrades. Each qualifying session is checked against its own
// first-quartile baseline; the recommendation is the median breakpoint across
// sessions. Below the minimum session count the result carries a low
// confidence flag instead of being withheld.
func (e *Engine) FatigueAnalysis(ctx context.Context, userID int64) (*models.FatigueAnalysis, error) {
	asOf := e.now()

	return cached(ctx, e, userID, "fatigue", "", func() (*models.FatigueAnalysis, error) {
		return e.fatigueAnalysis(ctx, userID, asOf)
	})
}

func (e *Engine) fatigueAnalysis(ctx context.Context, userID int64, asOf time.Time) (*models.FatigueAnalysis, error) {
	windowStart := asOf.AddDate(0, 0, -e.cfg.StruggleWindowDays)
	events, err := e.reviews.Query(ctx, ReviewFilter{
		UserID: &userID,
		From:   &windowStart,
		AsOf:   asOf,
	})
	if err != nil {
		return nil, err
	}

	bySession := make(map[string][]models.ReviewEvent)
	var sessionOrder []string
	for _, ev := range events {
		if _, seen := bySession[ev.SessionID]; !seen {
			sessionOrder = append(sessionOrder, ev.SessionID)
		}
		bySession[ev.SessionID] = append(bySession[ev.SessionID], ev)
	}

	analysis := &models.FatigueAnalysis{UserID: userID}

	var (
		breakpoints []int
		curveAcc    [fatigueCurveMaxPositions]struct {
			correct, total int
			responseSum    float64
		}
	)
	for _, sessionID := range sessionOrder {
		session := bySession[sessionID]
		if len(session) < e.cfg.MinSessionReviews {
			continue
		}
		analysis.SessionsAnalyzed++

		for i, ev := range session {
			if i >= fatigueCurveMaxPositions {
				break
			}
			curveAcc[i].total++
			if ev.WasCorrect {
				curveAcc[i].correct++
			}
			curveAcc[i].responseSum += float64(ev.ResponseTimeMs)
		}

		if bp, ok := sessionBreakpoint(session, e.cfg.FatigueDropTolerance); ok {
			analysis.SessionsWithDecay++
			breakpoints = append(breakpoints, bp)
		}
	}

	for i, acc := range curveAcc {
		if acc.total == 0 {
			continue
		}
		analysis.Curve = append(analysis.Curve, models.FatigueCurvePoint{
			Position:       i + 1,
			Accuracy:       float64(acc.correct) / float64(acc.total),
			MeanResponseMs: acc.responseSum / float64(acc.total),
			Samples:        acc.total,
		})
	}

	if len(breakpoints) > 0 {
		recommended := medianInt(breakpoints)
		analysis.RecommendedLength = &recommended
	}

	analysis.Confidence = models.ConfidenceHigh
	if analysis.SessionsAnalyzed < e.cfg.MinFatigueSessions {
		analysis.Confidence = models.ConfidenceLow
	}
	return analysis, nil
}

// sessionBreakpoint finds the first review position where rolling accuracy
// falls more than tolerance below the session's first-quartile baseline.
// Positions are 1-based.
func sessionBreakpoint(session []models.ReviewEvent, tolerance float64) (int, bool) {
	n := len(session)
	q := n / 4
	if q < 1 {
		q = 1
	}

	correctIn := func(from, to int) float64 { // [from, to)
		correct := 0
		for _, ev := range session[from:to] {
			if ev.WasCorrect {
				correct++
			}
		}
		return float64(correct) / float64(to-from)
	}

	baseline := correctIn(0, q)
	for i := q; i+q <= n; i++ {
		if correctIn(i, i+q)+tolerance < baseline {
			return i + 1, true
		}
	}
	return 0, false
}
