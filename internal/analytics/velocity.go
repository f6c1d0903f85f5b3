package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/example/flashlytics/pkg/models"
)

// UserVelocityHistory buckets mastery transitions into ISO weeks. A mastery
// transition is the first review in the window where a card's scheduled
// interval crosses the configured mastery threshold. The result always holds
// exactly `weeks` chronological buckets, zero-filled where nothing was
// mastered.
func (e *Engine) UserVelocityHistory(ctx context.Context, userID int64, weeks int) (*models.VelocityHistory, error) {
	weeks = clampInt(weeks, e.cfg.DefaultVelocityWeeks, e.cfg.MaxVelocityWeeks)
	asOf := e.now()

	return cached(ctx, e, userID, "velocity", fmt.Sprintf("w=%d", weeks), func() (*models.VelocityHistory, error) {
		return e.velocityHistory(ctx, userID, weeks, asOf)
	})
}

func (e *Engine) velocityHistory(ctx context.Context, userID int64, weeks int, asOf time.Time) (*models.VelocityHistory, error) {
	windowStart := isoWeekStart(asOf).AddDate(0, 0, -7*(weeks-1))

	events, err := e.reviews.Query(ctx, ReviewFilter{
		UserID: &userID,
		From:   &windowStart,
		AsOf:   asOf,
	})
	if err != nil {
		return nil, err
	}

	buckets := make([]models.VelocityPoint, weeks)
	for i := range buckets {
		buckets[i].WeekStart = windowStart.AddDate(0, 0, 7*i)
	}

	mastered := make(map[int64]bool)
	for _, ev := range events {
		if ev.IntervalBefore >= e.cfg.MasteryIntervalDays || ev.IntervalAfter < e.cfg.MasteryIntervalDays {
			continue
		}
		if mastered[ev.CardID] {
			continue
		}
		mastered[ev.CardID] = true

		idx := int(isoWeekStart(ev.ReviewedAt).Sub(windowStart).Hours() / (24 * 7))
		if idx >= 0 && idx < weeks {
			buckets[idx].MasteredCount++
		}
	}

	history := &models.VelocityHistory{UserID: userID, Weeks: buckets}

	var nonEmpty []float64
	for _, b := range buckets {
		if b.MasteredCount > 0 {
			nonEmpty = append(nonEmpty, float64(b.MasteredCount))
		}
	}
	if len(nonEmpty) < 3 {
		// Too few points for a trend; nil is "insufficient data", not an error.
		return history, nil
	}

	slope := olsSlope(nonEmpty)
	history.Slope = slope

	trend := models.TrendStable
	switch bound := e.cfg.TrendSlopePct * mean(nonEmpty); {
	case slope > bound:
		trend = models.TrendAccelerating
	case slope < -bound:
		trend = models.TrendDecelerating
	}
	history.Trend = &trend
	return history, nil
}

// DailySummary returns the contiguous per-day activity series for the
// trailing `days` days. Days with no reviews appear zero-filled so charting
// callers get an unbroken series.
func (e *Engine) DailySummary(ctx context.Context, userID int64, days int) (*models.DailySummary, error) {
	days = clampInt(days, e.cfg.DefaultSummaryDays, e.cfg.MaxSummaryDays)
	asOf := e.now()

	return cached(ctx, e, userID, "daily_summary", fmt.Sprintf("d=%d", days), func() (*models.DailySummary, error) {
		return e.dailySummary(ctx, userID, days, asOf)
	})
}

func (e *Engine) dailySummary(ctx context.Context, userID int64, days int, asOf time.Time) (*models.DailySummary, error) {
	firstDay := dayStart(asOf).AddDate(0, 0, -(days - 1))

	events, err := e.reviews.Query(ctx, ReviewFilter{
		UserID: &userID,
		From:   &firstDay,
		AsOf:   asOf,
	})
	if err != nil {
		return nil, err
	}

	series := make([]models.DailySummaryPoint, days)
	for i := range series {
		series[i].Date = firstDay.AddDate(0, 0, i)
	}

	for _, ev := range events {
		idx := int(dayStart(ev.ReviewedAt).Sub(firstDay).Hours() / 24)
		if idx < 0 || idx >= days {
			continue
		}
		series[idx].Reviews++
		if ev.WasCorrect {
			series[idx].Correct++
		} else {
			series[idx].Incorrect++
		}
		series[idx].StudyTimeMs += int64(ev.ResponseTimeMs)
	}

	return &models.DailySummary{UserID: userID, Days: series}, nil
}

// isoWeekStart truncates t to the Monday 00:00 UTC opening its ISO week.
func isoWeekStart(t time.Time) time.Time {
	t = dayStart(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday closes the ISO week
	}
	return t.AddDate(0, 0, -(weekday - 1))
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
