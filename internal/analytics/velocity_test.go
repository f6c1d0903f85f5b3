package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/flashlytics/pkg/models"
)

// masteryAt builds a review whose interval crosses the default 21-day
// mastery threshold.
func masteryAt(id, userID, cardID int64, at time.Time) models.ReviewEvent {
	ev := rev(id, userID, cardID, 1, "s", at, true)
	ev.IntervalBefore = 10
	ev.IntervalAfter = 30
	return ev
}

func TestUserVelocityHistory_BucketLayout(t *testing.T) {
	userID := int64(7)
	weekStart := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC) // Monday of testNow

	below := rev(1, userID, 50, 1, "s", daysAgo(3), true)
	below.IntervalBefore = 5
	below.IntervalAfter = 12 // never crosses the threshold

	already := rev(2, userID, 51, 1, "s", daysAgo(3), true)
	already.IntervalBefore = 25
	already.IntervalAfter = 40 // was mastered before the window

	store := &fakeStore{reviews: []models.ReviewEvent{
		below,
		already,
		masteryAt(3, userID, 100, daysAgo(10)), // previous ISO week
		masteryAt(4, userID, 100, daysAgo(2)),  // same card again, not counted
		masteryAt(5, userID, 101, daysAgo(2)),  // current week
	}}
	engine := newTestEngine(store)

	history, err := engine.UserVelocityHistory(context.Background(), userID, 4)
	require.NoError(t, err)

	require.Len(t, history.Weeks, 4, "always exactly the requested week count")
	for i, bucket := range history.Weeks {
		assert.Equal(t, weekStart.AddDate(0, 0, -7*(3-i)), bucket.WeekStart)
	}
	assert.Equal(t, 0, history.Weeks[0].MasteredCount)
	assert.Equal(t, 1, history.Weeks[1].MasteredCount, "card 100 counted once in its first crossing week")
	assert.Equal(t, 1, history.Weeks[2].MasteredCount, "card 101")
	assert.Equal(t, 0, history.Weeks[3].MasteredCount)
}

func TestUserVelocityHistory_TrendNeedsThreeNonEmptyWeeks(t *testing.T) {
	userID := int64(7)
	store := &fakeStore{reviews: []models.ReviewEvent{
		masteryAt(1, userID, 100, daysAgo(9)),
		masteryAt(2, userID, 101, daysAgo(2)),
	}}
	engine := newTestEngine(store)

	history, err := engine.UserVelocityHistory(context.Background(), userID, 8)
	require.NoError(t, err)
	assert.Nil(t, history.Trend, "two non-empty weeks cannot carry a trend")
	assert.Zero(t, history.Slope)
}

func TestUserVelocityHistory_TrendDirections(t *testing.T) {
	userID := int64(7)
	// counts[i] mastery transitions in week i, oldest first
	buildStore := func(counts []int) *fakeStore {
		store := &fakeStore{}
		var id, cardID int64
		for week, count := range counts {
			at := daysAgo(7 * (len(counts) - 1 - week))
			for c := 0; c < count; c++ {
				id++
				cardID++
				store.reviews = append(store.reviews, masteryAt(id, userID, cardID, at))
			}
		}
		return store
	}

	t.Run("accelerating", func(t *testing.T) {
		engine := newTestEngine(buildStore([]int{1, 2, 4, 8}))
		history, err := engine.UserVelocityHistory(context.Background(), userID, 4)
		require.NoError(t, err)
		require.NotNil(t, history.Trend)
		assert.Equal(t, models.TrendAccelerating, *history.Trend)
		assert.InDelta(t, 2.3, history.Slope, 1e-9)
	})

	t.Run("decelerating", func(t *testing.T) {
		engine := newTestEngine(buildStore([]int{8, 4, 2, 1}))
		history, err := engine.UserVelocityHistory(context.Background(), userID, 4)
		require.NoError(t, err)
		require.NotNil(t, history.Trend)
		assert.Equal(t, models.TrendDecelerating, *history.Trend)
	})

	t.Run("stable", func(t *testing.T) {
		engine := newTestEngine(buildStore([]int{3, 3, 3}))
		history, err := engine.UserVelocityHistory(context.Background(), userID, 3)
		require.NoError(t, err)
		require.NotNil(t, history.Trend)
		assert.Equal(t, models.TrendStable, *history.Trend)
	})
}

func TestUserVelocityHistory_ClampsWeeks(t *testing.T) {
	engine := newTestEngine(&fakeStore{})

	history, err := engine.UserVelocityHistory(context.Background(), 7, 0)
	require.NoError(t, err)
	assert.Len(t, history.Weeks, 12, "zero falls back to the default window")

	history, err = engine.UserVelocityHistory(context.Background(), 7, 500)
	require.NoError(t, err)
	assert.Len(t, history.Weeks, 52, "oversized windows clamp instead of failing")
}

func TestDailySummary_ContiguousZeroFilledSeries(t *testing.T) {
	userID := int64(7)
	slow := rev(3, userID, 101, 1, "s", daysAgo(2), false)
	slow.ResponseTimeMs = 7000

	store := &fakeStore{reviews: []models.ReviewEvent{
		rev(1, userID, 100, 1, "s", daysAgo(6), true),
		rev(2, userID, 100, 1, "s", daysAgo(2), true),
		slow,
	}}
	engine := newTestEngine(store)

	summary, err := engine.DailySummary(context.Background(), userID, 7)
	require.NoError(t, err)
	require.Len(t, summary.Days, 7)

	first := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	for i, day := range summary.Days {
		assert.Equal(t, first.AddDate(0, 0, i), day.Date)
	}

	assert.Equal(t, 1, summary.Days[0].Reviews)
	assert.Equal(t, 1, summary.Days[0].Correct)
	for _, i := range []int{1, 2, 3, 5, 6} {
		assert.Zero(t, summary.Days[i].Reviews, "day %d has no activity but is present", i)
	}
	busy := summary.Days[4]
	assert.Equal(t, 2, busy.Reviews)
	assert.Equal(t, 1, busy.Correct)
	assert.Equal(t, 1, busy.Incorrect)
	assert.Equal(t, int64(10000), busy.StudyTimeMs)
}

func TestDailySummary_Idempotent(t *testing.T) {
	store := &fakeStore{reviews: []models.ReviewEvent{
		rev(1, 7, 100, 1, "s", daysAgo(1), true),
		rev(2, 7, 101, 1, "s", daysAgo(3), false),
	}}
	engine := newTestEngine(store)

	first, err := engine.DailySummary(context.Background(), 7, 30)
	require.NoError(t, err)
	second, err := engine.DailySummary(context.Background(), 7, 30)
	require.NoError(t, err)
	assert.Equal(t, first, second, "same log and clock must produce identical output")
}
