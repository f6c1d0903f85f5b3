package analytics

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/flashlytics/pkg/models"
)

func offsetSession(sessionID string, userID int64, started time.Time, offsetMinutes int64) models.SessionTracking {
	return models.SessionTracking{
		SessionID:        sessionID,
		UserID:           userID,
		StartedAt:        started,
		UTCOffsetMinutes: sql.NullInt64{Int64: offsetMinutes, Valid: true},
	}
}

func TestTimeOfDayEffects_BucketsByLocalHour(t *testing.T) {
	userID := int64(7)
	store := &fakeStore{
		sessions: []models.SessionTracking{
			offsetSession("cet", userID, daysAgo(10), 60), // UTC+1
		},
	}

	var id int64
	at := func(day, hour int) time.Time {
		d := daysAgo(day)
		return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
	}
	// 12 reviews at 08:00 UTC in a UTC+1 session: local hour 9, 11 correct.
	for i := 0; i < 12; i++ {
		id++
		store.reviews = append(store.reviews, rev(id, userID, 100, 1, "cet", at(10-i%5, 8), i != 0))
	}
	// 10 late-night reviews in a session the tracker never saw: UTC fallback.
	for i := 0; i < 10; i++ {
		id++
		store.reviews = append(store.reviews, rev(id, userID, 101, 1, "untracked", at(10-i%5, 22), i < 4))
	}
	// 3 afternoon reviews, too few to qualify.
	for i := 0; i < 3; i++ {
		id++
		store.reviews = append(store.reviews, rev(id, userID, 102, 1, "untracked", at(4+i, 14), false))
	}
	engine := newTestEngine(store)

	effects, err := engine.TimeOfDayEffects(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, effects.Buckets, 24, "all hours present regardless of activity")

	nine := effects.Buckets[9]
	assert.Equal(t, 12, nine.Reviews, "UTC offset shifts the 08:00 reviews into hour 9")
	assert.True(t, nine.Qualified)
	assert.InDelta(t, 11.0/12.0, nine.Accuracy, 1e-9)

	night := effects.Buckets[22]
	assert.Equal(t, 10, night.Reviews)
	assert.True(t, night.Qualified)
	assert.InDelta(t, 0.4, night.Accuracy, 1e-9)

	afternoon := effects.Buckets[14]
	assert.Equal(t, 3, afternoon.Reviews)
	assert.False(t, afternoon.Qualified, "below the sample floor")

	require.NotNil(t, effects.BestHour)
	require.NotNil(t, effects.WorstHour)
	assert.Equal(t, 9, *effects.BestHour)
	assert.Equal(t, 22, *effects.WorstHour, "the all-failure hour loses on sample size, not accuracy")
}

func TestTimeOfDayEffects_NoQualifiedBuckets(t *testing.T) {
	userID := int64(7)
	store := &fakeStore{reviews: []models.ReviewEvent{
		rev(1, userID, 100, 1, "s", daysAgo(3), true),
		rev(2, userID, 100, 1, "s", daysAgo(2), false),
	}}
	engine := newTestEngine(store)

	effects, err := engine.TimeOfDayEffects(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, effects.Buckets, 24)
	assert.Nil(t, effects.BestHour)
	assert.Nil(t, effects.WorstHour)
}
