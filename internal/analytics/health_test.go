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

// healthFixture stores one session plus its reviews following pattern, with a
// per-review response time.
func healthFixture(sessionID string, ended bool, pattern string, responseMs []int) *fakeStore {
	userID := int64(7)
	session := models.SessionTracking{
		SessionID: sessionID,
		UserID:    userID,
		StartedAt: daysAgo(1),
	}
	if ended {
		session.EndedAt = sql.NullTime{Time: daysAgo(1).Add(time.Hour), Valid: true}
	}

	store := &fakeStore{sessions: []models.SessionTracking{session}}
	for pos, outcome := range pattern {
		ev := rev(int64(pos+1), userID, 300+int64(pos), 1, sessionID,
			daysAgo(1).Add(time.Duration(pos)*time.Minute), outcome == 'c')
		if responseMs != nil {
			ev.ResponseTimeMs = responseMs[pos]
		}
		store.reviews = append(store.reviews, ev)
	}
	return store
}

func TestSessionHealth_UnknownSession(t *testing.T) {
	engine := newTestEngine(&fakeStore{})

	_, err := engine.SessionHealth(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionHealth_TooFewReviews(t *testing.T) {
	engine := newTestEngine(healthFixture("short", true, "ccxc", nil))

	snapshot, err := engine.SessionHealth(context.Background(), "short")
	require.NoError(t, err)
	assert.Nil(t, snapshot, "four reviews say nothing about health")
}

func TestSessionHealth_Healthy(t *testing.T) {
	engine := newTestEngine(healthFixture("steady", true, "cxcccxcc", nil))

	snapshot, err := engine.SessionHealth(context.Background(), "steady")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, models.HealthHealthy, snapshot.Label)
	assert.False(t, snapshot.Live)
	assert.Equal(t, 8, snapshot.Reviews)
	assert.InDelta(t, 0.75, snapshot.OverallAccuracy, 1e-9)
	require.Len(t, snapshot.Quartiles, 4)
}

func TestSessionHealth_Declining(t *testing.T) {
	// First quartile perfect, last at 0.8, response times flat.
	engine := newTestEngine(healthFixture("slump", true, "ccccccccccccccc"+"cxccc", nil))

	snapshot, err := engine.SessionHealth(context.Background(), "slump")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.InDelta(t, -0.2, snapshot.AccuracyDelta, 1e-9)
	assert.Zero(t, snapshot.ResponseTimeDelta)
	assert.Equal(t, models.HealthDeclining, snapshot.Label)
}

func TestSessionHealth_PoorWhenSlowingDown(t *testing.T) {
	// Same accuracy slide, but response times climb through the session.
	responseMs := make([]int, 20)
	for i := range responseMs {
		responseMs[i] = 2000 + 200*i
	}
	engine := newTestEngine(healthFixture("crash", true, "ccccccccccccccc"+"cxccc", responseMs))

	snapshot, err := engine.SessionHealth(context.Background(), "crash")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.InDelta(t, -0.2, snapshot.AccuracyDelta, 1e-9)
	assert.Greater(t, snapshot.ResponseTimeDelta, 0.0)
	assert.Equal(t, models.HealthPoor, snapshot.Label)
}

func TestSessionHealth_PoorOnSteepDrop(t *testing.T) {
	engine := newTestEngine(healthFixture("cliff", true, "ccccccccccccccc"+"xxxcc", nil))

	snapshot, err := engine.SessionHealth(context.Background(), "cliff")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.InDelta(t, -0.6, snapshot.AccuracyDelta, 1e-9)
	assert.Equal(t, models.HealthPoor, snapshot.Label)
}

func TestLiveSessionHealth_ReflectsNewReviews(t *testing.T) {
	store := healthFixture("live", false, "cccccc", nil)
	engine := newTestEngine(store)

	snapshot, err := engine.LiveSessionHealth(context.Background(), "live")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.True(t, snapshot.Live)
	assert.Equal(t, 6, snapshot.Reviews)
	assert.Equal(t, models.HealthHealthy, snapshot.Label)

	// The session sours; the next poll must see it.
	for i := 0; i < 6; i++ {
		store.reviews = append(store.reviews, rev(int64(100+i), 7, 400+int64(i), 1, "live",
			daysAgo(1).Add(time.Duration(10+i)*time.Minute), false))
	}
	snapshot, err = engine.LiveSessionHealth(context.Background(), "live")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, 12, snapshot.Reviews)
	assert.Equal(t, models.HealthPoor, snapshot.Label)
}
