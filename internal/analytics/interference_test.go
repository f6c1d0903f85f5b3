package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// interleave appends a session reviewing cardA then cardB back to back.
func interleave(store *fakeStore, id *int64, userID int64, session string, day int, cardA, cardB int64, okA, okB bool) {
	*id++
	store.reviews = append(store.reviews, rev(*id, userID, cardA, 1, session, daysAgo(day), okA))
	*id++
	store.reviews = append(store.reviews, rev(*id, userID, cardB, 1, session, daysAgo(day), okB))
}

// solo appends a single-review session, which can never form a pair.
func solo(store *fakeStore, id *int64, userID int64, session string, day int, cardID int64, ok bool) {
	*id++
	store.reviews = append(store.reviews, rev(*id, userID, cardID, 1, session, daysAgo(day), ok))
}

func TestInterferencePairs_DetectsConfusedPair(t *testing.T) {
	userID := int64(7)
	store := &fakeStore{}
	var id int64

	// Cards 100 and 101 fail together when reviewed close, yet each is fine
	// on its own.
	interleave(store, &id, userID, "j1", 10, 100, 101, false, true)
	interleave(store, &id, userID, "j2", 8, 100, 101, true, false)
	interleave(store, &id, userID, "j3", 6, 100, 101, true, false)
	interleave(store, &id, userID, "j4", 4, 100, 101, true, true)
	for i := 0; i < 6; i++ {
		solo(store, &id, userID, "a"+string(rune('0'+i)), 20+i, 100, true)
		solo(store, &id, userID, "b"+string(rune('0'+i)), 30+i, 101, true)
	}
	engine := newTestEngine(store)

	pairs, err := engine.InterferencePairs(context.Background(), userID, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	p := pairs[0]
	assert.Equal(t, int64(100), p.CardA)
	assert.Equal(t, int64(101), p.CardB)
	assert.Equal(t, 4, p.Cooccurrences)
	assert.InDelta(t, 0.75, p.JointErrorRate, 1e-9)
	assert.InDelta(t, 0.1, p.ErrorRateA, 1e-9)
	assert.InDelta(t, 0.2, p.ErrorRateB, 1e-9)
	assert.InDelta(t, 3.75, p.Strength, 1e-9, "joint rate over the larger independent rate")
}

func TestInterferencePairs_JointFailureExplainedByIndependentRates(t *testing.T) {
	userID := int64(7)
	store := &fakeStore{}
	var id int64

	// Both cards fail everywhere, together or not. High joint error rate but
	// nothing the independent rates don't already explain.
	for i := 0; i < 4; i++ {
		interleave(store, &id, userID, "j"+string(rune('0'+i)), 10-i, 100, 101, false, false)
	}
	engine := newTestEngine(store)

	pairs, err := engine.InterferencePairs(context.Background(), userID, nil)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestInterferencePairs_MinimumCooccurrence(t *testing.T) {
	userID := int64(7)
	store := &fakeStore{}
	var id int64

	// Only two co-occurrences, below the reporting floor no matter how bad.
	interleave(store, &id, userID, "j1", 5, 100, 101, false, true)
	interleave(store, &id, userID, "j2", 3, 100, 101, true, false)
	for i := 0; i < 8; i++ {
		solo(store, &id, userID, "a"+string(rune('0'+i)), 20+i, 100, true)
		solo(store, &id, userID, "b"+string(rune('0'+i)), 30+i, 101, true)
	}
	engine := newTestEngine(store)

	pairs, err := engine.InterferencePairs(context.Background(), userID, nil)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestInterferencePairs_NeverPairsCardWithItself(t *testing.T) {
	userID := int64(7)
	store := &fakeStore{}
	var id int64
	for i := 0; i < 5; i++ {
		interleave(store, &id, userID, "j"+string(rune('0'+i)), 10-i, 100, 100, false, false)
	}
	engine := newTestEngine(store)

	pairs, err := engine.InterferencePairs(context.Background(), userID, nil)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestInterferencePairs_ProximityWindow(t *testing.T) {
	userID := int64(7)
	store := &fakeStore{}
	var id int64

	// Cards 100 and 101 appear in the same sessions but separated by more
	// intervening reviews than the proximity window allows.
	for s := 0; s < 4; s++ {
		session := "far" + string(rune('0'+s))
		solo(store, &id, userID, session, 10-s, 100, false)
		for filler := int64(0); filler < 6; filler++ {
			solo(store, &id, userID, session, 10-s, 500+filler, true)
		}
		solo(store, &id, userID, session, 10-s, 101, false)
	}
	engine := newTestEngine(store)

	pairs, err := engine.InterferencePairs(context.Background(), userID, nil)
	require.NoError(t, err)
	for _, p := range pairs {
		assert.False(t, p.CardA == 100 && p.CardB == 101,
			"cards never reviewed in proximity must not pair")
	}
}

func TestInterferencePairs_DeckScope(t *testing.T) {
	userID := int64(7)
	store := &fakeStore{}
	var id int64
	interleave(store, &id, userID, "j1", 10, 100, 101, false, true)
	interleave(store, &id, userID, "j2", 8, 100, 101, true, false)
	interleave(store, &id, userID, "j3", 6, 100, 101, false, true)
	for i := 0; i < 6; i++ {
		solo(store, &id, userID, "a"+string(rune('0'+i)), 20+i, 100, true)
		solo(store, &id, userID, "b"+string(rune('0'+i)), 30+i, 101, true)
	}
	engine := newTestEngine(store)

	otherDeck := int64(99)
	pairs, err := engine.InterferencePairs(context.Background(), userID, &otherDeck)
	require.NoError(t, err)
	assert.Empty(t, pairs, "scoping to a deck without these cards finds nothing")

	var sameDeck int64 = 1
	pairs, err = engine.InterferencePairs(context.Background(), userID, &sameDeck)
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
}
