package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/flashlytics/pkg/models"
)

func TestStrugglingCards_SingleFailedReview(t *testing.T) {
	store := &fakeStore{reviews: []models.ReviewEvent{
		rev(1, 7, 100, 1, "s", daysAgo(0), false),
	}}
	engine := newTestEngine(store)

	scores, err := engine.StrugglingCards(context.Background(), 7, 0, 10)
	require.NoError(t, err)
	require.Len(t, scores, 1)

	s := scores[0]
	assert.Equal(t, int64(100), s.CardID)
	assert.InDelta(t, 1.0, s.ErrorRate, 1e-9, "a fresh failure carries full weight")
	assert.Zero(t, s.LapseCount, "the first review of a card is never a lapse")
	assert.Zero(t, s.ResponseExcess, "card mean equals the user median here")
	assert.InDelta(t, 0.5, s.Score, 1e-9, "only the error-rate term contributes")
}

func TestStrugglingCards_OrderingAndFilter(t *testing.T) {
	userID := int64(7)
	store := &fakeStore{reviews: []models.ReviewEvent{
		// card 100: clean record
		rev(1, userID, 100, 1, "s1", daysAgo(5), true),
		rev(2, userID, 100, 1, "s2", daysAgo(2), true),
		// card 101: one recent failure
		rev(3, userID, 101, 1, "s1", daysAgo(5), true),
		rev(4, userID, 101, 1, "s2", daysAgo(1), false),
		// card 102: failing consistently
		rev(5, userID, 102, 1, "s1", daysAgo(5), false),
		rev(6, userID, 102, 1, "s2", daysAgo(1), false),
	}}
	engine := newTestEngine(store)

	all, err := engine.StrugglingCards(context.Background(), userID, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 3, "threshold zero keeps every reviewed card")
	assert.Equal(t, int64(102), all[0].CardID)
	assert.Equal(t, int64(101), all[1].CardID)
	assert.Equal(t, int64(100), all[2].CardID)
	assert.Zero(t, all[2].Score)

	// Raising the threshold only ever shrinks the result set.
	strict, err := engine.StrugglingCards(context.Background(), userID, all[1].Score+0.001, 100)
	require.NoError(t, err)
	require.Len(t, strict, 1)
	assert.Equal(t, int64(102), strict[0].CardID)
	for _, s := range strict {
		assert.GreaterOrEqual(t, s.Score, all[1].Score)
	}
}

func TestStrugglingCards_RecentErrorsWeighMore(t *testing.T) {
	userID := int64(7)
	store := &fakeStore{reviews: []models.ReviewEvent{
		// card 100 failed two months ago, card 101 failed yesterday
		rev(1, userID, 100, 1, "s1", daysAgo(60), false),
		rev(2, userID, 100, 1, "s2", daysAgo(59), true),
		rev(3, userID, 101, 1, "s1", daysAgo(2), true),
		rev(4, userID, 101, 1, "s2", daysAgo(1), false),
	}}
	engine := newTestEngine(store)

	scores, err := engine.StrugglingCards(context.Background(), userID, 0, 10)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, int64(101), scores[0].CardID, "the recent failure dominates")
	assert.Greater(t, scores[0].Score, scores[1].Score)
}

func TestStrugglingCards_LimitAndEmptyLog(t *testing.T) {
	userID := int64(7)
	store := &fakeStore{}
	for i := int64(1); i <= 30; i++ {
		store.reviews = append(store.reviews, rev(i, userID, 100+i, 1, "s", daysAgo(1), false))
	}
	engine := newTestEngine(store)

	scores, err := engine.StrugglingCards(context.Background(), userID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, scores, 10)

	empty, err := engine.StrugglingCards(context.Background(), 999, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, empty, "a user with no reviews gets an empty list, not an error")
}

func TestStrugglingCards_LapseCounting(t *testing.T) {
	userID := int64(7)
	store := &fakeStore{reviews: []models.ReviewEvent{
		rev(1, userID, 100, 1, "s1", daysAgo(8), true),
		rev(2, userID, 100, 1, "s2", daysAgo(6), false), // lapse
		rev(3, userID, 100, 1, "s3", daysAgo(4), false), // still down, no new lapse
		rev(4, userID, 100, 1, "s4", daysAgo(2), true),
		rev(5, userID, 100, 1, "s5", daysAgo(1), false), // lapse
	}}
	engine := newTestEngine(store)

	scores, err := engine.StrugglingCards(context.Background(), userID, 0, 10)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 2, scores[0].LapseCount)
	assert.Equal(t, 5, scores[0].ReviewCount)
}

func TestStrugglingCardsByDeck(t *testing.T) {
	userID := int64(7)
	store := &fakeStore{}
	var id int64
	// deck 2 holds seven failing cards, deck 1 a single clean one
	for i := int64(0); i < 7; i++ {
		id++
		store.reviews = append(store.reviews, rev(id, userID, 200+i, 2, "s", daysAgo(1), false))
	}
	id++
	store.reviews = append(store.reviews, rev(id, userID, 100, 1, "s", daysAgo(1), true))
	engine := newTestEngine(store)

	decks, err := engine.StrugglingCardsByDeck(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, decks, 2)
	assert.Equal(t, int64(1), decks[0].DeckID, "decks are ordered by id")
	assert.Equal(t, int64(2), decks[1].DeckID)
	assert.Len(t, decks[0].Cards, 1)
	assert.Len(t, decks[1].Cards, 5, "each deck is capped at its top strugglers")
	for _, c := range decks[1].Cards {
		assert.Equal(t, int64(2), c.DeckID)
	}
}
