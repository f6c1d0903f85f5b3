package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/flashlytics/pkg/models"
)

// StrugglingCards scores every card the user reviewed in the trailing
// struggle window and returns those at or above threshold, strongest first.
// A threshold of zero keeps every scored card; raising it only shrinks the
// result set.
func (e *Engine) StrugglingCards(ctx context.Context, userID int64, threshold float64, limit int) ([]models.StruggleScore, error) {
	threshold = clampThreshold(threshold, e.cfg.DefaultStruggleThreshold)
	limit = clampInt(limit, e.cfg.DefaultStruggleLimit, e.cfg.MaxStruggleLimit)
	asOf := e.now()

	spec := fmt.Sprintf("t=%.3f,l=%d", threshold, limit)
	return cached(ctx, e, userID, "struggling_cards", spec, func() ([]models.StruggleScore, error) {
		return e.strugglingCards(ctx, userID, threshold, limit, asOf)
	})
}

func (e *Engine) strugglingCards(ctx context.Context, userID int64, threshold float64, limit int, asOf time.Time) ([]models.StruggleScore, error) {
	scores, err := e.struggleScores(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}

	filtered := scores[:0]
	for _, s := range scores {
		if s.Score >= threshold {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// StrugglingCardsByDeck groups struggle scores by deck and keeps the top N
// per deck for summary views. No threshold filter is applied.
func (e *Engine) StrugglingCardsByDeck(ctx context.Context, userID int64) ([]models.DeckStruggles, error) {
	asOf := e.now()

	return cached(ctx, e, userID, "struggling_by_deck", "", func() ([]models.DeckStruggles, error) {
		scores, err := e.struggleScores(ctx, userID, asOf)
		if err != nil {
			return nil, err
		}

		byDeck := make(map[int64][]models.StruggleScore)
		for _, s := range scores {
			byDeck[s.DeckID] = append(byDeck[s.DeckID], s)
		}

		decks := make([]models.DeckStruggles, 0, len(byDeck))
		for deckID, cards := range byDeck {
			if len(cards) > e.cfg.TopStrugglersPerDeck {
				cards = cards[:e.cfg.TopStrugglersPerDeck]
			}
			decks = append(decks, models.DeckStruggles{DeckID: deckID, Cards: cards})
		}
		sort.Slice(decks, func(i, j int) bool { return decks[i].DeckID < decks[j].DeckID })
		return decks, nil
	})
}

// struggleScores computes the per-card composite for every card reviewed in
// the trailing window, sorted strongest first with deterministic tie-breaks
// (most recent review, then card id).
func (e *Engine) struggleScores(ctx context.Context, userID int64, asOf time.Time) ([]models.StruggleScore, error) {
	windowStart := asOf.AddDate(0, 0, -e.cfg.StruggleWindowDays)

	events, err := e.reviews.Query(ctx, ReviewFilter{
		UserID: &userID,
		From:   &windowStart,
		AsOf:   asOf,
	})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	// The user's own median response time anchors the excess term.
	responseTimes := make([]float64, 0, len(events))
	for _, ev := range events {
		responseTimes = append(responseTimes, float64(ev.ResponseTimeMs))
	}
	userMedian := median(responseTimes)

	byCard := make(map[int64][]models.ReviewEvent)
	for _, ev := range events {
		byCard[ev.CardID] = append(byCard[ev.CardID], ev)
	}

	scores := make([]models.StruggleScore, 0, len(byCard))
	for cardID, cardEvents := range byCard {
		scores = append(scores, e.scoreCard(cardID, cardEvents, userMedian, asOf))
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		if !scores[i].LastReviewedAt.Equal(scores[j].LastReviewedAt) {
			return scores[i].LastReviewedAt.After(scores[j].LastReviewedAt)
		}
		return scores[i].CardID < scores[j].CardID
	})
	return scores, nil
}

// scoreCard blends the three struggle components for one card's reviews,
// which arrive ordered by time.
func (e *Engine) scoreCard(cardID int64, events []models.ReviewEvent, userMedian float64, asOf time.Time) models.StruggleScore {
	var (
		weightSum, errorSum float64
		lapses              int
		responseSum         float64
		prevCorrect         = true
	)
	for i, ev := range events {
		ageDays := asOf.Sub(ev.ReviewedAt).Hours() / 24
		w := decayWeight(ageDays, e.cfg.StruggleHalfLifeDays)
		weightSum += w
		if !ev.WasCorrect {
			errorSum += w
			if i > 0 && prevCorrect {
				lapses++
			}
		}
		prevCorrect = ev.WasCorrect
		responseSum += float64(ev.ResponseTimeMs)
	}

	errorRate := 0.0
	if weightSum > 0 {
		errorRate = errorSum / weightSum
	}

	excess := 0.0
	if userMedian > 0 {
		cardMean := responseSum / float64(len(events))
		excess = clamp01((cardMean - userMedian) / userMedian)
	}

	lapseTerm := clamp01(float64(lapses) / float64(e.cfg.LapseSaturation))

	score := clamp01(e.cfg.ErrorRateWeight*errorRate +
		e.cfg.LapseWeight*lapseTerm +
		e.cfg.ResponseExcessWeight*excess)

	return models.StruggleScore{
		CardID:         cardID,
		DeckID:         events[0].DeckID,
		Score:          score,
		ErrorRate:      errorRate,
		LapseCount:     lapses,
		ResponseExcess: excess,
		ReviewCount:    len(events),
		LastReviewedAt: events[len(events)-1].ReviewedAt,
	}
}
