package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/flashlytics/pkg/models"
)

// CardDifficulty aggregates a card's difficulty across every user who ever
// reviewed it. With a comparison user the result also carries that user's own
// metrics and their nearest-rank accuracy percentile, unless the population
// is below the configured minimum, in which case the percentile stays nil.
func (e *Engine) CardDifficulty(ctx context.Context, cardID int64, compareUserID *int64) (*models.CardDifficultyMetric, error) {
	asOf := e.now()

	spec := fmt.Sprintf("card=%d", cardID)
	if compareUserID != nil {
		spec += fmt.Sprintf(",user=%d", *compareUserID)
	}
	return cached(ctx, e, 0, "card_difficulty", spec, func() (*models.CardDifficultyMetric, error) {
		events, err := e.reviews.Query(ctx, ReviewFilter{
			CardID: &cardID,
			AsOf:   asOf,
		})
		if err != nil {
			return nil, err
		}
		if len(events) == 0 {
			return nil, fmt.Errorf("card %d has no reviews: %w", cardID, ErrNotFound)
		}

		byUser := make(map[int64][]models.ReviewEvent)
		for _, ev := range events {
			byUser[ev.UserID] = append(byUser[ev.UserID], ev)
		}

		var easeSum, responseSum float64
		totalLapses := 0
		for _, ev := range events {
			easeSum += ev.EaseFactor
			responseSum += float64(ev.ResponseTimeMs)
		}
		for _, userEvents := range byUser {
			totalLapses += countLapses(userEvents)
		}

		metric := &models.CardDifficultyMetric{
			CardID:         cardID,
			ReviewCount:    len(events),
			DistinctUsers:  len(byUser),
			MeanEaseFactor: easeSum / float64(len(events)),
			LapseRate:      float64(totalLapses) / float64(len(events)),
			MeanResponseMs: responseSum / float64(len(events)),
		}

		if compareUserID == nil {
			return metric, nil
		}
		userEvents, reviewed := byUser[*compareUserID]
		if !reviewed {
			return metric, nil
		}

		metric.UserMetrics = userCardMetrics(*compareUserID, userEvents)

		if len(byUser) >= e.cfg.MinPopulationUsers {
			population := make([]float64, 0, len(byUser))
			for _, evs := range byUser {
				population = append(population, accuracy(evs))
			}
			pct := nearestRankPercentile(population, metric.UserMetrics.Accuracy)
			metric.Percentile = &pct
		}
		return metric, nil
	})
}

// DeckHardestCards ranks a deck's cards by blended population difficulty:
// lapse rate and mean response time min-max normalized over the deck and
// averaged. Ties surface the less-reviewed card first. The ranking is stable
// against an unchanged log.
func (e *Engine) DeckHardestCards(ctx context.Context, deckID int64, limit int) ([]models.HardestCard, error) {
	limit = clampInt(limit, e.cfg.DefaultHardestLimit, e.cfg.MaxHardestLimit)
	asOf := e.now()

	return cached(ctx, e, 0, "deck_hardest", fmt.Sprintf("deck=%d,l=%d", deckID, limit), func() ([]models.HardestCard, error) {
		cards, err := e.cards.CardsInDeck(ctx, deckID)
		if err != nil {
			return nil, err
		}
		if len(cards) == 0 {
			return nil, fmt.Errorf("deck %d has no cards: %w", deckID, ErrNotFound)
		}

		events, err := e.reviews.Query(ctx, ReviewFilter{
			DeckID: &deckID,
			AsOf:   asOf,
		})
		if err != nil {
			return nil, err
		}

		byCard := make(map[int64][]models.ReviewEvent)
		for _, ev := range events {
			byCard[ev.CardID] = append(byCard[ev.CardID], ev)
		}

		ranked := make([]models.HardestCard, 0, len(cards))
		for _, card := range cards {
			cardEvents := byCard[card.ID]
			entry := models.HardestCard{CardID: card.ID, ReviewCount: len(cardEvents)}
			if len(cardEvents) > 0 {
				byUser := make(map[int64][]models.ReviewEvent)
				for _, ev := range cardEvents {
					byUser[ev.UserID] = append(byUser[ev.UserID], ev)
				}
				lapses := 0
				var responseSum float64
				for _, evs := range byUser {
					lapses += countLapses(evs)
				}
				for _, ev := range cardEvents {
					responseSum += float64(ev.ResponseTimeMs)
				}
				entry.LapseRate = float64(lapses) / float64(len(cardEvents))
				entry.MeanResponseMs = responseSum / float64(len(cardEvents))
			}
			ranked = append(ranked, entry)
		}

		normalizeLapse := minMax(ranked, func(h models.HardestCard) float64 { return h.LapseRate })
		normalizeResponse := minMax(ranked, func(h models.HardestCard) float64 { return h.MeanResponseMs })
		for i := range ranked {
			ranked[i].Score = (normalizeLapse(ranked[i]) + normalizeResponse(ranked[i])) / 2
		}

		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Score != ranked[j].Score {
				return ranked[i].Score > ranked[j].Score
			}
			if ranked[i].ReviewCount != ranked[j].ReviewCount {
				return ranked[i].ReviewCount < ranked[j].ReviewCount
			}
			return ranked[i].CardID < ranked[j].CardID
		})
		if len(ranked) > limit {
			ranked = ranked[:limit]
		}
		return ranked, nil
	})
}

// minMax returns a normalizer over the given dimension; a flat dimension
// contributes zero for every card.
func minMax(cards []models.HardestCard, dim func(models.HardestCard) float64) func(models.HardestCard) float64 {
	lo, hi := dim(cards[0]), dim(cards[0])
	for _, c := range cards[1:] {
		v := dim(c)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return func(models.HardestCard) float64 { return 0 }
	}
	return func(c models.HardestCard) float64 { return (dim(c) - lo) / (hi - lo) }
}

// countLapses counts correct→incorrect regressions in one user's
// time-ordered reviews of a card.
func countLapses(events []models.ReviewEvent) int {
	lapses := 0
	for i := 1; i < len(events); i++ {
		if events[i-1].WasCorrect && !events[i].WasCorrect {
			lapses++
		}
	}
	return lapses
}

func accuracy(events []models.ReviewEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	correct := 0
	for _, ev := range events {
		if ev.WasCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(events))
}

// userCardMetrics summarizes one user's own reviews of a card.
func userCardMetrics(userID int64, events []models.ReviewEvent) *models.UserCardMetrics {
	var responseSum float64
	for _, ev := range events {
		responseSum += float64(ev.ResponseTimeMs)
	}
	return &models.UserCardMetrics{
		UserID:         userID,
		ReviewCount:    len(events),
		Accuracy:       accuracy(events),
		LapseRate:      float64(countLapses(events)) / float64(len(events)),
		MeanResponseMs: responseSum / float64(len(events)),
	}
}
