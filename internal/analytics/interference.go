package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/flashlytics/pkg/models"
)

// Floor for the independent error rate when ranking interference strength,
// so a pair of otherwise-perfect cards still yields a finite ratio.
const minIndependentRate = 0.05

type pairKey struct {
	a, b int64 // a < b
}

// InterferencePairs finds card pairs the learner confuses: pairs reviewed in
// close proximity within a session whose joint error rate exceeds what either
// card's independent error rate explains. Pairs below the minimum
// co-occurrence count are never reported, and a card is never paired with
// itself.
func (e *Engine) InterferencePairs(ctx context.Context, userID int64, deckID *int64) ([]models.InterferencePair, error) {
	asOf := e.now()

	spec := ""
	if deckID != nil {
		spec = fmt.Sprintf("deck=%d", *deckID)
	}
	return cached(ctx, e, userID, "interference", spec, func() ([]models.InterferencePair, error) {
		return e.interferencePairs(ctx, userID, deckID, asOf)
	})
}

func (e *Engine) interferencePairs(ctx context.Context, userID int64, deckID *int64, asOf time.Time) ([]models.InterferencePair, error) {
	windowStart := asOf.AddDate(0, 0, -e.cfg.StruggleWindowDays)
	events, err := e.reviews.Query(ctx, ReviewFilter{
		UserID: &userID,
		DeckID: deckID,
		From:   &windowStart,
		AsOf:   asOf,
	})
	if err != nil {
		return nil, err
	}

	// Independent error rates over the whole window.
	reviewCount := make(map[int64]int)
	errorCount := make(map[int64]int)
	for _, ev := range events {
		reviewCount[ev.CardID]++
		if !ev.WasCorrect {
			errorCount[ev.CardID]++
		}
	}
	errorRate := func(cardID int64) float64 {
		if reviewCount[cardID] == 0 {
			return 0
		}
		return float64(errorCount[cardID]) / float64(reviewCount[cardID])
	}

	bySession := make(map[string][]models.ReviewEvent)
	for _, ev := range events {
		bySession[ev.SessionID] = append(bySession[ev.SessionID], ev)
	}

	cooc := make(map[pairKey]int)
	jointErrors := make(map[pairKey]int)
	for _, session := range bySession {
		for i := 0; i < len(session); i++ {
			for j := i + 1; j < len(session); j++ {
				if j-i-1 > e.cfg.InterferenceWindow {
					break
				}
				a, b := session[i].CardID, session[j].CardID
				if a == b {
					continue
				}
				if a > b {
					a, b = b, a
				}
				key := pairKey{a, b}
				cooc[key]++
				if !session[i].WasCorrect || !session[j].WasCorrect {
					jointErrors[key]++
				}
			}
		}
	}

	var pairs []models.InterferencePair
	for key, count := range cooc {
		if count < e.cfg.MinCooccurrence {
			continue
		}
		jointRate := float64(jointErrors[key]) / float64(count)
		rateA, rateB := errorRate(key.a), errorRate(key.b)
		independent := rateA
		if rateB > independent {
			independent = rateB
		}
		if independent < minIndependentRate {
			independent = minIndependentRate
		}
		strength := jointRate / independent
		if strength < e.cfg.InterferenceRatio {
			continue
		}
		pairs = append(pairs, models.InterferencePair{
			CardA:          key.a,
			CardB:          key.b,
			Cooccurrences:  count,
			JointErrorRate: jointRate,
			ErrorRateA:     rateA,
			ErrorRateB:     rateB,
			Strength:       strength,
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Strength != pairs[j].Strength {
			return pairs[i].Strength > pairs[j].Strength
		}
		if pairs[i].Cooccurrences != pairs[j].Cooccurrences {
			return pairs[i].Cooccurrences > pairs[j].Cooccurrences
		}
		if pairs[i].CardA != pairs[j].CardA {
			return pairs[i].CardA < pairs[j].CardA
		}
		return pairs[i].CardB < pairs[j].CardB
	})
	return pairs, nil
}
