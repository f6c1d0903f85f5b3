package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/flashlytics/pkg/models"
)

// PrerequisiteGaps flags struggling cards whose declared prerequisites are
// themselves weak. The prerequisite graph is an optional external input: when
// no graph data exists for the scope the report says so explicitly and holds
// no gaps. Cards without declared prerequisites are skipped, not flagged.
func (e *Engine) PrerequisiteGaps(ctx context.Context, userID int64, deckID *int64) (*models.PrerequisiteGapReport, error) {
	asOf := e.now()

	spec := ""
	if deckID != nil {
		spec = fmt.Sprintf("deck=%d", *deckID)
	}
	return cached(ctx, e, userID, "prerequisite_gaps", spec, func() (*models.PrerequisiteGapReport, error) {
		return e.prerequisiteGaps(ctx, userID, deckID, asOf)
	})
}

func (e *Engine) prerequisiteGaps(ctx context.Context, userID int64, deckID *int64, asOf time.Time) (*models.PrerequisiteGapReport, error) {
	graph, err := e.cards.PrerequisiteGraph(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if !graph.Known {
		return &models.PrerequisiteGapReport{GraphKnown: false}, nil
	}

	scores, err := e.struggleScores(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	scoreByCard := make(map[int64]float64, len(scores))
	for _, s := range scores {
		scoreByCard[s.CardID] = s.Score
	}

	windowStart := asOf.AddDate(0, 0, -e.cfg.StruggleWindowDays)
	events, err := e.reviews.Query(ctx, ReviewFilter{
		UserID: &userID,
		From:   &windowStart,
		AsOf:   asOf,
	})
	if err != nil {
		return nil, err
	}
	reviews := make(map[int64]int)
	correct := make(map[int64]int)
	for _, ev := range events {
		reviews[ev.CardID]++
		if ev.WasCorrect {
			correct[ev.CardID]++
		}
	}

	report := &models.PrerequisiteGapReport{GraphKnown: true}
	for cardID, prereqs := range graph.Prerequisites {
		score, reviewed := scoreByCard[cardID]
		if !reviewed || score < e.cfg.GapStruggleFloor {
			continue
		}
		var weak []int64
		for _, prereqID := range prereqs {
			// A prerequisite the user never practiced counts as weak:
			// there is no evidence it was ever acquired.
			if reviews[prereqID] == 0 {
				weak = append(weak, prereqID)
				continue
			}
			accuracy := float64(correct[prereqID]) / float64(reviews[prereqID])
			if accuracy < e.cfg.PrereqAccuracyFloor {
				weak = append(weak, prereqID)
			}
		}
		if len(weak) == 0 {
			continue
		}
		sort.Slice(weak, func(i, j int) bool { return weak[i] < weak[j] })
		report.Gaps = append(report.Gaps, models.PrerequisiteGap{
			CardID:              cardID,
			StruggleScore:       score,
			WeakPrerequisiteIDs: weak,
		})
	}

	sort.Slice(report.Gaps, func(i, j int) bool {
		if report.Gaps[i].StruggleScore != report.Gaps[j].StruggleScore {
			return report.Gaps[i].StruggleScore > report.Gaps[j].StruggleScore
		}
		return report.Gaps[i].CardID < report.Gaps[j].CardID
	})
	return report, nil
}
