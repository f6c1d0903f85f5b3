package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/example/flashlytics/internal/analytics"
	"github.com/example/flashlytics/pkg/models"
)

// ReviewRepository reads the append-only review log. It never writes.
type ReviewRepository struct {
	db      *sqlx.DB
	maxRows int
}

// NewReviewRepository creates a new repository instance. maxRows is the hard
// per-call cap; a window selecting more rows fails with ErrRangeTooLarge.
func NewReviewRepository(db *sqlx.DB, maxRows int) *ReviewRepository {
	return &ReviewRepository{db: db, maxRows: maxRows}
}

// Query returns review events matching the filter, ordered by reviewed_at
// then id so reruns against an unchanged log yield identical sequences.
func (r *ReviewRepository) Query(ctx context.Context, f analytics.ReviewFilter) ([]models.ReviewEvent, error) {
	var (
		conds = []string{"reviewed_at <= ?"}
		args  = []any{f.AsOf}
	)
	if f.UserID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.CardID != nil {
		conds = append(conds, "card_id = ?")
		args = append(args, *f.CardID)
	}
	if f.DeckID != nil {
		conds = append(conds, "deck_id = ?")
		args = append(args, *f.DeckID)
	}
	if f.SessionID != nil {
		conds = append(conds, "session_id = ?")
		args = append(args, *f.SessionID)
	}
	if f.From != nil {
		conds = append(conds, "reviewed_at >= ?")
		args = append(args, *f.From)
	}

	// Fetch one row past the cap to detect oversized windows.
	query := fmt.Sprintf(`
        SELECT id, user_id, card_id, deck_id, session_id, reviewed_at,
               response_quality, response_time_ms, interval_before,
               interval_after, ease_factor, was_correct
        FROM review_events
        WHERE %s
        ORDER BY reviewed_at ASC, id ASC
        LIMIT %d
    `, strings.Join(conds, " AND "), r.maxRows+1)

	var events []models.ReviewEvent
	err := r.db.SelectContext(ctx, &events, r.db.Rebind(query), args...)
	if err != nil {
		return nil, analytics.TranslateStoreErr("query reviews", err)
	}
	if len(events) > r.maxRows {
		return nil, fmt.Errorf("review window exceeds %d rows: %w", r.maxRows, analytics.ErrRangeTooLarge)
	}
	return events, nil
}
