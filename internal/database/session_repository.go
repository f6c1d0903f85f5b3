package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/example/flashlytics/internal/analytics"
	"github.com/example/flashlytics/pkg/models"
)

// SessionRepository reads session tracking records.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new repository instance.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Query returns sessions matching the filter, ordered by started_at.
func (r *SessionRepository) Query(ctx context.Context, f analytics.SessionFilter) ([]models.SessionTracking, error) {
	var (
		conds = []string{"started_at <= ?"}
		args  = []any{f.AsOf}
	)
	if f.UserID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.From != nil {
		conds = append(conds, "started_at >= ?")
		args = append(args, *f.From)
	}

	query := fmt.Sprintf(`
        SELECT session_id, user_id, started_at, ended_at, device_category, utc_offset_minutes
        FROM session_tracking
        WHERE %s
        ORDER BY started_at ASC, session_id ASC
    `, strings.Join(conds, " AND "))

	var sessions []models.SessionTracking
	if err := r.db.SelectContext(ctx, &sessions, r.db.Rebind(query), args...); err != nil {
		return nil, analytics.TranslateStoreErr("query sessions", err)
	}
	return sessions, nil
}

// GetByID returns one session or ErrNotFound.
func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (*models.SessionTracking, error) {
	query := r.db.Rebind(`
        SELECT session_id, user_id, started_at, ended_at, device_category, utc_offset_minutes
        FROM session_tracking
        WHERE session_id = ?
    `)
	var session models.SessionTracking
	err := r.db.GetContext(ctx, &session, query, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, analytics.ErrNotFound)
	}
	if err != nil {
		return nil, analytics.TranslateStoreErr("get session", err)
	}
	return &session, nil
}
