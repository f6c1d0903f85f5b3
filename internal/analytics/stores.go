package analytics

import (
	"context"
	"time"

	"github.com/example/flashlytics/pkg/models"
)

// ReviewFilter narrows a review-log read. AsOf is always set by the engine so
// every sub-query of one call observes the same snapshot.
type ReviewFilter struct {
	UserID    *int64
	CardID    *int64
	DeckID    *int64
	SessionID *string
	From      *time.Time
	AsOf      time.Time
}

// SessionFilter narrows a session-tracking read.
type SessionFilter struct {
	UserID *int64
	From   *time.Time
	AsOf   time.Time
}

// ReviewStore reads the append-only review log. Results are ordered by
// reviewed_at ascending and capped; a window that would exceed the cap fails
// with ErrRangeTooLarge instead of truncating silently.
type ReviewStore interface {
	Query(ctx context.Context, f ReviewFilter) ([]models.ReviewEvent, error)
}

// SessionStore reads session tracking records.
type SessionStore interface {
	Query(ctx context.Context, f SessionFilter) ([]models.SessionTracking, error)
	GetByID(ctx context.Context, sessionID string) (*models.SessionTracking, error)
}

// CardStore reads card/deck metadata and the optional prerequisite graph.
type CardStore interface {
	CardsInDeck(ctx context.Context, deckID int64) ([]models.Card, error)
	PrerequisiteGraph(ctx context.Context, deckID *int64) (models.PrerequisiteGraph, error)
}
