package database

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/example/flashlytics/internal/analytics"
	"github.com/example/flashlytics/pkg/models"
)

// CardRepository reads card/deck metadata and the prerequisite graph.
type CardRepository struct {
	db *sqlx.DB
}

// NewCardRepository creates a new repository instance.
func NewCardRepository(db *sqlx.DB) *CardRepository {
	return &CardRepository{db: db}
}

// CardsInDeck returns all cards of a deck ordered by id.
func (r *CardRepository) CardsInDeck(ctx context.Context, deckID int64) ([]models.Card, error) {
	query := r.db.Rebind(`
        SELECT id, deck_id, front, created_at
        FROM cards
        WHERE deck_id = ?
        ORDER BY id ASC
    `)
	var cards []models.Card
	if err := r.db.SelectContext(ctx, &cards, query, deckID); err != nil {
		return nil, analytics.TranslateStoreErr("query cards", err)
	}
	return cards, nil
}

type prerequisiteRow struct {
	CardID             int64 `db:"card_id"`
	PrerequisiteCardID int64 `db:"prerequisite_card_id"`
}

// PrerequisiteGraph loads declared card prerequisites, optionally scoped to a
// deck. An empty result means the graph is unknown for the scope, which the
// returned value states explicitly instead of handing back a bare empty map.
func (r *CardRepository) PrerequisiteGraph(ctx context.Context, deckID *int64) (models.PrerequisiteGraph, error) {
	query := `
        SELECT cp.card_id, cp.prerequisite_card_id
        FROM card_prerequisites cp
    `
	var args []any
	if deckID != nil {
		query += `
        JOIN cards c ON c.id = cp.card_id
        WHERE c.deck_id = ?
        `
		args = append(args, *deckID)
	}
	query += " ORDER BY cp.card_id, cp.prerequisite_card_id"

	var rows []prerequisiteRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return models.PrerequisiteGraph{}, analytics.TranslateStoreErr("query prerequisites", err)
	}
	if len(rows) == 0 {
		return models.PrerequisiteGraph{Known: false}, nil
	}

	graph := models.PrerequisiteGraph{
		Known:         true,
		Prerequisites: make(map[int64][]int64, len(rows)),
	}
	for _, row := range rows {
		graph.Prerequisites[row.CardID] = append(graph.Prerequisites[row.CardID], row.PrerequisiteCardID)
	}
	return graph, nil
}
