package models

import "time"

// Card is identity and grouping metadata for a flashcard.
type Card struct {
	ID        int64     `json:"id" db:"id"`
	DeckID    int64     `json:"deck_id" db:"deck_id"`
	Front     string    `json:"front" db:"front"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PrerequisiteGraph maps a card to the cards it depends on. The graph is an
// optional external input: Known is false when no prerequisite data exists at
// all, which callers must treat as "unknown", not as an empty graph.
type PrerequisiteGraph struct {
	Known         bool              `json:"known"`
	Prerequisites map[int64][]int64 `json:"prerequisites,omitempty"`
}
