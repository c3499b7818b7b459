package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/reel/internal/db"
	"github.com/hpungsan/reel/internal/session"
)

// ListRecentInput contains parameters for the ListRecent operation.
type ListRecentInput struct {
	Limit int // default: 20, max: 100
}

// ListRecentOutput contains the result of the ListRecent operation.
type ListRecentOutput struct {
	Items []session.Summary `json:"items"`
	Sort  string            `json:"sort"`
}

// ListRecent retrieves unsaved sessions, newest first.
func ListRecent(ctx context.Context, database *sql.DB, input ListRecentInput) (*ListRecentOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	items, err := db.ListRecent(ctx, database, limit)
	if err != nil {
		return nil, err
	}

	return &ListRecentOutput{Items: items, Sort: "created_at_desc"}, nil
}

// ListSavedOutput contains the result of the ListSaved operation.
type ListSavedOutput struct {
	Items []session.Summary `json:"items"`
	Sort  string            `json:"sort"`
}

// ListSaved retrieves saved sessions, newest first.
func ListSaved(ctx context.Context, database *sql.DB) (*ListSavedOutput, error) {
	items, err := db.ListSaved(ctx, database)
	if err != nil {
		return nil, err
	}

	return &ListSavedOutput{Items: items, Sort: "created_at_desc"}, nil
}
