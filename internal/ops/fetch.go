package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/reel/internal/db"
	"github.com/hpungsan/reel/internal/errors"
	"github.com/hpungsan/reel/internal/session"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID string
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	*session.Session
	PayloadBytes int `json:"payload_bytes"`
}

// Fetch retrieves a session's metadata by id, plus the size of its payload.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	s, err := db.GetByID(ctx, database, id)
	if err != nil {
		return nil, err
	}

	payload, err := db.GetPayload(ctx, database, s.BlobKey)
	if err != nil {
		return nil, err
	}

	return &FetchOutput{Session: s, PayloadBytes: len(payload)}, nil
}

// Payload retrieves the raw media payload for a session.
func Payload(ctx context.Context, database *sql.DB, id string) ([]byte, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	return db.GetPayload(ctx, database, id)
}
