package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/reel/internal/db"
	"github.com/hpungsan/reel/internal/errors"
	"github.com/hpungsan/reel/internal/session"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	CreatedAt       int64   // block start, Unix timestamp
	DurationSeconds float64 // measured block duration
	Thumbnails      []session.Thumbnail
	Payload         []byte // required, non-empty
}

// CreateOutput contains the result of the Create operation.
type CreateOutput struct {
	ID      string           `json:"id"`
	Session *session.Session `json:"session"`
}

// Create persists a finalized block: it mints the session id and writes
// metadata and payload atomically. The id doubles as the blob key.
func Create(ctx context.Context, database *sql.DB, input CreateInput) (*CreateOutput, error) {
	if len(input.Payload) == 0 {
		return nil, errors.NewInvalidRequest("payload is required")
	}
	if input.DurationSeconds < 0 {
		return nil, errors.NewInvalidRequest("duration_seconds must be non-negative")
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	s := &session.Session{
		ID:              id,
		CreatedAt:       input.CreatedAt,
		DurationSeconds: input.DurationSeconds,
		BlobKey:         id,
		Thumbnails:      input.Thumbnails,
	}

	if err := db.CreateSession(ctx, database, s, input.Payload); err != nil {
		return nil, err
	}

	return &CreateOutput{ID: id, Session: s}, nil
}
