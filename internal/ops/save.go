package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/reel/internal/db"
	"github.com/hpungsan/reel/internal/errors"
)

// SaveInput contains parameters for the Save operation.
type SaveInput struct {
	ID   string
	Name string
}

// SaveOutput contains the result of the Save operation.
type SaveOutput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Saved bool   `json:"saved"`
}

// Save marks a session as saved, excluding it from retention pruning.
// The saved flag and the name are set in a single update.
func Save(ctx context.Context, database *sql.DB, input SaveInput) (*SaveOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	saved := true
	if err := db.UpdateSession(ctx, database, id, db.UpdatePatch{Saved: &saved, Name: &name}); err != nil {
		return nil, err
	}

	return &SaveOutput{ID: id, Name: name, Saved: true}, nil
}
