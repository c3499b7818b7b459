package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/reel/internal/db"
	"github.com/hpungsan/reel/internal/errors"
)

// TrimInput contains parameters for the Trim operation.
type TrimInput struct {
	ID  string
	In  float64 // seconds from block start
	Out float64 // seconds from block start, must be > In
}

// TrimOutput contains the result of the Trim operation.
type TrimOutput struct {
	ID  string  `json:"id"`
	In  float64 `json:"trim_in"`
	Out float64 `json:"trim_out"`
}

// Trim sets trim points on a saved session.
func Trim(ctx context.Context, database *sql.DB, input TrimInput) (*TrimOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if input.In < 0 {
		return nil, errors.NewInvalidRequest("trim in must be non-negative")
	}
	if input.Out <= input.In {
		return nil, errors.NewInvalidRequest("trim out must be greater than trim in")
	}

	s, err := db.GetByID(ctx, database, id)
	if err != nil {
		return nil, err
	}
	if !s.Saved {
		return nil, errors.NewInvalidRequest("only saved sessions can be trimmed")
	}
	if input.Out > s.DurationSeconds {
		return nil, errors.NewInvalidRequest("trim out exceeds session duration")
	}

	if err := db.UpdateSession(ctx, database, id, db.UpdatePatch{TrimIn: &input.In, TrimOut: &input.Out}); err != nil {
		return nil, err
	}

	return &TrimOutput{ID: id, In: input.In, Out: input.Out}, nil
}
