package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hpungsan/reel/internal/db"
	"github.com/hpungsan/reel/internal/errors"
)

// PruneInput contains parameters for the Prune operation.
type PruneInput struct {
	BudgetSeconds float64
}

// PruneOutput contains the result of the Prune operation.
type PruneOutput struct {
	Pruned  int    `json:"pruned"`
	Message string `json:"message"`
}

// Prune deletes the oldest unsaved sessions once their cumulative duration
// exceeds the budget. Walking newest-first, the running total is accumulated
// per session; the session that first pushes the total over the budget is
// still kept, and every session after it is deleted. Saved sessions are never
// inspected.
func Prune(ctx context.Context, database *sql.DB, input PruneInput) (*PruneOutput, error) {
	if input.BudgetSeconds < 0 {
		return nil, errors.NewInvalidRequest("budget_seconds must be non-negative")
	}

	recent, err := db.ListRecent(ctx, database, 0)
	if err != nil {
		return nil, err
	}

	var total float64
	exceeded := false
	pruned := 0
	for _, s := range recent {
		if exceeded {
			if err := db.DeleteSession(ctx, database, s.ID); err != nil {
				return nil, err
			}
			pruned++
			continue
		}
		total += s.DurationSeconds
		if total > input.BudgetSeconds {
			exceeded = true
		}
	}

	return &PruneOutput{
		Pruned:  pruned,
		Message: formatPruneMessage(pruned),
	}, nil
}

// formatPruneMessage creates a human-readable message for the prune result.
func formatPruneMessage(count int) string {
	if count == 0 {
		return "No sessions to prune"
	}
	word := "session"
	if count > 1 {
		word = "sessions"
	}
	return fmt.Sprintf("Pruned %d %s", count, word)
}
