package ops

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/reel/internal/db"
	"github.com/hpungsan/reel/internal/errors"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	ID     string
	Dir    string // destination directory, typically baseDir/exports
	Format string // file extension, e.g. "mp4"
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

// Export writes a session's media payload to a file in the export directory.
// The file is named after the session's name when saved, otherwise its id.
func Export(ctx context.Context, database *sql.DB, input ExportInput) (*ExportOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if input.Dir == "" {
		return nil, errors.NewInvalidRequest("export directory is required")
	}
	format := input.Format
	if format == "" {
		format = "mp4"
	}

	s, err := db.GetByID(ctx, database, id)
	if err != nil {
		return nil, err
	}
	payload, err := db.GetPayload(ctx, database, s.BlobKey)
	if err != nil {
		return nil, err
	}

	base := s.ID
	if s.Saved && s.Name != nil && *s.Name != "" {
		base = sanitizeFilename(*s.Name)
	}
	path := filepath.Join(input.Dir, fmt.Sprintf("%s.%s", base, format))

	if err := os.WriteFile(path, payload, 0600); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ExportOutput{ID: id, Path: path, Bytes: len(payload)}, nil
}

// sanitizeFilename strips path separators and control characters from a
// session name so it is safe as a file name.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || r < 0x20:
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "session"
	}
	return out
}
