package db

import (
	"context"
	"database/sql"

	"github.com/hpungsan/reel/internal/errors"
	"github.com/hpungsan/reel/internal/session"
)

// CreateSession writes a session's metadata (row + thumbnails) and its media
// payload in one transaction. Either all records become visible or none do.
func CreateSession(ctx context.Context, db *sql.DB, s *session.Session, payload []byte) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageUnavailable(err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, created_at, duration_seconds, blob_key, saved, name, trim_in, trim_out)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.CreatedAt, s.DurationSeconds, s.BlobKey, boolToInt(s.Saved), s.Name, s.TrimIn, s.TrimOut)
	if err != nil {
		return errors.NewStorageUnavailable(err)
	}

	for i, th := range s.Thumbnails {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO session_thumbnails (session_id, seq, offset_seconds, image)
			VALUES (?, ?, ?, ?)
		`, s.ID, i, th.OffsetSeconds, th.Image)
		if err != nil {
			return errors.NewStorageUnavailable(err)
		}
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO payloads (id, data) VALUES (?, ?)`, s.BlobKey, payload)
	if err != nil {
		return errors.NewStorageUnavailable(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStorageUnavailable(err)
	}
	return nil
}

// GetByID retrieves a session with its thumbnails.
func GetByID(ctx context.Context, db *sql.DB, id string) (*session.Session, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, created_at, duration_seconds, blob_key, saved, name, trim_in, trim_out
		FROM sessions
		WHERE id = ?
	`, id)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT offset_seconds, image
		FROM session_thumbnails
		WHERE session_id = ?
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	for rows.Next() {
		var th session.Thumbnail
		if err := rows.Scan(&th.OffsetSeconds, &th.Image); err != nil {
			return nil, errors.NewInternal(err)
		}
		s.Thumbnails = append(s.Thumbnails, th)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return s, nil
}

// GetPayload retrieves the media payload for a session.
func GetPayload(ctx context.Context, db *sql.DB, id string) ([]byte, error) {
	var data []byte
	err := db.QueryRowContext(ctx, `SELECT data FROM payloads WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return data, nil
}

// ListRecent returns unsaved sessions ordered by created_at descending.
// limit <= 0 means no limit.
func ListRecent(ctx context.Context, db *sql.DB, limit int) ([]session.Summary, error) {
	query := `
		SELECT s.id, s.created_at, s.duration_seconds, s.saved, s.name, s.trim_in, s.trim_out,
			(SELECT COUNT(*) FROM session_thumbnails t WHERE t.session_id = s.id)
		FROM sessions s
		WHERE s.saved = 0
		ORDER BY s.created_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return listSummaries(ctx, db, query, args...)
}

// ListSaved returns saved sessions ordered by created_at descending.
func ListSaved(ctx context.Context, db *sql.DB) ([]session.Summary, error) {
	return listSummaries(ctx, db, `
		SELECT s.id, s.created_at, s.duration_seconds, s.saved, s.name, s.trim_in, s.trim_out,
			(SELECT COUNT(*) FROM session_thumbnails t WHERE t.session_id = s.id)
		FROM sessions s
		WHERE s.saved = 1
		ORDER BY s.created_at DESC
	`)
}

// UpdatePatch holds the mutable session fields for UpdateSession.
// Nil fields are left untouched. ID, created_at, duration and blob_key are
// immutable and cannot be patched.
type UpdatePatch struct {
	Saved   *bool
	Name    *string
	TrimIn  *float64
	TrimOut *float64
}

// UpdateSession merges a patch into an existing session row.
// Returns NotFound if the id is absent.
func UpdateSession(ctx context.Context, db *sql.DB, id string, patch UpdatePatch) error {
	query := "UPDATE sessions SET "
	args := []any{}
	first := true

	appendSet := func(col string, val any) {
		if !first {
			query += ", "
		}
		query += col + " = ?"
		args = append(args, val)
		first = false
	}

	if patch.Saved != nil {
		appendSet("saved", boolToInt(*patch.Saved))
	}
	if patch.Name != nil {
		appendSet("name", *patch.Name)
	}
	if patch.TrimIn != nil {
		appendSet("trim_in", *patch.TrimIn)
	}
	if patch.TrimOut != nil {
		appendSet("trim_out", *patch.TrimOut)
	}

	if first {
		// Empty patch: still report NotFound for a missing id.
		_, err := GetByID(ctx, db, id)
		return err
	}

	query += " WHERE id = ?"
	args = append(args, id)

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewStorageUnavailable(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// DeleteSession removes a session's metadata, thumbnails and payload in one
// transaction. Deleting a non-existent id is not an error.
func DeleteSession(ctx context.Context, db *sql.DB, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageUnavailable(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_thumbnails WHERE session_id = ?`, id); err != nil {
		return errors.NewStorageUnavailable(err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM payloads WHERE id = ?`, id); err != nil {
		return errors.NewStorageUnavailable(err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return errors.NewStorageUnavailable(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStorageUnavailable(err)
	}
	return nil
}

// listSummaries runs a summary query and scans the result rows.
func listSummaries(ctx context.Context, db *sql.DB, query string, args ...any) ([]session.Summary, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	summaries := make([]session.Summary, 0)
	for rows.Next() {
		var s session.Summary
		var saved int
		var name sql.NullString
		var trimIn, trimOut sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.DurationSeconds, &saved, &name, &trimIn, &trimOut, &s.ThumbnailCount); err != nil {
			return nil, errors.NewInternal(err)
		}
		s.Saved = saved != 0
		s.Name = fromNullString(name)
		s.TrimIn = fromNullFloat(trimIn)
		s.TrimOut = fromNullFloat(trimOut)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return summaries, nil
}

// scanSession scans a single session row (without thumbnails).
func scanSession(row *sql.Row) (*session.Session, error) {
	var s session.Session
	var saved int
	var name sql.NullString
	var trimIn, trimOut sql.NullFloat64

	err := row.Scan(&s.ID, &s.CreatedAt, &s.DurationSeconds, &s.BlobKey, &saved, &name, &trimIn, &trimOut)
	if err != nil {
		return nil, err
	}

	s.Saved = saved != 0
	s.Name = fromNullString(name)
	s.TrimIn = fromNullFloat(trimIn)
	s.TrimOut = fromNullFloat(trimOut)
	return &s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func fromNullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}
