package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hpungsan/reel/internal/errors"
	"github.com/hpungsan/reel/internal/session"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func testSession(id string, createdAt int64, duration float64) *session.Session {
	return &session.Session{
		ID:              id,
		CreatedAt:       createdAt,
		DurationSeconds: duration,
		BlobKey:         id,
		Thumbnails: []session.Thumbnail{
			{OffsetSeconds: 0, Image: []byte("frame0")},
			{OffsetSeconds: 3, Image: []byte("frame1")},
		},
	}
}

func TestCreateSession_RoundTrip(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	s := testSession("01REELTEST0000000000000001", 1000, 5.0)
	payload := []byte("media-bytes")

	if err := CreateSession(ctx, database, s, payload); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	got, err := GetByID(ctx, database, s.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ID != s.ID {
		t.Errorf("ID = %q, want %q", got.ID, s.ID)
	}
	if got.CreatedAt != 1000 {
		t.Errorf("CreatedAt = %d, want 1000", got.CreatedAt)
	}
	if got.DurationSeconds != 5.0 {
		t.Errorf("DurationSeconds = %v, want 5.0", got.DurationSeconds)
	}
	if got.BlobKey != s.ID {
		t.Errorf("BlobKey = %q, want id %q", got.BlobKey, s.ID)
	}
	if got.Saved {
		t.Error("Saved = true, want false for a fresh session")
	}
	if len(got.Thumbnails) != 2 {
		t.Fatalf("len(Thumbnails) = %d, want 2", len(got.Thumbnails))
	}
	if got.Thumbnails[0].OffsetSeconds != 0 || string(got.Thumbnails[0].Image) != "frame0" {
		t.Errorf("Thumbnails[0] = %+v, want offset 0 / frame0", got.Thumbnails[0])
	}
	if got.Thumbnails[1].OffsetSeconds != 3 {
		t.Errorf("Thumbnails[1].OffsetSeconds = %v, want 3", got.Thumbnails[1].OffsetSeconds)
	}

	data, err := GetPayload(ctx, database, s.ID)
	if err != nil {
		t.Fatalf("GetPayload() error = %v", err)
	}
	if string(data) != "media-bytes" {
		t.Errorf("payload = %q, want %q", data, "media-bytes")
	}
}

func TestCreateSession_DuplicateIDRollsBack(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	s := testSession("01REELTEST0000000000000002", 1000, 5.0)
	if err := CreateSession(ctx, database, s, []byte("a")); err != nil {
		t.Fatalf("first CreateSession() error = %v", err)
	}

	// Second insert of the same id fails on the sessions row. The payload
	// row must not survive either (all-or-nothing).
	dup := testSession(s.ID, 2000, 9.0)
	if err := CreateSession(ctx, database, dup, []byte("b")); err == nil {
		t.Fatal("duplicate CreateSession() should fail")
	}

	got, err := GetByID(ctx, database, s.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.CreatedAt != 1000 {
		t.Errorf("CreatedAt = %d, want original 1000 (no partial overwrite)", got.CreatedAt)
	}
	data, err := GetPayload(ctx, database, s.ID)
	if err != nil {
		t.Fatalf("GetPayload() error = %v", err)
	}
	if string(data) != "a" {
		t.Errorf("payload = %q, want original %q", data, "a")
	}
}

func TestCreateSession_FailureLeavesNothing(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	// A thumbnail insert failure must roll the session row back too.
	// Duplicate (session_id, seq) pairs violate the primary key.
	s := testSession("01REELTEST0000000000000003", 1000, 5.0)
	if err := CreateSession(ctx, database, s, []byte("a")); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if err := DeleteSession(ctx, database, s.ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}

	// Pre-seed a conflicting payload row so the payload insert fails after
	// the session and thumbnail inserts succeeded.
	if _, err := database.Exec(`INSERT INTO payloads (id, data) VALUES (?, ?)`, s.ID, []byte("stale")); err != nil {
		t.Fatalf("seed payload: %v", err)
	}

	if err := CreateSession(ctx, database, s, []byte("fresh")); err == nil {
		t.Fatal("CreateSession() with conflicting payload should fail")
	}

	// No session metadata may be visible.
	if _, err := GetByID(ctx, database, s.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetByID() after failed create = %v, want NOT_FOUND", err)
	}
	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM session_thumbnails WHERE session_id = ?`, s.ID).Scan(&count); err != nil {
		t.Fatalf("count thumbnails: %v", err)
	}
	if count != 0 {
		t.Errorf("thumbnail rows = %d, want 0 after rollback", count)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	database := setupDB(t)

	_, err := GetByID(context.Background(), database, "missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want NOT_FOUND", err)
	}
}

func TestGetPayload_NotFound(t *testing.T) {
	database := setupDB(t)

	_, err := GetPayload(context.Background(), database, "missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetPayload() error = %v, want NOT_FOUND", err)
	}
}

func TestListRecent_OrderAndFilter(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	for i, id := range []string{"01A", "01B", "01C"} {
		s := testSession(id, int64(1000+i*100), 10)
		if err := CreateSession(ctx, database, s, []byte("p")); err != nil {
			t.Fatalf("CreateSession(%s) error = %v", id, err)
		}
	}
	// Mark the middle one saved; it must disappear from the recent list.
	saved := true
	name := "keeper"
	if err := UpdateSession(ctx, database, "01B", UpdatePatch{Saved: &saved, Name: &name}); err != nil {
		t.Fatalf("UpdateSession() error = %v", err)
	}

	recent, err := ListRecent(ctx, database, 0)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len(recent) = %d, want 2", len(recent))
	}
	if recent[0].ID != "01C" || recent[1].ID != "01A" {
		t.Errorf("recent order = [%s %s], want [01C 01A]", recent[0].ID, recent[1].ID)
	}
	if recent[0].ThumbnailCount != 2 {
		t.Errorf("ThumbnailCount = %d, want 2", recent[0].ThumbnailCount)
	}

	savedList, err := ListSaved(ctx, database)
	if err != nil {
		t.Fatalf("ListSaved() error = %v", err)
	}
	if len(savedList) != 1 || savedList[0].ID != "01B" {
		t.Fatalf("saved list = %+v, want only 01B", savedList)
	}
	if savedList[0].Name == nil || *savedList[0].Name != "keeper" {
		t.Errorf("saved name = %v, want keeper", savedList[0].Name)
	}
}

func TestListRecent_Limit(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	for i, id := range []string{"01A", "01B", "01C"} {
		if err := CreateSession(ctx, database, testSession(id, int64(1000+i), 10), []byte("p")); err != nil {
			t.Fatalf("CreateSession(%s) error = %v", id, err)
		}
	}

	recent, err := ListRecent(ctx, database, 2)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("len(recent) = %d, want 2", len(recent))
	}
}

func TestUpdateSession_NotFound(t *testing.T) {
	database := setupDB(t)

	saved := true
	err := UpdateSession(context.Background(), database, "missing", UpdatePatch{Saved: &saved})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("UpdateSession() error = %v, want NOT_FOUND", err)
	}
}

func TestUpdateSession_PreservesID(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	s := testSession("01REELTEST0000000000000004", 1000, 5.0)
	if err := CreateSession(ctx, database, s, []byte("p")); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	in, out := 1.5, 4.0
	if err := UpdateSession(ctx, database, s.ID, UpdatePatch{TrimIn: &in, TrimOut: &out}); err != nil {
		t.Fatalf("UpdateSession() error = %v", err)
	}

	got, err := GetByID(ctx, database, s.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ID != s.ID || got.BlobKey != s.ID {
		t.Errorf("id/blob_key changed: %q/%q", got.ID, got.BlobKey)
	}
	if got.TrimIn == nil || *got.TrimIn != 1.5 {
		t.Errorf("TrimIn = %v, want 1.5", got.TrimIn)
	}
	if got.TrimOut == nil || *got.TrimOut != 4.0 {
		t.Errorf("TrimOut = %v, want 4.0", got.TrimOut)
	}
}

func TestDeleteSession_RemovesPair(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	s := testSession("01REELTEST0000000000000005", 1000, 5.0)
	if err := CreateSession(ctx, database, s, []byte("p")); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if err := DeleteSession(ctx, database, s.ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}

	if _, err := GetByID(ctx, database, s.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("metadata still present after delete: %v", err)
	}
	if _, err := GetPayload(ctx, database, s.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("payload still present after delete: %v", err)
	}
	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM session_thumbnails WHERE session_id = ?`, s.ID).Scan(&count); err != nil {
		t.Fatalf("count thumbnails: %v", err)
	}
	if count != 0 {
		t.Errorf("thumbnail rows = %d, want 0", count)
	}
}

func TestDeleteSession_MissingIDIsNoop(t *testing.T) {
	database := setupDB(t)

	if err := DeleteSession(context.Background(), database, "missing"); err != nil {
		t.Errorf("DeleteSession(missing) error = %v, want nil", err)
	}
}
