package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/reel/internal/db"
	"github.com/hpungsan/reel/internal/errors"
	"github.com/hpungsan/reel/internal/session"
	"github.com/stretchr/testify/require"
)

// TestFullWorkflow exercises the complete session lifecycle:
// create → fetch → save → trim → list → export → prune → delete → fetch (not found)
func TestFullWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)
	defer database.Close()

	ctx := context.Background()

	// 1. Create three blocks, oldest first
	var ids []string
	for i := 0; i < 3; i++ {
		out, err := Create(ctx, database, CreateInput{
			CreatedAt:       int64(1000 + i*300),
			DurationSeconds: 120,
			Thumbnails: []session.Thumbnail{
				{OffsetSeconds: 0, Image: []byte("frame0")},
				{OffsetSeconds: 3, Image: []byte("frame1")},
			},
			Payload: []byte("block-media"),
		})
		require.NoError(t, err)
		require.NotEmpty(t, out.ID)
		ids = append(ids, out.ID)
	}
	newest := ids[2]

	// 2. Fetch the newest block
	fetchOut, err := Fetch(ctx, database, FetchInput{ID: newest})
	require.NoError(t, err)
	require.Equal(t, newest, fetchOut.ID)
	require.Equal(t, float64(120), fetchOut.DurationSeconds)
	require.Len(t, fetchOut.Thumbnails, 2)
	require.Equal(t, len("block-media"), fetchOut.PayloadBytes)

	// 3. Save it
	saveOut, err := Save(ctx, database, SaveInput{ID: newest, Name: "demo run"})
	require.NoError(t, err)
	require.True(t, saveOut.Saved)
	require.Equal(t, "demo run", saveOut.Name)

	// 4. Trim the saved clip
	_, err = Trim(ctx, database, TrimInput{ID: newest, In: 10, Out: 90})
	require.NoError(t, err)

	fetchOut, err = Fetch(ctx, database, FetchInput{ID: newest})
	require.NoError(t, err)
	require.NotNil(t, fetchOut.TrimIn)
	require.NotNil(t, fetchOut.TrimOut)
	require.Equal(t, float64(10), *fetchOut.TrimIn)
	require.Equal(t, float64(90), *fetchOut.TrimOut)

	// 5. Saved session leaves the recent list
	listOut, err := ListRecent(ctx, database, ListRecentInput{})
	require.NoError(t, err)
	require.Len(t, listOut.Items, 2)

	savedOut, err := ListSaved(ctx, database)
	require.NoError(t, err)
	require.Len(t, savedOut.Items, 1)
	require.Equal(t, newest, savedOut.Items[0].ID)

	// 6. Export uses the saved name for the file
	exportOut, err := Export(ctx, database, ExportInput{
		ID:     newest,
		Dir:    tmpDir,
		Format: "mp4",
	})
	require.NoError(t, err)
	require.Contains(t, exportOut.Path, "demo run.mp4")
	require.Equal(t, len("block-media"), exportOut.Bytes)

	// 7. Prune with a budget only the newest unsaved block fits; the saved
	// session is untouched
	pruneOut, err := Prune(ctx, database, PruneInput{BudgetSeconds: 100})
	require.NoError(t, err)
	require.Equal(t, 1, pruneOut.Pruned)

	_, err = Fetch(ctx, database, FetchInput{ID: newest})
	require.NoError(t, err)

	// 8. Delete the saved clip; both metadata and payload are gone
	deleteOut, err := Delete(ctx, database, DeleteInput{ID: newest})
	require.NoError(t, err)
	require.Equal(t, newest, deleteOut.ID)

	_, err = Fetch(ctx, database, FetchInput{ID: newest})
	require.Error(t, err)
	var reelErr *errors.ReelError
	require.ErrorAs(t, err, &reelErr)
	require.Equal(t, errors.ErrNotFound, reelErr.Code)

	_, err = Payload(ctx, database, newest)
	require.Error(t, err)
}
