package ops

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lexicon/internal/db"
	"github.com/hpungsan/lexicon/internal/errors"
)

// TestFullWorkflow exercises the complete catalog lifecycle:
// build → load → show → index → list → search → fetch → reindex (skipped)
func TestFullWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)
	defer database.Close()
	ctx := context.Background()

	source := writeSource(t, tmpDir, smallCatalog)
	artifactPath := filepath.Join(tmpDir, "lexicon.bin")

	// 1. Build
	buildOut, err := Build(ctx, BuildInput{Source: source, Output: artifactPath})
	require.NoError(t, err)
	require.Equal(t, 2, buildOut.Terms)

	// 2. Load prefers the artifact
	loaded, err := Load(ctx, LoadInput{ArtifactPath: artifactPath, SourcePath: source})
	require.NoError(t, err)
	require.Equal(t, artifactPath, loaded.Source)

	// 3. Show works without an index
	shown, err := Show(loaded.Lexicon, "blinker")
	require.NoError(t, err)
	require.Equal(t, []string{"***"}, shown.Grid)

	_, err = List(ctx, database, ListInput{})
	require.True(t, errors.Is(err, errors.ErrNotIndexed))

	// 4. Index
	indexOut, err := Index(ctx, database, loaded.Lexicon, IndexInput{Source: loaded.Source})
	require.NoError(t, err)
	require.False(t, indexOut.Skipped)

	// 5. List
	listOut, err := List(ctx, database, ListInput{})
	require.NoError(t, err)
	require.Len(t, listOut.Items, 2)
	require.Equal(t, indexOut.BuildID, listOut.BuildID)

	// 6. Search
	searchOut, err := Search(ctx, database, SearchInput{Query: "still life"})
	require.NoError(t, err)
	require.Len(t, searchOut.Items, 1)
	require.Equal(t, "block", searchOut.Items[0].Name)

	// 7. Fetch matches the in-memory term
	fetchOut, err := Fetch(ctx, database, FetchInput{Name: "blinker"})
	require.NoError(t, err)
	require.Equal(t, shown.Term, fetchOut.Term)
	require.Equal(t, shown.Grid, fetchOut.Grid)

	// 8. Reindexing the same catalog is a no-op
	again, err := Index(ctx, database, loaded.Lexicon, IndexInput{Source: loaded.Source})
	require.NoError(t, err)
	require.True(t, again.Skipped)
	require.Equal(t, indexOut.BuildID, again.BuildID)
}
