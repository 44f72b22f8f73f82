package ops

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lexicon/internal/bundled"
	"github.com/hpungsan/lexicon/internal/db"
	"github.com/hpungsan/lexicon/internal/lexicon"
)

const smallCatalog = `intro
----
:block: (p1) The most common {still life}.
	**
	**

:blinker: (p2) The smallest {oscillator}.
	***

----
`

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func bundledLexicon(t *testing.T) *lexicon.Lexicon {
	t.Helper()
	lex, err := bundled.Load()
	require.NoError(t, err)
	return lex
}

// setupIndexed returns a database holding the bundled catalog.
func setupIndexed(t *testing.T) *sql.DB {
	t.Helper()
	database := setupDB(t)
	_, err := Index(context.Background(), database, bundledLexicon(t), IndexInput{Source: bundled.Source})
	require.NoError(t, err)
	return database
}

func writeSource(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, "lexicon.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0600))
	return path
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", limit: 0, offset: 0, wantLimit: DefaultListLimit, wantOffset: 0},
		{name: "negative limit", limit: -5, offset: 3, wantLimit: DefaultListLimit, wantOffset: 3},
		{name: "over max", limit: 1000, offset: 0, wantLimit: MaxListLimit, wantOffset: 0},
		{name: "negative offset", limit: 10, offset: -1, wantLimit: 10, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := clampPage(tt.limit, tt.offset, DefaultListLimit, MaxListLimit)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestDetail_EmptyGridIsNotNil(t *testing.T) {
	d := detail(lexicon.Term{Name: "0hd Demonoid", Tags: []string{}, Cells: []lexicon.Position{}})
	assert.NotNil(t, d.Grid)
	assert.Empty(t, d.Grid)
}

func TestSummarize(t *testing.T) {
	row := db.TermRow{Ordinal: 4, Term: lexicon.Term{
		Name:   "blinker",
		Cells:  []lexicon.Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
		Width:  3,
		Height: 1,
	}}

	s := summarize(row)
	assert.Equal(t, TermSummary{Ordinal: 4, Name: "blinker", Tags: []string{}, Width: 3, Height: 1, CellCount: 3}, s)
}
