package artifact

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lexicon/internal/bundled"
	"github.com/hpungsan/lexicon/internal/errors"
	"github.com/hpungsan/lexicon/internal/lexicon"
)

func loadBundled(t *testing.T) *lexicon.Lexicon {
	t.Helper()
	lex, err := bundled.Load()
	require.NoError(t, err)
	return lex
}

func TestMarshalUnmarshal(t *testing.T) {
	lex := loadBundled(t)

	data, err := Marshal(lex)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("LEXICON\x00")))
	require.Equal(t, FormatVersion, data[8])

	got, err := Unmarshal(data)
	require.NoError(t, err)
	if diff := cmp.Diff(lex, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("decoded lexicon differs (-want +got):\n%s", diff)
	}

	glider, ok := got.Term("glider")
	require.True(t, ok)
	require.Equal(t, 3, glider.Width)
	require.Len(t, glider.Cells, 5)
}

func TestMarshal_Deterministic(t *testing.T) {
	lex := loadBundled(t)

	a, err := Marshal(lex)
	require.NoError(t, err)
	b, err := Marshal(lex)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestMarshal_NilLexicon(t *testing.T) {
	_, err := Marshal(nil)
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestUnmarshal_Invalid(t *testing.T) {
	valid, err := Marshal(loadBundled(t))
	require.NoError(t, err)

	wrongVersion := append([]byte{}, valid...)
	wrongVersion[8] = 99

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "short header", data: []byte("LEX")},
		{name: "bad magic", data: []byte("NOTALEXICON-DATA")},
		{name: "wrong version", data: wrongVersion},
		{name: "truncated payload", data: valid[:len(valid)/2]},
		{name: "garbage payload", data: append([]byte("LEXICON\x00\x01"), []byte("not zstd at all")...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex, err := Unmarshal(tt.data)
			require.Error(t, err)
			require.Nil(t, lex)
			require.True(t, errors.Is(err, errors.ErrArtifactInvalid), "got %v", err)
		})
	}
}

func TestWriteFileReadFile(t *testing.T) {
	lex := loadBundled(t)
	path := filepath.Join(t.TempDir(), "nested", "lexicon.bin")

	n, err := WriteFile(path, lex)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, n, info.Size())

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, lex.Len(), got.Len())

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.bin")

	_, err := WriteFile(path, &lexicon.Lexicon{Terms: []lexicon.Term{{Name: "old"}}})
	require.NoError(t, err)
	_, err = WriteFile(path, loadBundled(t))
	require.NoError(t, err)

	got, err := ReadFile(path)
	require.NoError(t, err)
	_, ok := got.Term("old")
	require.False(t, ok)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.bin"))
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
