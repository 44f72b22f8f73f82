package bundled

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	lex, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10, lex.Len())

	gun, ok := lex.Term("Gosper glider gun")
	require.True(t, ok)
	require.Len(t, gun.Cells, 36)
	require.Equal(t, 36, gun.Width)
	require.Equal(t, 9, gun.Height)
	require.Empty(t, gun.Tags)

	demonoid, ok := lex.Term("0hd Demonoid")
	require.True(t, ok)
	require.Equal(t, "See {Demonoid}.", demonoid.Description)
	require.Empty(t, demonoid.Cells)
	require.Zero(t, demonoid.Width)
	require.Zero(t, demonoid.Height)

	mickey, ok := lex.Term("Mickey Mouse")
	require.True(t, ok)
	require.Equal(t, "The following {still life}, named by Mark Niemiec:", mickey.Description)
	require.Equal(t, []string{"p1"}, mickey.Tags)
	require.Len(t, mickey.Cells, 24)
	require.Equal(t, 10, mickey.Width)
	require.Equal(t, 6, mickey.Height)

	puffer, ok := lex.Term("pufferfish")
	require.True(t, ok)
	require.Equal(t, []string{"c/2", "p12"}, puffer.Tags)
	require.Equal(t, "A {puffer} discovered by Richard Schank in November 2014, from a symmetric soup search.", puffer.Description)
}

func TestLoad_ReturnsIndependentValues(t *testing.T) {
	a, err := Load()
	require.NoError(t, err)
	b, err := Load()
	require.NoError(t, err)

	a.Terms[0].Name = "changed"
	require.Equal(t, "0hd Demonoid", b.Terms[0].Name)
}
