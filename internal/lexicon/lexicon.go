// Package lexicon parses the Life Lexicon text catalog into typed terms.
//
// The catalog is a block of entries between two delimiter lines. Each entry
// starts with a header line
//
//	:name: (tag, tag) first part of the description
//
// followed by indented continuation lines, tab-prefixed grid rows, and a
// terminating blank line. Grid rows mark live cells with '*'.
package lexicon

// Position is the coordinate of one live cell in a term's initial pattern.
type Position struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// Term is one catalog entry, i.e. a named pattern.
type Term struct {
	// Name of the term. Not guaranteed unique; lookups return the first match.
	Name string `json:"name" msgpack:"name"`

	// Description is the prose of the entry. References to other terms are
	// kept verbatim in curly braces, e.g. "See also {glider}."
	Description string `json:"description" msgpack:"description"`

	// Tags such as "p12" or "c/2", in source order.
	Tags []string `json:"tags" msgpack:"tags"`

	// Cells are the initially alive cells, in row-major scan order.
	Cells []Position `json:"cells" msgpack:"cells"`

	// Width of the pattern, taken from the first grid row.
	Width int `json:"width" msgpack:"width"`

	// Height is the number of grid rows.
	Height int `json:"height" msgpack:"height"`
}

// Lexicon is the ordered list of all terms in a catalog.
// It is built once and must not be modified afterwards.
type Lexicon struct {
	Terms []Term `json:"terms" msgpack:"terms"`
}

// Term returns the first term whose name equals name exactly.
func (l *Lexicon) Term(name string) (*Term, bool) {
	if l == nil {
		return nil, false
	}
	for i := range l.Terms {
		if l.Terms[i].Name == name {
			return &l.Terms[i], true
		}
	}
	return nil, false
}

// Len returns the number of terms.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Terms)
}

// HasPattern reports whether the term carries a grid.
func (t *Term) HasPattern() bool {
	return t.Height > 0
}

// Grid renders the pattern as rows of '.' and '*'. Rows are padded to the
// widest extent actually used, so ragged grids render without losing cells.
func (t *Term) Grid() []string {
	if t.Height == 0 && len(t.Cells) == 0 {
		return nil
	}
	width, height := t.Width, t.Height
	for _, c := range t.Cells {
		width = max(width, c.X+1)
		height = max(height, c.Y+1)
	}

	rows := make([][]byte, height)
	for y := range rows {
		row := make([]byte, width)
		for x := range row {
			row[x] = deadGlyph
		}
		rows[y] = row
	}
	for _, c := range t.Cells {
		if c.X < 0 || c.Y < 0 {
			continue
		}
		rows[c.Y][c.X] = liveGlyph
	}

	out := make([]string, height)
	for y, row := range rows {
		out[y] = string(row)
	}
	return out
}
