package ops

import (
	"github.com/hpungsan/lexicon/internal/db"
	"github.com/hpungsan/lexicon/internal/lexicon"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit" yaml:"limit"`
	Offset  int  `json:"offset" yaml:"offset"`
	HasMore bool `json:"has_more" yaml:"has_more"`
	Total   int  `json:"total" yaml:"total"`
}

// TermSummary is a term without its description and cells.
type TermSummary struct {
	Ordinal   int      `json:"ordinal" yaml:"ordinal"`
	Name      string   `json:"name" yaml:"name"`
	Tags      []string `json:"tags" yaml:"tags"`
	Width     int      `json:"width" yaml:"width"`
	Height    int      `json:"height" yaml:"height"`
	CellCount int      `json:"cell_count" yaml:"cell_count"`
}

func summarize(row db.TermRow) TermSummary {
	tags := row.Tags
	if tags == nil {
		tags = []string{}
	}
	return TermSummary{
		Ordinal:   row.Ordinal,
		Name:      row.Name,
		Tags:      tags,
		Width:     row.Width,
		Height:    row.Height,
		CellCount: len(row.Cells),
	}
}

// clampPage applies limit defaults and bounds and keeps offset non-negative.
func clampPage(limit, offset, def, maxLimit int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, max(offset, 0)
}

// TermDetail is a full term together with its rendered grid.
type TermDetail struct {
	lexicon.Term `yaml:",inline"`
	Grid         []string `json:"grid" yaml:"grid"`
}

func detail(t lexicon.Term) TermDetail {
	grid := t.Grid()
	if grid == nil {
		grid = []string{}
	}
	return TermDetail{Term: t, Grid: grid}
}
