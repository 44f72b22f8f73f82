package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/lexicon/internal/db"
	"github.com/hpungsan/lexicon/internal/errors"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	Name string // exact term name, required
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	TermDetail `yaml:",inline"`
	Ordinal    int    `json:"ordinal" yaml:"ordinal"`
	BuildID    string `json:"build_id" yaml:"build_id"`
}

// Fetch retrieves a term by exact name from the latest indexed build.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	build, err := db.LatestBuild(ctx, database)
	if err != nil {
		return nil, err
	}

	row, err := db.GetTermByName(ctx, database, build.ID, input.Name)
	if err != nil {
		return nil, err
	}

	return &FetchOutput{
		TermDetail: detail(row.Term),
		Ordinal:    row.Ordinal,
		BuildID:    build.ID,
	}, nil
}
