package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/lexicon/internal/db"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Tag    string // optional, exact tag such as "p2"
	Prefix string // optional, case-insensitive name prefix
	Limit  int    // default: 20, max: 100
	Offset int    // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []TermSummary `json:"items" yaml:"items"`
	Pagination Pagination    `json:"pagination" yaml:"pagination"`
	BuildID    string        `json:"build_id" yaml:"build_id"`
}

// List retrieves term summaries in catalog order with pagination.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	limit, offset := clampPage(input.Limit, input.Offset, DefaultListLimit, MaxListLimit)

	build, err := db.LatestBuild(ctx, database)
	if err != nil {
		return nil, err
	}

	filter := db.TermFilter{
		Tag:        strings.TrimSpace(input.Tag),
		NamePrefix: strings.TrimSpace(input.Prefix),
	}
	rows, total, err := db.ListTerms(ctx, database, build.ID, filter, limit, offset)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	items := make([]TermSummary, 0, len(rows))
	for _, r := range rows {
		items = append(items, summarize(r))
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		BuildID: build.ID,
	}, nil
}
