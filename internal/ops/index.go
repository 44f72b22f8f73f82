package ops

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/lexicon/internal/artifact"
	"github.com/hpungsan/lexicon/internal/db"
	"github.com/hpungsan/lexicon/internal/errors"
	"github.com/hpungsan/lexicon/internal/lexicon"
)

// IndexInput contains parameters for the Index operation.
type IndexInput struct {
	Source string // recorded on the build, e.g. a file path
	Force  bool   // reindex even if the catalog is unchanged
}

// IndexOutput contains the result of the Index operation.
type IndexOutput struct {
	BuildID string `json:"build_id" yaml:"build_id"`
	Digest  string `json:"digest" yaml:"digest"`
	Terms   int    `json:"terms" yaml:"terms"`
	Skipped bool   `json:"skipped" yaml:"skipped"`
}

// Index replaces the queryable index with lex. When the latest build has
// the same digest and Force is not set, nothing is written and the existing
// build is reported as skipped.
func Index(ctx context.Context, database *sql.DB, lex *lexicon.Lexicon, input IndexInput) (*IndexOutput, error) {
	if lex == nil {
		return nil, errors.NewInvalidRequest("lexicon is required")
	}

	digest, err := Digest(lex)
	if err != nil {
		return nil, err
	}

	if !input.Force {
		latest, err := db.LatestBuild(ctx, database)
		if err != nil && !errors.Is(err, errors.ErrNotIndexed) {
			return nil, err
		}
		if latest != nil && latest.Digest == digest {
			return &IndexOutput{
				BuildID: latest.ID,
				Digest:  digest,
				Terms:   latest.TermCount,
				Skipped: true,
			}, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("index")
	}

	now := time.Now()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	source := input.Source
	if source == "" {
		source = "unknown"
	}

	b := &db.Build{
		ID:        id.String(),
		Source:    source,
		Digest:    digest,
		TermCount: lex.Len(),
		CreatedAt: now.UnixMilli(),
	}
	if err := db.ReplaceCatalog(ctx, database, b, lex.Terms); err != nil {
		return nil, err
	}

	return &IndexOutput{
		BuildID: b.ID,
		Digest:  digest,
		Terms:   b.TermCount,
	}, nil
}

// Digest is the hex SHA-256 of the catalog's artifact encoding.
func Digest(lex *lexicon.Lexicon) (string, error) {
	data, err := artifact.Marshal(lex)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
