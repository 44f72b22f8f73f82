package ops

import (
	"context"
	"fmt"
	"os"

	"github.com/hpungsan/lexicon/internal/artifact"
	"github.com/hpungsan/lexicon/internal/bundled"
	"github.com/hpungsan/lexicon/internal/errors"
	"github.com/hpungsan/lexicon/internal/lexicon"
)

// LoadInput names where a catalog may come from. The first non-empty,
// existing location wins: ArtifactPath, then SourcePath, then the bundled
// catalog.
type LoadInput struct {
	ArtifactPath string
	SourcePath   string
}

// LoadOutput is a loaded catalog and the location it was read from.
type LoadOutput struct {
	Lexicon *lexicon.Lexicon
	Source  string
}

// Load resolves and reads a catalog.
func Load(ctx context.Context, input LoadInput) (*LoadOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("load")
	}

	if input.ArtifactPath != "" {
		if _, err := os.Stat(input.ArtifactPath); err == nil {
			if err := ValidateArtifactPath(input.ArtifactPath, PathCheckRead); err != nil {
				return nil, err
			}
			lex, err := artifact.ReadFile(input.ArtifactPath)
			if err != nil {
				return nil, err
			}
			return &LoadOutput{Lexicon: lex, Source: input.ArtifactPath}, nil
		}
	}

	if input.SourcePath != "" {
		lex, err := readSource(input.SourcePath)
		if err != nil {
			return nil, err
		}
		return &LoadOutput{Lexicon: lex, Source: input.SourcePath}, nil
	}

	lex, err := bundled.Load()
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("bundled lexicon: %w", err))
	}
	return &LoadOutput{Lexicon: lex, Source: bundled.Source}, nil
}

// readSource parses the lexicon text at path.
func readSource(path string) (*lexicon.Lexicon, error) {
	if err := ValidateSourcePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("open source: %w", err))
	}
	defer f.Close()
	return lexicon.ParseReader(f)
}
