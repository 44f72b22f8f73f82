package ops

import (
	"context"

	"github.com/hpungsan/lexicon/internal/artifact"
	"github.com/hpungsan/lexicon/internal/bundled"
	"github.com/hpungsan/lexicon/internal/errors"
	"github.com/hpungsan/lexicon/internal/lexicon"
)

// BuildInput contains parameters for the Build operation.
type BuildInput struct {
	Source string // lexicon text file; empty means the bundled catalog
	Output string // artifact path, required
}

// BuildOutput contains the result of the Build operation.
type BuildOutput struct {
	Source string `json:"source" yaml:"source"`
	Output string `json:"output" yaml:"output"`
	Terms  int    `json:"terms" yaml:"terms"`
	Bytes  int64  `json:"bytes" yaml:"bytes"`
}

// Build parses the lexicon text and writes it as a binary artifact.
func Build(ctx context.Context, input BuildInput) (*BuildOutput, error) {
	if err := ValidateArtifactPath(input.Output, PathCheckWrite); err != nil {
		return nil, err
	}

	var (
		lex    *lexicon.Lexicon
		source string
		err    error
	)
	if input.Source == "" {
		lex, err = bundled.Load()
		source = bundled.Source
	} else {
		lex, err = readSource(input.Source)
		source = input.Source
	}
	if err != nil {
		return nil, err
	}

	// Parsing can take a while on a full catalog; don't write after cancel.
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("build")
	}

	n, err := artifact.WriteFile(input.Output, lex)
	if err != nil {
		return nil, err
	}

	return &BuildOutput{
		Source: source,
		Output: input.Output,
		Terms:  lex.Len(),
		Bytes:  n,
	}, nil
}
