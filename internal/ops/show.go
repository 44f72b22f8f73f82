package ops

import (
	"strings"

	"github.com/hpungsan/lexicon/internal/errors"
	"github.com/hpungsan/lexicon/internal/lexicon"
)

// Show looks a term up by exact name in a loaded catalog. Unlike Fetch it
// needs no index.
func Show(lex *lexicon.Lexicon, name string) (*TermDetail, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}
	t, ok := lex.Term(name)
	if !ok {
		return nil, errors.NewNotFound(name)
	}
	d := detail(*t)
	return &d, nil
}
