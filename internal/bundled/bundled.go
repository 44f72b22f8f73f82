// Package bundled carries the default lexicon compiled into the binary.
package bundled

import (
	_ "embed"

	"github.com/hpungsan/lexicon/internal/lexicon"
)

// Source is the name reported for the embedded catalog.
const Source = "bundled:lexicon.txt"

//go:embed lexicon.txt
var text string

// Text returns the raw embedded catalog.
func Text() string {
	return text
}

// Load parses the embedded catalog. Each call returns a new value; callers
// load it once at startup and pass it around.
func Load() (*lexicon.Lexicon, error) {
	return lexicon.Parse(text)
}
