package lexicon

import (
	"fmt"
	"io"
	"strings"

	"github.com/hpungsan/lexicon/internal/errors"
)

type parseState int

const (
	beforeCatalog parseState = iota
	inCatalog
	done
)

// lines is a forward-only cursor over the input lines.
type lines struct {
	text []string
	pos  int // number of lines consumed so far, i.e. the 1-based line number of the last one
}

func newLines(text string) *lines {
	return &lines{text: splitLines(text)}
}

func (l *lines) next() (string, bool) {
	if l.pos >= len(l.text) {
		return "", false
	}
	line := l.text[l.pos]
	l.pos++
	return line, true
}

// splitLines splits on "\n", drops a trailing "\r" from each line and does
// not yield an empty line after a final terminator.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	out := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range out {
		out[i] = strings.TrimSuffix(line, "\r")
	}
	return out
}

// Parse builds a Lexicon from the full catalog text. Any malformed input
// aborts the whole parse with a *errors.LexError and a nil Lexicon.
func Parse(text string) (*Lexicon, error) {
	in := newLines(text)
	lex := &Lexicon{Terms: []Term{}}

	state := beforeCatalog
	for state != done {
		line, ok := in.next()
		if !ok {
			if state == beforeCatalog {
				return nil, errors.NewStructural("no catalog start found", in.pos)
			}
			return nil, errors.NewStructural("unexpected end of input, catalog is not closed", in.pos)
		}

		cl := Classify(line)
		switch state {
		case beforeCatalog:
			if cl.Kind == KindDelimiter {
				state = inCatalog
			}
		case inCatalog:
			switch cl.Kind {
			case KindDelimiter:
				state = done
			case KindMalformedHeader:
				return nil, errors.NewGrammar("cannot parse term header", in.pos, line)
			case KindHeader:
				term, err := buildTerm(in, cl.Header)
				if err != nil {
					return nil, err
				}
				lex.Terms = append(lex.Terms, term)
			}
		}
	}

	return lex, nil
}

// ParseReader reads r to the end and parses it.
func ParseReader(r io.Reader) (*Lexicon, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("read lexicon: %w", err))
	}
	return Parse(string(data))
}

// buildTerm accumulates the lines following a header until the blank line
// that closes the entry.
//
// Grid rows are only accepted until description text resumes after them:
// once a continuation follows the first grid row the grid is closed, and
// later rows neither add cells nor count toward the height.
func buildTerm(in *lines, h *Header) (Term, error) {
	term := Term{
		Name:        h.Name,
		Description: h.Description,
		Tags:        h.Tags,
	}
	if term.Tags == nil {
		term.Tags = []string{}
	}
	term.Cells = []Position{}

	var (
		rows       int
		gridOpen   bool
		gridClosed bool
	)
	for {
		line, ok := in.next()
		if !ok {
			return Term{}, errors.NewStructural("unexpected end of input", in.pos)
		}

		cl := Classify(line)
		switch cl.Kind {
		case KindTerminator:
			term.Height = rows
			return term, nil
		case KindContinuation:
			if gridOpen {
				gridClosed = true
			}
			term.Description = appendFragment(term.Description, cl.Text)
		case KindGridRow:
			if gridClosed {
				continue
			}
			if !gridOpen {
				gridOpen = true
				term.Width = cl.Width
			}
			for _, x := range cl.Live {
				term.Cells = append(term.Cells, Position{X: x, Y: rows})
			}
			rows++
		}
	}
}

// appendFragment adds a continuation fragment after exactly one space. The
// space is written even when either side is empty, so an entry whose header
// carries no text starts with a space.
func appendFragment(desc, fragment string) string {
	return desc + " " + fragment
}
