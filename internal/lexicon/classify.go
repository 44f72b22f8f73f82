package lexicon

import (
	"regexp"
	"strings"
)

// LineKind is the syntactic role of one catalog line.
type LineKind int

const (
	KindOther           LineKind = iota // no role
	KindDelimiter                       // "----" and longer
	KindHeader                          // ":name: (tags) description"
	KindMalformedHeader                 // starts with ':' but fails the header grammar
	KindGridRow                         // tab-prefixed row of '.' and '*'
	KindContinuation                    // indented description text
	KindTerminator                      // empty line, closes an entry
)

var kindNames = map[LineKind]string{
	KindOther:           "other",
	KindDelimiter:       "delimiter",
	KindHeader:          "header",
	KindMalformedHeader: "malformed-header",
	KindGridRow:         "grid-row",
	KindContinuation:    "continuation",
	KindTerminator:      "terminator",
}

func (k LineKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

const (
	liveGlyph        = '*'
	deadGlyph        = '.'
	minDelimiterLen  = 4
	continuationLead = "   "
)

// headerPattern matches ":name: (tag, tag) description".
// Groups: name, parenthesized tags (optional), tag list, description.
var headerPattern = regexp.MustCompile(`^:([^:]+): (\(([^)]+)\))?(.*)$`)

// Header is the decoded content of an entry header line.
type Header struct {
	Name        string
	Tags        []string
	Description string
}

// Line is the classification of one input line.
type Line struct {
	Kind LineKind

	// Header is set for KindHeader.
	Header *Header

	// Live holds the live columns of a KindGridRow; Width is the row's
	// column count after the leading tab.
	Live  []int
	Width int

	// Text is the trimmed fragment of a KindContinuation.
	Text string
}

// Classify determines the role of a single line (without its terminator).
// It looks at nothing but the line itself.
func Classify(line string) Line {
	switch {
	case isDelimiter(line):
		return Line{Kind: KindDelimiter}
	case strings.HasPrefix(line, ":"):
		h, ok := ParseHeader(line)
		if !ok {
			return Line{Kind: KindMalformedHeader}
		}
		return Line{Kind: KindHeader, Header: h}
	case strings.HasPrefix(line, "\t"):
		live, width := decodeRow(line[1:])
		return Line{Kind: KindGridRow, Live: live, Width: width}
	case strings.HasPrefix(line, continuationLead):
		return Line{Kind: KindContinuation, Text: strings.TrimSpace(line)}
	case line == "":
		return Line{Kind: KindTerminator}
	default:
		return Line{Kind: KindOther}
	}
}

// ParseHeader decodes an entry header line. The boolean is false when the
// line does not follow the header grammar.
func ParseHeader(line string) (*Header, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	h := &Header{
		Name:        m[1],
		Description: strings.TrimSpace(m[4]),
	}
	if m[2] != "" {
		h.Tags = strings.Split(m[3], ", ")
	}
	return h, true
}

// isDelimiter reports whether line is a run of at least four dashes.
// Trailing whitespace is tolerated.
func isDelimiter(line string) bool {
	line = strings.TrimRight(line, " \t\r")
	if len(line) < minDelimiterLen {
		return false
	}
	return strings.Trim(line, "-") == ""
}

// decodeRow returns the columns holding a live glyph and the row width in
// characters.
func decodeRow(row string) ([]int, int) {
	var live []int
	col := 0
	for _, r := range row {
		if r == liveGlyph {
			live = append(live, col)
		}
		col++
	}
	return live, col
}
