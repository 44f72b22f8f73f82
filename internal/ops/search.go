package ops

import (
	"context"
	"database/sql"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/lexicon/internal/db"
	"github.com/hpungsan/lexicon/internal/errors"
)

// Search limits
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
	MaxQueryLength     = 200
	MaxSnippetChars    = 200
	snippetLead        = 60
)

// Highlight markers placed around the match before escaping.
const (
	openMarker  = "[[[B]]]"
	closeMarker = "[[[/B]]]"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query  string // required
	Tag    string // optional filter
	Limit  int    // default: 20, max: 100
	Offset int    // default: 0
}

// SearchResultItem wraps a TermSummary with a match snippet.
type SearchResultItem struct {
	TermSummary `yaml:",inline"`
	// Snippet is HTML-safe: description text is escaped; only <b>...</b>
	// highlight tags are present.
	Snippet string `json:"snippet" yaml:"snippet"`
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Items      []SearchResultItem `json:"items" yaml:"items"`
	Pagination Pagination         `json:"pagination" yaml:"pagination"`
	BuildID    string             `json:"build_id" yaml:"build_id"`
}

// Search matches the query as a case-insensitive substring of term names
// and descriptions. Results are in catalog order.
func Search(ctx context.Context, database *sql.DB, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength))
	}

	limit, offset := clampPage(input.Limit, input.Offset, DefaultSearchLimit, MaxSearchLimit)

	build, err := db.LatestBuild(ctx, database)
	if err != nil {
		return nil, err
	}

	filter := db.TermFilter{Tag: strings.TrimSpace(input.Tag)}
	rows, total, err := db.SearchTerms(ctx, database, build.ID, query, filter, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]SearchResultItem, 0, len(rows))
	for _, r := range rows {
		snippet := escapeSnippetHTML(markMatch(r.Description, query))
		items = append(items, SearchResultItem{
			TermSummary: summarize(r),
			Snippet:     truncateSnippet(snippet, MaxSnippetChars),
		})
	}

	return &SearchOutput{
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

// markMatch surrounds the first case-insensitive occurrence of query in
// text with highlight markers and drops text far ahead of it. Text without
// a match is returned unchanged.
func markMatch(text, query string) string {
	lower := strings.ToLower(text)
	lowerQuery := strings.ToLower(query)
	// Case folding changed byte offsets; skip highlighting.
	if len(lower) != len(text) || len(lowerQuery) != len(query) {
		return text
	}
	idx := strings.Index(lower, lowerQuery)
	if idx < 0 {
		return text
	}
	end := idx + len(lowerQuery)

	start := 0
	prefix := ""
	if idx > snippetLead {
		start = idx - snippetLead
		for start < idx && !utf8.RuneStart(text[start]) {
			start++
		}
		if text[start-1] != ' ' {
			if sp := strings.IndexByte(text[start:idx], ' '); sp >= 0 {
				start += sp + 1
			}
		}
		prefix = "..."
	}

	return prefix + text[start:idx] + openMarker + text[idx:end] + closeMarker + text[end:]
}

// truncateSnippet truncates a snippet to approximately maxChars while:
// 1. Preserving valid UTF-8 (never splits multi-byte runes)
// 2. Preserving markup integrity (closes any open <b> tags)
// 3. Preferring word boundaries when possible
func truncateSnippet(s string, maxChars int) string {
	if maxChars <= 0 {
		return "..."
	}

	if len(s) <= maxChars {
		return s
	}

	truncateAt := maxChars
	for truncateAt > 0 && !utf8.RuneStart(s[truncateAt]) {
		truncateAt--
	}
	if truncateAt == 0 {
		return "..."
	}

	truncated := s[:truncateAt]

	// Trim a partial tag or entity left at the cut
	if lastLT := strings.LastIndex(truncated, "<"); lastLT != -1 && !strings.Contains(truncated[lastLT:], ">") {
		truncated = truncated[:lastLT]
	}
	if lastAmp := strings.LastIndex(truncated, "&"); lastAmp != -1 && !strings.Contains(truncated[lastAmp:], ";") {
		truncated = truncated[:lastAmp]
	}

	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > truncateAt/2 {
		truncated = truncated[:lastSpace]
	}

	unclosed := strings.Count(truncated, "<b>") - strings.Count(truncated, "</b>")
	for range unclosed {
		truncated += "</b>"
	}

	return truncated + "..."
}

// escapeSnippetHTML escapes description text while turning the highlight
// markers into <b> tags.
func escapeSnippetHTML(s string) string {
	const (
		openPlaceholder  = "\x00LEX_B_OPEN\x00"
		closePlaceholder = "\x00LEX_B_CLOSE\x00"
	)

	s = strings.ReplaceAll(s, openMarker, openPlaceholder)
	s = strings.ReplaceAll(s, closeMarker, closePlaceholder)

	s = html.EscapeString(s)

	s = strings.ReplaceAll(s, openPlaceholder, "<b>")
	s = strings.ReplaceAll(s, closePlaceholder, "</b>")

	return s
}
