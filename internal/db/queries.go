package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/hpungsan/lexicon/internal/errors"
	"github.com/hpungsan/lexicon/internal/lexicon"
)

// Build records one indexing of a catalog.
type Build struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Digest    string `json:"digest"`
	TermCount int    `json:"term_count"`
	CreatedAt int64  `json:"created_at"`
}

// TermRow is a term as stored in the index, with its position in the catalog.
type TermRow struct {
	Ordinal int `json:"ordinal"`
	lexicon.Term
}

// TermFilter narrows list and search queries. Empty fields are ignored.
type TermFilter struct {
	Tag        string
	NamePrefix string
}

const termColumns = `ordinal, name, description, tags_json, cells_json, width, height`

// ReplaceCatalog records a new build and replaces all indexed terms with
// terms, in a single transaction.
func ReplaceCatalog(ctx context.Context, db *sql.DB, b *Build, terms []lexicon.Term) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO builds (id, source, digest, term_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Source, b.Digest, b.TermCount, b.CreatedAt,
	); err != nil {
		return errors.NewInternal(err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM terms`); err != nil {
		return errors.NewInternal(err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO terms (
			build_id, ordinal, name, name_norm, description, description_norm,
			tags_json, cells_json, width, height
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer stmt.Close()

	for i := range terms {
		t := &terms[i]
		tagsJSON, err := marshalJSON(t.Tags, "[]")
		if err != nil {
			return errors.NewInternal(err)
		}
		cellsJSON, err := marshalJSON(t.Cells, "[]")
		if err != nil {
			return errors.NewInternal(err)
		}
		if _, err := stmt.ExecContext(ctx,
			b.ID, i, t.Name, lexicon.NormalizeName(t.Name), t.Description, strings.ToLower(t.Description),
			tagsJSON, cellsJSON, t.Width, t.Height,
		); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// LatestBuild returns the most recently recorded build, or ErrNotIndexed if
// none exists. Insertion order decides, so builds within the same
// millisecond still resolve.
func LatestBuild(ctx context.Context, db *sql.DB) (*Build, error) {
	var b Build
	err := db.QueryRowContext(ctx, `
		SELECT id, source, digest, term_count, created_at
		FROM builds
		ORDER BY rowid DESC
		LIMIT 1
	`).Scan(&b.ID, &b.Source, &b.Digest, &b.TermCount, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotIndexed()
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &b, nil
}

// CountBuilds returns the number of recorded builds.
func CountBuilds(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM builds`).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// GetTermByName returns the first term (by catalog order) whose name equals
// name exactly.
func GetTermByName(ctx context.Context, db *sql.DB, buildID, name string) (*TermRow, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+termColumns+`
		FROM terms
		WHERE build_id = ? AND name = ?
		ORDER BY ordinal
		LIMIT 1
	`, buildID, name)

	t, err := scanTerm(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(name)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return t, nil
}

// ListTerms returns a page of terms in catalog order and the total number
// of matching terms.
func ListTerms(ctx context.Context, db *sql.DB, buildID string, filter TermFilter, limit, offset int) ([]TermRow, int, error) {
	where, args := filterClause(buildID, filter)
	return queryPage(ctx, db, where, args, limit, offset)
}

// SearchTerms matches query case-insensitively against names and
// descriptions. Both sides are folded with strings.ToLower, so non-ASCII
// letters match regardless of case.
func SearchTerms(ctx context.Context, db *sql.DB, buildID, query string, filter TermFilter, limit, offset int) ([]TermRow, int, error) {
	where, args := filterClause(buildID, filter)
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	where += ` AND (name_norm LIKE ? ESCAPE '\' OR description_norm LIKE ? ESCAPE '\')`
	args = append(args, pattern, pattern)
	return queryPage(ctx, db, where, args, limit, offset)
}

// filterClause builds the WHERE clause shared by list and search.
func filterClause(buildID string, filter TermFilter) (string, []any) {
	where := "build_id = ?"
	args := []any{buildID}

	if filter.Tag != "" {
		where += " AND EXISTS (SELECT 1 FROM json_each(terms.tags_json) WHERE json_each.value = ?)"
		args = append(args, filter.Tag)
	}
	if filter.NamePrefix != "" {
		where += ` AND name_norm LIKE ? ESCAPE '\'`
		args = append(args, escapeLike(lexicon.NormalizeName(filter.NamePrefix))+"%")
	}
	return where, args
}

func queryPage(ctx context.Context, db *sql.DB, where string, args []any, limit, offset int) ([]TermRow, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM terms WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	pageArgs := append(append([]any{}, args...), limit, offset)
	rows, err := db.QueryContext(ctx,
		"SELECT "+termColumns+" FROM terms WHERE "+where+" ORDER BY ordinal LIMIT ? OFFSET ?",
		pageArgs...,
	)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []TermRow
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return out, total, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTerm scans a single row selected with termColumns.
func scanTerm(row rowScanner) (*TermRow, error) {
	var (
		t         TermRow
		tagsJSON  string
		cellsJSON string
	)
	if err := row.Scan(&t.Ordinal, &t.Name, &t.Description, &tagsJSON, &cellsJSON, &t.Width, &t.Height); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(cellsJSON), &t.Cells); err != nil {
		return nil, err
	}
	return &t, nil
}

// marshalJSON encodes v, using empty for a nil slice.
func marshalJSON(v any, empty string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return empty, nil
	}
	return string(data), nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
