// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citekit/internal/refs"
	"github.com/pdiddy/citekit/pkg/types"
)

// QueryOptions holds the parameters of a library search.
type QueryOptions struct {
	// Query is an FTS4 match expression over titles and names.
	Query string

	// Kind filters by item kind.
	Kind string

	// Year filters by issued year.
	Year string

	// MaxResults limits the result count. Zero uses the store default.
	MaxResults int
}

// Result is one search hit.
type Result struct {
	ID    string `json:"id" yaml:"id"`
	Kind  string `json:"kind" yaml:"kind"`
	Title string `json:"title" yaml:"title"`
	Names string `json:"names" yaml:"names"`
	Year  string `json:"year" yaml:"year"`
}

// Search queries the library with an optional full-text match and
// structured filters. Results are ordered by names, year, and id.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Result, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)
	if useFTS {
		qb.WriteString(
			`SELECT r.id, r.kind, r.title, r.names, r.year
			FROM refs_fts
			JOIN refs r ON r.rowid = refs_fts.docid
			WHERE refs_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT r.id, r.kind, r.title, r.names, r.year
			FROM refs r
			WHERE 1=1`)
	}
	if opts.Kind != "" {
		qb.WriteString(` AND r.kind = ?`)
		args = append(args, opts.Kind)
	}
	if opts.Year != "" {
		qb.WriteString(` AND r.year = ?`)
		args = append(args, opts.Year)
	}
	qb.WriteString(` ORDER BY r.names, r.year, r.id LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying library: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			r            Result
			title, names sql.NullString
			year         sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Kind, &title, &names, &year); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.Title, r.Names, r.Year = title.String, names.String, year.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// Get returns the reference with id.
func (s *Store) Get(ctx context.Context, id string) (*types.Reference, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM refs WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reference %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up reference %s: %w", id, err)
	}
	return decode(id, data)
}

func decode(id, data string) (*types.Reference, error) {
	var r types.Reference
	if err := yaml.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("decoding reference %s: %w", id, err)
	}
	return &r, nil
}

// Count returns the number of references in the library.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM refs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting references: %w", err)
	}
	return n, nil
}

// Bibliography collects references into a Bibliography. With no ids it
// returns the whole library. Parents referenced by id are included so
// that component references resolve their containers.
func (s *Store) Bibliography(ctx context.Context, ids ...string) (*types.Bibliography, error) {
	bib := types.NewBibliography()
	if len(ids) == 0 {
		rows, err := s.db.QueryContext(ctx, `SELECT id, data FROM refs ORDER BY rowid`)
		if err != nil {
			return nil, fmt.Errorf("listing references: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var id, data string
			if err := rows.Scan(&id, &data); err != nil {
				return nil, fmt.Errorf("scanning row: %w", err)
			}
			r, err := decode(id, data)
			if err != nil {
				return nil, err
			}
			bib.Add(r)
		}
		return bib, rows.Err()
	}

	queue := append([]string(nil), ids...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := bib.Get(id); ok {
			continue
		}
		r, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		bib.Add(r)
		if r.Parent != nil && r.Parent.ID != "" {
			queue = append(queue, r.Parent.ID)
		}
	}
	return bib, nil
}

// Export writes references to w in a reference file format.
func (s *Store) Export(ctx context.Context, w io.Writer, format refs.Format, ids ...string) error {
	bib, err := s.Bibliography(ctx, ids...)
	if err != nil {
		return err
	}
	return refs.Write(w, bib, format)
}
