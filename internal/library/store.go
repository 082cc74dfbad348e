// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists references in a SQLite database with a
// full-text index over titles and contributor names. A library can stand
// in for a reference file as the source of a bibliography.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citekit/internal/refs"
	"github.com/pdiddy/citekit/pkg/types"
)

// ErrNotFound is returned when a reference id is not in the library.
var ErrNotFound = errors.New("reference not found")

const defaultMaxResults = 20

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMaxResults sets the default search limit.
func WithMaxResults(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// Store manages the library database.
type Store struct {
	db         *sql.DB
	logger     *zap.Logger
	maxResults int
}

// NewStore opens or creates the library database at path and creates
// the schema if it does not exist.
func NewStore(path string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating library directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}

	s := &Store{db: db, logger: zap.NewNop(), maxResults: defaultMaxResults}
	for _, o := range opts {
		o(s)
	}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			path TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS refs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			title TEXT,
			names TEXT,
			year TEXT,
			source TEXT NOT NULL REFERENCES sources(path),
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refs_source ON refs(source)`,
		`CREATE INDEX IF NOT EXISTS idx_refs_kind ON refs(kind)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS4 external-content table kept in sync by triggers.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='refs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}
	ftsStatements := []string{
		`CREATE VIRTUAL TABLE refs_fts USING fts4(content="refs", title, names)`,
		`CREATE TRIGGER refs_bu BEFORE UPDATE ON refs BEGIN
			DELETE FROM refs_fts WHERE docid = old.rowid;
		END`,
		`CREATE TRIGGER refs_bd BEFORE DELETE ON refs BEGIN
			DELETE FROM refs_fts WHERE docid = old.rowid;
		END`,
		`CREATE TRIGGER refs_au AFTER UPDATE ON refs BEGIN
			INSERT INTO refs_fts(docid, title, names) VALUES (new.rowid, new.title, new.names);
		END`,
		`CREATE TRIGGER refs_ai AFTER INSERT ON refs BEGIN
			INSERT INTO refs_fts(docid, title, names) VALUES (new.rowid, new.title, new.names);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from an ingest run, one per file.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest loads reference files into the library. A file whose
// modification time matches the last ingest is skipped; a changed file
// replaces every reference it contributed before. Progress lines go to w.
func (s *Store) Ingest(ctx context.Context, w io.Writer, paths ...string) (IngestSummary, error) {
	var summary IngestSummary
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		info, err := os.Stat(abs)
		if err != nil {
			s.fail(w, &summary, path, err)
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var stored string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM sources WHERE path = ?`, abs,
		).Scan(&stored)
		if err == nil && stored == modTime {
			fmt.Fprintf(w, "skipped %s\n", path)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		bib, err := refs.Load(abs)
		if err != nil {
			s.fail(w, &summary, path, err)
			continue
		}
		if err := s.ingestFile(ctx, abs, modTime, bib, isUpdate); err != nil {
			s.fail(w, &summary, path, err)
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d references)\n", path, bib.Len())
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d references)\n", path, bib.Len())
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)
	return summary, nil
}

func (s *Store) fail(w io.Writer, summary *IngestSummary, path string, err error) {
	fmt.Fprintf(w, "failed  %s: %v\n", path, err)
	s.logger.Warn("library ingest failed", zap.String("path", path), zap.Error(err))
	summary.Failed++
}

func (s *Store) ingestFile(ctx context.Context, path, modTime string, bib *types.Bibliography, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sources (path, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		path, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating source status: %w", err)
	}

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM refs WHERE source = ?`, path); err != nil {
			return fmt.Errorf("deleting old references: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO refs (id, kind, title, names, year, source, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			kind=excluded.kind, title=excluded.title, names=excluded.names,
			year=excluded.year, source=excluded.source, data=excluded.data`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range bib.References() {
		data, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding reference %s: %w", r.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			r.ID, r.Kind(), titleText(r), namesText(r), r.Issued.Parse().YearString(), path, string(data))
		if err != nil {
			return fmt.Errorf("inserting reference %s: %w", r.ID, err)
		}
	}

	s.logger.Debug("library file ingested", zap.String("path", path), zap.Int("references", bib.Len()))
	return tx.Commit()
}

func titleText(r *types.Reference) string {
	if r.Title == nil {
		return ""
	}
	parts := []string{r.Title.Long()}
	if r.Title.Short != "" {
		parts = append(parts, r.Title.Short)
	}
	return strings.Join(parts, " ")
}

func namesText(r *types.Reference) string {
	var parts []string
	for _, c := range []types.Contributor{r.Author, r.Editor, r.Translator} {
		for _, n := range c {
			if n.IsLiteral() {
				parts = append(parts, n.Literal)
				continue
			}
			parts = append(parts, strings.Join(strings.Fields(
				n.Given+" "+n.DroppingParticle+" "+n.NonDroppingParticle+" "+n.Family), " "))
		}
	}
	return strings.Join(parts, "; ")
}
