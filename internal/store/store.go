// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists papers in a SQLite database and tracks their
// lifecycle from unscored to scored. It is the single source of truth read
// by every other component. All writes are single-record and atomic; the
// table is append-only except for the one-time scoring update and the
// user-controlled starred and notes fields.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-tracker/pkg/types"
)

// timeFormat is RFC 3339 with a fixed-width fractional second so that the
// TEXT columns sort lexicographically in chronological order.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the papers SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the papers database at path and ensures the schema
// exists.
func Open(cfg types.StoreConfig) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			title TEXT NOT NULL,
			authors TEXT,
			abstract TEXT,
			journal TEXT,
			published_date TEXT,
			url TEXT,
			doi TEXT,
			relevance_score INTEGER,
			summary TEXT,
			key_finding TEXT,
			tags TEXT,
			fetched_at TEXT NOT NULL,
			scored_at TEXT,
			starred INTEGER DEFAULT 0,
			notes TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_relevance ON papers(relevance_score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_published ON papers(published_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_source ON papers(source)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Exists reports whether a paper with the given composite id is stored.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM papers WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking paper %s: %w", id, err)
	}
	return true, nil
}

// Insert adds a paper in the unscored state, setting fetched_at to the
// current time. Inserting an id that already exists is a no-op: the stored
// record, including its original fetched_at, is never overwritten.
func (s *Store) Insert(ctx context.Context, p types.Paper) error {
	authorsJSON, _ := json.Marshal(p.Authors)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO papers
		 (id, source, title, authors, abstract, journal, published_date, url, doi, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, string(p.Source), p.Title, string(authorsJSON), p.Abstract,
		p.Journal, p.PublishedDate, p.URL, p.DOI,
		time.Now().UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting paper %s: %w", p.ID, err)
	}
	return nil
}

// ListUnscored returns papers awaiting scoring, most recently fetched first.
func (s *Store) ListUnscored(ctx context.Context) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+paperColumns+` FROM papers
		 WHERE relevance_score IS NULL ORDER BY fetched_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing unscored papers: %w", err)
	}
	defer rows.Close()
	return scanPapers(rows)
}

// ListOptions filters ListScored results.
type ListOptions struct {
	// MinScore keeps only papers with relevance_score >= MinScore.
	MinScore int

	// Limit caps the number of rows returned (default 100).
	Limit int

	// Source, when non-empty, keeps only papers from that catalog.
	Source types.PaperSource

	// Tag, when non-empty, keeps only papers carrying the tag.
	Tag string
}

// ListScored returns scored papers ordered by published date descending,
// then relevance score descending.
func (s *Store) ListScored(ctx context.Context, opts ListOptions) ([]types.Paper, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + paperColumns + ` FROM papers WHERE relevance_score >= ?`
	args := []any{opts.MinScore}

	if opts.Source != "" {
		query += ` AND source = ?`
		args = append(args, string(opts.Source))
	}
	if opts.Tag != "" {
		query += ` AND tags LIKE ?`
		args = append(args, `%"`+opts.Tag+`"%`)
	}

	query += ` ORDER BY published_date DESC, relevance_score DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing scored papers: %w", err)
	}
	defer rows.Close()
	return scanPapers(rows)
}

// Get returns a single paper by id, or sql.ErrNoRows if absent.
func (s *Store) Get(ctx context.Context, id string) (types.Paper, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+paperColumns+` FROM papers WHERE id = ?`, id)
	return scanPaper(row)
}

// UpdateScoring records the scoring result for a paper and sets scored_at.
// An unknown id is logged and otherwise ignored so a mid-run removal cannot
// abort the scoring pass.
func (s *Store) UpdateScoring(ctx context.Context, id string, score int, summary, keyFinding string, tags []string) error {
	tagsJSON, _ := json.Marshal(tags)
	res, err := s.db.ExecContext(ctx,
		`UPDATE papers
		 SET relevance_score = ?, summary = ?, key_finding = ?, tags = ?, scored_at = ?
		 WHERE id = ?`,
		score, summary, keyFinding, string(tagsJSON),
		time.Now().UTC().Format(timeFormat), id,
	)
	if err != nil {
		return fmt.Errorf("updating scoring for %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		fmt.Fprintf(os.Stderr, "warning: scoring update for unknown paper %s\n", id)
	}
	return nil
}

// ToggleStarred flips the starred flag for a paper.
func (s *Store) ToggleStarred(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE papers SET starred = CASE WHEN starred = 1 THEN 0 ELSE 1 END WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("toggling star for %s: %w", id, err)
	}
	return nil
}

// SetNotes replaces the user notes for a paper.
func (s *Store) SetNotes(ctx context.Context, id, notes string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE papers SET notes = ? WHERE id = ?`, notes, id)
	if err != nil {
		return fmt.Errorf("setting notes for %s: %w", id, err)
	}
	return nil
}

// Stats summarizes the store contents.
type Stats struct {
	Total         int                       `json:"total"`
	Scored        int                       `json:"scored"`
	HighRelevance int                       `json:"high_relevance"`
	Starred       int                       `json:"starred"`
	Sources       map[types.PaperSource]int `json:"sources"`
}

// Stats returns summary counters. HighRelevance counts papers scored 7 or
// above.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Sources: map[types.PaperSource]int{}}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM papers`, &st.Total},
		{`SELECT COUNT(*) FROM papers WHERE relevance_score IS NOT NULL`, &st.Scored},
		{`SELECT COUNT(*) FROM papers WHERE relevance_score >= 7`, &st.HighRelevance},
		{`SELECT COUNT(*) FROM papers WHERE starred = 1`, &st.Starred},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("collecting stats: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT source, COUNT(*) FROM papers GROUP BY source`)
	if err != nil {
		return Stats{}, fmt.Errorf("collecting per-source stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return Stats{}, fmt.Errorf("scanning per-source stats: %w", err)
		}
		st.Sources[types.PaperSource(source)] = n
	}
	return st, rows.Err()
}

const paperColumns = `id, source, title, authors, abstract, journal, published_date,
	url, doi, relevance_score, summary, key_finding, tags, fetched_at, scored_at,
	starred, notes`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (types.Paper, error) {
	var p types.Paper
	var source, authorsJSON, abstract, journal, published, url, doi string
	var summary, keyFinding, tagsJSON, notes sql.NullString
	var score sql.NullInt64
	var fetchedAt string
	var scoredAt sql.NullString
	var starred int

	err := row.Scan(&p.ID, &source, &p.Title, &authorsJSON, &abstract, &journal,
		&published, &url, &doi, &score, &summary, &keyFinding, &tagsJSON,
		&fetchedAt, &scoredAt, &starred, &notes)
	if err != nil {
		return types.Paper{}, err
	}

	p.Source = types.PaperSource(source)
	p.Abstract = abstract
	p.Journal = journal
	p.PublishedDate = published
	p.URL = url
	p.DOI = doi
	p.Starred = starred == 1
	p.Summary = summary.String
	p.KeyFinding = keyFinding.String
	p.Notes = notes.String

	if authorsJSON != "" {
		json.Unmarshal([]byte(authorsJSON), &p.Authors)
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		json.Unmarshal([]byte(tagsJSON.String), &p.Tags)
	}
	if score.Valid {
		n := int(score.Int64)
		p.RelevanceScore = &n
	}
	if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
		p.FetchedAt = t
	}
	if scoredAt.Valid {
		if t, err := time.Parse(time.RFC3339, scoredAt.String); err == nil {
			p.ScoredAt = &t
		}
	}
	return p, nil
}

func scanPapers(rows *sql.Rows) ([]types.Paper, error) {
	var papers []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper row: %w", err)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}
