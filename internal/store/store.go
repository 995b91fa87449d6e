// Package store keeps a SQLite history of analysis runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/KaramelBytes/outliers-cli/internal/analysis"
	"github.com/KaramelBytes/outliers-cli/internal/config"
	"github.com/KaramelBytes/outliers-cli/internal/store/migrations"
)

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// timeLayout has a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("run not found")

// Run is one analyzed input file.
type Run struct {
	ID         string
	StartedAt  time.Time
	File       string
	Status     string
	Error      string
	Rows       int
	Issues     int
	ReportPath string
	Columns    []Column
}

// Column summarizes one analyzed column of a run.
type Column struct {
	Name      string
	Algorithm string
	// PValue is set only when normality was tested.
	PValue    *float64
	NOriginal int
	NCleaned  int
	Outliers  []float64
}

// NewRun builds a run record from an analysis outcome. res may be nil when
// the file failed.
func NewRun(file string, started time.Time, res *analysis.FileResult, runErr error) Run {
	r := Run{ID: uuid.NewString(), StartedAt: started.UTC(), File: file, Status: StatusOK}
	if runErr != nil {
		r.Status = StatusFailed
		r.Error = runErr.Error()
	}
	if res == nil {
		return r
	}
	r.Rows = res.Rows
	r.Issues = len(res.Issues)
	for _, c := range res.Columns {
		col := Column{
			Name:      c.Name,
			Algorithm: c.Algorithm.String(),
			NOriginal: len(c.Original),
			NCleaned:  len(c.Cleaned),
			Outliers:  c.Outliers,
		}
		if c.Tested {
			p := c.PValue
			col.PValue = &p
		}
		r.Columns = append(r.Columns, col)
	}
	return r
}

// Store wraps the history database.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath is history.db under the config directory.
func DefaultPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	// one connection keeps concurrent writers from the worker pool serialized
	db.SetMaxOpenConns(1)
	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(fsys fs.FS) error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	var current int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= current {
			continue
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(body)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	return nil
}

// RecordRun stores a run and its columns in one transaction.
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO runs (id, started_at, file, status, error, row_count, issue_count, report_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UTC().Format(timeLayout), r.File, r.Status, r.Error, r.Rows, r.Issues, r.ReportPath); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for i, c := range r.Columns {
		outliers := c.Outliers
		if outliers == nil {
			outliers = []float64{}
		}
		js, err := json.Marshal(outliers)
		if err != nil {
			return fmt.Errorf("marshal outliers: %w", err)
		}
		var p sql.NullFloat64
		if c.PValue != nil {
			p = sql.NullFloat64{Float64: *c.PValue, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO run_columns (run_id, position, name, algorithm, p_value, n_original, n_cleaned, outliers)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, i, c.Name, c.Algorithm, p, c.NOriginal, c.NCleaned, string(js)); err != nil {
			return fmt.Errorf("insert column %s: %w", c.Name, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs first, without columns.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, started_at, file, status, error, row_count, issue_count, report_path
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun loads one run with its columns. Ids may be given as a unique prefix.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("run id is required")
	}
	// % and _ in id match literally
	rows, err := s.db.QueryContext(ctx, `SELECT id, started_at, file, status, error, row_count, issue_count, report_path
		FROM runs WHERE substr(id, 1, length(?)) = ? LIMIT 2`, id, id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	var found []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		found = append(found, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 2:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
	r := found[0]

	cols, err := s.db.QueryContext(ctx, `SELECT name, algorithm, p_value, n_original, n_cleaned, outliers
		FROM run_columns WHERE run_id = ? ORDER BY position`, r.ID)
	if err != nil {
		return nil, fmt.Errorf("get run columns: %w", err)
	}
	defer cols.Close()
	for cols.Next() {
		var c Column
		var p sql.NullFloat64
		var js string
		if err := cols.Scan(&c.Name, &c.Algorithm, &p, &c.NOriginal, &c.NCleaned, &js); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		if p.Valid {
			v := p.Float64
			c.PValue = &v
		}
		if err := json.Unmarshal([]byte(js), &c.Outliers); err != nil {
			return nil, fmt.Errorf("decode outliers: %w", err)
		}
		r.Columns = append(r.Columns, c)
	}
	return &r, cols.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var started string
	if err := sc.Scan(&r.ID, &started, &r.File, &r.Status, &r.Error, &r.Rows, &r.Issues, &r.ReportPath); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	t, err := time.Parse(timeLayout, started)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	r.StartedAt = t
	return r, nil
}
