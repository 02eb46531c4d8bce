package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const defaultListLimit = 50

// ErrNotFound reports a missing run record.
var ErrNotFound = errors.New("store: run not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	insertRunStmt  *sql.Stmt
	getRunStmt     *sql.Stmt
	listRunsStmt   *sql.Stmt
	promptRunsStmt *sql.Stmt
}

// NewSQLiteStore opens or creates a SQLite store at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty sqlite path")
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}

	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	st := &SQLiteStore{db: db}
	if err := st.prepareStatements(); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func initSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS eval_runs (
			id TEXT PRIMARY KEY,
			prompt_name TEXT NOT NULL,
			dataset_name TEXT NOT NULL,
			tone REAL NOT NULL,
			acceptance_criteria REAL NOT NULL,
			format REAL NOT NULL,
			completeness REAL NOT NULL,
			passed INTEGER NOT NULL,
			total_examples INTEGER NOT NULL,
			scored_examples INTEGER NOT NULL,
			skipped_examples INTEGER NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_eval_runs_prompt ON eval_runs(prompt_name, started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_eval_runs_started_at ON eval_runs(started_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}
	return nil
}

const runColumns = `id, prompt_name, dataset_name, tone, acceptance_criteria, format, completeness,
	passed, total_examples, scored_examples, skipped_examples, started_at, finished_at`

func (s *SQLiteStore) prepareStatements() error {
	if s == nil || s.db == nil {
		return errors.New("store: nil sqlite store")
	}

	ctx := context.Background()
	type stmtSpec struct {
		dst    **sql.Stmt
		query  string
		errFmt string
	}

	specs := []stmtSpec{
		{
			dst: &s.insertRunStmt,
			query: `
				INSERT INTO eval_runs (` + runColumns + `)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
			errFmt: "store: prepare insert run: %w",
		},
		{
			dst:    &s.getRunStmt,
			query:  `SELECT ` + runColumns + ` FROM eval_runs WHERE id = ?`,
			errFmt: "store: prepare get run: %w",
		},
		{
			dst: &s.listRunsStmt,
			query: `
				SELECT ` + runColumns + ` FROM eval_runs
				ORDER BY started_at DESC
				LIMIT ?
			`,
			errFmt: "store: prepare list runs: %w",
		},
		{
			dst: &s.promptRunsStmt,
			query: `
				SELECT ` + runColumns + ` FROM eval_runs
				WHERE prompt_name = ?
				ORDER BY started_at DESC
				LIMIT ?
			`,
			errFmt: "store: prepare prompt runs: %w",
		},
	}

	for _, spec := range specs {
		stmt, err := s.db.PrepareContext(ctx, spec.query)
		if err != nil {
			return fmt.Errorf(spec.errFmt, err)
		}
		*spec.dst = stmt
	}

	return nil
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	if s == nil {
		return nil
	}
	stmts := []*sql.Stmt{
		s.insertRunStmt,
		s.getRunStmt,
		s.listRunsStmt,
		s.promptRunsStmt,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun persists one evaluation summary.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *RunRecord) error {
	if s == nil {
		return errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return errors.New("store: nil context")
	}
	if run == nil {
		return errors.New("store: nil run")
	}

	id := strings.TrimSpace(run.ID)
	if id == "" {
		return errors.New("store: empty run id")
	}
	if strings.TrimSpace(run.PromptName) == "" {
		return errors.New("store: empty prompt name")
	}
	if run.StartedAt.IsZero() || run.FinishedAt.IsZero() {
		return errors.New("store: missing run timestamps")
	}

	_, err := s.insertRunStmt.ExecContext(
		ctx,
		id,
		run.PromptName,
		run.DatasetName,
		run.Tone,
		run.Acceptance,
		run.Format,
		run.Completeness,
		boolToInt(run.Passed),
		run.TotalExamples,
		run.ScoredExamples,
		run.SkippedExamples,
		run.StartedAt.UTC().UnixMilli(),
		run.FinishedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}
	return nil
}

// GetRun loads a run by id.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("store: empty run id")
	}

	row := s.getRunStmt.QueryRowContext(ctx, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: run %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get run %q: %w", id, err)
	}
	return run, nil
}

// ListRuns returns runs newest first, optionally filtered by prompt name.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]*RunRecord, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var rows *sql.Rows
	var err error
	if name := strings.TrimSpace(filter.PromptName); name != "" {
		rows, err = s.promptRunsStmt.QueryContext(ctx, name, limit)
	} else {
		rows, err = s.listRunsStmt.QueryContext(ctx, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []*RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var run RunRecord
	var passed int
	var startedAt, finishedAt int64

	err := row.Scan(
		&run.ID,
		&run.PromptName,
		&run.DatasetName,
		&run.Tone,
		&run.Acceptance,
		&run.Format,
		&run.Completeness,
		&passed,
		&run.TotalExamples,
		&run.ScoredExamples,
		&run.SkippedExamples,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Passed = passed != 0
	run.StartedAt = time.UnixMilli(startedAt).UTC()
	run.FinishedAt = time.UnixMilli(finishedAt).UTC()
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
