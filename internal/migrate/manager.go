package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const trackingTable = "portal_schema_history"

// Runner applies SQL migration and seed files stored on disk. Applied files
// are recorded in a single tracking table keyed by kind and file name.
type Runner struct {
	db       *sql.DB
	dir      string
	seedsDir string
}

// NewRunner constructs a Runner over the given migrations and seeds directories.
func NewRunner(db *sql.DB, dir, seedsDir string) *Runner {
	return &Runner{db: db, dir: dir, seedsDir: seedsDir}
}

// Up applies all pending .up.sql migrations in lexical order.
func (r *Runner) Up(ctx context.Context) error {
	return r.applyPending(ctx, "migration", r.dir, ".up.sql")
}

// Seed applies seed files idempotently.
func (r *Runner) Seed(ctx context.Context) error {
	return r.applyPending(ctx, "seed", r.seedsDir, ".sql")
}

// Down rolls back the most recently applied migration.
func (r *Runner) Down(ctx context.Context) error {
	if err := r.ensureTracking(ctx); err != nil {
		return err
	}
	applied, err := r.applied(ctx, "migration")
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return errors.New("no migrations applied")
	}
	last := applied[len(applied)-1]
	downPath := strings.TrimSuffix(filepath.Join(r.dir, last), ".up.sql") + ".down.sql"
	if _, err := os.Stat(downPath); err != nil {
		return fmt.Errorf("missing down migration for %s", last)
	}
	if err := r.runFile(ctx, downPath); err != nil {
		return fmt.Errorf("rollback %s: %w", last, err)
	}
	_, err = r.db.ExecContext(ctx,
		`delete from `+trackingTable+` where kind = 'migration' and name = $1`, last)
	return err
}

// Status returns applied migration file names in application order.
func (r *Runner) Status(ctx context.Context) ([]string, error) {
	if err := r.ensureTracking(ctx); err != nil {
		return nil, err
	}
	return r.applied(ctx, "migration")
}

func (r *Runner) applyPending(ctx context.Context, kind, dir, suffix string) error {
	if err := r.ensureTracking(ctx); err != nil {
		return err
	}
	applied, err := r.applied(ctx, kind)
	if err != nil {
		return err
	}
	done := make(map[string]bool, len(applied))
	for _, name := range applied {
		done[name] = true
	}
	files, err := listSQL(dir, suffix)
	if err != nil {
		return err
	}
	for _, name := range files {
		if done[name] {
			continue
		}
		if err := r.runFile(ctx, filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("apply %s %s: %w", kind, name, err)
		}
		if _, err := r.db.ExecContext(ctx,
			`insert into `+trackingTable+`(kind, name, applied_at) values ($1, $2, $3)`,
			kind, name, time.Now().UTC()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) ensureTracking(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		create table if not exists `+trackingTable+` (
			kind       text not null,
			name       text not null,
			applied_at timestamptz not null default now(),
			primary key (kind, name)
		)`)
	return err
}

func (r *Runner) applied(ctx context.Context, kind string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`select name from `+trackingTable+` where kind = $1 order by applied_at asc`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// runFile executes one SQL file inside a transaction, statement by statement.
func (r *Runner) runFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range splitStatements(string(raw)) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func listSQL(dir, suffix string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// splitStatements splits SQL on semicolons outside of single-quoted strings.
func splitStatements(sql string) []string {
	var stmts []string
	var current strings.Builder
	inString := false
	for _, r := range sql {
		current.WriteRune(r)
		switch r {
		case '\'':
			inString = !inString
		case ';':
			if !inString {
				stmts = append(stmts, current.String())
				current.Reset()
			}
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		stmts = append(stmts, current.String())
	}
	return stmts
}
