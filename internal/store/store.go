// Package store handles SQLite persistence for evaluation runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Run is a persisted evaluation run.
type Run struct {
	ID           int64
	CreatedAt    time.Time
	Lang         string
	DatasetPath  string
	Seed         int64
	Workers      int
	Beta         float64
	Sentences    int
	OverallScore float64
	// ResultsJSON holds the full results document.
	ResultsJSON string
}

// DomainScore is a per-task, per-domain accuracy row for a run.
type DomainScore struct {
	RunID        int64
	Task         string
	Domain       string
	Accuracy     float64
	Top3Accuracy float64
	N            int
}

// Store wraps SQLite access for run data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			lang TEXT NOT NULL,
			dataset_path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			workers INTEGER NOT NULL,
			beta REAL NOT NULL,
			sentences INTEGER NOT NULL,
			overall_score REAL NOT NULL,
			results_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_domain_scores (
			run_id INTEGER NOT NULL,
			task TEXT NOT NULL,
			domain TEXT NOT NULL,
			accuracy REAL NOT NULL,
			top3_accuracy REAL NOT NULL,
			n INTEGER NOT NULL,
			PRIMARY KEY (run_id, task, domain)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_run_domain_scores_task ON run_domain_scores(task);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a completed run and its per-domain scores.
func (s *Store) InsertRun(ctx context.Context, run Run, scores []DomainScore) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rerr := tx.Rollback(); rerr != nil {
			// Best-effort rollback.
			_ = rerr
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, lang, dataset_path, seed, workers, beta, sentences, overall_score, results_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.CreatedAt.Format(time.RFC3339Nano),
		run.Lang,
		run.DatasetPath,
		run.Seed,
		run.Workers,
		run.Beta,
		run.Sentences,
		run.OverallScore,
		run.ResultsJSON,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(scores) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_domain_scores (run_id, task, domain, accuracy, top3_accuracy, n)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ds := range scores {
			if _, err := stmt.ExecContext(ctx, id, ds.Task, ds.Domain, ds.Accuracy, ds.Top3Accuracy, ds.N); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return id, nil
}

// ListRuns returns runs, newest first, optionally filtered by language.
func (s *Store) ListRuns(ctx context.Context, lang string, limit int) ([]Run, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if lang != "" {
		clauses = append(clauses, "lang = ?")
		args = append(args, lang)
	}
	query := fmt.Sprintf(`SELECT id, created_at, lang, dataset_path, seed, workers, beta, sentences, overall_score
		FROM runs
		WHERE %s
		ORDER BY created_at DESC`, strings.Join(clauses, " AND "))
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt string
		if err := rows.Scan(&run.ID, &createdAt, &run.Lang, &run.DatasetPath, &run.Seed, &run.Workers, &run.Beta, &run.Sentences, &run.OverallScore); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		run.CreatedAt = parsed
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun returns a single run including its full results document.
func (s *Store) GetRun(ctx context.Context, id int64) (Run, error) {
	var run Run
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, lang, dataset_path, seed, workers, beta, sentences, overall_score, results_json
		 FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &createdAt, &run.Lang, &run.DatasetPath, &run.Seed, &run.Workers, &run.Beta, &run.Sentences, &run.OverallScore, &run.ResultsJSON)
	if err != nil {
		return Run{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, err
	}
	run.CreatedAt = parsed
	return run, nil
}

// ListDomainScores returns the per-domain scores recorded for a run.
func (s *Store) ListDomainScores(ctx context.Context, runID int64) ([]DomainScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, task, domain, accuracy, top3_accuracy, n
		 FROM run_domain_scores
		 WHERE run_id = ?
		 ORDER BY task, domain`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var scores []DomainScore
	for rows.Next() {
		var ds DomainScore
		if err := rows.Scan(&ds.RunID, &ds.Task, &ds.Domain, &ds.Accuracy, &ds.Top3Accuracy, &ds.N); err != nil {
			return nil, err
		}
		scores = append(scores, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}
