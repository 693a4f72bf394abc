package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/repovet-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/repovet-cli/internal/core/domain"
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.EvaluationStore = (*Store)(nil)

// Store is the SQLite-backed evaluation store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (and migrates) the database in dataDir.
// If dataDir is empty, defaults to ~/.repovet/data/repovet.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".repovet", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "repovet.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SaveEvaluation stores or replaces an evaluation record.
func (s *Store) SaveEvaluation(ctx context.Context, eval *domain.Evaluation) error {
	stagesJSON, err := json.Marshal(eval.Stages)
	if err != nil {
		return fmt.Errorf("marshalling stages: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, owner, name, status, created_at, stages_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			stages_json = excluded.stages_json
	`, eval.ID, eval.Repo.Owner, eval.Repo.Name, string(eval.Status), eval.CreatedAt.UTC(), string(stagesJSON))
	if err != nil {
		return fmt.Errorf("saving evaluation: %w", err)
	}
	return nil
}

// SaveReport stores the rendered report for an evaluation.
func (s *Store) SaveReport(ctx context.Context, report *domain.Report) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (evaluation_id, generated_at, report_json)
		VALUES (?, ?, ?)
		ON CONFLICT(evaluation_id) DO UPDATE SET
			generated_at = excluded.generated_at,
			report_json = excluded.report_json
	`, report.EvaluationID, report.GeneratedAt.UTC(), string(reportJSON))
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

// GetEvaluation retrieves an evaluation by ID.
func (s *Store) GetEvaluation(ctx context.Context, id string) (*domain.Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner, name, status, created_at, stages_json
		FROM evaluations WHERE id = ?
	`, id)
	return scanEvaluation(row.Scan)
}

// GetReport retrieves the report for an evaluation ID.
func (s *Store) GetReport(ctx context.Context, evaluationID string) (*domain.Report, error) {
	var reportJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT report_json FROM reports WHERE evaluation_id = ?
	`, evaluationID).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying report: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("unmarshalling report: %w", err)
	}
	return &report, nil
}

// ListEvaluations returns stored evaluations, newest first.
func (s *Store) ListEvaluations(ctx context.Context) ([]domain.Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, name, status, created_at, stages_json
		FROM evaluations ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying evaluations: %w", err)
	}
	defer rows.Close()

	var evals []domain.Evaluation //nolint:prealloc // size unknown from query
	for rows.Next() {
		eval, err := scanEvaluation(rows.Scan)
		if err != nil {
			return nil, err
		}
		evals = append(evals, *eval)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating evaluations: %w", err)
	}
	return evals, nil
}

func scanEvaluation(scan func(...any) error) (*domain.Evaluation, error) {
	var (
		eval       domain.Evaluation
		status     string
		createdAt  time.Time
		stagesJSON string
	)
	err := scan(&eval.ID, &eval.Repo.Owner, &eval.Repo.Name, &status, &createdAt, &stagesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning evaluation: %w", err)
	}
	eval.Status = domain.EvaluationStatus(status)
	eval.CreatedAt = createdAt
	if err := json.Unmarshal([]byte(stagesJSON), &eval.Stages); err != nil {
		return nil, fmt.Errorf("unmarshalling stages: %w", err)
	}
	return &eval, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}
