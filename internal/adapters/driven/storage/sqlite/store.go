package sqlite

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

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/harvester/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/harvester/internal/core/domain"
	"github.com/custodia-labs/harvester/internal/core/ports/driven"
	"github.com/custodia-labs/harvester/internal/logger"
)

// AppName names the data directory under XDG_DATA_HOME.
const AppName = "harvester"

// DBFile is the database file name inside the data directory.
const DBFile = "harvester.db"

// timeLayout is how instants are stored; it sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultDataDir returns $XDG_DATA_HOME/harvester.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Store is the SQLite database shared by the sink, recorder and failure
// store views.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database in dataDir.
// If dataDir is empty, DefaultDataDir is used.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFile)

	// Open database with WAL mode; workers write concurrently
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

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

// Sink returns a DocumentSink backed by this store.
func (s *Store) Sink() driven.DocumentSink {
	return &documentSink{store: s}
}

// FailureRecorder returns a FailureRecorder backed by this store.
func (s *Store) FailureRecorder() driven.FailureRecorder {
	return &failureRecorder{store: s}
}

// FailureStore returns a FailureStore backed by this store.
func (s *Store) FailureStore() driven.FailureStore {
	return &failureStore{store: s}
}

// migrate runs all pending migrations, recording each applied version.
func (s *Store) migrate(fsys fs.FS) error {
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
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
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
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// ==================== Runs ====================

// SaveRun records the start of a run. Saving the same run twice is a no-op.
func (s *Store) SaveRun(ctx context.Context, run domain.Run) error {
	configJSON, err := json.Marshal(run.Source.Redacted())
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, name, service, source_config, started_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.Source.Name, string(run.Source.Service), string(configJSON), formatTime(run.StartedAt))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// GetRun returns a run by ID. The source configuration is the redacted form.
func (s *Store) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, service, source_config, started_at FROM runs WHERE id = ?
	`, id)

	var (
		run        domain.Run
		service    string
		configJSON string
		startedAt  string
	)
	if err := row.Scan(&run.ID, &run.Source.Name, &service, &configJSON, &startedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	run.Source.Service = domain.Service(service)
	if err := json.Unmarshal([]byte(configJSON), &run.Source.Config); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	run.StartedAt = parseTime(startedAt)
	return &run, nil
}

// ==================== Documents ====================

// documentSink implements driven.DocumentSink.
type documentSink struct {
	store *Store
}

var _ driven.DocumentSink = (*documentSink)(nil)

// Store inserts one document. The url and title fields are copied into
// their own columns when they are strings.
func (s *documentSink) Store(ctx context.Context, run domain.Run, doc map[string]any) error {
	fieldsJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshalling document: %w", err)
	}

	url, _ := doc["url"].(string)
	title, _ := doc["title"].(string)

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, run_id, url, title, fields, stored_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), run.ID, url, title, string(fieldsJSON), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// StoredDocument is one row of the documents table.
type StoredDocument struct {
	ID       string
	RunID    string
	URL      string
	Title    string
	Fields   map[string]any
	StoredAt time.Time
}

// ListDocuments returns the documents stored by a run, oldest first.
func (s *Store) ListDocuments(ctx context.Context, runID string) ([]StoredDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, url, title, fields, stored_at
		FROM documents WHERE run_id = ?
		ORDER BY stored_at, id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []StoredDocument //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			doc        StoredDocument
			fieldsJSON string
			storedAt   string
		)
		if err := rows.Scan(&doc.ID, &doc.RunID, &doc.URL, &doc.Title, &fieldsJSON, &storedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if err := json.Unmarshal([]byte(fieldsJSON), &doc.Fields); err != nil {
			return nil, fmt.Errorf("unmarshalling fields: %w", err)
		}
		doc.StoredAt = parseTime(storedAt)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// CountDocuments returns how many documents a run stored.
func (s *Store) CountDocuments(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE run_id = ?", runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// ==================== Failures ====================

// failureRecorder implements driven.FailureRecorder.
type failureRecorder struct {
	store *Store
}

var _ driven.FailureRecorder = (*failureRecorder)(nil)

// Record persists a failure. Write errors are logged, never returned. The
// write ignores cancellation of ctx so a failure seen during shutdown is kept.
func (r *failureRecorder) Record(ctx context.Context, run domain.Run, errorKind, url string, cause error) {
	rec := domain.NewFailureRecord(uuid.NewString(), run, errorKind, url, cause)
	if err := r.store.SaveFailure(context.WithoutCancel(ctx), rec); err != nil {
		logger.Error("record failure for %s: %v", url, err)
	}
}

// SaveFailure inserts one failure record.
func (s *Store) SaveFailure(ctx context.Context, rec domain.FailureRecord) error {
	configJSON, err := json.Marshal(rec.SourceConfig)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO failures (id, run_id, error_kind, url, cause, source_config, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.RunID, rec.ErrorKind, rec.URL, rec.Cause, string(configJSON), formatTime(rec.RecordedAt))
	if err != nil {
		return fmt.Errorf("saving failure: %w", err)
	}
	return nil
}

// failureStore implements driven.FailureStore.
type failureStore struct {
	store *Store
}

var _ driven.FailureStore = (*failureStore)(nil)

// ListFailures returns failures for runID, or for every run when runID is
// empty, oldest first.
func (s *failureStore) ListFailures(ctx context.Context, runID string) ([]domain.FailureRecord, error) {
	query := `
		SELECT id, run_id, error_kind, url, cause, source_config, recorded_at
		FROM failures`
	var args []any
	if runID != "" {
		query += " WHERE run_id = ?"
		args = append(args, runID)
	}
	query += " ORDER BY recorded_at, id"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying failures: %w", err)
	}
	defer rows.Close()

	var records []domain.FailureRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanFailure(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating failures: %w", err)
	}
	return records, nil
}

// ==================== Helper Functions ====================

func scanFailure(rows *sql.Rows) (*domain.FailureRecord, error) {
	var (
		rec        domain.FailureRecord
		configJSON string
		recordedAt string
	)
	if err := rows.Scan(&rec.ID, &rec.RunID, &rec.ErrorKind, &rec.URL, &rec.Cause, &configJSON, &recordedAt); err != nil {
		return nil, fmt.Errorf("scanning failure: %w", err)
	}
	if err := json.Unmarshal([]byte(configJSON), &rec.SourceConfig); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	rec.RecordedAt = parseTime(recordedAt)
	return &rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
