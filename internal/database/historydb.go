package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/tokhist/internal/model"
)

// FileName is the database file name inside the data directory.
const FileName = "tokhist.db"

// ErrNilRun is returned when SaveRun is given nothing to save.
var ErrNilRun = errors.New("run is nil")

// ErrFailedRun is returned when SaveRun is given a run that did not complete.
var ErrFailedRun = errors.New("cannot save a failed run")

// HistoryDB stores finished runs.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		status_code INTEGER,
		hash TEXT,
		lexer TEXT,
		total_tokens INTEGER NOT NULL,
		histogram_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_url ON runs(url);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// timestampLayout has fixed width so that stored values sort in time order.
const timestampLayout = "2006-01-02 15:04:05.000000000"

// SaveRun stores a completed run.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.Run) error {
	if run == nil {
		return ErrNilRun
	}
	if run.Failed() {
		return fmt.Errorf("%w: %s", ErrFailedRun, run.ErrorMessage)
	}

	entry := model.NewHistoryEntry(run)
	histJSON, err := json.Marshal(entry.Histogram)
	if err != nil {
		return fmt.Errorf("failed to serialize histogram: %w", err)
	}

	query := `
	INSERT INTO runs (url, timestamp, status_code, hash, lexer, total_tokens, histogram_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = hdb.db.ExecContext(ctx, query,
		entry.URL,
		entry.Timestamp.UTC().Format(timestampLayout),
		entry.StatusCode,
		entry.Hash,
		entry.Lexer,
		entry.TotalTokens,
		string(histJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// ListRuns returns the runs of url, newest first. An empty url lists runs
// of every URL. A limit of zero or less means no limit.
func (hdb *HistoryDB) ListRuns(ctx context.Context, url string, limit int) ([]*model.HistoryEntry, error) {
	query := `
	SELECT id, url, timestamp, status_code, hash, lexer, total_tokens, histogram_json
	FROM runs
	WHERE 1=1
	`
	args := make([]any, 0)

	if url != "" {
		query += " AND url = ?"
		args = append(args, url)
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	entries := make([]*model.HistoryEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// LatestRuns returns the n most recent runs of url, newest first.
func (hdb *HistoryDB) LatestRuns(ctx context.Context, url string, n int) ([]*model.HistoryEntry, error) {
	if n <= 0 {
		return []*model.HistoryEntry{}, nil
	}
	return hdb.ListRuns(ctx, url, n)
}

// GetRun returns the run with id, or nil if there is none.
func (hdb *HistoryDB) GetRun(ctx context.Context, id int64) (*model.HistoryEntry, error) {
	query := `
	SELECT id, url, timestamp, status_code, hash, lexer, total_tokens, histogram_json
	FROM runs
	WHERE id = ?
	`

	entry, err := scanEntry(hdb.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListURLs returns every URL with at least one stored run, sorted.
func (hdb *HistoryDB) ListURLs(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `SELECT DISTINCT url FROM runs ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list URLs: %w", err)
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*model.HistoryEntry, error) {
	var (
		entry     model.HistoryEntry
		timestamp string
		status    sql.NullInt64
		hash      sql.NullString
		lexerName sql.NullString
		histJSON  string
	)

	err := s.Scan(
		&entry.ID,
		&entry.URL,
		&timestamp,
		&status,
		&hash,
		&lexerName,
		&entry.TotalTokens,
		&histJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	entry.Timestamp = parseTimestamp(timestamp)
	entry.StatusCode = int(status.Int64)
	entry.Hash = hash.String
	entry.Lexer = lexerName.String

	entry.Histogram = model.NewHistogram()
	if err := json.Unmarshal([]byte(histJSON), entry.Histogram); err != nil {
		return nil, fmt.Errorf("failed to parse histogram of run %d: %w", entry.ID, err)
	}
	return &entry, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp tries each known format and returns the zero time if
// none matches. Fractional seconds are accepted by every format.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
