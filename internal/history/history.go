package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/burrow/internal/gopher"
)

// FileName is the name of the database file inside the history directory.
const FileName = "burrow.db"

// timestampLayout is the layout visits are stored with, in UTC.
const timestampLayout = "2006-01-02 15:04:05"

var (
	// ErrNotFound is returned by Open when the database does not exist
	// and CreateIfNotExists is unset.
	ErrNotFound = errors.New("history database not found")

	// ErrInvalidLimit is returned when Recent is asked for a non-positive
	// number of visits.
	ErrInvalidLimit = errors.New("history limit must be positive")
)

// Store is the SQLite-backed visit log.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL enables write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Visit is one recorded fetch.
type Visit struct {
	ID        int64     `json:"id"`
	Location  string    `json:"location"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	Selector  string    `json:"selector"`
	Timestamp time.Time `json:"timestamp"`
	Bytes     int       `json:"bytes"`
	Lines     int       `json:"lines"`
	FileLinks int       `json:"file_links"`
	DirLinks  int       `json:"dir_links"`
	InfoLines int       `json:"info_lines"`
}

// Open opens or creates the visit log in dir.
// With CreateIfNotExists unset, a missing database is an error.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check history path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	// mode=rw refuses to create a file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location TEXT NOT NULL,
		host TEXT NOT NULL,
		port INTEGER NOT NULL,
		selector TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		bytes INTEGER DEFAULT 0,
		lines INTEGER DEFAULT 0,
		file_links INTEGER DEFAULT 0,
		dir_links INTEGER DEFAULT 0,
		info_lines INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_visits_host ON visits(host);
	CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Record appends a visit for page and returns its ID.
func (s *Store) Record(ctx context.Context, page *gopher.Page) (int64, error) {
	if page == nil {
		return 0, errors.New("cannot record a nil page")
	}

	fetchedAt := page.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	query := `
	INSERT INTO visits (location, host, port, selector, timestamp, bytes, lines, file_links, dir_links, info_lines)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		page.Target.String(),
		page.Target.Host,
		page.Target.Port,
		page.Target.Selector,
		fetchedAt.UTC().Format(timestampLayout),
		page.Bytes,
		len(page.Lines),
		page.Count(gopher.LineFile),
		page.Count(gopher.LineDir),
		page.Count(gopher.LineInfo),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record visit: %w", err)
	}

	return result.LastInsertId()
}

// Recent returns up to limit visits, newest first. A non-empty host
// restricts the result to that host.
func (s *Store) Recent(ctx context.Context, limit int, host string) ([]Visit, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	query := `
	SELECT id, location, host, port, selector, timestamp, bytes, lines, file_links, dir_links, info_lines
	FROM visits
	WHERE 1=1
	`
	args := make([]any, 0, 2)

	if host != "" {
		query += " AND host = ?"
		args = append(args, host)
	}

	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		var timestamp string

		err := rows.Scan(
			&v.ID,
			&v.Location,
			&v.Host,
			&v.Port,
			&v.Selector,
			&timestamp,
			&v.Bytes,
			&v.Lines,
			&v.FileLinks,
			&v.DirLinks,
			&v.InfoLines,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}

		v.Timestamp = parseTimestamp(timestamp)
		visits = append(visits, v)
	}

	return visits, rows.Err()
}

// Count returns the number of recorded visits.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM visits").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", err)
	}
	return n, nil
}

// timestampFormats are the layouts SQLite may hand back for a DATETIME
// column, most specific first.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses s with each known layout, returning the zero time
// if none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
