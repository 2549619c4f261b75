package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/abhisek/studywise/ent"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the SQLite connection, the ent client on top of it, and the
// global event sequence counter. Repositories are handed out per concern.
type Store struct {
	db     *sql.DB
	client *ent.Client
	seq    *sequenceCounter
}

// Open connects to the SQLite database at dsn, applies the pragmas, and
// auto-migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single-user local database: WAL plus relaxed sync is the right
	// durability/latency point.
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	client := ent.NewClient(ent.Driver(entsql.OpenDB(dialect.SQLite, db)))
	if err := client.Schema.Create(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("init sequence counter: %w", err)
	}

	return &Store{db: db, client: client, seq: seq}, nil
}

// Client exposes the ent client.
func (s *Store) Client() *ent.Client {
	return s.client
}

// DB exposes the raw connection for the aggregate queries ent's group-by
// can't express.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.client.Close()
}

// EventRepo returns the append-only event log repository.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{client: s.client, db: s.db, seq: s.seq}
}

// SnapshotRepo returns the registry-snapshot repository.
func (s *Store) SnapshotRepo() SnapshotRepo {
	return &snapshotRepo{client: s.client}
}

// CurrentSequence returns the most recently issued event sequence, or 0
// when no events exist. Snapshots record it to mark how much of the log
// they cover.
func (s *Store) CurrentSequence(ctx context.Context) (int64, error) {
	return s.seq.Current(ctx)
}

// DefaultDBPath resolves the database file: STUDYWISE_DB if set, else
// $XDG_DATA_HOME/studywise/studywise.db, else
// ~/.local/share/studywise/studywise.db.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("STUDYWISE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "studywise", "studywise.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if needed.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
