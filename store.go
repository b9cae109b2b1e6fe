package spacetraveling

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrSnapshotMissing is returned when no snapshot exists for a key.
var ErrSnapshotMissing = errors.New("spacetraveling: snapshot missing")

// Store wraps a SQLite database holding the last good copy of every page
// and post read from the CMS, used when the CMS cannot be reached.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed while a snapshot is written; busy_timeout
	// makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS snapshots (
    key TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    fetched_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_fetched_at ON snapshots (fetched_at);
`)
	return err
}

// SaveSnapshot stores v as JSON under key, replacing any previous copy.
func (s *Store) SaveSnapshot(key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO snapshots (key, payload, fetched_at) VALUES (?, ?, ?)`,
		key, string(payload), time.Now().UnixMilli())
	return err
}

// LoadSnapshot decodes the snapshot stored under key into v and returns
// when it was taken.
func (s *Store) LoadSnapshot(key string, v any) (time.Time, error) {
	var payload string
	var fetchedAt int64
	err := s.db.QueryRow(`SELECT payload, fetched_at FROM snapshots WHERE key = ?`, key).
		Scan(&payload, &fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrSnapshotMissing
		}
		return time.Time{}, err
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(fetchedAt), nil
}

// DeleteSnapshots removes every snapshot.
func (s *Store) DeleteSnapshots() error {
	_, err := s.db.Exec(`DELETE FROM snapshots`)
	return err
}

// PruneSnapshots deletes snapshots taken before cutoff and returns how many
// were removed.
func (s *Store) PruneSnapshots(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM snapshots WHERE fetched_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartPruneScheduler periodically removes snapshots older than retention.
// Returns a stop function.
func (s *Store) StartPruneScheduler(log *slog.Logger, retention, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				n, err := s.PruneSnapshots(time.Now().Add(-retention))
				if err != nil {
					log.Error("snapshot prune failed", "error", err)
					continue
				}
				if n > 0 {
					log.Info("pruned snapshots", "count", n)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
