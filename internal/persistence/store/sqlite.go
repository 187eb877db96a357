package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"housecraft/internal/sim/house"
)

// SQLiteStore persists foundation records as versioned blobs. Saves are
// funneled through a single writer goroutine so the simulation never
// blocks on disk; reads go straight to the database.
type SQLiteStore struct {
	db *sql.DB

	ch     chan house.Snapshot
	wg     sync.WaitGroup
	once   sync.Once
	closed atomic.Bool
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteStore{
		db: db,
		ch: make(chan house.Snapshot, 1024),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the save-on-commit write pattern.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS houses (
			serial INTEGER PRIMARY KEY,
			format INTEGER NOT NULL,
			revision INTEGER NOT NULL,
			updated_at TEXT NOT NULL,
			data BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_houses_updated ON houses(updated_at);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	return nil
}

// Save queues a snapshot for the writer goroutine. Saves are fire and
// forget; a snapshot is immutable once taken, so a queued record is never
// stale relative to when the caller captured it.
func (s *SQLiteStore) Save(snap house.Snapshot) {
	if s == nil || s.closed.Load() {
		return
	}
	s.ch <- snap
}

// Load reads one foundation record, returning false when absent.
func (s *SQLiteStore) Load(serial uint32) (house.Snapshot, bool, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM houses WHERE serial = ?`, serial).Scan(&data)
	if err == sql.ErrNoRows {
		return house.Snapshot{}, false, nil
	}
	if err != nil {
		return house.Snapshot{}, false, err
	}
	snap, err := Decode(data)
	if err != nil {
		return house.Snapshot{}, false, err
	}
	return snap, true, nil
}

// LoadAll reads every persisted foundation record.
func (s *SQLiteStore) LoadAll() ([]house.Snapshot, error) {
	rows, err := s.db.Query(`SELECT data FROM houses ORDER BY serial`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []house.Snapshot
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		snap, err := Decode(data)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Delete removes a foundation record (house demolition).
func (s *SQLiteStore) Delete(serial uint32) error {
	_, err := s.db.Exec(`DELETE FROM houses WHERE serial = ?`, serial)
	return err
}

// Close drains pending saves and shuts the database.
func (s *SQLiteStore) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteStore) loop() {
	stmt, err := s.db.Prepare(`INSERT OR REPLACE INTO houses(serial,format,revision,updated_at,data) VALUES(?,?,?,?,?)`)
	if err != nil {
		return
	}
	defer stmt.Close()

	for snap := range s.ch {
		data := Encode(snap)
		now := time.Now().UTC().Format(time.RFC3339Nano)
		if _, err := stmt.Exec(int64(snap.Serial), FormatVersion, snap.LastRevision, now, data); err != nil {
			continue
		}
	}
}
