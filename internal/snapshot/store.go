// Package snapshot keeps versioned reasoner snapshots in SQLite, with an
// active pointer that can be rolled back.
package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	snapshot_id   TEXT NOT NULL UNIQUE,
	parent_id     TEXT,
	label         TEXT,
	target        TEXT NOT NULL,
	clock         INTEGER NOT NULL,
	payload       BLOB NOT NULL,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES snapshots(snapshot_id)
);

CREATE TABLE IF NOT EXISTS active_snapshot (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	snapshot_id   TEXT NOT NULL,
	FOREIGN KEY (snapshot_id) REFERENCES snapshots(snapshot_id)
);

CREATE TABLE IF NOT EXISTS output_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	seq           INTEGER NOT NULL,
	clock         INTEGER NOT NULL,
	command       TEXT NOT NULL,
	type          TEXT NOT NULL,
	content       TEXT NOT NULL,
	narsese       TEXT,
	created_at    TEXT NOT NULL
);
`

const columns = `snapshot_id, parent_id, label, target, clock, payload, created_at`

// #endregion schema

// #region store-struct

// Store manages snapshots in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor

// Open opens the database at dbPath and creates the tables if needed.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		schema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init snapshot db: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for the output log.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region save

// Save stores payload as a new snapshot whose parent is the current active
// one, and makes it active.
func (s *Store) Save(target, label string, clock int64, payload []byte) (Record, error) {
	rec := Record{
		ID:        uuid.New().String(),
		Label:     label,
		Target:    target,
		Clock:     clock,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Record{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parent sql.NullString
	err = tx.QueryRow(`SELECT snapshot_id FROM active_snapshot WHERE id = 1`).Scan(&parent)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get active: %w", err)
	}
	rec.ParentID = parent.String

	_, err = tx.Exec(
		`INSERT INTO snapshots (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, nullIfEmpty(rec.ParentID), nullIfEmpty(label), target, clock, payload,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert snapshot: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_snapshot (id, snapshot_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET snapshot_id = excluded.snapshot_id`,
		rec.ID,
	)
	if err != nil {
		return Record{}, fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// #endregion save

// #region get

// Get retrieves a snapshot by id.
func (s *Store) Get(id string) (Record, error) {
	row := s.db.QueryRow(`SELECT `+columns+` FROM snapshots WHERE snapshot_id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return rec, nil
}

// GetActive reads the active snapshot.
func (s *Store) GetActive() (Record, error) {
	var id string
	err := s.db.QueryRow(`SELECT snapshot_id FROM active_snapshot WHERE id = 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get active: %w", ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get active: %w", err)
	}
	return s.Get(id)
}

// Find resolves ref as "active", an id, or the newest snapshot with that
// label, in that order.
func (s *Store) Find(ref string) (Record, error) {
	if ref == "" || ref == "active" {
		return s.GetActive()
	}
	rec, err := s.Get(ref)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return rec, err
	}
	row := s.db.QueryRow(
		`SELECT `+columns+` FROM snapshots WHERE label = ? ORDER BY seq DESC LIMIT 1`, ref,
	)
	rec, err = scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("find snapshot %s: %w", ref, err)
	}
	return rec, nil
}

// #endregion get

// #region rollback

// Rollback sets the active pointer to an earlier snapshot.
func (s *Store) Rollback(id string) error {
	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM snapshots WHERE snapshot_id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check snapshot: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("rollback %s: %w", id, ErrNotFound)
	}
	_, err = s.db.Exec(
		`INSERT INTO active_snapshot (id, snapshot_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET snapshot_id = excluded.snapshot_id`, id,
	)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// #endregion rollback

// #region list

// List returns the most recent snapshots, newest first.
func (s *Store) List(limit int) ([]Record, error) {
	rows, err := s.db.Query(`SELECT `+columns+` FROM snapshots ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list

// #region helpers

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var parent, label sql.NullString
	var created string
	err := row.Scan(&rec.ID, &parent, &label, &rec.Target, &rec.Clock, &rec.Payload, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	rec.ParentID = parent.String
	rec.Label = label.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return rec, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
