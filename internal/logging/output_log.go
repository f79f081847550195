package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region output-entry

// OutputEntry is a single row in the output_log table.
type OutputEntry struct {
	SessionID string
	Seq       int
	Clock     int64
	Command   string
	Type      string
	Content   string
	Narsese   string
	CreatedAt time.Time
}

// #endregion output-entry

// #region log-output

// LogOutput writes one emitted output to the output_log table.
func LogOutput(db *sql.DB, entry OutputEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := db.Exec(
		`INSERT INTO output_log (session_id, seq, clock, command, type, content, narsese, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.Seq,
		entry.Clock,
		entry.Command,
		entry.Type,
		entry.Content,
		nullIfEmpty(entry.Narsese),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log output: %w", err)
	}
	return nil
}

// #endregion log-output

// #region read

// Sessions lists recorded session ids, oldest first.
func Sessions(db *sql.DB) ([]string, error) {
	rows, err := db.Query(
		`SELECT session_id FROM output_log GROUP BY session_id ORDER BY MIN(id) ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReadOutputs returns a session's outputs in emission order.
func ReadOutputs(db *sql.DB, sessionID string) ([]OutputEntry, error) {
	rows, err := db.Query(
		`SELECT session_id, seq, clock, command, type, content, narsese, created_at
		 FROM output_log WHERE session_id = ? ORDER BY seq ASC`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("read outputs: %w", err)
	}
	defer rows.Close()

	var entries []OutputEntry
	for rows.Next() {
		var e OutputEntry
		var narsese sql.NullString
		var created string
		if err := rows.Scan(&e.SessionID, &e.Seq, &e.Clock, &e.Command, &e.Type, &e.Content, &narsese, &created); err != nil {
			return nil, fmt.Errorf("scan output: %w", err)
		}
		e.Narsese = narsese.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion read

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
