package snapshot

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no snapshot matches an id or label.
var ErrNotFound = errors.New("snapshot not found")

// #region record

// Record is one saved reasoner state. Payload is the JSON the reasoner
// produced for Target.
type Record struct {
	ID        string
	ParentID  string
	Label     string
	Target    string // "memory" | "status"
	Clock     int64
	Payload   []byte
	CreatedAt time.Time
}

// #endregion record
