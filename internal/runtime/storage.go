package runtime

import (
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/narsvm/internal/snapshot"
)

// storage resolves SAV and LOA paths. "db:<ref>" goes to the snapshot
// store; "file:<path>" and bare paths go to the filesystem.
type storage struct {
	session *Session
}

const dbPrefix = "db:"

func (s storage) Save(target, path string, data []byte) error {
	if ref, ok := strings.CutPrefix(path, dbPrefix); ok {
		store, err := s.store()
		if err != nil {
			return err
		}
		rec, err := store.Save(target, ref, s.session.r.Clock(), data)
		if err != nil {
			return err
		}
		s.session.logger.Debug("snapshot saved", zapSnapshot(rec)...)
		return nil
	}
	if err := os.WriteFile(filePath(path), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (s storage) Load(target, path string) ([]byte, error) {
	if ref, ok := strings.CutPrefix(path, dbPrefix); ok {
		store, err := s.store()
		if err != nil {
			return nil, err
		}
		rec, err := store.Find(ref)
		if err != nil {
			return nil, err
		}
		if rec.Target != target {
			return nil, fmt.Errorf("snapshot %s holds %s, not %s", rec.ID, rec.Target, target)
		}
		s.session.logger.Debug("snapshot loaded", zapSnapshot(rec)...)
		return rec.Payload, nil
	}
	data, err := os.ReadFile(filePath(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (s storage) store() (*snapshot.Store, error) {
	if s.session.store == nil {
		return nil, fmt.Errorf("no snapshot store configured")
	}
	return s.session.store, nil
}

func filePath(path string) string {
	p, _ := strings.CutPrefix(path, "file:")
	return p
}
