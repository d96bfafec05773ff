package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"cpmm/internal/model"
)

var poolIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// FileSnapshotStore keeps one JSON file per pool under Dir.
type FileSnapshotStore struct {
	Dir string
}

func (s *FileSnapshotStore) path(poolID string) (string, error) {
	if !poolIDPattern.MatchString(poolID) {
		return "", fmt.Errorf("invalid pool id %q", poolID)
	}
	return filepath.Join(s.Dir, poolID+".json"), nil
}

func (s *FileSnapshotStore) Load(ctx context.Context, poolID string) (model.PoolSnapshot, bool, error) {
	path, err := s.path(poolID)
	if err != nil {
		return model.PoolSnapshot{}, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.PoolSnapshot{}, false, nil
		}
		return model.PoolSnapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}

	var snap model.PoolSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.PoolSnapshot{}, false, fmt.Errorf("parse snapshot %s: %w", poolID, err)
	}
	if snap.PoolID != poolID {
		return model.PoolSnapshot{}, false, fmt.Errorf("snapshot %s holds pool %q", path, snap.PoolID)
	}
	return snap, true, nil
}

// Save writes snap atomically. The stored version must be snap.Version-1,
// or absent when snap.Version is 1.
func (s *FileSnapshotStore) Save(ctx context.Context, snap model.PoolSnapshot) error {
	path, err := s.path(snap.PoolID)
	if err != nil {
		return err
	}
	current, found, err := s.Load(ctx, snap.PoolID)
	if err != nil {
		return err
	}
	if (found && current.Version+1 != snap.Version) || (!found && snap.Version != 1) {
		return fmt.Errorf("%w: pool %s stored %d, writing %d", ErrVersionConflict, snap.PoolID, current.Version, snap.Version)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
