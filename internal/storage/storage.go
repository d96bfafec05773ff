package storage

import (
	"context"
	"errors"

	"cpmm/internal/model"
)

// ErrVersionConflict is returned by Save when the stored snapshot is not the
// predecessor of the one being written.
var ErrVersionConflict = errors.New("pool snapshot version conflict")

// SnapshotStore persists the latest state of each pool.
type SnapshotStore interface {
	Load(ctx context.Context, poolID string) (model.PoolSnapshot, bool, error)
	Save(ctx context.Context, snap model.PoolSnapshot) error
}

// Journal records committed pool operations.
type Journal interface {
	Append(ctx context.Context, rec model.OperationRecord) error
	History(ctx context.Context, poolID string) ([]model.OperationRecordRaw, error)
}
