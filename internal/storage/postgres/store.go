package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cpmm/internal/model"
	"cpmm/internal/storage"
)

// Schema creates the tables used by Store.
const Schema = `
CREATE TABLE IF NOT EXISTS pool_snapshots (
	pool_id     TEXT PRIMARY KEY,
	version     BIGINT NOT NULL,
	state       JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS pool_operations (
	pool_id     TEXT NOT NULL,
	version     BIGINT NOT NULL,
	kind        TEXT NOT NULL,
	payload     JSONB NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (pool_id, version)
);
`

// Store provides Postgres persistence for pool snapshots and the operation
// journal.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ storage.SnapshotStore = (*Store)(nil)
	_ storage.Journal       = (*Store)(nil)
)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

// Load returns the latest snapshot of poolID.
func (s *Store) Load(ctx context.Context, poolID string) (model.PoolSnapshot, bool, error) {
	if poolID == "" {
		return model.PoolSnapshot{}, false, fmt.Errorf("pool id required")
	}
	var state []byte
	row := s.pool.QueryRow(ctx, `SELECT state FROM pool_snapshots WHERE pool_id=$1`, poolID)
	if err := row.Scan(&state); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PoolSnapshot{}, false, nil
		}
		return model.PoolSnapshot{}, false, err
	}
	var snap model.PoolSnapshot
	if err := json.Unmarshal(state, &snap); err != nil {
		return model.PoolSnapshot{}, false, fmt.Errorf("parse snapshot %s: %w", poolID, err)
	}
	return snap, true, nil
}

// Save upserts snap only when it directly follows the stored version.
func (s *Store) Save(ctx context.Context, snap model.PoolSnapshot) error {
	state, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO pool_snapshots (pool_id, version, state, updated_at)
		SELECT $1::text, $2::bigint, $3::jsonb, now()
		WHERE $2::bigint = 1 OR EXISTS (SELECT 1 FROM pool_snapshots WHERE pool_id = $1::text)
		ON CONFLICT (pool_id) DO UPDATE
		SET version = EXCLUDED.version, state = EXCLUDED.state, updated_at = now()
		WHERE pool_snapshots.version = EXCLUDED.version - 1
	`, snap.PoolID, int64(snap.Version), state)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// version 1 upserting onto an existing row also lands here
		return fmt.Errorf("%w: pool %s version %d", storage.ErrVersionConflict, snap.PoolID, snap.Version)
	}
	return nil
}

// Append inserts one journal record.
func (s *Store) Append(ctx context.Context, rec model.OperationRecord) error {
	return s.AppendBatch(ctx, []model.OperationRecord{rec})
}

// AppendBatch inserts journal records in a single round trip.
func (s *Store) AppendBatch(ctx context.Context, recs []model.OperationRecord) error {
	if len(recs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range recs {
		payload, err := json.Marshal(rec.Payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", rec.Kind, err)
		}
		recordedAt, err := time.Parse(time.RFC3339Nano, rec.RecordedAt)
		if err != nil {
			return fmt.Errorf("parse recorded_at %q: %w", rec.RecordedAt, err)
		}
		batch.Queue(`
			INSERT INTO pool_operations (pool_id, version, kind, payload, recorded_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (pool_id, version) DO NOTHING
		`,
			rec.PoolID,
			int64(rec.Version),
			rec.Kind,
			payload,
			recordedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range recs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// History returns journal records ordered by pool and version.
func (s *Store) History(ctx context.Context, poolID string) ([]model.OperationRecordRaw, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pool_id, version, kind, payload, recorded_at
		FROM pool_operations
		WHERE $1::text = '' OR pool_id = $1::text
		ORDER BY pool_id, version
	`, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OperationRecordRaw
	for rows.Next() {
		var (
			rec        model.OperationRecordRaw
			version    int64
			payload    []byte
			recordedAt time.Time
		)
		if err := rows.Scan(&rec.PoolID, &version, &rec.Kind, &payload, &recordedAt); err != nil {
			return nil, err
		}
		rec.Version = uint64(version)
		rec.Payload = payload
		rec.RecordedAt = recordedAt.UTC().Format(time.RFC3339Nano)
		out = append(out, rec)
	}
	return out, rows.Err()
}
