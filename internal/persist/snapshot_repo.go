package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrNoSnapshot is returned by Latest when a scene has never been saved.
var ErrNoSnapshot = errors.New("persist: no snapshot")

// Snapshot is one saved capture of a scene's simulation state.
type Snapshot struct {
	ID        int64
	SceneName string
	Digest    [32]byte
	Tick      uint64
	Entities  int
	Payload   []byte
	CreatedAt time.Time
}

type SnapshotRepo struct {
	db   *DB
	keep int
}

// NewSnapshotRepo keeps at most keep snapshots per scene digest; keep <= 0 keeps all.
func NewSnapshotRepo(db *DB, keep int) *SnapshotRepo {
	return &SnapshotRepo{db: db, keep: keep}
}

// Save inserts a snapshot and prunes older ones for the same digest in one transaction.
func (r *SnapshotRepo) Save(ctx context.Context, s *Snapshot) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO scene_snapshots (scene_name, digest, tick, entities, payload)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		s.SceneName, s.Digest[:], int64(s.Tick), s.Entities, s.Payload,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("snapshot insert: %w", err)
	}

	if r.keep > 0 {
		if _, err := tx.Exec(ctx,
			`DELETE FROM scene_snapshots
			 WHERE digest = $1 AND id NOT IN (
			     SELECT id FROM scene_snapshots WHERE digest = $1 ORDER BY id DESC LIMIT $2
			 )`,
			s.Digest[:], r.keep,
		); err != nil {
			return fmt.Errorf("snapshot prune: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Latest returns the newest snapshot taken from the scene with the given digest.
func (r *SnapshotRepo) Latest(ctx context.Context, digest [32]byte) (*Snapshot, error) {
	var (
		s     Snapshot
		raw   []byte
		tick  int64
		nEnts int32
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, scene_name, digest, tick, entities, payload, created_at
		 FROM scene_snapshots WHERE digest = $1 ORDER BY id DESC LIMIT 1`,
		digest[:],
	).Scan(&s.ID, &s.SceneName, &raw, &tick, &nEnts, &s.Payload, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("snapshot load: %w", err)
	}
	copy(s.Digest[:], raw)
	s.Tick = uint64(tick)
	s.Entities = int(nEnts)
	return &s, nil
}

// Count returns how many snapshots are stored for a digest.
func (r *SnapshotRepo) Count(ctx context.Context, digest [32]byte) (int, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM scene_snapshots WHERE digest = $1`, digest[:],
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("snapshot count: %w", err)
	}
	return int(n), nil
}
