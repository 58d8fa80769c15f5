package persist

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nutshell/engine/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// openTestDB connects to the database named by NUTSHELL_TEST_DSN, or skips.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("NUTSHELL_TEST_DSN")
	if dsn == "" {
		t.Skip("NUTSHELL_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := config.Defaults().Database
	cfg.DSN = dsn
	db, err := NewDB(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, RunMigrations(ctx, db.Pool, zap.NewNop()))
	_, err = db.Pool.Exec(ctx, `TRUNCATE scene_snapshots`)
	require.NoError(t, err)
	return db
}

func TestSnapshotRepoSaveLatestPrune(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewSnapshotRepo(db, 2)
	digest := [32]byte{0xab, 0xcd}

	_, err := repo.Latest(ctx, digest)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	for tick := uint64(1); tick <= 3; tick++ {
		s := &Snapshot{SceneName: "demo", Digest: digest, Tick: tick, Entities: 2, Payload: []byte{byte(tick)}}
		require.NoError(t, repo.Save(ctx, s))
		assert.NotZero(t, s.ID)
	}

	latest, err := repo.Latest(ctx, digest)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), latest.Tick)
	assert.Equal(t, digest, latest.Digest)
	assert.Equal(t, []byte{3}, latest.Payload)
	assert.Equal(t, "demo", latest.SceneName)

	n, err := repo.Count(ctx, digest)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.Count(ctx, [32]byte{1})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewDBRejectsBadDSN(t *testing.T) {
	cfg := config.Defaults().Database
	cfg.DSN = "postgres://%zz"
	_, err := NewDB(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "parse dsn")
}

func TestPoolConfig(t *testing.T) {
	cfg := config.Defaults().Database
	cfg.MaxOpenConns = 8
	cfg.MaxIdleConns = 20
	cfg.ConnMaxLifetime = time.Minute

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(8), pc.MinConns, "idle connections are capped by the pool size")
	assert.Equal(t, time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, "nutshell", pc.ConnConfig.Database)
}
