package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[engine]
name = "demo"
tick_rate = "20ms"
scene = "scenes/demo.yaml"

[ecs]
max_entities = 128

[logging]
level = "debug"
format = "json"
`))
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Engine.Name)
	assert.Equal(t, 20*time.Millisecond, cfg.Engine.TickRate)
	assert.Equal(t, "scenes/demo.yaml", cfg.Engine.Scene)
	assert.Equal(t, "scripts", cfg.Engine.ScriptsDir, "unset keys keep defaults")
	assert.Equal(t, 128, cfg.ECS.MaxEntities)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Database.Enabled)
	assert.NotZero(t, cfg.Engine.StartTime)
	assert.Equal(t, [3]float32{0, -9.81, 0}, cfg.Engine.Gravity)
	assert.Equal(t, 3600, cfg.Database.SnapshotInterval)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	_, err := Parse([]byte("[ecs]\nmax_entities = 0\n"))
	assert.ErrorContains(t, err, "max_entities")

	// entity slots are indexed with int32
	_, err = Parse([]byte("[ecs]\nmax_entities = 4294967296\n"))
	assert.ErrorContains(t, err, "at most")

	_, err = Parse([]byte("[database]\nenabled = true\ndsn = \"\"\n"))
	assert.ErrorContains(t, err, "database.dsn")

	_, err = Parse([]byte("[database]\nsnapshot_interval = -1\n"))
	assert.ErrorContains(t, err, "snapshot_interval")

	_, err = Parse([]byte("[engine\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ecs]\nmax_entities = 64\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.ECS.MaxEntities)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "read config")
}
