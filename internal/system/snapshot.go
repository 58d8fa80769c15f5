package system

import (
	"context"
	"fmt"
	"time"

	"github.com/nutshell/engine/internal/core/ecs"
	coresys "github.com/nutshell/engine/internal/core/system"
	"github.com/nutshell/engine/internal/persist"
	"github.com/nutshell/engine/internal/scene"
	"go.uber.org/zap"
)

// SnapshotStore is the part of persist.SnapshotRepo the snapshot system needs.
type SnapshotStore interface {
	Save(ctx context.Context, s *persist.Snapshot) error
}

// SnapshotSystem periodically captures the loaded scene's simulation state and
// saves it. Phase 4 (PostUpdate).
type SnapshotSystem struct {
	world     *ecs.World
	scene     *scene.Scene
	store     SnapshotStore
	log       *zap.Logger
	interval  int // save every N ticks; 0 disables periodic saves
	tickCount int
	tick      uint64
	saved     int
}

func NewSnapshotSystem(world *ecs.World, sc *scene.Scene, store SnapshotStore, log *zap.Logger, intervalTicks int) *SnapshotSystem {
	return &SnapshotSystem{
		world:    world,
		scene:    sc,
		store:    store,
		log:      log,
		interval: intervalTicks,
	}
}

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *SnapshotSystem) Update(_ time.Duration) {
	s.tick++
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.SaveNow(ctx); err != nil {
		s.log.Error("periodic snapshot failed", zap.Error(err))
	}
}

// SaveNow captures and stores a snapshot immediately. Called at shutdown.
func (s *SnapshotSystem) SaveNow(ctx context.Context) error {
	snap := &persist.Snapshot{
		SceneName: s.scene.Name,
		Digest:    s.scene.Digest(),
		Tick:      s.tick,
		Entities:  s.world.EntityCount(),
		Payload:   scene.Capture(s.world, s.scene.Digest()),
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot of %q: %w", s.scene.Name, err)
	}
	s.saved++
	s.log.Info("snapshot saved",
		zap.String("scene", s.scene.Name),
		zap.Uint64("tick", s.tick),
		zap.Int("entities", snap.Entities),
		zap.Int("bytes", len(snap.Payload)))
	return nil
}

// Saved returns how many snapshots have been stored.
func (s *SnapshotSystem) Saved() int { return s.saved }
