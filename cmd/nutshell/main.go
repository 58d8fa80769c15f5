package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nutshell/engine/internal/config"
	"github.com/nutshell/engine/internal/core/ecs"
	"github.com/nutshell/engine/internal/core/event"
	coresys "github.com/nutshell/engine/internal/core/system"
	"github.com/nutshell/engine/internal/persist"
	"github.com/nutshell/engine/internal/scene"
	"github.com/nutshell/engine/internal/scripting"
	"github.com/nutshell/engine/internal/system"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             Nutshell  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mworld:\033[0m %s\n\n", name)
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Engine ────────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/engine.toml"
	if p := os.Getenv("NUTSHELL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Engine.Name)

	// 3. World, components and scripting
	printSection("world")
	bus := event.NewBus()
	world := ecs.NewWorld(
		ecs.WithCapacity(cfg.ECS.MaxEntities),
		ecs.WithLogger(log),
		ecs.WithEventBus(bus),
	)
	system.RegisterComponents(world)
	printStat("entity capacity", world.Capacity())
	printStat("component types", world.Components().Len())

	luaEngine, err := scripting.NewEngine(cfg.Engine.ScriptsDir, world, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("lua scripts loaded")

	scriptSys := system.NewScriptSystem(world, luaEngine, log)
	scriptSys.Register()
	motionSys := system.NewMotionSystem(world, cfg.Engine.Gravity)
	motionSys.Register()
	event.Subscribe(bus, func(ev ecs.EntityDestroyed) {
		log.Debug("entity gone", zap.Uint32("entity", uint32(ev.Entity)), zap.String("name", ev.Name))
	})

	// 4. Scene
	var sc *scene.Scene
	if cfg.Engine.Scene != "" {
		sc, err = scene.Load(cfg.Engine.Scene)
		if err != nil {
			return fmt.Errorf("load scene: %w", err)
		}
		if _, err := sc.Instantiate(world); err != nil {
			return fmt.Errorf("instantiate scene: %w", err)
		}
		printStat("scene entities", sc.Count())
		printStat("scripts attached", luaEngine.Len())
	}
	fmt.Println()

	// 5. Optional snapshot database
	var snapshotSys *system.SnapshotSystem
	if cfg.Database.Enabled && sc != nil {
		printSection("database")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("postgres connected")

		if err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")

		repo := persist.NewSnapshotRepo(db, 16)
		if err := restoreLatest(ctx, repo, world, sc, log); err != nil {
			return err
		}
		snapshotSys = system.NewSnapshotSystem(world, sc, repo, log, cfg.Database.SnapshotInterval)
		fmt.Println()
	}

	// 6. Tick systems
	runner := coresys.NewRunner(log)
	runner.Register(system.NewEventSystem(bus))
	runner.Register(scriptSys)
	runner.Register(motionSys)
	if snapshotSys != nil {
		runner.Register(snapshotSys)
	}
	runner.Register(system.NewCleanupSystem(world, log))

	// 7. Start tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Engine.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("tick loop started (tick: %s, systems: %d)", cfg.Engine.TickRate, runner.Len()))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Engine.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			if snapshotSys != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				if err := snapshotSys.SaveNow(ctx); err != nil {
					log.Error("final snapshot failed", zap.Error(err))
				}
				cancel()
			}
			world.DestroyAllEntities()
			log.Info("engine stopped", zap.Uint64("ticks", runner.Ticks()))
			return nil
		}
	}
}

// restoreLatest applies the newest stored snapshot of the scene, if any.
func restoreLatest(ctx context.Context, repo *persist.SnapshotRepo, world *ecs.World, sc *scene.Scene, log *zap.Logger) error {
	snap, err := repo.Latest(ctx, sc.Digest())
	if errors.Is(err, persist.ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	n, err := scene.Restore(world, sc.Digest(), snap.Payload)
	if err != nil {
		return fmt.Errorf("restore snapshot %d: %w", snap.ID, err)
	}
	log.Info("snapshot restored", zap.Int64("id", snap.ID), zap.Uint64("tick", snap.Tick), zap.Int("entities", n))
	printStat("entities restored", n)
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
