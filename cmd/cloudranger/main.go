// Package main runs Cloud Ranger in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cloudranger/internal/config"
	"github.com/cory-johannsen/cloudranger/internal/frontend/console"
	"github.com/cory-johannsen/cloudranger/internal/game/content"
	"github.com/cory-johannsen/cloudranger/internal/game/dice"
	"github.com/cory-johannsen/cloudranger/internal/game/engine"
	"github.com/cory-johannsen/cloudranger/internal/observability"
	"github.com/cory-johannsen/cloudranger/internal/server"
	"github.com/cory-johannsen/cloudranger/internal/storage"
	"github.com/cory-johannsen/cloudranger/internal/storage/leaderboard"
	"github.com/cory-johannsen/cloudranger/internal/storage/postgres"
	"github.com/cory-johannsen/cloudranger/internal/storage/redis"
	"github.com/cory-johannsen/cloudranger/internal/storage/savefile"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty uses defaults and environment")
	contentDir := flag.String("content", "", "content directory (overrides content.dir)")
	loadName := flag.String("load", "", "resume the named save instead of starting a new game")
	flag.Parse()

	var (
		cfg config.Config
		err error
	)
	if *configPath == "" {
		cfg, err = config.Default()
	} else {
		cfg, err = config.Load(*configPath)
	}
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *contentDir != "" {
		cfg.Content.Dir = *contentDir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	defer observability.Install(logger)()

	if err := run(cfg, *loadName, logger, start); err != nil {
		logger.Error("cloudranger exited with error", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config, loadName string, logger *zap.Logger, start time.Time) error {
	ctx := context.Background()
	lc := server.NewLifecycle(logger)

	store, err := openStore(ctx, cfg, logger, lc)
	if err != nil {
		_ = lc.Close()
		return err
	}

	contentStart := time.Now()
	bundle, err := content.Load(cfg.Content.Dir)
	if err != nil {
		_ = lc.Close()
		return fmt.Errorf("loading content: %w", err)
	}
	logger.Info("content loaded",
		zap.String("dir", cfg.Content.Dir),
		zap.Int("locations", bundle.World.Len()),
		zap.Int("quests", len(bundle.Quests)),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	presenter := console.NewPresenter(os.Stdout, cfg.Palette)
	input := console.NewInput(os.Stdin, presenter)
	roller := dice.NewLoggedRoller(dice.NewSource(cfg.Game.Seed), logger)

	var game *engine.Game
	if loadName != "" {
		snap, err := store.Load(ctx, loadName)
		if err != nil {
			_ = lc.Close()
			return fmt.Errorf("loading save %q: %w", loadName, err)
		}
		game, err = engine.Restore(bundle, snap, roller, presenter, logger)
		if err != nil {
			_ = lc.Close()
			return err
		}
	} else {
		opts, err := console.ChooseOptions(input, presenter, engine.Options{
			Difficulty:     cfg.Game.Difficulty,
			Specialization: cfg.Game.Specialization,
			PlayerName:     cfg.Game.PlayerName,
			VictoryQuest:   cfg.Game.VictoryQuest,
		})
		if err != nil {
			_ = lc.Close()
			return fmt.Errorf("setting up game: %w", err)
		}
		game, err = engine.New(bundle, opts, roller, presenter, logger)
		if err != nil {
			_ = lc.Close()
			return err
		}
	}

	session := console.NewSession(console.SessionConfig{
		Game:         game,
		Input:        input,
		Presenter:    presenter,
		Store:        store,
		Board:        leaderboard.New(cfg.Storage.LeaderboardPath, logger),
		AutosaveName: cfg.Storage.AutosaveName,
		Logger:       logger,
	})
	lc.Add("session", &server.FuncService{
		StartFn: func() error {
			if err := session.Run(ctx); err != nil && !errors.Is(err, console.ErrStopped) {
				return err
			}
			return nil
		},
		StopFn: session.Stop,
	})

	logger.Info("cloudranger ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.Duration("startup", time.Since(start)),
	)
	return lc.Run(ctx)
}

// openStore connects the configured snapshot backend and registers its
// release with lc.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger, lc *server.Lifecycle) (storage.SnapshotStore, error) {
	switch cfg.Storage.Backend {
	case "redis":
		s, err := redis.Dial(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting redis store: %w", err)
		}
		lc.AddCloser("redis", s.Close)
		return s, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting postgres store: %w", err)
		}
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("checking postgres store: %w", err)
		}
		lc.AddCloser("postgres", pool.Close)
		return pool.Snapshots(), nil
	default:
		s, err := savefile.New(cfg.Storage.SaveDir, logger)
		if err != nil {
			return nil, fmt.Errorf("opening save dir: %w", err)
		}
		return s, nil
	}
}
