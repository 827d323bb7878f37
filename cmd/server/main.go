package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Igoorx/godfield-flash/internal/agent"
	"github.com/Igoorx/godfield-flash/internal/catalog"
	"github.com/Igoorx/godfield-flash/internal/config"
	"github.com/Igoorx/godfield-flash/internal/engine"
	"github.com/Igoorx/godfield-flash/internal/infrastructure/results"
	"github.com/Igoorx/godfield-flash/internal/infrastructure/storage"
	"github.com/Igoorx/godfield-flash/internal/server"
	"github.com/Igoorx/godfield-flash/internal/version"
	"github.com/Igoorx/godfield-flash/pkg/logger"

	"github.com/sirupsen/logrus"
)

const (
	shutdownTimeout = 10 * time.Second
	resultSaveWait  = 5 * time.Second
)

func init() {
	logger.Init()
}

func main() {
	// 1. Флаги и конфигурация
	var seed int64
	var replayPath string
	flag.Int64Var(&seed, "seed", 0, "Master seed for room RNGs (0 keeps GF_SEED or a random one)")
	flag.StringVar(&replayPath, "replay", "", "Path to a .gfrp replay file to simulate")
	flag.Parse()

	logger.Log.Info("Starting GodField server...")
	logger.Log.Info(version.String())

	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load config")
	}
	engineCfg := cfg.Engine()
	if seed != 0 {
		engineCfg.Seed = seed
		logger.Log.Infof("Using explicit master seed: %d", seed)
	} else {
		logger.Log.Infof("Using master seed: %d", engineCfg.Seed)
	}

	// 2. Каталог предметов
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load item catalog")
	}

	// 3. Хранилища
	replays, err := storage.NewReplayService(cfg.ReplayDir)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to prepare replay directory")
	}

	// РЕЖИМ РЕПЛЕЯ
	if replayPath != "" {
		runPlayback(engineCfg, cat, replays, replayPath)
		return
	}

	db, err := results.OpenAndMigrate(cfg.DBPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to open results database")
	}
	resultCache := results.NewCachedReader(results.NewSQLiteRepository(db), cfg.ResultCacheSize, cfg.ResultCacheTTL)

	// 4. Ядро
	svc := engine.NewService(engineCfg, cat, engine.ServiceDeps{
		Replays:  replays,
		OnResult: saveResult(resultCache),
		NewBot:   agent.NewBot,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	svc.Start(ctx)

	// 5. HTTP
	srv := server.New(svc, resultCache, cfg.Addr())
	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.WithError(err).Fatal("Server start error")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Warn("HTTP shutdown failed")
	}
	svc.Shutdown()

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Log.WithError(err).Warn("Failed to close results database")
		}
	}
	logger.Log.Info("Done.")
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

// saveResult превращает итог партии в запись БД.
func saveResult(store *results.CachedReader) engine.ResultSink {
	return func(res engine.MatchResult) {
		ctx, cancel := context.WithTimeout(context.Background(), resultSaveWait)
		defer cancel()

		rec := &results.MatchRecord{
			RoomID:  res.RoomID,
			Seed:    res.Seed,
			Winners: res.Winners,
			Innings: res.Innings,
			Started: res.Started,
			Ended:   res.Ended,
		}
		log := logger.Log.WithField("room", res.RoomID)
		if err := store.Save(ctx, rec); err != nil {
			log.WithError(err).Error("Failed to save match result")
			return
		}
		log.WithField("winners", res.Winners).Info("Match result saved")
	}
}

func runPlayback(cfg engine.Config, cat *catalog.Catalog, replays *storage.ReplayService, path string) {
	logger.Log.Info("Mode: Replay Simulation")

	svc := engine.NewService(cfg, cat, engine.ServiceDeps{
		Replays: replays,
		NewBot:  agent.NewBot,
	})
	res, err := svc.Playback(path)
	if err != nil {
		logger.Log.WithError(err).Fatal("Replay simulation failed")
	}
	logger.Log.WithFields(logrus.Fields{
		"room":    res.RoomID,
		"seed":    res.Seed,
		"innings": res.Innings,
		"winners": res.Winners,
	}).Info("Replay simulated")
}
