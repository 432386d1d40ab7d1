package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/blockedby/forwarder-os/internal/api"
	"github.com/blockedby/forwarder-os/internal/config"
	"github.com/blockedby/forwarder-os/internal/forwarder"
	"github.com/blockedby/forwarder-os/internal/history"
	"github.com/blockedby/forwarder-os/internal/logger"
	"github.com/blockedby/forwarder-os/internal/models"
	"github.com/blockedby/forwarder-os/internal/nats"
	"github.com/blockedby/forwarder-os/internal/publisher"
	"github.com/blockedby/forwarder-os/internal/repository"
	"github.com/blockedby/forwarder-os/internal/telegram"
)

func main() {
	// 1. Load .env and config
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Msg("starting forwarder service")

	if cfg.TGApiID == 0 || cfg.TGApiHash == "" {
		log.Fatal().Msg("TG_API_ID and TG_API_HASH are required")
	}

	// 3. Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// 4. Open the session/records database
	if err := os.MkdirAll(filepath.Dir(cfg.SessionDBPath), 0755); err != nil {
		log.Fatal().Err(err).Msg("failed to create data directory")
	}
	db, err := gorm.Open(sqlite.Open(cfg.SessionDBPath), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	forwardsRepo, err := repository.NewForwardsRepository(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init forward records")
	}

	// 5. Open the history log
	historyLog, err := history.NewLog(cfg.HistoryFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open history file")
	}
	defer historyLog.Close()

	// 6. Connect to NATS (optional: publishing disabled when unavailable)
	var pub forwarder.EventPublisher
	nc, err := nats.New(ctx, cfg.NatsURL)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to nats, publishing disabled")
	} else {
		defer nc.Close()
		if err := nc.EnsureStream(ctx, "FORWARDS", []string{"forwards.>"}); err != nil {
			log.Warn().Err(err).Msg("failed to ensure forwards stream")
		}
		pub = publisher.NewNATSPublisher(nc.Conn)
	}

	// 7. Initialize telegram transport
	tgManager := telegram.NewManager(cfg, db)
	tgClient := telegram.NewClient(tgManager)
	defer tgClient.Close()

	albumWindow := time.Duration(cfg.AlbumWindowMS) * time.Millisecond
	listener := telegram.NewListener(tgManager, albumWindow)

	// 8. Assemble the forwarding core
	cache := forwarder.NewDedupCache(time.Duration(cfg.DedupTTLSec) * time.Second)
	go cache.RunJanitor(ctx, 0)

	executor := forwarder.NewExecutor(tgClient, log)
	registry := forwarder.NewRegistry(listener, forwarder.HandlerDeps{
		Cache:     cache,
		Executor:  executor,
		History:   historyLog,
		Store:     forwardsRepo,
		Publisher: pub,
		Log:       log,
	})

	// 9. Load jobs and start forwarding
	jobs, err := config.LoadJobs(cfg.JobsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.JobsFile).Msg("failed to load jobs")
	}
	logJobs(log, jobs)

	if err := registry.Start(ctx, jobs); err != nil {
		log.Fatal().Err(err).Msg("failed to start forwarding")
	}

	// 10. Start the control API
	loader := func() ([]models.Job, error) { return config.LoadJobs(cfg.JobsFile) }
	server := api.NewServer(cfg.HTTPPort, api.NewHandler(registry, loader, tgClient, forwardsRepo))

	log.Info().Int("port", cfg.HTTPPort).Msg("starting control server")
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// 11. Wait for shutdown or event loop termination
	select {
	case <-ctx.Done():
	case err := <-registry.Done():
		if err != nil {
			log.Error().Err(err).Msg("forwarding terminated")
		}
	}

	log.Info().Msg("shutting down...")
	registry.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server shutdown failed")
	}

	log.Info().Msg("shutdown complete")
}

func logJobs(log *logger.Logger, jobs []models.Job) {
	for _, job := range jobs {
		log.Info().
			Str("job", job.ID.String()).
			Ints64("sources", job.SourceChatIDs).
			Int64("dest", job.DestinationChatID).
			Strs("keywords", job.Keywords).
			Msg("loaded forwarding job")
	}
}
