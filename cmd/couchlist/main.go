package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/slipstream/couchlist/internal/api"
	"github.com/slipstream/couchlist/internal/config"
	"github.com/slipstream/couchlist/internal/couchpotato"
	"github.com/slipstream/couchlist/internal/database"
	"github.com/slipstream/couchlist/internal/entry"
	"github.com/slipstream/couchlist/internal/listsync"
	"github.com/slipstream/couchlist/internal/logger"
	"github.com/slipstream/couchlist/internal/movielist"
	"github.com/slipstream/couchlist/internal/plugin"
	"github.com/slipstream/couchlist/internal/scheduler"
	"github.com/slipstream/couchlist/internal/scheduler/tasks"
	"github.com/slipstream/couchlist/internal/websocket"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	once := flag.Bool("once", false, "fetch every source once, print the entries and exit")
	sourceName := flag.String("source", "", "with -once, fetch only this source")
	format := flag.String("format", formatYAML, "with -once, output format (yaml or json)")
	testMode := flag.Bool("test", false, "log every accepted entry field by field")
	flag.Parse()

	// Missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *testMode {
		cfg.Sync.TestMode = true
	}

	log := logger.New(logger.Config{
		Level:           cfg.Logging.Level,
		Format:          cfg.Logging.Format,
		Path:            cfg.Logging.Path,
		MaxSizeMB:       cfg.Logging.MaxSizeMB,
		MaxBackups:      cfg.Logging.MaxBackups,
		MaxAgeDays:      cfg.Logging.MaxAgeDays,
		Compress:        cfg.Logging.Compress,
		EnableStreaming: !*once,
		BufferSize:      1000,
	})
	defer log.Close()

	source, err := plugin.New(couchpotato.PluginName, plugin.Options{
		Logger:   log.Logger,
		TestMode: cfg.Sync.TestMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build list plugin")
	}

	if *once {
		code := runOnce(cfg, source, *sourceName, *format, log)
		log.Close()
		os.Exit(code)
	}

	runService(cfg, source, log)
}

// runOnce fetches the selected sources and prints what they returned. The
// exit code is non-zero if any fetch failed.
func runOnce(cfg *config.Config, source plugin.ListSource, only, format string, log *logger.Logger) int {
	sources := cfg.Sources
	if only != "" {
		src, ok := cfg.FindSource(only)
		if !ok {
			log.Error().Str("source", only).Msg("source not configured")
			return 2
		}
		sources = []config.CouchPotatoConfig{src}
	}
	if len(sources) == 0 {
		log.Warn().Msg("no sources configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := 0
	out := make([]sourceOutput, 0, len(sources))
	for _, src := range sources {
		entries, err := source.ListEntries(ctx, src)
		result := sourceOutput{Source: src.Name, Entries: entries}
		if result.Entries == nil {
			result.Entries = []entry.Entry{}
		}
		if err != nil {
			log.Error().Err(err).Str("source", src.Name).Msg("fetch failed")
			result.Error = err.Error()
			code = 1
		}
		out = append(out, result)
	}

	if err := writeEntries(os.Stdout, format, out); err != nil {
		log.Error().Err(err).Msg("failed to write entries")
		return 2
	}
	return code
}

func runService(cfg *config.Config, source plugin.ListSource, log *logger.Logger) {
	log.Info().
		Str("version", config.Version).
		Int("sources", len(cfg.Sources)).
		Msg("starting couchlist")

	db, err := database.New(cfg.Database.Path, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(log.Logger)
	go hub.Run(ctx)
	log.SetBroadcaster(hub)

	lists := movielist.NewService(db.Conn(), log.Logger)
	syncService := listsync.NewService(db.Conn(), cfg.Sources, source, lists, log.Logger)
	syncService.SetBroadcaster(hub)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := tasks.RegisterListSyncTask(sched, syncService, &cfg.Sync); err != nil {
		log.Fatal().Err(err).Msg("failed to register list sync task")
	}

	server := api.NewServer(db.Conn(), cfg, api.Services{
		Sync:      syncService,
		Lists:     lists,
		Scheduler: sched,
		Hub:       hub,
		Logs:      log,
	}, log.Logger)
	server.KeyLimiter().StartCleanup(ctx, 5*time.Minute)

	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	serverErr := make(chan error, 1)
	go func() {
		addr := cfg.Server.Address()
		log.Info().Str("address", addr).Msg("HTTP server listening")
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	case err := <-serverErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown error")
	}

	log.Info().Msg("server stopped")
}
