package cli

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"worksheet-quiz/internal/app"
	"worksheet-quiz/internal/config"
	"worksheet-quiz/internal/infra/filesource"
	"worksheet-quiz/internal/infra/memory"
	infraredis "worksheet-quiz/internal/infra/redis"
	"worksheet-quiz/internal/metrics"
	transport "worksheet-quiz/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the worksheet quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	library := app.NewRepository(b.blobStore(cfg.Store.Key), log, m)
	if err := library.Load(ctx); err != nil {
		// keep serving with an empty library; uploads still work
		log.WithError(err).Error("stored worksheets unavailable")
	}
	if cfg.Files.Dir != "" {
		importDir(ctx, library, cfg.Files.Dir, log)
	}
	m.SetWorksheets(library.Count())

	factory := func(playerID string) *app.Game {
		playerLog := log.WithField("player", playerID)
		repo := app.NewRepository(b.blobStore(playerKey(cfg, playerID)), playerLog, m)
		loadCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.LoadOrSeed(loadCtx, library); err != nil {
			playerLog.WithError(err).Warn("player worksheets unavailable")
		}
		return app.NewGame(playerID, repo, log, m, rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	var games app.GameRepository
	if b.redis != nil {
		games = infraredis.NewGameStore(b.redis, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute), factory)
	} else {
		games = memory.NewGameStore(factory)
	}
	wsHandler := transport.NewWSHandler(games, log, m)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting worksheet quiz server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// importDir ingests every worksheet under dir into the seed library and
// persists it. Problems are logged; startup continues with whatever loaded.
func importDir(ctx context.Context, repo *app.Repository, dir string, log logrus.FieldLogger) app.BatchResult {
	docs, err := filesource.NewDir(dir).Read(ctx)
	if err != nil {
		log.WithError(err).Warn("worksheet directory not imported")
		return app.BatchResult{}
	}
	result := repo.IngestBatch(docs)
	if result.Succeeded > 0 {
		if err := repo.Save(ctx); err != nil {
			log.WithError(err).Warn("imported worksheets not persisted")
		}
	}
	log.WithFields(logrus.Fields{
		"dir":       dir,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	}).Info("worksheet directory imported")
	return result
}
