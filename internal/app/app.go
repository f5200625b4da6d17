package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/sociallens/comment-collector/internal/collector"
	"github.com/sociallens/comment-collector/internal/collector/collectorimpl"
	"github.com/sociallens/comment-collector/internal/graph"
	_ "github.com/sociallens/comment-collector/internal/migrations"
	"github.com/sociallens/comment-collector/internal/platform/facebook"
	"github.com/sociallens/comment-collector/internal/platform/instagram"
	runrepo "github.com/sociallens/comment-collector/internal/repositories/run"
	"github.com/sociallens/comment-collector/pkg/config"
	"github.com/sociallens/comment-collector/pkg/logger"
	"github.com/sociallens/comment-collector/pkg/pgx"
	"go.uber.org/fx"
)

const runTimeout = 2 * time.Hour

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
		graph.New,
		facebook.New,
		instagram.New,
	),
	fx.Provide(
		fx.Annotate(
			collectorimpl.New,
			fx.As(new(collector.Client)),
		),
	),
	runrepo.Module,
	fx.Invoke(migrate),
	fx.Invoke(start),
)

// migrate brings the run-archive schema up to date. Skipped entirely when no
// database is configured.
func migrate(cfg *config.Config, log logger.Logger) error {
	if !cfg.ArchiveEnabled() {
		return nil
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Run archive schema is up to date")
	return nil
}

// start runs the batch once and shuts the app down, or keeps a cron scheduler
// alive when COLLECTOR_CRON is set.
func start(lc fx.Lifecycle, shutdowner fx.Shutdowner, log logger.Logger, cfg *config.Config, c collector.Client, repo runrepo.Repository) error {
	var scheduler gocron.Scheduler
	if cfg.Collector.Cron != "" {
		s, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		_, err = s.NewJob(
			gocron.CronJob(cfg.Collector.Cron, false),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
				defer cancel()

				log.Info("Starting scheduled collection run")
				runOnce(ctx, log, c)
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule collection runs: %w", err)
		}
		scheduler = s
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logPreviousRun(ctx, log, repo)

			if scheduler != nil {
				go startHttpServer(log, cfg)
				scheduler.Start()
				log.Info("Scheduled collection runs", "cron", cfg.Collector.Cron)
				return nil
			}

			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
				defer cancel()

				runOnce(ctx, log, c)

				if err := shutdowner.Shutdown(); err != nil {
					log.Error("Failed to shut down application", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			if scheduler != nil {
				log.Info("Stopping collection scheduler")
				return scheduler.Shutdown()
			}
			return nil
		},
	})
	return nil
}

// logPreviousRun surfaces the last archived run, when an archive exists.
func logPreviousRun(ctx context.Context, log logger.Logger, repo runrepo.Repository) {
	records, err := repo.GetRecent(ctx, 1)
	if err != nil {
		log.Warn("Failed to read run archive", "error", err)
		return
	}
	if len(records) == 0 {
		return
	}
	last := records[0]
	log.Info("Previous run",
		"finished_at", last.FinishedAt,
		"rows", last.RowCount,
		"failed_links", len(last.FailedLinks),
	)
}

func startHttpServer(log logger.Logger, cfg *config.Config) {
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if _, err := w.Write([]byte("ok")); err != nil {
			log.Error("Failed to write response", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port), nil); err != nil {
		log.Error("Server failed to start", "error", err)
	}
}

func runOnce(ctx context.Context, log logger.Logger, c collector.Client) {
	result, err := c.Run(ctx)
	switch {
	case err != nil:
		log.Error("Collection run failed", "error", err)
	case result == nil:
		log.Info("Collection run finished with nothing to write")
	default:
		log.Info("Collection run finished",
			"output", result.OutputPath,
			"rows", len(result.Rows),
			"failed_links", len(result.FailedLinks),
		)
	}
}
