package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/candidate-assessor/internal/api"
	"github.com/spigell/candidate-assessor/internal/audit"
	"github.com/spigell/candidate-assessor/internal/bias"
	"github.com/spigell/candidate-assessor/internal/evaluation"
	"github.com/spigell/candidate-assessor/internal/integrity"
	"github.com/spigell/candidate-assessor/internal/interview"
	"github.com/spigell/candidate-assessor/internal/logger"
	"github.com/spigell/candidate-assessor/internal/metrics"
	"github.com/spigell/candidate-assessor/internal/resume"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview and screening HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.Build(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug"), Service: app})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		return fmt.Errorf("getting a config: %w", err)
	}

	logger.Info("starting the assessor api", zap.String("version", version), zap.String("addr", config.Server.Addr))

	analyzer, err := newAnalyzer(ctx, config.AI, logger)
	if err != nil {
		return fmt.Errorf("creating text analyzer: %w", err)
	}

	questions, err := newCatalog(config.Catalog, logger)
	if err != nil {
		return err
	}

	recorder, store := newRecorder(ctx, config.Audit, logger)
	defer func() {
		if err := recorder.Close(); err != nil {
			logger.Warn("closing audit sinks", zap.Error(err))
		}
	}()
	recorder.OnEvent(metrics.NewAudit(nil).Observe)

	engine, err := interview.NewEngine(config.Interview, interview.Dependencies{
		Catalog:    questions,
		Monitor:    integrity.NewMonitor(config.Integrity, recorder, logger),
		Similarity: analyzer,
		Audit:      recorder,
		Observer:   metrics.NewInterview(nil),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("creating interview engine: %w", err)
	}

	scheduler, err := scheduleRetention(ctx, config.Audit, recorder, store, logger)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	server := api.New(config.Server.Config, api.Deps{
		Engine:     engine,
		Catalog:    questions,
		Audit:      recorder,
		Evaluator:  evaluation.New(logger),
		Parser:     resume.NewParser(analyzer, logger),
		Scorer:     resume.NewScorer(analyzer, config.Resume.Weights, logger),
		Compliance: resume.NewChecker(analyzer, recorder, logger),
		Bias:       bias.NewDetector(config.Bias.Threshold, analyzer, recorder, logger),
		Logger:     logger,
	})

	httpServer := &http.Server{
		Addr:         config.Server.Addr,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: config.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("reason", context.Cause(ctx).Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	logger.Info("api stopped", zap.Int("active_sessions", engine.ActiveSessions()))
	return nil
}

// scheduleRetention purges audit records older than the retention period on
// the configured cron schedule and logs SQLite statistics after each run.
func scheduleRetention(ctx context.Context, cfg AuditConfig, recorder *audit.Recorder, store *audit.SQLiteStore, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	if cfg.Retention <= 0 || cfg.CleanupSchedule == "" {
		log.Info("audit retention disabled")
		return c, nil
	}

	_, err := c.AddFunc(cfg.CleanupSchedule, func() {
		before := time.Now().Add(-cfg.Retention)
		removed, err := recorder.Purge(ctx, before)
		if err != nil {
			log.Warn("audit retention run failed", zap.Error(err))
		}
		log.Info("audit retention run finished", zap.Int64("removed", removed), zap.Time("before", before))

		if store == nil {
			return
		}
		stats, err := store.Statistics(ctx, 30)
		if err != nil {
			log.Warn("computing audit statistics", zap.Error(err))
			return
		}
		log.Info("audit statistics",
			zap.Int("total_events", stats.TotalEvents),
			zap.Float64("high_severity_rate", stats.HighSeverityRate),
			zap.String("trend", stats.Trend),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling audit retention %q: %w", cfg.CleanupSchedule, err)
	}

	c.Start()
	log.Info("audit retention scheduled", zap.String("schedule", cfg.CleanupSchedule), zap.Duration("retention", cfg.Retention))
	return c, nil
}
