package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/candidate-assessor/internal/audit"
	"github.com/spigell/candidate-assessor/internal/catalog"
	"github.com/spigell/candidate-assessor/internal/logger"
	"github.com/spigell/candidate-assessor/internal/secrets"
	"github.com/spigell/candidate-assessor/internal/textanalysis"
	"github.com/spigell/candidate-assessor/internal/textanalysis/gemini"
)

// newAnalyzer returns the Gemini backed analyzer when AI is enabled and the
// local heuristic otherwise.
func newAnalyzer(ctx context.Context, cfg *AIConfig, log *zap.Logger) (textanalysis.Analyzer, error) {
	heuristic := textanalysis.NewHeuristic(log)
	if cfg == nil || !cfg.Enabled {
		return heuristic, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil || strings.TrimSpace(cfg.Gemini.Model) == "" {
		return nil, errors.New("gemini model is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	aiLogger := logger.WithFields(log, logger.CommonFields("gemini", cfg.Gemini.Model)...)
	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, aiLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewAnalyzer(generator, heuristic, cfg.Gemini.MaxLogLength, aiLogger), nil
}

func newCatalog(cfg CatalogConfig, log *zap.Logger) (*catalog.Catalog, error) {
	opts := catalog.Options{Logger: log, Seed: cfg.Seed}
	if strings.TrimSpace(cfg.File) == "" {
		return catalog.NewDefault(opts), nil
	}

	c, err := catalog.Load(cfg.File, opts)
	if err != nil {
		return nil, fmt.Errorf("loading question catalog: %w", err)
	}
	log.Info("question catalog loaded", zap.String("file", cfg.File), zap.Int("questions", c.Len()))
	return c, nil
}

// newRecorder opens every configured audit sink. A sink that fails to open
// is skipped with a warning.
func newRecorder(ctx context.Context, cfg AuditConfig, log *zap.Logger) (*audit.Recorder, *audit.SQLiteStore) {
	var (
		sinks []audit.Sink
		store *audit.SQLiteStore
	)

	if path := strings.TrimSpace(cfg.File); path != "" {
		sink, err := audit.NewFileSink(path)
		if err != nil {
			log.Warn("skipping audit file sink", zap.String("path", path), zap.Error(err))
		} else {
			sinks = append(sinks, sink)
		}
	}

	if path := strings.TrimSpace(cfg.SQLite); path != "" {
		s, err := audit.NewSQLiteStore(path)
		if err != nil {
			log.Warn("skipping audit sqlite store", zap.String("path", path), zap.Error(err))
		} else {
			store = s
			sinks = append(sinks, s)
		}
	}

	if addr := strings.TrimSpace(cfg.Redis.Addr); addr != "" {
		password := ""
		src := secrets.Source{Name: "redis password", Value: cfg.Redis.Password, File: cfg.Redis.PasswordFile}
		if secrets.IsConfigured(src) {
			var err error
			if password, err = secrets.Load(src); err != nil {
				log.Warn("loading redis password", zap.Error(err))
			}
		}

		sink := audit.NewRedisSink(audit.RedisOptions{Addr: addr, Password: password, DB: cfg.Redis.DB, TTL: cfg.Redis.TTL})
		if err := sink.Ping(ctx); err != nil {
			log.Warn("skipping audit redis sink", zap.String("addr", addr), zap.Error(err))
			_ = sink.Close()
		} else {
			sinks = append(sinks, sink)
		}
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	log.Info("audit sinks configured", zap.Strings("sinks", names))

	return audit.NewRecorder(log, sinks...), store
}
