// Package bootstrap wires the services from config for every binary.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/rentdoc/internal/application"
	appdocs "github.com/bryanwahyu/rentdoc/internal/application/documents"
	"github.com/bryanwahyu/rentdoc/internal/config"
	"github.com/bryanwahyu/rentdoc/internal/domain/analyses"
	"github.com/bryanwahyu/rentdoc/internal/domain/documents"
	"github.com/bryanwahyu/rentdoc/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/rentdoc/internal/infra/db/mysql"
	"github.com/bryanwahyu/rentdoc/internal/infra/db/postgres"
	"github.com/bryanwahyu/rentdoc/internal/infra/policy"
	"github.com/bryanwahyu/rentdoc/internal/infra/signals/assisted"
	"github.com/bryanwahyu/rentdoc/internal/infra/signals/content"
	"github.com/bryanwahyu/rentdoc/internal/infra/storage"
	"github.com/bryanwahyu/rentdoc/internal/logger"
	"github.com/bryanwahyu/rentdoc/internal/middleware"
)

// FileStore is a documents.FileStore that can be health checked.
type FileStore interface {
	documents.FileStore
	middleware.Pinger
}

// App holds the wired collaborators.
type App struct {
	Docs   *appdocs.Service
	DB     *sql.DB
	Files  FileStore
	Checks map[string]middleware.HealthChecker
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// OpenDB connects the configured database. It returns nil, nil for driver none.
func OpenDB(ctx context.Context, cfg *config.Config) (*sql.DB, analyses.Repository, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		return db, mysqlp.NewAnalysisRepository(db), nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		return db, postgres.NewAnalysisRepository(db), nil
	}
	return nil, nil, nil
}

// OpenStore builds the configured document store.
func OpenStore(ctx context.Context, cfg *config.Config) (FileStore, error) {
	if cfg.Storage.Driver == "minio" {
		store, err := storage.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return nil, fmt.Errorf("minio init: %w", err)
		}
		return store, nil
	}
	return storage.NewLocal(cfg.Storage.LocalDir)
}

// NewAnalyzer builds the analyzer with the configured signal source and
// auto-validation rule. A rule that does not compile is a startup error.
func NewAnalyzer(cfg *config.Config, files documents.FileStore) (*documents.Analyzer, error) {
	pol, err := policy.NewCELPolicy(cfg.Analysis.AutoValidateRule)
	if err != nil {
		return nil, err
	}
	var src documents.SignalSource = content.NewSource(files, cfg.Analysis.MaxDocumentMB<<20)
	if cfg.Analysis.Signals == "openai" {
		src = assisted.NewSource(src, openai.NewClient(cfg.AI.APIKey, cfg.AI.Model))
	}
	logger.Log.Infof("signal source %s, auto-validate rule %q", cfg.Analysis.Signals, pol.Expr())
	return &documents.Analyzer{
		Signals: src,
		Policy:  pol,
		Clock:   application.SystemClock{},
	}, nil
}

// New wires everything. Callers must Close the App.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, repo, err := OpenDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{DB: db, Checks: map[string]middleware.HealthChecker{}}
	if db != nil {
		app.Checks["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	files, err := OpenStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Files = files
	app.Checks["storage"] = &middleware.StorageHealthChecker{Store: files}

	analyzer, err := NewAnalyzer(cfg, files)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Docs = &appdocs.Service{
		Analyzer: analyzer,
		Repo:     repo,
		Files:    files,
		Clock:    application.SystemClock{},
		Metrics:  middleware.DocumentMetrics{},
	}
	return app, nil
}
