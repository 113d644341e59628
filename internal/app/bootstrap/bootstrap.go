package bootstrap

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"soliditydocs/app/internal/content"
	"soliditydocs/app/internal/data/database"
	datadocs "soliditydocs/app/internal/data/docs"
	"soliditydocs/app/internal/data/migrations"
	domaindocs "soliditydocs/app/internal/domain/docs"
	domainllm "soliditydocs/app/internal/domain/llm"
	"soliditydocs/app/internal/infrastructure/llm/openai"
	"soliditydocs/app/internal/platform/config"
	presentationhttp "soliditydocs/app/internal/presentation/http"
)

type Dependencies struct {
	Config    config.Config
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
}

type Result struct {
	DocsService domaindocs.Service
	HTTPServer  *presentationhttp.Server
	Database    *gorm.DB
	Cleanup     func() error
}

// Build composes the documentation site layers and returns the constructed components.
func Build(ctx context.Context, deps Dependencies) (Result, error) {
	catalog, err := content.NewCatalog()
	if err != nil {
		return Result{}, eris.Wrap(err, "building page catalog")
	}

	db, err := database.Open(database.Options{
		Path:   deps.Config.DBPath,
		Logger: database.NewGormLogger(deps.Logger),
	})
	if err != nil {
		return Result{}, eris.Wrap(err, "opening database")
	}

	closeOnError := func(wrapper error) (Result, error) {
		if closeErr := database.Close(db); closeErr != nil && deps.Logger != nil {
			deps.Logger.WithError(closeErr).Error("closing database after bootstrap failure")
		}
		return Result{}, wrapper
	}

	if err := migrations.MigrateDocs(ctx, db, deps.Logger); err != nil {
		return closeOnError(eris.Wrap(err, "running docs migrations"))
	}

	repo, err := datadocs.NewRepository(db, deps.Logger)
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating docs repository"))
	}

	searcher, err := buildSearcher(deps)
	if err != nil {
		return closeOnError(err)
	}

	docsService, err := domaindocs.NewService(catalog, repo, searcher, deps.Logger, deps.SentryHub)
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating docs service"))
	}

	if err := docsService.SyncIndex(ctx); err != nil {
		return closeOnError(eris.Wrap(err, "syncing search index"))
	}

	httpServer, err := presentationhttp.NewServer(presentationhttp.Options{
		DocsService: docsService,
		Database:    db,
		Logger:      deps.Logger,
		SentryHub:   deps.SentryHub,
		RateLimiter: presentationhttp.RateLimiterSettings{
			Burst:             deps.Config.RateLimit.Burst,
			RequestsPerSecond: deps.Config.RateLimit.RequestsPerSecond,
			ClientTTL:         deps.Config.RateLimit.ClientTTL,
		},
	})
	if err != nil {
		return closeOnError(eris.Wrap(err, "initialising http server"))
	}

	cleanup := func() error {
		httpServer.Close()
		return database.Close(db)
	}

	return Result{
		DocsService: docsService,
		HTTPServer:  httpServer,
		Database:    db,
		Cleanup:     cleanup,
	}, nil
}

// buildSearcher returns nil when no LLM is configured; search then uses the keyword index.
func buildSearcher(deps Dependencies) (domainllm.Searcher, error) {
	if !deps.Config.LLMEnabled() {
		if deps.Logger != nil {
			deps.Logger.Info("llm search disabled, using keyword index")
		}
		return nil, nil
	}

	client, err := openai.NewClient(openai.ClientOptions{
		APIKey:  deps.Config.LLMAPIKey,
		BaseURL: deps.Config.LLMEndpoint,
		Logger:  deps.Logger,
	})
	if err != nil {
		return nil, eris.Wrap(err, "creating llm client")
	}

	searcher, err := openai.NewSearcher(openai.SearcherOptions{
		Client: client,
		Model:  deps.Config.LLMModels[0],
	})
	if err != nil {
		return nil, eris.Wrap(err, "initialising llm searcher")
	}

	return searcher, nil
}
