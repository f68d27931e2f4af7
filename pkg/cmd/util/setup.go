// Package util contains the setup shared by the commands.
package util

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pgx-contrib/pgxtrace"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/prowheel/wheellab/log"
	"github.com/prowheel/wheellab/pkg/catalog"
	"github.com/prowheel/wheellab/pkg/config"
	"github.com/prowheel/wheellab/pkg/db/postgres"
	"github.com/prowheel/wheellab/pkg/repository"
	"github.com/prowheel/wheellab/pkg/repository/api"
	bobRepos "github.com/prowheel/wheellab/pkg/repository/bob"
	"github.com/prowheel/wheellab/pkg/repository/memory"
	"github.com/prowheel/wheellab/pkg/repository/natskv"
	"github.com/prowheel/wheellab/pkg/repository/yamlfile"
	"github.com/prowheel/wheellab/pkg/service"
	"github.com/prowheel/wheellab/pkg/utils"
)

// Env holds the workshop and everything that has to be released after use.
type Env struct {
	Workshop    *service.Workshop
	CatalogFile *yamlfile.Store // nil unless --catalog-file is set
	closers     []func()
}

// Close releases the resources in reverse order of creation.
func (e *Env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

func (e *Env) onClose(f func()) {
	e.closers = append(e.closers, f)
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger creates the application logger and the sql logger from the
// configuration. The application logger becomes the default logger.
func SetupLogger() (logger, sqlLogger *log.Logger) {
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	if config.LogFilter != "" {
		filter, err := log.WithFilter(config.LogFilter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ignoring invalid log filter %q: %v\n", config.LogFilter, err)
		} else {
			opts = append(opts, filter)
		}
	}
	switch config.LogFormat {
	case "json":
		logger = log.New(os.Stderr, parseLogLevel(config.LogLevel, log.InfoLevel), opts...)
		sqlLogger = log.New(os.Stderr, parseLogLevel(config.SQLLogLevel, log.InfoLevel), opts...)
	default:
		logger = log.DevLogger(os.Stderr, parseLogLevel(config.LogLevel, log.InfoLevel), opts...)
		sqlLogger = log.DevLogger(
			os.Stderr, parseLogLevel(config.SQLLogLevel, log.InfoLevel), opts...)
	}
	log.ResetDefault(logger)
	return logger, sqlLogger
}

func waitTimeout() time.Duration {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	return timeout
}

// WaitForDB blocks until the configured database accepts connections.
func WaitForDB(ctx context.Context) error {
	addr := utils.ExtractFromDBURL(config.DB)
	if addr == "" {
		return fmt.Errorf("cannot extract address from db url")
	}
	if err := utils.WaitForTCP(ctx, addr, waitTimeout()); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	return nil
}

// SetupEnv creates the workshop according to the configuration.
//
//nolint:funlen,gocognit // sequential setup
func SetupEnv(ctx context.Context) (*Env, error) {
	logger, sqlLogger := SetupLogger()
	env := &Env{}
	onErr := func(err error) (*Env, error) {
		env.Close()
		return nil, err
	}

	if config.EnableTelemetry {
		logger.Info("Enabling telemetry")
		if telemetry, err := config.SetupTelemetry(ctx); err == nil {
			env.onClose(telemetry.Shutdown)
		} else {
			logger.Warn("Could not setup telemetry", log.ErrorField(err))
		}
		err := otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			logger.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}

	var repos api.Repositories
	var txManager api.TransactionManager
	// recipes share the transaction only if they live in the same database
	recipesInTx := false
	switch config.Store {
	case config.StoreMemory:
		repos = memory.NewRepositories()
		txManager = memory.NewTransactionManager()
	case config.StorePostgres, "":
		if err := WaitForDB(ctx); err != nil {
			return onErr(err)
		}
		pgTracer := pgxtrace.CompositeQueryTracer{
			postgres.NewMyTracer(sqlLogger, log.DebugLevel),
		}
		if config.EnableTelemetry {
			pgTracer = append(pgTracer, postgres.NewOtlpTracer())
		}
		pool, err := postgres.InitWithURL(ctx, config.DB, postgres.WithTracer(pgTracer))
		if err != nil {
			return onErr(err)
		}
		env.onClose(pool.Close)
		repos = bobRepos.NewRepositoriesFromPool(pool)
		txManager = bobRepos.NewTransactionManagerFromPool(pool)
		recipesInTx = true
	default:
		return onErr(fmt.Errorf("unknown store %q", config.Store))
	}

	var composeOpts []repository.Option
	if config.CatalogFile != "" {
		store, err := yamlfile.NewCatalogRepository(config.CatalogFile,
			yamlfile.WithLogger(logger.Named("catalog")))
		if err != nil {
			return onErr(err)
		}
		env.CatalogFile = store
		composeOpts = append(composeOpts, repository.WithCatalog(store))
	}
	if config.NatsURL != "" {
		if addr := utils.ExtractFromNatsURL(config.NatsURL); addr != "" {
			if err := utils.WaitForTCP(ctx, addr, waitTimeout()); err != nil {
				return onErr(fmt.Errorf("nats not ready: %w", err))
			}
		}
		nc, err := nats.Connect(config.NatsURL, nats.Name("wheellab"))
		if err != nil {
			return onErr(err)
		}
		env.onClose(nc.Close)
		recipes, err := natskv.NewRecipeRepository(ctx, nc,
			natskv.WithBucket(config.NatsBucket),
			natskv.WithLogger(logger.Named("natskv")))
		if err != nil {
			return onErr(err)
		}
		composeOpts = append(composeOpts, repository.WithRecipe(recipes))
		recipesInTx = false
	}
	repos = repository.Compose(repos, composeOpts...)

	loaderOpts := []catalog.LoaderOption{catalog.WithLogger(logger.Named("catalog"))}
	if ttl, err := time.ParseDuration(config.CatalogCacheTTL); err == nil && ttl > 0 {
		loaderOpts = append(loaderOpts, catalog.WithExpiration(ttl))
	}
	workshop, err := service.NewWorkshop(
		service.WithRepositories(repos),
		service.WithTxManager(txManager),
		service.WithCatalogLoader(catalog.NewLoader(repos.Catalog(), loaderOpts...)),
		service.WithSPCalibration(config.SPOffsetLeft, config.SPOffsetRight),
		service.WithRecipesInTx(recipesInTx),
		service.WithLogger(logger.Named("workshop")),
	)
	if err != nil {
		return onErr(err)
	}
	env.Workshop = workshop

	if env.CatalogFile != nil && config.WatchCatalog {
		watchCtx, cancel := context.WithCancel(ctx)
		env.onClose(cancel)
		go func() {
			err := env.CatalogFile.Watch(watchCtx, func() {
				workshop.InvalidateCatalog(watchCtx)
			})
			if err != nil {
				logger.Warn("catalog watch stopped", log.ErrorField(err))
			}
		}()
	}
	return env, nil
}
