package main

import (
	"fmt"
	"net/http"

	"aipulse/app/handler"
	"aipulse/app/router"
	"aipulse/internal/service"
	"aipulse/pkg/archive"
	"aipulse/pkg/config"
	"aipulse/pkg/github"
	"aipulse/pkg/logger"
	"aipulse/pkg/registry"
	"aipulse/pkg/runlock"
	mysqlstore "aipulse/pkg/store/mysql"
	redisstore "aipulse/pkg/store/redis"

	"github.com/gin-gonic/gin"
)

// initConfig initializes configuration
func (app *Application) initConfig() error {
	if err := config.Init(); err != nil {
		return err
	}
	app.config = config.GlobalConfig
	return nil
}

// initLogger initializes logging
func (app *Application) initLogger() error {
	if err := logger.Init(); err != nil {
		return err
	}
	app.registerCleanup(func() {
		logger.Sync()
	})
	return nil
}

// initMySQL initializes MySQL
func (app *Application) initMySQL() error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		app.config.MySQL.User,
		app.config.MySQL.Password,
		app.config.MySQL.Host,
		app.config.MySQL.Port,
		app.config.MySQL.Database,
	)

	repo, err := mysqlstore.NewRepository(dsn)
	if err != nil {
		return err
	}
	if err := repo.Migrate(); err != nil {
		return err
	}

	app.mysqlRepo = repo
	app.registerCleanup(func() {
		repo.Close()
		logger.InfoCtx(app.ctx, "MySQL connection has been closed")
	})

	return nil
}

// initRedis initializes Redis. Redis only backs the run lock, so an
// unreachable Redis degrades to single-instance mode instead of failing
// startup.
func (app *Application) initRedis() error {
	if app.config.Redis.Addr == "" {
		logger.WarnCtx(app.ctx, "Redis not configured, run lock degrades to single-instance mode")
		return nil
	}

	client, err := redisstore.NewRedisClient(app.config)
	if err != nil {
		logger.WarnCtx(app.ctx, "Redis unavailable, run lock degrades to single-instance mode: %v", err)
		return nil
	}

	app.redisClient = client
	app.registerCleanup(func() {
		client.Close()
		logger.InfoCtx(app.ctx, "Redis connection has been closed")
	})

	return nil
}

// initArchive initializes the BigQuery archive client when configured
func (app *Application) initArchive() error {
	if app.config.BigQuery.ProjectID == "" {
		logger.InfoCtx(app.ctx, "BigQuery project not configured, archive backfill disabled")
		return nil
	}

	client, err := archive.NewClient(app.ctx, &app.config.BigQuery)
	if err != nil {
		return err
	}

	app.archiveClient = client
	app.registerCleanup(func() {
		client.Close()
		logger.InfoCtx(app.ctx, "BigQuery client has been closed")
	})

	return nil
}

// initServices initializes service layer
func (app *Application) initServices() error {
	searcher := github.NewClient(&app.config.GitHub)

	newLock := func() *runlock.RunLock {
		if app.redisClient == nil {
			return runlock.New(nil)
		}
		return runlock.New(app.redisClient.GetClient())
	}

	app.ingestService = service.NewIngestService(searcher, app.mysqlRepo, newLock(), app.config)

	// Archive backfill shares the run lock key with search ingestion so
	// the two paths never write the same tables concurrently
	if app.archiveClient != nil {
		app.archiveService = service.NewArchiveService(app.archiveClient, app.mysqlRepo, newLock())
	} else {
		app.archiveService = service.NewArchiveService(nil, app.mysqlRepo, nil)
	}

	npm := registry.NewNpmClient(&app.config.Registry)
	pypi := registry.NewPyPIClient(&app.config.Registry)
	app.packageService = service.NewPackageService(npm, pypi, app.mysqlRepo, app.config)

	app.statsService = service.NewStatsService(app.mysqlRepo)

	return nil
}

// initHandlers initializes handler layer
func (app *Application) initHandlers() error {
	app.statsHandler = handler.NewStatsHandler(app.statsService)
	app.ingestHandler = handler.NewIngestHandler(app.ingestService, app.archiveService, app.packageService)
	return nil
}

// initHTTPServer initializes HTTP server
func (app *Application) initHTTPServer() error {
	r := router.NewRouter(app.statsHandler, app.ingestHandler)

	// Set Gin mode
	gin.SetMode(app.config.Server.Mode)

	// Create Gin engine
	app.ginEngine = gin.New()
	app.ginEngine.Use(gin.Recovery())

	// Setup routes
	r.Setup(app.ginEngine)

	// Create HTTP server
	app.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.ginEngine,
	}

	return nil
}
