package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	_ "github.com/taqyim-dev/taqyim-api/api/swagger"
	"github.com/taqyim-dev/taqyim-api/pkg/cache"

	"github.com/taqyim-dev/taqyim-api/internal/docstore"
	"github.com/taqyim-dev/taqyim-api/internal/evaluation"
	"github.com/taqyim-dev/taqyim-api/internal/identity"
	"github.com/taqyim-dev/taqyim-api/internal/router"
	"github.com/taqyim-dev/taqyim-api/internal/service"
	"github.com/taqyim-dev/taqyim-api/internal/store"
	"github.com/taqyim-dev/taqyim-api/pkg/config"
	"github.com/taqyim-dev/taqyim-api/pkg/database"
	"github.com/taqyim-dev/taqyim-api/pkg/genai"
	"github.com/taqyim-dev/taqyim-api/pkg/logger"
	"github.com/taqyim-dev/taqyim-api/pkg/storage"
)

// @title Taqyim API
// @version 1.0.0
// @description Role-based school evaluation service
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	validate := validator.New()

	identityService := identity.NewService(identity.NewRepository(db), validate, logr, identity.Config{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})

	metricsService := service.NewMetricsService()

	docs := docstore.NewSQLStore(db)
	flag := store.NewRedisFlag(redisClient, cfg.Seed.FlagKey)
	domainStore := store.New(docs, flag, identityService, store.DefaultSeedCatalog(cfg.Seed.Enabled, cfg.Seed.DefaultPassword), logr)
	domainStore.SetRefreshObserver(metricsService.ObserveSnapshotRefresh)

	ctx := context.Background()
	if err := domainStore.Initialize(ctx); err != nil {
		logr.Sugar().Fatalw("failed to initialize domain store", "error", err)
	}

	generator := service.InstrumentedGenerator{
		Next:    genai.NewClient(cfg.GenAI),
		Metrics: metricsService,
	}
	workflow := evaluation.NewManager(domainStore, generator, logr)

	var exportService *service.ExportService
	if cfg.Exports.Enabled {
		files, err := storage.NewFileStore(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
		}
		signer := storage.NewSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportService = service.NewExportService(domainStore, files, signer, service.ExportConfig{
			APIPrefix:  cfg.APIPrefix,
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
		}, logr)
		exportService.Start(ctx)
		defer exportService.Stop()
	}

	r := router.New(router.Deps{
		Config:   cfg,
		Logger:   logr,
		Store:    domainStore,
		Identity: identityService,
		Workflow: workflow,
		Metrics:  metricsService,
		Exports:  exportService,
		Validate: validate,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
