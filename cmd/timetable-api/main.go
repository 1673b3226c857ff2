package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-engine/api/swagger"
	"github.com/noah-isme/sma-timetable-engine/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-timetable-engine/internal/middleware"
	"github.com/noah-isme/sma-timetable-engine/internal/models"
	"github.com/noah-isme/sma-timetable-engine/internal/repository"
	"github.com/noah-isme/sma-timetable-engine/internal/service"
	"github.com/noah-isme/sma-timetable-engine/pkg/cache"
	"github.com/noah-isme/sma-timetable-engine/pkg/config"
	"github.com/noah-isme/sma-timetable-engine/pkg/database"
	"github.com/noah-isme/sma-timetable-engine/pkg/jobs"
	"github.com/noah-isme/sma-timetable-engine/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-engine/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-engine/pkg/middleware/requestid"
	"github.com/noah-isme/sma-timetable-engine/pkg/sharelink"
)

// @title Timetable Engine API
// @version 1.0.0
// @description Timetable generation, conflict detection and session index maintenance
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

type handlers struct {
	timetables *handler.TimetableHandler
	exports    *handler.ExportHandler
	catalog    *handler.CatalogHandler
	metrics    *handler.MetricsHandler
}

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

	db, err := database.NewPostgres(context.Background(), cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	readiness := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
		"schema": func(ctx context.Context) error {
			return database.CheckSchema(ctx, db, database.RequiredTables)
		},
	}

	var cacheRepo service.CacheRepository
	if cfg.Catalog.CacheEnabled {
		client, err := cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(client, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
			readiness["redis"] = repo.Ping
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logr, cacheRepo != nil)

	validate := validator.New()
	timetableRepo := repository.NewTimetableRepository(db)
	catalogSvc := service.NewCatalogService(repository.NewFacultyRepository(db), repository.NewCourseRepository(db), cacheSvc)
	indexSvc := service.NewSessionIndexService(repository.NewSessionIndexRepository(db), logr, cfg.IndexRepair.WriteConcurrency)

	timetableSvc := service.NewTimetableService(timetableRepo, catalogSvc, indexSvc, db, metrics, validate, logr, service.TimetableServiceConfig{
		ProposalTTL:     cfg.Timetable.ProposalTTL,
		UseSessionIndex: cfg.Timetable.UseSessionIndex,
		DefaultDay: models.TimeSlotConfig{
			StartTime:              cfg.DayShape.StartTime,
			EndTime:                cfg.DayShape.EndTime,
			SessionDurationMinutes: cfg.DayShape.SessionMinutes,
			ShortBreakMinutes:      cfg.DayShape.ShortBreakMinutes,
			LunchBreakStart:        cfg.DayShape.LunchStart,
			LunchBreakMinutes:      cfg.DayShape.LunchMinutes,
		},
	})

	repairQueue := jobs.NewQueue("session-index-repair", timetableSvc.HandleIndexRepair, jobs.QueueConfig{
		Workers:    cfg.IndexRepair.Workers,
		MaxRetries: cfg.IndexRepair.Retries,
		RetryDelay: cfg.IndexRepair.RetryDelay,
		Logger:     logr,
		OnExhausted: func(job jobs.Job, err error) {
			metrics.RecordIndexRepair("exhausted")
			logr.Error("session index repair abandoned, run reindex manually",
				zap.String("job_id", job.ID), zap.Any("payload", job.Payload), zap.Error(err))
		},
	})
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	repairQueue.Start(rootCtx)
	timetableSvc.SetRepairQueue(repairQueue)

	var signer *sharelink.Signer
	if cfg.Export.LinkSecret != "" {
		signer = sharelink.NewSigner(cfg.Export.LinkSecret, cfg.Export.LinkTTL)
	}
	exportSvc := service.NewExportService(timetableSvc, signer, logr, service.ExportConfig{APIPrefix: cfg.APIPrefix})

	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	registerRoutes(r, cfg, logr, authSvc, handlers{
		timetables: handler.NewTimetableHandler(timetableSvc),
		exports:    handler.NewExportHandler(exportSvc, timetableSvc),
		catalog:    handler.NewCatalogHandler(catalogSvc),
		metrics:    handler.NewMetricsHandler(metrics, readiness),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
	repairQueue.Stop()
}

func registerRoutes(r *gin.Engine, cfg *config.Config, logr *zap.Logger, auth *service.AuthService, h handlers) {
	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/exports/:token", h.exports.Download)

	if !cfg.Timetable.Enabled {
		logr.Warn("timetable endpoints disabled")
		return
	}

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(auth))

	readers := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	writers := internalmiddleware.RequireRoles(models.RoleAdmin)
	audit := func(action string) gin.HandlerFunc { return internalmiddleware.Audit(logr, action) }

	timetables := secured.Group("/timetables")
	timetables.POST("/generate", writers, h.timetables.Generate)
	timetables.POST("", writers, audit("timetable.accept"), h.timetables.Accept)
	timetables.POST("/proposals/:id/accept", writers, audit("timetable.accept_proposal"), h.timetables.AcceptProposal)
	timetables.GET("", readers, h.timetables.List)
	timetables.GET("/:id", readers, h.timetables.Get)
	timetables.PUT("/:id/entries", writers, audit("timetable.update"), h.timetables.UpdateEntries)
	timetables.DELETE("/:id", writers, audit("timetable.discard"), h.timetables.Delete)
	timetables.POST("/:id/reindex", writers, audit("timetable.reindex"), h.timetables.Reindex)
	timetables.GET("/:id/index", readers, h.timetables.IndexStatus)
	timetables.GET("/:id/export", readers, h.exports.Export)
	timetables.POST("/:id/export-links", readers, h.exports.CreateLink)

	secured.GET("/session-index/conflicts", readers, h.timetables.Conflicts)
	secured.DELETE("/catalog/:instituteId/cache", writers, audit("catalog.invalidate"), h.catalog.Invalidate)
	secured.GET("/metrics/summary", writers, h.metrics.Summary)
}
