package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/repairdesk/repairdesk-api/api/swagger"
	"github.com/repairdesk/repairdesk-api/internal/credstore"
	"github.com/repairdesk/repairdesk-api/internal/handler"
	"github.com/repairdesk/repairdesk-api/internal/middleware"
	"github.com/repairdesk/repairdesk-api/internal/models"
	"github.com/repairdesk/repairdesk-api/internal/repository"
	"github.com/repairdesk/repairdesk-api/internal/service"
	"github.com/repairdesk/repairdesk-api/pkg/cache"
	"github.com/repairdesk/repairdesk-api/pkg/config"
	"github.com/repairdesk/repairdesk-api/pkg/database"
	"github.com/repairdesk/repairdesk-api/pkg/logger"
	corsmiddleware "github.com/repairdesk/repairdesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/repairdesk/repairdesk-api/pkg/middleware/requestid"
)

// @title RepairDesk API
// @version 1.0.0
// @description Equipment repair and training request tracking
// @BasePath /api/v1
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

	creds, err := credstore.Load(cfg.Credentials.File)
	if err != nil {
		logr.Sugar().Fatalw("failed to load credential store", "file", cfg.Credentials.File, "error", err)
	}
	logr.Sugar().Infow("credential store loaded", "entries", creds.Len())

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Blog.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, blog cache disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	requestRepo := repository.NewRequestRepository(db)
	trainingRepo := repository.NewTrainingRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	blogRepo := repository.NewBlogRepository(db)

	authSvc := service.NewAuthService(creds, nil, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	requestSvc := service.NewRequestService(requestRepo, trainingRepo, feedbackRepo, nil, logr)
	blogSvc := service.NewBlogService(blogRepo, cacheRepo, cfg.Blog.CacheTTL, nil, logr)
	metricsSvc := service.NewMetricsService()

	authHandler := handler.NewAuthHandler(authSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	blogHandler := handler.NewBlogHandler(blogSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	var exportHandler *handler.ExportHandler
	if cfg.Export.Enabled {
		exportHandler = handler.NewExportHandler(service.NewExportService(requestSvc, logr))
	} else {
		exportHandler = handler.NewExportHandler(nil)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.POST("/requests", middleware.RequireRoles(models.RoleUser), requestHandler.Submit)
	authed.GET("/requests", middleware.RequireRoles(models.RoleUser), requestHandler.ListOwn)
	authed.GET("/requests/:id", requestHandler.Get)
	authed.POST("/requests/:id/feedback", middleware.RequireRoles(models.RoleUser), requestHandler.SubmitFeedback)
	authed.GET("/requests/:id/feedback", requestHandler.ListFeedback)

	authed.POST("/training-requests", middleware.RequireRoles(models.RoleUser), requestHandler.SubmitTraining)
	authed.GET("/training-requests", middleware.RequireRoles(models.RoleUser), requestHandler.ListOwnTraining)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/requests", requestHandler.ListAll)
	admin.POST("/requests/:id/complete", requestHandler.MarkCompleted)
	admin.GET("/training-requests", requestHandler.ListAllTraining)
	admin.GET("/requests/export", exportHandler.Export)

	authed.POST("/blog", blogHandler.Post)
	authed.GET("/blog", blogHandler.List)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
