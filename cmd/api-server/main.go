package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/library-portal-api/api/swagger"
	"github.com/noah-isme/library-portal-api/internal/handler"
	"github.com/noah-isme/library-portal-api/internal/middleware"
	"github.com/noah-isme/library-portal-api/internal/repository"
	"github.com/noah-isme/library-portal-api/internal/service"
	"github.com/noah-isme/library-portal-api/pkg/config"
	"github.com/noah-isme/library-portal-api/pkg/export"
	"github.com/noah-isme/library-portal-api/pkg/kv"
	"github.com/noah-isme/library-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/library-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/library-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/library-portal-api/pkg/storage"
)

// @title Library Portal API
// @version 1.0.0
// @description College library member registration and console service
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	redisClient, err := kv.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	photoStore, err := storage.NewLocalStorage(cfg.Photos.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init photo storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Photos.SignedURLSecret, cfg.Photos.SignedURLTTL)

	metricsSvc := service.NewMetricsService()

	store := repository.NewRedisStore(redisClient, metricsSvc, logr)
	studentRepo := repository.NewStudentRepository(store, logr)
	identityRepo := repository.NewIdentityRepository(store, logr)

	identitySvc := service.NewIdentityService(identityRepo, logr, service.IdentityConfig{
		TokenSecret: cfg.Identity.TokenSecret,
		TokenTTL:    cfg.Identity.TokenTTL,
		Issuer:      cfg.Identity.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, identitySvc, photoStore, signer,
		service.StudentServiceConfig{APIPrefix: cfg.APIPrefix}, logr)
	dashboardSvc := service.NewDashboardService(studentRepo, logr)

	photoLoader := service.NewStoragePhotoLoader(photoStore, signer, logr)
	exportSvc := service.NewExportService(
		studentRepo,
		export.NewXLSXExporter(),
		export.NewCSVExporter(),
		export.NewIDCardExporter(photoLoader, "", cfg.Portal.URL),
		logr,
	)

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
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	handler.RegisterRoutes(api, handler.Deps{
		Auth:       handler.NewAuthHandler(studentSvc, cfg.Librarian, metricsSvc),
		Students:   handler.NewStudentHandler(studentSvc, signer, photoStore, logr),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
		Exports:    handler.NewExportHandler(exportSvc, metricsSvc),
		Identity:   identitySvc,
		ServiceKey: cfg.Service.APIKey,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
