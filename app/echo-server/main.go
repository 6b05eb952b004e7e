package main

import (
	"context"
	"fmt"
	"log"
	"myBetPartners/app/echo-server/router"
	"myBetPartners/business/affiliate"
	"myBetPartners/business/postback"
	"myBetPartners/business/registry"
	"myBetPartners/business/reports"
	"myBetPartners/internal/middleware"
	"myBetPartners/internal/repository/forwarder"
	psqlRepo "myBetPartners/internal/repository/postgres"
	redisRepo "myBetPartners/internal/repository/redis"
	"myBetPartners/internal/rest"
	"myBetPartners/pkg/config"
	"myBetPartners/pkg/database"
	redisdb "myBetPartners/pkg/database/redis"
	"myBetPartners/pkg/logger"
	"myBetPartners/pkg/metrics"
	"myBetPartners/pkg/utils"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting BetPartners", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Redis is optional; without it registry lookups hit postgres directly
	var houseCache registry.HouseCache
	if cfg.Redis.Enabled {
		redisClient, err := redisdb.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		defer func() {
			if err := redisdb.CloseRedisClient(redisClient); err != nil {
				logger.Error("Failed to close redis client", err)
			}
		}()

		houseCache = redisRepo.NewHouseCache(redisClient)
		logger.Info("Redis house cache enabled")
	}

	// Init validate
	validate := validator.New()

	// Init repo
	houseRepo := psqlRepo.NewHouseRepository(db)
	affiliateRepo := psqlRepo.NewAffiliateRepository(db)
	ledgerRepo := psqlRepo.NewLedgerRepository(db)
	auditRepo := psqlRepo.NewAuditRepository(db)
	forwarderRepo := forwarder.NewForwarderRepository(forwarder.ForwarderConfig{
		Timeout: cfg.Postback.ForwardTimeout,
	})

	// Init service
	registryService := registry.NewRegistryService(houseRepo, houseCache, validate)
	affiliateService := affiliate.NewAffiliateService(affiliateRepo, validate)
	postbackService := postback.NewPostbackService(
		registryService,
		affiliateService,
		ledgerRepo,
		auditRepo,
		forwarderRepo,
		postback.Options{
			DedupWindow:    cfg.Postback.DedupWindow,
			ForwardTimeout: cfg.Postback.ForwardTimeout,
		},
	)
	reportsService := reports.NewReportsService(ledgerRepo, auditRepo)

	// Init handler
	postbackHandler := rest.NewPostbackHandler(postbackService)
	housesHandler := rest.NewHousesHandler(registryService)
	affiliatesHandler := rest.NewAffiliatesHandler(affiliateService)
	reportsHandler := rest.NewReportsHandler(reportsService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth middleware
	authRequired := middleware.AuthMiddleware()
	adminOnly := middleware.AdminOnly()

	// Setup routes
	router.SetPostbackRoutes(e, postbackHandler)

	api := e.Group("/api/v1")
	router.SetupAffiliateRoutes(api, affiliatesHandler, authRequired)
	router.SetupHouseRoutes(api, housesHandler, authRequired, adminOnly)
	router.SetupReportRoutes(api, reportsHandler, authRequired, adminOnly)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
