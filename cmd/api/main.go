package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"neighborly/internal/config"
	"neighborly/internal/database"
	"neighborly/internal/middleware"
	"neighborly/internal/modules/exchange"
	"neighborly/internal/modules/listing"
	"neighborly/internal/modules/moderation"
	"neighborly/internal/modules/monitor"
	"neighborly/internal/modules/notification"
	jwtsvc "neighborly/internal/pkg/jwt"
	"neighborly/internal/pkg/logger"
	"neighborly/internal/repository"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Server.Env); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zlog := logger.Get()

	if cfg.Auth.JWTSecret == "" {
		zlog.Fatal("JWT_SECRET is empty")
	}

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	listingRepo := repository.NewListingRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	flagRepo := repository.NewFlagRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	userRepo := repository.NewUserRepository(db)

	tokens := jwtsvc.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	listingService := listing.NewService(listingRepo)
	listingHandler := listing.NewHandler(listingService)

	exchangeService := exchange.NewService(transactionRepo, listingRepo, notificationService, userRepo, tenantRepo)
	exchangeHandler := exchange.NewHandler(exchangeService)

	moderationService := moderation.NewService(flagRepo, listingRepo, notificationService, tenantRepo)
	moderationHandler := moderation.NewHandler(moderationService)

	monitorService := monitor.NewService(transactionRepo, listingRepo, notificationService, tenantRepo)
	monitorHandler := monitor.NewHandler(monitorService, cfg.Monitor.Deadline)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestLogger(), middleware.CORS())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		authed := v1.Group("/")
		authed.Use(middleware.JWTAuth(tokens))
		{
			listingHandler.RegisterRoutes(authed)
			exchangeHandler.RegisterRoutes(authed)
			notificationHandler.RegisterRoutes(authed)
			moderationHandler.RegisterRoutes(authed)

			moderators := authed.Group("/moderation")
			moderators.Use(middleware.ModeratorOnly())
			{
				moderationHandler.RegisterModeratorRoutes(moderators)
			}

			admins := authed.Group("/admin")
			admins.Use(middleware.AdminOnly())
			{
				listingHandler.RegisterAdminRoutes(admins)
			}
		}
	}

	internal := r.Group("/internal/cron")
	internal.Use(middleware.CronTokenAuth(cfg.Monitor.CronSecret))
	{
		monitorHandler.RegisterRoutes(internal)
	}

	zlog.Info("starting server", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
