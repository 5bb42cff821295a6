package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"venture-match-backend/internal/common/cache"
	"venture-match-backend/internal/common/config"
	"venture-match-backend/internal/common/logger"
	"venture-match-backend/internal/common/middleware"
	connectionhttp "venture-match-backend/internal/features/connection/delivery/http"
	connectionmodels "venture-match-backend/internal/features/connection/models"
	connectionrepo "venture-match-backend/internal/features/connection/repository/postgres"
	connectionservice "venture-match-backend/internal/features/connection/service"
	userhttp "venture-match-backend/internal/features/user/delivery/http"
	usermodels "venture-match-backend/internal/features/user/models"
	userrepo "venture-match-backend/internal/features/user/repository/postgres"
	userservice "venture-match-backend/internal/features/user/service"
	"venture-match-backend/internal/platform/postgres"
	"venture-match-backend/internal/platform/redis"
)

// @title           Venture Match API
// @version         1.0
// @description     API server matching entrepreneurs seeking funding with investors. All endpoints require a bearer token from the identity provider.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token issued by the identity provider

// @tag.name users
// @tag.description User profiles and write-once role assignment

// @tag.name connections
// @tag.description Connection requests between investors and entrepreneurs

func main() {
	cfg := config.Load()

	logger.Init("venture-match-backend", cfg.Debug)

	postgresClient, err := postgres.NewClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer postgresClient.Close()

	if err := postgresClient.AutoMigrate(
		&usermodels.User{},
		&usermodels.InvestorProfile{},
		&usermodels.EntrepreneurProfile{},
		&connectionmodels.ConnectionRequest{},
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate schema")
	}

	ctx := context.Background()
	redisClient, err := redis.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	cacheService := cache.NewCacheService(redisClient)

	userRepository := userrepo.NewPostgresRepository(postgresClient.GetDB())
	connectionRepository := connectionrepo.NewPostgresRepository(postgresClient.GetDB())

	userSvc := userservice.NewUserService(userRepository, cacheService, cfg.Redis.CacheTTL)
	connectionSvc := connectionservice.NewConnectionService(connectionRepository, userRepository)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg))
	{
		userhttp.NewUserHandler(userSvc).RegisterRoutes(v1)
		connectionhttp.NewConnectionHandler(connectionSvc).RegisterRoutes(v1)
	}

	registerProbes(router, postgresClient, redisClient)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func registerProbes(router *gin.Engine, postgresClient *postgres.Client, redisClient *goredis.Client) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "venture-match-backend",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := postgresClient.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "postgres unavailable",
				"details": err.Error(),
			})
			return
		}

		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "redis unavailable",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "venture-match-backend",
		})
	})
}
