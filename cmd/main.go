package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Tapedynamics/Twittich/internal/auth"
	"github.com/Tapedynamics/Twittich/internal/cache"
	"github.com/Tapedynamics/Twittich/internal/config"
	"github.com/Tapedynamics/Twittich/internal/domain"
	"github.com/Tapedynamics/Twittich/internal/handler"
	"github.com/Tapedynamics/Twittich/internal/hub"
	"github.com/Tapedynamics/Twittich/internal/kafka"
	"github.com/Tapedynamics/Twittich/internal/repository"
	"github.com/Tapedynamics/Twittich/internal/service"
	"github.com/Tapedynamics/Twittich/pkg/database"
	"github.com/Tapedynamics/Twittich/pkg/jwt"
	pkglog "github.com/Tapedynamics/Twittich/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	pkglog.Init(pkglog.Config{Level: cfg.Log.Level, ServiceName: "live-gateway"})
	logger := pkglog.L()

	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting live-gateway")

	// Initialize database
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db, &domain.UserModel{}, &domain.LiveSessionModel{}, &domain.ChatMessageModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("connected to database")

	// Initialize repositories
	liveRepo := repository.NewGormLiveRepository(db)
	userRepo := repository.NewGormUserRepository(db)

	// Initialize session cache
	sessionCache, err := cache.NewRedisSessionCache(cfg.Redis, cfg.Cache.Prefix)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer sessionCache.Close()
	logger.Info().Str("address", cfg.Redis.Address).Msg("connected to redis")

	// Initialize Kafka producer for stream lifecycle events
	var producer kafka.StreamEventProducer
	producer, err = kafka.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to create kafka producer, stream events disabled")
		producer = nil // Gateway works without Kafka
	} else {
		defer producer.Close()
		logger.Info().Str("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("connected to kafka")
	}

	// Initialize authentication
	jwtManager := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	authenticator := auth.NewAuthenticator(jwtManager, userRepo)

	// Initialize hub
	wsHub := hub.NewHub(cfg.WebSocket)
	go wsHub.Run()

	// Initialize services
	liveSvc := service.NewLiveService(wsHub, liveRepo, producer, cfg.Chat)
	sessionSvc := service.NewSessionService(liveRepo, sessionCache, cfg.Cache.TTL, wsHub)

	// Initialize handlers
	wsHandler := handler.NewWSHandler(wsHub, liveSvc, authenticator)
	httpHandler := handler.NewHTTPHandler(sessionSvc, authenticator)

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(pkglog.GinMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/ws", func(c *gin.Context) {
		wsHandler.HandleWebSocket(c.Writer, c.Request)
	})
	httpHandler.RegisterRoutes(router.Group("/api/v1"))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("live-gateway listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down live-gateway")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("live-gateway stopped")
}
