package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"

	"threadboard/internal/cache"
	"threadboard/internal/clock"
	"threadboard/internal/config"
	"threadboard/internal/database"
	"threadboard/internal/handler"
	"threadboard/internal/redis"
	"threadboard/internal/repository"
	"threadboard/internal/service"
)

// Run wires the whole application and starts the HTTP server.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Redis is optional: without it the unread badge count always hits the
	// database.
	var unreadCache cache.UnreadCounts
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		if err := redisClient.Ping(context.Background()); err != nil {
			return fmt.Errorf("failed to reach redis: %w", err)
		}
		defer redisClient.Close()
		unreadCache = cache.NewUnreadCounts(redisClient.Client)
	} else {
		log.Println("REDIS_URL not set, running without unread-count cache")
	}

	// Repositories
	commentRepo := repository.NewCommentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Services
	notifService := service.NewNotificationService(notifRepo, unreadCache)
	commentService := service.NewCommentService(commentRepo, userRepo, notifService, clock.System())
	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(refreshTokenRepo, cfg)

	// Handlers
	router := NewRouter(RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userService, authService),
		CommentHandler:      handler.NewCommentHandler(commentService),
		NotificationHandler: handler.NewNotificationHandler(notifService),
		JWTSecret:           cfg.JWTSecret,
	})

	addr := ":" + cfg.ServerPort
	log.Printf("Starting server on %s", addr)
	return stdhttp.ListenAndServe(addr, router)
}
