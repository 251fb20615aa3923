package api

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chatmind/chat-api/internal/api/handler"
	"github.com/chatmind/chat-api/internal/api/middleware"
	"github.com/chatmind/chat-api/internal/core/service"
	mongodb "github.com/chatmind/chat-api/internal/infrastructure/db/mongo"
	redisdb "github.com/chatmind/chat-api/internal/infrastructure/db/redis"
	"github.com/chatmind/chat-api/internal/realtime"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The registry and dispatcher are injected so tests (and any second
// listener) can run against their own instances.
func NewRouter(
	db *mongo.Database,
	rdb *goredis.Client,
	registry *realtime.Registry,
	dispatcher *realtime.Dispatcher,
	jwtSecret string,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	roomRepo := mongodb.NewChatroomRepository(db)
	msgRepo := mongodb.NewMessageRepository(db)
	presence := redisdb.NewPresenceTracker(rdb)

	authService := service.NewAuthService(userRepo, jwtSecret, 24*time.Hour)
	userService := service.NewUserService(userRepo)
	chatService := service.NewChatService(roomRepo, msgRepo, dispatcher, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, presence)
	chatHandler := handler.NewChatHandler(chatService)
	wsHandler := handler.NewWSHandler(registry, presence, log)
	authMiddleware := middleware.Auth(jwtSecret)

	// --- Auth routes ---
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)

	// --- User routes ---
	e.GET("/users/search", userHandler.Search)
	e.GET("/users/:id", userHandler.Get)
	e.PATCH("/users/:id", userHandler.Update, authMiddleware)

	// --- Chat routes ---
	e.POST("/chats/direct", chatHandler.CreateDirect)
	e.POST("/chats/group", chatHandler.CreateGroup)
	e.GET("/chats/:user_id", chatHandler.ListRooms)
	e.POST("/messages", chatHandler.SendMessage)
	e.GET("/messages/:room_id", chatHandler.ListMessages)

	// --- Live connections ---
	e.GET("/ws/rooms/:id", wsHandler.Serve)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
