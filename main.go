package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"trueque-chat-service/internal/auth"
	"trueque-chat-service/internal/config"
	"trueque-chat-service/internal/db"
	"trueque-chat-service/internal/handlers"
	"trueque-chat-service/internal/middleware"
	"trueque-chat-service/internal/observability"
	"trueque-chat-service/internal/rabbitmq"
	"trueque-chat-service/internal/repositories"
	"trueque-chat-service/internal/service"
	"trueque-chat-service/internal/storage"
	"trueque-chat-service/internal/telemetry"
	"trueque-chat-service/internal/ws"
)

const serviceName = "trueque-chat-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, serviceName, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable, token cache disabled: %v", err)
			redisClient = nil
		}
	}
	tokenCache := auth.NewTokenCache(redisClient, 10*time.Minute)
	validator := auth.NewValidator(cfg.Secret, tokenCache)

	eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		log.Printf("event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, "audit_log.chats", serviceName, cfg.Environment)

	var media service.MediaResolver
	switch {
	case cfg.S3Bucket != "":
		media = storage.NewS3Resolver(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case cfg.MediaBaseURL != "":
		media = storage.NewBaseURLResolver(cfg.MediaBaseURL)
	}

	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	userRepo := repositories.NewUserRepo(database)

	hub := ws.NewHub()
	chatService := service.NewChatService(chatRepo, messageRepo, userRepo, hub, media)

	chatHandler := handlers.NewChatHandler(chatService, auditEmitter)
	chatWS := ws.NewChatWebSocketHandler(hub, chatRepo, validator)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(validator)

	router.GET("/chats", authMiddleware, chatHandler.ListChats)
	router.POST("/chats/start", authMiddleware, chatHandler.StartChat)
	router.GET("/chats/with/:user_id", authMiddleware, chatHandler.ChatWith)
	router.POST("/chats/:chat_id/send", authMiddleware, chatHandler.SendMessage)
	router.GET("/chats/:chat_id/messages", authMiddleware, chatHandler.GetMessages)
	router.POST("/chats/:chat_id/read", authMiddleware, chatHandler.MarkRead)
	router.DELETE("/chats/:chat_id", authMiddleware, chatHandler.DeleteChat)
	router.DELETE("/messages/:message_id", authMiddleware, chatHandler.DeleteMessage)

	router.GET("/ws/chats/:chat_id", chatWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	handlers.RegisterDebugRoutes(router, auditEmitter, cfg.DebugEndpoint)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
