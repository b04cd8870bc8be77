package bootstrap

import (
	"context"
	"log"
	"time"

	"hybrid-rag-be/internal/config"
	"hybrid-rag-be/internal/controller"
	"hybrid-rag-be/internal/handler"
	"hybrid-rag-be/internal/pkg/logger"
	"hybrid-rag-be/internal/repository/memory"
	"hybrid-rag-be/internal/service"
	"hybrid-rag-be/internal/websocket"
	"hybrid-rag-be/pkg/engine"
	"hybrid-rag-be/pkg/pipeline"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	PipelineController controller.IPipelineController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	ChatEventHandler *handler.ChatEventHandler
	WebSocketHub     *websocket.Hub

	// Exposed for the warmup goroutine in main.go
	HandleCache *pipeline.HandleCache
}

// NewContainer wires the whole application graph. The engine and its trace
// logger are injected so tests can swap in fakes without touching wiring.
func NewContainer(cfg *config.Config, eng engine.Engine, engineLogger *log.Logger) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// Redis is optional; without it events stay process-local.
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Storage & Pipeline
	conversationRepo := memory.NewConversationRepository(time.Duration(cfg.App.SessionTTLMinutes) * time.Minute)
	handleCache := pipeline.NewHandleCache(eng, sysLogger)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Keys.ChatEventsTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.ChatEventsTopic,
		wsHub,
	)

	chatService := service.NewChatService(
		conversationRepo,
		handleCache,
		eng, // Injected
		publisherService,
		sysLogger,
		engineLogger,
	)
	pipelineService := service.NewPipelineService(handleCache, cfg, publisherService, sysLogger)

	// Handler
	chatEventHandler := handler.NewChatEventHandler(wsHub, wsLogger)

	// 5. Controllers
	// Note: We return the container with public fields for the server to register
	return &Container{
		ChatEventHandler:   chatEventHandler,
		WebSocketHub:       wsHub,
		ChatController:     controller.NewChatController(chatService),
		PipelineController: controller.NewPipelineController(pipelineService),

		ConsumerService: consumerService,
		HandleCache:     handleCache,
	}
}
