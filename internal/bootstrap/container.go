package bootstrap

import (
	"context"
	"log"

	"ai-reportgen-be/internal/config"
	"ai-reportgen-be/internal/controller"
	"ai-reportgen-be/internal/handler"
	"ai-reportgen-be/internal/pkg/logger"
	"ai-reportgen-be/internal/repository/memory"
	"ai-reportgen-be/internal/repository/unitofwork"
	"ai-reportgen-be/internal/service"
	"ai-reportgen-be/internal/websocket"
	"ai-reportgen-be/pkg/embedding"
	"ai-reportgen-be/pkg/knowledge"
	"ai-reportgen-be/pkg/llm/factory"
	"ai-reportgen-be/pkg/session"
	"ai-reportgen-be/pkg/websearch"
	"ai-reportgen-be/pkg/workflow"

	pktNats "ai-reportgen-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController     controller.IDocumentController
	ReportController       controller.IReportController
	ConversationController controller.IConversationController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	RunStreamHandler *handler.RunStreamHandler
	WebSocketHub     *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
			cfg.Ai.EmbedTimeout,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewFallbackProvider()
		log.Printf("[INFO] Using Embedding Provider: deterministic fallback")
	}
	fallbackProvider := embedding.NewFallbackProvider()

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.DeepSeek,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	searchProvider := websearch.NewSerpApiProvider(cfg.Keys.SerpApi)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	redisUp := true
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		redisUp = false
	}

	// Confirmation state survives process restarts only with Redis; the
	// memory store is the single-instance fallback.
	var sessionStore session.Store
	if redisUp {
		sessionStore = session.NewRedisStore(rdb)
	} else {
		sessionStore = session.NewMemoryStore()
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/runstream.log")
	var hubRedis *redis.Client
	if redisUp {
		hubRedis = rdb
	}
	wsHub := websocket.NewHub(hubRedis, wsLogger)
	go wsHub.Run()

	// 5. Workflow Engine
	knowledgeStore := knowledge.NewStore(uowFactory, embeddingProvider, sysLogger)
	evaluator := knowledge.NewEvaluator(cfg.Workflow.MinSimilarity, cfg.Workflow.MinCoverage)
	gate := workflow.NewGate(sessionStore, cfg.Workflow.GatePollEvery, sysLogger)
	engine := workflow.NewEngine(
		knowledgeStore,
		evaluator,
		llmProvider,
		searchProvider,
		gate,
		sysLogger,
		workflow.Config{
			TopK:           cfg.Workflow.TopK,
			MinSimilarity:  cfg.Workflow.MinSimilarity,
			MaxDirectChars: cfg.Workflow.MaxDirectChars,
		},
	)

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Keys.EmbedTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedTopic,
		uowFactory,
		embeddingProvider,
		fallbackProvider,
	)

	runRepo := memory.NewRunRepository()
	documentService := service.NewDocumentService(
		uowFactory,
		publisherService,
		knowledgeStore,
		natsPub,
		cfg.Workflow.TopK,
		cfg.Workflow.MinSimilarity,
	)
	reportService := service.NewReportService(
		uowFactory,
		engine,
		runRepo,
		sessionStore,
		wsHub,
		natsPub,
		sysLogger,
	)
	conversationService := service.NewConversationService(uowFactory)

	// Relay run lifecycle events from the bus to websocket clients
	if natsSub != nil {
		runEventService := service.NewRunEventService(natsSub, wsHub, wsLogger)
		go runEventService.Start()
	}

	runStreamHandler := handler.NewRunStreamHandler(wsHub, wsLogger)

	// 7. Controllers
	return &Container{
		DocumentController:     controller.NewDocumentController(documentService),
		ReportController:       controller.NewReportController(reportService),
		ConversationController: controller.NewConversationController(conversationService),

		ConsumerService: consumerService,

		RunStreamHandler: runStreamHandler,
		WebSocketHub:     wsHub,
	}
}
