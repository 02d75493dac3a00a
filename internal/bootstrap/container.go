package bootstrap

import (
	"context"
	"log"

	"knowledge-copilot-be/internal/config"
	"knowledge-copilot-be/internal/controller"
	"knowledge-copilot-be/internal/pkg/logger"
	"knowledge-copilot-be/internal/pkg/mailer"
	"knowledge-copilot-be/internal/repository/unitofwork"
	"knowledge-copilot-be/internal/service"
	"knowledge-copilot-be/internal/websocket"
	"knowledge-copilot-be/pkg/copilot/answer"
	"knowledge-copilot-be/pkg/copilot/guardrail"
	"knowledge-copilot-be/pkg/copilot/retrieval"
	"knowledge-copilot-be/pkg/embedding"
	"knowledge-copilot-be/pkg/llm/factory"

	pktNats "knowledge-copilot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	CopilotController  controller.ICopilotController
	DocumentController controller.IDocumentController
	AuditController    controller.IAuditController

	// Background Services (Exposed for main.go to run)
	AuditConsumerService service.IAuditConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.SMTP.OpsEmail,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil // Degrade to no cache, no cross-instance feed
	}

	// 3. AI Providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}
	// Shared query-embedding cache. Deterministic per model, safe to share.
	embeddingProvider = embedding.NewCachedProvider(embeddingProvider, rdb, cfg.Ai.EmbeddingCacheTTL)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL(cfg),
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// WebSocket Hub (audit live feed)
	wsLogger := logger.NewIsolatedLogger("logs/audit_feed.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Pipeline Stages
	retriever := retrieval.NewRetriever(
		embeddingProvider,
		uowFactory.NewUnitOfWork(context.Background()).ChunkEmbeddingRepository(),
		cfg.Ai.CorpusEmbeddingModel,
		cfg.Ai.EmbeddingTimeout,
		cfg.Ai.EmbeddingMaxRetries,
		cfg.Retrieval.MaxExpansions,
	)
	generator := answer.NewGenerator(llmProvider, cfg.Ai.LLMTimeout, cfg.Ai.LLMMaxRetries)
	thresholds := guardrail.Thresholds{
		ScoreFloor:   cfg.Guardrail.ScoreFloor,
		HighScore:    cfg.Guardrail.HighScore,
		MediumScore:  cfg.Guardrail.MediumScore,
		IsolationGap: cfg.Guardrail.IsolationGap,
	}

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Audit.Topic, pubSub)
	auditConsumerService := service.NewAuditConsumerService(
		pubSub,
		cfg.Audit.Topic,
		uowFactory,
		natsPub,
		emailService,
		cfg.Audit.WriteRetries,
		sysLogger,
	)

	copilotService := service.NewCopilotService(
		retriever,
		generator,
		publisherService,
		thresholds,
		cfg.Retrieval.TopKDefault,
		cfg.Ai.CorpusEmbeddingModel,
		sysLogger,
	)
	documentService := service.NewDocumentService(uowFactory)
	auditService := service.NewAuditService(uowFactory, cfg.Audit.ReadRoles)

	// Live feed bridge (Worker)
	if natsSub != nil {
		auditFeedService := service.NewAuditFeedService(natsSub, wsHub, wsLogger)
		go auditFeedService.Start()
	}

	// 6. Controllers
	return &Container{
		CopilotController:  controller.NewCopilotController(copilotService),
		DocumentController: controller.NewDocumentController(documentService),
		AuditController:    controller.NewAuditController(auditService, wsHub),

		AuditConsumerService: auditConsumerService,

		WebSocketHub: wsHub,
	}
}

// llmBaseURL picks the base URL for the configured LLM provider; ollama
// reuses its own endpoint unless an explicit override is set.
func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMBaseURL != "" {
		return cfg.Ai.LLMBaseURL
	}
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return ""
}
