package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"ai-recommendation-be/internal/config"
	"ai-recommendation-be/internal/controller"
	"ai-recommendation-be/internal/pkg/logger"
	"ai-recommendation-be/internal/repository/contract"
	"ai-recommendation-be/internal/repository/distributed"
	"ai-recommendation-be/internal/repository/implementation"
	"ai-recommendation-be/internal/repository/memory"
	"ai-recommendation-be/internal/repository/unitofwork"
	"ai-recommendation-be/internal/service"
	"ai-recommendation-be/pkg/catalog/woocommerce"
	"ai-recommendation-be/pkg/events"
	"ai-recommendation-be/pkg/rag/fusion"
	"ai-recommendation-be/pkg/rag/ranking"
	"ai-recommendation-be/pkg/rag/response"
	"ai-recommendation-be/pkg/rag/search"
	"ai-recommendation-be/pkg/rag/session"

	pktNats "ai-recommendation-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const catalogEventsDurable = "catalog-embedder"

type Container struct {
	// Controllers
	RecommendationController controller.IRecommendationController
	CatalogController        controller.ICatalogController
	HealthController         controller.IHealthController

	// Background work main.go starts and drains
	ConsumerService       service.IConsumerService
	RecommendationService service.IRecommendationService
	InteractionService    service.IInteractionService
	CatalogService        service.ICatalogService

	Logger logger.ILogger

	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
	pubSub  *gochannel.GoChannel
	rdb     *redis.Client
	audit   logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	auditLogger := logger.NewIsolatedLogger("logs/interactions.log")
	rec := cfg.Recommendation

	// 2. Job queue for catalog embedding
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	embeddingProvider, err := NewEmbeddingProvider(context.Background(), cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	responder, err := NewResponder(cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}
	var natsSub *pktNats.Subscriber
	if cfg.Catalog.SubscribeEvents {
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
			natsSub = nil
		}
	}

	rdb, redisOK := connectRedis(cfg.App.RedisURL)

	// 5. Session context store and lock
	sessionStore, locker, prefVectors := newSessionBackend(db, rdb, redisOK, rec)
	log.Printf("[INFO] Using session backend: %s", rec.SessionBackend)

	// 6. Pipeline
	retriever := search.NewRetriever(
		embeddingProvider,
		implementation.NewCatalogItemRepository(db),
		sysLogger,
		search.Config{
			EmbeddingTimeout:    rec.EmbeddingTimeout,
			VectorSearchTimeout: rec.VectorSearchTimeout,
			Overfetch:           2,
		},
	)
	ranker := ranking.NewRanker(ranking.Options{
		Weights:   ranking.DefaultWeights(),
		Normalize: rec.NormalizeScores,
	})
	policy := fusion.NewPolicy(fusion.Limits{
		MaxHistory:    rec.MaxHistory,
		MaxViewed:     rec.MaxViewedItems,
		MaxCategories: rec.MaxCategories,
	})
	generator := response.NewGenerator(responder, rec.ResponseTimeout, sysLogger)

	// 7. Services
	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}
	interactionService := service.NewInteractionService(uowFactory, eventPublisher, auditLogger, sysLogger, rec.SessionStoreTimeout)

	recommendationService := service.NewRecommendationService(
		uowFactory,
		retriever,
		ranker,
		policy,
		session.NewManager(sessionStore),
		locker,
		generator,
		interactionService,
		prefVectors,
		sysLogger,
		service.RecommendationOptions{
			DefaultLimit:            rec.DefaultLimit,
			MaxLimit:                rec.MaxLimit,
			ProductLimit:            5,
			TrendingLimit:           rec.DefaultLimit,
			TrendingMinRating:       rec.TrendingMinRating,
			LockWait:                rec.LockWait,
			SessionStoreTimeout:     rec.SessionStoreTimeout,
			PreferenceHistoryWindow: rec.PreferenceHistoryWindow,
		},
	)

	var feed service.CatalogFeed
	if cfg.Catalog.FeedURL != "" {
		feed = woocommerce.NewClient(cfg.Catalog.FeedURL, cfg.Catalog.ConsumerKey, cfg.Catalog.ConsumerSecret, cfg.Catalog.PageSize)
	}

	publisherService := service.NewPublisherService(cfg.Keys.EmbedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedTopic,
		uowFactory,
		embeddingProvider,
		sysLogger,
		rec.EmbeddingTimeout,
	)
	catalogService := service.NewCatalogService(
		uowFactory,
		embeddingProvider,
		publisherService,
		feed,
		sysLogger,
		rec.EmbeddingTimeout,
	)

	// 8. Controllers
	return &Container{
		RecommendationController: controller.NewRecommendationController(recommendationService),
		CatalogController:        controller.NewCatalogController(catalogService),
		HealthController:         controller.NewHealthController(cfg.App.ServiceName),

		ConsumerService:       consumerService,
		RecommendationService: recommendationService,
		InteractionService:    interactionService,
		CatalogService:        catalogService,

		Logger: sysLogger,

		natsPub: natsPub,
		natsSub: natsSub,
		pubSub:  pubSub,
		rdb:     rdb,
		audit:   auditLogger,
	}
}

// SubscribeCatalogEvents routes catalog change events from NATS into the
// embedding queue. It is a no-op without a subscriber.
func (c *Container) SubscribeCatalogEvents(ctx context.Context) error {
	if c.natsSub == nil {
		return nil
	}
	for _, eventType := range []string{events.TypeCatalogItemChanged, events.TypeCatalogItemDeleted} {
		durable := fmt.Sprintf("%s-%s", catalogEventsDurable, eventType[len("catalog."):])
		if err := c.natsSub.Subscribe(ctx, eventType, durable, c.CatalogService.HandleEvent); err != nil {
			return err
		}
	}
	return nil
}

// Close drains background work and releases connections. Call it after the
// HTTP server has stopped accepting requests.
func (c *Container) Close() {
	c.RecommendationService.Wait()
	c.InteractionService.Wait()

	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close job queue: %v", err)
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	_ = c.audit.Sync()
	_ = c.Logger.Sync()
}

func connectRedis(url string) (*redis.Client, bool) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		return rdb, false
	}
	return rdb, true
}

// newSessionBackend returns the context store, the per-session lock and,
// for the postgres backend, the preference vector writer.
func newSessionBackend(
	db *gorm.DB,
	rdb *redis.Client,
	redisOK bool,
	rec config.RecommendationConfig,
) (contract.SessionContextRepository, session.Locker, contract.PreferenceVectorRepository) {
	if rec.SessionBackend == "memory" {
		return memory.NewSessionContextRepository(rec.SessionTTL), session.NewKeyedMutex(), nil
	}

	var locker session.Locker = session.NewKeyedMutex()
	if redisOK {
		locker = distributed.NewSessionLocker(rdb, rec.LockTTL)
	} else {
		log.Printf("[WARN] Redis unavailable, session locks are process-local")
	}

	switch rec.SessionBackend {
	case "redis":
		if !redisOK {
			log.Printf("[WARN] Redis session backend selected but Redis is down; falling back to memory")
			return memory.NewSessionContextRepository(rec.SessionTTL), locker, nil
		}
		return distributed.NewSessionContextRepository(rdb, rec.SessionTTL), locker, nil
	default:
		repo := implementation.NewSessionContextRepository(db)
		return repo, locker, repo
	}
}
