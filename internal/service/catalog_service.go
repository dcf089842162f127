package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-recommendation-be/internal/dto"
	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/metrics"
	"ai-recommendation-be/internal/pkg/logger"
	"ai-recommendation-be/internal/pkg/serverutils"
	"ai-recommendation-be/internal/repository/specification"
	"ai-recommendation-be/internal/repository/unitofwork"
	"ai-recommendation-be/pkg/catalog"
	"ai-recommendation-be/pkg/embedding"
	"ai-recommendation-be/pkg/events"
)

const catalogModule = "CATALOG"

// CatalogFeed is satisfied by *woocommerce.Client.
type CatalogFeed interface {
	FetchAll(ctx context.Context, fn func(items []*entity.CatalogItem) error) (int, error)
}

type ICatalogService interface {
	// Upsert embeds the item and stores it. An embedding failure still stores
	// the item, without a vector, and reports Embedded=false.
	Upsert(ctx context.Context, req *dto.UpsertCatalogItemRequest) (*dto.UpsertCatalogItemResponse, error)
	Delete(ctx context.Context, productId int64) error
	Stats(ctx context.Context) (*dto.CatalogStatsResponse, error)
	// Sync pages through the feed and queues one embedding job per product.
	Sync(ctx context.Context) (*dto.SyncCatalogResponse, error)
	// HandleEvent applies catalog change events received from the event bus.
	HandleEvent(ctx context.Context, event events.Event) error
}

type catalogService struct {
	uowFactory unitofwork.RepositoryFactory
	embedder   embedding.EmbeddingProvider
	publisher  IPublisherService
	feed       CatalogFeed
	logger     logger.ILogger
	timeout    time.Duration
	now        func() time.Time
}

// NewCatalogService accepts a nil feed when no WooCommerce endpoint is configured.
func NewCatalogService(
	uowFactory unitofwork.RepositoryFactory,
	embedder embedding.EmbeddingProvider,
	publisher IPublisherService,
	feed CatalogFeed,
	logger logger.ILogger,
	embeddingTimeout time.Duration,
) ICatalogService {
	if embeddingTimeout <= 0 {
		embeddingTimeout = 10 * time.Second
	}
	return &catalogService{
		uowFactory: uowFactory,
		embedder:   embedder,
		publisher:  publisher,
		feed:       feed,
		logger:     logger,
		timeout:    embeddingTimeout,
		now:        time.Now,
	}
}

func (s *catalogService) Upsert(ctx context.Context, req *dto.UpsertCatalogItemRequest) (*dto.UpsertCatalogItemResponse, error) {
	item := req.ToEntity()
	if !item.IsComplete() {
		return nil, fmt.Errorf("product %d is missing required fields: %w", item.ProductId, serverutils.ErrInvalidInput)
	}

	embedded := embedItem(ctx, s.embedder, item, s.timeout, s.logger)
	if err := storeItem(ctx, s.uowFactory, item); err != nil {
		metrics.CatalogSyncItems.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.CatalogSyncItems.WithLabelValues("upserted").Inc()

	s.logger.Info(catalogModule, "Catalog item stored", map[string]interface{}{
		"product_id": item.ProductId,
		"embedded":   embedded,
	})
	return &dto.UpsertCatalogItemResponse{ProductId: item.ProductId, Embedded: embedded}, nil
}

func (s *catalogService) Delete(ctx context.Context, productId int64) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.CatalogItemRepository().Delete(ctx, productId)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", productId, err)
	}
	if !deleted {
		return fmt.Errorf("product %d: %w", productId, serverutils.ErrNotFound)
	}

	s.logger.Info(catalogModule, "Catalog item deleted", map[string]interface{}{"product_id": productId})
	return nil
}

func (s *catalogService) Stats(ctx context.Context) (*dto.CatalogStatsResponse, error) {
	repo := s.uowFactory.NewUnitOfWork(ctx).CatalogItemRepository()

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	recent, err := repo.Count(ctx, specification.UpdatedSince{Since: s.now().AddDate(0, 0, -30)})
	if err != nil {
		return nil, fmt.Errorf("count recent products: %w", err)
	}
	published, err := repo.Count(ctx, specification.ByPublicationStatus{Status: entity.StatusPublish})
	if err != nil {
		return nil, fmt.Errorf("count published products: %w", err)
	}

	return &dto.CatalogStatsResponse{
		TotalProducts:     total,
		UpdatedLast30Days: recent,
		Published:         published,
	}, nil
}

func (s *catalogService) Sync(ctx context.Context) (*dto.SyncCatalogResponse, error) {
	if s.feed == nil {
		return nil, fmt.Errorf("catalog feed is not configured: %w", serverutils.ErrUnavailable)
	}

	queued := 0
	_, err := s.feed.FetchAll(ctx, func(items []*entity.CatalogItem) error {
		for _, item := range items {
			if err := s.enqueue(ctx, dto.NewUpsertCatalogItemRequest(item), "feed"); err != nil {
				return err
			}
			queued++
		}
		return nil
	})

	s.logger.Info(catalogModule, "Catalog sync queued", map[string]interface{}{"queued": queued})
	if err != nil {
		return &dto.SyncCatalogResponse{Queued: queued}, fmt.Errorf("catalog sync: %w", err)
	}
	return &dto.SyncCatalogResponse{Queued: queued}, nil
}

func (s *catalogService) enqueue(ctx context.Context, req dto.UpsertCatalogItemRequest, source string) error {
	payload, err := json.Marshal(dto.EmbedCatalogItemMessage{
		Item:       req,
		Source:     source,
		EnqueuedAt: s.now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, payload)
}

// HandleEvent expects catalog.item_changed to carry the full product under
// "item" and catalog.item_deleted to carry "product_id".
func (s *catalogService) HandleEvent(ctx context.Context, event events.Event) error {
	data := event.Payload()

	switch event.EventType() {
	case events.TypeCatalogItemChanged:
		raw, err := json.Marshal(data["item"])
		if err != nil {
			return err
		}
		var req dto.UpsertCatalogItemRequest
		if err := json.Unmarshal(raw, &req); err != nil || req.ProductId <= 0 {
			s.logger.Warn(catalogModule, "Ignoring malformed catalog change event", nil)
			return nil
		}
		return s.enqueue(ctx, req, "event")

	case events.TypeCatalogItemDeleted:
		productId, ok := events.ProductIDFromPayload(data)
		if !ok {
			s.logger.Warn(catalogModule, "Ignoring catalog delete event without product_id", nil)
			return nil
		}
		uow := s.uowFactory.NewUnitOfWork(ctx)
		if _, err := uow.CatalogItemRepository().Delete(ctx, productId); err != nil {
			return fmt.Errorf("delete product %d: %w", productId, err)
		}
		s.logger.Info(catalogModule, "Catalog item deleted by event", map[string]interface{}{"product_id": productId})
		return nil

	default:
		return nil
	}
}

// embedItem fills EmbeddingText and, when the embedder succeeds, EmbeddingValue.
func embedItem(ctx context.Context, embedder embedding.EmbeddingProvider, item *entity.CatalogItem, timeout time.Duration, log logger.ILogger) bool {
	item.EmbeddingText = catalog.EmbeddingText(item)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	res, err := embedder.Generate(ctx, item.EmbeddingText, embedding.TaskRetrievalDocument)
	metrics.StageLatency.WithLabelValues("embed").Observe(time.Since(start).Seconds())
	if err != nil || res == nil || len(res.Embedding.Values) == 0 {
		metrics.UpstreamFailures.WithLabelValues("embedder").Inc()
		details := map[string]interface{}{"product_id": item.ProductId}
		if err != nil {
			details["error"] = err.Error()
		}
		log.Warn(catalogModule, "Failed to embed catalog item", details)
		return false
	}

	item.EmbeddingValue = res.Embedding.Values
	return true
}

func storeItem(ctx context.Context, uowFactory unitofwork.RepositoryFactory, item *entity.CatalogItem) error {
	uow := uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.CatalogItemRepository().Upsert(ctx, item); err != nil {
		return fmt.Errorf("upsert product %d: %w", item.ProductId, err)
	}
	return uow.Commit()
}
