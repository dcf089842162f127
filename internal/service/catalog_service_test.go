package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ai-recommendation-be/internal/dto"
	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/pkg/logger"
	"ai-recommendation-be/internal/pkg/serverutils"
	"ai-recommendation-be/pkg/embedding"
	"ai-recommendation-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scooterRequest() *dto.UpsertCatalogItemRequest {
	return &dto.UpsertCatalogItemRequest{
		ProductId:   42,
		Name:        "Volt X",
		Description: "Electric scooter",
		Categories:  []string{"Mobility"},
		Price:       "3000",
		StockStatus: entity.StockStatusInStock,
		Rating:      4.5,
		ReviewCount: 10,
	}
}

func newCatalogHarness(embedder *fakeEmbedder, feed CatalogFeed) (ICatalogService, *fakeCatalogRepo, *recordingPublisher) {
	repo := newFakeCatalogRepo()
	publisher := &recordingPublisher{}
	svc := NewCatalogService(newFakeFactory(repo), embedder, publisher, feed, logger.NewNopLogger(), time.Second)
	return svc, repo, publisher
}

func TestCatalogUpsertEmbedsAndStores(t *testing.T) {
	embedder := &fakeEmbedder{}
	svc, repo, _ := newCatalogHarness(embedder, nil)

	res, err := svc.Upsert(context.Background(), scooterRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(42), res.ProductId)
	assert.True(t, res.Embedded)

	stored := repo.upsertedItems()
	require.Len(t, stored, 1)
	assert.Equal(t, []float32{0.6, 0.8}, stored[0].EmbeddingValue)
	assert.Contains(t, stored[0].EmbeddingText, "Product: Volt X | Description: Electric scooter")
	assert.Equal(t, []string{embedding.TaskRetrievalDocument}, embedder.tasks)
}

func TestCatalogUpsertStoresWithoutVectorWhenEmbedderFails(t *testing.T) {
	svc, repo, _ := newCatalogHarness(&fakeEmbedder{err: errors.New("quota exceeded")}, nil)

	res, err := svc.Upsert(context.Background(), scooterRequest())

	require.NoError(t, err)
	assert.False(t, res.Embedded)
	stored := repo.upsertedItems()
	require.Len(t, stored, 1)
	assert.Nil(t, stored[0].EmbeddingValue)
}

func TestCatalogUpsertRejectsIncompleteItem(t *testing.T) {
	svc, repo, _ := newCatalogHarness(&fakeEmbedder{}, nil)
	req := scooterRequest()
	req.Description = ""

	_, err := svc.Upsert(context.Background(), req)

	assert.ErrorIs(t, err, serverutils.ErrInvalidInput)
	assert.Empty(t, repo.upsertedItems())
}

func TestCatalogDelete(t *testing.T) {
	svc, repo, _ := newCatalogHarness(&fakeEmbedder{}, nil)
	_, err := svc.Upsert(context.Background(), scooterRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 42))
	assert.ErrorIs(t, svc.Delete(context.Background(), 42), serverutils.ErrNotFound)
	assert.Equal(t, []int64{42, 42}, repo.deleted)
}

func TestCatalogStats(t *testing.T) {
	repo := newFakeCatalogRepo()
	repo.count, repo.recentCount, repo.publishedCount = 120, 30, 100
	svc := NewCatalogService(newFakeFactory(repo), &fakeEmbedder{}, &recordingPublisher{}, nil, logger.NewNopLogger(), time.Second)
	now := time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)
	svc.(*catalogService).now = func() time.Time { return now }

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &dto.CatalogStatsResponse{TotalProducts: 120, UpdatedLast30Days: 30, Published: 100}, stats)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), repo.since)
}

func TestCatalogSyncQueuesOneJobPerProduct(t *testing.T) {
	feed := &fakeFeed{pages: [][]*entity.CatalogItem{
		{{ProductId: 1, Name: "A", Description: "a", Price: "1"}, {ProductId: 2, Name: "B", Description: "b", Price: "2"}},
		{{ProductId: 3, Name: "C", Description: "c", Price: "3"}},
	}}
	svc, _, publisher := newCatalogHarness(&fakeEmbedder{}, feed)

	res, err := svc.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, res.Queued)
	require.Len(t, publisher.payloads, 3)

	var job dto.EmbedCatalogItemMessage
	require.NoError(t, json.Unmarshal(publisher.payloads[2], &job))
	assert.Equal(t, int64(3), job.Item.ProductId)
	assert.Equal(t, "feed", job.Source)
}

func TestCatalogSyncWithoutFeed(t *testing.T) {
	svc, _, _ := newCatalogHarness(&fakeEmbedder{}, nil)

	_, err := svc.Sync(context.Background())

	assert.ErrorIs(t, err, serverutils.ErrUnavailable)
}

func TestCatalogSyncReportsPartialProgress(t *testing.T) {
	feed := &fakeFeed{
		pages: [][]*entity.CatalogItem{{{ProductId: 1, Name: "A", Description: "a", Price: "1"}}},
		err:   errors.New("page 2: status 500"),
	}
	svc, _, _ := newCatalogHarness(&fakeEmbedder{}, feed)

	res, err := svc.Sync(context.Background())

	assert.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Queued)
}

func TestCatalogHandleEvent(t *testing.T) {
	svc, repo, publisher := newCatalogHarness(&fakeEmbedder{}, nil)
	ctx := context.Background()

	changed := events.BaseEvent{
		Type: events.TypeCatalogItemChanged,
		Data: map[string]interface{}{"item": map[string]interface{}{
			"product_id":  float64(7),
			"name":        "Trail bike",
			"description": "Mountain bike",
			"price":       "900",
		}},
	}
	require.NoError(t, svc.HandleEvent(ctx, changed))
	require.Len(t, publisher.payloads, 1)
	var job dto.EmbedCatalogItemMessage
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &job))
	assert.Equal(t, int64(7), job.Item.ProductId)
	assert.Equal(t, "event", job.Source)

	malformed := events.BaseEvent{Type: events.TypeCatalogItemChanged, Data: map[string]interface{}{"item": "nope"}}
	require.NoError(t, svc.HandleEvent(ctx, malformed))
	assert.Len(t, publisher.payloads, 1)

	deleted := events.BaseEvent{Type: events.TypeCatalogItemDeleted, Data: map[string]interface{}{"product_id": float64(7)}}
	require.NoError(t, svc.HandleEvent(ctx, deleted))
	assert.Equal(t, []int64{7}, repo.deleted)
}
