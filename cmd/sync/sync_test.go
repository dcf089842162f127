package main

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ai-recommendation-be/internal/dto"
	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pagedFeed struct {
	pages [][]*entity.CatalogItem
	err   error
}

func (f *pagedFeed) FetchAll(ctx context.Context, fn func(items []*entity.CatalogItem) error) (int, error) {
	total := 0
	for _, page := range f.pages {
		if err := fn(page); err != nil {
			return total, err
		}
		total += len(page)
	}
	return total, f.err
}

type countingCatalog struct {
	mu  sync.Mutex
	ids []int64
}

func (c *countingCatalog) Upsert(ctx context.Context, req *dto.UpsertCatalogItemRequest) (*dto.UpsertCatalogItemResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, req.ProductId)
	switch req.ProductId {
	case 2:
		return nil, errors.New("db down")
	case 3:
		return &dto.UpsertCatalogItemResponse{ProductId: 3, Embedded: false}, nil
	}
	return &dto.UpsertCatalogItemResponse{ProductId: req.ProductId, Embedded: true}, nil
}

func (c *countingCatalog) Delete(ctx context.Context, productId int64) error { return nil }
func (c *countingCatalog) Stats(ctx context.Context) (*dto.CatalogStatsResponse, error) {
	return &dto.CatalogStatsResponse{}, nil
}
func (c *countingCatalog) Sync(ctx context.Context) (*dto.SyncCatalogResponse, error) {
	return &dto.SyncCatalogResponse{}, nil
}
func (c *countingCatalog) HandleEvent(ctx context.Context, event events.Event) error { return nil }

func TestSyncFeedCountsOutcomes(t *testing.T) {
	feed := &pagedFeed{pages: [][]*entity.CatalogItem{
		{{ProductId: 1}, {ProductId: 2}, {ProductId: 3}},
		{{ProductId: 4}},
	}}
	catalog := &countingCatalog{}

	stored, unembedded, failed, err := syncFeed(context.Background(), feed, catalog, 2)

	require.NoError(t, err)
	assert.Equal(t, int64(3), stored)
	assert.Equal(t, int64(1), unembedded)
	assert.Equal(t, int64(1), failed)
	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, catalog.ids)
}

func TestSyncFeedStopsOnFeedError(t *testing.T) {
	feed := &pagedFeed{
		pages: [][]*entity.CatalogItem{{{ProductId: 1}}},
		err:   errors.New("page 2: status 502"),
	}

	stored, _, _, err := syncFeed(context.Background(), feed, &countingCatalog{}, 0)

	assert.ErrorContains(t, err, "status 502")
	assert.Equal(t, int64(1), stored)
}
