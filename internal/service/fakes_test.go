package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/repository/contract"
	"ai-recommendation-be/internal/repository/specification"
	"ai-recommendation-be/internal/repository/unitofwork"
	"ai-recommendation-be/pkg/embedding"
)

type fakeRetriever struct {
	mu         sync.Mutex
	candidates []entity.RankedResult
	neighbours []entity.RankedResult
	limits     []int
	specs      []specification.Specification
	embedded   []string
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, limit int, filters map[string]interface{}) []entity.RankedResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	out := make([]entity.RankedResult, len(f.candidates))
	copy(out, f.candidates)
	return out
}

func (f *fakeRetriever) EmbedQuery(ctx context.Context, text string) ([]float32, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedded = append(f.embedded, text)
	return []float32{0.6, 0.8}, true
}

func (f *fakeRetriever) Neighbors(ctx context.Context, vec []float32, k int, specs ...specification.Specification) []entity.RankedResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, k)
	f.specs = append(f.specs, specs...)
	return f.neighbours
}

type fakeCatalogRepo struct {
	mu       sync.Mutex
	items    map[int64]*entity.CatalogItem
	all      []*entity.CatalogItem
	findErr  error
	upserted []*entity.CatalogItem
	specs    []specification.Specification
	deleted  []int64

	count          int64
	recentCount    int64
	publishedCount int64
	since          time.Time
}

func newFakeCatalogRepo(items ...*entity.CatalogItem) *fakeCatalogRepo {
	repo := &fakeCatalogRepo{items: map[int64]*entity.CatalogItem{}}
	for _, item := range items {
		repo.items[item.ProductId] = item
		repo.all = append(repo.all, item)
	}
	return repo
}

func (f *fakeCatalogRepo) Upsert(ctx context.Context, item *entity.CatalogItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, item)
	f.items[item.ProductId] = item
	return nil
}

func (f *fakeCatalogRepo) UpsertBulk(ctx context.Context, items []*entity.CatalogItem) error {
	for _, item := range items {
		_ = f.Upsert(ctx, item)
	}
	return nil
}

func (f *fakeCatalogRepo) Delete(ctx context.Context, productId int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.items[productId]
	delete(f.items, productId)
	f.deleted = append(f.deleted, productId)
	return ok, nil
}

func (f *fakeCatalogRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByProductID); ok {
			return f.items[byID.ID], nil
		}
	}
	return nil, nil
}

func (f *fakeCatalogRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.specs = append(f.specs, specs...)
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.all, nil
}

func (f *fakeCatalogRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.UpdatedSince:
			f.since = s.Since
			return f.recentCount, nil
		case specification.ByPublicationStatus:
			return f.publishedCount, nil
		}
	}
	return f.count, nil
}

func (f *fakeCatalogRepo) upsertedItems() []*entity.CatalogItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.CatalogItem, len(f.upserted))
	copy(out, f.upserted)
	return out
}

func (f *fakeCatalogRepo) NearestNeighbors(ctx context.Context, vec []float32, k int, specs ...specification.Specification) ([]*contract.ScoredCatalogItem, error) {
	return nil, nil
}

type fakeInteractionRepo struct {
	mu           sync.Mutex
	interactions []*entity.Interaction
	err          error
}

func (f *fakeInteractionRepo) Append(ctx context.Context, interaction *entity.Interaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.interactions = append(f.interactions, interaction)
	return nil
}

func (f *fakeInteractionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.interactions)), nil
}

type fakeUnitOfWork struct {
	catalog      *fakeCatalogRepo
	interactions *fakeInteractionRepo
	committed    int
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error {
	u.committed++
	return nil
}
func (u *fakeUnitOfWork) Rollback() error { return nil }
func (u *fakeUnitOfWork) CatalogItemRepository() contract.CatalogItemRepository {
	return u.catalog
}
func (u *fakeUnitOfWork) SessionContextRepository() contract.SessionContextRepository {
	return nil
}
func (u *fakeUnitOfWork) InteractionRepository() contract.InteractionRepository {
	return u.interactions
}

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func newFakeFactory(catalog *fakeCatalogRepo) *fakeFactory {
	if catalog == nil {
		catalog = newFakeCatalogRepo()
	}
	return &fakeFactory{uow: &fakeUnitOfWork{catalog: catalog, interactions: &fakeInteractionRepo{}}}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type loggedInteraction struct {
	sessionId string
	kind      string
	payload   map[string]interface{}
}

type fakeInteractions struct {
	mu   sync.Mutex
	logs []loggedInteraction
}

func (f *fakeInteractions) Log(sessionId, interactionType string, payload map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, loggedInteraction{sessionId: sessionId, kind: interactionType, payload: payload})
}

func (f *fakeInteractions) Wait() {}

type fakePrefVectors struct {
	mu      sync.Mutex
	vectors map[string][]float32
}

func (f *fakePrefVectors) UpdatePreferenceEmbedding(ctx context.Context, sessionId string, vec []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.vectors == nil {
		f.vectors = map[string][]float32{}
	}
	f.vectors[sessionId] = vec
	return nil
}

// brokenStore fails Get and/or Upsert on demand.
type brokenStore struct {
	contract.SessionContextRepository
	getErr    error
	upsertErr error
	upserts   int
}

func (b *brokenStore) Get(ctx context.Context, id string) (*entity.SessionContext, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}
	return b.SessionContextRepository.Get(ctx, id)
}

func (b *brokenStore) Upsert(ctx context.Context, sc *entity.SessionContext) error {
	b.upserts++
	if b.upsertErr != nil {
		return b.upsertErr
	}
	return b.SessionContextRepository.Upsert(ctx, sc)
}

var errStoreDown = errors.New("connection refused")

type fakeEmbedder struct {
	mu    sync.Mutex
	err   error
	calls int
	tasks []string
	texts []string
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, taskType)
	f.texts = append(f.texts, text)
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.6, 0.8}},
	}, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeFeed struct {
	pages [][]*entity.CatalogItem
	err   error
}

func (f *fakeFeed) FetchAll(ctx context.Context, fn func(items []*entity.CatalogItem) error) (int, error) {
	total := 0
	for _, page := range f.pages {
		if err := fn(page); err != nil {
			return total, err
		}
		total += len(page)
	}
	return total, f.err
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (r *recordingPublisher) Publish(ctx context.Context, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return nil
}
