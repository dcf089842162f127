package search

import (
	"context"
	"strings"
	"time"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/metrics"
	"ai-recommendation-be/internal/pkg/logger"
	"ai-recommendation-be/internal/repository/contract"
	"ai-recommendation-be/internal/repository/specification"
	"ai-recommendation-be/pkg/embedding"
)

const module = "RETRIEVER"

// VectorStore is the slice of the catalog repository the retriever needs.
type VectorStore interface {
	NearestNeighbors(ctx context.Context, vec []float32, k int, specs ...specification.Specification) ([]*contract.ScoredCatalogItem, error)
}

type Config struct {
	EmbeddingTimeout    time.Duration
	VectorSearchTimeout time.Duration
	// Overfetch multiplies the requested limit so ranking has room to reorder.
	Overfetch int
}

func DefaultConfig() Config {
	return Config{
		EmbeddingTimeout:    10 * time.Second,
		VectorSearchTimeout: 5 * time.Second,
		Overfetch:           2,
	}
}

// Retriever turns a query into similarity-scored catalog candidates. It never
// fails: any upstream problem degrades to an empty result.
type Retriever struct {
	embedder embedding.EmbeddingProvider
	store    VectorStore
	logger   logger.ILogger
	cfg      Config
}

func NewRetriever(embedder embedding.EmbeddingProvider, store VectorStore, logger logger.ILogger, cfg Config) *Retriever {
	if cfg.Overfetch < 1 {
		cfg.Overfetch = 2
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		logger:   logger,
		cfg:      cfg,
	}
}

// Retrieve embeds query and asks the store for Overfetch*limit neighbours.
func (r *Retriever) Retrieve(ctx context.Context, query string, limit int, filters map[string]interface{}) []entity.RankedResult {
	if limit < 1 {
		limit = 1
	}
	if strings.TrimSpace(query) == "" {
		r.logger.Warn(module, "Empty query, nothing to retrieve", nil)
		return []entity.RankedResult{}
	}

	vec, ok := r.EmbedQuery(ctx, query)
	if !ok {
		return []entity.RankedResult{}
	}

	return r.Neighbors(ctx, vec, limit*r.cfg.Overfetch, specification.FromFilters(filters)...)
}

// EmbedQuery returns false when the embedder failed or produced nothing.
func (r *Retriever) EmbedQuery(ctx context.Context, query string) ([]float32, bool) {
	return r.embed(ctx, query, embedding.TaskRetrievalQuery)
}

// EmbedDocument is EmbedQuery for stored text such as preference summaries.
func (r *Retriever) EmbedDocument(ctx context.Context, text string) ([]float32, bool) {
	return r.embed(ctx, text, embedding.TaskRetrievalDocument)
}

func (r *Retriever) embed(ctx context.Context, text, taskType string) ([]float32, bool) {
	if r.cfg.EmbeddingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.EmbeddingTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := r.embedder.Generate(ctx, text, taskType)
	metrics.StageLatency.WithLabelValues("embed").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamFailures.WithLabelValues("embedder").Inc()
		r.logger.Error(module, "Embedding failed, returning no candidates", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false
	}
	if res == nil || len(res.Embedding.Values) == 0 {
		metrics.UpstreamFailures.WithLabelValues("embedder").Inc()
		r.logger.Warn(module, "Embedder returned an empty vector", nil)
		return nil, false
	}
	return res.Embedding.Values, true
}

// Neighbors runs the vector search and cleans the records it gets back:
// incomplete records and repeated ids are dropped, similarity becomes the score.
func (r *Retriever) Neighbors(ctx context.Context, vec []float32, k int, specs ...specification.Specification) []entity.RankedResult {
	if r.cfg.VectorSearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.VectorSearchTimeout)
		defer cancel()
	}

	start := time.Now()
	scored, err := r.store.NearestNeighbors(ctx, vec, k, specs...)
	metrics.StageLatency.WithLabelValues("vector_search").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamFailures.WithLabelValues("vector_store").Inc()
		r.logger.Error(module, "Vector search failed, returning no candidates", map[string]interface{}{
			"error": err.Error(),
			"k":     k,
		})
		return []entity.RankedResult{}
	}

	results := make([]entity.RankedResult, 0, len(scored))
	seen := make(map[int64]struct{}, len(scored))
	for _, s := range scored {
		if s == nil || !s.Item.IsComplete() {
			metrics.MalformedRecords.Inc()
			details := map[string]interface{}{}
			if s != nil && s.Item != nil {
				details["product_id"] = s.Item.ProductId
			}
			r.logger.Warn(module, "Dropping catalog record with missing required fields", details)
			continue
		}
		if _, dup := seen[s.Item.ProductId]; dup {
			continue
		}
		seen[s.Item.ProductId] = struct{}{}
		results = append(results, entity.RankedResult{Item: s.Item, Score: s.Similarity})
	}

	r.logger.Debug(module, "Retrieved candidates", map[string]interface{}{
		"requested": k,
		"returned":  len(results),
	})
	return results
}
