package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"ai-recommendation-be/internal/dto"
	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/metrics"
	"ai-recommendation-be/internal/pkg/logger"
	"ai-recommendation-be/internal/pkg/serverutils"
	"ai-recommendation-be/internal/repository/contract"
	"ai-recommendation-be/internal/repository/specification"
	"ai-recommendation-be/internal/repository/unitofwork"
	"ai-recommendation-be/pkg/rag/fusion"
	"ai-recommendation-be/pkg/rag/ranking"
	"ai-recommendation-be/pkg/rag/response"
	"ai-recommendation-be/pkg/rag/session"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const recommendationModule = "RECOMMENDATION"

var tracer = otel.Tracer("ai-recommendation-be/internal/service")

// CandidateRetriever is satisfied by *search.Retriever.
type CandidateRetriever interface {
	Retrieve(ctx context.Context, query string, limit int, filters map[string]interface{}) []entity.RankedResult
	EmbedQuery(ctx context.Context, text string) ([]float32, bool)
	Neighbors(ctx context.Context, vec []float32, k int, specs ...specification.Specification) []entity.RankedResult
}

type RecommendationOptions struct {
	DefaultLimit            int
	MaxLimit                int
	ProductLimit            int
	TrendingLimit           int
	TrendingMinRating       float64
	LockWait                time.Duration
	SessionStoreTimeout     time.Duration
	PreferenceHistoryWindow int
}

func DefaultRecommendationOptions() RecommendationOptions {
	return RecommendationOptions{
		DefaultLimit:            10,
		MaxLimit:                50,
		ProductLimit:            5,
		TrendingLimit:           10,
		TrendingMinRating:       4.0,
		LockWait:                10 * time.Second,
		SessionStoreTimeout:     3 * time.Second,
		PreferenceHistoryWindow: 5,
	}
}

type IRecommendationService interface {
	GetRecommendations(ctx context.Context, req *dto.IntelligentSearchRequest) (*dto.RecommendationResponse, error)
	GetProductRecommendations(ctx context.Context, productId int64, sessionId string, limit int) (*dto.ProductRecommendationsResponse, error)
	RecordProductView(ctx context.Context, sessionId string, productId int64) (*dto.RecordViewResponse, error)
	GetTrending(ctx context.Context, limit int) (*dto.TrendingResponse, error)
	UpdatePreferences(ctx context.Context, req *dto.UpdatePreferencesRequest) (*dto.SessionContextResponse, error)
	GetSession(ctx context.Context, sessionId string) (*dto.SessionContextResponse, error)
	// Wait drains background work started by earlier calls.
	Wait()
}

type recommendationService struct {
	uowFactory   unitofwork.RepositoryFactory
	retriever    CandidateRetriever
	ranker       *ranking.Ranker
	policy       *fusion.Policy
	sessions     *session.Manager
	locker       session.Locker
	generator    *response.Generator
	interactions IInteractionService
	prefVectors  contract.PreferenceVectorRepository
	logger       logger.ILogger
	opts         RecommendationOptions
	background   sync.WaitGroup
}

// NewRecommendationService wires the pipeline. prefVectors may be nil when the
// session backend cannot store vectors.
func NewRecommendationService(
	uowFactory unitofwork.RepositoryFactory,
	retriever CandidateRetriever,
	ranker *ranking.Ranker,
	policy *fusion.Policy,
	sessions *session.Manager,
	locker session.Locker,
	generator *response.Generator,
	interactions IInteractionService,
	prefVectors contract.PreferenceVectorRepository,
	logger logger.ILogger,
	opts RecommendationOptions,
) IRecommendationService {
	defaults := DefaultRecommendationOptions()
	if opts.DefaultLimit < 1 {
		opts.DefaultLimit = defaults.DefaultLimit
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = max(defaults.MaxLimit, opts.DefaultLimit)
	}
	if opts.ProductLimit < 1 {
		opts.ProductLimit = defaults.ProductLimit
	}
	if opts.TrendingLimit < 1 {
		opts.TrendingLimit = defaults.TrendingLimit
	}
	if opts.TrendingMinRating <= 0 {
		opts.TrendingMinRating = defaults.TrendingMinRating
	}
	if opts.SessionStoreTimeout <= 0 {
		opts.SessionStoreTimeout = defaults.SessionStoreTimeout
	}
	if opts.LockWait <= 0 {
		opts.LockWait = defaults.LockWait
	}
	if opts.PreferenceHistoryWindow < 1 {
		opts.PreferenceHistoryWindow = defaults.PreferenceHistoryWindow
	}

	return &recommendationService{
		uowFactory:   uowFactory,
		retriever:    retriever,
		ranker:       ranker,
		policy:       policy,
		sessions:     sessions,
		locker:       locker,
		generator:    generator,
		interactions: interactions,
		prefVectors:  prefVectors,
		logger:       logger,
		opts:         opts,
	}
}

// clampLimit corrects a requested size: values below 1 take fallback and
// anything above the configured maximum is capped.
func (s *recommendationService) clampLimit(limit, fallback int) int {
	if limit < 1 {
		limit = fallback
	}
	if limit < 1 {
		limit = 1
	}
	return min(limit, s.opts.MaxLimit)
}

// GetRecommendations runs one conversational turn: retrieve, personalize,
// reply and fold the turn back into the session. It only fails on a nil
// request; every collaborator failure degrades instead.
func (s *recommendationService) GetRecommendations(ctx context.Context, req *dto.IntelligentSearchRequest) (*dto.RecommendationResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil recommendation request")
	}

	start := time.Now()
	query := strings.TrimSpace(req.Query)
	limit := s.clampLimit(req.Limit, s.opts.DefaultLimit)

	sessionId := ""
	if req.SessionId != nil {
		sessionId = strings.TrimSpace(*req.SessionId)
	}
	if sessionId == "" {
		sessionId = uuid.NewString()
	}

	ctx, span := tracer.Start(ctx, "RecommendationService.GetRecommendations", trace.WithAttributes(
		attribute.String("session.id", sessionId),
		attribute.Int("request.limit", limit),
	))
	defer span.End()

	unlock, locked := s.lock(ctx, sessionId)
	defer unlock()

	sc, _, loaded := s.load(ctx, sessionId)

	stage := time.Now()
	candidates := s.retriever.Retrieve(ctx, query, limit, req.Filters)
	metrics.StageLatency.WithLabelValues("retrieve").Observe(time.Since(stage).Seconds())

	stage = time.Now()
	ranked := s.ranker.Rank(candidates, sc)
	metrics.StageLatency.WithLabelValues("rank").Observe(time.Since(stage).Seconds())

	top := ranked
	if len(top) > limit {
		top = top[:limit]
	}

	reply := s.generator.Generate(ctx, response.Request{Query: query, Results: top, Session: sc})

	// Categories are learned from every ranked candidate, not just the returned page.
	contextUpdated := false
	if locked && loaded {
		fused := s.policy.Fuse(sc, query, ranked, reply.Text, s.sessions.Now())
		contextUpdated = s.persist(ctx, fused)
		if contextUpdated {
			s.refreshPreferenceVector(ctx, fused)
		}
	}

	topSimilarity := 0.0
	if len(top) > 0 {
		topSimilarity = top[0].Score
	}
	s.interactions.Log(sessionId, entity.InteractionTypeSearch, map[string]interface{}{
		"query":          query,
		"results_count":  len(top),
		"top_similarity": topSimilarity,
	})

	outcome := "ok"
	if !contextUpdated {
		outcome = "degraded"
	}
	metrics.RecommendationRequests.WithLabelValues("search", outcome).Inc()
	span.SetAttributes(
		attribute.Int("results.count", len(top)),
		attribute.Bool("context.updated", contextUpdated),
		attribute.String("reply.source", reply.Source),
	)

	s.logger.Info(recommendationModule, "Recommendations served", map[string]interface{}{
		"session_id":      sessionId,
		"candidates":      len(candidates),
		"returned":        len(top),
		"reply_source":    reply.Source,
		"context_updated": contextUpdated,
		"duration_ms":     time.Since(start).Milliseconds(),
	})

	return &dto.RecommendationResponse{
		Products:             dto.NewProductDtos(top),
		ConversationResponse: reply.Text,
		Suggestions:          reply.Suggestions,
		SessionId:            sessionId,
		ContextUpdated:       contextUpdated,
	}, nil
}

// GetProductRecommendations returns neighbours of a stored item. With a
// session id the call also counts as a view of that item.
func (s *recommendationService) GetProductRecommendations(ctx context.Context, productId int64, sessionId string, limit int) (*dto.ProductRecommendationsResponse, error) {
	ctx, span := tracer.Start(ctx, "RecommendationService.GetProductRecommendations", trace.WithAttributes(
		attribute.Int64("product.id", productId),
	))
	defer span.End()

	limit = s.clampLimit(limit, s.opts.ProductLimit)
	out := &dto.ProductRecommendationsResponse{Recommendations: []dto.ProductDto{}}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	item, err := uow.CatalogItemRepository().FindOne(ctx, specification.ByProductID{ID: productId})
	switch {
	case err != nil:
		metrics.UpstreamFailures.WithLabelValues("vector_store").Inc()
		s.logger.Error(recommendationModule, "Failed to load product", map[string]interface{}{
			"product_id": productId,
			"error":      err.Error(),
		})
	case item == nil:
		s.logger.Warn(recommendationModule, "Product not found", map[string]interface{}{"product_id": productId})
	case len(item.EmbeddingValue) == 0:
		s.logger.Warn(recommendationModule, "Product has no embedding yet", map[string]interface{}{"product_id": productId})
	default:
		neighbours := s.retriever.Neighbors(ctx, item.EmbeddingValue, limit, specification.ExcludeProductID{ID: productId})
		if len(neighbours) > limit {
			neighbours = neighbours[:limit]
		}
		out.Recommendations = dto.NewProductDtos(neighbours)
	}

	if sessionId = strings.TrimSpace(sessionId); sessionId != "" {
		s.interactions.Log(sessionId, entity.InteractionTypeProductView, map[string]interface{}{"product_id": productId})
		s.recordView(ctx, sessionId, productId, false)
	}

	metrics.RecommendationRequests.WithLabelValues("product", "ok").Inc()
	return out, nil
}

func (s *recommendationService) RecordProductView(ctx context.Context, sessionId string, productId int64) (*dto.RecordViewResponse, error) {
	sessionId = strings.TrimSpace(sessionId)
	if sessionId == "" || productId < 1 {
		return nil, fmt.Errorf("session id and a positive product id are required: %w", serverutils.ErrInvalidInput)
	}

	s.interactions.Log(sessionId, entity.InteractionTypeProductView, map[string]interface{}{"product_id": productId})
	updated := s.recordView(ctx, sessionId, productId, true)

	return &dto.RecordViewResponse{
		SessionId:      sessionId,
		ProductId:      productId,
		ContextUpdated: updated,
	}, nil
}

// recordView appends productId to the session's viewed items. Unknown
// sessions are only created when createMissing is set.
func (s *recommendationService) recordView(ctx context.Context, sessionId string, productId int64, createMissing bool) bool {
	unlock, locked := s.lock(ctx, sessionId)
	defer unlock()
	if !locked {
		return false
	}

	sc, existed, loaded := s.load(ctx, sessionId)
	if !loaded || (!existed && !createMissing) {
		return false
	}

	return s.persist(ctx, s.policy.RecordView(sc, productId))
}

func (s *recommendationService) GetTrending(ctx context.Context, limit int) (*dto.TrendingResponse, error) {
	limit = s.clampLimit(limit, s.opts.TrendingLimit)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	items, err := uow.CatalogItemRepository().FindAll(ctx,
		specification.MinRating{Rating: s.opts.TrendingMinRating},
		specification.OrderBy{Field: "rating", Desc: true},
		specification.OrderBy{Field: "review_count", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		metrics.UpstreamFailures.WithLabelValues("vector_store").Inc()
		s.logger.Error(recommendationModule, "Failed to load trending products", map[string]interface{}{"error": err.Error()})
		return &dto.TrendingResponse{Products: []dto.ProductDto{}}, nil
	}

	results := make([]entity.RankedResult, 0, len(items))
	for _, item := range items {
		if !item.IsComplete() {
			continue
		}
		results = append(results, entity.RankedResult{Item: item, Score: 1.0})
	}

	metrics.RecommendationRequests.WithLabelValues("trending", "ok").Inc()
	return &dto.TrendingResponse{Products: dto.NewProductDtos(results)}, nil
}

// UpdatePreferences is an explicit write, so unlike the read path it reports
// lock and store failures to the caller.
func (s *recommendationService) UpdatePreferences(ctx context.Context, req *dto.UpdatePreferencesRequest) (*dto.SessionContextResponse, error) {
	sessionId := strings.TrimSpace(req.SessionId)
	if sessionId == "" {
		return nil, fmt.Errorf("session id is required: %w", serverutils.ErrInvalidInput)
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.opts.LockWait)
	defer cancel()
	unlock, err := s.locker.Lock(lockCtx, sessionId)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionId, serverutils.ErrConflict)
	}
	defer unlock()

	loadCtx, cancelLoad := context.WithTimeout(ctx, s.opts.SessionStoreTimeout)
	defer cancelLoad()
	sc, _, err := s.sessions.LoadOrNew(loadCtx, sessionId)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, serverutils.ErrUnavailable)
	}

	next := s.policy.ApplyPreferences(sc, fusion.PreferenceUpdate{
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		ClearBudget: req.ClearBudget,
		Preferences: req.Preferences,
	})

	if !s.persist(ctx, next) {
		return nil, fmt.Errorf("save session %s: %w", sessionId, serverutils.ErrUnavailable)
	}

	s.logger.Info(recommendationModule, "Session preferences updated", map[string]interface{}{
		"session_id": sessionId,
		"has_budget": next.BudgetRange != nil,
	})
	return dto.NewSessionContextResponse(next), nil
}

func (s *recommendationService) GetSession(ctx context.Context, sessionId string) (*dto.SessionContextResponse, error) {
	loadCtx, cancel := context.WithTimeout(ctx, s.opts.SessionStoreTimeout)
	defer cancel()

	sc, err := s.sessions.Load(loadCtx, sessionId)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, serverutils.ErrUnavailable)
	}
	if sc == nil {
		return nil, fmt.Errorf("session %s: %w", sessionId, serverutils.ErrNotFound)
	}
	return dto.NewSessionContextResponse(sc), nil
}

// lock acquires the session lock within LockWait. On failure the caller
// carries on read-only and the returned unlock is a no-op.
func (s *recommendationService) lock(ctx context.Context, sessionId string) (func(), bool) {
	lockCtx, cancel := context.WithTimeout(ctx, s.opts.LockWait)
	defer cancel()

	unlock, err := s.locker.Lock(lockCtx, sessionId)
	if err != nil {
		metrics.UpstreamFailures.WithLabelValues("session_lock").Inc()
		s.logger.Warn(recommendationModule, "Session lock not acquired, context will not be saved", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return func() {}, false
	}
	return unlock, true
}

// load returns the stored context or a fresh one and whether it existed.
// ok is false when the store failed; a fresh context must then never
// overwrite what is stored.
func (s *recommendationService) load(ctx context.Context, sessionId string) (sc *entity.SessionContext, existed bool, ok bool) {
	loadCtx, cancel := context.WithTimeout(ctx, s.opts.SessionStoreTimeout)
	defer cancel()

	sc, existed, err := s.sessions.LoadOrNew(loadCtx, sessionId)
	if err != nil {
		metrics.UpstreamFailures.WithLabelValues("session_store").Inc()
		s.logger.Error(recommendationModule, "Failed to load session context", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return entity.NewSessionContext(sessionId, s.sessions.Now()), false, false
	}
	return sc, existed, true
}

// persist saves sc detached from the caller's cancellation so an abandoned
// request never leaves a half-finished write behind.
func (s *recommendationService) persist(ctx context.Context, sc *entity.SessionContext) bool {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.SessionStoreTimeout)
	defer cancel()

	start := time.Now()
	err := s.sessions.Save(saveCtx, sc)
	metrics.StageLatency.WithLabelValues("persist").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamFailures.WithLabelValues("session_store").Inc()
		s.logger.Error(recommendationModule, "Failed to save session context", map[string]interface{}{
			"session_id": sc.SessionId,
			"error":      err.Error(),
		})
		return false
	}
	return true
}

// refreshPreferenceVector embeds the user messages among the latest history
// entries in the background.
func (s *recommendationService) refreshPreferenceVector(ctx context.Context, sc *entity.SessionContext) {
	if s.prefVectors == nil {
		return
	}
	messages := sc.UserMessagesInLast(s.opts.PreferenceHistoryWindow)
	if len(messages) == 0 {
		return
	}

	sessionId := sc.SessionId
	text := strings.Join(messages, " ")
	bg := context.WithoutCancel(ctx)

	s.background.Add(1)
	go func() {
		defer s.background.Done()

		vec, ok := s.retriever.EmbedQuery(bg, text)
		if !ok {
			return
		}

		saveCtx, cancel := context.WithTimeout(bg, s.opts.SessionStoreTimeout)
		defer cancel()
		if err := s.prefVectors.UpdatePreferenceEmbedding(saveCtx, sessionId, vec); err != nil {
			s.logger.Warn(recommendationModule, "Failed to store preference vector", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}()
}

func (s *recommendationService) Wait() {
	s.background.Wait()
	s.interactions.Wait()
}
