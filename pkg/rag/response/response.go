// Package response phrases the conversational reply that accompanies a list
// of recommendations.
package response

import (
	"context"
	"strings"
	"time"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/metrics"
	"ai-recommendation-be/internal/pkg/logger"
)

const module = "RESPONSE"

const (
	SourceLangflow = "langflow"
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// Request is everything a responder may look at. Session is nil for
// anonymous or brand new sessions.
type Request struct {
	Query   string
	Results []entity.RankedResult
	Session *entity.SessionContext
}

type Reply struct {
	Text        string
	Suggestions []string
	Source      string
}

// Responder produces a reply through some external collaborator.
type Responder interface {
	Respond(ctx context.Context, req Request) (*Reply, error)
}

// Generator asks its responder for a reply and falls back to the templated
// reply on error, timeout or an empty answer. Generate never fails.
type Generator struct {
	responder Responder
	timeout   time.Duration
	logger    logger.ILogger
}

// NewGenerator accepts a nil responder, in which case every reply is templated.
func NewGenerator(responder Responder, timeout time.Duration, logger logger.ILogger) *Generator {
	return &Generator{
		responder: responder,
		timeout:   timeout,
		logger:    logger,
	}
}

func (g *Generator) Generate(ctx context.Context, req Request) Reply {
	if g.responder == nil {
		return g.fallback(req)
	}

	start := time.Now()
	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	reply, err := g.responder.Respond(callCtx, req)
	metrics.StageLatency.WithLabelValues("respond").Observe(time.Since(start).Seconds())

	if err != nil || reply == nil || strings.TrimSpace(reply.Text) == "" {
		details := map[string]interface{}{"query": req.Query}
		if err != nil {
			details["error"] = err.Error()
		}
		g.logger.Warn(module, "Responder unavailable, using templated reply", details)
		metrics.UpstreamFailures.WithLabelValues("responder").Inc()
		return g.fallback(req)
	}

	if reply.Suggestions == nil {
		reply.Suggestions = []string{}
	}
	return *reply
}

func (g *Generator) fallback(req Request) Reply {
	metrics.FallbackResponses.Inc()
	return Fallback(req)
}
