package response

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/pkg/logger"
	"ai-recommendation-be/pkg/llm"
	"ai-recommendation-be/pkg/llm/langflow"
)

func item(id int64, name string, stock string, categories ...string) *entity.CatalogItem {
	return &entity.CatalogItem{
		ProductId:   id,
		Name:        name,
		Description: name + " description",
		Price:       "100",
		Rating:      4.5,
		StockStatus: stock,
		Categories:  categories,
	}
}

func sampleResults() []entity.RankedResult {
	return []entity.RankedResult{
		{Item: item(42, "Volt X", entity.StockStatusInStock, "scooters", "eco"), Score: 0.93},
		{Item: item(7, "Glide 2", entity.StockStatusOutOfStock, "scooters", "urban"), Score: 0.75},
	}
}

type stubResponder struct {
	reply *Reply
	err   error
	delay time.Duration
}

func (s *stubResponder) Respond(ctx context.Context, req Request) (*Reply, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.reply, s.err
}

func TestFallbackNoResults(t *testing.T) {
	reply := Fallback(Request{Query: "unicorn saddle"})

	assert.Equal(t, SourceFallback, reply.Source)
	assert.Contains(t, reply.Text, "I couldn't find any products matching 'unicorn saddle'")
	assert.Equal(t, []string{"Try more general terms", "Browse by category", "Tell me about your specific needs"}, reply.Suggestions)
}

func TestFallbackTemplateIsDeterministic(t *testing.T) {
	req := Request{Query: "eco scooter", Results: sampleResults()}

	first := Fallback(req)
	second := Fallback(req)

	assert.Equal(t, first, second)
	assert.Equal(t, "I found 2 great options for 'eco scooter'! The top match is Volt X with a 4.5/5 rating.", first.Text)

	laptop := Fallback(Request{Query: "laptop", Results: sampleResults()})
	assert.Equal(t, "Great search! Here are 2 products for 'laptop'. Volt X is highly recommended.", laptop.Text)
}

func TestSuggestions(t *testing.T) {
	suggestions := Suggestions(sampleResults(), nil)
	assert.Equal(t, []string{
		"Also explore: scooters, eco",
		"Set a budget range",
		"1 items available now",
	}, suggestions)

	session := entity.NewSessionContext("s1", time.Now())
	session.BudgetRange = &entity.BudgetRange{Min: 10, Max: 200}
	inStock := sampleResults()[:1]

	assert.Equal(t, []string{"Also explore: scooters, eco", "Show products in my budget"}, Suggestions(inStock, session))
}

func TestBuildContextData(t *testing.T) {
	results := sampleResults()
	results[0].Item.Description = strings.Repeat("a", 250)
	results = append(results,
		entity.RankedResult{Item: item(3, "Third", entity.StockStatusInStock), Score: 0.5},
		entity.RankedResult{Item: item(4, "Fourth", entity.StockStatusInStock), Score: 0.4},
	)

	session := entity.NewSessionContext("s1", time.Now())
	for _, c := range []string{"one", "two", "three", "four"} {
		session.ConversationHistory = append(session.ConversationHistory, entity.ConversationMessage{Role: entity.RoleUser, Content: c})
	}

	data := BuildContextData(Request{Query: "scooter", Results: results, Session: session})

	assert.Equal(t, 4, data.ProductsFound)
	require.Len(t, data.TopProducts, 3)
	assert.Len(t, data.TopProducts[0].Description, 200)
	assert.Equal(t, 0.93, data.TopProducts[0].Similarity)
	require.Len(t, data.ConversationHistory, 3)
	assert.Equal(t, "two", data.ConversationHistory[0].Content)

	anonymous, err := json.Marshal(BuildContextData(Request{Query: "scooter"}))
	require.NoError(t, err)
	assert.NotContains(t, string(anonymous), "conversation_history")
}

func TestGeneratorUsesResponder(t *testing.T) {
	responder := &stubResponder{reply: &Reply{Text: "Try the Volt X.", Source: SourceLangflow}}
	g := NewGenerator(responder, time.Second, logger.NewNopLogger())

	reply := g.Generate(context.Background(), Request{Query: "scooter", Results: sampleResults()})

	assert.Equal(t, "Try the Volt X.", reply.Text)
	assert.Equal(t, SourceLangflow, reply.Source)
	assert.NotNil(t, reply.Suggestions)
}

func TestGeneratorFallsBack(t *testing.T) {
	tests := []struct {
		name      string
		responder Responder
	}{
		{name: "no responder", responder: nil},
		{name: "error", responder: &stubResponder{err: errors.New("connection refused")}},
		{name: "empty text", responder: &stubResponder{reply: &Reply{Text: "  "}}},
		{name: "timeout", responder: &stubResponder{reply: &Reply{Text: "late"}, delay: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(tt.responder, 20*time.Millisecond, logger.NewNopLogger())

			reply := g.Generate(context.Background(), Request{Query: "eco scooter", Results: sampleResults()})

			assert.Equal(t, SourceFallback, reply.Source)
			assert.Contains(t, reply.Text, "Volt X")
		})
	}
}

type stubRunner struct {
	query string
	data  interface{}
}

func (s *stubRunner) Run(ctx context.Context, query string, contextData interface{}) (*langflow.Result, error) {
	s.query = query
	s.data = contextData
	return &langflow.Result{Response: "Flow reply", Suggestions: []string{"More"}}, nil
}

func TestLangflowResponder(t *testing.T) {
	runner := &stubRunner{}
	reply, err := NewLangflowResponder(runner).Respond(context.Background(), Request{Query: "scooter", Results: sampleResults()})

	require.NoError(t, err)
	assert.Equal(t, &Reply{Text: "Flow reply", Suggestions: []string{"More"}, Source: SourceLangflow}, reply)
	assert.Equal(t, "scooter", runner.query)
	assert.IsType(t, ContextData{}, runner.data)
}

type stubChat struct {
	history []llm.Message
}

func (s *stubChat) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.history = history
	return "The Volt X is a great pick.", nil
}

func (s *stubChat) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func TestLLMResponder(t *testing.T) {
	chat := &stubChat{}
	reply, err := NewLLMResponder(chat).Respond(context.Background(), Request{Query: "scooter", Results: sampleResults()})

	require.NoError(t, err)
	assert.Equal(t, SourceLLM, reply.Source)
	assert.Equal(t, "The Volt X is a great pick.", reply.Text)
	assert.Equal(t, Suggestions(sampleResults(), nil), reply.Suggestions)
	require.Len(t, chat.history, 2)
	assert.Contains(t, chat.history[1].Content, `"user_query":"scooter"`)
}
