package langflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/run/recommendation_flow", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))

		var req runRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "eco scooter", req.Inputs.Query)
		assert.JSONEq(t, `{"products_found":2}`, req.Inputs.Context)
		assert.NotNil(t, req.Tweaks)

		_, _ = w.Write([]byte(`{"outputs":{"response":"Try the Volt X.","suggestions":["Compare models"]}}`))
	}))
	defer server.Close()

	res, err := NewClient(server.URL+"/", "", "secret").Run(context.Background(), "eco scooter", map[string]int{"products_found": 2})

	require.NoError(t, err)
	assert.Equal(t, "Try the Volt X.", res.Response)
	assert.Equal(t, []string{"Compare models"}, res.Suggestions)
}

func TestClientRunDefaultsMissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"outputs":{}}`))
	}))
	defer server.Close()

	res, err := NewClient(server.URL, "flow", "").Run(context.Background(), "q", nil)

	require.NoError(t, err)
	assert.Equal(t, DefaultResponse, res.Response)
	assert.Empty(t, res.Suggestions)
}

func TestClientRunWithoutOutputs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"session_id":"x"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "flow", "").Run(context.Background(), "q", nil)
	assert.ErrorIs(t, err, ErrNoOutputs)
}

func TestClientRunErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "flow missing", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "flow", "").Run(context.Background(), "q", nil)
	assert.ErrorContains(t, err, "flow missing")
}

func TestClientRunRequiresBaseURL(t *testing.T) {
	_, err := NewClient("", "", "").Run(context.Background(), "q", nil)
	assert.Error(t, err)
}
