// Package langflow calls a hosted Langflow flow that phrases recommendation replies.
package langflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultFlowID   = "recommendation_flow"
	DefaultResponse = "I found some products for you!"
)

// ErrNoOutputs is returned when the flow answered without an outputs object.
var ErrNoOutputs = errors.New("langflow response has no outputs")

type Client struct {
	BaseURL string
	FlowID  string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, flowID, apiKey string) *Client {
	if flowID == "" {
		flowID = DefaultFlowID
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		FlowID:  flowID,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

type runRequest struct {
	Inputs runInputs              `json:"inputs"`
	Tweaks map[string]interface{} `json:"tweaks"`
}

type runInputs struct {
	Query   string `json:"query"`
	Context string `json:"context"`
}

type runResponse struct {
	Outputs *struct {
		Response    *string  `json:"response"`
		Suggestions []string `json:"suggestions"`
	} `json:"outputs"`
}

// Result is the reply extracted from a flow run.
type Result struct {
	Response    string
	Suggestions []string
}

// Run executes the flow with the query and a JSON-encoded context document.
func (c *Client) Run(ctx context.Context, query string, contextData interface{}) (*Result, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("langflow base url is not configured")
	}

	encoded, err := json.Marshal(contextData)
	if err != nil {
		return nil, fmt.Errorf("marshal context: %w", err)
	}

	payload, err := json.Marshal(runRequest{
		Inputs: runInputs{Query: query, Context: string(encoded)},
		Tweaks: map[string]interface{}{},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/run/%s", c.BaseURL, c.FlowID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("langflow request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("langflow error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var out runResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if out.Outputs == nil {
		return nil, ErrNoOutputs
	}

	result := &Result{Response: DefaultResponse, Suggestions: out.Outputs.Suggestions}
	if out.Outputs.Response != nil && strings.TrimSpace(*out.Outputs.Response) != "" {
		result.Response = *out.Outputs.Response
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}
	return result, nil
}
