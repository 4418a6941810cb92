package llm

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/harrisonrobin/morrow/pkg/errs"
)

const anthropicAPIVersion = "2023-06-01"

// AnthropicClient speaks the messages API wire shape.
type AnthropicClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewAnthropicClient(baseURL, model, apiKey string) *AnthropicClient {
	return &AnthropicClient{
		baseURL:    baseURL,
		model:      model,
		apiKey:     apiKey,
		httpClient: newHTTPClient(),
	}
}

func (c *AnthropicClient) Name() string { return "anthropic" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	body := anthropicRequest{
		Model:     c.model,
		MaxTokens: 4096,
		System:    req.System,
		Messages:  []anthropicMessage{{Role: "user", Content: req.User}},
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicAPIVersion,
	}

	raw, err := postJSON(ctx, c.httpClient, c.baseURL+"/messages", headers, body)
	if err != nil {
		return "", err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", errs.Wrap(errs.CodeLLMPermanent, "invalid response format", err)
	}
	if len(resp.Content) == 0 {
		return "", errs.New(errs.CodeLLMPermanent, "response contains no content")
	}
	return resp.Content[0].Text, nil
}
