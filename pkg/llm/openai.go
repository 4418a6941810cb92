package llm

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/harrisonrobin/morrow/pkg/errs"
)

// OpenAIClient speaks the chat completions wire shape. The base URL is
// configurable so OpenAI-compatible gateways work unchanged.
type OpenAIClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewOpenAIClient(baseURL, model, apiKey string) *OpenAIClient {
	return &OpenAIClient{
		baseURL:    baseURL,
		model:      model,
		apiKey:     apiKey,
		httpClient: newHTTPClient(),
	}
}

func (c *OpenAIClient) Name() string { return "openai" }

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openaiResponse struct {
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	body := openaiRequest{
		Model: c.model,
		Messages: []openaiMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: 0.7,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	raw, err := postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions", headers, body)
	if err != nil {
		return "", err
	}

	var resp openaiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", errs.Wrap(errs.CodeLLMPermanent, "invalid response format", err)
	}
	if len(resp.Choices) == 0 {
		return "", errs.New(errs.CodeLLMPermanent, "response contains no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
