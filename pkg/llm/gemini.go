package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/harrisonrobin/morrow/pkg/errs"
)

// GeminiClient speaks the generateContent wire shape. Gemini has no
// separate system role here; system and user prompts are joined into a
// single text part.
type GeminiClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewGeminiClient(baseURL, model, apiKey string) *GeminiClient {
	return &GeminiClient{
		baseURL:    baseURL,
		model:      model,
		apiKey:     apiKey,
		httpClient: newHTTPClient(),
	}
}

func (c *GeminiClient) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: req.System + "\n\n" + req.User}}},
		},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))
	raw, err := postJSON(ctx, c.httpClient, endpoint, nil, body)
	if err != nil {
		return "", err
	}

	var resp geminiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", errs.Wrap(errs.CodeLLMPermanent, "invalid response format", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errs.New(errs.CodeLLMPermanent, "response contains no candidates")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
