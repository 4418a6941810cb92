// Package llm provides a uniform completion interface over the supported
// LLM backends. Variants differ only in wire shape; selection happens
// once at startup in New.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harrisonrobin/morrow/pkg/errs"
)

// completionTimeout bounds a single completion round trip.
const completionTimeout = 2 * time.Minute

// Request is a planning completion request. Model and endpoint are fixed
// when the client is constructed.
type Request struct {
	System string
	User   string
}

// Client is the one capability the pipeline needs from a backend.
type Client interface {
	// Name returns the backend name (openai, anthropic, gemini).
	Name() string

	// Complete sends the request and returns the model's raw text with
	// no interpretation.
	Complete(ctx context.Context, req Request) (string, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: completionTimeout}
}

// postJSON sends a JSON request and returns the response body. Non-2xx
// statuses are classified: 429 and 5xx are transient, everything else
// (bad key, malformed request) is permanent.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errs.Wrap(errs.CodeLLMPermanent, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errs.Wrap(errs.CodeLLMPermanent, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.Transient(errs.CodeLLMTransient, "request failed", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Transient(errs.CodeLLMTransient, "failed to read response", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return text, nil
	}

	msg := fmt.Sprintf("API error %d: %s", resp.StatusCode, truncate(string(text), 500))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, errs.Transient(errs.CodeLLMTransient, msg, nil)
	}
	return nil, errs.New(errs.CodeLLMPermanent, msg)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
