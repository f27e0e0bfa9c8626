package internal

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultEndpoint is the standard local Ollama address.
const DefaultEndpoint = "http://localhost:11434"

// ChatRequest describes one inference call.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Options     *ChatOptions
	Temperature *float64 // overrides Options.Temperature when set
}

// Transport is the inference endpoint contract consumed by the registry, the
// turn runner and the metadata generator. Implementations must distinguish
// cancellation (context errors pass through untouched) from other failures
// (wrapped in TransportError).
type Transport interface {
	// ListModels returns the available model identifiers.
	ListModels(ctx context.Context) ([]string, error)
	// Chat performs a blocking completion and returns the full content.
	Chat(ctx context.Context, req ChatRequest) (string, error)
	// ChatStream performs a streaming completion. onChunk is called once per
	// received content fragment, strictly in arrival order; the next fragment
	// is not read until onChunk returns. The accumulated content is returned
	// at stream end. An onChunk error aborts the stream.
	ChatStream(ctx context.Context, req ChatRequest, onChunk func(string) error) (string, error)
}

// OllamaClient talks to an Ollama-compatible endpoint over its native API
// (/api/tags, /api/chat with NDJSON streaming).
type OllamaClient struct {
	base string
	http *http.Client
}

// NewOllamaClient constructs a client for the given base URL.
func NewOllamaClient(base string) *OllamaClient {
	return &OllamaClient{
		base: normalizeBaseURL(base),
		http: &http.Client{Timeout: 300 * time.Second},
	}
}

func normalizeBaseURL(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultEndpoint
	}
	return strings.TrimRight(base, "/")
}

// tagsResponse is a helper for parsing the /api/tags response.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels queries the endpoint for available model identifiers.
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/tags", nil)
	if err != nil {
		return nil, &TransportError{Op: "models", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{Op: "models", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "models", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: "models", Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(raw))}
	}

	var tags tagsResponse
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, &TransportError{Op: "models", Err: err}
	}
	models := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		if m.Name != "" {
			models = append(models, m.Name)
		}
	}
	return models, nil
}

// chatPayload models the /api/chat request body.
type chatPayload struct {
	Model    string                 `json:"model"`
	Messages []Message              `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

// chatChunk models one NDJSON line of the /api/chat response.
type chatChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

func buildOptions(opts *ChatOptions, tempOverride *float64) map[string]interface{} {
	out := map[string]interface{}{}
	if opts != nil {
		if opts.Temperature != nil {
			out["temperature"] = *opts.Temperature
		}
		if opts.TopK != nil {
			out["top_k"] = *opts.TopK
		}
		if opts.TopP != nil {
			out["top_p"] = *opts.TopP
		}
		if opts.RepeatPenalty != nil {
			out["repeat_penalty"] = *opts.RepeatPenalty
		}
		if len(opts.Stop) > 0 {
			out["stop"] = opts.Stop
		}
	}
	if tempOverride != nil {
		out["temperature"] = *tempOverride
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (c *OllamaClient) chatHTTP(ctx context.Context, req ChatRequest, stream bool) (*http.Response, error) {
	payload := chatPayload{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   stream,
		Options:  buildOptions(req.Options, req.Temperature),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Op: "chat", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "chat", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{Op: "chat", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &TransportError{Op: "chat", Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(raw))}
	}
	return resp, nil
}

// Chat performs a single blocking completion.
func (c *OllamaClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := c.chatHTTP(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &TransportError{Op: "chat", Err: err}
	}
	var chunk chatChunk
	if err := json.Unmarshal(raw, &chunk); err != nil {
		return "", &TransportError{Op: "chat", Err: err}
	}
	if chunk.Error != "" {
		return "", &TransportError{Op: "chat", Err: fmt.Errorf("%s", chunk.Error)}
	}
	return chunk.Message.Content, nil
}

// ChatStream performs a streaming completion, delivering content fragments in
// arrival order. The stream is finite and non-restartable; cancellation via
// ctx surfaces as the context's error.
func (c *OllamaClient) ChatStream(ctx context.Context, req ChatRequest, onChunk func(string) error) (string, error) {
	resp, err := c.chatHTTP(ctx, req, true)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var accumulated strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		// Chunks arriving after a stop action must not be committed.
		if ctx.Err() != nil {
			return accumulated.String(), ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk chatChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			LogDebug("Skipping unparseable stream line: %v", err)
			continue
		}
		if chunk.Error != "" {
			return accumulated.String(), &TransportError{Op: "chat", Err: fmt.Errorf("%s", chunk.Error)}
		}
		if chunk.Message.Content != "" {
			accumulated.WriteString(chunk.Message.Content)
			if err := onChunk(chunk.Message.Content); err != nil {
				return accumulated.String(), err
			}
		}
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return accumulated.String(), ctx.Err()
		}
		return accumulated.String(), &TransportError{Op: "chat", Err: err}
	}
	return accumulated.String(), nil
}
