package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spectralvoice/hauntify/pkg/logger"
)

// DefaultGroqBaseURL is the Groq OpenAI-compatible API base.
const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient is a streaming chat-completion client for the Groq API. It
// speaks the wire protocol directly so the stream decoder owns the SSE
// framing end to end.
type GroqClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewGroqClient creates a new Groq streaming client.
func NewGroqClient(apiKey, baseURL string, log *logger.Logger) (*GroqClient, error) {
	if apiKey == "" {
		return nil, errors.New("Groq API key is required")
	}
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	return &GroqClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     log,
	}, nil
}

// Name returns the provider name.
func (c *GroqClient) Name() string {
	return "groq"
}

type groqCompletionBody struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
}

// CompleteStream sends a streaming completion request, decoding the raw
// SSE response into per-token callbacks.
func (c *GroqClient) CompleteStream(ctx context.Context, req *CompletionRequest, callback StreamCallback) (*CompletionResponse, error) {
	start := time.Now()

	body, err := json.Marshal(groqCompletionBody{
		Model:       req.Model,
		Messages:    req.Messages,
		Stream:      true,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("groq request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("groq API error: %d %s", resp.StatusCode, string(detail))
	}

	var content string
	index := 0
	decoder := NewStreamDecoder(resp.Body, c.logger)
	err = decoder.Decode(ctx, func(delta string) error {
		content += delta
		if cbErr := callback(delta, index); cbErr != nil {
			return cbErr
		}
		index++
		return nil
	})
	if err != nil {
		// Partial content is still returned so the caller can degrade
		// to re-streaming what already arrived.
		return &CompletionResponse{
			Content:   content,
			Model:     req.Model,
			LatencyMs: time.Since(start).Milliseconds(),
		}, err
	}

	return &CompletionResponse{
		Content:    content,
		Model:      req.Model,
		StopReason: "stop",
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
