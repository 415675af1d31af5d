// Package llm provides chat-completion client interfaces and implementations.
package llm

import (
	"context"

	"github.com/spectralvoice/hauntify/internal/model"
)

// StreamCallback is called for each token during streaming.
type StreamCallback func(token string, index int) error

// CompletionRequest represents a chat-completion request. Built once per
// pipeline invocation and not mutated afterwards.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
	TopP        float64
	Stream      bool
}

// ChatMessage represents a chat message in provider wire format.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	StopReason string
	LatencyMs  int64
}

// StreamingClient produces tokens incrementally. The generator stage of the
// pipeline depends on this capability only.
type StreamingClient interface {
	// CompleteStream sends a streaming completion request, invoking the
	// callback once per token in arrival order. A callback error aborts
	// the stream and is returned unchanged.
	CompleteStream(ctx context.Context, req *CompletionRequest, callback StreamCallback) (*CompletionResponse, error)
}

// CompletionClient performs a single request/response completion. The
// quality-gate stage of the pipeline depends on this capability only.
type CompletionClient interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// Provider is the type of completion provider for the quality gate.
type Provider string

const (
	ProviderOpenAICompat Provider = "openai"
	ProviderAnthropic    Provider = "anthropic"
)

// NewCompletionClient creates a quality-gate client for the given provider.
func NewCompletionClient(provider Provider, apiKey, baseURL string) (CompletionClient, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey)
	default:
		return NewOpenAICompatClient(apiKey, baseURL)
	}
}

// MessagesToWire converts caller-owned conversation messages to provider
// wire format, dropping timestamps.
func MessagesToWire(messages []model.ChatMessage) []ChatMessage {
	wire := make([]ChatMessage, len(messages))
	for i, msg := range messages {
		wire[i] = ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	return wire
}
