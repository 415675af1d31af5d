// Package pipeline implements the two-stage story generation pipeline:
// a streaming generator, a request/response quality gate, and the
// orchestrator that re-synthesizes a single annotated output stream.
package pipeline

import (
	"context"
	"time"

	"github.com/spectralvoice/hauntify/internal/llm"
	"github.com/spectralvoice/hauntify/internal/model"
	"github.com/spectralvoice/hauntify/internal/timeline"
	"github.com/spectralvoice/hauntify/pkg/logger"
	"github.com/spectralvoice/hauntify/pkg/metrics"
)

// DefaultGeneratorModel is the stage-one story model.
const DefaultGeneratorModel = "llama-3.3-70b-versatile"

const (
	generatorTemperature = 0.8
	generatorMaxTokens   = 600
	generatorTopP        = 0.9
)

// GenerationResult is the accumulated output of the generator stage.
type GenerationResult struct {
	// Text is the complete raw output, markers included.
	Text string
	// Narrative is the marker-free story sent to the quality gate.
	Narrative string
	// Markers holds the raw marker blobs verbatim, set aside for
	// re-attachment after the quality pass.
	Markers []string
}

// Generator is the streaming first stage.
type Generator struct {
	client llm.StreamingClient
	model  string
	logger *logger.Logger
}

// NewGenerator creates the generator stage.
func NewGenerator(client llm.StreamingClient, modelName string, log *logger.Logger) *Generator {
	if modelName == "" {
		modelName = DefaultGeneratorModel
	}
	return &Generator{client: client, model: modelName, logger: log}
}

// BuildRequest constructs the immutable stage-one request, placing the
// fixed system instructions in the first message slot.
func (g *Generator) BuildRequest(messages []model.ChatMessage) *llm.CompletionRequest {
	wire := make([]llm.ChatMessage, 0, len(messages)+1)
	wire = append(wire, llm.ChatMessage{Role: string(model.RoleSystem), Content: storytellerPrompt})
	wire = append(wire, llm.MessagesToWire(messages)...)

	return &llm.CompletionRequest{
		Model:       g.model,
		Messages:    wire,
		MaxTokens:   generatorMaxTokens,
		Temperature: generatorTemperature,
		TopP:        generatorTopP,
		Stream:      true,
	}
}

// Generate runs the stream to completion and accumulates the full text.
// On stream failure the partial result is returned alongside the error so
// the orchestrator can degrade to re-streaming what already arrived.
func (g *Generator) Generate(ctx context.Context, messages []model.ChatMessage) (*GenerationResult, error) {
	start := time.Now()
	req := g.BuildRequest(messages)

	resp, err := g.client.CompleteStream(ctx, req, func(token string, index int) error {
		return nil
	})

	var text string
	if resp != nil {
		text = resp.Content
	}
	result := &GenerationResult{Text: text}
	result.Markers, result.Narrative = timeline.ExtractMarkers(text)

	if err != nil {
		metrics.RecordStage("generate", "error", time.Since(start).Seconds())
		g.logger.Error("story generation failed", "error", err, "partial_chars", len(text))
		return result, err
	}

	metrics.RecordStage("generate", "success", time.Since(start).Seconds())
	g.logger.Info("story generated",
		"chars", len(text),
		"markers", len(result.Markers),
		"model", g.model,
	)
	return result, nil
}
