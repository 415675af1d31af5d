package llm

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/spectralvoice/hauntify/pkg/logger"
)

// streamDoneSentinel is the literal termination payload sent by
// OpenAI-compatible streaming endpoints.
const streamDoneSentinel = "[DONE]"

const dataPrefix = "data: "

// StreamDecoder converts a raw SSE-framed completion stream into discrete
// token deltas. It is non-restartable: one decoder per response body.
type StreamDecoder struct {
	reader io.Reader
	logger *logger.Logger

	// partial holds the trailing incomplete line between reads.
	partial string
}

// NewStreamDecoder creates a decoder over a raw response body.
func NewStreamDecoder(r io.Reader, log *logger.Logger) *StreamDecoder {
	return &StreamDecoder{reader: r, logger: log}
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Decode reads the stream to completion, invoking onToken for every
// non-empty content delta in arrival order. A nil return means the stream
// ended cleanly; callers must treat any error, including context
// cancellation, as an absent terminal marker.
func (d *StreamDecoder) Decode(ctx context.Context, onToken func(delta string) error) error {
	buf := make([]byte, 4096)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := d.reader.Read(buf)
		if n > 0 {
			d.partial += string(buf[:n])
			lines := strings.Split(d.partial, "\n")
			d.partial = lines[len(lines)-1]
			for _, line := range lines[:len(lines)-1] {
				if tokenErr := d.processLine(line, onToken); tokenErr != nil {
					return tokenErr
				}
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// processLine handles one complete SSE line. Malformed payloads are logged
// and skipped, never fatal; only callback errors propagate.
func (d *StreamDecoder) processLine(line string, onToken func(delta string) error) error {
	line = strings.TrimRight(line, "\r")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, ":") {
		// Blank separator or provider keepalive comment.
		return nil
	}
	if !strings.HasPrefix(line, dataPrefix) {
		return nil
	}

	payload := strings.TrimSpace(line[len(dataPrefix):])
	if payload == streamDoneSentinel {
		return nil
	}

	var chunk streamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		d.logger.Warn("skipping malformed stream line", "line", truncate(payload, 200))
		return nil
	}

	if len(chunk.Choices) == 0 {
		return nil
	}
	delta := chunk.Choices[0].Delta.Content
	if delta == "" {
		return nil
	}
	return onToken(delta)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
