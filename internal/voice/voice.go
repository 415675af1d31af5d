// Package voice converts narrative text to audio through pluggable
// text-to-speech providers.
package voice

import (
	"context"
	"errors"
	"strings"
)

// ErrQuotaExceeded signals the provider refused synthesis for billing
// reasons; callers surface this distinctly so the UI can fall back to
// browser speech.
var ErrQuotaExceeded = errors.New("voice provider quota exceeded")

// Result is synthesized audio plus a rough duration estimate.
type Result struct {
	Audio    []byte
	MimeType string
	// DurationSec is estimated from word count at narration pace; the
	// providers do not report exact durations.
	DurationSec float64
}

// Synthesizer converts text to audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*Result, error)
	Name() string
}

// estimateDuration approximates narration length at ~150 words per minute.
func estimateDuration(text string) float64 {
	words := len(strings.Fields(text))
	return float64(words) / 150.0 * 60.0
}
