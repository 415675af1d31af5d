package timeline

import (
	"strings"

	"github.com/spectralvoice/hauntify/internal/model"
	"github.com/spectralvoice/hauntify/pkg/logger"
	"github.com/spectralvoice/hauntify/pkg/metrics"
)

const (
	// maxBuffer is the ceiling past which an idle buffer is pruned.
	maxBuffer = 5000
	// keepWindow is the trailing window retained after pruning.
	keepWindow = 2000
)

// Extractor incrementally detects timeline markers in a live token stream.
// Token boundaries from the model do not respect line or JSON boundaries,
// so the extractor accumulates a bounded buffer and scans for balanced
// payloads as tokens arrive. One extractor per stream; not safe for
// concurrent use.
type Extractor struct {
	buffer string
	seen   map[model.TimelineKey]struct{}
	logger *logger.Logger
}

// NewExtractor creates an extractor for a single stream.
func NewExtractor(log *logger.Logger) *Extractor {
	return &Extractor{
		seen:   make(map[model.TimelineKey]struct{}),
		logger: log,
	}
}

// Feed appends one token's text and returns every newly completed,
// validated, not-yet-seen timeline item. Malformed payloads are dropped
// and the buffer advanced past the offending sentinel so the same text is
// never re-matched.
func (e *Extractor) Feed(token string) []model.TimelineItem {
	e.buffer += token

	var items []model.TimelineItem
	for {
		markerIdx := strings.Index(e.buffer, Marker)
		if markerIdx == -1 {
			break
		}

		open := strings.Index(e.buffer[markerIdx+len(Marker):], "{")
		if open == -1 {
			// Sentinel seen, payload not started yet.
			break
		}
		open += markerIdx + len(Marker)

		end := scanPayload(e.buffer, open)
		if end == -1 {
			// Payload still open; wait for more tokens.
			break
		}

		payload := strings.TrimSpace(e.buffer[open : end+1])
		item, err := ParseItem(payload)
		if err != nil {
			e.logger.Warn("dropping invalid timeline payload", "error", err, "payload", payload)
			metrics.TimelineEvents.WithLabelValues("invalid").Inc()
			e.buffer = e.buffer[markerIdx+len(Marker):]
			continue
		}

		e.buffer = e.buffer[end+1:]
		if _, dup := e.seen[item.Key()]; dup {
			metrics.TimelineEvents.WithLabelValues("duplicate").Inc()
			continue
		}
		e.seen[item.Key()] = struct{}{}
		metrics.TimelineEvents.WithLabelValues("emitted").Inc()
		items = append(items, item)
	}

	// Prune pathological streams that never produce a marker.
	if len(e.buffer) > maxBuffer && !strings.Contains(e.buffer, Marker) {
		e.buffer = e.buffer[len(e.buffer)-keepWindow:]
	}

	return items
}

// Wrap transforms a live event stream: every input event passes through
// unchanged, and timeline events are injected at the earliest point a
// complete marker payload has accumulated. The returned channel closes
// when the input closes.
func (e *Extractor) Wrap(in <-chan model.PipelineEvent) <-chan model.PipelineEvent {
	out := make(chan model.PipelineEvent)
	go func() {
		defer close(out)
		for ev := range in {
			out <- ev
			if ev.Type != model.EventTypeToken {
				continue
			}
			text, ok := ev.Data.(string)
			if !ok {
				continue
			}
			for _, item := range e.Feed(text) {
				out <- model.TimelineEvent(item)
			}
		}
	}()
	return out
}
