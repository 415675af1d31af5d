package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/spectralvoice/hauntify/internal/model"
	"github.com/spectralvoice/hauntify/internal/timeline"
	"github.com/spectralvoice/hauntify/pkg/logger"
	"github.com/spectralvoice/hauntify/pkg/metrics"
	"github.com/spectralvoice/hauntify/pkg/tracing"
)

// DefaultTokenDelay is the artificial pause between re-emitted tokens. The
// quality gate is not streamed by the underlying API, so without this the
// whole enhanced story would arrive in one lump.
const DefaultTokenDelay = 30 * time.Millisecond

// Pipeline sequences the generator and quality gate and re-synthesizes a
// single annotated output stream. Each Run is independent; no state is
// shared across invocations.
type Pipeline struct {
	generator  *Generator
	reviewer   *Reviewer
	tokenDelay time.Duration
	logger     *logger.Logger
	tracer     trace.Tracer
}

// New creates a pipeline. A negative tokenDelay disables the artificial
// pause; zero selects the default.
func New(generator *Generator, reviewer *Reviewer, tokenDelay time.Duration, log *logger.Logger) *Pipeline {
	if tokenDelay == 0 {
		tokenDelay = DefaultTokenDelay
	}
	if tokenDelay < 0 {
		tokenDelay = 0
	}
	return &Pipeline{
		generator:  generator,
		reviewer:   reviewer,
		tokenDelay: tokenDelay,
		logger:     log,
		tracer:     tracing.Tracer("pipeline"),
	}
}

// Run executes the full pipeline for one conversation, returning a channel
// of events. The channel closes after the terminal event, or without one
// if ctx is cancelled. Partial output already emitted is never retracted.
func (p *Pipeline) Run(ctx context.Context, messages []model.ChatMessage) <-chan model.PipelineEvent {
	events := make(chan model.PipelineEvent)
	go p.run(ctx, messages, events)
	return events
}

func (p *Pipeline) run(ctx context.Context, messages []model.ChatMessage, events chan<- model.PipelineEvent) {
	defer close(events)
	metrics.IncrementStreams()
	defer metrics.DecrementStreams()

	ctx, span := p.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	// Stage 1: generate.
	result, genErr := p.generator.Generate(ctx, messages)
	if genErr != nil {
		if result == nil || result.Text == "" {
			p.emit(ctx, events, model.ErrorEvent(genErr.Error()))
			return
		}
		// Degrade: the unenhanced story with its inline markers still
		// reaches the caller.
		p.streamFallback(ctx, events, result.Text)
		return
	}

	// Stage 2: quality gate on the marker-free narrative. Never fails.
	review := p.reviewer.Review(ctx, result.Narrative)
	finalText := review.EnhancedStory

	// Stage 3: re-emit as a synthetic token stream.
	if !p.streamTokens(ctx, events, finalText, p.tokenDelay) {
		return
	}

	// Markers are carried through untouched by the quality pass; parse and
	// validate them only now, deduplicated by (year, title), first wins.
	seen := make(map[model.TimelineKey]struct{})
	for _, blob := range result.Markers {
		item, err := timeline.ParseItem(timeline.PayloadOf(blob))
		if err != nil {
			p.logger.Warn("dropping invalid timeline marker", "error", err, "blob", blob)
			metrics.TimelineEvents.WithLabelValues("invalid").Inc()
			continue
		}
		if _, dup := seen[item.Key()]; dup {
			metrics.TimelineEvents.WithLabelValues("duplicate").Inc()
			continue
		}
		seen[item.Key()] = struct{}{}
		metrics.TimelineEvents.WithLabelValues("emitted").Inc()
		if !p.emit(ctx, events, model.TimelineEvent(item)) {
			return
		}
	}

	report := model.QualityReport{
		Score:        review.Score,
		Passed:       review.Passed,
		Enhancements: review.Enhancements,
		Stage1Length: len(result.Text),
		Stage2Length: len(finalText),
	}
	if !p.emit(ctx, events, model.QualityReportEvent(report)) {
		return
	}
	p.emit(ctx, events, model.DoneEvent())
}

// streamFallback re-streams raw stage-one text, token by token with no
// delay, through the incremental extractor so inline markers still surface
// as timeline events.
func (p *Pipeline) streamFallback(ctx context.Context, events chan<- model.PipelineEvent, raw string) {
	extractor := timeline.NewExtractor(p.logger)
	for _, token := range splitTokens(raw) {
		if !p.emit(ctx, events, model.TokenEvent(token)) {
			return
		}
		metrics.TokensEmitted.Inc()
		for _, item := range extractor.Feed(token) {
			if !p.emit(ctx, events, model.TimelineEvent(item)) {
				return
			}
		}
	}
	p.emit(ctx, events, model.DoneEvent())
}

// streamTokens emits text split on single spaces, pausing between tokens.
// Returns false if the run was cancelled mid-stream.
func (p *Pipeline) streamTokens(ctx context.Context, events chan<- model.PipelineEvent, text string, delay time.Duration) bool {
	for i, token := range splitTokens(text) {
		if i > 0 && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return false
			}
		}
		if !p.emit(ctx, events, model.TokenEvent(token)) {
			return false
		}
		metrics.TokensEmitted.Inc()
	}
	return true
}

// emit sends one event unless the run has been cancelled. Cancellation
// suppresses all further output, including terminal events.
func (p *Pipeline) emit(ctx context.Context, events chan<- model.PipelineEvent, ev model.PipelineEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
