package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spectralvoice/hauntify/internal/llm"
	"github.com/spectralvoice/hauntify/internal/model"
	"github.com/spectralvoice/hauntify/pkg/logger"
)

type fakeStreamingClient struct {
	text string
	err  error
}

func (f *fakeStreamingClient) CompleteStream(ctx context.Context, req *llm.CompletionRequest, callback llm.StreamCallback) (*llm.CompletionResponse, error) {
	for i, tok := range strings.SplitAfter(f.text, " ") {
		if err := callback(tok, i); err != nil {
			return nil, err
		}
	}
	return &llm.CompletionResponse{Content: f.text, StopReason: "stop"}, f.err
}

func newTestPipeline(gen llm.StreamingClient, reviewContent string, reviewErr error) *Pipeline {
	log := logger.NewNop()
	g := NewGenerator(gen, "", log)
	r := NewReviewer(&fakeCompletionClient{content: reviewContent, err: reviewErr}, "", log)
	return New(g, r, -1, log) // negative delay: no artificial pause in tests
}

func collect(t *testing.T, events <-chan model.PipelineEvent) []model.PipelineEvent {
	t.Helper()
	var out []model.PipelineEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("timed out collecting events, got %d so far", len(out))
		}
	}
}

func userMessages(content string) []model.ChatMessage {
	return []model.ChatMessage{{Role: model.RoleUser, Content: content}}
}

func TestRunHappyPathOrdering(t *testing.T) {
	t.Parallel()

	story := `In the year 1888, in London, the fog came alive. ##TIMELINE## {"year": 1888, "title": "The Fog", "desc": "It moved against the wind.", "place": "London"} No one walked alone after that.`
	enhanced := "In the year 1888, in London, the fog came alive and hunted."

	gen := &fakeStreamingClient{text: story}
	verdict := `{"score": 8, "passed": true, "enhancedStory": "` + enhanced + `", "enhancements": ["tightened"]}`
	p := newTestPipeline(gen, verdict, nil)

	events := collect(t, p.Run(context.Background(), userMessages("tell me a story")))
	if len(events) == 0 {
		t.Fatal("no events emitted")
	}

	// Token events reconstruct the final text exactly.
	var rebuilt strings.Builder
	var sawTimeline, sawReport bool
	for i, ev := range events {
		switch ev.Type {
		case model.EventTypeToken:
			if sawReport {
				t.Errorf("token event %d after quality report", i)
			}
			rebuilt.WriteString(ev.Data.(string))
		case model.EventTypeTimeline:
			sawTimeline = true
		case model.EventTypeQualityReport:
			sawReport = true
		case model.EventTypeError:
			t.Fatalf("unexpected error event: %v", ev.Data)
		}
	}
	if rebuilt.String() != enhanced {
		t.Errorf("token reconstruction mismatch:\ngot  %q\nwant %q", rebuilt.String(), enhanced)
	}
	if !sawTimeline {
		t.Error("no timeline event emitted")
	}
	if !sawReport {
		t.Error("no quality report emitted")
	}

	// Exactly one terminal event, and it is last.
	last := events[len(events)-1]
	if last.Type != model.EventTypeDone {
		t.Errorf("last event is %s, want done", last.Type)
	}
	for i, ev := range events[:len(events)-1] {
		if ev.Type == model.EventTypeDone || ev.Type == model.EventTypeError {
			t.Errorf("terminal event at position %d before end", i)
		}
	}
}

func TestRunQualityReportContents(t *testing.T) {
	t.Parallel()

	story := "A short haunted story."
	gen := &fakeStreamingClient{text: story}
	verdict := `{"score": 8, "passed": true, "enhancedStory": "Shorter still.", "enhancements": ["cut"]}`
	p := newTestPipeline(gen, verdict, nil)

	events := collect(t, p.Run(context.Background(), userMessages("go")))

	var report *model.QualityReport
	for _, ev := range events {
		if ev.Type == model.EventTypeQualityReport {
			r := ev.Data.(model.QualityReport)
			report = &r
		}
	}
	if report == nil {
		t.Fatal("no quality report emitted")
	}
	if report.Score != 8 || !report.Passed {
		t.Errorf("unexpected report verdict: %+v", report)
	}
	if report.Stage1Length != len(story) {
		t.Errorf("stage1Length = %d, want %d", report.Stage1Length, len(story))
	}
	if report.Stage2Length != len("Shorter still.") {
		t.Errorf("stage2Length = %d, want %d", report.Stage2Length, len("Shorter still."))
	}
}

func TestRunTimelineDedupAcrossMarkers(t *testing.T) {
	t.Parallel()

	story := `One. ##TIMELINE## {"year": 1693, "title": "The Trial", "desc": "first"} Two. ##TIMELINE## {"year": 1693, "title": "The Trial", "desc": "again"} Three.`
	gen := &fakeStreamingClient{text: story}
	verdict := `{"score": 8, "passed": true, "enhancedStory": "One. Two.", "enhancements": []}`
	p := newTestPipeline(gen, verdict, nil)

	events := collect(t, p.Run(context.Background(), userMessages("go")))

	var items []model.TimelineItem
	for _, ev := range events {
		if ev.Type == model.EventTypeTimeline {
			items = append(items, ev.Data.(model.TimelineItem))
		}
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 deduplicated timeline event, got %d", len(items))
	}
	if items[0].Description != "first" {
		t.Errorf("first occurrence did not win: %q", items[0].Description)
	}
}

func TestRunInvalidMarkerDropped(t *testing.T) {
	t.Parallel()

	story := `Story. ##TIMELINE## {"year": "not a number", "title": "Bad", "desc": "d"} More story.`
	gen := &fakeStreamingClient{text: story}
	verdict := `{"score": 8, "passed": true, "enhancedStory": "Story. More.", "enhancements": []}`
	p := newTestPipeline(gen, verdict, nil)

	events := collect(t, p.Run(context.Background(), userMessages("go")))

	for _, ev := range events {
		if ev.Type == model.EventTypeTimeline {
			t.Fatalf("invalid marker emitted as timeline event: %+v", ev.Data)
		}
		if ev.Type == model.EventTypeError {
			t.Fatalf("invalid marker escalated to error: %v", ev.Data)
		}
	}
	if events[len(events)-1].Type != model.EventTypeDone {
		t.Error("run did not complete normally")
	}
}

func TestRunGeneratorFailureWithPartialText(t *testing.T) {
	t.Parallel()

	partial := `The candle guttered. ##TIMELINE## {"year": 1900, "title": "The Candle", "desc": "d"} And then`
	gen := &fakeStreamingClient{text: partial, err: errors.New("stream aborted")}
	p := newTestPipeline(gen, "", errors.New("reviewer must not be called"))

	events := collect(t, p.Run(context.Background(), userMessages("go")))

	var rebuilt strings.Builder
	var sawTimeline bool
	for _, ev := range events {
		switch ev.Type {
		case model.EventTypeToken:
			rebuilt.WriteString(ev.Data.(string))
		case model.EventTypeTimeline:
			sawTimeline = true
		case model.EventTypeError:
			t.Fatalf("partial text degraded to error event: %v", ev.Data)
		}
	}
	// The raw stage-one text, markers included, reaches the caller.
	if rebuilt.String() != partial {
		t.Errorf("fallback reconstruction mismatch:\ngot  %q\nwant %q", rebuilt.String(), partial)
	}
	if !sawTimeline {
		t.Error("fallback stream lost the timeline event")
	}
	if events[len(events)-1].Type != model.EventTypeDone {
		t.Error("fallback stream missing done terminal")
	}
}

func TestRunGeneratorFailureNoText(t *testing.T) {
	t.Parallel()

	gen := &fakeStreamingClient{text: "", err: errors.New("connection refused")}
	p := newTestPipeline(gen, "", nil)

	events := collect(t, p.Run(context.Background(), userMessages("go")))
	if len(events) != 1 {
		t.Fatalf("expected exactly one error event, got %d events", len(events))
	}
	if events[0].Type != model.EventTypeError {
		t.Errorf("got %s, want error", events[0].Type)
	}
}

func TestRunReviewerFailureStillCompletes(t *testing.T) {
	t.Parallel()

	story := "The original story survives reviewer outages."
	gen := &fakeStreamingClient{text: story}
	p := newTestPipeline(gen, "", errors.New("reviewer down"))

	events := collect(t, p.Run(context.Background(), userMessages("go")))

	var rebuilt strings.Builder
	var report *model.QualityReport
	for _, ev := range events {
		switch ev.Type {
		case model.EventTypeToken:
			rebuilt.WriteString(ev.Data.(string))
		case model.EventTypeQualityReport:
			r := ev.Data.(model.QualityReport)
			report = &r
		case model.EventTypeError:
			t.Fatalf("reviewer failure escalated to error: %v", ev.Data)
		}
	}
	if rebuilt.String() != story {
		t.Errorf("original story not streamed: %q", rebuilt.String())
	}
	if report == nil {
		t.Fatal("no quality report on fallback")
	}
	if report.Score != 7 || !report.Passed {
		t.Errorf("fallback report not neutral-passing: %+v", report)
	}
}

func TestRunCancellationSuppressesTerminal(t *testing.T) {
	t.Parallel()

	// A long story with delay keeps the stream busy long enough to cancel
	// mid-flight.
	story := strings.Repeat("word ", 200) + "end"
	gen := &fakeStreamingClient{text: story}
	verdict := `{"score": 8, "passed": true, "enhancedStory": "` + story + `", "enhancements": []}`
	log := logger.NewNop()
	p := New(NewGenerator(gen, "", log), NewReviewer(&fakeCompletionClient{content: verdict}, "", log), 5*time.Millisecond, log)

	ctx, cancel := context.WithCancel(context.Background())
	events := p.Run(ctx, userMessages("go"))

	count := 0
	for ev := range events {
		if ev.Type == model.EventTypeDone || ev.Type == model.EventTypeError {
			t.Fatalf("terminal event emitted after cancellation scenario: %s", ev.Type)
		}
		count++
		if count == 5 {
			cancel()
		}
	}
	if count >= 200 {
		t.Errorf("stream did not stop promptly after cancel: %d events", count)
	}
	cancel()
}
