package model

import "encoding/json"

// EventType tags a PipelineEvent variant.
type EventType string

const (
	EventTypeToken         EventType = "token"
	EventTypeTimeline      EventType = "timeline"
	EventTypeQualityReport EventType = "qualityReport"
	EventTypeError         EventType = "error"
	EventTypeDone          EventType = "done"
)

// PipelineEvent is the wire-level unit emitted to callers. Serialized as
// one JSON object per line; Data is null for done. Exactly one done or one
// error terminates a run; token and timeline may interleave before that.
type PipelineEvent struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// TokenEvent returns a token event carrying a text fragment.
func TokenEvent(text string) PipelineEvent {
	return PipelineEvent{Type: EventTypeToken, Data: text}
}

// TimelineEvent returns a timeline event carrying a validated item.
func TimelineEvent(item TimelineItem) PipelineEvent {
	return PipelineEvent{Type: EventTypeTimeline, Data: item}
}

// ErrorEvent returns a terminal error event with a short human-readable
// message. No internal diagnostics cross this boundary.
func ErrorEvent(message string) PipelineEvent {
	return PipelineEvent{Type: EventTypeError, Data: message}
}

// DoneEvent returns the terminal done event.
func DoneEvent() PipelineEvent {
	return PipelineEvent{Type: EventTypeDone, Data: nil}
}

// QualityReport summarizes the quality-gate stage for one run.
type QualityReport struct {
	Score        int      `json:"score"`
	Passed       bool     `json:"passed"`
	Enhancements []string `json:"enhancements"`
	Stage1Length int      `json:"stage1Length"`
	Stage2Length int      `json:"stage2Length"`
}

// QualityReportEvent returns a qualityReport event.
func QualityReportEvent(report QualityReport) PipelineEvent {
	return PipelineEvent{Type: EventTypeQualityReport, Data: report}
}

// Marshal serializes the event as a single NDJSON line (no trailing newline).
func (e PipelineEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
