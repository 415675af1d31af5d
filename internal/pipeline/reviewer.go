package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spectralvoice/hauntify/internal/llm"
	"github.com/spectralvoice/hauntify/pkg/logger"
	"github.com/spectralvoice/hauntify/pkg/metrics"
)

// DefaultReviewerModel is the stage-two quality-gate model.
const DefaultReviewerModel = "openai/gpt-oss-120b"

const (
	reviewerTemperature = 0.3
	reviewerMaxTokens   = 800

	// maxEnhancedWords is the hard ceiling on enhanced output regardless
	// of the original's length.
	maxEnhancedWords = 300
	// maxEnhancedParagraphs bounds the enhanced output's structure.
	maxEnhancedParagraphs = 2

	neutralScore = 7
)

// QualityCheckResult is the quality gate's verdict. EnhancedStory is
// guaranteed never longer than the reviewed input, regardless of model
// behavior.
type QualityCheckResult struct {
	Score         int      `json:"score"`
	Passed        bool     `json:"passed"`
	EnhancedStory string   `json:"enhancedStory"`
	Enhancements  []string `json:"enhancements"`
}

// Reviewer is the request/response second stage.
type Reviewer struct {
	client llm.CompletionClient
	model  string
	logger *logger.Logger
}

// NewReviewer creates the quality-gate stage.
func NewReviewer(client llm.CompletionClient, modelName string, log *logger.Logger) *Reviewer {
	if modelName == "" {
		modelName = DefaultReviewerModel
	}
	return &Reviewer{client: client, model: modelName, logger: log}
}

// Review scores the story and optionally substitutes an enhanced version.
// It never fails: transport errors, malformed verdicts, and length or
// paragraph violations all fall back to the original text with a neutral
// passing score, annotated in Enhancements.
func (r *Reviewer) Review(ctx context.Context, story string) *QualityCheckResult {
	start := time.Now()
	originalWords := WordCount(story)

	resp, err := r.client.Complete(ctx, &llm.CompletionRequest{
		Model: r.model,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: reviewerPrompt},
			{Role: "user", Content: fmt.Sprintf(
				"ORIGINAL WORD COUNT: %d words. Your enhanced story MUST be <= %d words.\n\nReview and enhance this horror story if needed:\n\n%s",
				originalWords, originalWords, story,
			)},
		},
		MaxTokens:   reviewerMaxTokens,
		Temperature: reviewerTemperature,
	})
	if err != nil {
		r.logger.Warn("quality gate call failed, using original story", "error", err)
		metrics.RecordStage("review", "error", time.Since(start).Seconds())
		metrics.QualityRejections.WithLabelValues("transport_error").Inc()
		return fallbackResult(story, "quality check failed, using original story")
	}

	var result QualityCheckResult
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &result); err != nil {
		r.logger.Warn("quality gate returned unparseable verdict", "error", err)
		metrics.RecordStage("review", "error", time.Since(start).Seconds())
		metrics.QualityRejections.WithLabelValues("parse_failure").Inc()
		return fallbackResult(story, "verdict parse failed, using original story")
	}

	if result.Score < 1 {
		result.Score = 1
	}
	if result.Score > 10 {
		result.Score = 10
	}
	result.Passed = result.Score >= neutralScore

	enhancedWords := WordCount(result.EnhancedStory)
	paragraphs := ParagraphCount(result.EnhancedStory)
	switch {
	case result.EnhancedStory == "":
		result.EnhancedStory = story
		result.Enhancements = []string{"empty enhancement - rejected, using original"}
		metrics.QualityRejections.WithLabelValues("empty").Inc()
	case enhancedWords > originalWords || enhancedWords > maxEnhancedWords:
		r.logger.Warn("enhanced story too long, using original",
			"original_words", originalWords, "enhanced_words", enhancedWords)
		result.EnhancedStory = story
		result.Enhancements = []string{"enhancement made story longer - rejected, using original"}
		metrics.QualityRejections.WithLabelValues("too_long").Inc()
	case paragraphs > maxEnhancedParagraphs:
		r.logger.Warn("enhanced story has too many paragraphs, using original", "paragraphs", paragraphs)
		result.EnhancedStory = story
		result.Enhancements = []string{"too many paragraphs - rejected, using original"}
		metrics.QualityRejections.WithLabelValues("too_many_paragraphs").Inc()
	}

	metrics.RecordStage("review", "success", time.Since(start).Seconds())
	metrics.QualityScore.Observe(float64(result.Score))
	r.logger.Info("quality gate verdict",
		"score", result.Score,
		"passed", result.Passed,
		"original_words", originalWords,
		"enhanced_words", WordCount(result.EnhancedStory),
	)
	return &result
}

func fallbackResult(story, note string) *QualityCheckResult {
	return &QualityCheckResult{
		Score:         neutralScore,
		Passed:        true,
		EnhancedStory: story,
		Enhancements:  []string{note},
	}
}
