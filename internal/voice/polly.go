package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"

	"github.com/spectralvoice/hauntify/pkg/logger"
	"github.com/spectralvoice/hauntify/pkg/metrics"
)

// DefaultPollyVoiceID is a deep male neural voice suited to narration.
const DefaultPollyVoiceID = "Matthew"

type pollyAPI interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// Polly synthesizes narration through Amazon Polly.
type Polly struct {
	client  pollyAPI
	voiceID string
	logger  *logger.Logger
}

// NewPolly creates a Polly synthesizer using the default AWS credential
// chain.
func NewPolly(ctx context.Context, region, voiceID string, log *logger.Logger) (*Polly, error) {
	if voiceID == "" {
		voiceID = DefaultPollyVoiceID
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Polly{
		client:  polly.NewFromConfig(cfg),
		voiceID: voiceID,
		logger:  log,
	}, nil
}

// NewPollyWithClient creates a Polly synthesizer over an injected client.
// Used in tests.
func NewPollyWithClient(client pollyAPI, voiceID string, log *logger.Logger) *Polly {
	if voiceID == "" {
		voiceID = DefaultPollyVoiceID
	}
	return &Polly{client: client, voiceID: voiceID, logger: log}
}

// Name returns the provider name.
func (p *Polly) Name() string {
	return "polly"
}

// Synthesize converts text to MP3 audio with the neural engine.
func (p *Polly) Synthesize(ctx context.Context, text string) (*Result, error) {
	start := time.Now()

	out, err := p.client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Engine:       pollytypes.EngineNeural,
		OutputFormat: pollytypes.OutputFormatMp3,
		Text:         &text,
		TextType:     pollytypes.TextTypeText,
		VoiceId:      pollytypes.VoiceId(p.voiceID),
	})
	if err != nil {
		metrics.VoiceSynthesisDuration.WithLabelValues(p.Name(), "error").Observe(time.Since(start).Seconds())
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ThrottlingException" {
			return nil, ErrQuotaExceeded
		}
		return nil, fmt.Errorf("polly synthesis failed: %w", err)
	}
	if out == nil || out.AudioStream == nil {
		return nil, errors.New("polly returned empty audio stream")
	}
	defer out.AudioStream.Close()

	audio, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio stream: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("polly returned empty audio")
	}

	metrics.VoiceSynthesisDuration.WithLabelValues(p.Name(), "success").Observe(time.Since(start).Seconds())
	p.logger.Info("synthesized speech", "provider", p.Name(), "bytes", len(audio))

	return &Result{
		Audio:       audio,
		MimeType:    "audio/mpeg",
		DurationSec: estimateDuration(text),
	}, nil
}
