// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spectralvoice/hauntify/internal/config"
	"github.com/spectralvoice/hauntify/internal/geocode"
	"github.com/spectralvoice/hauntify/internal/handler"
	"github.com/spectralvoice/hauntify/internal/llm"
	"github.com/spectralvoice/hauntify/internal/middleware"
	"github.com/spectralvoice/hauntify/internal/pipeline"
	"github.com/spectralvoice/hauntify/internal/voice"
	"github.com/spectralvoice/hauntify/pkg/logger"
	"github.com/spectralvoice/hauntify/pkg/tracing"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server", "version", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "hauntify", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", "error", err)
		} else {
			defer tracing.Shutdown(context.Background(), tp)
		}
	}

	if cfg.GroqAPIKey == "" {
		log.Error("GROQ_API_KEY is required")
		os.Exit(1)
	}

	// Stage one: streaming generator.
	groqClient, err := llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, log)
	if err != nil {
		log.Error("failed to create generator client", "error", err)
		os.Exit(1)
	}
	generator := pipeline.NewGenerator(groqClient, cfg.GeneratorModel, log)

	// Stage two: quality gate. Defaults to the Groq OpenAI-compatible
	// endpoint; an Anthropic reviewer can be selected instead.
	reviewerProvider := llm.ProviderOpenAICompat
	reviewerKey := cfg.GroqAPIKey
	reviewerBase := cfg.GroqBaseURL
	if cfg.ReviewerProvider == "anthropic" {
		reviewerProvider = llm.ProviderAnthropic
		reviewerKey = cfg.AnthropicAPIKey
		reviewerBase = ""
	}
	if reviewerBase == "" && reviewerProvider == llm.ProviderOpenAICompat {
		reviewerBase = llm.DefaultGroqBaseURL
	}
	reviewerClient, err := llm.NewCompletionClient(reviewerProvider, reviewerKey, reviewerBase)
	if err != nil {
		log.Error("failed to create reviewer client", "error", err)
		os.Exit(1)
	}
	reviewer := pipeline.NewReviewer(reviewerClient, cfg.ReviewerModel, log)

	storyPipeline := pipeline.New(generator, reviewer, cfg.StreamDelay, log)

	// Geocoding with an in-process cache swept in the background.
	geoCache := geocode.NewCache(cfg.GeocodeCacheTTL)
	geoCache.StartSweeper(ctx, cfg.GeocodeCacheTTL/4)
	geoClient := geocode.NewClient(cfg.NominatimBaseURL, geoCache, log)

	synth := buildSynthesizer(ctx, cfg, log)

	healthHandler := handler.NewHealthHandler(version)
	chatHandler := handler.NewChatHandler(storyPipeline, log)
	geocodeHandler := handler.NewGeocodeHandler(geoClient, log)
	voiceHandler := handler.NewVoiceHandler(synth, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID", "X-Audio-Duration"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTSecret != "" {
			r.Use(middleware.Auth(cfg.JWTSecret))
		}
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/chat", chatHandler.Chat)
		r.Get("/geocode", geocodeHandler.Geocode)
		r.Post("/voice", voiceHandler.Synthesize)
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// buildSynthesizer selects the text-to-speech provider from configuration.
// Returns nil when no provider is usable; the voice endpoint then reports
// itself unavailable rather than blocking startup.
func buildSynthesizer(ctx context.Context, cfg *config.Config, log *logger.Logger) voice.Synthesizer {
	switch cfg.TTSProvider {
	case "polly":
		synth, err := voice.NewPolly(ctx, cfg.AWSRegion, cfg.PollyVoiceID, log)
		if err != nil {
			log.Warn("failed to create Polly synthesizer, voice disabled", "error", err)
			return nil
		}
		return synth
	case "elevenlabs":
		if cfg.ElevenLabsAPIKey == "" {
			log.Warn("ELEVENLABS_API_KEY not set, voice disabled")
			return nil
		}
		synth, err := voice.NewElevenLabs(cfg.ElevenLabsAPIKey, "", cfg.ElevenLabsVoiceID, log)
		if err != nil {
			log.Warn("failed to create ElevenLabs synthesizer, voice disabled", "error", err)
			return nil
		}
		return synth
	default:
		log.Warn("unknown TTS provider, voice disabled", "provider", cfg.TTSProvider)
		return nil
	}
}
