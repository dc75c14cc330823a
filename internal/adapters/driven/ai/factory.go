// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/Karagwa/DocChatter/internal/adapters/driven/embedding/gemini"
	hashembed "github.com/Karagwa/DocChatter/internal/adapters/driven/embedding/hash"
	"github.com/Karagwa/DocChatter/internal/adapters/driven/embedding/limits"
	ollamaembed "github.com/Karagwa/DocChatter/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/Karagwa/DocChatter/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/Karagwa/DocChatter/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/Karagwa/DocChatter/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/Karagwa/DocChatter/internal/adapters/driven/llm/ollama"
	openaillm "github.com/Karagwa/DocChatter/internal/adapters/driven/llm/openai"
	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

const fixHint = "Run 'docchatter settings check' to diagnose"

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingFailure, err, fixHint)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingFailure, err, fixHint)
	}

	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrGenerationFailure, err, fixHint)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrGenerationFailure, err, fixHint)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	return svc.Close()
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateAndValidateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	return svc.Close()
}

// CreateEmbeddingService creates the embedding service selected by settings,
// wrapped with the configured input and rate limits.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if err := checkProvider(settings.Provider, settings.APIKey, settings.APIKeyEnv); err != nil {
		return nil, err
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderHash:
		svc, err = hashembed.NewEmbeddingService(settings.Dimensions)

	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings)

	case domain.AIProviderOpenAI:
		svc, err = openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderGemini:
		svc, err = geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:     settings.APIKey,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
			Endpoint:   settings.BaseURL,
		})

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use hash, ollama, openai or gemini")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return limits.Wrap(svc, limits.Config{
		MaxInputChars:     settings.MaxInputChars,
		RequestsPerSecond: settings.RequestsPerSecond,
	}), nil
}

// CreateLLMService creates the LLM service selected by settings.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if err := checkProvider(settings.Provider, settings.APIKey, settings.APIKeyEnv); err != nil {
		return nil, err
	}

	timeout := time.Duration(settings.TimeoutSeconds) * time.Second

	switch settings.Provider {
	case domain.AIProviderGemini:
		return llmOrNil(geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey:   settings.APIKey,
			Model:    settings.Model,
			Endpoint: settings.BaseURL,
			Timeout:  timeout,
		}))

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return llmOrNil(openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		}))

	case domain.AIProviderAnthropic:
		return llmOrNil(anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		}))

	case domain.AIProviderHash:
		return nil, fmt.Errorf("hash is an embedding-only provider")

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", settings.Provider)
	}
}

// llmOrNil keeps a failed constructor from yielding a non-nil interface
// that wraps a nil pointer.
func llmOrNil[T driven.LLMService](svc T, err error) (driven.LLMService, error) {
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// checkProvider reports a missing credential before any client is built.
func checkProvider(provider domain.AIProvider, apiKey, keyEnv string) error {
	if !provider.RequiresAPIKey() || apiKey != "" {
		return nil
	}
	if keyEnv == "" {
		keyEnv = provider.DefaultAPIKeyEnv()
	}
	return fmt.Errorf("%s requires an API key in $%s", provider, keyEnv)
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}
