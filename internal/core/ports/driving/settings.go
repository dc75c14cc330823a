package driving

import "github.com/Karagwa/DocChatter/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves current settings: defaults, then the config file, then
	// DOCCHATTER_* environment variables. API keys come from the environment.
	Get() (*domain.AppSettings, error)

	// Save persists application settings. API keys are never written.
	Save(settings *domain.AppSettings) error

	// Set parses and persists a single dotted key such as "chunking.size".
	Set(key, value string) error

	// SetEmbeddingProvider switches the embedding provider. An empty model
	// selects the provider default; stale model and dimension values are cleared.
	SetEmbeddingProvider(provider domain.AIProvider, model string) error

	// SetLLMProvider switches the LLM provider. An empty model selects the
	// provider default.
	SetLLMProvider(provider domain.AIProvider, model string) error

	// Keys returns every settable key in display order.
	Keys() []string

	// Validate checks the resolved settings for consistency.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ConfigPath returns the configuration file location.
	ConfigPath() string

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
