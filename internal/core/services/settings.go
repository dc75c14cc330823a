package services

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
	"github.com/Karagwa/DocChatter/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvPrefix prefixes environment overrides: chunking.size is read from
// DOCCHATTER_CHUNKING_SIZE.
const EnvPrefix = "DOCCHATTER_"

// Config keys for settings storage.
const (
	keyChunkSize      = "chunking.size"
	keyChunkOverlap   = "chunking.overlap"
	keyRetrievalK     = "retrieval.k"
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedDims      = "embedding.dimensions"
	keyEmbedMaxChars  = "embedding.max_input_chars"
	keyEmbedRPS       = "embedding.requests_per_second"
	keyEmbedKeyEnv    = "embedding.api_key_env"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMTimeout     = "llm.timeout_seconds"
	keyLLMKeyEnv      = "llm.api_key_env"
	keyIndexBackend   = "index.backend"
	keyIndexColl      = "index.collection"
	keyIndexPath      = "index.path"
	keyIndexDSN       = "index.dsn"
	keyIndexReingest  = "index.reingest"
	geminiFallbackEnv = "GEMINI_API_KEY"
	databaseURLEnv    = "DATABASE_URL"
)

// ErrCredentialInConfig is returned when a caller tries to store an API key.
var ErrCredentialInConfig = errors.New("API keys are read from the environment and never stored")

// setting binds one dotted key to a field of AppSettings.
type setting struct {
	key   string
	get   func(*domain.AppSettings) any
	parse func(*domain.AppSettings, string) error
}

func intSetting(key string, field func(*domain.AppSettings) *int) setting {
	return setting{
		key: key,
		get: func(s *domain.AppSettings) any { return *field(s) },
		parse: func(s *domain.AppSettings, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %q is not an integer", key, v)
			}
			*field(s) = n
			return nil
		},
	}
}

func floatSetting(key string, field func(*domain.AppSettings) *float64) setting {
	return setting{
		key: key,
		get: func(s *domain.AppSettings) any { return *field(s) },
		parse: func(s *domain.AppSettings, v string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%s: %q is not a number", key, v)
			}
			*field(s) = f
			return nil
		},
	}
}

func stringSetting(key string, field func(*domain.AppSettings) *string) setting {
	return setting{
		key: key,
		get: func(s *domain.AppSettings) any { return *field(s) },
		parse: func(s *domain.AppSettings, v string) error {
			*field(s) = strings.TrimSpace(v)
			return nil
		},
	}
}

// enumSetting accepts only values for which valid returns true.
func enumSetting[T ~string](key string, field func(*domain.AppSettings) *T, valid func(T) bool) setting {
	return setting{
		key: key,
		get: func(s *domain.AppSettings) any { return string(*field(s)) },
		parse: func(s *domain.AppSettings, v string) error {
			val := T(strings.ToLower(strings.TrimSpace(v)))
			if !valid(val) {
				return fmt.Errorf("%s: invalid value %q", key, v)
			}
			*field(s) = val
			return nil
		},
	}
}

// settingsTable lists every settable key in display order.
var settingsTable = []setting{
	intSetting(keyChunkSize, func(s *domain.AppSettings) *int { return &s.Chunking.Size }),
	intSetting(keyChunkOverlap, func(s *domain.AppSettings) *int { return &s.Chunking.Overlap }),
	intSetting(keyRetrievalK, func(s *domain.AppSettings) *int { return &s.Retrieval.K }),
	enumSetting(keyEmbedProvider, func(s *domain.AppSettings) *domain.AIProvider { return &s.Embedding.Provider },
		func(p domain.AIProvider) bool { return slices.Contains(domain.AllEmbeddingProviders(), p) }),
	stringSetting(keyEmbedModel, func(s *domain.AppSettings) *string { return &s.Embedding.Model }),
	stringSetting(keyEmbedBaseURL, func(s *domain.AppSettings) *string { return &s.Embedding.BaseURL }),
	intSetting(keyEmbedDims, func(s *domain.AppSettings) *int { return &s.Embedding.Dimensions }),
	intSetting(keyEmbedMaxChars, func(s *domain.AppSettings) *int { return &s.Embedding.MaxInputChars }),
	floatSetting(keyEmbedRPS, func(s *domain.AppSettings) *float64 { return &s.Embedding.RequestsPerSecond }),
	stringSetting(keyEmbedKeyEnv, func(s *domain.AppSettings) *string { return &s.Embedding.APIKeyEnv }),
	enumSetting(keyLLMProvider, func(s *domain.AppSettings) *domain.AIProvider { return &s.LLM.Provider },
		func(p domain.AIProvider) bool { return slices.Contains(domain.AllLLMProviders(), p) }),
	stringSetting(keyLLMModel, func(s *domain.AppSettings) *string { return &s.LLM.Model }),
	stringSetting(keyLLMBaseURL, func(s *domain.AppSettings) *string { return &s.LLM.BaseURL }),
	intSetting(keyLLMTimeout, func(s *domain.AppSettings) *int { return &s.LLM.TimeoutSeconds }),
	stringSetting(keyLLMKeyEnv, func(s *domain.AppSettings) *string { return &s.LLM.APIKeyEnv }),
	enumSetting(keyIndexBackend, func(s *domain.AppSettings) *domain.IndexBackend { return &s.Index.Backend },
		domain.IndexBackend.IsValid),
	stringSetting(keyIndexColl, func(s *domain.AppSettings) *string { return &s.Index.Collection }),
	stringSetting(keyIndexPath, func(s *domain.AppSettings) *string { return &s.Index.Path }),
	stringSetting(keyIndexDSN, func(s *domain.AppSettings) *string { return &s.Index.DSN }),
	enumSetting(keyIndexReingest, func(s *domain.AppSettings) *domain.ReingestPolicy { return &s.Index.Reingest },
		domain.ReingestPolicy.IsValid),
}

func lookupSetting(key string) (setting, bool) {
	for _, st := range settingsTable {
		if st.key == key {
			return st, true
		}
	}
	return setting{}, false
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// SettingsService resolves application settings from defaults, the config
// store and the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithEnv replaces os.Getenv, mainly for tests.
func WithEnv(getenv func(string) string) SettingsOption {
	return func(s *SettingsService) {
		s.getenv = getenv
	}
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator, opts ...SettingsOption) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get resolves current settings. Invalid stored or environment values are
// reported as errors rather than silently replaced.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()
	explicit := make(map[string]bool)

	for _, st := range settingsTable {
		raw, ok := s.configStore.Get(st.key)
		if !ok {
			continue
		}
		if err := st.parse(&settings, fmt.Sprint(raw)); err != nil {
			return nil, fmt.Errorf("%s: %w", s.configStore.Path(), err)
		}
		explicit[st.key] = true
	}

	for _, st := range settingsTable {
		env := EnvName(st.key)
		val := s.getenv(env)
		if val == "" {
			continue
		}
		if err := st.parse(&settings, val); err != nil {
			return nil, fmt.Errorf("$%s: %w", env, err)
		}
		explicit[st.key] = true
	}

	applyProviderDefaults(&settings, explicit)
	s.resolveCredentials(&settings)
	return &settings, nil
}

// applyProviderDefaults fills model and dimension values that follow from the
// chosen provider when they were not set explicitly.
func applyProviderDefaults(settings *domain.AppSettings, explicit map[string]bool) {
	if !explicit[keyEmbedModel] {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if !explicit[keyEmbedDims] && settings.Embedding.Provider != domain.AIProviderHash {
		// Zero lets the adapter use the model's native size.
		settings.Embedding.Dimensions = 0
	}
	if !explicit[keyLLMModel] {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
}

// resolveCredentials reads API keys from the environment only. A postgres
// DSN not given in the config falls back to $DATABASE_URL.
func (s *SettingsService) resolveCredentials(settings *domain.AppSettings) {
	settings.Embedding.APIKey = s.credential(settings.Embedding.Provider, &settings.Embedding.APIKeyEnv)
	settings.LLM.APIKey = s.credential(settings.LLM.Provider, &settings.LLM.APIKeyEnv)
	if settings.Index.DSN == "" {
		settings.Index.DSN = s.getenv(databaseURLEnv)
	}
}

func (s *SettingsService) credential(provider domain.AIProvider, keyEnv *string) string {
	if *keyEnv == "" {
		*keyEnv = provider.DefaultAPIKeyEnv()
	}
	if *keyEnv == "" {
		return ""
	}
	key := s.getenv(*keyEnv)
	if key == "" && provider == domain.AIProviderGemini && *keyEnv == provider.DefaultAPIKeyEnv() {
		key = s.getenv(geminiFallbackEnv)
	}
	return key
}

// Save persists application settings. API keys are never written.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	for _, st := range settingsTable {
		if err := s.configStore.Set(st.key, st.get(settings)); err != nil {
			return fmt.Errorf("save %s: %w", st.key, err)
		}
	}
	return nil
}

// Set parses value for key and persists it. An empty value removes the key
// so the default applies again. Switching a provider resets the model.
func (s *SettingsService) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if strings.HasSuffix(key, ".api_key") || strings.HasSuffix(key, "_api_key") {
		return fmt.Errorf("%w: export the variable named by %s_env instead", ErrCredentialInConfig, key)
	}

	st, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)", domain.ErrInvalidInput, key, strings.Join(s.Keys(), ", "))
	}

	if strings.TrimSpace(value) == "" {
		return s.configStore.Unset(key)
	}

	var scratch domain.AppSettings
	if err := st.parse(&scratch, value); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	switch key {
	case keyEmbedProvider:
		return s.SetEmbeddingProvider(scratch.Embedding.Provider, "")
	case keyLLMProvider:
		return s.SetLLMProvider(scratch.LLM.Provider, "")
	}
	return s.configStore.Set(key, st.get(&scratch))
}

// SetEmbeddingProvider switches the embedding provider. An empty model
// selects the provider default; dimensions revert to the model's size.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model string) error {
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %q does not support embeddings", domain.ErrInvalidInput, provider)
	}

	if err := s.configStore.Set(keyEmbedProvider, string(provider)); err != nil {
		return err
	}
	if err := s.setOrUnset(keyEmbedModel, model); err != nil {
		return err
	}
	if err := s.configStore.Unset(keyEmbedDims); err != nil {
		return err
	}
	return s.resetBaseURL(keyEmbedBaseURL, provider)
}

// SetLLMProvider switches the LLM provider. An empty model selects the
// provider default.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model string) error {
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("%w: provider %q does not support text generation", domain.ErrInvalidInput, provider)
	}

	if err := s.configStore.Set(keyLLMProvider, string(provider)); err != nil {
		return err
	}
	if err := s.setOrUnset(keyLLMModel, model); err != nil {
		return err
	}
	return s.resetBaseURL(keyLLMBaseURL, provider)
}

func (s *SettingsService) setOrUnset(key, value string) error {
	if value == "" {
		return s.configStore.Unset(key)
	}
	return s.configStore.Set(key, value)
}

// resetBaseURL drops a base URL meant for a different kind of provider.
// Local providers keep theirs.
func (s *SettingsService) resetBaseURL(key string, provider domain.AIProvider) error {
	if provider == domain.AIProviderOllama && s.configStore.GetString(key) != "" {
		return nil
	}
	return s.configStore.Unset(key)
}

// Keys returns every settable key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingsTable))
	for i, st := range settingsTable {
		keys[i] = st.key
	}
	return keys
}

// Values returns the resolved value of every key, for display.
func Values(settings *domain.AppSettings) map[string]any {
	out := make(map[string]any, len(settingsTable))
	for _, st := range settingsTable {
		out[st.key] = st.get(settings)
	}
	return out
}

// Validate checks the resolved settings for consistency.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if err := settings.Chunking.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("chunking: need 0 <= overlap (%d) < size (%d): %w",
			settings.Chunking.Overlap, settings.Chunking.Size, err))
	}
	if settings.Retrieval.K <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", keyRetrievalK, settings.Retrieval.K))
	}
	if settings.Embedding.Dimensions < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", keyEmbedDims))
	}
	if settings.Embedding.MaxInputChars < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", keyEmbedMaxChars))
	}
	if settings.Embedding.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", keyEmbedRPS))
	}
	if settings.LLM.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", keyLLMTimeout))
	}
	if strings.TrimSpace(settings.Index.Collection) == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", keyIndexColl))
	}
	if settings.Index.Backend == domain.IndexBackendPostgres && settings.Index.DSN == "" {
		errs = append(errs, fmt.Errorf("%s is required for the postgres backend", keyIndexDSN))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ConfigPath returns the configuration file location.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}
