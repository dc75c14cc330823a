package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karagwa/DocChatter/internal/adapters/driven/storage/memory"
	"github.com/Karagwa/DocChatter/internal/core/domain"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func newSettings(values map[string]any, env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore(values)
	return NewSettingsService(store, nil, WithEnv(envMap(env))), store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newSettings(nil, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Chunking, settings.Chunking)
	assert.Equal(t, 3, settings.Retrieval.K)
	assert.Equal(t, domain.AIProviderHash, settings.Embedding.Provider)
	assert.Equal(t, "fnv-hash", settings.Embedding.Model)
	assert.Equal(t, domain.DefaultHashDimensions, settings.Embedding.Dimensions)
	assert.Equal(t, domain.AIProviderGemini, settings.LLM.Provider)
	assert.Equal(t, "gemini-2.0-flash", settings.LLM.Model)
	assert.Equal(t, "GOOGLE_API_KEY", settings.LLM.APIKeyEnv)
	assert.Equal(t, domain.DefaultCollection, settings.Index.Collection)
	assert.Equal(t, domain.ReingestReplace, settings.Index.Reingest)
}

func TestSettingsService_Get_StoredValues(t *testing.T) {
	service, _ := newSettings(map[string]any{
		"chunking.size":                 int64(500),
		"chunking.overlap":              int64(50),
		"retrieval.k":                   int64(5),
		"embedding.provider":            "openai",
		"embedding.requests_per_second": 2.5,
		"llm.provider":                  "ollama",
		"index.backend":                 "memory",
	}, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.ChunkingSettings{Size: 500, Overlap: 50}, settings.Chunking)
	assert.Equal(t, 5, settings.Retrieval.K)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model, "model follows provider")
	assert.Zero(t, settings.Embedding.Dimensions, "dimensions follow model")
	assert.InDelta(t, 2.5, settings.Embedding.RequestsPerSecond, 1e-9)
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, domain.IndexBackendMemory, settings.Index.Backend)
}

func TestSettingsService_Get_EnvOverridesFile(t *testing.T) {
	service, _ := newSettings(
		map[string]any{"retrieval.k": int64(5), "llm.model": "gemini-1.5-pro"},
		map[string]string{
			"DOCCHATTER_RETRIEVAL_K":     "7",
			"DOCCHATTER_INDEX_BACKEND":   "Postgres",
			"DOCCHATTER_INDEX_DSN":       "postgres://localhost/db",
			"DOCCHATTER_CHUNKING_SIZE":   "",
			"DOCCHATTER_UNRELATED_THING": "x",
		},
	)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, 7, settings.Retrieval.K)
	assert.Equal(t, "gemini-1.5-pro", settings.LLM.Model)
	assert.Equal(t, domain.IndexBackendPostgres, settings.Index.Backend)
	assert.Equal(t, "postgres://localhost/db", settings.Index.DSN)
	assert.Equal(t, domain.DefaultChunkSize, settings.Chunking.Size)
}

func TestSettingsService_Get_InvalidValuesError(t *testing.T) {
	service, _ := newSettings(map[string]any{"llm.provider": "hash"}, nil)
	_, err := service.Get()
	assert.Error(t, err)

	service, _ = newSettings(nil, map[string]string{"DOCCHATTER_CHUNKING_SIZE": "big"})
	_, err = service.Get()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOCCHATTER_CHUNKING_SIZE")
}

func TestSettingsService_Get_Credentials(t *testing.T) {
	t.Run("default variable", func(t *testing.T) {
		service, _ := newSettings(map[string]any{"embedding.provider": "openai"}, map[string]string{
			"GOOGLE_API_KEY": "g-key",
			"OPENAI_API_KEY": "o-key",
		})
		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "g-key", settings.LLM.APIKey)
		assert.Equal(t, "o-key", settings.Embedding.APIKey)
	})

	t.Run("gemini fallback variable", func(t *testing.T) {
		service, _ := newSettings(nil, map[string]string{"GEMINI_API_KEY": "alt"})
		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "alt", settings.LLM.APIKey)
	})

	t.Run("custom variable", func(t *testing.T) {
		service, _ := newSettings(map[string]any{"llm.api_key_env": "MY_KEY"}, map[string]string{
			"MY_KEY":         "mine",
			"GOOGLE_API_KEY": "ignored",
		})
		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "mine", settings.LLM.APIKey)
	})

	t.Run("local providers need none", func(t *testing.T) {
		service, _ := newSettings(map[string]any{"llm.provider": "ollama"}, nil)
		settings, err := service.Get()
		require.NoError(t, err)
		assert.Empty(t, settings.LLM.APIKeyEnv)
		assert.Empty(t, settings.LLM.APIKey)
	})
}

func TestSettingsService_Set(t *testing.T) {
	service, store := newSettings(nil, nil)

	require.NoError(t, service.Set("chunking.size", "1200"))
	require.NoError(t, service.Set("embedding.requests_per_second", "0.5"))
	require.NoError(t, service.Set("index.reingest", "append"))

	assert.Equal(t, 1200, store.GetInt("chunking.size"))
	assert.InDelta(t, 0.5, store.GetFloat("embedding.requests_per_second"), 1e-9)
	assert.Equal(t, "append", store.GetString("index.reingest"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.ReingestAppend, settings.Index.Reingest)
}

func TestSettingsService_Set_EmptyRestoresDefault(t *testing.T) {
	service, store := newSettings(map[string]any{"retrieval.k": int64(9)}, nil)

	require.NoError(t, service.Set("retrieval.k", ""))

	_, ok := store.Get("retrieval.k")
	assert.False(t, ok)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	service, _ := newSettings(nil, nil)

	tests := []struct {
		key, value string
		want       error
	}{
		{"llm.api_key", "secret", ErrCredentialInConfig},
		{"embedding.api_key", "secret", ErrCredentialInConfig},
		{"nope.key", "1", domain.ErrInvalidInput},
		{"chunking.size", "ten", domain.ErrInvalidInput},
		{"index.backend", "mysql", domain.ErrInvalidInput},
		{"embedding.provider", "anthropic", domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := service.Set(tt.key, tt.value)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestSettingsService_SetEmbeddingProvider_ResetsModel(t *testing.T) {
	service, store := newSettings(map[string]any{
		"embedding.model":      "fnv-hash",
		"embedding.dimensions": int64(256),
		"embedding.base_url":   "http://proxy",
	}, nil)

	require.NoError(t, service.Set("embedding.provider", "gemini"))

	_, hasModel := store.Get("embedding.model")
	_, hasDims := store.Get("embedding.dimensions")
	assert.False(t, hasModel)
	assert.False(t, hasDims)
	assert.Empty(t, store.GetString("embedding.base_url"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-004", settings.Embedding.Model)
}

func TestSettingsService_SetLLMProvider_KeepsOllamaURL(t *testing.T) {
	service, store := newSettings(map[string]any{"llm.base_url": "http://gpu-box:11434"}, nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "mistral"))

	assert.Equal(t, "http://gpu-box:11434", store.GetString("llm.base_url"))
	assert.Equal(t, "mistral", store.GetString("llm.model"))

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, ""))
	assert.Empty(t, store.GetString("llm.base_url"))
}

func TestSettingsService_SaveNeverWritesKeys(t *testing.T) {
	service, store := newSettings(nil, map[string]string{"GOOGLE_API_KEY": "secret"})

	settings, err := service.Get()
	require.NoError(t, err)
	require.NoError(t, service.Save(settings))

	for _, key := range service.Keys() {
		val, _ := store.Get(key)
		assert.NotEqual(t, "secret", val, key)
	}
	assert.Equal(t, "GOOGLE_API_KEY", store.GetString("llm.api_key_env"))
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr string
	}{
		{"defaults are valid", nil, ""},
		{"overlap too large", map[string]any{"chunking.size": int64(100), "chunking.overlap": int64(100)}, "chunking"},
		{"k zero", map[string]any{"retrieval.k": int64(0)}, "retrieval.k"},
		{"postgres without dsn", map[string]any{"index.backend": "postgres"}, "index.dsn"},
		{"blank collection", map[string]any{"index.collection": " "}, "index.collection"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newSettings(tt.values, nil)
			err := service.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	service, _ := newSettings(nil, nil)

	keys := service.Keys()

	assert.Equal(t, "chunking.size", keys[0])
	assert.Contains(t, keys, "index.reingest")
	assert.NotContains(t, keys, "llm.api_key")
	assert.Len(t, Values(&domain.AppSettings{}), len(keys))
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "DOCCHATTER_EMBEDDING_MAX_INPUT_CHARS", EnvName("embedding.max_input_chars"))
}

type stubValidator struct {
	embedding *domain.EmbeddingSettings
	llm       *domain.LLMSettings
}

func (v *stubValidator) ValidateEmbedding(c *domain.EmbeddingSettings) error {
	v.embedding = c
	return nil
}

func (v *stubValidator) ValidateLLM(c *domain.LLMSettings) error {
	v.llm = c
	return errors.New("unreachable")
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	validator := &stubValidator{}
	service := NewSettingsService(memory.NewConfigStore(), validator, WithEnv(envMap(nil)))

	assert.NoError(t, service.ValidateEmbeddingConfig())
	assert.Error(t, service.ValidateLLMConfig())
	require.NotNil(t, validator.embedding)
	assert.Equal(t, domain.AIProviderHash, validator.embedding.Provider)
	require.NotNil(t, validator.llm)
	assert.Equal(t, domain.AIProviderGemini, validator.llm.Provider)

	nilValidator, _ := newSettings(nil, nil)
	assert.NoError(t, nilValidator.ValidateLLMConfig())
}

func TestSettingsService_Get_DatabaseURLFallback(t *testing.T) {
	svc, _ := newSettings(map[string]any{"index.backend": "postgres"},
		map[string]string{"DATABASE_URL": "postgres://env/db"})

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", settings.Index.DSN)
	assert.NoError(t, svc.Validate())
}
