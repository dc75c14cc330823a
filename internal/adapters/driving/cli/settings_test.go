package cli

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karagwa/DocChatter/internal/app"
	"github.com/Karagwa/DocChatter/internal/core/domain"
)

// useRealSettings opens settings in a temporary directory with an empty environment.
func useRealSettings(t *testing.T, env map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	svc, err := app.OpenSettings(dir, func(k string) string { return env[k] })
	require.NoError(t, err)
	useSettings(t, svc)
	return dir
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShow_Text(t *testing.T) {
	useRealSettings(t, nil)

	out, _, err := execute(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[chunking]")
	assert.Contains(t, out, "size")
	assert.Contains(t, out, "1000")
	assert.Contains(t, out, "[index]")
	assert.Contains(t, out, "rag_pipeline_collection")
	assert.Contains(t, out, "not set, export GOOGLE_API_KEY")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_MasksKey(t *testing.T) {
	useRealSettings(t, map[string]string{"GOOGLE_API_KEY": "AIzaSyExampleKey1234"})

	out, _, err := execute(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "AIza...1234")
	assert.NotContains(t, out, "AIzaSyExampleKey1234")
}

func TestSettingsShow_JSON(t *testing.T) {
	useRealSettings(t, nil)

	out, _, err := execute(t, "", "settings", "show", "-o", "json")

	require.NoError(t, err)
	var values map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &values))
	assert.EqualValues(t, 200, values["chunking.overlap"])
	assert.Equal(t, "replace", values["index.reingest"])
}

func TestSettingsShow_InvalidWarns(t *testing.T) {
	useRealSettings(t, nil)
	_, _, err := execute(t, "", "settings", "set", "index.backend", "postgres")
	require.NoError(t, err)

	out, _, err := execute(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "index.dsn")
}

func TestSettingsSet(t *testing.T) {
	useRealSettings(t, nil)

	out, _, err := execute(t, "", "settings", "set", "chunking.size", "800")
	require.NoError(t, err)
	assert.Contains(t, out, "chunking.size = 800")

	settings, err := settingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, 800, settings.Chunking.Size)

	out, _, err = execute(t, "", "settings", "set", "chunking.size")
	require.NoError(t, err)
	assert.Contains(t, out, "chunking.size reset to default")

	settings, err = settingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultChunkSize, settings.Chunking.Size)
}

func TestSettingsSet_EmbeddingNote(t *testing.T) {
	useRealSettings(t, nil)

	out, _, err := execute(t, "", "settings", "set", "embedding.dimensions", "256")

	require.NoError(t, err)
	assert.Contains(t, out, "index reset")
}

func TestSettingsSet_Invalid(t *testing.T) {
	useRealSettings(t, nil)

	_, _, err := execute(t, "", "settings", "set", "no.such.key", "1")
	assert.Error(t, err)

	_, _, err = execute(t, "", "settings", "set", "chunking.size", "many")
	assert.Error(t, err)
}

func TestSettingsPath(t *testing.T) {
	dir := useRealSettings(t, nil)

	out, _, err := execute(t, "", "settings", "path")

	require.NoError(t, err)
	assert.Contains(t, out, dir)
	assert.Contains(t, out, filepath.Base(settingsService.ConfigPath()))
}

func TestSettingsCheck(t *testing.T) {
	mock := &MockSettingsService{}
	useSettings(t, mock)

	out, _, err := execute(t, "", "settings", "check")

	require.NoError(t, err)
	assert.Contains(t, out, "Settings")
	assert.Contains(t, out, "OK")
}

func TestSettingsCheck_Failure(t *testing.T) {
	mock := &MockSettingsService{LLMErr: errors.New("401 unauthorised")}
	useSettings(t, mock)

	out, _, err := execute(t, "", "settings", "check")

	assert.ErrorContains(t, err, "401 unauthorised")
	assert.Contains(t, out, "FAILED: 401 unauthorised")
}

func TestSettingsEmbedding_Interactive(t *testing.T) {
	mock := &MockSettingsService{}
	useSettings(t, mock)

	// Second provider, default model.
	out, _, err := execute(t, "2\n\n", "settings", "embedding")

	require.NoError(t, err)
	assert.Equal(t, domain.AllEmbeddingProviders()[1], mock.EmbedProvider)
	assert.Equal(t, "", mock.ProviderModel)
	assert.Contains(t, out, "Embedding provider configured")
}

func TestSettingsLLM_Interactive(t *testing.T) {
	mock := &MockSettingsService{}
	useSettings(t, mock)

	var choice int
	for i, p := range domain.AllLLMProviders() {
		if p == domain.AIProviderOpenAI {
			choice = i + 1
		}
	}
	require.NotZero(t, choice)

	out, _, err := execute(t, string(rune('0'+choice))+"\ngpt-4o\n", "settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, mock.LLMProvider)
	assert.Equal(t, "gpt-4o", mock.ProviderModel)
	assert.Contains(t, out, "Export OPENAI_API_KEY")
}

func TestDisplayValue(t *testing.T) {
	tests := []struct {
		name string
		key  string
		in   any
		want any
	}{
		{"int", "chunking.size", 1000, 1000},
		{"empty string", "index.path", "", "(not set)"},
		{"plain string", "index.collection", "docs", "docs"},
		{"dsn with password", "index.dsn", "postgres://rag:secret@db:5432/rag", "postgres://rag:****@db:5432/rag"},
		{"dsn without password", "index.dsn", "postgres://rag@db/rag", "postgres://rag@db/rag"},
		{"dsn keyword form", "index.dsn", "host=db user=rag", "host=db user=rag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, displayValue(tt.key, tt.in))
		})
	}
}
