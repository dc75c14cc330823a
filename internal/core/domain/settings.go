package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderHash is the local feature-hashing embedder. Embeddings only.
	AIProviderHash AIProvider = "hash"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API. LLM only.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is the Google Generative Language API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHash, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHash
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderHash:
		return "Feature hashing (local, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// DefaultAPIKeyEnv returns the environment variable holding the provider's
// credential, or "" when the provider needs none.
func (p AIProvider) DefaultAPIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case AIProviderGemini:
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}

// IndexBackend selects the vector index storage.
type IndexBackend string

// Available index backends.
const (
	IndexBackendSQLite   IndexBackend = "sqlite"
	IndexBackendPostgres IndexBackend = "postgres"
	IndexBackendMemory   IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendPostgres, IndexBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// ReingestPolicy decides what happens to earlier entries when a document with
// the same source name is processed again.
type ReingestPolicy string

// Available re-ingestion policies.
const (
	// ReingestReplace removes prior entries for the source in the same batch
	// that adds the new ones.
	ReingestReplace ReingestPolicy = "replace"

	// ReingestAppend keeps prior entries; repeated context is possible.
	ReingestAppend ReingestPolicy = "append"
)

// IsValid returns true if the policy is recognised.
func (p ReingestPolicy) IsValid() bool {
	return p == ReingestReplace || p == ReingestAppend
}

// String returns the string representation.
func (p ReingestPolicy) String() string {
	return string(p)
}

// ChunkingSettings configures the splitter.
type ChunkingSettings struct {
	// Size is the maximum chunk length in characters.
	Size int

	// Overlap is the number of characters shared by consecutive chunks.
	Overlap int
}

// Validate checks 0 <= Overlap < Size.
func (c ChunkingSettings) Validate() error {
	if c.Size <= 0 || c.Overlap < 0 || c.Overlap >= c.Size {
		return ErrChunkingFailure
	}
	return nil
}

// RetrievalSettings configures similarity search.
type RetrievalSettings struct {
	// K is the number of chunks handed to the generator.
	K int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// Dimensions is the vector size. Zero uses the model's default.
	Dimensions int

	// MaxInputChars rejects longer inputs. Zero disables the check.
	MaxInputChars int

	// RequestsPerSecond paces provider calls. Zero is unlimited.
	RequestsPerSecond float64

	// APIKeyEnv names the environment variable holding the credential.
	APIKeyEnv string

	// APIKey is resolved from the environment at startup. Never persisted.
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// TimeoutSeconds bounds one generation call.
	TimeoutSeconds int

	// APIKeyEnv names the environment variable holding the credential.
	APIKeyEnv string

	// APIKey is resolved from the environment at startup. Never persisted.
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHash {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings holds vector index configuration.
type IndexSettings struct {
	Backend IndexBackend

	// Collection is the named collection entries accumulate in.
	Collection string

	// Path is the storage directory for the sqlite backend.
	Path string

	// DSN is the connection string for the postgres backend.
	DSN string

	Reingest ReingestPolicy
}

// AppSettings holds all application settings.
type AppSettings struct {
	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Index     IndexSettings
}

// Default configuration values.
const (
	DefaultChunkSize         = 1000
	DefaultChunkOverlap      = 200
	DefaultTopK              = 3
	DefaultMaxInputChars     = 8000
	DefaultLLMTimeoutSeconds = 120
	DefaultCollection        = "rag_pipeline_collection"
	DefaultHashDimensions    = 768
)

// DefaultAppSettings returns settings with sensible defaults.
// Index.Path is left empty; the config layer fills in the data directory.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{K: DefaultTopK},
		Embedding: EmbeddingSettings{
			Provider:      AIProviderHash,
			Dimensions:    DefaultHashDimensions,
			MaxInputChars: DefaultMaxInputChars,
		},
		LLM: LLMSettings{
			Provider:       AIProviderGemini,
			Model:          DefaultLLMModels()[AIProviderGemini],
			TimeoutSeconds: DefaultLLMTimeoutSeconds,
		},
		Index: IndexSettings{
			Backend:    IndexBackendSQLite,
			Collection: DefaultCollection,
			Reingest:   ReingestReplace,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHash,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHash:   "fnv-hash",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "gemini-2.0-flash",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"fnv-hash": DefaultHashDimensions,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}
