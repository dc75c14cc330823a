package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driving"
)

// MockPipeline implements driving.Pipeline for testing.
type MockPipeline struct {
	IngestFunc func(ctx context.Context, path string, progress driving.IngestProgress) (*domain.IngestReport, error)
	AskFunc    func(ctx context.Context, question string) (*domain.QueryState, error)
	StatsFunc  func(ctx context.Context) (domain.CollectionStats, error)

	Questions []string
}

func (m *MockPipeline) ProcessDocument(ctx context.Context, path string) (string, error) {
	r, err := m.Ingest(ctx, path, nil)
	if err != nil {
		return "", err
	}
	return r.Status(), nil
}

func (m *MockPipeline) Ingest(ctx context.Context, path string, progress driving.IngestProgress) (*domain.IngestReport, error) {
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, path, progress)
	}
	return &domain.IngestReport{Source: path, Collection: "test", Chunks: 3, Dimensions: 64}, nil
}

func (m *MockPipeline) AnswerQuestion(ctx context.Context, question string) (string, error) {
	s, err := m.Ask(ctx, question)
	if err != nil {
		return "", err
	}
	return s.Answer, nil
}

func (m *MockPipeline) Ask(ctx context.Context, question string) (*domain.QueryState, error) {
	m.Questions = append(m.Questions, question)
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question)
	}
	return &domain.QueryState{
		Question: question,
		Answer:   "Twenty days.",
		Context: []domain.Chunk{
			{Source: "handbook.md", Position: 2, Offset: 1600, Content: "Employees get twenty days of leave."},
		},
		Stage: domain.StageDone,
	}, nil
}

func (m *MockPipeline) Stats(ctx context.Context) (domain.CollectionStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return domain.CollectionStats{
		Collection: "test",
		Entries:    5,
		Dimensions: 64,
		Sources:    []string{"faq.txt", "handbook.md"},
	}, nil
}

// MockIndexAdmin implements driving.IndexAdmin for testing.
type MockIndexAdmin struct {
	ResetErr error
	Resets   int
}

func (m *MockIndexAdmin) Reset(context.Context) error {
	m.Resets++
	return m.ResetErr
}

// MockSettingsService implements driving.SettingsService for testing.
type MockSettingsService struct {
	Settings       *domain.AppSettings
	ValidateErr    error
	EmbeddingErr   error
	LLMErr         error
	SetCalls       map[string]string
	EmbedProvider  domain.AIProvider
	LLMProvider    domain.AIProvider
	ProviderModel  string
	ConfigPathFunc func() string
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	if m.Settings == nil {
		d := domain.DefaultAppSettings()
		m.Settings = &d
	}
	return m.Settings, nil
}

func (m *MockSettingsService) Save(s *domain.AppSettings) error {
	m.Settings = s
	return nil
}

func (m *MockSettingsService) Set(key, value string) error {
	if m.SetCalls == nil {
		m.SetCalls = map[string]string{}
	}
	m.SetCalls[key] = value
	return nil
}

func (m *MockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model string) error {
	m.EmbedProvider, m.ProviderModel = p, model
	return nil
}

func (m *MockSettingsService) SetLLMProvider(p domain.AIProvider, model string) error {
	m.LLMProvider, m.ProviderModel = p, model
	return nil
}

func (m *MockSettingsService) Keys() []string { return []string{"chunking.size"} }

func (m *MockSettingsService) Validate() error { return m.ValidateErr }

func (m *MockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *MockSettingsService) ConfigPath() string {
	if m.ConfigPathFunc != nil {
		return m.ConfigPathFunc()
	}
	return "/tmp/config.toml"
}

func (m *MockSettingsService) ValidateEmbeddingConfig() error { return m.EmbeddingErr }

func (m *MockSettingsService) ValidateLLMConfig() error { return m.LLMErr }

// resetFlags restores flag variables, which persist between Execute calls.
func resetFlags() {
	askShowContext = false
	askOutput = formatText
	ingestOutput = formatText
	statsOutput = formatText
	settingsOutput = formatText
	resetYes = false
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// usePipeline injects mocks for the duration of the test.
func usePipeline(t *testing.T, p driving.Pipeline, admin driving.IndexAdmin) {
	t.Helper()
	pipeline, indexAdmin = p, admin
	t.Cleanup(func() {
		pipeline, indexAdmin = nil, nil
	})
}

func useSettings(t *testing.T, s driving.SettingsService) {
	t.Helper()
	settingsService = s
	t.Cleanup(func() {
		settingsService = nil
	})
}
