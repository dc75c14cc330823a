package mcp

import (
	"context"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driving"
)

// mockPipeline is a mock implementation of driving.Pipeline.
type mockPipeline struct {
	report    *domain.IngestReport
	state     *domain.QueryState
	stats     domain.CollectionStats
	err       error
	gotPath   string
	questions []string
}

func (m *mockPipeline) ProcessDocument(ctx context.Context, path string) (string, error) {
	r, err := m.Ingest(ctx, path, nil)
	if err != nil {
		return "", err
	}
	return r.Status(), nil
}

func (m *mockPipeline) Ingest(_ context.Context, path string, _ driving.IngestProgress) (*domain.IngestReport, error) {
	m.gotPath = path
	return m.report, m.err
}

func (m *mockPipeline) AnswerQuestion(ctx context.Context, q string) (string, error) {
	s, err := m.Ask(ctx, q)
	if err != nil {
		return "", err
	}
	return s.Answer, nil
}

func (m *mockPipeline) Ask(_ context.Context, q string) (*domain.QueryState, error) {
	m.questions = append(m.questions, q)
	if m.err != nil {
		return &domain.QueryState{Question: q, Stage: domain.StageFailed}, m.err
	}
	return m.state, nil
}

func (m *mockPipeline) Stats(_ context.Context) (domain.CollectionStats, error) {
	return m.stats, m.err
}

// mockPrompts is a mock implementation of driven.PromptStore.
type mockPrompts struct {
	prompts map[string]string
}

func (m *mockPrompts) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPrompts) Reload() {}
