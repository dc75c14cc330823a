package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
	"github.com/Karagwa/DocChatter/internal/core/ports/driving"
	"github.com/Karagwa/DocChatter/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.Pipeline = (*PipelineService)(nil)

// PipelineService is the orchestrator behind process_document and
// answer_question. Both workflows are fixed call sequences: ingestion is
// load, split, embed, write; a query is retrieve then generate.
type PipelineService struct {
	ingest    *IngestService
	retriever *Retriever
	generator *AnswerGenerator
	index     driven.VectorIndex
}

// NewPipelineService creates the orchestrator from its collaborators.
func NewPipelineService(
	ingest *IngestService,
	retriever *Retriever,
	generator *AnswerGenerator,
	index driven.VectorIndex,
) *PipelineService {
	return &PipelineService{
		ingest:    ingest,
		retriever: retriever,
		generator: generator,
		index:     index,
	}
}

// ProcessDocument ingests the file at path and returns a status message.
func (s *PipelineService) ProcessDocument(ctx context.Context, path string) (string, error) {
	report, err := s.Ingest(ctx, path, nil)
	if err != nil {
		return "", err
	}
	return report.Status(), nil
}

// Ingest ingests the file at path and returns the report.
func (s *PipelineService) Ingest(
	ctx context.Context, path string, progress driving.IngestProgress,
) (*domain.IngestReport, error) {
	return s.ingest.Ingest(ctx, path, progress)
}

// AnswerQuestion answers question and returns only the answer text.
func (s *PipelineService) AnswerQuestion(ctx context.Context, question string) (string, error) {
	state, err := s.Ask(ctx, question)
	if err != nil {
		return "", err
	}
	return state.Answer, nil
}

// Ask answers question from the indexed collection.
//
// The returned state is never nil. On failure its Stage is FAILED and the
// *domain.QueryError records the stage that failed.
func (s *PipelineService) Ask(ctx context.Context, question string) (*domain.QueryState, error) {
	logger.Section("Question")
	state := &domain.QueryState{Question: question, Stage: domain.StageStart}

	fail := func(err error) (*domain.QueryState, error) {
		logger.Warn("Query failed: %v", err)
		state.Stage = domain.StageFailed
		return state, err
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return fail(domain.NewQueryError(domain.ErrEmptyQuestion, domain.StageStart, nil))
	}

	state.Stage = domain.StageRetrieving
	if err := s.ensureIndexed(ctx); err != nil {
		return fail(err)
	}
	chunks, err := s.retriever.Retrieve(ctx, question, 0)
	if err != nil {
		return fail(err)
	}
	state.Context = chunks
	logger.Debug("Retrieved %d chunks", len(chunks))

	state.Stage = domain.StageGenerating
	answer, err := s.generator.Generate(ctx, question, chunks)
	if err != nil {
		return fail(err)
	}
	state.Answer = answer
	state.Stage = domain.StageDone
	return state, nil
}

// ensureIndexed reports ErrNoDocumentIndexed for an empty collection. The
// count comes from the index itself, so it holds across restarts.
func (s *PipelineService) ensureIndexed(ctx context.Context) error {
	if s.index == nil {
		return domain.NewQueryError(domain.ErrIndexReadFailure, domain.StageRetrieving,
			errors.New("no vector index configured"))
	}
	n, err := s.index.Count(ctx)
	if err != nil {
		return domain.NewQueryError(domain.ErrIndexReadFailure, domain.StageRetrieving, err)
	}
	if n == 0 {
		return domain.NewQueryError(domain.ErrNoDocumentIndexed, domain.StageRetrieving, nil)
	}
	return nil
}

// Stats describes the indexed collection.
func (s *PipelineService) Stats(ctx context.Context) (domain.CollectionStats, error) {
	stats, err := s.index.Stats(ctx)
	if err != nil {
		return domain.CollectionStats{}, fmt.Errorf("%w: %w", domain.ErrIndexReadFailure, err)
	}
	return stats, nil
}
