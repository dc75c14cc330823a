package driving

import (
	"context"

	"github.com/Karagwa/DocChatter/internal/core/domain"
)

// IngestProgress is called as chunk embeddings complete.
// done counts chunks embedded so far out of total.
type IngestProgress func(done, total int)

// Pipeline is the document question-answering entry point.
// Every question is answered independently; no chat history is consumed.
type Pipeline interface {
	// ProcessDocument loads, chunks, embeds and indexes the file at path.
	// It returns a human-readable status message or an *domain.IngestError.
	ProcessDocument(ctx context.Context, path string) (string, error)

	// Ingest is ProcessDocument returning the structured report.
	// progress may be nil.
	Ingest(ctx context.Context, path string, progress IngestProgress) (*domain.IngestReport, error)

	// AnswerQuestion retrieves context for question and generates an answer.
	// It returns the raw answer text or an *domain.QueryError.
	AnswerQuestion(ctx context.Context, question string) (string, error)

	// Ask is AnswerQuestion returning the full query state, including the
	// retrieved context. On failure the state records the failed stage.
	Ask(ctx context.Context, question string) (*domain.QueryState, error)

	// Stats describes the indexed collection.
	Stats(ctx context.Context) (domain.CollectionStats, error)
}

// IndexAdmin exposes administrative operations that sit outside the
// question-answering workflow.
type IndexAdmin interface {
	// Reset deletes every entry in the configured collection.
	Reset(ctx context.Context) error
}
