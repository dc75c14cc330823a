package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent pipeline failures.
// Adapters wrap infrastructure errors with one of these kinds so callers can
// branch with errors.Is without knowing which backend produced them.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates no loader handles the file type.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// Ingestion Errors.

	// ErrEmptyDocument indicates the document has no extractable text.
	ErrEmptyDocument = errors.New("empty document")

	// ErrChunkingFailure indicates an invalid chunker configuration.
	ErrChunkingFailure = errors.New("chunking failure")

	// ErrEmbeddingFailure indicates the embedding model is unavailable
	// or rejected its input.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrIndexWriteFailure indicates the vector index could not be written.
	ErrIndexWriteFailure = errors.New("index write failure")

	// Query Errors.

	// ErrIndexReadFailure indicates the vector index could not be searched.
	ErrIndexReadFailure = errors.New("index read failure")

	// ErrGenerationFailure indicates the language model call failed,
	// timed out or returned a malformed response.
	ErrGenerationFailure = errors.New("generation failure")

	// ErrNoDocumentIndexed indicates a question was asked before any
	// document was ingested into the collection.
	ErrNoDocumentIndexed = errors.New("no document indexed")

	// ErrEmptyQuestion indicates a blank question.
	ErrEmptyQuestion = errors.New("empty question")

	// Index Errors.

	// ErrDimensionMismatch indicates a vector does not match the
	// dimension the collection was populated with.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// IngestError is returned by document processing.
// Kind is one of ErrEmptyDocument, ErrChunkingFailure, ErrEmbeddingFailure,
// ErrIndexWriteFailure, ErrInvalidInput or ErrUnsupportedFormat.
type IngestError struct {
	Kind   error
	Source string
	Err    error
}

// NewIngestError builds an IngestError.
func NewIngestError(kind error, source string, err error) *IngestError {
	return &IngestError{Kind: kind, Source: source, Err: err}
}

func (e *IngestError) Error() string {
	msg := "ingest"
	if e.Source != "" {
		msg += " " + e.Source
	}
	if e.Err == nil || errors.Is(e.Err, e.Kind) {
		return fmt.Sprintf("%s: %v", msg, errOr(e.Err, e.Kind))
	}
	return fmt.Sprintf("%s: %v: %v", msg, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *IngestError) Unwrap() []error {
	return unwrapPair(e.Kind, e.Err)
}

// QueryError is returned by question answering.
// Kind is one of ErrEmbeddingFailure, ErrIndexReadFailure,
// ErrGenerationFailure, ErrNoDocumentIndexed or ErrEmptyQuestion.
type QueryError struct {
	Kind  error
	Stage QueryStage
	Err   error
}

// NewQueryError builds a QueryError.
func NewQueryError(kind error, stage QueryStage, err error) *QueryError {
	return &QueryError{Kind: kind, Stage: stage, Err: err}
}

func (e *QueryError) Error() string {
	msg := "query"
	if e.Stage != "" {
		msg += " (" + e.Stage.String() + ")"
	}
	if e.Err == nil || errors.Is(e.Err, e.Kind) {
		return fmt.Sprintf("%s: %v", msg, errOr(e.Err, e.Kind))
	}
	return fmt.Sprintf("%s: %v: %v", msg, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *QueryError) Unwrap() []error {
	return unwrapPair(e.Kind, e.Err)
}

func errOr(err, fallback error) error {
	if err != nil {
		return err
	}
	return fallback
}

func unwrapPair(kind, cause error) []error {
	errs := make([]error, 0, 2)
	if kind != nil {
		errs = append(errs, kind)
	}
	if cause != nil {
		errs = append(errs, cause)
	}
	return errs
}
