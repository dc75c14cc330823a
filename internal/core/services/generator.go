package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
	"github.com/Karagwa/DocChatter/internal/logger"
)

// contextSeparator joins chunk texts in the prompt.
const contextSeparator = "\n\n"

// AnswerGenerator turns a question and its retrieved context into an answer
// with a single language model call. The model output is returned as is.
type AnswerGenerator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	opts    driven.GenerateOptions
}

// GeneratorOption configures an AnswerGenerator.
type GeneratorOption func(*AnswerGenerator)

// WithGenerateOptions sets the options passed to every Generate call.
func WithGenerateOptions(opts driven.GenerateOptions) GeneratorOption {
	return func(g *AnswerGenerator) {
		g.opts = opts
	}
}

// NewAnswerGenerator creates a generator. llm may be nil when no language
// model is configured; Generate then fails with ErrGenerationFailure.
func NewAnswerGenerator(llm driven.LLMService, prompts driven.PromptStore, opts ...GeneratorOption) *AnswerGenerator {
	g := &AnswerGenerator{llm: llm, prompts: prompts}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// JoinContext joins chunk texts in order, separated by a blank line.
func JoinContext(chunks []domain.Chunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	return strings.Join(texts, contextSeparator)
}

// Prompt fills the answer template with question and context.
// Placeholders are substituted in one pass, so braces inside the document
// text are left alone.
func (g *AnswerGenerator) Prompt(question string, chunks []domain.Chunk) (string, error) {
	if g.prompts == nil {
		return "", errors.New("no prompt store configured")
	}
	tmpl, err := g.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return "", fmt.Errorf("load prompt %q: %w", driven.PromptAnswer, err)
	}
	r := strings.NewReplacer("{context}", JoinContext(chunks), "{question}", question)
	return r.Replace(tmpl), nil
}

// Generate answers question from chunks. Errors are *domain.QueryError at
// the GENERATING stage; nothing is retried.
func (g *AnswerGenerator) Generate(ctx context.Context, question string, chunks []domain.Chunk) (string, error) {
	if g.llm == nil {
		return "", domain.NewQueryError(domain.ErrGenerationFailure, domain.StageGenerating,
			errors.New("no language model configured"))
	}

	prompt, err := g.Prompt(question, chunks)
	if err != nil {
		return "", domain.NewQueryError(domain.ErrGenerationFailure, domain.StageGenerating, err)
	}
	logger.Debug("Prompt: %d characters, %d context chunks, model %s", len(prompt), len(chunks), g.llm.ModelName())

	defer logger.Stage("generate")()
	answer, err := g.llm.Generate(ctx, prompt, g.opts)
	if err != nil {
		return "", domain.NewQueryError(domain.ErrGenerationFailure, domain.StageGenerating, err)
	}
	return answer, nil
}
