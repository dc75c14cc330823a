package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Karagwa/DocChatter/internal/core/domain"
)

// ProcessDocumentInput is the input schema for the process_document tool.
type ProcessDocumentInput struct {
	Path string `json:"path" jsonschema:"path of the document to ingest (.txt, .md, .html, .pdf, .docx)"`
}

// ProcessDocumentOutput is the output schema for the process_document tool.
type ProcessDocumentOutput struct {
	Message    string `json:"message"`
	Source     string `json:"source"`
	Collection string `json:"collection"`
	Chunks     int    `json:"chunks"`
	Replaced   int    `json:"replaced"`
}

// AnswerQuestionInput is the input schema for the answer_question tool.
type AnswerQuestionInput struct {
	Question    string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	ShowContext bool   `json:"show_context,omitempty" jsonschema:"include the retrieved passages in the result"`
}

// AnswerQuestionOutput is the output schema for the answer_question tool.
type AnswerQuestionOutput struct {
	Answer  string          `json:"answer"`
	Context []ContextOutput `json:"context,omitempty"`
}

// ContextOutput is one retrieved passage.
type ContextOutput struct {
	Source   string `json:"source"`
	Position int    `json:"position"`
	Offset   int    `json:"offset"`
	Content  string `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_document",
		Description: "Load, chunk, embed and index a document so questions can be asked about it",
	}, s.handleProcessDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "answer_question",
		Description: "Answer a question using only passages retrieved from the indexed documents. " +
			"Each question is answered independently.",
	}, s.handleAnswerQuestion)
}

func (s *Server) handleProcessDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessDocumentInput,
) (*mcp.CallToolResult, ProcessDocumentOutput, error) {
	report, err := s.ports.Pipeline.Ingest(ctx, strings.TrimSpace(input.Path), nil)
	if err != nil {
		return nil, ProcessDocumentOutput{}, err
	}

	return nil, ProcessDocumentOutput{
		Message:    report.Status(),
		Source:     report.Source,
		Collection: report.Collection,
		Chunks:     report.Chunks,
		Replaced:   report.Replaced,
	}, nil
}

func (s *Server) handleAnswerQuestion(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerQuestionInput,
) (*mcp.CallToolResult, AnswerQuestionOutput, error) {
	state, err := s.ports.Pipeline.Ask(ctx, input.Question)
	if err != nil {
		return nil, AnswerQuestionOutput{}, err
	}

	output := AnswerQuestionOutput{Answer: state.Answer}
	if input.ShowContext {
		output.Context = contextOutput(state.Context)
	}
	return nil, output, nil
}

func contextOutput(chunks []domain.Chunk) []ContextOutput {
	out := make([]ContextOutput, len(chunks))
	for i, c := range chunks {
		out[i] = ContextOutput{
			Source:   c.Source,
			Position: c.Position,
			Offset:   c.Offset,
			Content:  c.Content,
		}
	}
	return out
}
