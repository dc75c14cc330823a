package mcp

import (
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
	"github.com/Karagwa/DocChatter/internal/core/ports/driving"
)

// Ports aggregates the interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Pipeline ingests documents and answers questions.
	Pipeline driving.Pipeline

	// Prompts exposes the prompt templates as resources. Optional.
	Prompts driven.PromptStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Pipeline == nil {
		return ErrMissingPipeline
	}
	return nil
}
