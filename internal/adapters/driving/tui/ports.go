// Package tui provides the interactive chat shell for docchatter.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/Karagwa/DocChatter/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Pipeline ingests documents and answers questions.
	Pipeline driving.Pipeline
}

// NewPorts creates a Ports aggregate.
func NewPorts(pipeline driving.Pipeline) *Ports {
	return &Ports{Pipeline: pipeline}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Pipeline == nil {
		return ErrMissingPipeline
	}
	return nil
}
