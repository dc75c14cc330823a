// Package mcp provides an MCP (Model Context Protocol) server adapter for DocChatter.
// It lets AI assistants ingest documents and ask questions about them.
package mcp

import "errors"

// ErrMissingPipeline is returned when the pipeline is not provided.
var ErrMissingPipeline = errors.New("mcp: pipeline is required")
