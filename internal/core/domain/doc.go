// Package domain defines the core entities of the document question-answering
// pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: raw text loaded from one file
//   - Chunk: a contiguous slice of a Document with its start offset
//   - IndexEntry: a Chunk paired with its embedding vector
//   - QueryState: the ephemeral record of one question
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
