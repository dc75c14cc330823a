// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - Chunker: Splits document text into overlapping chunks
//   - EmbeddingService: Maps text to vectors (embed / embed one)
//   - LLMService: Generates answer text from a prompt
//   - VectorIndex: Durable collection of chunk vectors with similarity search
//   - DocumentLoader: Reads a file into a Document
//   - PromptStore: User-editable prompt templates
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
