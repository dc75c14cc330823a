// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The pipeline is split the same way: IngestService writes the index,
// Retriever and AnswerGenerator read it, and PipelineService ties the
// three together behind driving.Pipeline.
package services
