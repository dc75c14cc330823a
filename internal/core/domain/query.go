package domain

// QueryStage is a step of the query workflow.
type QueryStage string

// Query workflow stages.
const (
	StageStart      QueryStage = "START"
	StageRetrieving QueryStage = "RETRIEVING"
	StageGenerating QueryStage = "GENERATING"
	StageDone       QueryStage = "DONE"
	StageFailed     QueryStage = "FAILED"
)

// IsTerminal returns true if no further steps run after this stage.
func (s QueryStage) IsTerminal() bool {
	return s == StageDone || s == StageFailed
}

// String returns the string representation.
func (s QueryStage) String() string {
	return string(s)
}

// QueryState is the ephemeral record of a single question.
// It is created per question and discarded once the answer is returned.
// No QueryState ever refers to an earlier one.
type QueryState struct {
	Question string

	// Context holds the retrieved chunks in descending similarity order.
	Context []Chunk

	Answer string

	Stage QueryStage
}

// ChatTurn is one question and answer pair shown by a chat shell.
// Chat history is display-only and is never passed back into the pipeline.
type ChatTurn struct {
	Question string
	Answer   string
	Err      error
}
