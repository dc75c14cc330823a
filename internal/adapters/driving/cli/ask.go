package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Karagwa/DocChatter/internal/core/domain"
)

var (
	askShowContext bool
	askOutput      string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves the chunks most similar to the question and asks the language
model to answer using only them. Every question is answered on its own;
earlier questions are never sent to the model.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askShowContext, "show-context", "c", false, "print the retrieved chunks")
	askCmd.Flags().StringVarP(&askOutput, "output", "o", formatText, "output format: text, json or yaml")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := checkFormat(askOutput); err != nil {
		return err
	}
	if err := requirePipeline(cmd.Context()); err != nil {
		return err
	}

	question := strings.Join(args, " ")
	state, err := pipeline.Ask(cmd.Context(), question)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if askOutput != formatText {
		return writeStructured(out, askOutput, answerOutput(state, askShowContext))
	}

	if askShowContext {
		printContext(out, state.Context)
	}
	fmt.Fprintln(out, state.Answer)
	return nil
}

func printContext(w io.Writer, chunks []domain.Chunk) {
	fmt.Fprintln(w, paint(w, headingColor, "Context (%d chunks)", len(chunks)))
	for i, c := range chunks {
		fmt.Fprintln(w, paint(w, dimColor, "[%d] %s #%d, characters %d-%d", i+1, c.Source, c.Position, c.Offset, c.End()))
		fmt.Fprintln(w, indent(c.Content, "    "))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, paint(w, headingColor, "Answer"))
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// answerResult is the structured form of a QueryState.
type answerResult struct {
	Question string          `json:"question" yaml:"question"`
	Answer   string          `json:"answer" yaml:"answer"`
	Context  []contextResult `json:"context,omitempty" yaml:"context,omitempty"`
}

type contextResult struct {
	Source   string `json:"source" yaml:"source"`
	Position int    `json:"position" yaml:"position"`
	Offset   int    `json:"offset" yaml:"offset"`
	Content  string `json:"content" yaml:"content"`
}

func answerOutput(state *domain.QueryState, withContext bool) answerResult {
	res := answerResult{Question: state.Question, Answer: state.Answer}
	if !withContext {
		return res
	}
	for _, c := range state.Context {
		res.Context = append(res.Context, contextResult{
			Source:   c.Source,
			Position: c.Position,
			Offset:   c.Offset,
			Content:  c.Content,
		})
	}
	return res
}
