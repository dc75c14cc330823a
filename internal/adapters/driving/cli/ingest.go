package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driving"
)

var ingestOutput string

var ingestCmd = &cobra.Command{
	Use:     "ingest <file>...",
	Aliases: []string{"process"},
	Short:   "Load, chunk, embed and index documents",
	Long: `Processes each file: extracts its text, splits it into overlapping chunks,
embeds every chunk and adds them to the collection in one batch.

Re-processing a file with the same name replaces its earlier entries unless
index.reingest is set to "append". A failed file leaves the collection unchanged.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestOutput, "output", "o", formatText, "output format: text, json or yaml")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := checkFormat(ingestOutput); err != nil {
		return err
	}
	if err := requirePipeline(cmd.Context()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	reports := make([]*domain.IngestReport, 0, len(args))
	var failed int

	for _, path := range args {
		var progress driving.IngestProgress
		var bar *progressbar.ProgressBar
		if ingestOutput == formatText && isTerminal(cmd.ErrOrStderr()) {
			bar = newProgressBar(cmd.ErrOrStderr(), filepath.Base(path))
			progress = func(done, total int) {
				bar.ChangeMax(total)
				_ = bar.Set(done)
			}
		}

		report, err := pipeline.Ingest(cmd.Context(), path, progress)
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			if len(args) == 1 {
				return err
			}
			failed++
			fmt.Fprintln(cmd.ErrOrStderr(), paint(cmd.ErrOrStderr(), warnColor, "✗ %v", err))
			continue
		}

		reports = append(reports, report)
		if ingestOutput == formatText {
			printIngestReport(out, report)
		}
	}

	if ingestOutput != formatText {
		if err := writeStructured(out, ingestOutput, reportsOutput(reports)); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(args))
	}
	return nil
}

func newProgressBar(w io.Writer, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(color.BlueString("Embedding "+description)),
		progressbar.OptionSetItsString("chunks"),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
}

func printIngestReport(w io.Writer, r *domain.IngestReport) {
	fmt.Fprintln(w, paint(w, successColor, "✓ %s", r.Status()))
	if r.Replaced > 0 {
		fmt.Fprintln(w, paint(w, dimColor, "  replaced %d earlier entries for %s", r.Replaced, r.Source))
	}
}

// ingestResult is the structured form of an IngestReport.
type ingestResult struct {
	Source     string `json:"source" yaml:"source"`
	Collection string `json:"collection" yaml:"collection"`
	Chunks     int    `json:"chunks" yaml:"chunks"`
	Dimensions int    `json:"dimensions" yaml:"dimensions"`
	Replaced   int    `json:"replaced" yaml:"replaced"`
	DocumentID string `json:"document_id" yaml:"document_id"`
}

func reportsOutput(reports []*domain.IngestReport) []ingestResult {
	out := make([]ingestResult, len(reports))
	for i, r := range reports {
		out[i] = ingestResult{
			Source:     r.Source,
			Collection: r.Collection,
			Chunks:     r.Chunks,
			Dimensions: r.Dimensions,
			Replaced:   r.Replaced,
			DocumentID: r.DocumentID,
		}
	}
	return out
}
