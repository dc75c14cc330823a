package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	statsOutput string
	resetYes    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Describe the indexed collection",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Administer the vector index",
}

var indexResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every entry in the configured collection",
	Args:  cobra.NoArgs,
	RunE:  runIndexReset,
}

func init() {
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", formatText, "output format: text, json or yaml")
	indexResetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "do not ask for confirmation")
	indexCmd.AddCommand(indexResetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(indexCmd)
}

// collectionResult is the structured form of CollectionStats.
type collectionResult struct {
	Collection string   `json:"collection" yaml:"collection"`
	Entries    int      `json:"entries" yaml:"entries"`
	Dimensions int      `json:"dimensions" yaml:"dimensions"`
	Sources    []string `json:"sources" yaml:"sources"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(statsOutput); err != nil {
		return err
	}
	if err := requirePipeline(cmd.Context()); err != nil {
		return err
	}

	stats, err := pipeline.Stats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if statsOutput != formatText {
		res := collectionResult{
			Collection: stats.Collection,
			Entries:    stats.Entries,
			Dimensions: stats.Dimensions,
			Sources:    stats.Sources,
		}
		if res.Sources == nil {
			res.Sources = []string{}
		}
		return writeStructured(out, statsOutput, res)
	}

	fmt.Fprintln(out, paint(out, headingColor, "Collection %s", stats.Collection))
	fmt.Fprintf(out, "  Entries:    %d\n", stats.Entries)
	if stats.Dimensions > 0 {
		fmt.Fprintf(out, "  Dimensions: %d\n", stats.Dimensions)
	}
	if len(stats.Sources) == 0 {
		fmt.Fprintln(out, "  No documents processed yet.")
		return nil
	}
	fmt.Fprintf(out, "  Documents:  %d\n", len(stats.Sources))
	for _, src := range stats.Sources {
		fmt.Fprintf(out, "    - %s\n", src)
	}
	return nil
}

func runIndexReset(cmd *cobra.Command, _ []string) error {
	if err := requirePipeline(cmd.Context()); err != nil {
		return err
	}
	if indexAdmin == nil {
		return errors.New("index administration not configured")
	}

	stats, err := pipeline.Stats(cmd.Context())
	if err != nil {
		return err
	}

	if !resetYes {
		cmd.Printf("Delete all %d entries in collection %s? [y/N]: ", stats.Entries, stats.Collection)
		if !confirm(bufio.NewReader(cmd.InOrStdin())) {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := indexAdmin.Reset(cmd.Context()); err != nil {
		return err
	}
	cmd.Printf("Collection %s reset (%d entries removed).\n", stats.Collection, stats.Entries)
	return nil
}

func confirm(reader *bufio.Reader) bool {
	answer := strings.ToLower(readLine(reader))
	return answer == "y" || answer == "yes"
}
