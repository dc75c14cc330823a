// Package cli implements the docchatter command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Karagwa/DocChatter/internal/app"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
	"github.com/Karagwa/DocChatter/internal/core/ports/driving"
	"github.com/Karagwa/DocChatter/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
	ephemeral bool
)

// Services used by the commands. They are built on first use so that
// commands like version and settings never open the index. Tests assign
// mocks directly.
var (
	settingsService driving.SettingsService
	pipeline        driving.Pipeline
	indexAdmin      driving.IndexAdmin
	promptStore     driven.PromptStore

	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "docchatter",
	Short: "Ask questions about your documents",
	Long: `DocChatter answers questions about documents you give it.

Documents are split into overlapping chunks, embedded and stored in a local
vector index. Each question retrieves the most similar chunks and asks a
language model to answer from them alone.

  docchatter ingest handbook.pdf
  docchatter ask "How many days of leave do I get?"
  docchatter chat`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages to stderr")
	flags.StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.docchatter)")
	flags.BoolVar(&ephemeral, "ephemeral", false, "use an in-memory index that is discarded on exit")
}

// Execute runs the root command and releases any resources it opened.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, closeApp())
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// requireSettings opens the settings service if no test has injected one.
func requireSettings() error {
	if settingsService != nil {
		return nil
	}
	svc, err := app.OpenSettings(configDir, nil)
	if err != nil {
		return err
	}
	settingsService = svc
	return nil
}

// requirePipeline assembles the application if no test has injected a pipeline.
func requirePipeline(ctx context.Context) error {
	if pipeline != nil {
		return nil
	}
	a, err := app.Open(ctx, app.Options{ConfigDir: configDir, Ephemeral: ephemeral})
	if err != nil {
		return err
	}
	application = a
	pipeline = a.Pipeline
	indexAdmin = a.IndexAdmin
	promptStore = a.Prompts
	if settingsService == nil {
		settingsService = a.Settings
	}
	return nil
}

func closeApp() error {
	if application == nil {
		return nil
	}
	err := application.Close()
	application = nil
	pipeline = nil
	indexAdmin = nil
	promptStore = nil
	return err
}
