package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/services"
)

var settingsOutput string

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change chunking, retrieval, provider and index settings.

Settings are read from defaults, then the config file, then DOCCHATTER_*
environment variables. API keys are only ever read from the environment.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a setting, or remove it when no value is given",
	Long: `Set a single setting in the config file, for example:

  docchatter settings set chunking.size 800
  docchatter settings set index.backend postgres
  docchatter settings set llm.model        (reverts to the default)`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireSettings(); err != nil {
			return err
		}
		cmd.Println(settingsService.ConfigPath())
		return nil
	},
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and ping the configured providers",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Choose the embedding provider",
	Long: `Choose the embedding provider and model interactively.

Switching embedding models changes vector dimensions. Reset the index or pick
another index.collection afterwards.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireSettings(); err != nil {
			return err
		}
		return configureEmbeddingProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
	},
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Choose the LLM provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireSettings(); err != nil {
			return err
		}
		return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
	},
}

func init() {
	settingsShowCmd.Flags().StringVarP(&settingsOutput, "output", "o", formatText, "output format: text, json or yaml")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(settingsOutput); err != nil {
		return err
	}
	if err := requireSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	values := services.Values(settings)
	out := cmd.OutOrStdout()
	if settingsOutput != formatText {
		return writeStructured(out, settingsOutput, values)
	}

	section := ""
	for _, key := range settingsService.Keys() {
		group, name, _ := strings.Cut(key, ".")
		if group != section {
			if section != "" {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, paint(out, headingColor, "[%s]", group))
			section = group
		}
		fmt.Fprintf(out, "  %-20s %v\n", name, displayValue(key, values[key]))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, paint(out, headingColor, "[credentials]"))
	printCredential(out, "embedding", settings.Embedding.Provider, settings.Embedding.APIKeyEnv, settings.Embedding.APIKey)
	printCredential(out, "llm", settings.LLM.Provider, settings.LLM.APIKeyEnv, settings.LLM.APIKey)
	fmt.Fprintln(out)

	if err := settingsService.Validate(); err != nil {
		fmt.Fprintln(out, paint(out, warnColor, "Warning: %v", err))
		fmt.Fprintln(out, "Run 'docchatter settings set <key> <value>' to fix it.")
	} else {
		fmt.Fprintln(out, "Configuration is valid.")
	}
	return nil
}

func printCredential(w io.Writer, label string, provider domain.AIProvider, env, key string) {
	if env == "" {
		env = provider.DefaultAPIKeyEnv()
	}
	switch {
	case !provider.RequiresAPIKey():
		fmt.Fprintf(w, "  %-20s not required (%s)\n", label, provider)
	case key == "":
		fmt.Fprintf(w, "  %-20s not set, export %s\n", label, env)
	default:
		fmt.Fprintf(w, "  %-20s %s (from %s)\n", label, maskAPIKey(key), env)
	}
}

// displayValue hides the password part of a DSN.
func displayValue(key string, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if s == "" {
		return "(not set)"
	}
	if key != "index.dsn" {
		return s
	}
	scheme, rest, found := strings.Cut(s, "://")
	if !found {
		return s
	}
	userinfo, host, found := strings.Cut(rest, "@")
	if !found {
		return s
	}
	user, _, hasPass := strings.Cut(userinfo, ":")
	if !hasPass {
		return s
	}
	return scheme + "://" + user + ":****@" + host
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	key := args[0]
	value := ""
	if len(args) == 2 {
		value = args[1]
	}

	if err := settingsService.Set(key, value); err != nil {
		return err
	}
	if value == "" {
		cmd.Printf("%s reset to default\n", key)
	} else {
		cmd.Printf("%s = %s\n", key, value)
	}
	if strings.HasPrefix(key, "embedding.") {
		cmd.Println("Embedding changes take effect for new collections. Run 'docchatter index reset' if dimensions changed.")
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	var errs []error
	check := func(label string, fn func() error) {
		cmd.Printf("%-22s", label)
		if err := fn(); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			errs = append(errs, err)
			return
		}
		cmd.Println("OK")
	}

	check("Settings", settingsService.Validate)
	check("Embedding provider", settingsService.ValidateEmbeddingConfig)
	check("LLM provider", settingsService.ValidateLLMConfig)
	return errors.Join(errs...)
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := domain.DefaultEmbeddingModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)

	if err := settingsService.SetEmbeddingProvider(selected, model); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	cmd.Printf("Embedding provider configured: %s (%s)\n", selected.Description(), model)
	printKeyHint(cmd, selected)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)

	if err := settingsService.SetLLMProvider(selected, model); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	cmd.Printf("LLM provider configured: %s (%s)\n", selected.Description(), model)
	printKeyHint(cmd, selected)
	return nil
}

// printKeyHint tells the user which variable to export. Keys are never prompted for.
func printKeyHint(cmd *cobra.Command, provider domain.AIProvider) {
	if !provider.RequiresAPIKey() {
		return
	}
	cmd.Printf("Export %s with your API key, or put it in a .env file.\n", provider.DefaultAPIKeyEnv())
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
