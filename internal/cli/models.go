package cli

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/huimingz/commitguard/internal/config"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage LLM models",
	Long:  `Commands for managing and listing configured LLM models.`,
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured models",
	Long:  `List all LLM models configured in the configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if len(cfg.Models) == 0 {
			fmt.Fprintln(out, "No models configured.")
			fmt.Fprintln(out, "\nRun 'commitguard init' to create a configuration file.")
			return nil
		}

		bold := color.New(color.Bold)
		green := color.New(color.FgGreen)
		cyan := color.New(color.FgCyan)

		bold.Fprintln(out, "Configured Models:")
		fmt.Fprintln(out)

		names := make([]string, 0, len(cfg.Models))
		for name := range cfg.Models {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			model := cfg.Models[name]
			if name == cfg.DefaultModel {
				green.Fprintf(out, "  ✓ %s (default)\n", name)
			} else {
				fmt.Fprintf(out, "    %s\n", name)
			}

			cyan.Fprintf(out, "      Provider: %s\n", model.Provider)
			cyan.Fprintf(out, "      Model:    %s\n", model.Model)
			if model.BaseURL != "" {
				cyan.Fprintf(out, "      Base URL: %s\n", model.BaseURL)
			}
			fmt.Fprintln(out)
		}

		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	rootCmd.AddCommand(modelsCmd)
}
