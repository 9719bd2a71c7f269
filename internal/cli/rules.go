package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/huimingz/commitguard/internal/secrets"
)

var (
	rulesPatterns  string
	rulesThreshold string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect secret detection rules",
	Long:  `Commands for listing the active secret detection rules and printing the built-in set.`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active rules",
	Long: `List the rules that pass validation and the confidence threshold, in scan order.

Rules with an invalid regex or confidence are skipped with a warning.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		logger, err := configureLogger(cfg)
		if err != nil {
			return err
		}

		guard, err := buildGuard(cfg, guardOverrides{
			PatternsFile: rulesPatterns,
			Threshold:    rulesThreshold,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to set up secret detection: %w", err)
		}

		out := cmd.OutOrStdout()
		detector := guard.Detector()
		rules := detector.Rules()

		bold := color.New(color.Bold)
		cyan := color.New(color.FgCyan)

		if len(rules) == 0 {
			fmt.Fprintf(out, "No rules at or above confidence %s.\n", detector.Threshold())
			return nil
		}

		bold.Fprintf(out, "Active rules (threshold %s):\n\n", detector.Threshold())
		for _, rule := range rules {
			fmt.Fprintf(out, "  %-32s %-8s ", rule.ID, rule.Confidence)
			cyan.Fprintln(out, rule.Pattern.String())
		}
		fmt.Fprintf(out, "\n%d rule(s), strategy %s\n", len(rules), guard.Strategy())
		return nil
	},
}

var rulesDefaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the built-in rules file",
	Long: `Print the built-in rules as YAML. Save the output, edit it and point
secrets.patterns_file (or --patterns) at it to customize detection.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(secrets.DefaultPatternsYAML())
		return err
	},
}

func init() {
	rulesListCmd.Flags().StringVar(&rulesPatterns, "patterns", "", "Secret patterns YAML file (overrides config)")
	rulesListCmd.Flags().StringVar(&rulesThreshold, "threshold", "", "Minimum rule confidence: low, medium, high or 0-1 (overrides config)")

	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesDefaultsCmd)
	rootCmd.AddCommand(rulesCmd)
}
