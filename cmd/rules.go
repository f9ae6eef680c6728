package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/repair-bench/internal/gateway"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Lists the rule keys the repair tool supports",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		tool, err := gateway.NewToolGateway(cfg.Tool.Command, cfg.Tool.RulesArgs, logger)
		if err != nil {
			return err
		}
		keys, err := tool.RuleKeys(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			// Marshal the keys into a pretty-printed JSON array.
			jsonData, err := json.MarshalIndent(keys, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal rule keys to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		}
		for _, key := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().String("tool-command", "", "Command line that starts the repair tool (default from config)")
	rulesCmd.Flags().Bool("json", false, "Print the rule keys as a JSON array")
}
