package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/repair-bench/internal/gateway"
	"github.com/naka-gawa/repair-bench/internal/usecase"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compares two result tables and fails if the repair ratios dropped",
	Long: `Compares a candidate result table with a baseline written by an earlier
benchmark run, without running the repair tool. Both files must have exactly
the columns written by the benchmark command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)

		baselinePath, _ := cmd.Flags().GetString("baseline")
		candidatePath, _ := cmd.Flags().GetString("candidate")

		baseline, err := gateway.ReadTable(baselinePath)
		if err != nil {
			return err
		}
		candidate, err := gateway.ReadTable(candidatePath)
		if err != nil {
			return err
		}

		cmp, err := usecase.NewDetector(logger).Compare(baseline, candidate)
		if err != nil {
			return err
		}
		printComparison(cmd.OutOrStdout(), cmp)
		if showDiff, _ := cmd.Flags().GetBool("diff"); showDiff && !cmp.Identical {
			fmt.Fprint(cmd.OutOrStdout(), usecase.RowDiff(baseline, candidate, cmp.ChangedCommits))
		}
		if cmp.Regressed {
			return exitCodeError(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringP("baseline", "b", "", "Result table of the earlier run (required)")
	compareCmd.Flags().StringP("candidate", "n", "", "Result table of the new run (required)")
	compareCmd.Flags().Bool("diff", false, "Also print the rows of the differing commits as a diff")
	compareCmd.MarkFlagRequired("baseline")
	compareCmd.MarkFlagRequired("candidate")
}
