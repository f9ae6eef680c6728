package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/repair-bench/internal/config"
	"github.com/naka-gawa/repair-bench/internal/domain"
	"github.com/naka-gawa/repair-bench/internal/gateway"
	"github.com/naka-gawa/repair-bench/internal/usecase"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Benchmarks the repair tool on a list of commits and writes the results as CSV",
	Long: `Clones every commit listed in --commits-csv, runs the repair tool once per rule
on it and writes one row per (url, commit, rule) to --output.

With --compare the commits CSV must be a previous output table; the new results
are compared against it and the command fails if the repair ratios dropped.
The command also fails when any repair attempt crashed.`,
	RunE: runBenchmark,
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := newLogger(cmd)
	errLogger := newErrLogger(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	commitsCSV, _ := cmd.Flags().GetString("commits-csv")
	output, _ := cmd.Flags().GetString("output")
	compare, _ := cmd.Flags().GetBool("compare")
	ruleKeys, _ := cmd.Flags().GetStringSlice("rule-keys")
	resolveGitHub, _ := cmd.Flags().GetBool("resolve-github")

	input, err := gateway.ReadTable(commitsCSV)
	if err != nil {
		return err
	}
	var baseline *domain.Table
	if compare {
		if err := input.RequireStatsSchema(); err != nil {
			return fmt.Errorf("cannot compare with input data: %w", err)
		}
		baseline = &input
	}
	commits, err := gateway.CommitsFromTable(input)
	if err != nil {
		return err
	}

	tool, err := gateway.NewToolGateway(cfg.Tool.Command, cfg.Tool.RulesArgs, logger)
	if err != nil {
		return err
	}
	if len(ruleKeys) == 0 {
		// Rule keys are read from the tool once and handed to the scheduler.
		if ruleKeys, err = tool.RuleKeys(ctx); err != nil {
			return err
		}
		if len(ruleKeys) == 0 {
			return errors.New("the repair tool reported no rule keys")
		}
	}

	var resolver gateway.Resolver
	if resolveGitHub {
		if resolver, err = newGitHubResolver(cmd, cfg); err != nil {
			return err
		}
	}

	invoker := usecase.NewInvoker(tool, cfg.Timeout, logger, errLogger)
	processor := usecase.NewProcessor(gateway.NewGitCLI(logger), invoker, cfg.WorkDir, logger, errLogger)
	scheduler := usecase.NewScheduler(processor, ruleKeys, cfg.ParallelExperiments, cmd.ErrOrStderr(), logger)
	bench := usecase.NewBenchmark(scheduler, usecase.NewAggregator(logger), usecase.NewDetector(logger), resolver, logger)

	outcome, err := bench.Run(ctx, commits, baseline)
	if err != nil {
		return err
	}
	if err := gateway.WriteTable(output, outcome.Table); err != nil {
		return err
	}
	logger.Printf("Wrote %d rows to %s", len(outcome.Table.Rows), output)

	if outcome.Comparison != nil {
		printComparison(cmd.OutOrStdout(), *outcome.Comparison)
	}
	if len(outcome.Crashed) > 0 {
		w := cmd.ErrOrStderr()
		color.New(color.FgRed).Fprintln(w, "Some repairs crashed:")
		for _, id := range outcome.Crashed {
			fmt.Fprintln(w, id)
		}
	}

	if code := outcome.ExitCode(); code != 0 {
		return exitCodeError(code)
	}
	return nil
}

func newGitHubResolver(cmd *cobra.Command, cfg *config.Config) (gateway.Resolver, error) {
	if cfg.GitHub.Token == "" {
		return nil, errors.New("--resolve-github needs a token in GITHUB_TOKEN or github.token")
	}
	resolver, err := gateway.NewGitHubResolver(cfg.GitHub.Token, newLogger(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub resolver: %w", err)
	}
	return resolver, nil
}

func printComparison(w io.Writer, cmp domain.Comparison) {
	fmt.Fprint(w, cmp.Report)
	if cmp.Regressed {
		color.New(color.FgRed).Fprintln(w, "Repair performance has deteriorated")
		return
	}
	color.New(color.FgGreen).Fprintln(w, "No deterioration in repair performance")
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)
	benchmarkCmd.Flags().String("commits-csv", "", "CSV file with at least the columns 'url' and 'commit' (required)")
	benchmarkCmd.Flags().StringP("output", "o", "", "Path to the output CSV file (required)")
	benchmarkCmd.Flags().BoolP("compare", "c", false, fmt.Sprintf("Compare the results with the input, which must have the columns %v", domain.StatsColumns))
	benchmarkCmd.Flags().IntP("parallel-experiments", "p", config.DefaultParallelExperiments, "Number of commits to benchmark in parallel")
	benchmarkCmd.Flags().StringSliceP("rule-keys", "r", nil, "Rule keys to use (default: every rule the repair tool knows)")
	benchmarkCmd.Flags().Duration("timeout", config.DefaultTimeout, "Time limit of a single repair run")
	benchmarkCmd.Flags().String("work-dir", "", "Directory for temporary working copies (default: OS temp dir)")
	benchmarkCmd.Flags().String("tool-command", config.DefaultToolCommand, "Command line that starts the repair tool")
	benchmarkCmd.Flags().Bool("resolve-github", false, "Resolve GitHub commits to full SHAs and canonical URLs first (needs GITHUB_TOKEN)")
	benchmarkCmd.MarkFlagRequired("commits-csv")
	benchmarkCmd.MarkFlagRequired("output")
}
