package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/naka-gawa/repair-bench/internal/domain"
	"github.com/naka-gawa/repair-bench/internal/gateway"
)

// Outcome is everything a benchmark run produced.
type Outcome struct {
	Results    []domain.CommitRepairStats
	Table      domain.Table
	Comparison *domain.Comparison
	Crashed    []string
}

// ExitCode is 1 when the run regressed against the baseline or any rule crashed, 0 otherwise.
func (o Outcome) ExitCode() int {
	if o.Comparison != nil && o.Comparison.Regressed {
		return 1
	}
	if len(o.Crashed) > 0 {
		return 1
	}
	return 0
}

// Benchmark wires the scheduler, aggregator and detector into one run.
type Benchmark struct {
	scheduler  *Scheduler
	aggregator *Aggregator
	detector   *Detector
	resolver   gateway.Resolver
	logger     *log.Logger
}

// NewBenchmark creates a new Benchmark. resolver may be nil to use the input as is.
func NewBenchmark(scheduler *Scheduler, aggregator *Aggregator, detector *Detector, resolver gateway.Resolver, logger *log.Logger) *Benchmark {
	return &Benchmark{
		scheduler:  scheduler,
		aggregator: aggregator,
		detector:   detector,
		resolver:   resolver,
		logger:     logger,
	}
}

// Run benchmarks commits and, when baseline is non-nil, compares the result against it.
func (b *Benchmark) Run(ctx context.Context, commits []domain.Commit, baseline *domain.Table) (Outcome, error) {
	if len(commits) == 0 {
		return Outcome{}, fmt.Errorf("%w: no commits to benchmark", domain.ErrEmptyInput)
	}
	if baseline != nil {
		if err := baseline.RequireStatsSchema(); err != nil {
			return Outcome{}, fmt.Errorf("cannot compare with input data: %w", err)
		}
	}

	if b.resolver != nil {
		resolved, err := b.resolver.Resolve(ctx, commits)
		if err != nil {
			return Outcome{}, err
		}
		commits = resolved
	}

	results, err := Collect(b.scheduler.Run(ctx, commits))
	if err != nil {
		return Outcome{}, err
	}

	table, err := b.aggregator.ToTable(results)
	if err != nil {
		return Outcome{}, err
	}
	outcome := Outcome{
		Results: results,
		Table:   table,
		Crashed: CrashedCommits(results),
	}

	if baseline != nil {
		cmp, err := b.detector.Compare(*baseline, table)
		if err != nil {
			return Outcome{}, err
		}
		outcome.Comparison = &cmp
	}
	return outcome, nil
}
