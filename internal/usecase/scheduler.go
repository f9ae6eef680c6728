package usecase

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/naka-gawa/repair-bench/internal/domain"
	"golang.org/x/sync/errgroup"
)

// CommitProcessor benchmarks all rules on a single commit.
type CommitProcessor interface {
	Process(ctx context.Context, commit domain.Commit, ruleKeys []string) (domain.CommitRepairStats, error)
}

// Scheduler fans commits out over a bounded pool of workers and streams back
// each commit's stats as soon as it is done.
type Scheduler struct {
	processor   CommitProcessor
	ruleKeys    []string
	concurrency int
	progress    io.Writer
	logger      *log.Logger
}

// NewScheduler creates a new Scheduler running up to concurrency commits at once.
func NewScheduler(processor CommitProcessor, ruleKeys []string, concurrency int, progress io.Writer, logger *log.Logger) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		processor:   processor,
		ruleKeys:    ruleKeys,
		concurrency: concurrency,
		progress:    progress,
		logger:      logger,
	}
}

// Run processes every distinct commit and delivers results in completion order.
// The returned channel is closed once all work is done; the caller must drain it
// before calling wait, which reports the first fatal error, if any.
func (s *Scheduler) Run(ctx context.Context, commits []domain.Commit) (<-chan domain.CommitRepairStats, func() error) {
	unique := DedupeCommits(commits)
	s.logger.Printf("Usecase: Processing %d unique commits (%d input rows) with %d rules on %d workers...",
		len(unique), len(commits), len(s.ruleKeys), s.concurrency)

	finished := make(chan domain.CommitRepairStats)
	errc := make(chan error, 1)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)

	go func() {
		defer close(finished)
		for _, commit := range unique {
			if egCtx.Err() != nil {
				break
			}
			eg.Go(func() error {
				result, err := s.processor.Process(egCtx, commit, s.ruleKeys)
				if err != nil {
					return fmt.Errorf("failed to process %s: %w", commit.Key(), err)
				}
				select {
				case finished <- result:
					return nil
				case <-egCtx.Done():
					return egCtx.Err()
				}
			})
		}
		errc <- eg.Wait()
	}()

	// A single goroutine reports progress so the writer never sees concurrent writes.
	results := make(chan domain.CommitRepairStats, s.concurrency)
	go func() {
		defer close(results)
		done := 0
		for result := range finished {
			done++
			fmt.Fprintf(s.progress, "[%d/%d] Processed %s\n", done, len(unique), result.CommitID())
			results <- result
		}
	}()

	return results, sync.OnceValue(func() error { return <-errc })
}

// Collect drains results and returns them together with the outcome of wait.
func Collect(results <-chan domain.CommitRepairStats, wait func() error) ([]domain.CommitRepairStats, error) {
	var collected []domain.CommitRepairStats
	for result := range results {
		collected = append(collected, result)
	}
	if err := wait(); err != nil {
		return nil, err
	}
	return collected, nil
}

// DedupeCommits keeps the first entry of every (url, commit) pair, preserving input order.
func DedupeCommits(commits []domain.Commit) []domain.Commit {
	seen := make(map[domain.CommitKey]bool, len(commits))
	unique := make([]domain.Commit, 0, len(commits))
	for _, commit := range commits {
		if seen[commit.Key()] {
			continue
		}
		seen[commit.Key()] = true
		unique = append(unique, commit)
	}
	return unique
}
