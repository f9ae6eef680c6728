package usecase

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/naka-gawa/repair-bench/internal/domain"
	"github.com/naka-gawa/repair-bench/internal/gateway"
)

// RuleInvoker runs the repair tool for one rule on a checked out source tree.
type RuleInvoker interface {
	Invoke(ctx context.Context, commitID, sourceTree, statsFile, ruleKey string) (domain.RepairStats, error)
}

// Processor benchmarks every requested rule on one commit inside a disposable working copy.
type Processor struct {
	git       gateway.Git
	invoker   RuleInvoker
	workDir   string
	logger    *log.Logger
	errLogger *log.Logger
}

// NewProcessor creates a new Processor. Working copies are created under workDir,
// or under the OS temp dir when workDir is empty.
func NewProcessor(git gateway.Git, invoker RuleInvoker, workDir string, logger, errLogger *log.Logger) *Processor {
	return &Processor{
		git:       git,
		invoker:   invoker,
		workDir:   workDir,
		logger:    logger,
		errLogger: errLogger,
	}
}

// Process clones commit, runs every rule in ruleKeys against it and removes the clone again.
// The tree is restored to the checked out commit after each rule, whatever the outcome.
// A commit that cannot be checked out is recorded with a crash for every rule.
func (p *Processor) Process(ctx context.Context, commit domain.Commit, ruleKeys []string) (domain.CommitRepairStats, error) {
	scratch, err := os.MkdirTemp(p.workDir, "repair-bench-")
	if err != nil {
		return domain.CommitRepairStats{}, fmt.Errorf("failed to create working directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			p.errLogger.Printf("Failed to remove working directory %s: %v", scratch, err)
		}
	}()

	repoDir := filepath.Join(scratch, "repo")
	result, err := p.checkout(ctx, commit, repoDir)
	if err != nil {
		if ctx.Err() != nil {
			return domain.CommitRepairStats{}, ctx.Err()
		}
		p.errLogger.Printf("Failed to check out %s: %v", commit.Key(), err)
		return crashedCommit(commit.URL, commit.SHA, ruleKeys), nil
	}

	for i, ruleKey := range ruleKeys {
		statsFile := filepath.Join(scratch, fmt.Sprintf("stats-%d.json", i))
		stats, restoreErr, err := p.repairRule(ctx, repoDir, statsFile, result, ruleKey)
		if err != nil {
			return domain.CommitRepairStats{}, err
		}
		result.RepairStats = append(result.RepairStats, stats)

		if restoreErr != nil {
			// The tree may carry this rule's changes, so nothing else can be measured on it.
			p.errLogger.Printf("Failed to restore %s after key %s: %v", result.CommitID(), ruleKey, restoreErr)
			for _, remaining := range ruleKeys[i+1:] {
				result.RepairStats = append(result.RepairStats, domain.EmptyRepairStats(remaining, true))
			}
			break
		}
	}

	p.logger.Printf("Finished %d rules on %s", len(ruleKeys), result.CommitID())
	return result, nil
}

func (p *Processor) checkout(ctx context.Context, commit domain.Commit, repoDir string) (domain.CommitRepairStats, error) {
	if err := p.git.Clone(ctx, commit.URL, repoDir); err != nil {
		return domain.CommitRepairStats{}, err
	}
	if err := p.git.Checkout(ctx, repoDir, commit.SHA); err != nil {
		return domain.CommitRepairStats{}, err
	}
	url, err := p.git.RemoteURL(ctx, repoDir)
	if err != nil {
		return domain.CommitRepairStats{}, err
	}
	sha, err := p.git.HeadCommit(ctx, repoDir)
	if err != nil {
		return domain.CommitRepairStats{}, err
	}
	return domain.CommitRepairStats{ProjectURL: url, CommitSHA: sha}, nil
}

// repairRule invokes one rule and restores the working copy afterwards on every path.
func (p *Processor) repairRule(ctx context.Context, repoDir, statsFile string, commit domain.CommitRepairStats, ruleKey string) (stats domain.RepairStats, restoreErr, err error) {
	defer func() {
		// Restore even when ctx is already cancelled so no modified tree is left behind.
		restoreErr = p.git.Restore(context.WithoutCancel(ctx), repoDir, commit.CommitSHA)
	}()
	stats, err = p.invoker.Invoke(ctx, commit.CommitID(), repoDir, statsFile, ruleKey)
	return stats, nil, err
}

func crashedCommit(url, sha string, ruleKeys []string) domain.CommitRepairStats {
	stats := make([]domain.RepairStats, 0, len(ruleKeys))
	for _, ruleKey := range ruleKeys {
		stats = append(stats, domain.EmptyRepairStats(ruleKey, true))
	}
	return domain.CommitRepairStats{ProjectURL: url, CommitSHA: sha, RepairStats: stats}
}
