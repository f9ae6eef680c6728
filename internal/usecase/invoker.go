package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/naka-gawa/repair-bench/internal/domain"
	"github.com/naka-gawa/repair-bench/internal/gateway"
)

// DefaultRepairTimeout is the wall-clock limit of a single repair invocation.
const DefaultRepairTimeout = 15 * time.Minute

// toolStats is the statistics document the repair tool writes after a run.
type toolStats struct {
	Repairs *[]ruleRepairStats `json:"repairs"`
}

type ruleRepairStats struct {
	RuleKey            string `json:"ruleKey"`
	NbViolationsBefore int    `json:"nbViolationsBefore"`
	NbViolationsAfter  int    `json:"nbViolationsAfter"`
	NbPerformedRepairs int    `json:"nbPerformedRepairs"`
	NbCrashedRepairs   int    `json:"nbCrashedRepairs"`
}

// Invoker runs the repair tool once for a single rule and turns its output into RepairStats.
type Invoker struct {
	tool      gateway.RepairTool
	timeout   time.Duration
	logger    *log.Logger
	errLogger *log.Logger
}

// NewInvoker creates a new Invoker. A non-positive timeout falls back to DefaultRepairTimeout.
func NewInvoker(tool gateway.RepairTool, timeout time.Duration, logger, errLogger *log.Logger) *Invoker {
	if timeout <= 0 {
		timeout = DefaultRepairTimeout
	}
	return &Invoker{
		tool:      tool,
		timeout:   timeout,
		logger:    logger,
		errLogger: errLogger,
	}
}

// Invoke repairs sourceTree with ruleKey and reads the statistics from statsFile.
// A failed or timed out tool run is not an error: it yields the crash sentinel.
// The returned error is reserved for broken tool output and for cancellation of ctx.
func (i *Invoker) Invoke(ctx context.Context, commitID, sourceTree, statsFile, ruleKey string) (domain.RepairStats, error) {
	runCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	err := i.tool.Repair(runCtx, gateway.RepairRequest{
		Source:          sourceTree,
		StatsOutputFile: statsFile,
		RuleKey:         ruleKey,
	})
	if err != nil {
		if ctx.Err() != nil {
			return domain.RepairStats{}, ctx.Err()
		}
		i.errLogger.Printf("Failed to process %s with key %s: %v", commitID, ruleKey, err)
		return domain.EmptyRepairStats(ruleKey, true), nil
	}

	repairs, err := readRepairs(statsFile)
	if err != nil {
		return domain.RepairStats{}, fmt.Errorf("%w: %s with key %s: %w", domain.ErrContractViolation, commitID, ruleKey, err)
	}
	switch len(repairs) {
	case 0:
		return domain.EmptyRepairStats(ruleKey, false), nil
	case 1:
	default:
		return domain.RepairStats{}, fmt.Errorf("%w: %s with key %s: expected at most one repair summary, got %d",
			domain.ErrContractViolation, commitID, ruleKey, len(repairs))
	}

	r := repairs[0]
	if r.RuleKey != "" && r.RuleKey != ruleKey {
		i.logger.Printf("Repair summary for %s names rule %s, recording it as %s", commitID, r.RuleKey, ruleKey)
	}
	return domain.NewRepairStats(ruleKey, r.NbViolationsBefore, r.NbViolationsAfter, r.NbPerformedRepairs, r.NbCrashedRepairs), nil
}

func readRepairs(statsFile string) ([]ruleRepairStats, error) {
	data, err := os.ReadFile(statsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read statistics: %w", err)
	}
	var stats toolStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to parse statistics: %w", err)
	}
	if stats.Repairs == nil {
		return nil, fmt.Errorf("statistics have no %q entry", "repairs")
	}
	return *stats.Repairs, nil
}
