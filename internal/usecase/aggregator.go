// Package usecase contains the business logic of the application.
package usecase

import (
	"cmp"
	"fmt"
	"log"
	"slices"

	"github.com/naka-gawa/repair-bench/internal/domain"
)

// Aggregator is the use case for turning per-commit results into a result table.
type Aggregator struct {
	logger *log.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(logger *log.Logger) *Aggregator {
	return &Aggregator{
		logger: logger,
	}
}

// ToTable flattens results into one row per (url, commit, rule), sorted by those
// three columns so the table does not depend on the order results arrived in.
func (a *Aggregator) ToTable(results []domain.CommitRepairStats) (domain.Table, error) {
	if len(results) == 0 {
		return domain.Table{}, fmt.Errorf("%w: no results to aggregate", domain.ErrEmptyInput)
	}
	a.logger.Printf("Usecase: Aggregating %d commit results...", len(results))

	// Every record shares the layout of the first one.
	table := domain.Table{Columns: slices.Clone(domain.StatsColumns)}
	for _, result := range results {
		table.Rows = append(table.Rows, result.Records()...)
	}

	// Sort by url, commit and rule key; ties fall back to the remaining columns.
	slices.SortStableFunc(table.Rows, func(x, y []string) int {
		return cmp.Or(
			cmp.Compare(x[0], y[0]),
			cmp.Compare(x[1], y[1]),
			cmp.Compare(x[2], y[2]),
			slices.Compare(x[3:], y[3:]),
		)
	})

	a.logger.Printf("Usecase: Aggregation complete, %d rows.", len(table.Rows))
	return table, nil
}

// CrashedCommits returns the sorted ids of commits where at least one rule crashed.
func CrashedCommits(results []domain.CommitRepairStats) []string {
	var crashed []string
	for _, result := range results {
		if result.Crash() {
			crashed = append(crashed, result.CommitID())
		}
	}
	slices.Sort(crashed)
	return crashed
}
