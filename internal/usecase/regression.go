package usecase

import (
	"fmt"
	"log"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/repair-bench/internal/domain"
)

// Detector compares two result tables and decides whether repair quality went down.
type Detector struct {
	logger *log.Logger
}

// NewDetector creates a new Detector.
func NewDetector(logger *log.Logger) *Detector {
	return &Detector{logger: logger}
}

// Compare checks candidate against baseline. Both tables must have identical columns.
// The verdict is regressed when either corpus-wide ratio decreased.
func (d *Detector) Compare(baseline, candidate domain.Table) (domain.Comparison, error) {
	if !baseline.SameSchema(candidate) {
		return domain.Comparison{}, fmt.Errorf("%w: baseline columns %v, candidate columns %v",
			domain.ErrSchemaMismatch, baseline.Columns, candidate.Columns)
	}

	var err error
	if baseline, err = baseline.NormalizeBoolColumn(domain.ColumnCrash); err != nil {
		return domain.Comparison{}, fmt.Errorf("baseline: %w", err)
	}
	if candidate, err = candidate.NormalizeBoolColumn(domain.ColumnCrash); err != nil {
		return domain.Comparison{}, fmt.Errorf("candidate: %w", err)
	}

	var cmp domain.Comparison
	diff := symmetricDifference(baseline.Rows, candidate.Rows)
	cmp.Identical = len(diff) == 0
	if !cmp.Identical {
		cmp.ChangedCommits, err = changedCommits(baseline, diff)
		if err != nil {
			return domain.Comparison{}, err
		}
	}

	if cmp.Old, err = repairRatios(baseline); err != nil {
		return domain.Comparison{}, fmt.Errorf("baseline: %w", err)
	}
	if cmp.New, err = repairRatios(candidate); err != nil {
		return domain.Comparison{}, fmt.Errorf("candidate: %w", err)
	}

	totalDropped := cmp.New.TotalRepairRatio < cmp.Old.TotalRepairRatio
	attemptedDropped := cmp.New.AttemptedRepairRatio < cmp.Old.AttemptedRepairRatio
	cmp.Regressed = totalDropped || attemptedDropped
	cmp.Report = renderReport(cmp, totalDropped, attemptedDropped)

	d.logger.Printf("Usecase: Comparison done, %d rows differ, regressed=%t.", len(diff), cmp.Regressed)
	return cmp, nil
}

// symmetricDifference returns the rows that occur exactly once across both tables,
// baseline rows first.
func symmetricDifference(baseline, candidate [][]string) [][]string {
	counts := make(map[string]int, len(baseline)+len(candidate))
	all := append(append([][]string{}, baseline...), candidate...)
	for _, row := range all {
		counts[rowKey(row)]++
	}
	var diff [][]string
	for _, row := range all {
		if counts[rowKey(row)] == 1 {
			diff = append(diff, row)
		}
	}
	return diff
}

func rowKey(row []string) string {
	return strings.Join(row, "\x1f")
}

// changedCommits lists the distinct (url, commit) pairs of the differing rows.
func changedCommits(schema domain.Table, diff [][]string) ([]domain.CommitKey, error) {
	urlIdx := schema.ColumnIndex(domain.ColumnURL)
	commitIdx := schema.ColumnIndex(domain.ColumnCommit)
	if urlIdx < 0 || commitIdx < 0 {
		return nil, fmt.Errorf("%w: tables need %q and %q columns", domain.ErrSchemaMismatch, domain.ColumnURL, domain.ColumnCommit)
	}
	seen := make(map[domain.CommitKey]bool)
	var keys []domain.CommitKey
	for _, row := range diff {
		key := domain.CommitKey{URL: row[urlIdx], SHA: row[commitIdx]}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func repairRatios(t domain.Table) (domain.Ratios, error) {
	successful, err := sumColumn(t, domain.ColumnSuccessfulRepairs)
	if err != nil {
		return domain.Ratios{}, err
	}
	before, err := sumColumn(t, domain.ColumnViolationsBefore)
	if err != nil {
		return domain.Ratios{}, err
	}
	performed, err := sumColumn(t, domain.ColumnPerformedRepairs)
	if err != nil {
		return domain.Ratios{}, err
	}
	// A zero denominator gives NaN or Inf; NaN never compares as a decrease.
	return domain.Ratios{
		TotalRepairRatio:     successful / before,
		AttemptedRepairRatio: successful / performed,
	}, nil
}

func sumColumn(t domain.Table, name string) (float64, error) {
	values, err := t.IntColumn(name)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}
	sum, err := stats.Sum(values)
	if err != nil {
		return 0, fmt.Errorf("failed to sum %q: %w", name, err)
	}
	return sum, nil
}

func renderReport(cmp domain.Comparison, totalDropped, attemptedDropped bool) string {
	var b strings.Builder
	if cmp.Identical {
		b.WriteString("Old and new results match exactly\n")
	} else {
		b.WriteString("Old and new results differ on the following commits:\n")
		commits := table.NewWriter()
		commits.SetStyle(table.StyleLight)
		commits.AppendHeader(table.Row{domain.ColumnURL, domain.ColumnCommit})
		for _, key := range cmp.ChangedCommits {
			commits.AppendRow(table.Row{key.URL, key.SHA})
		}
		b.WriteString(commits.Render())
		b.WriteString("\n")
	}

	ratios := table.NewWriter()
	ratios.SetStyle(table.StyleLight)
	ratios.AppendHeader(table.Row{"ratio", "old", "new", "verdict"})
	ratios.AppendRow(table.Row{"total_repair_ratio", cmp.Old.TotalRepairRatio, cmp.New.TotalRepairRatio, verdict(totalDropped)})
	ratios.AppendRow(table.Row{"attempted_repair_ratio", cmp.Old.AttemptedRepairRatio, cmp.New.AttemptedRepairRatio, verdict(attemptedDropped)})
	b.WriteString("\n")
	b.WriteString(ratios.Render())
	b.WriteString("\n")
	return b.String()
}

func verdict(dropped bool) string {
	if dropped {
		return "deteriorated"
	}
	return "unchanged or improved"
}
