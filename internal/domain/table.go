package domain

import (
	"fmt"
	"slices"
	"strconv"
)

// Column names of the result table.
const (
	ColumnURL               = "url"
	ColumnCommit            = "commit"
	ColumnRuleKey           = "rule_key"
	ColumnCrash             = "crash"
	ColumnViolationsBefore  = "num_violations_before"
	ColumnViolationsAfter   = "num_violations_after"
	ColumnPerformedRepairs  = "num_performed_repairs"
	ColumnCrashedRepairs    = "num_crashed_repairs"
	ColumnSuccessfulRepairs = "num_successful_repairs"
	ColumnFailedRepairs     = "num_failed_repairs"
)

// StatsColumns is the fixed column order of a result table.
// Two tables can only be compared when they share exactly this layout.
var StatsColumns = []string{
	ColumnURL,
	ColumnCommit,
	ColumnRuleKey,
	ColumnCrash,
	ColumnViolationsBefore,
	ColumnViolationsAfter,
	ColumnPerformedRepairs,
	ColumnCrashedRepairs,
	ColumnSuccessfulRepairs,
	ColumnFailedRepairs,
}

// Table is a tabular result set. Column order is part of its schema.
type Table struct {
	Columns []string
	Rows    [][]string
}

// SameSchema reports whether both tables have identical columns in identical order.
func (t Table) SameSchema(other Table) bool {
	return slices.Equal(t.Columns, other.Columns)
}

// ColumnIndex returns the position of the named column, or -1.
func (t Table) ColumnIndex(name string) int {
	return slices.Index(t.Columns, name)
}

// IntColumn parses every value of the named column as an integer.
func (t Table) IntColumn(name string) ([]float64, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: missing column %q", ErrSchemaMismatch, name)
	}
	values := make([]float64, 0, len(t.Rows))
	for i, row := range t.Rows {
		if idx >= len(row) {
			return nil, fmt.Errorf("row %d has no value for column %q", i, name)
		}
		v, err := strconv.Atoi(row[idx])
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q in row %d: %w", name, i, err)
		}
		values = append(values, float64(v))
	}
	return values, nil
}

// FormatBool renders booleans the way stored result tables spell them.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// NormalizeBoolColumn returns a copy of t with every value of the named column
// rewritten in FormatBool spelling. Any strconv.ParseBool spelling is accepted.
// A table without the column is returned unchanged.
func (t Table) NormalizeBoolColumn(name string) (Table, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return t, nil
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx >= len(row) {
			return Table{}, fmt.Errorf("row %d has no value for column %q", i, name)
		}
		b, err := strconv.ParseBool(row[idx])
		if err != nil {
			return Table{}, fmt.Errorf("failed to parse %q in row %d: %w", name, i, err)
		}
		rows[i] = slices.Clone(row)
		rows[i][idx] = FormatBool(b)
	}
	return Table{Columns: t.Columns, Rows: rows}, nil
}

// RequireStatsSchema fails unless the table is laid out exactly as StatsColumns.
func (t Table) RequireStatsSchema() error {
	if !slices.Equal(t.Columns, StatsColumns) {
		return fmt.Errorf("%w: expected columns %v but found %v", ErrSchemaMismatch, StatsColumns, t.Columns)
	}
	return nil
}
