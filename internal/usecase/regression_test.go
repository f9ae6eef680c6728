package usecase

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/repair-bench/internal/domain"
)

// statsRow builds the result row of one rule on a commit of the same test repository.
func statsRow(commit, rule string, before, after, performed int) []string {
	crs := domain.CommitRepairStats{
		ProjectURL:  "https://github.com/org/repo",
		CommitSHA:   commit,
		RepairStats: []domain.RepairStats{domain.NewRepairStats(rule, before, after, performed, 0)},
	}
	return crs.Records()[0]
}

func statsTable(rows ...[]string) domain.Table {
	return domain.Table{Columns: domain.StatsColumns, Rows: rows}
}

func TestDetector_Compare(t *testing.T) {
	testCases := []struct {
		name              string
		baseline          domain.Table
		candidate         domain.Table
		expectedRegressed bool
		expectedIdentical bool
		expectedChanged   []domain.CommitKey
		expectedOld       domain.Ratios
		expectedNew       domain.Ratios
		reportContains    []string
	}{
		{
			name: "total ratio drops while attempted ratio improves",
			// 4/8 = 0.5 and 4/5 = 0.8
			baseline: statsTable(statsRow("c1", "A", 8, 4, 5)),
			// 36/90 = 0.4 and 36/40 = 0.9
			candidate:         statsTable(statsRow("c1", "A", 90, 54, 40)),
			expectedRegressed: true,
			expectedChanged:   []domain.CommitKey{{URL: "https://github.com/org/repo", SHA: "c1"}},
			expectedOld:       domain.Ratios{TotalRepairRatio: 0.5, AttemptedRepairRatio: 0.8},
			expectedNew:       domain.Ratios{TotalRepairRatio: 0.4, AttemptedRepairRatio: 0.9},
			reportContains:    []string{"differ on the following commits", "deteriorated", "c1"},
		},
		{
			name:              "identical tables do not regress",
			baseline:          statsTable(statsRow("c1", "A", 8, 4, 5), statsRow("c2", "B", 2, 0, 2)),
			candidate:         statsTable(statsRow("c1", "A", 8, 4, 5), statsRow("c2", "B", 2, 0, 2)),
			expectedIdentical: true,
			expectedOld:       domain.Ratios{TotalRepairRatio: 0.6, AttemptedRepairRatio: 6.0 / 7.0},
			expectedNew:       domain.Ratios{TotalRepairRatio: 0.6, AttemptedRepairRatio: 6.0 / 7.0},
			reportContains:    []string{"Old and new results match exactly"},
		},
		{
			name:              "improvement on one commit is not a regression",
			baseline:          statsTable(statsRow("c1", "A", 8, 4, 5), statsRow("c2", "B", 2, 2, 2)),
			candidate:         statsTable(statsRow("c1", "A", 8, 4, 5), statsRow("c2", "B", 2, 0, 2)),
			expectedChanged:   []domain.CommitKey{{URL: "https://github.com/org/repo", SHA: "c2"}},
			expectedOld:       domain.Ratios{TotalRepairRatio: 0.4, AttemptedRepairRatio: 4.0 / 7.0},
			expectedNew:       domain.Ratios{TotalRepairRatio: 0.6, AttemptedRepairRatio: 6.0 / 7.0},
			reportContains:    []string{"unchanged or improved"},
		},
		{
			name: "a regression on one commit can be masked by another",
			baseline: statsTable(
				statsRow("c1", "A", 4, 2, 2),
				statsRow("c2", "B", 4, 2, 2),
			),
			candidate: statsTable(
				statsRow("c1", "A", 4, 3, 1),
				statsRow("c2", "B", 4, 1, 3),
			),
			expectedChanged: []domain.CommitKey{
				{URL: "https://github.com/org/repo", SHA: "c1"},
				{URL: "https://github.com/org/repo", SHA: "c2"},
			},
			expectedOld: domain.Ratios{TotalRepairRatio: 0.5, AttemptedRepairRatio: 1},
			expectedNew: domain.Ratios{TotalRepairRatio: 0.5, AttemptedRepairRatio: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			detector := NewDetector(discardLogger())

			cmp, err := detector.Compare(tc.baseline, tc.candidate)

			require.NoError(t, err)
			assert.Equal(t, tc.expectedRegressed, cmp.Regressed)
			assert.Equal(t, tc.expectedIdentical, cmp.Identical)
			assert.Equal(t, tc.expectedChanged, cmp.ChangedCommits)
			assert.InDelta(t, tc.expectedOld.TotalRepairRatio, cmp.Old.TotalRepairRatio, 1e-9)
			assert.InDelta(t, tc.expectedOld.AttemptedRepairRatio, cmp.Old.AttemptedRepairRatio, 1e-9)
			assert.InDelta(t, tc.expectedNew.TotalRepairRatio, cmp.New.TotalRepairRatio, 1e-9)
			assert.InDelta(t, tc.expectedNew.AttemptedRepairRatio, cmp.New.AttemptedRepairRatio, 1e-9)
			for _, s := range tc.reportContains {
				assert.Contains(t, cmp.Report, s)
			}
		})
	}
}

func TestDetector_SchemaMismatch(t *testing.T) {
	short := domain.Table{
		Columns: []string{domain.ColumnURL, domain.ColumnCommit},
		Rows:    [][]string{{"https://github.com/org/repo", "c1"}},
	}
	full := statsTable(statsRow("c1", "A", 8, 4, 5))

	_, err := NewDetector(discardLogger()).Compare(short, full)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)

	reordered := domain.Table{Columns: append([]string{domain.ColumnCommit, domain.ColumnURL}, domain.StatsColumns[2:]...)}
	_, err = NewDetector(discardLogger()).Compare(full, reordered)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestSymmetricDifference(t *testing.T) {
	a := []string{"a"}
	b := []string{"b"}
	c := []string{"c"}
	// Rows present in both, or twice in one table, cancel out.
	diff := symmetricDifference([][]string{a, b, b}, [][]string{a, c})
	assert.Equal(t, [][]string{c}, diff)
}

func TestDetector_CrashSpellings(t *testing.T) {
	stored := domain.EmptyRepairStats("A", true)
	row := domain.CommitRepairStats{ProjectURL: "u", CommitSHA: "c", RepairStats: []domain.RepairStats{stored}}.Records()[0]
	lower := slices.Clone(row)
	lower[slices.Index(domain.StatsColumns, domain.ColumnCrash)] = "true"

	cmp, err := NewDetector(discardLogger()).Compare(statsTable(lower), statsTable(row))
	require.NoError(t, err)
	assert.True(t, cmp.Identical)
	assert.Empty(t, cmp.ChangedCommits)

	lower[slices.Index(domain.StatsColumns, domain.ColumnCrash)] = "yes"
	_, err = NewDetector(discardLogger()).Compare(statsTable(lower), statsTable(row))
	assert.Error(t, err)
}
