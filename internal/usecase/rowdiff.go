package usecase

import (
	"slices"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/naka-gawa/repair-bench/internal/domain"
)

// RowDiff renders the rows of the given commits in both tables as a line diff.
// Lines only in baseline start with "- ", lines only in candidate with "+ ".
func RowDiff(baseline, candidate domain.Table, commits []domain.CommitKey) string {
	wanted := make(map[domain.CommitKey]bool, len(commits))
	for _, key := range commits {
		wanted[key] = true
	}

	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToRunes(commitLines(baseline, wanted), commitLines(candidate, wanted))
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(src, dst, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line != "" {
				sb.WriteString(prefix + line)
			}
		}
	}
	return sb.String()
}

// commitLines returns the sorted rows of t that belong to one of the wanted commits, one per line.
func commitLines(t domain.Table, wanted map[domain.CommitKey]bool) string {
	urlIdx := t.ColumnIndex(domain.ColumnURL)
	commitIdx := t.ColumnIndex(domain.ColumnCommit)
	if urlIdx < 0 || commitIdx < 0 {
		return ""
	}
	var rows []string
	for _, row := range t.Rows {
		if wanted[domain.CommitKey{URL: row[urlIdx], SHA: row[commitIdx]}] {
			rows = append(rows, strings.Join(row, ",")+"\n")
		}
	}
	slices.Sort(rows)
	return strings.Join(rows, "")
}
