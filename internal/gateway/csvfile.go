package gateway

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/naka-gawa/repair-bench/internal/domain"
)

// ReadTable reads a CSV file whose first record is the header.
func ReadTable(path string) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	table, err := DecodeTable(f)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return table, nil
}

// DecodeTable decodes CSV records from r into a Table.
func DecodeTable(r io.Reader) (domain.Table, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return domain.Table{}, fmt.Errorf("%w: no header", domain.ErrEmptyInput)
	}
	if err != nil {
		return domain.Table{}, err
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return domain.Table{}, err
	}
	return domain.Table{Columns: header, Rows: rows}, nil
}

// WriteTable writes the table as CSV, header first.
func WriteTable(path string, table domain.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := EncodeTable(f, table); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// EncodeTable encodes the table as CSV records to w.
func EncodeTable(w io.Writer, table domain.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Columns); err != nil {
		return err
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// CommitsFromTable extracts the benchmark input from a commits table.
// The table needs at least the url and commit columns; rule_key is optional.
func CommitsFromTable(table domain.Table) ([]domain.Commit, error) {
	urlIdx := table.ColumnIndex(domain.ColumnURL)
	commitIdx := table.ColumnIndex(domain.ColumnCommit)
	if urlIdx < 0 || commitIdx < 0 {
		return nil, fmt.Errorf("%w: commits table needs %q and %q columns, found %v",
			domain.ErrSchemaMismatch, domain.ColumnURL, domain.ColumnCommit, table.Columns)
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("%w: no commits", domain.ErrEmptyInput)
	}
	ruleIdx := table.ColumnIndex(domain.ColumnRuleKey)

	commits := make([]domain.Commit, 0, len(table.Rows))
	for _, row := range table.Rows {
		commit := domain.Commit{URL: row[urlIdx], SHA: row[commitIdx]}
		if ruleIdx >= 0 {
			commit.RuleKey = row[ruleIdx]
		}
		commits = append(commits, commit)
	}
	return commits, nil
}
