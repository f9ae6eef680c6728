package gateway

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/repair-bench/internal/domain"
)

func TestWriteAndReadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	table := domain.Table{
		Columns: domain.StatsColumns,
		Rows: [][]string{
			{"https://github.com/org/repo", "abc", "S1111", "False", "5", "2", "4", "0", "3", "1"},
		},
	}

	require.NoError(t, WriteTable(path, table))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "url,commit,rule_key,crash,num_violations_before,"))

	read, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, table, read)
	assert.NoError(t, read.RequireStatsSchema())
}

func TestDecodeTable_Empty(t *testing.T) {
	_, err := DecodeTable(strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestCommitsFromTable(t *testing.T) {
	testCases := []struct {
		name        string
		csv         string
		expected    []domain.Commit
		expectedErr error
	}{
		{
			name: "short format",
			csv:  "url,commit\nhttps://a,1\nhttps://b,2\n",
			expected: []domain.Commit{
				{URL: "https://a", SHA: "1"},
				{URL: "https://b", SHA: "2"},
			},
		},
		{
			name: "long format keeps rule keys as strings",
			csv:  "url,commit,rule_key\nhttps://a,1,1854\nhttps://a,1,2111\n",
			expected: []domain.Commit{
				{URL: "https://a", SHA: "1", RuleKey: "1854"},
				{URL: "https://a", SHA: "1", RuleKey: "2111"},
			},
		},
		{
			name:        "missing commit column",
			csv:         "url,sha\nhttps://a,1\n",
			expectedErr: domain.ErrSchemaMismatch,
		},
		{
			name:        "header only",
			csv:         "url,commit\n",
			expectedErr: domain.ErrEmptyInput,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			table, err := DecodeTable(strings.NewReader(tc.csv))
			require.NoError(t, err)

			commits, err := CommitsFromTable(table)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, commits)
		})
	}
}

func TestRequireStatsSchema(t *testing.T) {
	table, err := DecodeTable(strings.NewReader("url,commit\nhttps://a,1\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, table.RequireStatsSchema(), domain.ErrSchemaMismatch)
}
