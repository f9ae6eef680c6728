// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"strconv"
)

// RepairStats holds the outcome of running the repair tool for a single rule on a single commit.
// It is the core domain entity of this application.
// Values are built with NewRepairStats or EmptyRepairStats and never modified afterwards.
type RepairStats struct {
	RuleKey              string `json:"rule_key"`
	Crash                bool   `json:"crash"`
	NumViolationsBefore  int    `json:"num_violations_before"`
	NumViolationsAfter   int    `json:"num_violations_after"`
	NumPerformedRepairs  int    `json:"num_performed_repairs"`
	NumCrashedRepairs    int    `json:"num_crashed_repairs"`
	NumSuccessfulRepairs int    `json:"num_successful_repairs"`
	NumFailedRepairs     int    `json:"num_failed_repairs"`
}

// NewRepairStats builds stats from the raw counts reported by the repair tool.
// Successful and failed repairs are always derived here, never taken from the tool.
func NewRepairStats(ruleKey string, violationsBefore, violationsAfter, performedRepairs, crashedRepairs int) RepairStats {
	successful := violationsBefore - violationsAfter
	return RepairStats{
		RuleKey:              ruleKey,
		NumViolationsBefore:  violationsBefore,
		NumViolationsAfter:   violationsAfter,
		NumPerformedRepairs:  performedRepairs,
		NumCrashedRepairs:    crashedRepairs,
		NumSuccessfulRepairs: successful,
		NumFailedRepairs:     performedRepairs - successful,
	}
}

// EmptyRepairStats returns stats with every count set to zero.
// With crash set it is the sentinel recorded when the tool could not complete.
func EmptyRepairStats(ruleKey string, crash bool) RepairStats {
	return RepairStats{RuleKey: ruleKey, Crash: crash}
}

func (rs RepairStats) fields() []string {
	return []string{
		rs.RuleKey,
		FormatBool(rs.Crash),
		strconv.Itoa(rs.NumViolationsBefore),
		strconv.Itoa(rs.NumViolationsAfter),
		strconv.Itoa(rs.NumPerformedRepairs),
		strconv.Itoa(rs.NumCrashedRepairs),
		strconv.Itoa(rs.NumSuccessfulRepairs),
		strconv.Itoa(rs.NumFailedRepairs),
	}
}

// CommitRepairStats holds the repair outcome of every requested rule for one commit.
type CommitRepairStats struct {
	ProjectURL  string        `json:"project_url"`
	CommitSHA   string        `json:"commit_sha"`
	RepairStats []RepairStats `json:"repair_stats"`
}

// CommitID identifies the commit as url@sha.
func (c CommitRepairStats) CommitID() string {
	return fmt.Sprintf("%s@%s", c.ProjectURL, c.CommitSHA)
}

// Crash reports whether any rule crashed on this commit.
func (c CommitRepairStats) Crash() bool {
	for _, rs := range c.RepairStats {
		if rs.Crash {
			return true
		}
	}
	return false
}

// Records flattens the commit into one row per rule, laid out as StatsColumns.
func (c CommitRepairStats) Records() [][]string {
	records := make([][]string, 0, len(c.RepairStats))
	for _, rs := range c.RepairStats {
		records = append(records, append([]string{c.ProjectURL, c.CommitSHA}, rs.fields()...))
	}
	return records
}

// Commit is one entry of the benchmark input.
// RuleKey is only set when the input lists commits per rule.
type Commit struct {
	URL     string
	SHA     string
	RuleKey string
}

// CommitKey is the identity used to deduplicate benchmark input.
type CommitKey struct {
	URL string
	SHA string
}

// Key returns the (url, commit) identity of the entry.
func (c Commit) Key() CommitKey {
	return CommitKey{URL: c.URL, SHA: c.SHA}
}

// String renders the key as url@sha.
func (k CommitKey) String() string {
	return fmt.Sprintf("%s@%s", k.URL, k.SHA)
}
