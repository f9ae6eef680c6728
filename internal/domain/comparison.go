package domain

// Ratios are the corpus-wide repair ratios of one result table.
type Ratios struct {
	// TotalRepairRatio is successful repairs over violations found before repair.
	TotalRepairRatio float64 `json:"total_repair_ratio"`
	// AttemptedRepairRatio is successful repairs over performed repairs.
	AttemptedRepairRatio float64 `json:"attempted_repair_ratio"`
}

// Comparison is the verdict of comparing a candidate result table against a baseline.
// Only corpus-wide ratios decide Regressed; a single commit getting worse can be
// hidden by improvements elsewhere.
type Comparison struct {
	Regressed      bool        `json:"regressed"`
	Identical      bool        `json:"identical"`
	ChangedCommits []CommitKey `json:"changed_commits"`
	Old            Ratios      `json:"old"`
	New            Ratios      `json:"new"`
	Report         string      `json:"report"`
}
