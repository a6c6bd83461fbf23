package domain

import "time"

// CheckCategory groups integrity checks.
type CheckCategory string

// Integrity check categories.
const (
	CheckCategoryCrossReference CheckCategory = "cross_reference"
	CheckCategoryCompleteness   CheckCategory = "completeness"
	CheckCategoryBusinessRules  CheckCategory = "business_rules"
	CheckCategoryConsistency    CheckCategory = "consistency"
	CheckCategoryDuplicates     CheckCategory = "duplicates"
)

// CheckStatus is the outcome of one integrity check.
type CheckStatus string

// Check statuses.
const (
	CheckPassed  CheckStatus = "passed"
	CheckWarning CheckStatus = "warning"
	CheckFailed  CheckStatus = "failed"
)

// Score returns the weight of the status in the report score.
func (s CheckStatus) Score() float64 {
	switch s {
	case CheckPassed:
		return 100
	case CheckWarning:
		return 50
	default:
		return 0
	}
}

// IntegrityCheckResult is the outcome of a single check.
type IntegrityCheckResult struct {
	CheckType       string
	Category        CheckCategory
	Status          CheckStatus
	Message         string
	RecordsAffected int
	Timestamp       time.Time
}

// IntegrityReport is the outcome of one integrity run.
type IntegrityReport struct {
	GeneratedAt time.Time

	// Score is 0-100, the mean of the check weights.
	Score float64

	Checks []IntegrityCheckResult
}

// ScoreChecks averages the status weights. No checks scores 100.
func ScoreChecks(checks []IntegrityCheckResult) float64 {
	if len(checks) == 0 {
		return 100
	}
	var total float64
	for i := range checks {
		total += checks[i].Status.Score()
	}
	return total / float64(len(checks))
}

// CountByStatus returns the number of checks with the given status.
func (r *IntegrityReport) CountByStatus(status CheckStatus) int {
	n := 0
	for i := range r.Checks {
		if r.Checks[i].Status == status {
			n++
		}
	}
	return n
}
