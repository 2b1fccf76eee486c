package rules

const (
	InitialConfidenceScore     = 0.50
	ConfidenceRemovalThreshold = 0.30
	ReportConfidencePenalty    = 0.10
)

// ApplyReportPenalty returns the confidence score after one more report.
// The penalty is flat per report, independent of reason or reporter.
func ApplyReportPenalty(score, penalty float64) float64 {
	next := score - penalty
	if next < 0 {
		return 0
	}
	return next
}

// ShouldRemove reports whether a listing with the given confidence score
// has fallen below the removal threshold.
func ShouldRemove(score, threshold float64) bool {
	return score < threshold
}
