package rules

import (
	"math"
	"testing"
)

func TestApplyReportPenaltySequence(t *testing.T) {
	tests := []struct {
		name    string
		start   float64
		reports int
		want    float64
	}{
		{name: "single report", start: 0.50, reports: 1, want: 0.40},
		{name: "down to threshold boundary", start: 0.50, reports: 2, want: 0.30},
		{name: "below threshold", start: 0.50, reports: 3, want: 0.20},
		{name: "clamped at zero", start: 0.50, reports: 9, want: 0},
		{name: "already zero", start: 0, reports: 1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := tt.start
			for i := 0; i < tt.reports; i++ {
				score = ApplyReportPenalty(score, ReportConfidencePenalty)
			}
			if math.Abs(score-tt.want) > 1e-9 {
				t.Fatalf("unexpected score after %d reports: got %.4f want %.4f", tt.reports, score, tt.want)
			}
		})
	}
}

func TestShouldRemove(t *testing.T) {
	if ShouldRemove(0.30, ConfidenceRemovalThreshold) {
		t.Fatal("score equal to threshold must stay visible")
	}
	if !ShouldRemove(0.29, ConfidenceRemovalThreshold) {
		t.Fatal("score below threshold must be removed")
	}
	if ShouldRemove(0.50, ConfidenceRemovalThreshold) {
		t.Fatal("healthy score must not be removed")
	}
}
