package enums

import (
	"fmt"
	"strings"
)

type ReportReason string

const (
	ReportReasonSpam          ReportReason = "spam"
	ReportReasonInappropriate ReportReason = "inappropriate"
	ReportReasonWrongLocation ReportReason = "wrong_location"
	ReportReasonFake          ReportReason = "fake"
	ReportReasonOther         ReportReason = "other"
)

func ParseReportReason(value string) (ReportReason, error) {
	normalized := ReportReason(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case ReportReasonSpam, ReportReasonInappropriate, ReportReasonWrongLocation, ReportReasonFake, ReportReasonOther:
		return normalized, nil
	default:
		return "", fmt.Errorf("unsupported report reason %q", value)
	}
}
