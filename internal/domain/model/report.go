package model

import (
	"time"

	"github.com/postalcodeworx/backend/internal/domain/enums"
)

// Report is one complaint against a listing. Rows are append-only and
// survive removal of the listing they target.
type Report struct {
	ID        int64
	ListingID int64

	Reason        enums.ReportReason
	Description   *string
	ReporterEmail *string
	ReporterIP    *string

	CreatedAt time.Time
}
