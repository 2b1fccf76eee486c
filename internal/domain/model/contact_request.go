package model

import (
	"time"

	"github.com/postalcodeworx/backend/internal/domain/enums"
)

// ContactRequest is a paid attempt to reach a finder. Fee fields are
// copied from the listing at request time and never recomputed.
type ContactRequest struct {
	ID        int64
	ListingID int64

	RequesterEmail string
	RequesterName  *string
	Message        string

	FeePaid     float64
	FeeCurrency enums.FeeCurrency
	PlatformFee float64

	IsPaid      bool
	MessageSent bool

	CreatedAt time.Time
}
