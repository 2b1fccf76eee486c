package model

import (
	"time"

	"github.com/postalcodeworx/backend/internal/domain/enums"
)

// Listing is a found-glove record. It is never physically deleted:
// removal is a terminal status transition.
type Listing struct {
	ID int64

	PhotoURL      string
	PhotoFilename string

	Brand       *string
	Color       string
	Size        enums.GloveSize
	Side        enums.GloveSide
	Material    *string
	Description *string

	PostalCode               string
	FoundDate                time.Time
	FoundLocationDescription *string

	FinderEmail       string
	FinderDisplayName *string

	FeeAmount   float64
	FeeCurrency enums.FeeCurrency

	Status             enums.ListingStatus
	ConfidenceScore    float64
	AIModerationPassed bool
	AIModerationNotes  *string
	AIAnalysis         *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
