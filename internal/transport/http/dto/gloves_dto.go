package dto

import "time"

type GloveAnalysisResponse struct {
	Brand             *string  `json:"brand"`
	Color             string   `json:"color"`
	Size              string   `json:"size"`
	Side              string   `json:"side"`
	Material          *string  `json:"material"`
	SuggestedPriceEUR *float64 `json:"suggested_price_eur"`
	Description       string   `json:"description"`
	IsValidGlove      bool     `json:"is_valid_glove"`
	ModerationPassed  bool     `json:"moderation_passed"`
	ModerationNotes   *string  `json:"moderation_notes"`
}

type GloveListingResponse struct {
	ID                       int64     `json:"id"`
	PhotoURL                 string    `json:"photo_url"`
	Brand                    *string   `json:"brand"`
	Color                    string    `json:"color"`
	Size                     string    `json:"size"`
	Side                     string    `json:"side"`
	Material                 *string   `json:"material"`
	Description              *string   `json:"description"`
	PostalCode               string    `json:"postal_code"`
	FoundDate                time.Time `json:"found_date"`
	FoundLocationDescription *string   `json:"found_location_description"`
	FinderDisplayName        *string   `json:"finder_display_name"`
	FeeAmount                float64   `json:"fee_amount"`
	FeeCurrency              string    `json:"fee_currency"`
	Status                   string    `json:"status"`
	ConfidenceScore          float64   `json:"confidence_score"`
	CreatedAt                time.Time `json:"created_at"`
}

// GloveListingDetail adds the contact-unlock state. FinderEmail stays
// null until the requester has paid for this listing.
type GloveListingDetail struct {
	GloveListingResponse
	FinderEmail     *string `json:"finder_email"`
	ContactUnlocked bool    `json:"contact_unlocked"`
}

type GloveSearchResponse struct {
	Items      []GloveListingResponse `json:"items"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	PerPage    int                    `json:"per_page"`
	TotalPages int                    `json:"total_pages"`
}

type ContactRequestCreate struct {
	RequesterEmail string  `json:"requester_email"`
	RequesterName  *string `json:"requester_name,omitempty"`
	Message        string  `json:"message"`
}

type ContactRequestResponse struct {
	ID          int64     `json:"id"`
	ListingID   int64     `json:"listing_id"`
	FeePaid     float64   `json:"fee_paid"`
	FeeCurrency string    `json:"fee_currency"`
	PlatformFee float64   `json:"platform_fee"`
	IsPaid      bool      `json:"is_paid"`
	MessageSent bool      `json:"message_sent"`
	CreatedAt   time.Time `json:"created_at"`
}

type PaymentInfoResponse struct {
	ListingID   int64   `json:"listing_id"`
	FeeAmount   float64 `json:"fee_amount"`
	FeeCurrency string  `json:"fee_currency"`
	PlatformFee float64 `json:"platform_fee"`
	TotalAmount float64 `json:"total_amount"`
}

type GloveReportCreate struct {
	Reason        string  `json:"reason"`
	Description   *string `json:"description,omitempty"`
	ReporterEmail *string `json:"reporter_email,omitempty"`
}

type GloveReportResponse struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listing_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type PostalCodeStatsResponse struct {
	PostalCode    string `json:"postal_code"`
	GlovesFound   int    `json:"gloves_found"`
	GlovesClaimed int    `json:"gloves_claimed"`
	TotalListings int    `json:"total_listings"`
}
