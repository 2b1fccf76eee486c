package enums

type ListingStatus string

const (
	ListingStatusActive            ListingStatus = "active"
	ListingStatusClaimed           ListingStatus = "claimed"
	ListingStatusRemoved           ListingStatus = "removed"
	ListingStatusPendingModeration ListingStatus = "pending_moderation"
)
