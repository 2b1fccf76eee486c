package rules

import "github.com/postalcodeworx/backend/internal/domain/enums"

const PlatformFeePercentage = 0.20

// PlatformFee computes the platform's cut of a contact-unlock fee.
// Postaal coins carry no cut; EUR fees pay the configured percentage.
func PlatformFee(amount float64, currency enums.FeeCurrency, percentage float64) float64 {
	if currency != enums.FeeCurrencyEUR || amount <= 0 {
		return 0
	}
	return amount * percentage
}

// TotalAmount is the fee plus the platform cut, derived for display only.
func TotalAmount(amount float64, currency enums.FeeCurrency, percentage float64) float64 {
	return amount + PlatformFee(amount, currency, percentage)
}
