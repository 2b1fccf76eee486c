package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/postalcodeworx/backend/internal/domain/enums"
	"github.com/postalcodeworx/backend/internal/domain/model"
	"github.com/postalcodeworx/backend/internal/domain/rules"
	"github.com/postalcodeworx/backend/internal/pkg/validate"
	"github.com/postalcodeworx/backend/internal/repo/postgres"
	"github.com/postalcodeworx/backend/internal/services/notify"
)

const (
	minContactMessageLen = 10
	maxContactMessageLen = 1000
)

type ContactInput struct {
	ListingID      int64
	RequesterEmail string
	RequesterName  *string
	Message        string
}

// Contact charges the finder's fee and forwards the requester's
// message. The request row is written before the notification fan-out
// and marked sent only after both emails went out, so a crashed
// fan-out stays visible as paid-but-unsent.
func (s *Service) Contact(ctx context.Context, in ContactInput) (model.ContactRequest, error) {
	if !validate.Email(in.RequesterEmail) {
		return model.ContactRequest{}, fmt.Errorf("%w: a valid requester email is required", ErrValidation)
	}
	if n := utf8.RuneCountInString(in.Message); n < minContactMessageLen || n > maxContactMessageLen {
		return model.ContactRequest{}, fmt.Errorf("%w: message must be between %d and %d characters",
			ErrValidation, minContactMessageLen, maxContactMessageLen)
	}

	listing, err := s.deps.Listings.GetByID(ctx, in.ListingID)
	if err != nil {
		if errors.Is(err, postgres.ErrListingNotFound) {
			return model.ContactRequest{}, ErrNotFound
		}
		return model.ContactRequest{}, err
	}
	if listing.Status != enums.ListingStatusActive {
		return model.ContactRequest{}, ErrListingInactive
	}

	passed, notes := s.deps.TextMod.Moderate(ctx, in.Message)
	if !passed {
		return model.ContactRequest{}, &ModerationError{Notes: notes}
	}

	platformFee := rules.PlatformFee(listing.FeeAmount, listing.FeeCurrency, s.cfg.PlatformFeePercentage)

	contact, err := s.deps.Contacts.Create(ctx, model.ContactRequest{
		ListingID:      listing.ID,
		RequesterEmail: strings.TrimSpace(in.RequesterEmail),
		RequesterName:  in.RequesterName,
		Message:        in.Message,
		FeePaid:        listing.FeeAmount,
		FeeCurrency:    listing.FeeCurrency,
		PlatformFee:    platformFee,
		IsPaid:         true,
		MessageSent:    false,
	})
	if err != nil {
		return model.ContactRequest{}, fmt.Errorf("create contact request: %w", err)
	}

	finderName := ""
	if listing.FinderDisplayName != nil {
		finderName = *listing.FinderDisplayName
	}
	requesterName := ""
	if in.RequesterName != nil {
		requesterName = *in.RequesterName
	}

	sendErr := s.deps.Notifier.SendContactMessage(ctx, notify.ContactMessage{
		ListingID:        listing.ID,
		FinderEmail:      listing.FinderEmail,
		FinderName:       finderName,
		RequesterEmail:   contact.RequesterEmail,
		RequesterName:    requesterName,
		Message:          in.Message,
		GloveDescription: gloveDescription(listing),
	})
	if sendErr == nil {
		sendErr = s.deps.Notifier.SendPaymentConfirmation(ctx, notify.PaymentConfirmation{
			ListingID:      listing.ID,
			RequesterEmail: contact.RequesterEmail,
			Amount:         listing.FeeAmount,
			Currency:       listing.FeeCurrency,
			PlatformFee:    platformFee,
		})
	}
	if sendErr != nil {
		s.deps.Logger.Warn("contact notification fan-out failed",
			zap.Int64("listing_id", listing.ID),
			zap.Int64("contact_request_id", contact.ID),
			zap.Error(sendErr),
		)
		return contact, nil
	}

	if err := s.deps.Contacts.MarkMessageSent(ctx, contact.ID); err != nil {
		s.deps.Logger.Warn("mark contact request sent",
			zap.Int64("contact_request_id", contact.ID), zap.Error(err))
		return contact, nil
	}
	contact.MessageSent = true
	return contact, nil
}

func gloveDescription(listing model.Listing) string {
	brand := ""
	if listing.Brand != nil {
		brand = *listing.Brand
	}
	return fmt.Sprintf("%s %s glove (%s hand, size %s)", listing.Color, brand, listing.Side, listing.Size)
}

// PaymentInfo is the fee breakdown shown before a contact unlock.
type PaymentInfo struct {
	ListingID   int64
	FeeAmount   float64
	FeeCurrency string
	PlatformFee float64
	TotalAmount float64
}

func (s *Service) PaymentInfo(ctx context.Context, listingID int64) (PaymentInfo, error) {
	listing, err := s.deps.Listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, postgres.ErrListingNotFound) {
			return PaymentInfo{}, ErrNotFound
		}
		return PaymentInfo{}, err
	}

	fee := rules.PlatformFee(listing.FeeAmount, listing.FeeCurrency, s.cfg.PlatformFeePercentage)
	return PaymentInfo{
		ListingID:   listing.ID,
		FeeAmount:   listing.FeeAmount,
		FeeCurrency: string(listing.FeeCurrency),
		PlatformFee: fee,
		TotalAmount: listing.FeeAmount + fee,
	}, nil
}

// Detail is a listing plus the caller's contact-unlock state. The
// finder's email must only be rendered when ContactUnlocked is true.
type Detail struct {
	Listing         model.Listing
	ContactUnlocked bool
}

// Get loads one listing. When requesterEmail identifies a paid contact
// request for this listing the finder's email is unlocked.
func (s *Service) Get(ctx context.Context, listingID int64, requesterEmail string) (Detail, error) {
	listing, err := s.deps.Listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, postgres.ErrListingNotFound) {
			return Detail{}, ErrNotFound
		}
		return Detail{}, err
	}

	detail := Detail{Listing: listing}
	if strings.TrimSpace(requesterEmail) != "" {
		if _, err := s.deps.Contacts.FindPaid(ctx, listingID, requesterEmail); err == nil {
			detail.ContactUnlocked = true
		} else if !errors.Is(err, postgres.ErrContactRequestNotFound) {
			return Detail{}, err
		}
	}
	return detail, nil
}
