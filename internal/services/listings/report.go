package listings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/postalcodeworx/backend/internal/domain/enums"
	"github.com/postalcodeworx/backend/internal/domain/model"
	"github.com/postalcodeworx/backend/internal/domain/rules"
	"github.com/postalcodeworx/backend/internal/pkg/validate"
	"github.com/postalcodeworx/backend/internal/repo/postgres"
)

type ReportInput struct {
	ListingID     int64
	Reason        string
	Description   *string
	ReporterEmail *string
	ReporterIP    *string
}

// Report files a complaint and applies the trust penalty in one
// transaction. The listing row is locked so concurrent reports cannot
// lose score updates, and the listing is removed once its score falls
// below the threshold.
func (s *Service) Report(ctx context.Context, in ReportInput) (model.Report, error) {
	reason, err := enums.ParseReportReason(in.Reason)
	if err != nil {
		return model.Report{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if in.ReporterEmail != nil && *in.ReporterEmail != "" && !validate.Email(*in.ReporterEmail) {
		return model.Report{}, fmt.Errorf("%w: reporter email is not a valid address", ErrValidation)
	}

	var created model.Report
	err = s.deps.Tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		listing, err := s.deps.Listings.GetForUpdate(ctx, tx, in.ListingID)
		if err != nil {
			if errors.Is(err, postgres.ErrListingNotFound) {
				return ErrNotFound
			}
			return err
		}

		created, err = s.deps.Reports.Create(ctx, tx, model.Report{
			ListingID:     listing.ID,
			Reason:        reason,
			Description:   in.Description,
			ReporterEmail: in.ReporterEmail,
			ReporterIP:    in.ReporterIP,
		})
		if err != nil {
			return err
		}

		score := rules.ApplyReportPenalty(listing.ConfidenceScore, s.cfg.ReportConfidencePenalty)
		status := listing.Status
		if rules.ShouldRemove(score, s.cfg.ConfidenceRemovalThreshold) {
			status = enums.ListingStatusRemoved
		}
		return s.deps.Listings.UpdateTrust(ctx, tx, listing.ID, score, status)
	})
	if err != nil {
		return model.Report{}, err
	}
	return created, nil
}
