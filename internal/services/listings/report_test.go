package listings

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/postalcodeworx/backend/internal/domain/enums"
	"github.com/postalcodeworx/backend/internal/domain/model"
)

func activeListing(id int64, score float64) model.Listing {
	return model.Listing{
		ID:              id,
		Color:           "black",
		Size:            enums.GloveSizeM,
		Side:            enums.GloveSideLeft,
		PostalCode:      "10115",
		FinderEmail:     "finder@example.com",
		FeeCurrency:     enums.FeeCurrencyPostaal,
		Status:          enums.ListingStatusActive,
		ConfidenceScore: score,
	}
}

func newReportService(store *fakeListingStore, reports *fakeReportStore) *Service {
	return NewService(Dependencies{
		Tx:       &fakeTxRunner{},
		Listings: store,
		Reports:  reports,
	}, testConfig())
}

func TestReportAppliesPenalty(t *testing.T) {
	store := newFakeListingStore(activeListing(1, 0.50))
	reports := &fakeReportStore{}
	svc := newReportService(store, reports)

	created, err := svc.Report(context.Background(), ReportInput{
		ListingID:     1,
		Reason:        "spam",
		Description:   ptr("duplicate post"),
		ReporterEmail: ptr("reporter@example.com"),
		ReporterIP:    ptr("203.0.113.7"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Reason != enums.ReportReasonSpam {
		t.Fatalf("reason = %q", created.Reason)
	}

	got := store.listings[1]
	if math.Abs(got.ConfidenceScore-0.40) > 1e-9 {
		t.Fatalf("score = %v, want 0.40", got.ConfidenceScore)
	}
	if got.Status != enums.ListingStatusActive {
		t.Fatalf("status = %q, listing above threshold must stay active", got.Status)
	}
}

func TestReportRemovesBelowThreshold(t *testing.T) {
	// 0.35 - 0.10 = 0.25 < 0.30, third strike removes the listing.
	store := newFakeListingStore(activeListing(1, 0.35))
	svc := newReportService(store, &fakeReportStore{})

	if _, err := svc.Report(context.Background(), ReportInput{ListingID: 1, Reason: "fake"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := store.listings[1]
	if got.Status != enums.ListingStatusRemoved {
		t.Fatalf("status = %q, want removed", got.Status)
	}
	if math.Abs(got.ConfidenceScore-0.25) > 1e-9 {
		t.Fatalf("score = %v", got.ConfidenceScore)
	}
}

func TestReportScoreNeverNegative(t *testing.T) {
	store := newFakeListingStore(activeListing(1, 0.05))
	svc := newReportService(store, &fakeReportStore{})

	if _, err := svc.Report(context.Background(), ReportInput{ListingID: 1, Reason: "other"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.listings[1].ConfidenceScore; got != 0 {
		t.Fatalf("score = %v, want 0", got)
	}
}

func TestReportUnknownReason(t *testing.T) {
	svc := newReportService(newFakeListingStore(activeListing(1, 0.50)), &fakeReportStore{})

	_, err := svc.Report(context.Background(), ReportInput{ListingID: 1, Reason: "dislike"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestReportMissingListing(t *testing.T) {
	svc := newReportService(newFakeListingStore(), &fakeReportStore{})

	_, err := svc.Report(context.Background(), ReportInput{ListingID: 99, Reason: "spam"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReportRollsBackOnTrustUpdateFailure(t *testing.T) {
	store := newFakeListingStore(activeListing(1, 0.50))
	store.updateTrustFn = func(trustUpdate) error { return errors.New("write failed") }
	reports := &fakeReportStore{}
	svc := newReportService(store, reports)

	if _, err := svc.Report(context.Background(), ReportInput{ListingID: 1, Reason: "spam"}); err == nil {
		t.Fatal("expected error")
	}
	if got := store.listings[1].ConfidenceScore; got != 0.50 {
		t.Fatalf("score = %v, failed transaction must not change the listing", got)
	}
}
