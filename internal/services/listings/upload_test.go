package listings

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/postalcodeworx/backend/internal/domain/enums"
)

func validUpload() UploadInput {
	return UploadInput{
		Data:             []byte("jpeg bytes"),
		ContentType:      "image/jpeg",
		OriginalFilename: "glove.JPG",
		Color:            "black",
		Size:             "m",
		Side:             "left",
		PostalCode:       "10115",
		FoundDate:        "2026-08-20",
		FinderEmail:      "finder@example.com",
		FeeCurrency:      "postaal",
	}
}

func newUploadService(store *fakeListingStore, photos *fakePhotos, v *fakeVision) *Service {
	return NewService(Dependencies{
		Tx:       &fakeTxRunner{},
		Listings: store,
		Vision:   v,
		Photos:   photos,
	}, testConfig())
}

func TestUploadPublishesListing(t *testing.T) {
	store := newFakeListingStore()
	photos := newFakePhotos()
	svc := newUploadService(store, photos, &fakeVision{analysis: passingAnalysis()})

	created, err := svc.Upload(context.Background(), validUpload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Status != enums.ListingStatusActive {
		t.Fatalf("status = %q", created.Status)
	}
	if created.ConfidenceScore != 0.50 {
		t.Fatalf("confidence = %v", created.ConfidenceScore)
	}
	if !created.AIModerationPassed {
		t.Fatal("moderation flag not recorded")
	}
	if created.AIAnalysis == nil || !strings.Contains(*created.AIAnalysis, `"moderation_passed":true`) {
		t.Fatalf("ai analysis = %v", created.AIAnalysis)
	}
	if !strings.HasSuffix(created.PhotoFilename, ".jpg") {
		t.Fatalf("photo filename = %q", created.PhotoFilename)
	}
	if created.PhotoURL != "/uploads/"+created.PhotoFilename {
		t.Fatalf("photo url = %q", created.PhotoURL)
	}
	saved, ok := photos.saved[created.PhotoFilename]
	if !ok || !bytes.Equal(saved, []byte("jpeg bytes")) {
		t.Fatal("photo bytes not persisted")
	}
}

func TestUploadKeepsClientAnalysis(t *testing.T) {
	store := newFakeListingStore()
	svc := newUploadService(store, newFakePhotos(), &fakeVision{analysis: passingAnalysis()})

	in := validUpload()
	in.AIAnalysis = ptr(`{"source":"client"}`)

	created, err := svc.Upload(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.AIAnalysis == nil || *created.AIAnalysis != `{"source":"client"}` {
		t.Fatalf("ai analysis = %v", created.AIAnalysis)
	}
}

func TestUploadModerationRejectionDeletesPhoto(t *testing.T) {
	store := newFakeListingStore()
	photos := newFakePhotos()
	analysis := passingAnalysis()
	analysis.ModerationPassed = false
	analysis.ModerationNotes = ptr("not a glove")
	svc := newUploadService(store, photos, &fakeVision{analysis: analysis})

	_, err := svc.Upload(context.Background(), validUpload())

	var merr *ModerationError
	if !errors.As(err, &merr) {
		t.Fatalf("expected ModerationError, got %v", err)
	}
	if merr.Notes != "not a glove" {
		t.Fatalf("notes = %q", merr.Notes)
	}
	if len(photos.deleted) != 1 {
		t.Fatalf("rejected photo not deleted: %v", photos.deleted)
	}
	if len(store.created) != 0 {
		t.Fatal("no listing may be created on moderation failure")
	}
}

func TestUploadValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*UploadInput)
	}{
		{"oversized file", func(in *UploadInput) { in.Data = make([]byte, (5<<20)+1) }},
		{"wrong content type", func(in *UploadInput) { in.ContentType = "image/gif" }},
		{"short postal code", func(in *UploadInput) { in.PostalCode = "1011" }},
		{"wrong postal prefix", func(in *UploadInput) { in.PostalCode = "20115" }},
		{"non-numeric postal code", func(in *UploadInput) { in.PostalCode = "1011a" }},
		{"bad date", func(in *UploadInput) { in.FoundDate = "20/08/2026" }},
		{"missing finder email", func(in *UploadInput) { in.FinderEmail = "  " }},
		{"missing color", func(in *UploadInput) { in.Color = "" }},
		{"unknown currency", func(in *UploadInput) { in.FeeCurrency = "usd" }},
		{"negative fee", func(in *UploadInput) { in.FeeAmount = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			photos := newFakePhotos()
			svc := newUploadService(newFakeListingStore(), photos, &fakeVision{analysis: passingAnalysis()})

			in := validUpload()
			tc.mutate(&in)

			_, err := svc.Upload(context.Background(), in)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if len(photos.saved) != 0 {
				t.Fatal("photo must not be stored for invalid input")
			}
		})
	}
}

func TestUploadDeletesPhotoWhenInsertFails(t *testing.T) {
	store := newFakeListingStore()
	store.createErr = errors.New("insert failed")
	photos := newFakePhotos()
	svc := newUploadService(store, photos, &fakeVision{analysis: passingAnalysis()})

	if _, err := svc.Upload(context.Background(), validUpload()); err == nil {
		t.Fatal("expected error")
	}
	if len(photos.deleted) != 1 {
		t.Fatal("orphaned photo not deleted")
	}
}

func TestUploadNormalizesEnums(t *testing.T) {
	store := newFakeListingStore()
	svc := newUploadService(store, newFakePhotos(), &fakeVision{analysis: passingAnalysis()})

	in := validUpload()
	in.Size = "XXL"
	in.Side = "both"
	in.FeeCurrency = ""

	created, err := svc.Upload(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Size != enums.GloveSizeUnknown || created.Side != enums.GloveSideUnknown {
		t.Fatalf("enum fallback: size=%q side=%q", created.Size, created.Side)
	}
	if created.FeeCurrency != enums.FeeCurrencyPostaal {
		t.Fatalf("default currency = %q", created.FeeCurrency)
	}
}

func TestAnalyzeValidatesImage(t *testing.T) {
	v := &fakeVision{analysis: passingAnalysis()}
	svc := newUploadService(newFakeListingStore(), newFakePhotos(), v)

	if _, err := svc.Analyze(context.Background(), make([]byte, (5<<20)+1), "image/jpeg"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if v.calls != 0 {
		t.Fatal("classifier must not run for invalid input")
	}

	got, err := svc.Analyze(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.ModerationPassed {
		t.Fatalf("analysis = %+v", got)
	}
}
