package listings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/postalcodeworx/backend/internal/domain/enums"
	"github.com/postalcodeworx/backend/internal/domain/model"
	"github.com/postalcodeworx/backend/internal/pkg/validate"
	"github.com/postalcodeworx/backend/internal/services/photos"
	"github.com/postalcodeworx/backend/internal/services/vision"
)

// Analyze runs the image classifier without creating a listing, so a
// finder can pre-fill the upload form from the verdict.
func (s *Service) Analyze(ctx context.Context, data []byte, contentType string) (vision.Analysis, error) {
	if err := s.validateImage(data, contentType); err != nil {
		return vision.Analysis{}, err
	}
	return s.deps.Vision.Analyze(ctx, data, contentType), nil
}

type UploadInput struct {
	Data             []byte
	ContentType      string
	OriginalFilename string

	Brand       *string
	Color       string
	Size        string
	Side        string
	Material    *string
	Description *string

	PostalCode               string
	FoundDate                string
	FoundLocationDescription *string

	FinderEmail       string
	FinderDisplayName *string

	FeeAmount   float64
	FeeCurrency string

	// AIAnalysis carries a verdict the client already obtained from
	// Analyze. When empty the fresh moderation verdict is stored.
	AIAnalysis *string
}

// Upload validates, stores and moderates a found-glove photo and then
// publishes the listing. The gates run in order and the first failure
// wins; a photo that fails moderation is deleted before returning.
func (s *Service) Upload(ctx context.Context, in UploadInput) (model.Listing, error) {
	if err := s.validateImage(in.Data, in.ContentType); err != nil {
		return model.Listing{}, err
	}
	if err := s.ValidatePostalCode(in.PostalCode); err != nil {
		return model.Listing{}, err
	}
	foundDate, err := parseFoundDate(in.FoundDate)
	if err != nil {
		return model.Listing{}, err
	}
	if !validate.Email(in.FinderEmail) {
		return model.Listing{}, fmt.Errorf("%w: a valid finder email is required", ErrValidation)
	}
	if !validate.Required(in.Color) {
		return model.Listing{}, fmt.Errorf("%w: color is required", ErrValidation)
	}
	currency, err := enums.ParseFeeCurrency(in.FeeCurrency)
	if err != nil {
		return model.Listing{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if in.FeeAmount < 0 {
		return model.Listing{}, fmt.Errorf("%w: fee amount must not be negative", ErrValidation)
	}

	filename := photos.NewFilename(in.OriginalFilename)
	if err := s.deps.Photos.Save(ctx, filename, in.ContentType, in.Data); err != nil {
		return model.Listing{}, fmt.Errorf("save photo: %w", err)
	}

	analysis := s.deps.Vision.Analyze(ctx, in.Data, in.ContentType)
	if !analysis.ModerationPassed {
		if err := s.deps.Photos.Delete(ctx, filename); err != nil {
			s.deps.Logger.Warn("delete rejected photo", zap.String("filename", filename), zap.Error(err))
		}
		notes := "image rejected"
		if analysis.ModerationNotes != nil {
			notes = *analysis.ModerationNotes
		}
		return model.Listing{}, &ModerationError{Notes: notes}
	}

	aiAnalysis := in.AIAnalysis
	if aiAnalysis == nil || strings.TrimSpace(*aiAnalysis) == "" {
		payload, err := json.Marshal(analysis)
		if err == nil {
			serialized := string(payload)
			aiAnalysis = &serialized
		}
	}

	listing := model.Listing{
		PhotoURL:      s.deps.Photos.URL(filename),
		PhotoFilename: filename,

		Brand:       in.Brand,
		Color:       strings.TrimSpace(in.Color),
		Size:        enums.ParseGloveSize(in.Size),
		Side:        enums.ParseGloveSide(in.Side),
		Material:    in.Material,
		Description: in.Description,

		PostalCode:               strings.TrimSpace(in.PostalCode),
		FoundDate:                foundDate,
		FoundLocationDescription: in.FoundLocationDescription,

		FinderEmail:       strings.TrimSpace(in.FinderEmail),
		FinderDisplayName: in.FinderDisplayName,

		FeeAmount:   in.FeeAmount,
		FeeCurrency: currency,

		Status:             enums.ListingStatusActive,
		ConfidenceScore:    s.cfg.InitialConfidenceScore,
		AIModerationPassed: analysis.ModerationPassed,
		AIModerationNotes:  analysis.ModerationNotes,
		AIAnalysis:         aiAnalysis,
	}

	created, err := s.deps.Listings.Create(ctx, listing)
	if err != nil {
		if derr := s.deps.Photos.Delete(ctx, filename); derr != nil {
			s.deps.Logger.Warn("delete orphaned photo", zap.String("filename", filename), zap.Error(derr))
		}
		return model.Listing{}, fmt.Errorf("create listing: %w", err)
	}
	return created, nil
}
