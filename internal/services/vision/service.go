package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/postalcodeworx/backend/internal/domain/enums"
	"github.com/postalcodeworx/backend/internal/infra/anthropic"
)

const analysisPrompt = `You are analyzing an image that should contain a single glove (the kind worn on hands).

Please analyze this image and provide a JSON response with the following fields:

{
    "is_valid_glove": true/false,  // Is this actually a glove image?
    "brand": "string or null",      // Brand name if visible (e.g., "Nike", "North Face", "Unknown")
    "color": "string",              // Primary color(s) of the glove
    "size": "xs|s|m|l|xl|unknown",  // Estimated size based on proportions
    "side": "left|right|unknown",   // Which hand is this glove for?
    "material": "string or null",   // Material if identifiable (leather, wool, synthetic, etc.)
    "suggested_price_eur": number or null,  // Estimated value in EUR based on brand/condition
    "description": "string",        // Brief description of the glove (2-3 sentences)
    "moderation_passed": true/false,  // Does this image pass content moderation?
    "moderation_notes": "string or null"  // If moderation failed, explain why
}

Moderation rules - FAIL if any of these:
- Image contains inappropriate/adult content
- Image contains hate symbols or offensive material
- Image is clearly spam/advertising
- Image is not actually a glove (could be other clothing, random objects, etc.)
- Image quality is too poor to identify anything

Be helpful and try to identify as much as possible. If you can see a brand logo, identify it.
If you can estimate the size based on the glove's proportions, do so.

Respond ONLY with valid JSON, no other text.`

// MessageClient is the slice of the Claude client the classifier needs.
type MessageClient interface {
	CompleteVision(ctx context.Context, prompt, imageBase64, mediaType string) (string, error)
}

// Analysis is the classifier's verdict on one glove image. The JSON
// tags make the struct serializable as the listing's audit payload.
type Analysis struct {
	Brand             *string         `json:"brand"`
	Color             string          `json:"color"`
	Size              enums.GloveSize `json:"size"`
	Side              enums.GloveSide `json:"side"`
	Material          *string         `json:"material"`
	SuggestedPriceEUR *float64        `json:"suggested_price_eur"`
	Description       string          `json:"description"`
	IsValidGlove      bool            `json:"is_valid_glove"`
	ModerationPassed  bool            `json:"moderation_passed"`
	ModerationNotes   *string         `json:"moderation_notes"`
}

type Service struct {
	client MessageClient
	logger *zap.Logger
}

func NewService(client MessageClient, logger *zap.Logger) *Service {
	return &Service{client: client, logger: logger}
}

type rawAnalysis struct {
	IsValidGlove      bool     `json:"is_valid_glove"`
	Brand             *string  `json:"brand"`
	Color             string   `json:"color"`
	Size              string   `json:"size"`
	Side              string   `json:"side"`
	Material          *string  `json:"material"`
	SuggestedPriceEUR *float64 `json:"suggested_price_eur"`
	Description       string   `json:"description"`
	ModerationPassed  bool     `json:"moderation_passed"`
	ModerationNotes   *string  `json:"moderation_notes"`
}

// Analyze classifies and moderates a glove image. Every failure path is
// fail-closed: an unreadable reply or a transport error yields a result
// with moderation_passed=false, never an error the caller could
// mistake for authorization to publish.
func (s *Service) Analyze(ctx context.Context, image []byte, mediaType string) Analysis {
	if s.client == nil || len(image) == 0 {
		return failedAnalysis("Image analysis is unavailable - please try again")
	}

	encoded := base64.StdEncoding.EncodeToString(image)
	reply, err := s.client.CompleteVision(ctx, analysisPrompt, encoded, mediaType)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("vision analysis call failed", zap.Error(err))
		}
		return failedAnalysis("API error occurred: " + err.Error())
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(anthropic.ExtractJSON(reply)), &raw); err != nil {
		if s.logger != nil {
			s.logger.Warn("vision analysis reply is not valid json", zap.Error(err))
		}
		return failedAnalysis("Image analysis failed - please try again")
	}

	color := raw.Color
	if color == "" {
		color = "unknown"
	}

	return Analysis{
		Brand:             raw.Brand,
		Color:             color,
		Size:              enums.ParseGloveSize(raw.Size),
		Side:              enums.ParseGloveSide(raw.Side),
		Material:          raw.Material,
		SuggestedPriceEUR: raw.SuggestedPriceEUR,
		Description:       raw.Description,
		IsValidGlove:      raw.IsValidGlove,
		ModerationPassed:  raw.ModerationPassed,
		ModerationNotes:   raw.ModerationNotes,
	}
}

func failedAnalysis(notes string) Analysis {
	return Analysis{
		Color:            "unknown",
		Size:             enums.GloveSizeUnknown,
		Side:             enums.GloveSideUnknown,
		Description:      "Failed to analyze image",
		IsValidGlove:     false,
		ModerationPassed: false,
		ModerationNotes:  &notes,
	}
}
