package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/postalcodeworx/backend/internal/domain/enums"
	"github.com/postalcodeworx/backend/internal/domain/model"
	"github.com/postalcodeworx/backend/internal/repo/postgres"
	"github.com/postalcodeworx/backend/internal/services/notify"
	"github.com/postalcodeworx/backend/internal/services/vision"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("listing not found")
	ErrListingInactive = errors.New("listing is no longer active")
)

// ModerationError reports a rejected image or message together with
// the moderator's notes, which are safe to show to the client.
type ModerationError struct {
	Notes string
}

func (e *ModerationError) Error() string {
	return "failed moderation: " + e.Notes
}

// TxRunner runs a function inside a single database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type ListingStore interface {
	Create(ctx context.Context, listing model.Listing) (model.Listing, error)
	GetByID(ctx context.Context, id int64) (model.Listing, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (model.Listing, error)
	UpdateTrust(ctx context.Context, tx pgx.Tx, id int64, score float64, status enums.ListingStatus) error
	Search(ctx context.Context, q postgres.SearchQuery) ([]model.Listing, int, error)
	PostalCodeStats(ctx context.Context) ([]postgres.PostalCodeStat, error)
}

type ReportStore interface {
	Create(ctx context.Context, tx pgx.Tx, report model.Report) (model.Report, error)
}

type ContactStore interface {
	Create(ctx context.Context, contact model.ContactRequest) (model.ContactRequest, error)
	MarkMessageSent(ctx context.Context, id int64) error
	FindPaid(ctx context.Context, listingID int64, requesterEmail string) (model.ContactRequest, error)
}

type ImageAnalyzer interface {
	Analyze(ctx context.Context, image []byte, mediaType string) vision.Analysis
}

type TextModerator interface {
	Moderate(ctx context.Context, text string) (bool, string)
}

type Notifier interface {
	SendContactMessage(ctx context.Context, msg notify.ContactMessage) error
	SendPaymentConfirmation(ctx context.Context, conf notify.PaymentConfirmation) error
}

type PhotoStorage interface {
	Save(ctx context.Context, filename, contentType string, data []byte) error
	Delete(ctx context.Context, filename string) error
	URL(filename string) string
}

// StatsCache is optional. A nil cache disables leaderboard caching.
type StatsCache interface {
	GetLeaderboard(ctx context.Context) ([]byte, error)
	SetLeaderboard(ctx context.Context, payload []byte, ttl time.Duration) error
}

type Dependencies struct {
	Logger *zap.Logger

	Tx       TxRunner
	Listings ListingStore
	Reports  ReportStore
	Contacts ContactStore

	Vision   ImageAnalyzer
	TextMod  TextModerator
	Notifier Notifier
	Photos   PhotoStorage

	StatsCache StatsCache
}

type Config struct {
	MaxUploadSize     int64
	AllowedImageTypes []string

	PostalPrefix     string
	PostalCodeLength int

	InitialConfidenceScore     float64
	ConfidenceRemovalThreshold float64
	ReportConfidencePenalty    float64
	PlatformFeePercentage      float64

	StatsCacheTTL time.Duration
}

type Service struct {
	deps Dependencies
	cfg  Config
}

func NewService(deps Dependencies, cfg Config) *Service {
	if len(cfg.AllowedImageTypes) == 0 {
		cfg.AllowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}
	}
	if cfg.PostalCodeLength == 0 {
		cfg.PostalCodeLength = 5
	}
	if cfg.StatsCacheTTL == 0 {
		cfg.StatsCacheTTL = time.Minute
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Service{deps: deps, cfg: cfg}
}

// ValidatePostalCode checks the configured postal scheme: a fixed
// number of digits starting with the configured prefix.
func (s *Service) ValidatePostalCode(code string) error {
	code = strings.TrimSpace(code)
	if len(code) != s.cfg.PostalCodeLength {
		return fmt.Errorf("%w: must be a valid Berlin postal code (%d digits starting with %s)",
			ErrValidation, s.cfg.PostalCodeLength, s.cfg.PostalPrefix)
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("%w: must be a valid Berlin postal code (%d digits starting with %s)",
				ErrValidation, s.cfg.PostalCodeLength, s.cfg.PostalPrefix)
		}
	}
	if !strings.HasPrefix(code, s.cfg.PostalPrefix) {
		return fmt.Errorf("%w: must be a valid Berlin postal code (%d digits starting with %s)",
			ErrValidation, s.cfg.PostalCodeLength, s.cfg.PostalPrefix)
	}
	return nil
}

func (s *Service) validateImage(data []byte, contentType string) error {
	if int64(len(data)) > s.cfg.MaxUploadSize {
		return fmt.Errorf("%w: file too large, max size %dMB", ErrValidation, s.cfg.MaxUploadSize/(1024*1024))
	}
	for _, allowed := range s.cfg.AllowedImageTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: invalid file type %q, allowed: %s",
		ErrValidation, contentType, strings.Join(s.cfg.AllowedImageTypes, ", "))
}

// parseFoundDate accepts RFC 3339 timestamps or bare dates.
func parseFoundDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date format, use ISO 8601", ErrValidation)
}
