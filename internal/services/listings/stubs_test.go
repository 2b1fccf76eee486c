package listings

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/postalcodeworx/backend/internal/domain/enums"
	"github.com/postalcodeworx/backend/internal/domain/model"
	"github.com/postalcodeworx/backend/internal/repo/postgres"
	redisrepo "github.com/postalcodeworx/backend/internal/repo/redis"
	"github.com/postalcodeworx/backend/internal/services/notify"
	"github.com/postalcodeworx/backend/internal/services/vision"
)

type fakeTxRunner struct {
	err error
}

func (r *fakeTxRunner) WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	if r.err != nil {
		return r.err
	}
	return fn(ctx, nil)
}

type fakeListingStore struct {
	listings map[int64]model.Listing
	nextID   int64

	created      []model.Listing
	trustUpdates []trustUpdate

	searchQuery   postgres.SearchQuery
	searchResult  []model.Listing
	searchTotal   int
	statsResult   []postgres.PostalCodeStat
	statsCalls    int
	createErr     error
	updateTrustFn func(trustUpdate) error
}

type trustUpdate struct {
	ID     int64
	Score  float64
	Status enums.ListingStatus
}

func newFakeListingStore(seed ...model.Listing) *fakeListingStore {
	s := &fakeListingStore{listings: map[int64]model.Listing{}, nextID: 1}
	for _, l := range seed {
		if l.ID >= s.nextID {
			s.nextID = l.ID + 1
		}
		s.listings[l.ID] = l
	}
	return s
}

func (s *fakeListingStore) Create(_ context.Context, listing model.Listing) (model.Listing, error) {
	if s.createErr != nil {
		return model.Listing{}, s.createErr
	}
	listing.ID = s.nextID
	s.nextID++
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = listing.CreatedAt
	s.listings[listing.ID] = listing
	s.created = append(s.created, listing)
	return listing, nil
}

func (s *fakeListingStore) GetByID(_ context.Context, id int64) (model.Listing, error) {
	l, ok := s.listings[id]
	if !ok {
		return model.Listing{}, postgres.ErrListingNotFound
	}
	return l, nil
}

func (s *fakeListingStore) GetForUpdate(ctx context.Context, _ pgx.Tx, id int64) (model.Listing, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeListingStore) UpdateTrust(_ context.Context, _ pgx.Tx, id int64, score float64, status enums.ListingStatus) error {
	u := trustUpdate{ID: id, Score: score, Status: status}
	if s.updateTrustFn != nil {
		if err := s.updateTrustFn(u); err != nil {
			return err
		}
	}
	l, ok := s.listings[id]
	if !ok {
		return postgres.ErrListingNotFound
	}
	l.ConfidenceScore = score
	l.Status = status
	s.listings[id] = l
	s.trustUpdates = append(s.trustUpdates, u)
	return nil
}

func (s *fakeListingStore) Search(_ context.Context, q postgres.SearchQuery) ([]model.Listing, int, error) {
	s.searchQuery = q
	return s.searchResult, s.searchTotal, nil
}

func (s *fakeListingStore) PostalCodeStats(_ context.Context) ([]postgres.PostalCodeStat, error) {
	s.statsCalls++
	return s.statsResult, nil
}

type fakeReportStore struct {
	created []model.Report
	err     error
}

func (s *fakeReportStore) Create(_ context.Context, _ pgx.Tx, report model.Report) (model.Report, error) {
	if s.err != nil {
		return model.Report{}, s.err
	}
	report.ID = int64(len(s.created) + 1)
	report.CreatedAt = time.Now()
	s.created = append(s.created, report)
	return report, nil
}

type fakeContactStore struct {
	created    []model.ContactRequest
	markedSent []int64
	paid       map[string]model.ContactRequest

	createErr error
	markErr   error
}

func contactKey(listingID int64, email string) string {
	return fmt.Sprintf("%d|%s", listingID, email)
}

func (s *fakeContactStore) Create(_ context.Context, contact model.ContactRequest) (model.ContactRequest, error) {
	if s.createErr != nil {
		return model.ContactRequest{}, s.createErr
	}
	contact.ID = int64(len(s.created) + 1)
	contact.CreatedAt = time.Now()
	s.created = append(s.created, contact)
	return contact, nil
}

func (s *fakeContactStore) MarkMessageSent(_ context.Context, id int64) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.markedSent = append(s.markedSent, id)
	return nil
}

func (s *fakeContactStore) FindPaid(_ context.Context, listingID int64, requesterEmail string) (model.ContactRequest, error) {
	if c, ok := s.paid[contactKey(listingID, requesterEmail)]; ok {
		return c, nil
	}
	return model.ContactRequest{}, postgres.ErrContactRequestNotFound
}

type fakeVision struct {
	analysis vision.Analysis
	calls    int
}

func passingAnalysis() vision.Analysis {
	return vision.Analysis{
		Color:            "black",
		Size:             enums.GloveSizeM,
		Side:             enums.GloveSideLeft,
		Description:      "A black glove.",
		IsValidGlove:     true,
		ModerationPassed: true,
	}
}

func (v *fakeVision) Analyze(context.Context, []byte, string) vision.Analysis {
	v.calls++
	return v.analysis
}

type fakeTextMod struct {
	passed bool
	notes  string
}

func (m *fakeTextMod) Moderate(context.Context, string) (bool, string) {
	return m.passed, m.notes
}

type fakeNotifier struct {
	contactMsgs   []notify.ContactMessage
	confirmations []notify.PaymentConfirmation

	contactErr error
	confirmErr error
}

func (n *fakeNotifier) SendContactMessage(_ context.Context, msg notify.ContactMessage) error {
	if n.contactErr != nil {
		return n.contactErr
	}
	n.contactMsgs = append(n.contactMsgs, msg)
	return nil
}

func (n *fakeNotifier) SendPaymentConfirmation(_ context.Context, conf notify.PaymentConfirmation) error {
	if n.confirmErr != nil {
		return n.confirmErr
	}
	n.confirmations = append(n.confirmations, conf)
	return nil
}

type fakePhotos struct {
	saved   map[string][]byte
	deleted []string
	saveErr error
}

func newFakePhotos() *fakePhotos {
	return &fakePhotos{saved: map[string][]byte{}}
}

func (p *fakePhotos) Save(_ context.Context, filename, _ string, data []byte) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	p.saved[filename] = data
	return nil
}

func (p *fakePhotos) Delete(_ context.Context, filename string) error {
	delete(p.saved, filename)
	p.deleted = append(p.deleted, filename)
	return nil
}

func (p *fakePhotos) URL(filename string) string {
	return "/uploads/" + filename
}

type fakeStatsCache struct {
	payload []byte
	getErr  error

	setPayload []byte
	setTTL     time.Duration
}

func (c *fakeStatsCache) GetLeaderboard(context.Context) ([]byte, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.payload == nil {
		return nil, redisrepo.ErrCacheMiss
	}
	return c.payload, nil
}

func (c *fakeStatsCache) SetLeaderboard(_ context.Context, payload []byte, ttl time.Duration) error {
	c.setPayload = payload
	c.setTTL = ttl
	return nil
}

func testConfig() Config {
	return Config{
		MaxUploadSize:              5 << 20,
		PostalPrefix:               "1",
		PostalCodeLength:           5,
		InitialConfidenceScore:     0.50,
		ConfidenceRemovalThreshold: 0.30,
		ReportConfidencePenalty:    0.10,
		PlatformFeePercentage:      0.20,
		StatsCacheTTL:              time.Minute,
	}
}

func ptr[T any](v T) *T { return &v }
