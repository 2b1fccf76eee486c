package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postalcodeworx/backend/internal/domain/model"
)

var ErrContactRequestNotFound = errors.New("contact request not found")

type ContactRepo struct {
	pool *pgxpool.Pool
}

func NewContactRepo(pool *pgxpool.Pool) *ContactRepo {
	return &ContactRepo{pool: pool}
}

const contactColumns = `
	id,
	listing_id,
	requester_email,
	requester_name,
	message,
	fee_paid,
	fee_currency,
	platform_fee,
	is_paid,
	message_sent,
	created_at`

func scanContact(row pgx.Row) (model.ContactRequest, error) {
	var c model.ContactRequest
	err := row.Scan(
		&c.ID,
		&c.ListingID,
		&c.RequesterEmail,
		&c.RequesterName,
		&c.Message,
		&c.FeePaid,
		&c.FeeCurrency,
		&c.PlatformFee,
		&c.IsPaid,
		&c.MessageSent,
		&c.CreatedAt,
	)
	return c, err
}

func (r *ContactRepo) Create(ctx context.Context, contact model.ContactRequest) (model.ContactRequest, error) {
	if r.pool == nil {
		return model.ContactRequest{}, fmt.Errorf("postgres pool is nil")
	}
	if contact.ListingID <= 0 || strings.TrimSpace(contact.RequesterEmail) == "" {
		return model.ContactRequest{}, fmt.Errorf("invalid contact request payload")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO glove_contact_requests (
	listing_id,
	requester_email,
	requester_name,
	message,
	fee_paid,
	fee_currency,
	platform_fee,
	is_paid,
	message_sent,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
RETURNING`+contactColumns,
		contact.ListingID,
		contact.RequesterEmail,
		contact.RequesterName,
		contact.Message,
		contact.FeePaid,
		contact.FeeCurrency,
		contact.PlatformFee,
		contact.IsPaid,
		contact.MessageSent,
	)

	created, err := scanContact(row)
	if err != nil {
		return model.ContactRequest{}, fmt.Errorf("create contact request: %w", err)
	}
	return created, nil
}

// MarkMessageSent records a successful notification fan-out. The row is
// immutable afterwards.
func (r *ContactRepo) MarkMessageSent(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE glove_contact_requests
SET message_sent = TRUE
WHERE id = $1 AND message_sent = FALSE`, id)
	if err != nil {
		return fmt.Errorf("mark contact request sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContactRequestNotFound
	}
	return nil
}

// FindPaid looks up a paid contact request for the exact
// (listing, requester email) pair, the condition for contact unlock.
func (r *ContactRepo) FindPaid(ctx context.Context, listingID int64, requesterEmail string) (model.ContactRequest, error) {
	if r.pool == nil {
		return model.ContactRequest{}, fmt.Errorf("postgres pool is nil")
	}
	if listingID <= 0 || strings.TrimSpace(requesterEmail) == "" {
		return model.ContactRequest{}, ErrContactRequestNotFound
	}

	row := r.pool.QueryRow(ctx, `SELECT`+contactColumns+`
FROM glove_contact_requests
WHERE listing_id = $1 AND requester_email = $2 AND is_paid = TRUE
ORDER BY id
LIMIT 1`, listingID, strings.TrimSpace(requesterEmail))

	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ContactRequest{}, ErrContactRequestNotFound
		}
		return model.ContactRequest{}, fmt.Errorf("find paid contact request: %w", err)
	}
	return contact, nil
}
