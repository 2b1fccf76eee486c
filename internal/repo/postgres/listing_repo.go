package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postalcodeworx/backend/internal/domain/enums"
	"github.com/postalcodeworx/backend/internal/domain/model"
)

var ErrListingNotFound = errors.New("listing not found")

type ListingRepo struct {
	pool *pgxpool.Pool
}

func NewListingRepo(pool *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

const listingColumns = `
	id,
	photo_url,
	photo_filename,
	brand,
	color,
	size,
	side,
	material,
	description,
	postal_code,
	found_date,
	found_location_description,
	finder_email,
	finder_display_name,
	fee_amount,
	fee_currency,
	status,
	confidence_score,
	ai_moderation_passed,
	ai_moderation_notes,
	ai_analysis,
	created_at,
	updated_at`

func scanListing(row pgx.Row) (model.Listing, error) {
	var l model.Listing
	err := row.Scan(
		&l.ID,
		&l.PhotoURL,
		&l.PhotoFilename,
		&l.Brand,
		&l.Color,
		&l.Size,
		&l.Side,
		&l.Material,
		&l.Description,
		&l.PostalCode,
		&l.FoundDate,
		&l.FoundLocationDescription,
		&l.FinderEmail,
		&l.FinderDisplayName,
		&l.FeeAmount,
		&l.FeeCurrency,
		&l.Status,
		&l.ConfidenceScore,
		&l.AIModerationPassed,
		&l.AIModerationNotes,
		&l.AIAnalysis,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

func (r *ListingRepo) Create(ctx context.Context, listing model.Listing) (model.Listing, error) {
	if r.pool == nil {
		return model.Listing{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(listing.PhotoFilename) == "" || strings.TrimSpace(listing.FinderEmail) == "" {
		return model.Listing{}, fmt.Errorf("invalid listing payload")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO glove_listings (
	photo_url,
	photo_filename,
	brand,
	color,
	size,
	side,
	material,
	description,
	postal_code,
	found_date,
	found_location_description,
	finder_email,
	finder_display_name,
	fee_amount,
	fee_currency,
	status,
	confidence_score,
	ai_moderation_passed,
	ai_moderation_notes,
	ai_analysis,
	created_at,
	updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
	$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
	NOW(), NOW()
)
RETURNING`+listingColumns,
		listing.PhotoURL,
		listing.PhotoFilename,
		listing.Brand,
		listing.Color,
		listing.Size,
		listing.Side,
		listing.Material,
		listing.Description,
		listing.PostalCode,
		listing.FoundDate,
		listing.FoundLocationDescription,
		listing.FinderEmail,
		listing.FinderDisplayName,
		listing.FeeAmount,
		listing.FeeCurrency,
		listing.Status,
		listing.ConfidenceScore,
		listing.AIModerationPassed,
		listing.AIModerationNotes,
		listing.AIAnalysis,
	)

	created, err := scanListing(row)
	if err != nil {
		return model.Listing{}, fmt.Errorf("create listing: %w", err)
	}
	return created, nil
}

func (r *ListingRepo) GetByID(ctx context.Context, id int64) (model.Listing, error) {
	if id <= 0 {
		return model.Listing{}, ErrListingNotFound
	}
	if r.pool == nil {
		return model.Listing{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `SELECT`+listingColumns+`
FROM glove_listings
WHERE id = $1`, id)

	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Listing{}, ErrListingNotFound
		}
		return model.Listing{}, fmt.Errorf("get listing: %w", err)
	}
	return listing, nil
}

// GetForUpdate locks the listing row for the duration of the transaction
// so concurrent report penalties cannot lose updates.
func (r *ListingRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (model.Listing, error) {
	if tx == nil {
		return model.Listing{}, fmt.Errorf("transaction is required")
	}
	if id <= 0 {
		return model.Listing{}, ErrListingNotFound
	}

	row := tx.QueryRow(ctx, `SELECT`+listingColumns+`
FROM glove_listings
WHERE id = $1
FOR UPDATE`, id)

	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Listing{}, ErrListingNotFound
		}
		return model.Listing{}, fmt.Errorf("get listing for update: %w", err)
	}
	return listing, nil
}

func (r *ListingRepo) UpdateTrust(ctx context.Context, tx pgx.Tx, id int64, score float64, status enums.ListingStatus) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	tag, err := tx.Exec(ctx, `
UPDATE glove_listings
SET confidence_score = $2,
	status = $3,
	updated_at = NOW()
WHERE id = $1`, id, score, status)
	if err != nil {
		return fmt.Errorf("update listing trust: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrListingNotFound
	}
	return nil
}

type SearchQuery struct {
	PostalCodes   []string
	Brand         string
	Color         string
	Size          enums.GloveSize
	Side          enums.GloveSide
	DateFrom      *time.Time
	DateTo        *time.Time
	MinConfidence float64
	Offset        int
	Limit         int
}

// Search returns one page of active listings plus the total match count.
// Ordering is found_date descending with id as the stable tiebreak.
func (r *ListingRepo) Search(ctx context.Context, q SearchQuery) ([]model.Listing, int, error) {
	if r.pool == nil {
		return nil, 0, fmt.Errorf("postgres pool is nil")
	}

	var (
		where strings.Builder
		args  []any
	)
	where.WriteString(`WHERE status = $1 AND confidence_score >= $2`)
	args = append(args, enums.ListingStatusActive, q.MinConfidence)

	if len(q.PostalCodes) > 0 {
		args = append(args, q.PostalCodes)
		fmt.Fprintf(&where, ` AND postal_code = ANY($%d)`, len(args))
	}
	if strings.TrimSpace(q.Brand) != "" {
		args = append(args, "%"+strings.TrimSpace(q.Brand)+"%")
		fmt.Fprintf(&where, ` AND brand ILIKE $%d`, len(args))
	}
	if strings.TrimSpace(q.Color) != "" {
		args = append(args, "%"+strings.TrimSpace(q.Color)+"%")
		fmt.Fprintf(&where, ` AND color ILIKE $%d`, len(args))
	}
	if q.Size != "" && q.Size != enums.GloveSizeUnknown {
		args = append(args, q.Size)
		fmt.Fprintf(&where, ` AND size = $%d`, len(args))
	}
	if q.Side != "" && q.Side != enums.GloveSideUnknown {
		args = append(args, q.Side)
		fmt.Fprintf(&where, ` AND side = $%d`, len(args))
	}
	if q.DateFrom != nil {
		args = append(args, *q.DateFrom)
		fmt.Fprintf(&where, ` AND found_date >= $%d`, len(args))
	}
	if q.DateTo != nil {
		args = append(args, *q.DateTo)
		fmt.Fprintf(&where, ` AND found_date <= $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM glove_listings `+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	args = append(args, q.Limit, q.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT%s
FROM glove_listings
%s
ORDER BY found_date DESC, id DESC
LIMIT $%d OFFSET $%d`, listingColumns, where.String(), len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search listings: %w", err)
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan listing row: %w", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate listing rows: %w", err)
	}

	return listings, total, nil
}

type PostalCodeStat struct {
	PostalCode    string
	TotalListings int
	GlovesClaimed int
}

// PostalCodeStats aggregates active and claimed listings per postal code.
func (r *ListingRepo) PostalCodeStats(ctx context.Context) ([]PostalCodeStat, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	postal_code,
	COUNT(*)::INT,
	COUNT(*) FILTER (WHERE status = $1)::INT
FROM glove_listings
WHERE status = ANY($2)
GROUP BY postal_code
ORDER BY COUNT(*) DESC, postal_code`,
		enums.ListingStatusClaimed,
		[]string{string(enums.ListingStatusActive), string(enums.ListingStatusClaimed)},
	)
	if err != nil {
		return nil, fmt.Errorf("query postal code stats: %w", err)
	}
	defer rows.Close()

	var stats []PostalCodeStat
	for rows.Next() {
		var s PostalCodeStat
		if err := rows.Scan(&s.PostalCode, &s.TotalListings, &s.GlovesClaimed); err != nil {
			return nil, fmt.Errorf("scan postal code stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate postal code stats: %w", err)
	}

	return stats, nil
}
