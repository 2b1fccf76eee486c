package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postalcodeworx/backend/internal/domain/model"
)

type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// Create inserts an immutable report row. Reports are append-only and
// are kept even after their listing is removed.
func (r *ReportRepo) Create(ctx context.Context, tx pgx.Tx, report model.Report) (model.Report, error) {
	if tx == nil {
		return model.Report{}, fmt.Errorf("transaction is required")
	}
	if report.ListingID <= 0 || report.Reason == "" {
		return model.Report{}, fmt.Errorf("invalid report payload")
	}

	row := tx.QueryRow(ctx, `
INSERT INTO glove_reports (
	listing_id,
	reason,
	description,
	reporter_email,
	reporter_ip,
	created_at
) VALUES ($1, $2, $3, $4, $5, NOW())
RETURNING id, listing_id, reason, description, reporter_email, reporter_ip, created_at
`, report.ListingID, report.Reason, report.Description, report.ReporterEmail, report.ReporterIP)

	var created model.Report
	if err := row.Scan(
		&created.ID,
		&created.ListingID,
		&created.Reason,
		&created.Description,
		&created.ReporterEmail,
		&created.ReporterIP,
		&created.CreatedAt,
	); err != nil {
		return model.Report{}, fmt.Errorf("create report: %w", err)
	}

	return created, nil
}
