package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/salary-advance/internal/reimbursement"
)

const summaryQuery = `
SELECT
  COALESCE(SUM(CASE WHEN status = 'EN_ATTENTE' THEN 1 ELSE 0 END), 0)            AS pending_count,
  COALESCE(SUM(CASE WHEN status = 'EN_ATTENTE' THEN total_amount ELSE 0 END), 0) AS pending_amount,
  COALESCE(SUM(CASE WHEN status = 'EN_RETARD' THEN 1 ELSE 0 END), 0)             AS overdue_count,
  COALESCE(SUM(CASE WHEN status = 'EN_RETARD' THEN total_amount ELSE 0 END), 0)  AS overdue_amount,
  COALESCE(SUM(CASE WHEN status = 'PAYE' THEN 1 ELSE 0 END), 0)                  AS paid_count,
  COALESCE(SUM(CASE WHEN status = 'PAYE' THEN total_amount ELSE 0 END), 0)       AS paid_amount,
  COALESCE(SUM(CASE WHEN status = 'ANNULE' THEN 1 ELSE 0 END), 0)                AS cancelled_count
FROM reimbursements
WHERE partner_id = ?
`

// SummaryRepository is the sqlx read model behind the partner summary.
type SummaryRepository struct {
	db *sqlx.DB
}

func NewSummaryRepository(db *sqlx.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) Summary(ctx context.Context, partnerID string) (*reimbursement.Summary, error) {
	var s reimbursement.Summary
	if err := r.db.GetContext(ctx, &s, r.db.Rebind(summaryQuery), partnerID); err != nil {
		return nil, fmt.Errorf("reimbursement summary query: %w", err)
	}
	s.PartnerID = partnerID
	return &s, nil
}
