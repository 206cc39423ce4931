package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/salary-advance/internal"
	reimbursementDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/reimbursement"
	"github.com/frahmantamala/salary-advance/internal/reimbursement"
)

type ReimbursementRepository struct {
	db *gorm.DB
}

func NewReimbursementRepository(db *gorm.DB) reimbursement.RepositoryAPI {
	return &ReimbursementRepository{db: db}
}

func (r *ReimbursementRepository) Create(ctx context.Context, rec *reimbursement.Reimbursement) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *ReimbursementRepository) GetByID(ctx context.Context, id string) (*reimbursement.Reimbursement, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *ReimbursementRepository) GetByTransactionID(ctx context.Context, transactionID string) (*reimbursement.Reimbursement, error) {
	return r.first(ctx, "transaction_id = ?", transactionID)
}

func (r *ReimbursementRepository) first(ctx context.Context, query string, arg interface{}) (*reimbursement.Reimbursement, error) {
	var rec reimbursement.Reimbursement
	if err := r.db.WithContext(ctx).Where(query, arg).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrReimbursementNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *ReimbursementRepository) List(ctx context.Context, filter reimbursement.Filter) ([]*reimbursement.Reimbursement, error) {
	query := r.db.WithContext(ctx).Model(&reimbursement.Reimbursement{})
	if filter.PartnerID != "" {
		query = query.Where("partner_id = ?", filter.PartnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var records []*reimbursement.Reimbursement
	err := query.Order("due_date ASC").Find(&records).Error
	return records, err
}

func (r *ReimbursementRepository) ListUnpaid(ctx context.Context, partnerID string) ([]*reimbursement.Reimbursement, error) {
	var records []*reimbursement.Reimbursement
	err := r.db.WithContext(ctx).
		Where("partner_id = ? AND status IN ?", partnerID, []string{
			reimbursementDatamodel.StatusPending,
			reimbursementDatamodel.StatusOverdue,
		}).
		Order("due_date ASC").
		Find(&records).Error
	return records, err
}

func (r *ReimbursementRepository) TransitionStatus(ctx context.Context, id string, from []string, to string, changes reimbursement.Changes) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if changes.Method != nil {
		updates["method"] = *changes.Method
	}
	if changes.PaidAt != nil {
		updates["paid_at"] = *changes.PaidAt
	}
	if changes.CancelReason != nil {
		updates["cancel_reason"] = *changes.CancelReason
	}

	res := r.db.WithContext(ctx).
		Model(&reimbursement.Reimbursement{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ReimbursementRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&reimbursement.Reimbursement{}).
		Where("status = ? AND due_date < ?", reimbursementDatamodel.StatusPending, now).
		Updates(map[string]interface{}{
			"status":     reimbursementDatamodel.StatusOverdue,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}
