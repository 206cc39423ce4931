package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/salary-advance/internal"
	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/salary-advance/internal/payment"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *payment.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*payment.Transaction, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *TransactionRepository) GetByPayID(ctx context.Context, payID string) (*payment.Transaction, error) {
	return r.first(ctx, "pay_id = ?", payID)
}

func (r *TransactionRepository) first(ctx context.Context, query string, arg interface{}) (*payment.Transaction, error) {
	var tx payment.Transaction
	if err := r.db.WithContext(ctx).Where(query, arg).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) List(ctx context.Context, filter payment.Filter) ([]*payment.Transaction, error) {
	query := r.db.WithContext(ctx).Model(&payment.Transaction{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PartnerID != "" {
		query = query.Where("partner_id = ?", filter.PartnerID)
	}
	if filter.AdvanceID != "" {
		query = query.Where("advance_id = ?", filter.AdvanceID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var txs []*payment.Transaction
	err := query.Order("created_at DESC").Find(&txs).Error
	return txs, err
}

func (r *TransactionRepository) LatestBlocking(ctx context.Context, advanceID string) (*payment.Transaction, error) {
	var tx payment.Transaction
	err := r.db.WithContext(ctx).
		Where("advance_id = ? AND status IN ?", advanceID, []string{
			transactionDatamodel.StatusPending,
			transactionDatamodel.StatusSucceeded,
		}).
		Order("created_at DESC").
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Settle is the single write path for terminal statuses. The status guard in
// the WHERE clause makes concurrent resolvers race on the row itself.
func (r *TransactionRepository) Settle(ctx context.Context, id, status, providerStatus string, message *string, completedAt time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":          status,
		"provider_status": providerStatus,
		"completed_at":    completedAt,
		"updated_at":      time.Now(),
	}
	if message != nil {
		updates["provider_message"] = *message
	}

	res := r.db.WithContext(ctx).
		Model(&payment.Transaction{}).
		Where("id = ? AND status = ?", id, transactionDatamodel.StatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
