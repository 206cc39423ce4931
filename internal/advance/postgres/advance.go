package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/advance"
)

type AdvanceRepository struct {
	db *gorm.DB
}

func NewAdvanceRepository(db *gorm.DB) advance.RepositoryAPI {
	return &AdvanceRepository{db: db}
}

func (r *AdvanceRepository) Create(ctx context.Context, a *advance.AdvanceRequest) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AdvanceRepository) GetByID(ctx context.Context, id string) (*advance.AdvanceRequest, error) {
	var a advance.AdvanceRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrAdvanceNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AdvanceRepository) List(ctx context.Context, filter advance.Filter) ([]*advance.AdvanceRequest, error) {
	query := r.db.WithContext(ctx).Model(&advance.AdvanceRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.EmployeeID != "" {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.PartnerID != "" {
		query = query.Where("partner_id = ?", filter.PartnerID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var advances []*advance.AdvanceRequest
	err := query.Order("created_at DESC").Find(&advances).Error
	return advances, err
}

// TransitionStatus only updates the row while it is still in the from state.
func (r *AdvanceRepository) TransitionStatus(ctx context.Context, id, from, to string, processedAt *time.Time, comment *string) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if processedAt != nil {
		updates["processed_at"] = *processedAt
	}
	if comment != nil {
		updates["rejection_comment"] = *comment
	}

	res := r.db.WithContext(ctx).
		Model(&advance.AdvanceRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
