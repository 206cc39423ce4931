package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/employee"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.RepositoryAPI {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*employee.Employee, error) {
	var e employee.Employee
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) GetPartner(ctx context.Context, id string) (*employee.Partner, error) {
	var p employee.Partner
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("Partner not found", internal.ErrCodeEmployeeNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (r *EmployeeRepository) ListByPartner(ctx context.Context, partnerID string) ([]*employee.Employee, error) {
	var employees []*employee.Employee
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("last_name ASC, first_name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EmployeeRepository) CreatePartner(ctx context.Context, p *employee.Partner) error {
	return r.db.WithContext(ctx).Create(p).Error
}
