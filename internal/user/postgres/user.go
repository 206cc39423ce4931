package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/salary-advance/internal"
	userDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/user"
	"github.com/frahmantamala/salary-advance/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("User not found", internal.ErrCodeEmployeeNotFound)
		}
		return nil, err
	}
	return user.FromDataModel(&u), nil
}

func (r *UserRepository) ListActiveByRoles(ctx context.Context, roles []string) ([]*user.User, error) {
	if len(roles) == 0 {
		return nil, nil
	}

	var rows []userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("role IN ? AND is_active = ?", roles, true).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	users := make([]*user.User, 0, len(rows))
	for i := range rows {
		users = append(users, user.FromDataModel(&rows[i]))
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	model := user.ToDataModel(u)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}
