package dao

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	apperr "staybook/pkg/common/errors"
	"staybook/pkg/core/user/model"
	"staybook/pkg/core/user/repository/dao"
)

type GormUserRepository struct {
	db *gorm.DB
}

var _ dao.UserRepository = (*GormUserRepository)(nil)

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create new user with transaction
func (r *GormUserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if apperr.IsDuplicateError(err) {
				return apperr.ErrDuplicateEntry
			}
			return fmt.Errorf("%w: user creation failed", apperr.WrapGormError(err, apperr.ErrUserNotFound))
		}
		return nil
	})
}

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

// Check email existence
func (r *GormUserRepository) IsEmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: failed to check email", apperr.WrapGormError(err, apperr.ErrUserNotFound))
	}
	return count > 0, nil
}

func (r *GormUserRepository) first(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		return nil, apperr.WrapGormError(err, apperr.ErrUserNotFound)
	}
	return &user, nil
}
