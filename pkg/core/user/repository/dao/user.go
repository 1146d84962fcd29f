package dao

import (
	"context"

	"staybook/pkg/core/user/model"
)

// UserRepository 未找到记录时返回 errors.ErrUserNotFound，邮箱重复时返回 errors.ErrDuplicateEntry
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	IsEmailExists(ctx context.Context, email string) (bool, error)
}
