package dao

import (
	"context"

	"staybook/pkg/core/place/model"
)

// PlaceRepository 未找到记录时返回 errors.ErrPlaceNotFound
type PlaceRepository interface {
	Create(ctx context.Context, place *model.Place) error
	Update(ctx context.Context, place *model.Place) error
	FindByID(ctx context.Context, id string) (*model.Place, error)
	FindAll(ctx context.Context) ([]model.Place, error)
	FindByOwner(ctx context.Context, ownerID string) ([]model.Place, error)
}
