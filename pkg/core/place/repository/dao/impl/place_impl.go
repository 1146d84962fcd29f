package dao

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	apperr "staybook/pkg/common/errors"
	"staybook/pkg/core/place/model"
	"staybook/pkg/core/place/repository/dao"
)

type GormPlaceRepository struct {
	db *gorm.DB
}

var _ dao.PlaceRepository = (*GormPlaceRepository)(nil)

func NewGormPlaceRepository(db *gorm.DB) *GormPlaceRepository {
	return &GormPlaceRepository{db: db}
}

func (r *GormPlaceRepository) Create(ctx context.Context, place *model.Place) error {
	if err := r.db.WithContext(ctx).Create(place).Error; err != nil {
		return fmt.Errorf("%w: place creation failed", apperr.WrapGormError(err, apperr.ErrPlaceNotFound))
	}
	return nil
}

// Update overwrites every mutable column, zero values included
func (r *GormPlaceRepository) Update(ctx context.Context, place *model.Place) error {
	result := r.db.WithContext(ctx).
		Model(place).
		Select("title", "address", "photos", "description", "perks", "max_guests", "price", "updated_at").
		Updates(place)
	if result.Error != nil {
		return fmt.Errorf("%w: place update failed", apperr.WrapGormError(result.Error, apperr.ErrPlaceNotFound))
	}
	if result.RowsAffected == 0 {
		return apperr.ErrPlaceNotFound
	}
	return nil
}

func (r *GormPlaceRepository) FindByID(ctx context.Context, id string) (*model.Place, error) {
	var place model.Place
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&place).Error; err != nil {
		return nil, apperr.WrapGormError(err, apperr.ErrPlaceNotFound)
	}
	return &place, nil
}

func (r *GormPlaceRepository) FindAll(ctx context.Context) ([]model.Place, error) {
	places := []model.Place{}
	if err := r.db.WithContext(ctx).Order("created_at").Find(&places).Error; err != nil {
		return nil, apperr.WrapGormError(err, apperr.ErrPlaceNotFound)
	}
	return places, nil
}

func (r *GormPlaceRepository) FindByOwner(ctx context.Context, ownerID string) ([]model.Place, error) {
	places := []model.Place{}
	err := r.db.WithContext(ctx).
		Where("owner = ?", ownerID).
		Order("created_at").
		Find(&places).Error
	if err != nil {
		return nil, apperr.WrapGormError(err, apperr.ErrPlaceNotFound)
	}
	return places, nil
}
