package dao

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	apperr "staybook/pkg/common/errors"
	"staybook/pkg/core/booking/model"
	"staybook/pkg/core/booking/repository/dao"
)

type GormBookingRepository struct {
	db *gorm.DB
}

var _ dao.BookingRepository = (*GormBookingRepository)(nil)

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("%w: booking creation failed", apperr.WrapGormError(err, apperr.ErrDatabaseInternal))
	}
	return nil
}

func (r *GormBookingRepository) FindByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	bookings := []model.Booking{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("check_in").
		Find(&bookings).Error
	if err != nil {
		return nil, apperr.WrapGormError(err, apperr.ErrDatabaseInternal)
	}
	return bookings, nil
}
