package dao

import (
	"context"

	"staybook/pkg/core/booking/model"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByUser(ctx context.Context, userID string) ([]model.Booking, error)
}
