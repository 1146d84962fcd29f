package service

import (
	"context"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"staybook/pkg/common/metrics"
	"staybook/pkg/core/booking/model"
	"staybook/pkg/core/booking/repository/dao"
)

// CreateInput 预订请求，日期为原始字符串
type CreateInput struct {
	Place    string
	User     string
	CheckIn  string
	CheckOut string
	Name     string
	Phone    string
	Price    float64
}

type BookingService struct {
	repo dao.BookingRepository
}

func NewBookingService(repo dao.BookingRepository) *BookingService {
	return &BookingService{repo: repo}
}

// Create 不校验房源与用户是否存在，也不检查日期重叠
func (s *BookingService) Create(ctx context.Context, in CreateInput) (*model.Booking, error) {
	checkIn, err := model.ParseDate("checkIn", in.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := model.ParseDate("checkOut", in.CheckOut)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		Place:    in.Place,
		User:     in.User,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Name:     in.Name,
		Phone:    in.Phone,
		Price:    in.Price,
	}
	if err := booking.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	hlog.CtxInfof(ctx, "booking created id=%s place=%s user=%s", booking.ID, booking.Place, booking.User)
	return booking, nil
}

func (s *BookingService) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return s.repo.FindByUser(ctx, userID)
}
