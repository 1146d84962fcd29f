package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"staybook/pkg/core/booking/service"
	"staybook/pkg/web/model"
)

type BookingHandler struct {
	bookings *service.BookingService
}

func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

func (h *BookingHandler) Create(ctx context.Context, c *app.RequestContext) {
	var req model.BookingReq
	if err := c.BindAndValidate(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.bookings.Create(ctx, req.Input())
	if err != nil {
		respondErr(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, booking)
}

func (h *BookingHandler) ListByUser(ctx context.Context, c *app.RequestContext) {
	userID, err := currentUserID(c)
	if err != nil {
		respondErr(ctx, c, err)
		return
	}

	bookings, err := h.bookings.ListByUser(ctx, userID)
	if err != nil {
		respondErr(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, bookings)
}
