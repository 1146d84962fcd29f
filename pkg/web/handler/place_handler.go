package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"staybook/pkg/core/place/service"
	"staybook/pkg/web/model"
)

type PlaceHandler struct {
	places *service.PlaceService
}

func NewPlaceHandler(places *service.PlaceService) *PlaceHandler {
	return &PlaceHandler{places: places}
}

func (h *PlaceHandler) Create(ctx context.Context, c *app.RequestContext) {
	ownerID, err := currentUserID(c)
	if err != nil {
		respondErr(ctx, c, err)
		return
	}

	var req model.PlaceReq
	if err := c.BindAndValidate(&req); err != nil {
		respondBindError(c, err)
		return
	}

	place, err := h.places.Create(ctx, ownerID, req.Fields())
	if err != nil {
		respondErr(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, place)
}

// Update 只有房源所有者可以修改，否则返回 403
func (h *PlaceHandler) Update(ctx context.Context, c *app.RequestContext) {
	callerID, err := currentUserID(c)
	if err != nil {
		respondErr(ctx, c, err)
		return
	}

	var req model.PlaceReq
	if err := c.BindAndValidate(&req); err != nil {
		respondBindError(c, err)
		return
	}

	place, err := h.places.Update(ctx, callerID, req.ID, req.Fields())
	if err != nil {
		respondErr(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, model.UpdatePlaceRes{PlaceDoc: place})
}

func (h *PlaceHandler) GetByID(ctx context.Context, c *app.RequestContext) {
	place, err := h.places.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondErr(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, place)
}

func (h *PlaceHandler) ListAll(ctx context.Context, c *app.RequestContext) {
	places, err := h.places.ListAll(ctx)
	if err != nil {
		respondErr(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, places)
}

func (h *PlaceHandler) ListByOwner(ctx context.Context, c *app.RequestContext) {
	ownerID, err := currentUserID(c)
	if err != nil {
		respondErr(ctx, c, err)
		return
	}

	places, err := h.places.ListByOwner(ctx, ownerID)
	if err != nil {
		respondErr(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, places)
}
