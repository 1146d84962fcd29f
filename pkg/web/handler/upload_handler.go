package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"staybook/pkg/common/metrics"
	"staybook/pkg/core/upload"
	"staybook/pkg/web/model"
)

// photosField multipart 表单中的文件字段
const photosField = "photos"

type UploadHandler struct {
	store *upload.Store
}

func NewUploadHandler(store *upload.Store) *UploadHandler {
	return &UploadHandler{store: store}
}

func (h *UploadHandler) ByLink(ctx context.Context, c *app.RequestContext) {
	var req model.UploadLinkReq
	if err := c.BindAndValidate(&req); err != nil {
		respondBindError(c, err)
		return
	}

	name, err := h.store.SaveFromLink(ctx, req.Link)
	if err != nil {
		respondErr(ctx, c, err)
		return
	}

	metrics.AddUploads("link", 1)
	c.JSON(consts.StatusOK, name)
}

func (h *UploadHandler) Files(ctx context.Context, c *app.RequestContext) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, consts.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	names, err := h.store.SaveFiles(form.File[photosField])
	if err != nil {
		respondErr(ctx, c, err)
		return
	}

	metrics.AddUploads("multipart", len(names))
	c.JSON(consts.StatusOK, names)
}
