package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	apperr "staybook/pkg/common/errors"
	"staybook/pkg/core/auth"
)

// 统一错误响应方法
func respondError(c *app.RequestContext, code int, msg string) {
	c.JSON(code, utils.H{
		"error":   msg,
		"code":    code,
		"success": false,
	})
}

// respondErr 按错误类别决定状态码，内部错误只记日志不外露
func respondErr(ctx context.Context, c *app.RequestContext, err error) {
	status := apperr.HTTPStatus(err)
	if status >= consts.StatusInternalServerError {
		hlog.CtxErrorf(ctx, "%s %s failed: %v", c.Method(), c.Path(), err)
	} else {
		hlog.CtxDebugf(ctx, "%s %s rejected: %v", c.Method(), c.Path(), err)
	}
	respondError(c, status, apperr.PublicMessage(err))
}

func respondBindError(c *app.RequestContext, err error) {
	respondError(c, consts.StatusBadRequest, "invalid request body: "+err.Error())
}

// currentUserID 鉴权中间件写入的用户 id
func currentUserID(c *app.RequestContext) (string, error) {
	id := c.GetString(auth.IdentityKey)
	if id == "" {
		return "", apperr.ErrUnauthorized
	}
	return id, nil
}
