package handler

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"staybook/pkg/common/config"
	"staybook/pkg/core/user/service"
	"staybook/pkg/web/model"
)

type UserHandler struct {
	users  *service.UserService
	cookie cookieOptions
}

type cookieOptions struct {
	name     string
	maxAge   int
	secure   bool
	sameSite protocol.CookieSameSite
}

func NewUserHandler(users *service.UserService, cfg config.JWTAuthConfig) *UserHandler {
	name := cfg.CookieName
	if name == "" {
		name = "token"
	}
	maxAge := int(cfg.ExpireDuration.Seconds())
	if maxAge <= 0 {
		maxAge = 24 * 60 * 60
	}
	return &UserHandler{
		users: users,
		cookie: cookieOptions{
			name:     name,
			maxAge:   maxAge,
			secure:   cfg.CookieSecure,
			sameSite: parseSameSite(cfg.CookieSameSite),
		},
	}
}

func parseSameSite(s string) protocol.CookieSameSite {
	switch strings.ToLower(s) {
	case "strict":
		return protocol.CookieSameSiteStrictMode
	case "none":
		return protocol.CookieSameSiteNoneMode
	default:
		return protocol.CookieSameSiteLaxMode
	}
}

// Test 连通性检查
func (h *UserHandler) Test(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, "test ok")
}

func (h *UserHandler) Register(ctx context.Context, c *app.RequestContext) {
	var req model.RegisterReq
	if err := c.BindAndValidate(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		respondErr(ctx, c, err)
		return
	}

	c.JSON(consts.StatusOK, user)
}

func (h *UserHandler) Login(ctx context.Context, c *app.RequestContext) {
	var req model.LoginReq
	if err := c.BindAndValidate(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondErr(ctx, c, err)
		return
	}

	h.setTokenCookie(c, token, h.cookie.maxAge)
	c.JSON(consts.StatusOK, user.Profile())
}

// Profile 不经过鉴权中间件，直接校验 cookie 里的令牌
func (h *UserHandler) Profile(ctx context.Context, c *app.RequestContext) {
	token := string(c.Cookie(h.cookie.name))

	user, err := h.users.Profile(ctx, token)
	if err != nil {
		respondErr(ctx, c, err)
		return
	}

	c.JSON(consts.StatusOK, user.Profile())
}

func (h *UserHandler) Logout(ctx context.Context, c *app.RequestContext) {
	h.clearTokenCookie(c)
	c.JSON(consts.StatusOK, true)
}

func (h *UserHandler) setTokenCookie(c *app.RequestContext, token string, maxAge int) {
	c.SetCookie(h.cookie.name, token, maxAge, "/", "", h.cookie.sameSite, h.cookie.secure, true)
}

// clearTokenCookie 写入空值并设置过去的过期时间
func (h *UserHandler) clearTokenCookie(c *app.RequestContext) {
	cookie := protocol.AcquireCookie()
	defer protocol.ReleaseCookie(cookie)

	cookie.SetKey(h.cookie.name)
	cookie.SetValue("")
	cookie.SetPath("/")
	cookie.SetExpire(protocol.CookieExpireDelete)
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(h.cookie.secure)
	cookie.SetSameSite(h.cookie.sameSite)
	c.Response.Header.SetCookie(cookie)
}
