package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/hertz-contrib/jwt"

	"staybook/pkg/common/config"
	apperr "staybook/pkg/common/errors"
	"staybook/pkg/core/auth"
)

var (
	errTokenAlgorithm = errors.New("unexpected signing algorithm")
	errTokenIssuer    = errors.New("unexpected token issuer")
)

// CookieAuthMiddleware 校验 cookie 中的令牌，通过后把用户 id 写入 auth.IdentityKey。
// 签名算法与签发方的校验与 auth.TokenManager.Verify 一致
func CookieAuthMiddleware(cfg config.JWTAuthConfig, tokens *auth.TokenManager) (app.HandlerFunc, error) {
	if cfg.Secret == "" {
		return nil, config.ErrMissingJWTSecret
	}
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "token"
	}
	key := []byte(cfg.Secret)

	authMiddleware, err := jwt.New(&jwt.HertzJWTMiddleware{
		Realm:            cfg.Realm,
		SigningAlgorithm: tokens.Algorithm(),
		Key:              key,
		KeyFunc: func(token *jwtv4.Token) (interface{}, error) {
			if token.Method.Alg() != tokens.Algorithm() {
				return nil, errTokenAlgorithm
			}
			if issuer := tokens.Issuer(); issuer != "" {
				claims, _ := token.Claims.(jwtv4.MapClaims)
				if !claims.VerifyIssuer(issuer, true) {
					return nil, fmt.Errorf("%w: %v", errTokenIssuer, claims["iss"])
				}
			}
			return key, nil
		},
		Timeout:     tokens.TTL(),
		TokenLookup: "cookie:" + cookieName,
		IdentityKey: auth.IdentityKey,
		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			id, _ := jwt.ExtractClaims(ctx, c)[auth.IdentityKey].(string)
			return id
		},
		HTTPStatusMessageFunc: func(e error, ctx context.Context, c *app.RequestContext) string {
			if errors.Is(e, jwt.ErrEmptyCookieToken) {
				return apperr.ErrNoToken.Error()
			}
			return apperr.ErrUnauthorized.Error()
		},
		Unauthorized: handleJWTError,
	})
	if err != nil {
		return nil, err
	}

	return authMiddleware.MiddlewareFunc(), nil
}

func handleJWTError(ctx context.Context, c *app.RequestContext, code int, message string) {
	hlog.CtxInfof(ctx, "JWT Error (code=%d) path=%s: %s", code, c.Path(), message)
	abortWithError(c, code, message)
}
