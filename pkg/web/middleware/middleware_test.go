package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/test/assert"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol"

	"staybook/pkg/common/config"
	"staybook/pkg/core/auth"
)

func errorBody(t *testing.T, resp *protocol.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.Nil(t, json.Unmarshal(resp.Body(), &body))
	return body
}

func ok(ctx context.Context, c *app.RequestContext) {
	c.String(200, "ok")
}

func TestTokenBucketStartsFull(t *testing.T) {
	tb := NewTokenBucket(3, time.Hour)
	for i := 0; i < 3; i++ {
		assert.Assert(t, tb.Allow())
	}
	assert.Assert(t, !tb.Allow())
}

func TestRateLimitMiddleware(t *testing.T) {
	h := server.New()
	h.GET("/limited", RateLimitMiddleware(1, time.Hour), ok)

	first := ut.PerformRequest(h.Engine, "GET", "/limited", nil).Result()
	assert.DeepEqual(t, 200, first.StatusCode())

	second := ut.PerformRequest(h.Engine, "GET", "/limited", nil).Result()
	assert.DeepEqual(t, 429, second.StatusCode())
	assert.DeepEqual(t, "too many requests", errorBody(t, second)["error"])
}

func TestSecurityCheckMiddleware(t *testing.T) {
	h := server.New()
	h.Use(SecurityCheckMiddleware(config.SecurityConfig{MaxBodySize: 8, AllowedMethods: []string{"get", "post"}}))
	h.POST("/echo", ok)
	h.PATCH("/echo", ok)

	small := ut.PerformRequest(h.Engine, "POST", "/echo", &ut.Body{Body: strings.NewReader("tiny"), Len: 4}).Result()
	assert.DeepEqual(t, 200, small.StatusCode())

	large := ut.PerformRequest(h.Engine, "POST", "/echo", &ut.Body{Body: strings.NewReader("way too large"), Len: 13}).Result()
	assert.DeepEqual(t, 413, large.StatusCode())

	patch := ut.PerformRequest(h.Engine, "PATCH", "/echo", nil).Result()
	assert.DeepEqual(t, 405, patch.StatusCode())
}

func TestTimeoutMiddleware(t *testing.T) {
	h := server.New()
	h.Use(TimeoutMiddleware(1))
	h.GET("/slow", func(ctx context.Context, c *app.RequestContext) {
		<-ctx.Done()
		c.JSON(500, utils.H{"code": 500, "error": ctx.Err().Error(), "success": false})
	})
	h.GET("/deadline", func(ctx context.Context, c *app.RequestContext) {
		_, has := ctx.Deadline()
		if has {
			c.String(200, "has deadline")
			return
		}
		c.String(200, "none")
	})

	resp := ut.PerformRequest(h.Engine, "GET", "/slow", nil).Result()
	assert.DeepEqual(t, 503, resp.StatusCode())
	body := errorBody(t, resp)
	assert.DeepEqual(t, "request timeout", body["error"])
	assert.DeepEqual(t, float64(503), body["code"])

	resp = ut.PerformRequest(h.Engine, "GET", "/deadline", nil).Result()
	assert.DeepEqual(t, "has deadline", string(resp.Body()))
}

func TestRecoveryMiddleware(t *testing.T) {
	cfg := config.Default()
	cfg.Env = "production"

	h := server.New()
	h.Use(RecoveryMiddleware(&cfg))
	h.GET("/panic", func(ctx context.Context, c *app.RequestContext) {
		panic("boom")
	})

	resp := ut.PerformRequest(h.Engine, "GET", "/panic", nil).Result()
	assert.DeepEqual(t, 500, resp.StatusCode())
	body := errorBody(t, resp)
	assert.DeepEqual(t, "internal server error", body["error"])
	_, hasStack := body["stack"]
	assert.Assert(t, !hasStack)
}

func TestCookieAuthMiddleware(t *testing.T) {
	cfg := config.Default().Middleware.JWT
	cfg.Secret = "middleware-test-secret"
	tokens := auth.NewTokenManager(cfg)
	requireAuth, err := CookieAuthMiddleware(cfg, tokens)
	assert.Nil(t, err)

	h := server.New()
	h.GET("/me", requireAuth, func(ctx context.Context, c *app.RequestContext) {
		c.String(200, c.GetString(auth.IdentityKey))
	})

	resp := ut.PerformRequest(h.Engine, "GET", "/me", nil).Result()
	assert.DeepEqual(t, 401, resp.StatusCode())
	assert.DeepEqual(t, "no token", errorBody(t, resp)["error"])

	resp = ut.PerformRequest(h.Engine, "GET", "/me", nil, ut.Header{Key: "Cookie", Value: "token=garbage"}).Result()
	assert.DeepEqual(t, 401, resp.StatusCode())
	assert.DeepEqual(t, "invalid or expired token", errorBody(t, resp)["error"])

	token, err := tokens.Issue("user-42", "a@x.com")
	assert.Nil(t, err)
	resp = ut.PerformRequest(h.Engine, "GET", "/me", nil, ut.Header{Key: "Cookie", Value: "token=" + token}).Result()
	assert.DeepEqual(t, 200, resp.StatusCode())
	assert.DeepEqual(t, "user-42", string(resp.Body()))
}

func TestCookieAuthMiddlewareChecksIssuerAndAlgorithm(t *testing.T) {
	cfg := config.Default().Middleware.JWT
	cfg.Secret = "middleware-test-secret"
	requireAuth, err := CookieAuthMiddleware(cfg, auth.NewTokenManager(cfg))
	assert.Nil(t, err)

	h := server.New()
	h.GET("/me", requireAuth, ok)

	foreign := cfg
	foreign.Issuer = "someone-else"
	foreignToken, err := auth.NewTokenManager(foreign).Issue("user-42", "a@x.com")
	assert.Nil(t, err)

	other := cfg
	other.SigningMethod = "HS512"
	hs512Token, err := auth.NewTokenManager(other).Issue("user-42", "a@x.com")
	assert.Nil(t, err)

	for name, token := range map[string]string{"foreign issuer": foreignToken, "HS512": hs512Token} {
		t.Run(name, func(t *testing.T) {
			resp := ut.PerformRequest(h.Engine, "GET", "/me", nil, ut.Header{Key: "Cookie", Value: "token=" + token}).Result()
			assert.DeepEqual(t, 401, resp.StatusCode())
			assert.DeepEqual(t, "invalid or expired token", errorBody(t, resp)["error"])
		})
	}
}

func TestCookieAuthMiddlewareRequiresSecret(t *testing.T) {
	cfg := config.Default().Middleware.JWT
	_, err := CookieAuthMiddleware(cfg, auth.NewTokenManager(cfg))
	assert.DeepEqual(t, config.ErrMissingJWTSecret, err)
}
