package middleware

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/cors"

	"staybook/pkg/common/config"
	"staybook/pkg/common/metrics"
)

// LoggerMiddleware 结构化的请求日志记录，同时上报请求指标
func LoggerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c) // 放行到后续处理器
		latency := time.Since(start)
		status := ctx.Response.StatusCode()

		metrics.ObserveRequest(string(ctx.Method()), status, latency)

		hlog.CtxTracef(c, "| %3d | %13v | %15s | %-7s | %s | UA=%s",
			status,
			latency,
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
			ctx.GetHeader("User-Agent"),
		)
	}
}

/*
	启动时指定环境变量
	export APP_ENV=production
	go run ./cmd/web
*/

// RecoveryMiddleware 异常捕获，生产环境不返回堆栈
func RecoveryMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				stack := string(debug.Stack())

				hlog.CtxErrorf(c, "[PANIC RECOVERED] %v\n%s", err, stack)

				if cfg.IsProd() {
					abortWithError(ctx, consts.StatusInternalServerError, "internal server error")
					return
				}
				// 开发环境显示详细错误
				ctx.AbortWithStatusJSON(consts.StatusInternalServerError, utils.H{
					"error":   fmt.Sprintf("%v", err),
					"code":    consts.StatusInternalServerError,
					"success": false,
					"stack":   strings.Split(stack, "\n"),
				})
			}
		}()
		ctx.Next(c)
	}
}

// CORSMiddleware 允许前端携带 cookie 跨域访问
func CORSMiddleware(corsConfig config.CORSConfig) app.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:     corsConfig.AllowOrigins,
		AllowMethods:     corsConfig.AllowMethods,
		AllowHeaders:     corsConfig.AllowHeaders,
		ExposeHeaders:    corsConfig.ExposeHeaders,
		AllowCredentials: corsConfig.AllowCredentials,
		MaxAge:           corsConfig.MaxAge,
	}
	if len(corsConfig.TrustedDomains) > 0 {
		// 动态校验来源
		cfg.AllowOriginFunc = func(origin string) bool {
			for _, domain := range corsConfig.TrustedDomains {
				if strings.HasSuffix(origin, domain) {
					return true
				}
			}
			return false
		}
	}
	return cors.New(cfg)
}

// TimeoutMiddleware 给请求上下文设置截止时间，存储调用据此提前返回
func TimeoutMiddleware(seconds int) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if seconds <= 0 {
			ctx.Next(c)
			return
		}
		timeoutCtx, cancel := context.WithTimeout(c, time.Duration(seconds)*time.Second)
		defer cancel()

		ctx.Next(timeoutCtx)

		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) &&
			ctx.Response.StatusCode() >= consts.StatusInternalServerError {
			hlog.CtxWarnf(c, "request timeout path=%s", ctx.Path())
			// 丢弃 handler 已写入的响应体
			ctx.Response.ResetBody()
			abortWithError(ctx, consts.StatusServiceUnavailable, "request timeout")
		}
	}
}

// RateLimitMiddleware 令牌桶算法限流
func RateLimitMiddleware(rate int, interval time.Duration) app.HandlerFunc {
	limiter := NewTokenBucket(rate, interval)

	return func(c context.Context, ctx *app.RequestContext) {
		if !limiter.Allow() {
			hlog.CtxInfof(c, "[RATE LIMIT] path=%s", ctx.Path())
			abortWithError(ctx, consts.StatusTooManyRequests, "too many requests")
			return
		}
		ctx.Next(c)
	}
}

// TokenBucket 容量为 rate，每 interval 补满一轮
type TokenBucket struct {
	capacity int
	tokens   chan struct{}
	rate     time.Duration
}

func NewTokenBucket(rate int, interval time.Duration) *TokenBucket {
	if rate <= 0 {
		rate = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	tb := &TokenBucket{
		capacity: rate,
		tokens:   make(chan struct{}, rate),
		rate:     interval / time.Duration(rate),
	}
	// 初始为满桶
	for i := 0; i < rate; i++ {
		tb.tokens <- struct{}{}
	}

	// 定时器生产令牌
	go func() {
		ticker := time.NewTicker(tb.rate)
		for range ticker.C {
			select {
			case tb.tokens <- struct{}{}:
			default:
			}
		}
	}()
	return tb
}

func (tb *TokenBucket) Allow() bool {
	select {
	case <-tb.tokens:
		return true
	default:
		return false
	}
}

// SecurityCheckMiddleware 全局安全校验：请求体大小与 HTTP 方法
func SecurityCheckMiddleware(cfg config.SecurityConfig) app.HandlerFunc {
	allowed := make(map[string]bool, len(cfg.AllowedMethods))
	for _, m := range cfg.AllowedMethods {
		allowed[strings.ToUpper(m)] = true
	}

	return func(c context.Context, ctx *app.RequestContext) {
		// 防护机制1：请求体大小限制
		if cfg.MaxBodySize > 0 && int64(ctx.Request.Header.ContentLength()) > cfg.MaxBodySize {
			securityResponse(ctx, consts.StatusRequestEntityTooLarge, "request body exceeds max size")
			return
		}

		// 防护机制2：检查HTTP方法
		if len(allowed) > 0 && !allowed[string(ctx.Method())] {
			securityResponse(ctx, consts.StatusMethodNotAllowed, "method not allowed")
			return
		}

		ctx.Next(c)
	}
}

// 安全响应统一处理
func securityResponse(ctx *app.RequestContext, status int, msg string) {
	hlog.Warnf("SecurityAlert[code=%d] path=%s: %s", status, ctx.Path(), msg)
	abortWithError(ctx, status, msg)
}

// abortWithError 与 handler 保持一致的错误响应结构
func abortWithError(ctx *app.RequestContext, status int, msg string) {
	ctx.AbortWithStatusJSON(status, utils.H{
		"error":   msg,
		"code":    status,
		"success": false,
	})
}
