package router

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"staybook/pkg/common/config"
	"staybook/pkg/core/auth"
	bookingservice "staybook/pkg/core/booking/service"
	placeservice "staybook/pkg/core/place/service"
	"staybook/pkg/core/store"
	"staybook/pkg/core/upload"
	userservice "staybook/pkg/core/user/service"
	"staybook/pkg/web/handler"
	"staybook/pkg/web/middleware"
)

// RegisterAPIs 注册所有API路由
func RegisterAPIs(h *server.Hertz, cfg *config.Config, st *store.Store) error {
	tokens := auth.NewTokenManager(cfg.Middleware.JWT)
	hasher := auth.NewPasswordHasher(cfg.Middleware.Security.BcryptCost)

	fetcher, err := upload.NewHTTPFetcher(cfg.RequestTimeout())
	if err != nil {
		return fmt.Errorf("init upload client: %w", err)
	}
	uploads, err := upload.NewStore(cfg.Upload.Dir, cfg.Upload.MaxFiles, cfg.Middleware.Security.MaxBodySize, fetcher)
	if err != nil {
		return err
	}

	requireAuth, err := middleware.CookieAuthMiddleware(cfg.Middleware.JWT, tokens)
	if err != nil {
		return fmt.Errorf("init auth middleware: %w", err)
	}

	// 初始化Handler实例
	healthHandler := handler.NewHealthCheckHandler(st)
	userHandler := handler.NewUserHandler(userservice.NewUserService(st.Users, hasher, tokens), cfg.Middleware.JWT)
	placeHandler := handler.NewPlaceHandler(placeservice.NewPlaceService(st.Places))
	bookingHandler := handler.NewBookingHandler(bookingservice.NewBookingService(st.Bookings))
	uploadHandler := handler.NewUploadHandler(uploads)

	// 注册全局中间件（按执行顺序）
	h.Use(
		middleware.RecoveryMiddleware(cfg),
		middleware.LoggerMiddleware(),
		middleware.SecurityCheckMiddleware(cfg.Middleware.Security),
		middleware.TimeoutMiddleware(cfg.Middleware.Timeout.RequestTimeout),
		middleware.CORSMiddleware(cfg.Middleware.CORS),
	)

	// 基础接口
	h.GET("/health", healthHandler.AdvancedHealthCheck)
	h.GET("/test", userHandler.Test)

	// 用户相关接口
	apiGroup := h.Group("/api")
	{
		apiGroup.POST("/register", userHandler.Register)
		apiGroup.POST("/login", userHandler.Login)
		apiGroup.GET("/profile", userHandler.Profile)
		apiGroup.POST("/logout", userHandler.Logout)

		// 需要身份认证的接口
		apiGroup.POST("/createPlaces", requireAuth, placeHandler.Create)
		apiGroup.PUT("/updatePlaces", requireAuth, placeHandler.Update)
		apiGroup.GET("/Allplaces", placeHandler.ListAll)
		apiGroup.POST("/createBooking", bookingHandler.Create)
	}

	h.GET("/places/:id", placeHandler.GetByID)

	accountGroup := h.Group("/account", requireAuth)
	{
		accountGroup.GET("/user-places", placeHandler.ListByOwner)
		accountGroup.GET("/user-bookings", bookingHandler.ListByUser)
	}

	// 上传接口共享同一个限流桶
	limiter := middleware.RateLimitMiddleware(cfg.Middleware.RateLimit.Rate, cfg.Middleware.RateLimit.Interval)
	h.POST("/uploads-by-link", limiter, uploadHandler.ByLink)
	h.POST("/uploads", limiter, uploadHandler.Files)

	root, err := filepath.Abs(uploads.Dir())
	if err != nil {
		return fmt.Errorf("resolve upload dir: %w", err)
	}
	h.StaticFS(cfg.Upload.URLPrefix, &app.FS{
		Root:          root,
		PathRewrite:   app.NewPathSlashesStripper(1),
		CacheDuration: time.Minute,
	})
	return nil
}
