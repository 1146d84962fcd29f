package main

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"staybook/pkg/common/config"
	"staybook/pkg/common/metrics"
	"staybook/pkg/core/store"
	"staybook/pkg/web/router"
)

func main() {
	// 初始化配置
	cfg, err := config.Load()
	if err != nil {
		hlog.Fatalf("invalid configuration: %v", err)
	}
	hlog.SetLevel(cfg.HlogLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 初始化存储后端
	st, err := store.Open(ctx, cfg)
	if err != nil {
		hlog.Fatalf("failed to open %s store: %v", cfg.Database.Driver, err)
	}

	if cfg.Metrics.Enabled {
		metrics.Register()
		if _, err := metrics.Serve(ctx, cfg.Metrics.Address); err != nil {
			hlog.Fatalf("failed to start metrics server: %v", err)
		}
	}

	// 创建Hertz实例
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithMaxRequestBodySize(int(cfg.Middleware.Security.MaxBodySize)),
		server.WithHandleMethodNotAllowed(true),
	)

	// 注册路由
	if err := router.RegisterAPIs(h, cfg, st); err != nil {
		hlog.Fatalf("failed to register routes: %v", err)
	}

	h.OnShutdown = append(h.OnShutdown, func(context.Context) {
		cancel()
		closeCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := st.Close(closeCtx); err != nil {
			hlog.Errorf("close store: %v", err)
		}
	})

	hlog.Infof("staybook listening on %s (store=%s, env=%s)", cfg.Server.Address, st.Driver(), cfg.Env)

	// 启动服务
	h.Spin()
}
