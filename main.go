package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"metaspace/server"
)

// MetaSpace 入口：启动 HTTP + WebSocket 服务，并初始化空间注册表
func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "config file path, e.g. config.yaml (empty = defaults)")
	flag.Parse()

	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		panic(err)
	}
	// 使用第三方 zap 日志库写入文件（带滚动）
	if err := server.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	// 注册表为进程级对象，显式传给各处理器；空间随首次 join 惰性创建
	reg := server.NewRegistry(cfg)
	go reg.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.NewWSHandler(reg, cfg))
	// 监控接口
	mux.HandleFunc("/metrics", server.HandleMetrics(reg))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		server.Log.Infof("MetaSpace listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	reg.Stop()
}
