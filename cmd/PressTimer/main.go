package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/presstimer/PressTimer-BE/internal/config"
	"github.com/presstimer/PressTimer-BE/internal/database"
	"github.com/presstimer/PressTimer-BE/internal/handlers"
	"github.com/presstimer/PressTimer-BE/internal/pkg/logger"
	"github.com/presstimer/PressTimer-BE/internal/pkg/middleware"
	"github.com/presstimer/PressTimer-BE/internal/store"
	"github.com/presstimer/PressTimer-BE/internal/users"
	"github.com/presstimer/PressTimer-BE/pkg/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Init(cfg.Env)
	defer func() { _ = log.Sync() }()

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据库连接并运行迁移（AutoMigrate 会自动创建表及索引）
	gormDB, err := database.InitGorm(cfg)
	if err != nil {
		log.Fatal("db init error", "error", err)
	}

	st := store.NewGormStore(gormDB)
	th := handlers.NewTimers(st)
	ah := handlers.NewAuth(users.NewService(users.NewRepository(gormDB)))

	r := gin.New()
	r.Use(gin.Recovery())         // 捕获 panic 并返回 500
	r.Use(util.Cors())            // CORS 跨域支持
	r.Use(middleware.Visitor())   // 为游客分配/识别 ID
	r.Use(middleware.RateLimit()) // 按游客限流

	// 健康检查端点（负载均衡器和监控探测用）
	r.GET("/api/v1/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "ts": time.Now().Unix()})
	})

	// 游客登录相关
	r.POST("/guest-login", ah.GuestLogin)
	r.GET("/api/v1/me", ah.Me)

	// 计时器：读取都带派生字段（elapsed/progress/canPress 现算）
	r.GET("/api/v1/timers", th.List)
	r.POST("/api/v1/timers", th.Create)
	r.PATCH("/api/v1/timers/:id", th.Update)
	r.POST("/api/v1/timers/:id/archive", th.Archive)
	r.DELETE("/api/v1/timers/archived", th.ClearArchived)

	// 按下与撤销/重做
	r.POST("/api/v1/timers/:id/press", th.Press)
	r.POST("/api/v1/timers/:id/undo", th.Undo)
	r.POST("/api/v1/timers/:id/redo", th.Redo)

	// 历史条目：改状态/改时间、单条删除、按时间段查询
	r.PATCH("/api/v1/history/:id", th.UpdateHistory)
	r.DELETE("/api/v1/history/:id", th.DeleteHistory)
	r.GET("/api/v1/history", th.HistoryRange)

	// 统计：今日/近7天/总计
	r.GET("/api/v1/stats/summary", th.Summary)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		log.Info("starting server", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", "error", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
