// XuanBan 竞标班表分析引擎服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/xuanban/xuanban/internal/config"
	"github.com/xuanban/xuanban/internal/database"
	"github.com/xuanban/xuanban/internal/handler"
	"github.com/xuanban/xuanban/internal/metrics"
	"github.com/xuanban/xuanban/internal/middleware"
	"github.com/xuanban/xuanban/internal/repository"
	"github.com/xuanban/xuanban/pkg/holiday"
	"github.com/xuanban/xuanban/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	// 打印版本信息
	fmt.Printf("XuanBan 竞标班表分析引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	// 数据库为可选依赖：连接失败时退化为纯计算模式
	var lineRepo repository.BidLineRepositoryInterface
	var workerRepo repository.WorkerRepositoryInterface
	if db, dbErr := database.New(&cfg.Database); dbErr != nil {
		logger.Warn().Err(dbErr).Msg("数据库不可用，指标快照与员工偏好持久化已禁用")
	} else {
		defer db.Close()
		lineRepo = repository.NewBidLineRepository(db)
		workerRepo = repository.NewWorkerRepository(db)
	}

	// 节假日提供者（辖区日历，带年度缓存）
	holidayProvider := holiday.NewCalendarProvider()
	if cfg.Metrics.Enabled {
		holidayProvider.SetCacheObserver(metrics.RecordHolidayCache)
	}

	// 创建处理器
	scoreHandler := handler.NewScoreHandler(holidayProvider, cfg.Holiday.Jurisdiction, cfg.Engine.BatchWorkers, workerRepo)
	metricsHandler := handler.NewMetricsHandler(holidayProvider, cfg.Holiday.Jurisdiction, lineRepo)
	conflictHandler := handler.NewConflictHandler(workerRepo)
	presetsHandler := handler.NewPresetsHandler()

	// 创建 HTTP 服务器
	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"xuanban"}`))
	})

	// 版本信息端点
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "XuanBan 竞标班表分析引擎 API v1",
			"endpoints": {
				"score": {
					"single": "POST /api/v1/score/single",
					"filter": "POST /api/v1/score/filter"
				},
				"metrics": {
					"compute": "POST /api/v1/metrics/compute",
					"populate": "POST /api/v1/metrics/populate",
					"snapshot": "GET /api/v1/metrics/snapshot?line_id="
				},
				"conflict": {
					"dayoff": "POST /api/v1/conflict/dayoff"
				},
				"workers": {
					"dayoff": "POST /api/v1/workers/dayoff"
				},
				"mirror": {
					"find": "POST /api/v1/mirror/find"
				},
				"presets": {
					"library": "GET /api/v1/presets"
				}
			}
		}`))
	})

	// 偏好评分 API
	mux.HandleFunc("/api/v1/score/single", scoreHandler.ScoreSingle)
	mux.HandleFunc("/api/v1/score/filter", scoreHandler.ScoreFilter)

	// 班表指标 API
	mux.HandleFunc("/api/v1/metrics/compute", metricsHandler.Compute)
	mux.HandleFunc("/api/v1/metrics/populate", metricsHandler.Populate)
	mux.HandleFunc("/api/v1/metrics/snapshot", metricsHandler.Snapshot)

	// 休息日冲突 API
	mux.HandleFunc("/api/v1/conflict/dayoff", conflictHandler.DetectDayOff)

	// 员工休息日请求 API
	mux.HandleFunc("/api/v1/workers/dayoff", conflictHandler.SaveDayOff)

	// 镜像班表匹配 API
	mux.HandleFunc("/api/v1/mirror/find", conflictHandler.FindMirrors)

	// 偏好预设库 API
	mux.HandleFunc("/api/v1/presets", presetsHandler.Library)

	// ========================================
	// 监控端点
	// ========================================

	// Prometheus 指标端点
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// ========================================
	// 中间件
	// ========================================

	// 中间件执行顺序：requestID -> recovery -> rateLimit -> cors -> logging -> handler
	root := middleware.Chain(mux,
		middleware.RequestIDMiddleware,
		middleware.RecoveryMiddleware,
		rateLimitMiddleware,
		corsMiddleware,
		middleware.LoggingMiddleware,
	)

	port := fmt.Sprintf("%d", cfg.App.Port)
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Str("port", port).
			Str("version", Version).
			Str("url", fmt.Sprintf("http://localhost:%s", port)).
			Str("api_docs", fmt.Sprintf("http://localhost:%s/api/v1/", port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

// RateLimiter 简单的令牌桶限流器
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // 每秒添加的令牌数
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter 创建限流器
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	return &RateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2, // 允许突发流量
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

var globalRateLimiter = NewRateLimiter(100) // 默认 100 QPS

// rateLimitMiddleware 限流中间件
func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !globalRateLimiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "RATE_LIMITED",
				"message": "请求过于频繁，请稍后重试",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware CORS中间件
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
