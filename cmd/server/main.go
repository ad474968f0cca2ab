package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/langchou/robogazer/internal/api/handlers"
	"github.com/langchou/robogazer/internal/config"
	"github.com/langchou/robogazer/internal/metrics"
	"github.com/langchou/robogazer/internal/repository"
	"github.com/langchou/robogazer/internal/service"
	"github.com/langchou/robogazer/pkg/ws"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger := initLogger(cfg.Debug)
	defer logger.Sync()

	logger.Info("Starting Robogazer", zap.String("port", cfg.ServerPort))

	// 创建 context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 连接数据库
	db, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}
	defer db.Close()

	// 执行数据库迁移
	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database migrated successfully")

	// 创建 Repository
	robotRepo := repository.NewRobotRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	chargingRepo := repository.NewChargingRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// 创建 WebSocket Hub
	wsHub := ws.NewHub(logger)
	go wsHub.Run()

	// 创建数据服务与指标计算器
	dataService := service.NewDataService(logger, taskRepo, chargingRepo, eventRepo, robotRepo, cfg.FetchBatchSize)
	calculator := metrics.NewCalculator(metrics.ROIConfig{
		MonthlyLeasePrice: cfg.MonthlyLeasePrice,
		HumanCleanRate:    cfg.HumanCleanRate,
		HourlyWage:        cfg.HourlyWage,
	}, logger)
	orchestrator := service.NewOrchestrator(logger, dataService, calculator)

	// 创建机队监控服务
	fleetWatcher := service.NewFleetWatcher(logger, robotRepo, wsHub, cfg.StatusPollInterval)
	fleetWatcher.Start(ctx)

	// WebSocket 初始数据：机器人列表 + 实时状态
	wsHub.SetInitDataProvider(func() *ws.InitData {
		initCtx, initCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer initCancel()
		robots, err := robotRepo.List(initCtx)
		if err != nil {
			logger.Warn("Failed to load robots for ws init data", zap.Error(err))
		}
		return &ws.InitData{
			Robots: robots,
			States: fleetWatcher.GetAllStates(),
		}
	})

	// 创建 HTTP 处理器
	handler := handlers.NewHandler(
		logger,
		robotRepo,
		orchestrator,
		fleetWatcher,
		wsHub,
	)

	// 设置 Gin 模式
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// 注册路由
	handler.RegisterRoutes(router)

	// 启动 HTTP 服务器
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", server.Addr))

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// 停止服务
	fleetWatcher.Stop()

	// 优雅关闭
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// initLogger 初始化日志
func initLogger(debug bool) *zap.Logger {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}

	logger, _ := config.Build()
	return logger
}

// corsMiddleware CORS 中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
