package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/langchou/robogazer/internal/repository"
	"github.com/langchou/robogazer/internal/service"
	"github.com/langchou/robogazer/pkg/ws"
)

// Handler HTTP 处理器
type Handler struct {
	logger       *zap.Logger
	robotRepo    *repository.RobotRepository
	orchestrator *service.Orchestrator
	fleetWatcher *service.FleetWatcher
	wsHub        *ws.Hub
	upgrader     websocket.Upgrader
}

// NewHandler 创建处理器
func NewHandler(
	logger *zap.Logger,
	robotRepo *repository.RobotRepository,
	orchestrator *service.Orchestrator,
	fleetWatcher *service.FleetWatcher,
	wsHub *ws.Hub,
) *Handler {
	return &Handler{
		logger:       logger,
		robotRepo:    robotRepo,
		orchestrator: orchestrator,
		fleetWatcher: fleetWatcher,
		wsHub:        wsHub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 开发环境允许所有来源
			},
		},
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// API 路由
	api := r.Group("/api")
	{
		// 机器人
		api.GET("/robots", h.ListRobots)
		api.GET("/robots/:sn", h.GetRobot)
		api.GET("/robots/:sn/state", h.GetRobotState)

		// 楼宇
		api.GET("/buildings", h.ListBuildings)

		// 报表
		api.GET("/reports/comprehensive", h.GetComprehensiveReport)
	}

	// WebSocket
	r.GET("/ws", h.HandleWebSocket)

	// 健康检查
	r.GET("/health", h.HealthCheck)
}

// ListRobots 获取机器人列表
func (h *Handler) ListRobots(c *gin.Context) {
	robots, err := h.robotRepo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list robots", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list robots"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": robots})
}

// GetRobot 获取机器人详情
func (h *Handler) GetRobot(c *gin.Context) {
	sn := c.Param("sn")
	robot, err := h.robotRepo.GetBySN(c.Request.Context(), sn)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Robot not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": robot})
}

// GetRobotState 获取机器人实时状态
func (h *Handler) GetRobotState(c *gin.Context) {
	sn := c.Param("sn")
	st, ok := h.fleetWatcher.GetState(sn)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Robot state not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": st})
}

// ListBuildings 获取楼宇列表
func (h *Handler) ListBuildings(c *gin.Context) {
	buildings, err := h.robotRepo.ListBuildings(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list buildings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list buildings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": buildings})
}

// GetComprehensiveReport 综合指标报表
// GET /api/reports/comprehensive?start=YYYY-MM-DD HH:MM:SS&end=YYYY-MM-DD HH:MM:SS&robots=SN1,SN2
// robots 为空时统计所有在册机器人
func (h *Handler) GetComprehensiveReport(c *gin.Context) {
	period, err := service.ParsePeriod(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var robotSNs []string
	if raw := c.Query("robots"); raw != "" {
		for _, sn := range strings.Split(raw, ",") {
			if sn = strings.TrimSpace(sn); sn != "" {
				robotSNs = append(robotSNs, sn)
			}
		}
	} else {
		robots, err := h.robotRepo.List(c.Request.Context())
		if err != nil {
			h.logger.Error("Failed to list robots for report", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list robots"})
			return
		}
		for _, r := range robots {
			robotSNs = append(robotSNs, r.SN)
		}
	}

	snapshot, err := h.orchestrator.ComprehensiveReport(c.Request.Context(), robotSNs, period)
	if err != nil {
		h.logger.Error("Failed to build comprehensive report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": snapshot})
}

// HandleWebSocket WebSocket 处理
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	client.Register()

	// 启动读写协程
	go client.ReadPump()
	go client.WritePump()
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"ws_clients": h.wsHub.ClientCount(),
	})
}
