package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/langchou/robogazer/internal/state"
	"github.com/langchou/robogazer/pkg/ws"
)

// FleetWatcher 机队实时监控服务。
//
// 周期性轮询机器人状态快照，把上报的状态文本映射为状态机事件驱动转换，
// 状态变化通过 WebSocket Hub 广播给前端。状态表是上游同步写入的，
// 这里只读。
type FleetWatcher struct {
	logger       *zap.Logger
	robots       RobotSource
	stateManager *state.Manager
	wsHub        *ws.Hub
	interval     time.Duration

	mu      sync.Mutex
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
}

// NewFleetWatcher 创建机队监控服务
func NewFleetWatcher(logger *zap.Logger, robots RobotSource, wsHub *ws.Hub, interval time.Duration) *FleetWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	w := &FleetWatcher{
		logger:   logger,
		robots:   robots,
		wsHub:    wsHub,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
	w.stateManager = state.NewManager(w.onStateChange)
	return w
}

// Start 启动监控
func (w *FleetWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.logger.Info("Fleet watcher already running, skipping start")
		return
	}
	w.stopCh = make(chan struct{})
	w.running = true
	w.mu.Unlock()

	w.logger.Info("Starting fleet watcher", zap.Duration("interval", w.interval))
	w.wg.Add(1)
	go w.pollLoop(ctx)
}

// Stop 停止监控
func (w *FleetWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()
	w.logger.Info("Fleet watcher stopped")
}

// GetState 获取单台机器人实时状态
func (w *FleetWatcher) GetState(robotSN string) (*state.RobotState, bool) {
	machine, ok := w.stateManager.Get(robotSN)
	if !ok {
		return nil, false
	}
	return machine.GetState(), true
}

// GetAllStates 获取所有机器人实时状态
func (w *FleetWatcher) GetAllStates() map[string]*state.RobotState {
	return w.stateManager.GetAllStates()
}

// pollLoop 轮询循环
func (w *FleetWatcher) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	// 启动时立即执行一次
	w.pollOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pollOnce(ctx)
		}
	}
}

// pollOnce 拉取一轮状态快照并驱动状态机
func (w *FleetWatcher) pollOnce(ctx context.Context) {
	robots, err := w.robots.List(ctx)
	if err != nil {
		w.logger.Error("Failed to list robots", zap.Error(err))
		return
	}

	sns := make([]string, 0, len(robots))
	for _, r := range robots {
		sns = append(sns, r.SN)
	}
	if len(sns) == 0 {
		return
	}

	locations, err := w.robots.ListLocations(ctx, sns)
	if err != nil {
		w.logger.Error("Failed to list robot locations", zap.Error(err))
		return
	}

	for _, l := range locations {
		machine := w.stateManager.GetOrCreate(l.RobotSN, state.StateOffline)
		machine.UpdateState(func(s *state.RobotState) {
			s.BuildingName = l.BuildingName
			if l.BatteryLevel != nil {
				s.BatteryLevel = *l.BatteryLevel
			}
		})
		w.applyReportedStatus(machine, l.Status)
	}
}

// applyReportedStatus 把上报状态文本翻译成状态机事件。
// 上报的文本不在约定集合内时不触发任何事件，维持当前状态。
func (w *FleetWatcher) applyReportedStatus(machine *state.Machine, reported string) {
	target := classifyReported(reported)
	current := machine.CurrentState()
	if target == current {
		return
	}

	for _, event := range transitionPath(current, target) {
		if !machine.CanTransition(event) {
			w.logger.Debug("Skipping invalid transition",
				zap.String("robot_sn", machine.GetState().RobotSN),
				zap.String("from", machine.CurrentState()),
				zap.String("event", event))
			return
		}
		if err := machine.Trigger(event); err != nil {
			w.logger.Warn("State transition failed", zap.Error(err))
			return
		}
	}
}

// classifyReported 上报文本 → 目标状态
func classifyReported(reported string) string {
	s := strings.ToLower(reported)
	switch {
	case strings.Contains(s, "offline"):
		return state.StateOffline
	case strings.Contains(s, "charg"):
		return state.StateCharging
	case strings.Contains(s, "work"), strings.Contains(s, "task"), strings.Contains(s, "clean"):
		return state.StateWorking
	case strings.Contains(s, "error"), strings.Contains(s, "fault"):
		return state.StateError
	default:
		return state.StateIdle
	}
}

// transitionPath 当前状态到目标状态的事件序列。
// 状态机不允许任意跳转，部分目标需要先回到 idle 中转。
func transitionPath(from, to string) []string {
	if to == state.StateOffline {
		return []string{state.EventGoOffline}
	}

	var path []string
	// 非 idle 出发先回 idle
	switch from {
	case state.StateOffline:
		path = append(path, state.EventComeOnline)
	case state.StateWorking:
		path = append(path, state.EventFinishTask)
	case state.StateCharging:
		path = append(path, state.EventStopCharging)
	case state.StateError:
		path = append(path, state.EventClearFault)
	}

	switch to {
	case state.StateWorking:
		path = append(path, state.EventStartTask)
	case state.StateCharging:
		path = append(path, state.EventStartCharging)
	case state.StateError:
		path = append(path, state.EventRaiseFault)
	}
	return path
}

// onStateChange 状态变化回调：广播给 WebSocket 客户端
func (w *FleetWatcher) onStateChange(robotSN string, from, to string) {
	w.logger.Info("Robot state changed",
		zap.String("robot_sn", robotSN),
		zap.String("from", from),
		zap.String("to", to))

	if w.wsHub == nil {
		return
	}
	if machine, ok := w.stateManager.Get(robotSN); ok {
		w.wsHub.BroadcastStateUpdate(machine.GetState())
	}
}
