package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
)

// 机器人状态常量
const (
	StateOffline  = "offline"
	StateIdle     = "idle"
	StateWorking  = "working"
	StateCharging = "charging"
	StateError    = "error"
)

// 事件常量
const (
	EventComeOnline    = "come_online"
	EventGoOffline     = "go_offline"
	EventStartTask     = "start_task"
	EventFinishTask    = "finish_task"
	EventStartCharging = "start_charging"
	EventStopCharging  = "stop_charging"
	EventRaiseFault    = "raise_fault"
	EventClearFault    = "clear_fault"
)

// RobotState 机器人实时状态
type RobotState struct {
	RobotSN      string    `json:"robot_sn"`
	CurrentState string    `json:"state"`
	Since        time.Time `json:"since"`
	BuildingName string    `json:"building_name"`
	BatteryLevel int       `json:"battery_level"`
	WaterLevel   int       `json:"water_level"`
	SewageLevel  int       `json:"sewage_level"`
	CurrentMap   string    `json:"current_map"`
	LastFault    string    `json:"last_fault"`
}

// Machine 机器人状态机
type Machine struct {
	mu            sync.RWMutex
	robotSN       string
	fsm           *fsm.FSM
	state         *RobotState
	onStateChange func(robotSN string, from, to string)
}

// NewMachine 创建状态机
func NewMachine(robotSN string, initialState string, onStateChange func(robotSN string, from, to string)) *Machine {
	if initialState == "" {
		initialState = StateOffline
	}

	m := &Machine{
		robotSN:       robotSN,
		onStateChange: onStateChange,
		state: &RobotState{
			RobotSN:      robotSN,
			CurrentState: initialState,
			Since:        time.Now(),
		},
	}

	m.fsm = fsm.NewFSM(
		initialState,
		fsm.Events{
			// 上下线
			{Name: EventComeOnline, Src: []string{StateOffline}, Dst: StateIdle},
			{Name: EventGoOffline, Src: []string{StateIdle, StateWorking, StateCharging, StateError}, Dst: StateOffline},

			// 任务
			{Name: EventStartTask, Src: []string{StateIdle, StateCharging}, Dst: StateWorking},
			{Name: EventFinishTask, Src: []string{StateWorking}, Dst: StateIdle},

			// 充电
			{Name: EventStartCharging, Src: []string{StateIdle, StateWorking}, Dst: StateCharging},
			{Name: EventStopCharging, Src: []string{StateCharging}, Dst: StateIdle},

			// 故障
			{Name: EventRaiseFault, Src: []string{StateIdle, StateWorking, StateCharging}, Dst: StateError},
			{Name: EventClearFault, Src: []string{StateError}, Dst: StateIdle},
		},
		fsm.Callbacks{
			"after_event": func(ctx context.Context, e *fsm.Event) {
				if m.onStateChange != nil && e.Src != e.Dst {
					m.onStateChange(m.robotSN, e.Src, e.Dst)
				}
			},
		},
	)

	return m
}

// CurrentState 获取当前状态
func (m *Machine) CurrentState() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fsm.Current()
}

// GetState 获取完整状态
func (m *Machine) GetState() *RobotState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// 返回副本
	stateCopy := *m.state
	stateCopy.CurrentState = m.fsm.Current()
	return &stateCopy
}

// UpdateState 更新状态数据
func (m *Machine) UpdateState(update func(s *RobotState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	update(m.state)
}

// Trigger 触发事件
func (m *Machine) Trigger(event string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fsm.Event(context.Background(), event); err != nil {
		return fmt.Errorf("trigger event %s: %w", event, err)
	}

	m.state.CurrentState = m.fsm.Current()
	m.state.Since = time.Now()
	return nil
}

// CanTransition 检查是否可以转换
func (m *Machine) CanTransition(event string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fsm.Can(event)
}

// Manager 状态机管理器
type Manager struct {
	mu       sync.RWMutex
	machines map[string]*Machine
	onChange func(robotSN string, from, to string)
}

// NewManager 创建管理器
func NewManager(onChange func(robotSN string, from, to string)) *Manager {
	return &Manager{
		machines: make(map[string]*Machine),
		onChange: onChange,
	}
}

// GetOrCreate 获取或创建状态机
func (m *Manager) GetOrCreate(robotSN string, initialState string) *Machine {
	m.mu.Lock()
	defer m.mu.Unlock()

	if machine, ok := m.machines[robotSN]; ok {
		return machine
	}

	machine := NewMachine(robotSN, initialState, m.onChange)
	m.machines[robotSN] = machine
	return machine
}

// Get 获取状态机
func (m *Manager) Get(robotSN string) (*Machine, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	machine, ok := m.machines[robotSN]
	return machine, ok
}

// GetAllStates 获取所有机器人状态
func (m *Manager) GetAllStates() map[string]*RobotState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	states := make(map[string]*RobotState)
	for sn, machine := range m.machines {
		states[sn] = machine.GetState()
	}
	return states
}
