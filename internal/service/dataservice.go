package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/langchou/robogazer/internal/models"
	"github.com/langchou/robogazer/internal/repository"
)

// TaskSource 任务取数接口
type TaskSource interface {
	ListByRobots(ctx context.Context, robotSNs []string, start, end time.Time) ([]models.TaskRecord, error)
	ListHistory(ctx context.Context, robotSNs []string, until time.Time) ([]models.TaskHistoryRecord, error)
}

// ChargingSource 充电取数接口
type ChargingSource interface {
	ListByRobots(ctx context.Context, robotSNs []string, start, end time.Time) ([]models.ChargingRecord, error)
}

// EventSource 事件取数接口
type EventSource interface {
	ListByRobots(ctx context.Context, robotSNs []string, start, end time.Time) ([]models.EventRecord, error)
}

// RobotSource 机器人/状态/楼宇取数接口
type RobotSource interface {
	List(ctx context.Context) ([]models.Robot, error)
	ListStatus(ctx context.Context, robotSNs []string) ([]models.RobotStatusRecord, error)
	ListLocations(ctx context.Context, robotSNs []string) ([]models.RobotLocationRecord, error)
}

// Dataset 一次编排调用的全部原始记录。由数据服务持有到编排结束，
// 计算器只读。
type Dataset struct {
	Robots    []models.Robot
	Tasks     []models.TaskRecord
	Charging  []models.ChargingRecord
	Events    []models.EventRecord
	Statuses  []models.RobotStatusRecord
	Locations []models.RobotLocationRecord
	// Partial 表示至少一个分组取数失败、结果不完整
	Partial bool
}

// DataService 数据取数服务。
//
// 把机器人列表切成固定大小的分组分批查询；单个分组失败只记日志并继续，
// 其余分组的数据照常返回。机器人→楼宇映射在进程生命周期内缓存一份，
// 只有请求里出现缓存未覆盖的机器人时才重建。
type DataService struct {
	logger    *zap.Logger
	tasks     TaskSource
	charging  ChargingSource
	events    EventSource
	robots    RobotSource
	batchSize int

	mu            sync.Mutex
	facilityCache map[string]string // robot_sn → building_name
}

// NewDataService 创建数据服务
func NewDataService(logger *zap.Logger, tasks TaskSource, charging ChargingSource, events EventSource, robots RobotSource, batchSize int) *DataService {
	if batchSize <= 0 {
		batchSize = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataService{
		logger:        logger,
		tasks:         tasks,
		charging:      charging,
		events:        events,
		robots:        robots,
		batchSize:     batchSize,
		facilityCache: map[string]string{},
	}
}

// FetchPeriod 取一个时间段内全部实体类型的记录。
// 所有分组、所有实体全部失败才返回错误；部分失败置 Dataset.Partial。
func (s *DataService) FetchPeriod(ctx context.Context, robotSNs []string, start, end time.Time) (*Dataset, error) {
	ds := &Dataset{}

	robots, err := s.robots.List(ctx)
	if err != nil {
		s.logger.Warn("Failed to list robots, continuing without registry", zap.Error(err))
		ds.Partial = true
	} else {
		ds.Robots = filterRobots(robots, robotSNs)
	}

	groups := chunkRobots(robotSNs, s.batchSize)
	var anyOK, anyFailed bool

	for _, group := range groups {
		tasks, err := s.tasks.ListByRobots(ctx, group, start, end)
		if err != nil {
			s.logFetchError("tasks", group, err)
			anyFailed = true
		} else {
			ds.Tasks = append(ds.Tasks, tasks...)
			anyOK = true
		}

		charging, err := s.charging.ListByRobots(ctx, group, start, end)
		if err != nil {
			s.logFetchError("charging", group, err)
			anyFailed = true
		} else {
			ds.Charging = append(ds.Charging, charging...)
			anyOK = true
		}

		events, err := s.events.ListByRobots(ctx, group, start, end)
		if err != nil {
			s.logFetchError("events", group, err)
			anyFailed = true
		} else {
			ds.Events = append(ds.Events, events...)
			anyOK = true
		}

		statuses, err := s.robots.ListStatus(ctx, group)
		if err != nil {
			s.logFetchError("status", group, err)
			anyFailed = true
		} else {
			ds.Statuses = append(ds.Statuses, statuses...)
			anyOK = true
		}

		locations, err := s.robots.ListLocations(ctx, group)
		if err != nil {
			s.logFetchError("locations", group, err)
			anyFailed = true
		} else {
			ds.Locations = append(ds.Locations, locations...)
			anyOK = true
		}
	}

	if len(groups) > 0 && !anyOK {
		return nil, fmt.Errorf("fetch period %s ~ %s: all robot groups failed", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	ds.Partial = ds.Partial || anyFailed
	return ds, nil
}

// FetchHistory 取 ROI 用的全量任务历史（最小列集），同样按分组容错。
func (s *DataService) FetchHistory(ctx context.Context, robotSNs []string, until time.Time) ([]models.TaskHistoryRecord, error) {
	var history []models.TaskHistoryRecord
	var anyOK bool
	groups := chunkRobots(robotSNs, s.batchSize)
	for _, group := range groups {
		part, err := s.tasks.ListHistory(ctx, group, until)
		if err != nil {
			s.logFetchError("task_history", group, err)
			continue
		}
		history = append(history, part...)
		anyOK = true
	}
	if len(groups) > 0 && !anyOK {
		return nil, fmt.Errorf("fetch task history until %s: all robot groups failed", until.Format(time.DateOnly))
	}
	return history, nil
}

// RobotBuilding 机器人→楼宇映射。缓存覆盖本次请求的所有机器人时直接复用，
// 否则重新拉取位置连接并整体替换缓存。
func (s *DataService) RobotBuilding(ctx context.Context, robotSNs []string) (map[string]string, error) {
	s.mu.Lock()
	covered := true
	for _, sn := range robotSNs {
		if _, ok := s.facilityCache[sn]; !ok {
			covered = false
			break
		}
	}
	if covered {
		out := make(map[string]string, len(robotSNs))
		for _, sn := range robotSNs {
			out[sn] = s.facilityCache[sn]
		}
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	fresh := map[string]string{}
	var anyOK bool
	for _, group := range chunkRobots(robotSNs, s.batchSize) {
		locations, err := s.robots.ListLocations(ctx, group)
		if err != nil {
			s.logFetchError("locations", group, err)
			continue
		}
		anyOK = true
		for _, l := range locations {
			fresh[l.RobotSN] = l.BuildingName
		}
	}
	if !anyOK && len(robotSNs) > 0 {
		return nil, errors.New("robot building lookup: all robot groups failed")
	}

	s.mu.Lock()
	s.facilityCache = fresh
	s.mu.Unlock()
	return fresh, nil
}

// InvalidateFacilityCache 显式失效机器人→楼宇缓存
func (s *DataService) InvalidateFacilityCache() {
	s.mu.Lock()
	s.facilityCache = map[string]string{}
	s.mu.Unlock()
}

func (s *DataService) logFetchError(entity string, group []string, err error) {
	var fe *repository.FetchError
	if errors.As(err, &fe) {
		s.logger.Warn("Partition fetch failed, continuing with partial results",
			zap.String("entity", fe.Entity),
			zap.Int("robots", len(fe.Robots)),
			zap.Error(fe.Err))
		return
	}
	s.logger.Warn("Fetch failed, continuing with partial results",
		zap.String("entity", entity),
		zap.Int("robots", len(group)),
		zap.Error(err))
}

// chunkRobots 把机器人列表切成固定大小的分组
func chunkRobots(robotSNs []string, size int) [][]string {
	var groups [][]string
	for i := 0; i < len(robotSNs); i += size {
		end := i + size
		if end > len(robotSNs) {
			end = len(robotSNs)
		}
		groups = append(groups, robotSNs[i:end])
	}
	return groups
}

// filterRobots 只保留请求的机器人；请求为空时返回全部
func filterRobots(robots []models.Robot, robotSNs []string) []models.Robot {
	if len(robotSNs) == 0 {
		return robots
	}
	want := make(map[string]struct{}, len(robotSNs))
	for _, sn := range robotSNs {
		want[sn] = struct{}{}
	}
	var out []models.Robot
	for _, r := range robots {
		if _, ok := want[r.SN]; ok {
			out = append(out, r)
		}
	}
	return out
}
