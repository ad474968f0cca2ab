// Package metrics 把原始记录集合计算为各命名指标块。
//
// 每个公开方法接收记录集合和时间段，返回 (指标块, error)。解析层面的脏数据
// 在 normalize 包内归零，不会上浮；方法级错误（如非法时间段）由编排器捕获并
// 降级为该块的占位结构，绝不中断整体编排。
package metrics

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/langchou/robogazer/internal/aggregate"
	"github.com/langchou/robogazer/internal/models"
	"github.com/langchou/robogazer/internal/normalize"
)

// ROIConfig ROI 模型参数。默认值见 config 包，均可通过环境变量覆盖。
type ROIConfig struct {
	MonthlyLeasePrice float64 // 每台每月租金
	HumanCleanRate    float64 // 人工清洁速度（平方英尺/小时）
	HourlyWage        float64 // 人工时薪
}

// Calculator 指标计算器。除充电时长解析缓存外不持有任何状态，
// 缓存随时可清、不影响结果，同一输入重复计算结果一致。
type Calculator struct {
	roi      ROIConfig
	durCache *normalize.DurationCache
	logger   *zap.Logger
}

// NewCalculator 创建计算器
func NewCalculator(roi ROIConfig, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{
		roi:      roi,
		durCache: normalize.NewDurationCache(),
		logger:   logger,
	}
}

// ClearCaches 清空内部解析缓存
func (c *Calculator) ClearCaches() {
	c.durCache.Clear()
}

// Period 报表时间段
type Period struct {
	Start time.Time
	End   time.Time
}

// LengthDays 含两端的天数：起止日历日之差，结束时刻带非零时间部分时再加一天
// （边界上的不完整天算整天，恰好落在零点的不算）。这个不对称必须保持。
func (p Period) LengthDays() int {
	startDate := time.Date(p.Start.Year(), p.Start.Month(), p.Start.Day(), 0, 0, 0, 0, p.Start.Location())
	endDate := time.Date(p.End.Year(), p.End.Month(), p.End.Day(), 0, 0, 0, 0, p.End.Location())
	days := int(endDate.Sub(startDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	if !p.End.Equal(endDate) {
		days++
	}
	return days
}

// Valid 时间段是否有效
func (p Period) Valid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && !p.End.Before(p.Start)
}

// weekdayOrder 周一到周日的固定输出顺序
var weekdayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// FleetAvailability 机队可用性。
//
// 在线率：有状态信号时按非 offline 状态计数；完全没有状态信号时
// 乐观地认为所有在册机器人在线（StatusSourceAvailable=false 暴露该退化）。
// 单机日均运行小时是两级平均：先对每台机器人按活跃日求日均，再跨机器人平均，
// 回答的是"机器人在有活的日子平均跑多久"，而不是总时长除以机器人天数。
func (c *Calculator) FleetAvailability(robots []models.Robot, statuses []models.RobotStatusRecord, tasks []models.TaskRecord, p Period) (models.FleetMetrics, error) {
	if !p.Valid() {
		return models.DefaultFleetMetrics(), &ComputeError{Block: "fleet_performance", Err: errInvalidPeriod}
	}

	fm := models.DefaultFleetMetrics()
	fm.PeriodLengthDays = p.LengthDays()

	total := len(robots)
	if total == 0 {
		// 没有机器人登记表时退回到数据里出现过的序列号
		seen := map[string]struct{}{}
		for _, t := range tasks {
			seen[t.RobotSN] = struct{}{}
		}
		for _, s := range statuses {
			seen[s.RobotSN] = struct{}{}
		}
		total = len(seen)
	}
	fm.TotalRobots = total

	if len(statuses) > 0 {
		fm.StatusSourceAvailable = true
		online := 0
		for _, s := range statuses {
			if !statusOffline(s.Status) {
				online++
			}
		}
		fm.RobotsOnline = online
	} else {
		// 无状态信号：乐观默认全部在线
		fm.RobotsOnline = total
	}
	if total > 0 {
		fm.RobotsOnlineRate = round1(float64(fm.RobotsOnline) / float64(total) * 100)
	}

	var totalHours float64
	for _, t := range tasks {
		totalHours += normalize.SecondsToHours(t.Duration)
	}
	fm.TotalRunningHours = round2(totalHours)

	fm.DaysWithTasks = aggregate.UniqueDates(tasks, func(t models.TaskRecord) (time.Time, bool) {
		if t.StartTime == nil {
			return time.Time{}, false
		}
		return *t.StartTime, true
	})

	fm.AvgDailyRunningHours = round2(avgDailyHoursPerRobot(tasks))
	return fm, nil
}

// avgDailyHoursPerRobot 两级平均：机器人内部按日求均值，再跨机器人平均
func avgDailyHoursPerRobot(tasks []models.TaskRecord) float64 {
	byRobot := aggregate.GroupRows(tasks, func(t models.TaskRecord) string { return t.RobotSN })
	var perRobot []float64
	for _, robotTasks := range byRobot {
		byDay := make(map[string]float64)
		for _, t := range robotTasks {
			if t.StartTime == nil {
				continue
			}
			byDay[t.StartTime.Format("2006-01-02")] += normalize.SecondsToHours(t.Duration)
		}
		if len(byDay) == 0 {
			continue
		}
		var daySums []float64
		for _, h := range byDay {
			daySums = append(daySums, h)
		}
		perRobot = append(perRobot, aggregate.Mean(daySums))
	}
	return aggregate.Mean(perRobot)
}

// statusOffline 状态文本是否表示离线
func statusOffline(status string) bool {
	return containsFold(status, "offline")
}

// TaskPerformance 任务表现：完成率、覆盖效率、模式分布、按星期的完成率极值。
//
// 零任务的星期不参与最高/最低完成率评选，不会被当作 0% 垫底。
func (c *Calculator) TaskPerformance(tasks []models.TaskRecord, p Period) (models.TaskMetrics, error) {
	if !p.Valid() {
		return models.DefaultTaskMetrics(), &ComputeError{Block: "task_performance", Err: errInvalidPeriod}
	}

	tm := models.DefaultTaskMetrics()
	tm.TotalTasks = len(tasks)
	if len(tasks) == 0 {
		return tm, nil
	}

	var actualSum, planSum float64
	type weekdayStat struct{ total, completed int }
	byWeekday := map[string]*weekdayStat{}

	for _, t := range tasks {
		switch normalize.ClassifyStatus(t.Status) {
		case normalize.StatusCompleted:
			tm.CompletedTasks++
		case normalize.StatusCancelled:
			tm.CancelledTasks++
		case normalize.StatusInterrupted:
			tm.InterruptedTasks++
		}
		if t.Mode != "" {
			tm.ModeDistribution[t.Mode]++
		}
		if t.ActualArea != nil {
			actualSum += *t.ActualArea
		}
		if t.PlanArea != nil {
			planSum += *t.PlanArea
		}
		if t.StartTime != nil {
			wd := t.StartTime.Weekday().String()
			st := byWeekday[wd]
			if st == nil {
				st = &weekdayStat{}
				byWeekday[wd] = st
			}
			st.total++
			if normalize.ClassifyStatus(t.Status) == normalize.StatusCompleted {
				st.completed++
			}
		}
	}

	tm.CompletionRate = round1(float64(tm.CompletedTasks) / float64(tm.TotalTasks) * 100)
	tm.TotalActualAreaSqft = round1(normalize.SqmToSqft(actualSum))
	tm.TotalPlannedAreaSqft = round1(normalize.SqmToSqft(planSum))
	if planSum > 0 {
		tm.CoverageEfficiency = round1(actualSum / planSum * 100)
	}

	// 按固定星期顺序遍历，保证并列时结果稳定
	bestRate, worstRate := -1.0, math.MaxFloat64
	for _, wd := range weekdayOrder {
		st, ok := byWeekday[wd]
		if !ok || st.total == 0 {
			continue
		}
		rate := round1(float64(st.completed) / float64(st.total) * 100)
		tm.WeekdayCompletionRates[wd] = rate
		if rate > bestRate {
			bestRate = rate
			tm.BestWeekday = wd
			tm.BestWeekdayRate = rate
		}
		if rate < worstRate {
			worstRate = rate
			tm.WorstWeekday = wd
			tm.WorstWeekdayRate = rate
		}
	}
	return tm, nil
}

// round1 保留一位小数
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 保留两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
