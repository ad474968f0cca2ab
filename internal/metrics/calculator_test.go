package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langchou/robogazer/internal/models"
)

func newTestCalculator() *Calculator {
	return NewCalculator(ROIConfig{
		MonthlyLeasePrice: 1500,
		HumanCleanRate:    8000,
		HourlyWage:        25,
	}, nil)
}

func fptr(v float64) *float64     { return &v }
func tptr(v time.Time) *time.Time { return &v }

func day(d int, hour int) time.Time {
	return time.Date(2026, 8, d, hour, 0, 0, 0, time.UTC)
}

// TestPeriodLengthDays 结束时刻带非零时间部分时多算一天，恰好零点不算
func TestPeriodLengthDays(t *testing.T) {
	// 整七天：1 日零点到 8 日零点 → 7 天
	p := Period{Start: day(1, 0), End: day(8, 0)}
	assert.Equal(t, 7, p.LengthDays())

	// 结束落在 7 日 23:59:59 → 7 天（不完整的第 7 天算整天）
	p = Period{Start: day(1, 0), End: time.Date(2026, 8, 7, 23, 59, 59, 0, time.UTC)}
	assert.Equal(t, 7, p.LengthDays())

	// 同一天内的区间 → 1 天
	p = Period{Start: day(1, 0), End: day(1, 12)}
	assert.Equal(t, 1, p.LengthDays())

	// 同一时刻的零长区间 → 0 天
	p = Period{Start: day(1, 0), End: day(1, 0)}
	assert.Equal(t, 0, p.LengthDays())
}

// TestFleetAvailabilityOptimisticDefault 无状态信号时乐观默认全部在线，
// 并通过 status_source_available 暴露该退化
func TestFleetAvailabilityOptimisticDefault(t *testing.T) {
	calc := newTestCalculator()
	p := Period{Start: day(1, 0), End: day(8, 0)}
	robots := []models.Robot{{SN: "R1"}, {SN: "R2"}}

	fm, err := calc.FleetAvailability(robots, nil, nil, p)
	require.NoError(t, err)
	assert.False(t, fm.StatusSourceAvailable)
	assert.Equal(t, 2, fm.TotalRobots)
	assert.Equal(t, 2, fm.RobotsOnline)
	assert.Equal(t, 100.0, fm.RobotsOnlineRate)
	assert.Equal(t, 7, fm.PeriodLengthDays)
}

// TestFleetAvailabilityWithStatuses 有状态信号时按非 offline 计数
func TestFleetAvailabilityWithStatuses(t *testing.T) {
	calc := newTestCalculator()
	p := Period{Start: day(1, 0), End: day(8, 0)}
	robots := []models.Robot{{SN: "R1"}, {SN: "R2"}}
	statuses := []models.RobotStatusRecord{
		{RobotSN: "R1", Status: "idle"},
		{RobotSN: "R2", Status: "Offline"},
	}

	fm, err := calc.FleetAvailability(robots, statuses, nil, p)
	require.NoError(t, err)
	assert.True(t, fm.StatusSourceAvailable)
	assert.Equal(t, 1, fm.RobotsOnline)
	assert.Equal(t, 50.0, fm.RobotsOnlineRate)
}

// TestFleetAvailabilityTwoLevelAverage 单机日均是两级平均：
// 先对每台机器人按活跃日求日均，再跨机器人平均
func TestFleetAvailabilityTwoLevelAverage(t *testing.T) {
	calc := newTestCalculator()
	p := Period{Start: day(1, 0), End: day(8, 0)}
	tasks := []models.TaskRecord{
		// R1：第 1 天 2h，第 2 天 1h → 日均 1.5h
		{RobotSN: "R1", StartTime: tptr(day(1, 9)), Duration: "7200"},
		{RobotSN: "R1", StartTime: tptr(day(2, 9)), Duration: "3600"},
		// R2：第 1 天 3h → 日均 3h
		{RobotSN: "R2", StartTime: tptr(day(1, 9)), Duration: "10800"},
	}

	fm, err := calc.FleetAvailability(nil, nil, tasks, p)
	require.NoError(t, err)
	assert.Equal(t, 6.0, fm.TotalRunningHours)
	assert.Equal(t, 2, fm.DaysWithTasks)
	// (1.5 + 3) / 2 = 2.25，不是 6h / (2 robots × 2 days) = 1.5
	assert.Equal(t, 2.25, fm.AvgDailyRunningHours)
	// 无登记表时机器人总数退回到数据里出现过的序列号
	assert.Equal(t, 2, fm.TotalRobots)
}

// TestTaskPerformance 完成率、覆盖效率、模式分布
func TestTaskPerformance(t *testing.T) {
	calc := newTestCalculator()
	p := Period{Start: day(1, 0), End: day(8, 0)}
	tasks := []models.TaskRecord{
		{RobotSN: "R1", Status: "ended", Mode: "sweep", ActualArea: fptr(50), PlanArea: fptr(60), StartTime: tptr(day(3, 9))},
		{RobotSN: "R1", Status: "completed", Mode: "sweep", ActualArea: fptr(30), PlanArea: fptr(40), StartTime: tptr(day(3, 14))},
		{RobotSN: "R2", Status: "cancelled", Mode: "mop", StartTime: tptr(day(4, 9))},
		{RobotSN: "R2", Status: "interrupted", StartTime: tptr(day(4, 10))},
	}

	tm, err := calc.TaskPerformance(tasks, p)
	require.NoError(t, err)
	assert.Equal(t, 4, tm.TotalTasks)
	assert.Equal(t, 2, tm.CompletedTasks)
	assert.Equal(t, 1, tm.CancelledTasks)
	assert.Equal(t, 1, tm.InterruptedTasks)
	assert.Equal(t, 50.0, tm.CompletionRate)
	assert.InDelta(t, 80*10.764, tm.TotalActualAreaSqft, 0.1)
	assert.Equal(t, 80.0, tm.CoverageEfficiency) // 80/100
	assert.Equal(t, map[string]int{"sweep": 2, "mop": 1}, tm.ModeDistribution)
}

// TestTaskPerformanceWeekdayExtremes 零任务的星期不参与最高/最低评选
func TestTaskPerformanceWeekdayExtremes(t *testing.T) {
	calc := newTestCalculator()
	p := Period{Start: day(1, 0), End: day(15, 0)}
	// 2026-08-03 是周一，2026-08-04 是周二
	mon := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
	tue := time.Date(2026, 8, 4, 9, 0, 0, 0, time.UTC)
	tasks := []models.TaskRecord{
		{RobotSN: "R1", Status: "completed", StartTime: &mon},
		{RobotSN: "R1", Status: "completed", StartTime: &mon},
		{RobotSN: "R1", Status: "cancelled", StartTime: &tue},
	}

	tm, err := calc.TaskPerformance(tasks, p)
	require.NoError(t, err)
	assert.Equal(t, "Monday", tm.BestWeekday)
	assert.Equal(t, 100.0, tm.BestWeekdayRate)
	assert.Equal(t, "Tuesday", tm.WorstWeekday)
	assert.Equal(t, 0.0, tm.WorstWeekdayRate)
	// 没有任务的星期既不是最差、也不出现在分布里
	assert.NotContains(t, tm.WeekdayCompletionRates, "Wednesday")
}

// TestInvalidPeriodDowngrade 非法时间段返回占位块 + ComputeError
func TestInvalidPeriodDowngrade(t *testing.T) {
	calc := newTestCalculator()
	bad := Period{Start: day(8, 0), End: day(1, 0)}

	tm, err := calc.TaskPerformance(nil, bad)
	require.Error(t, err)
	var ce *ComputeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "task_performance", ce.Block)
	// 占位块结构完整：集合字段是空集合而非 nil
	assert.NotNil(t, tm.ModeDistribution)
	assert.NotNil(t, tm.WeekdayCompletionRates)
}

// TestChargingPerformanceIndependentFields 时长和增益独立取舍：
// 一个字段坏了不影响另一个字段参与统计
func TestChargingPerformanceIndependentFields(t *testing.T) {
	calc := newTestCalculator()
	p := Period{Start: day(1, 0), End: day(8, 0)}
	records := []models.ChargingRecord{
		{RobotSN: "R1", Duration: "1h 30min", PowerGain: "+15%"},
		{RobotSN: "R1", Duration: "", PowerGain: "+5%"},
		{RobotSN: "R2", Duration: "30min", PowerGain: "garbled"},
	}

	cm, err := calc.ChargingPerformance(records, p)
	require.NoError(t, err)
	assert.Equal(t, 3, cm.TotalSessions)
	assert.Equal(t, 2, cm.SessionsWithDuration)
	assert.Equal(t, 2, cm.SessionsWithPowerGain)
	assert.Equal(t, 60.0, cm.AvgDurationMin)
	assert.Equal(t, 60.0, cm.MedianDurationMin)
	assert.Equal(t, 10.0, cm.AvgPowerGainPercent)
}

// TestResourceUtilizationZeroDenominator 资源为 0 时效率比为 0，不是 Inf
func TestResourceUtilizationZeroDenominator(t *testing.T) {
	calc := newTestCalculator()
	p := Period{Start: day(1, 0), End: day(8, 0)}
	tasks := []models.TaskRecord{
		{RobotSN: "R1", ActualArea: fptr(100), WaterConsumption: fptr(128), Duration: ""},
	}

	rm, err := calc.ResourceUtilization(tasks, p)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rm.TotalEnergyKwh)
	assert.Equal(t, 0.0, rm.EnergyEfficiencySqftKwh) // 不是 +Inf
	assert.Equal(t, 0.0, rm.TimeEfficiencySqftHour)
	assert.Equal(t, 1.0, rm.TotalWaterGallons)
	assert.InDelta(t, 1076.4, rm.WaterEfficiencySqftGallon, 0.01)
}
