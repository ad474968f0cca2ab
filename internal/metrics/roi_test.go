package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langchou/robogazer/internal/models"
)

// TestROILeaseBilling 从首次任务日按月计租，不满一个月计整月
func TestROILeaseBilling(t *testing.T) {
	calc := newTestCalculator()
	first := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	asOf := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	history := []models.TaskHistoryRecord{
		{RobotSN: "R1", StartTime: &first},
		{RobotSN: "R1", StartTime: tptr(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))},
	}

	rm, err := calc.ROI(history, asOf)
	require.NoError(t, err)
	// 1/10 → 3/10 整两个月，3/10 → 3/20 不足月计整月 = 3 个月
	assert.Equal(t, 3, rm.TotalLeaseMonths)
	assert.Equal(t, 4500.0, rm.TotalInvestment)
	// 面积全空 → 节省为 0，明确给出 Not yet profitable
	assert.Equal(t, 0.0, rm.CumulativeSavings)
	assert.Equal(t, 0.0, rm.ROIPercent)
	assert.Equal(t, "Not yet profitable", rm.PaybackPeriod)
}

// TestROISavings 节省 = 面积换算人工工时 × 时薪
func TestROISavings(t *testing.T) {
	calc := newTestCalculator()
	first := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	asOf := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	// 1000 平米 = 10764 平方英尺；人工 8000 sqft/h × $25/h → $33.64
	history := []models.TaskHistoryRecord{
		{RobotSN: "R1", StartTime: &first, ActualArea: fptr(1000)},
	}

	rm, err := calc.ROI(history, asOf)
	require.NoError(t, err)
	assert.InDelta(t, 33.64, rm.CumulativeSavings, 0.01)
	assert.InDelta(t, 0.7, rm.ROIPercent, 0.05) // 33.64/4500
	assert.InDelta(t, 33.6375/3, rm.MonthlySavingsRate, 0.01)
	assert.NotEqual(t, "Not yet profitable", rm.PaybackPeriod)
}

// TestROIIgnoresFutureTasks asOf 之后的任务不参与：投资和节省都不计
func TestROIIgnoresFutureTasks(t *testing.T) {
	calc := newTestCalculator()
	asOf := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	history := []models.TaskHistoryRecord{
		{RobotSN: "R1", StartTime: tptr(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)), ActualArea: fptr(1000)},
	}

	rm, err := calc.ROI(history, asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, rm.TotalLeaseMonths)
	assert.Equal(t, 0.0, rm.TotalInvestment)
	assert.Equal(t, 0.0, rm.CumulativeSavings)
}

// TestMonthsBilled 计费月数边界
func TestMonthsBilled(t *testing.T) {
	first := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	// 同一天 → 至少 1 个月
	assert.Equal(t, 1, monthsBilled(first, first))
	// 恰好一个月 → 1
	assert.Equal(t, 1, monthsBilled(first, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)))
	// 一个月零一天 → 2
	assert.Equal(t, 2, monthsBilled(first, time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC)))
	// asOf 早于首次任务 → 0
	assert.Equal(t, 0, monthsBilled(first, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

// TestPaybackPeriodFormat 不足 24 个月按月、否则按年
func TestPaybackPeriodFormat(t *testing.T) {
	assert.Equal(t, "Not yet profitable", paybackPeriod(1000, 0))
	assert.Equal(t, "Not yet profitable", paybackPeriod(1000, -5))
	assert.Equal(t, "10.0 months", paybackPeriod(1000, 100))
	assert.Equal(t, "0.0 months", paybackPeriod(0, 100))
	assert.Equal(t, "2.5 years", paybackPeriod(3000, 100)) // 30 个月
}

// TestROITrendBaseline 累计节省从窗口前的历史值起步，跨周期连续
func TestROITrendBaseline(t *testing.T) {
	calc := newTestCalculator()
	p := Period{
		Start: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 12, 23, 59, 59, 0, time.UTC),
	}
	history := []models.TaskHistoryRecord{
		// 窗口前的任务只进基线
		{RobotSN: "R1", StartTime: tptr(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)), ActualArea: fptr(1000)},
		// 窗口内第三天的任务
		{RobotSN: "R1", StartTime: tptr(time.Date(2026, 1, 12, 10, 0, 0, 0, time.UTC)), ActualArea: fptr(1000)},
	}

	points, err := calc.ROITrend(history, p)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "2026-01-10", points[0].Date)
	assert.Equal(t, 0.0, points[0].DailySavings)
	assert.InDelta(t, 33.64, points[0].CumulativeSavings, 0.02) // 基线
	assert.InDelta(t, 33.64, points[2].DailySavings, 0.02)
	assert.InDelta(t, 67.28, points[2].CumulativeSavings, 0.02)
	assert.Greater(t, points[2].ROIPercent, 0.0)
}
