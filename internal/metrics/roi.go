package metrics

import (
	"fmt"
	"time"

	"github.com/langchou/robogazer/internal/aggregate"
	"github.com/langchou/robogazer/internal/models"
	"github.com/langchou/robogazer/internal/normalize"
)

// ROI 累计投资回报。
//
// 投资侧：每台机器人从其首次任务日起按月计租，不满一个月按整月计
// （跨月即计，和自然月的日号无关）。起点是首次任务日，不是报表周期起点。
// 节省侧：全量任务历史截至 asOf 的累计面积换算成人工工时乘以时薪 ——
// ROI 是部署以来的累计指标，和报表窗口无关。
func (c *Calculator) ROI(history []models.TaskHistoryRecord, asOf time.Time) (models.ROIMetrics, error) {
	if asOf.IsZero() {
		return models.DefaultROIMetrics(), &ComputeError{Block: "cost_analysis", Err: errInvalidPeriod}
	}

	rm := models.DefaultROIMetrics()
	rm.MonthlyLeasePrice = c.roi.MonthlyLeasePrice

	firstTask := map[string]time.Time{}
	var savings float64
	for _, h := range history {
		if h.StartTime == nil || h.StartTime.After(asOf) {
			continue
		}
		if first, ok := firstTask[h.RobotSN]; !ok || h.StartTime.Before(first) {
			firstTask[h.RobotSN] = *h.StartTime
		}
		savings += c.savingsFor(h)
	}

	var totalMonths, maxMonths int
	for _, first := range firstTask {
		m := monthsBilled(first, asOf)
		totalMonths += m
		if m > maxMonths {
			maxMonths = m
		}
	}

	rm.TotalLeaseMonths = totalMonths
	rm.TotalInvestment = round2(float64(totalMonths) * c.roi.MonthlyLeasePrice)
	rm.CumulativeSavings = round2(savings)
	if rm.TotalInvestment > 0 {
		rm.ROIPercent = round1(savings / rm.TotalInvestment * 100)
	}
	if maxMonths > 0 {
		rm.MonthlySavingsRate = round2(savings / float64(maxMonths))
	}
	rm.PaybackPeriod = paybackPeriod(rm.TotalInvestment, rm.MonthlySavingsRate)
	return rm, nil
}

// ROITrend 报表窗口内的 ROI 日趋势。
// 累计节省从窗口开始前的历史值起步，跨周期的趋势线连续，不会每份报表归零。
func (c *Calculator) ROITrend(history []models.TaskHistoryRecord, p Period) ([]models.ROITrendPoint, error) {
	if !p.Valid() {
		return []models.ROITrendPoint{}, &ComputeError{Block: "roi_trend", Err: errInvalidPeriod}
	}

	windowStart := time.Date(p.Start.Year(), p.Start.Month(), p.Start.Day(), 0, 0, 0, 0, p.Start.Location())

	firstTask := map[string]time.Time{}
	var baseline float64
	dailySavings := map[string]float64{}
	for _, h := range history {
		if h.StartTime == nil {
			continue
		}
		if first, ok := firstTask[h.RobotSN]; !ok || h.StartTime.Before(first) {
			firstTask[h.RobotSN] = *h.StartTime
		}
		if h.StartTime.Before(windowStart) {
			baseline += c.savingsFor(h)
		} else if !h.StartTime.After(p.End) {
			dailySavings[h.StartTime.Format("2006-01-02")] += c.savingsFor(h)
		}
	}

	points := []models.ROITrendPoint{}
	cumulative := baseline
	for _, day := range aggregate.DateRangeDays(p.Start, p.End) {
		key := day.Format("2006-01-02")
		daily := dailySavings[key]
		cumulative += daily

		// 当日结束时点的累计投资
		dayEnd := day.AddDate(0, 0, 1).Add(-time.Second)
		var months int
		for _, first := range firstTask {
			months += monthsBilled(first, dayEnd)
		}
		investment := float64(months) * c.roi.MonthlyLeasePrice

		pt := models.ROITrendPoint{
			Date:              key,
			DailySavings:      round2(daily),
			CumulativeSavings: round2(cumulative),
		}
		if investment > 0 {
			pt.ROIPercent = round1(cumulative / investment * 100)
		}
		points = append(points, pt)
	}
	return points, nil
}

// savingsFor 单条任务历史对应的人工成本节省
func (c *Calculator) savingsFor(h models.TaskHistoryRecord) float64 {
	if h.ActualArea == nil || *h.ActualArea <= 0 || c.roi.HumanCleanRate <= 0 {
		return 0
	}
	humanHours := normalize.SqmToSqft(*h.ActualArea) / c.roi.HumanCleanRate
	return humanHours * c.roi.HourlyWage
}

// monthsBilled 计费月数：不足一个月按整月、至少 1 个月。
// asOf 早于 first 时为 0。
func monthsBilled(first, asOf time.Time) int {
	if asOf.Before(first) {
		return 0
	}
	months := 0
	for !first.AddDate(0, months+1, 0).After(asOf) {
		months++
	}
	if first.AddDate(0, months, 0).Before(asOf) {
		months++ // 不足月部分计整月
	}
	if months == 0 {
		months = 1
	}
	return months
}

// paybackPeriod 回本周期文案：不足 24 个月按月、否则按年；
// 月均节省不为正时明确给出 "Not yet profitable"，不出现负数或无穷时长。
func paybackPeriod(investment, monthlyRate float64) string {
	if monthlyRate <= 0 {
		return "Not yet profitable"
	}
	if investment <= 0 {
		return "0.0 months"
	}
	months := investment / monthlyRate
	if months < 24 {
		return fmt.Sprintf("%.1f months", months)
	}
	return fmt.Sprintf("%.1f years", months/12)
}
