package metrics

import (
	"fmt"

	"github.com/langchou/robogazer/internal/models"
)

// scalarMetric 参与环比的标量指标定义
type scalarMetric struct {
	key      string
	unit     string // "%" 紧跟数字，其余单位前带空格
	decimals int
	value    func(*models.MetricsSnapshot) float64
}

// 环比的标量指标表。键集合固定：无论上期数据是否存在，输出里每个键都在，
// 缺数据时值为 "N/A"（零会被误读为"无变化"）。
var scalarMetrics = []scalarMetric{
	{"completion_rate", "%", 1, func(s *models.MetricsSnapshot) float64 { return s.TaskPerformance.CompletionRate }},
	{"coverage_efficiency", "%", 1, func(s *models.MetricsSnapshot) float64 { return s.TaskPerformance.CoverageEfficiency }},
	{"total_tasks", "", 0, func(s *models.MetricsSnapshot) float64 { return float64(s.TaskPerformance.TotalTasks) }},
	{"total_running_hours", " hrs", 1, func(s *models.MetricsSnapshot) float64 { return s.FleetPerformance.TotalRunningHours }},
	{"avg_daily_running_hours_per_robot", " hrs", 1, func(s *models.MetricsSnapshot) float64 { return s.FleetPerformance.AvgDailyRunningHours }},
	{"robots_online_rate", "%", 1, func(s *models.MetricsSnapshot) float64 { return s.FleetPerformance.RobotsOnlineRate }},
	{"days_with_tasks", " days", 0, func(s *models.MetricsSnapshot) float64 { return float64(s.FleetPerformance.DaysWithTasks) }},
	{"total_actual_area_sqft", " sqft", 1, func(s *models.MetricsSnapshot) float64 { return s.TaskPerformance.TotalActualAreaSqft }},
	{"total_energy_kwh", " kWh", 1, func(s *models.MetricsSnapshot) float64 { return s.ResourceUtilization.TotalEnergyKwh }},
	{"total_water_gallons", " gal", 1, func(s *models.MetricsSnapshot) float64 { return s.ResourceUtilization.TotalWaterGallons }},
	{"avg_charging_duration_min", " min", 1, func(s *models.MetricsSnapshot) float64 { return s.ChargingPerformance.AvgDurationMin }},
	{"avg_power_gain_percent", "%", 1, func(s *models.MetricsSnapshot) float64 { return s.ChargingPerformance.AvgPowerGainPercent }},
	{"total_events", "", 0, func(s *models.MetricsSnapshot) float64 { return float64(s.EventAnalysis.TotalEvents) }},
	{"roi_percent", "%", 1, func(s *models.MetricsSnapshot) float64 { return s.CostAnalysis.ROIPercent }},
	{"cumulative_savings", "", 2, func(s *models.MetricsSnapshot) float64 { return s.CostAnalysis.CumulativeSavings }},
}

// 楼宇级环比字段
var facilityComparisonKeys = []string{"task_count", "completion_rate", "area_cleaned_sqft", "running_hours"}

// ComparePeriods 当前快照对上期快照的环比。
// prev 为 nil 时所有键输出 "N/A" 而不是缺键；当前期存在而上期不存在的楼宇/
// 地图得到全 "N/A" 块，绝不因为缺键崩溃。
func (c *Calculator) ComparePeriods(cur, prev *models.MetricsSnapshot) models.PeriodComparison {
	pc := models.DefaultPeriodComparison()
	if cur == nil {
		return pc
	}

	for _, m := range scalarMetrics {
		curVal := m.value(cur)
		if prev == nil {
			pc.Metrics[m.key] = "N/A"
			continue
		}
		prevVal := m.value(prev)
		pc.Metrics[m.key] = FormatDelta(&curVal, &prevVal, m.unit, m.decimals)
	}

	for name, curFm := range cur.FacilityPerformance.Facilities {
		block := map[string]string{}
		prevFm, ok := models.FacilityMetrics{}, false
		if prev != nil {
			prevFm, ok = prev.FacilityPerformance.Facilities[name]
		}
		if !ok {
			for _, k := range facilityComparisonKeys {
				block[k] = "N/A"
			}
		} else {
			curCount, prevCount := float64(curFm.TaskCount), float64(prevFm.TaskCount)
			block["task_count"] = FormatDelta(&curCount, &prevCount, "", 0)
			block["completion_rate"] = FormatDelta(&curFm.CompletionRate, &prevFm.CompletionRate, "%", 1)
			block["area_cleaned_sqft"] = FormatDelta(&curFm.AreaCleanedSqft, &prevFm.AreaCleanedSqft, " sqft", 1)
			block["running_hours"] = FormatDelta(&curFm.RunningHours, &prevFm.RunningHours, " hrs", 1)
		}
		pc.Facilities[name] = block
	}

	for building, curMaps := range cur.MapPerformanceByBuilding {
		for mapName, curMm := range curMaps {
			key := building + " / " + mapName
			block := map[string]string{}
			var prevMm models.MapMetrics
			ok := false
			if prev != nil {
				if prevMaps, has := prev.MapPerformanceByBuilding[building]; has {
					prevMm, ok = prevMaps[mapName]
				}
			}
			if !ok {
				block["task_count"] = "N/A"
				block["area_cleaned_sqft"] = "N/A"
				block["coverage_efficiency"] = "N/A"
			} else {
				curCount, prevCount := float64(curMm.TaskCount), float64(prevMm.TaskCount)
				block["task_count"] = FormatDelta(&curCount, &prevCount, "", 0)
				block["area_cleaned_sqft"] = FormatDelta(&curMm.AreaCleanedSqft, &prevMm.AreaCleanedSqft, " sqft", 1)
				block["coverage_efficiency"] = FormatDelta(&curMm.CoverageEfficiency, &prevMm.CoverageEfficiency, "%", 1)
			}
			pc.Maps[key] = block
		}
	}
	return pc
}

// FormatDelta 格式化带符号的差值。任一侧缺失（nil）→ 字面量 "N/A"。
func FormatDelta(cur, prev *float64, unit string, decimals int) string {
	if cur == nil || prev == nil {
		return "N/A"
	}
	delta := *cur - *prev
	return fmt.Sprintf("%+.*f%s", decimals, delta, unit)
}
