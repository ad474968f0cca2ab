package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/langchou/robogazer/internal/metrics"
	"github.com/langchou/robogazer/internal/models"
)

// 时间段字符串格式（配置输入与快照输出共用）
const PeriodTimeLayout = "2006-01-02 15:04:05"

// Orchestrator 综合指标编排器。
//
// 顺序：取当前期 → 取上期 → 分别计算两份快照 → 取一次全量任务历史（最小列）
// → 按两个期末时点分别算 ROI → 把 ROI 原地并入各自快照的 cost_analysis →
// 算环比 → 把环比和元信息挂到当前快照返回。
// 上期取数/计算失败时仍返回有效的当前期结果，comparison_available 置 false。
type Orchestrator struct {
	logger *zap.Logger
	data   *DataService
	calc   *metrics.Calculator
}

// NewOrchestrator 创建编排器
func NewOrchestrator(logger *zap.Logger, data *DataService, calc *metrics.Calculator) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{logger: logger, data: data, calc: calc}
}

// ComprehensiveReport 生成一份综合指标报表
func (o *Orchestrator) ComprehensiveReport(ctx context.Context, robotSNs []string, current metrics.Period) (*models.MetricsSnapshot, error) {
	if !current.Valid() {
		return nil, fmt.Errorf("comprehensive report: invalid period %s ~ %s",
			current.Start.Format(PeriodTimeLayout), current.End.Format(PeriodTimeLayout))
	}

	// 上期：紧贴当前期之前的等长窗口
	span := current.End.Sub(current.Start)
	previous := metrics.Period{Start: current.Start.Add(-span), End: current.Start}

	curData, err := o.data.FetchPeriod(ctx, robotSNs, current.Start, current.End)
	if err != nil {
		return nil, fmt.Errorf("fetch current period: %w", err)
	}

	robotBuilding, err := o.data.RobotBuilding(ctx, robotSNs)
	if err != nil {
		o.logger.Warn("Robot building lookup failed, facility metrics will be unassigned", zap.Error(err))
		robotBuilding = map[string]string{}
	}

	snapshot := o.BuildSnapshot(curData, robotBuilding, current)

	var prevSnapshot *models.MetricsSnapshot
	comparisonReason := ""
	prevData, err := o.data.FetchPeriod(ctx, robotSNs, previous.Start, previous.End)
	if err != nil {
		o.logger.Warn("Previous period fetch failed, returning current-only report", zap.Error(err))
		comparisonReason = "previous period data unavailable"
	} else {
		prevSnapshot = o.BuildSnapshot(prevData, robotBuilding, previous)
	}

	// ROI：全量历史只取一次，两个期末时点分别评估
	history, err := o.data.FetchHistory(ctx, robotSNs, current.End)
	if err != nil {
		o.logger.Warn("Task history fetch failed, cost analysis degraded to defaults", zap.Error(err))
		snapshot.CostAnalysis = models.DefaultROIMetrics()
	} else {
		snapshot.CostAnalysis = o.roiBlock(history, current)
		if prevSnapshot != nil {
			prevSnapshot.CostAnalysis = o.roiBlock(history, previous)
		}
	}

	snapshot.PeriodComparisons = o.calc.ComparePeriods(snapshot, prevSnapshot)
	snapshot.ComparisonMetadata = models.ComparisonMetadata{
		Available:     prevSnapshot != nil,
		PreviousStart: previous.Start.Format(PeriodTimeLayout),
		PreviousEnd:   previous.End.Format(PeriodTimeLayout),
		Reason:        comparisonReason,
	}
	return snapshot, nil
}

// roiBlock ROI 计算 + 日趋势，失败降级为占位
func (o *Orchestrator) roiBlock(history []models.TaskHistoryRecord, p metrics.Period) models.ROIMetrics {
	roi, err := o.calc.ROI(history, p.End)
	if err != nil {
		o.logger.Error("ROI computation failed, using defaults", zap.Error(err))
		return models.DefaultROIMetrics()
	}
	trend, err := o.calc.ROITrend(history, p)
	if err != nil {
		o.logger.Error("ROI trend computation failed, using empty trend", zap.Error(err))
		trend = []models.ROITrendPoint{}
	}
	roi.DailyTrend = trend
	return roi
}

// BuildSnapshot 对单个时间段计算全部指标块。
// 任何单块失败都降级为该块的占位结构并记日志，编排继续 ——
// 源数据质量因机器人/场所而异，单块失败不允许拖垮整份报表。
func (o *Orchestrator) BuildSnapshot(ds *Dataset, robotBuilding map[string]string, p metrics.Period) *models.MetricsSnapshot {
	snap := models.NewMetricsSnapshot()
	snap.PeriodStart = p.Start.Format(PeriodTimeLayout)
	snap.PeriodEnd = p.End.Format(PeriodTimeLayout)

	if fm, err := o.calc.FleetAvailability(ds.Robots, ds.Statuses, ds.Tasks, p); err != nil {
		o.logBlockFailure("fleet_performance", err)
	} else {
		snap.FleetPerformance = fm
	}

	if tm, err := o.calc.TaskPerformance(ds.Tasks, p); err != nil {
		o.logBlockFailure("task_performance", err)
	} else {
		snap.TaskPerformance = tm
	}

	if cm, err := o.calc.ChargingPerformance(ds.Charging, p); err != nil {
		o.logBlockFailure("charging_performance", err)
	} else {
		snap.ChargingPerformance = cm
	}

	if rm, err := o.calc.ResourceUtilization(ds.Tasks, p); err != nil {
		o.logBlockFailure("resource_utilization", err)
	} else {
		snap.ResourceUtilization = rm
	}

	if fp, err := o.calc.FacilityBreakdown(ds.Tasks, robotBuilding, p); err != nil {
		o.logBlockFailure("facility_performance", err)
	} else {
		snap.FacilityPerformance = fp
		eff, tasksView, chargeView, resView, breakView := o.calc.FacilityViews(fp, ds.Charging, robotBuilding)
		snap.FacilityEfficiencyMetrics = eff
		snap.FacilityTaskMetrics = tasksView
		snap.FacilityChargingMetrics = chargeView
		snap.FacilityResourceMetrics = resView
		snap.FacilityBreakdownMetrics = breakView
	}

	taskVolume := map[string]int{}
	for name, fm := range snap.FacilityPerformance.Facilities {
		taskVolume[name] = fm.TaskCount
	}
	if em, err := o.calc.EventAnalysis(ds.Events, robotBuilding, taskVolume, p); err != nil {
		o.logBlockFailure("event_analysis", err)
	} else {
		snap.EventAnalysis = em
	}

	if robots, err := o.calc.IndividualRobots(ds.Tasks, robotBuilding, p); err != nil {
		o.logBlockFailure("individual_robots", err)
	} else {
		snap.IndividualRobots = robots
	}

	if maps, err := o.calc.MapPerformance(ds.Tasks, robotBuilding, p); err != nil {
		o.logBlockFailure("map_performance_by_building", err)
	} else {
		snap.MapPerformanceByBuilding = maps
	}

	if td, err := o.calc.Trend(ds.Tasks, p); err != nil {
		o.logBlockFailure("trend_data", err)
	} else {
		snap.TrendData = td
	}

	return snap
}

func (o *Orchestrator) logBlockFailure(block string, err error) {
	o.logger.Error("Metric block computation failed, using placeholder",
		zap.String("block", block),
		zap.Error(err))
}

// ParsePeriod 解析 "YYYY-MM-DD HH:MM:SS" 格式的起止时间
func ParsePeriod(start, end string) (metrics.Period, error) {
	s, err := time.Parse(PeriodTimeLayout, start)
	if err != nil {
		// 日期简写按当日零点处理
		s, err = time.Parse(time.DateOnly, start)
		if err != nil {
			return metrics.Period{}, fmt.Errorf("parse period start %q: %w", start, err)
		}
	}
	e, err := time.Parse(PeriodTimeLayout, end)
	if err != nil {
		e, err = time.Parse(time.DateOnly, end)
		if err != nil {
			return metrics.Period{}, fmt.Errorf("parse period end %q: %w", end, err)
		}
	}
	p := metrics.Period{Start: s, End: e}
	if !p.Valid() {
		return metrics.Period{}, fmt.Errorf("invalid period: end %q before start %q", end, start)
	}
	return p, nil
}
