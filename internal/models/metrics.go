package models

// 指标块结构。每个块都有 Default 构造器用于空输入/计算失败时的占位输出：
// 报表层依赖键的存在性和 0/{}/[] 零值约定，任何情况下都不能缺键、不能出现 null。

// FleetMetrics 机队可用性指标
type FleetMetrics struct {
	TotalRobots           int     `json:"total_robots"`
	RobotsOnline          int     `json:"robots_online"`
	RobotsOnlineRate      float64 `json:"robots_online_rate"` // 百分比
	StatusSourceAvailable bool    `json:"status_source_available"`
	TotalRunningHours     float64 `json:"total_running_hours"`
	AvgDailyRunningHours  float64 `json:"avg_daily_running_hours_per_robot"`
	DaysWithTasks         int     `json:"days_with_tasks"`
	PeriodLengthDays      int     `json:"period_length_days"`
}

// DefaultFleetMetrics 空输入占位
func DefaultFleetMetrics() FleetMetrics { return FleetMetrics{} }

// TaskMetrics 任务表现指标
type TaskMetrics struct {
	TotalTasks             int                `json:"total_tasks"`
	CompletedTasks         int                `json:"completed_tasks"`
	CancelledTasks         int                `json:"cancelled_tasks"`
	InterruptedTasks       int                `json:"interrupted_tasks"`
	CompletionRate         float64            `json:"completion_rate"` // 百分比
	TotalActualAreaSqft    float64            `json:"total_actual_area_sqft"`
	TotalPlannedAreaSqft   float64            `json:"total_planned_area_sqft"`
	CoverageEfficiency     float64            `json:"coverage_efficiency"` // 百分比
	ModeDistribution       map[string]int     `json:"mode_distribution"`
	WeekdayCompletionRates map[string]float64 `json:"weekday_completion_rates"`
	BestWeekday            string             `json:"best_weekday"`
	BestWeekdayRate        float64            `json:"best_weekday_rate"`
	WorstWeekday           string             `json:"worst_weekday"`
	WorstWeekdayRate       float64            `json:"worst_weekday_rate"`
}

// DefaultTaskMetrics 空输入占位
func DefaultTaskMetrics() TaskMetrics {
	return TaskMetrics{
		ModeDistribution:       map[string]int{},
		WeekdayCompletionRates: map[string]float64{},
	}
}

// ChargingMetrics 充电表现指标
//
// 时长分布右偏明显，均值之外同时给出中位数。
type ChargingMetrics struct {
	TotalSessions          int     `json:"total_sessions"`
	SessionsWithDuration   int     `json:"sessions_with_duration"`
	SessionsWithPowerGain  int     `json:"sessions_with_power_gain"`
	AvgDurationMin         float64 `json:"avg_duration_min"`
	MedianDurationMin      float64 `json:"median_duration_min"`
	AvgPowerGainPercent    float64 `json:"avg_power_gain_percent"`
	MedianPowerGainPercent float64 `json:"median_power_gain_percent"`
}

// DefaultChargingMetrics 空输入占位
func DefaultChargingMetrics() ChargingMetrics { return ChargingMetrics{} }

// ResourceMetrics 资源利用指标
type ResourceMetrics struct {
	TotalEnergyKwh            float64 `json:"total_energy_kwh"`
	TotalWaterGallons         float64 `json:"total_water_gallons"`
	AreaCleanedSqft           float64 `json:"area_cleaned_sqft"`
	EnergyEfficiencySqftKwh   float64 `json:"energy_efficiency_sqft_per_kwh"`
	WaterEfficiencySqftGallon float64 `json:"water_efficiency_sqft_per_gallon"`
	TimeEfficiencySqftHour    float64 `json:"time_efficiency_sqft_per_hour"`
}

// DefaultResourceMetrics 空输入占位
func DefaultResourceMetrics() ResourceMetrics { return ResourceMetrics{} }

// EventMetrics 事件分析指标
type EventMetrics struct {
	TotalEvents    int            `json:"total_events"`
	CriticalEvents int            `json:"critical_events"`
	ErrorEvents    int            `json:"error_events"`
	WarningEvents  int            `json:"warning_events"`
	InfoEvents     int            `json:"info_events"`
	LevelCounts    map[string]int `json:"level_counts"`
	TypeCounts     map[string]int `json:"type_counts"`
	// 事件→楼宇分布。无法精确关联时按任务量占比近似分摊，
	// 此时 building_distribution_approximate 为 true，下游必须按近似值展示。
	BuildingDistribution            map[string]map[string]int `json:"building_distribution"`
	BuildingDistributionApproximate bool                      `json:"building_distribution_approximate"`
}

// DefaultEventMetrics 空输入占位
func DefaultEventMetrics() EventMetrics {
	return EventMetrics{
		LevelCounts:          map[string]int{},
		TypeCounts:           map[string]int{},
		BuildingDistribution: map[string]map[string]int{},
	}
}

// FacilityMetrics 单个楼宇的聚合指标（单趟批量分组产出）
type FacilityMetrics struct {
	BuildingName              string  `json:"building_name"`
	RobotCount                int     `json:"robot_count"`
	TaskCount                 int     `json:"task_count"`
	CompletionRate            float64 `json:"completion_rate"`
	AreaCleanedSqft           float64 `json:"area_cleaned_sqft"`
	PlannedAreaSqft           float64 `json:"planned_area_sqft"`
	CoverageEfficiency        float64 `json:"coverage_efficiency"`
	RunningHours              float64 `json:"running_hours"`
	EnergyKwh                 float64 `json:"energy_kwh"`
	WaterGallons              float64 `json:"water_gallons"`
	PowerEfficiencySqftKwh    float64 `json:"power_efficiency_sqft_per_kwh"`
	WaterEfficiencySqftGallon float64 `json:"water_efficiency_sqft_per_gallon"`
	TimeEfficiencySqftHour    float64 `json:"time_efficiency_sqft_per_hour"`
	PrimaryMode               string  `json:"primary_mode"`
	AvgTaskDurationMin        float64 `json:"avg_task_duration_min"`
	HighestCoverageWeekday    string  `json:"highest_coverage_weekday"`
	LowestCoverageWeekday     string  `json:"lowest_coverage_weekday"`
}

// FacilityPerformance 楼宇维度指标集合
type FacilityPerformance struct {
	Facilities map[string]FacilityMetrics `json:"facilities"`
}

// DefaultFacilityPerformance 空输入占位
func DefaultFacilityPerformance() FacilityPerformance {
	return FacilityPerformance{Facilities: map[string]FacilityMetrics{}}
}

// FacilityEfficiency 楼宇效率视图
type FacilityEfficiency struct {
	PowerEfficiencySqftKwh    float64 `json:"power_efficiency_sqft_per_kwh"`
	WaterEfficiencySqftGallon float64 `json:"water_efficiency_sqft_per_gallon"`
	TimeEfficiencySqftHour    float64 `json:"time_efficiency_sqft_per_hour"`
}

// FacilityTasks 楼宇任务视图
type FacilityTasks struct {
	TaskCount          int     `json:"task_count"`
	CompletionRate     float64 `json:"completion_rate"`
	CoverageEfficiency float64 `json:"coverage_efficiency"`
}

// FacilityCharging 楼宇充电视图
type FacilityCharging struct {
	Sessions            int     `json:"sessions"`
	AvgDurationMin      float64 `json:"avg_duration_min"`
	AvgPowerGainPercent float64 `json:"avg_power_gain_percent"`
}

// FacilityResources 楼宇资源视图
type FacilityResources struct {
	EnergyKwh    float64 `json:"energy_kwh"`
	WaterGallons float64 `json:"water_gallons"`
}

// FacilityBreakdown 楼宇运行细分视图
type FacilityBreakdown struct {
	PrimaryMode            string  `json:"primary_mode"`
	AvgTaskDurationMin     float64 `json:"avg_task_duration_min"`
	HighestCoverageWeekday string  `json:"highest_coverage_weekday"`
	LowestCoverageWeekday  string  `json:"lowest_coverage_weekday"`
}

// RobotMetrics 单机器人指标
type RobotMetrics struct {
	RobotSN              string  `json:"robot_sn"`
	BuildingName         string  `json:"building_name"`
	TaskCount            int     `json:"task_count"`
	CompletionRate       float64 `json:"completion_rate"`
	RunningHours         float64 `json:"running_hours"`
	AreaCleanedSqft      float64 `json:"area_cleaned_sqft"`
	DaysActive           int     `json:"days_active"`
	AvgDailyRunningHours float64 `json:"avg_daily_running_hours"`
}

// MapMetrics 地图维度指标
type MapMetrics struct {
	TaskCount          int     `json:"task_count"`
	AreaCleanedSqft    float64 `json:"area_cleaned_sqft"`
	CoverageEfficiency float64 `json:"coverage_efficiency"`
	RunningHours       float64 `json:"running_hours"`
}

// DailyTrendPoint 日趋势点（无任务日显式补零）
type DailyTrendPoint struct {
	Date            string  `json:"date"` // YYYY-MM-DD
	TaskCount       int     `json:"task_count"`
	RunningHours    float64 `json:"running_hours"`
	AreaCleanedSqft float64 `json:"area_cleaned_sqft"`
	EnergyKwh       float64 `json:"energy_kwh"`
	WaterGallons    float64 `json:"water_gallons"`
	CompletionRate  float64 `json:"completion_rate"`
}

// WeekdayTrendPoint 按星期聚合的趋势点
type WeekdayTrendPoint struct {
	Weekday         string  `json:"weekday"`
	AvgTasks        float64 `json:"avg_tasks"`
	AvgRunningHours float64 `json:"avg_running_hours"`
	AvgAreaSqft     float64 `json:"avg_area_sqft"`
}

// TrendData 趋势数据
type TrendData struct {
	Daily   []DailyTrendPoint   `json:"daily"`
	Weekday []WeekdayTrendPoint `json:"weekday"`
}

// DefaultTrendData 空输入占位
func DefaultTrendData() TrendData {
	return TrendData{Daily: []DailyTrendPoint{}, Weekday: []WeekdayTrendPoint{}}
}

// ROITrendPoint ROI 日趋势点。累计值从窗口前的历史继续累加，跨报表周期连续。
type ROITrendPoint struct {
	Date              string  `json:"date"`
	DailySavings      float64 `json:"daily_savings"`
	CumulativeSavings float64 `json:"cumulative_savings"`
	ROIPercent        float64 `json:"roi_percent"`
}

// ROIMetrics 投资回报指标（cost_analysis 块）
type ROIMetrics struct {
	TotalInvestment    float64         `json:"total_investment"`
	CumulativeSavings  float64         `json:"cumulative_savings"`
	ROIPercent         float64         `json:"roi_percent"`
	MonthlyLeasePrice  float64         `json:"monthly_lease_price"`
	TotalLeaseMonths   int             `json:"total_lease_months"`
	MonthlySavingsRate float64         `json:"monthly_savings_rate"`
	PaybackPeriod      string          `json:"payback_period"`
	DailyTrend         []ROITrendPoint `json:"daily_trend"`
}

// DefaultROIMetrics 空输入占位
func DefaultROIMetrics() ROIMetrics {
	return ROIMetrics{
		PaybackPeriod: "N/A",
		DailyTrend:    []ROITrendPoint{},
	}
}

// PeriodComparison 环比结果：指标名 → 带符号的格式化差值（如 "+12.3%"），
// 任一侧缺失时为字面量 "N/A"。键永远存在，渲染层依赖键存在性。
type PeriodComparison struct {
	Metrics    map[string]string            `json:"metrics"`
	Facilities map[string]map[string]string `json:"facilities"`
	Maps       map[string]map[string]string `json:"maps"`
}

// DefaultPeriodComparison 空占位
func DefaultPeriodComparison() PeriodComparison {
	return PeriodComparison{
		Metrics:    map[string]string{},
		Facilities: map[string]map[string]string{},
		Maps:       map[string]map[string]string{},
	}
}

// ComparisonMetadata 环比元信息
type ComparisonMetadata struct {
	Available     bool   `json:"comparison_available"`
	PreviousStart string `json:"previous_start"`
	PreviousEnd   string `json:"previous_end"`
	Reason        string `json:"reason,omitempty"` // 不可用原因
}

// MetricsSnapshot 单个时间段的完整指标输出
//
// 除编排器把 ROI 结果并入 cost_analysis 外，产出后不再修改。
type MetricsSnapshot struct {
	PeriodStart               string                           `json:"period_start"`
	PeriodEnd                 string                           `json:"period_end"`
	FleetPerformance          FleetMetrics                     `json:"fleet_performance"`
	TaskPerformance           TaskMetrics                      `json:"task_performance"`
	ChargingPerformance       ChargingMetrics                  `json:"charging_performance"`
	ResourceUtilization       ResourceMetrics                  `json:"resource_utilization"`
	EventAnalysis             EventMetrics                     `json:"event_analysis"`
	FacilityPerformance       FacilityPerformance              `json:"facility_performance"`
	FacilityEfficiencyMetrics map[string]FacilityEfficiency    `json:"facility_efficiency_metrics"`
	FacilityTaskMetrics       map[string]FacilityTasks         `json:"facility_task_metrics"`
	FacilityChargingMetrics   map[string]FacilityCharging      `json:"facility_charging_metrics"`
	FacilityResourceMetrics   map[string]FacilityResources     `json:"facility_resource_metrics"`
	FacilityBreakdownMetrics  map[string]FacilityBreakdown     `json:"facility_breakdown_metrics"`
	IndividualRobots          []RobotMetrics                   `json:"individual_robots"`
	MapPerformanceByBuilding  map[string]map[string]MapMetrics `json:"map_performance_by_building"`
	TrendData                 TrendData                        `json:"trend_data"`
	CostAnalysis              ROIMetrics                       `json:"cost_analysis"`
	PeriodComparisons         PeriodComparison                 `json:"period_comparisons"`
	ComparisonMetadata        ComparisonMetadata               `json:"comparison_metadata"`
}

// NewMetricsSnapshot 构造结构完整的空快照：所有集合字段均为空集合而非 nil，
// 保证 JSON 序列化后不出现 null。
func NewMetricsSnapshot() *MetricsSnapshot {
	return &MetricsSnapshot{
		FleetPerformance:          DefaultFleetMetrics(),
		TaskPerformance:           DefaultTaskMetrics(),
		ChargingPerformance:       DefaultChargingMetrics(),
		ResourceUtilization:       DefaultResourceMetrics(),
		EventAnalysis:             DefaultEventMetrics(),
		FacilityPerformance:       DefaultFacilityPerformance(),
		FacilityEfficiencyMetrics: map[string]FacilityEfficiency{},
		FacilityTaskMetrics:       map[string]FacilityTasks{},
		FacilityChargingMetrics:   map[string]FacilityCharging{},
		FacilityResourceMetrics:   map[string]FacilityResources{},
		FacilityBreakdownMetrics:  map[string]FacilityBreakdown{},
		IndividualRobots:          []RobotMetrics{},
		MapPerformanceByBuilding:  map[string]map[string]MapMetrics{},
		TrendData:                 DefaultTrendData(),
		CostAnalysis:              DefaultROIMetrics(),
		PeriodComparisons:         DefaultPeriodComparison(),
		ComparisonMetadata:        ComparisonMetadata{},
	}
}
