package metrics

import (
	"sort"
	"time"

	"github.com/langchou/robogazer/internal/aggregate"
	"github.com/langchou/robogazer/internal/models"
	"github.com/langchou/robogazer/internal/normalize"
)

// facilityAccum 单趟遍历期间累积的楼宇中间量
type facilityAccum struct {
	taskCount     int
	completed     int
	actualSqm     float64
	planSqm       float64
	hours         float64
	energy        float64
	waterFloz     float64
	durationSecs  float64
	durationCount int
	modes         map[string]int
	robots        map[string]struct{}
	// 按日历日累计 actual/plan，用于按星期的覆盖率平均（补零后）
	dailyActual map[string]float64
	dailyPlan   map[string]float64
}

func newFacilityAccum() *facilityAccum {
	return &facilityAccum{
		modes:       map[string]int{},
		robots:      map[string]struct{}{},
		dailyActual: map[string]float64{},
		dailyPlan:   map[string]float64{},
	}
}

// FacilityBreakdown 楼宇/场所维度细分。
//
// 对任务集合只做一趟分组遍历，同时产出每楼宇的任务数、完成率、清洁面积、
// 运行小时、能耗/水耗、三种效率比、主力模式、平均任务时长和覆盖率最高/最低
// 的星期 —— 不允许按楼宇逐个过滤重算（O(楼宇×任务) 会爆炸）。
//
// 星期覆盖率先对周期内每个日历日补零再按星期平均，避免只统计恰好有任务的
// 日子带来的幸存者偏差。
func (c *Calculator) FacilityBreakdown(tasks []models.TaskRecord, robotBuilding map[string]string, p Period) (models.FacilityPerformance, error) {
	if !p.Valid() {
		return models.DefaultFacilityPerformance(), &ComputeError{Block: "facility_performance", Err: errInvalidPeriod}
	}

	fp := models.DefaultFacilityPerformance()
	accums := map[string]*facilityAccum{}

	for _, t := range tasks {
		building := buildingFor(t.RobotSN, robotBuilding)
		acc := accums[building]
		if acc == nil {
			acc = newFacilityAccum()
			accums[building] = acc
		}
		acc.taskCount++
		acc.robots[t.RobotSN] = struct{}{}
		if normalize.ClassifyStatus(t.Status) == normalize.StatusCompleted {
			acc.completed++
		}
		if t.ActualArea != nil {
			acc.actualSqm += *t.ActualArea
		}
		if t.PlanArea != nil {
			acc.planSqm += *t.PlanArea
		}
		hours := normalize.SecondsToHours(t.Duration)
		acc.hours += hours
		if hours > 0 {
			acc.durationSecs += hours * normalize.SecondsPerHour
			acc.durationCount++
		}
		if t.Consumption != nil {
			acc.energy += *t.Consumption
		}
		if t.WaterConsumption != nil {
			acc.waterFloz += *t.WaterConsumption
		}
		if t.Mode != "" {
			acc.modes[t.Mode]++
		}
		if t.StartTime != nil {
			day := t.StartTime.Format("2006-01-02")
			if t.ActualArea != nil {
				acc.dailyActual[day] += *t.ActualArea
			}
			if t.PlanArea != nil {
				acc.dailyPlan[day] += *t.PlanArea
			}
		}
	}

	days := aggregate.DateRangeDays(p.Start, p.End)
	for building, acc := range accums {
		fm := models.FacilityMetrics{
			BuildingName:    building,
			RobotCount:      len(acc.robots),
			TaskCount:       acc.taskCount,
			AreaCleanedSqft: round1(normalize.SqmToSqft(acc.actualSqm)),
			PlannedAreaSqft: round1(normalize.SqmToSqft(acc.planSqm)),
			RunningHours:    round2(acc.hours),
			EnergyKwh:       round2(acc.energy),
			WaterGallons:    round2(normalize.FlozToGallons(acc.waterFloz)),
		}
		if acc.taskCount > 0 {
			fm.CompletionRate = round1(float64(acc.completed) / float64(acc.taskCount) * 100)
		}
		if acc.planSqm > 0 {
			fm.CoverageEfficiency = round1(acc.actualSqm / acc.planSqm * 100)
		}
		areaSqft := normalize.SqmToSqft(acc.actualSqm)
		fm.PowerEfficiencySqftKwh = safeRatio(areaSqft, acc.energy)
		fm.WaterEfficiencySqftGallon = safeRatio(areaSqft, normalize.FlozToGallons(acc.waterFloz))
		fm.TimeEfficiencySqftHour = safeRatio(areaSqft, acc.hours)
		fm.PrimaryMode = primaryMode(acc.modes)
		if acc.durationCount > 0 {
			fm.AvgTaskDurationMin = round1(acc.durationSecs / float64(acc.durationCount) / normalize.SecondsPerMinute)
		}
		fm.HighestCoverageWeekday, fm.LowestCoverageWeekday = coverageWeekdayExtremes(acc.dailyActual, acc.dailyPlan, days)
		fp.Facilities[building] = fm
	}
	return fp, nil
}

// FacilityViews 从楼宇指标派生按关注点拆分的视图块（效率/任务/资源/细分），
// 充电视图单独按楼宇分组充电记录产出。
func (c *Calculator) FacilityViews(fp models.FacilityPerformance, charging []models.ChargingRecord, robotBuilding map[string]string) (map[string]models.FacilityEfficiency, map[string]models.FacilityTasks, map[string]models.FacilityCharging, map[string]models.FacilityResources, map[string]models.FacilityBreakdown) {
	eff := map[string]models.FacilityEfficiency{}
	tasksView := map[string]models.FacilityTasks{}
	resView := map[string]models.FacilityResources{}
	breakView := map[string]models.FacilityBreakdown{}
	for name, fm := range fp.Facilities {
		eff[name] = models.FacilityEfficiency{
			PowerEfficiencySqftKwh:    fm.PowerEfficiencySqftKwh,
			WaterEfficiencySqftGallon: fm.WaterEfficiencySqftGallon,
			TimeEfficiencySqftHour:    fm.TimeEfficiencySqftHour,
		}
		tasksView[name] = models.FacilityTasks{
			TaskCount:          fm.TaskCount,
			CompletionRate:     fm.CompletionRate,
			CoverageEfficiency: fm.CoverageEfficiency,
		}
		resView[name] = models.FacilityResources{
			EnergyKwh:    fm.EnergyKwh,
			WaterGallons: fm.WaterGallons,
		}
		breakView[name] = models.FacilityBreakdown{
			PrimaryMode:            fm.PrimaryMode,
			AvgTaskDurationMin:     fm.AvgTaskDurationMin,
			HighestCoverageWeekday: fm.HighestCoverageWeekday,
			LowestCoverageWeekday:  fm.LowestCoverageWeekday,
		}
	}

	chargeView := map[string]models.FacilityCharging{}
	byBuilding := aggregate.GroupRows(charging, func(r models.ChargingRecord) string {
		return buildingFor(r.RobotSN, robotBuilding)
	})
	for name, sessions := range byBuilding {
		var durations, gains []float64
		for _, s := range sessions {
			if min := c.durCache.Minutes(s.Duration); min > 0 {
				durations = append(durations, min)
			}
			if g, ok := normalize.PercentString(s.PowerGain); ok {
				gains = append(gains, g)
			}
		}
		chargeView[name] = models.FacilityCharging{
			Sessions:            len(sessions),
			AvgDurationMin:      round1(aggregate.Mean(durations)),
			AvgPowerGainPercent: round1(aggregate.Mean(gains)),
		}
	}
	return eff, tasksView, chargeView, resView, breakView
}

// MapPerformance 楼宇 → 地图名 → 指标
func (c *Calculator) MapPerformance(tasks []models.TaskRecord, robotBuilding map[string]string, p Period) (map[string]map[string]models.MapMetrics, error) {
	if !p.Valid() {
		return map[string]map[string]models.MapMetrics{}, &ComputeError{Block: "map_performance_by_building", Err: errInvalidPeriod}
	}

	type mapAccum struct {
		count             int
		actualSqm, planSqm float64
		hours             float64
	}
	accums := map[string]map[string]*mapAccum{}
	for _, t := range tasks {
		if t.MapName == "" {
			continue
		}
		building := buildingFor(t.RobotSN, robotBuilding)
		if accums[building] == nil {
			accums[building] = map[string]*mapAccum{}
		}
		acc := accums[building][t.MapName]
		if acc == nil {
			acc = &mapAccum{}
			accums[building][t.MapName] = acc
		}
		acc.count++
		if t.ActualArea != nil {
			acc.actualSqm += *t.ActualArea
		}
		if t.PlanArea != nil {
			acc.planSqm += *t.PlanArea
		}
		acc.hours += normalize.SecondsToHours(t.Duration)
	}

	out := map[string]map[string]models.MapMetrics{}
	for building, maps := range accums {
		out[building] = map[string]models.MapMetrics{}
		for name, acc := range maps {
			mm := models.MapMetrics{
				TaskCount:       acc.count,
				AreaCleanedSqft: round1(normalize.SqmToSqft(acc.actualSqm)),
				RunningHours:    round2(acc.hours),
			}
			if acc.planSqm > 0 {
				mm.CoverageEfficiency = round1(acc.actualSqm / acc.planSqm * 100)
			}
			out[building][name] = mm
		}
	}
	return out, nil
}

// IndividualRobots 单机器人指标列表，按序列号排序
func (c *Calculator) IndividualRobots(tasks []models.TaskRecord, robotBuilding map[string]string, p Period) ([]models.RobotMetrics, error) {
	if !p.Valid() {
		return []models.RobotMetrics{}, &ComputeError{Block: "individual_robots", Err: errInvalidPeriod}
	}

	byRobot := aggregate.GroupRows(tasks, func(t models.TaskRecord) string { return t.RobotSN })
	out := make([]models.RobotMetrics, 0, len(byRobot))
	for sn, robotTasks := range byRobot {
		rm := models.RobotMetrics{
			RobotSN:      sn,
			BuildingName: buildingFor(sn, robotBuilding),
			TaskCount:    len(robotTasks),
		}
		var completed int
		var hours, actualSqm float64
		byDay := map[string]float64{}
		for _, t := range robotTasks {
			if normalize.ClassifyStatus(t.Status) == normalize.StatusCompleted {
				completed++
			}
			h := normalize.SecondsToHours(t.Duration)
			hours += h
			if t.ActualArea != nil {
				actualSqm += *t.ActualArea
			}
			if t.StartTime != nil {
				byDay[t.StartTime.Format("2006-01-02")] += h
			}
		}
		if rm.TaskCount > 0 {
			rm.CompletionRate = round1(float64(completed) / float64(rm.TaskCount) * 100)
		}
		rm.RunningHours = round2(hours)
		rm.AreaCleanedSqft = round1(normalize.SqmToSqft(actualSqm))
		rm.DaysActive = len(byDay)
		if len(byDay) > 0 {
			var daySums []float64
			for _, h := range byDay {
				daySums = append(daySums, h)
			}
			rm.AvgDailyRunningHours = round2(aggregate.Mean(daySums))
		}
		out = append(out, rm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RobotSN < out[j].RobotSN })
	return out, nil
}

// buildingFor 机器人→楼宇查找，查不到归入 unassigned
func buildingFor(sn string, robotBuilding map[string]string) string {
	if b, ok := robotBuilding[sn]; ok && b != "" {
		return b
	}
	return "unassigned"
}

// primaryMode 出现次数最多的模式，并列时取字典序最小，保证确定性
func primaryMode(modes map[string]int) string {
	best := ""
	bestCount := 0
	names := make([]string, 0, len(modes))
	for m := range modes {
		names = append(names, m)
	}
	sort.Strings(names)
	for _, m := range names {
		if modes[m] > bestCount {
			best = m
			bestCount = modes[m]
		}
	}
	return best
}

// coverageWeekdayExtremes 按星期的覆盖率极值。
// 周期内每个日历日先补零（无任务日覆盖率按 0 计），再按星期求平均；
// 只有补零后才比较，避免偏向恰好每次都有任务的星期。
func coverageWeekdayExtremes(dailyActual, dailyPlan map[string]float64, days []time.Time) (highest, lowest string) {
	if len(days) == 0 {
		return "", ""
	}
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, d := range days {
		key := d.Format("2006-01-02")
		wd := d.Weekday().String()
		var ratio float64
		if plan := dailyPlan[key]; plan > 0 {
			ratio = dailyActual[key] / plan
		}
		sums[wd] += ratio
		counts[wd]++
	}

	bestVal, worstVal := -1.0, -1.0
	for _, wd := range weekdayOrder {
		n, ok := counts[wd]
		if !ok || n == 0 {
			continue
		}
		avg := sums[wd] / float64(n)
		if bestVal < 0 || avg > bestVal {
			bestVal = avg
			highest = wd
		}
		if worstVal < 0 || avg < worstVal {
			worstVal = avg
			lowest = wd
		}
	}
	return highest, lowest
}
