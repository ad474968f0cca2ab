package metrics

import (
	"github.com/langchou/robogazer/internal/aggregate"
	"github.com/langchou/robogazer/internal/models"
	"github.com/langchou/robogazer/internal/normalize"
)

// dayAccum 单日累计量
type dayAccum struct {
	count     int
	completed int
	hours     float64
	actualSqm float64
	energy    float64
	waterFloz float64
}

// Trend 日趋势与按星期趋势。周期内每个日历日都出现在输出里，
// 无任务日显式补零（图表连续性和星期平均的正确性都依赖这一点）。
func (c *Calculator) Trend(tasks []models.TaskRecord, p Period) (models.TrendData, error) {
	if !p.Valid() {
		return models.DefaultTrendData(), &ComputeError{Block: "trend_data", Err: errInvalidPeriod}
	}

	byDay := map[string]*dayAccum{}
	for _, t := range tasks {
		if t.StartTime == nil {
			continue
		}
		key := t.StartTime.Format("2006-01-02")
		acc := byDay[key]
		if acc == nil {
			acc = &dayAccum{}
			byDay[key] = acc
		}
		acc.count++
		if normalize.ClassifyStatus(t.Status) == normalize.StatusCompleted {
			acc.completed++
		}
		acc.hours += normalize.SecondsToHours(t.Duration)
		if t.ActualArea != nil {
			acc.actualSqm += *t.ActualArea
		}
		if t.Consumption != nil {
			acc.energy += *t.Consumption
		}
		if t.WaterConsumption != nil {
			acc.waterFloz += *t.WaterConsumption
		}
	}

	td := models.DefaultTrendData()
	type weekdayAccum struct {
		days  int
		tasks int
		hours float64
		sqft  float64
	}
	byWeekday := map[string]*weekdayAccum{}

	for _, day := range aggregate.DateRangeDays(p.Start, p.End) {
		key := day.Format("2006-01-02")
		point := models.DailyTrendPoint{Date: key}
		if acc, ok := byDay[key]; ok {
			point.TaskCount = acc.count
			point.RunningHours = round2(acc.hours)
			point.AreaCleanedSqft = round1(normalize.SqmToSqft(acc.actualSqm))
			point.EnergyKwh = round2(acc.energy)
			point.WaterGallons = round2(normalize.FlozToGallons(acc.waterFloz))
			if acc.count > 0 {
				point.CompletionRate = round1(float64(acc.completed) / float64(acc.count) * 100)
			}
		}
		td.Daily = append(td.Daily, point)

		wd := day.Weekday().String()
		wa := byWeekday[wd]
		if wa == nil {
			wa = &weekdayAccum{}
			byWeekday[wd] = wa
		}
		wa.days++
		wa.tasks += point.TaskCount
		wa.hours += point.RunningHours
		wa.sqft += point.AreaCleanedSqft
	}

	for _, wd := range weekdayOrder {
		wa, ok := byWeekday[wd]
		if !ok || wa.days == 0 {
			continue
		}
		td.Weekday = append(td.Weekday, models.WeekdayTrendPoint{
			Weekday:         wd,
			AvgTasks:        round1(float64(wa.tasks) / float64(wa.days)),
			AvgRunningHours: round2(wa.hours / float64(wa.days)),
			AvgAreaSqft:     round1(wa.sqft / float64(wa.days)),
		})
	}
	return td, nil
}
