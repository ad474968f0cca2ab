package metrics

import (
	"github.com/langchou/robogazer/internal/models"
	"github.com/langchou/robogazer/internal/normalize"
)

// ResourceUtilization 资源利用：能耗/水耗总量与面积效率比。
// 资源为 0 时效率比为 0，不是 Inf、也不报错。
func (c *Calculator) ResourceUtilization(tasks []models.TaskRecord, p Period) (models.ResourceMetrics, error) {
	if !p.Valid() {
		return models.DefaultResourceMetrics(), &ComputeError{Block: "resource_utilization", Err: errInvalidPeriod}
	}

	rm := models.DefaultResourceMetrics()
	var energy, waterFloz, areaSqm, hours float64
	for _, t := range tasks {
		if t.Consumption != nil {
			energy += *t.Consumption
		}
		if t.WaterConsumption != nil {
			waterFloz += *t.WaterConsumption
		}
		if t.ActualArea != nil {
			areaSqm += *t.ActualArea
		}
		hours += normalize.SecondsToHours(t.Duration)
	}

	areaSqft := normalize.SqmToSqft(areaSqm)
	gallons := normalize.FlozToGallons(waterFloz)

	rm.TotalEnergyKwh = round2(energy)
	rm.TotalWaterGallons = round2(gallons)
	rm.AreaCleanedSqft = round1(areaSqft)
	rm.EnergyEfficiencySqftKwh = safeRatio(areaSqft, energy)
	rm.WaterEfficiencySqftGallon = safeRatio(areaSqft, gallons)
	rm.TimeEfficiencySqftHour = safeRatio(areaSqft, hours)
	return rm, nil
}

// safeRatio 分母为 0 时返回 0
func safeRatio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return round2(numerator / denominator)
}
