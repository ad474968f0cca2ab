package metrics

import (
	"github.com/langchou/robogazer/internal/aggregate"
	"github.com/langchou/robogazer/internal/models"
	"github.com/langchou/robogazer/internal/normalize"
)

// ChargingPerformance 充电表现。
//
// 时长和电量增益两个字段独立取舍：增益文本坏了的会话仍然参与时长统计，
// 反之亦然。无法解析的条目不进均值（不能用 0 充数），但总数照计。
func (c *Calculator) ChargingPerformance(records []models.ChargingRecord, p Period) (models.ChargingMetrics, error) {
	if !p.Valid() {
		return models.DefaultChargingMetrics(), &ComputeError{Block: "charging_performance", Err: errInvalidPeriod}
	}

	cm := models.DefaultChargingMetrics()
	cm.TotalSessions = len(records)
	if len(records) == 0 {
		return cm, nil
	}

	var durations, gains []float64
	for _, r := range records {
		if min := c.durCache.Minutes(r.Duration); min > 0 {
			durations = append(durations, min)
		}
		if gain, ok := normalize.PercentString(r.PowerGain); ok {
			gains = append(gains, gain)
		}
	}

	cm.SessionsWithDuration = len(durations)
	cm.SessionsWithPowerGain = len(gains)
	cm.AvgDurationMin = round1(aggregate.Mean(durations))
	cm.MedianDurationMin = round1(aggregate.Median(durations))
	cm.AvgPowerGainPercent = round1(aggregate.Mean(gains))
	cm.MedianPowerGainPercent = round1(aggregate.Median(gains))
	return cm, nil
}
