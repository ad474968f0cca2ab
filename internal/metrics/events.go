package metrics

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/langchou/robogazer/internal/models"
	"github.com/langchou/robogazer/internal/normalize"
)

// EventAnalysis 事件分析：级别/类型直方图 + 事件→楼宇分布。
//
// robotBuilding 是机器人→楼宇的查找表。查找表可用时做精确关联；
// 不可用时按各楼宇任务量占比把聚合计数近似分摊到楼宇
// （taskVolumeByBuilding），并置 BuildingDistributionApproximate，
// 下游必须按近似值标注展示，不得当作精确结果。
func (c *Calculator) EventAnalysis(events []models.EventRecord, robotBuilding map[string]string, taskVolumeByBuilding map[string]int, p Period) (models.EventMetrics, error) {
	if !p.Valid() {
		return models.DefaultEventMetrics(), &ComputeError{Block: "event_analysis", Err: errInvalidPeriod}
	}

	em := models.DefaultEventMetrics()
	em.TotalEvents = len(events)
	if len(events) == 0 {
		return em, nil
	}

	for _, ev := range events {
		level := normalize.ClassifyEventLevel(ev.EventLevel)
		em.LevelCounts[level]++
		switch level {
		case normalize.LevelCritical:
			em.CriticalEvents++
		case normalize.LevelError:
			em.ErrorEvents++
		case normalize.LevelWarning:
			em.WarningEvents++
		default:
			em.InfoEvents++
		}
		if ev.EventType != "" {
			em.TypeCounts[ev.EventType]++
		}
	}

	if len(robotBuilding) > 0 {
		for _, ev := range events {
			building, ok := robotBuilding[ev.RobotSN]
			if !ok || building == "" {
				building = "unassigned"
			}
			level := normalize.ClassifyEventLevel(ev.EventLevel)
			if em.BuildingDistribution[building] == nil {
				em.BuildingDistribution[building] = map[string]int{}
			}
			em.BuildingDistribution[building][level]++
		}
		return em, nil
	}

	// 无法精确关联：按任务量占比近似分摊
	em.BuildingDistribution = apportionByTaskShare(em.LevelCounts, taskVolumeByBuilding)
	em.BuildingDistributionApproximate = len(em.BuildingDistribution) > 0
	if em.BuildingDistributionApproximate {
		c.logger.Warn("Event-to-building join unavailable, using proportional distribution",
			zap.Int("events", len(events)),
			zap.Int("buildings", len(taskVolumeByBuilding)))
	}
	return em, nil
}

// apportionByTaskShare 把各级别的聚合事件数按楼宇任务量占比分摊
func apportionByTaskShare(levelCounts map[string]int, taskVolume map[string]int) map[string]map[string]int {
	out := map[string]map[string]int{}
	var totalTasks int
	for _, n := range taskVolume {
		totalTasks += n
	}
	if totalTasks == 0 {
		return out
	}

	// 固定遍历顺序，分摊结果可复现
	buildings := make([]string, 0, len(taskVolume))
	for b := range taskVolume {
		buildings = append(buildings, b)
	}
	sort.Strings(buildings)

	for _, b := range buildings {
		share := float64(taskVolume[b]) / float64(totalTasks)
		dist := map[string]int{}
		for level, n := range levelCounts {
			dist[level] = int(math.Round(float64(n) * share))
		}
		out[b] = dist
	}
	return out
}
