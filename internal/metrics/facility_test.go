package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langchou/robogazer/internal/models"
)

// TestFacilityBreakdown 单趟分组产出每楼宇的全部指标
func TestFacilityBreakdown(t *testing.T) {
	calc := newTestCalculator()
	p := Period{Start: day(1, 0), End: day(8, 0)}
	robotBuilding := map[string]string{"R1": "Alpha Tower", "R2": "Alpha Tower", "R3": "Beta Plaza"}
	tasks := []models.TaskRecord{
		{RobotSN: "R1", Status: "completed", Mode: "sweep", ActualArea: fptr(50), PlanArea: fptr(100), Duration: "3600", Consumption: fptr(1), WaterConsumption: fptr(64), StartTime: tptr(day(3, 9))},
		{RobotSN: "R2", Status: "cancelled", Mode: "mop", ActualArea: fptr(30), PlanArea: fptr(60), Duration: "1800", StartTime: tptr(day(4, 9))},
		{RobotSN: "R3", Status: "completed", Mode: "sweep", ActualArea: fptr(10), PlanArea: fptr(10), Duration: "3600", StartTime: tptr(day(3, 9))},
		// 查找表没有 R9 → unassigned
		{RobotSN: "R9", Status: "completed", StartTime: tptr(day(3, 9))},
	}

	fp, err := calc.FacilityBreakdown(tasks, robotBuilding, p)
	require.NoError(t, err)
	require.Len(t, fp.Facilities, 3)

	alpha := fp.Facilities["Alpha Tower"]
	assert.Equal(t, 2, alpha.RobotCount)
	assert.Equal(t, 2, alpha.TaskCount)
	assert.Equal(t, 50.0, alpha.CompletionRate)
	assert.Equal(t, 50.0, alpha.CoverageEfficiency) // 80/160
	assert.Equal(t, 1.5, alpha.RunningHours)
	assert.Equal(t, 1.0, alpha.EnergyKwh)
	assert.Equal(t, 0.5, alpha.WaterGallons)
	assert.Equal(t, 45.0, alpha.AvgTaskDurationMin)
	// mop 和 sweep 各 1 次，并列取字典序最小
	assert.Equal(t, "mop", alpha.PrimaryMode)

	beta := fp.Facilities["Beta Plaza"]
	assert.Equal(t, 100.0, beta.CompletionRate)
	assert.Equal(t, 100.0, beta.CoverageEfficiency)

	assert.Contains(t, fp.Facilities, "unassigned")
}

// TestFacilityViews 视图块与楼宇指标一致，充电视图按楼宇独立聚合
func TestFacilityViews(t *testing.T) {
	calc := newTestCalculator()
	p := Period{Start: day(1, 0), End: day(8, 0)}
	robotBuilding := map[string]string{"R1": "Alpha Tower"}
	tasks := []models.TaskRecord{
		{RobotSN: "R1", Status: "completed", ActualArea: fptr(50), PlanArea: fptr(50), Duration: "3600", StartTime: tptr(day(3, 9))},
	}
	charging := []models.ChargingRecord{
		{RobotSN: "R1", Duration: "1h", PowerGain: "+40%"},
		{RobotSN: "R1", Duration: "2h", PowerGain: "+60%"},
	}

	fp, err := calc.FacilityBreakdown(tasks, robotBuilding, p)
	require.NoError(t, err)

	eff, tasksView, chargeView, resView, breakView := calc.FacilityViews(fp, charging, robotBuilding)

	assert.Equal(t, fp.Facilities["Alpha Tower"].TimeEfficiencySqftHour, eff["Alpha Tower"].TimeEfficiencySqftHour)
	assert.Equal(t, 1, tasksView["Alpha Tower"].TaskCount)
	assert.Equal(t, 100.0, tasksView["Alpha Tower"].CompletionRate)
	assert.Equal(t, 2, chargeView["Alpha Tower"].Sessions)
	assert.Equal(t, 90.0, chargeView["Alpha Tower"].AvgDurationMin)
	assert.Equal(t, 50.0, chargeView["Alpha Tower"].AvgPowerGainPercent)
	assert.Equal(t, fp.Facilities["Alpha Tower"].EnergyKwh, resView["Alpha Tower"].EnergyKwh)
	assert.Equal(t, fp.Facilities["Alpha Tower"].PrimaryMode, breakView["Alpha Tower"].PrimaryMode)
}

// TestMapPerformance 楼宇→地图两级分组，空地图名跳过
func TestMapPerformance(t *testing.T) {
	calc := newTestCalculator()
	p := Period{Start: day(1, 0), End: day(8, 0)}
	robotBuilding := map[string]string{"R1": "Alpha Tower"}
	tasks := []models.TaskRecord{
		{RobotSN: "R1", MapName: "floor-1", ActualArea: fptr(40), PlanArea: fptr(50), Duration: "3600"},
		{RobotSN: "R1", MapName: "floor-1", ActualArea: fptr(10), PlanArea: fptr(50), Duration: "1800"},
		{RobotSN: "R1", MapName: "floor-2", ActualArea: fptr(20), PlanArea: fptr(20)},
		{RobotSN: "R1", MapName: ""}, // 无地图名不参与
	}

	maps, err := calc.MapPerformance(tasks, robotBuilding, p)
	require.NoError(t, err)
	require.Contains(t, maps, "Alpha Tower")
	require.Len(t, maps["Alpha Tower"], 2)

	f1 := maps["Alpha Tower"]["floor-1"]
	assert.Equal(t, 2, f1.TaskCount)
	assert.Equal(t, 50.0, f1.CoverageEfficiency)
	assert.Equal(t, 1.5, f1.RunningHours)
	assert.Equal(t, 100.0, maps["Alpha Tower"]["floor-2"].CoverageEfficiency)
}

// TestFacilityBreakdownEquivalentToFilteredRecompute 批量单趟分组的结果
// 与"按楼宇过滤后单独重算"一致 —— 分组只是性能优化，不改变语义
func TestFacilityBreakdownEquivalentToFilteredRecompute(t *testing.T) {
	calc := newTestCalculator()
	p := Period{Start: day(1, 0), End: day(8, 0)}
	robotBuilding := map[string]string{"R1": "Alpha Tower", "R2": "Alpha Tower", "R3": "Beta Plaza"}
	tasks := []models.TaskRecord{
		{RobotSN: "R1", Status: "completed", Mode: "sweep", ActualArea: fptr(50), PlanArea: fptr(100), Duration: "3600", Consumption: fptr(1), StartTime: tptr(day(3, 9))},
		{RobotSN: "R2", Status: "cancelled", Mode: "mop", ActualArea: fptr(30), PlanArea: fptr(60), Duration: "1800", StartTime: tptr(day(4, 9))},
		{RobotSN: "R3", Status: "completed", ActualArea: fptr(10), PlanArea: fptr(10), Duration: "3600", StartTime: tptr(day(5, 9))},
	}

	batched, err := calc.FacilityBreakdown(tasks, robotBuilding, p)
	require.NoError(t, err)

	var alphaOnly []models.TaskRecord
	for _, task := range tasks {
		if robotBuilding[task.RobotSN] == "Alpha Tower" {
			alphaOnly = append(alphaOnly, task)
		}
	}
	filtered, err := calc.FacilityBreakdown(alphaOnly, robotBuilding, p)
	require.NoError(t, err)

	assert.Equal(t, filtered.Facilities["Alpha Tower"], batched.Facilities["Alpha Tower"])
}

// TestIndividualRobots 单机器人指标按序列号排序输出
func TestIndividualRobots(t *testing.T) {
	calc := newTestCalculator()
	p := Period{Start: day(1, 0), End: day(8, 0)}
	robotBuilding := map[string]string{"R1": "Alpha Tower"}
	tasks := []models.TaskRecord{
		{RobotSN: "R2", Status: "completed", Duration: "3600", StartTime: tptr(day(3, 9))},
		{RobotSN: "R1", Status: "completed", Duration: "7200", ActualArea: fptr(100), StartTime: tptr(day(3, 9))},
		{RobotSN: "R1", Status: "cancelled", Duration: "3600", StartTime: tptr(day(4, 9))},
	}

	robots, err := calc.IndividualRobots(tasks, robotBuilding, p)
	require.NoError(t, err)
	require.Len(t, robots, 2)
	assert.Equal(t, "R1", robots[0].RobotSN)
	assert.Equal(t, "R2", robots[1].RobotSN)

	r1 := robots[0]
	assert.Equal(t, "Alpha Tower", r1.BuildingName)
	assert.Equal(t, 2, r1.TaskCount)
	assert.Equal(t, 50.0, r1.CompletionRate)
	assert.Equal(t, 3.0, r1.RunningHours)
	assert.Equal(t, 2, r1.DaysActive)
	assert.Equal(t, 1.5, r1.AvgDailyRunningHours)
	assert.Equal(t, "unassigned", robots[1].BuildingName)
}
