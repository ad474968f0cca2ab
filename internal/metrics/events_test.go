package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langchou/robogazer/internal/models"
)

// TestEventAnalysisExactJoin 查找表可用时做精确的事件→楼宇关联，
// 查不到的机器人归入 unassigned
func TestEventAnalysisExactJoin(t *testing.T) {
	calc := newTestCalculator()
	p := Period{Start: day(1, 0), End: day(8, 0)}
	events := []models.EventRecord{
		{RobotSN: "R1", EventLevel: "error", EventType: "brush_stuck"},
		{RobotSN: "R1", EventLevel: "FATAL", EventType: "fall_risk"},
		{RobotSN: "R2", EventLevel: "warn", EventType: "low_water"},
		{RobotSN: "R9", EventLevel: "info", EventType: "boot"},
	}
	robotBuilding := map[string]string{"R1": "Alpha Tower", "R2": "Beta Plaza"}

	em, err := calc.EventAnalysis(events, robotBuilding, nil, p)
	require.NoError(t, err)
	assert.Equal(t, 4, em.TotalEvents)
	assert.Equal(t, 1, em.CriticalEvents)
	assert.Equal(t, 1, em.ErrorEvents)
	assert.Equal(t, 1, em.WarningEvents)
	assert.Equal(t, 1, em.InfoEvents)
	assert.False(t, em.BuildingDistributionApproximate)
	assert.Equal(t, 1, em.BuildingDistribution["Alpha Tower"]["error"])
	assert.Equal(t, 1, em.BuildingDistribution["Alpha Tower"]["critical"])
	assert.Equal(t, 1, em.BuildingDistribution["Beta Plaza"]["warning"])
	// R9 不在查找表里 → unassigned
	assert.Equal(t, 1, em.BuildingDistribution["unassigned"]["info"])
}

// TestEventAnalysisProportionalFallback 查找表不可用时按任务量占比近似分摊，
// 并置 approximate 标记
func TestEventAnalysisProportionalFallback(t *testing.T) {
	calc := newTestCalculator()
	p := Period{Start: day(1, 0), End: day(8, 0)}
	events := []models.EventRecord{
		{RobotSN: "R1", EventLevel: "error"},
		{RobotSN: "R1", EventLevel: "error"},
		{RobotSN: "R2", EventLevel: "error"},
		{RobotSN: "R3", EventLevel: "error"},
	}
	taskVolume := map[string]int{"Alpha Tower": 3, "Beta Plaza": 1}

	em, err := calc.EventAnalysis(events, nil, taskVolume, p)
	require.NoError(t, err)
	assert.True(t, em.BuildingDistributionApproximate)
	// 4 个 error 按 3:1 分摊
	assert.Equal(t, 3, em.BuildingDistribution["Alpha Tower"]["error"])
	assert.Equal(t, 1, em.BuildingDistribution["Beta Plaza"]["error"])
}

// TestEventAnalysisEmpty 空输入：零值块、不近似、无错误
func TestEventAnalysisEmpty(t *testing.T) {
	calc := newTestCalculator()
	p := Period{Start: day(1, 0), End: day(8, 0)}

	em, err := calc.EventAnalysis(nil, nil, nil, p)
	require.NoError(t, err)
	assert.Equal(t, 0, em.TotalEvents)
	assert.False(t, em.BuildingDistributionApproximate)
	assert.NotNil(t, em.BuildingDistribution)
	assert.Empty(t, em.BuildingDistribution)
}
