package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSecondsToHours 秒数文本转小时：脏数据一律归零
func TestSecondsToHours(t *testing.T) {
	assert.Equal(t, 1.0, SecondsToHours("3600"))
	assert.Equal(t, 0.5, SecondsToHours("1800"))
	assert.Equal(t, 0.5, SecondsToHours("  1800  "))

	// 空串/非数字/负数都不是错误，是归零
	assert.Equal(t, 0.0, SecondsToHours(""))
	assert.Equal(t, 0.0, SecondsToHours("abc"))
	assert.Equal(t, 0.0, SecondsToHours("-5"))
}

// TestDurationStringToMinutes 充电时长 "Xh Ymin" 解析
func TestDurationStringToMinutes(t *testing.T) {
	assert.Equal(t, 90.0, DurationStringToMinutes("1h 30min"))
	assert.Equal(t, 45.0, DurationStringToMinutes("45min"))
	assert.Equal(t, 120.0, DurationStringToMinutes("2h"))
	assert.Equal(t, 90.0, DurationStringToMinutes("1H 30MIN"))

	// 纯数字按秒解释
	assert.Equal(t, 60.0, DurationStringToMinutes("3600"))

	assert.Equal(t, 0.0, DurationStringToMinutes(""))
	assert.Equal(t, 0.0, DurationStringToMinutes("junk"))
	assert.Equal(t, 0.0, DurationStringToMinutes("-3600"))
	assert.Equal(t, 0.0, DurationStringToMinutes("1h xmin"))
}

// TestPercentString 电量增益解析：无法解析时 ok=false，由调用方过滤
func TestPercentString(t *testing.T) {
	v, ok := PercentString("+15%")
	assert.True(t, ok)
	assert.Equal(t, 15.0, v)

	v, ok = PercentString("20%")
	assert.True(t, ok)
	assert.Equal(t, 20.0, v)

	v, ok = PercentString("-5%")
	assert.True(t, ok)
	assert.Equal(t, -5.0, v)

	_, ok = PercentString("")
	assert.False(t, ok)
	_, ok = PercentString("abc")
	assert.False(t, ok)
}

// TestUnitConversions 面积/水量单位换算
func TestUnitConversions(t *testing.T) {
	assert.InDelta(t, 1076.4, SqmToSqft(100), 0.001)
	assert.Equal(t, 2.0, FlozToGallons(256))
	assert.Equal(t, 0.0, SqmToSqft(0))
}

// TestClassifyStatus 自由文本状态按子串归类，大小写不敏感
func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, StatusCompleted, ClassifyStatus("Task ended"))
	assert.Equal(t, StatusCompleted, ClassifyStatus("COMPLETED"))
	assert.Equal(t, StatusCompleted, ClassifyStatus("finished ok"))
	assert.Equal(t, StatusCancelled, ClassifyStatus("Cancelled by user"))
	assert.Equal(t, StatusInterrupted, ClassifyStatus("interrupted"))
	assert.Equal(t, StatusInterrupted, ClassifyStatus("aborted"))
	assert.Equal(t, StatusOther, ClassifyStatus("running"))
	assert.Equal(t, StatusOther, ClassifyStatus(""))
}

// TestClassifyEventLevel fatal 归入 critical
func TestClassifyEventLevel(t *testing.T) {
	assert.Equal(t, LevelCritical, ClassifyEventLevel("FATAL"))
	assert.Equal(t, LevelCritical, ClassifyEventLevel("critical"))
	assert.Equal(t, LevelError, ClassifyEventLevel("Error"))
	assert.Equal(t, LevelWarning, ClassifyEventLevel("warn"))
	assert.Equal(t, LevelInfo, ClassifyEventLevel("notice"))
	assert.Equal(t, LevelInfo, ClassifyEventLevel(""))
}

// TestDurationCache 缓存命中与清空都不影响解析结果
func TestDurationCache(t *testing.T) {
	c := NewDurationCache()

	assert.Equal(t, 90.0, c.Minutes("1h 30min"))
	assert.Equal(t, 90.0, c.Minutes("1h 30min"))
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 90.0, c.Minutes("1h 30min"))
}
