// Package normalize 把上游各种原始存储格式转换为统一的数值单位。
// 所有函数对脏数据返回零值，绝不报错：源数据质量因机器人/场所而异，
// 解析失败属于预期的数据质量问题，在解析点直接吞掉。
package normalize

import (
	"strconv"
	"strings"
	"sync"
)

// 单位换算系数
const (
	SqftPerSqm       = 10.764 // 平方米 → 平方英尺
	FlozPerGallon    = 128.0  // 液体盎司 → 加仑
	SecondsPerHour   = 3600.0
	SecondsPerMinute = 60.0
)

// 任务状态分类
const (
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusInterrupted = "interrupted"
	StatusOther       = "other"
)

// 事件级别分类
const (
	LevelCritical = "critical"
	LevelError    = "error"
	LevelWarning  = "warning"
	LevelInfo     = "info"
)

// SecondsToHours 把文本格式的秒数转为小时。空/非数字 → 0。
func SecondsToHours(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	sec, err := strconv.ParseFloat(raw, 64)
	if err != nil || sec < 0 {
		return 0
	}
	return sec / SecondsPerHour
}

// DurationStringToMinutes 解析 "Xh Ymin" / "Ymin" / "Xh" 格式的充电时长，
// 纯数字按秒解释。空白或无法解析 → 0。
func DurationStringToMinutes(raw string) float64 {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return 0
	}

	// 纯数字：按秒解释
	if sec, err := strconv.ParseFloat(s, 64); err == nil {
		if sec < 0 {
			return 0
		}
		return sec / SecondsPerMinute
	}

	var total float64
	matched := false
	for _, field := range strings.Fields(s) {
		switch {
		case strings.HasSuffix(field, "min"):
			v, err := strconv.ParseFloat(strings.TrimSuffix(field, "min"), 64)
			if err != nil {
				return 0
			}
			total += v
			matched = true
		case strings.HasSuffix(field, "h"):
			v, err := strconv.ParseFloat(strings.TrimSuffix(field, "h"), 64)
			if err != nil {
				return 0
			}
			total += v * 60
			matched = true
		default:
			return 0
		}
	}
	if !matched || total < 0 {
		return 0
	}
	return total
}

// PercentString 解析 "+15%" 形式的电量增益。无法解析时 ok 为 false，
// 由调用方过滤，而不是用 0 充数拉低均值。
func PercentString(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "+")
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SqmToSqft 平方米 → 平方英尺
func SqmToSqft(sqm float64) float64 {
	return sqm * SqftPerSqm
}

// FlozToGallons 液体盎司 → 加仑
func FlozToGallons(floz float64) float64 {
	return floz / FlozPerGallon
}

// ClassifyStatus 按子串把自由文本状态归类为四类之一（大小写不敏感）。
func ClassifyStatus(raw string) string {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "end") || strings.Contains(s, "complet") || strings.Contains(s, "finish"):
		return StatusCompleted
	case strings.Contains(s, "cancel"):
		return StatusCancelled
	case strings.Contains(s, "interrupt") || strings.Contains(s, "abort"):
		return StatusInterrupted
	default:
		return StatusOther
	}
}

// ClassifyEventLevel 按子串把自由文本级别归类。"fatal" 视为 critical。
func ClassifyEventLevel(raw string) string {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "fatal") || strings.Contains(s, "critical"):
		return LevelCritical
	case strings.Contains(s, "error"):
		return LevelError
	case strings.Contains(s, "warn"):
		return LevelWarning
	default:
		return LevelInfo
	}
}

// DurationCache "Xh Ymin" 解析的显式缓存。纯性能优化，随时可清，
// 清空不影响任何计算结果。带锁，可跨 goroutine 共享。
type DurationCache struct {
	mu sync.Mutex
	m  map[string]float64
}

// NewDurationCache 创建缓存
func NewDurationCache() *DurationCache {
	return &DurationCache{m: make(map[string]float64)}
}

// Minutes 带缓存地解析充电时长
func (c *DurationCache) Minutes(raw string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.m[raw]; ok {
		return v
	}
	v := DurationStringToMinutes(raw)
	c.m[raw] = v
	return v
}

// Clear 清空缓存
func (c *DurationCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]float64)
}

// Len 当前缓存条目数
func (c *DurationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
