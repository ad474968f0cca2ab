// Package aggregate 提供对"带命名字段的同构记录集合"的通用分组/汇总原语。
// 空输入一律返回类型零值（0、空 map、空切片），从不返回 nil 数值、从不报错。
package aggregate

import (
	"sort"
	"time"
)

// GroupSum 按 key 分组求和。value 取不出数值的行按 0 计入。
func GroupSum[T any, K comparable](rows []T, key func(T) K, value func(T) float64) map[K]float64 {
	out := make(map[K]float64)
	for _, r := range rows {
		out[key(r)] += value(r)
	}
	return out
}

// GroupCount 按类别计数
func GroupCount[T any, K comparable](rows []T, category func(T) K) map[K]int {
	out := make(map[K]int)
	for _, r := range rows {
		out[category(r)]++
	}
	return out
}

// GroupRows 按 key 分组收集行
func GroupRows[T any, K comparable](rows []T, key func(T) K) map[K][]T {
	out := make(map[K][]T)
	for _, r := range rows {
		k := key(r)
		out[k] = append(out[k], r)
	}
	return out
}

// UniqueDates 统计时间字段覆盖的不同日历日数量。at 返回 false 的行跳过。
func UniqueDates[T any](rows []T, at func(T) (time.Time, bool)) int {
	seen := make(map[string]struct{})
	for _, r := range rows {
		t, ok := at(r)
		if !ok {
			continue
		}
		seen[t.Format("2006-01-02")] = struct{}{}
	}
	return len(seen)
}

// Entry TopN 结果项
type Entry[K comparable] struct {
	Key   K
	Value float64
}

// TopN 从分组汇总结果中取值最大的前 n 项，按值降序。
// 值相同时按 less 对键排序，保证输出稳定。
func TopN[K comparable](totals map[K]float64, n int, less func(a, b K) bool) []Entry[K] {
	entries := make([]Entry[K], 0, len(totals))
	for k, v := range totals {
		entries = append(entries, Entry[K]{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return less(entries[i].Key, entries[j].Key)
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// DateRangeDays 生成 [start, end] 的逐日日期序列（按日历日，含两端）。
// 用于显式补零：无任务的日期在图表和按星期平均时必须以 0 出现，不能缺席。
func DateRangeDays(start, end time.Time) []time.Time {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
	if e.Before(s) {
		return []time.Time{}
	}
	var days []time.Time
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Sum 求和
func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Mean 算术平均。空输入 → 0。
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

// Median 中位数。空输入 → 0。不修改调用方切片。
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
