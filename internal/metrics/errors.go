package metrics

import (
	"errors"
	"fmt"
	"strings"
)

var errInvalidPeriod = errors.New("invalid period")

// ComputeError 指标块计算失败。编排器在块边界捕获它并换成占位结构，
// 编排流程继续；它只用于预期内的输入问题，程序缺陷应当 panic 而不是被吞掉。
type ComputeError struct {
	Block string
	Err   error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("compute %s: %v", e.Block, e.Err)
}

func (e *ComputeError) Unwrap() error {
	return e.Err
}

// containsFold 大小写不敏感的子串匹配
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
