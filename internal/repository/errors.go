package repository

import "fmt"

// FetchError 某一批机器人分组的取数失败。数据服务记录日志后继续取
// 其余分组的数据，只有所有分组全部失败才放弃整次取数。
type FetchError struct {
	Entity string   // 实体类型（tasks/charging/events/...）
	Robots []string // 失败分组覆盖的机器人
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s for %d robots: %v", e.Entity, len(e.Robots), e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
