package repository

import (
	"context"
	"time"

	"github.com/langchou/robogazer/internal/models"
)

// TaskRepository 任务记录仓库
type TaskRepository struct {
	db *DB
}

// NewTaskRepository 创建任务仓库
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// ListByRobots 按机器人分组取一个时间段内的任务记录。
// 只取计算器消费的列（列裁剪是性能要求，宽表全列扫描在大账期下不可接受）。
func (r *TaskRepository) ListByRobots(ctx context.Context, robotSNs []string, start, end time.Time) ([]models.TaskRecord, error) {
	query := `
		SELECT robot_sn, start_time, end_time, COALESCE(duration, ''), COALESCE(status, ''),
			actual_area, plan_area, COALESCE(mode, ''), consumption, water_consumption,
			COALESCE(map_name, ''), efficiency
		FROM robot_tasks
		WHERE robot_sn = ANY($1) AND start_time >= $2 AND start_time <= $3
		ORDER BY start_time
	`
	rows, err := r.db.Pool.Query(ctx, query, robotSNs, start, end)
	if err != nil {
		return nil, &FetchError{Entity: "tasks", Robots: robotSNs, Err: err}
	}
	defer rows.Close()

	var tasks []models.TaskRecord
	for rows.Next() {
		var t models.TaskRecord
		err := rows.Scan(
			&t.RobotSN,
			&t.StartTime,
			&t.EndTime,
			&t.Duration,
			&t.Status,
			&t.ActualArea,
			&t.PlanArea,
			&t.Mode,
			&t.Consumption,
			&t.WaterConsumption,
			&t.MapName,
			&t.Efficiency,
		)
		if err != nil {
			return nil, &FetchError{Entity: "tasks", Robots: robotSNs, Err: err}
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ListHistory 取全量任务历史的最小列集（ROI 专用：序列号、开始时间、实际面积）。
// 截至 until，不限起始 —— ROI 是部署以来的累计指标。
func (r *TaskRepository) ListHistory(ctx context.Context, robotSNs []string, until time.Time) ([]models.TaskHistoryRecord, error) {
	query := `
		SELECT robot_sn, start_time, actual_area
		FROM robot_tasks
		WHERE robot_sn = ANY($1) AND start_time <= $2
		ORDER BY start_time
	`
	rows, err := r.db.Pool.Query(ctx, query, robotSNs, until)
	if err != nil {
		return nil, &FetchError{Entity: "task_history", Robots: robotSNs, Err: err}
	}
	defer rows.Close()

	var history []models.TaskHistoryRecord
	for rows.Next() {
		var h models.TaskHistoryRecord
		if err := rows.Scan(&h.RobotSN, &h.StartTime, &h.ActualArea); err != nil {
			return nil, &FetchError{Entity: "task_history", Robots: robotSNs, Err: err}
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
