package repository

import (
	"context"
	"time"

	"github.com/langchou/robogazer/internal/models"
)

// EventRepository 事件/告警仓库
type EventRepository struct {
	db *DB
}

// NewEventRepository 创建事件仓库
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// ListByRobots 按机器人分组取一个时间段内的事件记录
func (r *EventRepository) ListByRobots(ctx context.Context, robotSNs []string, start, end time.Time) ([]models.EventRecord, error) {
	query := `
		SELECT robot_sn, COALESCE(event_level, ''), COALESCE(event_type, ''), task_time
		FROM robot_events
		WHERE robot_sn = ANY($1) AND task_time >= $2 AND task_time <= $3
		ORDER BY task_time
	`
	rows, err := r.db.Pool.Query(ctx, query, robotSNs, start, end)
	if err != nil {
		return nil, &FetchError{Entity: "events", Robots: robotSNs, Err: err}
	}
	defer rows.Close()

	var events []models.EventRecord
	for rows.Next() {
		var e models.EventRecord
		if err := rows.Scan(&e.RobotSN, &e.EventLevel, &e.EventType, &e.TaskTime); err != nil {
			return nil, &FetchError{Entity: "events", Robots: robotSNs, Err: err}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
