package repository

import (
	"context"
	"time"

	"github.com/langchou/robogazer/internal/models"
)

// ChargingRepository 充电会话仓库
type ChargingRepository struct {
	db *DB
}

// NewChargingRepository 创建充电仓库
func NewChargingRepository(db *DB) *ChargingRepository {
	return &ChargingRepository{db: db}
}

// ListByRobots 按机器人分组取一个时间段内的充电会话。
// duration/power_gain 按上游原始文本返回，解析在 normalize 包。
func (r *ChargingRepository) ListByRobots(ctx context.Context, robotSNs []string, start, end time.Time) ([]models.ChargingRecord, error) {
	query := `
		SELECT robot_sn, start_time, end_time, COALESCE(duration, ''), COALESCE(power_gain, ''), COALESCE(status, '')
		FROM charging_sessions
		WHERE robot_sn = ANY($1) AND start_time >= $2 AND start_time <= $3
		ORDER BY start_time
	`
	rows, err := r.db.Pool.Query(ctx, query, robotSNs, start, end)
	if err != nil {
		return nil, &FetchError{Entity: "charging", Robots: robotSNs, Err: err}
	}
	defer rows.Close()

	var records []models.ChargingRecord
	for rows.Next() {
		var c models.ChargingRecord
		err := rows.Scan(&c.RobotSN, &c.StartTime, &c.EndTime, &c.Duration, &c.PowerGain, &c.Status)
		if err != nil {
			return nil, &FetchError{Entity: "charging", Robots: robotSNs, Err: err}
		}
		records = append(records, c)
	}
	return records, rows.Err()
}
