package repository

import (
	"context"
	"fmt"

	"github.com/langchou/robogazer/internal/models"
)

// RobotRepository 机器人/状态/楼宇仓库
type RobotRepository struct {
	db *DB
}

// NewRobotRepository 创建机器人仓库
func NewRobotRepository(db *DB) *RobotRepository {
	return &RobotRepository{db: db}
}

// List 获取所有在册机器人
func (r *RobotRepository) List(ctx context.Context) ([]models.Robot, error) {
	query := `
		SELECT sn, COALESCE(name, ''), COALESCE(model, ''), COALESCE(location_id, ''), first_task_at, created_at, updated_at
		FROM robots ORDER BY sn
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list robots: %w", err)
	}
	defer rows.Close()

	var robots []models.Robot
	for rows.Next() {
		var robot models.Robot
		err := rows.Scan(&robot.SN, &robot.Name, &robot.Model, &robot.LocationID, &robot.FirstTaskAt, &robot.CreatedAt, &robot.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan robot: %w", err)
		}
		robots = append(robots, robot)
	}
	return robots, rows.Err()
}

// GetBySN 按序列号获取机器人
func (r *RobotRepository) GetBySN(ctx context.Context, sn string) (*models.Robot, error) {
	query := `
		SELECT sn, COALESCE(name, ''), COALESCE(model, ''), COALESCE(location_id, ''), first_task_at, created_at, updated_at
		FROM robots WHERE sn = $1
	`
	robot := &models.Robot{}
	err := r.db.Pool.QueryRow(ctx, query, sn).Scan(
		&robot.SN, &robot.Name, &robot.Model, &robot.LocationID, &robot.FirstTaskAt, &robot.CreatedAt, &robot.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get robot by sn: %w", err)
	}
	return robot, nil
}

// ListStatus 按机器人分组取当前状态快照
func (r *RobotRepository) ListStatus(ctx context.Context, robotSNs []string) ([]models.RobotStatusRecord, error) {
	query := `
		SELECT robot_sn, COALESCE(location_id, ''), battery_level, water_level, sewage_level, COALESCE(status, ''), reported_at
		FROM robot_status WHERE robot_sn = ANY($1)
	`
	rows, err := r.db.Pool.Query(ctx, query, robotSNs)
	if err != nil {
		return nil, &FetchError{Entity: "status", Robots: robotSNs, Err: err}
	}
	defer rows.Close()

	var statuses []models.RobotStatusRecord
	for rows.Next() {
		var s models.RobotStatusRecord
		err := rows.Scan(&s.RobotSN, &s.LocationID, &s.BatteryLevel, &s.WaterLevel, &s.SewageLevel, &s.Status, &s.ReportedAt)
		if err != nil {
			return nil, &FetchError{Entity: "status", Robots: robotSNs, Err: err}
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

// ListLocations 机器人状态左连接楼宇表（robot_status.location_id = buildings.building_id）。
// 未匹配到楼宇的机器人 building_name/city 为空串，不会被丢掉。
func (r *RobotRepository) ListLocations(ctx context.Context, robotSNs []string) ([]models.RobotLocationRecord, error) {
	query := `
		SELECT rs.robot_sn, COALESCE(rs.location_id, ''), COALESCE(rs.status, ''), rs.battery_level,
			COALESCE(b.building_name, ''), COALESCE(b.city, '')
		FROM robot_status rs
		LEFT JOIN buildings b ON rs.location_id = b.building_id
		WHERE rs.robot_sn = ANY($1)
	`
	rows, err := r.db.Pool.Query(ctx, query, robotSNs)
	if err != nil {
		return nil, &FetchError{Entity: "locations", Robots: robotSNs, Err: err}
	}
	defer rows.Close()

	var locations []models.RobotLocationRecord
	for rows.Next() {
		var l models.RobotLocationRecord
		err := rows.Scan(&l.RobotSN, &l.LocationID, &l.Status, &l.BatteryLevel, &l.BuildingName, &l.City)
		if err != nil {
			return nil, &FetchError{Entity: "locations", Robots: robotSNs, Err: err}
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// ListBuildings 获取所有楼宇
func (r *RobotRepository) ListBuildings(ctx context.Context) ([]models.Building, error) {
	query := `
		SELECT building_id, building_name, COALESCE(city, ''), COALESCE(address, '')
		FROM buildings ORDER BY building_name
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	defer rows.Close()

	var buildings []models.Building
	for rows.Next() {
		var b models.Building
		if err := rows.Scan(&b.BuildingID, &b.BuildingName, &b.City, &b.Address); err != nil {
			return nil, fmt.Errorf("scan building: %w", err)
		}
		buildings = append(buildings, b)
	}
	return buildings, rows.Err()
}
