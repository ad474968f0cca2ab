package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB 数据库连接池封装
type DB struct {
	Pool *pgxpool.Pool
}

// New 创建数据库连接
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	// 连接池配置
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// 测试连接
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close 关闭连接池
func (db *DB) Close() {
	db.Pool.Close()
}

// Migrate 执行数据库迁移
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		migrationCreateBuildings,
		migrationCreateRobots,
		migrationCreateRobotStatus,
		migrationCreateRobotTasks,
		migrationCreateChargingSessions,
		migrationCreateRobotEvents,
	}

	for _, m := range migrations {
		if _, err := db.Pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}

	return nil
}

// 数据库迁移 SQL
//
// 数据湖约定：robot_tasks.duration 是秒数文本，charging_sessions.duration
// 是 "Xh Ymin" 文本，power_gain 是 "+15%" 文本 —— 上游两套格式原样落库，
// 统一解析放在 normalize 包。
const migrationCreateBuildings = `
CREATE TABLE IF NOT EXISTS buildings (
    building_id VARCHAR(64) PRIMARY KEY,
    building_name VARCHAR(255) NOT NULL,
    city VARCHAR(128),
    address VARCHAR(512)
);
`

const migrationCreateRobots = `
CREATE TABLE IF NOT EXISTS robots (
    sn VARCHAR(64) PRIMARY KEY,
    name VARCHAR(255),
    model VARCHAR(64),
    location_id VARCHAR(64),
    first_task_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_robots_location_id ON robots(location_id);
`

const migrationCreateRobotStatus = `
CREATE TABLE IF NOT EXISTS robot_status (
    robot_sn VARCHAR(64) PRIMARY KEY,
    location_id VARCHAR(64),
    battery_level INT,
    water_level INT,
    sewage_level INT,
    status VARCHAR(64),
    reported_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const migrationCreateRobotTasks = `
CREATE TABLE IF NOT EXISTS robot_tasks (
    id BIGSERIAL PRIMARY KEY,
    robot_sn VARCHAR(64) NOT NULL,
    start_time TIMESTAMP WITH TIME ZONE,
    end_time TIMESTAMP WITH TIME ZONE,
    duration TEXT,
    status VARCHAR(128),
    actual_area DOUBLE PRECISION,
    plan_area DOUBLE PRECISION,
    mode VARCHAR(64),
    consumption DOUBLE PRECISION,
    water_consumption DOUBLE PRECISION,
    map_name VARCHAR(255),
    efficiency DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS idx_robot_tasks_robot_sn ON robot_tasks(robot_sn);
CREATE INDEX IF NOT EXISTS idx_robot_tasks_start_time ON robot_tasks(start_time);
`

const migrationCreateChargingSessions = `
CREATE TABLE IF NOT EXISTS charging_sessions (
    id BIGSERIAL PRIMARY KEY,
    robot_sn VARCHAR(64) NOT NULL,
    start_time TIMESTAMP WITH TIME ZONE,
    end_time TIMESTAMP WITH TIME ZONE,
    duration TEXT,
    power_gain TEXT,
    status VARCHAR(128)
);
CREATE INDEX IF NOT EXISTS idx_charging_sessions_robot_sn ON charging_sessions(robot_sn);
CREATE INDEX IF NOT EXISTS idx_charging_sessions_start_time ON charging_sessions(start_time);
`

const migrationCreateRobotEvents = `
CREATE TABLE IF NOT EXISTS robot_events (
    id BIGSERIAL PRIMARY KEY,
    robot_sn VARCHAR(64) NOT NULL,
    event_level VARCHAR(64),
    event_type VARCHAR(128),
    task_time TIMESTAMP WITH TIME ZONE
);
CREATE INDEX IF NOT EXISTS idx_robot_events_robot_sn ON robot_events(robot_sn);
CREATE INDEX IF NOT EXISTS idx_robot_events_task_time ON robot_events(task_time);
`
