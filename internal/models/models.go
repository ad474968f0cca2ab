package models

import "time"

// Robot 机器人基础信息
type Robot struct {
	SN          string     `json:"sn" db:"sn"`
	Name        string     `json:"name" db:"name"`
	Model       string     `json:"model" db:"model"`
	LocationID  string     `json:"location_id" db:"location_id"`
	FirstTaskAt *time.Time `json:"first_task_at,omitempty" db:"first_task_at"` // 首次任务时间（租赁计费起点）
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Building 楼宇/场所信息
type Building struct {
	BuildingID   string `json:"building_id" db:"building_id"`
	BuildingName string `json:"building_name" db:"building_name"`
	City         string `json:"city" db:"city"`
	Address      string `json:"address" db:"address"`
}

// TaskRecord 一次清洁/维护任务执行记录
//
// 数据湖约定：duration 以秒为单位的文本存储，可能为空或非数字；
// 面积字段可能为 NULL。解析统一走 normalize 包，不在此处做任何转换。
type TaskRecord struct {
	RobotSN          string     `json:"robot_sn" db:"robot_sn"`
	StartTime        *time.Time `json:"start_time,omitempty" db:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty" db:"end_time"`
	Duration         string     `json:"duration" db:"duration"` // 秒（文本）
	Status           string     `json:"status" db:"status"`
	ActualArea       *float64   `json:"actual_area,omitempty" db:"actual_area"` // 平方米
	PlanArea         *float64   `json:"plan_area,omitempty" db:"plan_area"`     // 平方米
	Mode             string     `json:"mode" db:"mode"`
	Consumption      *float64   `json:"consumption,omitempty" db:"consumption"`             // kWh
	WaterConsumption *float64   `json:"water_consumption,omitempty" db:"water_consumption"` // 液体盎司
	MapName          string     `json:"map_name" db:"map_name"`
	Efficiency       *float64   `json:"efficiency,omitempty" db:"efficiency"`
}

// ChargingRecord 一次充电会话记录
//
// 注意：充电时长是 "Xh Ymin" 文本格式，与任务的秒数格式是上游的
// 两套真实约定，不做统一。
type ChargingRecord struct {
	RobotSN   string     `json:"robot_sn" db:"robot_sn"`
	StartTime *time.Time `json:"start_time,omitempty" db:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" db:"end_time"`
	Duration  string     `json:"duration" db:"duration"`     // "1h 30min"
	PowerGain string     `json:"power_gain" db:"power_gain"` // "+15%"
	Status    string     `json:"status" db:"status"`
}

// EventRecord 机器人上报的事件/告警
type EventRecord struct {
	RobotSN    string     `json:"robot_sn" db:"robot_sn"`
	EventLevel string     `json:"event_level" db:"event_level"`
	EventType  string     `json:"event_type" db:"event_type"`
	TaskTime   *time.Time `json:"task_time,omitempty" db:"task_time"`
}

// RobotStatusRecord 机器人当前状态快照
type RobotStatusRecord struct {
	RobotSN      string    `json:"robot_sn" db:"robot_sn"`
	LocationID   string    `json:"location_id" db:"location_id"`
	BatteryLevel *int      `json:"battery_level,omitempty" db:"battery_level"`
	WaterLevel   *int      `json:"water_level,omitempty" db:"water_level"`
	SewageLevel  *int      `json:"sewage_level,omitempty" db:"sewage_level"`
	Status       string    `json:"status" db:"status"`
	ReportedAt   time.Time `json:"reported_at" db:"reported_at"`
}

// RobotLocationRecord 机器人状态与楼宇信息的左连接结果
// (robot_status.location_id == buildings.building_id)
type RobotLocationRecord struct {
	RobotSN      string `json:"robot_sn" db:"robot_sn"`
	LocationID   string `json:"location_id" db:"location_id"`
	Status       string `json:"status" db:"status"`
	BatteryLevel *int   `json:"battery_level,omitempty" db:"battery_level"`
	BuildingName string `json:"building_name" db:"building_name"` // 未匹配到楼宇时为空
	City         string `json:"city" db:"city"`
}

// TaskHistoryRecord ROI 计算用的全量任务历史（最小列集）
type TaskHistoryRecord struct {
	RobotSN    string     `json:"robot_sn" db:"robot_sn"`
	StartTime  *time.Time `json:"start_time,omitempty" db:"start_time"`
	ActualArea *float64   `json:"actual_area,omitempty" db:"actual_area"` // 平方米
}
