package entity

import "time"

// SensorReadout 传感器观测快照，单写线程在扰动后发布，读者不得修改
type SensorReadout struct {
	ID           string     `json:"id" bson:"id"`
	Position     [2]float64 `json:"position" bson:"position"`
	VehicleCount int32      `json:"vehicle_count" bson:"vehicle_count"`
	AverageSpeed float64    `json:"average_speed" bson:"average_speed"`
	QueueLength  int32      `json:"queue_length" bson:"queue_length"`
	LastUpdate   time.Time  `json:"last_update" bson:"last_update"`
	IsActive     bool       `json:"is_active" bson:"is_active"`
}

// Anomaly 车流计数异常记录
type Anomaly struct {
	SensorID      string     `json:"sensor_id" bson:"sensor_id"`
	Kind          string     `json:"kind" bson:"kind"`
	Value         int32      `json:"value" bson:"value"`
	ExpectedRange [2]float64 `json:"expected_range" bson:"expected_range"`
	Timestamp     time.Time  `json:"timestamp" bson:"timestamp"`
}

// Analytics 单步交通分析结果
type Analytics struct {
	TotalVehicles   int32     `json:"total_vehicles" bson:"total_vehicles"`
	AverageSpeed    float64   `json:"average_speed" bson:"average_speed"`
	CongestionLevel float64   `json:"congestion_level" bson:"congestion_level"`
	Anomalies       []Anomaly `json:"anomalies" bson:"anomalies"`
}

// IntersectionStateInfo 路口信号灯状态摘要
type IntersectionStateInfo struct {
	State      LightState `json:"state" bson:"state"`
	Duration   float64    `json:"duration" bson:"duration"`
	CycleCount int32      `json:"cycle_count" bson:"cycle_count"`
}

// StepSnapshot 单步执行后的全局快照
type StepSnapshot struct {
	Step               int32                            `json:"step" bson:"step"`
	Timestamp          time.Time                        `json:"timestamp" bson:"timestamp"`
	SystemStatus       SystemStatus                     `json:"system_status" bson:"system_status"`
	Weather            WeatherCondition                 `json:"weather" bson:"weather"`
	Analytics          Analytics                        `json:"analytics" bson:"analytics"`
	IntersectionStates map[string]IntersectionStateInfo `json:"intersection_states" bson:"intersection_states"`
	ActiveEmergencies  int                              `json:"active_emergencies" bson:"active_emergencies"`
}

// IntersectionDoc 路口持久化摘要
type IntersectionDoc struct {
	IntersectionID   string     `json:"intersection_id" bson:"intersection_id"`
	CurrentState     LightState `json:"current_state" bson:"current_state"`
	CycleCount       int32      `json:"cycle_count" bson:"cycle_count"`
	AdaptationFactor float64    `json:"adaptation_factor" bson:"adaptation_factor"`
}

// VehicleDoc 车辆对外输出格式
type VehicleDoc struct {
	ID             string         `json:"id" bson:"id"`
	Type           VehicleType    `json:"type" bson:"type"`
	Speed          float64        `json:"speed" bson:"speed"`
	Position       [2]float64     `json:"position" bson:"position"`
	Destination    [2]float64     `json:"destination" bson:"destination"`
	Priority       int            `json:"priority" bson:"priority"`
	EmergencyLevel EmergencyLevel `json:"emergency_level" bson:"emergency_level"`
	Direction      Direction      `json:"direction" bson:"direction"`
	Timestamp      time.Time      `json:"timestamp" bson:"timestamp"`
}

// Doc 产生车辆的对外输出格式
func (v *Vehicle) Doc() VehicleDoc {
	return VehicleDoc{
		ID:             v.ID,
		Type:           v.Type,
		Speed:          v.Speed,
		Position:       PointArray(v.Position),
		Destination:    PointArray(v.Destination),
		Priority:       v.Priority,
		EmergencyLevel: v.Level,
		Direction:      v.Direction,
		Timestamp:      v.Timestamp,
	}
}

// MetricsSummary 性能指标汇总
type MetricsSummary struct {
	TotalSteps             int64   `json:"total_steps" bson:"total_steps"`
	TotalVehiclesProcessed int64   `json:"total_vehicles_processed" bson:"total_vehicles_processed"`
	EmergencyResponses     int64   `json:"emergency_responses" bson:"emergency_responses"`
	AnomaliesDetected      int64   `json:"anomalies_detected" bson:"anomalies_detected"`
	AverageResponseTime    float64 `json:"average_response_time" bson:"average_response_time"`
	SystemUptime           float64 `json:"system_uptime" bson:"system_uptime"`
	AverageStepTime        float64 `json:"average_step_time" bson:"average_step_time"`
	StepsPerSecond         float64 `json:"steps_per_second" bson:"steps_per_second"`
}

// HealthReport 系统健康检查结果
type HealthReport struct {
	Status string   `json:"status" bson:"status"`
	Issues []string `json:"issues" bson:"issues"`
}

// StatusBlock 系统状态查询结果
type StatusBlock struct {
	Step              int32            `json:"step" bson:"step"`
	SystemStatus      SystemStatus     `json:"system_status" bson:"system_status"`
	Weather           WeatherCondition `json:"weather" bson:"weather"`
	Analytics         Analytics        `json:"analytics" bson:"analytics"`
	IntersectionCount int              `json:"intersection_count" bson:"intersection_count"`
	SensorCount       int              `json:"sensor_count" bson:"sensor_count"`
	ActiveEmergencies int              `json:"active_emergencies" bson:"active_emergencies"`
	Performance       MetricsSummary   `json:"performance" bson:"performance"`
	Health            HealthReport     `json:"health" bson:"health"`
}

// StateDocument 系统状态持久化文档
type StateDocument struct {
	Timestamp     time.Time         `json:"timestamp" bson:"timestamp"`
	SystemStatus  StatusBlock       `json:"system_status" bson:"system_status"`
	Intersections []IntersectionDoc `json:"intersections" bson:"intersections"`
	Sensors       []SensorReadout   `json:"sensors" bson:"sensors"`
	StepLog       []StepSnapshot    `json:"step_log" bson:"step_log"`
}
