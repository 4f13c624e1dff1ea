package entity

import (
	"fmt"
	"strings"
	"time"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/google/uuid"
)

// LightState 信号灯状态
type LightState string

const (
	LightRed            LightState = "RED"             // 红灯
	LightYellow         LightState = "YELLOW"          // 黄灯
	LightGreen          LightState = "GREEN"           // 绿灯
	LightPreGreen       LightState = "PRE_GREEN"       // 预绿（红转绿过渡）
	LightFlashingRed    LightState = "FLASHING_RED"    // 红闪
	LightFlashingYellow LightState = "FLASHING_YELLOW" // 黄闪（断电降级）
)

// VehicleType 车辆类型
type VehicleType string

const (
	VehicleCar        VehicleType = "CAR"        // 小汽车
	VehicleJeep       VehicleType = "JEEP"       // 吉普车
	VehicleTruck      VehicleType = "TRUCK"      // 卡车
	VehicleBus        VehicleType = "BUS"        // 公交车
	VehicleMotorcycle VehicleType = "MOTORCYCLE" // 摩托车
	VehicleEmergency  VehicleType = "EMERGENCY"  // 应急车辆
	VehiclePedestrian VehicleType = "PEDESTRIAN" // 行人
)

var vehicleTypes = map[string]VehicleType{
	"CAR":        VehicleCar,
	"JEEP":       VehicleJeep,
	"TRUCK":      VehicleTruck,
	"BUS":        VehicleBus,
	"MOTORCYCLE": VehicleMotorcycle,
	"EMERGENCY":  VehicleEmergency,
	"PEDESTRIAN": VehiclePedestrian,
}

// ParseVehicleType 解析车辆类型字符串，大小写不敏感
func ParseVehicleType(s string) (VehicleType, error) {
	if t, ok := vehicleTypes[strings.ToUpper(s)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown vehicle type %q", s)
}

// EmergencyLevel 紧急程度
type EmergencyLevel string

const (
	LevelNone     EmergencyLevel = "NONE"     // 非紧急
	LevelLow      EmergencyLevel = "LOW"      // 低
	LevelMedium   EmergencyLevel = "MEDIUM"   // 中
	LevelHigh     EmergencyLevel = "HIGH"     // 高
	LevelCritical EmergencyLevel = "CRITICAL" // 危急
)

var emergencyLevels = map[string]EmergencyLevel{
	"NONE":     LevelNone,
	"LOW":      LevelLow,
	"MEDIUM":   LevelMedium,
	"HIGH":     LevelHigh,
	"CRITICAL": LevelCritical,
}

// ParseEmergencyLevel 解析紧急程度字符串，大小写不敏感
func ParseEmergencyLevel(s string) (EmergencyLevel, error) {
	if l, ok := emergencyLevels[strings.ToUpper(s)]; ok {
		return l, nil
	}
	return "", fmt.Errorf("unknown emergency level %q", s)
}

// WeatherCondition 天气状况
type WeatherCondition string

const (
	WeatherClear WeatherCondition = "CLEAR" // 晴
	WeatherRain  WeatherCondition = "RAIN"  // 雨
	WeatherSnow  WeatherCondition = "SNOW"  // 雪
	WeatherFog   WeatherCondition = "FOG"   // 雾
	WeatherStorm WeatherCondition = "STORM" // 风暴
	WeatherNight WeatherCondition = "NIGHT" // 夜间
)

var weatherConditions = map[string]WeatherCondition{
	"CLEAR": WeatherClear,
	"RAIN":  WeatherRain,
	"SNOW":  WeatherSnow,
	"FOG":   WeatherFog,
	"STORM": WeatherStorm,
	"NIGHT": WeatherNight,
}

// ParseWeather 解析天气状况字符串，大小写不敏感
func ParseWeather(s string) (WeatherCondition, error) {
	if w, ok := weatherConditions[strings.ToUpper(s)]; ok {
		return w, nil
	}
	return "", fmt.Errorf("unknown weather condition %q", s)
}

// Precipitation 是否为降水天气
func (w WeatherCondition) Precipitation() bool {
	return w == WeatherRain || w == WeatherSnow || w == WeatherStorm
}

// Scenario 预设场景
type Scenario string

const (
	ScenarioDay                Scenario = "DAY"                 // 日间
	ScenarioNight              Scenario = "NIGHT"               // 夜间
	ScenarioRushHour           Scenario = "RUSH_HOUR"           // 早晚高峰
	ScenarioHeavyRain          Scenario = "HEAVY_RAIN"          // 暴雨
	ScenarioSnowBlizzard       Scenario = "SNOW_BLIZZARD"       // 暴雪
	ScenarioDenseFog           Scenario = "DENSE_FOG"           // 浓雾
	ScenarioPowerOutage        Scenario = "POWER_OUTAGE"        // 断电
	ScenarioPedestrianScramble Scenario = "PEDESTRIAN_SCRAMBLE" // 行人全向过街
)

var scenarios = map[string]Scenario{
	"DAY":                 ScenarioDay,
	"NIGHT":               ScenarioNight,
	"RUSH_HOUR":           ScenarioRushHour,
	"HEAVY_RAIN":          ScenarioHeavyRain,
	"SNOW_BLIZZARD":       ScenarioSnowBlizzard,
	"DENSE_FOG":           ScenarioDenseFog,
	"POWER_OUTAGE":        ScenarioPowerOutage,
	"PEDESTRIAN_SCRAMBLE": ScenarioPedestrianScramble,
}

// ParseScenario 解析场景字符串，大小写不敏感
func ParseScenario(s string) (Scenario, error) {
	if sc, ok := scenarios[strings.ToUpper(s)]; ok {
		return sc, nil
	}
	return "", fmt.Errorf("unknown scenario %q", s)
}

// Weather 场景对应的天气状况
func (s Scenario) Weather() WeatherCondition {
	switch s {
	case ScenarioHeavyRain:
		return WeatherRain
	case ScenarioSnowBlizzard:
		return WeatherSnow
	case ScenarioDenseFog:
		return WeatherFog
	case ScenarioNight:
		return WeatherNight
	default:
		return WeatherClear
	}
}

// SystemStatus 系统运行状态
type SystemStatus string

const (
	StatusNormal      SystemStatus = "NORMAL"      // 正常
	StatusMaintenance SystemStatus = "MAINTENANCE" // 维护
	StatusEmergency   SystemStatus = "EMERGENCY"   // 应急
	StatusFailure     SystemStatus = "FAILURE"     // 故障（断电场景）
)

// Direction 行驶方向
type Direction string

const (
	DirectionNorth   Direction = "NORTH"
	DirectionSouth   Direction = "SOUTH"
	DirectionEast    Direction = "EAST"
	DirectionWest    Direction = "WEST"
	DirectionUnknown Direction = "UNKNOWN"
)

var directions = map[string]Direction{
	"NORTH":   DirectionNorth,
	"SOUTH":   DirectionSouth,
	"EAST":    DirectionEast,
	"WEST":    DirectionWest,
	"UNKNOWN": DirectionUnknown,
}

// ParseDirection 解析方向字符串，大小写不敏感
func ParseDirection(s string) (Direction, error) {
	if d, ok := directions[strings.ToUpper(s)]; ok {
		return d, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// Vehicle 车辆信息，登记于应急调度系统
type Vehicle struct {
	ID          string         // 车辆ID
	Type        VehicleType    // 车辆类型
	Speed       float64        // 当前速度（km/h）
	Position    geometry.Point // 当前位置
	Destination geometry.Point // 目的地
	Priority    int            // 调度优先级，登记时计算
	Level       EmergencyLevel // 紧急程度
	Direction   Direction      // 行驶方向
	Timestamp   time.Time      // 登记时间
}

// NewVehicle 创建车辆并填充默认字段
func NewVehicle() *Vehicle {
	return &Vehicle{
		ID:        uuid.NewString(),
		Type:      VehicleCar,
		Level:     LevelNone,
		Direction: DirectionUnknown,
		Timestamp: time.Now(),
	}
}

// IntersectionConfig 路口配置
type IntersectionConfig struct {
	ID                     string         // 路口ID
	Position               geometry.Point // 路口位置
	Roads                  []string       // 接入道路名称
	DefaultGreenTime       float64        // 默认绿灯时长（秒）
	DefaultYellowTime      float64        // 默认黄灯时长（秒）
	DefaultPreGreenTime    float64        // 默认预绿时长（秒）
	DefaultRedTime         float64        // 默认红灯时长（秒）
	MaxGreenTime           float64        // 绿灯时长上限（秒）
	MinGreenTime           float64        // 绿灯时长下限（秒）
	PedestrianCrossingTime float64        // 行人过街时长（秒）
	EmergencyOverride      bool           // 是否允许紧急车辆抢占
}

// SensorInit 传感器初始观测
type SensorInit struct {
	ID           string         // 传感器ID
	Position     geometry.Point // 安装位置
	VehicleCount int32          // 初始车流计数
	AverageSpeed float64        // 初始平均车速（km/h）
	QueueLength  int32          // 初始排队长度
	IsActive     bool           // 是否在线
}

// PointArray 将几何点转换为序列化用的二元组
func PointArray(p geometry.Point) [2]float64 {
	return [2]float64{p.X, p.Y}
}
