package input

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/config"
)

// toIntersectionConfig 转换路口配置项
// 功能：将YAML配置项转换为路口配置，补全省略的时长字段
// 参数：s-配置项，settings-运行参数存储
// 返回：完整的路口配置
// 说明：省略（零值）的时长字段用运行参数存储中的默认值补全，
// emergency_override省略时默认允许抢占
func toIntersectionConfig(s config.IntersectionSetup, settings *config.Store) entity.IntersectionConfig {
	cfg := entity.IntersectionConfig{
		ID:                     s.ID,
		Position:               toPoint(s.Position),
		Roads:                  s.Roads,
		DefaultGreenTime:       orDefault(s.DefaultGreenTime, settings.GetFloat("intersections.default_green_time", 10)),
		DefaultYellowTime:      orDefault(s.DefaultYellowTime, settings.GetFloat("intersections.default_yellow_time", 3)),
		DefaultPreGreenTime:    orDefault(s.DefaultPreGreenTime, settings.GetFloat("intersections.default_pre_green_time", 1.5)),
		DefaultRedTime:         orDefault(s.DefaultRedTime, settings.GetFloat("intersections.default_red_time", 10)),
		MaxGreenTime:           orDefault(s.MaxGreenTime, settings.GetFloat("intersections.max_green_time", 35)),
		MinGreenTime:           orDefault(s.MinGreenTime, settings.GetFloat("intersections.min_green_time", 3)),
		PedestrianCrossingTime: orDefault(s.PedestrianCrossingTime, settings.GetFloat("intersections.pedestrian_crossing_time", 15)),
		EmergencyOverride:      s.EmergencyOverride == nil || *s.EmergencyOverride,
	}
	if cfg.MinGreenTime > cfg.MaxGreenTime {
		log.Panicf("intersection %s: min_green_time %v exceeds max_green_time %v, please check config",
			cfg.ID, cfg.MinGreenTime, cfg.MaxGreenTime)
	}
	return cfg
}

// toSensorInit 转换传感器配置项
// 功能：将YAML配置项转换为传感器初始观测
func toSensorInit(s config.SensorSetup) entity.SensorInit {
	return entity.SensorInit{
		ID:           s.ID,
		Position:     toPoint(s.Position),
		VehicleCount: s.VehicleCount,
		AverageSpeed: s.AverageSpeed,
		QueueLength:  s.QueueLength,
		IsActive:     !s.Inactive,
	}
}

// toPoint 将二元组转换为几何点
func toPoint(xy [2]float64) geometry.Point {
	return geometry.Point{X: xy[0], Y: xy[1]}
}

// orDefault 零值回退
// 功能：v为正值时返回v，否则返回def
func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
