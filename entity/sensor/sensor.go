package sensor

import (
	"time"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/randengine"
)

// 观测随机游走的扰动范围与物理约束
const (
	countJitterLo = -2   // 车流计数扰动下界
	countJitterHi = 3    // 车流计数扰动上界
	speedJitter   = 5.0  // 车速扰动幅度（km/h）
	minSpeed      = 5.0  // 车速下界（km/h）
	maxSpeed      = 80.0 // 车速上界（km/h）
	queueJitterLo = -1   // 排队长度扰动下界
	queueJitterHi = 2    // 排队长度扰动上界
	maxQueue      = 20   // 排队长度上界
)

// Sensor 交通流传感器
// 功能：维护单个观测点的车流计数、平均车速与排队长度
// 说明：观测通过有界随机游走演化，模拟真实车流的波动
type Sensor struct {
	id       string         // 传感器ID
	position geometry.Point // 安装位置

	vehicleCount int32     // 车流计数
	averageSpeed float64   // 平均车速（km/h）
	queueLength  int32     // 排队长度
	lastUpdate   time.Time // 最近观测时间
	isActive     bool      // 是否在线
}

// newSensor 创建传感器
func newSensor(init entity.SensorInit) *Sensor {
	return &Sensor{
		id:           init.ID,
		position:     init.Position,
		vehicleCount: init.VehicleCount,
		averageSpeed: init.AverageSpeed,
		queueLength:  init.QueueLength,
		lastUpdate:   time.Now(),
		isActive:     init.IsActive,
	}
}

// perturb 观测随机游走
// 功能：对三路观测量施加随机扰动并约束在物理范围内
// 算法说明：
// 1. 车流计数：加[-2, 3]内的随机整数，下限0
// 2. 平均车速：加[-5, 5)内的随机扰动，约束在[5, 80] km/h
// 3. 排队长度：加[-1, 2]内的随机整数，约束在[0, 20]
// 4. 刷新观测时间
// 说明：扰动顺序固定，保证相同种子下序列可复现
func (s *Sensor) perturb(e *randengine.Engine) {
	s.vehicleCount += int32(e.IntBetween(countJitterLo, countJitterHi))
	if s.vehicleCount < 0 {
		s.vehicleCount = 0
	}
	s.averageSpeed = lo.Clamp(s.averageSpeed+e.Float64Between(-speedJitter, speedJitter), minSpeed, maxSpeed)
	s.queueLength = lo.Clamp(s.queueLength+int32(e.IntBetween(queueJitterLo, queueJitterHi)), 0, maxQueue)
	s.lastUpdate = time.Now()
}

// ID 获取传感器ID
func (s *Sensor) ID() string {
	return s.id
}

// Position 获取传感器位置
func (s *Sensor) Position() geometry.Point {
	return s.position
}

// IsActive 是否在线
func (s *Sensor) IsActive() bool {
	return s.isActive
}

// Readout 产生当前观测快照
func (s *Sensor) Readout() entity.SensorReadout {
	return entity.SensorReadout{
		ID:           s.id,
		Position:     entity.PointArray(s.position),
		VehicleCount: s.vehicleCount,
		AverageSpeed: s.averageSpeed,
		QueueLength:  s.queueLength,
		LastUpdate:   s.lastUpdate,
		IsActive:     s.isActive,
	}
}
