package sensor

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/randengine"
)

// SensorManager 传感器管理器
// 功能：管理所有传感器，驱动观测随机游走并发布观测快照
type SensorManager struct {
	data     map[string]*Sensor     // ID到传感器的映射
	sensors  []*Sensor              // 按注册顺序排列的传感器
	readouts []entity.SensorReadout // 最近一次扰动后发布的观测快照
}

// NewManager 创建传感器管理器
func NewManager() *SensorManager {
	return &SensorManager{
		data: make(map[string]*Sensor),
	}
}

// Init 初始化
// 功能：根据初始观测构建所有传感器并发布首次快照
func (m *SensorManager) Init(inits []entity.SensorInit) {
	m.sensors = lo.Map(inits, func(init entity.SensorInit, _ int) *Sensor {
		return newSensor(init)
	})
	m.data = lo.SliceToMap(m.sensors, func(s *Sensor) (string, *Sensor) {
		return s.id, s
	})
	m.refreshReadouts()
}

// Get 获取传感器
// 说明：若id不存在则panic
func (m *SensorManager) Get(id string) entity.ISensor {
	if s, ok := m.data[id]; ok {
		return s
	}
	log.Panicf("no id %s in sensor data", id)
	return nil
}

// GetOrError 获取传感器
// 说明：若id不存在则返回error
func (m *SensorManager) GetOrError(id string) (entity.ISensor, error) {
	if s, ok := m.data[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("no id %s in sensor data", id)
}

// Perturb 更新阶段
// 功能：按注册顺序对所有传感器做随机游走，然后重建观测快照
// 说明：顺序遍历保证相同种子下扰动序列可复现
func (m *SensorManager) Perturb(e *randengine.Engine) {
	for _, s := range m.sensors {
		s.perturb(e)
	}
	m.refreshReadouts()
}

// refreshReadouts 重建观测快照
func (m *SensorManager) refreshReadouts() {
	m.readouts = lo.Map(m.sensors, func(s *Sensor, _ int) entity.SensorReadout {
		return s.Readout()
	})
}

// Readouts 获取全部观测快照（按注册顺序）
// 说明：返回最近一次扰动后发布的快照切片，调用方不得修改
func (m *SensorManager) Readouts() []entity.SensorReadout {
	return m.readouts
}

// Find 按ID批量查找观测，返回命中与未命中
// 说明：ids为空时返回全部观测
func (m *SensorManager) Find(ids []string) ([]entity.SensorReadout, []string) {
	sensors, failedIDs := utils.Find(m.data, m.sensors, ids)
	readouts := lo.Map(sensors, func(s *Sensor, _ int) entity.SensorReadout {
		return s.Readout()
	})
	return readouts, failedIDs
}

// Count 传感器数量
func (m *SensorManager) Count() int {
	return len(m.data)
}
