package intersection

import (
	"fmt"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils"
)

// IntersectionManager 路口管理器
type IntersectionManager struct {
	data          map[string]*Intersection // 所有路口
	intersections []*Intersection          // 所有路口（有序）
	ids           []string                 // 所有路口ID（有序）
}

// NewManager 创建路口管理器
func NewManager() *IntersectionManager {
	return &IntersectionManager{
		data: make(map[string]*Intersection),
	}
}

// Init 初始化路口管理器
func (m *IntersectionManager) Init(configs []entity.IntersectionConfig) {
	m.intersections = parallel.GoMap(configs, newIntersection)
	m.data = lo.SliceToMap(m.intersections, func(i *Intersection) (string, *Intersection) {
		return i.ID(), i
	})
	m.ids = lo.Map(m.intersections, func(i *Intersection, _ int) string { return i.ID() })
	log.Debugf("intersection manager: %d intersections initialized", len(m.intersections))
}

// Get 获取指定ID的路口，没有时panic
func (m *IntersectionManager) Get(id string) entity.IIntersection {
	if intersection, ok := m.data[id]; ok {
		return intersection
	}
	log.Panicf("no id %s in intersection data", id)
	return nil
}

// GetOrError 获取指定ID的路口，没有时返回error
func (m *IntersectionManager) GetOrError(id string) (entity.IIntersection, error) {
	if intersection, ok := m.data[id]; ok {
		return intersection, nil
	}
	return nil, fmt.Errorf("no id %s in intersection data", id)
}

// UpdateAll 推进所有路口的信号灯状态机一步
// 说明：各路口仅读取共享的传感器读数，无写冲突，可并行
func (m *IntersectionManager) UpdateAll(step int32, readouts []entity.SensorReadout, weather entity.WeatherCondition, level entity.EmergencyLevel, outage, scramble, rush bool) {
	parallel.GoFor(m.intersections, func(i *Intersection) {
		i.update(step, readouts, weather, level, outage, scramble, rush)
	})
}

// States 产生所有路口的状态摘要
func (m *IntersectionManager) States(step int32) map[string]entity.IntersectionStateInfo {
	return lo.SliceToMap(m.intersections, func(i *Intersection) (string, entity.IntersectionStateInfo) {
		return i.ID(), i.Info(step)
	})
}

// Docs 产生所有路口的持久化摘要
func (m *IntersectionManager) Docs() []entity.IntersectionDoc {
	return lo.Map(m.intersections, func(i *Intersection, _ int) entity.IntersectionDoc {
		return i.Doc()
	})
}

// IDs 获取所有路口ID（有序）
func (m *IntersectionManager) IDs() []string {
	return m.ids
}

// Find 查询指定ID的路口持久化摘要，返回命中的摘要与未命中的ID
// 说明：ids为空时返回全部
func (m *IntersectionManager) Find(ids []string) ([]entity.IntersectionDoc, []string) {
	intersections, failed := utils.Find(m.data, m.intersections, ids)
	return lo.Map(intersections, func(i *Intersection, _ int) entity.IntersectionDoc {
		return i.Doc()
	}), failed
}

// Count 获取路口数量
func (m *IntersectionManager) Count() int {
	return len(m.intersections)
}
