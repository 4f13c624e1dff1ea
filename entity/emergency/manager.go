package emergency

import (
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
)

const (
	routeLength        = 3 // 优先通行路线包含的路口数量
	emergencyTypeBonus = 5 // 急救车型的优先级加成
)

// 紧急等级对应的基础优先级
var priorityMap = map[entity.EmergencyLevel]int{
	entity.LevelNone:     0,
	entity.LevelLow:      1,
	entity.LevelMedium:   3,
	entity.LevelHigh:     7,
	entity.LevelCritical: 10,
}

// 天气对应的优先级放大系数，未列出的天气按1.0处理
var weatherFactors = map[entity.WeatherCondition]float64{
	entity.WeatherClear: 1.0,
	entity.WeatherRain:  1.2,
	entity.WeatherSnow:  1.5,
	entity.WeatherFog:   1.8,
	entity.WeatherStorm: 2.5,
}

// EmergencyManager 紧急车辆管理器
// 功能：维护在场紧急车辆的登记表与优先通行路线
// 说明：登记与注销可能来自HTTP接口，与仿真主循环并发，内部加锁
type EmergencyManager struct {
	mu     sync.Mutex
	data   map[string]*entity.Vehicle // 在场紧急车辆
	order  []string                   // 登记顺序，优先级并列时先登记者胜出
	routes map[string][]string        // 车辆ID -> 优先通行路线
}

// NewManager 创建紧急车辆管理器
func NewManager() *EmergencyManager {
	return &EmergencyManager{
		data:   make(map[string]*entity.Vehicle),
		routes: make(map[string][]string),
	}
}

// Register 登记紧急车辆
// 说明：紧急等级为NONE的车辆不可登记；重复登记覆盖旧记录并保留原顺序
func (m *EmergencyManager) Register(v *entity.Vehicle) error {
	if v.Level == entity.LevelNone {
		return fmt.Errorf("vehicle %s is not an emergency vehicle", v.ID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[v.ID]; !ok {
		m.order = append(m.order, v.ID)
	}
	m.data[v.ID] = v
	log.Infof("emergency vehicle %s registered with level %s", v.ID, v.Level)
	return nil
}

// Unregister 注销紧急车辆
func (m *EmergencyManager) Unregister(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return fmt.Errorf("vehicle %s not found", id)
	}
	delete(m.data, id)
	delete(m.routes, id)
	m.order = lo.Without(m.order, id)
	log.Infof("emergency vehicle %s unregistered", id)
	return nil
}

// CalculatePriority 计算车辆在给定天气下的优先级
// 算法说明：基础优先级由紧急等级决定，急救车型额外加成，
// 乘以天气系数后向零取整
func (m *EmergencyManager) CalculatePriority(v *entity.Vehicle, weather entity.WeatherCondition) int {
	base := priorityMap[v.Level]
	if v.Type == entity.VehicleEmergency {
		base += emergencyTypeBonus
	}
	factor, ok := weatherFactors[weather]
	if !ok {
		factor = 1.0
	}
	return int(float64(base) * factor)
}

// Dominant 获取当前优先级最高的紧急车辆，没有在场车辆时返回nil
// 说明：排序始终按晴天系数计算，优先级并列时返回先登记的车辆
func (m *EmergencyManager) Dominant() *entity.Vehicle {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *entity.Vehicle
	bestPriority := 0
	for _, id := range m.order {
		v := m.data[id]
		if priority := m.CalculatePriority(v, entity.WeatherClear); best == nil || priority > bestPriority {
			best = v
			bestPriority = priority
		}
	}
	return best
}

// GenerateRoute 为紧急车辆生成优先通行路线
// 说明：取路口列表的前routeLength个作为路线并登记
func (m *EmergencyManager) GenerateRoute(v *entity.Vehicle, intersectionIDs []string) []string {
	route := make([]string, 0, routeLength)
	for _, id := range intersectionIDs {
		if len(route) == routeLength {
			break
		}
		route = append(route, id)
	}
	m.mu.Lock()
	m.routes[v.ID] = route
	m.mu.Unlock()
	log.Infof("priority route generated for %s: %v", v.ID, route)
	return route
}

// Route 查询车辆的优先通行路线
func (m *EmergencyManager) Route(vehicleID string) ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	route, ok := m.routes[vehicleID]
	if !ok {
		return nil, false
	}
	out := make([]string, len(route))
	copy(out, route)
	return out, true
}

// Docs 产生所有在场紧急车辆的摘要（按登记顺序）
func (m *EmergencyManager) Docs() []entity.VehicleDoc {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Map(m.order, func(id string, _ int) entity.VehicleDoc {
		return m.data[id].Doc()
	})
}

// Count 获取在场紧急车辆数量
func (m *EmergencyManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
