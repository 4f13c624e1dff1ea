package entity

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/randengine"
)

// entity/sensor/sensor.go的依赖倒置
type ISensor interface {
	ID() string               // 获取传感器ID
	Position() geometry.Point // 获取传感器位置
	IsActive() bool           // 是否在线
	Readout() SensorReadout   // 产生当前观测快照
}

// entity/intersection/intersection.go的依赖倒置
type IIntersection interface {
	ID() string                            // 获取路口ID
	Config() IntersectionConfig            // 获取路口配置
	State() LightState                     // 获取信号灯状态
	StateDuration(step int32) float64      // 获取当前状态已持续的步数
	CycleCount() int32                     // 获取信号周期计数
	AdaptationFactor() float64             // 获取自适应系数
	EmergencyActive() bool                 // 紧急抢占是否生效
	Info(step int32) IntersectionStateInfo // 产生状态摘要
	Doc() IntersectionDoc                  // 产生持久化摘要
}

// Manager依赖倒置

// entity/sensor/manager.go的依赖倒置
type ISensorManager interface {
	Init(inits []SensorInit) // 初始化

	// 输入Sensor ID，查找Sensor，如果不存在则panic
	Get(id string) ISensor
	// 输入Sensor ID，查找Sensor，如果不存在则返回error
	GetOrError(id string) (ISensor, error)

	Perturb(e *randengine.Engine)                  // 更新阶段：对观测做随机游走并刷新快照
	Readouts() []SensorReadout                     // 获取全部观测快照（按注册顺序）
	Find(ids []string) ([]SensorReadout, []string) // 按ID批量查找观测，返回命中与未命中
	Count() int                                    // 传感器数量
}

// entity/intersection/manager.go的依赖倒置
type IIntersectionManager interface {
	Init(configs []IntersectionConfig) // 初始化

	// 输入Intersection ID，查找Intersection，如果不存在则panic
	Get(id string) IIntersection
	// 输入Intersection ID，查找Intersection，如果不存在则返回error
	GetOrError(id string) (IIntersection, error)

	// 更新阶段：推进所有路口的信号灯状态机
	UpdateAll(step int32, readouts []SensorReadout, weather WeatherCondition, level EmergencyLevel, outage bool, scramble bool, rush bool)

	States(step int32) map[string]IntersectionStateInfo // 产生所有路口的状态摘要
	Docs() []IntersectionDoc                            // 产生所有路口的持久化摘要
	IDs() []string                                      // 获取所有路口ID（按注册顺序）
	Find(ids []string) ([]IntersectionDoc, []string)    // 按ID批量查找摘要，返回命中与未命中
	Count() int                                         // 路口数量
}

// entity/emergency/manager.go的依赖倒置
type IEmergencyManager interface {
	// 登记紧急车辆，非紧急车辆返回error
	Register(v *Vehicle) error
	// 注销紧急车辆，不存在返回error
	Unregister(id string) error

	CalculatePriority(v *Vehicle, w WeatherCondition) int        // 计算调度优先级
	Dominant() *Vehicle                                          // 获取当前最高优先级车辆，无则返回nil
	GenerateRoute(v *Vehicle, intersectionIDs []string) []string // 生成优先通行路线并登记
	Route(vehicleID string) ([]string, bool)                     // 查询已登记的优先通行路线

	Docs() []VehicleDoc // 产生所有在册车辆的输出格式（按登记顺序）
	Count() int         // 在册车辆数量
}

// entity/monitor/monitor.go的依赖倒置
type IMonitor interface {
	// 处理一批传感器观测，产生分析结果并维护滑动历史
	Process(readouts []SensorReadout) Analytics

	HistoryLen(sensorID string) int // 获取指定传感器的历史长度
}
