package intersection

import (
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity/intersection/signal"
)

// Intersection 路口
// 功能：封装路口配置与信号灯控制器
// 说明：信号灯状态机的推进委托给控制器
type Intersection struct {
	config entity.IntersectionConfig // 路口配置
	light  ISignalController         // 信号灯控制器
}

// newIntersection 创建路口
func newIntersection(config entity.IntersectionConfig) *Intersection {
	return &Intersection{
		config: config,
		light:  signal.New(config.ID, config),
	}
}

// update 更新阶段
// 说明：推进信号灯状态机一步
func (i *Intersection) update(step int32, readouts []entity.SensorReadout, weather entity.WeatherCondition, level entity.EmergencyLevel, outage, scramble, rush bool) {
	i.light.Update(step, readouts, weather, level, outage, scramble, rush)
}

// ID 获取路口ID
// 说明：接收者为nil时返回空字符串
func (i *Intersection) ID() string {
	if i == nil {
		return ""
	}
	return i.config.ID
}

// Config 获取路口配置
func (i *Intersection) Config() entity.IntersectionConfig {
	return i.config
}

// Light 获取信号灯控制器
func (i *Intersection) Light() ISignalController {
	return i.light
}

// State 获取信号灯状态
func (i *Intersection) State() entity.LightState {
	return i.light.State()
}

// StateDuration 获取当前状态已持续的步数
func (i *Intersection) StateDuration(step int32) float64 {
	return i.light.StateDuration(step)
}

// CycleCount 获取信号周期计数
func (i *Intersection) CycleCount() int32 {
	return i.light.CycleCount()
}

// AdaptationFactor 获取自适应系数
func (i *Intersection) AdaptationFactor() float64 {
	return i.light.AdaptationFactor()
}

// EmergencyActive 紧急抢占是否生效
func (i *Intersection) EmergencyActive() bool {
	return i.light.EmergencyActive()
}

// Info 产生状态摘要
func (i *Intersection) Info(step int32) entity.IntersectionStateInfo {
	return i.light.Info(step)
}

// Doc 产生持久化摘要
func (i *Intersection) Doc() entity.IntersectionDoc {
	return i.light.Doc()
}
