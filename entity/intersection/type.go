package intersection

import (
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity/intersection/signal"
)

// entity/intersection/signal/signal.go的依赖倒置
type ISignalController interface {
	// 推进状态机一步
	Update(step int32, readouts []entity.SensorReadout, weather entity.WeatherCondition, level entity.EmergencyLevel, outage bool, scramble bool, rush bool)
	// 计算自适应配时
	OptimalTiming(readouts []entity.SensorReadout, weather entity.WeatherCondition, level entity.EmergencyLevel, rush bool, night bool) signal.Timing

	State() entity.LightState                     // 获取当前状态
	StateDuration(step int32) float64             // 获取当前状态已持续的步数
	CycleCount() int32                            // 获取信号周期计数
	AdaptationFactor() float64                    // 获取自适应系数
	EmergencyActive() bool                        // 紧急抢占是否生效
	Info(step int32) entity.IntersectionStateInfo // 产生状态摘要
	Doc() entity.IntersectionDoc                  // 产生持久化摘要
}
