package signal

import (
	"flag"
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
)

var (
	greenBase          = flag.Float64("tl.green_base_time", 3, "base green time of adaptive signal timing")
	greenPerVehicle    = flag.Float64("tl.green_time_per_vehicle", 3.5, "green time added per vehicle of average sensor count")
	precipitationExtra = flag.Float64("tl.precipitation_extra_time", 4, "green time added under rain/snow/storm")
	rushHourFactor     = flag.Float64("tl.rush_hour_factor", 1.2, "green time multiplier during rush hour")
	nightFactor        = flag.Float64("tl.night_factor", 0.8, "green time multiplier at night")
)

// 自适应系数调整参数
const (
	adaptStep       = 0.01 // 单步调整量
	adaptMin        = 0.5  // 系数下限
	adaptMax        = 2.0  // 系数上限
	adaptRaiseQueue = 5.0  // 平均排队超过该值时上调
	adaptLowerQueue = 2.0  // 平均排队低于该值时下调
)

// Timing 信号灯配时方案
type Timing struct {
	Green    float64 // 绿灯时长（秒）
	Yellow   float64 // 黄灯时长（秒）
	PreGreen float64 // 预绿时长（秒）
	Red      float64 // 红灯时长（秒）
}

// Controller 自适应信号灯控制器
// 功能：维护单路口的信号灯状态机、自适应配时与自适应系数
// 说明：状态推进由编排线程驱动，非线程安全
type Controller struct {
	intersectionID string                    // 所属路口ID
	config         entity.IntersectionConfig // 路口配置

	state           entity.LightState // 当前状态
	stateStart      int32             // 当前状态的起始步
	cycleCount      int32             // 信号周期计数
	adaptation      float64           // 自适应系数
	emergencyActive bool              // 紧急抢占是否生效
}

// New 创建信号灯控制器
// 说明：初始状态为红灯，自适应系数为1
func New(intersectionID string, config entity.IntersectionConfig) *Controller {
	return &Controller{
		intersectionID: intersectionID,
		config:         config,
		state:          entity.LightRed,
		adaptation:     1.0,
	}
}

// Update 推进状态机一步
// 功能：按优先级处理断电、行人全向过街、紧急抢占与常规轮转
// 参数：step-当前步数，readouts-传感器观测，weather-天气，
// level-当前最高紧急程度，outage-断电，scramble-行人全向过街，rush-高峰时段
// 算法说明：
// 1. 断电：偶数步黄闪、奇数步红灯，直接赋值，不做状态机簿记
// 2. 行人全向过街：保持红灯并在每步重置状态起始步
// 3. 紧急抢占：非绿灯时立即切换到绿灯，之后保持绿灯
// 4. 常规：重新计算配时并按红、预绿、绿、黄的顺序轮转，
//    最后根据排队情况调整自适应系数
func (c *Controller) Update(step int32, readouts []entity.SensorReadout, weather entity.WeatherCondition, level entity.EmergencyLevel, outage, scramble, rush bool) {
	if outage {
		if step%2 == 0 {
			c.state = entity.LightFlashingYellow
		} else {
			c.state = entity.LightRed
		}
		return
	}
	if scramble {
		c.state = entity.LightRed
		c.stateStart = step
		return
	}
	if level != entity.LevelNone {
		c.emergencyActive = true
		if c.state != entity.LightGreen {
			c.changeState(entity.LightGreen, step)
		}
		return
	}

	timing := c.OptimalTiming(readouts, weather, level, rush, weather == entity.WeatherNight)
	duration := c.StateDuration(step)
	switch c.state {
	case entity.LightRed:
		if duration >= timing.Red {
			c.changeState(entity.LightPreGreen, step)
		}
	case entity.LightPreGreen:
		if duration >= timing.PreGreen {
			c.changeState(entity.LightGreen, step)
		}
	case entity.LightGreen:
		if duration >= timing.Green {
			c.changeState(entity.LightYellow, step)
		}
	case entity.LightYellow, entity.LightFlashingYellow:
		// 断电恢复后黄闪按黄灯计时退回红灯
		if duration >= timing.Yellow {
			c.changeState(entity.LightRed, step)
		}
	}
	c.updateAdaptation(readouts)
}

// OptimalTiming 计算自适应配时
// 功能：根据车流密度、天气与时段计算当前配时方案
// 参数：readouts-传感器观测，weather-天气，level-当前最高紧急程度，
// rush-高峰时段，night-夜间时段
// 返回：配时方案
// 算法说明：
// 1. 绿灯时长 = 基准时长 + 平均车流密度 x 单车增量，无观测时密度为0
// 2. 降水天气追加固定时长
// 3. 高峰时段放大、夜间时段缩小
// 4. 约束在[最短绿灯, 最长绿灯]范围内
// 5. 存在紧急车辆时改用最短绿灯时长，最后生效
// 说明：黄灯、预绿、红灯时长取路口配置的默认值
func (c *Controller) OptimalTiming(readouts []entity.SensorReadout, weather entity.WeatherCondition, level entity.EmergencyLevel, rush, night bool) Timing {
	timing := Timing{
		Green:    c.config.DefaultGreenTime,
		Yellow:   c.config.DefaultYellowTime,
		PreGreen: c.config.DefaultPreGreenTime,
		Red:      c.config.DefaultRedTime,
	}

	density := 0.0
	if len(readouts) > 0 {
		total := lo.SumBy(readouts, func(r entity.SensorReadout) int32 { return r.VehicleCount })
		density = float64(total) / float64(len(readouts))
	}
	green := *greenBase + density**greenPerVehicle
	if weather.Precipitation() {
		green += *precipitationExtra
	}
	if rush {
		green *= *rushHourFactor
	}
	if night {
		green *= *nightFactor
	}
	timing.Green = lo.Clamp(green, c.config.MinGreenTime, c.config.MaxGreenTime)

	if level != entity.LevelNone {
		timing.Green = c.config.MinGreenTime
		c.emergencyActive = true
	} else {
		c.emergencyActive = false
	}
	return timing
}

// changeState 切换状态
// 功能：记录状态切换并维护周期计数
// 说明：切换到绿灯时递增周期计数
func (c *Controller) changeState(next entity.LightState, step int32) {
	old := c.state
	c.state = next
	c.stateStart = step
	if next == entity.LightGreen {
		c.cycleCount++
	}
	log.Debugf("intersection %s: %s -> %s", c.intersectionID, old, next)
}

// updateAdaptation 调整自适应系数
// 功能：根据平均排队长度微调自适应系数
// 算法说明：
// 1. 无观测时不调整
// 2. 平均排队超过5时上调0.01，上限2.0
// 3. 平均排队低于2时下调0.01，下限0.5
func (c *Controller) updateAdaptation(readouts []entity.SensorReadout) {
	if len(readouts) == 0 {
		return
	}
	totalQueue := lo.SumBy(readouts, func(r entity.SensorReadout) int32 { return r.QueueLength })
	avgQueue := float64(totalQueue) / float64(len(readouts))
	if avgQueue > adaptRaiseQueue {
		c.adaptation = math.Min(adaptMax, c.adaptation+adaptStep)
	} else if avgQueue < adaptLowerQueue {
		c.adaptation = math.Max(adaptMin, c.adaptation-adaptStep)
	}
}

// StateDuration 获取当前状态已持续的步数
func (c *Controller) StateDuration(step int32) float64 {
	return float64(step - c.stateStart)
}

// State 获取当前状态
func (c *Controller) State() entity.LightState {
	return c.state
}

// CycleCount 获取信号周期计数
func (c *Controller) CycleCount() int32 {
	return c.cycleCount
}

// AdaptationFactor 获取自适应系数
func (c *Controller) AdaptationFactor() float64 {
	return c.adaptation
}

// EmergencyActive 紧急抢占是否生效
func (c *Controller) EmergencyActive() bool {
	return c.emergencyActive
}

// Info 产生状态摘要
func (c *Controller) Info(step int32) entity.IntersectionStateInfo {
	return entity.IntersectionStateInfo{
		State:      c.state,
		Duration:   c.StateDuration(step),
		CycleCount: c.cycleCount,
	}
}

// Doc 产生持久化摘要
func (c *Controller) Doc() entity.IntersectionDoc {
	return entity.IntersectionDoc{
		IntersectionID:   c.intersectionID,
		CurrentState:     c.state,
		CycleCount:       c.cycleCount,
		AdaptationFactor: c.adaptation,
	}
}
