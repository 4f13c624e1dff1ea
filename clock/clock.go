// Package clock 提供模拟时钟
package clock

import (
	"fmt"

	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/config"
)

// Clock 模拟器时钟
type Clock struct {
	DT float64 // 每步模拟的时间（秒）
	// 模拟开始的步数
	START_STEP int32
	// 模拟结束的步数
	END_STEP int32

	T            float64 // 模拟时刻（秒）
	InternalStep int32   // 内部步数
}

// New 创建时钟
func New(c config.ControlStep) *Clock {
	clock := &Clock{
		DT:         c.Interval,
		START_STEP: c.Start,
		END_STEP:   c.Start + c.Total,
	}
	clock.Init()
	return clock
}

// Init 初始化时钟状态
func (c *Clock) Init() {
	c.T = float64(c.START_STEP) * c.DT
	c.InternalStep = c.START_STEP
}

// String 格式化输出当前模拟时刻
func (c *Clock) String() string {
	hour, minute, second := c.GetHourMinuteSecond()
	return fmt.Sprintf("%02d:%02d:%02d", hour, minute, int(second))
}

// GetHourMinuteSecond 获取当前模拟时刻的时分秒
// 返回：小时、分钟、秒（秒为浮点数）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	t := int(c.T)
	second := c.T - float64(t/60*60)
	return t / 3600 % 24, t / 60 % 60, second
}
