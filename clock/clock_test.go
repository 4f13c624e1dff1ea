package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/config"
)

func TestNew(t *testing.T) {
	c := New(config.ControlStep{Start: 100, Total: 50, Interval: 0.5})
	assert.EqualValues(t, 100, c.START_STEP)
	assert.EqualValues(t, 150, c.END_STEP)
	assert.EqualValues(t, 100, c.InternalStep)
	assert.InDelta(t, 50, c.T, 1e-9)
}

func TestGetHourMinuteSecond(t *testing.T) {
	c := New(config.ControlStep{Start: 0, Total: 100000, Interval: 1})
	c.T = 3661
	hour, minute, second := c.GetHourMinuteSecond()
	assert.EqualValues(t, 1, hour)
	assert.EqualValues(t, 1, minute)
	assert.EqualValues(t, 1, second)

	// wraps around at midnight
	c.T = 24*3600 + 61
	hour, minute, second = c.GetHourMinuteSecond()
	assert.EqualValues(t, 0, hour)
	assert.EqualValues(t, 1, minute)
	assert.EqualValues(t, 1, second)

	// fractional part is preserved
	c.T = 3661.5
	_, _, second = c.GetHourMinuteSecond()
	assert.InDelta(t, 1.5, second, 1e-9)
}

func TestString(t *testing.T) {
	c := New(config.ControlStep{Start: 0, Total: 100, Interval: 1})
	c.T = 7 * 3600
	assert.Equal(t, "07:00:00", c.String())
}
