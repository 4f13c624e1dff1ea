package input_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/input"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/randengine"
)

func TestSampleSetup(t *testing.T) {
	in := input.Init(config.Config{}, config.NewStore(""), randengine.New(42))
	assert.Len(t, in.Intersections, 4)
	assert.Len(t, in.Sensors, 8)
	assert.Equal(t, "intersection_0_0", in.Intersections[0].ID)
	assert.Equal(t, "intersection_1_1", in.Intersections[3].ID)
	assert.Equal(t, "sensor_1_1_1", in.Sensors[7].ID)
	for _, s := range in.Sensors {
		assert.GreaterOrEqual(t, s.VehicleCount, int32(5))
		assert.LessOrEqual(t, s.VehicleCount, int32(15))
		assert.GreaterOrEqual(t, s.AverageSpeed, 20.0)
		assert.Less(t, s.AverageSpeed, 50.0)
		assert.GreaterOrEqual(t, s.QueueLength, int32(1))
		assert.LessOrEqual(t, s.QueueLength, int32(8))
		assert.True(t, s.IsActive)
	}
	cfg := in.Intersections[0]
	assert.Equal(t, 25.0, cfg.DefaultGreenTime)
	assert.Equal(t, 8.0, cfg.MinGreenTime)
	assert.Equal(t, 45.0, cfg.MaxGreenTime)
	assert.True(t, cfg.EmergencyOverride)
}

func TestSampleSetupReproducible(t *testing.T) {
	// same seed generates the same initial readings
	a := input.Init(config.Config{}, config.NewStore(""), randengine.New(42))
	b := input.Init(config.Config{}, config.NewStore(""), randengine.New(42))
	assert.Equal(t, a.Sensors, b.Sensors)
	assert.Equal(t, a.Intersections, b.Intersections)
}

func TestExplicitSetup(t *testing.T) {
	c := config.Config{Setup: config.Setup{
		Intersections: []config.IntersectionSetup{
			{ID: "x", Position: [2]float64{1, 2}, DefaultGreenTime: 20},
		},
		Sensors: []config.SensorSetup{
			{ID: "s", VehicleCount: 3, Inactive: true},
		},
	}}
	in := input.Init(c, config.NewStore(""), randengine.New(1))
	assert.Len(t, in.Intersections, 1)
	assert.Len(t, in.Sensors, 1)

	cfg := in.Intersections[0]
	assert.Equal(t, 1.0, cfg.Position.X)
	assert.Equal(t, 2.0, cfg.Position.Y)
	// explicit value kept, omitted fields filled from the settings store
	assert.Equal(t, 20.0, cfg.DefaultGreenTime)
	assert.Equal(t, 3.0, cfg.DefaultYellowTime)
	assert.Equal(t, 3.0, cfg.MinGreenTime)
	assert.Equal(t, 35.0, cfg.MaxGreenTime)
	assert.True(t, cfg.EmergencyOverride)

	s := in.Sensors[0]
	assert.False(t, s.IsActive)
	assert.Equal(t, int32(3), s.VehicleCount)
}
