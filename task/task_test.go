package task_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/task"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/config"
)

func testConfig(total int32) config.Config {
	return config.Config{
		Control: config.Control{
			Step: config.ControlStep{Start: 0, Total: total, Interval: 1},
			Seed: 42,
		},
	}
}

func emergencyVehicle(id string) *entity.Vehicle {
	v := entity.NewVehicle()
	v.ID = id
	v.Type = entity.VehicleEmergency
	v.Level = entity.LevelHigh
	return v
}

func TestNewContextSampleSetup(t *testing.T) {
	ctx := task.NewContext("job0", testConfig(100))
	defer ctx.Close()
	status := ctx.Status()
	assert.EqualValues(t, 0, status.Step)
	assert.Equal(t, entity.StatusNormal, status.SystemStatus)
	assert.Equal(t, entity.WeatherClear, status.Weather)
	assert.Equal(t, 4, status.IntersectionCount)
	assert.Equal(t, 8, status.SensorCount)
	assert.Equal(t, 0, status.ActiveEmergencies)
	assert.Equal(t, "HEALTHY", status.Health.Status)
}

func TestStepSnapshot(t *testing.T) {
	ctx := task.NewContext("job0", testConfig(100))
	defer ctx.Close()
	snap := ctx.Step()
	assert.EqualValues(t, 1, snap.Step)
	assert.Equal(t, entity.StatusNormal, snap.SystemStatus)
	assert.Equal(t, entity.WeatherClear, snap.Weather)
	assert.Len(t, snap.IntersectionStates, 4)
	assert.Positive(t, snap.Analytics.TotalVehicles)
	assert.Equal(t, 0, snap.ActiveEmergencies)
	assert.EqualValues(t, 1, ctx.LastSnapshot().Step)
	assert.EqualValues(t, 1, ctx.Metrics().Summary().TotalSteps)
}

func TestSeedReproducibility(t *testing.T) {
	a := task.NewContext("a", testConfig(100))
	defer a.Close()
	b := task.NewContext("b", testConfig(100))
	defer b.Close()
	for i := 0; i < 10; i++ {
		a.Step()
		b.Step()
		ra := a.SensorManager().Readouts()
		rb := b.SensorManager().Readouts()
		assert.Equal(t, len(ra), len(rb))
		for j := range ra {
			assert.Equal(t, ra[j].ID, rb[j].ID)
			assert.Equal(t, ra[j].VehicleCount, rb[j].VehicleCount)
			assert.Equal(t, ra[j].AverageSpeed, rb[j].AverageSpeed)
			assert.Equal(t, ra[j].QueueLength, rb[j].QueueLength)
		}
	}
}

func TestEmergencyFlow(t *testing.T) {
	ctx := task.NewContext("job0", testConfig(100))
	defer ctx.Close()

	result := ctx.HandleEmergencyVehicle(emergencyVehicle("amb1"))
	assert.True(t, result.Success)
	assert.Equal(t, "amb1", result.VehicleID)
	assert.Equal(t, 12, result.Priority)
	assert.Len(t, result.Route, 3)
	assert.Contains(t, result.Message, "registered with priority 12")

	snap := ctx.Step()
	assert.Equal(t, 1, snap.ActiveEmergencies)
	for _, info := range snap.IntersectionStates {
		assert.Equal(t, entity.LightGreen, info.State)
	}
	assert.EqualValues(t, 1, ctx.Metrics().Summary().EmergencyResponses)

	rejected := ctx.HandleEmergencyVehicle(entity.NewVehicle())
	assert.False(t, rejected.Success)
	assert.Equal(t, "Vehicle is not an emergency vehicle", rejected.Message)

	assert.NoError(t, ctx.EmergencyManager().Unregister("amb1"))
	assert.Equal(t, 0, ctx.Status().ActiveEmergencies)
}

func TestLoadScenarioPowerOutage(t *testing.T) {
	ctx := task.NewContext("job0", testConfig(100))
	defer ctx.Close()
	ctx.LoadScenario(entity.ScenarioPowerOutage)
	assert.Equal(t, entity.StatusFailure, ctx.SystemStatus())
	assert.Equal(t, entity.ScenarioPowerOutage, ctx.Scenario())
	assert.Equal(t, 4, ctx.Settings().GetInt("intersections.max_cars_per_lane", 0))

	// odd step holds red, even step flashes yellow
	snap := ctx.Step()
	assert.Equal(t, entity.StatusFailure, snap.SystemStatus)
	for _, info := range snap.IntersectionStates {
		assert.Equal(t, entity.LightRed, info.State)
	}
	snap = ctx.Step()
	for _, info := range snap.IntersectionStates {
		assert.Equal(t, entity.LightFlashingYellow, info.State)
	}
}

func TestLoadScenarioRushHour(t *testing.T) {
	ctx := task.NewContext("job0", testConfig(100))
	defer ctx.Close()
	ctx.LoadScenario(entity.ScenarioRushHour)
	assert.Equal(t, entity.StatusNormal, ctx.SystemStatus())
	assert.Equal(t, entity.WeatherClear, ctx.Weather())
	assert.Equal(t, 8, ctx.Settings().GetInt("intersections.max_cars_per_lane", 0))

	// returning to day restores the lane capacity
	ctx.LoadScenario(entity.ScenarioDay)
	assert.Equal(t, 4, ctx.Settings().GetInt("intersections.max_cars_per_lane", 0))
}

func TestLoadScenarioWeatherMapping(t *testing.T) {
	ctx := task.NewContext("job0", testConfig(100))
	defer ctx.Close()
	ctx.LoadScenario(entity.ScenarioHeavyRain)
	assert.Equal(t, entity.WeatherRain, ctx.Weather())
	ctx.LoadScenario(entity.ScenarioSnowBlizzard)
	assert.Equal(t, entity.WeatherSnow, ctx.Weather())
	ctx.LoadScenario(entity.ScenarioNight)
	assert.Equal(t, entity.WeatherNight, ctx.Weather())
	ctx.LoadScenario(entity.ScenarioDay)
	assert.Equal(t, entity.WeatherClear, ctx.Weather())
}

func TestConfigScenarioAndWeather(t *testing.T) {
	c := testConfig(100)
	c.Control.Scenario = "RUSH_HOUR"
	c.Control.Weather = "FOG"
	ctx := task.NewContext("job0", c)
	defer ctx.Close()
	// explicit weather overrides the scenario mapping
	assert.Equal(t, entity.ScenarioRushHour, ctx.Scenario())
	assert.Equal(t, entity.WeatherFog, ctx.Weather())
}

func TestStatusHasNoSideEffects(t *testing.T) {
	ctx := task.NewContext("job0", testConfig(100))
	defer ctx.Close()
	for i := 0; i < 3; i++ {
		ctx.Step()
	}
	sensorID := ctx.SensorManager().Readouts()[0].ID
	assert.Equal(t, 3, ctx.Monitor().HistoryLen(sensorID))
	before := ctx.Status()
	after := ctx.Status()
	assert.Equal(t, 3, ctx.Monitor().HistoryLen(sensorID))
	assert.Equal(t, before.Step, after.Step)
	assert.Equal(t, before.Analytics.TotalVehicles, after.Analytics.TotalVehicles)
}

func TestStepLogCap(t *testing.T) {
	ctx := task.NewContext("job0", testConfig(2000))
	defer ctx.Close()
	for i := 0; i < 1100; i++ {
		ctx.Step()
	}
	all := ctx.RecentSteps(2000)
	assert.Len(t, all, 1000)
	assert.EqualValues(t, 101, all[0].Step)
	last := ctx.RecentSteps(5)
	assert.Len(t, last, 5)
	assert.EqualValues(t, 1100, last[4].Step)
}

func TestConcurrentSteps(t *testing.T) {
	ctx := task.NewContext("job0", testConfig(2000))
	defer ctx.Close()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				ctx.Step()
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 100, ctx.LastSnapshot().Step)
	assert.EqualValues(t, 100, ctx.Metrics().Summary().TotalSteps)
}

func TestAutoStepping(t *testing.T) {
	ctx := task.NewContext("job0", testConfig(10000))
	defer ctx.Close()
	assert.NoError(t, ctx.StartAuto(time.Millisecond))
	assert.Error(t, ctx.StartAuto(time.Millisecond))
	assert.True(t, ctx.AutoRunning())
	assert.Eventually(t, func() bool {
		return ctx.LastSnapshot().Step > 0
	}, time.Second, 5*time.Millisecond)
	assert.NoError(t, ctx.StopAuto())
	assert.False(t, ctx.AutoRunning())
	assert.Error(t, ctx.StopAuto())
}

func TestRun(t *testing.T) {
	ctx := task.NewContext("job0", testConfig(25))
	defer ctx.Close()
	ctx.Run()
	assert.EqualValues(t, 25, ctx.Clock().InternalStep)
	assert.Len(t, ctx.RecentSteps(100), 25)
}

func TestStepHooks(t *testing.T) {
	ctx := task.NewContext("job0", testConfig(100))
	defer ctx.Close()
	var steps []int32
	ctx.AddStepHook(func(snap entity.StepSnapshot) {
		steps = append(steps, snap.Step)
	})
	for i := 0; i < 3; i++ {
		ctx.Step()
	}
	assert.Equal(t, []int32{1, 2, 3}, steps)
}

func TestSaveAndExport(t *testing.T) {
	c := testConfig(100)
	c.Output.DataDir = t.TempDir()
	ctx := task.NewContext("job0", c)
	defer ctx.Close()
	for i := 0; i < 5; i++ {
		ctx.Step()
	}
	path, err := ctx.SaveState("state.json")
	assert.NoError(t, err)
	assert.FileExists(t, path)

	doc, err := ctx.LoadState("state.json")
	assert.NoError(t, err)
	assert.EqualValues(t, 5, doc.SystemStatus.Step)
	assert.Len(t, doc.Sensors, 8)
	assert.Len(t, doc.Intersections, 4)
	assert.Len(t, doc.StepLog, 5)

	csvPath, err := ctx.ExportAnalytics("csv")
	assert.NoError(t, err)
	assert.FileExists(t, csvPath)
	jsonPath, err := ctx.ExportAnalytics("")
	assert.NoError(t, err)
	assert.FileExists(t, jsonPath)
}

func TestSaveStateWithoutDir(t *testing.T) {
	ctx := task.NewContext("job0", testConfig(100))
	defer ctx.Close()
	_, err := ctx.SaveState("")
	assert.Error(t, err)
}

func TestGenerateReport(t *testing.T) {
	ctx := task.NewContext("job0", testConfig(100))
	defer ctx.Close()
	ctx.Step()
	report := ctx.GenerateReport()
	assert.Contains(t, report, "TRAFFIC CONTROL SYSTEM REPORT")
	assert.Contains(t, report, "Active Intersections: 4")
	assert.Contains(t, report, "Active Sensors: 8")
}
