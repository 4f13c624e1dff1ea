package monitor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/clock"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity/monitor"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/config"
)

// stubContext provides only the settings store used by the monitor constructor
type stubContext struct {
	settings *config.Store
}

func (s *stubContext) Clock() *clock.Clock                              { return nil }
func (s *stubContext) SensorManager() entity.ISensorManager             { return nil }
func (s *stubContext) IntersectionManager() entity.IIntersectionManager { return nil }
func (s *stubContext) EmergencyManager() entity.IEmergencyManager       { return nil }
func (s *stubContext) Monitor() entity.IMonitor                         { return nil }
func (s *stubContext) RuntimeConfig() *config.RuntimeConfig             { return nil }
func (s *stubContext) Settings() *config.Store                          { return s.settings }

func newMonitor() *monitor.TrafficMonitor {
	return monitor.NewMonitor(&stubContext{settings: config.NewStore("")})
}

func readout(id string, count int32) entity.SensorReadout {
	return entity.SensorReadout{
		ID:           id,
		VehicleCount: count,
		AverageSpeed: 30,
		QueueLength:  3,
		LastUpdate:   time.Now(),
		IsActive:     true,
	}
}

func TestAnalytics(t *testing.T) {
	m := newMonitor()
	inactive := readout("s3", 5)
	inactive.IsActive = false
	readouts := []entity.SensorReadout{
		{ID: "s1", VehicleCount: 10, AverageSpeed: 30, QueueLength: 4, IsActive: true},
		{ID: "s2", VehicleCount: 20, AverageSpeed: 50, QueueLength: 6, IsActive: true},
		inactive,
	}
	a := m.Process(readouts)
	// total counts every sensor, averages only the active ones
	assert.EqualValues(t, 35, a.TotalVehicles)
	assert.InDelta(t, 40.0, a.AverageSpeed, 1e-9)
	assert.InDelta(t, 0.5, a.CongestionLevel, 1e-9)
	assert.Empty(t, a.Anomalies)
}

func TestAnalyticsAllInactive(t *testing.T) {
	m := newMonitor()
	r := readout("s1", 12)
	r.IsActive = false
	a := m.Process([]entity.SensorReadout{r})
	assert.EqualValues(t, 0, a.TotalVehicles)
	assert.Zero(t, a.AverageSpeed)
	assert.Zero(t, a.CongestionLevel)
}

func TestAnalyticsEmpty(t *testing.T) {
	m := newMonitor()
	a := m.Process(nil)
	assert.EqualValues(t, 0, a.TotalVehicles)
	assert.Zero(t, a.AverageSpeed)
	assert.Zero(t, a.CongestionLevel)
	assert.Empty(t, a.Anomalies)
}

func TestCongestionClamp(t *testing.T) {
	m := newMonitor()
	r := readout("s1", 10)
	r.QueueLength = 15
	a := m.Process([]entity.SensorReadout{r})
	assert.InDelta(t, 1.0, a.CongestionLevel, 1e-9)
}

func TestAnomalySpike(t *testing.T) {
	m := newMonitor()
	// stable baseline with minimal variation, then a spike
	for _, count := range []int32{5, 5, 5, 5, 5, 5, 5, 5, 6} {
		a := m.Process([]entity.SensorReadout{readout("s1", count)})
		assert.Empty(t, a.Anomalies)
	}
	a := m.Process([]entity.SensorReadout{readout("s1", 20)})
	if assert.Len(t, a.Anomalies, 1) {
		anomaly := a.Anomalies[0]
		assert.Equal(t, "s1", anomaly.SensorID)
		assert.Equal(t, "vehicle_count", anomaly.Kind)
		assert.EqualValues(t, 20, anomaly.Value)
		// window mean 46/9, sample stdev 1/3
		assert.InDelta(t, 4.444, anomaly.ExpectedRange[0], 1e-3)
		assert.InDelta(t, 5.778, anomaly.ExpectedRange[1], 1e-3)
	}
	assert.Equal(t, 10, m.HistoryLen("s1"))
}

func TestAnomalyZeroDeviation(t *testing.T) {
	m := newMonitor()
	// constant history has zero deviation, detection is skipped
	for i := 0; i < 9; i++ {
		m.Process([]entity.SensorReadout{readout("s1", 5)})
	}
	a := m.Process([]entity.SensorReadout{readout("s1", 20)})
	assert.Empty(t, a.Anomalies)
}

func TestAnomalyShortHistory(t *testing.T) {
	m := newMonitor()
	for _, count := range []int32{4, 5, 6} {
		m.Process([]entity.SensorReadout{readout("s1", count)})
	}
	a := m.Process([]entity.SensorReadout{readout("s1", 500)})
	assert.Empty(t, a.Anomalies)
}

func TestAnomalyThresholdFromSettings(t *testing.T) {
	settings := config.NewStore("")
	settings.Set("sensors.anomaly_threshold", 100.0)
	m := monitor.NewMonitor(&stubContext{settings: settings})
	for _, count := range []int32{5, 5, 5, 5, 5, 5, 5, 5, 6} {
		m.Process([]entity.SensorReadout{readout("s1", count)})
	}
	a := m.Process([]entity.SensorReadout{readout("s1", 20)})
	assert.Empty(t, a.Anomalies)
}

func TestHistoryCap(t *testing.T) {
	m := newMonitor()
	for i := 0; i < 150; i++ {
		m.Process([]entity.SensorReadout{readout("s1", int32(i%10))})
	}
	assert.Equal(t, 100, m.HistoryLen("s1"))
	assert.Equal(t, 0, m.HistoryLen("unknown"))
}
