package entity

import (
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/clock"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	SensorManager() ISensorManager
	IntersectionManager() IIntersectionManager
	EmergencyManager() IEmergencyManager
	Monitor() IMonitor
	RuntimeConfig() *config.RuntimeConfig
	Settings() *config.Store
}
