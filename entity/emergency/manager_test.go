package emergency_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity/emergency"
)

func vehicle(id string, vType entity.VehicleType, level entity.EmergencyLevel) *entity.Vehicle {
	v := entity.NewVehicle()
	v.ID = id
	v.Type = vType
	v.Level = level
	return v
}

func TestCalculatePriority(t *testing.T) {
	m := emergency.NewManager()
	// (7 + 5) * 2.5 truncated
	v := vehicle("amb1", entity.VehicleEmergency, entity.LevelHigh)
	assert.Equal(t, 30, m.CalculatePriority(v, entity.WeatherStorm))
	// no type bonus for ordinary vehicles
	truck := vehicle("t1", entity.VehicleTruck, entity.LevelHigh)
	assert.Equal(t, 7, m.CalculatePriority(truck, entity.WeatherClear))
	assert.Equal(t, 8, m.CalculatePriority(truck, entity.WeatherRain))
	// weather without a factor falls back to 1.0
	assert.Equal(t, 7, m.CalculatePriority(truck, entity.WeatherNight))
	assert.Equal(t, 0, m.CalculatePriority(vehicle("c1", entity.VehicleCar, entity.LevelNone), entity.WeatherStorm))
}

func TestRegisterRejectsNonEmergency(t *testing.T) {
	m := emergency.NewManager()
	err := m.Register(vehicle("c1", entity.VehicleCar, entity.LevelNone))
	assert.Error(t, err)
	assert.Equal(t, 0, m.Count())
}

func TestRegisterOverwrite(t *testing.T) {
	m := emergency.NewManager()
	assert.NoError(t, m.Register(vehicle("amb1", entity.VehicleEmergency, entity.LevelLow)))
	assert.NoError(t, m.Register(vehicle("amb2", entity.VehicleEmergency, entity.LevelLow)))
	// re-registering keeps the original position and the new level
	assert.NoError(t, m.Register(vehicle("amb1", entity.VehicleEmergency, entity.LevelMedium)))
	assert.Equal(t, 2, m.Count())
	docs := m.Docs()
	assert.Equal(t, "amb1", docs[0].ID)
	assert.Equal(t, entity.LevelMedium, docs[0].EmergencyLevel)
	assert.Equal(t, "amb2", docs[1].ID)
}

func TestUnregister(t *testing.T) {
	m := emergency.NewManager()
	assert.NoError(t, m.Register(vehicle("amb1", entity.VehicleEmergency, entity.LevelHigh)))
	assert.NoError(t, m.Unregister("amb1"))
	assert.Equal(t, 0, m.Count())
	assert.Error(t, m.Unregister("amb1"))
	_, ok := m.Route("amb1")
	assert.False(t, ok)
}

func TestDominant(t *testing.T) {
	m := emergency.NewManager()
	assert.Nil(t, m.Dominant())
	assert.NoError(t, m.Register(vehicle("low", entity.VehicleEmergency, entity.LevelLow)))
	assert.NoError(t, m.Register(vehicle("crit", entity.VehicleEmergency, entity.LevelCritical)))
	assert.NoError(t, m.Register(vehicle("high", entity.VehicleEmergency, entity.LevelHigh)))
	assert.Equal(t, "crit", m.Dominant().ID)
}

func TestDominantTieFirstRegistered(t *testing.T) {
	m := emergency.NewManager()
	assert.NoError(t, m.Register(vehicle("first", entity.VehicleEmergency, entity.LevelHigh)))
	assert.NoError(t, m.Register(vehicle("second", entity.VehicleEmergency, entity.LevelHigh)))
	assert.Equal(t, "first", m.Dominant().ID)
}

func TestDominantTypeBonus(t *testing.T) {
	m := emergency.NewManager()
	// 7+5 for the ambulance beats the plain critical bus at 10
	assert.NoError(t, m.Register(vehicle("bus", entity.VehicleBus, entity.LevelCritical)))
	assert.NoError(t, m.Register(vehicle("amb", entity.VehicleEmergency, entity.LevelHigh)))
	assert.Equal(t, "amb", m.Dominant().ID)
}

func TestGenerateRoute(t *testing.T) {
	m := emergency.NewManager()
	v := vehicle("amb1", entity.VehicleEmergency, entity.LevelHigh)
	assert.NoError(t, m.Register(v))
	route := m.GenerateRoute(v, []string{"i1", "i2", "i3", "i4"})
	assert.Equal(t, []string{"i1", "i2", "i3"}, route)
	stored, ok := m.Route("amb1")
	assert.True(t, ok)
	assert.Equal(t, route, stored)
	// short intersection lists yield short routes
	short := m.GenerateRoute(v, []string{"i1"})
	assert.Equal(t, []string{"i1"}, short)
}
