package input

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/randengine"
)

// 示例拓扑的网格规模与传感器初始观测范围
const (
	sampleGridSize      = 2     // 2x2路口网格
	sampleSpacing       = 150.0 // 路口间距（米）
	sampleSensorPerNode = 2     // 每个路口的传感器数
)

// Input 输入数据
// 功能：存储仿真所需的初始实体数据
// 说明：包含路口配置与传感器初始观测，支持从配置构建或自动生成
type Input struct {
	Intersections []entity.IntersectionConfig
	Sensors       []entity.SensorInit
}

// Init 构建输入数据
// 功能：根据配置构建初始路口与传感器
// 参数：c-配置对象，settings-运行参数存储，e-随机数引擎
// 返回：构建完成的输入数据指针
// 算法说明：
// 1. 显式拓扑：配置列出了路口或传感器时按配置构建，
//    省略的时长字段用运行参数存储中的默认值补全
// 2. 示例拓扑：两个列表均为空时生成2x2路口网格与8个传感器，
//    传感器初始观测由随机数引擎生成
// 3. ID检查：发现重复或缺失的ID时panic
// 说明：这是初始实体构建的主入口
func Init(c config.Config, settings *config.Store, e *randengine.Engine) (res *Input) {
	res = &Input{}
	if len(c.Setup.Intersections) == 0 && len(c.Setup.Sensors) == 0 {
		log.Info("empty setup, generating sample grid")
		res.buildSampleSetup(e)
		return
	}

	intersectionIDs := make(map[string]struct{})
	for _, setup := range c.Setup.Intersections {
		if setup.ID == "" {
			log.Panic("intersection without id in setup, please check config")
		}
		if _, ok := intersectionIDs[setup.ID]; ok {
			log.Panicf("intersections have duplicated ids %s, please check config", setup.ID)
		}
		intersectionIDs[setup.ID] = struct{}{}
		res.Intersections = append(res.Intersections, toIntersectionConfig(setup, settings))
	}

	sensorIDs := make(map[string]struct{})
	for _, setup := range c.Setup.Sensors {
		if setup.ID == "" {
			log.Panic("sensor without id in setup, please check config")
		}
		if _, ok := sensorIDs[setup.ID]; ok {
			log.Panicf("sensors have duplicated ids %s, please check config", setup.ID)
		}
		sensorIDs[setup.ID] = struct{}{}
		res.Sensors = append(res.Sensors, toSensorInit(setup))
	}
	return
}

// buildSampleSetup 生成示例拓扑
// 功能：生成2x2路口网格与每路口2个传感器的示例拓扑
// 说明：传感器初始观测为随机值，相同种子生成相同拓扑
func (in *Input) buildSampleSetup(e *randengine.Engine) {
	for i := 0; i < sampleGridSize; i++ {
		for j := 0; j < sampleGridSize; j++ {
			in.Intersections = append(in.Intersections, entity.IntersectionConfig{
				ID:       fmt.Sprintf("intersection_%d_%d", i, j),
				Position: geometry.Point{X: float64(i) * sampleSpacing, Y: float64(j) * sampleSpacing},
				Roads: []string{
					fmt.Sprintf("Road %d-%dA", i, j),
					fmt.Sprintf("Road %d-%dB", i, j),
				},
				DefaultGreenTime:       25,
				DefaultYellowTime:      4,
				DefaultPreGreenTime:    1.5,
				DefaultRedTime:         25,
				MaxGreenTime:           45,
				MinGreenTime:           8,
				PedestrianCrossingTime: 20,
				EmergencyOverride:      true,
			})
		}
	}
	for i := 0; i < sampleGridSize; i++ {
		for j := 0; j < sampleGridSize; j++ {
			for k := 0; k < sampleSensorPerNode; k++ {
				in.Sensors = append(in.Sensors, entity.SensorInit{
					ID: fmt.Sprintf("sensor_%d_%d_%d", i, j, k),
					Position: geometry.Point{
						X: float64(i)*sampleSpacing + float64(k)*30,
						Y: float64(j)*sampleSpacing + float64(k)*25,
					},
					VehicleCount: int32(e.IntBetween(5, 15)),
					AverageSpeed: e.Float64Between(20, 50),
					QueueLength:  int32(e.IntBetween(1, 8)),
					IsActive:     true,
				})
			}
		}
	}
}
