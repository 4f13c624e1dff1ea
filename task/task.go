package task

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/clock"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity/emergency"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity/intersection"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity/monitor"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity/sensor"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/output"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/container"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/input"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/randengine"
)

// 步日志的保留长度与持久化时写出的条数
const (
	stepLogSize      = 1000
	stepLogSaveCount = 100
)

// StepHook 步完成回调，在每步快照发布后调用
type StepHook func(snap entity.StepSnapshot)

// EmergencyResult 紧急车辆登记结果
type EmergencyResult struct {
	Success   bool     `json:"success"`
	VehicleID string   `json:"vehicle_id,omitempty"`
	Priority  int      `json:"priority,omitempty"`
	Route     []string `json:"route,omitempty"`
	Message   string   `json:"message"`
}

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态，替代原来的全局变量
// 说明：管理仿真系统的所有组件，包括时钟、管理器、配置、输出等；
// 步进由stepMu串行化，快照经snapMu发布供并发读取
type Context struct {

	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock
	// 随机数引擎
	engine *randengine.Engine

	// 传感器管理器
	sensorManager entity.ISensorManager
	// 路口管理器
	intersectionManager entity.IIntersectionManager
	// 紧急车辆管理器
	emergencyManager entity.IEmergencyManager
	// 交通监视器
	monitor entity.IMonitor

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
	// 运行参数存储
	settings *config.Store

	// 性能指标
	metrics *Metrics
	// 系统状态持久化
	persistence *output.Persistence
	// 交通报告生成器
	reporter *output.Reporter

	// 步进互斥，保证同一时刻只有一个步在执行
	stepMu sync.Mutex
	// 快照发布锁，保护lastSnapshot与stepLog
	snapMu sync.RWMutex
	// 最近一步的快照
	lastSnapshot entity.StepSnapshot
	// 步日志
	stepLog *container.Ring[entity.StepSnapshot]

	// 场景状态锁，保护下方的场景字段
	stateMu sync.RWMutex
	// 系统状态
	systemStatus entity.SystemStatus
	// 当前天气
	weather entity.WeatherCondition
	// 当前场景
	scenario entity.Scenario
	// 是否断电
	powerOutage bool
	// 是否高峰期
	rushHour bool
	// 是否行人专用相位
	pedestrianScramble bool

	// 步完成回调，服务启动前注册
	hooks []StepHook

	// 自动步进调度器
	auto *scheduler
}

// NewContext 创建新的仿真任务上下文
// 功能：初始化仿真系统的所有组件和配置
// 参数：job-任务名称，c-配置对象
// 返回：初始化完成的Context实例
// 算法说明：
// 1. 创建时钟与随机数引擎，种子为0时取当前时间
// 2. 加载运行参数存储并构建输入数据
// 3. 创建并初始化各管理器（传感器、路口、紧急车辆、监视器）
// 4. 应用配置中的初始场景与天气
func NewContext(job string, c config.Config) *Context {
	ctx := &Context{
		job:          job,
		systemStatus: entity.StatusNormal,
		weather:      entity.WeatherClear,
		scenario:     entity.ScenarioDay,
		stepLog:      container.NewRing[entity.StepSnapshot](stepLogSize),
		auto:         &scheduler{},
	}
	ctx.clock = clock.New(c.Control.Step)

	seed := c.Control.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	ctx.engine = randengine.New(seed)

	ctx.runtimeConfig = config.NewRuntimeConfig(c)
	ctx.settings = config.NewStore(c.Output.Settings)
	ctx.metrics = NewMetrics()
	ctx.persistence = output.NewPersistence(c.Output.DataDir)
	ctx.reporter = output.NewReporter(c.Output.ReportDir)

	// 新建各类模拟对象
	ctx.sensorManager = sensor.NewManager()
	ctx.intersectionManager = intersection.NewManager()
	ctx.emergencyManager = emergency.NewManager()
	ctx.monitor = monitor.NewMonitor(ctx)

	// 构建输入并初始化管理器
	initRes := input.Init(c, ctx.settings, ctx.engine)
	log.Infof("Intersection: %v", len(initRes.Intersections))
	log.Infof("Sensor: %v", len(initRes.Sensors))
	ctx.intersectionManager.Init(initRes.Intersections)
	ctx.sensorManager.Init(initRes.Sensors)

	// 应用初始场景与天气
	if c.Control.Scenario != "" {
		scenario, err := entity.ParseScenario(c.Control.Scenario)
		if err != nil {
			log.Panicf("bad scenario in config: %v", err)
		}
		ctx.LoadScenario(scenario)
	}
	if c.Control.Weather != "" {
		weather, err := entity.ParseWeather(c.Control.Weather)
		if err != nil {
			log.Panicf("bad weather in config: %v", err)
		}
		ctx.UpdateWeather(weather)
	}

	// 启动快照，供首次步进前的状态查询
	ctx.lastSnapshot = entity.StepSnapshot{
		Step:               ctx.clock.START_STEP,
		Timestamp:          time.Now(),
		SystemStatus:       ctx.SystemStatus(),
		Weather:            ctx.Weather(),
		Analytics:          entity.Analytics{Anomalies: []entity.Anomaly{}},
		IntersectionStates: ctx.intersectionManager.States(ctx.clock.START_STEP),
	}

	log.Infof("traffic control system initialized")
	return ctx
}

func (ctx *Context) Job() string {
	return ctx.job
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) SensorManager() entity.ISensorManager {
	return ctx.sensorManager
}

func (ctx *Context) IntersectionManager() entity.IIntersectionManager {
	return ctx.intersectionManager
}

func (ctx *Context) EmergencyManager() entity.IEmergencyManager {
	return ctx.emergencyManager
}

func (ctx *Context) Monitor() entity.IMonitor {
	return ctx.monitor
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Settings() *config.Store {
	return ctx.settings
}

func (ctx *Context) Metrics() *Metrics {
	return ctx.metrics
}

// UpdateWeather 更新当前天气
func (ctx *Context) UpdateWeather(w entity.WeatherCondition) {
	ctx.stateMu.Lock()
	ctx.weather = w
	ctx.stateMu.Unlock()
	log.Infof("weather updated to %s", w)
}

// LoadScenario 加载预设场景
// 功能：设置场景开关、对应天气与系统状态
// 算法说明：
// 1. 断电、高峰、行人专用开关跟随场景
// 2. 高峰场景提升车道容量参数，其余场景恢复默认
// 3. 天气由场景映射得到
// 4. 断电场景下系统状态为FAILURE，其余为NORMAL
func (ctx *Context) LoadScenario(s entity.Scenario) {
	ctx.stateMu.Lock()
	ctx.scenario = s
	ctx.powerOutage = s == entity.ScenarioPowerOutage
	ctx.rushHour = s == entity.ScenarioRushHour
	ctx.pedestrianScramble = s == entity.ScenarioPedestrianScramble
	ctx.weather = s.Weather()
	if ctx.powerOutage {
		ctx.systemStatus = entity.StatusFailure
	} else {
		ctx.systemStatus = entity.StatusNormal
	}
	rush, outage := ctx.rushHour, ctx.powerOutage
	ctx.stateMu.Unlock()

	if rush {
		ctx.settings.Set("intersections.max_cars_per_lane", 8)
		log.Infof("rush hour scenario: increased lane capacity")
	} else {
		ctx.settings.Set("intersections.max_cars_per_lane", 4)
	}
	if outage {
		log.Warnf("power outage scenario: traffic lights set to flashing yellow")
	}
	log.Infof("scenario loaded: %s", s)
}

// Scenario 获取当前场景
func (ctx *Context) Scenario() entity.Scenario {
	ctx.stateMu.RLock()
	defer ctx.stateMu.RUnlock()
	return ctx.scenario
}

// Weather 获取当前天气
func (ctx *Context) Weather() entity.WeatherCondition {
	ctx.stateMu.RLock()
	defer ctx.stateMu.RUnlock()
	return ctx.weather
}

// SystemStatus 获取系统状态
func (ctx *Context) SystemStatus() entity.SystemStatus {
	ctx.stateMu.RLock()
	defer ctx.stateMu.RUnlock()
	return ctx.systemStatus
}

// HandleEmergencyVehicle 处理紧急车辆登记
// 功能：登记紧急车辆并计算优先级、生成优先通行路线
// 返回：登记结果，包含优先级与路线
func (ctx *Context) HandleEmergencyVehicle(v *entity.Vehicle) EmergencyResult {
	if err := ctx.emergencyManager.Register(v); err != nil {
		return EmergencyResult{
			Success: false,
			Message: "Vehicle is not an emergency vehicle",
		}
	}
	priority := ctx.emergencyManager.CalculatePriority(v, ctx.Weather())
	route := ctx.emergencyManager.GenerateRoute(v, ctx.intersectionManager.IDs())
	v.Priority = priority
	ctx.metrics.IncEmergencyResponses()
	return EmergencyResult{
		Success:   true,
		VehicleID: v.ID,
		Priority:  priority,
		Route:     route,
		Message:   fmt.Sprintf("Emergency vehicle %s registered with priority %d", v.ID, priority),
	}
}

// Status 产生系统状态查询结果
// 说明：分析数据取自最近一步的快照，状态查询不重复处理传感器数据，
// 不产生历史写入等副作用
func (ctx *Context) Status() entity.StatusBlock {
	snap := ctx.LastSnapshot()
	return entity.StatusBlock{
		Step:              snap.Step,
		SystemStatus:      ctx.SystemStatus(),
		Weather:           ctx.Weather(),
		Analytics:         snap.Analytics,
		IntersectionCount: ctx.intersectionManager.Count(),
		SensorCount:       ctx.sensorManager.Count(),
		ActiveEmergencies: ctx.emergencyManager.Count(),
		Performance:       ctx.metrics.Summary(),
		Health:            ctx.metrics.Health(),
	}
}

// LastSnapshot 获取最近一步的快照
func (ctx *Context) LastSnapshot() entity.StepSnapshot {
	ctx.snapMu.RLock()
	defer ctx.snapMu.RUnlock()
	return ctx.lastSnapshot
}

// RecentSteps 获取最近n步的快照
func (ctx *Context) RecentSteps(n int) []entity.StepSnapshot {
	ctx.snapMu.RLock()
	defer ctx.snapMu.RUnlock()
	return ctx.stepLog.Tail(n)
}

// SaveState 保存系统状态
// 参数：filename-文件名，为空时按时间自动命名
// 返回：保存的文件路径
func (ctx *Context) SaveState(filename string) (string, error) {
	doc := entity.StateDocument{
		Timestamp:     time.Now(),
		SystemStatus:  ctx.Status(),
		Intersections: ctx.intersectionManager.Docs(),
		Sensors:       ctx.sensorManager.Readouts(),
		StepLog:       ctx.RecentSteps(stepLogSaveCount),
	}
	return ctx.persistence.SaveSystemState(doc, filename)
}

// LoadState 加载系统状态文档
func (ctx *Context) LoadState(filename string) (*entity.StateDocument, error) {
	return ctx.persistence.LoadSystemState(filename)
}

// ExportAnalytics 导出步日志
// 参数：format-导出格式，为空时使用运行参数中的默认格式
// 返回：导出的文件路径
func (ctx *Context) ExportAnalytics(format string) (string, error) {
	if format == "" {
		format = ctx.settings.GetString("reporting.export_format", "json")
	}
	return ctx.persistence.ExportAnalytics(ctx.RecentSteps(stepLogSize), format)
}

// GenerateReport 生成交通报告文本
func (ctx *Context) GenerateReport() string {
	return ctx.reporter.GenerateTrafficReport(ctx.Status())
}

// SaveReport 生成并保存交通报告
// 返回：保存的文件路径
func (ctx *Context) SaveReport(filename string) (string, error) {
	return ctx.reporter.SaveReport(ctx.GenerateReport(), filename)
}

// AddStepHook 注册步完成回调
// 说明：必须在步进开始前注册，回调在步进线程内执行
func (ctx *Context) AddStepHook(h StepHook) {
	ctx.hooks = append(ctx.hooks, h)
}

// Close 关闭任务
func (ctx *Context) Close() {
	if ctx.closed.Swap(true) {
		return
	}
	ctx.auto.stop()
	log.Infof("traffic control system closed")
}
