package task

import (
	"flag"
	"time"

	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
)

const (
	SelfName = "atcs" // 本程序在模拟任务集群中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// Step 执行一个仿真步
// 功能：推进仿真一步并返回该步的快照
// 返回：本步快照；步进失败时返回最近一次成功的快照
// 说明：步进由stepMu串行化，并发调用依次执行；
// 步进过程中的panic被截获并记录，不中断进程
func (ctx *Context) Step() (snap entity.StepSnapshot) {
	ctx.stepMu.Lock()
	defer ctx.stepMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("step %d failed: %v", ctx.clock.InternalStep, r)
			snap = ctx.LastSnapshot()
		}
	}()
	snap = ctx.step()
	for _, hook := range ctx.hooks {
		hook(snap)
	}
	return snap
}

// step 单步执行，每步执行一次
// 功能：在每个仿真步骤中执行主要的仿真逻辑
// 算法说明：
// 1. 时钟推进：增加内部步数并计算当前时间，定期输出心跳日志
// 2. 传感器扰动：对所有传感器施加随机扰动并发布新读数
// 3. 监视分析：处理传感器读数，得到整体指标与异常
// 4. 紧急等级：取最高优先级紧急车辆的等级作为抢占输入
// 5. 路口更新：并行推进所有路口的信号灯状态机
// 6. 指标更新：车辆吞吐为覆盖写入，异常计数仅在非空时累加
// 7. 快照发布：构造本步快照，写入步日志并发布
// 说明：这是仿真的核心阶段，执行所有实体的状态更新
func (ctx *Context) step() entity.StepSnapshot {
	stepStart := time.Now()

	ctx.clock.InternalStep++
	ctx.clock.T = float64(ctx.clock.InternalStep) * ctx.clock.DT
	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		log.Infof(
			"STEP: %d(%d:%d:%.2f)",
			ctx.clock.InternalStep,
			hour, minute, second,
		)
	}
	step := ctx.clock.InternalStep

	ctx.stateMu.RLock()
	systemStatus := ctx.systemStatus
	weather := ctx.weather
	outage := ctx.powerOutage
	scramble := ctx.pedestrianScramble
	rush := ctx.rushHour
	ctx.stateMu.RUnlock()

	ctx.sensorManager.Perturb(ctx.engine)
	readouts := ctx.sensorManager.Readouts()
	analytics := ctx.monitor.Process(readouts)

	level := entity.LevelNone
	if dominant := ctx.emergencyManager.Dominant(); dominant != nil {
		level = dominant.Level
	}

	ctx.intersectionManager.UpdateAll(step, readouts, weather, level, outage, scramble, rush)

	ctx.metrics.SetVehiclesProcessed(int64(analytics.TotalVehicles))
	if len(analytics.Anomalies) > 0 {
		ctx.metrics.AddAnomalies(int64(len(analytics.Anomalies)))
	}

	snap := entity.StepSnapshot{
		Step:               step,
		Timestamp:          time.Now(),
		SystemStatus:       systemStatus,
		Weather:            weather,
		Analytics:          analytics,
		IntersectionStates: ctx.intersectionManager.States(step),
		ActiveEmergencies:  ctx.emergencyManager.Count(),
	}

	ctx.snapMu.Lock()
	ctx.stepLog.Push(snap)
	ctx.lastSnapshot = snap
	ctx.snapMu.Unlock()

	ctx.metrics.TrackStep(time.Since(stepStart).Seconds())
	return snap
}

// Run 运行
// 功能：按配置的步数运行仿真直到结束
// 说明：配置了输出目录时按auto_save_interval定期保存系统状态
func (ctx *Context) Run() {
	autoSave := int32(ctx.settings.GetInt("system.auto_save_interval", 60))
	saveEnabled := ctx.runtimeConfig.All.Output.DataDir != ""
	for ctx.clock.InternalStep < ctx.clock.END_STEP {
		if ctx.closed.Load() {
			break
		}
		ctx.Step()
		if saveEnabled && autoSave > 0 && ctx.clock.InternalStep%autoSave == 0 {
			if _, err := ctx.SaveState(""); err != nil {
				log.Errorf("auto save failed: %v", err)
			}
		}
	}
	log.Infof("engine complete")
}
