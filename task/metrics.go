package task

import (
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/container"
)

const (
	stepTimeHistorySize = 1000 // 步耗时滑动窗口长度
	slowStepThreshold   = 1.0  // 平均步耗时告警阈值（秒）
	anomalyCountAlert   = 100  // 累计异常数告警阈值
)

// Metrics 性能指标
// 功能：跟踪步数、车辆吞吐、紧急响应与异常计数，产生健康检查结果
// 说明：仿真主循环与HTTP接口并发读写，内部加锁
type Metrics struct {
	mu                     sync.Mutex
	totalSteps             int64
	totalVehiclesProcessed int64
	emergencyResponses     int64
	anomaliesDetected      int64
	startTime              time.Time
	stepTimes              *container.Ring[float64]
}

// NewMetrics 创建性能指标
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
		stepTimes: container.NewRing[float64](stepTimeHistorySize),
	}
}

// TrackStep 记录一次步进耗时并累加步数
func (m *Metrics) TrackStep(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stepTimes.Push(duration)
	m.totalSteps++
}

// SetVehiclesProcessed 更新车辆吞吐计数
// 说明：该指标为覆盖而非累加，跟随最近一步的车辆总数
func (m *Metrics) SetVehiclesProcessed(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalVehiclesProcessed = n
}

// AddAnomalies 累加异常计数
func (m *Metrics) AddAnomalies(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anomaliesDetected += n
}

// IncEmergencyResponses 累加紧急响应计数
func (m *Metrics) IncEmergencyResponses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emergencyResponses++
}

// Summary 产生指标汇总
func (m *Metrics) Summary() entity.MetricsSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	uptime := time.Since(m.startTime).Seconds()
	avgStepTime := 0.0
	if m.stepTimes.Len() > 0 {
		avgStepTime, _ = stats.Mean(m.stepTimes.Values())
	}
	stepsPerSecond := 0.0
	if uptime > 0 {
		stepsPerSecond = float64(m.totalSteps) / uptime
	}
	return entity.MetricsSummary{
		TotalSteps:             m.totalSteps,
		TotalVehiclesProcessed: m.totalVehiclesProcessed,
		EmergencyResponses:     m.emergencyResponses,
		AnomaliesDetected:      m.anomaliesDetected,
		SystemUptime:           uptime,
		AverageStepTime:        avgStepTime,
		StepsPerSecond:         stepsPerSecond,
	}
}

// Health 产生健康检查结果
func (m *Metrics) Health() entity.HealthReport {
	summary := m.Summary()
	report := entity.HealthReport{
		Status: "HEALTHY",
		Issues: []string{},
	}
	if summary.AverageStepTime > slowStepThreshold {
		report.Issues = append(report.Issues, "High step execution time")
		report.Status = "WARNING"
	}
	if summary.AnomaliesDetected > anomalyCountAlert {
		report.Issues = append(report.Issues, "High anomaly count")
		report.Status = "WARNING"
	}
	return report
}
