package monitor

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/container"
)

const (
	minHistoryForDetection = 5  // 异常检测所需的最小历史长度
	detectionWindow        = 10 // 异常检测的滑动窗口长度
	rangeSigma             = 2  // 期望区间的标准差倍数
	congestionQueueScale   = 10 // 拥堵度归一化的队列长度基准
)

// TrafficMonitor 交通监视器
// 功能：汇总传感器读数为整体指标，并基于滑动窗口的z-score检测车流异常
type TrafficMonitor struct {
	threshold   float64                                          // z-score异常判定阈值
	historySize int                                              // 每个传感器的历史容量
	history     map[string]*container.Ring[entity.SensorReadout] // 传感器ID -> 历史读数
}

// NewMonitor 创建交通监视器
func NewMonitor(ctx entity.ITaskContext) *TrafficMonitor {
	settings := ctx.Settings()
	return &TrafficMonitor{
		threshold:   settings.GetFloat("sensors.anomaly_threshold", 2.0),
		historySize: settings.GetInt("sensors.history_size", 100),
		history:     make(map[string]*container.Ring[entity.SensorReadout]),
	}
}

// Process 处理一批传感器读数，返回整体指标与检测到的异常
// 算法说明：
// 1. 车辆总数对全部读数求和，均值类指标只统计活跃传感器，
//    没有活跃传感器时整体指标全部保持零值；
// 2. 对每个读数先基于已有历史做z-score检测，再写入历史，
//    历史不足minHistoryForDetection条时跳过检测；
// 3. 拥堵度为平均队列长度除以congestionQueueScale，截断到[0,1]
func (m *TrafficMonitor) Process(readouts []entity.SensorReadout) entity.Analytics {
	analytics := entity.Analytics{Anomalies: []entity.Anomaly{}}
	active := lo.Filter(readouts, func(r entity.SensorReadout, _ int) bool { return r.IsActive })
	if len(active) > 0 {
		analytics.TotalVehicles = lo.SumBy(readouts, func(r entity.SensorReadout) int32 { return r.VehicleCount })
		analytics.AverageSpeed = lo.SumBy(active, func(r entity.SensorReadout) float64 { return r.AverageSpeed }) / float64(len(active))
		avgQueue := lo.SumBy(active, func(r entity.SensorReadout) float64 { return float64(r.QueueLength) }) / float64(len(active))
		analytics.CongestionLevel = lo.Clamp(avgQueue/congestionQueueScale, 0, 1)
	}
	for _, r := range readouts {
		ring, ok := m.history[r.ID]
		if !ok {
			ring = container.NewRing[entity.SensorReadout](m.historySize)
			m.history[r.ID] = ring
		}
		if anomaly, ok := m.detect(ring, r); ok {
			analytics.Anomalies = append(analytics.Anomalies, anomaly)
		}
		ring.Push(r)
	}
	return analytics
}

// detect 基于历史窗口对单个读数做z-score检测
// 说明：检测发生在写入历史之前，当前读数不参与均值与标准差的计算
func (m *TrafficMonitor) detect(ring *container.Ring[entity.SensorReadout], r entity.SensorReadout) (entity.Anomaly, bool) {
	if ring.Len() < minHistoryForDetection {
		return entity.Anomaly{}, false
	}
	window := lo.Map(ring.Tail(detectionWindow), func(h entity.SensorReadout, _ int) float64 {
		return float64(h.VehicleCount)
	})
	mean, err := stats.Mean(window)
	if err != nil {
		return entity.Anomaly{}, false
	}
	stdev, err := stats.StandardDeviationSample(window)
	if err != nil || stdev == 0 {
		return entity.Anomaly{}, false
	}
	z := math.Abs(float64(r.VehicleCount)-mean) / stdev
	if z <= m.threshold {
		return entity.Anomaly{}, false
	}
	log.Debugf("sensor %s: vehicle count %d deviates from mean %.2f (z=%.2f)", r.ID, r.VehicleCount, mean, z)
	return entity.Anomaly{
		SensorID:      r.ID,
		Kind:          "vehicle_count",
		Value:         r.VehicleCount,
		ExpectedRange: [2]float64{mean - rangeSigma*stdev, mean + rangeSigma*stdev},
		Timestamp:     r.LastUpdate,
	}, true
}

// HistoryLen 获取指定传感器的历史长度
func (m *TrafficMonitor) HistoryLen(sensorID string) int {
	if ring, ok := m.history[sensorID]; ok {
		return ring.Len()
	}
	return 0
}
