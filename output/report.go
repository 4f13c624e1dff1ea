package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
)

// Reporter 交通报告生成器
type Reporter struct {
	reportDir string
}

// NewReporter 创建交通报告生成器
func NewReporter(reportDir string) *Reporter {
	return &Reporter{reportDir: reportDir}
}

// GenerateTrafficReport 生成交通报告文本
func (r *Reporter) GenerateTrafficReport(data entity.StatusBlock) string {
	border := strings.Repeat("=", 80)
	return fmt.Sprintf(`
%s
TRAFFIC CONTROL SYSTEM REPORT
%s
Generated: %s

SYSTEM STATUS
-------------
Status: %s
Weather: %s
Active Intersections: %d
Active Sensors: %d
Active Emergencies: %d

TRAFFIC ANALYTICS
-----------------
Total Vehicles: %d
Average Speed: %.1f km/h
Congestion Level: %.1f%%
Anomalies Detected: %d

PERFORMANCE METRICS
-------------------
Total Steps: %d
System Uptime: %.1fs
Average Step Time: %.4fs

%s
`,
		border,
		border,
		time.Now().Format("2006-01-02 15:04:05"),
		data.SystemStatus,
		data.Weather,
		data.IntersectionCount,
		data.SensorCount,
		data.ActiveEmergencies,
		data.Analytics.TotalVehicles,
		data.Analytics.AverageSpeed,
		data.Analytics.CongestionLevel*100,
		len(data.Analytics.Anomalies),
		data.Performance.TotalSteps,
		data.Performance.SystemUptime,
		data.Performance.AverageStepTime,
		border,
	)
}

// SaveReport 保存报告到文件
// 参数：report-报告文本，filename-文件名，为空时按时间自动命名
// 返回：保存的文件路径
func (r *Reporter) SaveReport(report string, filename string) (string, error) {
	if r.reportDir == "" {
		return "", fmt.Errorf("no report directory configured")
	}
	if filename == "" {
		filename = fmt.Sprintf("traffic_report_%s.txt", time.Now().Format(filenameTimeLayout))
	}
	if err := os.MkdirAll(r.reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(r.reportDir, filename)
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	log.Infof("report saved to %s", path)
	return path, nil
}
