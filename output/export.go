package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
)

// CSV列顺序与StepSnapshot的JSON字段顺序一致
var analyticsCSVHeader = []string{
	"step",
	"timestamp",
	"system_status",
	"weather",
	"analytics",
	"intersection_states",
	"active_emergencies",
}

// ExportAnalytics 导出步日志
// 功能：将步快照序列导出为json或csv文件
// 参数：snapshots-步快照序列，format-导出格式
// 返回：导出的文件路径
// 说明：csv的嵌套字段以紧凑JSON写入单元格；
// 空序列导出json时产生空数组文件，导出csv时返回error
func (p *Persistence) ExportAnalytics(snapshots []entity.StepSnapshot, format string) (string, error) {
	if p.dataDir == "" {
		return "", fmt.Errorf("no output directory configured")
	}
	if err := os.MkdirAll(p.dataDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	timestamp := time.Now().Format(filenameTimeLayout)
	switch format {
	case "json":
		path := filepath.Join(p.dataDir, fmt.Sprintf("analytics_%s.json", timestamp))
		b, err := json.MarshalIndent(snapshots, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode analytics: %w", err)
		}
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return "", fmt.Errorf("failed to export analytics: %w", err)
		}
		log.Infof("analytics exported to %s", path)
		return path, nil
	case "csv":
		if len(snapshots) == 0 {
			return "", fmt.Errorf("no analytics data to export")
		}
		path := filepath.Join(p.dataDir, fmt.Sprintf("analytics_%s.csv", timestamp))
		f, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("failed to export analytics: %w", err)
		}
		defer f.Close()
		w := csv.NewWriter(f)
		if err := w.Write(analyticsCSVHeader); err != nil {
			return "", fmt.Errorf("failed to export analytics: %w", err)
		}
		for _, snap := range snapshots {
			record, err := csvRecord(snap)
			if err != nil {
				return "", fmt.Errorf("failed to export analytics: %w", err)
			}
			if err := w.Write(record); err != nil {
				return "", fmt.Errorf("failed to export analytics: %w", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return "", fmt.Errorf("failed to export analytics: %w", err)
		}
		log.Infof("analytics exported to %s", path)
		return path, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

// csvRecord 将单个步快照编码为CSV记录
func csvRecord(snap entity.StepSnapshot) ([]string, error) {
	analytics, err := json.Marshal(snap.Analytics)
	if err != nil {
		return nil, err
	}
	states, err := json.Marshal(snap.IntersectionStates)
	if err != nil {
		return nil, err
	}
	return []string{
		strconv.Itoa(int(snap.Step)),
		snap.Timestamp.Format(time.RFC3339Nano),
		string(snap.SystemStatus),
		string(snap.Weather),
		string(analytics),
		string(states),
		strconv.Itoa(snap.ActiveEmergencies),
	}, nil
}
