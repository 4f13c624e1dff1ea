package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
)

const filenameTimeLayout = "20060102_150405"

// Persistence 系统状态持久化
// 功能：将系统状态与分析数据以文件形式保存到输出目录
// 说明：输出目录为空时所有保存操作返回error
type Persistence struct {
	dataDir string
}

// NewPersistence 创建系统状态持久化
func NewPersistence(dataDir string) *Persistence {
	return &Persistence{dataDir: dataDir}
}

// SaveSystemState 保存系统状态文档
// 参数：doc-状态文档，filename-文件名，为空时按时间自动命名
// 返回：保存的文件路径
func (p *Persistence) SaveSystemState(doc entity.StateDocument, filename string) (string, error) {
	if p.dataDir == "" {
		return "", fmt.Errorf("no output directory configured")
	}
	if filename == "" {
		filename = fmt.Sprintf("system_state_%s.json", time.Now().Format(filenameTimeLayout))
	}
	if err := os.MkdirAll(p.dataDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(p.dataDir, filename)
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode system state: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("failed to save system state: %w", err)
	}
	log.Infof("system state saved to %s", path)
	return path, nil
}

// LoadSystemState 加载系统状态文档
func (p *Persistence) LoadSystemState(filename string) (*entity.StateDocument, error) {
	path := filepath.Join(p.dataDir, filename)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load system state: %w", err)
	}
	var doc entity.StateDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode system state: %w", err)
	}
	log.Infof("system state loaded from %s", path)
	return &doc, nil
}
