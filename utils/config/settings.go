package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

// 运行参数默认值，键为点分路径
var defaultSettings = map[string]any{
	"system.name":                            "Advanced Traffic Control System",
	"system.version":                         "2.0.0",
	"system.auto_save_interval":              60,
	"system.log_level":                       "INFO",
	"intersections.default_green_time":       10.0,
	"intersections.default_yellow_time":      3.0,
	"intersections.default_pre_green_time":   1.5,
	"intersections.default_red_time":         10.0,
	"intersections.max_green_time":           35.0,
	"intersections.min_green_time":           3.0,
	"intersections.pedestrian_crossing_time": 15.0,
	"intersections.max_cars_per_lane":        4,
	"sensors.anomaly_threshold":              2.0,
	"sensors.history_size":                   100,
	"sensors.update_interval":                1.0,
	"emergency.priority_multiplier":          2.0,
	"emergency.route_optimization":           true,
	"reporting.export_format":                "json",
	"reporting.report_interval":              300,
}

// Store 运行参数存储
// 功能：提供点分路径的参数读写与持久化
// 说明：基于viper实现，文件中的值覆盖默认值，Set的值覆盖两者
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// NewStore 创建运行参数存储
// 功能：以内置默认值初始化存储，并尝试从文件加载覆盖值
// 参数：path-参数文件路径，为空表示仅使用内存存储
// 返回：运行参数存储指针
// 说明：文件不存在或解析失败时回退到默认值，不视为错误
func NewStore(path string) *Store {
	v := viper.New()
	for key, value := range defaultSettings {
		v.SetDefault(key, value)
	}
	s := &Store{v: v, path: path}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			log.Warnf("settings file %s not loaded, using defaults: %v", path, err)
		} else {
			log.Infof("settings loaded from %s", path)
		}
	}
	return s
}

// Has 判断参数是否存在
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.IsSet(key)
}

// Get 读取参数
// 功能：按点分路径读取参数，不存在时返回调用方提供的默认值
func (s *Store) Get(key string, def any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.v.IsSet(key) {
		return def
	}
	return s.v.Get(key)
}

// GetFloat 读取浮点参数，不存在时返回def
func (s *Store) GetFloat(key string, def float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.v.IsSet(key) {
		return def
	}
	return s.v.GetFloat64(key)
}

// GetInt 读取整型参数，不存在时返回def
func (s *Store) GetInt(key string, def int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.v.IsSet(key) {
		return def
	}
	return s.v.GetInt(key)
}

// GetString 读取字符串参数，不存在时返回def
func (s *Store) GetString(key string, def string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.v.IsSet(key) {
		return def
	}
	return s.v.GetString(key)
}

// GetBool 读取布尔参数，不存在时返回def
func (s *Store) GetBool(key string, def bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.v.IsSet(key) {
		return def
	}
	return s.v.GetBool(key)
}

// Set 写入参数
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
}

// Save 将当前参数写入文件
// 功能：将默认值与覆盖值合并后写入参数文件
// 返回：未配置参数文件或写入失败时返回error
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return fmt.Errorf("no settings file configured")
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	log.Infof("settings saved to %s", s.path)
	return nil
}
