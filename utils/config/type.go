package config

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
// 说明：控制仿真的时间范围、步长和精度
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 模拟器控制配置
// 功能：定义仿真系统的核心控制参数
// 说明：包含时间控制、随机种子与初始场景
type Control struct {
	Step     ControlStep `yaml:"step"`
	Seed     uint64      `yaml:"seed,omitempty"`     // 随机种子，0表示按当前时间播种
	Scenario string      `yaml:"scenario,omitempty"` // 初始场景
	Weather  string      `yaml:"weather,omitempty"`  // 初始天气，优先级高于场景推导的天气
}

// IntersectionSetup 路口初始配置项
// 功能：定义单个路口的信控参数
// 说明：省略的时长字段采用运行参数存储中的默认值
type IntersectionSetup struct {
	ID                     string     `yaml:"id"`                                 // 路口ID
	Position               [2]float64 `yaml:"position"`                           // 路口位置
	Roads                  []string   `yaml:"roads,omitempty"`                    // 接入道路名称
	DefaultGreenTime       float64    `yaml:"default_green_time,omitempty"`       // 默认绿灯时长（秒）
	DefaultYellowTime      float64    `yaml:"default_yellow_time,omitempty"`      // 默认黄灯时长（秒）
	DefaultPreGreenTime    float64    `yaml:"default_pre_green_time,omitempty"`   // 默认预绿时长（秒）
	DefaultRedTime         float64    `yaml:"default_red_time,omitempty"`         // 默认红灯时长（秒）
	MaxGreenTime           float64    `yaml:"max_green_time,omitempty"`           // 绿灯时长上限（秒）
	MinGreenTime           float64    `yaml:"min_green_time,omitempty"`           // 绿灯时长下限（秒）
	PedestrianCrossingTime float64    `yaml:"pedestrian_crossing_time,omitempty"` // 行人过街时长（秒）
	EmergencyOverride      *bool      `yaml:"emergency_override,omitempty"`       // 是否允许紧急车辆抢占，省略表示允许
}

// SensorSetup 传感器初始观测配置项
type SensorSetup struct {
	ID           string     `yaml:"id"`                      // 传感器ID
	Position     [2]float64 `yaml:"position"`                // 安装位置
	VehicleCount int32      `yaml:"vehicle_count,omitempty"` // 初始车流计数
	AverageSpeed float64    `yaml:"average_speed,omitempty"` // 初始平均车速（km/h）
	QueueLength  int32      `yaml:"queue_length,omitempty"`  // 初始排队长度
	Inactive     bool       `yaml:"inactive,omitempty"`      // 置true表示传感器离线
}

// Setup 指定模拟器初始实体的配置项
// 功能：定义路口与传感器的初始拓扑
// 说明：两个列表均为空时自动生成2x2路口的示例拓扑
type Setup struct {
	Intersections []IntersectionSetup `yaml:"intersections,omitempty"` // 路口列表
	Sensors       []SensorSetup       `yaml:"sensors,omitempty"`       // 传感器列表
}

// Output 输出配置
// 功能：定义状态持久化、报表与数据库记录的输出位置
// 说明：data_dir为空时禁用文件持久化，mongo_uri为空时禁用数据库记录
type Output struct {
	DataDir   string `yaml:"data_dir,omitempty"`   // 状态与分析数据输出目录
	ReportDir string `yaml:"report_dir,omitempty"` // 文本报告输出目录
	Settings  string `yaml:"settings,omitempty"`   // 运行参数存储文件路径
	MongoURI  string `yaml:"mongo_uri,omitempty"`  // MongoDB连接字符串
	MongoDB   string `yaml:"mongo_db,omitempty"`   // 数据库名
	MongoCol  string `yaml:"mongo_col,omitempty"`  // 集合名
}

// Server 对外服务配置
type Server struct {
	Listen string `yaml:"listen,omitempty"` // HTTP监听地址，为空表示不启动服务
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
// 说明：包含控制、初始拓扑、输出、服务等所有配置项
type Config struct {
	Control Control `yaml:"control"`          // 模拟过程控制
	Setup   Setup   `yaml:"setup,omitempty"`  // 初始拓扑
	Output  Output  `yaml:"output,omitempty"` // 输出
	Server  Server  `yaml:"server,omitempty"` // 对外服务
}
