package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Env       string              `mapstructure:"env"` // 环境: development, production
	Server    ServerConfig        `mapstructure:"server"`
	Database  DatabaseConfig      `mapstructure:"database"`
	Auth      AuthConfig          `mapstructure:"auth"`
	CORS      CORSConfig          `mapstructure:"cors"`
	Log       LogConfig           `mapstructure:"log"`
	Workflows map[string][]string `mapstructure:"workflows"` // 默认工作流目录
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig 数据库配置
// Driver 为 sqlite 时只使用 Path,其余字段用于 postgres
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // sqlite, postgres
	Path     string `mapstructure:"path"`   // sqlite 数据库文件
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	AdminUsername string `mapstructure:"admin_username"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error
	Format string `mapstructure:"format"` // 日志格式: json, text
	Output string `mapstructure:"output"` // 输出位置: stdout, file, both
}

// Load 加载配置,支持配置文件和环境变量
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.work-calendar")
		// 忽略配置文件不存在的错误,使用默认值
		_ = v.ReadInConfig()
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// IsProduction 判断是否为生产环境
func IsProduction(cfg *Config) bool {
	if cfg == nil {
		return false
	}
	return cfg.Env == "production"
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	env := v.GetString("env")
	if env == "" {
		env = os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
		}
	}
	v.SetDefault("env", env)

	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5005)

	// 数据库默认配置
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "instance/work_calendar.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "work_calendar")
	v.SetDefault("database.sslmode", "disable")

	// 认证默认配置
	v.SetDefault("auth.jwt_secret", "your-secret-key-here")
	v.SetDefault("auth.admin_username", "stuartzhang")
	v.SetDefault("auth.admin_email", "admin@example.com")
	v.SetDefault("auth.admin_password", "Pw123456@python")

	// CORS 默认配置
	v.SetDefault("cors.allowed_origins", []string{"*"})

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stdout")

	// 默认工作流目录
	// 种子数据由配置提供,核心逻辑只接受注入的目录
	v.SetDefault("workflows", DefaultWorkflowCatalog())
}

// DefaultWorkflowCatalog 内置的默认工作流模板目录
func DefaultWorkflowCatalog() map[string][]string {
	return map[string][]string{
		"五年战略规划": {
			"来文需求研究",
			"历史数据调研",
			"拟定框架",
			"提交至各部门收集数据",
			"梳理与补充内容材料",
			"各部门审阅",
			"领导审阅",
			"提交上级单位",
		},
		"商业计划": {
			"市场分析",
			"竞争对手分析",
			"商业模式设计",
			"财务预测",
			"营销策略",
			"运营计划",
			"团队建设",
			"风险管理",
		},
		"管理报告": {
			"数据收集和整理",
			"关键指标分析",
			"问题识别和分析",
			"解决方案制定",
			"报告撰写",
			"图表制作",
			"内部审核",
			"最终提交",
		},
		"临时报告": {
			"需求确认",
			"资料收集",
			"分析和总结",
			"报告撰写",
			"审核和修改",
			"提交",
		},
		"创新管理": {
			"创新需求识别",
			"创新方案征集",
			"方案评估",
			"项目立项",
			"资源配置",
			"项目实施",
			"效果评估",
			"推广应用",
		},
	}
}
