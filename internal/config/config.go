// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"
	"time"

	"portfolio-go/internal/model"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// EnvPrefix 是环境变量覆盖配置时使用的前缀，例如 PORTFOLIO_SERVER_PORT。
const EnvPrefix = "PORTFOLIO"

// 会话日志的存储后端。
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Session   SessionConfig   `mapstructure:"session"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Portfolio model.Portfolio `mapstructure:"portfolio"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// ChatConfig 控制助手聊天的节奏与会话寿命。
type ChatConfig struct {
	TypingDelay time.Duration `mapstructure:"typing_delay"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
}

// SessionConfig 选择会话日志的存储后端：memory 或 redis。
type SessionConfig struct {
	Store string `mapstructure:"store"`
}

// JWTConfig 存储会话令牌的签名密钥。
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// DatabaseConfig 存储所有外部存储连接的配置。
type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "")
	v.SetDefault("chat.typing_delay", 1500*time.Millisecond)
	v.SetDefault("chat.session_ttl", 30*time.Minute)
	v.SetDefault("session.store", StoreMemory)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("database.redis.addr", "localhost:6379")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
}

// Load 从指定路径读取 YAML 配置，并应用默认值与环境变量覆盖。
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Session.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("不支持的 session.store: %q", c.Session.Store)
	}
	if c.Chat.TypingDelay < 0 {
		return fmt.Errorf("chat.typing_delay 不能为负数: %s", c.Chat.TypingDelay)
	}
	if c.Chat.SessionTTL <= 0 {
		return fmt.Errorf("chat.session_ttl 必须大于 0: %s", c.Chat.SessionTTL)
	}
	return nil
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}
