package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	WorkerPool WorkerPoolConfig `mapstructure:"worker_pool"`
	Invitation InvitationConfig `mapstructure:"invitation"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
	// NodeID 作为邀请码生成器的 worker ID，多实例部署时必须互不相同
	NodeID int64 `mapstructure:"node_id"`
}

type PostgresConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// KafkaConfig 通知投递使用的 Kafka 配置，Brokers 为空时降级为日志通知
type KafkaConfig struct {
	Brokers []string     `mapstructure:"brokers"`
	Topics  TopicsConfig `mapstructure:"topics"`
	// MaxRetries 生产者内部重试次数
	MaxRetries int `mapstructure:"max_retries"`
	// ConsumerGroup 投递消费者所在的消费组，Consume 为 false 时不启动消费者
	ConsumerGroup string `mapstructure:"consumer_group"`
	Consume       bool   `mapstructure:"consume"`
}

type TopicsConfig struct {
	Notifications string `mapstructure:"notifications"`
	Invitations   string `mapstructure:"invitations"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error, fatal
	Format   string `mapstructure:"format"` // json, text
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`
}

// RateLimitConfig 邀请接口的限流配置（每个用户每个窗口内的最大请求数）
type RateLimitConfig struct {
	InviteLimit   int `mapstructure:"invite_limit"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

type WorkerPoolConfig struct {
	Size      int `mapstructure:"size"`
	QueueSize int `mapstructure:"queue_size"`
}

type InvitationConfig struct {
	TTLHours int `mapstructure:"ttl_hours"`
}

func (c InvitationConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

const envPrefix = "STUDYCONNECT"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.node_id", 1)

	v.SetDefault("postgres.host", "127.0.0.1")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "studyconnect")
	v.SetDefault("postgres.max_idle_conns", 10)
	v.SetDefault("postgres.max_open_conns", 50)

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topics.notifications", "studyconnect.notifications")
	v.SetDefault("kafka.topics.invitations", "studyconnect.invitations")
	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.consumer_group", "studyconnect-delivery")
	v.SetDefault("kafka.consume", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "studyconnect.log")

	v.SetDefault("ratelimit.invite_limit", 30)
	v.SetDefault("ratelimit.window_seconds", 3600)

	v.SetDefault("worker_pool.size", 64)
	v.SetDefault("worker_pool.queue_size", 1024)

	v.SetDefault("invitation.ttl_hours", 7*24)
}

// LoadConfig 读取配置文件，缺失的键使用默认值，环境变量 STUDYCONNECT_* 优先级最高。
// path 为空时只使用默认值和环境变量。
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}
