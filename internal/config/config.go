package config

import (
	"fmt"
	"time"

	"taskboard/pkg/config"
)

const (
	defaultPort     = "8080"
	defaultCacheTTL = 10 * time.Minute
	defaultJWTTTL   = 24 * time.Hour
)

type Config struct {
	Server config.ServerConfig `yaml:"server"`
	DB     config.DBConfig     `yaml:"db"`
	MQ     config.MQConfig     `yaml:"mq"`
	Redis  config.RedisConfig  `yaml:"redis"`
	JWT    config.JWTConfig    `yaml:"jwt"`
	Cache  config.CacheConfig  `yaml:"cache"`
	Worker WorkerConfig        `yaml:"worker"`
}

// WorkerConfig tunes the event consumer in cmd/worker.
type WorkerConfig struct {
	MaxRetries  int64         `yaml:"max_retries"`
	DedupTTL    time.Duration `yaml:"dedup_ttl"`
	MetricsPort string        `yaml:"metrics_port"`
}

// Load reads config/<CONFIG_ENV>.yaml on top of config/base.yaml. CONFIG_DIR moves the
// directory.
func Load() (*Config, error) {
	return LoadFrom(config.GetConfigEnv(), config.GetEnv("CONFIG_DIR", "config"))
}

func LoadFrom(env, dir string) (*Config, error) {
	cfgMap, err := config.LoadConfig(env, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var cfg Config
	if err := config.Decode(cfgMap, &cfg); err != nil {
		return nil, err
	}

	// environment variables win over the files
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideCacheFromEnv(&cfg.Cache)

	cfg.applyDefaults()
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
	if c.JWT.TTL <= 0 {
		c.JWT.TTL = defaultJWTTTL
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = defaultCacheTTL
	}
	if c.Worker.MaxRetries <= 0 {
		c.Worker.MaxRetries = 5
	}
	if c.Worker.DedupTTL <= 0 {
		c.Worker.DedupTTL = 24 * time.Hour
	}
	if c.Worker.MetricsPort == "" {
		c.Worker.MetricsPort = "9091"
	}
}
