package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	Billing   BillingConfig   `mapstructure:"billing"`
	Sweep     SweepConfig     `mapstructure:"sweep"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, sqlite
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	Path         string `mapstructure:"path"` // sqlite 文件路径
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
}

type StripeConfig struct {
	SecretKey     string            `mapstructure:"secret_key"`
	WebhookSecret string            `mapstructure:"webhook_secret"`
	Prices        map[string]string `mapstructure:"prices"` // plan -> price id
	AppURL        string            `mapstructure:"app_url"`
}

type BillingConfig struct {
	// 允许直接改套餐（不经 Stripe），仅用于开发环境
	AllowManualPlanChange bool `mapstructure:"allow_manual_plan_change"`
}

type SweepConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	IntervalHours int  `mapstructure:"interval_hours"`
}

// PriceID 返回套餐对应的 Stripe price
func (c StripeConfig) PriceID(plan string) string {
	return c.Prices[plan]
}

// SuccessURL / CancelURL 与前端页面约定
func (c StripeConfig) SuccessURL() string {
	return c.appURL() + "/success?session_id={CHECKOUT_SESSION_ID}"
}

func (c StripeConfig) CancelURL() string {
	return c.appURL() + "/upgrade?canceled=1"
}

func (c StripeConfig) appURL() string {
	if c.AppURL == "" {
		return "http://localhost:3000"
	}
	return strings.TrimRight(c.AppURL, "/")
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	// .env 中的 STRIPE_* 等密钥先进入环境变量，再由 viper 覆盖
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	setDefaults(v)

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("jwt.expire_hours", 168)
	v.SetDefault("log.level", "info")
	v.SetDefault("rate_limit.per_minute", 60)
	v.SetDefault("sweep.enabled", true)
	v.SetDefault("sweep.interval_hours", 1)
}
