package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config 是服务的全量配置，从 TOML 文件加载，环境变量可覆盖密钥类字段。
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
	Redis       RedisConfig       `toml:"redis"`
	Database    DatabaseConfig    `toml:"database"`
	TwelveData  TwelveDataConfig  `toml:"twelvedata"`
	FMP         FMPConfig         `toml:"fmp"`
	Binance     BinanceConfig     `toml:"binance"`
	Market      MarketConfig      `toml:"market"`
}

type ServerConfig struct {
	Addr            string `toml:"addr"`
	ReadTimeoutSec  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSec int    `toml:"write_timeout_seconds"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Enabled  bool   `toml:"enabled"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type TwelveDataConfig struct {
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	TimeoutSec int    `toml:"timeout_seconds"`
	OutputSize int    `toml:"output_size"`
}

type FMPConfig struct {
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	TimeoutSec int    `toml:"timeout_seconds"`
}

type BinanceConfig struct {
	Enabled bool   `toml:"enabled"`
	APIKey  string `toml:"api_key"`
	Secret  string `toml:"secret"`
}

// MarketConfig 描述市场概览用的 ETF 观察列表。
type MarketConfig struct {
	ETFs []ETFEntry `toml:"etfs"`
}

type ETFEntry struct {
	Symbol string `toml:"symbol"`
	Name   string `toml:"name"`
}

// Load 读取 TOML 配置；path 为空时尝试 config.toml，文件不存在则用默认值。
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		path = "config.toml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	applyEnvOverrides(cfg)
	cfg.normalize()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeoutSec:  15,
			WriteTimeoutSec: 30,
		},
		Log:      LogConfig{Level: "info"},
		Redis:    RedisConfig{Addr: "localhost:6379", Enabled: true},
		Database: DatabaseConfig{Path: "stocklens.db"},
		TwelveData: TwelveDataConfig{
			BaseURL:    "https://api.twelvedata.com",
			TimeoutSec: 15,
			OutputSize: 200,
		},
		FMP: FMPConfig{
			BaseURL:    "https://financialmodelingprep.com/api/v3",
			TimeoutSec: 15,
		},
		Market: MarketConfig{
			ETFs: []ETFEntry{
				{Symbol: "SPY", Name: "标普500"},
				{Symbol: "QQQ", Name: "纳指100"},
				{Symbol: "DIA", Name: "道琼斯"},
				{Symbol: "IWM", Name: "罗素2000"},
			},
		},
	}
}

// 密钥只允许从环境变量覆盖，避免写进配置文件后被误提交。
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TWELVE_DATA_API_KEY"); v != "" {
		cfg.TwelveData.APIKey = v
	}
	if v := os.Getenv("FMP_API_KEY"); v != "" {
		cfg.FMP.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("STOCKLENS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.TwelveData.OutputSize <= 0 {
		c.TwelveData.OutputSize = 200
	}
	if c.TwelveData.TimeoutSec <= 0 {
		c.TwelveData.TimeoutSec = 15
	}
	if c.FMP.TimeoutSec <= 0 {
		c.FMP.TimeoutSec = 15
	}
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSec) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutSec) * time.Second
}
