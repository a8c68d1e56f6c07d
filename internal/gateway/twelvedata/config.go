package twelvedata

import "time"

// Config 描述 Twelve Data 客户端的参数。
type Config struct {
	APIKey      string
	BaseURL     string
	HTTPTimeout time.Duration
	OutputSize  int
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.BaseURL == "" {
		out.BaseURL = "https://api.twelvedata.com"
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 15 * time.Second
	}
	if out.OutputSize <= 0 {
		out.OutputSize = 200
	}
	return out
}
