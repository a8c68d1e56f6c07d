package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stocklens/internal/fundamental"
	"stocklens/internal/logger"
)

// Config 描述 Financial Modeling Prep 客户端的参数。
type Config struct {
	APIKey      string
	BaseURL     string
	HTTPTimeout time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.BaseURL == "" {
		out.BaseURL = "https://financialmodelingprep.com/api/v3"
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 15 * time.Second
	}
	return out
}

// Client 拉取财报与报价。
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	final := cfg.withDefaults()
	if final.APIKey == "" {
		return nil, fmt.Errorf("fmp: API key 未配置")
	}
	return &Client{
		cfg:        final,
		httpClient: &http.Client{Timeout: final.HTTPTimeout},
	}, nil
}

// FetchIncomeStatements 拉取最近 limit 期利润表，降序返回。
func (c *Client) FetchIncomeStatements(ctx context.Context, symbol string, limit int, period string) ([]fundamental.IncomeStatement, error) {
	var out []fundamental.IncomeStatement
	if err := c.get(ctx, "income-statement", symbol, limit, period, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchBalanceSheets 拉取最近 limit 期资产负债表，降序返回。
func (c *Client) FetchBalanceSheets(ctx context.Context, symbol string, limit int, period string) ([]fundamental.BalanceSheet, error) {
	var out []fundamental.BalanceSheet
	if err := c.get(ctx, "balance-sheet-statement", symbol, limit, period, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchCashFlows 拉取最近 limit 期现金流量表，降序返回。
func (c *Client) FetchCashFlows(ctx context.Context, symbol string, limit int, period string) ([]fundamental.CashFlowStatement, error) {
	var out []fundamental.CashFlowStatement
	if err := c.get(ctx, "cash-flow-statement", symbol, limit, period, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchQuote 拉取实时报价；接口对单个 symbol 也返回数组，取首条。
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*fundamental.Quote, error) {
	var quotes []fundamental.Quote
	if err := c.get(ctx, "quote", symbol, 1, "", &quotes); err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, nil
	}
	return &quotes[0], nil
}

func (c *Client) get(ctx context.Context, endpoint, symbol string, limit int, period string, dest any) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return fmt.Errorf("symbol 不能为空")
	}
	if limit <= 0 {
		limit = 4
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("limit", strconv.Itoa(limit))
	if period != "" {
		params.Set("period", period)
	}
	params.Set("apikey", c.cfg.APIKey)
	reqURL := fmt.Sprintf("%s/%s/?%s", c.cfg.BaseURL, endpoint, params.Encode())
	logger.Debugf("[fmp] GET %s %s", endpoint, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fmp: 请求失败: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("fmp: HTTP %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("fmp: 解码 %s 响应失败: %w", endpoint, err)
	}
	return nil
}
