package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stocklens/internal/logger"
	"stocklens/internal/market"
)

const maxOutputSize = 5000

// Source 实现了 market.Source，对接 Twelve Data 的 REST 接口。
type Source struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) (*Source, error) {
	final := cfg.withDefaults()
	if final.APIKey == "" {
		return nil, fmt.Errorf("twelvedata: API key 未配置")
	}
	return &Source{
		cfg:        final,
		httpClient: &http.Client{Timeout: final.HTTPTimeout},
	}, nil
}

func (s *Source) Name() string { return "twelve_data" }

type timeSeriesResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
		Currency string `json:"currency"`
		Exchange string `json:"exchange"`
	} `json:"meta"`
	Values []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// FetchHistory 拉取时间序列。供应商按时间降序返回，这里反转为升序。
func (s *Source) FetchHistory(ctx context.Context, symbol, interval string, limit int) (market.History, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return market.History{}, fmt.Errorf("symbol 不能为空")
	}
	interval = strings.ToLower(strings.TrimSpace(interval))
	if interval == "" {
		interval = "1day"
	}
	if limit <= 0 {
		limit = s.cfg.OutputSize
	}
	if limit > maxOutputSize {
		limit = maxOutputSize
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("outputsize", strconv.Itoa(limit))

	var payload timeSeriesResponse
	if err := s.get(ctx, "time_series", params, &payload); err != nil {
		return market.History{}, err
	}
	if payload.Status == "error" {
		msg := payload.Message
		if msg == "" {
			msg = "供应商返回未知错误"
		}
		return market.History{}, fmt.Errorf("twelvedata: %s", msg)
	}
	if len(payload.Values) == 0 {
		return market.History{}, fmt.Errorf("twelvedata: %s %s 无行情数据", symbol, interval)
	}

	n := len(payload.Values)
	series := market.Series{
		Timestamps: make([]int64, n),
		Open:       make([]float64, n),
		High:       make([]float64, n),
		Low:        make([]float64, n),
		Close:      make([]float64, n),
		Volume:     make([]float64, n),
	}
	for i, v := range payload.Values {
		// 降序 → 升序
		j := n - 1 - i
		ts, err := parseDatetime(v.Datetime)
		if err != nil {
			return market.History{}, fmt.Errorf("twelvedata: 解析时间 %q 失败: %w", v.Datetime, err)
		}
		series.Timestamps[j] = ts
		series.Open[j] = parseFloat(v.Open)
		series.High[j] = parseFloat(v.High)
		series.Low[j] = parseFloat(v.Low)
		series.Close[j] = parseFloat(v.Close)
		series.Volume[j] = parseFloat(v.Volume)
	}

	logger.Infof("[twelvedata] %s %s 取得 %d 根 K 线", symbol, interval, n)
	return market.History{
		Meta: market.Meta{
			Symbol:   symbol,
			Interval: interval,
			Currency: payload.Meta.Currency,
			Exchange: payload.Meta.Exchange,
			Source:   s.Name(),
		},
		Data: series,
	}, nil
}

type symbolSearchResponse struct {
	Data []struct {
		Symbol         string `json:"symbol"`
		InstrumentName string `json:"instrument_name"`
		Exchange       string `json:"exchange"`
		Currency       string `json:"currency"`
	} `json:"data"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Source) SearchSymbols(ctx context.Context, keyword string) ([]market.SymbolMatch, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("搜索关键字不能为空")
	}
	params := url.Values{}
	params.Set("symbol", keyword)

	var payload symbolSearchResponse
	if err := s.get(ctx, "symbol_search", params, &payload); err != nil {
		return nil, err
	}
	if payload.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", payload.Message)
	}
	out := make([]market.SymbolMatch, 0, len(payload.Data))
	for _, d := range payload.Data {
		out = append(out, market.SymbolMatch{
			Symbol:     d.Symbol,
			Instrument: d.InstrumentName,
			Exchange:   d.Exchange,
			Currency:   d.Currency,
		})
	}
	logger.Infof("[twelvedata] 搜索 %q 命中 %d 条", keyword, len(out))
	return out, nil
}

func (s *Source) get(ctx context.Context, endpoint string, params url.Values, dest any) error {
	params.Set("apikey", s.cfg.APIKey)
	reqURL := fmt.Sprintf("%s/%s?%s", s.cfg.BaseURL, endpoint, params.Encode())
	logger.Debugf("[twelvedata] GET %s", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("twelvedata: 请求失败: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("twelvedata: 触发限流 (HTTP 429)")
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("twelvedata: HTTP %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("twelvedata: 解码响应失败: %w", err)
	}
	return nil
}

// 日线只有日期，分钟级带时间，按先后尝试两种格式。
func parseDatetime(value string) (int64, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("无法识别的时间格式")
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(v, 64)
	return f
}
