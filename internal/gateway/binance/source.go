package binance

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	gobinance "github.com/adshao/go-binance/v2"

	"stocklens/internal/logger"
	"stocklens/internal/market"
)

const maxHistoryLimit = 1000

// 统一的 interval 命名映射到 Binance 的写法。
var intervalMap = map[string]string{
	"1min":   "1m",
	"5min":   "5m",
	"15min":  "15m",
	"30min":  "30m",
	"1h":     "1h",
	"2h":     "2h",
	"4h":     "4h",
	"1day":   "1d",
	"1week":  "1w",
	"1month": "1M",
}

// Source 实现了 market.Source，通过 Binance 现货接口拉取加密货币行情。
type Source struct {
	client *gobinance.Client
}

func New(cfg Config) *Source {
	final := cfg.withDefaults()
	client := gobinance.NewClient(final.APIKey, final.APISecret)
	client.HTTPClient = &http.Client{Timeout: final.HTTPTimeout}
	return &Source{client: client}
}

func (s *Source) Name() string { return "binance" }

func (s *Source) FetchHistory(ctx context.Context, symbol, interval string, limit int) (market.History, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return market.History{}, fmt.Errorf("symbol 不能为空")
	}
	if interval == "" {
		interval = "1day"
	}
	binanceInterval, ok := intervalMap[strings.ToLower(strings.TrimSpace(interval))]
	if !ok {
		return market.History{}, fmt.Errorf("binance 不支持 interval %q", interval)
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	logger.Debugf("[binance] klines symbol=%s interval=%s limit=%d", symbol, binanceInterval, limit)
	klines, err := s.client.NewKlinesService().
		Symbol(symbol).
		Interval(binanceInterval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return market.History{}, fmt.Errorf("binance 拉取 K 线失败: %w", err)
	}

	candles := make([]market.Candle, 0, len(klines))
	for _, k := range klines {
		candles = append(candles, market.Candle{
			Timestamp: k.OpenTime,
			Open:      parsePrice(k.Open),
			High:      parsePrice(k.High),
			Low:       parsePrice(k.Low),
			Close:     parsePrice(k.Close),
			Volume:    parsePrice(k.Volume),
		})
	}
	return market.History{
		Meta: market.Meta{
			Symbol:   symbol,
			Interval: interval,
			Currency: "USDT",
			Exchange: "Binance",
			Source:   s.Name(),
		},
		Data: market.ToSeries(candles),
	}, nil
}

// Binance 没有符号搜索接口，按约定返回空结果。
func (s *Source) SearchSymbols(ctx context.Context, keyword string) ([]market.SymbolMatch, error) {
	return []market.SymbolMatch{}, nil
}

func parsePrice(v string) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warnf("[binance] 非法数值 %q: %v", v, err)
		return 0
	}
	return f
}
