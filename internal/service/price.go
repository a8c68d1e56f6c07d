package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"stocklens/internal/cache"
	"stocklens/internal/config"
	"stocklens/internal/logger"
	"stocklens/internal/market"
	"stocklens/internal/store"
)

// PriceService 统一历史行情入口：缓存 → 供应商 → 落库 → 回填缓存。
// singleflight 合并同一 symbol+interval 的并发请求，避免击穿限流。
type PriceService struct {
	source     market.Source
	store      store.PriceStore
	cache      cache.Cache
	outputSize int
	etfs       []config.ETFEntry

	group singleflight.Group
}

func NewPriceService(source market.Source, priceStore store.PriceStore, c cache.Cache, outputSize int, etfs []config.ETFEntry) *PriceService {
	if outputSize <= 0 {
		outputSize = 200
	}
	return &PriceService{
		source:     source,
		store:      priceStore,
		cache:      c,
		outputSize: outputSize,
		etfs:       etfs,
	}
}

// GetPrice 返回按时间升序的历史行情。
func (s *PriceService) GetPrice(ctx context.Context, symbol, interval string) (market.History, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return market.History{}, fmt.Errorf("symbol 不能为空")
	}
	if interval == "" {
		interval = "1day"
	}
	key := cache.PriceKey(symbol, interval)

	var cached market.History
	if hit, _ := s.cache.GetJSON(ctx, key, &cached); hit {
		logger.Debugf("[price] 缓存命中 %s-%s", symbol, interval)
		return cached, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		return s.fetchAndStore(ctx, symbol, interval, key)
	})
	if err != nil {
		return market.History{}, err
	}
	return result.(market.History), nil
}

func (s *PriceService) fetchAndStore(ctx context.Context, symbol, interval, key string) (market.History, error) {
	history, err := s.source.FetchHistory(ctx, symbol, interval, s.outputSize)
	if err != nil {
		// 供应商不可用时退回数据库里的最后一份历史。
		if fallback, ok := s.loadFromStore(ctx, symbol, interval); ok {
			logger.Warnf("[price] %s-%s 拉取失败，使用数据库数据: %v", symbol, interval, err)
			return fallback, nil
		}
		return market.History{}, fmt.Errorf("获取 %s 历史行情失败: %w", symbol, err)
	}
	if history.Data.Len() == 0 {
		return market.History{}, fmt.Errorf("供应商没有返回 %s 的行情数据", symbol)
	}

	if s.store != nil {
		candles := seriesToCandles(history.Data)
		if err := s.store.SavePrices(ctx, symbol, interval, candles); err != nil {
			logger.Warnf("[price] 落库 %s-%s 失败: %v", symbol, interval, err)
		}
	}
	if err := s.cache.SetJSON(ctx, key, history, cache.PriceTTL(interval)); err != nil {
		logger.Warnf("[price] 缓存 %s 失败: %v", key, err)
	}
	logger.Infof("[price] %s-%s 拉取 %d 根 K 线", symbol, interval, history.Data.Len())
	return history, nil
}

func (s *PriceService) loadFromStore(ctx context.Context, symbol, interval string) (market.History, bool) {
	if s.store == nil {
		return market.History{}, false
	}
	candles, err := s.store.LoadPrices(ctx, symbol, interval, s.outputSize)
	if err != nil || len(candles) == 0 {
		return market.History{}, false
	}
	return market.History{
		Meta: market.Meta{Symbol: symbol, Interval: interval, Source: "database"},
		Data: market.ToSeries(candles),
	}, true
}

func seriesToCandles(s market.Series) []market.Candle {
	out := make([]market.Candle, s.Len())
	for i := range out {
		out[i] = market.Candle{
			Timestamp: s.Timestamps[i],
			Open:      s.Open[i],
			High:      s.High[i],
			Low:       s.Low[i],
			Close:     s.Close[i],
			Volume:    s.Volume[i],
		}
	}
	return out
}

// ETFSummary 是大盘 ETF 的最新一根日线摘要。
type ETFSummary struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Close    float64 `json:"close,omitempty"`
	Open     float64 `json:"open,omitempty"`
	High     float64 `json:"high,omitempty"`
	Low      float64 `json:"low,omitempty"`
	Volume   float64 `json:"volume,omitempty"`
	Datetime string  `json:"datetime,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Error    string  `json:"error,omitempty"`
}

const etfSummaryKey = "market_etfs:summary"

// MarketETFs 汇总配置的大盘 ETF 最新日线；单个 ETF 失败不影响其它。
func (s *PriceService) MarketETFs(ctx context.Context) (map[string]ETFSummary, error) {
	var cached map[string]ETFSummary
	if hit, _ := s.cache.GetJSON(ctx, etfSummaryKey, &cached); hit {
		return cached, nil
	}

	result := make(map[string]ETFSummary, len(s.etfs))
	for _, etf := range s.etfs {
		history, err := s.GetPrice(ctx, etf.Symbol, "1day")
		if err != nil {
			logger.Warnf("[price] 获取 ETF %s 失败: %v", etf.Symbol, err)
			result[etf.Symbol] = ETFSummary{Symbol: etf.Symbol, Name: etf.Name, Error: err.Error()}
			continue
		}
		idx := history.Data.Len() - 1
		result[etf.Symbol] = ETFSummary{
			Symbol:   etf.Symbol,
			Name:     etf.Name,
			Close:    history.Data.Close[idx],
			Open:     history.Data.Open[idx],
			High:     history.Data.High[idx],
			Low:      history.Data.Low[idx],
			Volume:   history.Data.Volume[idx],
			Datetime: market.FormatTimestamp(history.Data.Timestamps[idx]),
			Currency: history.Meta.Currency,
		}
	}

	if err := s.cache.SetJSON(ctx, etfSummaryKey, result, cache.TTLIntraday); err != nil {
		logger.Warnf("[price] 缓存 ETF 摘要失败: %v", err)
	}
	return result, nil
}

// Search 按关键字搜索符号，结果缓存一小时。
func (s *PriceService) Search(ctx context.Context, keyword string) ([]market.SymbolMatch, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("关键字不能为空")
	}
	key := cache.SearchKey(keyword)
	var cached []market.SymbolMatch
	if hit, _ := s.cache.GetJSON(ctx, key, &cached); hit {
		return cached, nil
	}
	matches, err := s.source.SearchSymbols(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("搜索 %q 失败: %w", keyword, err)
	}
	if matches == nil {
		matches = []market.SymbolMatch{}
	}
	if err := s.cache.SetJSON(ctx, key, matches, cache.TTLSearch); err != nil {
		logger.Warnf("[price] 缓存搜索结果失败: %v", err)
	}
	return matches, nil
}

// LastUpdated 统一时间戳格式。
func LastUpdated() string {
	return time.Now().UTC().Format(time.RFC3339)
}
