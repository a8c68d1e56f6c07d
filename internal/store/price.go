package store

import (
	"context"
	"errors"
	"sync"

	"stocklens/internal/market"
)

// PriceStore 抽象：按 symbol+interval 读写历史 K 线。
type PriceStore interface {
	SavePrices(ctx context.Context, symbol, interval string, candles []market.Candle) error
	LoadPrices(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error)
}

// MemoryPriceStore 内存实现，未配置数据库时兜底。
type MemoryPriceStore struct {
	mu   sync.RWMutex
	data map[string][]market.Candle
	max  int
}

func NewMemoryPriceStore(max int) *MemoryPriceStore {
	if max <= 0 {
		max = 1000
	}
	return &MemoryPriceStore{data: make(map[string][]market.Candle), max: max}
}

func key(symbol, interval string) string { return symbol + "@" + interval }

// SavePrices 合并写入并裁剪到上限。
func (s *MemoryPriceStore) SavePrices(ctx context.Context, symbol, interval string, candles []market.Candle) error {
	if symbol == "" || interval == "" {
		return errors.New("symbol/interval 不能为空")
	}
	if len(candles) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(symbol, interval)
	cur := s.data[k]
	for _, candle := range candles {
		n := len(cur)
		if n > 0 && cur[n-1].Timestamp == candle.Timestamp {
			// 同一根 K 线的增量更新，覆盖末尾而非重复追加。
			cur[n-1] = candle
			continue
		}
		cur = append(cur, candle)
	}
	if len(cur) > s.max {
		cur = cur[len(cur)-s.max:]
	}
	s.data[k] = cur
	return nil
}

// LoadPrices 返回最近 limit 根 K 线的拷贝（按时间升序）。
func (s *MemoryPriceStore) LoadPrices(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if symbol == "" || interval == "" {
		return nil, errors.New("symbol/interval 不能为空")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur := s.data[key(symbol, interval)]
	if len(cur) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(cur) {
		limit = len(cur)
	}
	out := make([]market.Candle, limit)
	copy(out, cur[len(cur)-limit:])
	return out, nil
}
