package store

import (
	"context"
	"testing"

	"stocklens/internal/market"
)

func candle(ts int64, close float64) market.Candle {
	return market.Candle{Timestamp: ts, Open: close - 1, High: close + 1, Low: close - 2, Close: close, Volume: 100}
}

func TestMemoryPriceStoreRoundTrip(t *testing.T) {
	s := NewMemoryPriceStore(0)
	ctx := context.Background()

	in := []market.Candle{candle(1000, 10), candle(2000, 11), candle(3000, 12)}
	if err := s.SavePrices(ctx, "AAPL", "1day", in); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	out, err := s.LoadPrices(ctx, "AAPL", "1day", 0)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(out) != 3 || out[0].Timestamp != 1000 || out[2].Close != 12 {
		t.Fatalf("读回数据不符: %+v", out)
	}

	// limit 取最近的 K 线。
	out, err = s.LoadPrices(ctx, "AAPL", "1day", 2)
	if err != nil {
		t.Fatalf("限量读取失败: %v", err)
	}
	if len(out) != 2 || out[0].Timestamp != 2000 {
		t.Fatalf("限量读取应取最近两根: %+v", out)
	}
}

func TestMemoryPriceStoreOverwritesSameBar(t *testing.T) {
	s := NewMemoryPriceStore(0)
	ctx := context.Background()

	if err := s.SavePrices(ctx, "AAPL", "1day", []market.Candle{candle(1000, 10)}); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	// 同一时间戳的增量更新覆盖末尾。
	if err := s.SavePrices(ctx, "AAPL", "1day", []market.Candle{candle(1000, 10.5)}); err != nil {
		t.Fatalf("二次写入失败: %v", err)
	}

	out, _ := s.LoadPrices(ctx, "AAPL", "1day", 0)
	if len(out) != 1 || out[0].Close != 10.5 {
		t.Fatalf("同根 K 线应覆盖而非追加: %+v", out)
	}
}

func TestMemoryPriceStoreTrimsToMax(t *testing.T) {
	s := NewMemoryPriceStore(2)
	ctx := context.Background()

	in := []market.Candle{candle(1000, 10), candle(2000, 11), candle(3000, 12)}
	if err := s.SavePrices(ctx, "AAPL", "1day", in); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	out, _ := s.LoadPrices(ctx, "AAPL", "1day", 0)
	if len(out) != 2 || out[0].Timestamp != 2000 {
		t.Fatalf("超限后应保留最近的 K 线: %+v", out)
	}
}

func TestMemoryPriceStoreValidation(t *testing.T) {
	s := NewMemoryPriceStore(0)
	ctx := context.Background()

	if err := s.SavePrices(ctx, "", "1day", []market.Candle{candle(1000, 10)}); err == nil {
		t.Fatal("空 symbol 应报错")
	}
	if _, err := s.LoadPrices(ctx, "AAPL", "", 0); err == nil {
		t.Fatal("空 interval 应报错")
	}
	out, err := s.LoadPrices(ctx, "MSFT", "1day", 0)
	if err != nil || out != nil {
		t.Fatalf("未知 symbol 应返回空: %v %v", out, err)
	}

	// interval 之间互不影响。
	if err := s.SavePrices(ctx, "AAPL", "1day", []market.Candle{candle(1000, 10)}); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	if out, _ := s.LoadPrices(ctx, "AAPL", "5min", 0); out != nil {
		t.Fatalf("不同 interval 不应串数据: %+v", out)
	}
}
