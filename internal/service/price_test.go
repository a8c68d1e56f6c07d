package service

import (
	"context"
	"strings"
	"testing"

	"stocklens/internal/cache"
	"stocklens/internal/store"
)

func newPriceService(src *fakeSource) *PriceService {
	return NewPriceService(src, store.NewMemoryPriceStore(0), cache.NewMemory(), 200, testETFs)
}

func TestGetPriceCachesResult(t *testing.T) {
	src := newFakeSource(60)
	svc := newPriceService(src)
	ctx := context.Background()

	first, err := svc.GetPrice(ctx, "aapl", "1day")
	if err != nil {
		t.Fatalf("首次拉取失败: %v", err)
	}
	if first.Meta.Symbol != "AAPL" {
		t.Fatalf("symbol 应被大写化, got %s", first.Meta.Symbol)
	}
	if first.Data.Len() != 60 {
		t.Fatalf("期望 60 根 K 线, got %d", first.Data.Len())
	}

	second, err := svc.GetPrice(ctx, "AAPL", "1day")
	if err != nil {
		t.Fatalf("二次拉取失败: %v", err)
	}
	if second.Data.Len() != 60 {
		t.Fatalf("缓存结果长度不符: %d", second.Data.Len())
	}
	if src.fetchCalls() != 1 {
		t.Fatalf("二次请求应命中缓存, 实际调用供应商 %d 次", src.fetchCalls())
	}
}

func TestGetPriceEmptySymbol(t *testing.T) {
	svc := newPriceService(newFakeSource(60))
	if _, err := svc.GetPrice(context.Background(), "  ", "1day"); err == nil {
		t.Fatal("空 symbol 应报错")
	}
}

func TestGetPriceFallsBackToStore(t *testing.T) {
	src := newFakeSource(30)
	svc := newPriceService(src)
	ctx := context.Background()

	// 先正常拉一次，把数据写进 store。
	if _, err := svc.GetPrice(ctx, "TSLA", "1day"); err != nil {
		t.Fatalf("预热拉取失败: %v", err)
	}

	// 供应商故障后应退回数据库数据；换一个缓存实例模拟缓存过期。
	src.fail["TSLA"] = true
	svc.cache = cache.NewMemory()
	history, err := svc.GetPrice(ctx, "TSLA", "1day")
	if err != nil {
		t.Fatalf("应退回数据库数据而非报错: %v", err)
	}
	if history.Meta.Source != "database" {
		t.Fatalf("退回数据的 source 应为 database, got %s", history.Meta.Source)
	}
	if history.Data.Len() != 30 {
		t.Fatalf("退回数据长度不符: %d", history.Data.Len())
	}
}

func TestGetPriceFailsWithoutFallback(t *testing.T) {
	src := newFakeSource(30)
	src.fail["TSLA"] = true
	svc := newPriceService(src)

	_, err := svc.GetPrice(context.Background(), "TSLA", "1day")
	if err == nil {
		t.Fatal("无兜底数据时应报错")
	}
	if !strings.Contains(err.Error(), "TSLA") {
		t.Fatalf("错误信息应包含 symbol: %v", err)
	}
}

func TestMarketETFs(t *testing.T) {
	src := newFakeSource(30)
	src.fail["QQQ"] = true
	svc := newPriceService(src)
	ctx := context.Background()

	result, err := svc.MarketETFs(ctx)
	if err != nil {
		t.Fatalf("ETF 摘要失败: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("期望 2 个 ETF, got %d", len(result))
	}
	spy := result["SPY"]
	if spy.Error != "" {
		t.Fatalf("SPY 不应失败: %s", spy.Error)
	}
	if spy.Close == 0 || spy.Datetime == "" {
		t.Fatalf("SPY 摘要字段缺失: %+v", spy)
	}
	qqq := result["QQQ"]
	if qqq.Error == "" {
		t.Fatal("QQQ 应携带错误信息")
	}
	if qqq.Name != "纳指100" {
		t.Fatalf("失败条目应保留名称, got %s", qqq.Name)
	}

	// 二次调用命中缓存。
	calls := src.fetchCalls()
	if _, err := svc.MarketETFs(ctx); err != nil {
		t.Fatalf("二次调用失败: %v", err)
	}
	if src.fetchCalls() != calls {
		t.Fatal("ETF 摘要应命中缓存")
	}
}

func TestSearchCachesResult(t *testing.T) {
	src := newFakeSource(30)
	svc := newPriceService(src)
	ctx := context.Background()

	matches, err := svc.Search(ctx, "apple")
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if len(matches) != 1 || matches[0].Symbol != "AAPL" {
		t.Fatalf("搜索结果不符: %+v", matches)
	}
	if _, err := svc.Search(ctx, "apple"); err != nil {
		t.Fatalf("二次搜索失败: %v", err)
	}
	if src.fetchCalls() != 1 {
		t.Fatalf("二次搜索应命中缓存, 实际调用 %d 次", src.fetchCalls())
	}

	if _, err := svc.Search(ctx, "   "); err == nil {
		t.Fatal("空关键字应报错")
	}
}
