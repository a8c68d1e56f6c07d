package service

import (
	"context"
	"fmt"
	"sync"

	"stocklens/internal/config"
	"stocklens/internal/fundamental"
	"stocklens/internal/market"
)

// fakeSource 生成线性上行的合成行情，并统计拉取次数。
type fakeSource struct {
	mu    sync.Mutex
	calls int
	bars  int
	fail  map[string]bool
}

func newFakeSource(bars int) *fakeSource {
	return &fakeSource{bars: bars, fail: make(map[string]bool)}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchHistory(ctx context.Context, symbol, interval string, limit int) (market.History, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail[symbol] {
		return market.History{}, fmt.Errorf("模拟拉取失败: %s", symbol)
	}
	candles := make([]market.Candle, f.bars)
	for i := range candles {
		base := 100 + 0.5*float64(i)
		candles[i] = market.Candle{
			Timestamp: 1700000000000 + int64(i)*86400000,
			Open:      base,
			High:      base + 1,
			Low:       base - 1,
			Close:     base + 0.3,
			Volume:    10000,
		}
	}
	return market.History{
		Meta: market.Meta{Symbol: symbol, Interval: interval, Currency: "USD", Source: "fake"},
		Data: market.ToSeries(candles),
	}, nil
}

func (f *fakeSource) SearchSymbols(ctx context.Context, keyword string) ([]market.SymbolMatch, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return []market.SymbolMatch{{Symbol: "AAPL", Instrument: "Apple Inc", Exchange: "NASDAQ", Currency: "USD"}}, nil
}

func (f *fakeSource) fetchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeFetcher 返回固定的两期财报，并统计调用次数。
type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func fp(v float64) *float64 { return &v }

func (f *fakeFetcher) bump() error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.err
}

func (f *fakeFetcher) FetchIncomeStatements(ctx context.Context, symbol string, limit int, period string) ([]fundamental.IncomeStatement, error) {
	if err := f.bump(); err != nil {
		return nil, err
	}
	return []fundamental.IncomeStatement{
		{Date: "2026-06-30", Period: "Q2", Revenue: fp(120), GrossProfit: fp(60), OperatingIncome: fp(40), NetIncome: fp(30), EPS: fp(1.2)},
		{Date: "2026-03-31", Period: "Q1", Revenue: fp(100), GrossProfit: fp(50), OperatingIncome: fp(30), NetIncome: fp(25), EPS: fp(1.0)},
	}, nil
}

func (f *fakeFetcher) FetchBalanceSheets(ctx context.Context, symbol string, limit int, period string) ([]fundamental.BalanceSheet, error) {
	if err := f.bump(); err != nil {
		return nil, err
	}
	return []fundamental.BalanceSheet{
		{Date: "2026-06-30", TotalEquity: fp(200), TotalCurrentAssets: fp(150), TotalCurrentLiabilities: fp(60), TotalDebt: fp(80)},
		{Date: "2026-03-31", TotalEquity: fp(180), TotalCurrentAssets: fp(140), TotalCurrentLiabilities: fp(70), TotalDebt: fp(90)},
	}, nil
}

func (f *fakeFetcher) FetchCashFlows(ctx context.Context, symbol string, limit int, period string) ([]fundamental.CashFlowStatement, error) {
	if err := f.bump(); err != nil {
		return nil, err
	}
	return []fundamental.CashFlowStatement{
		{Date: "2026-06-30", OperatingCashFlow: fp(35), FreeCashFlow: fp(25)},
		{Date: "2026-03-31", OperatingCashFlow: fp(30), FreeCashFlow: fp(20)},
	}, nil
}

func (f *fakeFetcher) FetchQuote(ctx context.Context, symbol string) (*fundamental.Quote, error) {
	if err := f.bump(); err != nil {
		return nil, err
	}
	return &fundamental.Quote{Symbol: symbol, Name: "Apple Inc", Price: fp(180), MarketCap: fp(2800), PE: fp(28), EPS: fp(6.4)}, nil
}

var testETFs = []config.ETFEntry{
	{Symbol: "SPY", Name: "标普500"},
	{Symbol: "QQQ", Name: "纳指100"},
}
