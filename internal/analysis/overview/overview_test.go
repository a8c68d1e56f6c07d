package overview

import (
	"math"
	"testing"

	"stocklens/internal/market"
)

func trendSeries(n int) market.Series {
	candles := make([]market.Candle, n)
	for i := range candles {
		base := 100 + float64(i)*0.5
		candles[i] = market.Candle{
			Timestamp: 1700000000000 + int64(i)*86400000,
			Open:      base,
			High:      base + 1,
			Low:       base - 1,
			Close:     base + 0.3,
			Volume:    10000 + float64(i)*10,
		}
	}
	return market.ToSeries(candles)
}

func TestComputeEmptySeries(t *testing.T) {
	if _, err := Compute(market.Series{}, Settings{Symbol: "AAPL"}); err == nil {
		t.Fatalf("空序列应报错")
	}
}

func TestComputeUptrendSnapshot(t *testing.T) {
	snap, err := Compute(trendSeries(260), Settings{Symbol: "AAPL", Interval: "1day"})
	if err != nil {
		t.Fatalf("计算失败: %v", err)
	}
	if snap.Count != 260 {
		t.Fatalf("Count 错误: %d", snap.Count)
	}
	for _, key := range []string{"ema_fast", "ema_mid", "ema_slow", "ema_long", "rsi", "macd", "roc", "stoch_k", "williams_r", "atr", "obv"} {
		if _, ok := snap.Values[key]; !ok {
			t.Fatalf("缺少指标 %s", key)
		}
	}
	// 持续上行的序列：价格站上所有 EMA，动量为正。
	for _, key := range []string{"ema_fast", "ema_mid", "ema_slow", "ema_long"} {
		if snap.Values[key].State != "above" {
			t.Fatalf("%s 状态错误: %s", key, snap.Values[key].State)
		}
	}
	if snap.Values["roc"].State != "positive" {
		t.Fatalf("ROC 状态错误: %s", snap.Values["roc"].State)
	}
	if snap.Values["rsi"].Latest < 50 {
		t.Fatalf("上行序列 RSI 不应低于 50: %v", snap.Values["rsi"].Latest)
	}
	if snap.Values["atr"].Latest <= 0 {
		t.Fatalf("ATR 应为正: %v", snap.Values["atr"].Latest)
	}
}

func TestRelativeStateTouchBand(t *testing.T) {
	if got := relativeState(100, 100.1); got != "touch" {
		t.Fatalf("state=%s", got)
	}
	if got := relativeState(101, 100); got != "above" {
		t.Fatalf("state=%s", got)
	}
	if got := relativeState(99, 100); got != "below" {
		t.Fatalf("state=%s", got)
	}
	if got := relativeState(99, 0); got != "unknown" {
		t.Fatalf("state=%s", got)
	}
}

func TestSanitizeSeriesDropsNaN(t *testing.T) {
	out := sanitizeSeries([]float64{1.23456, math.NaN(), math.Inf(1), 2})
	if len(out) != 2 || out[0] != 1.2346 || out[1] != 2 {
		t.Fatalf("sanitize 结果错误: %v", out)
	}
}
