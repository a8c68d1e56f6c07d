package overview

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"stocklens/internal/market"
)

// Settings 控制快照的周期参数，零值取默认。
type Settings struct {
	Symbol   string
	Interval string
	EMA      EMASettings
	RSI      RSISettings
}

type EMASettings struct {
	Fast int `json:"fast,omitempty"`
	Mid  int `json:"mid,omitempty"`
	Slow int `json:"slow,omitempty"`
	Long int `json:"long,omitempty"`
}

type RSISettings struct {
	Period     int     `json:"period,omitempty"`
	Oversold   float64 `json:"oversold,omitempty"`
	Overbought float64 `json:"overbought,omitempty"`
}

// IndicatorValue 是单个指标的最新值、状态与说明。
type IndicatorValue struct {
	Latest float64 `json:"latest"`
	State  string  `json:"state,omitempty"`
	Note   string  `json:"note,omitempty"`
}

// Snapshot 是一组指标的横截面快照，供状态接口附带输出。
type Snapshot struct {
	Symbol   string                    `json:"symbol"`
	Interval string                    `json:"interval"`
	Count    int                       `json:"count"`
	Values   map[string]IndicatorValue `json:"values"`
}

// Compute 基于 talib 生成指标快照：EMA 多周期趋势位、RSI、MACD、
// ROC、随机指标、威廉指标、ATR、OBV。
func Compute(series market.Series, cfg Settings) (Snapshot, error) {
	snap := Snapshot{
		Symbol:   cfg.Symbol,
		Interval: cfg.Interval,
		Count:    series.Len(),
		Values:   make(map[string]IndicatorValue),
	}
	if series.Len() == 0 {
		return snap, fmt.Errorf("没有可用的 K 线数据")
	}
	closes := series.Close
	highs := series.High
	lows := series.Low
	volumes := series.Volume

	if cfg.EMA.Fast <= 0 {
		cfg.EMA.Fast = 21
	}
	if cfg.EMA.Mid <= 0 {
		cfg.EMA.Mid = 55
	}
	if cfg.EMA.Slow <= 0 {
		cfg.EMA.Slow = 100
	}
	if cfg.EMA.Long <= 0 {
		cfg.EMA.Long = 200
	}
	lastClose := closes[len(closes)-1]
	emaPeriods := []struct {
		key    string
		period int
	}{
		{"ema_fast", cfg.EMA.Fast},
		{"ema_mid", cfg.EMA.Mid},
		{"ema_slow", cfg.EMA.Slow},
		{"ema_long", cfg.EMA.Long},
	}
	for _, e := range emaPeriods {
		series := trimLeadingZeros(sanitizeSeries(talib.Ema(closes, e.period)))
		latest := lastValid(series)
		snap.Values[e.key] = IndicatorValue{
			Latest: latest,
			State:  relativeState(lastClose, latest),
			Note:   fmt.Sprintf("EMA%d vs price", e.period),
		}
	}

	if cfg.RSI.Period <= 0 {
		cfg.RSI.Period = 14
	}
	if cfg.RSI.Overbought == 0 {
		cfg.RSI.Overbought = 70
	}
	if cfg.RSI.Oversold == 0 {
		cfg.RSI.Oversold = 30
	}
	rsiVal := lastValid(sanitizeSeries(talib.Rsi(closes, cfg.RSI.Period)))
	rsiState := "neutral"
	switch {
	case rsiVal >= cfg.RSI.Overbought:
		rsiState = "overbought"
	case rsiVal <= cfg.RSI.Oversold:
		rsiState = "oversold"
	}
	snap.Values["rsi"] = IndicatorValue{
		Latest: rsiVal,
		State:  rsiState,
		Note:   fmt.Sprintf("period=%d thresholds=%.1f/%.1f", cfg.RSI.Period, cfg.RSI.Oversold, cfg.RSI.Overbought),
	}

	macd, signal, hist := talib.Macd(closes, 12, 26, 9)
	macdVal := lastValid(sanitizeSeries(macd))
	signalVal := lastValid(sanitizeSeries(signal))
	histVal := lastValid(sanitizeSeries(hist))
	snap.Values["macd"] = IndicatorValue{
		Latest: macdVal,
		State:  polarityState(histVal),
		Note:   fmt.Sprintf("signal=%.4f hist=%.4f", signalVal, histVal),
	}

	rocVal := lastValid(sanitizeSeries(talib.Roc(closes, 9)))
	snap.Values["roc"] = IndicatorValue{
		Latest: rocVal,
		State:  polarityState(rocVal),
		Note:   "period=9",
	}

	k, d := talib.Stoch(highs, lows, closes, 14, 3, talib.SMA, 3, talib.SMA)
	kVal := lastValid(sanitizeSeries(k))
	snap.Values["stoch_k"] = IndicatorValue{
		Latest: kVal,
		State:  stochasticState(kVal),
		Note:   fmt.Sprintf("d=%.2f", lastValid(sanitizeSeries(d))),
	}

	willVal := lastValid(sanitizeSeries(talib.WillR(highs, lows, closes, 14)))
	snap.Values["williams_r"] = IndicatorValue{
		Latest: willVal,
		State:  stochasticState(-willVal),
		Note:   "period=14",
	}

	atrVal := lastValid(sanitizeSeries(talib.Atr(highs, lows, closes, 14)))
	snap.Values["atr"] = IndicatorValue{
		Latest: atrVal,
		State:  "volatility",
		Note:   "period=14",
	}

	obvVal := lastValid(sanitizeSeries(talib.Obv(closes, volumes)))
	snap.Values["obv"] = IndicatorValue{
		Latest: obvVal,
		State:  polarityState(rocVal),
		Note:   "volume thrust",
	}

	return snap, nil
}

func sanitizeSeries(src []float64) []float64 {
	out := make([]float64, 0, len(src))
	for _, v := range src {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, round4(v))
	}
	return out
}

// talib 的 EMA 预热期输出 0 而不是 NaN，裁掉避免污染 lastValid。
func trimLeadingZeros(series []float64) []float64 {
	start := 0
	for start < len(series) && math.Abs(series[start]) <= 1e-9 {
		start++
	}
	return series[start:]
}

func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) && !math.IsInf(series[i], 0) {
			return series[i]
		}
	}
	return 0
}

func relativeState(price, ref float64) string {
	if ref == 0 {
		return "unknown"
	}
	switch {
	case price > ref*1.002:
		return "above"
	case price < ref*0.998:
		return "below"
	default:
		return "touch"
	}
}

func polarityState(v float64) string {
	switch {
	case v > 0:
		return "positive"
	case v < 0:
		return "negative"
	default:
		return "flat"
	}
}

func stochasticState(v float64) string {
	switch {
	case v >= 80:
		return "overbought"
	case v <= 20:
		return "oversold"
	default:
		return "neutral"
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
