package service

import (
	"context"
	"fmt"

	"stocklens/internal/analysis/indicator"
	"stocklens/internal/cache"
	"stocklens/internal/logger"
)

// TechnicalService 基于历史行情计算三个指标引擎的完整载荷。
type TechnicalService struct {
	prices *PriceService
	cache  cache.Cache
}

func NewTechnicalService(prices *PriceService, c cache.Cache) *TechnicalService {
	return &TechnicalService{prices: prices, cache: c}
}

// MACDPayload 是 MACD 接口的完整响应。
type MACDPayload struct {
	Symbol            string                   `json:"symbol"`
	Interval          string                   `json:"interval"`
	MACDLine          []*float64               `json:"macd_line"`
	SignalLine        []*float64               `json:"signal_line"`
	HistogramData     []indicator.HistogramBar `json:"histogram_data"`
	Timestamps        []int64                  `json:"timestamps"`
	CrossoverMarkers  []indicator.Marker       `json:"crossover_markers"`
	DivergenceMarkers []indicator.Marker       `json:"divergence_markers"`
	Status            indicator.Status         `json:"status"`
	Message           string                   `json:"message,omitempty"`
	LastUpdated       string                   `json:"last_updated,omitempty"`
}

// MACD 计算并缓存 MACD 载荷。
func (s *TechnicalService) MACD(ctx context.Context, symbol, interval string) (MACDPayload, error) {
	if interval == "" {
		interval = "1day"
	}
	key := cache.IndicatorKey("macd_full", symbol, interval)
	var cached MACDPayload
	if hit, _ := s.cache.GetJSON(ctx, key, &cached); hit {
		logger.Debugf("[macd] 缓存命中 %s-%s", symbol, interval)
		return cached, nil
	}

	history, err := s.prices.GetPrice(ctx, symbol, interval)
	if err != nil {
		return MACDPayload{}, err
	}
	closes := history.Data.Close
	timestamps := history.Data.Timestamps

	result := indicator.ComputeMACD(closes, timestamps)
	if result.Status != indicator.StatusSuccess {
		return MACDPayload{
			Symbol: symbol, Interval: interval,
			MACDLine: []*float64{}, SignalLine: []*float64{},
			HistogramData: []indicator.HistogramBar{}, Timestamps: []int64{},
			CrossoverMarkers: []indicator.Marker{}, DivergenceMarkers: []indicator.Marker{},
			Status: result.Status, Message: result.Message,
		}, nil
	}

	histogram := indicator.HistogramColors(result.Histogram, result.Timestamps)
	crossovers := indicator.DetectCrossovers(result.MACDLine, result.SignalLine, result.Timestamps)

	// 背离检测需要与 MACD 序列对齐的价格序列。
	alignedCloses := closes
	if len(result.Timestamps) > 0 {
		start := indicator.StartIndexAtOrAfter(timestamps, result.Timestamps[0])
		if start >= 0 {
			n := indicator.CommonLength(len(closes)-start, len(result.MACDLine))
			alignedCloses = indicator.SliceFloats(closes, start, n)
		}
	}
	divergences := indicator.DetectMACDDivergences(alignedCloses, result.MACDLine, result.Timestamps)

	payload := MACDPayload{
		Symbol:            symbol,
		Interval:          interval,
		MACDLine:          result.MACDLine,
		SignalLine:        result.SignalLine,
		HistogramData:     histogram,
		Timestamps:        result.Timestamps,
		CrossoverMarkers:  crossovers,
		DivergenceMarkers: divergences,
		Status:            indicator.StatusSuccess,
		LastUpdated:       LastUpdated(),
	}
	if err := s.cache.SetJSON(ctx, key, payload, cache.TTLIndicator); err != nil {
		logger.Warnf("[macd] 缓存失败: %v", err)
	}
	return payload, nil
}

// RSIPayload 是 RSI 接口的完整响应。
type RSIPayload struct {
	Symbol      string                `json:"symbol"`
	Interval    string                `json:"interval"`
	Period      int                   `json:"period"`
	RSI         []*float64            `json:"rsi"`
	Timestamps  []int64               `json:"timestamps"`
	Divergences indicator.Divergences `json:"divergences"`
	Status      indicator.Status      `json:"status"`
	Message     string                `json:"message,omitempty"`
	LastUpdated string                `json:"last_updated,omitempty"`
}

// RSI 计算并缓存 RSI 载荷。
func (s *TechnicalService) RSI(ctx context.Context, symbol, interval string, period int) (RSIPayload, error) {
	if interval == "" {
		interval = "1day"
	}
	if period <= 0 {
		period = indicator.DefaultRSIPeriod
	}
	key := cache.IndicatorKey(fmt.Sprintf("rsi:%d", period), symbol, interval)
	var cached RSIPayload
	if hit, _ := s.cache.GetJSON(ctx, key, &cached); hit {
		logger.Debugf("[rsi] 缓存命中 %s-%s-%d", symbol, interval, period)
		return cached, nil
	}

	history, err := s.prices.GetPrice(ctx, symbol, interval)
	if err != nil {
		return RSIPayload{}, err
	}
	closes := history.Data.Close
	timestamps := history.Data.Timestamps

	result := indicator.ComputeRSI(closes, period)
	emptyDiv := indicator.Divergences{Bullish: []indicator.DivergencePair{}, Bearish: []indicator.DivergencePair{}}
	if result.Status != indicator.StatusSuccess {
		return RSIPayload{
			Symbol: symbol, Interval: interval, Period: period,
			RSI: []*float64{}, Timestamps: []int64{}, Divergences: emptyDiv,
			Status: result.Status, Message: result.Message,
		}, nil
	}

	first := indicator.FirstValid(result.Values)
	if first < 0 {
		return RSIPayload{
			Symbol: symbol, Interval: interval, Period: period,
			RSI: []*float64{}, Timestamps: []int64{}, Divergences: emptyDiv,
			Status: indicator.StatusInsufficientData, Message: "RSI 计算没有产出有效值",
		}, nil
	}

	n := indicator.CommonLength(len(result.Values)-first, len(closes)-first, len(timestamps)-first)
	finalRSI := indicator.SliceNullable(result.Values, first, n)
	finalCloses := indicator.SliceFloats(closes, first, n)
	finalTimestamps := indicator.SliceTimestamps(timestamps, first, n)

	divergences := indicator.DetectRSIDivergences(finalCloses, finalRSI, finalTimestamps, indicator.RSIDivergenceOptions{})

	payload := RSIPayload{
		Symbol:      symbol,
		Interval:    interval,
		Period:      period,
		RSI:         finalRSI,
		Timestamps:  finalTimestamps,
		Divergences: divergences,
		Status:      indicator.StatusSuccess,
		LastUpdated: LastUpdated(),
	}
	if err := s.cache.SetJSON(ctx, key, payload, cache.TTLIndicator); err != nil {
		logger.Warnf("[rsi] 缓存失败: %v", err)
	}
	return payload, nil
}

// BandSet 是按时间对齐后的三条布林带。
type BandSet struct {
	Middle     []*float64 `json:"middle"`
	Upper      []*float64 `json:"upper"`
	Lower      []*float64 `json:"lower"`
	Timestamps []int64    `json:"timestamps"`
}

// BollingerPayload 是布林带接口的完整响应。
type BollingerPayload struct {
	Symbol                  string                    `json:"symbol"`
	Interval                string                    `json:"interval"`
	Period                  int                       `json:"period"`
	NumStd                  float64                   `json:"num_std"`
	Bollinger               BandSet                   `json:"bollinger"`
	SqueezeMarkers          []indicator.Marker        `json:"squeeze_markers"`
	WalkingTheBandsMarkers  []indicator.Marker        `json:"walking_the_bands_markers"`
	FalseBreakoutMarkers    []indicator.Marker        `json:"false_breakout_markers"`
	MiddleBandMarkers       []indicator.Marker        `json:"middle_band_support_resistance_markers"`
	BandwidthData           indicator.BandwidthResult `json:"bandwidth_data"`
	ExtremeDeviationMarkers []indicator.Marker        `json:"extreme_deviation_markers"`
	Status                  indicator.Status          `json:"status"`
	Message                 string                    `json:"message,omitempty"`
	LastUpdated             string                    `json:"last_updated,omitempty"`
}

// Bollinger 计算并缓存布林带载荷。
func (s *TechnicalService) Bollinger(ctx context.Context, symbol, interval string, period int, numStd float64) (BollingerPayload, error) {
	if interval == "" {
		interval = "1day"
	}
	if period <= 0 {
		period = indicator.DefaultBollingerPeriod
	}
	if numStd <= 0 {
		numStd = indicator.DefaultBollingerStd
	}
	key := cache.IndicatorKey(fmt.Sprintf("bollinger:%d:%g", period, numStd), symbol, interval)
	var cached BollingerPayload
	if hit, _ := s.cache.GetJSON(ctx, key, &cached); hit {
		logger.Debugf("[bollinger] 缓存命中 %s-%s", symbol, interval)
		return cached, nil
	}

	history, err := s.prices.GetPrice(ctx, symbol, interval)
	if err != nil {
		return BollingerPayload{}, err
	}
	closes := history.Data.Close
	timestamps := history.Data.Timestamps

	result := indicator.ComputeBollinger(closes, period, numStd)
	insufficient := func(message string) BollingerPayload {
		return BollingerPayload{
			Symbol: symbol, Interval: interval, Period: period, NumStd: numStd,
			Bollinger: BandSet{Middle: []*float64{}, Upper: []*float64{}, Lower: []*float64{}, Timestamps: []int64{}},
			SqueezeMarkers: []indicator.Marker{}, WalkingTheBandsMarkers: []indicator.Marker{},
			FalseBreakoutMarkers: []indicator.Marker{}, MiddleBandMarkers: []indicator.Marker{},
			BandwidthData:           indicator.BandwidthResult{Values: []*float64{}, Timestamps: []int64{}},
			ExtremeDeviationMarkers: []indicator.Marker{},
			Status:                  indicator.StatusInsufficientData, Message: message,
		}
	}
	if result.Status != indicator.StatusSuccess {
		return insufficient(result.Message), nil
	}

	// 裁掉预热期，让三条带与时间戳从首个有效值对齐。
	first := indicator.FirstValid(result.Middle)
	if first < 0 {
		return insufficient("布林带计算没有产出有效值"), nil
	}
	n := indicator.CommonLength(len(result.Middle)-first, len(timestamps)-first)
	bands := BandSet{
		Middle:     indicator.SliceNullable(result.Middle, first, n),
		Upper:      indicator.SliceNullable(result.Upper, first, n),
		Lower:      indicator.SliceNullable(result.Lower, first, n),
		Timestamps: indicator.SliceTimestamps(timestamps, first, n),
	}
	alignedCloses := indicator.SliceFloats(closes, first, n)

	payload := BollingerPayload{
		Symbol:                  symbol,
		Interval:                interval,
		Period:                  period,
		NumStd:                  numStd,
		Bollinger:               bands,
		SqueezeMarkers:          indicator.DetectSqueeze(bands.Upper, bands.Lower, bands.Middle, bands.Timestamps, 0, 0),
		WalkingTheBandsMarkers:  indicator.DetectWalkingTheBands(alignedCloses, bands.Upper, bands.Lower, bands.Timestamps, 0),
		FalseBreakoutMarkers:    indicator.DetectFalseBreakouts(alignedCloses, bands.Upper, bands.Lower, bands.Timestamps, 0),
		MiddleBandMarkers:       indicator.DetectMiddleBandTouches(alignedCloses, bands.Middle, bands.Timestamps),
		BandwidthData:           indicator.Bandwidth(bands.Upper, bands.Lower, bands.Middle, bands.Timestamps),
		ExtremeDeviationMarkers: indicator.DetectExtremeDeviation(alignedCloses, bands.Upper, bands.Lower, bands.Timestamps, 0),
		Status:                  indicator.StatusSuccess,
		LastUpdated:             LastUpdated(),
	}
	if err := s.cache.SetJSON(ctx, key, payload, cache.TTLIndicator); err != nil {
		logger.Warnf("[bollinger] 缓存失败: %v", err)
	}
	return payload, nil
}
