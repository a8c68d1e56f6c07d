package state

import (
	"strings"

	"stocklens/internal/analysis/indicator"
)

// 标记只在最近 recentBars 根以内才参与状态判断，
// 否则一个月前的交叉也会把状态钉在 crossover 上。
const recentBars = 5

// TechnicalState 是三个指标引擎的规则化汇总。
type TechnicalState struct {
	OverallTrend         string   `json:"overall_trend"`
	MomentumAssessment   string   `json:"momentum_assessment"`
	VolatilityAssessment string   `json:"volatility_assessment"`
	MACDStatus           string   `json:"macd_status"`
	RSIStatus            string   `json:"rsi_status"`
	BollingerStatus      string   `json:"bollinger_status"`
	Divergences          []string `json:"divergences"`
}

// MACDAssessment 描述 MACD 引擎的状态与背离标签。
type MACDAssessment struct {
	Status      string
	Divergences []string
}

// recentCutoff 返回最近 recentBars 根的起始时间戳，序列不足时退到首根。
func recentCutoff(timestamps []int64) int64 {
	if len(timestamps) == 0 {
		return 0
	}
	idx := len(timestamps) - recentBars
	if idx < 0 {
		idx = 0
	}
	return timestamps[idx]
}

func lastValue(values []*float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	return values[len(values)-1]
}

// AssessMACD 由最新的 MACD/signal 相对位置、近期交叉与零轴位置推导状态。
func AssessMACD(res indicator.MACDResult, crossovers, divergences []indicator.Marker) MACDAssessment {
	out := MACDAssessment{Status: "unknown", Divergences: []string{}}
	if res.Status != indicator.StatusSuccess || len(res.MACDLine) == 0 {
		out.Status = "insufficient_data"
		return out
	}

	latestMACD := lastValue(res.MACDLine)
	latestSignal := lastValue(res.SignalLine)
	if latestMACD != nil && latestSignal != nil {
		switch {
		case *latestMACD > *latestSignal:
			out.Status = "bullish"
		case *latestMACD < *latestSignal:
			out.Status = "bearish"
		default:
			out.Status = "neutral"
		}
	}

	// 只认最近发生的交叉，陈年交叉不改写状态。
	cutoff := recentCutoff(res.Timestamps)
	if len(crossovers) > 0 {
		latest := crossovers[len(crossovers)-1]
		if latest.Time >= cutoff {
			if strings.Contains(latest.Text, "Bullish Crossover") {
				out.Status = "bullish_crossover"
			} else if strings.Contains(latest.Text, "Bearish Crossover") {
				out.Status = "bearish_crossover"
			}
		}
	}

	if latestMACD != nil {
		switch {
		case *latestMACD > 0:
			if out.Status != "unknown" {
				out.Status += "_above_zero"
			} else {
				out.Status = "above_zero"
			}
		case *latestMACD < 0:
			if out.Status != "unknown" {
				out.Status += "_below_zero"
			} else {
				out.Status = "below_zero"
			}
		}
	}

	for _, div := range divergences {
		if strings.Contains(div.Text, "Bullish Divergence") {
			out.Divergences = append(out.Divergences, "bullish_macd_divergence")
		} else if strings.Contains(div.Text, "Bearish Divergence") {
			out.Divergences = append(out.Divergences, "bearish_macd_divergence")
		}
	}
	return out
}

// RSIAssessment 描述 RSI 引擎的超买/超卖状态与背离标签。
type RSIAssessment struct {
	Status      string
	Divergences []string
}

// AssessRSI 按 70/30 阈值给出超买/超卖/中性。
func AssessRSI(res indicator.RSIResult, divergences indicator.Divergences) RSIAssessment {
	out := RSIAssessment{Status: "unknown", Divergences: []string{}}
	if res.Status != indicator.StatusSuccess || len(res.Values) == 0 {
		out.Status = "insufficient_data"
		return out
	}

	if latest := lastValue(res.Values); latest != nil {
		switch {
		case *latest > 70:
			out.Status = "overbought"
		case *latest < 30:
			out.Status = "oversold"
		default:
			out.Status = "neutral"
		}
	}

	for range divergences.Bullish {
		out.Divergences = append(out.Divergences, "bullish_rsi_divergence")
	}
	for range divergences.Bearish {
		out.Divergences = append(out.Divergences, "bearish_rsi_divergence")
	}
	return out
}

// BollingerAssessment 描述布林带引擎的形态状态、波动率分级与带内趋势。
type BollingerAssessment struct {
	Status     string
	Volatility string
	Trend      string
}

// AssessBollinger 按优先级套用规则：近期挤压 → 沿带行走 → 带宽阈值分级。
func AssessBollinger(res indicator.BollingerResult, bandwidth indicator.BandwidthResult, squeezes, walking []indicator.Marker) BollingerAssessment {
	out := BollingerAssessment{Status: "unknown", Volatility: "unknown", Trend: "unknown"}
	if res.Status != indicator.StatusSuccess || len(res.Middle) == 0 {
		out.Status = "insufficient_data"
		return out
	}

	cutoff := recentCutoff(bandwidth.Timestamps)

	if len(squeezes) > 0 && squeezes[len(squeezes)-1].Time >= cutoff {
		out.Status = "squeezing"
		out.Volatility = "low"
	}

	if len(walking) > 0 {
		latest := walking[len(walking)-1]
		if latest.Time >= cutoff {
			if strings.Contains(latest.Text, "Uptrend") {
				out.Status = "walking_upper_band"
				out.Trend = "strong_uptrend"
			} else if strings.Contains(latest.Text, "Downtrend") {
				out.Status = "walking_lower_band"
				out.Trend = "strong_downtrend"
			}
			out.Volatility = "expanding"
		}
	}

	// 带宽阈值：>10% 高波动，<2% 低波动。
	if latest := lastValue(bandwidth.Values); latest != nil {
		switch {
		case *latest > 0.10:
			out.Volatility = "high"
		case *latest < 0.02:
			out.Volatility = "low"
		default:
			out.Volatility = "moderate"
		}
	}

	if out.Status == "unknown" && out.Volatility != "unknown" {
		switch out.Volatility {
		case "low":
			out.Status = "contracting"
		case "high":
			out.Status = "expanding"
		}
	}
	return out
}

// Combine 把三个引擎的评估合成一个 TechnicalState。
func Combine(macd MACDAssessment, rsi RSIAssessment, bollinger BollingerAssessment) TechnicalState {
	ts := TechnicalState{
		OverallTrend:         "unknown",
		MomentumAssessment:   "unknown",
		VolatilityAssessment: bollinger.Volatility,
		MACDStatus:           macd.Status,
		RSIStatus:            rsi.Status,
		BollingerStatus:      bollinger.Status,
		Divergences:          []string{},
	}
	ts.Divergences = append(ts.Divergences, macd.Divergences...)
	ts.Divergences = append(ts.Divergences, rsi.Divergences...)

	switch {
	case strings.Contains(bollinger.Trend, "strong_uptrend") || strings.Contains(macd.Status, "bullish_crossover"):
		ts.OverallTrend = "uptrend"
		ts.MomentumAssessment = "strong_bullish"
	case strings.Contains(bollinger.Trend, "strong_downtrend") || strings.Contains(macd.Status, "bearish_crossover"):
		ts.OverallTrend = "downtrend"
		ts.MomentumAssessment = "strong_bearish"
	case strings.HasPrefix(macd.Status, "bullish") || rsi.Status == "neutral":
		ts.OverallTrend = "sideways"
		ts.MomentumAssessment = "neutral"
	}
	return ts
}
