package indicator

import (
	"fmt"
	"math"

	"stocklens/internal/logger"
)

const (
	DefaultRSIPeriod = 14

	defaultRSILookback   = 60
	defaultRSIProminence = 1.0

	// 平均亏损的除零保护，用极小值替代而不是抛错。
	rsiLossEpsilon = 1e-10
)

// RSIResult 的 Values 与输入价格序列等长（RSI 从首根即有值）。
type RSIResult struct {
	Values  []*float64 `json:"rsi"`
	Status  Status     `json:"status"`
	Message string     `json:"message,omitempty"`
}

// ComputeRSI 计算 RSI：逐根差分拆成涨幅/跌幅，各做 span=period 的
// 指数平滑，RS = 平均涨幅/平均跌幅，RSI = 100 - 100/(1+RS)。
func ComputeRSI(closes []float64, period int) RSIResult {
	if period <= 0 {
		period = DefaultRSIPeriod
	}
	if !ValidateDataLength(len(closes), period+1, "RSI") {
		return RSIResult{
			Status:  StatusInsufficientData,
			Message: fmt.Sprintf("RSI 数据不足，至少需要 %d 个数据点", period+1),
		}
	}

	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	// 首根没有前值，差分视为 0 涨 0 跌。
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if !isFinite(delta) {
			continue
		}
		if delta > 0 {
			gains[i] = delta
		} else if delta < 0 {
			losses[i] = -delta
		}
	}

	avgGain := EMA(gains, period)
	avgLoss := EMA(losses, period)

	rsi := make([]float64, n)
	for i := 0; i < n; i++ {
		if !isFinite(avgGain[i]) || !isFinite(avgLoss[i]) {
			rsi[i] = math.NaN()
			continue
		}
		loss := avgLoss[i]
		if loss == 0 {
			loss = rsiLossEpsilon
		}
		rs := avgGain[i] / loss
		rsi[i] = 100 - 100/(1+rs)
	}

	values := Clean(rsi)
	if FirstValid(values) < 0 {
		logger.Warnf("RSI: 计算结果没有有效值")
		return RSIResult{Status: StatusInsufficientData, Message: "RSI 计算结果没有有效数据"}
	}
	valid := 0
	for _, v := range values {
		if v != nil {
			valid++
		}
	}
	logger.Infof("RSI: 计算完成，共 %d 个有效数据点", valid)
	return RSIResult{Values: values, Status: StatusSuccess}
}

// RSIDivergenceOptions 控制背离检测的回看窗口与极值突出度阈值。
type RSIDivergenceOptions struct {
	Lookback         int
	PeakProminence   float64
	TroughProminence float64
}

func (o RSIDivergenceOptions) withDefaults() RSIDivergenceOptions {
	out := o
	if out.Lookback <= 0 {
		out.Lookback = defaultRSILookback
	}
	if out.PeakProminence <= 0 {
		out.PeakProminence = defaultRSIProminence
	}
	if out.TroughProminence <= 0 {
		out.TroughProminence = defaultRSIProminence
	}
	return out
}

// DetectRSIDivergences 分别在价格和 RSI 序列上做突出度过滤的极值
// 检测，再把回看窗口内的价格极值两两配对：
//   - 顶背离：后一个价格峰更高，而就近匹配的 RSI 峰更低；
//   - 底背离：取镜像，用谷配对。
//
// RSI 极值按绝对下标距离就近匹配，距离并列取下标较小者；两个价格
// 极值必须匹配到不同的 RSI 极值。窗口内所有组合都会被检查。
func DetectRSIDivergences(closes []float64, rsiValues []*float64, timestamps []int64, opts RSIDivergenceOptions) Divergences {
	out := Divergences{Bullish: []DivergencePair{}, Bearish: []DivergencePair{}}
	if len(closes) != len(rsiValues) || len(closes) != len(timestamps) {
		logger.Errorf("RSI Divergences: 输入数组长度不一致（close=%d rsi=%d ts=%d）",
			len(closes), len(rsiValues), len(timestamps))
		return out
	}
	opts = opts.withDefaults()

	rsi := make([]float64, len(rsiValues))
	for i, v := range rsiValues {
		if v == nil {
			rsi[i] = math.NaN()
		} else {
			rsi[i] = *v
		}
	}

	pricePeaks := FindPeaks(closes, opts.PeakProminence)
	priceTroughs := FindTroughs(closes, opts.TroughProminence)
	rsiPeaks := FindPeaks(rsi, opts.PeakProminence)
	rsiTroughs := FindTroughs(rsi, opts.TroughProminence)

	cutoff := len(closes) - opts.Lookback
	recentPeaks := filterRecent(pricePeaks, cutoff)
	recentTroughs := filterRecent(priceTroughs, cutoff)

	for i := 0; i < len(recentPeaks)-1; i++ {
		for j := i + 1; j < len(recentPeaks); j++ {
			p1, p2 := recentPeaks[i], recentPeaks[j]
			if closes[p2] <= closes[p1] {
				continue
			}
			r1, ok1 := nearestIndex(rsiPeaks, p1)
			r2, ok2 := nearestIndex(rsiPeaks, p2)
			if !ok1 || !ok2 || r1 == r2 {
				continue
			}
			if rsi[r2] < rsi[r1] {
				out.Bearish = append(out.Bearish, DivergencePair{
					PriceStart:     Point{Time: timestamps[p1], Value: closes[p1]},
					PriceEnd:       Point{Time: timestamps[p2], Value: closes[p2]},
					IndicatorStart: Point{Time: timestamps[r1], Value: rsi[r1]},
					IndicatorEnd:   Point{Time: timestamps[r2], Value: rsi[r2]},
				})
			}
		}
	}

	for i := 0; i < len(recentTroughs)-1; i++ {
		for j := i + 1; j < len(recentTroughs); j++ {
			t1, t2 := recentTroughs[i], recentTroughs[j]
			if closes[t2] >= closes[t1] {
				continue
			}
			r1, ok1 := nearestIndex(rsiTroughs, t1)
			r2, ok2 := nearestIndex(rsiTroughs, t2)
			if !ok1 || !ok2 || r1 == r2 {
				continue
			}
			if rsi[r2] > rsi[r1] {
				out.Bullish = append(out.Bullish, DivergencePair{
					PriceStart:     Point{Time: timestamps[t1], Value: closes[t1]},
					PriceEnd:       Point{Time: timestamps[t2], Value: closes[t2]},
					IndicatorStart: Point{Time: timestamps[r1], Value: rsi[r1]},
					IndicatorEnd:   Point{Time: timestamps[r2], Value: rsi[r2]},
				})
			}
		}
	}

	logger.Infof("RSI Divergences: 检出多头 %d 个、空头 %d 个", len(out.Bullish), len(out.Bearish))
	return out
}

func filterRecent(indices []int, cutoff int) []int {
	out := make([]int, 0, len(indices))
	for _, idx := range indices {
		if idx >= cutoff {
			out = append(out, idx)
		}
	}
	return out
}

// nearestIndex 在升序候选集中找与 target 绝对距离最近的下标，
// 距离并列时返回先遇到的（较小下标）。
func nearestIndex(indices []int, target int) (int, bool) {
	if len(indices) == 0 {
		return 0, false
	}
	best := indices[0]
	bestDist := abs(best - target)
	for _, idx := range indices[1:] {
		if d := abs(idx - target); d < bestDist {
			best = idx
			bestDist = d
		}
	}
	return best, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
