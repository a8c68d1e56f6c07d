package indicator

import (
	"fmt"
	"sort"

	"stocklens/internal/logger"
)

// MACD 参数固定为 12/26/9；34 根是 26 周期 EMA 收敛叠加 9 周期
// signal 平滑趋稳所需的最小样本量。
const (
	macdFastPeriod    = 12
	macdSlowPeriod    = 26
	macdSignalPeriod  = 9
	macdMinDataPoints = 34

	macdDivergenceWindow = 5
)

const (
	colorHistStrongBull = "#26a69a"
	colorHistLightBull  = "#66BB6A"
	colorHistStrongBear = "#ef5350"
	colorHistLightBear  = "#EF9A9A"
	colorHistNeutral    = "#CCCCCC"

	colorCrossBull = "#00FF00"
	colorCrossBear = "#FF0000"
	colorDivBull   = "#008000"
	colorDivBear   = "#800000"
)

// MACDResult 的三条序列与时间戳共享同一截断点（signal 首个有效下标）。
type MACDResult struct {
	MACDLine   []*float64 `json:"macd_line"`
	SignalLine []*float64 `json:"signal_line"`
	Histogram  []*float64 `json:"macd_histogram"`
	Timestamps []int64    `json:"timestamps"`
	Status     Status     `json:"status"`
	Message    string     `json:"message,omitempty"`
}

// ComputeMACD 计算 MACD/signal/histogram 三条线。
func ComputeMACD(closes []float64, timestamps []int64) MACDResult {
	if !ValidateDataLength(len(closes), macdMinDataPoints, "MACD") {
		return MACDResult{
			Status:  StatusInsufficientData,
			Message: fmt.Sprintf("MACD 数据不足，至少需要 %d 个数据点", macdMinDataPoints),
		}
	}

	fast := EMA(closes, macdFastPeriod)
	slow := EMA(closes, macdSlowPeriod)
	macdLine := diff(fast, slow)
	signalLine := EMA(macdLine, macdSignalPeriod)
	histogram := diff(macdLine, signalLine)

	first := -1
	for i, v := range signalLine {
		if isFinite(v) {
			first = i
			break
		}
	}
	if first < 0 {
		logger.Warnf("MACD: signal 线没有有效值")
		return MACDResult{
			Status:  StatusInsufficientData,
			Message: "MACD 计算失败，可能是有效数据不足",
		}
	}

	res := MACDResult{
		MACDLine:   Clean(macdLine[first:]),
		SignalLine: Clean(signalLine[first:]),
		Histogram:  Clean(histogram[first:]),
		Timestamps: append([]int64(nil), timestamps[first:]...),
		Status:     StatusSuccess,
	}
	logger.Infof("MACD: 计算完成，共 %d 个数据点", len(res.MACDLine))
	return res
}

// HistogramBar 是带显示颜色的单根柱子。
type HistogramBar struct {
	Time  int64    `json:"time"`
	Value *float64 `json:"value"`
	Color string   `json:"color"`
}

// HistogramColors 按上一根柱子的值给 histogram 做四态着色：
// 正值走弱/走强、负值走弱/走强；首根或邻居缺失取前值 0。
func HistogramColors(histogram []*float64, timestamps []int64) []HistogramBar {
	if len(histogram) == 0 || len(timestamps) == 0 {
		logger.Warnf("HistogramColors: 输入为空")
		return nil
	}
	out := make([]HistogramBar, 0, len(histogram))
	for i, v := range histogram {
		if i >= len(timestamps) {
			break
		}
		color := colorHistNeutral
		if v != nil {
			prev := 0.0
			if i > 0 && histogram[i-1] != nil {
				prev = *histogram[i-1]
			}
			if *v > 0 {
				if *v < prev {
					color = colorHistLightBull
				} else {
					color = colorHistStrongBull
				}
			} else {
				if *v > prev {
					color = colorHistLightBear
				} else {
					color = colorHistStrongBear
				}
			}
		}
		out = append(out, HistogramBar{Time: timestamps[i], Value: v, Color: color})
	}
	return out
}

// DetectCrossovers 扫描相邻两根柱子找金叉/死叉。
// 金叉：macd 从 ≤ signal 变为 >；死叉取镜像。任一操作数为 null 的
// 柱子直接跳过，不产生交叉也不重置状态。
func DetectCrossovers(macdLine, signalLine []*float64, timestamps []int64) []Marker {
	if len(macdLine) == 0 || len(signalLine) == 0 || len(timestamps) == 0 {
		logger.Warnf("Crossovers: 输入为空")
		return nil
	}
	if !sameLength("Crossovers", timestamps, len(macdLine), len(signalLine)) {
		return nil
	}

	markers := make([]Marker, 0)
	for i := 1; i < len(macdLine); i++ {
		prevMACD, curMACD := macdLine[i-1], macdLine[i]
		prevSignal, curSignal := signalLine[i-1], signalLine[i]
		if prevMACD == nil || curMACD == nil || prevSignal == nil || curSignal == nil {
			continue
		}
		switch {
		case *prevMACD <= *prevSignal && *curMACD > *curSignal:
			markers = append(markers, Marker{
				Time: timestamps[i], Position: PositionAboveBar,
				Color: colorCrossBull, Shape: ShapeArrowUp, Text: "Bullish Crossover",
			})
		case *prevMACD >= *prevSignal && *curMACD < *curSignal:
			markers = append(markers, Marker{
				Time: timestamps[i], Position: PositionBelowBar,
				Color: colorCrossBear, Shape: ShapeArrowDown, Text: "Bearish Crossover",
			})
		}
	}
	logger.Infof("Crossovers: 检出 %d 个交叉点", len(markers))
	return markers
}

type extremum struct {
	index int
	value float64
}

// findLocalExtremum 判断 index 处是否为 2*window+1 邻域内的严格极值。
// 并列或邻域内出现非有限值都会使候选失效。
func findLocalExtremum(values []float64, index, window int, wantLow bool) (extremum, bool) {
	if index < window || index >= len(values)-window {
		return extremum{}, false
	}
	center := values[index]
	if !isFinite(center) {
		return extremum{}, false
	}
	for j := index - window; j <= index+window; j++ {
		if j == index {
			continue
		}
		v := values[j]
		if !isFinite(v) {
			return extremum{}, false
		}
		if wantLow && v <= center {
			return extremum{}, false
		}
		if !wantLow && v >= center {
			return extremum{}, false
		}
	}
	return extremum{index: index, value: center}, true
}

// DetectMACDDivergences 在价格序列上找严格局部极值，再按相同下标读取
// MACD 值比较方向：价格创新低而 MACD 抬高为底背离，镜像为顶背离。
// 所有先后成对的极值都参与比较，一次可以产出多个背离。
func DetectMACDDivergences(closes []float64, macdLine []*float64, timestamps []int64) []Marker {
	if len(closes) == 0 || len(macdLine) == 0 || len(timestamps) == 0 {
		logger.Warnf("Divergences: 输入为空")
		return nil
	}
	if !sameLength("Divergences", timestamps, len(closes)) {
		return nil
	}

	var lows, highs []extremum
	for i := range closes {
		if e, ok := findLocalExtremum(closes, i, macdDivergenceWindow, true); ok {
			lows = append(lows, e)
		}
		if e, ok := findLocalExtremum(closes, i, macdDivergenceWindow, false); ok {
			highs = append(highs, e)
		}
	}
	sort.Slice(lows, func(i, j int) bool { return lows[i].index < lows[j].index })
	sort.Slice(highs, func(i, j int) bool { return highs[i].index < highs[j].index })

	macdAt := func(idx int) *float64 {
		if idx < 0 || idx >= len(macdLine) {
			return nil
		}
		return macdLine[idx]
	}

	markers := make([]Marker, 0)
	for i := 1; i < len(lows); i++ {
		prev, cur := lows[i-1], lows[i]
		if cur.value >= prev.value {
			continue
		}
		pm, cm := macdAt(prev.index), macdAt(cur.index)
		if pm != nil && cm != nil && *cm > *pm {
			markers = append(markers, Marker{
				Time: timestamps[cur.index], Position: PositionBelowBar,
				Color: colorDivBull, Shape: ShapeArrowUp, Text: "Bullish Divergence",
			})
		}
	}
	for i := 1; i < len(highs); i++ {
		prev, cur := highs[i-1], highs[i]
		if cur.value <= prev.value {
			continue
		}
		pm, cm := macdAt(prev.index), macdAt(cur.index)
		if pm != nil && cm != nil && *cm < *pm {
			markers = append(markers, Marker{
				Time: timestamps[cur.index], Position: PositionAboveBar,
				Color: colorDivBear, Shape: ShapeArrowDown, Text: "Bearish Divergence",
			})
		}
	}
	logger.Infof("Divergences: 检出 %d 个背离标记", len(markers))
	return markers
}
