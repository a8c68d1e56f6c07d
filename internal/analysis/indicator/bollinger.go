package indicator

import (
	"fmt"
	"math"

	"stocklens/internal/logger"
)

const (
	DefaultBollingerPeriod = 20
	DefaultBollingerStd    = 2.0

	defaultSqueezePeriod      = 120
	defaultSqueezeThreshold   = 0.1
	defaultWalkMinConsecutive = 3
	defaultConfirmationPeriod = 2
	defaultDeviationMult      = 1.5
)

const (
	colorSqueeze    = "#FFD700"
	colorWalkUp     = "#00BFFF"
	colorWalkDown   = "#FF4500"
	colorFalseBreak = "#8A2BE2"
	colorSupport    = "#32CD32"
	colorResistance = "#FF6347"
	colorDeviation  = "#FF00FF"
)

// BollingerResult 的三条带与输入等长，预热期（前 period-1 根）为 null。
type BollingerResult struct {
	Middle  []*float64 `json:"middle"`
	Upper   []*float64 `json:"upper"`
	Lower   []*float64 `json:"lower"`
	Status  Status     `json:"status"`
	Message string     `json:"message,omitempty"`
}

// ComputeBollinger 计算布林带：middle 为 SMA，上下带为 middle ± k·样本标准差。
func ComputeBollinger(closes []float64, period int, numStd float64) BollingerResult {
	if period <= 0 {
		period = DefaultBollingerPeriod
	}
	if numStd <= 0 {
		numStd = DefaultBollingerStd
	}
	if !ValidateDataLength(len(closes), period, "Bollinger Bands") {
		return BollingerResult{
			Status:  StatusInsufficientData,
			Message: fmt.Sprintf("布林带数据不足，至少需要 %d 个数据点", period),
		}
	}

	middle := SMA(closes, period)
	std := RollingStd(closes, period)
	n := len(closes)
	upper := make([]float64, n)
	lower := make([]float64, n)
	for i := 0; i < n; i++ {
		if !isFinite(middle[i]) || !isFinite(std[i]) {
			upper[i] = math.NaN()
			lower[i] = math.NaN()
			continue
		}
		upper[i] = middle[i] + numStd*std[i]
		lower[i] = middle[i] - numStd*std[i]
	}

	res := BollingerResult{
		Middle: Clean(middle),
		Upper:  Clean(upper),
		Lower:  Clean(lower),
		Status: StatusSuccess,
	}
	valid := 0
	for _, v := range res.Middle {
		if v != nil {
			valid++
		}
	}
	logger.Infof("Bollinger Bands: 计算完成，共 %d 个有效数据点", valid)
	return res
}

// BandwidthResult 暴露 (upper-lower)/middle 序列，供波动率分级使用。
type BandwidthResult struct {
	Values     []*float64 `json:"bandwidth"`
	Timestamps []int64    `json:"timestamps"`
}

// Bandwidth 逐根计算带宽；middle 为 0 或任一带值缺失时输出 null。
func Bandwidth(upper, lower, middle []*float64, timestamps []int64) BandwidthResult {
	if !sameLength("Bandwidth", timestamps, len(upper), len(lower), len(middle)) {
		return BandwidthResult{Values: []*float64{}, Timestamps: []int64{}}
	}
	values := make([]*float64, len(timestamps))
	for i := range timestamps {
		if upper[i] == nil || lower[i] == nil || middle[i] == nil || *middle[i] == 0 {
			continue
		}
		bw := (*upper[i] - *lower[i]) / *middle[i]
		if isFinite(bw) {
			values[i] = &bw
		}
	}
	return BandwidthResult{Values: values, Timestamps: timestamps}
}

// DetectSqueeze 把带宽与其滚动历史最低值比较：进入历史低位
// （≤ 最低值 × (1+threshold)）的柱子标记为挤压。
func DetectSqueeze(upper, lower, middle []*float64, timestamps []int64, squeezePeriod int, threshold float64) []Marker {
	if squeezePeriod <= 0 {
		squeezePeriod = defaultSqueezePeriod
	}
	if threshold <= 0 {
		threshold = defaultSqueezeThreshold
	}
	if !sameLength("Squeeze", timestamps, len(upper), len(lower), len(middle)) {
		return nil
	}

	bw := Bandwidth(upper, lower, middle, timestamps).Values
	markers := make([]Marker, 0)
	for i := range bw {
		if bw[i] == nil || i < squeezePeriod-1 {
			continue
		}
		low := math.Inf(1)
		complete := true
		for j := i - squeezePeriod + 1; j <= i; j++ {
			if bw[j] == nil {
				complete = false
				break
			}
			if *bw[j] < low {
				low = *bw[j]
			}
		}
		if !complete {
			continue
		}
		if *bw[i] <= low*(1+threshold) {
			markers = append(markers, Marker{
				Time: timestamps[i], Position: PositionBelowBar,
				Color: colorSqueeze, Shape: ShapeCircle, Text: "Squeeze",
			})
		}
	}
	logger.Infof("Squeeze: 检出 %d 个挤压点", len(markers))
	return markers
}

// DetectWalkingTheBands 跟踪价格连续贴着上/下带行走的计数：
// 带值缺失会把两个计数都清零；计数达到 minConsecutive 后，
// 只要行情延续，每根柱子都会重复发标记。
func DetectWalkingTheBands(closes []float64, upper, lower []*float64, timestamps []int64, minConsecutive int) []Marker {
	if minConsecutive <= 0 {
		minConsecutive = defaultWalkMinConsecutive
	}
	if !sameLength("WalkingTheBands", timestamps, len(closes), len(upper), len(lower)) {
		return nil
	}

	markers := make([]Marker, 0)
	above, below := 0, 0
	for i := range timestamps {
		if upper[i] == nil || lower[i] == nil {
			above, below = 0, 0
			continue
		}
		price := closes[i]
		switch {
		case price > *upper[i]:
			above++
			below = 0
			if above >= minConsecutive {
				markers = append(markers, Marker{
					Time: timestamps[i], Position: PositionAboveBar,
					Color: colorWalkUp, Shape: ShapeArrowUp,
					Text: fmt.Sprintf("Strong Uptrend (%d periods)", above),
				})
			}
		case price < *lower[i]:
			below++
			above = 0
			if below >= minConsecutive {
				markers = append(markers, Marker{
					Time: timestamps[i], Position: PositionBelowBar,
					Color: colorWalkDown, Shape: ShapeArrowDown,
					Text: fmt.Sprintf("Strong Downtrend (%d periods)", below),
				})
			}
		default:
			above, below = 0, 0
		}
	}
	logger.Infof("WalkingTheBands: 检出 %d 个标记", len(markers))
	return markers
}

// DetectFalseBreakouts 找突破后在确认窗口内收回带内的假突破。
// 确认窗口内任何一根未来带值缺失都会放弃该次确认（保守处理，
// 不是跳过单根）。
func DetectFalseBreakouts(closes []float64, upper, lower []*float64, timestamps []int64, confirmationPeriod int) []Marker {
	if confirmationPeriod <= 0 {
		confirmationPeriod = defaultConfirmationPeriod
	}
	if !sameLength("FalseBreakouts", timestamps, len(closes), len(upper), len(lower)) {
		return nil
	}

	markers := make([]Marker, 0)
	for i := 1; i < len(timestamps)-confirmationPeriod; i++ {
		if upper[i] == nil || lower[i] == nil || upper[i-1] == nil || lower[i-1] == nil {
			continue
		}
		price, prevPrice := closes[i], closes[i-1]

		if prevPrice < *upper[i-1] && price > *upper[i] {
			reverted := false
			for j := 1; j <= confirmationPeriod; j++ {
				future := upper[i+j]
				if future == nil {
					reverted = false
					break
				}
				if closes[i+j] < *future {
					reverted = true
					break
				}
			}
			if reverted {
				markers = append(markers, Marker{
					Time: timestamps[i], Position: PositionAboveBar,
					Color: colorFalseBreak, Shape: ShapeSquare, Text: "False Breakout (Upper)",
				})
			}
		}

		if prevPrice > *lower[i-1] && price < *lower[i] {
			reverted := false
			for j := 1; j <= confirmationPeriod; j++ {
				future := lower[i+j]
				if future == nil {
					reverted = false
					break
				}
				if closes[i+j] > *future {
					reverted = true
					break
				}
			}
			if reverted {
				markers = append(markers, Marker{
					Time: timestamps[i], Position: PositionBelowBar,
					Color: colorFalseBreak, Shape: ShapeSquare, Text: "False Breakout (Lower)",
				})
			}
		}
	}
	logger.Infof("FalseBreakouts: 检出 %d 个标记", len(markers))
	return markers
}

// DetectMiddleBandTouches 找中轨的触碰-反弹：
// 支撑为前一根在中轨上方、本根触到或跌破中轨、下一根回升；阻力取镜像。
// 首尾两根不参与判断。
func DetectMiddleBandTouches(closes []float64, middle []*float64, timestamps []int64) []Marker {
	if !sameLength("MiddleBandTouches", timestamps, len(closes), len(middle)) {
		return nil
	}

	markers := make([]Marker, 0)
	for i := 1; i < len(timestamps)-1; i++ {
		if middle[i] == nil || middle[i-1] == nil {
			continue
		}
		price, prevPrice, nextPrice := closes[i], closes[i-1], closes[i+1]

		if prevPrice > *middle[i-1] && price <= *middle[i] && nextPrice > price {
			markers = append(markers, Marker{
				Time: timestamps[i], Position: PositionBelowBar,
				Color: colorSupport, Shape: ShapeCircle, Text: "Middle Band Support",
			})
		}
		if prevPrice < *middle[i-1] && price >= *middle[i] && nextPrice < price {
			markers = append(markers, Marker{
				Time: timestamps[i], Position: PositionAboveBar,
				Color: colorResistance, Shape: ShapeCircle, Text: "Middle Band Resistance",
			})
		}
	}
	logger.Infof("MiddleBandTouches: 检出 %d 个标记", len(markers))
	return markers
}

// DetectExtremeDeviation 标记偏离带外超过 multiplier 倍带高的柱子。
func DetectExtremeDeviation(closes []float64, upper, lower []*float64, timestamps []int64, multiplier float64) []Marker {
	if multiplier <= 0 {
		multiplier = defaultDeviationMult
	}
	if !sameLength("ExtremeDeviation", timestamps, len(closes), len(upper), len(lower)) {
		return nil
	}

	markers := make([]Marker, 0)
	for i := range timestamps {
		if upper[i] == nil || lower[i] == nil {
			continue
		}
		price := closes[i]
		height := *upper[i] - *lower[i]

		if price > *upper[i]+height*multiplier {
			markers = append(markers, Marker{
				Time: timestamps[i], Position: PositionAboveBar,
				Color: colorDeviation, Shape: ShapeTriangleUp, Text: "Extreme Deviation (Upper)",
			})
		}
		if price < *lower[i]-height*multiplier {
			markers = append(markers, Marker{
				Time: timestamps[i], Position: PositionBelowBar,
				Color: colorDeviation, Shape: ShapeTriangleDown, Text: "Extreme Deviation (Lower)",
			})
		}
	}
	logger.Infof("ExtremeDeviation: 检出 %d 个标记", len(markers))
	return markers
}
