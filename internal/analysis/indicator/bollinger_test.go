package indicator

import "testing"

func constBand(n int, v float64) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		out[i] = fptr(v)
	}
	return out
}

func TestComputeBollingerInsufficientData(t *testing.T) {
	closes := make([]float64, DefaultBollingerPeriod-1)
	res := ComputeBollinger(closes, DefaultBollingerPeriod, DefaultBollingerStd)
	if res.Status != StatusInsufficientData {
		t.Fatalf("status = %s", res.Status)
	}
}

func TestComputeBollingerWarmupAndValues(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	res := ComputeBollinger(closes, 3, 2)
	if res.Status != StatusSuccess {
		t.Fatalf("status = %s", res.Status)
	}
	if len(res.Middle) != 5 || len(res.Upper) != 5 || len(res.Lower) != 5 {
		t.Fatalf("三条带都应与输入等长")
	}
	// 预热期输出 null。
	for i := 0; i < 2; i++ {
		if res.Middle[i] != nil || res.Upper[i] != nil || res.Lower[i] != nil {
			t.Fatalf("下标 %d 处于预热期，应为 null", i)
		}
	}
	// 窗口 {1,2,3}：SMA=2，样本标准差=1，上下带 = 2 ± 2·1。
	if res.Middle[2] == nil || !almostEqual(*res.Middle[2], 2) {
		t.Fatalf("middle[2] = %v", res.Middle[2])
	}
	if res.Upper[2] == nil || !almostEqual(*res.Upper[2], 4) {
		t.Fatalf("upper[2] = %v", res.Upper[2])
	}
	if res.Lower[2] == nil || !almostEqual(*res.Lower[2], 0) {
		t.Fatalf("lower[2] = %v", res.Lower[2])
	}
}

func TestBandwidth(t *testing.T) {
	upper := []*float64{fptr(12), fptr(12), nil, fptr(12)}
	lower := []*float64{fptr(8), fptr(8), fptr(8), fptr(8)}
	middle := []*float64{fptr(10), fptr(0), fptr(10), fptr(10)}
	ts := makeTimestamps(4)
	res := Bandwidth(upper, lower, middle, ts)
	if len(res.Values) != 4 {
		t.Fatalf("长度 = %d", len(res.Values))
	}
	if res.Values[0] == nil || !almostEqual(*res.Values[0], 0.4) {
		t.Fatalf("bandwidth[0] = %v", res.Values[0])
	}
	if res.Values[1] != nil {
		t.Fatalf("middle 为 0 时应输出 null")
	}
	if res.Values[2] != nil {
		t.Fatalf("带值缺失时应输出 null")
	}
}

func TestDetectSqueeze(t *testing.T) {
	// 带宽走高后骤降到窗口低位：降下来的柱子进入挤压。
	bws := []float64{0.5, 0.6, 0.7, 0.8, 0.9, 1.0, 0.3, 0.3}
	n := len(bws)
	middle := constBand(n, 10)
	upper := make([]*float64, n)
	lower := make([]*float64, n)
	for i, bw := range bws {
		upper[i] = fptr(10 + bw*5)
		lower[i] = fptr(10 - bw*5)
	}
	ts := makeTimestamps(n)
	markers := DetectSqueeze(upper, lower, middle, ts, 4, 0.1)
	if len(markers) != 2 {
		t.Fatalf("应检出 2 个挤压点: %+v", markers)
	}
	if markers[0].Time != ts[6] || markers[1].Time != ts[7] {
		t.Fatalf("挤压点位置错误: %+v", markers)
	}
	if markers[0].Text != "Squeeze" {
		t.Fatalf("text = %s", markers[0].Text)
	}

	// 窗口内有缺失值时整个窗口放弃。
	middle[5] = nil
	markers = DetectSqueeze(upper, lower, middle, ts, 4, 0.1)
	for _, m := range markers {
		if m.Time == ts[6] || m.Time == ts[7] {
			t.Fatalf("缺失窗口不应产生挤压点: %+v", m)
		}
	}
}

func TestDetectWalkingTheBandsUptrend(t *testing.T) {
	n := 7
	upper := constBand(n, 10)
	lower := constBand(n, 5)
	ts := makeTimestamps(n)

	// 连续 5 根收在上带之外：从第 3 根起每根都发标记。
	closes := []float64{7, 11, 11, 11, 11, 11, 7}
	markers := DetectWalkingTheBands(closes, upper, lower, ts, 3)
	if len(markers) != 3 {
		t.Fatalf("应检出 3 个标记: %+v", markers)
	}
	if markers[0].Time != ts[3] || markers[0].Text != "Strong Uptrend (3 periods)" {
		t.Fatalf("首个标记错误: %+v", markers[0])
	}
	if markers[2].Text != "Strong Uptrend (5 periods)" {
		t.Fatalf("计数应随行情递增: %+v", markers[2])
	}

	// 只有 2 根不够。
	closes = []float64{7, 11, 11, 7, 7, 7, 7}
	if got := DetectWalkingTheBands(closes, upper, lower, ts, 3); len(got) != 0 {
		t.Fatalf("不足连续根数不应发标记: %+v", got)
	}
}

func TestDetectWalkingTheBandsResetOnNullBand(t *testing.T) {
	n := 6
	upper := constBand(n, 10)
	lower := constBand(n, 5)
	upper[2] = nil
	ts := makeTimestamps(n)

	// 缺失带值打断计数，前后各 2 根凑不成 3 连。
	closes := []float64{11, 11, 11, 11, 11, 7}
	markers := DetectWalkingTheBands(closes, upper, lower, ts, 3)
	if len(markers) != 0 {
		t.Fatalf("缺失带值应重置计数: %+v", markers)
	}
}

func TestDetectWalkingTheBandsDowntrend(t *testing.T) {
	n := 5
	upper := constBand(n, 10)
	lower := constBand(n, 5)
	ts := makeTimestamps(n)
	closes := []float64{4, 4, 4, 7, 7}
	markers := DetectWalkingTheBands(closes, upper, lower, ts, 3)
	if len(markers) != 1 || markers[0].Text != "Strong Downtrend (3 periods)" || markers[0].Time != ts[2] {
		t.Fatalf("空头行走检测失败: %+v", markers)
	}
}

func TestDetectFalseBreakoutsUpper(t *testing.T) {
	n := 6
	upper := constBand(n, 10)
	lower := constBand(n, 0)
	ts := makeTimestamps(n)

	// 突破上带后下一根即收回：假突破。
	closes := []float64{9, 11, 9, 9, 9, 9}
	markers := DetectFalseBreakouts(closes, upper, lower, ts, 2)
	if len(markers) != 1 {
		t.Fatalf("应恰好一个假突破: %+v", markers)
	}
	if markers[0].Time != ts[1] || markers[0].Text != "False Breakout (Upper)" {
		t.Fatalf("标记错误: %+v", markers[0])
	}

	// 确认窗口内带值缺失：放弃确认。
	upper[2] = nil
	if got := DetectFalseBreakouts(closes, upper, lower, ts, 2); len(got) != 0 {
		t.Fatalf("缺失未来带值应放弃确认: %+v", got)
	}
}

func TestDetectFalseBreakoutsLower(t *testing.T) {
	n := 6
	upper := constBand(n, 10)
	lower := constBand(n, 0)
	ts := makeTimestamps(n)
	closes := []float64{1, -1, 1, 1, 1, 1}
	markers := DetectFalseBreakouts(closes, upper, lower, ts, 2)
	if len(markers) != 1 || markers[0].Text != "False Breakout (Lower)" || markers[0].Time != ts[1] {
		t.Fatalf("下带假突破检测失败: %+v", markers)
	}
}

func TestDetectFalseBreakoutsSustained(t *testing.T) {
	// 突破后持续站在带外：不是假突破。
	n := 6
	upper := constBand(n, 10)
	lower := constBand(n, 0)
	ts := makeTimestamps(n)
	closes := []float64{9, 11, 12, 12, 12, 12}
	if got := DetectFalseBreakouts(closes, upper, lower, ts, 2); len(got) != 0 {
		t.Fatalf("持续突破不应标为假突破: %+v", got)
	}
}

func TestDetectMiddleBandTouches(t *testing.T) {
	middle := constBand(3, 10)
	ts := makeTimestamps(3)

	markers := DetectMiddleBandTouches([]float64{11, 10, 11}, middle, ts)
	if len(markers) != 1 || markers[0].Text != "Middle Band Support" || markers[0].Time != ts[1] {
		t.Fatalf("支撑检测失败: %+v", markers)
	}

	markers = DetectMiddleBandTouches([]float64{9, 10, 9}, middle, ts)
	if len(markers) != 1 || markers[0].Text != "Middle Band Resistance" {
		t.Fatalf("阻力检测失败: %+v", markers)
	}

	// 触碰后没有反弹：不发标记。
	if got := DetectMiddleBandTouches([]float64{11, 10, 9}, middle, ts); len(got) != 0 {
		t.Fatalf("无反弹不应发标记: %+v", got)
	}
}

func TestDetectExtremeDeviation(t *testing.T) {
	upper := constBand(3, 10)
	lower := constBand(3, 8)
	ts := makeTimestamps(3)

	// 带高 2，倍数 1.5：上界 13，下界 5。
	markers := DetectExtremeDeviation([]float64{14, 12, 4.9}, upper, lower, ts, 1.5)
	if len(markers) != 2 {
		t.Fatalf("应检出 2 个极端偏离: %+v", markers)
	}
	if markers[0].Text != "Extreme Deviation (Upper)" || markers[0].Time != ts[0] {
		t.Fatalf("上侧偏离错误: %+v", markers[0])
	}
	if markers[1].Text != "Extreme Deviation (Lower)" || markers[1].Time != ts[2] {
		t.Fatalf("下侧偏离错误: %+v", markers[1])
	}
}
