package indicator

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEMAConstantSeries(t *testing.T) {
	// 常数序列：种子即为 v，之后每步增量为 0，EMA 恒等于 v。
	values := make([]float64, 50)
	for i := range values {
		values[i] = 42.5
	}
	out := EMA(values, 12)
	if len(out) != len(values) {
		t.Fatalf("长度不一致: got %d want %d", len(out), len(values))
	}
	for i, v := range out {
		if !almostEqual(v, 42.5) {
			t.Fatalf("下标 %d: got %v want 42.5", i, v)
		}
	}
}

func TestEMAEmitsFromFirstSample(t *testing.T) {
	out := EMA([]float64{10, 11, 12}, 5)
	if !isFinite(out[0]) {
		t.Fatalf("EMA 应从首根开始输出，out[0]=%v", out[0])
	}
	if !almostEqual(out[0], 10) {
		t.Fatalf("种子应为首个样本: got %v", out[0])
	}
	// α = 2/(5+1) = 1/3：out[1] = 10 + (11-10)/3
	if !almostEqual(out[1], 10+1.0/3.0) {
		t.Fatalf("out[1]=%v", out[1])
	}
}

func TestEMASkipsNaNWithoutAdvancing(t *testing.T) {
	out := EMA([]float64{10, math.NaN(), 10}, 5)
	if !math.IsNaN(out[1]) {
		t.Fatalf("NaN 输入应原样输出: %v", out[1])
	}
	if !almostEqual(out[2], 10) {
		t.Fatalf("NaN 不应推进递推状态: out[2]=%v", out[2])
	}
}

func TestSMAWarmup(t *testing.T) {
	out := SMA([]float64{1, 2, 3, 4, 5}, 3)
	for i := 0; i < 2; i++ {
		if !math.IsNaN(out[i]) {
			t.Fatalf("窗口未满应输出 NaN: out[%d]=%v", i, out[i])
		}
	}
	if !almostEqual(out[2], 2) || !almostEqual(out[4], 4) {
		t.Fatalf("SMA 结果错误: %v", out)
	}
}

func TestRollingStdSampleDenominator(t *testing.T) {
	// 样本标准差用 n-1 分母：std(1,2,3) = 1。
	out := RollingStd([]float64{1, 2, 3, 4}, 3)
	if !almostEqual(out[2], 1) || !almostEqual(out[3], 1) {
		t.Fatalf("样本标准差错误: %v", out)
	}
}
