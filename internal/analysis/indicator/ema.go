package indicator

import "math"

// EMA 计算指数移动平均：α = 2/(period+1)，用第一个有效值做种子，
// 从第一根就开始输出（不像 SMA 需要整个窗口预热）。
// 输入中的 NaN 原样输出，且不推进递推状态。
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 || period <= 0 {
		return out
	}
	alpha := 2.0 / (float64(period) + 1.0)
	seeded := false
	prev := 0.0
	for i, v := range values {
		if !isFinite(v) {
			out[i] = math.NaN()
			continue
		}
		if !seeded {
			prev = v
			seeded = true
		} else {
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out
}

// SMA 计算简单移动平均，窗口不满或窗口内含非有限值时输出 NaN。
func SMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 0 {
		return out
	}
	for i := range values {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		valid := true
		for j := i - period + 1; j <= i; j++ {
			if !isFinite(values[j]) {
				valid = false
				break
			}
			sum += values[j]
		}
		if !valid {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(period)
	}
	return out
}

// RollingStd 计算滚动样本标准差（n-1 分母），窗口不满输出 NaN。
func RollingStd(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 1 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	for i := range values {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		valid := true
		for j := i - period + 1; j <= i; j++ {
			if !isFinite(values[j]) {
				valid = false
				break
			}
			sum += values[j]
		}
		if !valid {
			out[i] = math.NaN()
			continue
		}
		mean := sum / float64(period)
		ss := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(period-1))
	}
	return out
}

func diff(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		if !isFinite(a[i]) || !isFinite(b[i]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = a[i] - b[i]
	}
	return out
}
