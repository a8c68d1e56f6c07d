package indicator

// FindPeaks 返回所有满足最小突出度的局部极大值下标（升序）。
// 候选点必须严格高于左右紧邻点；突出度取候选值减去两侧基底中较高
// 的一个，基底是向两侧延伸到更高点（或序列边界、非有限值）为止的
// 最低值。低于 prominence 的毛刺一律过滤，避免把噪声当成峰。
func FindPeaks(values []float64, prominence float64) []int {
	n := len(values)
	if n < 3 {
		return nil
	}
	peaks := make([]int, 0)
	for i := 1; i < n-1; i++ {
		v := values[i]
		if !isFinite(v) || !isFinite(values[i-1]) || !isFinite(values[i+1]) {
			continue
		}
		if !(values[i-1] < v && v > values[i+1]) {
			continue
		}
		if peakProminence(values, i) >= prominence {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// FindTroughs 通过取反序列复用 FindPeaks 找局部极小值。
func FindTroughs(values []float64, prominence float64) []int {
	inverted := make([]float64, len(values))
	for i, v := range values {
		inverted[i] = -v
	}
	return FindPeaks(inverted, prominence)
}

func peakProminence(values []float64, peak int) float64 {
	height := values[peak]

	leftBase := height
	for j := peak - 1; j >= 0; j-- {
		v := values[j]
		if !isFinite(v) || v > height {
			break
		}
		if v < leftBase {
			leftBase = v
		}
	}
	rightBase := height
	for j := peak + 1; j < len(values); j++ {
		v := values[j]
		if !isFinite(v) || v > height {
			break
		}
		if v < rightBase {
			rightBase = v
		}
	}

	base := leftBase
	if rightBase > base {
		base = rightBase
	}
	return height - base
}
