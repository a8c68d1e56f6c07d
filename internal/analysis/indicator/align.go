package indicator

// 指标序列带预热期，比原始价格序列短；这里的工具负责把价格/时间戳
// 对齐回指标起点，并把所有平行数组截到公共长度。

// StartIndexAtOrAfter 返回第一个时间戳 ≥ target 的下标，找不到返回 -1。
func StartIndexAtOrAfter(timestamps []int64, target int64) int {
	for i, ts := range timestamps {
		if ts >= target {
			return i
		}
	}
	return -1
}

// CommonLength 返回所有长度中的最小值；空参数返回 0。
func CommonLength(lengths ...int) int {
	if len(lengths) == 0 {
		return 0
	}
	minLen := lengths[0]
	for _, n := range lengths[1:] {
		if n < minLen {
			minLen = n
		}
	}
	if minLen < 0 {
		return 0
	}
	return minLen
}

// SliceFloats 截取 [start, start+length)，越界部分自动收缩。
func SliceFloats(values []float64, start, length int) []float64 {
	if start < 0 || start >= len(values) || length <= 0 {
		return []float64{}
	}
	end := start + length
	if end > len(values) {
		end = len(values)
	}
	return append([]float64(nil), values[start:end]...)
}

// SliceNullable 同 SliceFloats，作用于可空序列。
func SliceNullable(values []*float64, start, length int) []*float64 {
	if start < 0 || start >= len(values) || length <= 0 {
		return []*float64{}
	}
	end := start + length
	if end > len(values) {
		end = len(values)
	}
	return append([]*float64(nil), values[start:end]...)
}

// SliceTimestamps 同 SliceFloats，作用于时间戳序列。
func SliceTimestamps(values []int64, start, length int) []int64 {
	if start < 0 || start >= len(values) || length <= 0 {
		return []int64{}
	}
	end := start + length
	if end > len(values) {
		end = len(values)
	}
	return append([]int64(nil), values[start:end]...)
}
