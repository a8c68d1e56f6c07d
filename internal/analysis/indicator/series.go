package indicator

import (
	"math"

	"stocklens/internal/logger"
)

// Status 标记一次指标计算的结果状态，调用方必须先检查再使用输出数组。
type Status string

const (
	StatusSuccess          Status = "success"
	StatusInsufficientData Status = "insufficient_data"
)

// ValidateDataLength 校验序列长度是否满足计算窗口，不足时记录告警。
func ValidateDataLength(length, minRequired int, name string) bool {
	if length < minRequired {
		logger.Warnf("%s: 数据不足，需要 %d 根，实际 %d 根", name, minRequired, length)
		return false
	}
	return true
}

// Clean 把 NaN/±Inf 统一映射为 null，是内部浮点计算与对外
// 可空数值表示之间的唯一边界；每条输出序列只经过一次。
func Clean(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		if !isFinite(v) {
			continue
		}
		val := v
		out[i] = &val
	}
	return out
}

// FirstValid 返回第一个非 null 下标，全空返回 -1。
func FirstValid(values []*float64) int {
	for i, v := range values {
		if v != nil {
			return i
		}
	}
	return -1
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// sameLength 校验检测器的平行输入长度一致；不一致说明上游对齐有 bug，
// 检测器记录错误并返回空结果，而不是 panic。
func sameLength(name string, timestamps []int64, lengths ...int) bool {
	for _, n := range lengths {
		if n != len(timestamps) {
			logger.Errorf("%s: 输入数组长度不一致（timestamps=%d, got=%d）", name, len(timestamps), n)
			return false
		}
	}
	return true
}
