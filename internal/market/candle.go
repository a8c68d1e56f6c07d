package market

import "time"

// Candle 表示某个 symbol+interval 的单根 K 线，时间戳为毫秒。
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Series 是 K 线的平行数组表示，按时间升序排列。
// 所有切片长度一致；指标引擎直接消费这种形态。
type Series struct {
	Timestamps []int64   `json:"timestamps"`
	Open       []float64 `json:"open"`
	High       []float64 `json:"high"`
	Low        []float64 `json:"low"`
	Close      []float64 `json:"close"`
	Volume     []float64 `json:"volume"`
}

// ToSeries 把 K 线列表拆成平行数组。
func ToSeries(candles []Candle) Series {
	n := len(candles)
	s := Series{
		Timestamps: make([]int64, n),
		Open:       make([]float64, n),
		High:       make([]float64, n),
		Low:        make([]float64, n),
		Close:      make([]float64, n),
		Volume:     make([]float64, n),
	}
	for i, c := range candles {
		s.Timestamps[i] = c.Timestamp
		s.Open[i] = c.Open
		s.High[i] = c.High
		s.Low[i] = c.Low
		s.Close[i] = c.Close
		s.Volume[i] = c.Volume
	}
	return s
}

// Len 返回序列长度。
func (s Series) Len() int { return len(s.Close) }

// Valid 校验平行数组长度一致。
func (s Series) Valid() bool {
	n := len(s.Timestamps)
	return len(s.Open) == n && len(s.High) == n && len(s.Low) == n &&
		len(s.Close) == n && len(s.Volume) == n
}

// FormatTimestamp 把毫秒时间戳转成 RFC3339，供标记文本与图表使用。
func FormatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
