package indicator

// Marker 是挂在 K 线图上的单点注释，只用于展示，不回流进计算。
type Marker struct {
	Time     int64  `json:"time"`
	Position string `json:"position"`
	Color    string `json:"color"`
	Shape    string `json:"shape"`
	Text     string `json:"text"`
}

const (
	PositionAboveBar = "aboveBar"
	PositionBelowBar = "belowBar"

	ShapeArrowUp      = "arrowUp"
	ShapeArrowDown    = "arrowDown"
	ShapeCircle       = "circle"
	ShapeSquare       = "square"
	ShapeTriangleUp   = "triangleUp"
	ShapeTriangleDown = "triangleDown"
)

// Point 是价格空间或指标空间里的一个时间点。
type Point struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// DivergencePair 用四个参考点描述一次价格与指标的方向性背离。
type DivergencePair struct {
	PriceStart     Point `json:"price_start"`
	PriceEnd       Point `json:"price_end"`
	IndicatorStart Point `json:"indicator_start"`
	IndicatorEnd   Point `json:"indicator_end"`
}

// Divergences 汇总一次检测产出的多头/空头背离。
type Divergences struct {
	Bullish []DivergencePair `json:"bullish"`
	Bearish []DivergencePair `json:"bearish"`
}
