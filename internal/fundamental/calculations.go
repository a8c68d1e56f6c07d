package fundamental

import (
	"github.com/shopspring/decimal"
)

// 涨跌标记沿用 ±0.5% 的死区，微小波动显示为持平。
const (
	TrendUp   = "▲"
	TrendDown = "▼"
	TrendFlat = "---"

	trendEpsilon = 0.005
)

// TrendMarker 把增长率映射为方向标记，nil 视为无变化。
func TrendMarker(growth *float64) string {
	if growth == nil {
		return TrendFlat
	}
	switch {
	case *growth > trendEpsilon:
		return TrendUp
	case *growth < -trendEpsilon:
		return TrendDown
	default:
		return TrendFlat
	}
}

// ratio 用 decimal 做除法避免财务大数的浮点误差，分母为 0 返回 nil。
func ratio(numerator, denominator *float64) *float64 {
	if numerator == nil || denominator == nil || *denominator == 0 {
		return nil
	}
	v, _ := decimal.NewFromFloat(*numerator).
		Div(decimal.NewFromFloat(*denominator)).Float64()
	return &v
}

// growthRate = (latest - previous) / previous。
func growthRate(latest, previous *float64) *float64 {
	if latest == nil || previous == nil || *previous == 0 {
		return nil
	}
	prev := decimal.NewFromFloat(*previous)
	v, _ := decimal.NewFromFloat(*latest).Sub(prev).Div(prev).Float64()
	return &v
}

// GrowthResult 是单个字段的环比/同比增长。
type GrowthResult struct {
	QoQ      *float64 `json:"qoq_growth"`
	YoY      *float64 `json:"yoy_growth"`
	QoQTrend string   `json:"qoq_trend"`
	YoYTrend string   `json:"yoy_trend"`
}

// Growth 按降序序列计算环比（相邻两期）与同比（往前第 4 期，
// 季度数据即去年同期）。
func Growth(values []*float64, quarterly bool) GrowthResult {
	out := GrowthResult{QoQTrend: TrendFlat, YoYTrend: TrendFlat}
	if len(values) == 0 {
		return out
	}
	if quarterly && len(values) >= 2 {
		out.QoQ = growthRate(values[0], values[1])
	}
	if len(values) >= 4 {
		out.YoY = growthRate(values[0], values[3])
	}
	out.QoQTrend = TrendMarker(out.QoQ)
	out.YoYTrend = TrendMarker(out.YoY)
	return out
}

// RevenueSeries/EPSSeries/FCFSeries 从财报中抽取字段序列（保持降序）。
func RevenueSeries(statements []IncomeStatement) []*float64 {
	out := make([]*float64, len(statements))
	for i, s := range statements {
		out[i] = s.Revenue
	}
	return out
}

func EPSSeries(statements []IncomeStatement) []*float64 {
	out := make([]*float64, len(statements))
	for i, s := range statements {
		out[i] = s.EPS
	}
	return out
}

func FCFSeries(statements []CashFlowStatement) []*float64 {
	out := make([]*float64, len(statements))
	for i, s := range statements {
		out[i] = s.FreeCashFlow
	}
	return out
}

// MarginsResult 是最新一期的三项利润率与各自的走势。
type MarginsResult struct {
	GrossProfitMargin     *float64 `json:"grossProfitMargin"`
	OperatingProfitMargin *float64 `json:"operatingProfitMargin"`
	NetProfitMargin       *float64 `json:"netProfitMargin"`
	GrossTrend            string   `json:"grossProfitMarginTrend"`
	OperatingTrend        string   `json:"operatingProfitMarginTrend"`
	NetTrend              string   `json:"netProfitMarginTrend"`
}

// Margins 计算最新一期的毛利率/营业利润率/净利率，并与上一期比较走势。
func Margins(statements []IncomeStatement) MarginsResult {
	out := MarginsResult{GrossTrend: TrendFlat, OperatingTrend: TrendFlat, NetTrend: TrendFlat}
	if len(statements) == 0 {
		return out
	}
	latest := statements[0]
	out.GrossProfitMargin = ratio(latest.GrossProfit, latest.Revenue)
	out.OperatingProfitMargin = ratio(latest.OperatingIncome, latest.Revenue)
	out.NetProfitMargin = ratio(latest.NetIncome, latest.Revenue)

	if len(statements) >= 2 {
		prev := statements[1]
		out.GrossTrend = TrendMarker(growthRate(out.GrossProfitMargin, ratio(prev.GrossProfit, prev.Revenue)))
		out.OperatingTrend = TrendMarker(growthRate(out.OperatingProfitMargin, ratio(prev.OperatingIncome, prev.Revenue)))
		out.NetTrend = TrendMarker(growthRate(out.NetProfitMargin, ratio(prev.NetIncome, prev.Revenue)))
	}
	return out
}

// ROE 返回最新一期净资产收益率与走势。
func ROE(income []IncomeStatement, balance []BalanceSheet) (*float64, string) {
	if len(income) == 0 || len(balance) == 0 {
		return nil, TrendFlat
	}
	value := ratio(income[0].NetIncome, balance[0].TotalEquity)
	trend := TrendFlat
	if len(income) >= 2 && len(balance) >= 2 {
		prev := ratio(income[1].NetIncome, balance[1].TotalEquity)
		trend = TrendMarker(growthRate(value, prev))
	}
	return value, trend
}

// OperatingCashFlow 返回最新一期经营现金流与走势。
func OperatingCashFlow(statements []CashFlowStatement) (*float64, string) {
	if len(statements) == 0 {
		return nil, TrendFlat
	}
	value := statements[0].OperatingCashFlow
	trend := TrendFlat
	if len(statements) >= 2 {
		trend = TrendMarker(growthRate(value, statements[1].OperatingCashFlow))
	}
	return value, trend
}

// FreeCashFlow 返回最新一期自由现金流与走势。
func FreeCashFlow(statements []CashFlowStatement) (*float64, string) {
	if len(statements) == 0 {
		return nil, TrendFlat
	}
	value := statements[0].FreeCashFlow
	trend := TrendFlat
	if len(statements) >= 2 {
		trend = TrendMarker(growthRate(value, statements[1].FreeCashFlow))
	}
	return value, trend
}

// CurrentRatio 返回最新一期流动比率与走势。
func CurrentRatio(statements []BalanceSheet) (*float64, string) {
	if len(statements) == 0 {
		return nil, TrendFlat
	}
	value := ratio(statements[0].TotalCurrentAssets, statements[0].TotalCurrentLiabilities)
	trend := TrendFlat
	if len(statements) >= 2 {
		prev := ratio(statements[1].TotalCurrentAssets, statements[1].TotalCurrentLiabilities)
		trend = TrendMarker(growthRate(value, prev))
	}
	return value, trend
}

// DebtToEquity 返回最新一期产权比率与走势。
func DebtToEquity(statements []BalanceSheet) (*float64, string) {
	if len(statements) == 0 {
		return nil, TrendFlat
	}
	value := ratio(statements[0].TotalDebt, statements[0].TotalEquity)
	trend := TrendFlat
	if len(statements) >= 2 {
		prev := ratio(statements[1].TotalDebt, statements[1].TotalEquity)
		trend = TrendMarker(growthRate(value, prev))
	}
	return value, trend
}

// FCFContinuity 描述自由现金流的连续性。
type FCFContinuity struct {
	ConsistentPositive bool     `json:"isConsistentPositive"`
	Trend              string   `json:"trend"`
	LatestFCF          *float64 `json:"latestFcf"`
}

// AnalyzeFCFContinuity 跳过缺失期后判断 FCF 是否持续为正，
// 连续三期单调则给出方向，否则视为波动。
func AnalyzeFCFContinuity(statements []CashFlowStatement) FCFContinuity {
	out := FCFContinuity{Trend: "unknown"}
	values := make([]float64, 0, len(statements))
	for _, s := range statements {
		if s.FreeCashFlow != nil {
			values = append(values, *s.FreeCashFlow)
		}
	}
	if len(values) == 0 {
		return out
	}
	latest := values[0]
	out.LatestFCF = &latest

	out.ConsistentPositive = true
	for _, v := range values {
		if v <= 0 {
			out.ConsistentPositive = false
			break
		}
	}
	if len(values) >= 3 {
		switch {
		case values[0] > values[1] && values[1] > values[2]:
			out.Trend = "increasing"
		case values[0] < values[1] && values[1] < values[2]:
			out.Trend = "decreasing"
		default:
			out.Trend = "volatile"
		}
	}
	return out
}

// Valuation 给出估值指标：PE 取自实时报价，PS 用市值除以最近四期
// 营收之和（约等于 TTM）。
type ValuationResult struct {
	PERatio *float64 `json:"peRatio"`
	PSRatio *float64 `json:"psRatio"`
}

func Valuation(quote *Quote, income []IncomeStatement) ValuationResult {
	var out ValuationResult
	if quote == nil {
		return out
	}
	out.PERatio = quote.PE
	if quote.MarketCap == nil {
		return out
	}
	sum := decimal.Zero
	count := 0
	for i, s := range income {
		if i >= 4 {
			break
		}
		if s.Revenue == nil {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(*s.Revenue))
		count++
	}
	if count == 0 || sum.IsZero() {
		return out
	}
	ps, _ := decimal.NewFromFloat(*quote.MarketCap).Div(sum).Float64()
	out.PSRatio = &ps
	return out
}
