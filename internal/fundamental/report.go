package fundamental

import "fmt"

// MetricItem 是单项指标的展示单元：数值保留原始精度，
// Display 负责格式化，状态与颜色来自体检规则。
type MetricItem struct {
	Name    string   `json:"name"`
	Value   *float64 `json:"value"`
	Display string   `json:"display"`
	Trend   string   `json:"trend"`
	Status  string   `json:"status"`
	Color   string   `json:"color"`
}

func metric(name string, value *float64, trend string, h Health, percentage bool, decimals int) MetricItem {
	display := "N/A"
	if value != nil {
		if percentage {
			display = fmt.Sprintf("%.*f%%", decimals, *value*100)
		} else {
			display = fmt.Sprintf("%.*f", decimals, *value)
		}
	}
	if trend == "" {
		trend = TrendFlat
	}
	return MetricItem{
		Name:    name,
		Value:   value,
		Display: display,
		Trend:   trend,
		Status:  h.Status,
		Color:   h.Color,
	}
}

// HistoricalPoint 是走势图的单点（按时间升序）。
type HistoricalPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// State 是五个维度的综合评估。
type State struct {
	Profitability    Health `json:"profitability"`
	Growth           Health `json:"growth"`
	Cashflow         Health `json:"cashflow"`
	BalanceSheet     Health `json:"balanceSheet"`
	ValuationContext Health `json:"valuationContext"`
}

// Report 是一个 symbol 的完整基本面报告。
type Report struct {
	Symbol     string                `json:"symbol"`
	Period     string                `json:"period"`
	Statements Statements            `json:"statements"`
	Metrics    map[string]MetricItem `json:"calculatedMetrics"`
	State      State                 `json:"fundamentalState"`

	HistoricalRevenue []HistoricalPoint `json:"historicalRevenue"`
	HistoricalEPS     []HistoricalPoint `json:"historicalEPS"`
	HistoricalFCF     []HistoricalPoint `json:"historicalFreeCashFlow"`
}

// BuildReport 由三张财报和报价推导全部指标与综合状态。
// 财报按日期降序传入；走势序列输出时反转为升序。
func BuildReport(symbol, period string, statements Statements, quote *Quote) Report {
	metrics := make(map[string]MetricItem)

	revenueGrowth := Growth(RevenueSeries(statements.Income), period == "quarter")
	metrics["revenueGrowthQoQ"] = metric("Revenue QoQ Growth", revenueGrowth.QoQ, revenueGrowth.QoQTrend, health("unknown"), true, 2)
	metrics["revenueGrowthYoY"] = metric("Revenue YoY Growth", revenueGrowth.YoY, revenueGrowth.YoYTrend, health("unknown"), true, 2)

	epsGrowth := Growth(EPSSeries(statements.Income), period == "quarter")
	metrics["epsGrowthQoQ"] = metric("EPS QoQ Growth", epsGrowth.QoQ, epsGrowth.QoQTrend, health("unknown"), true, 2)
	metrics["epsGrowthYoY"] = metric("EPS YoY Growth", epsGrowth.YoY, epsGrowth.YoYTrend, health("unknown"), true, 2)

	margins := Margins(statements.Income)
	metrics["grossProfitMargin"] = metric("Gross Profit Margin", margins.GrossProfitMargin, margins.GrossTrend, AssessMargin(margins.GrossProfitMargin), true, 2)
	metrics["operatingProfitMargin"] = metric("Operating Profit Margin", margins.OperatingProfitMargin, margins.OperatingTrend, AssessMargin(margins.OperatingProfitMargin), true, 2)
	metrics["netProfitMargin"] = metric("Net Profit Margin", margins.NetProfitMargin, margins.NetTrend, AssessMargin(margins.NetProfitMargin), true, 2)

	roe, roeTrend := ROE(statements.Income, statements.Balance)
	metrics["roe"] = metric("Return on Equity (ROE)", roe, roeTrend, AssessROE(roe), true, 2)

	ocf, ocfTrend := OperatingCashFlow(statements.CashFlow)
	metrics["operatingCashFlow"] = metric("Operating Cash Flow", ocf, ocfTrend, AssessCashValue(ocf), false, 0)

	fcf, fcfTrend := FreeCashFlow(statements.CashFlow)
	metrics["freeCashFlow"] = metric("Free Cash Flow", fcf, fcfTrend, AssessCashValue(fcf), false, 0)

	continuity := AnalyzeFCFContinuity(statements.CashFlow)
	consistentStatus := "bad"
	if continuity.ConsistentPositive {
		consistentStatus = "good"
	}
	consistentValue := 0.0
	if continuity.ConsistentPositive {
		consistentValue = 1
	}
	metrics["fcfConsistentPositive"] = metric("FCF Consistent Positive", &consistentValue, TrendFlat, health(consistentStatus), false, 0)

	fcfTrendStatus := "neutral"
	switch continuity.Trend {
	case "increasing":
		fcfTrendStatus = "good"
	case "decreasing":
		fcfTrendStatus = "bad"
	}
	metrics["fcfTrend"] = metric("FCF Trend", nil, continuity.Trend, health(fcfTrendStatus), false, 0)
	metrics["latestFcf"] = metric("Latest FCF", continuity.LatestFCF, fcfTrend, AssessCashValue(continuity.LatestFCF), false, 0)

	debtToEquity, deTrend := DebtToEquity(statements.Balance)
	metrics["debtToEquity"] = metric("Debt to Equity", debtToEquity, deTrend, AssessDebtToEquity(debtToEquity), false, 2)

	currentRatio, crTrend := CurrentRatio(statements.Balance)
	metrics["currentRatio"] = metric("Current Ratio", currentRatio, crTrend, AssessCurrentRatio(currentRatio), false, 2)

	valuation := Valuation(quote, statements.Income)
	valuationHealth := AssessValuation(valuation.PERatio, valuation.PSRatio)
	metrics["peRatio"] = metric("PE Ratio", valuation.PERatio, TrendFlat, valuationHealth, false, 2)
	metrics["psRatio"] = metric("PS Ratio", valuation.PSRatio, TrendFlat, valuationHealth, false, 2)

	state := State{
		Profitability:    AssessProfitability(margins.NetProfitMargin, roe),
		Growth:           AssessGrowth(revenueGrowth.YoY, epsGrowth.YoY),
		Cashflow:         AssessCashflow(continuity, ocf),
		BalanceSheet:     AssessBalanceSheet(debtToEquity, currentRatio),
		ValuationContext: AssessValuationContext(valuation.PERatio, valuation.PSRatio),
	}

	return Report{
		Symbol:            symbol,
		Period:            period,
		Statements:        statements,
		Metrics:           metrics,
		State:             state,
		HistoricalRevenue: incomeHistory(statements.Income, func(s IncomeStatement) *float64 { return s.Revenue }),
		HistoricalEPS:     incomeHistory(statements.Income, func(s IncomeStatement) *float64 { return s.EPS }),
		HistoricalFCF:     cashHistory(statements.CashFlow),
	}
}

// 财报为降序，走势图需要升序，倒序遍历。
func incomeHistory(statements []IncomeStatement, field func(IncomeStatement) *float64) []HistoricalPoint {
	out := make([]HistoricalPoint, 0, len(statements))
	for i := len(statements) - 1; i >= 0; i-- {
		s := statements[i]
		v := field(s)
		if s.Date == "" || v == nil {
			continue
		}
		out = append(out, HistoricalPoint{Date: s.Date, Value: *v})
	}
	return out
}

func cashHistory(statements []CashFlowStatement) []HistoricalPoint {
	out := make([]HistoricalPoint, 0, len(statements))
	for i := len(statements) - 1; i >= 0; i-- {
		s := statements[i]
		if s.Date == "" || s.FreeCashFlow == nil {
			continue
		}
		out = append(out, HistoricalPoint{Date: s.Date, Value: *s.FreeCashFlow})
	}
	return out
}
