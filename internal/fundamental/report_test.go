package fundamental

import "testing"

func sampleStatements() Statements {
	return Statements{
		Income: []IncomeStatement{
			{Date: "2026-06-30", Period: "Q2", Revenue: fptr(120), GrossProfit: fptr(60), OperatingIncome: fptr(40), NetIncome: fptr(30), EPS: fptr(1.2)},
			{Date: "2026-03-31", Period: "Q1", Revenue: fptr(100), GrossProfit: fptr(50), OperatingIncome: fptr(30), NetIncome: fptr(25), EPS: fptr(1.0)},
		},
		Balance: []BalanceSheet{
			{Date: "2026-06-30", TotalEquity: fptr(200), TotalCurrentAssets: fptr(150), TotalCurrentLiabilities: fptr(60), TotalDebt: fptr(80)},
			{Date: "2026-03-31", TotalEquity: fptr(180), TotalCurrentAssets: fptr(140), TotalCurrentLiabilities: fptr(70), TotalDebt: fptr(90)},
		},
		CashFlow: []CashFlowStatement{
			{Date: "2026-06-30", OperatingCashFlow: fptr(35), FreeCashFlow: fptr(25)},
			{Date: "2026-03-31", OperatingCashFlow: fptr(30), FreeCashFlow: fptr(20)},
		},
	}
}

func TestMetricDisplay(t *testing.T) {
	item := metric("Net Profit Margin", fptr(0.25), TrendUp, health("good"), true, 2)
	if item.Display != "25.00%" {
		t.Fatalf("百分比展示不符: %s", item.Display)
	}
	if item.Color != colorGood {
		t.Fatalf("颜色应跟随状态: %s", item.Color)
	}

	item = metric("Current Ratio", fptr(2.5), "", health("good"), false, 2)
	if item.Display != "2.50" {
		t.Fatalf("数值展示不符: %s", item.Display)
	}
	if item.Trend != TrendFlat {
		t.Fatalf("空走势应回退为持平: %s", item.Trend)
	}

	item = metric("PE Ratio", nil, TrendFlat, health("unknown"), false, 2)
	if item.Display != "N/A" {
		t.Fatalf("缺失值应展示 N/A: %s", item.Display)
	}
}

func TestBuildReport(t *testing.T) {
	quote := &Quote{Symbol: "AAPL", Price: fptr(180), MarketCap: fptr(2800), PE: fptr(28), EPS: fptr(6.4)}
	report := BuildReport("AAPL", "quarter", sampleStatements(), quote)

	if report.Symbol != "AAPL" || report.Period != "quarter" {
		t.Fatalf("元信息不符: %s/%s", report.Symbol, report.Period)
	}
	// 全部 17 项指标都应存在。
	keys := []string{
		"revenueGrowthQoQ", "revenueGrowthYoY", "epsGrowthQoQ", "epsGrowthYoY",
		"grossProfitMargin", "operatingProfitMargin", "netProfitMargin", "roe",
		"operatingCashFlow", "freeCashFlow", "fcfConsistentPositive", "fcfTrend",
		"latestFcf", "debtToEquity", "currentRatio", "peRatio", "psRatio",
	}
	for _, k := range keys {
		if _, ok := report.Metrics[k]; !ok {
			t.Fatalf("缺少指标 %s", k)
		}
	}

	// 净利率 25% → 盈利 Healthy；产权比率 0.4 → 资产负债表 Strong。
	if report.State.Profitability.Status != "Healthy" {
		t.Fatalf("盈利维度不符: %s", report.State.Profitability.Status)
	}
	if report.State.BalanceSheet.Status != "Strong" {
		t.Fatalf("资产负债表维度不符: %s", report.State.BalanceSheet.Status)
	}
	if report.State.Cashflow.Status != "Positive" {
		t.Fatalf("现金流维度不符: %s", report.State.Cashflow.Status)
	}
	// 只有两期数据，没有同比 → 成长性 Unknown。
	if report.State.Growth.Status != "Unknown" {
		t.Fatalf("成长性维度不符: %s", report.State.Growth.Status)
	}

	// 走势序列升序且跳过缺失。
	if len(report.HistoricalEPS) != 2 || report.HistoricalEPS[0].Date != "2026-03-31" {
		t.Fatalf("EPS 历史不符: %+v", report.HistoricalEPS)
	}
	if len(report.HistoricalFCF) != 2 || report.HistoricalFCF[1].Value != 25 {
		t.Fatalf("FCF 历史不符: %+v", report.HistoricalFCF)
	}
}

func TestBuildReportWithoutQuote(t *testing.T) {
	report := BuildReport("AAPL", "quarter", sampleStatements(), nil)
	if report.Metrics["peRatio"].Display != "N/A" {
		t.Fatalf("无报价时 PE 应为 N/A: %s", report.Metrics["peRatio"].Display)
	}
	if report.State.ValuationContext.Status != "Unknown" {
		t.Fatalf("无报价时估值语境应为 Unknown: %s", report.State.ValuationContext.Status)
	}
	// 其余维度不受报价影响。
	if report.State.Profitability.Status != "Healthy" {
		t.Fatalf("盈利维度不应受报价影响: %s", report.State.Profitability.Status)
	}
}

func TestHistorySkipsMissingValues(t *testing.T) {
	income := []IncomeStatement{
		{Date: "2026-06-30", Revenue: fptr(120)},
		{Date: "", Revenue: fptr(110)},
		{Date: "2025-12-31", Revenue: nil},
		{Date: "2025-09-30", Revenue: fptr(100)},
	}
	points := incomeHistory(income, func(s IncomeStatement) *float64 { return s.Revenue })
	if len(points) != 2 {
		t.Fatalf("应跳过缺失期, got %d", len(points))
	}
	if points[0].Date != "2025-09-30" || points[1].Date != "2026-06-30" {
		t.Fatalf("历史序列应升序: %+v", points)
	}
}
