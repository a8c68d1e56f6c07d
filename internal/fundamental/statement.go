package fundamental

// 财报数据统一按日期降序排列（最新一期在前），与供应商返回一致；
// 所有计算函数都依赖这个顺序。

// IncomeStatement 利润表（单期）。
type IncomeStatement struct {
	Date            string   `json:"date"`
	Period          string   `json:"period"`
	Revenue         *float64 `json:"revenue"`
	GrossProfit     *float64 `json:"grossProfit"`
	OperatingIncome *float64 `json:"operatingIncome"`
	NetIncome       *float64 `json:"netIncome"`
	EPS             *float64 `json:"eps"`
}

// BalanceSheet 资产负债表（单期）。
type BalanceSheet struct {
	Date                    string   `json:"date"`
	Period                  string   `json:"period"`
	TotalEquity             *float64 `json:"totalEquity"`
	TotalCurrentAssets      *float64 `json:"totalCurrentAssets"`
	TotalCurrentLiabilities *float64 `json:"totalCurrentLiabilities"`
	TotalDebt               *float64 `json:"totalDebt"`
}

// CashFlowStatement 现金流量表（单期）。
type CashFlowStatement struct {
	Date              string   `json:"date"`
	Period            string   `json:"period"`
	OperatingCashFlow *float64 `json:"netCashProvidedByOperatingActivities"`
	FreeCashFlow      *float64 `json:"freeCashFlow"`
}

// Quote 实时报价快照。
type Quote struct {
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Price     *float64 `json:"price"`
	MarketCap *float64 `json:"marketCap"`
	PE        *float64 `json:"pe"`
	EPS       *float64 `json:"eps"`
}

// Statements 汇总一个 symbol 的三张财报。
type Statements struct {
	Income   []IncomeStatement   `json:"incomeStatements"`
	Balance  []BalanceSheet      `json:"balanceSheets"`
	CashFlow []CashFlowStatement `json:"cashFlowStatements"`
}
