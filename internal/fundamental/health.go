package fundamental

import "strings"

// 健康度只有四档显示色：好/中/差/未知。
const (
	colorGood    = "#10B981"
	colorNeutral = "#F59E0B"
	colorBad     = "#EF4444"
	colorUnknown = "#9CA3AF"
)

// StatusColor 把状态词映射为显示色。
func StatusColor(status string) string {
	switch strings.ToLower(status) {
	case "healthy", "strong", "positive", "cheap", "good":
		return colorGood
	case "weak", "volatile", "stalling", "moderate", "fair", "neutral":
		return colorNeutral
	case "lossmaking", "negative", "stressed", "expensive", "bad":
		return colorBad
	default:
		return colorUnknown
	}
}

// Health 是单项指标的体检结果。
type Health struct {
	Status string `json:"status"`
	Color  string `json:"color"`
}

func health(status string) Health {
	return Health{Status: status, Color: StatusColor(status)}
}

// UnknownState 是五个维度全部未知的兜底状态。
func UnknownState() State {
	unknown := health("Unknown")
	return State{
		Profitability:    unknown,
		Growth:           unknown,
		Cashflow:         unknown,
		BalanceSheet:     unknown,
		ValuationContext: unknown,
	}
}

// AssessMargin 利润率：>20% 好，5–20% 中，其余差。
func AssessMargin(margin *float64) Health {
	switch {
	case margin == nil:
		return health("unknown")
	case *margin > 0.20:
		return health("good")
	case *margin > 0.05:
		return health("neutral")
	default:
		return health("bad")
	}
}

// AssessROE ROE：>15% 好，正值中，其余差。
func AssessROE(roe *float64) Health {
	switch {
	case roe == nil:
		return health("unknown")
	case *roe > 0.15:
		return health("good")
	case *roe > 0:
		return health("neutral")
	default:
		return health("bad")
	}
}

// AssessCashValue 现金流类指标只看正负。
func AssessCashValue(value *float64) Health {
	switch {
	case value == nil:
		return health("unknown")
	case *value > 0:
		return health("good")
	default:
		return health("bad")
	}
}

// AssessDebtToEquity 产权比率：<0.5 好，<1.5 中，其余差。
func AssessDebtToEquity(ratio *float64) Health {
	switch {
	case ratio == nil:
		return health("unknown")
	case *ratio < 0.5:
		return health("good")
	case *ratio < 1.5:
		return health("neutral")
	default:
		return health("bad")
	}
}

// AssessCurrentRatio 流动比率：>2 好，>1 中，其余差。
func AssessCurrentRatio(ratio *float64) Health {
	switch {
	case ratio == nil:
		return health("unknown")
	case *ratio > 2.0:
		return health("good")
	case *ratio > 1.0:
		return health("neutral")
	default:
		return health("bad")
	}
}

// AssessValuation 粗略估值：任一指标显著偏低视作便宜，显著偏高视作贵。
func AssessValuation(pe, ps *float64) Health {
	if pe == nil && ps == nil {
		return health("unknown")
	}
	if (pe != nil && *pe < 15) || (ps != nil && *ps < 1) {
		return health("good")
	}
	if (pe != nil && *pe > 30) || (ps != nil && *ps > 5) {
		return health("bad")
	}
	return health("neutral")
}

// AssessProfitability 盈利能力：优先看净利率，缺失时退回 ROE。
func AssessProfitability(netProfitMargin, roe *float64) Health {
	switch {
	case netProfitMargin != nil:
		switch {
		case *netProfitMargin > 0.10:
			return health("Healthy")
		case *netProfitMargin > 0:
			return health("Weak")
		default:
			return health("LossMaking")
		}
	case roe != nil:
		switch {
		case *roe > 0.15:
			return health("Healthy")
		case *roe > 0:
			return health("Weak")
		default:
			return health("LossMaking")
		}
	default:
		return health("Unknown")
	}
}

// AssessGrowth 成长性：优先看 EPS 同比，缺失时退回营收同比。
func AssessGrowth(yoyRevenue, yoyEPS *float64) Health {
	pick := yoyEPS
	if pick == nil {
		pick = yoyRevenue
	}
	switch {
	case pick == nil:
		return health("Unknown")
	case *pick > 0.15:
		return health("Strong")
	case *pick > 0.05:
		return health("Moderate")
	case *pick > 0:
		return health("Stalling")
	default:
		return health("Negative")
	}
}

// AssessCashflow 现金流：持续为正最优，波动其次，为负最差。
func AssessCashflow(continuity FCFContinuity, operatingCashFlow *float64) Health {
	switch {
	case continuity.ConsistentPositive:
		return health("Positive")
	case continuity.Trend == "volatile":
		return health("Volatile")
	case continuity.LatestFCF != nil && *continuity.LatestFCF < 0:
		return health("Negative")
	case operatingCashFlow != nil && *operatingCashFlow < 0:
		return health("Negative")
	default:
		return health("Unknown")
	}
}

// AssessBalanceSheet 资产负债表：优先看产权比率，缺失时退回流动比率。
func AssessBalanceSheet(debtToEquity, currentRatio *float64) Health {
	switch {
	case debtToEquity != nil:
		switch {
		case *debtToEquity < 0.5:
			return health("Strong")
		case *debtToEquity < 1.5:
			return health("Moderate")
		default:
			return health("Stressed")
		}
	case currentRatio != nil:
		switch {
		case *currentRatio > 2.0:
			return health("Strong")
		case *currentRatio > 1.0:
			return health("Moderate")
		default:
			return health("Stressed")
		}
	default:
		return health("Unknown")
	}
}

// AssessValuationContext 估值语境：显著偏高为贵，显著偏低为便宜。
func AssessValuationContext(pe, ps *float64) Health {
	if pe == nil && ps == nil {
		return health("Unknown")
	}
	if (pe != nil && *pe > 30) || (ps != nil && *ps > 5) {
		return health("Expensive")
	}
	if (pe != nil && *pe < 10) || (ps != nil && *ps < 1) {
		return health("Cheap")
	}
	return health("Fair")
}
