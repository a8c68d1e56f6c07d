package fundamental

import "testing"

func TestStatusColor(t *testing.T) {
	cases := []struct {
		status string
		want   string
	}{
		{"Healthy", colorGood},
		{"strong", colorGood},
		{"Moderate", colorNeutral},
		{"Stalling", colorNeutral},
		{"LossMaking", colorBad},
		{"Negative", colorBad},
		{"Unknown", colorUnknown},
		{"", colorUnknown},
	}
	for _, c := range cases {
		if got := StatusColor(c.status); got != c.want {
			t.Fatalf("StatusColor(%q) = %s, want %s", c.status, got, c.want)
		}
	}
}

func TestUnknownState(t *testing.T) {
	s := UnknownState()
	for name, h := range map[string]Health{
		"profitability": s.Profitability,
		"growth":        s.Growth,
		"cashflow":      s.Cashflow,
		"balanceSheet":  s.BalanceSheet,
		"valuation":     s.ValuationContext,
	} {
		if h.Status != "Unknown" || h.Color != colorUnknown {
			t.Fatalf("%s 应为 Unknown/%s, got %+v", name, colorUnknown, h)
		}
	}
}

func TestAssessProfitability(t *testing.T) {
	cases := []struct {
		margin *float64
		roe    *float64
		want   string
	}{
		{fptr(0.15), nil, "Healthy"},
		{fptr(0.05), nil, "Weak"},
		{fptr(-0.05), nil, "LossMaking"},
		{nil, fptr(0.20), "Healthy"},
		{nil, fptr(0.05), "Weak"},
		{nil, fptr(-0.05), "LossMaking"},
		{nil, nil, "Unknown"},
	}
	for _, c := range cases {
		if got := AssessProfitability(c.margin, c.roe); got.Status != c.want {
			t.Fatalf("AssessProfitability(%v, %v) = %s, want %s", c.margin, c.roe, got.Status, c.want)
		}
	}
}

func TestAssessGrowthPrefersEPS(t *testing.T) {
	// EPS 同比优先于营收同比。
	if got := AssessGrowth(fptr(0.01), fptr(0.20)); got.Status != "Strong" {
		t.Fatalf("应优先使用 EPS 同比, got %s", got.Status)
	}
	cases := []struct {
		yoy  float64
		want string
	}{
		{0.20, "Strong"},
		{0.10, "Moderate"},
		{0.02, "Stalling"},
		{-0.10, "Negative"},
	}
	for _, c := range cases {
		if got := AssessGrowth(nil, fptr(c.yoy)); got.Status != c.want {
			t.Fatalf("AssessGrowth(yoy=%f) = %s, want %s", c.yoy, got.Status, c.want)
		}
	}
	if got := AssessGrowth(nil, nil); got.Status != "Unknown" {
		t.Fatalf("无数据应为 Unknown, got %s", got.Status)
	}
}

func TestAssessCashflow(t *testing.T) {
	if got := AssessCashflow(FCFContinuity{ConsistentPositive: true}, nil); got.Status != "Positive" {
		t.Fatalf("持续为正应为 Positive, got %s", got.Status)
	}
	if got := AssessCashflow(FCFContinuity{Trend: "volatile"}, nil); got.Status != "Volatile" {
		t.Fatalf("波动应为 Volatile, got %s", got.Status)
	}
	if got := AssessCashflow(FCFContinuity{Trend: "unknown", LatestFCF: fptr(-5)}, nil); got.Status != "Negative" {
		t.Fatalf("最新 FCF 为负应为 Negative, got %s", got.Status)
	}
	if got := AssessCashflow(FCFContinuity{Trend: "unknown"}, fptr(-10)); got.Status != "Negative" {
		t.Fatalf("经营现金流为负应为 Negative, got %s", got.Status)
	}
	if got := AssessCashflow(FCFContinuity{Trend: "unknown"}, nil); got.Status != "Unknown" {
		t.Fatalf("无数据应为 Unknown, got %s", got.Status)
	}
}

func TestAssessDebtAndLiquidity(t *testing.T) {
	if got := AssessDebtToEquity(fptr(0.3)); got.Status != "good" {
		t.Fatalf("低杠杆应为 good, got %s", got.Status)
	}
	if got := AssessDebtToEquity(fptr(1.0)); got.Status != "neutral" {
		t.Fatalf("中等杠杆应为 neutral, got %s", got.Status)
	}
	if got := AssessDebtToEquity(fptr(2.0)); got.Status != "bad" {
		t.Fatalf("高杠杆应为 bad, got %s", got.Status)
	}
	if got := AssessCurrentRatio(fptr(2.5)); got.Status != "good" {
		t.Fatalf("高流动比率应为 good, got %s", got.Status)
	}
	if got := AssessCurrentRatio(fptr(0.8)); got.Status != "bad" {
		t.Fatalf("低流动比率应为 bad, got %s", got.Status)
	}
}

func TestAssessValuation(t *testing.T) {
	if got := AssessValuation(fptr(10), nil); got.Status != "good" {
		t.Fatalf("低 PE 应为 good, got %s", got.Status)
	}
	if got := AssessValuation(fptr(40), nil); got.Status != "bad" {
		t.Fatalf("高 PE 应为 bad, got %s", got.Status)
	}
	if got := AssessValuation(fptr(20), fptr(3)); got.Status != "neutral" {
		t.Fatalf("中间区域应为 neutral, got %s", got.Status)
	}
	if got := AssessValuation(nil, nil); got.Status != "unknown" {
		t.Fatalf("无数据应为 unknown, got %s", got.Status)
	}
}
