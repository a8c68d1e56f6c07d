package market

import "context"

// Meta 描述一次行情抓取的来源信息。
type Meta struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Currency string `json:"currency,omitempty"`
	Exchange string `json:"exchange,omitempty"`
	Source   string `json:"source"`
}

// History 是一次历史行情抓取的结果，Data 为按时间升序的平行数组。
type History struct {
	Meta Meta   `json:"meta"`
	Data Series `json:"data"`
}

// SymbolMatch 是符号搜索的单条结果。
type SymbolMatch struct {
	Symbol     string `json:"symbol"`
	Instrument string `json:"instrument_name"`
	Exchange   string `json:"exchange"`
	Currency   string `json:"currency"`
}

// Source 统一对接外部行情供应商。
type Source interface {
	// FetchHistory 拉取最近 limit 根 K 线并按时间升序返回。
	FetchHistory(ctx context.Context, symbol, interval string, limit int) (History, error)
	// SearchSymbols 按关键字搜索符号；不支持搜索的 source 返回空结果。
	SearchSymbols(ctx context.Context, keyword string) ([]SymbolMatch, error)
	// Name 返回 source 标识，写入 History.Meta.Source。
	Name() string
}
