package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"stocklens/internal/cache"
	"stocklens/internal/fundamental"
	"stocklens/internal/logger"
)

// FundamentalFetcher 抽象 FMP 客户端，便于测试替换。
type FundamentalFetcher interface {
	FetchIncomeStatements(ctx context.Context, symbol string, limit int, period string) ([]fundamental.IncomeStatement, error)
	FetchBalanceSheets(ctx context.Context, symbol string, limit int, period string) ([]fundamental.BalanceSheet, error)
	FetchCashFlows(ctx context.Context, symbol string, limit int, period string) ([]fundamental.CashFlowStatement, error)
	FetchQuote(ctx context.Context, symbol string) (*fundamental.Quote, error)
}

// StatementStore 抽象财报与报价的持久层；可以为 nil（不落库）。
type StatementStore interface {
	SaveStatements(ctx context.Context, symbol, period, kind string, payload []byte) error
	LoadStatements(ctx context.Context, symbol, period, kind string, maxAge time.Duration) ([]byte, bool, error)
	SaveQuote(ctx context.Context, quote fundamental.Quote) error
	LoadQuote(ctx context.Context, symbol string, maxAge time.Duration) (*fundamental.Quote, error)
}

// 财报按日更新即可，报价短一些。
const (
	statementMaxAge = 24 * time.Hour
	quoteMaxAge     = time.Hour
)

const (
	kindIncome   = "income"
	kindBalance  = "balance"
	kindCashFlow = "cashflow"
)

// FundamentalService 组装基本面报告：数据库优先，缺数据再打 FMP。
type FundamentalService struct {
	fetcher FundamentalFetcher
	store   StatementStore
	cache   cache.Cache
}

func NewFundamentalService(fetcher FundamentalFetcher, store StatementStore, c cache.Cache) *FundamentalService {
	return &FundamentalService{fetcher: fetcher, store: store, cache: c}
}

// GetReport 返回一个 symbol 的完整基本面报告。
func (s *FundamentalService) GetReport(ctx context.Context, symbol, period string, limit int) (fundamental.Report, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return fundamental.Report{}, fmt.Errorf("symbol 不能为空")
	}
	if period == "" {
		period = "quarter"
	}
	if limit <= 0 {
		limit = 4
	}
	key := cache.FundamentalKey(symbol, period, limit)
	var cached fundamental.Report
	if hit, _ := s.cache.GetJSON(ctx, key, &cached); hit {
		logger.Debugf("[fundamental] 缓存命中 %s (%s, %d)", symbol, period, limit)
		return cached, nil
	}

	statements, err := s.loadStatements(ctx, symbol, period, limit)
	if err != nil {
		return fundamental.Report{}, err
	}
	if len(statements.Income) == 0 && len(statements.Balance) == 0 && len(statements.CashFlow) == 0 {
		return fundamental.Report{}, fmt.Errorf("没有找到 %s 的基本面数据", symbol)
	}

	quote := s.loadQuote(ctx, symbol)
	report := fundamental.BuildReport(symbol, period, statements, quote)

	if err := s.cache.SetJSON(ctx, key, report, cache.TTLFundamental); err != nil {
		logger.Warnf("[fundamental] 缓存失败: %v", err)
	}
	return report, nil
}

// loadStatements 先查数据库，不完整时并行拉 FMP 三张表并落库。
func (s *FundamentalService) loadStatements(ctx context.Context, symbol, period string, limit int) (fundamental.Statements, error) {
	var out fundamental.Statements
	if s.fromStore(ctx, symbol, period, &out) {
		logger.Debugf("[fundamental] %s 使用数据库财报", symbol)
		return out, nil
	}

	logger.Infof("[fundamental] %s 数据库不完整，从 FMP 拉取", symbol)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		income, err := s.fetcher.FetchIncomeStatements(gctx, symbol, limit, period)
		out.Income = income
		return err
	})
	g.Go(func() error {
		balance, err := s.fetcher.FetchBalanceSheets(gctx, symbol, limit, period)
		out.Balance = balance
		return err
	})
	g.Go(func() error {
		cashflow, err := s.fetcher.FetchCashFlows(gctx, symbol, limit, period)
		out.CashFlow = cashflow
		return err
	})
	if err := g.Wait(); err != nil {
		return fundamental.Statements{}, fmt.Errorf("拉取 %s 财报失败: %w", symbol, err)
	}

	s.toStore(ctx, symbol, period, out)
	return out, nil
}

func (s *FundamentalService) fromStore(ctx context.Context, symbol, period string, out *fundamental.Statements) bool {
	if s.store == nil {
		return false
	}
	income, ok1, _ := s.store.LoadStatements(ctx, symbol, period, kindIncome, statementMaxAge)
	balance, ok2, _ := s.store.LoadStatements(ctx, symbol, period, kindBalance, statementMaxAge)
	cashflow, ok3, _ := s.store.LoadStatements(ctx, symbol, period, kindCashFlow, statementMaxAge)
	if !ok1 || !ok2 || !ok3 {
		return false
	}
	if json.Unmarshal(income, &out.Income) != nil ||
		json.Unmarshal(balance, &out.Balance) != nil ||
		json.Unmarshal(cashflow, &out.CashFlow) != nil {
		logger.Warnf("[fundamental] %s 数据库财报解码失败，重新拉取", symbol)
		return false
	}
	return len(out.Income) > 0 && len(out.Balance) > 0 && len(out.CashFlow) > 0
}

func (s *FundamentalService) toStore(ctx context.Context, symbol, period string, statements fundamental.Statements) {
	if s.store == nil {
		return
	}
	save := func(kind string, v any) {
		payload, err := json.Marshal(v)
		if err != nil {
			return
		}
		if err := s.store.SaveStatements(ctx, symbol, period, kind, payload); err != nil {
			logger.Warnf("[fundamental] 落库 %s/%s 失败: %v", symbol, kind, err)
		}
	}
	save(kindIncome, statements.Income)
	save(kindBalance, statements.Balance)
	save(kindCashFlow, statements.CashFlow)
}

// loadQuote 报价失败只降级估值指标，不阻断报告。
func (s *FundamentalService) loadQuote(ctx context.Context, symbol string) *fundamental.Quote {
	if s.store != nil {
		if quote, err := s.store.LoadQuote(ctx, symbol, quoteMaxAge); err == nil && quote != nil {
			return quote
		}
	}
	quote, err := s.fetcher.FetchQuote(ctx, symbol)
	if err != nil {
		logger.Warnf("[fundamental] 获取 %s 报价失败: %v", symbol, err)
		return nil
	}
	if quote != nil && s.store != nil {
		if err := s.store.SaveQuote(ctx, *quote); err != nil {
			logger.Warnf("[fundamental] 落库报价失败: %v", err)
		}
	}
	return quote
}
