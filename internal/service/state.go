package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"stocklens/internal/analysis/indicator"
	"stocklens/internal/analysis/overview"
	"stocklens/internal/analysis/state"
	"stocklens/internal/fundamental"
	"stocklens/internal/logger"
)

// StockState 是技术面 + 基本面的综合状态载荷。
type StockState struct {
	Symbol      string               `json:"symbol"`
	Timeframe   string               `json:"timeframe"`
	Technical   state.TechnicalState `json:"technical_state"`
	Fundamental fundamental.State    `json:"fundamental_state"`
	Overview    *overview.Snapshot   `json:"overview,omitempty"`
}

// StateService 聚合三个指标引擎、指标快照与基本面评估。
type StateService struct {
	technical   *TechnicalService
	fundamental *FundamentalService
	prices      *PriceService
}

func NewStateService(technical *TechnicalService, fund *FundamentalService, prices *PriceService) *StateService {
	return &StateService{technical: technical, fundamental: fund, prices: prices}
}

// GetState 并行拉取三个引擎的载荷，再套技术面规则与基本面评估。
func (s *StateService) GetState(ctx context.Context, symbol, timeframe string) (StockState, error) {
	if timeframe == "" {
		timeframe = "1day"
	}

	var (
		macdPayload      MACDPayload
		rsiPayload       RSIPayload
		bollingerPayload BollingerPayload
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		macdPayload, err = s.technical.MACD(gctx, symbol, timeframe)
		return err
	})
	g.Go(func() error {
		var err error
		rsiPayload, err = s.technical.RSI(gctx, symbol, timeframe, 0)
		return err
	})
	g.Go(func() error {
		var err error
		bollingerPayload, err = s.technical.Bollinger(gctx, symbol, timeframe, 0, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return StockState{}, fmt.Errorf("计算 %s 技术面状态失败: %w", symbol, err)
	}

	macdAssessment := state.AssessMACD(
		macdResultFromPayload(macdPayload),
		macdPayload.CrossoverMarkers,
		macdPayload.DivergenceMarkers,
	)
	rsiAssessment := state.AssessRSI(rsiResultFromPayload(rsiPayload), rsiPayload.Divergences)
	bollingerAssessment := state.AssessBollinger(
		bollingerResultFromPayload(bollingerPayload),
		bollingerPayload.BandwidthData,
		bollingerPayload.SqueezeMarkers,
		bollingerPayload.WalkingTheBandsMarkers,
	)
	technical := state.Combine(macdAssessment, rsiAssessment, bollingerAssessment)

	// 基本面失败降级为 Unknown，不阻断状态接口。
	fundState := fundamental.UnknownState()
	if report, err := s.fundamental.GetReport(ctx, symbol, "quarter", 4); err != nil {
		logger.Warnf("[state] 获取 %s 基本面失败: %v", symbol, err)
	} else {
		fundState = report.State
	}

	result := StockState{
		Symbol:      symbol,
		Timeframe:   timeframe,
		Technical:   technical,
		Fundamental: fundState,
	}

	// 指标快照失败同样只降级。
	if history, err := s.prices.GetPrice(ctx, symbol, timeframe); err == nil {
		snap, err := overview.Compute(history.Data, overview.Settings{Symbol: symbol, Interval: timeframe})
		if err != nil {
			logger.Warnf("[state] 计算 %s 指标快照失败: %v", symbol, err)
		} else {
			result.Overview = &snap
		}
	}
	return result, nil
}

// 状态规则消费 indicator 层的结果结构，从服务载荷还原。
func macdResultFromPayload(p MACDPayload) indicator.MACDResult {
	return indicator.MACDResult{
		MACDLine:   p.MACDLine,
		SignalLine: p.SignalLine,
		Timestamps: p.Timestamps,
		Status:     p.Status,
		Message:    p.Message,
	}
}

func rsiResultFromPayload(p RSIPayload) indicator.RSIResult {
	return indicator.RSIResult{Values: p.RSI, Status: p.Status, Message: p.Message}
}

func bollingerResultFromPayload(p BollingerPayload) indicator.BollingerResult {
	return indicator.BollingerResult{
		Middle:  p.Bollinger.Middle,
		Upper:   p.Bollinger.Upper,
		Lower:   p.Bollinger.Lower,
		Status:  p.Status,
		Message: p.Message,
	}
}
