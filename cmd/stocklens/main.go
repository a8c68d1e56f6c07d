package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"

	"stocklens/internal/cache"
	"stocklens/internal/config"
	"stocklens/internal/gateway/binance"
	"stocklens/internal/gateway/database"
	"stocklens/internal/gateway/fmp"
	"stocklens/internal/gateway/twelvedata"
	"stocklens/internal/logger"
	"stocklens/internal/market"
	"stocklens/internal/service"
	"stocklens/internal/store"
	transport "stocklens/internal/transport/http"
)

func main() {
	var (
		configPath string
		analyze    string
		interval   string
		source     string
	)
	flag.StringVar(&configPath, "config", "", "配置文件路径（TOML）")
	flag.StringVar(&analyze, "analyze", "", "一次性分析指定 symbol 并输出表格，不启动服务")
	flag.StringVar(&interval, "interval", "1day", "分析使用的时间区间")
	flag.StringVar(&source, "source", "twelve_data", "行情来源: twelve_data / binance")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level)

	app, cleanup, err := buildApp(cfg, source)
	if err != nil {
		logger.Errorf("初始化失败: %v", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if analyze != "" {
		if err := runAnalyze(ctx, app, analyze, interval); err != nil {
			logger.Errorf("分析 %s 失败: %v", analyze, err)
			os.Exit(1)
		}
		return
	}

	server, err := transport.NewServer(transport.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		Prices:       app.prices,
		Technical:    app.technical,
		Fundamental:  app.fundamental,
		State:        app.state,
	})
	if err != nil {
		logger.Errorf("初始化 HTTP 服务失败: %v", err)
		os.Exit(1)
	}
	logger.Infof("HTTP 服务监听 %s", cfg.Server.Addr)
	if err := server.Start(ctx); err != nil {
		logger.Errorf("HTTP 服务异常退出: %v", err)
		os.Exit(1)
	}
}

type app struct {
	prices      *service.PriceService
	technical   *service.TechnicalService
	fundamental *service.FundamentalService
	state       *service.StateService
}

func buildApp(cfg *config.Config, sourceName string) (*app, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var dataCache cache.Cache
	redisCache := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(context.Background()); err != nil {
		logger.Warnf("redis 不可用（%v），使用内存缓存", err)
		dataCache = cache.NewMemory()
	} else {
		dataCache = redisCache
		closers = append(closers, func() { redisCache.Close() })
	}

	var priceStore store.PriceStore
	var statementStore service.StatementStore
	if cfg.Database.Path != "" {
		db, err := database.Open(cfg.Database.Path)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { db.Close() })
		priceStore = db
		statementStore = db
	} else {
		logger.Warnf("未配置数据库路径，历史数据只存内存")
		priceStore = store.NewMemoryPriceStore(0)
	}

	var source market.Source
	switch strings.ToLower(sourceName) {
	case "binance":
		source = binance.New(binance.Config{
			APIKey:    cfg.Binance.APIKey,
			APISecret: cfg.Binance.Secret,
		})
	default:
		td, err := twelvedata.New(twelvedata.Config{
			APIKey:     cfg.TwelveData.APIKey,
			BaseURL:    cfg.TwelveData.BaseURL,
			OutputSize: cfg.TwelveData.OutputSize,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		source = td
	}

	fmpClient, err := fmp.New(fmp.Config{
		APIKey:  cfg.FMP.APIKey,
		BaseURL: cfg.FMP.BaseURL,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	prices := service.NewPriceService(source, priceStore, dataCache, cfg.TwelveData.OutputSize, cfg.Market.ETFs)
	technical := service.NewTechnicalService(prices, dataCache)
	fundamental := service.NewFundamentalService(fmpClient, statementStore, dataCache)
	state := service.NewStateService(technical, fundamental, prices)

	return &app{
		prices:      prices,
		technical:   technical,
		fundamental: fundamental,
		state:       state,
	}, cleanup, nil
}

// runAnalyze 一次性输出 symbol 的技术面与基本面概览表格。
func runAnalyze(ctx context.Context, app *app, symbol, interval string) error {
	result, err := app.state.GetState(ctx, symbol, interval)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%s (%s)", strings.ToUpper(symbol), interval))
	t.AppendHeader(table.Row{"维度", "状态"})
	t.AppendRows([]table.Row{
		{"总体趋势", result.Technical.OverallTrend},
		{"动量", result.Technical.MomentumAssessment},
		{"波动率", result.Technical.VolatilityAssessment},
		{"MACD", result.Technical.MACDStatus},
		{"RSI", result.Technical.RSIStatus},
		{"布林带", result.Technical.BollingerStatus},
		{"背离", strings.Join(result.Technical.Divergences, ", ")},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"盈利能力", result.Fundamental.Profitability.Status},
		{"成长性", result.Fundamental.Growth.Status},
		{"现金流", result.Fundamental.Cashflow.Status},
		{"资产负债", result.Fundamental.BalanceSheet.Status},
		{"估值", result.Fundamental.ValuationContext.Status},
	})
	t.Render()

	if result.Overview != nil {
		o := table.NewWriter()
		o.SetOutputMirror(os.Stdout)
		o.SetStyle(table.StyleLight)
		o.SetTitle("指标快照")
		o.AppendHeader(table.Row{"指标", "最新值", "状态", "说明"})
		for _, key := range []string{"ema_fast", "ema_mid", "ema_slow", "ema_long", "rsi", "macd", "roc", "stoch_k", "williams_r", "atr", "obv"} {
			v, ok := result.Overview.Values[key]
			if !ok {
				continue
			}
			o.AppendRow(table.Row{key, fmt.Sprintf("%.4f", v.Latest), v.State, v.Note})
		}
		o.Render()
	}
	return nil
}
