package stock

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stocklens/internal/logger"
	"stocklens/internal/service"
)

// Router 提供 /api/stock/:symbol 下的行情、指标、基本面与状态接口。
type Router struct {
	prices      *service.PriceService
	technical   *service.TechnicalService
	fundamental *service.FundamentalService
	state       *service.StateService
}

func NewRouter(prices *service.PriceService, technical *service.TechnicalService, fund *service.FundamentalService, state *service.StateService) *Router {
	return &Router{prices: prices, technical: technical, fundamental: fund, state: state}
}

func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/:symbol/price", r.handlePrice)
	group.GET("/:symbol/macd", r.handleMACD)
	group.GET("/:symbol/rsi", r.handleRSI)
	group.GET("/:symbol/bollinger", r.handleBollinger)
	group.GET("/:symbol/fundamental", r.handleFundamental)
	group.GET("/:symbol/state", r.handleState)
	group.GET("/:symbol/chart", r.handleChart)
}

func (r *Router) handlePrice(c *gin.Context) {
	symbol := c.Param("symbol")
	interval := c.DefaultQuery("interval", "1day")
	history, err := r.prices.GetPrice(c.Request.Context(), symbol, interval)
	if err != nil {
		logger.Errorf("[stock-api] 获取 %s 行情失败: %v", symbol, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, history)
}

func (r *Router) handleMACD(c *gin.Context) {
	symbol := c.Param("symbol")
	interval := c.DefaultQuery("interval", "1day")
	payload, err := r.technical.MACD(c.Request.Context(), symbol, interval)
	if err != nil {
		logger.Errorf("[stock-api] 计算 %s MACD 失败: %v", symbol, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (r *Router) handleRSI(c *gin.Context) {
	symbol := c.Param("symbol")
	interval := c.DefaultQuery("interval", "1day")
	period, err := strconv.Atoi(c.DefaultQuery("period", "14"))
	if err != nil || period <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period 必须是正整数"})
		return
	}
	payload, err := r.technical.RSI(c.Request.Context(), symbol, interval, period)
	if err != nil {
		logger.Errorf("[stock-api] 计算 %s RSI 失败: %v", symbol, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (r *Router) handleBollinger(c *gin.Context) {
	symbol := c.Param("symbol")
	interval := c.DefaultQuery("interval", "1day")
	period, err := strconv.Atoi(c.DefaultQuery("period", "20"))
	if err != nil || period <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period 必须是正整数"})
		return
	}
	numStd, err := strconv.ParseFloat(c.DefaultQuery("num_std", "2"), 64)
	if err != nil || numStd <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "num_std 必须是正数"})
		return
	}
	payload, err := r.technical.Bollinger(c.Request.Context(), symbol, interval, period, numStd)
	if err != nil {
		logger.Errorf("[stock-api] 计算 %s 布林带失败: %v", symbol, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (r *Router) handleFundamental(c *gin.Context) {
	symbol := c.Param("symbol")
	period := c.DefaultQuery("period", "quarter")
	if period != "quarter" && period != "annual" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period 只支持 quarter/annual"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "4"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit 必须是正整数"})
		return
	}
	report, err := r.fundamental.GetReport(c.Request.Context(), symbol, period, limit)
	if err != nil {
		logger.Errorf("[stock-api] 获取 %s 基本面失败: %v", symbol, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (r *Router) handleState(c *gin.Context) {
	symbol := c.Param("symbol")
	timeframe := c.DefaultQuery("timeframe", "1day")
	result, err := r.state.GetState(c.Request.Context(), symbol, timeframe)
	if err != nil {
		logger.Errorf("[stock-api] 计算 %s 状态失败: %v", symbol, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
