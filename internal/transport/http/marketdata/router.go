package marketdata

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocklens/internal/logger"
	"stocklens/internal/service"
)

// Router 提供大盘 ETF 摘要与符号搜索接口。
type Router struct {
	prices *service.PriceService
}

func NewRouter(prices *service.PriceService) *Router {
	return &Router{prices: prices}
}

func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/market/etfs", r.handleETFs)
	group.GET("/search", r.handleSearch)
}

func (r *Router) handleETFs(c *gin.Context) {
	result, err := r.prices.MarketETFs(c.Request.Context())
	if err != nil {
		logger.Errorf("[market-api] 获取 ETF 摘要失败: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (r *Router) handleSearch(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword 必填"})
		return
	}
	matches, err := r.prices.Search(c.Request.Context(), keyword)
	if err != nil {
		logger.Errorf("[market-api] 搜索 %q 失败: %v", keyword, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": matches})
}
