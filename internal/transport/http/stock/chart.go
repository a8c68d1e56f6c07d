package stock

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"stocklens/internal/logger"
	"stocklens/internal/market"
)

// handleChart 渲染 K 线 + 布林带的 HTML 图表。
func (r *Router) handleChart(c *gin.Context) {
	symbol := c.Param("symbol")
	interval := c.DefaultQuery("interval", "1day")

	history, err := r.prices.GetPrice(c.Request.Context(), symbol, interval)
	if err != nil {
		logger.Errorf("[stock-api] 获取 %s 图表数据失败: %v", symbol, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	bollinger, err := r.technical.Bollinger(c.Request.Context(), symbol, interval, 0, 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: symbol + " " + interval}),
		charts.WithXAxisOpts(opts.XAxis{SplitNumber: 20}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 50, End: 100}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	dates := make([]string, history.Data.Len())
	klineData := make([]opts.KlineData, history.Data.Len())
	for i := 0; i < history.Data.Len(); i++ {
		dates[i] = market.FormatTimestamp(history.Data.Timestamps[i])
		// go-echarts 的 K 线点顺序为 open/close/low/high。
		klineData[i] = opts.KlineData{Value: [4]float64{
			history.Data.Open[i],
			history.Data.Close[i],
			history.Data.Low[i],
			history.Data.High[i],
		}}
	}
	kline.SetXAxis(dates).AddSeries("K线", klineData)

	if bollinger.Status == "success" && len(bollinger.Bollinger.Timestamps) > 0 {
		bandDates := make([]string, len(bollinger.Bollinger.Timestamps))
		for i, ts := range bollinger.Bollinger.Timestamps {
			bandDates[i] = market.FormatTimestamp(ts)
		}
		line := charts.NewLine()
		line.SetXAxis(bandDates).
			AddSeries("Upper", bandLine(bollinger.Bollinger.Upper)).
			AddSeries("Middle", bandLine(bollinger.Bollinger.Middle)).
			AddSeries("Lower", bandLine(bollinger.Bollinger.Lower))
		kline.Overlap(line)
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := kline.Render(c.Writer); err != nil {
		logger.Errorf("[stock-api] 渲染 %s 图表失败: %v", symbol, err)
	}
}

func bandLine(values []*float64) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = opts.LineData{Value: nil}
			continue
		}
		out[i] = opts.LineData{Value: *v}
	}
	return out
}
