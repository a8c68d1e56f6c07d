package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stocklens/internal/service"
	"stocklens/internal/transport/http/marketdata"
	"stocklens/internal/transport/http/stock"
)

// Server 承载全部 HTTP 接口。
type Server struct {
	addr   string
	router *gin.Engine

	readTimeout  time.Duration
	writeTimeout time.Duration
}

type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Prices      *service.PriceService
	Technical   *service.TechnicalService
	Fundamental *service.FundamentalService
	State       *service.StateService
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Prices == nil || cfg.Technical == nil || cfg.Fundamental == nil || cfg.State == nil {
		return nil, errors.New("service 不能为空")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), RequestID())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	marketdata.NewRouter(cfg.Prices).Register(api)
	stock.NewRouter(cfg.Prices, cfg.Technical, cfg.Fundamental, cfg.State).Register(api.Group("/stock"))

	return &Server{
		addr:         cfg.Addr,
		router:       router,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}, nil
}

// Start 启动 HTTP 服务，阻塞直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Handler 暴露底层路由，供测试挂载。
func (s *Server) Handler() http.Handler {
	return s.router
}
