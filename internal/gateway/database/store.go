package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"stocklens/internal/fundamental"
	"stocklens/internal/logger"
	"stocklens/internal/market"
)

// Store 是 SQLite 持久层：历史 K 线、财报原文与最新报价。
// 所有写路径经过互斥锁，SQLite 单写者模型下避免 busy 错误。
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open 打开（或创建）数据库文件并执行迁移。
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("数据库路径不能为空")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	// modernc 驱动不做连接池并发写，单连接最稳。
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Infof("[database] SQLite 已就绪: %s", path)
	return s, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) migrate() error {
	queries := []string{
		`PRAGMA journal_mode=WAL`,
		`CREATE TABLE IF NOT EXISTS prices (
			symbol    TEXT NOT NULL,
			interval  TEXT NOT NULL,
			ts        INTEGER NOT NULL,
			open      REAL NOT NULL,
			high      REAL NOT NULL,
			low       REAL NOT NULL,
			close     REAL NOT NULL,
			volume    REAL,
			PRIMARY KEY (symbol, interval, ts)
		)`,
		`CREATE TABLE IF NOT EXISTS statements (
			symbol     TEXT NOT NULL,
			period     TEXT NOT NULL,
			kind       TEXT NOT NULL,
			payload    TEXT NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, period, kind)
		)`,
		`CREATE TABLE IF NOT EXISTS quotes (
			symbol     TEXT PRIMARY KEY,
			name       TEXT,
			price      REAL,
			market_cap REAL,
			pe         REAL,
			eps        REAL,
			fetched_at INTEGER NOT NULL
		)`,
	}
	for _, q := range queries {
		if _, err := s.db.ExecContext(context.Background(), q); err != nil {
			return fmt.Errorf("迁移失败: %w", err)
		}
	}
	return nil
}

// SavePrices 幂等写入 K 线，同一根已存在时跳过。
func (s *Store) SavePrices(ctx context.Context, symbol, interval string, candles []market.Candle) error {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" || interval == "" {
		return fmt.Errorf("symbol/interval 不能为空")
	}
	if len(candles) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("store 已关闭")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO prices (symbol, interval, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, sym, interval, c.Timestamp, c.Open, c.High, c.Low, c.Close, nullIfZero(c.Volume)); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LoadPrices 读取最近 limit 根 K 线，按时间升序返回。
func (s *Store) LoadPrices(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" || interval == "" {
		return nil, fmt.Errorf("symbol/interval 不能为空")
	}
	if limit <= 0 {
		limit = 1000
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("store 已关闭")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, open, high, low, close, volume FROM (
			SELECT ts, open, high, low, close, volume
			FROM prices WHERE symbol=? AND interval=?
			ORDER BY ts DESC LIMIT ?
		) ORDER BY ts ASC`, sym, interval, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []market.Candle
	for rows.Next() {
		var c market.Candle
		var volume sql.NullFloat64
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &volume); err != nil {
			return nil, err
		}
		if volume.Valid {
			c.Volume = volume.Float64
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveStatements 覆盖写入某类财报的原始 JSON。
func (s *Store) SaveStatements(ctx context.Context, symbol, period, kind string, payload []byte) error {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" || period == "" || kind == "" {
		return fmt.Errorf("symbol/period/kind 不能为空")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("store 已关闭")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO statements (symbol, period, kind, payload, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol, period, kind) DO UPDATE SET payload=excluded.payload, fetched_at=excluded.fetched_at`,
		sym, period, kind, string(payload), time.Now().UnixMilli())
	return err
}

// LoadStatements 读取未过期的财报 JSON；没有或已过期返回 (nil, false)。
func (s *Store) LoadStatements(ctx context.Context, symbol, period, kind string, maxAge time.Duration) ([]byte, bool, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, false, fmt.Errorf("store 已关闭")
	}
	var payload string
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT payload, fetched_at FROM statements
		WHERE symbol=? AND period=? AND kind=?`, sym, period, kind).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if maxAge > 0 && time.Now().UnixMilli()-fetchedAt > maxAge.Milliseconds() {
		return nil, false, nil
	}
	return []byte(payload), true, nil
}

// SaveQuote 覆盖写入最新报价。
func (s *Store) SaveQuote(ctx context.Context, quote fundamental.Quote) error {
	sym := strings.ToUpper(strings.TrimSpace(quote.Symbol))
	if sym == "" {
		return fmt.Errorf("symbol 不能为空")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("store 已关闭")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (symbol, name, price, market_cap, pe, eps, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name=excluded.name, price=excluded.price, market_cap=excluded.market_cap,
			pe=excluded.pe, eps=excluded.eps, fetched_at=excluded.fetched_at`,
		sym, quote.Name, nullablePtr(quote.Price), nullablePtr(quote.MarketCap), nullablePtr(quote.PE), nullablePtr(quote.EPS), time.Now().UnixMilli())
	return err
}

// LoadQuote 读取未过期的报价；没有或已过期返回 (nil, nil)。
func (s *Store) LoadQuote(ctx context.Context, symbol string, maxAge time.Duration) (*fundamental.Quote, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("store 已关闭")
	}
	var q fundamental.Quote
	var price, marketCap, pe, eps sql.NullFloat64
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT symbol, name, price, market_cap, pe, eps, fetched_at
		FROM quotes WHERE symbol=?`, sym).Scan(&q.Symbol, &q.Name, &price, &marketCap, &pe, &eps, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if maxAge > 0 && time.Now().UnixMilli()-fetchedAt > maxAge.Milliseconds() {
		return nil, nil
	}
	q.Price = ptrFromNull(price)
	q.MarketCap = ptrFromNull(marketCap)
	q.PE = ptrFromNull(pe)
	q.EPS = ptrFromNull(eps)
	return &q, nil
}
