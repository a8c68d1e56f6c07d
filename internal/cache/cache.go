package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"stocklens/internal/logger"
)

// TTL 分级：日线历史一天内不变，分钟级数据和指标结果短缓存，
// 搜索结果与基本面报告一小时。
const (
	TTLDailyPrice  = 24 * time.Hour
	TTLIntraday    = 5 * time.Minute
	TTLIndicator   = 5 * time.Minute
	TTLSearch      = time.Hour
	TTLFundamental = time.Hour
)

// Cache 是 JSON 值缓存的抽象，miss 返回 (false, nil)。
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// PriceTTL 按区间选择历史数据的缓存时长。
func PriceTTL(interval string) time.Duration {
	if interval == "1day" {
		return TTLDailyPrice
	}
	return TTLIntraday
}

// PriceKey/IndicatorKey/SearchKey 统一缓存键格式，避免各服务自拼。
func PriceKey(symbol, interval string) string {
	return fmt.Sprintf("price:%s:%s", symbol, interval)
}

func IndicatorKey(name, symbol, interval string) string {
	return fmt.Sprintf("indicator:%s:%s:%s", name, symbol, interval)
}

func SearchKey(keyword string) string {
	return fmt.Sprintf("search:%s", keyword)
}

func FundamentalKey(symbol, period string, limit int) string {
	return fmt.Sprintf("fundamental:%s:%s:%d", symbol, period, limit)
}

// RedisCache 基于 go-redis 的实现；连接失败按 miss 处理并记录告警，
// 缓存层故障不应阻断请求。
type RedisCache struct {
	client *redis.Client
}

func NewRedis(addr, password string, db int) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: client}
}

func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Warnf("[cache] 读取 %s 失败: %v", key, err)
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logger.Warnf("[cache] 解码 %s 失败，按 miss 处理: %v", key, err)
		return false, nil
	}
	return true, nil
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化缓存值失败: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Warnf("[cache] 写入 %s 失败: %v", key, err)
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache 内存实现，redis 不可用时兜底，也用于测试。
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
}

func NewMemory() *MemoryCache {
	return &MemoryCache{data: make(map[string]memoryEntry)}
}

func (c *MemoryCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *MemoryCache) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化缓存值失败: %w", err)
	}
	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.data[key] = entry
	c.mu.Unlock()
	return nil
}
