package query

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/Akash-RK/federal-register-rag/pkg/config"
	"github.com/Akash-RK/federal-register-rag/pkg/metrics"
	pkgredis "github.com/Akash-RK/federal-register-rag/pkg/redis"
	"golang.org/x/sync/singleflight"
)

// KeyPrefix namespaces cached answers so an ingestion run can invalidate
// them with one pattern flush.
const KeyPrefix = "query:"

// Cache stores rendered answers in Redis, collapsing concurrent identical
// questions into one retrieval+summarization via singleflight.
type Cache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	m      *metrics.Metrics
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func NewCache(client *pkgredis.Client, cfg config.RedisConfig, m *metrics.Metrics) *Cache {
	return &Cache{
		client: client,
		cfg:    cfg,
		m:      m,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// GetOrCompute returns the cached answer for the question, or runs compute
// once (even under concurrent identical questions) and caches its result.
// The second return reports whether the answer came from cache.
func (c *Cache) GetOrCompute(ctx context.Context, question string, compute func() (Answer, error)) (Answer, bool, error) {
	key := c.buildKey(question)
	if answer, ok := c.lookup(ctx, key); ok {
		c.hits.Add(1)
		if c.m != nil {
			c.m.QueryCacheHitsTotal.Inc()
		}
		return answer, true, nil
	}
	c.misses.Add(1)
	if c.m != nil {
		c.m.QueryCacheMissesTotal.Inc()
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		answer, err := compute()
		if err != nil {
			return Answer{}, err
		}
		c.store(ctx, key, answer)
		return answer, nil
	})
	if err != nil {
		return Answer{}, false, err
	}
	return v.(Answer), false, nil
}

// Stats returns hit and miss counts since startup.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) lookup(ctx context.Context, key string) (Answer, bool) {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		return Answer{}, false
	}
	var answer Answer
	if err := json.Unmarshal([]byte(data), &answer); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return Answer{}, false
	}
	return answer, true
}

func (c *Cache) store(ctx context.Context, key string, answer Answer) {
	data, err := json.Marshal(answer)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, string(data), c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

func (c *Cache) buildKey(question string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(question), " "))
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s%x", KeyPrefix, sum[:16])
}
