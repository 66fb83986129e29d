package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SuggestionCache keeps recent name-suggestion responses. Lookups are
// best-effort: every cache failure is reported as a miss and writes are
// fire-and-forget.
type SuggestionCache interface {
	Get(ctx context.Context, partial string, limit int) ([]string, bool)
	Set(ctx context.Context, partial string, limit int, names []string)
}

type redisSuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSuggestionCache builds the Redis-backed cache.
func NewSuggestionCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) SuggestionCache {
	return &redisSuggestionCache{client: client, ttl: ttl, logger: logger}
}

func (c *redisSuggestionCache) Get(ctx context.Context, partial string, limit int) ([]string, bool) {
	payload, err := c.client.Get(ctx, suggestionKey(partial, limit)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("suggestion cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var names []string
	if err := json.Unmarshal(payload, &names); err != nil {
		c.logger.Debug("suggestion cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return names, true
}

func (c *redisSuggestionCache) Set(ctx context.Context, partial string, limit int, names []string) {
	payload, err := json.Marshal(names)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, suggestionKey(partial, limit), payload, c.ttl).Err(); err != nil {
		c.logger.Debug("suggestion cache write failed", zap.Error(err))
	}
}

func suggestionKey(partial string, limit int) string {
	return "suggest:accounts:" + strings.ToLower(strings.TrimSpace(partial)) + ":" + strconv.Itoa(limit)
}
