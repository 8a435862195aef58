package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"recipe-recommender/internal/pkg/common"
)

// CachedRepository Redis 讀穿緩存裝飾器
// 只緩存 FindByID 與 TagFrequency，窗口查詢直接透傳
// 緩存故障時降級為內層查詢，不向上拋錯
type CachedRepository struct {
	inner  Repository
	client *redis.Client
	ttl    time.Duration
}

// NewCachedRepository 創建緩存裝飾器並測試連接
func NewCachedRepository(inner Repository, addr string, ttl time.Duration) (*CachedRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &CachedRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
	}, nil
}

// Find 窗口查詢不緩存，直接透傳
func (r *CachedRepository) Find(ctx context.Context, q Query, skip, limit int) ([]Candidate, error) {
	return r.inner.Find(ctx, q, skip, limit)
}

// FindByID 按 ID 查詢，讀穿緩存
func (r *CachedRepository) FindByID(ctx context.Context, id string) (*Candidate, error) {
	key := fmt.Sprintf("recipe:id:%s", id)

	data, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var c Candidate
		if err := json.Unmarshal(data, &c); err == nil {
			common.LogCacheHit("recipe", key)
			return &c, nil
		}
	} else if err != redis.Nil {
		common.LogWarn("菜譜緩存讀取失敗，降級為直接查詢",
			zap.String("key", key),
			zap.Error(err),
		)
	} else {
		common.LogCacheMiss("recipe", key)
	}

	c, err := r.inner.FindByID(ctx, id)
	if err != nil || c == nil {
		return c, err
	}

	if data, err := json.Marshal(c); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			common.LogWarn("菜譜緩存寫入失敗",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	return c, nil
}

// FindByIDs 逐 ID 走緩存路徑
func (r *CachedRepository) FindByIDs(ctx context.Context, ids []string) ([]Candidate, error) {
	out := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		c, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

// TagFrequency 標籤統計，讀穿緩存
func (r *CachedRepository) TagFrequency(ctx context.Context, tag string, limit int) ([]TagCount, error) {
	key := fmt.Sprintf("recipe:tags:%s:%d", tag, limit)

	data, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var counts []TagCount
		if err := json.Unmarshal(data, &counts); err == nil {
			common.LogCacheHit("tag_frequency", key)
			return counts, nil
		}
	} else if err != redis.Nil {
		common.LogWarn("標籤統計緩存讀取失敗，降級為直接查詢",
			zap.String("key", key),
			zap.Error(err),
		)
	} else {
		common.LogCacheMiss("tag_frequency", key)
	}

	counts, err := r.inner.TagFrequency(ctx, tag, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(counts); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			common.LogWarn("標籤統計緩存寫入失敗",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	return counts, nil
}

// Close 關閉 Redis 連接
func (r *CachedRepository) Close() error {
	return r.client.Close()
}
