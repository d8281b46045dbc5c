package alias

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis"
	"github.com/huajiao-tv/rundeckbot/logic"
)

// RedisStore 别名存成 hash `alias:<id>`，字段 project / job
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore 新建 Redis 别名存储
func NewRedisStore(address, auth string, maxConnNum int, idleTimeout time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:               address,
		Password:           auth,
		DB:                 0,
		PoolSize:           maxConnNum,
		DialTimeout:        3 * time.Second,
		ReadTimeout:        3 * time.Second,
		WriteTimeout:       3 * time.Second,
		IdleTimeout:        idleTimeout,
		IdleCheckFrequency: 1 * time.Second,
		MaxRetries:         2,
	})

	if _, err := client.Ping().Result(); err != nil {
		return nil, err
	}
	return &RedisStore{redis: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (logic.Alias, error) {
	a := logic.Alias{ID: id}
	vals, err := s.redis.WithContext(ctx).HMGet(fmt.Sprintf(logic.RedisAliasKey, id), logic.AliasProjectField, logic.AliasJobField).Result()
	if err != nil {
		return a, err
	}
	// 字段不存在时为 nil
	if len(vals) == 2 {
		a.Project, _ = vals[0].(string)
		a.Job, _ = vals[1].(string)
	}
	return a, nil
}

func (s *RedisStore) Set(ctx context.Context, a logic.Alias) error {
	return s.redis.WithContext(ctx).HMSet(fmt.Sprintf(logic.RedisAliasKey, a.ID), map[string]interface{}{
		logic.AliasProjectField: a.Project,
		logic.AliasJobField:     a.Job,
	}).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.redis.WithContext(ctx).Del(fmt.Sprintf(logic.RedisAliasKey, id)).Err()
}

// IDs 通过 KEYS 扫描，别名数量很少
func (s *RedisStore) IDs(ctx context.Context) ([]string, error) {
	keys, err := s.redis.WithContext(ctx).Keys(logic.RedisAliasPattern).Result()
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimSuffix(logic.RedisAliasPattern, "*")
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, prefix))
	}
	return ids, nil
}

// Close 关闭连接池
func (s *RedisStore) Close() error {
	return s.redis.Close()
}
