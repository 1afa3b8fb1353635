package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "sess:"

// RedisStore keeps live session ids in redis, letting revocation survive
// process restarts and span replicas. Expiry is delegated to redis TTLs.
type RedisStore struct {
	client *redis.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisStore(cfg RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &RedisStore{client: client}
}

// Ping checks redis connectivity, used by readiness probes.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Save(ctx context.Context, sid string, ttl time.Duration) error {
	return s.client.Set(ctx, redisKeyPrefix+sid, 1, ttl).Err()
}

func (s *RedisStore) Exists(ctx context.Context, sid string) (bool, error) {
	n, err := s.client.Exists(ctx, redisKeyPrefix+sid).Result()

	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	return s.client.Del(ctx, redisKeyPrefix+sid).Err()
}
