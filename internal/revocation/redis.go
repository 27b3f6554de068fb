package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis создаёт Redis-хранилище отозванных токенов из URL
// (например, redis://:pass@host:6379/0). Если prefix пустой —
// используется "auth:revoked:".
//
// TTL ключа совпадает со сроком жизни записи, поэтому фоновая очистка
// не нужна — Redis удаляет просроченные ключи сам.
func NewRedis(redisURL, prefix string) (Store, error) {
	if prefix == "" {
		prefix = "auth:revoked:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisStore{rdb: rdb, prefix: prefix}, nil
}

func (s *redisStore) key(tokenID string) string { return s.prefix + tokenID }

func (s *redisStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Запись с истекшим сроком логически отсутствует.
		return nil
	}

	return s.rdb.Set(ctx, s.key(tokenID), "1", ttl).Err()
}

func (s *redisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.rdb.Get(ctx, s.key(tokenID)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (s *redisStore) Close() error { return s.rdb.Close() }
