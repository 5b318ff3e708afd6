package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"app/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// RedisStore は買い手ごとのカートをJSONで1キーに置く。
// TTLは長め（放置カートはいずれ消える）。確定成功時にClearされる
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    14 * 24 * time.Hour,
	}
}

func (s *RedisStore) Get(ctx context.Context, buyerID string) ([]model.CartLine, error) {
	data, err := s.client.Get(ctx, cartKey(buyerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		// キー無し＝空カート
		return []model.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []model.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return lines, nil
}

func (s *RedisStore) Save(ctx context.Context, buyerID string, lines []model.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err := s.client.Set(ctx, cartKey(buyerID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, buyerID string) error {
	if err := s.client.Del(ctx, cartKey(buyerID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func cartKey(buyerID string) string {
	return "cart:" + buyerID
}
