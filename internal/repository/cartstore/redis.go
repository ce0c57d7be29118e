package cartstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"minishop/internal/domain"
)

type redisRepo struct {
	client *redis.Client
	key    string
}

// NewRedis stores the cart as a JSON string under key, without expiry.
func NewRedis(client *redis.Client, key string) Repository {
	if key == "" {
		key = DefaultKey
	}
	return &redisRepo{client: client, key: key}
}

func (r *redisRepo) Load(ctx context.Context) ([]domain.CartItem, bool, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	items, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (r *redisRepo) Save(ctx context.Context, items []domain.CartItem) error {
	data, err := encode(items)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *redisRepo) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key, err)
	}
	return nil
}
