package pending

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/perfura/storefront/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore keeps pending orders in a Redis list, oldest first. Entries that
// do not decode are skipped when listing.
type RedisStore struct {
	client *redis.Client
	key    string
	logger zerolog.Logger
}

func NewRedisStore(client *redis.Client, key string, logger zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		key:    key,
		logger: logger.With().Str("component", "pending").Str("key", key).Logger(),
	}
}

// NewRedisClient parses url (redis://...) and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Append(ctx context.Context, order models.PendingOrder) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode pending order: %w", err)
	}
	if err := s.client.RPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("append pending order: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]models.PendingOrder, error) {
	values, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}

	orders := make([]models.PendingOrder, 0, len(values))
	for i, v := range values {
		var order models.PendingOrder
		if err := json.Unmarshal([]byte(v), &order); err != nil {
			s.logger.Warn().Err(err).Int("index", i).Msg("skipping undecodable pending order")
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}
