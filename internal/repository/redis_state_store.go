package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"RiskGate/internal/domain/models"
	domrepo "RiskGate/internal/domain/repository"
)

const stateKeyPrefix = "riskgate:state:"

// RedisStateStore persists the most recent risk state per symbol so that
// hysteresis survives process restarts.
type RedisStateStore struct {
	client *redis.Client
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

func (s *RedisStateStore) Load(ctx context.Context, symbol string) (*models.RiskState, error) {
	data, err := s.client.Get(ctx, stateKeyPrefix+symbol).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("load state for %s: %w", symbol, err)
	}

	var state models.RiskState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state for %s: %w", symbol, err)
	}
	return &state, nil
}

func (s *RedisStateStore) Save(ctx context.Context, symbol string, state models.RiskState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state for %s: %w", symbol, err)
	}
	if err := s.client.Set(ctx, stateKeyPrefix+symbol, data, 0).Err(); err != nil {
		return fmt.Errorf("save state for %s: %w", symbol, err)
	}
	return nil
}

func (s *RedisStateStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var _ domrepo.StateStore = (*RedisStateStore)(nil)
