package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	protocols "github.com/giovaniif/coffee-machine/protocols"
)

const (
	idempotencyKeyPrefix = "idempotency:payment:"
	idempotencyTTL       = 24 * time.Hour
)

type idempotencyRedisState struct {
	Status string                          `json:"status"`
	Result *protocols.IdempotencyKeyResult `json:"result,omitempty"`
}

type IdempotencyGatewayRedis struct {
	client *redis.Client
}

func NewIdempotencyGatewayRedis(client *redis.Client) *IdempotencyGatewayRedis {
	return &IdempotencyGatewayRedis{client: client}
}

func (c *IdempotencyGatewayRedis) key(idempotencyKey string) string {
	return idempotencyKeyPrefix + idempotencyKey
}

func (c *IdempotencyGatewayRedis) ReserveIdempotencyKey(ctx context.Context, idempotencyKey string) (*protocols.IdempotencyKeyResult, error) {
	k := c.key(idempotencyKey)

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		data, err := c.client.Get(ctx, k).Bytes()
		if err == redis.Nil {
			raw, _ := json.Marshal(idempotencyRedisState{Status: statusProcessing})
			_, err := c.client.SetArgs(ctx, k, raw, redis.SetArgs{Mode: "NX", TTL: idempotencyTTL}).Result()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("redis set: %w", err)
			}
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}

		var state idempotencyRedisState
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("redis unmarshal: %w", err)
		}

		switch state.Status {
		case statusSuccess:
			return state.Result, nil
		case statusProcessing:
			return nil, ErrKeyInProgress
		default:
			raw, _ := json.Marshal(idempotencyRedisState{Status: statusProcessing})
			if err := c.client.Set(ctx, k, raw, idempotencyTTL).Err(); err != nil {
				return nil, fmt.Errorf("redis set: %w", err)
			}
			return nil, nil
		}
	}
}

func (c *IdempotencyGatewayRedis) MarkFailure(ctx context.Context, idempotencyKey string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return c.client.Del(ctx, c.key(idempotencyKey)).Err()
}

func (c *IdempotencyGatewayRedis) MarkSuccess(ctx context.Context, idempotencyKey string, sale protocols.Sale) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	state := idempotencyRedisState{
		Status: statusSuccess,
		Result: &protocols.IdempotencyKeyResult{Success: true, Sale: &sale},
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(idempotencyKey), raw, idempotencyTTL).Err()
}
