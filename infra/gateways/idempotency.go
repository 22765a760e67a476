package gateways

import (
	"context"
	"errors"
	"sync"

	protocols "github.com/giovaniif/coffee-machine/protocols"
)

var ErrKeyInProgress = errors.New("idempotency key is already being processed")

const (
	statusProcessing = "processing"
	statusSuccess    = "success"
)

type IdempotencyGatewayMemory struct {
	mutex           sync.RWMutex
	idempotencyKeys map[string]*IdempotencyState
}

type IdempotencyState struct {
	Status string
	Result *protocols.IdempotencyKeyResult
}

func NewIdempotencyGatewayMemory() *IdempotencyGatewayMemory {
	return &IdempotencyGatewayMemory{
		idempotencyKeys: make(map[string]*IdempotencyState),
	}
}

func (c *IdempotencyGatewayMemory) ReserveIdempotencyKey(ctx context.Context, idempotencyKey string) (*protocols.IdempotencyKeyResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	state, exists := c.idempotencyKeys[idempotencyKey]
	if exists {
		if state.Status == statusSuccess {
			return state.Result, nil
		}

		if state.Status == statusProcessing {
			return nil, ErrKeyInProgress
		}

		delete(c.idempotencyKeys, idempotencyKey)
	}

	c.idempotencyKeys[idempotencyKey] = &IdempotencyState{
		Status: statusProcessing,
	}
	return nil, nil
}

func (c *IdempotencyGatewayMemory) MarkFailure(ctx context.Context, idempotencyKey string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.idempotencyKeys, idempotencyKey)
	return nil
}

func (c *IdempotencyGatewayMemory) MarkSuccess(ctx context.Context, idempotencyKey string, sale protocols.Sale) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if state, exists := c.idempotencyKeys[idempotencyKey]; exists {
		state.Status = statusSuccess
		state.Result = &protocols.IdempotencyKeyResult{
			Success: true,
			Sale:    &sale,
		}
	}

	return nil
}
