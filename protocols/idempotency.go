package protocols

import "context"

type IdempotencyKeyResult struct {
	Success bool  `json:"success"`
	Sale    *Sale `json:"sale,omitempty"`
}

type IdempotencyGateway interface {
	ReserveIdempotencyKey(ctx context.Context, idempotencyKey string) (*IdempotencyKeyResult, error)
	MarkFailure(ctx context.Context, idempotencyKey string) error
	MarkSuccess(ctx context.Context, idempotencyKey string, sale Sale) error
}
