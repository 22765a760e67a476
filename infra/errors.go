package infra

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrTimeout = errors.New("timeout error")
	ErrNetwork = errors.New("network error")
)

func NewTimeoutError(details string) error {
	return fmt.Errorf("%w: %s", ErrTimeout, details)
}

func NewNetworkError(details string) error {
	return fmt.Errorf("%w: %s", ErrNetwork, details)
}

// IsRetriable returns true if the error is timeout or network, so retry makes sense.
func IsRetriable(err error) bool {
	return err != nil && (errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetwork))
}

// Classify wraps transport failures of a backend call so IsRetriable recognises them.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
		}
		return fmt.Errorf("%w: %s: %v", ErrNetwork, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
