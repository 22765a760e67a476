package purchase

import (
	"math"
	"time"

	"github.com/giovaniif/coffee-machine/infra"
	"github.com/giovaniif/coffee-machine/protocols"
)

var (
	MAX_RETRIES = 3
	BASE_DELAY  = 100 * time.Millisecond
)

type RetryFunc func() error

// RetryWithBackoff retries timeouts and network errors with exponential delays.
// Any other error is returned immediately.
func RetryWithBackoff(operation RetryFunc, sleeper protocols.Sleeper) RetryFunc {
	return func() error {
		var lastError error

		for i := 0; i < MAX_RETRIES; i++ {
			err := operation()
			if err == nil {
				return nil
			}
			if !infra.IsRetriable(err) {
				return err
			}
			lastError = err

			if i < MAX_RETRIES-1 {
				delay := time.Duration(math.Pow(2, float64(i))) * BASE_DELAY
				sleeper.Sleep(delay)
			}
		}

		return lastError
	}
}
