package payment

import (
	"errors"
	"fmt"

	"github.com/giovaniif/coffee-machine/domain/money"
)

var ErrInsufficientPayment = errors.New("insufficient payment")

const (
	Quarter = money.Amount(25)
	Dime    = money.Amount(10)
	Nickel  = money.Amount(5)
	Penny   = money.Amount(1)
)

// MaxCoinsPerKind bounds each coin count so a tender always fits in an Amount.
const MaxCoinsPerKind = 10000

type Coins struct {
	Quarters int `json:"quarters" binding:"min=0,max=10000"`
	Dimes    int `json:"dimes" binding:"min=0,max=10000"`
	Nickels  int `json:"nickels" binding:"min=0,max=10000"`
	Pennies  int `json:"pennies" binding:"min=0,max=10000"`
}

func (c Coins) Validate() error {
	for _, count := range []int{c.Quarters, c.Dimes, c.Nickels, c.Pennies} {
		if count < 0 {
			return fmt.Errorf("coin counts must not be negative: %+v", c)
		}
		if count > MaxCoinsPerKind {
			return fmt.Errorf("at most %d coins of each kind: %+v", MaxCoinsPerKind, c)
		}
	}
	return nil
}

// SumCoins is the tender for a set of coins. Cents are exact, so no rounding is involved.
func SumCoins(c Coins) money.Amount {
	return Quarter.Mul(int64(c.Quarters)).
		Add(Dime.Mul(int64(c.Dimes))).
		Add(Nickel.Mul(int64(c.Nickels))).
		Add(Penny.Mul(int64(c.Pennies)))
}

// EvaluatePayment accepts the tender when it covers the price. Change is zero on rejection.
func EvaluatePayment(tendered, price money.Amount) (bool, money.Amount) {
	if !tendered.GreaterOrEqual(price) {
		return false, money.Zero
	}
	return true, tendered.Sub(price)
}

type RejectedError struct {
	Tendered money.Amount
	Price    money.Amount
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("Insufficient payment! Money refunded. Inserted %s, needed %s", e.Tendered, e.Price)
}

func (e *RejectedError) Unwrap() error {
	return ErrInsufficientPayment
}
