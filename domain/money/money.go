package money

import (
	"fmt"
	"math"
	"strconv"
)

// Amount is a currency value in cents.
type Amount int64

const Zero Amount = 0

func Cents(c int64) Amount {
	return Amount(c)
}

// FromFloat converts a dollar value to cents, rounding half away from zero.
func FromFloat(dollars float64) Amount {
	return Amount(math.Round(dollars * 100))
}

func (a Amount) Cents() int64 {
	return int64(a)
}

func (a Amount) Float() float64 {
	return float64(a) / 100
}

func (a Amount) Add(b Amount) Amount {
	return a + b
}

func (a Amount) Sub(b Amount) Amount {
	return a - b
}

func (a Amount) Mul(n int64) Amount {
	return a * Amount(n)
}

func (a Amount) GreaterOrEqual(b Amount) bool {
	return a >= b
}

func (a Amount) IsZero() bool {
	return a == 0
}

// Decimal renders the amount with exactly two decimal places, e.g. "2.50".
func (a Amount) Decimal() string {
	sign := ""
	c := int64(a)
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

func (a Amount) String() string {
	if a < 0 {
		return "-$" + (-a).Decimal()
	}
	return "$" + a.Decimal()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	*a = FromFloat(f)
	return nil
}
