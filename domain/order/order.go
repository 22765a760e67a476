package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/giovaniif/coffee-machine/domain/menu"
	"github.com/giovaniif/coffee-machine/domain/money"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order transition")
)

type Status string

const (
	Idle            Status = "idle"
	Selected        Status = "selected"
	AwaitingPayment Status = "awaiting_payment"
	Completed       Status = "completed"
	Cancelled       Status = "cancelled"
	Rejected        Status = "rejected"
)

// Order is the transient state of one transaction.
type Order struct {
	Id        string       `json:"id"`
	Item      menu.Item    `json:"-"`
	Drink     string       `json:"drink"`
	Price     money.Amount `json:"price"`
	Status    Status       `json:"status"`
	Tendered  money.Amount `json:"tendered"`
	Change    money.Amount `json:"change"`
	CreatedAt time.Time    `json:"createdAt"`
}

func New(id string, item menu.Item, now time.Time) *Order {
	return &Order{
		Id:        id,
		Item:      item,
		Drink:     item.Name,
		Price:     item.Price,
		Status:    Selected,
		CreatedAt: now,
	}
}

func (o *Order) AwaitPayment() error {
	return o.transition(AwaitingPayment, Selected)
}

func (o *Order) Complete(tendered, change money.Amount) error {
	if err := o.transition(Completed, AwaitingPayment); err != nil {
		return err
	}
	o.Tendered = tendered
	o.Change = change
	return nil
}

// Reject ends the order after an insufficient tender. Nothing was taken, so nothing is refunded.
func (o *Order) Reject(tendered money.Amount) error {
	if err := o.transition(Rejected, AwaitingPayment); err != nil {
		return err
	}
	o.Tendered = tendered
	return nil
}

func (o *Order) Cancel() error {
	return o.transition(Cancelled, Selected, AwaitingPayment)
}

func (o *Order) IsOpen() bool {
	return o.Status == Selected || o.Status == AwaitingPayment
}

func (o *Order) transition(to Status, from ...Status) error {
	for _, allowed := range from {
		if o.Status == allowed {
			o.Status = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
}
