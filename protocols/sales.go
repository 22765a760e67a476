package protocols

import (
	"context"
	"time"

	"github.com/giovaniif/coffee-machine/domain/money"
)

type Sale struct {
	OrderId  string       `json:"orderId" bson:"order_id"`
	Drink    string       `json:"drink" bson:"drink"`
	Price    money.Amount `json:"price" bson:"price_cents"`
	Tendered money.Amount `json:"tendered" bson:"tendered_cents"`
	Change   money.Amount `json:"change" bson:"change_cents"`
	Message  string       `json:"message" bson:"message"`
	SoldAt   time.Time    `json:"soldAt" bson:"sold_at"`
}

type SalesPublisher interface {
	Publish(ctx context.Context, sale Sale) error
}

type SalesJournal interface {
	Record(ctx context.Context, sale Sale) error
}
