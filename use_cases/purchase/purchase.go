package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/giovaniif/coffee-machine/domain/inventory"
	"github.com/giovaniif/coffee-machine/domain/machine"
	"github.com/giovaniif/coffee-machine/domain/money"
	"github.com/giovaniif/coffee-machine/domain/payment"
	"github.com/giovaniif/coffee-machine/protocols"
)

var (
	ErrInvalidCoins = errors.New("invalid coins")
	ErrKeyReused    = errors.New("idempotency key already used for another order")
)

const afterSaleTimeout = 5 * time.Second

func NewPurchase(
	machineRepository machine.Repository,
	idempotencyGateway protocols.IdempotencyGateway,
	salesJournal protocols.SalesJournal,
	salesPublisher protocols.SalesPublisher,
	sleeper protocols.Sleeper,
	metrics protocols.MachineMetrics,
	logger *zap.Logger,
) *Purchase {
	return &Purchase{
		machineRepository:  machineRepository,
		idempotencyGateway: idempotencyGateway,
		salesJournal:       salesJournal,
		salesPublisher:     salesPublisher,
		sleeper:            sleeper,
		metrics:            metrics,
		logger:             logger,
		now:                time.Now,
	}
}

// Pay settles the open order with the inserted coins. An insufficient tender closes the order
// without touching stock or profit; an accepted one dispenses and books the price exactly once.
func (p *Purchase) Pay(ctx context.Context, input Input) (Output, error) {
	if err := input.Coins.Validate(); err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrInvalidCoins, err)
	}

	if input.IdempotencyKey != "" {
		result, err := p.idempotencyGateway.ReserveIdempotencyKey(ctx, input.IdempotencyKey)
		if err != nil {
			return Output{}, err
		}
		if result != nil && result.Sale != nil {
			if result.Sale.OrderId != input.OrderId {
				return Output{}, fmt.Errorf("%w: %s", ErrKeyReused, input.IdempotencyKey)
			}
			output := outputFromSale(*result.Sale)
			output.Replayed = true
			return output, nil
		}
	}

	sale, err := p.settle(ctx, input)

	// once settle has run the outcome is final, so bookkeeping outlives the request
	afterCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), afterSaleTimeout)
	defer cancel()

	if input.IdempotencyKey != "" {
		if err == nil {
			if markErr := p.idempotencyGateway.MarkSuccess(afterCtx, input.IdempotencyKey, sale); markErr != nil {
				p.logger.Warn("failed to mark idempotency key", zap.String("key", input.IdempotencyKey), zap.Error(markErr))
			}
		} else {
			_ = p.idempotencyGateway.MarkFailure(afterCtx, input.IdempotencyKey)
		}
	}
	if err != nil {
		return Output{}, err
	}

	p.record(afterCtx, sale)
	return outputFromSale(sale), nil
}

func (p *Purchase) settle(ctx context.Context, input Input) (protocols.Sale, error) {
	tendered := payment.SumCoins(input.Coins)

	var sale protocols.Sale
	var drink string
	var refused error
	var levels map[string]int
	var profit money.Amount
	err := p.machineRepository.Update(ctx, func(state *machine.State) error {
		o, err := state.OpenOrder(input.OrderId)
		if err != nil {
			return err
		}
		drink = o.Drink

		accepted, change := payment.EvaluatePayment(tendered, o.Price)
		if !accepted {
			if err := o.Reject(tendered); err != nil {
				return err
			}
			state.Close()
			refused = &payment.RejectedError{Tendered: tendered, Price: o.Price}
			return nil
		}

		message, err := state.Sell(o.Item)
		if err != nil {
			if !errors.Is(err, inventory.ErrInsufficientStock) {
				return err
			}
			// stock was taken by another order since selection
			if err := o.Cancel(); err != nil {
				return err
			}
			state.Close()
			state.StatusMessage = err.Error()
			refused = err
			return nil
		}
		if err := o.Complete(tendered, change); err != nil {
			return err
		}
		state.Close()

		sale = protocols.Sale{
			OrderId:  o.Id,
			Drink:    o.Drink,
			Price:    o.Price,
			Tendered: tendered,
			Change:   change,
			Message:  message,
			SoldAt:   p.now(),
		}
		levels = state.Inventory.Levels()
		profit = state.Profit
		return nil
	})
	if err != nil {
		return protocols.Sale{}, err
	}

	if refused != nil {
		var rejected *payment.RejectedError
		var shortage *inventory.ShortageError
		switch {
		case errors.As(refused, &rejected):
			p.metrics.PaymentRejected(drink)
		case errors.As(refused, &shortage):
			p.metrics.StockShortage(shortage.Ingredient)
		}
		return protocols.Sale{}, refused
	}

	p.metrics.DrinkDispensed(sale.Drink, sale.Price)
	p.metrics.Levels(levels, profit)
	return sale, nil
}

// record journals and publishes a committed sale. Failures are logged; the sale stands.
func (p *Purchase) record(ctx context.Context, sale protocols.Sale) {
	if err := p.salesJournal.Record(ctx, sale); err != nil {
		p.logger.Error("failed to journal sale", zap.String("order_id", sale.OrderId), zap.Error(err))
	}

	publish := RetryWithBackoff(func() error {
		return p.salesPublisher.Publish(ctx, sale)
	}, p.sleeper)
	if err := publish(); err != nil {
		p.logger.Error("failed to publish sale", zap.String("order_id", sale.OrderId), zap.Error(err))
	}
}

func outputFromSale(sale protocols.Sale) Output {
	return Output{
		OrderId:  sale.OrderId,
		Drink:    sale.Drink,
		Message:  sale.Message,
		Price:    sale.Price,
		Tendered: sale.Tendered,
		Change:   sale.Change,
	}
}

type Input struct {
	OrderId        string
	Coins          payment.Coins
	IdempotencyKey string
}

type Output struct {
	OrderId  string
	Drink    string
	Message  string
	Price    money.Amount
	Tendered money.Amount
	Change   money.Amount
	Replayed bool
}

type Purchase struct {
	machineRepository  machine.Repository
	idempotencyGateway protocols.IdempotencyGateway
	salesJournal       protocols.SalesJournal
	salesPublisher     protocols.SalesPublisher
	sleeper            protocols.Sleeper
	metrics            protocols.MachineMetrics
	logger             *zap.Logger
	now                func() time.Time
}
