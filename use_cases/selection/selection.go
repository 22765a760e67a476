package selection

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/giovaniif/coffee-machine/domain/inventory"
	"github.com/giovaniif/coffee-machine/domain/machine"
	"github.com/giovaniif/coffee-machine/domain/menu"
	"github.com/giovaniif/coffee-machine/domain/money"
	"github.com/giovaniif/coffee-machine/domain/order"
	"github.com/giovaniif/coffee-machine/protocols"
)

func NewSelect(menu *menu.Menu, machineRepository machine.Repository, metrics protocols.MachineMetrics) *Select {
	return &Select{
		menu:              menu,
		machineRepository: machineRepository,
		metrics:           metrics,
		newId:             uuid.NewString,
		now:               time.Now,
	}
}

// Select opens an order for a drink once its ingredients are known to be in stock.
// A shortage is reported before any payment is asked for and kept as the machine's status message.
func (s *Select) Select(ctx context.Context, input Input) (Output, error) {
	item, err := s.menu.Lookup(input.Drink)
	if err != nil {
		return Output{}, err
	}

	var output Output
	var shortage error
	err = s.machineRepository.Update(ctx, func(state *machine.State) error {
		if err := state.Inventory.Check(item.Recipe); err != nil {
			if !errors.Is(err, inventory.ErrInsufficientStock) {
				return err
			}
			state.StatusMessage = err.Error()
			shortage = err
			return nil
		}

		o := order.New(s.newId(), item, s.now())
		if err := o.AwaitPayment(); err != nil {
			return err
		}
		if previous := state.Open(o); previous != nil {
			output.Replaced = previous.Id
		}
		output.OrderId = o.Id
		output.Drink = o.Drink
		output.Price = o.Price
		output.Status = o.Status
		return nil
	})
	if err != nil {
		return Output{}, err
	}
	if shortage != nil {
		var shortageErr *inventory.ShortageError
		if errors.As(shortage, &shortageErr) {
			s.metrics.StockShortage(shortageErr.Ingredient)
		}
		return Output{}, shortage
	}
	return output, nil
}

type Input struct {
	Drink string
}

type Output struct {
	OrderId  string
	Drink    string
	Price    money.Amount
	Status   order.Status
	Replaced string
}

type Select struct {
	menu              *menu.Menu
	machineRepository machine.Repository
	metrics           protocols.MachineMetrics
	newId             func() string
	now               func() time.Time
}
