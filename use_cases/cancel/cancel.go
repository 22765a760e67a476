package cancel

import (
	"context"

	"github.com/giovaniif/coffee-machine/domain/machine"
)

type Cancel struct {
	machineRepository machine.Repository
}

func NewCancel(machineRepository machine.Repository) *Cancel {
	return &Cancel{
		machineRepository: machineRepository,
	}
}

// Cancel discards the open order. No money is held, so stock and profit stay as they are.
func (c *Cancel) Cancel(ctx context.Context, input Input) (Output, error) {
	var output Output
	err := c.machineRepository.Update(ctx, func(state *machine.State) error {
		o, err := state.OpenOrder(input.OrderId)
		if err != nil {
			return err
		}
		if err := o.Cancel(); err != nil {
			return err
		}
		state.Close()
		output = Output{OrderId: o.Id, Drink: o.Drink}
		return nil
	})
	if err != nil {
		return Output{}, err
	}
	return output, nil
}

type Input struct {
	OrderId string
}

type Output struct {
	OrderId string
	Drink   string
}
