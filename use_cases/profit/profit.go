package profit

import (
	"context"

	"github.com/giovaniif/coffee-machine/domain/machine"
	"github.com/giovaniif/coffee-machine/domain/money"
	"github.com/giovaniif/coffee-machine/protocols"
)

type ResetProfit struct {
	machineRepository machine.Repository
	metrics           protocols.MachineMetrics
}

func NewResetProfit(machineRepository machine.Repository, metrics protocols.MachineMetrics) *ResetProfit {
	return &ResetProfit{
		machineRepository: machineRepository,
		metrics:           metrics,
	}
}

// Reset zeroes the profit and returns what had been accumulated.
func (r *ResetProfit) Reset(ctx context.Context) (money.Amount, error) {
	var previous money.Amount
	err := r.machineRepository.Update(ctx, func(state *machine.State) error {
		previous = state.Profit
		state.ResetProfit()
		r.metrics.Levels(state.Inventory.Levels(), state.Profit)
		return nil
	})
	return previous, err
}
