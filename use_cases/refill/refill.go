package refill

import (
	"context"

	"github.com/giovaniif/coffee-machine/domain/machine"
	"github.com/giovaniif/coffee-machine/domain/menu"
	"github.com/giovaniif/coffee-machine/protocols"
)

type Refill struct {
	menu              *menu.Menu
	machineRepository machine.Repository
	metrics           protocols.MachineMetrics
}

func NewRefill(menu *menu.Menu, machineRepository machine.Repository, metrics protocols.MachineMetrics) *Refill {
	return &Refill{
		menu:              menu,
		machineRepository: machineRepository,
		metrics:           metrics,
	}
}

// Refill restores every ingredient to the menu's default level.
func (r *Refill) Refill(ctx context.Context) (map[string]int, error) {
	var levels map[string]int
	err := r.machineRepository.Update(ctx, func(state *machine.State) error {
		state.Refill(r.menu)
		levels = state.Inventory.Levels()
		r.metrics.Levels(levels, state.Profit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return levels, nil
}
