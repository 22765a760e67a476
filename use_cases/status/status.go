package status

import (
	"context"

	"github.com/giovaniif/coffee-machine/domain/machine"
	"github.com/giovaniif/coffee-machine/domain/menu"
	"github.com/giovaniif/coffee-machine/domain/money"
	"github.com/giovaniif/coffee-machine/domain/order"
)

const DefaultLowStockThreshold = 1000

type Status struct {
	menu              *menu.Menu
	machineRepository machine.Repository
	lowStockThreshold int
}

func NewStatus(menu *menu.Menu, machineRepository machine.Repository, lowStockThreshold int) *Status {
	if lowStockThreshold < 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &Status{
		menu:              menu,
		machineRepository: machineRepository,
		lowStockThreshold: lowStockThreshold,
	}
}

func (s *Status) Report(ctx context.Context) (Output, error) {
	state, err := s.machineRepository.Get(ctx)
	if err != nil {
		return Output{}, err
	}

	output := Output{
		Profit:        state.Profit,
		Phase:         state.Phase(),
		StatusMessage: state.StatusMessage,
	}
	for _, name := range state.Inventory.Ingredients() {
		level := Level{Ingredient: name, Amount: state.Inventory.Level(name)}
		if ingredient, ok := s.menu.Ingredient(name); ok {
			level.Unit = ingredient.Unit
		}
		level.Low = level.Amount < s.lowStockThreshold
		output.Levels = append(output.Levels, level)
	}
	if state.Current != nil && state.Current.IsOpen() {
		current := *state.Current
		output.Current = &current
	}
	return output, nil
}

func (s *Status) ClearMessage(ctx context.Context) error {
	return s.machineRepository.Update(ctx, func(state *machine.State) error {
		state.StatusMessage = ""
		return nil
	})
}

type Level struct {
	Ingredient string
	Unit       string
	Amount     int
	Low        bool
}

type Output struct {
	Levels        []Level
	Profit        money.Amount
	Phase         order.Status
	Current       *order.Order
	StatusMessage string
}
