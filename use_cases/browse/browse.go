package browse

import (
	"context"

	"github.com/giovaniif/coffee-machine/domain/machine"
	"github.com/giovaniif/coffee-machine/domain/menu"
)

type Browse struct {
	menu              *menu.Menu
	machineRepository machine.Repository
}

func NewBrowse(menu *menu.Menu, machineRepository machine.Repository) *Browse {
	return &Browse{
		menu:              menu,
		machineRepository: machineRepository,
	}
}

// List returns the menu in display order, each item annotated with whether it can be made now.
func (b *Browse) List(ctx context.Context) ([]Entry, error) {
	state, err := b.machineRepository.Get(ctx)
	if err != nil {
		return nil, err
	}

	items := b.menu.Items()
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		available, reason := state.Inventory.CheckAvailability(item.Recipe)
		entries = append(entries, Entry{
			Item:        item,
			Ingredients: b.menu.IngredientsText(item),
			Available:   available,
			Reason:      reason,
		})
	}
	return entries, nil
}

type Entry struct {
	Item        menu.Item
	Ingredients string
	Available   bool
	Reason      string
}
