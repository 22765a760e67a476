package machine

import (
	"fmt"

	"github.com/giovaniif/coffee-machine/domain/inventory"
	"github.com/giovaniif/coffee-machine/domain/menu"
	"github.com/giovaniif/coffee-machine/domain/money"
	"github.com/giovaniif/coffee-machine/domain/order"
)

// State is everything the machine remembers between user actions.
type State struct {
	Inventory     inventory.Inventory
	Profit        money.Amount
	Current       *order.Order
	StatusMessage string
}

func New(m *menu.Menu) State {
	return State{Inventory: inventory.Defaults(m)}
}

// Phase is the status of the in-progress order, or Idle when there is none.
func (s State) Phase() order.Status {
	if s.Current == nil || !s.Current.IsOpen() {
		return order.Idle
	}
	return s.Current.Status
}

// Clone copies the state so callers can't reach the repository's order through a snapshot.
func (s State) Clone() State {
	if s.Current != nil {
		current := *s.Current
		s.Current = &current
	}
	return s
}

// Open replaces the in-progress order. A still-open previous order is cancelled and returned.
func (s *State) Open(o *order.Order) *order.Order {
	previous := s.Current
	s.Current = o
	if previous != nil && previous.IsOpen() {
		_ = previous.Cancel()
		return previous
	}
	return nil
}

func (s *State) OpenOrder(id string) (*order.Order, error) {
	if s.Current == nil || s.Current.Id != id || !s.Current.IsOpen() {
		return nil, fmt.Errorf("%w: %s", order.ErrOrderNotFound, id)
	}
	return s.Current, nil
}

// Close returns the machine to Idle.
func (s *State) Close() {
	s.Current = nil
}

// Sell re-checks stock, dispenses the item and books its price as profit.
func (s *State) Sell(item menu.Item) (string, error) {
	if err := s.Inventory.Check(item.Recipe); err != nil {
		return "", err
	}
	next, message := inventory.Dispense(item, s.Inventory)
	s.Inventory = next
	s.Profit = s.Profit.Add(item.Price)
	return message, nil
}

func (s *State) Refill(m *menu.Menu) {
	s.Inventory = inventory.Defaults(m)
}

func (s *State) ResetProfit() {
	s.Profit = money.Zero
}
