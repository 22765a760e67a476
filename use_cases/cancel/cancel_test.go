package cancel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/giovaniif/coffee-machine/domain/machine"
	"github.com/giovaniif/coffee-machine/domain/menu"
	"github.com/giovaniif/coffee-machine/domain/money"
	"github.com/giovaniif/coffee-machine/domain/order"
)

type mockMachineRepository struct {
	state machine.State
}

func (m *mockMachineRepository) Get(ctx context.Context) (machine.State, error) {
	return m.state.Clone(), nil
}

func (m *mockMachineRepository) Update(ctx context.Context, fn func(state *machine.State) error) error {
	next := m.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	m.state = next
	return nil
}

func withOpenOrder(t *testing.T) *mockMachineRepository {
	t.Helper()
	m := menu.Default()
	item, err := m.Lookup("Cappuccino")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	state := machine.New(m)
	state.Open(order.New("order-1", item, time.Now()))
	return &mockMachineRepository{state: state}
}

func TestCancelOpenOrder(t *testing.T) {
	repo := withOpenOrder(t)
	uc := NewCancel(repo)

	out, err := uc.Cancel(context.Background(), Input{OrderId: "order-1"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.OrderId != "order-1" || out.Drink != "Cappuccino" {
		t.Fatalf("unexpected output %+v", out)
	}
	if repo.state.Phase() != order.Idle {
		t.Fatalf("expected machine to be idle, got %s", repo.state.Phase())
	}
	if repo.state.Profit != money.Zero || repo.state.Inventory.Level(menu.Coffee) != 100000 {
		t.Fatalf("expected stock and profit untouched")
	}
}

func TestCancelUnknownOrder(t *testing.T) {
	repo := withOpenOrder(t)
	uc := NewCancel(repo)

	_, err := uc.Cancel(context.Background(), Input{OrderId: "order-9"})
	if !errors.Is(err, order.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if repo.state.Phase() != order.Selected {
		t.Fatalf("expected open order to survive, got %s", repo.state.Phase())
	}
}

func TestCancelTwice(t *testing.T) {
	repo := withOpenOrder(t)
	uc := NewCancel(repo)

	if _, err := uc.Cancel(context.Background(), Input{OrderId: "order-1"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := uc.Cancel(context.Background(), Input{OrderId: "order-1"}); !errors.Is(err, order.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
