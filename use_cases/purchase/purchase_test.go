package purchase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/giovaniif/coffee-machine/domain/inventory"
	"github.com/giovaniif/coffee-machine/domain/machine"
	"github.com/giovaniif/coffee-machine/domain/menu"
	"github.com/giovaniif/coffee-machine/domain/money"
	"github.com/giovaniif/coffee-machine/domain/order"
	"github.com/giovaniif/coffee-machine/domain/payment"
	"github.com/giovaniif/coffee-machine/infra"
	protocols "github.com/giovaniif/coffee-machine/protocols"
)

type mockMachineRepository struct {
	state   machine.State
	updates int
}

func (m *mockMachineRepository) Get(ctx context.Context) (machine.State, error) {
	return m.state.Clone(), nil
}

func (m *mockMachineRepository) Update(ctx context.Context, fn func(state *machine.State) error) error {
	m.updates++
	next := m.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	m.state = next
	return nil
}

type mockIdempotencyGateway struct {
	reserveResult *protocols.IdempotencyKeyResult
	reserveErr    error
	successKeys   []string
	successSales  []protocols.Sale
	failureKeys   []string
	markCtxErrs   []error
}

func (m *mockIdempotencyGateway) ReserveIdempotencyKey(ctx context.Context, idempotencyKey string) (*protocols.IdempotencyKeyResult, error) {
	return m.reserveResult, m.reserveErr
}

func (m *mockIdempotencyGateway) MarkFailure(ctx context.Context, idempotencyKey string) error {
	m.markCtxErrs = append(m.markCtxErrs, ctx.Err())
	m.failureKeys = append(m.failureKeys, idempotencyKey)
	return nil
}

func (m *mockIdempotencyGateway) MarkSuccess(ctx context.Context, idempotencyKey string, sale protocols.Sale) error {
	m.markCtxErrs = append(m.markCtxErrs, ctx.Err())
	m.successKeys = append(m.successKeys, idempotencyKey)
	m.successSales = append(m.successSales, sale)
	return nil
}

type mockSalesJournal struct {
	recorded  []protocols.Sale
	recordErr error
}

func (m *mockSalesJournal) Record(ctx context.Context, sale protocols.Sale) error {
	m.recorded = append(m.recorded, sale)
	return m.recordErr
}

type mockSalesPublisher struct {
	published  []protocols.Sale
	publishErr error
	ctxErrs    []error
}

func (m *mockSalesPublisher) Publish(ctx context.Context, sale protocols.Sale) error {
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	m.published = append(m.published, sale)
	return m.publishErr
}

type mockSleeper struct {
	slept []time.Duration
}

func (m *mockSleeper) Sleep(duration time.Duration) {
	m.slept = append(m.slept, duration)
}

type mockMetrics struct {
	dispensed []string
	rejected  []string
	shortages []string
}

func (m *mockMetrics) DrinkDispensed(drink string, price money.Amount) {
	m.dispensed = append(m.dispensed, drink)
}
func (m *mockMetrics) PaymentRejected(drink string) {
	m.rejected = append(m.rejected, drink)
}
func (m *mockMetrics) StockShortage(ingredient string) {
	m.shortages = append(m.shortages, ingredient)
}
func (m *mockMetrics) Levels(levels map[string]int, profit money.Amount) {}

type fixture struct {
	repo        *mockMachineRepository
	idempotency *mockIdempotencyGateway
	journal     *mockSalesJournal
	publisher   *mockSalesPublisher
	sleeper     *mockSleeper
	metrics     *mockMetrics
	uc          *Purchase
}

func newFixture(t *testing.T, drink string) *fixture {
	t.Helper()
	m := menu.Default()
	state := machine.New(m)
	item, err := m.Lookup(drink)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	o := order.New("order-1", item, time.Unix(0, 0))
	_ = o.AwaitPayment()
	state.Open(o)

	f := &fixture{
		repo:        &mockMachineRepository{state: state},
		idempotency: &mockIdempotencyGateway{},
		journal:     &mockSalesJournal{},
		publisher:   &mockSalesPublisher{},
		sleeper:     &mockSleeper{},
		metrics:     &mockMetrics{},
	}
	f.uc = NewPurchase(f.repo, f.idempotency, f.journal, f.publisher, f.sleeper, f.metrics, zap.NewNop())
	f.uc.now = func() time.Time { return time.Unix(200, 0) }
	return f
}

func TestPayExactAmount(t *testing.T) {
	f := newFixture(t, "Latte")

	out, err := f.uc.Pay(context.Background(), Input{OrderId: "order-1", Coins: payment.Coins{Quarters: 10}})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Message != "Here is your Latte 🥛! Enjoy!" || out.Change != money.Zero || out.Tendered != money.Cents(250) {
		t.Fatalf("unexpected output %+v", out)
	}
	if f.repo.state.Profit != money.Cents(250) {
		t.Fatalf("expected profit 250, got %d", f.repo.state.Profit)
	}
	inv := f.repo.state.Inventory
	if inv.Level(menu.Water) != 300000-200 || inv.Level(menu.Milk) != 200000-150 || inv.Level(menu.Coffee) != 100000-24 {
		t.Fatalf("unexpected levels %v", inv.Levels())
	}
	if f.repo.state.Phase() != order.Idle {
		t.Fatalf("expected machine to be idle, got %s", f.repo.state.Phase())
	}
	if len(f.journal.recorded) != 1 || f.journal.recorded[0].OrderId != "order-1" {
		t.Fatalf("expected sale to be journaled, got %+v", f.journal.recorded)
	}
	if len(f.publisher.published) != 1 {
		t.Fatalf("expected sale to be published once, got %d", len(f.publisher.published))
	}
	if len(f.metrics.dispensed) != 1 || f.metrics.dispensed[0] != "Latte" {
		t.Fatalf("expected dispensed metric, got %v", f.metrics.dispensed)
	}
	if len(f.idempotency.successKeys)+len(f.idempotency.failureKeys) != 0 {
		t.Fatalf("expected idempotency gateway not to be used without a key")
	}
}

func TestPayWithChange(t *testing.T) {
	f := newFixture(t, "Latte")

	out, err := f.uc.Pay(context.Background(), Input{OrderId: "order-1", Coins: payment.Coins{Quarters: 12}})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Change != money.Cents(50) {
		t.Fatalf("expected change 0.50, got %s", out.Change)
	}
	if f.repo.state.Profit != money.Cents(250) {
		t.Fatalf("expected profit to grow by the price only, got %d", f.repo.state.Profit)
	}
}

func TestPayInsufficient(t *testing.T) {
	f := newFixture(t, "Latte")

	_, err := f.uc.Pay(context.Background(), Input{OrderId: "order-1", Coins: payment.Coins{Quarters: 8}})
	if !errors.Is(err, payment.ErrInsufficientPayment) {
		t.Fatalf("expected ErrInsufficientPayment, got %v", err)
	}
	var rejected *payment.RejectedError
	if !errors.As(err, &rejected) || rejected.Tendered != money.Cents(200) || rejected.Price != money.Cents(250) {
		t.Fatalf("unexpected rejection %+v", rejected)
	}
	if f.repo.state.Profit != money.Zero {
		t.Fatalf("expected profit untouched, got %d", f.repo.state.Profit)
	}
	if f.repo.state.Inventory.Level(menu.Milk) != 200000 {
		t.Fatalf("expected stock untouched, got %d", f.repo.state.Inventory.Level(menu.Milk))
	}
	if f.repo.state.Phase() != order.Idle {
		t.Fatalf("expected machine back to idle, got %s", f.repo.state.Phase())
	}
	if len(f.journal.recorded) != 0 || len(f.publisher.published) != 0 {
		t.Fatalf("expected nothing journaled or published")
	}
	if len(f.metrics.rejected) != 1 || f.metrics.rejected[0] != "Latte" {
		t.Fatalf("expected rejection metric for Latte, got %v", f.metrics.rejected)
	}
}

func TestPayUnknownOrder(t *testing.T) {
	f := newFixture(t, "Espresso")

	_, err := f.uc.Pay(context.Background(), Input{OrderId: "order-2", Coins: payment.Coins{Quarters: 10}})
	if !errors.Is(err, order.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestPayInvalidCoins(t *testing.T) {
	f := newFixture(t, "Espresso")

	_, err := f.uc.Pay(context.Background(), Input{OrderId: "order-1", Coins: payment.Coins{Pennies: -1}})
	if !errors.Is(err, ErrInvalidCoins) {
		t.Fatalf("expected ErrInvalidCoins, got %v", err)
	}
	if f.repo.updates != 0 {
		t.Fatalf("expected no state update, got %d", f.repo.updates)
	}
}

func TestPayStockTakenSinceSelection(t *testing.T) {
	f := newFixture(t, "Espresso")
	inv, _ := inventory.New([]string{menu.Water, menu.Milk, menu.Coffee}, map[string]int{menu.Water: 1000, menu.Milk: 1000, menu.Coffee: 5})
	f.repo.state.Inventory = inv

	_, err := f.uc.Pay(context.Background(), Input{OrderId: "order-1", Coins: payment.Coins{Quarters: 6}})
	if !errors.Is(err, inventory.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if f.repo.state.Profit != money.Zero || f.repo.state.Inventory.Level(menu.Coffee) != 5 {
		t.Fatalf("expected state untouched")
	}
	if f.repo.state.Phase() != order.Idle {
		t.Fatalf("expected order to be closed, got %s", f.repo.state.Phase())
	}
	if len(f.metrics.shortages) != 1 || f.metrics.shortages[0] != menu.Coffee {
		t.Fatalf("expected coffee shortage metric, got %v", f.metrics.shortages)
	}
}

func TestPayIdempotencySuccess(t *testing.T) {
	f := newFixture(t, "Espresso")

	_, err := f.uc.Pay(context.Background(), Input{OrderId: "order-1", Coins: payment.Coins{Quarters: 6}, IdempotencyKey: "key-1"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(f.idempotency.successKeys) != 1 || f.idempotency.successKeys[0] != "key-1" {
		t.Fatalf("expected MarkSuccess called with key-1, got %v", f.idempotency.successKeys)
	}
	if f.idempotency.successSales[0].Drink != "Espresso" {
		t.Fatalf("expected stored sale for espresso, got %+v", f.idempotency.successSales[0])
	}
}

func TestPayIdempotencyFailureOnRejection(t *testing.T) {
	f := newFixture(t, "Espresso")

	_, _ = f.uc.Pay(context.Background(), Input{OrderId: "order-1", Coins: payment.Coins{Quarters: 1}, IdempotencyKey: "key-2"})
	if len(f.idempotency.failureKeys) != 1 || f.idempotency.failureKeys[0] != "key-2" {
		t.Fatalf("expected MarkFailure called with key-2, got %v", f.idempotency.failureKeys)
	}
	if len(f.idempotency.successKeys) != 0 {
		t.Fatalf("expected MarkSuccess not to be called")
	}
}

func TestPayIdempotencyReplay(t *testing.T) {
	f := newFixture(t, "Espresso")
	f.idempotency.reserveResult = &protocols.IdempotencyKeyResult{
		Success: true,
		Sale:    &protocols.Sale{OrderId: "order-1", Drink: "Espresso", Change: money.Cents(25), Message: "Here is your Espresso ☕! Enjoy!"},
	}

	out, err := f.uc.Pay(context.Background(), Input{OrderId: "order-1", Coins: payment.Coins{Quarters: 7}, IdempotencyKey: "key-3"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !out.Replayed || out.Change != money.Cents(25) {
		t.Fatalf("unexpected output %+v", out)
	}
	if f.repo.updates != 0 || f.repo.state.Profit != money.Zero {
		t.Fatalf("expected replay not to touch the machine")
	}
}

func TestPayIdempotencyKeyReusedForAnotherOrder(t *testing.T) {
	f := newFixture(t, "Cappuccino")
	f.idempotency.reserveResult = &protocols.IdempotencyKeyResult{
		Success: true,
		Sale:    &protocols.Sale{OrderId: "order-0", Drink: "Espresso", Message: "Here is your Espresso ☕! Enjoy!"},
	}

	_, err := f.uc.Pay(context.Background(), Input{OrderId: "order-1", Coins: payment.Coins{Quarters: 12}, IdempotencyKey: "key-1"})
	if !errors.Is(err, ErrKeyReused) {
		t.Fatalf("expected ErrKeyReused, got %v", err)
	}
	if f.repo.updates != 0 || f.repo.state.Phase() != order.AwaitingPayment {
		t.Fatalf("expected order-1 to stay awaiting payment")
	}
	if len(f.idempotency.failureKeys) != 0 || len(f.idempotency.successKeys) != 0 {
		t.Fatalf("expected the stored result for key-1 to be left alone")
	}
}

func TestPayBookkeepingSurvivesCancelledRequest(t *testing.T) {
	f := newFixture(t, "Espresso")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.uc.Pay(ctx, Input{OrderId: "order-1", Coins: payment.Coins{Quarters: 6}, IdempotencyKey: "key-5"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(f.idempotency.successKeys) != 1 {
		t.Fatalf("expected MarkSuccess to be called, got %v", f.idempotency.successKeys)
	}
	for _, err := range f.idempotency.markCtxErrs {
		if err != nil {
			t.Fatalf("expected a live context for the idempotency gateway, got %v", err)
		}
	}
	if len(f.publisher.ctxErrs) != 1 || f.publisher.ctxErrs[0] != nil {
		t.Fatalf("expected a live context for the publisher, got %v", f.publisher.ctxErrs)
	}
}

func TestPayRejectsOverflowingCoins(t *testing.T) {
	f := newFixture(t, "Cappuccino")

	_, err := f.uc.Pay(context.Background(), Input{OrderId: "order-1", Coins: payment.Coins{Quarters: 737869762948382065, Pennies: 291}})
	if !errors.Is(err, ErrInvalidCoins) {
		t.Fatalf("expected ErrInvalidCoins, got %v", err)
	}
	if f.repo.updates != 0 || f.repo.state.Profit != money.Zero {
		t.Fatalf("expected the machine to be untouched")
	}
}

func TestPayIdempotencyInProgress(t *testing.T) {
	f := newFixture(t, "Espresso")
	f.idempotency.reserveErr = errors.New("idempotency key is already being processed")

	_, err := f.uc.Pay(context.Background(), Input{OrderId: "order-1", Coins: payment.Coins{Quarters: 6}, IdempotencyKey: "key-4"})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if f.repo.updates != 0 {
		t.Fatalf("expected no state update")
	}
	if len(f.idempotency.failureKeys) != 0 {
		t.Fatalf("expected MarkFailure not to be called for a key owned by another request")
	}
}

func TestPaySaleStandsWhenJournalFails(t *testing.T) {
	f := newFixture(t, "Espresso")
	f.journal.recordErr = errors.New("journal down")

	if _, err := f.uc.Pay(context.Background(), Input{OrderId: "order-1", Coins: payment.Coins{Quarters: 6}}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if f.repo.state.Profit != money.Cents(150) {
		t.Fatalf("expected sale to be booked, got %d", f.repo.state.Profit)
	}
}

func TestPayRetriesRetriablePublishErrors(t *testing.T) {
	f := newFixture(t, "Espresso")
	f.publisher.publishErr = infra.NewNetworkError("broker unreachable")

	if _, err := f.uc.Pay(context.Background(), Input{OrderId: "order-1", Coins: payment.Coins{Quarters: 6}}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(f.publisher.published) != MAX_RETRIES {
		t.Fatalf("expected %d publish attempts, got %d", MAX_RETRIES, len(f.publisher.published))
	}
	if len(f.sleeper.slept) != MAX_RETRIES-1 || f.sleeper.slept[1] != 2*BASE_DELAY {
		t.Fatalf("unexpected backoff %v", f.sleeper.slept)
	}
}

func TestPayDoesNotRetryOtherPublishErrors(t *testing.T) {
	f := newFixture(t, "Espresso")
	f.publisher.publishErr = errors.New("bad payload")

	_, _ = f.uc.Pay(context.Background(), Input{OrderId: "order-1", Coins: payment.Coins{Quarters: 6}})
	if len(f.publisher.published) != 1 {
		t.Fatalf("expected a single publish attempt, got %d", len(f.publisher.published))
	}
	if len(f.sleeper.slept) != 0 {
		t.Fatalf("expected no backoff, got %v", f.sleeper.slept)
	}
}

func TestProfitTracksAcceptedPaymentsOnly(t *testing.T) {
	m := menu.Default()
	repo := &mockMachineRepository{state: machine.New(m)}
	uc := NewPurchase(repo, &mockIdempotencyGateway{}, &mockSalesJournal{}, &mockSalesPublisher{}, &mockSleeper{}, &mockMetrics{}, zap.NewNop())

	payments := []struct {
		drink    string
		quarters int
		accepted bool
	}{
		{"Espresso", 6, true},
		{"Latte", 9, false},
		{"Cappuccino", 13, true},
		{"Espresso", 5, false},
	}

	want := money.Zero
	for i, p := range payments {
		item, _ := m.Lookup(p.drink)
		id := string(rune('a' + i))
		o := order.New(id, item, time.Now())
		_ = o.AwaitPayment()
		repo.state.Open(o)

		_, err := uc.Pay(context.Background(), Input{OrderId: id, Coins: payment.Coins{Quarters: p.quarters}})
		if p.accepted {
			if err != nil {
				t.Fatalf("payment %d: expected nil error, got %v", i, err)
			}
			want = want.Add(item.Price)
		} else if !errors.Is(err, payment.ErrInsufficientPayment) {
			t.Fatalf("payment %d: expected ErrInsufficientPayment, got %v", i, err)
		}
		if repo.state.Profit != want {
			t.Fatalf("payment %d: expected profit %s, got %s", i, want, repo.state.Profit)
		}
	}
}
