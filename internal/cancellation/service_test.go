package cancellation

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"ticketly/internal/inventory"
	"ticketly/internal/orders"
	"ticketly/internal/shared/apperr"
)

type fakeInventory struct {
	inv *inventory.EventInventory
}

func (f *fakeInventory) Mutate(_ context.Context, eventID uuid.UUID, fn func(inv *inventory.EventInventory) error) (*inventory.EventInventory, error) {
	if f.inv == nil || f.inv.EventID != eventID {
		return nil, apperr.New(apperr.KindNotFound, "event %s not found", eventID)
	}
	work := &inventory.EventInventory{EventID: f.inv.EventID, Version: f.inv.Version}
	work.Seats = append([]inventory.Seat(nil), f.inv.Seats...)
	work.Tickets = append([]inventory.TicketTypeCounter(nil), f.inv.Tickets...)
	if err := fn(work); err != nil {
		return nil, err
	}
	work.Version++
	f.inv = work
	return work, nil
}

type fakeOrderStore struct {
	orders map[uuid.UUID]*orders.Order
}

func (f *fakeOrderStore) GetByID(_ context.Context, id uuid.UUID) (*orders.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "order %s not found", id)
	}
	clone := *order
	return &clone, nil
}

func (f *fakeOrderStore) Update(_ context.Context, order *orders.Order) error {
	clone := *order
	f.orders[order.ID] = &clone
	return nil
}

type fakeAuditRepo struct {
	rows []CanceledTicket
}

func (f *fakeAuditRepo) CreateAll(_ context.Context, rows []CanceledTicket) error {
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeAuditRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]CanceledTicket, error) {
	var out []CanceledTicket
	for _, row := range f.rows {
		if row.OrderID == orderID {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeCatalog struct {
	names map[string]string
}

func (f *fakeCatalog) TicketTypeName(_ context.Context, id string) (string, error) {
	name, ok := f.names[id]
	if !ok {
		return "", apperr.New(apperr.KindNotFound, "ticket type %s not found", id)
	}
	return name, nil
}

type fakeNotifier struct {
	cancelled int
}

func (f *fakeNotifier) OrderCancelled(_ context.Context, _ *orders.Order, _ []CanceledTicket, _ float64) {
	f.cancelled++
}

// completedOrder builds an order holding seats A1 (120), A2 (120) and four
// standing tickets at 35, matching the inventory returned alongside it.
func completedOrder(t *testing.T) (*orders.Order, *fakeInventory) {
	t.Helper()
	eventID := uuid.New()
	order := &orders.Order{
		ID:            uuid.New(),
		EventID:       eventID,
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		SubTotal:      2*120 + 4*35,
		Total:         2*120 + 4*35,
		Status:        orders.OrderCompleted,
	}
	if err := order.SetSeatIDs([]string{"A1", "A2"}); err != nil {
		t.Fatal(err)
	}
	if err := order.SetTicketLines([]orders.TicketLine{{TicketTypeID: "standing", TicketCount: 4}}); err != nil {
		t.Fatal(err)
	}

	pool := 10
	inv := &fakeInventory{inv: &inventory.EventInventory{
		EventID: eventID,
		Seats: []inventory.Seat{
			{SeatID: "A1", Status: inventory.SeatBooked, Price: 120, TicketTypeName: "VIP", TypeID: "vip"},
			{SeatID: "A2", Status: inventory.SeatBooked, Price: 120, TicketTypeName: "VIP", TypeID: "vip"},
		},
		Tickets: []inventory.TicketTypeCounter{
			{TicketTypeID: "standing", Price: 35, TicketCount: &pool, HasTicketCount: true, BookedTicketCount: 4},
		},
	}}
	return order, inv
}

func setupService(order *orders.Order, inv *fakeInventory) (Service, *fakeOrderStore, *fakeAuditRepo) {
	store := &fakeOrderStore{orders: map[uuid.UUID]*orders.Order{order.ID: order}}
	audit := &fakeAuditRepo{}
	catalog := &fakeCatalog{names: map[string]string{"standing": "Standing", "vip": "VIP"}}
	return NewService(audit, store, inv, catalog), store, audit
}

func TestCancelSeatsPartial(t *testing.T) {
	t.Parallel()

	order, inv := completedOrder(t)
	svc, store, audit := setupService(order, inv)

	res, err := svc.CancelSeats(context.Background(), order.ID,
		&CancelSeatsRequest{SeatIDs: []string{"A1", "Z9"}})
	if err != nil {
		t.Fatalf("CancelSeats failed: %v", err)
	}

	if got := inv.inv.FindSeat("A1").Status; got != inventory.SeatAvailable {
		t.Errorf("A1 status = %s, want available", got)
	}
	if got := inv.inv.FindSeat("A2").Status; got != inventory.SeatBooked {
		t.Errorf("A2 status = %s, want still booked", got)
	}
	if res.Reduction != 120 {
		t.Errorf("reduction = %.2f, want 120.00", res.Reduction)
	}
	if res.NewTotal != 380-120 {
		t.Errorf("new total = %.2f, want 260.00", res.NewTotal)
	}
	if len(res.SkippedSeats) != 1 || res.SkippedSeats[0] != "Z9" {
		t.Errorf("skipped = %v, want [Z9]", res.SkippedSeats)
	}
	if res.OrderStatus != orders.OrderCompleted {
		t.Errorf("status = %s, want completed (lines remain)", res.OrderStatus)
	}

	stored, _ := store.GetByID(context.Background(), order.ID)
	if got := stored.DecodeSeatIDs(); len(got) != 1 || got[0] != "A2" {
		t.Errorf("remaining seats = %v, want [A2]", got)
	}
	if len(audit.rows) != 1 || audit.rows[0].Type != LineSeat || *audit.rows[0].SeatID != "A1" {
		t.Errorf("audit rows = %+v, want one seat row for A1", audit.rows)
	}
}

func TestCancelSeatsNoneOwned(t *testing.T) {
	t.Parallel()

	order, inv := completedOrder(t)
	svc, _, _ := setupService(order, inv)

	_, err := svc.CancelSeats(context.Background(), order.ID,
		&CancelSeatsRequest{SeatIDs: []string{"Z1", "Z2"}})
	if !apperr.IsKind(err, apperr.KindEmptySelection) {
		t.Errorf("error = %v, want empty selection", err)
	}
}

func TestCancelSeatsMissingFromInventoryUsesFallback(t *testing.T) {
	t.Parallel()

	order, inv := completedOrder(t)
	// Layout change removed A1 from the seat map.
	inv.inv.Seats = inv.inv.Seats[1:]
	svc, _, _ := setupService(order, inv)

	res, err := svc.CancelSeats(context.Background(), order.ID,
		&CancelSeatsRequest{SeatIDs: []string{"A1"}, FallbackPrice: 99})
	if err != nil {
		t.Fatalf("CancelSeats failed: %v", err)
	}
	if res.Reduction != 99 {
		t.Errorf("reduction = %.2f, want fallback 99.00", res.Reduction)
	}
}

func TestCancelCounted(t *testing.T) {
	t.Parallel()

	order, inv := completedOrder(t)
	svc, store, audit := setupService(order, inv)
	notifier := &fakeNotifier{}
	svc.SetNotifier(notifier)

	res, err := svc.CancelCounted(context.Background(), order.ID,
		&CancelCountedRequest{TicketTypeID: "standing", Quantity: 3})
	if err != nil {
		t.Fatalf("CancelCounted failed: %v", err)
	}

	if got := inv.inv.FindCounter("standing").BookedTicketCount; got != 1 {
		t.Errorf("booked count = %d, want 1", got)
	}
	if res.Reduction != 3*35 {
		t.Errorf("reduction = %.2f, want 105.00", res.Reduction)
	}

	stored, _ := store.GetByID(context.Background(), order.ID)
	lines := stored.DecodeTicketLines()
	if len(lines) != 1 || lines[0].TicketCount != 1 {
		t.Errorf("remaining lines = %+v, want one line of 1", lines)
	}
	// A single aggregated audit row, not one per unit; its price is the
	// batch's whole reduction.
	if len(audit.rows) != 1 || audit.rows[0].Quantity != 3 || audit.rows[0].TicketTypeName != "Standing" {
		t.Errorf("audit rows = %+v, want one row of quantity 3 named Standing", audit.rows)
	}
	if got := audit.rows[0].Price; got != 105 {
		t.Errorf("audit row price = %.2f, want the 105.00 batch reduction", got)
	}
	if notifier.cancelled != 1 {
		t.Errorf("cancellation notifications = %d, want 1", notifier.cancelled)
	}
}

func TestCancelCountedValidation(t *testing.T) {
	t.Parallel()

	order, inv := completedOrder(t)
	svc, _, _ := setupService(order, inv)

	cases := []struct {
		name string
		req  CancelCountedRequest
		kind apperr.Kind
	}{
		{"zero quantity", CancelCountedRequest{TicketTypeID: "standing", Quantity: 0}, apperr.KindInvalidInput},
		{"unknown type", CancelCountedRequest{TicketTypeID: "balcony", Quantity: 1}, apperr.KindNotFound},
		{"more than held", CancelCountedRequest{TicketTypeID: "standing", Quantity: 5}, apperr.KindInsufficientQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CancelCounted(context.Background(), order.ID, &tc.req); !apperr.IsKind(err, tc.kind) {
				t.Errorf("error = %v, want kind %v", err, tc.kind)
			}
		})
	}
}

func TestCancelCountedRemovesEmptyLine(t *testing.T) {
	t.Parallel()

	order, inv := completedOrder(t)
	svc, store, _ := setupService(order, inv)

	if _, err := svc.CancelCounted(context.Background(), order.ID,
		&CancelCountedRequest{TicketTypeID: "standing", Quantity: 4}); err != nil {
		t.Fatalf("CancelCounted failed: %v", err)
	}

	stored, _ := store.GetByID(context.Background(), order.ID)
	if lines := stored.DecodeTicketLines(); len(lines) != 0 {
		t.Errorf("remaining lines = %+v, want none", lines)
	}
	// Seats remain, so the order is not yet cancelled.
	if stored.Status != orders.OrderCompleted {
		t.Errorf("status = %s, want completed", stored.Status)
	}
}

func TestCancelOrderReleasesEverything(t *testing.T) {
	t.Parallel()

	order, inv := completedOrder(t)
	svc, store, audit := setupService(order, inv)

	res, err := svc.CancelOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}

	for _, seatID := range []string{"A1", "A2"} {
		if got := inv.inv.FindSeat(seatID).Status; got != inventory.SeatAvailable {
			t.Errorf("%s status = %s, want available", seatID, got)
		}
	}
	if got := inv.inv.FindCounter("standing").BookedTicketCount; got != 0 {
		t.Errorf("booked count = %d, want 0", got)
	}
	if res.Reduction != 380 {
		t.Errorf("reduction = %.2f, want 380.00", res.Reduction)
	}
	if res.NewTotal != 0 {
		t.Errorf("new total = %.2f, want 0.00", res.NewTotal)
	}
	if res.OrderStatus != orders.OrderCancelled {
		t.Errorf("status = %s, want cancelled", res.OrderStatus)
	}

	stored, _ := store.GetByID(context.Background(), order.ID)
	if stored.Status != orders.OrderCancelled {
		t.Errorf("stored status = %s, want cancelled", stored.Status)
	}
	if got := stored.DecodeSeatIDs(); len(got) != 0 {
		t.Errorf("remaining seats = %v, want none", got)
	}
	// Two seat rows plus one aggregated counted row.
	if len(audit.rows) != 3 {
		t.Fatalf("audit rows = %d, want 3", len(audit.rows))
	}
	for _, row := range audit.rows {
		switch row.Type {
		case LineSeat:
			if row.Price != 120 {
				t.Errorf("seat row price = %.2f, want 120.00", row.Price)
			}
		case LineCounted:
			if row.Quantity != 4 || row.Price != 4*35 {
				t.Errorf("counted row = %+v, want quantity 4 at the 140.00 batch reduction", row)
			}
		}
	}
}

func TestCancelRequiresCompletedOrder(t *testing.T) {
	t.Parallel()

	order, inv := completedOrder(t)
	order.Status = orders.OrderPending
	svc, _, _ := setupService(order, inv)

	if _, err := svc.CancelOrder(context.Background(), order.ID); !apperr.IsKind(err, apperr.KindInvalidState) {
		t.Errorf("error = %v, want invalid state", err)
	}
	if _, err := svc.CancelSeats(context.Background(), order.ID,
		&CancelSeatsRequest{SeatIDs: []string{"A1"}}); !apperr.IsKind(err, apperr.KindInvalidState) {
		t.Errorf("error = %v, want invalid state", err)
	}
}

func TestCancelCountedCounterFloorsAtZero(t *testing.T) {
	t.Parallel()

	order, inv := completedOrder(t)
	// Drift: the counter says fewer booked than the order holds.
	inv.inv.FindCounter("standing").BookedTicketCount = 2
	svc, _, _ := setupService(order, inv)

	if _, err := svc.CancelCounted(context.Background(), order.ID,
		&CancelCountedRequest{TicketTypeID: "standing", Quantity: 4}); err != nil {
		t.Fatalf("CancelCounted failed: %v", err)
	}
	if got := inv.inv.FindCounter("standing").BookedTicketCount; got != 0 {
		t.Errorf("booked count = %d, want floored at 0", got)
	}
}
