package orders

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"ticketly/internal/inventory"
	"ticketly/internal/shared/apperr"
)

// fakeInventory mimics the optimistic store: the mutation runs on a copy and
// commits only when fn succeeds.
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

type fakeRepo struct {
	orders    map[uuid.UUID]*Order
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[uuid.UUID]*Order)}
}

func (f *fakeRepo) Create(_ context.Context, order *Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	clone := *order
	f.orders[order.ID] = &clone
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "order %s not found", id)
	}
	clone := *order
	return &clone, nil
}

func (f *fakeRepo) GetByGatewayTxID(_ context.Context, txID string) (*Order, error) {
	for _, order := range f.orders {
		if order.GatewayTxID == txID {
			clone := *order
			return &clone, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "no order for transaction %s", txID)
}

func (f *fakeRepo) Update(_ context.Context, order *Order) error {
	clone := *order
	f.orders[order.ID] = &clone
	return nil
}

func (f *fakeRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]Order, error) {
	var out []Order
	for _, order := range f.orders {
		if order.EventID == eventID {
			out = append(out, *order)
		}
	}
	return out, nil
}

type fakeLedger struct {
	created []string
	deleted []string
}

func (f *fakeLedger) Create(_ context.Context, _ uuid.UUID, seatID string) error {
	f.created = append(f.created, seatID)
	return nil
}

func (f *fakeLedger) DeleteBySeat(_ context.Context, _ uuid.UUID, seatID string) error {
	f.deleted = append(f.deleted, seatID)
	return nil
}

type fakeNotifier struct {
	completed []uuid.UUID
	tickets   []IssuedTicket
	failed    []string
}

func (f *fakeNotifier) OrderCompleted(_ context.Context, order *Order, tickets []IssuedTicket) {
	f.completed = append(f.completed, order.ID)
	f.tickets = append(f.tickets, tickets...)
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

func (f *fakeNotifier) OrderFailed(_ context.Context, _ *Order, reason string) {
	f.failed = append(f.failed, reason)
}

func testSetup(pool, booked int) (uuid.UUID, *fakeInventory, *fakeRepo, *fakeLedger, Service) {
	eventID := uuid.New()
	inv := &fakeInventory{inv: &inventory.EventInventory{
		EventID: eventID,
		Seats: []inventory.Seat{
			{SeatID: "A1", Status: inventory.SeatAvailable, Price: 120, TicketTypeName: "VIP", TypeID: "vip"},
			{SeatID: "A2", Status: inventory.SeatAvailable, Price: 120, TicketTypeName: "VIP", TypeID: "vip"},
		},
		Tickets: []inventory.TicketTypeCounter{
			{TicketTypeID: "standing", Price: 35, TicketCount: &pool, HasTicketCount: true, BookedTicketCount: booked},
		},
	}}
	repo := newFakeRepo()
	ledger := &fakeLedger{}
	svc := NewService(repo, inv, ledger)
	return eventID, inv, repo, ledger, svc
}

func checkoutReq(eventID uuid.UUID, seatIDs []string, tickets []TicketSelection) *CheckoutRequest {
	return &CheckoutRequest{
		EventID:       eventID.String(),
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		SeatIDs:       seatIDs,
		Tickets:       tickets,
	}
}

func TestCheckoutImmediate(t *testing.T) {
	t.Parallel()

	eventID, inv, _, _, svc := testSetup(10, 0)
	notifier := &fakeNotifier{}
	svc.SetNotifier(notifier)

	order, err := svc.Checkout(context.Background(),
		checkoutReq(eventID, []string{"A1"}, []TicketSelection{{TicketTypeID: "standing", TicketCount: 2}}),
		CommitImmediate)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if order.Status != OrderCompleted {
		t.Errorf("status = %s, want completed", order.Status)
	}
	if order.Total != 120+2*35 {
		t.Errorf("total = %.2f, want 190.00", order.Total)
	}
	if got := inv.inv.FindSeat("A1").Status; got != inventory.SeatBooked {
		t.Errorf("A1 status = %s, want booked", got)
	}
	if got := inv.inv.FindCounter("standing").BookedTicketCount; got != 2 {
		t.Errorf("booked count = %d, want 2", got)
	}
	if len(notifier.completed) != 1 {
		t.Errorf("completion notifications = %d, want 1", len(notifier.completed))
	}
}

func TestIssuedTicketsCarryCatalogNames(t *testing.T) {
	t.Parallel()

	eventID, _, _, _, svc := testSetup(10, 0)
	notifier := &fakeNotifier{}
	svc.SetNotifier(notifier)
	svc.SetCatalog(&fakeCatalog{names: map[string]string{"standing": "Standing"}})

	_, err := svc.Checkout(context.Background(),
		checkoutReq(eventID, []string{"A1"}, []TicketSelection{{TicketTypeID: "standing", TicketCount: 2}}),
		CommitImmediate)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if len(notifier.tickets) != 3 {
		t.Fatalf("issued tickets = %d, want 3", len(notifier.tickets))
	}
	for _, ticket := range notifier.tickets {
		want := "Standing"
		if ticket.SeatID != "" {
			want = "VIP"
		}
		if ticket.TicketTypeName != want {
			t.Errorf("ticket %s type name = %q, want %q", ticket.Code, ticket.TicketTypeName, want)
		}
	}
}

func TestCheckoutSoldOutReportsCounts(t *testing.T) {
	t.Parallel()

	eventID, inv, _, _, svc := testSetup(10, 8)

	_, err := svc.Checkout(context.Background(),
		checkoutReq(eventID, nil, []TicketSelection{{TicketTypeID: "standing", TicketCount: 3}}),
		CommitImmediate)
	if !apperr.IsKind(err, apperr.KindSoldOut) {
		t.Fatalf("error = %v, want sold out", err)
	}
	if !strings.Contains(apperr.Message(err), "Available: 2. Requested: 3.") {
		t.Errorf("message = %q, want it to report available 2, requested 3", apperr.Message(err))
	}
	// No partial effects: the counter is untouched.
	if got := inv.inv.FindCounter("standing").BookedTicketCount; got != 8 {
		t.Errorf("booked count = %d, want untouched 8", got)
	}

	// Exactly the remaining quantity still sells.
	if _, err := svc.Checkout(context.Background(),
		checkoutReq(eventID, nil, []TicketSelection{{TicketTypeID: "standing", TicketCount: 2}}),
		CommitImmediate); err != nil {
		t.Fatalf("checkout of remaining quantity failed: %v", err)
	}
	if got := inv.inv.FindCounter("standing").BookedTicketCount; got != 10 {
		t.Errorf("booked count = %d, want 10 after selling out", got)
	}
}

func TestCheckoutSeatConflictRollsBackWholeSelection(t *testing.T) {
	t.Parallel()

	eventID, inv, _, _, svc := testSetup(10, 0)
	inv.inv.FindSeat("A2").Status = inventory.SeatBooked

	_, err := svc.Checkout(context.Background(),
		checkoutReq(eventID, []string{"A1", "A2"}, nil),
		CommitImmediate)
	if !apperr.IsKind(err, apperr.KindInvalidState) {
		t.Fatalf("error = %v, want invalid state", err)
	}
	// A1 was marked inside the failed mutation; nothing may persist.
	if got := inv.inv.FindSeat("A1").Status; got != inventory.SeatAvailable {
		t.Errorf("A1 status = %s, want available", got)
	}
}

func TestCheckoutEmptySelection(t *testing.T) {
	t.Parallel()

	eventID, _, _, _, svc := testSetup(10, 0)

	_, err := svc.Checkout(context.Background(), checkoutReq(eventID, nil, nil), CommitImmediate)
	if !apperr.IsKind(err, apperr.KindEmptySelection) {
		t.Errorf("error = %v, want empty selection", err)
	}
}

func TestCheckoutRejectsDuplicateSeats(t *testing.T) {
	t.Parallel()

	eventID, _, _, _, svc := testSetup(10, 0)

	_, err := svc.Checkout(context.Background(),
		checkoutReq(eventID, []string{"A1", "A1"}, nil), CommitImmediate)
	if !apperr.IsKind(err, apperr.KindInvalidInput) {
		t.Errorf("error = %v, want invalid input", err)
	}
}

func TestCheckoutDeferredHoldsWithoutCommitting(t *testing.T) {
	t.Parallel()

	eventID, inv, _, ledger, svc := testSetup(10, 0)

	order, err := svc.Checkout(context.Background(),
		checkoutReq(eventID, []string{"A1"}, []TicketSelection{{TicketTypeID: "standing", TicketCount: 4}}),
		CommitDeferred)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if order.Status != OrderPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
	if !strings.HasPrefix(order.GatewayTxID, "TXN_") {
		t.Errorf("gateway tx id = %q, want TXN_ prefix", order.GatewayTxID)
	}
	if got := inv.inv.FindSeat("A1").Status; got != inventory.SeatPending {
		t.Errorf("A1 status = %s, want pending", got)
	}
	// Counted capacity is validated but only consumed on gateway accept.
	if got := inv.inv.FindCounter("standing").BookedTicketCount; got != 0 {
		t.Errorf("booked count = %d, want 0 before payment", got)
	}
	if len(ledger.created) != 1 || ledger.created[0] != "A1" {
		t.Errorf("ledger entries = %v, want [A1]", ledger.created)
	}
}

func TestCheckoutDeferredAdoptsExistingHold(t *testing.T) {
	t.Parallel()

	eventID, inv, _, ledger, svc := testSetup(10, 0)
	inv.inv.FindSeat("A1").Status = inventory.SeatPending

	_, err := svc.Checkout(context.Background(), checkoutReq(eventID, []string{"A1"}, nil), CommitDeferred)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	// The already-pending seat keeps its original ledger row.
	if len(ledger.created) != 0 {
		t.Errorf("ledger entries = %v, want none for adopted hold", ledger.created)
	}
}

func TestFinalizeAcceptedCommitsAndIsIdempotent(t *testing.T) {
	t.Parallel()

	eventID, inv, _, ledger, svc := testSetup(10, 0)
	notifier := &fakeNotifier{}
	svc.SetNotifier(notifier)

	order, err := svc.Checkout(context.Background(),
		checkoutReq(eventID, []string{"A1"}, []TicketSelection{{TicketTypeID: "standing", TicketCount: 2}}),
		CommitDeferred)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	settled, err := svc.FinalizeAccepted(context.Background(), order.ID, order.GatewayTxID)
	if err != nil {
		t.Fatalf("FinalizeAccepted failed: %v", err)
	}
	if settled.Status != OrderCompleted {
		t.Errorf("status = %s, want completed", settled.Status)
	}
	if got := inv.inv.FindSeat("A1").Status; got != inventory.SeatBooked {
		t.Errorf("A1 status = %s, want booked", got)
	}
	if got := inv.inv.FindCounter("standing").BookedTicketCount; got != 2 {
		t.Errorf("booked count = %d, want 2 after accept", got)
	}
	if len(ledger.deleted) != 1 || ledger.deleted[0] != "A1" {
		t.Errorf("ledger deletions = %v, want [A1]", ledger.deleted)
	}
	if len(notifier.completed) != 1 {
		t.Errorf("completion notifications = %d, want 1", len(notifier.completed))
	}

	// Replay of the same callback: already processed, no double commit.
	replayed, err := svc.FinalizeAccepted(context.Background(), order.ID, order.GatewayTxID)
	if !apperr.IsKind(err, apperr.KindAlreadyProcessed) {
		t.Fatalf("replay error = %v, want already processed", err)
	}
	if replayed == nil || replayed.Status != OrderCompleted {
		t.Errorf("replay should return the settled order, got %+v", replayed)
	}
	if got := inv.inv.FindCounter("standing").BookedTicketCount; got != 2 {
		t.Errorf("booked count after replay = %d, want still 2", got)
	}
	if len(notifier.completed) != 1 {
		t.Errorf("replay sent another notification: %d", len(notifier.completed))
	}
}

func TestFinalizeAcceptedRejectsWrongTransaction(t *testing.T) {
	t.Parallel()

	eventID, _, _, _, svc := testSetup(10, 0)

	order, err := svc.Checkout(context.Background(), checkoutReq(eventID, []string{"A1"}, nil), CommitDeferred)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if _, err := svc.FinalizeAccepted(context.Background(), order.ID, "TXN_FORGED"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("error = %v, want not found for mismatched transaction", err)
	}
}

func TestFinalizeAcceptedCapacityGone(t *testing.T) {
	t.Parallel()

	eventID, inv, repo, _, svc := testSetup(10, 0)
	notifier := &fakeNotifier{}
	svc.SetNotifier(notifier)

	order, err := svc.Checkout(context.Background(),
		checkoutReq(eventID, nil, []TicketSelection{{TicketTypeID: "standing", TicketCount: 5}}),
		CommitDeferred)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	// Someone else consumed the pool while payment was in flight.
	inv.inv.FindCounter("standing").BookedTicketCount = 8

	_, err = svc.FinalizeAccepted(context.Background(), order.ID, order.GatewayTxID)
	if !apperr.IsKind(err, apperr.KindSoldOut) {
		t.Fatalf("error = %v, want sold out", err)
	}

	stored, _ := repo.GetByID(context.Background(), order.ID)
	if stored.Status != OrderFailed {
		t.Errorf("order status = %s, want failed", stored.Status)
	}
	if got := inv.inv.FindCounter("standing").BookedTicketCount; got != 8 {
		t.Errorf("booked count = %d, want untouched 8", got)
	}
	if len(notifier.failed) != 1 {
		t.Errorf("failure notifications = %d, want 1", len(notifier.failed))
	}
}

func TestFinalizeDeclinedReleasesHolds(t *testing.T) {
	t.Parallel()

	eventID, inv, repo, _, svc := testSetup(10, 0)
	notifier := &fakeNotifier{}
	svc.SetNotifier(notifier)

	order, err := svc.Checkout(context.Background(),
		checkoutReq(eventID, []string{"A1", "A2"}, []TicketSelection{{TicketTypeID: "standing", TicketCount: 1}}),
		CommitDeferred)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	declined, err := svc.FinalizeDeclined(context.Background(), order.ID, order.GatewayTxID)
	if err != nil {
		t.Fatalf("FinalizeDeclined failed: %v", err)
	}
	if declined.Status != OrderFailed {
		t.Errorf("status = %s, want failed", declined.Status)
	}
	for _, seatID := range []string{"A1", "A2"} {
		if got := inv.inv.FindSeat(seatID).Status; got != inventory.SeatAvailable {
			t.Errorf("%s status = %s, want available", seatID, got)
		}
	}
	if got := inv.inv.FindCounter("standing").BookedTicketCount; got != 0 {
		t.Errorf("booked count = %d, want 0 (never committed)", got)
	}
	if len(notifier.failed) != 1 {
		t.Errorf("failure notifications = %d, want 1", len(notifier.failed))
	}

	stored, _ := repo.GetByID(context.Background(), order.ID)
	if stored.Status != OrderFailed {
		t.Errorf("stored status = %s, want failed", stored.Status)
	}
}

func TestCheckoutImmediateRevertsWhenPersistFails(t *testing.T) {
	t.Parallel()

	eventID, inv, repo, _, svc := testSetup(10, 0)
	repo.createErr = apperr.New(apperr.KindUnknown, "database down")

	_, err := svc.Checkout(context.Background(),
		checkoutReq(eventID, []string{"A1"}, []TicketSelection{{TicketTypeID: "standing", TicketCount: 2}}),
		CommitImmediate)
	if err == nil {
		t.Fatal("expected error when order persist fails")
	}
	if got := inv.inv.FindSeat("A1").Status; got != inventory.SeatAvailable {
		t.Errorf("A1 status = %s, want reverted to available", got)
	}
	if got := inv.inv.FindCounter("standing").BookedTicketCount; got != 0 {
		t.Errorf("booked count = %d, want reverted to 0", got)
	}
}
