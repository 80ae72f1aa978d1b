package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"ticketly/internal/shared/apperr"
)

// fakeStore keeps one event's inventory in memory and can inject version
// conflicts on save.
type fakeStore struct {
	inv       *EventInventory
	conflicts int
	saves     int
}

func (f *fakeStore) Load(_ context.Context, eventID uuid.UUID) (*EventInventory, error) {
	if f.inv == nil || f.inv.EventID != eventID {
		return nil, apperr.New(apperr.KindNotFound, "event %s not found", eventID)
	}
	return copyInventory(f.inv), nil
}

func (f *fakeStore) Save(_ context.Context, inv *EventInventory) error {
	f.saves++
	if f.conflicts > 0 {
		f.conflicts--
		return apperr.New(apperr.KindVersionConflict, "event %s inventory changed concurrently", inv.EventID)
	}
	inv.Version++
	f.inv = copyInventory(inv)
	return nil
}

func copyInventory(inv *EventInventory) *EventInventory {
	out := &EventInventory{EventID: inv.EventID, Version: inv.Version}
	out.Seats = append([]Seat(nil), inv.Seats...)
	out.Tickets = append([]TicketTypeCounter(nil), inv.Tickets...)
	return out
}

type fakeLedger struct {
	created   []string
	deleted   []string
	createErr error
}

func (f *fakeLedger) Create(_ context.Context, _ uuid.UUID, seatID string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, seatID)
	return nil
}

func (f *fakeLedger) DeleteBySeat(_ context.Context, _ uuid.UUID, seatID string) error {
	f.deleted = append(f.deleted, seatID)
	return nil
}

type fakeCatalog struct{ names map[string]string }

func (f *fakeCatalog) TicketTypeName(_ context.Context, id string) (string, error) {
	if name, ok := f.names[id]; ok {
		return name, nil
	}
	return "", apperr.New(apperr.KindNotFound, "ticket type %s not found", id)
}

func testInventory(eventID uuid.UUID) *EventInventory {
	pool := 10
	return &EventInventory{
		EventID: eventID,
		Version: 3,
		Seats: []Seat{
			{SeatID: "A1", Status: SeatAvailable, Price: 120, TicketTypeName: "VIP", TypeID: "vip"},
			{SeatID: "A2", Status: SeatAvailable, Price: 120, TicketTypeName: "VIP", TypeID: "vip"},
		},
		Tickets: []TicketTypeCounter{
			{TicketTypeID: "standing", Price: 35, TicketCount: &pool, HasTicketCount: true, BookedTicketCount: 4},
		},
	}
}

func TestSelectUnselectRoundTrip(t *testing.T) {
	t.Parallel()

	eventID := uuid.New()
	store := &fakeStore{inv: testInventory(eventID)}
	ledger := &fakeLedger{}
	svc := NewService(store, ledger, &fakeCatalog{})

	seat, err := svc.SelectSeat(context.Background(), eventID, "A1")
	if err != nil {
		t.Fatalf("SelectSeat failed: %v", err)
	}
	if seat.Status != SeatPending {
		t.Errorf("selected seat status = %s, want pending", seat.Status)
	}
	if len(ledger.created) != 1 || ledger.created[0] != "A1" {
		t.Errorf("ledger entries = %v, want [A1]", ledger.created)
	}

	// A second hold on the same seat must be refused.
	if _, err := svc.SelectSeat(context.Background(), eventID, "A1"); !apperr.IsKind(err, apperr.KindInvalidState) {
		t.Errorf("double select error = %v, want invalid state", err)
	}

	released, err := svc.UnselectSeat(context.Background(), eventID, "A1")
	if err != nil {
		t.Fatalf("UnselectSeat failed: %v", err)
	}
	if released.Status != SeatAvailable {
		t.Errorf("released seat status = %s, want available", released.Status)
	}
	// Price and type survive the full cycle untouched.
	if released.Price != 120 || released.TicketTypeName != "VIP" || released.TypeID != "vip" {
		t.Errorf("seat fields changed during hold cycle: %+v", released)
	}
	if len(ledger.deleted) != 1 || ledger.deleted[0] != "A1" {
		t.Errorf("ledger deletions = %v, want [A1]", ledger.deleted)
	}
}

func TestUnselectRequiresPending(t *testing.T) {
	t.Parallel()

	eventID := uuid.New()
	svc := NewService(&fakeStore{inv: testInventory(eventID)}, &fakeLedger{}, &fakeCatalog{})

	if _, err := svc.UnselectSeat(context.Background(), eventID, "A1"); !apperr.IsKind(err, apperr.KindInvalidState) {
		t.Errorf("unselect of available seat = %v, want invalid state", err)
	}
	if _, err := svc.UnselectSeat(context.Background(), eventID, "Z9"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("unselect of unknown seat = %v, want not found", err)
	}
}

func TestSelectSeatUndoesHoldOnLedgerError(t *testing.T) {
	t.Parallel()

	eventID := uuid.New()
	store := &fakeStore{inv: testInventory(eventID)}
	ledger := &fakeLedger{createErr: apperr.New(apperr.KindUnknown, "ledger down")}
	svc := NewService(store, ledger, &fakeCatalog{})

	if _, err := svc.SelectSeat(context.Background(), eventID, "A1"); err == nil {
		t.Fatal("expected error when ledger write fails")
	}
	if got := store.inv.FindSeat("A1").Status; got != SeatAvailable {
		t.Errorf("seat status after failed hold = %s, want available", got)
	}
}

func TestMutateRetriesVersionConflict(t *testing.T) {
	t.Parallel()

	eventID := uuid.New()
	store := &fakeStore{inv: testInventory(eventID), conflicts: 2}
	svc := NewService(store, &fakeLedger{}, &fakeCatalog{})

	calls := 0
	_, err := svc.Mutate(context.Background(), eventID, func(inv *EventInventory) error {
		calls++
		inv.FindSeat("A2").Status = SeatBooked
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate failed after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("mutation applied %d times, want 3 (fresh load per attempt)", calls)
	}
	if got := store.inv.FindSeat("A2").Status; got != SeatBooked {
		t.Errorf("seat status = %s, want booked", got)
	}
}

func TestMutateGivesUpAfterBoundedRetries(t *testing.T) {
	t.Parallel()

	eventID := uuid.New()
	store := &fakeStore{inv: testInventory(eventID), conflicts: 5}
	svc := NewService(store, &fakeLedger{}, &fakeCatalog{})

	_, err := svc.Mutate(context.Background(), eventID, func(inv *EventInventory) error { return nil })
	if !apperr.IsKind(err, apperr.KindVersionConflict) {
		t.Errorf("error = %v, want version conflict", err)
	}
	if store.saves != 3 {
		t.Errorf("save attempts = %d, want 3", store.saves)
	}
}

func TestMutateFnErrorSkipsSave(t *testing.T) {
	t.Parallel()

	eventID := uuid.New()
	store := &fakeStore{inv: testInventory(eventID)}
	svc := NewService(store, &fakeLedger{}, &fakeCatalog{})

	_, err := svc.Mutate(context.Background(), eventID, func(inv *EventInventory) error {
		inv.FindSeat("A1").Status = SeatBooked
		return apperr.New(apperr.KindInvalidState, "refused")
	})
	if !apperr.IsKind(err, apperr.KindInvalidState) {
		t.Fatalf("error = %v, want invalid state", err)
	}
	if store.saves != 0 {
		t.Errorf("save attempts = %d, want 0", store.saves)
	}
	if got := store.inv.FindSeat("A1").Status; got != SeatAvailable {
		t.Errorf("stored seat status = %s, want untouched available", got)
	}
}

func TestListTicketsWithoutSeatsFallsBackToTypeID(t *testing.T) {
	t.Parallel()

	eventID := uuid.New()
	store := &fakeStore{inv: testInventory(eventID)}
	svc := NewService(store, &fakeLedger{}, &fakeCatalog{names: map[string]string{}})

	lines, err := svc.ListTicketsWithoutSeats(context.Background(), eventID)
	if err != nil {
		t.Fatalf("ListTicketsWithoutSeats failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].TicketTypeName != "standing" {
		t.Errorf("unresolved name = %q, want fallback to type id", lines[0].TicketTypeName)
	}
	if lines[0].AvailableCount != 6 {
		t.Errorf("available = %d, want 6", lines[0].AvailableCount)
	}
}
