package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"ticketly/internal/inventory"
	"ticketly/internal/shared/apperr"
)

// fakeRepo is an in-memory reservation ledger.
type fakeRepo struct {
	entries []SeatReservation
}

func (f *fakeRepo) Create(_ context.Context, eventID uuid.UUID, seatID string) error {
	for _, e := range f.entries {
		if e.EventID == eventID && e.SeatID == seatID {
			return nil
		}
	}
	f.entries = append(f.entries, SeatReservation{ID: uuid.New(), EventID: eventID, SeatID: seatID, CreatedAt: time.Now()})
	return nil
}

func (f *fakeRepo) DeleteBySeat(_ context.Context, eventID uuid.UUID, seatID string) error {
	f.entries = deleteIf(f.entries, func(e SeatReservation) bool {
		return e.EventID == eventID && e.SeatID == seatID
	})
	return nil
}

func (f *fakeRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	f.entries = deleteIf(f.entries, func(e SeatReservation) bool { return e.ID == id })
	return nil
}

func (f *fakeRepo) FindExpired(_ context.Context, cutoff time.Time) ([]SeatReservation, error) {
	var out []SeatReservation
	for _, e := range f.entries {
		if e.CreatedAt.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out, nil
}

func deleteIf(entries []SeatReservation, match func(SeatReservation) bool) []SeatReservation {
	out := entries[:0]
	for _, e := range entries {
		if !match(e) {
			out = append(out, e)
		}
	}
	return out
}

// fakeInventory holds per-event inventories and applies mutations directly.
type fakeInventory struct {
	events map[uuid.UUID]*inventory.EventInventory
	err    error
}

func (f *fakeInventory) Mutate(_ context.Context, eventID uuid.UUID, fn func(inv *inventory.EventInventory) error) (*inventory.EventInventory, error) {
	if f.err != nil {
		return nil, f.err
	}
	inv, ok := f.events[eventID]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "event %s not found", eventID)
	}
	if err := fn(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func seatInventory(eventID uuid.UUID, statuses map[string]string) *inventory.EventInventory {
	inv := &inventory.EventInventory{EventID: eventID}
	for seatID, status := range statuses {
		inv.Seats = append(inv.Seats, inventory.Seat{SeatID: seatID, Status: status, Price: 50})
	}
	return inv
}

func TestSweepReleasesOnlyExpiredPendingSeats(t *testing.T) {
	t.Parallel()

	eventID := uuid.New()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	repo := &fakeRepo{entries: []SeatReservation{
		// Expired and still pending: released.
		{ID: uuid.New(), EventID: eventID, SeatID: "A1", CreatedAt: now.Add(-20 * time.Minute)},
		// Expired but booked meanwhile: skipped, row still removed.
		{ID: uuid.New(), EventID: eventID, SeatID: "A2", CreatedAt: now.Add(-20 * time.Minute)},
		// Fresh hold: not scanned at all.
		{ID: uuid.New(), EventID: eventID, SeatID: "A3", CreatedAt: now.Add(-5 * time.Minute)},
	}}
	inv := &fakeInventory{events: map[uuid.UUID]*inventory.EventInventory{
		eventID: seatInventory(eventID, map[string]string{
			"A1": inventory.SeatPending,
			"A2": inventory.SeatBooked,
			"A3": inventory.SeatPending,
		}),
	}}

	sweeper := NewSweeper(repo, inv, 15*time.Minute)
	sweeper.SetClock(func() time.Time { return now })

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if result.Scanned != 2 || result.Released != 1 || result.Skipped != 1 || result.Failed != 0 {
		t.Errorf("result = %+v, want scanned 2, released 1, skipped 1", result)
	}

	seats := inv.events[eventID]
	if got := seats.FindSeat("A1").Status; got != inventory.SeatAvailable {
		t.Errorf("A1 status = %s, want available", got)
	}
	if got := seats.FindSeat("A2").Status; got != inventory.SeatBooked {
		t.Errorf("A2 status = %s, want booked untouched", got)
	}
	if got := seats.FindSeat("A3").Status; got != inventory.SeatPending {
		t.Errorf("A3 status = %s, want pending untouched", got)
	}

	// Processed rows are gone, the fresh hold remains.
	if len(repo.entries) != 1 || repo.entries[0].SeatID != "A3" {
		t.Errorf("remaining ledger entries = %+v, want only A3", repo.entries)
	}
}

func TestSweepKeepsRowWhenReleaseFails(t *testing.T) {
	t.Parallel()

	eventID := uuid.New()
	now := time.Now()

	repo := &fakeRepo{entries: []SeatReservation{
		{ID: uuid.New(), EventID: eventID, SeatID: "A1", CreatedAt: now.Add(-time.Hour)},
	}}
	inv := &fakeInventory{err: apperr.New(apperr.KindVersionConflict, "storage busy")}

	sweeper := NewSweeper(repo, inv, 15*time.Minute)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	// The row survives for the next pass so the seat cannot leak in pending.
	if len(repo.entries) != 1 {
		t.Errorf("ledger entries = %d, want 1 retained", len(repo.entries))
	}
}

func TestSweepHandlesVanishedEvent(t *testing.T) {
	t.Parallel()

	now := time.Now()

	repo := &fakeRepo{entries: []SeatReservation{
		// The event was deleted after the hold was taken; no inventory exists.
		{ID: uuid.New(), EventID: uuid.New(), SeatID: "A1", CreatedAt: now.Add(-time.Hour)},
	}}
	inv := &fakeInventory{events: map[uuid.UUID]*inventory.EventInventory{}}

	sweeper := NewSweeper(repo, inv, 15*time.Minute)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if result.Skipped != 1 || result.Failed != 0 {
		t.Errorf("result = %+v, want the vanished event skipped, not failed", result)
	}
	// The row's purpose is spent; retaining it would re-scan it forever.
	if len(repo.entries) != 0 {
		t.Errorf("ledger entries = %d, want stale row removed", len(repo.entries))
	}
}

func TestSweepHandlesVanishedSeat(t *testing.T) {
	t.Parallel()

	eventID := uuid.New()
	now := time.Now()

	repo := &fakeRepo{entries: []SeatReservation{
		{ID: uuid.New(), EventID: eventID, SeatID: "GONE", CreatedAt: now.Add(-time.Hour)},
	}}
	inv := &fakeInventory{events: map[uuid.UUID]*inventory.EventInventory{
		eventID: seatInventory(eventID, map[string]string{"A1": inventory.SeatAvailable}),
	}}

	sweeper := NewSweeper(repo, inv, 15*time.Minute)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if result.Skipped != 1 || result.Failed != 0 {
		t.Errorf("result = %+v, want the vanished seat skipped cleanly", result)
	}
	if len(repo.entries) != 0 {
		t.Errorf("ledger entries = %d, want stale row removed", len(repo.entries))
	}
}
