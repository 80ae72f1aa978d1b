package reservations

import (
	"context"
	"time"

	"ticketly/internal/inventory"
	"ticketly/internal/shared/apperr"
	"ticketly/pkg/logger"

	"github.com/google/uuid"
)

// InventoryMutator is the slice of the inventory service the sweeper needs.
type InventoryMutator interface {
	Mutate(ctx context.Context, eventID uuid.UUID, fn func(inv *inventory.EventInventory) error) (*inventory.EventInventory, error)
}

// Clock abstracts time.Now for deterministic sweeps in tests.
type Clock func() time.Time

// Sweeper reclaims abandoned seat holds: ledger entries older than the hold
// TTL whose seat is still pending are released back to available.
type Sweeper struct {
	repo      Repository
	inventory InventoryMutator
	holdTTL   time.Duration
	now       Clock
}

// SweepResult summarizes one sweep pass.
type SweepResult struct {
	Scanned  int `json:"scanned"`
	Released int `json:"released"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// NewSweeper creates a sweeper with the given hold TTL.
func NewSweeper(repo Repository, inv InventoryMutator, holdTTL time.Duration) *Sweeper {
	return &Sweeper{
		repo:      repo,
		inventory: inv,
		holdTTL:   holdTTL,
		now:       time.Now,
	}
}

// SetClock overrides the sweeper's time source.
func (s *Sweeper) SetClock(clock Clock) {
	s.now = clock
}

// Sweep processes every expired ledger entry. Per-row failures are isolated:
// one unreadable event never blocks the rest. The ledger row is deleted as
// the last step of each row, after any inventory write, so a crash mid-sweep
// can only cause a redundant re-scan, never a double release or a seat
// leaked in pending forever.
func (s *Sweeper) Sweep(ctx context.Context) (*SweepResult, error) {
	cutoff := s.now().Add(-s.holdTTL)
	entries, err := s.repo.FindExpired(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Scanned: len(entries)}
	log := logger.GetDefault()

	for _, entry := range entries {
		released, err := s.releaseSeat(ctx, entry)
		switch {
		case apperr.IsKind(err, apperr.KindNotFound):
			// The event is gone; there is no inventory left to mutate. Fall
			// through to delete the row like any other spent entry.
			log.Warn("sweeper found ledger entry for vanished event",
				"event_id", entry.EventID.String(), "seat_id", entry.SeatID)
		case err != nil:
			result.Failed++
			log.ErrorWithContext(ctx, "sweeper failed to release seat", err, map[string]interface{}{
				"event_id": entry.EventID.String(),
				"seat_id":  entry.SeatID,
			})
			// Leave the ledger row for the next pass; the inventory was not
			// touched for this entry.
			continue
		}

		if released {
			result.Released++
			log.LogSeatReleased(ctx, entry.EventID.String(), entry.SeatID, "hold expired")
		} else {
			result.Skipped++
		}

		// The ledger entry's purpose is spent once examined, whether or not
		// the seat was still pending.
		if err := s.repo.DeleteByID(ctx, entry.ID); err != nil {
			result.Failed++
			log.ErrorWithContext(ctx, "sweeper failed to delete ledger entry", err, map[string]interface{}{
				"reservation_id": entry.ID.String(),
			})
		}
	}

	return result, nil
}

// releaseSeat returns the seat to available if it is still pending. A seat
// that moved on (booked, issued, already released) or vanished from the map
// is left alone.
func (s *Sweeper) releaseSeat(ctx context.Context, entry SeatReservation) (bool, error) {
	released := false
	_, err := s.inventory.Mutate(ctx, entry.EventID, func(inv *inventory.EventInventory) error {
		seat := inv.FindSeat(entry.SeatID)
		if seat == nil || seat.Status != inventory.SeatPending {
			return nil
		}
		seat.Status = inventory.SeatAvailable
		released = true
		return nil
	})
	return released, err
}

// JobProcessor runs the sweeper on a fixed interval.
type JobProcessor struct {
	sweeper  *Sweeper
	interval time.Duration
	done     chan struct{}
}

// NewJobProcessor creates the background sweep job.
func NewJobProcessor(sweeper *Sweeper, interval time.Duration) *JobProcessor {
	return &JobProcessor{
		sweeper:  sweeper,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start launches the periodic sweep until Stop is called or ctx ends.
func (jp *JobProcessor) Start(ctx context.Context) {
	go jp.run(ctx)
	logger.GetDefault().Info("reservation sweeper started", "interval", jp.interval.String())
}

// Stop halts the periodic sweep.
func (jp *JobProcessor) Stop() {
	close(jp.done)
	logger.GetDefault().Info("reservation sweeper stopped")
}

func (jp *JobProcessor) run(ctx context.Context) {
	ticker := time.NewTicker(jp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			result, err := jp.sweeper.Sweep(ctx)
			if err != nil {
				logger.GetDefault().ErrorWithContext(ctx, "sweep pass failed", err, nil)
				continue
			}
			if result.Scanned > 0 {
				logger.GetDefault().Info("sweep pass finished",
					"scanned", result.Scanned,
					"released", result.Released,
					"skipped", result.Skipped,
					"failed", result.Failed,
				)
			}
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}
