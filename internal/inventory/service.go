package inventory

import (
	"context"
	"time"

	"ticketly/internal/shared/apperr"
	"ticketly/pkg/cache"
	"ticketly/pkg/logger"

	"github.com/google/uuid"
)

// ReservationLedger records when a pending seat hold started. One entry per
// currently-pending seat; the sweeper reads it to find expired holds.
type ReservationLedger interface {
	Create(ctx context.Context, eventID uuid.UUID, seatID string) error
	DeleteBySeat(ctx context.Context, eventID uuid.UUID, seatID string) error
}

// CatalogResolver resolves ticket-type display data from the catalog.
type CatalogResolver interface {
	TicketTypeName(ctx context.Context, ticketTypeID string) (string, error)
}

// Service exposes the inventory read side plus the seat hold/release flow.
// Mutate is the single entry point every writer (booking, cancellation,
// issuance, sweeper) goes through.
type Service interface {
	// Mutate loads the event's inventory, applies fn to it, and saves the
	// result. A version conflict reloads and retries; fn returning an error
	// leaves storage untouched.
	Mutate(ctx context.Context, eventID uuid.UUID, fn func(inv *EventInventory) error) (*EventInventory, error)

	SeatStatus(ctx context.Context, eventID uuid.UUID, seatID string) (string, error)
	CountAvailable(ctx context.Context, eventID uuid.UUID, ticketTypeID string) (*CountAvailability, error)
	ListTicketsWithoutSeats(ctx context.Context, eventID uuid.UUID) ([]TicketWithoutSeat, error)
	SeatMap(ctx context.Context, eventID uuid.UUID) ([]Seat, error)

	SelectSeat(ctx context.Context, eventID uuid.UUID, seatID string) (*Seat, error)
	UnselectSeat(ctx context.Context, eventID uuid.UUID, seatID string) (*Seat, error)
	ResetSeats(ctx context.Context, eventID uuid.UUID, seatIDs []string) (*ResetResult, error)

	SetCacheService(cacheService cache.Service, ttl time.Duration)
}

// CountAvailability is the read-side answer for one counted ticket type.
type CountAvailability struct {
	TicketTypeID string `json:"ticket_type_id"`
	// Limited is false when the type has no finite pool; Available is then
	// meaningless and callers should treat the type as not limited.
	Limited   bool `json:"limited"`
	Available int  `json:"available"`
}

// TicketWithoutSeat is one line of the counted-ticket availability listing.
type TicketWithoutSeat struct {
	TicketTypeID   string  `json:"ticket_type_id"`
	TicketTypeName string  `json:"ticket_type_name"`
	AvailableCount int     `json:"available_count"`
	Price          float64 `json:"price"`
}

// ResetResult reports a best-effort bulk release.
type ResetResult struct {
	ResetSeats    []string `json:"reset_seats"`
	NotFoundSeats []string `json:"not_found_seats"`
}

// mutateAttempts bounds the optimistic-save retry loop.
const mutateAttempts = 3

type service struct {
	store    Store
	ledger   ReservationLedger
	catalog  CatalogResolver
	cache    cache.Service
	cacheTTL time.Duration
}

// NewService creates the inventory service.
func NewService(store Store, ledger ReservationLedger, catalog CatalogResolver) Service {
	return &service{store: store, ledger: ledger, catalog: catalog}
}

// SetCacheService enables read-side caching for availability listings.
func (s *service) SetCacheService(cacheService cache.Service, ttl time.Duration) {
	s.cache = cacheService
	s.cacheTTL = ttl
}

func (s *service) Mutate(ctx context.Context, eventID uuid.UUID, fn func(inv *EventInventory) error) (*EventInventory, error) {
	var lastErr error
	for attempt := 0; attempt < mutateAttempts; attempt++ {
		inv, err := s.store.Load(ctx, eventID)
		if err != nil {
			return nil, err
		}

		if err := fn(inv); err != nil {
			return nil, err
		}

		err = s.store.Save(ctx, inv)
		if err == nil {
			s.invalidate(ctx, eventID)
			return inv, nil
		}
		if !apperr.IsKind(err, apperr.KindVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *service) SeatStatus(ctx context.Context, eventID uuid.UUID, seatID string) (string, error) {
	inv, err := s.store.Load(ctx, eventID)
	if err != nil {
		return "", err
	}
	seat := inv.FindSeat(seatID)
	if seat == nil {
		return "", apperr.New(apperr.KindNotFound, "seat %s not found", seatID)
	}
	return seat.Status, nil
}

func (s *service) CountAvailable(ctx context.Context, eventID uuid.UUID, ticketTypeID string) (*CountAvailability, error) {
	inv, err := s.store.Load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	counter := inv.FindCounter(ticketTypeID)
	if counter == nil {
		return nil, apperr.New(apperr.KindNotFound, "ticket type %s not found", ticketTypeID)
	}

	available, limited := counter.Remaining()
	return &CountAvailability{
		TicketTypeID: ticketTypeID,
		Limited:      limited,
		Available:    available,
	}, nil
}

func (s *service) ListTicketsWithoutSeats(ctx context.Context, eventID uuid.UUID) ([]TicketWithoutSeat, error) {
	cacheKey := cache.TicketAvailabilityKey(eventID.String())
	if s.cache != nil {
		var cached []TicketWithoutSeat
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	inv, err := s.store.Load(ctx, eventID)
	if err != nil {
		return nil, err
	}

	lines := make([]TicketWithoutSeat, 0, len(inv.Tickets))
	for _, counter := range inv.Tickets {
		if !counter.HasTicketCount {
			continue
		}
		available, _ := counter.Remaining()

		name, err := s.catalog.TicketTypeName(ctx, counter.TicketTypeID)
		if err != nil {
			logger.GetDefault().Warn("ticket type name unresolved",
				"ticket_type_id", counter.TicketTypeID, "error", err.Error())
			name = counter.TicketTypeID
		}

		lines = append(lines, TicketWithoutSeat{
			TicketTypeID:   counter.TicketTypeID,
			TicketTypeName: name,
			AvailableCount: available,
			Price:          counter.Price,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, lines, s.cacheTTL); err != nil {
			logger.GetDefault().Debug("failed to cache ticket availability", "error", err.Error())
		}
	}

	return lines, nil
}

func (s *service) SeatMap(ctx context.Context, eventID uuid.UUID) ([]Seat, error) {
	inv, err := s.store.Load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return inv.Seats, nil
}

func (s *service) SelectSeat(ctx context.Context, eventID uuid.UUID, seatID string) (*Seat, error) {
	var selected Seat
	_, err := s.Mutate(ctx, eventID, func(inv *EventInventory) error {
		seat := inv.FindSeat(seatID)
		if seat == nil {
			return apperr.New(apperr.KindNotFound, "seat %s not found", seatID)
		}
		if seat.Status != SeatAvailable {
			return apperr.New(apperr.KindInvalidState, "seat %s is %s, not available", seatID, seat.Status)
		}
		seat.Status = SeatPending
		selected = *seat
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.ledger.Create(ctx, eventID, seatID); err != nil {
		// The hold is live in the seat map but has no expiry record; undo it
		// rather than leave a seat pending forever.
		_, releaseErr := s.Mutate(ctx, eventID, func(inv *EventInventory) error {
			if seat := inv.FindSeat(seatID); seat != nil && seat.Status == SeatPending {
				seat.Status = SeatAvailable
			}
			return nil
		})
		if releaseErr != nil {
			logger.GetDefault().ErrorWithContext(ctx, "failed to undo seat hold after ledger error", releaseErr,
				map[string]interface{}{"event_id": eventID.String(), "seat_id": seatID})
		}
		return nil, err
	}

	return &selected, nil
}

func (s *service) UnselectSeat(ctx context.Context, eventID uuid.UUID, seatID string) (*Seat, error) {
	var released Seat
	_, err := s.Mutate(ctx, eventID, func(inv *EventInventory) error {
		seat := inv.FindSeat(seatID)
		if seat == nil {
			return apperr.New(apperr.KindNotFound, "seat %s not found", seatID)
		}
		if seat.Status != SeatPending {
			return apperr.New(apperr.KindInvalidState, "seat %s is %s, not pending", seatID, seat.Status)
		}
		seat.Status = SeatAvailable
		released = *seat
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.ledger.DeleteBySeat(ctx, eventID, seatID); err != nil {
		// The seat is already available again; a stale ledger row only costs
		// the sweeper a no-op scan.
		logger.GetDefault().ErrorWithContext(ctx, "failed to delete reservation ledger entry", err,
			map[string]interface{}{"event_id": eventID.String(), "seat_id": seatID})
	}

	return &released, nil
}

func (s *service) ResetSeats(ctx context.Context, eventID uuid.UUID, seatIDs []string) (*ResetResult, error) {
	if len(seatIDs) == 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "no seats specified")
	}

	result := &ResetResult{ResetSeats: []string{}, NotFoundSeats: []string{}}
	_, err := s.Mutate(ctx, eventID, func(inv *EventInventory) error {
		result.ResetSeats = result.ResetSeats[:0]
		result.NotFoundSeats = result.NotFoundSeats[:0]
		for _, seatID := range seatIDs {
			seat := inv.FindSeat(seatID)
			if seat == nil {
				result.NotFoundSeats = append(result.NotFoundSeats, seatID)
				continue
			}
			seat.Status = SeatAvailable
			result.ResetSeats = append(result.ResetSeats, seatID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *service) invalidate(ctx context.Context, eventID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx,
		cache.TicketAvailabilityKey(eventID.String()),
		cache.SeatMapKey(eventID.String()),
	); err != nil {
		logger.GetDefault().Debug("failed to invalidate availability cache", "error", err.Error())
	}
}
