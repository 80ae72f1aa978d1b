package inventory

import (
	"github.com/google/uuid"
)

// Seat lifecycle statuses. Transitions run available → pending → booked →
// issued; releases (pending → available) and cancellations (booked →
// available) are the only moves backwards.
const (
	SeatAvailable = "available"
	SeatPending   = "pending"
	SeatBooked    = "booked"
	SeatIssued    = "issued"
)

// Seat is one bookable seat inside an event's seat map. The map is fixed at
// event-setup time; only Status changes afterwards.
type Seat struct {
	SeatID         string  `json:"seatId"`
	Status         string  `json:"status"`
	Price          float64 `json:"price"`
	TicketTypeName string  `json:"ticketTypeName"`
	TypeID         string  `json:"type_id"`
}

// TicketTypeCounter tracks the shared pool for one count-based ticket type.
// When HasTicketCount is true and TicketCount is non-nil, BookedTicketCount
// must never exceed *TicketCount.
type TicketTypeCounter struct {
	TicketTypeID      string  `json:"ticketTypeId"`
	Price             float64 `json:"price"`
	TicketCount       *int    `json:"ticketCount"`
	HasTicketCount    bool    `json:"hasTicketCount"`
	BookedTicketCount int     `json:"bookedTicketCount"`
}

// Remaining returns how many counted tickets are still sellable, clamped at
// zero, and whether the pool is finite at all.
func (c *TicketTypeCounter) Remaining() (int, bool) {
	if !c.HasTicketCount || c.TicketCount == nil {
		return 0, false
	}
	remaining := *c.TicketCount - c.BookedTicketCount
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// EventInventory is one event's full bookable state: the seat map plus the
// counted-ticket pools. Version backs the optimistic save; every successful
// save increments it.
type EventInventory struct {
	EventID uuid.UUID
	Version int64
	Seats   []Seat
	Tickets []TicketTypeCounter
}

// FindSeat returns a pointer into Seats for the given id, or nil.
func (inv *EventInventory) FindSeat(seatID string) *Seat {
	for i := range inv.Seats {
		if inv.Seats[i].SeatID == seatID {
			return &inv.Seats[i]
		}
	}
	return nil
}

// FindCounter returns a pointer into Tickets for the given type id, or nil.
func (inv *EventInventory) FindCounter(ticketTypeID string) *TicketTypeCounter {
	for i := range inv.Tickets {
		if inv.Tickets[i].TicketTypeID == ticketTypeID {
			return &inv.Tickets[i]
		}
	}
	return nil
}
