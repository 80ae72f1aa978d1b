package issuance

import (
	"context"

	"github.com/google/uuid"

	"ticketly/internal/inventory"
	"ticketly/internal/orders"
	"ticketly/internal/shared/apperr"
)

// InventoryMutator is the write entry point into the event's inventory.
type InventoryMutator interface {
	Mutate(ctx context.Context, eventID uuid.UUID, fn func(inv *inventory.EventInventory) error) (*inventory.EventInventory, error)
}

// OrderStore is the slice of the order repository issuance needs.
type OrderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*orders.Order, error)
	Update(ctx context.Context, order *orders.Order) error
}

// Service tracks physical handover of tickets at the venue. Issuance is
// separate from booking: a booked seat becomes issued exactly once, and a
// counted line can never issue more than it booked.
type Service interface {
	ConfirmIssueSeat(ctx context.Context, eventID uuid.UUID, seatID string) (*inventory.Seat, error)
	IssueCounted(ctx context.Context, orderID uuid.UUID, req *IssueCountedRequest) (*orders.TicketLine, error)
}

// IssueCountedRequest hands out counted tickets from one order line.
type IssueCountedRequest struct {
	TicketTypeID string `json:"ticket_type_id" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required"`
}

type service struct {
	inventory InventoryMutator
	orders    OrderStore
}

// NewService creates the issuance service.
func NewService(inv InventoryMutator, orderStore OrderStore) Service {
	return &service{inventory: inv, orders: orderStore}
}

func (s *service) ConfirmIssueSeat(ctx context.Context, eventID uuid.UUID, seatID string) (*inventory.Seat, error) {
	var issued inventory.Seat
	_, err := s.inventory.Mutate(ctx, eventID, func(inv *inventory.EventInventory) error {
		seat := inv.FindSeat(seatID)
		if seat == nil {
			return apperr.New(apperr.KindNotFound, "seat %s not found", seatID)
		}
		// booked is the only state a ticket can be handed out from; issuing
		// twice or issuing a hold is always a caller mistake.
		if seat.Status != inventory.SeatBooked {
			return apperr.New(apperr.KindInvalidState, "seat %s is %s, not booked", seatID, seat.Status)
		}
		seat.Status = inventory.SeatIssued
		issued = *seat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &issued, nil
}

func (s *service) IssueCounted(ctx context.Context, orderID uuid.UUID, req *IssueCountedRequest) (*orders.TicketLine, error) {
	if req.Quantity <= 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "quantity must be positive")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != orders.OrderCompleted {
		return nil, apperr.New(apperr.KindInvalidState, "order %s is %s, tickets cannot be issued", orderID, order.Status)
	}

	lines := order.DecodeTicketLines()
	idx := -1
	for i := range lines {
		if lines[i].TicketTypeID == req.TicketTypeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperr.New(apperr.KindNotFound, "ticket type %s is not part of order %s", req.TicketTypeID, orderID)
	}

	remaining := lines[idx].TicketCount - lines[idx].IssuedCount
	if req.Quantity > remaining {
		return nil, apperr.New(apperr.KindOverIssue,
			"order has %d unissued tickets of type %s, cannot issue %d",
			remaining, req.TicketTypeID, req.Quantity)
	}

	// Counted issuance only moves the order's issued counter; the event's
	// booked count already accounted for these tickets at checkout.
	lines[idx].IssuedCount += req.Quantity
	if err := order.SetTicketLines(lines); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	line := lines[idx]
	return &line, nil
}
