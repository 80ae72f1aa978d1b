package cancellation

import (
	"context"

	"github.com/google/uuid"

	"ticketly/internal/inventory"
	"ticketly/internal/orders"
	"ticketly/internal/shared/apperr"
	"ticketly/pkg/logger"
)

// OrderStore is the slice of the order repository the cancellation engine
// needs.
type OrderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*orders.Order, error)
	Update(ctx context.Context, order *orders.Order) error
}

// InventoryMutator is the write entry point into the event's inventory.
type InventoryMutator interface {
	Mutate(ctx context.Context, eventID uuid.UUID, fn func(inv *inventory.EventInventory) error) (*inventory.EventInventory, error)
}

// CatalogResolver resolves ticket-type names for the audit trail.
type CatalogResolver interface {
	TicketTypeName(ctx context.Context, ticketTypeID string) (string, error)
}

// Notifier sends the customer an itemized cancellation summary. Delivery is
// fire-and-forget; a failed notification never reverts the cancellation.
type Notifier interface {
	OrderCancelled(ctx context.Context, order *orders.Order, items []CanceledTicket, reduction float64)
}

// Service reverses bookings: each cancelled line puts back exactly the
// inventory the booking took and subtracts exactly what it charged.
type Service interface {
	CancelSeats(ctx context.Context, orderID uuid.UUID, req *CancelSeatsRequest) (*Result, error)
	CancelCounted(ctx context.Context, orderID uuid.UUID, req *CancelCountedRequest) (*Result, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID) (*Result, error)
	History(ctx context.Context, orderID uuid.UUID) ([]CanceledTicket, error)

	SetNotifier(n Notifier)
}

type service struct {
	repo      Repository
	orders    OrderStore
	inventory InventoryMutator
	catalog   CatalogResolver
	notifier  Notifier
}

// NewService creates the cancellation engine.
func NewService(repo Repository, orderStore OrderStore, inv InventoryMutator, catalog CatalogResolver) Service {
	return &service{repo: repo, orders: orderStore, inventory: inv, catalog: catalog}
}

func (s *service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *service) CancelSeats(ctx context.Context, orderID uuid.UUID, req *CancelSeatsRequest) (*Result, error) {
	order, err := s.loadCancellable(ctx, orderID)
	if err != nil {
		return nil, err
	}

	owned := make(map[string]struct{})
	for _, id := range order.DecodeSeatIDs() {
		owned[id] = struct{}{}
	}
	var valid, skipped []string
	for _, id := range req.SeatIDs {
		if _, ok := owned[id]; ok {
			valid = append(valid, id)
		} else {
			skipped = append(skipped, id)
		}
	}
	if len(valid) == 0 {
		return nil, apperr.New(apperr.KindEmptySelection, "none of the requested seats belong to order %s", orderID)
	}

	type seatRefund struct {
		price    float64
		typeID   string
		typeName string
	}
	refunds := make(map[string]seatRefund, len(valid))
	_, err = s.inventory.Mutate(ctx, order.EventID, func(inv *inventory.EventInventory) error {
		for _, seatID := range valid {
			seat := inv.FindSeat(seatID)
			if seat == nil {
				// The seat left the map (layout change); cancel the order line
				// anyway and refund at the caller's fallback price.
				logger.GetDefault().Warn("cancelled seat missing from inventory",
					"order_id", orderID.String(), "seat_id", seatID)
				refunds[seatID] = seatRefund{price: req.FallbackPrice}
				continue
			}
			seat.Status = inventory.SeatAvailable
			refunds[seatID] = seatRefund{price: seat.Price, typeID: seat.TypeID, typeName: seat.TicketTypeName}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, seatID := range valid {
		logger.GetDefault().LogSeatReleased(ctx, order.EventID.String(), seatID, "cancellation")
	}

	var (
		rows      []CanceledTicket
		reduction float64
	)
	for _, seatID := range valid {
		r := refunds[seatID]
		id := seatID
		rows = append(rows, CanceledTicket{
			OrderID:        orderID,
			Type:           LineSeat,
			SeatID:         &id,
			TicketTypeID:   r.typeID,
			TicketTypeName: r.typeName,
			Quantity:       1,
			Price:          r.price,
		})
		reduction += r.price
	}

	var remaining []string
	cancelSet := make(map[string]struct{}, len(valid))
	for _, id := range valid {
		cancelSet[id] = struct{}{}
	}
	for _, id := range order.DecodeSeatIDs() {
		if _, gone := cancelSet[id]; !gone {
			remaining = append(remaining, id)
		}
	}
	if err := order.SetSeatIDs(remaining); err != nil {
		return nil, err
	}

	return s.finish(ctx, order, rows, reduction, skipped)
}

func (s *service) CancelCounted(ctx context.Context, orderID uuid.UUID, req *CancelCountedRequest) (*Result, error) {
	if req.Quantity <= 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "quantity must be positive")
	}
	order, err := s.loadCancellable(ctx, orderID)
	if err != nil {
		return nil, err
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
	if req.Quantity > lines[idx].TicketCount {
		return nil, apperr.New(apperr.KindInsufficientQuantity,
			"order holds %d tickets of type %s, cannot cancel %d",
			lines[idx].TicketCount, req.TicketTypeID, req.Quantity)
	}

	var unitPrice float64
	_, err = s.inventory.Mutate(ctx, order.EventID, func(inv *inventory.EventInventory) error {
		counter := inv.FindCounter(req.TicketTypeID)
		if counter == nil {
			logger.GetDefault().Warn("cancelled ticket type missing from inventory",
				"order_id", orderID.String(), "ticket_type_id", req.TicketTypeID)
			return nil
		}
		unitPrice = counter.Price
		counter.BookedTicketCount -= req.Quantity
		if counter.BookedTicketCount < 0 {
			counter.BookedTicketCount = 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	lines[idx].TicketCount -= req.Quantity
	if lines[idx].IssuedCount > lines[idx].TicketCount {
		lines[idx].IssuedCount = lines[idx].TicketCount
	}
	if lines[idx].TicketCount == 0 {
		lines = append(lines[:idx], lines[idx+1:]...)
	}
	if err := order.SetTicketLines(lines); err != nil {
		return nil, err
	}

	reduction := unitPrice * float64(req.Quantity)
	// The aggregated audit row carries the whole batch's reduction, not the
	// unit price.
	rows := []CanceledTicket{{
		OrderID:        orderID,
		Type:           LineCounted,
		TicketTypeID:   req.TicketTypeID,
		TicketTypeName: s.typeName(ctx, req.TicketTypeID),
		Quantity:       req.Quantity,
		Price:          reduction,
	}}

	return s.finish(ctx, order, rows, reduction, nil)
}

func (s *service) CancelOrder(ctx context.Context, orderID uuid.UUID) (*Result, error) {
	order, err := s.loadCancellable(ctx, orderID)
	if err != nil {
		return nil, err
	}

	seatIDs := order.DecodeSeatIDs()
	lines := order.DecodeTicketLines()

	var (
		rows      []CanceledTicket
		reduction float64
	)
	_, err = s.inventory.Mutate(ctx, order.EventID, func(inv *inventory.EventInventory) error {
		rows = rows[:0]
		reduction = 0
		for _, seatID := range seatIDs {
			id := seatID
			row := CanceledTicket{OrderID: orderID, Type: LineSeat, SeatID: &id, Quantity: 1}
			if seat := inv.FindSeat(seatID); seat != nil {
				seat.Status = inventory.SeatAvailable
				row.TicketTypeID = seat.TypeID
				row.TicketTypeName = seat.TicketTypeName
				row.Price = seat.Price
			} else {
				logger.GetDefault().Warn("cancelled seat missing from inventory",
					"order_id", orderID.String(), "seat_id", seatID)
			}
			rows = append(rows, row)
			reduction += row.Price
		}
		for _, line := range lines {
			row := CanceledTicket{
				OrderID:      orderID,
				Type:         LineCounted,
				TicketTypeID: line.TicketTypeID,
				Quantity:     line.TicketCount,
			}
			if counter := inv.FindCounter(line.TicketTypeID); counter != nil {
				counter.BookedTicketCount -= line.TicketCount
				if counter.BookedTicketCount < 0 {
					counter.BookedTicketCount = 0
				}
				row.Price = counter.Price * float64(line.TicketCount)
			} else {
				logger.GetDefault().Warn("cancelled ticket type missing from inventory",
					"order_id", orderID.String(), "ticket_type_id", line.TicketTypeID)
			}
			rows = append(rows, row)
			reduction += row.Price
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Type == LineCounted && rows[i].TicketTypeName == "" {
			rows[i].TicketTypeName = s.typeName(ctx, rows[i].TicketTypeID)
		}
	}
	for _, seatID := range seatIDs {
		logger.GetDefault().LogSeatReleased(ctx, order.EventID.String(), seatID, "cancellation")
	}

	if err := order.SetSeatIDs(nil); err != nil {
		return nil, err
	}
	if err := order.SetTicketLines(nil); err != nil {
		return nil, err
	}

	return s.finish(ctx, order, rows, reduction, nil)
}

func (s *service) History(ctx context.Context, orderID uuid.UUID) ([]CanceledTicket, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

func (s *service) loadCancellable(ctx context.Context, orderID uuid.UUID) (*orders.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != orders.OrderCompleted {
		return nil, apperr.New(apperr.KindInvalidState, "order %s is %s and cannot be cancelled", orderID, order.Status)
	}
	return order, nil
}

// finish applies the money and status changes to the order, persists the
// audit rows, and notifies the customer. Inventory is already released at
// this point; audit or notification failures are logged, never reverted.
func (s *service) finish(ctx context.Context, order *orders.Order, rows []CanceledTicket, reduction float64, skipped []string) (*Result, error) {
	order.SubTotal -= reduction
	if order.SubTotal < 0 {
		order.SubTotal = 0
	}
	order.Total -= reduction
	if order.Total < 0 {
		order.Total = 0
	}
	if len(order.DecodeSeatIDs()) == 0 && len(order.DecodeTicketLines()) == 0 {
		order.Status = orders.OrderCancelled
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	if err := s.repo.CreateAll(ctx, rows); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to record cancellation audit rows", err,
			map[string]interface{}{"order_id": order.ID.String()})
	}

	logger.GetDefault().LogOrderCancelled(ctx, order.ID.String(), reduction)
	if s.notifier != nil {
		s.notifier.OrderCancelled(ctx, order, rows, reduction)
	}

	return &Result{
		OrderID:      order.ID.String(),
		OrderStatus:  order.Status,
		Cancelled:    rows,
		Reduction:    reduction,
		NewTotal:     order.Total,
		SkippedSeats: skipped,
	}, nil
}

func (s *service) typeName(ctx context.Context, ticketTypeID string) string {
	if s.catalog == nil {
		return ticketTypeID
	}
	name, err := s.catalog.TicketTypeName(ctx, ticketTypeID)
	if err != nil {
		return ticketTypeID
	}
	return name
}
