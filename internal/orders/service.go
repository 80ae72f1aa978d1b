package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ticketly/internal/inventory"
	"ticketly/internal/shared/apperr"
	"ticketly/pkg/logger"
)

// CommitMode selects when the booked inventory effects land. Immediate
// commits them inside the checkout mutation; Deferred only holds seats and
// validates counters, leaving the commit to the gateway callback.
type CommitMode string

const (
	CommitImmediate CommitMode = "immediate"
	CommitDeferred  CommitMode = "deferred"
)

// InventoryMutator is the write entry point into the event's inventory.
type InventoryMutator interface {
	Mutate(ctx context.Context, eventID uuid.UUID, fn func(inv *inventory.EventInventory) error) (*inventory.EventInventory, error)
}

// ReservationLedger records hold start times for seats a deferred checkout
// marks pending, so abandoned payments expire with everything else.
type ReservationLedger interface {
	Create(ctx context.Context, eventID uuid.UUID, seatID string) error
	DeleteBySeat(ctx context.Context, eventID uuid.UUID, seatID string) error
}

// Notifier delivers post-checkout customer messages. Delivery is
// fire-and-forget; checkout outcomes never depend on it.
type Notifier interface {
	OrderCompleted(ctx context.Context, order *Order, tickets []IssuedTicket)
	OrderFailed(ctx context.Context, order *Order, reason string)
}

// ArtifactStore persists generated ticket files and returns a public URL.
type ArtifactStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// CatalogResolver resolves ticket-type display names for generated tickets.
type CatalogResolver interface {
	TicketTypeName(ctx context.Context, ticketTypeID string) (string, error)
}

// IssuedTicket is one generated ticket attached to a completed order.
type IssuedTicket struct {
	Code           string  `json:"code"`
	SeatID         string  `json:"seat_id,omitempty"`
	TicketTypeID   string  `json:"ticket_type_id"`
	TicketTypeName string  `json:"ticket_type_name"`
	Price          float64 `json:"price"`
	ArtifactURL    string  `json:"artifact_url,omitempty"`
}

// Service is the checkout engine: it turns a seat/ticket selection into an
// order and settles pending orders when the payment gateway answers.
type Service interface {
	Checkout(ctx context.Context, req *CheckoutRequest, mode CommitMode) (*Order, error)

	// FinalizeAccepted commits a pending order's inventory effects after the
	// gateway approved payment. Replays return KindAlreadyProcessed.
	FinalizeAccepted(ctx context.Context, orderID uuid.UUID, gatewayTxID string) (*Order, error)
	// FinalizeDeclined releases a pending order's seat holds and fails it.
	FinalizeDeclined(ctx context.Context, orderID uuid.UUID, gatewayTxID string) (*Order, error)

	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Order, error)

	SetNotifier(n Notifier)
	SetArtifactStore(store ArtifactStore)
	SetCatalog(catalog CatalogResolver)
}

type service struct {
	repo      Repository
	inventory InventoryMutator
	ledger    ReservationLedger
	notifier  Notifier
	artifacts ArtifactStore
	catalog   CatalogResolver
}

// NewService creates the checkout engine.
func NewService(repo Repository, inv InventoryMutator, ledger ReservationLedger) Service {
	return &service{repo: repo, inventory: inv, ledger: ledger}
}

func (s *service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *service) SetArtifactStore(store ArtifactStore) {
	s.artifacts = store
}

func (s *service) SetCatalog(catalog CatalogResolver) {
	s.catalog = catalog
}

func (s *service) Checkout(ctx context.Context, req *CheckoutRequest, mode CommitMode) (*Order, error) {
	if len(req.SeatIDs) == 0 && len(req.Tickets) == 0 {
		return nil, apperr.New(apperr.KindEmptySelection, "no seats or tickets selected")
	}
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidInput, "invalid event id %q", req.EventID)
	}
	if err := rejectDuplicates(req); err != nil {
		return nil, err
	}

	switch mode {
	case CommitImmediate:
		return s.checkoutImmediate(ctx, eventID, req)
	case CommitDeferred:
		return s.checkoutDeferred(ctx, eventID, req)
	default:
		return nil, apperr.New(apperr.KindInvalidInput, "unknown commit mode %q", mode)
	}
}

func rejectDuplicates(req *CheckoutRequest) error {
	seats := make(map[string]struct{}, len(req.SeatIDs))
	for _, id := range req.SeatIDs {
		if _, dup := seats[id]; dup {
			return apperr.New(apperr.KindInvalidInput, "seat %s appears twice in the selection", id)
		}
		seats[id] = struct{}{}
	}
	types := make(map[string]struct{}, len(req.Tickets))
	for _, sel := range req.Tickets {
		if _, dup := types[sel.TicketTypeID]; dup {
			return apperr.New(apperr.KindInvalidInput, "ticket type %s appears twice in the selection", sel.TicketTypeID)
		}
		types[sel.TicketTypeID] = struct{}{}
	}
	return nil
}

// checkoutImmediate books seats and increments counters in one inventory
// mutation, then records the completed order. Used for staff and on-site
// sales where no external payment step follows.
func (s *service) checkoutImmediate(ctx context.Context, eventID uuid.UUID, req *CheckoutRequest) (*Order, error) {
	var (
		subTotal float64
		lines    []TicketLine
	)
	inv, err := s.inventory.Mutate(ctx, eventID, func(inv *inventory.EventInventory) error {
		subTotal = 0
		lines = lines[:0]
		for _, seatID := range req.SeatIDs {
			seat := inv.FindSeat(seatID)
			if seat == nil {
				return apperr.New(apperr.KindNotFound, "seat %s not found", seatID)
			}
			if seat.Status != inventory.SeatAvailable {
				return apperr.New(apperr.KindInvalidState, "seat %s is %s, not available", seatID, seat.Status)
			}
			seat.Status = inventory.SeatBooked
			subTotal += seat.Price
		}
		for _, sel := range req.Tickets {
			counter, err := reserveCounted(inv, sel)
			if err != nil {
				return err
			}
			counter.BookedTicketCount += sel.TicketCount
			subTotal += counter.Price * float64(sel.TicketCount)
			lines = append(lines, TicketLine{TicketTypeID: sel.TicketTypeID, TicketCount: sel.TicketCount})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := buildOrder(eventID, req, lines, subTotal, OrderCompleted, "")
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, order); err != nil {
		// Inventory already committed; undo it so the seats and counters
		// match the absence of an order row.
		s.revertCommitted(ctx, eventID, req.SeatIDs, lines)
		return nil, err
	}

	logger.GetDefault().LogOrderCreated(ctx, order.ID.String(), eventID.String(), order.Status)
	s.fulfill(ctx, order, inv)
	return order, nil
}

// checkoutDeferred holds the selected seats and validates counter capacity
// without incrementing it, then records a pending order carrying the gateway
// correlation id. Counted capacity is only consumed when the gateway accepts.
func (s *service) checkoutDeferred(ctx context.Context, eventID uuid.UUID, req *CheckoutRequest) (*Order, error) {
	var (
		subTotal float64
		lines    []TicketLine
		newHolds []string
	)
	_, err := s.inventory.Mutate(ctx, eventID, func(inv *inventory.EventInventory) error {
		subTotal = 0
		lines = lines[:0]
		newHolds = newHolds[:0]
		for _, seatID := range req.SeatIDs {
			seat := inv.FindSeat(seatID)
			if seat == nil {
				return apperr.New(apperr.KindNotFound, "seat %s not found", seatID)
			}
			switch seat.Status {
			case inventory.SeatAvailable:
				seat.Status = inventory.SeatPending
				newHolds = append(newHolds, seatID)
			case inventory.SeatPending:
				// Already held, typically by this customer's earlier seat
				// selection; the checkout adopts the hold.
			default:
				return apperr.New(apperr.KindInvalidState, "seat %s is %s and cannot be held", seatID, seat.Status)
			}
			subTotal += seat.Price
		}
		for _, sel := range req.Tickets {
			counter, err := reserveCounted(inv, sel)
			if err != nil {
				return err
			}
			subTotal += counter.Price * float64(sel.TicketCount)
			lines = append(lines, TicketLine{TicketTypeID: sel.TicketTypeID, TicketCount: sel.TicketCount})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, seatID := range newHolds {
		if err := s.ledger.Create(ctx, eventID, seatID); err != nil {
			// The hold still resolves when the gateway answers; it just has
			// no expiry row until then.
			logger.GetDefault().ErrorWithContext(ctx, "failed to record hold for checkout seat", err,
				map[string]interface{}{"event_id": eventID.String(), "seat_id": seatID})
		}
	}

	order, err := buildOrder(eventID, req, lines, subTotal, OrderPending, newGatewayTxID())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, order); err != nil {
		s.releaseHolds(ctx, eventID, newHolds, "checkout persist failed")
		return nil, err
	}

	logger.GetDefault().LogOrderCreated(ctx, order.ID.String(), eventID.String(), order.Status)
	return order, nil
}

// reserveCounted resolves one counted-ticket line and enforces its pool
// capacity. The caller decides whether to consume the capacity.
func reserveCounted(inv *inventory.EventInventory, sel TicketSelection) (*inventory.TicketTypeCounter, error) {
	counter := inv.FindCounter(sel.TicketTypeID)
	if counter == nil {
		return nil, apperr.New(apperr.KindNotFound, "ticket type %s not found", sel.TicketTypeID)
	}
	if remaining, limited := counter.Remaining(); limited && sel.TicketCount > remaining {
		return nil, apperr.New(apperr.KindSoldOut,
			"ticket type %s is sold out. Available: %d. Requested: %d.",
			sel.TicketTypeID, remaining, sel.TicketCount)
	}
	return counter, nil
}

func buildOrder(eventID uuid.UUID, req *CheckoutRequest, lines []TicketLine, subTotal float64, status, gatewayTxID string) (*Order, error) {
	order := &Order{
		EventID:         eventID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerCountry: req.CustomerCountry,
		SubTotal:        subTotal,
		Discount:        0,
		Total:           subTotal,
		Status:          status,
		GatewayTxID:     gatewayTxID,
	}
	if err := order.SetSeatIDs(req.SeatIDs); err != nil {
		return nil, err
	}
	if err := order.SetTicketLines(lines); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) FinalizeAccepted(ctx context.Context, orderID uuid.UUID, gatewayTxID string) (*Order, error) {
	order, err := s.loadPending(ctx, orderID, gatewayTxID)
	if err != nil {
		return order, err
	}

	seatIDs := order.DecodeSeatIDs()
	lines := order.DecodeTicketLines()
	inv, err := s.inventory.Mutate(ctx, order.EventID, func(inv *inventory.EventInventory) error {
		for _, seatID := range seatIDs {
			seat := inv.FindSeat(seatID)
			if seat == nil {
				logger.GetDefault().Warn("order seat missing at finalize",
					"order_id", order.ID.String(), "seat_id", seatID)
				continue
			}
			seat.Status = inventory.SeatBooked
		}
		for _, line := range lines {
			counter := inv.FindCounter(line.TicketTypeID)
			if counter == nil {
				logger.GetDefault().Warn("order ticket type missing at finalize",
					"order_id", order.ID.String(), "ticket_type_id", line.TicketTypeID)
				continue
			}
			if remaining, limited := counter.Remaining(); limited && line.TicketCount > remaining {
				return apperr.New(apperr.KindSoldOut,
					"ticket type %s is sold out. Available: %d. Requested: %d.",
					line.TicketTypeID, remaining, line.TicketCount)
			}
			counter.BookedTicketCount += line.TicketCount
		}
		return nil
	})
	if err != nil {
		if apperr.IsKind(err, apperr.KindSoldOut) {
			// Capacity was consumed by others while payment was in flight.
			// The payment succeeded but the order cannot be honored.
			s.failOrder(ctx, order, "capacity exhausted during payment")
		}
		return nil, err
	}

	order.Status = OrderCompleted
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	for _, seatID := range seatIDs {
		if err := s.ledger.DeleteBySeat(ctx, order.EventID, seatID); err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "failed to clear hold after booking", err,
				map[string]interface{}{"event_id": order.EventID.String(), "seat_id": seatID})
		}
	}

	logger.GetDefault().LogOrderCreated(ctx, order.ID.String(), order.EventID.String(), order.Status)
	s.fulfill(ctx, order, inv)
	return order, nil
}

func (s *service) FinalizeDeclined(ctx context.Context, orderID uuid.UUID, gatewayTxID string) (*Order, error) {
	order, err := s.loadPending(ctx, orderID, gatewayTxID)
	if err != nil {
		return order, err
	}

	seatIDs := order.DecodeSeatIDs()
	_, err = s.inventory.Mutate(ctx, order.EventID, func(inv *inventory.EventInventory) error {
		for _, seatID := range seatIDs {
			if seat := inv.FindSeat(seatID); seat != nil && seat.Status == inventory.SeatPending {
				seat.Status = inventory.SeatAvailable
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, seatID := range seatIDs {
		logger.GetDefault().LogSeatReleased(ctx, order.EventID.String(), seatID, "payment declined")
	}

	order.Status = OrderFailed
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.OrderFailed(ctx, order, "payment declined")
	}
	return order, nil
}

// loadPending fetches the order for a gateway answer, verifying correlation
// and rejecting replays with KindAlreadyProcessed.
func (s *service) loadPending(ctx context.Context, orderID uuid.UUID, gatewayTxID string) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.GatewayTxID == "" || order.GatewayTxID != gatewayTxID {
		return nil, apperr.New(apperr.KindNotFound, "transaction %s does not belong to order %s", gatewayTxID, orderID)
	}
	if order.IsTerminal() {
		return order, apperr.New(apperr.KindAlreadyProcessed, "order %s is already %s", orderID, order.Status)
	}
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Order, error) {
	return s.repo.ListByEvent(ctx, eventID)
}

// failOrder marks a pending order failed and releases its seat holds. Used
// when the gateway accepted but the inventory can no longer honor the order.
func (s *service) failOrder(ctx context.Context, order *Order, reason string) {
	s.releaseHolds(ctx, order.EventID, order.DecodeSeatIDs(), reason)
	order.Status = OrderFailed
	if err := s.repo.Update(ctx, order); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to mark order failed", err,
			map[string]interface{}{"order_id": order.ID.String()})
		return
	}
	if s.notifier != nil {
		s.notifier.OrderFailed(ctx, order, reason)
	}
}

// releaseHolds returns pending seats to the available pool, best effort.
func (s *service) releaseHolds(ctx context.Context, eventID uuid.UUID, seatIDs []string, reason string) {
	if len(seatIDs) == 0 {
		return
	}
	_, err := s.inventory.Mutate(ctx, eventID, func(inv *inventory.EventInventory) error {
		for _, seatID := range seatIDs {
			if seat := inv.FindSeat(seatID); seat != nil && seat.Status == inventory.SeatPending {
				seat.Status = inventory.SeatAvailable
			}
		}
		return nil
	})
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to release seat holds", err,
			map[string]interface{}{"event_id": eventID.String(), "reason": reason})
		return
	}
	for _, seatID := range seatIDs {
		logger.GetDefault().LogSeatReleased(ctx, eventID.String(), seatID, reason)
	}
}

// revertCommitted undoes an immediate checkout's inventory effects after the
// order row failed to persist.
func (s *service) revertCommitted(ctx context.Context, eventID uuid.UUID, seatIDs []string, lines []TicketLine) {
	_, err := s.inventory.Mutate(ctx, eventID, func(inv *inventory.EventInventory) error {
		for _, seatID := range seatIDs {
			if seat := inv.FindSeat(seatID); seat != nil && seat.Status == inventory.SeatBooked {
				seat.Status = inventory.SeatAvailable
			}
		}
		for _, line := range lines {
			if counter := inv.FindCounter(line.TicketTypeID); counter != nil {
				counter.BookedTicketCount -= line.TicketCount
				if counter.BookedTicketCount < 0 {
					counter.BookedTicketCount = 0
				}
			}
		}
		return nil
	})
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to revert inventory after order persist error", err,
			map[string]interface{}{"event_id": eventID.String()})
	}
}

// fulfill generates ticket artifacts and sends the completion notification.
// Failures here never fail the order; they are logged for operator follow-up.
func (s *service) fulfill(ctx context.Context, order *Order, inv *inventory.EventInventory) {
	tickets := s.issueArtifacts(ctx, order, inv)
	if s.notifier != nil {
		s.notifier.OrderCompleted(ctx, order, tickets)
	}
}

func (s *service) issueArtifacts(ctx context.Context, order *Order, inv *inventory.EventInventory) []IssuedTicket {
	tickets := []IssuedTicket{}
	for _, seatID := range order.DecodeSeatIDs() {
		seat := inv.FindSeat(seatID)
		if seat == nil {
			continue
		}
		tickets = append(tickets, IssuedTicket{
			Code:           newTicketCode(),
			SeatID:         seatID,
			TicketTypeID:   seat.TypeID,
			TicketTypeName: seat.TicketTypeName,
			Price:          seat.Price,
		})
	}
	for _, line := range order.DecodeTicketLines() {
		counter := inv.FindCounter(line.TicketTypeID)
		price := 0.0
		if counter != nil {
			price = counter.Price
		}
		typeName := s.typeName(ctx, line.TicketTypeID)
		for i := 0; i < line.TicketCount; i++ {
			tickets = append(tickets, IssuedTicket{
				Code:           newTicketCode(),
				TicketTypeID:   line.TicketTypeID,
				TicketTypeName: typeName,
				Price:          price,
			})
		}
	}

	if s.artifacts == nil {
		return tickets
	}
	for i := range tickets {
		name := fmt.Sprintf("%s/%s.txt", order.ID, tickets[i].Code)
		url, err := s.artifacts.Put(ctx, name, renderTicket(order, &tickets[i]))
		if err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "failed to store ticket artifact", err,
				map[string]interface{}{"order_id": order.ID.String(), "code": tickets[i].Code})
			continue
		}
		tickets[i].ArtifactURL = url
	}
	return tickets
}

// typeName resolves a ticket type's display name, falling back to the id
// when the catalog cannot answer.
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

func renderTicket(order *Order, t *IssuedTicket) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticket %s\n", t.Code)
	fmt.Fprintf(&b, "Order: %s\n", order.ID)
	fmt.Fprintf(&b, "Event: %s\n", order.EventID)
	fmt.Fprintf(&b, "Holder: %s\n", order.CustomerName)
	if t.SeatID != "" {
		fmt.Fprintf(&b, "Seat: %s\n", t.SeatID)
	}
	fmt.Fprintf(&b, "Type: %s\n", t.TicketTypeName)
	fmt.Fprintf(&b, "Price: %.2f\n", t.Price)
	return []byte(b.String())
}

func newTicketCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "TKT-" + raw[:12]
}

func newGatewayTxID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "TXN_" + raw[:20]
}
