package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ticketly/internal/cancellation"
	"ticketly/internal/orders"
	"ticketly/pkg/logger"
)

// Service renders customer notifications for the booking flows and queues
// them on the broker. With the broker disabled it falls back to direct SMTP.
// Either way delivery is best effort; callers never see an error.
type Service struct {
	producer Producer
	email    EmailSender
}

// NewService creates the notification facade. producer may be nil when the
// broker is disabled.
func NewService(producer Producer, email EmailSender) *Service {
	return &Service{producer: producer, email: email}
}

// OrderCompleted sends the confirmation with the generated tickets.
func (s *Service) OrderCompleted(ctx context.Context, order *orders.Order, tickets []orders.IssuedTicket) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", order.CustomerName)
	fmt.Fprintf(&b, "Your order %s is confirmed. Total: %.2f\n\n", order.ID, order.Total)
	b.WriteString("Your tickets:\n")
	for _, t := range tickets {
		if t.SeatID != "" {
			fmt.Fprintf(&b, "  %s - seat %s (%s) %.2f\n", t.Code, t.SeatID, t.TicketTypeName, t.Price)
		} else {
			fmt.Fprintf(&b, "  %s - %s %.2f\n", t.Code, t.TicketTypeName, t.Price)
		}
		if t.ArtifactURL != "" {
			fmt.Fprintf(&b, "    %s\n", t.ArtifactURL)
		}
	}

	s.dispatch(ctx, &Message{
		ID:             uuid.New(),
		Type:           TypeOrderCompleted,
		RecipientEmail: order.CustomerEmail,
		RecipientName:  order.CustomerName,
		Subject:        fmt.Sprintf("Order %s confirmed", order.ID),
		Body:           b.String(),
		OrderID:        order.ID,
		EventID:        order.EventID,
		CreatedAt:      time.Now(),
	})
}

// OrderFailed tells the customer their order could not be completed.
func (s *Service) OrderFailed(ctx context.Context, order *orders.Order, reason string) {
	body := fmt.Sprintf("Hi %s,\n\nYour order %s could not be completed: %s.\nNo tickets were booked and nothing was charged beyond the gateway's own handling.\n",
		order.CustomerName, order.ID, reason)

	s.dispatch(ctx, &Message{
		ID:             uuid.New(),
		Type:           TypeOrderFailed,
		RecipientEmail: order.CustomerEmail,
		RecipientName:  order.CustomerName,
		Subject:        fmt.Sprintf("Order %s failed", order.ID),
		Body:           body,
		OrderID:        order.ID,
		EventID:        order.EventID,
		CreatedAt:      time.Now(),
	})
}

// OrderCancelled sends the itemized cancellation summary.
func (s *Service) OrderCancelled(ctx context.Context, order *orders.Order, items []cancellation.CanceledTicket, reduction float64) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", order.CustomerName)
	fmt.Fprintf(&b, "The following tickets on order %s were cancelled:\n", order.ID)
	for _, item := range items {
		if item.SeatID != nil {
			fmt.Fprintf(&b, "  seat %s (%s) %.2f\n", *item.SeatID, item.TicketTypeName, item.Price)
		} else {
			fmt.Fprintf(&b, "  %d x %s - %.2f\n", item.Quantity, item.TicketTypeName, item.Price)
		}
	}
	fmt.Fprintf(&b, "\nRefund amount: %.2f\nRemaining order total: %.2f\n", reduction, order.Total)

	s.dispatch(ctx, &Message{
		ID:             uuid.New(),
		Type:           TypeOrderCancelled,
		RecipientEmail: order.CustomerEmail,
		RecipientName:  order.CustomerName,
		Subject:        fmt.Sprintf("Cancellation confirmed for order %s", order.ID),
		Body:           b.String(),
		OrderID:        order.ID,
		EventID:        order.EventID,
		CreatedAt:      time.Now(),
	})
}

func (s *Service) dispatch(ctx context.Context, msg *Message) {
	if s.producer != nil {
		err := s.producer.Publish(ctx, msg)
		if err == nil {
			return
		}
		logger.GetDefault().ErrorWithContext(ctx, "failed to queue notification", err,
			map[string]interface{}{"type": msg.Type, "order_id": msg.OrderID.String()})
	}
	if s.email == nil {
		return
	}
	if err := s.email.Send(msg.RecipientEmail, msg.Subject, msg.Body); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to send notification email", err,
			map[string]interface{}{"type": msg.Type, "order_id": msg.OrderID.String()})
	}
}
