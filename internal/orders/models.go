package orders

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order statuses.
const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderFailed    = "failed"
	OrderCancelled = "cancelled"
)

// Order is one checkout: a customer snapshot plus the order's own copy of
// what was bought. SeatIDs and TicketsWithoutSeats are the order's snapshot,
// mutated independently of the event's inventory on partial cancellation;
// the cancellation engine keeps the two in sync.
type Order struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID         uuid.UUID `gorm:"type:uuid;index;not null" json:"event_id"`
	CustomerName    string    `gorm:"not null" json:"customer_name"`
	CustomerEmail   string    `gorm:"not null" json:"customer_email"`
	CustomerPhone   string    `json:"customer_phone"`
	CustomerCountry string    `json:"customer_country"`

	SeatIDs             string `gorm:"type:text" json:"-"`
	TicketsWithoutSeats string `gorm:"type:text" json:"-"`

	SubTotal float64 `gorm:"not null" json:"sub_total"`
	Discount float64 `gorm:"default:0" json:"discount"`
	Total    float64 `gorm:"not null" json:"total"`

	Status      string `gorm:"type:varchar(20);check:status IN ('pending', 'completed', 'failed', 'cancelled');default:'pending';index" json:"status"`
	GatewayTxID string `gorm:"index" json:"gateway_tx_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Order.
func (Order) TableName() string {
	return "orders"
}

// TicketLine is one counted-ticket line in the order snapshot.
type TicketLine struct {
	TicketTypeID string `json:"ticket_type_id"`
	TicketCount  int    `json:"ticket_count"`
	IssuedCount  int    `json:"issued_count"`
}

func (o *Order) IsTerminal() bool {
	return o.Status == OrderCompleted || o.Status == OrderFailed || o.Status == OrderCancelled
}

func (o *Order) IsCancelled() bool {
	return o.Status == OrderCancelled
}

// DecodeSeatIDs parses the order's seat snapshot. An unreadable column
// decodes to empty rather than failing the caller.
func (o *Order) DecodeSeatIDs() []string {
	var ids []string
	if err := decodeJSONArray(o.SeatIDs, &ids); err != nil || ids == nil {
		return []string{}
	}
	return ids
}

// DecodeTicketLines parses the order's counted-ticket snapshot.
func (o *Order) DecodeTicketLines() []TicketLine {
	var lines []TicketLine
	if err := decodeJSONArray(o.TicketsWithoutSeats, &lines); err != nil || lines == nil {
		return []TicketLine{}
	}
	return lines
}

// SetSeatIDs replaces the order's seat snapshot.
func (o *Order) SetSeatIDs(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode seat snapshot: %w", err)
	}
	o.SeatIDs = string(data)
	return nil
}

// SetTicketLines replaces the order's counted-ticket snapshot.
func (o *Order) SetTicketLines(lines []TicketLine) error {
	if lines == nil {
		lines = []TicketLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode ticket snapshot: %w", err)
	}
	o.TicketsWithoutSeats = string(data)
	return nil
}

func decodeJSONArray(raw string, dest interface{}) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return err
		}
		trimmed = strings.TrimSpace(inner)
		if trimmed == "" || trimmed == "null" {
			return nil
		}
	}
	return json.Unmarshal([]byte(trimmed), dest)
}

// TicketSelection is one requested counted-ticket line at checkout.
type TicketSelection struct {
	TicketTypeID string `json:"ticket_type_id" binding:"required"`
	TicketCount  int    `json:"ticket_count" binding:"required,gt=0"`
}

// CheckoutRequest submits a full seat/ticket selection.
type CheckoutRequest struct {
	EventID         string            `json:"event_id" binding:"required,uuid"`
	CustomerName    string            `json:"customer_name" binding:"required,min=1,max=200"`
	CustomerEmail   string            `json:"customer_email" binding:"required,email"`
	CustomerPhone   string            `json:"customer_phone" binding:"omitempty,max=30"`
	CustomerCountry string            `json:"customer_country" binding:"omitempty,max=100"`
	SeatIDs         []string          `json:"seat_ids" binding:"omitempty,dive,min=1"`
	Tickets         []TicketSelection `json:"tickets" binding:"omitempty,dive"`
}

// CheckoutResponse returns the created order plus its priced lines.
type CheckoutResponse struct {
	OrderID     string       `json:"order_id"`
	EventID     string       `json:"event_id"`
	Status      string       `json:"status"`
	SeatIDs     []string     `json:"seat_ids"`
	Tickets     []TicketLine `json:"tickets"`
	SubTotal    float64      `json:"sub_total"`
	Discount    float64      `json:"discount"`
	Total       float64      `json:"total"`
	GatewayTxID string       `json:"gateway_tx_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ToCheckoutResponse converts an order for API responses.
func (o *Order) ToCheckoutResponse() *CheckoutResponse {
	return &CheckoutResponse{
		OrderID:     o.ID.String(),
		EventID:     o.EventID.String(),
		Status:      o.Status,
		SeatIDs:     o.DecodeSeatIDs(),
		Tickets:     o.DecodeTicketLines(),
		SubTotal:    o.SubTotal,
		Discount:    o.Discount,
		Total:       o.Total,
		GatewayTxID: o.GatewayTxID,
		CreatedAt:   o.CreatedAt,
	}
}
