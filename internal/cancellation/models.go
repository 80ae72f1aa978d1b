package cancellation

import (
	"time"

	"github.com/google/uuid"
)

// Cancelled line kinds.
const (
	LineSeat    = "seat"
	LineCounted = "no seat"
)

// CanceledTicket is one audit row of a cancellation: which order lost what,
// at which cost. Counted-ticket cancellations aggregate into one row with
// Quantity > 1 whose Price is the whole batch's reduction; seat cancellations
// get one row per seat carrying that seat's price.
type CanceledTicket struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID        uuid.UUID `gorm:"type:uuid;index;not null" json:"order_id"`
	Type           string    `gorm:"type:varchar(10);check:type IN ('seat', 'no seat');not null" json:"type"`
	SeatID         *string   `json:"seat_id,omitempty"`
	TicketTypeID   string    `gorm:"not null" json:"ticket_type_id"`
	TicketTypeName string    `json:"ticket_type_name"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	Price          float64   `gorm:"not null" json:"price"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName sets the table name for CanceledTicket.
func (CanceledTicket) TableName() string {
	return "canceled_tickets"
}

// CancelSeatsRequest names the seats to drop from an order. FallbackPrice is
// used for the refund line when a seat no longer exists in the event's
// inventory and its price cannot be read back.
type CancelSeatsRequest struct {
	SeatIDs       []string `json:"seat_ids" binding:"required,min=1,dive,min=1"`
	FallbackPrice float64  `json:"fallback_price" binding:"omitempty,gte=0"`
}

// CancelCountedRequest drops counted tickets from an order line.
type CancelCountedRequest struct {
	TicketTypeID string `json:"ticket_type_id" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required"`
}

// Result reports what a cancellation changed.
type Result struct {
	OrderID     string           `json:"order_id"`
	OrderStatus string           `json:"order_status"`
	Cancelled   []CanceledTicket `json:"cancelled"`
	Reduction   float64          `json:"reduction"`
	NewTotal    float64          `json:"new_total"`
	// SkippedSeats lists requested seats that were not part of the order.
	SkippedSeats []string `json:"skipped_seats,omitempty"`
}
