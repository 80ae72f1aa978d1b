package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is one sellable show. The seat map and counted-ticket pools are
// embedded as JSON text columns and mutated whole through the inventory
// store; InventoryVersion backs its optimistic save.
type Event struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name             string    `gorm:"not null" json:"name"`
	ArtistID         uuid.UUID `gorm:"type:uuid;index" json:"artist_id"`
	Venue            string    `json:"venue"`
	StartsAt         time.Time `json:"starts_at"`
	Status           string    `gorm:"type:varchar(20);check:status IN ('DRAFT', 'PUBLISHED', 'INACTIVE');default:'DRAFT'" json:"status"`
	SeatMap          string    `gorm:"type:text" json:"-"`
	TicketDetails    string    `gorm:"type:text" json:"-"`
	InventoryVersion int64     `gorm:"default:0" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName sets the table name for Event.
func (Event) TableName() string {
	return "events"
}

func (e *Event) IsPublished() bool {
	return e.Status == "PUBLISHED"
}

// SeatSetup is one seat in the fixed map laid out at event creation.
type SeatSetup struct {
	SeatID       string  `json:"seat_id" binding:"required"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	TicketTypeID string  `json:"ticket_type_id" binding:"required,uuid"`
}

// CounterSetup is one counted-ticket pool offered by the event.
type CounterSetup struct {
	TicketTypeID string  `json:"ticket_type_id" binding:"required,uuid"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	// TicketCount nil means the pool is not capacity-limited.
	TicketCount *int `json:"ticket_count" binding:"omitempty,gt=0"`
}

// CreateEventRequest creates an event together with its fixed inventory.
type CreateEventRequest struct {
	Name     string         `json:"name" binding:"required,min=1,max=200"`
	ArtistID string         `json:"artist_id" binding:"required,uuid"`
	Venue    string         `json:"venue" binding:"omitempty,max=200"`
	StartsAt time.Time      `json:"starts_at" binding:"required"`
	Seats    []SeatSetup    `json:"seats" binding:"omitempty,dive"`
	Tickets  []CounterSetup `json:"tickets" binding:"omitempty,dive"`
}

// EventResponse is the public view of an event.
type EventResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ArtistID   string    `json:"artist_id"`
	ArtistName string    `json:"artist_name,omitempty"`
	Venue      string    `json:"venue"`
	StartsAt   time.Time `json:"starts_at"`
	Status     string    `json:"status"`
}
