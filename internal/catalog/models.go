package catalog

import (
	"time"

	"github.com/google/uuid"
)

// TicketType is a sale category offered across events (e.g. "VIP",
// "Standing"). HasTicketCount marks types sold from a counted pool rather
// than per seat.
type TicketType struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name           string    `gorm:"unique;not null" json:"name"`
	Color          string    `gorm:"type:varchar(20)" json:"color"`
	HasTicketCount bool      `gorm:"default:false" json:"has_ticket_count"`
	Active         bool      `gorm:"default:true" json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Artist is a performer referenced by events.
type Artist struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for TicketType.
func (TicketType) TableName() string {
	return "ticket_types"
}

// TableName sets the table name for Artist.
func (Artist) TableName() string {
	return "artists"
}

// CreateTicketTypeRequest creates a new ticket type.
type CreateTicketTypeRequest struct {
	Name           string `json:"name" binding:"required,min=1,max=100"`
	Color          string `json:"color" binding:"omitempty,max=20"`
	HasTicketCount bool   `json:"has_ticket_count"`
}

// CreateArtistRequest creates a new artist.
type CreateArtistRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}
