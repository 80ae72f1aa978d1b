package reservations

import (
	"time"

	"github.com/google/uuid"
)

// SeatReservation is one ledger entry for a currently-pending seat hold. The
// row's CreatedAt is the sole source of truth for when the hold started; the
// sweeper releases seats whose entry is older than the hold TTL.
type SeatReservation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_event_seat_hold" json:"event_id"`
	SeatID    string    `gorm:"not null;uniqueIndex:idx_event_seat_hold" json:"seat_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name for SeatReservation.
func (SeatReservation) TableName() string {
	return "seat_reservations"
}
