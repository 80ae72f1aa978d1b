package database

import (
	"fmt"

	"ticketly/internal/auth"
	"ticketly/internal/cancellation"
	"ticketly/internal/catalog"
	"ticketly/internal/events"
	"ticketly/internal/orders"
	"ticketly/internal/reservations"

	"gorm.io/gorm"
)

// Migrate applies the schema for all persisted entities.
func Migrate(db *gorm.DB) error {
	// uuid_generate_v4 defaults require the extension.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	models := []interface{}{
		&auth.User{},
		&catalog.Artist{},
		&catalog.TicketType{},
		&events.Event{},
		&reservations.SeatReservation{},
		&orders.Order{},
		&cancellation.CanceledTicket{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	return nil
}
