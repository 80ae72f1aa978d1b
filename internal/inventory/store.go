package inventory

import (
	"context"
	"errors"

	"ticketly/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store loads and saves one event's full inventory. Save is a compare-and-
// swap on the row version: two concurrent read-modify-write cycles against
// the same event cannot silently overwrite each other.
type Store interface {
	Load(ctx context.Context, eventID uuid.UUID) (*EventInventory, error)
	Save(ctx context.Context, inv *EventInventory) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates an inventory store over the events table.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

type inventoryRow struct {
	ID               uuid.UUID
	SeatMap          string
	TicketDetails    string
	InventoryVersion int64
}

func (s *gormStore) Load(ctx context.Context, eventID uuid.UUID) (*EventInventory, error) {
	var row inventoryRow
	err := s.db.WithContext(ctx).
		Table("events").
		Select("id, seat_map, ticket_details, inventory_version").
		Where("id = ?", eventID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "event %s not found", eventID)
	}
	if err != nil {
		return nil, err
	}

	inv := &EventInventory{
		EventID: row.ID,
		Version: row.InventoryVersion,
	}

	seats, seatErr := DecodeSeats(row.SeatMap)
	tickets, ticketErr := DecodeTickets(row.TicketDetails)
	inv.Seats = seats
	inv.Tickets = tickets

	// An unreadable column degrades to an empty collection, but the error
	// still reaches the caller: mutation paths must not save over a column
	// they could not read.
	if seatErr != nil {
		return inv, apperr.Wrap(apperr.KindStorageParse, seatErr, "event %s inventory is temporarily unreadable", eventID)
	}
	if ticketErr != nil {
		return inv, apperr.Wrap(apperr.KindStorageParse, ticketErr, "event %s inventory is temporarily unreadable", eventID)
	}

	return inv, nil
}

func (s *gormStore) Save(ctx context.Context, inv *EventInventory) error {
	seatMap, err := EncodeSeats(inv.Seats)
	if err != nil {
		return err
	}
	ticketDetails, err := EncodeTickets(inv.Tickets)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Table("events").
		Where("id = ? AND inventory_version = ?", inv.EventID, inv.Version).
		Updates(map[string]interface{}{
			"seat_map":          seatMap,
			"ticket_details":    ticketDetails,
			"inventory_version": inv.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.KindVersionConflict, "event %s inventory changed concurrently", inv.EventID)
	}

	inv.Version++
	return nil
}
