package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, eventID uuid.UUID, seatID string) error
	DeleteBySeat(ctx context.Context, eventID uuid.UUID, seatID string) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	FindExpired(ctx context.Context, cutoff time.Time) ([]SeatReservation, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, eventID uuid.UUID, seatID string) error {
	entry := SeatReservation{
		EventID: eventID,
		SeatID:  seatID,
	}
	// A retried hold for the same seat keeps the original timestamp.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "seat_id"}},
			DoNothing: true,
		}).
		Create(&entry).Error
}

func (r *repository) DeleteBySeat(ctx context.Context, eventID uuid.UUID, seatID string) error {
	return r.db.WithContext(ctx).
		Where("event_id = ? AND seat_id = ?", eventID, seatID).
		Delete(&SeatReservation{}).Error
}

func (r *repository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&SeatReservation{}, "id = ?", id).Error
}

func (r *repository) FindExpired(ctx context.Context, cutoff time.Time) ([]SeatReservation, error) {
	var entries []SeatReservation
	err := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
