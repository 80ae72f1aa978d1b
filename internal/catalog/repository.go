package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateTicketType(ctx context.Context, ticketType *TicketType) error
	GetTicketTypeByID(ctx context.Context, id uuid.UUID) (*TicketType, error)
	ListTicketTypes(ctx context.Context) ([]TicketType, error)
	DeactivateTicketType(ctx context.Context, id uuid.UUID) error

	CreateArtist(ctx context.Context, artist *Artist) error
	GetArtistByID(ctx context.Context, id uuid.UUID) (*Artist, error)
	ListArtists(ctx context.Context) ([]Artist, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTicketType(ctx context.Context, ticketType *TicketType) error {
	return r.db.WithContext(ctx).Create(ticketType).Error
}

func (r *repository) GetTicketTypeByID(ctx context.Context, id uuid.UUID) (*TicketType, error) {
	var ticketType TicketType
	if err := r.db.WithContext(ctx).First(&ticketType, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ticketType, nil
}

func (r *repository) ListTicketTypes(ctx context.Context) ([]TicketType, error) {
	var ticketTypes []TicketType
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&ticketTypes).Error
	return ticketTypes, err
}

func (r *repository) DeactivateTicketType(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&TicketType{}).
		Where("id = ?", id).
		Update("active", false).Error
}

func (r *repository) CreateArtist(ctx context.Context, artist *Artist) error {
	return r.db.WithContext(ctx).Create(artist).Error
}

func (r *repository) GetArtistByID(ctx context.Context, id uuid.UUID) (*Artist, error) {
	var artist Artist
	if err := r.db.WithContext(ctx).First(&artist, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &artist, nil
}

func (r *repository) ListArtists(ctx context.Context) ([]Artist, error) {
	var artists []Artist
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&artists).Error
	return artists, err
}
