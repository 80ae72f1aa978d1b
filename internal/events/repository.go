package events

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	ListPublished(ctx context.Context, limit, offset int) ([]Event, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) ListPublished(ctx context.Context, limit, offset int) ([]Event, error) {
	var list []Event
	err := r.db.WithContext(ctx).
		Where("status = ?", "PUBLISHED").
		Order("starts_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", id).
		Update("status", status).Error
}
