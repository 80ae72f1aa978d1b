package cancellation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateAll(ctx context.Context, rows []CanceledTicket) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]CanceledTicket, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateAll(ctx context.Context, rows []CanceledTicket) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to record cancelled tickets: %w", err)
	}
	return nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]CanceledTicket, error) {
	var rows []CanceledTicket
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cancelled tickets: %w", err)
	}
	return rows, nil
}
