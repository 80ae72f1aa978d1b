package catalog

import (
	"context"
	"errors"
	"fmt"

	"ticketly/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	CreateTicketType(ctx context.Context, req CreateTicketTypeRequest) (*TicketType, error)
	GetTicketType(ctx context.Context, id string) (*TicketType, error)
	ListTicketTypes(ctx context.Context) ([]TicketType, error)
	DeactivateTicketType(ctx context.Context, id string) error

	CreateArtist(ctx context.Context, req CreateArtistRequest) (*Artist, error)
	GetArtist(ctx context.Context, id string) (*Artist, error)
	ListArtists(ctx context.Context) ([]Artist, error)

	// TicketTypeName resolves a display name for availability listings.
	TicketTypeName(ctx context.Context, ticketTypeID string) (string, error)
	// ArtistName resolves an artist display name.
	ArtistName(ctx context.Context, artistID string) (string, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateTicketType(ctx context.Context, req CreateTicketTypeRequest) (*TicketType, error) {
	ticketType := &TicketType{
		Name:           req.Name,
		Color:          req.Color,
		HasTicketCount: req.HasTicketCount,
		Active:         true,
	}
	if err := s.repo.CreateTicketType(ctx, ticketType); err != nil {
		return nil, fmt.Errorf("failed to create ticket type: %w", err)
	}
	return ticketType, nil
}

func (s *service) GetTicketType(ctx context.Context, id string) (*TicketType, error) {
	typeID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidInput, "invalid ticket type ID")
	}

	ticketType, err := s.repo.GetTicketTypeByID(ctx, typeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "ticket type %s not found", id)
		}
		return nil, fmt.Errorf("failed to get ticket type: %w", err)
	}
	return ticketType, nil
}

func (s *service) ListTicketTypes(ctx context.Context) ([]TicketType, error) {
	return s.repo.ListTicketTypes(ctx)
}

func (s *service) DeactivateTicketType(ctx context.Context, id string) error {
	typeID, err := uuid.Parse(id)
	if err != nil {
		return apperr.New(apperr.KindInvalidInput, "invalid ticket type ID")
	}
	return s.repo.DeactivateTicketType(ctx, typeID)
}

func (s *service) CreateArtist(ctx context.Context, req CreateArtistRequest) (*Artist, error) {
	artist := &Artist{
		Name:   req.Name,
		Active: true,
	}
	if err := s.repo.CreateArtist(ctx, artist); err != nil {
		return nil, fmt.Errorf("failed to create artist: %w", err)
	}
	return artist, nil
}

func (s *service) GetArtist(ctx context.Context, id string) (*Artist, error) {
	artistID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidInput, "invalid artist ID")
	}

	artist, err := s.repo.GetArtistByID(ctx, artistID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "artist %s not found", id)
		}
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}
	return artist, nil
}

func (s *service) ListArtists(ctx context.Context) ([]Artist, error) {
	return s.repo.ListArtists(ctx)
}

func (s *service) TicketTypeName(ctx context.Context, ticketTypeID string) (string, error) {
	ticketType, err := s.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		return "", err
	}
	return ticketType.Name, nil
}

func (s *service) ArtistName(ctx context.Context, artistID string) (string, error) {
	artist, err := s.GetArtist(ctx, artistID)
	if err != nil {
		return "", err
	}
	return artist.Name, nil
}
