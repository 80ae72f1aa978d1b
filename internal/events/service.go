package events

import (
	"context"
	"errors"
	"fmt"

	"ticketly/internal/inventory"
	"ticketly/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogService resolves ticket types and artists during event setup.
type CatalogService interface {
	TicketTypeName(ctx context.Context, ticketTypeID string) (string, error)
	ArtistName(ctx context.Context, artistID string) (string, error)
}

type Service interface {
	CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListPublished(ctx context.Context, limit, offset int) ([]EventResponse, error)
	Publish(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
}

type service struct {
	repo    Repository
	catalog CatalogService
}

func NewService(repo Repository, catalog CatalogService) Service {
	return &service{repo: repo, catalog: catalog}
}

// CreateEvent lays out the fixed seat map and counted-ticket pools. Every
// seat starts available; counters start with nothing booked.
func (s *service) CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error) {
	artistID, err := uuid.Parse(req.ArtistID)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidInput, "invalid artist ID")
	}
	if _, err := s.catalog.ArtistName(ctx, req.ArtistID); err != nil {
		return nil, err
	}

	seats := make([]inventory.Seat, 0, len(req.Seats))
	seen := make(map[string]bool, len(req.Seats))
	for _, setup := range req.Seats {
		if seen[setup.SeatID] {
			return nil, apperr.New(apperr.KindInvalidInput, "duplicate seat ID %s", setup.SeatID)
		}
		seen[setup.SeatID] = true

		typeName, err := s.catalog.TicketTypeName(ctx, setup.TicketTypeID)
		if err != nil {
			return nil, err
		}

		seats = append(seats, inventory.Seat{
			SeatID:         setup.SeatID,
			Status:         inventory.SeatAvailable,
			Price:          setup.Price,
			TicketTypeName: typeName,
			TypeID:         setup.TicketTypeID,
		})
	}

	tickets := make([]inventory.TicketTypeCounter, 0, len(req.Tickets))
	for _, setup := range req.Tickets {
		if _, err := s.catalog.TicketTypeName(ctx, setup.TicketTypeID); err != nil {
			return nil, err
		}
		tickets = append(tickets, inventory.TicketTypeCounter{
			TicketTypeID:      setup.TicketTypeID,
			Price:             setup.Price,
			TicketCount:       setup.TicketCount,
			HasTicketCount:    true,
			BookedTicketCount: 0,
		})
	}

	seatMap, err := inventory.EncodeSeats(seats)
	if err != nil {
		return nil, err
	}
	ticketDetails, err := inventory.EncodeTickets(tickets)
	if err != nil {
		return nil, err
	}

	event := &Event{
		Name:          req.Name,
		ArtistID:      artistID,
		Venue:         req.Venue,
		StartsAt:      req.StartsAt,
		Status:        "DRAFT",
		SeatMap:       seatMap,
		TicketDetails: ticketDetails,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *service) GetEvent(ctx context.Context, id string) (*Event, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidInput, "invalid event ID")
	}

	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "event %s not found", id)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (s *service) ListPublished(ctx context.Context, limit, offset int) ([]EventResponse, error) {
	list, err := s.repo.ListPublished(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	responses := make([]EventResponse, 0, len(list))
	for _, event := range list {
		resp := EventResponse{
			ID:       event.ID.String(),
			Name:     event.Name,
			ArtistID: event.ArtistID.String(),
			Venue:    event.Venue,
			StartsAt: event.StartsAt,
			Status:   event.Status,
		}
		if name, err := s.catalog.ArtistName(ctx, event.ArtistID.String()); err == nil {
			resp.ArtistName = name
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *service) Publish(ctx context.Context, id string) error {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, event.ID, "PUBLISHED")
}

func (s *service) Deactivate(ctx context.Context, id string) error {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, event.ID, "INACTIVE")
}
