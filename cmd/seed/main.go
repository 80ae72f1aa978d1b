package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ticketly/internal/auth"
	"ticketly/internal/catalog"
	"ticketly/internal/events"
	"ticketly/internal/shared/config"
	"ticketly/internal/shared/database"
)

type Seeder struct {
	db  *database.DB
	cfg *config.Config
}

func main() {
	fmt.Println("Starting Ticketly database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, cfg: cfg}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedAll(context.Background()); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Seeding completed. Database is ready for testing.")
}

// CleanDatabase truncates all tables, children before parents.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"canceled_tickets",
		"orders",
		"seat_reservations",
		"events",
		"ticket_types",
		"artists",
		"users",
	}
	for _, table := range tables {
		if err := s.db.GetPostgreSQL().Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) SeedAll(ctx context.Context) error {
	if err := s.seedUsers(ctx); err != nil {
		return err
	}
	return s.seedCatalogAndEvent(ctx)
}

func (s *Seeder) seedUsers(ctx context.Context) error {
	repo := auth.NewRepository(s.db.GetPostgreSQL())

	accounts := []struct {
		name, email, password, role string
	}{
		{"Admin", "admin@ticketly.local", "admin-password", auth.RoleAdmin},
		{"Box Office", "boxoffice@ticketly.local", "staff-password", auth.RoleStaff},
	}
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user := &auth.User{
			Name:         a.name,
			Email:        a.email,
			PasswordHash: string(hash),
			Role:         a.role,
			Active:       true,
		}
		if err := repo.Create(ctx, user); err != nil {
			return err
		}
		fmt.Printf("  user %s (%s)\n", a.email, a.role)
	}
	return nil
}

func (s *Seeder) seedCatalogAndEvent(ctx context.Context) error {
	catalogService := catalog.NewService(catalog.NewRepository(s.db.GetPostgreSQL()))

	vip, err := catalogService.CreateTicketType(ctx, catalog.CreateTicketTypeRequest{
		Name: "VIP", Color: "#d4af37",
	})
	if err != nil {
		return err
	}
	standard, err := catalogService.CreateTicketType(ctx, catalog.CreateTicketTypeRequest{
		Name: "Standard", Color: "#1e90ff",
	})
	if err != nil {
		return err
	}
	standing, err := catalogService.CreateTicketType(ctx, catalog.CreateTicketTypeRequest{
		Name: "Standing", Color: "#32cd32", HasTicketCount: true,
	})
	if err != nil {
		return err
	}

	artist, err := catalogService.CreateArtist(ctx, catalog.CreateArtistRequest{Name: "The Midnight Echo"})
	if err != nil {
		return err
	}
	fmt.Printf("  ticket types VIP/Standard/Standing, artist %s\n", artist.Name)

	eventService := events.NewService(events.NewRepository(s.db.GetPostgreSQL()), catalogService)

	var seats []events.SeatSetup
	for row := 'A'; row <= 'B'; row++ {
		for num := 1; num <= 10; num++ {
			seats = append(seats, events.SeatSetup{
				SeatID:       fmt.Sprintf("%c%d", row, num),
				Price:        120,
				TicketTypeID: vip.ID.String(),
			})
		}
	}
	for row := 'C'; row <= 'F'; row++ {
		for num := 1; num <= 12; num++ {
			seats = append(seats, events.SeatSetup{
				SeatID:       fmt.Sprintf("%c%d", row, num),
				Price:        60,
				TicketTypeID: standard.ID.String(),
			})
		}
	}

	standingPool := 300
	event, err := eventService.CreateEvent(ctx, events.CreateEventRequest{
		Name:     "The Midnight Echo - Summer Tour",
		ArtistID: artist.ID.String(),
		Venue:    "Riverside Arena",
		StartsAt: time.Now().AddDate(0, 1, 0),
		Seats:    seats,
		Tickets: []events.CounterSetup{
			{TicketTypeID: standing.ID.String(), Price: 35, TicketCount: &standingPool},
		},
	})
	if err != nil {
		return err
	}
	if err := eventService.Publish(ctx, event.ID.String()); err != nil {
		return err
	}
	fmt.Printf("  event %s with %d seats and a standing pool of %d\n", event.Name, len(seats), standingPool)

	return nil
}
