package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ticketly/internal/artifacts"
	"ticketly/internal/auth"
	"ticketly/internal/cancellation"
	"ticketly/internal/catalog"
	"ticketly/internal/events"
	"ticketly/internal/inventory"
	"ticketly/internal/issuance"
	"ticketly/internal/notifications"
	"ticketly/internal/orders"
	"ticketly/internal/payments"
	"ticketly/internal/reservations"
	"ticketly/internal/shared/config"
	"ticketly/internal/shared/database"
	"ticketly/pkg/cache"
	"ticketly/pkg/logger"
	"ticketly/pkg/ratelimit"
)

// Router wires every feature against the shared infrastructure. SetupRoutes
// builds the dependency graph once; background workers it creates are
// exposed for the server to start and stop.
type Router struct {
	config *config.Config
	db     *database.DB

	// Background workers, available after SetupRoutes.
	Jobs     *reservations.JobProcessor
	Consumer *notifications.Consumer
	Producer notifications.Producer
}

// NewRouter creates a new router instance.
func NewRouter(cfg *config.Config, db *database.DB) *Router {
	return &Router{config: cfg, db: db}
}

// SetupRoutes configures all application routes.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	pg := r.db.GetPostgreSQL()

	limiter := ratelimit.NewRateLimiter(r.db.GetRedisClient(), &ratelimit.Config{
		Enabled:         r.config.RateLimit.Enabled,
		WindowDuration:  r.config.RateLimit.WindowDuration,
		DefaultRequests: r.config.RateLimit.DefaultRequests,
		BookingRequests: r.config.RateLimit.BookingRequests,
		PublicRequests:  r.config.RateLimit.PublicRequests,
	})

	catalogService := catalog.NewService(catalog.NewRepository(pg))

	reservationRepo := reservations.NewRepository(pg)

	inventoryService := inventory.NewService(inventory.NewStore(pg), reservationRepo, catalogService)
	inventoryService.SetCacheService(cache.NewService(r.db.GetRedisClient()), r.config.Redis.CacheTTL)

	eventService := events.NewService(events.NewRepository(pg), catalogService)

	orderRepo := orders.NewRepository(pg)
	orderService := orders.NewService(orderRepo, inventoryService, reservationRepo)
	orderService.SetCatalog(catalogService)

	cancellationService := cancellation.NewService(
		cancellation.NewRepository(pg), orderRepo, inventoryService, catalogService)

	issuanceService := issuance.NewService(inventoryService, orderRepo)

	paymentService := payments.NewService(orderService, r.config)

	r.wireNotifications(orderService, cancellationService)
	r.wireArtifacts(orderService)

	sweeper := reservations.NewSweeper(reservationRepo, inventoryService, r.config.Reservation.HoldTTL)
	r.Jobs = reservations.NewJobProcessor(sweeper, r.config.Reservation.SweepInterval)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		auth.SetupAuthRoutes(api, auth.NewController(auth.NewService(auth.NewRepository(pg), r.config)), r.config)
		catalog.SetupCatalogRoutes(api, catalog.NewController(catalogService), r.config)
		events.SetupEventRoutes(api, events.NewController(eventService), r.config)

		public := api.Group("", ratelimit.Middleware(limiter, "public"))
		{
			inventory.SetupInventoryRoutes(public, inventory.NewController(inventoryService), r.config)
			payments.SetupPaymentRoutes(public, payments.NewController(paymentService))
		}

		booking := api.Group("", ratelimit.Middleware(limiter, "booking"))
		{
			orders.SetupOrderRoutes(booking, orders.NewController(orderService), r.config)
			cancellation.SetupCancellationRoutes(booking, cancellation.NewController(cancellationService), r.config)
			issuance.SetupIssuanceRoutes(booking, issuance.NewController(issuanceService), r.config)
		}

		reservations.SetupReservationRoutes(api, reservations.NewController(sweeper), r.config)
	}
}

// wireNotifications attaches the notification facade to the flows that send
// customer email. When Kafka is disabled, delivery degrades to direct SMTP.
func (r *Router) wireNotifications(orderService orders.Service, cancellationService cancellation.Service) {
	email := notifications.NewSMTPSender(r.config)

	if r.config.Kafka.Enabled {
		producer, err := notifications.NewKafkaProducer(r.config)
		if err != nil {
			logger.GetDefault().Error("notification producer unavailable, falling back to direct email",
				"error", err.Error())
		} else {
			r.Producer = producer
		}

		consumer, err := notifications.NewConsumer(r.config, email)
		if err != nil {
			logger.GetDefault().Error("notification consumer unavailable", "error", err.Error())
		} else {
			r.Consumer = consumer
		}
	}

	notifier := notifications.NewService(r.Producer, email)
	orderService.SetNotifier(notifier)
	cancellationService.SetNotifier(notifier)
}

func (r *Router) wireArtifacts(orderService orders.Service) {
	store, err := artifacts.NewDiskStorage(r.config.Artifacts.Path, r.config.Artifacts.PublicURL)
	if err != nil {
		logger.GetDefault().Error("artifact storage unavailable, tickets will not be persisted",
			"error", err.Error())
		return
	}
	orderService.SetArtifactStore(store)
}

// setupHealthRoutes sets up health check and system status routes.
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "ticketly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "ticketly-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
