package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/haulhub-backend/api/controllers"
	"github.com/angelmondragon/haulhub-backend/api/middleware"
	"github.com/angelmondragon/haulhub-backend/internal/bids"
	"github.com/angelmondragon/haulhub-backend/internal/bookings"
	"github.com/angelmondragon/haulhub-backend/internal/loads"
	"github.com/angelmondragon/haulhub-backend/internal/notifications"
	"github.com/angelmondragon/haulhub-backend/pkg/config"
	"github.com/angelmondragon/haulhub-backend/pkg/db"
	"github.com/angelmondragon/haulhub-backend/pkg/enums"
	"github.com/angelmondragon/haulhub-backend/pkg/logger"
	"github.com/angelmondragon/haulhub-backend/pkg/redis"
)

// Services bundles everything NewRouter wires into handlers.
type Services struct {
	Loads         loads.Service
	Bids          bids.Service
	Bookings      bookings.Service
	Notifications notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var redisP redis.Pinger
	if redisClient != nil {
		redisP = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	// public shipment tracking by code, no credentials needed
	r.Get("/api/v1/track/{trackingCode}", controllers.TrackLoad(svcs.Loads, logg))

	noop := func(next http.Handler) http.Handler { return next }
	bidRate, loadRate := noop, noop
	if redisClient != nil {
		bidRate = middleware.WriteRateLimit(
			middleware.NewWriteRatePolicy("bid-submit", cfg.RateLimit.BidWindow, cfg.RateLimit.BidLimit),
			redisClient, logg)
		loadRate = middleware.WriteRateLimit(
			middleware.NewWriteRatePolicy("load-create", cfg.RateLimit.LoadWindow, cfg.RateLimit.LoadLimit),
			redisClient, logg)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Route("/loads", func(r chi.Router) {
			r.Get("/", controllers.LoadBoard(svcs.Loads, logg))
			r.Get("/{loadID}", controllers.LoadDetail(svcs.Loads, logg))
			r.Get("/{loadID}/booking", controllers.LoadBooking(svcs.Bookings, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleShipper, logg))
				r.With(loadRate).Post("/", controllers.CreateLoad(svcs.Loads, logg))
				r.Get("/mine", controllers.MyLoads(svcs.Loads, logg))
				r.Put("/{loadID}", controllers.UpdateLoad(svcs.Loads, logg))
				r.Post("/{loadID}/cancel", controllers.CancelLoad(svcs.Loads, logg))
				r.Delete("/{loadID}", controllers.DeleteLoad(svcs.Loads, logg))
				r.Get("/{loadID}/bids", controllers.LoadBids(svcs.Bids, logg))
			})

			r.With(middleware.RequireRole(enums.UserRoleCarrier, logg), bidRate).
				Post("/{loadID}/bids", controllers.SubmitBid(svcs.Bids, logg))
		})

		r.Route("/bids", func(r chi.Router) {
			r.With(middleware.RequireRole(enums.UserRoleCarrier, logg)).
				Get("/mine", controllers.MyBids(svcs.Bids, logg))
			r.With(middleware.RequireRole(enums.UserRoleCarrier, logg)).
				Post("/{bidID}/withdraw", controllers.WithdrawBid(svcs.Bids, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleShipper, logg))
				r.Post("/{bidID}/accept", controllers.AcceptBid(svcs.Bids, logg))
				r.Post("/{bidID}/reject", controllers.RejectBid(svcs.Bids, logg))
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/{bidID}", controllers.BookingDetail(svcs.Bookings, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleCarrier, logg))
				r.Post("/{bidID}/pickup", controllers.BookingPickup(svcs.Bookings, logg))
				r.Post("/{bidID}/deliver", controllers.BookingDeliver(svcs.Bookings, logg))
				r.Put("/{bidID}/progress", controllers.BookingProgress(svcs.Bookings, logg))
				r.Post("/{bidID}/delay", controllers.BookingDelay(svcs.Bookings, logg))
			})

			r.With(middleware.RequireRole(enums.UserRoleShipper, logg)).
				Post("/{bidID}/cancel", controllers.BookingCancel(svcs.Bookings, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(svcs.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
			r.Delete("/{notificationID}", controllers.DeleteNotification(svcs.Notifications, logg))
			r.Delete("/read", controllers.DeleteReadNotifications(svcs.Notifications, logg))
		})
	})

	return r
}
