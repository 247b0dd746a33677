package controllers

import (
	"net/http"

	"github.com/angelmondragon/haulhub-backend/api/middleware"
	"github.com/angelmondragon/haulhub-backend/api/responses"
	"github.com/angelmondragon/haulhub-backend/api/validators"
	"github.com/angelmondragon/haulhub-backend/internal/bookings"
	"github.com/angelmondragon/haulhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haulhub-backend/pkg/errors"
	"github.com/angelmondragon/haulhub-backend/pkg/logger"
)

type progressBody struct {
	Progress     int     `json:"progress" validate:"gte=0,lte=100"`
	LocationNote *string `json:"location_note,omitempty" validate:"omitempty,max=500"`
}

type delayBody struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// BookingDetail returns the booking for a confirmed bid.
func BookingDetail(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}

		bidID, err := validators.ParsePathUUID(r, "bidID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Get(r.Context(), middleware.ActorFromContext(r.Context()), bidID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, booking)
	}
}

// LoadBooking resolves the active booking for a load.
func LoadBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}

		loadID, err := validators.ParsePathUUID(r, "loadID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.GetForLoad(r.Context(), middleware.ActorFromContext(r.Context()), loadID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, booking)
	}
}

// BookingPickup marks the shipment picked up and in transit.
func BookingPickup(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingTransition(svc, logg, enums.BidStatusInTransit)
}

// BookingDeliver marks the shipment delivered and completes the booking.
func BookingDeliver(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingTransition(svc, logg, enums.BidStatusCompleted)
}

// BookingCancel cancels the booking and returns the load to the board.
func BookingCancel(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingTransition(svc, logg, enums.BidStatusCancelled)
}

func bookingTransition(svc bookings.Service, logg *logger.Logger, target enums.BidStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}

		bidID, err := validators.ParsePathUUID(r, "bidID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Transition(r.Context(), middleware.ActorFromContext(r.Context()), bidID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, booking)
	}
}

// BookingProgress records an in-transit progress update.
func BookingProgress(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}

		bidID, err := validators.ParsePathUUID(r, "bidID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body progressBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.UpdateProgress(r.Context(), middleware.ActorFromContext(r.Context()), bidID, bookings.ProgressInput{
			Progress:     body.Progress,
			LocationNote: body.LocationNote,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"progress": body.Progress})
	}
}

// BookingDelay notifies the shipper that the shipment is running late.
func BookingDelay(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}

		bidID, err := validators.ParsePathUUID(r, "bidID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body delayBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ReportDelay(r.Context(), middleware.ActorFromContext(r.Context()), bidID, validators.SanitizeString(body.Reason, 500)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "reported"})
	}
}
