package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/haulhub-backend/api/middleware"
	"github.com/angelmondragon/haulhub-backend/api/responses"
	"github.com/angelmondragon/haulhub-backend/api/validators"
	"github.com/angelmondragon/haulhub-backend/internal/bids"
	"github.com/angelmondragon/haulhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haulhub-backend/pkg/errors"
	"github.com/angelmondragon/haulhub-backend/pkg/logger"
	"github.com/angelmondragon/haulhub-backend/pkg/pagination"
)

type submitBidBody struct {
	Price     string  `json:"price" validate:"required"`
	VehicleID *string `json:"vehicle_id,omitempty" validate:"omitempty,uuid"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// SubmitBid places a carrier's offer on a posted load.
func SubmitBid(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bids service unavailable"))
			return
		}

		loadID, err := validators.ParsePathUUID(r, "loadID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitBidBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(strings.TrimSpace(body.Price))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be a decimal string"))
			return
		}

		input := bids.SubmitInput{LoadID: loadID, Price: price, Notes: body.Notes}
		if body.VehicleID != nil {
			vehicleID, parseErr := uuid.Parse(*body.VehicleID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid vehicle id"))
				return
			}
			input.VehicleID = &vehicleID
		}

		bid, err := svc.Submit(r.Context(), middleware.ActorFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, bid)
	}
}

// LoadBids lists every bid on a load for its shipper.
func LoadBids(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bids service unavailable"))
			return
		}

		loadID, err := validators.ParsePathUUID(r, "loadID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForLoad(r.Context(), middleware.ActorFromContext(r.Context()), loadID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// MyBids lists the authenticated carrier's bids.
func MyBids(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bids service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := bids.MyBidsParams{
			Limit:  limit,
			Cursor: validators.ParseQueryString(r, "cursor"),
		}
		if raw := validators.ParseQueryString(r, "status"); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				params.Statuses = append(params.Statuses, enums.BidStatus(strings.TrimSpace(part)))
			}
		}

		result, err := svc.ListMine(r.Context(), middleware.ActorFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AcceptBid confirms a bid, books the load, and releases losing bids.
func AcceptBid(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bids service unavailable"))
			return
		}

		bidID, err := validators.ParsePathUUID(r, "bidID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bid, err := svc.Accept(r.Context(), middleware.ActorFromContext(r.Context()), bidID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bid)
	}
}

// WithdrawBid lets a carrier pull a pending bid.
func WithdrawBid(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bids service unavailable"))
			return
		}

		bidID, err := validators.ParsePathUUID(r, "bidID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Withdraw(r.Context(), middleware.ActorFromContext(r.Context()), bidID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "withdrawn"})
	}
}

type rejectBidBody struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// RejectBid lets the load's shipper decline a pending bid.
func RejectBid(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bids service unavailable"))
			return
		}

		bidID, err := validators.ParsePathUUID(r, "bidID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rejectBidBody
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		if err := svc.Reject(r.Context(), middleware.ActorFromContext(r.Context()), bidID, validators.SanitizeString(body.Reason, 500)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "rejected"})
	}
}
