package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/haulhub-backend/api/middleware"
	"github.com/angelmondragon/haulhub-backend/api/responses"
	"github.com/angelmondragon/haulhub-backend/api/validators"
	"github.com/angelmondragon/haulhub-backend/internal/loads"
	"github.com/angelmondragon/haulhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haulhub-backend/pkg/errors"
	"github.com/angelmondragon/haulhub-backend/pkg/logger"
	"github.com/angelmondragon/haulhub-backend/pkg/pagination"
)

type createLoadBody struct {
	Origin      string     `json:"origin" validate:"required,min=2,max=160"`
	Destination string     `json:"destination" validate:"required,min=2,max=160"`
	CargoType   string     `json:"cargo_type" validate:"required,min=2,max=80"`
	WeightKG    int        `json:"weight_kg" validate:"gte=0"`
	PickupDate  *time.Time `json:"pickup_date,omitempty"`
	Notes       *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type updateLoadBody struct {
	Origin      *string    `json:"origin,omitempty" validate:"omitempty,min=2,max=160"`
	Destination *string    `json:"destination,omitempty" validate:"omitempty,min=2,max=160"`
	CargoType   *string    `json:"cargo_type,omitempty" validate:"omitempty,min=2,max=80"`
	WeightKG    *int       `json:"weight_kg,omitempty" validate:"omitempty,gte=0"`
	PickupDate  *time.Time `json:"pickup_date,omitempty"`
	Notes       *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type cancelLoadBody struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// CreateLoad posts a new load to the board.
func CreateLoad(svc loads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loads service unavailable"))
			return
		}

		var body createLoadBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		load, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), loads.CreateInput{
			Origin:      validators.SanitizeString(body.Origin, 160),
			Destination: validators.SanitizeString(body.Destination, 160),
			CargoType:   validators.SanitizeString(body.CargoType, 80),
			WeightKG:    body.WeightKG,
			PickupDate:  body.PickupDate,
			Notes:       body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, load)
	}
}

// LoadBoard lists open loads for carriers to browse.
func LoadBoard(svc loads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loads service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		statuses, err := parseLoadStatuses(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListBoard(r.Context(), loads.BoardParams{
			Statuses: statuses,
			Limit:    limit,
			Cursor:   validators.ParseQueryString(r, "cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MyLoads lists the authenticated shipper's loads.
func MyLoads(svc loads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loads service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		statuses, err := parseLoadStatuses(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListMine(r.Context(), middleware.ActorFromContext(r.Context()), loads.ListParams{
			Statuses: statuses,
			Limit:    limit,
			Cursor:   validators.ParseQueryString(r, "cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// LoadDetail returns a single load; owners and admins also see its bids.
func LoadDetail(svc loads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loads service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "loadID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		load, err := svc.Get(r.Context(), middleware.ActorFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, load)
	}
}

// TrackLoad resolves a load by its public tracking code. No auth required.
func TrackLoad(svc loads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loads service unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "trackingCode"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "tracking code is required"))
			return
		}

		load, err := svc.Track(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, load)
	}
}

// UpdateLoad edits an editable load's fields.
func UpdateLoad(svc loads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loads service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "loadID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateLoadBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		load, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, loads.UpdateInput{
			Origin:      body.Origin,
			Destination: body.Destination,
			CargoType:   body.CargoType,
			WeightKG:    body.WeightKG,
			PickupDate:  body.PickupDate,
			Notes:       body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, load)
	}
}

// CancelLoad takes a load off the board and releases its pending bids.
func CancelLoad(svc loads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loads service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "loadID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cancelLoadBody
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		if err := svc.Cancel(r.Context(), middleware.ActorFromContext(r.Context()), id, validators.SanitizeString(body.Reason, 500)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

// DeleteLoad removes an editable or cancelled load.
func DeleteLoad(svc loads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loads service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "loadID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.ActorFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func parseLoadStatuses(r *http.Request) ([]enums.LoadStatus, error) {
	raw := validators.ParseQueryString(r, "status")
	if raw == "" {
		return nil, nil
	}
	var statuses []enums.LoadStatus
	for _, part := range strings.Split(raw, ",") {
		status := enums.LoadStatus(strings.TrimSpace(part))
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown load status").WithDetails(map[string]any{"status": part})
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
