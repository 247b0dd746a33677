package loads

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/haulhub-backend/internal/authz"
	"github.com/angelmondragon/haulhub-backend/internal/notifications"
	"github.com/angelmondragon/haulhub-backend/pkg/db"
	"github.com/angelmondragon/haulhub-backend/pkg/db/models"
	"github.com/angelmondragon/haulhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haulhub-backend/pkg/errors"
	"github.com/angelmondragon/haulhub-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type dispatcher interface {
	Dispatch(ctx context.Context, messages ...notifications.Message)
}

// SiblingBids is the slice of bid operations the loads service needs when a
// load is cancelled: pending bids are released, and an active booking on an
// in-transit load is released with them. The bids package provides the
// implementation.
type SiblingBids interface {
	CancelPendingForLoad(ctx context.Context, tx *gorm.DB, loadID uuid.UUID) ([]models.Bid, error)
	CancelActiveForLoad(ctx context.Context, tx *gorm.DB, loadID uuid.UUID) ([]models.Bid, error)
}

// Service defines load lifecycle operations.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, input CreateInput) (*models.Load, error)
	Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Load, error)
	Track(ctx context.Context, trackingCode string) (*models.Load, error)
	ListBoard(ctx context.Context, params BoardParams) (*ListResult, error)
	ListMine(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error)
	Update(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateInput) (*models.Load, error)
	Cancel(ctx context.Context, actor authz.Actor, id uuid.UUID, reason string) error
	Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

// Options configures load creation behavior.
type Options struct {
	TrackingCodePrefix  string
	TrackingCodeRetries int
}

// CreateInput carries the fields a shipper posts for a new load.
type CreateInput struct {
	Origin      string
	Destination string
	CargoType   string
	WeightKG    int
	PickupDate  *time.Time
	Notes       *string
}

// UpdateInput carries mutable load fields; nil means leave unchanged.
type UpdateInput struct {
	Origin      *string
	Destination *string
	CargoType   *string
	WeightKG    *int
	PickupDate  *time.Time
	Notes       *string
}

// BoardParams filters the public marketplace board.
type BoardParams struct {
	Statuses []enums.LoadStatus
	Limit    int
	Cursor   string
}

// ListParams filters a shipper's own loads.
type ListParams struct {
	Statuses []enums.LoadStatus
	Limit    int
	Cursor   string
}

// ListResult wraps returned loads and the cursor for the next page.
type ListResult struct {
	Items  []models.Load `json:"items"`
	Cursor string        `json:"cursor"`
}

type service struct {
	repo   Repository
	tx     txRunner
	bids   SiblingBids
	notify dispatcher
	opts   Options
	now    func() time.Time
}

// NewService wires the loads service with its dependencies.
func NewService(repo Repository, tx txRunner, bids SiblingBids, notify dispatcher, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("loads repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if bids == nil {
		return nil, fmt.Errorf("sibling bids required")
	}
	if notify == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	if opts.TrackingCodePrefix == "" {
		opts.TrackingCodePrefix = "HHL"
	}
	if opts.TrackingCodeRetries <= 0 {
		opts.TrackingCodeRetries = 5
	}
	return &service{
		repo:   repo,
		tx:     tx,
		bids:   bids,
		notify: notify,
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, actor authz.Actor, input CreateInput) (*models.Load, error) {
	if err := authz.RequireRole(actor, enums.UserRoleShipper); err != nil {
		return nil, err
	}
	if input.Origin == "" || input.Destination == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "origin and destination required")
	}
	if input.CargoType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cargo type required")
	}
	if input.WeightKG < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight must not be negative")
	}

	var created *models.Load
	var lastErr error
	for attempt := 0; attempt < s.opts.TrackingCodeRetries; attempt++ {
		code, err := NewTrackingCode(s.opts.TrackingCodePrefix, s.now())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate tracking code")
		}

		load := &models.Load{
			ShipperID:    actor.UserID,
			TrackingCode: code,
			Origin:       input.Origin,
			Destination:  input.Destination,
			CargoType:    input.CargoType,
			WeightKG:     input.WeightKG,
			PickupDate:   input.PickupDate,
			Status:       enums.LoadStatusPosted,
			Notes:        input.Notes,
		}

		created, lastErr = s.repo.Create(ctx, load)
		if lastErr == nil {
			return created, nil
		}
		if !db.IsUniqueViolation(lastErr, "idx_loads_tracking_code") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "create load")
		}
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "tracking code collisions exhausted retries")
}

func (s *service) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Load, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "load id required")
	}

	load, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "load not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load load")
	}

	// bids are only visible to the load owner and admins
	if actor.IsAdmin() || actor.UserID == load.ShipperID {
		detailed, err := s.repo.FindByIDWithBids(ctx, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load load detail")
		}
		return detailed, nil
	}
	return load, nil
}

func (s *service) Track(ctx context.Context, trackingCode string) (*models.Load, error) {
	if trackingCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking code required")
	}
	load, err := s.repo.FindByTrackingCode(ctx, trackingCode)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "load not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "track load")
	}
	return load, nil
}

func (s *service) ListBoard(ctx context.Context, params BoardParams) (*ListResult, error) {
	statuses := params.Statuses
	if len(statuses) == 0 {
		statuses = []enums.LoadStatus{enums.LoadStatusPosted, enums.LoadStatusPending}
	}
	for _, status := range statuses {
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", status))
		}
	}
	return s.list(ctx, ListQuery{Statuses: statuses, Limit: params.Limit}, params.Cursor)
}

func (s *service) ListMine(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	for _, status := range params.Statuses {
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", status))
		}
	}
	shipperID := actor.UserID
	return s.list(ctx, ListQuery{ShipperID: &shipperID, Statuses: params.Statuses, Limit: params.Limit}, params.Cursor)
}

func (s *service) list(ctx context.Context, query ListQuery, rawCursor string) (*ListResult, error) {
	if rawCursor != "" {
		cursor, err := pagination.ParseCursor(rawCursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list loads")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateInput) (*models.Load, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "load id required")
	}

	updates := map[string]any{}
	if input.Origin != nil {
		if *input.Origin == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "origin must not be empty")
		}
		updates["origin"] = *input.Origin
	}
	if input.Destination != nil {
		if *input.Destination == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "destination must not be empty")
		}
		updates["destination"] = *input.Destination
	}
	if input.CargoType != nil {
		if *input.CargoType == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cargo type must not be empty")
		}
		updates["cargo_type"] = *input.CargoType
	}
	if input.WeightKG != nil {
		if *input.WeightKG < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight must not be negative")
		}
		updates["weight_kg"] = *input.WeightKG
	}
	if input.PickupDate != nil {
		updates["pickup_date"] = *input.PickupDate
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	var updated *models.Load
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		load, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "load not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load load")
		}
		if err := authz.RequireOwner(actor, load.ShipperID); err != nil {
			return err
		}
		if !load.Status.Editable() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "load can no longer be edited")
		}
		if err := repo.UpdateFields(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update load")
		}
		updated, err = repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload load")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, actor authz.Actor, id uuid.UUID, reason string) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "load id required")
	}

	var cancelled []models.Bid
	var trackingCode string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		load, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "load not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load load")
		}
		if err := authz.RequireOwner(actor, load.ShipperID); err != nil {
			return err
		}
		trackingCode = load.TrackingCode

		// delivered is the only terminal state that refuses cancellation
		flipped, err := repo.UpdateStatusIf(ctx, id, enums.LoadStatusCancelled,
			enums.LoadStatusPosted, enums.LoadStatusPending, enums.LoadStatusInTransit, enums.LoadStatusCancelled)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel load")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "load cannot be cancelled in current state")
		}

		if reason != "" {
			notes := reason
			if load.Notes != nil && *load.Notes != "" {
				notes = *load.Notes + "\n" + reason
			}
			if err := repo.UpdateFields(ctx, id, map[string]any{"notes": notes}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record cancel reason")
			}
		}

		cancelled, err = s.bids.CancelPendingForLoad(ctx, tx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel pending bids")
		}

		// an in-transit load still carries a live booking; release it too
		booked, err := s.bids.CancelActiveForLoad(ctx, tx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel active booking")
		}
		cancelled = append(cancelled, booked...)
		return nil
	})
	if err != nil {
		return err
	}

	messages := make([]notifications.Message, 0, len(cancelled))
	for _, bid := range cancelled {
		bidID := bid.ID
		loadID := id
		messages = append(messages, notifications.Message{
			RecipientID: bid.CarrierID,
			Kind:        enums.NotificationKindLoadCancelled,
			Params:      notifications.Params{TrackingCode: trackingCode, Reason: reason},
			LoadID:      &loadID,
			BidID:       &bidID,
			ActorID:     &actor.UserID,
		})
	}
	s.notify.Dispatch(ctx, messages...)
	return nil
}

func (s *service) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "load id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		load, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "load not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load load")
		}
		if err := authz.RequireOwner(actor, load.ShipperID); err != nil {
			return err
		}
		if !load.Status.Editable() && load.Status != enums.LoadStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "load cannot be deleted in current state")
		}

		deleted, err := repo.Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete load")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, "load not found")
		}
		return nil
	})
}
