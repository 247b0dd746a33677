package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/haulhub-backend/internal/authz"
	"github.com/angelmondragon/haulhub-backend/internal/bids"
	"github.com/angelmondragon/haulhub-backend/internal/loads"
	"github.com/angelmondragon/haulhub-backend/internal/notifications"
	"github.com/angelmondragon/haulhub-backend/pkg/db/models"
	"github.com/angelmondragon/haulhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haulhub-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type dispatcher interface {
	Dispatch(ctx context.Context, messages ...notifications.Message)
}

// Service drives the booking that a confirmed bid becomes: pickup, delivery,
// progress reporting, and cancellation. Every transition mirrors onto the
// parent load in the same transaction.
type Service interface {
	Get(ctx context.Context, actor authz.Actor, bidID uuid.UUID) (*models.Bid, error)
	GetForLoad(ctx context.Context, actor authz.Actor, loadID uuid.UUID) (*models.Bid, error)
	Transition(ctx context.Context, actor authz.Actor, bidID uuid.UUID, target enums.BidStatus) (*models.Bid, error)
	UpdateProgress(ctx context.Context, actor authz.Actor, bidID uuid.UUID, input ProgressInput) error
	ReportDelay(ctx context.Context, actor authz.Actor, bidID uuid.UUID, reason string) error
}

// ProgressInput carries an in-transit status update.
type ProgressInput struct {
	Progress     int
	LocationNote *string
}

// transitions is the closed walk through the execution lifecycle. Anything
// not listed, including skipping straight from confirmed to completed, is an
// invalid transition.
var transitions = map[enums.BidStatus][]enums.BidStatus{
	enums.BidStatusConfirmed: {enums.BidStatusInTransit, enums.BidStatusCancelled},
	enums.BidStatusInTransit: {enums.BidStatusCompleted, enums.BidStatusCancelled},
}

// carrierDriven marks targets the assigned carrier initiates; the rest belong
// to the load's shipper (or an admin).
var carrierDriven = map[enums.BidStatus]bool{
	enums.BidStatusInTransit: true,
	enums.BidStatusCompleted: true,
}

type service struct {
	repo     bids.Repository
	loadRepo loads.Repository
	tx       txRunner
	notify   dispatcher
	now      func() time.Time
}

// NewService wires the bookings service.
func NewService(repo bids.Repository, loadRepo loads.Repository, tx txRunner, notify dispatcher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bids repository required")
	}
	if loadRepo == nil {
		return nil, fmt.Errorf("loads repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notify == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	return &service{
		repo:     repo,
		loadRepo: loadRepo,
		tx:       tx,
		notify:   notify,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func allowed(from, to enums.BidStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *service) Get(ctx context.Context, actor authz.Actor, bidID uuid.UUID) (*models.Bid, error) {
	if bidID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}

	bid, load, err := s.loadBooking(ctx, s.repo, s.loadRepo, bidID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.UserID != bid.CarrierID && actor.UserID != load.ShipperID {
		return nil, authz.ErrForbidden()
	}
	return bid, nil
}

func (s *service) GetForLoad(ctx context.Context, actor authz.Actor, loadID uuid.UUID) (*models.Bid, error) {
	if loadID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "load id required")
	}

	bid, err := s.repo.FindActiveByLoad(ctx, loadID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	return s.Get(ctx, actor, bid.ID)
}

func (s *service) Transition(ctx context.Context, actor authz.Actor, bidID uuid.UUID, target enums.BidStatus) (*models.Bid, error) {
	if bidID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if !target.IsValid() || target == enums.BidStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid target status %q", target))
	}

	var booking *models.Bid
	var load *models.Load
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loadRepo := s.loadRepo.WithTx(tx)

		bid, parent, err := s.loadBooking(ctx, repo, loadRepo, bidID)
		if err != nil {
			return err
		}
		load = parent

		if err := s.authorizeTransition(actor, bid, parent, target); err != nil {
			return err
		}
		if !allowed(bid.Status, target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move booking from %s to %s", bid.Status, target))
		}

		now := s.now()
		extra := map[string]any{"updated_at": now}
		switch target {
		case enums.BidStatusInTransit:
			extra["pickup_at"] = now
		case enums.BidStatusCompleted:
			extra["delivered_at"] = now
			extra["progress"] = 100
		}

		moved, err := repo.UpdateStatusIf(ctx, bidID, target, extra, bid.Status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking changed concurrently")
		}

		if err := s.mirrorLoad(ctx, loadRepo, parent.ID, target); err != nil {
			return err
		}

		updated := *bid
		updated.Status = target
		switch target {
		case enums.BidStatusInTransit:
			updated.PickupAt = &now
		case enums.BidStatusCompleted:
			updated.DeliveredAt = &now
			updated.Progress = 100
		}
		booking = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyTransition(ctx, actor, booking, load, target)
	return booking, nil
}

func (s *service) authorizeTransition(actor authz.Actor, bid *models.Bid, load *models.Load, target enums.BidStatus) error {
	if actor.IsAdmin() {
		return nil
	}
	if carrierDriven[target] {
		if actor.UserID != bid.CarrierID {
			return authz.ErrForbidden()
		}
		return nil
	}
	// cancellation belongs to the load's shipper
	if actor.UserID != load.ShipperID {
		return authz.ErrForbidden()
	}
	return nil
}

// mirrorLoad keeps the parent load's public status in step with the booking.
func (s *service) mirrorLoad(ctx context.Context, loadRepo loads.Repository, loadID uuid.UUID, target enums.BidStatus) error {
	var to enums.LoadStatus
	var from []enums.LoadStatus
	switch target {
	case enums.BidStatusInTransit:
		// already set at acceptance; re-asserted for the window where
		// acceptance and pickup are decoupled in time
		to = enums.LoadStatusInTransit
		from = []enums.LoadStatus{enums.LoadStatusInTransit}
	case enums.BidStatusCompleted:
		to = enums.LoadStatusDelivered
		from = []enums.LoadStatus{enums.LoadStatusInTransit}
	case enums.BidStatusCancelled:
		// a cancelled booking returns the load to the board
		to = enums.LoadStatusPosted
		from = []enums.LoadStatus{enums.LoadStatusInTransit}
	default:
		return nil
	}

	mirrored, err := loadRepo.UpdateStatusIf(ctx, loadID, to, from...)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mirror load status")
	}
	if !mirrored {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "load changed concurrently")
	}
	return nil
}

func (s *service) notifyTransition(ctx context.Context, actor authz.Actor, booking *models.Bid, load *models.Load, target enums.BidStatus) {
	loadID := load.ID
	bidID := booking.ID
	base := notifications.Params{
		TrackingCode: load.TrackingCode,
		Origin:       load.Origin,
		Destination:  load.Destination,
	}

	switch target {
	case enums.BidStatusInTransit:
		s.notify.Dispatch(ctx, notifications.Message{
			RecipientID: load.ShipperID,
			Kind:        enums.NotificationKindShipmentPickup,
			Params:      base,
			LoadID:      &loadID,
			BidID:       &bidID,
			ActorID:     &actor.UserID,
		})
	case enums.BidStatusCompleted:
		s.notify.Dispatch(ctx, notifications.Message{
			RecipientID: load.ShipperID,
			Kind:        enums.NotificationKindShipmentDelivered,
			Params:      base,
			LoadID:      &loadID,
			BidID:       &bidID,
			ActorID:     &actor.UserID,
		})
	case enums.BidStatusCancelled:
		s.notify.Dispatch(ctx, notifications.Message{
			RecipientID: booking.CarrierID,
			Kind:        enums.NotificationKindLoadCancelled,
			Params:      base,
			LoadID:      &loadID,
			BidID:       &bidID,
			ActorID:     &actor.UserID,
		})
	}
}

func (s *service) UpdateProgress(ctx context.Context, actor authz.Actor, bidID uuid.UUID, input ProgressInput) error {
	if bidID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if input.Progress < 0 || input.Progress > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "progress must be between 0 and 100")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		bid, _, err := s.loadBooking(ctx, repo, s.loadRepo.WithTx(tx), bidID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && actor.UserID != bid.CarrierID {
			return authz.ErrForbidden()
		}
		if bid.Status != enums.BidStatusInTransit {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "progress updates require an in-transit booking")
		}

		extra := map[string]any{
			"progress":   input.Progress,
			"updated_at": s.now(),
		}
		if input.LocationNote != nil {
			extra["location_note"] = *input.LocationNote
		}
		moved, err := repo.UpdateStatusIf(ctx, bidID, enums.BidStatusInTransit, extra, enums.BidStatusInTransit)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update progress")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking changed concurrently")
		}
		return nil
	})
}

func (s *service) ReportDelay(ctx context.Context, actor authz.Actor, bidID uuid.UUID, reason string) error {
	if bidID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}

	bid, load, err := s.loadBooking(ctx, s.repo, s.loadRepo, bidID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && actor.UserID != bid.CarrierID {
		return authz.ErrForbidden()
	}
	if bid.Status != enums.BidStatusInTransit {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "delay reports require an in-transit booking")
	}

	loadID := load.ID
	bidRef := bid.ID
	s.notify.Dispatch(ctx, notifications.Message{
		RecipientID: load.ShipperID,
		Kind:        enums.NotificationKindShipmentDelayed,
		Params: notifications.Params{
			TrackingCode: load.TrackingCode,
			Reason:       reason,
		},
		LoadID:  &loadID,
		BidID:   &bidRef,
		ActorID: &actor.UserID,
	})
	return nil
}

// loadBooking resolves a bid that has entered the booking lifecycle together
// with its parent load.
func (s *service) loadBooking(ctx context.Context, repo bids.Repository, loadRepo loads.Repository, bidID uuid.UUID) (*models.Bid, *models.Load, error) {
	bid, err := repo.FindByID(ctx, bidID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if bid.Status == enums.BidStatusPending {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}

	load, err := loadRepo.FindByID(ctx, bid.LoadID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load load")
	}
	return bid, load, nil
}
