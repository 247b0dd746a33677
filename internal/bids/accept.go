package bids

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/haulhub-backend/internal/authz"
	"github.com/angelmondragon/haulhub-backend/internal/notifications"
	"github.com/angelmondragon/haulhub-backend/pkg/db/models"
	"github.com/angelmondragon/haulhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haulhub-backend/pkg/errors"
	"github.com/angelmondragon/haulhub-backend/pkg/metrics"
)

// Accept confirms one bid and settles the rest of the board atomically:
// the winning bid flips pending -> confirmed, every pending sibling is
// cancelled, and the load leaves the board. The load row is written before
// any bid row so every racing acceptance serializes on the same lock
// regardless of which bid it targets: the second transaction blocks on the
// load, re-evaluates the WHERE after the winner commits, matches zero rows,
// and surfaces Conflict to its caller.
func (s *service) Accept(ctx context.Context, actor authz.Actor, bidID uuid.UUID) (*models.Bid, error) {
	if bidID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bid id required")
	}

	var winner *models.Bid
	var losers []models.Bid
	var trackingCode, origin, destination string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loadRepo := s.loadRepo.WithTx(tx)

		bid, err := repo.FindByID(ctx, bidID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "bid not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bid")
		}

		load, err := loadRepo.FindByID(ctx, bid.LoadID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load load")
		}
		if err := authz.RequireOwner(actor, load.ShipperID); err != nil {
			return err
		}
		trackingCode = load.TrackingCode
		origin = load.Origin
		destination = load.Destination

		if bid.Status != enums.BidStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "bid is no longer pending")
		}

		flipped, err := loadRepo.UpdateStatusIf(ctx, bid.LoadID, enums.LoadStatusInTransit,
			enums.LoadStatusPosted, enums.LoadStatusPending)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign load")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeConflict, "load was assigned concurrently")
		}

		confirmed, err := repo.UpdateStatusIf(ctx, bidID, enums.BidStatusConfirmed,
			touchUpdatedAt(nil), enums.BidStatusPending)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm bid")
		}
		if !confirmed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "bid is no longer pending")
		}

		losers, err = repo.CancelPendingSiblings(ctx, bid.LoadID, bidID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel sibling bids")
		}

		bid.Status = enums.BidStatusConfirmed
		winner = bid
		return nil
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeConflict {
			s.market.IncAcceptance(metrics.AcceptanceConflict)
		}
		return nil, err
	}
	s.market.IncAcceptance(metrics.AcceptanceWon)

	loadID := winner.LoadID
	winnerBidID := winner.ID
	messages := []notifications.Message{{
		RecipientID: winner.CarrierID,
		Kind:        enums.NotificationKindBidAccepted,
		Params: notifications.Params{
			TrackingCode: trackingCode,
			Origin:       origin,
			Destination:  destination,
		},
		LoadID:  &loadID,
		BidID:   &winnerBidID,
		ActorID: &actor.UserID,
	}}
	for _, loser := range losers {
		loserBidID := loser.ID
		messages = append(messages, notifications.Message{
			RecipientID: loser.CarrierID,
			Kind:        enums.NotificationKindBidRejected,
			Params:      notifications.Params{TrackingCode: trackingCode, Reason: siblingCancelNote},
			LoadID:      &loadID,
			BidID:       &loserBidID,
			ActorID:     &actor.UserID,
		})
	}
	s.notify.Dispatch(ctx, messages...)

	return winner, nil
}
