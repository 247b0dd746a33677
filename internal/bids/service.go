package bids

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/haulhub-backend/internal/authz"
	"github.com/angelmondragon/haulhub-backend/internal/loads"
	"github.com/angelmondragon/haulhub-backend/internal/notifications"
	"github.com/angelmondragon/haulhub-backend/internal/users"
	"github.com/angelmondragon/haulhub-backend/internal/vehicles"
	"github.com/angelmondragon/haulhub-backend/pkg/db/models"
	"github.com/angelmondragon/haulhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haulhub-backend/pkg/errors"
	"github.com/angelmondragon/haulhub-backend/pkg/metrics"
	"github.com/angelmondragon/haulhub-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type dispatcher interface {
	Dispatch(ctx context.Context, messages ...notifications.Message)
}

// Service defines the bid lifecycle from submission to acceptance.
type Service interface {
	Submit(ctx context.Context, actor authz.Actor, input SubmitInput) (*models.Bid, error)
	Withdraw(ctx context.Context, actor authz.Actor, bidID uuid.UUID) error
	Reject(ctx context.Context, actor authz.Actor, bidID uuid.UUID, reason string) error
	Accept(ctx context.Context, actor authz.Actor, bidID uuid.UUID) (*models.Bid, error)
	ListForLoad(ctx context.Context, actor authz.Actor, loadID uuid.UUID) ([]models.Bid, error)
	ListMine(ctx context.Context, actor authz.Actor, params MyBidsParams) (*ListResult, error)
}

// SubmitInput carries a carrier's offer for a load.
type SubmitInput struct {
	LoadID    uuid.UUID
	Price     decimal.Decimal
	VehicleID *uuid.UUID
	Notes     *string
}

// MyBidsParams filters a carrier's own bids.
type MyBidsParams struct {
	Statuses []enums.BidStatus
	Limit    int
	Cursor   string
}

// ListResult wraps returned bids and the cursor for the next page.
type ListResult struct {
	Items  []models.Bid `json:"items"`
	Cursor string       `json:"cursor"`
}

// Options configures fee calculation.
type Options struct {
	PlatformFeePercent int
}

type service struct {
	repo     Repository
	loadRepo loads.Repository
	userRepo users.Repository
	vehRepo  vehicles.Repository
	tx       txRunner
	notify   dispatcher
	market   *metrics.MarketplaceMetrics
	opts     Options
}

// NewService wires the bids service with its dependencies. Metrics may be nil.
func NewService(
	repo Repository,
	loadRepo loads.Repository,
	userRepo users.Repository,
	vehRepo vehicles.Repository,
	tx txRunner,
	notify dispatcher,
	market *metrics.MarketplaceMetrics,
	opts Options,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bids repository required")
	}
	if loadRepo == nil {
		return nil, fmt.Errorf("loads repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if vehRepo == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notify == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	if opts.PlatformFeePercent < 0 {
		return nil, fmt.Errorf("platform fee percent must not be negative")
	}
	return &service{
		repo:     repo,
		loadRepo: loadRepo,
		userRepo: userRepo,
		vehRepo:  vehRepo,
		tx:       tx,
		notify:   notify,
		market:   market,
		opts:     opts,
	}, nil
}

func (s *service) Submit(ctx context.Context, actor authz.Actor, input SubmitInput) (*models.Bid, error) {
	if err := authz.RequireRole(actor, enums.UserRoleCarrier); err != nil {
		return nil, err
	}
	if input.LoadID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "load id required")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	if input.VehicleID != nil {
		vehicle, err := s.vehRepo.FindByID(ctx, *input.VehicleID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
		}
		if vehicle.CarrierID != actor.UserID {
			return nil, authz.ErrForbidden()
		}
	}

	fee := PlatformFee(input.Price, s.opts.PlatformFeePercent)

	var created *models.Bid
	var shipperID uuid.UUID
	var trackingCode string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loadRepo := s.loadRepo.WithTx(tx)

		load, err := loadRepo.FindByID(ctx, input.LoadID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "load not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load load")
		}
		if !load.Status.OpenForBidding() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "load is not open for bidding")
		}
		shipperID = load.ShipperID
		trackingCode = load.TrackingCode

		exists, err := repo.HasPendingForCarrier(ctx, input.LoadID, actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing bid")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "carrier already has a pending bid on this load")
		}

		bid := &models.Bid{
			LoadID:      input.LoadID,
			CarrierID:   actor.UserID,
			Price:       input.Price,
			PlatformFee: fee,
			Total:       input.Price.Add(fee),
			Status:      enums.BidStatusPending,
			VehicleID:   input.VehicleID,
			Notes:       input.Notes,
		}
		created, err = repo.Create(ctx, bid)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bid")
		}

		// first bid moves the board entry from posted to pending;
		// losing this guard just means another bid got there first
		if _, err := loadRepo.UpdateStatusIf(ctx, input.LoadID, enums.LoadStatusPending, enums.LoadStatusPosted); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark load pending")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.market.IncBidSubmitted("pending")
	s.notifySubmitted(ctx, actor, created, shipperID, trackingCode)
	return created, nil
}

func (s *service) notifySubmitted(ctx context.Context, actor authz.Actor, bid *models.Bid, shipperID uuid.UUID, trackingCode string) {
	amount := "$" + bid.Price.StringFixed(2)
	loadID := bid.LoadID
	bidID := bid.ID

	messages := []notifications.Message{{
		RecipientID: shipperID,
		Kind:        enums.NotificationKindBidReceived,
		Params: notifications.Params{
			CarrierName:  actor.UserID.String(),
			Amount:       amount,
			TrackingCode: trackingCode,
		},
		LoadID:  &loadID,
		BidID:   &bidID,
		ActorID: &actor.UserID,
	}}

	adminIDs, err := s.userRepo.FindAdminIDs(ctx)
	if err == nil {
		for _, adminID := range adminIDs {
			if adminID == shipperID {
				continue
			}
			messages = append(messages, notifications.Message{
				RecipientID: adminID,
				Kind:        enums.NotificationKindSystem,
				Params: notifications.Params{
					Detail: fmt.Sprintf("New bid of %s on load %s", amount, trackingCode),
				},
				LoadID:  &loadID,
				BidID:   &bidID,
				ActorID: &actor.UserID,
			})
		}
	}
	s.notify.Dispatch(ctx, messages...)
}

func (s *service) Withdraw(ctx context.Context, actor authz.Actor, bidID uuid.UUID) error {
	if bidID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "bid id required")
	}

	var shipperID uuid.UUID
	var loadID uuid.UUID
	var trackingCode string
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
		if err := authz.RequireOwner(actor, bid.CarrierID); err != nil {
			return err
		}

		withdrawn, err := repo.UpdateStatusIf(ctx, bidID, enums.BidStatusCancelled,
			touchUpdatedAt(map[string]any{"notes": "withdrawn by carrier"}), enums.BidStatusPending)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "withdraw bid")
		}
		if !withdrawn {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending bids can be withdrawn")
		}

		load, err := loadRepo.FindByID(ctx, bid.LoadID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load load")
		}
		shipperID = load.ShipperID
		loadID = load.ID
		trackingCode = load.TrackingCode
		return nil
	})
	if err != nil {
		return err
	}

	s.notify.Dispatch(ctx, notifications.Message{
		RecipientID: shipperID,
		Kind:        enums.NotificationKindSystem,
		Params: notifications.Params{
			Detail: fmt.Sprintf("A bid on load %s was withdrawn by the carrier", trackingCode),
		},
		LoadID:  &loadID,
		BidID:   &bidID,
		ActorID: &actor.UserID,
	})
	return nil
}

func (s *service) Reject(ctx context.Context, actor authz.Actor, bidID uuid.UUID, reason string) error {
	if bidID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "bid id required")
	}

	var rejected *models.Bid
	var trackingCode string
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

		extra := map[string]any{}
		if reason != "" {
			extra["notes"] = reason
		}
		done, err := repo.UpdateStatusIf(ctx, bidID, enums.BidStatusCancelled, touchUpdatedAt(extra), enums.BidStatusPending)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject bid")
		}
		if !done {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending bids can be rejected")
		}
		rejected = bid
		return nil
	})
	if err != nil {
		return err
	}

	loadID := rejected.LoadID
	s.notify.Dispatch(ctx, notifications.Message{
		RecipientID: rejected.CarrierID,
		Kind:        enums.NotificationKindBidRejected,
		Params:      notifications.Params{TrackingCode: trackingCode, Reason: reason},
		LoadID:      &loadID,
		BidID:       &bidID,
		ActorID:     &actor.UserID,
	})
	return nil
}

func (s *service) ListForLoad(ctx context.Context, actor authz.Actor, loadID uuid.UUID) ([]models.Bid, error) {
	if loadID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "load id required")
	}

	load, err := s.loadRepo.FindByID(ctx, loadID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "load not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load load")
	}
	if err := authz.RequireOwner(actor, load.ShipperID); err != nil {
		return nil, err
	}

	bids, err := s.repo.ListForLoad(ctx, loadID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bids")
	}
	return bids, nil
}

func (s *service) ListMine(ctx context.Context, actor authz.Actor, params MyBidsParams) (*ListResult, error) {
	if err := authz.RequireRole(actor, enums.UserRoleCarrier); err != nil {
		return nil, err
	}
	for _, status := range params.Statuses {
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", status))
		}
	}

	query := CarrierBidsQuery{
		CarrierID: actor.UserID,
		Statuses:  params.Statuses,
		Limit:     params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListByCarrier(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bids")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// touchUpdatedAt keeps conditional updates consistent with GORM's autoUpdateTime.
func touchUpdatedAt(extra map[string]any) map[string]any {
	if extra == nil {
		extra = map[string]any{}
	}
	extra["updated_at"] = time.Now().UTC()
	return extra
}
