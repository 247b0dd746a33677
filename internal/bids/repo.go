package bids

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/haulhub-backend/pkg/db/models"
	"github.com/angelmondragon/haulhub-backend/pkg/enums"
	"github.com/angelmondragon/haulhub-backend/pkg/pagination"
)

// Repository exposes persistence helpers for bids. The same rows carry
// booking execution state after acceptance, so the conditional update
// helpers here back both the bidding and booking services.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, bid *models.Bid) (*models.Bid, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	HasPendingForCarrier(ctx context.Context, loadID, carrierID uuid.UUID) (bool, error)
	ListForLoad(ctx context.Context, loadID uuid.UUID) ([]models.Bid, error)
	ListByCarrier(ctx context.Context, params CarrierBidsQuery) ([]models.Bid, *pagination.Cursor, error)
	FindActiveByLoad(ctx context.Context, loadID uuid.UUID) (*models.Bid, error)
	// UpdateStatusIf flips status only when the current status is in from,
	// applying any extra column writes in the same statement. RowsAffected
	// zero means the guard lost; callers decide the error.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, to enums.BidStatus, extra map[string]any, from ...enums.BidStatus) (bool, error)
	CancelPendingSiblings(ctx context.Context, loadID, winnerID uuid.UUID) ([]models.Bid, error)
	CancelPendingForLoad(ctx context.Context, tx *gorm.DB, loadID uuid.UUID) ([]models.Bid, error)
	CancelActiveForLoad(ctx context.Context, tx *gorm.DB, loadID uuid.UUID) ([]models.Bid, error)
}

// siblingCancelNote lands in the notes of every pending bid released when a
// competing bid wins, and in the rejection notice sent to its carrier.
const siblingCancelNote = "another bid selected"

// CarrierBidsQuery filters a carrier's bid listing at the persistence layer.
type CarrierBidsQuery struct {
	CarrierID uuid.UUID
	Statuses  []enums.BidStatus
	Limit     int
	Cursor    *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bids repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, bid *models.Bid) (*models.Bid, error) {
	if err := r.db.WithContext(ctx).Create(bid).Error; err != nil {
		return nil, err
	}
	return bid, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&bid).Error
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *repository) HasPendingForCarrier(ctx context.Context, loadID, carrierID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("load_id = ? AND carrier_id = ? AND status = ?", loadID, carrierID, enums.BidStatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListForLoad(ctx context.Context, loadID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.WithContext(ctx).
		Where("load_id = ?", loadID).
		Order("created_at ASC").
		Find(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *repository) ListByCarrier(ctx context.Context, params CarrierBidsQuery) ([]models.Bid, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("carrier_id = ?", params.CarrierID)
	if len(params.Statuses) > 0 {
		query = query.Where("status IN ?", params.Statuses)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var bids []models.Bid
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&bids).Error; err != nil {
		return nil, nil, err
	}

	if len(bids) > normalized {
		bids = bids[:normalized]
		// cursor points at the last row handed out; the next query's strict
		// comparison resumes right after it
		last := bids[normalized-1]
		return bids, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return bids, nil, nil
}

func (r *repository) FindActiveByLoad(ctx context.Context, loadID uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.WithContext(ctx).
		Where("load_id = ? AND status IN ?", loadID, []enums.BidStatus{
			enums.BidStatusConfirmed, enums.BidStatusInTransit, enums.BidStatusCompleted,
		}).
		Order("updated_at DESC").
		First(&bid).Error
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, to enums.BidStatus, extra map[string]any, from ...enums.BidStatus) (bool, error) {
	updates := map[string]any{"status": to}
	for column, value := range extra {
		updates[column] = value
	}
	result := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("id = ? AND status IN ?", id, from).
		UpdateColumns(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CancelPendingSiblings(ctx context.Context, loadID, winnerID uuid.UUID) ([]models.Bid, error) {
	var siblings []models.Bid
	err := r.db.WithContext(ctx).
		Where("load_id = ? AND id <> ? AND status = ?", loadID, winnerID, enums.BidStatusPending).
		Find(&siblings).Error
	if err != nil {
		return nil, err
	}
	if len(siblings) == 0 {
		return nil, nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("load_id = ? AND id <> ? AND status = ?", loadID, winnerID, enums.BidStatusPending).
		UpdateColumns(map[string]any{
			"status":     enums.BidStatusCancelled,
			"notes":      siblingCancelNote,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	return siblings, nil
}

func (r *repository) CancelPendingForLoad(ctx context.Context, tx *gorm.DB, loadID uuid.UUID) ([]models.Bid, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}

	var pending []models.Bid
	err := conn.WithContext(ctx).
		Where("load_id = ? AND status = ?", loadID, enums.BidStatusPending).
		Find(&pending).Error
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}

	result := conn.WithContext(ctx).
		Model(&models.Bid{}).
		Where("load_id = ? AND status = ?", loadID, enums.BidStatusPending).
		UpdateColumns(map[string]any{
			"status":     enums.BidStatusCancelled,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	return pending, nil
}

// CancelActiveForLoad releases the booking a cancelled load still carries:
// any confirmed or in-transit bid on the load flips to cancelled.
func (r *repository) CancelActiveForLoad(ctx context.Context, tx *gorm.DB, loadID uuid.UUID) ([]models.Bid, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}

	active := []enums.BidStatus{enums.BidStatusConfirmed, enums.BidStatusInTransit}
	var bookings []models.Bid
	err := conn.WithContext(ctx).
		Where("load_id = ? AND status IN ?", loadID, active).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, nil
	}

	result := conn.WithContext(ctx).
		Model(&models.Bid{}).
		Where("load_id = ? AND status IN ?", loadID, active).
		UpdateColumns(map[string]any{
			"status":     enums.BidStatusCancelled,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	return bookings, nil
}
