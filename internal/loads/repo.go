package loads

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/haulhub-backend/pkg/db/models"
	"github.com/angelmondragon/haulhub-backend/pkg/enums"
	"github.com/angelmondragon/haulhub-backend/pkg/pagination"
)

// Repository exposes persistence helpers for loads.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, load *models.Load) (*models.Load, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Load, error)
	FindByIDWithBids(ctx context.Context, id uuid.UUID) (*models.Load, error)
	FindByTrackingCode(ctx context.Context, code string) (*models.Load, error)
	List(ctx context.Context, params ListQuery) ([]models.Load, *pagination.Cursor, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	// UpdateStatusIf flips status only when the current status is in from.
	// RowsAffected zero means the guard lost; callers decide the error.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, to enums.LoadStatus, from ...enums.LoadStatus) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// ListQuery filters the load listing at the persistence layer.
type ListQuery struct {
	ShipperID *uuid.UUID
	Statuses  []enums.LoadStatus
	Limit     int
	Cursor    *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a loads repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, load *models.Load) (*models.Load, error) {
	if err := r.db.WithContext(ctx).Create(load).Error; err != nil {
		return nil, err
	}
	return load, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Load, error) {
	var load models.Load
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&load).Error
	if err != nil {
		return nil, err
	}
	return &load, nil
}

func (r *repository) FindByIDWithBids(ctx context.Context, id uuid.UUID) (*models.Load, error) {
	var load models.Load
	err := r.db.WithContext(ctx).
		Preload("Bids", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&load).Error
	if err != nil {
		return nil, err
	}
	return &load, nil
}

func (r *repository) FindByTrackingCode(ctx context.Context, code string) (*models.Load, error) {
	var load models.Load
	err := r.db.WithContext(ctx).
		Where("tracking_code = ?", code).
		First(&load).Error
	if err != nil {
		return nil, err
	}
	return &load, nil
}

func (r *repository) List(ctx context.Context, params ListQuery) ([]models.Load, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Load{})
	if params.ShipperID != nil {
		query = query.Where("shipper_id = ?", *params.ShipperID)
	}
	if len(params.Statuses) > 0 {
		query = query.Where("status IN ?", params.Statuses)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var loads []models.Load
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&loads).Error; err != nil {
		return nil, nil, err
	}

	if len(loads) > normalized {
		loads = loads[:normalized]
		// cursor points at the last row handed out; the next query's strict
		// comparison resumes right after it
		last := loads[normalized-1]
		return loads, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return loads, nil, nil
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Load{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, to enums.LoadStatus, from ...enums.LoadStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Load{}).
		Where("id = ? AND status IN ?", id, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Load{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
