package notifications

import (
	"context"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/haulhub-backend/pkg/db/models"
	"github.com/angelmondragon/haulhub-backend/pkg/logger"
)

// Dispatcher fans marketplace events out to recipient inboxes. Dispatch is
// best effort: a failed insert is logged and swallowed so it can never fail
// the operation that triggered it.
type Dispatcher struct {
	repo Repository
	logg *logger.Logger
	ttl  time.Duration
	now  func() time.Time
}

// NewDispatcher wires the dispatcher. ttl <= 0 disables expiry stamping.
func NewDispatcher(repo Repository, logg *logger.Logger, ttl time.Duration) *Dispatcher {
	return &Dispatcher{
		repo: repo,
		logg: logg,
		ttl:  ttl,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch renders and stores the given messages. Render failures and insert
// failures are logged per message; the call itself always succeeds.
func (d *Dispatcher) Dispatch(ctx context.Context, messages ...Message) {
	if d == nil || d.repo == nil || len(messages) == 0 {
		return
	}

	rows := make([]models.Notification, 0, len(messages))
	var renderErrs error
	for _, msg := range messages {
		row, err := Build(msg)
		if err != nil {
			renderErrs = multierr.Append(renderErrs, err)
			continue
		}
		if d.ttl > 0 {
			expires := d.now().Add(d.ttl)
			row.ExpiresAt = &expires
		}
		rows = append(rows, *row)
	}
	if renderErrs != nil && d.logg != nil {
		d.logg.Error(ctx, "notification render failed", renderErrs)
	}
	if len(rows) == 0 {
		return
	}

	if err := d.repo.CreateBatch(ctx, rows); err != nil {
		if d.logg != nil {
			d.logg.Error(ctx, "notification dispatch failed", err)
		}
	}
}
