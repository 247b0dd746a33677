package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/haulhub-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/haulhub-backend/pkg/errors"
	paginationpkg "github.com/angelmondragon/haulhub-backend/pkg/pagination"
)

type fakeRepository struct {
	listFn          func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error)
	markReadFn      func(ctx context.Context, recipientID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	markAllReadFn   func(ctx context.Context, recipientID uuid.UUID, now time.Time) (int64, error)
	deleteFn        func(ctx context.Context, recipientID, notificationID uuid.UUID) (bool, error)
	deleteAllReadFn func(ctx context.Context, recipientID uuid.UUID) (int64, error)
	created         []models.Notification
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	f.created = append(f.created, *notification)
	return nil
}

func (f *fakeRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	f.created = append(f.created, notifications...)
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) CountUnread(ctx context.Context, recipientID uuid.UUID, now time.Time) (int64, error) {
	return int64(len(f.created)), nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, recipientID, notificationID, now)
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID, now time.Time) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, recipientID, now)
	}
	return 0, nil
}

func (f *fakeRepository) Delete(ctx context.Context, recipientID, notificationID uuid.UUID) (bool, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, recipientID, notificationID)
	}
	return false, nil
}

func (f *fakeRepository) DeleteAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if f.deleteAllReadFn != nil {
		return f.deleteAllReadFn(ctx, recipientID)
	}
	return 0, nil
}

func (f *fakeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func newServiceWithRepo(repo Repository) Service {
	svc, _ := NewService(repo)
	return svc
}

func TestService_ListNotifications(t *testing.T) {
	first := models.Notification{ID: uuid.New(), CreatedAt: time.Now().Add(-time.Hour)}
	second := models.Notification{ID: uuid.New(), CreatedAt: time.Now()}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
			if params.Now.IsZero() {
				t.Fatal("expected expiry reference time to be set")
			}
			return []models.Notification{first}, &paginationpkg.Cursor{CreatedAt: second.CreatedAt, ID: second.ID}, nil
		},
	}

	svc := newServiceWithRepo(repo)
	result, err := svc.List(context.Background(), ListParams{RecipientID: uuid.New(), Limit: 1})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected cursor for next page")
	}
	decoded, err := paginationpkg.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("cursor should round-trip: %v", err)
	}
	if decoded.ID != second.ID {
		t.Fatalf("expected cursor to point at next row")
	}
}

func TestService_ListRejectsBadCursor(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	_, err := svc.List(context.Background(), ListParams{RecipientID: uuid.New(), Cursor: "not-a-cursor"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_MarkReadIsIdempotent(t *testing.T) {
	calls := 0
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, recipientID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			calls++
			if calls == 1 {
				return notificationMarkResult{Updated: true, Found: true}, nil
			}
			return notificationMarkResult{Updated: false, Found: true}, nil
		},
	}

	svc := newServiceWithRepo(repo)
	recipient := uuid.New()
	id := uuid.New()

	if err := svc.MarkRead(context.Background(), recipient, id); err != nil {
		t.Fatalf("first mark failed: %v", err)
	}
	if err := svc.MarkRead(context.Background(), recipient, id); err != nil {
		t.Fatalf("repeat mark should be a no-op: %v", err)
	}
}

func TestService_MarkReadNotFound(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, recipientID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{}, nil
		},
	}

	svc := newServiceWithRepo(repo)
	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_MarkAllReadReturnsCount(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, recipientID uuid.UUID, now time.Time) (int64, error) {
			return 3, nil
		},
	}

	svc := newServiceWithRepo(repo)
	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("mark all failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}
}

func TestService_DeleteNotFound(t *testing.T) {
	repo := &fakeRepository{
		deleteFn: func(ctx context.Context, recipientID, notificationID uuid.UUID) (bool, error) {
			return false, nil
		},
	}

	svc := newServiceWithRepo(repo)
	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_WrapsRepoFailures(t *testing.T) {
	repo := &fakeRepository{
		deleteAllReadFn: func(ctx context.Context, recipientID uuid.UUID) (int64, error) {
			return 0, errors.New("db down")
		},
	}

	svc := newServiceWithRepo(repo)
	_, err := svc.DeleteAllRead(context.Background(), uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
