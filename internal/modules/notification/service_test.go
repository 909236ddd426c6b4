package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"neighborly/internal/domain"
	"neighborly/internal/repository"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) FindBySubject(ctx context.Context, subject domain.SubjectRef, typ domain.NotificationType, recipientID string) (*domain.Notification, error) {
	args := m.Called(ctx, subject, typ, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockStore) Insert(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	if n != nil && n.ID == "" {
		n.ID = "notif-1"
	}
	return args.Error(0)
}

func (m *MockStore) ListForRecipient(ctx context.Context, tenantID, recipientID string, f repository.NotificationFilters, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, tenantID, recipientID, f, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockStore) CountUnread(ctx context.Context, tenantID, recipientID string) (int64, error) {
	args := m.Called(ctx, tenantID, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) MarkRead(ctx context.Context, id, recipientID string, now time.Time) error {
	args := m.Called(ctx, id, recipientID, now)
	return args.Error(0)
}

func (m *MockStore) MarkAllRead(ctx context.Context, tenantID, recipientID string, now time.Time) error {
	args := m.Called(ctx, tenantID, recipientID, now)
	return args.Error(0)
}

func (m *MockStore) Archive(ctx context.Context, id, recipientID string) error {
	args := m.Called(ctx, id, recipientID)
	return args.Error(0)
}

func (m *MockStore) TakeAction(ctx context.Context, id, recipientID string, resp domain.ActionResponse) error {
	args := m.Called(ctx, id, recipientID, resp)
	return args.Error(0)
}

func dispatchInput() DispatchInput {
	return DispatchInput{
		TenantID:    "tenant-1",
		RecipientID: "lender-1",
		Type:        domain.NotifExchangeRequest,
		Subject:     domain.SubjectRef{Kind: domain.SubjectTransaction, ID: "tx-1"},
		ListingID:   "listing-1",
		ActorID:     "borrower-1",
		Content: Content{
			ActorName:    "Alex Kim",
			ListingTitle: "Cordless drill",
			Quantity:     1,
		},
	}
}

func TestService_Dispatch_CreatesOnce(t *testing.T) {
	store := new(MockStore)
	in := dispatchInput()
	store.On("FindBySubject", mock.Anything, in.Subject, in.Type, in.RecipientID).Return(nil, nil)
	store.On("Insert", mock.Anything, mock.Anything).Return(nil)
	service := NewService(store)

	n, created, err := service.Dispatch(context.Background(), in)

	assert.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, n.Title)
	assert.NotEmpty(t, n.Message)
	assert.Equal(t, "tx-1", *n.ExchangeTransactionID)
	assert.Equal(t, "listing-1", *n.ExchangeListingID)
}

func TestService_Dispatch_SecondCallIsNoOp(t *testing.T) {
	store := new(MockStore)
	in := dispatchInput()
	existing := &domain.Notification{ID: "notif-1", Type: in.Type, RecipientID: in.RecipientID}
	store.On("FindBySubject", mock.Anything, in.Subject, in.Type, in.RecipientID).Return(existing, nil)
	service := NewService(store)

	n, created, err := service.Dispatch(context.Background(), in)

	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "notif-1", n.ID)
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestService_Dispatch_UnknownType(t *testing.T) {
	store := new(MockStore)
	in := dispatchInput()
	in.Type = domain.NotificationType("exchange_teleported")
	store.On("FindBySubject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	service := NewService(store)

	_, _, err := service.Dispatch(context.Background(), in)

	assert.ErrorIs(t, err, ErrUnknownNotificationType)
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestService_Dispatch_ConflictReturnsWinner(t *testing.T) {
	store := new(MockStore)
	in := dispatchInput()
	winner := &domain.Notification{ID: "winner", Type: in.Type, RecipientID: in.RecipientID}
	// Lookup misses, the insert loses the race, the refetch finds the
	// row the concurrent dispatch created.
	store.On("FindBySubject", mock.Anything, in.Subject, in.Type, in.RecipientID).Return(nil, nil).Once()
	store.On("Insert", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)
	store.On("FindBySubject", mock.Anything, in.Subject, in.Type, in.RecipientID).Return(winner, nil).Once()
	service := NewService(store)

	n, created, err := service.Dispatch(context.Background(), in)

	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "winner", n.ID)
}

func TestService_TakeAction_AlreadyTaken(t *testing.T) {
	store := new(MockStore)
	store.On("TakeAction", mock.Anything, "notif-1", "lender-1", domain.ActionConfirmed).Return(repository.ErrStaleState)
	service := NewService(store)

	err := service.TakeAction(context.Background(), "notif-1", "lender-1", domain.ActionConfirmed)

	assert.ErrorIs(t, err, ErrActionAlreadyTaken)
}
