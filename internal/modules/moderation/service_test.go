package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"neighborly/internal/domain"
	"neighborly/internal/modules/notification"
	"neighborly/internal/repository"
)

type MockFlagStore struct {
	mock.Mock
}

func (m *MockFlagStore) Create(ctx context.Context, f *domain.Flag) error {
	args := m.Called(ctx, f)
	if f != nil && f.ID == "" {
		f.ID = "flag-1"
	}
	return args.Error(0)
}

func (m *MockFlagStore) ExistsForUser(ctx context.Context, listingID, userID string) (bool, error) {
	args := m.Called(ctx, listingID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlagStore) ListByListing(ctx context.Context, listingID string) ([]domain.Flag, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flag), args.Error(1)
}

func (m *MockFlagStore) DeleteByListing(ctx context.Context, listingID string) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}

type MockListingStore struct {
	mock.Mock
}

func (m *MockListingStore) GetByID(ctx context.Context, tenantID, id string) (*domain.Listing, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingStore) MarkFlagged(ctx context.Context, id string, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockListingStore) ClearFlagged(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, in notification.DispatchInput) (*domain.Notification, bool, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Notification), args.Bool(1), args.Error(2)
}

type MockTenantDirectory struct {
	mock.Mock
}

func (m *MockTenantDirectory) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

func flaggableListing() *domain.Listing {
	return &domain.Listing{
		ID:        "listing-1",
		TenantID:  "tenant-1",
		CreatedBy: "owner-1",
		Title:     "Mystery box",
		Status:    domain.ListingPublished,
	}
}

func newModerationService() (*Service, *MockFlagStore, *MockListingStore, *MockDispatcher) {
	flags := new(MockFlagStore)
	listings := new(MockListingStore)
	dispatch := new(MockDispatcher)
	tenants := new(MockTenantDirectory)
	tenants.On("GetByID", mock.Anything, "tenant-1").Return(&domain.Tenant{ID: "tenant-1", Slug: "riverside"}, nil).Maybe()
	return NewService(flags, listings, dispatch, tenants), flags, listings, dispatch
}

func TestService_Flag_FirstFlagNotifiesOwner(t *testing.T) {
	service, flags, listings, dispatch := newModerationService()
	listings.On("GetByID", mock.Anything, "tenant-1", "listing-1").Return(flaggableListing(), nil)
	flags.On("ExistsForUser", mock.Anything, "listing-1", "resident-1").Return(false, nil)
	flags.On("Create", mock.Anything, mock.Anything).Return(nil)
	listings.On("MarkFlagged", mock.Anything, "listing-1", mock.Anything).Return(true, nil)
	dispatch.On("Dispatch", mock.Anything, mock.MatchedBy(func(in notification.DispatchInput) bool {
		return in.Type == domain.NotifExchangeFlagged &&
			in.RecipientID == "owner-1" &&
			in.Subject.Kind == domain.SubjectListing
	})).Return(&domain.Notification{}, true, nil)

	f, err := service.Flag(context.Background(), "tenant-1", "listing-1", "resident-1", "Not what it claims to be")

	assert.NoError(t, err)
	assert.Equal(t, "resident-1", f.FlaggedBy)
	dispatch.AssertExpectations(t)
}

func TestService_Flag_Twice(t *testing.T) {
	service, flags, listings, _ := newModerationService()
	listings.On("GetByID", mock.Anything, "tenant-1", "listing-1").Return(flaggableListing(), nil)
	flags.On("ExistsForUser", mock.Anything, "listing-1", "resident-1").Return(true, nil)

	_, err := service.Flag(context.Background(), "tenant-1", "listing-1", "resident-1", "Still bad")

	assert.ErrorIs(t, err, ErrAlreadyFlagged)
	flags.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Flag_DuplicateInsertRace(t *testing.T) {
	service, flags, listings, dispatch := newModerationService()
	listings.On("GetByID", mock.Anything, "tenant-1", "listing-1").Return(flaggableListing(), nil)
	// The pre-check misses a concurrent flag by the same resident; the
	// unique index catches it at insert time.
	flags.On("ExistsForUser", mock.Anything, "listing-1", "resident-1").Return(false, nil)
	flags.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

	_, err := service.Flag(context.Background(), "tenant-1", "listing-1", "resident-1", "Still bad")

	assert.ErrorIs(t, err, ErrAlreadyFlagged)
	dispatch.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestService_Flag_OwnListing(t *testing.T) {
	service, flags, listings, _ := newModerationService()
	listings.On("GetByID", mock.Anything, "tenant-1", "listing-1").Return(flaggableListing(), nil)

	_, err := service.Flag(context.Background(), "tenant-1", "listing-1", "owner-1", "Oops")

	assert.ErrorIs(t, err, ErrValidation)
	flags.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_UnflagAll_FansOutToEveryFlagger(t *testing.T) {
	service, flags, listings, dispatch := newModerationService()
	listings.On("GetByID", mock.Anything, "tenant-1", "listing-1").Return(flaggableListing(), nil)
	flags.On("ListByListing", mock.Anything, "listing-1").Return([]domain.Flag{
		{ID: "flag-1", ListingID: "listing-1", FlaggedBy: "resident-1"},
		{ID: "flag-2", ListingID: "listing-1", FlaggedBy: "resident-2"},
	}, nil)
	flags.On("DeleteByListing", mock.Anything, "listing-1").Return(nil)
	listings.On("ClearFlagged", mock.Anything, "listing-1").Return(nil)
	dispatch.On("Dispatch", mock.Anything, mock.MatchedBy(func(in notification.DispatchInput) bool {
		return in.Type == domain.NotifExchangeFlagResolved
	})).Return(&domain.Notification{}, true, nil).Times(2)

	err := service.UnflagAll(context.Background(), "tenant-1", "listing-1")

	assert.NoError(t, err)
	dispatch.AssertExpectations(t)
}

func TestService_UnflagAll_DispatchFailureDoesNotStopFanOut(t *testing.T) {
	service, flags, listings, dispatch := newModerationService()
	listings.On("GetByID", mock.Anything, "tenant-1", "listing-1").Return(flaggableListing(), nil)
	flags.On("ListByListing", mock.Anything, "listing-1").Return([]domain.Flag{
		{ID: "flag-1", ListingID: "listing-1", FlaggedBy: "resident-1"},
		{ID: "flag-2", ListingID: "listing-1", FlaggedBy: "resident-2"},
	}, nil)
	flags.On("DeleteByListing", mock.Anything, "listing-1").Return(nil)
	listings.On("ClearFlagged", mock.Anything, "listing-1").Return(nil)
	dispatch.On("Dispatch", mock.Anything, mock.MatchedBy(func(in notification.DispatchInput) bool {
		return in.RecipientID == "resident-1"
	})).Return(nil, false, errors.New("boom"))
	dispatch.On("Dispatch", mock.Anything, mock.MatchedBy(func(in notification.DispatchInput) bool {
		return in.RecipientID == "resident-2"
	})).Return(&domain.Notification{}, true, nil)

	err := service.UnflagAll(context.Background(), "tenant-1", "listing-1")

	assert.NoError(t, err)
	dispatch.AssertNumberOfCalls(t, "Dispatch", 2)
}
