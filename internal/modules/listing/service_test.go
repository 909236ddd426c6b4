package listing

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

func (m *MockStore) Create(ctx context.Context, l *domain.Listing) error {
	args := m.Called(ctx, l)
	if l != nil && l.ID == "" {
		l.ID = "listing-1"
	}
	return args.Error(0)
}

func (m *MockStore) GetByID(ctx context.Context, tenantID, id string) (*domain.Listing, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockStore) ListPublished(ctx context.Context, tenantID string) ([]domain.Listing, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *MockStore) ListByCreator(ctx context.Context, tenantID, userID string) ([]domain.Listing, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *MockStore) TransitionStatus(ctx context.Context, id string, from []domain.ListingStatus, patch map[string]any) error {
	args := m.Called(ctx, id, from, patch)
	return args.Error(0)
}

func (m *MockStore) Publish(ctx context.Context, id string, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

func (m *MockStore) Cancel(ctx context.Context, id, reason string, now time.Time) error {
	args := m.Called(ctx, id, reason, now)
	return args.Error(0)
}

func (m *MockStore) Archive(ctx context.Context, id, archivedBy string, now time.Time) error {
	args := m.Called(ctx, id, archivedBy, now)
	return args.Error(0)
}

func (m *MockStore) Unarchive(ctx context.Context, id string, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

func (m *MockStore) UpdateDraftFields(ctx context.Context, id string, patch map[string]any) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func ownedListing(status domain.ListingStatus) *domain.Listing {
	return &domain.Listing{
		ID:                "listing-1",
		TenantID:          "tenant-1",
		CreatedBy:         "owner-1",
		Title:             "Pressure washer",
		Status:            status,
		AvailableQuantity: 1,
	}
}

func TestService_Create_Draft(t *testing.T) {
	store := new(MockStore)
	store.On("Create", mock.Anything, mock.Anything).Return(nil)
	service := NewService(store)

	l, err := service.Create(context.Background(), CreateInput{
		TenantID:        "tenant-1",
		CreatedBy:       "owner-1",
		CategoryID:      "cat-1",
		Title:           "Pressure washer",
		PricingType:     domain.PricingFree,
		Quantity:        1,
		VisibilityScope: domain.VisibilityCommunity,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.ListingDraft, l.Status)
	assert.Nil(t, l.PublishedAt)
}

func TestService_Create_FixedPriceRequiresPrice(t *testing.T) {
	service := NewService(new(MockStore))

	_, err := service.Create(context.Background(), CreateInput{
		TenantID:    "tenant-1",
		CreatedBy:   "owner-1",
		CategoryID:  "cat-1",
		Title:       "Ladder",
		PricingType: domain.PricingFixed,
		Quantity:    1,
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Create_NeighborhoodScopeRequiresNeighborhoods(t *testing.T) {
	service := NewService(new(MockStore))

	_, err := service.Create(context.Background(), CreateInput{
		TenantID:        "tenant-1",
		CreatedBy:       "owner-1",
		CategoryID:      "cat-1",
		Title:           "Ladder",
		PricingType:     domain.PricingFree,
		Quantity:        1,
		VisibilityScope: domain.VisibilityNeighborhood,
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Publish_FromDraft(t *testing.T) {
	store := new(MockStore)
	store.On("GetByID", mock.Anything, "tenant-1", "listing-1").Return(ownedListing(domain.ListingDraft), nil)
	store.On("Publish", mock.Anything, "listing-1", mock.Anything).Return(nil)
	service := NewService(store)

	_, err := service.Publish(context.Background(), "tenant-1", "listing-1", "owner-1")

	assert.NoError(t, err)
	store.AssertCalled(t, "Publish", mock.Anything, "listing-1", mock.Anything)
}

func TestService_Publish_FromCancelled(t *testing.T) {
	store := new(MockStore)
	store.On("GetByID", mock.Anything, "tenant-1", "listing-1").Return(ownedListing(domain.ListingCancelled), nil)
	store.On("Publish", mock.Anything, "listing-1", mock.Anything).Return(repository.ErrStaleState)
	service := NewService(store)

	_, err := service.Publish(context.Background(), "tenant-1", "listing-1", "owner-1")

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestService_Publish_NotTheOwner(t *testing.T) {
	store := new(MockStore)
	store.On("GetByID", mock.Anything, "tenant-1", "listing-1").Return(ownedListing(domain.ListingDraft), nil)
	service := NewService(store)

	_, err := service.Publish(context.Background(), "tenant-1", "listing-1", "intruder")

	assert.ErrorIs(t, err, ErrForbidden)
	store.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Resume_FromPaused(t *testing.T) {
	store := new(MockStore)
	store.On("GetByID", mock.Anything, "tenant-1", "listing-1").Return(ownedListing(domain.ListingPaused), nil)
	store.On("TransitionStatus", mock.Anything, "listing-1",
		[]domain.ListingStatus{domain.ListingPaused}, mock.Anything).Return(nil)
	service := NewService(store)

	_, err := service.Resume(context.Background(), "tenant-1", "listing-1", "owner-1")

	assert.NoError(t, err)
	store.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Cancel_ByModerator(t *testing.T) {
	store := new(MockStore)
	store.On("GetByID", mock.Anything, "tenant-1", "listing-1").Return(ownedListing(domain.ListingPublished), nil)
	store.On("Cancel", mock.Anything, "listing-1", "Against community rules", mock.Anything).Return(nil)
	service := NewService(store)

	_, err := service.Cancel(context.Background(), "tenant-1", "listing-1", "moderator-1", domain.RoleModerator, "Against community rules")

	assert.NoError(t, err)
	store.AssertCalled(t, "Cancel", mock.Anything, "listing-1", "Against community rules", mock.Anything)
}

func TestService_Cancel_ByStrangerForbidden(t *testing.T) {
	store := new(MockStore)
	store.On("GetByID", mock.Anything, "tenant-1", "listing-1").Return(ownedListing(domain.ListingPublished), nil)
	service := NewService(store)

	_, err := service.Cancel(context.Background(), "tenant-1", "listing-1", "intruder", domain.RoleResident, "Mine now")

	assert.ErrorIs(t, err, ErrForbidden)
	store.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Pause_OnlyFromPublished(t *testing.T) {
	store := new(MockStore)
	store.On("GetByID", mock.Anything, "tenant-1", "listing-1").Return(ownedListing(domain.ListingDraft), nil)
	store.On("TransitionStatus", mock.Anything, "listing-1",
		[]domain.ListingStatus{domain.ListingPublished}, mock.Anything).Return(repository.ErrStaleState)
	service := NewService(store)

	_, err := service.Pause(context.Background(), "tenant-1", "listing-1", "owner-1")

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestService_Update_PublishedListingRejected(t *testing.T) {
	store := new(MockStore)
	store.On("GetByID", mock.Anything, "tenant-1", "listing-1").Return(ownedListing(domain.ListingPublished), nil)
	store.On("UpdateDraftFields", mock.Anything, "listing-1", mock.Anything).Return(repository.ErrStaleState)
	service := NewService(store)

	title := "New title"
	_, err := service.Update(context.Background(), "tenant-1", "listing-1", "owner-1", UpdateInput{Title: &title})

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestService_Get_NotFound(t *testing.T) {
	store := new(MockStore)
	store.On("GetByID", mock.Anything, "tenant-1", "missing").Return(nil, repository.ErrNotFound)
	service := NewService(store)

	_, err := service.Get(context.Background(), "tenant-1", "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}
