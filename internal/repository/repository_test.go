package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"neighborly/internal/database"
	"neighborly/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedListing(t *testing.T, db *gorm.DB, qty int) *domain.Listing {
	t.Helper()
	now := time.Now()
	l := &domain.Listing{
		TenantID:          "tenant-1",
		CreatedBy:         "lender-1",
		CategoryID:        "cat-1",
		Title:             "Cordless drill",
		Status:            domain.ListingPublished,
		PricingType:       domain.PricingFree,
		AvailableQuantity: qty,
		VisibilityScope:   domain.VisibilityCommunity,
		PublishedAt:       &now,
	}
	require.NoError(t, NewListingRepository(db).Create(context.Background(), l))
	return l
}

func TestListingRepository_ReserveQuantity_NeverNegative(t *testing.T) {
	db := testDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()
	l := seedListing(t, db, 1)

	assert.NoError(t, repo.ReserveQuantity(ctx, l.ID, 1))
	// The second reservation races for stock that is gone.
	assert.ErrorIs(t, repo.ReserveQuantity(ctx, l.ID, 1), ErrInsufficientQuantity)

	got, err := repo.GetByID(ctx, "tenant-1", l.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableQuantity)

	assert.NoError(t, repo.RestoreQuantity(ctx, l.ID, 1))
	got, err = repo.GetByID(ctx, "tenant-1", l.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableQuantity)
}

func TestListingRepository_ReserveQuantity_UnpublishedListing(t *testing.T) {
	db := testDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()
	l := seedListing(t, db, 3)

	require.NoError(t, repo.TransitionStatus(ctx, l.ID,
		[]domain.ListingStatus{domain.ListingPublished},
		map[string]any{"status": domain.ListingPaused}))

	assert.ErrorIs(t, repo.ReserveQuantity(ctx, l.ID, 1), ErrInsufficientQuantity)
}

func TestListingRepository_PublishStampsPublishedAtOnce(t *testing.T) {
	db := testDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()

	l := &domain.Listing{
		TenantID:          "tenant-1",
		CreatedBy:         "lender-1",
		CategoryID:        "cat-1",
		Title:             "Ladder",
		Status:            domain.ListingDraft,
		PricingType:       domain.PricingFree,
		AvailableQuantity: 1,
		VisibilityScope:   domain.VisibilityCommunity,
	}
	require.NoError(t, repo.Create(ctx, l))

	first := time.Now().Add(-time.Hour)
	require.NoError(t, repo.Publish(ctx, l.ID, first))
	got, err := repo.GetByID(ctx, "tenant-1", l.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PublishedAt)
	stamped := *got.PublishedAt

	// Pause and re-publish; the original stamp survives.
	require.NoError(t, repo.TransitionStatus(ctx, l.ID,
		[]domain.ListingStatus{domain.ListingPublished},
		map[string]any{"status": domain.ListingPaused}))
	require.NoError(t, repo.Publish(ctx, l.ID, time.Now()))

	got, err = repo.GetByID(ctx, "tenant-1", l.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, stamped, *got.PublishedAt, time.Second)
}

func TestListingRepository_TransitionStatus_WrongSource(t *testing.T) {
	db := testDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()
	l := seedListing(t, db, 1)

	err := repo.TransitionStatus(ctx, l.ID,
		[]domain.ListingStatus{domain.ListingDraft},
		map[string]any{"status": domain.ListingPublished})
	assert.ErrorIs(t, err, ErrStaleState)
}

func seedTransaction(t *testing.T, db *gorm.DB, status domain.TransactionStatus) *domain.Transaction {
	t.Helper()
	due := time.Now().Add(24 * time.Hour)
	tx := &domain.Transaction{
		TenantID:           "tenant-1",
		ListingID:          "listing-1",
		BorrowerID:         "borrower-1",
		LenderID:           "lender-1",
		Quantity:           1,
		Status:             status,
		ExpectedReturnDate: &due,
	}
	require.NoError(t, NewTransactionRepository(db).Create(context.Background(), tx))
	return tx
}

func TestTransactionRepository_Transition_GuardsSourceStatus(t *testing.T) {
	db := testDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	tx := seedTransaction(t, db, domain.TransactionRequested)

	patch := map[string]any{"status": domain.TransactionConfirmed, "confirmed_at": time.Now()}
	require.NoError(t, repo.Transition(ctx, tx.ID, domain.TransactionRequested, patch))

	// The same transition again must lose: the row already moved on.
	assert.ErrorIs(t, repo.Transition(ctx, tx.ID, domain.TransactionRequested, patch), ErrStaleState)

	got, err := repo.GetByID(ctx, "tenant-1", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionConfirmed, got.Status)
}

func TestTransactionRepository_Cancel_BlocksFurtherTransitions(t *testing.T) {
	db := testDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	tx := seedTransaction(t, db, domain.TransactionConfirmed)

	require.NoError(t, repo.Cancel(ctx, tx.ID, domain.TransactionConfirmed, "Plans changed", time.Now()))

	// Status is untouched but the cancellation marker blocks the move.
	err := repo.Transition(ctx, tx.ID, domain.TransactionConfirmed,
		map[string]any{"status": domain.TransactionPickedUp})
	assert.ErrorIs(t, err, ErrStaleState)

	got, err := repo.GetByID(ctx, "tenant-1", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionConfirmed, got.Status)
	assert.NotNil(t, got.CancelledAt)
}

func TestTransactionRepository_ResolveExtension_MovesReturnDate(t *testing.T) {
	db := testDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	tx := seedTransaction(t, db, domain.TransactionPickedUp)

	newDate := time.Now().Add(5 * 24 * time.Hour).Truncate(time.Second)
	require.NoError(t, repo.RequestExtension(ctx, tx.ID, newDate, "A few more days", time.Now()))

	// A second pending request is rejected.
	assert.ErrorIs(t, repo.RequestExtension(ctx, tx.ID, newDate, "", time.Now()), ErrStaleState)

	require.NoError(t, repo.ResolveExtension(ctx, tx.ID, true, time.Now()))

	got, err := repo.GetByID(ctx, "tenant-1", tx.ID)
	require.NoError(t, err)
	assert.False(t, got.ExtensionRequested)
	require.NotNil(t, got.ExpectedReturnDate)
	assert.WithinDuration(t, newDate, *got.ExpectedReturnDate, time.Second)
}

func TestNotificationRepository_InsertDuplicateTriple(t *testing.T) {
	db := testDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	txID := "tx-1"
	first := &domain.Notification{
		TenantID:              "tenant-1",
		RecipientID:           "lender-1",
		Type:                  domain.NotifExchangeRequest,
		Title:                 "New borrow request",
		ExchangeTransactionID: &txID,
	}
	require.NoError(t, repo.Insert(ctx, first))

	dup := &domain.Notification{
		TenantID:              "tenant-1",
		RecipientID:           "lender-1",
		Type:                  domain.NotifExchangeRequest,
		Title:                 "New borrow request",
		ExchangeTransactionID: &txID,
	}
	assert.ErrorIs(t, repo.Insert(ctx, dup), ErrDuplicate)

	// Same transaction and type to a different recipient is fine.
	other := &domain.Notification{
		TenantID:              "tenant-1",
		RecipientID:           "borrower-1",
		Type:                  domain.NotifExchangeRequest,
		Title:                 "New borrow request",
		ExchangeTransactionID: &txID,
	}
	assert.NoError(t, repo.Insert(ctx, other))

	found, err := repo.FindBySubject(ctx,
		domain.SubjectRef{Kind: domain.SubjectTransaction, ID: txID},
		domain.NotifExchangeRequest, "lender-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)
}

func TestNotificationRepository_ListingSubjectDuplicate(t *testing.T) {
	db := testDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	listingID := "listing-1"
	first := &domain.Notification{
		TenantID:          "tenant-1",
		RecipientID:       "flagger-1",
		Type:              domain.NotifExchangeFlagResolved,
		Title:             "Flag resolved",
		ExchangeListingID: &listingID,
	}
	require.NoError(t, repo.Insert(ctx, first))

	dup := &domain.Notification{
		TenantID:          "tenant-1",
		RecipientID:       "flagger-1",
		Type:              domain.NotifExchangeFlagResolved,
		Title:             "Flag resolved",
		ExchangeListingID: &listingID,
	}
	assert.ErrorIs(t, repo.Insert(ctx, dup), ErrDuplicate)

	found, err := repo.FindBySubject(ctx,
		domain.SubjectRef{Kind: domain.SubjectListing, ID: listingID},
		domain.NotifExchangeFlagResolved, "flagger-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)
}

func TestNotificationRepository_ListingRefOnTransactionRowsDoesNotCollide(t *testing.T) {
	db := testDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	// Two transactions on the same listing, same type and recipient.
	// The listing is only a secondary reference here, so neither row
	// trips the listing-subject uniqueness.
	listingID := "listing-1"
	for _, txID := range []string{"tx-1", "tx-2"} {
		id := txID
		n := &domain.Notification{
			TenantID:              "tenant-1",
			RecipientID:           "lender-1",
			Type:                  domain.NotifExchangeRequest,
			Title:                 "New borrow request",
			ExchangeTransactionID: &id,
			ExchangeListingID:     &listingID,
		}
		assert.NoError(t, repo.Insert(ctx, n))
	}

	// A listing-subject lookup must not pick up the transaction rows.
	found, err := repo.FindBySubject(ctx,
		domain.SubjectRef{Kind: domain.SubjectListing, ID: listingID},
		domain.NotifExchangeRequest, "lender-1")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFlagRepository_OneFlagPerFlagger(t *testing.T) {
	db := testDB(t)
	repo := NewFlagRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Flag{
		TenantID:  "tenant-1",
		ListingID: "listing-1",
		FlaggedBy: "resident-1",
		Reason:    "Not as described",
	}))

	err := repo.Create(ctx, &domain.Flag{
		TenantID:  "tenant-1",
		ListingID: "listing-1",
		FlaggedBy: "resident-1",
		Reason:    "Still not as described",
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	// A different resident flagging the same listing is fine.
	assert.NoError(t, repo.Create(ctx, &domain.Flag{
		TenantID:  "tenant-1",
		ListingID: "listing-1",
		FlaggedBy: "resident-2",
		Reason:    "Spam",
	}))
}
