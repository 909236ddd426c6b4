package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"neighborly/internal/domain"
	"neighborly/internal/modules/notification"
	"neighborly/internal/pkg/logger"
	"neighborly/internal/pkg/metrics"
	"neighborly/internal/repository"
)

type Service struct {
	txns       TransactionStore
	listings   ListingStore
	dispatcher Dispatcher
	users      NameDirectory
	tenants    TenantDirectory
	log        *zap.Logger
}

func NewService(txns TransactionStore, listings ListingStore, dispatcher Dispatcher, users NameDirectory, tenants TenantDirectory) *Service {
	return &Service{
		txns:       txns,
		listings:   listings,
		dispatcher: dispatcher,
		users:      users,
		tenants:    tenants,
		log:        logger.Get(),
	}
}

type RequestInput struct {
	TenantID           string
	ListingID          string
	BorrowerID         string
	Quantity           int
	ProposedPickupDate *time.Time
	ProposedReturnDate *time.Time
	Message            string
}

// Request reserves quantity on the listing and opens a transaction in
// requested status. The reservation is a single conditional decrement,
// so two borrowers racing for the last unit cannot both win.
func (s *Service) Request(ctx context.Context, in RequestInput) (*domain.Transaction, error) {
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	listing, err := s.listings.GetByID(ctx, in.TenantID, in.ListingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if listing.CreatedBy == in.BorrowerID {
		return nil, fmt.Errorf("%w: cannot borrow your own listing", ErrValidation)
	}

	if err := s.listings.ReserveQuantity(ctx, in.ListingID, in.Quantity); err != nil {
		if errors.Is(err, repository.ErrInsufficientQuantity) {
			return nil, ErrUnavailable
		}
		return nil, err
	}

	t := &domain.Transaction{
		TenantID:           in.TenantID,
		ListingID:          in.ListingID,
		BorrowerID:         in.BorrowerID,
		LenderID:           listing.CreatedBy,
		Quantity:           in.Quantity,
		Status:             domain.TransactionRequested,
		ProposedPickupDate: in.ProposedPickupDate,
		ProposedReturnDate: in.ProposedReturnDate,
		BorrowerMessage:    in.Message,
	}
	if err := s.txns.Create(ctx, t); err != nil {
		// The reservation already landed; give it back before failing.
		if rerr := s.listings.RestoreQuantity(ctx, in.ListingID, in.Quantity); rerr != nil {
			s.log.Error("failed to restore quantity after create failure",
				zap.String("listing_id", in.ListingID), zap.Error(rerr))
		}
		return nil, err
	}

	metrics.TransactionsRequestedTotal.Inc()
	s.notify(ctx, t, listing.Title, domain.NotifExchangeRequest, t.LenderID, t.BorrowerID, true, notification.Content{
		Quantity:   t.Quantity,
		PickupDate: t.ProposedPickupDate,
		ReturnDate: t.ProposedReturnDate,
		Message:    t.BorrowerMessage,
	})
	return t, nil
}

type AcceptInput struct {
	ConfirmedPickupDate *time.Time
	ExpectedReturnDate  *time.Time
	LenderMessage       string
}

// Accept moves requested to confirmed. The expected return date locks
// to the lender's answer, defaulting to the borrower's proposed date;
// extensions are the only way to move it afterwards.
func (s *Service) Accept(ctx context.Context, tenantID, id, actorID string, in AcceptInput) (*domain.Transaction, error) {
	t, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t.LenderID != actorID {
		return nil, ErrForbidden
	}

	now := time.Now()
	pickup := in.ConfirmedPickupDate
	if pickup == nil {
		pickup = t.ProposedPickupDate
	}
	returnDate := in.ExpectedReturnDate
	if returnDate == nil {
		returnDate = t.ProposedReturnDate
	}
	patch := map[string]any{
		"status":                domain.TransactionConfirmed,
		"confirmed_at":          now,
		"confirmed_pickup_date": pickup,
		"expected_return_date":  returnDate,
		"lender_message":        in.LenderMessage,
		"updated_at":            now,
	}
	if err := s.transition(ctx, id, domain.TransactionRequested, patch, "accept"); err != nil {
		return nil, err
	}

	s.notify(ctx, t, s.listingTitle(ctx, t), domain.NotifExchangeConfirmed, t.BorrowerID, actorID, false, notification.Content{
		Message: in.LenderMessage,
	})
	return s.load(ctx, tenantID, id)
}

// Reject is terminal. The reserved quantity goes back to the listing.
func (s *Service) Reject(ctx context.Context, tenantID, id, actorID, reason string) (*domain.Transaction, error) {
	t, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t.LenderID != actorID {
		return nil, ErrForbidden
	}

	now := time.Now()
	patch := map[string]any{
		"status":           domain.TransactionRejected,
		"rejected_at":      now,
		"rejection_reason": reason,
		"updated_at":       now,
	}
	if err := s.transition(ctx, id, domain.TransactionRequested, patch, "reject"); err != nil {
		return nil, err
	}
	if err := s.listings.RestoreQuantity(ctx, t.ListingID, t.Quantity); err != nil {
		s.log.Error("failed to restore quantity after rejection",
			zap.String("transaction_id", id), zap.Error(err))
	}

	s.notify(ctx, t, s.listingTitle(ctx, t), domain.NotifExchangeRejected, t.BorrowerID, actorID, false, notification.Content{
		Reason: reason,
	})
	return s.load(ctx, tenantID, id)
}

// ConfirmPickup moves confirmed to picked_up. Either party can record
// the handover; the other party is notified.
func (s *Service) ConfirmPickup(ctx context.Context, tenantID, id, actorID string) (*domain.Transaction, error) {
	t, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	recipient, err := counterparty(t, actorID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	patch := map[string]any{
		"status":             domain.TransactionPickedUp,
		"actual_pickup_date": now,
		"updated_at":         now,
	}
	if err := s.transition(ctx, id, domain.TransactionConfirmed, patch, "pickup"); err != nil {
		return nil, err
	}

	s.notify(ctx, t, s.listingTitle(ctx, t), domain.NotifExchangePickedUp, recipient, actorID, false, notification.Content{
		ActorName: s.users.DisplayName(ctx, actorID),
	})
	return s.load(ctx, tenantID, id)
}

type ReturnInput struct {
	Condition      domain.ReturnCondition
	Notes          string
	DamagePhotoURL string
}

// InitiateReturn is the borrower reporting the item handed back, along
// with its condition. The lender still has to confirm before the
// transaction completes.
func (s *Service) InitiateReturn(ctx context.Context, tenantID, id, actorID string, in ReturnInput) (*domain.Transaction, error) {
	t, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t.BorrowerID != actorID {
		return nil, ErrForbidden
	}

	now := time.Now()
	patch := map[string]any{
		"status":             domain.TransactionReturned,
		"actual_return_date": now,
		"updated_at":         now,
	}
	if in.Condition != "" {
		patch["return_condition"] = in.Condition
	}
	if in.Notes != "" {
		patch["return_notes"] = in.Notes
	}
	if in.DamagePhotoURL != "" {
		patch["return_damage_photo_url"] = in.DamagePhotoURL
	}
	if err := s.transition(ctx, id, domain.TransactionPickedUp, patch, "return"); err != nil {
		return nil, err
	}

	s.notify(ctx, t, s.listingTitle(ctx, t), domain.NotifExchangeReturnInitiated, t.LenderID, actorID, true, notification.Content{
		ActorName: s.users.DisplayName(ctx, actorID),
		Message:   in.Notes,
	})
	return s.load(ctx, tenantID, id)
}

// Complete is the lender confirming the return. The quantity returns
// to the listing and the transaction reaches its terminal status.
func (s *Service) Complete(ctx context.Context, tenantID, id, actorID string) (*domain.Transaction, error) {
	t, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t.LenderID != actorID {
		return nil, ErrForbidden
	}

	now := time.Now()
	patch := map[string]any{
		"status":       domain.TransactionCompleted,
		"completed_at": now,
		"updated_at":   now,
	}
	if err := s.transition(ctx, id, domain.TransactionReturned, patch, "complete"); err != nil {
		return nil, err
	}
	if err := s.listings.RestoreQuantity(ctx, t.ListingID, t.Quantity); err != nil {
		s.log.Error("failed to restore quantity after completion",
			zap.String("transaction_id", id), zap.Error(err))
	}

	metrics.TransactionsCompletedTotal.Inc()
	var condition string
	if t.ReturnCondition != nil {
		condition = string(*t.ReturnCondition)
	}
	s.notify(ctx, t, s.listingTitle(ctx, t), domain.NotifExchangeCompleted, t.BorrowerID, actorID, false, notification.Content{
		Condition: condition,
	})
	return s.load(ctx, tenantID, id)
}

// RequestExtension records the borrower asking for a later return
// date. Only one extension request may be pending at a time.
func (s *Service) RequestExtension(ctx context.Context, tenantID, id, actorID string, newDate time.Time, message string) (*domain.Transaction, error) {
	t, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t.BorrowerID != actorID {
		return nil, ErrForbidden
	}
	if t.ExpectedReturnDate != nil && !newDate.After(*t.ExpectedReturnDate) {
		return nil, fmt.Errorf("%w: new return date must be after the current one", ErrValidation)
	}

	if err := s.txns.RequestExtension(ctx, id, newDate, message, time.Now()); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			metrics.InvalidTransitionsTotal.WithLabelValues("extension_request").Inc()
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.notify(ctx, t, s.listingTitle(ctx, t), domain.NotifExchangeExtensionRequest, t.LenderID, actorID, true, notification.Content{
		ActorName:  s.users.DisplayName(ctx, actorID),
		ReturnDate: &newDate,
		Message:    message,
	})
	return s.load(ctx, tenantID, id)
}

// ResolveExtension is the lender's answer. Approval moves the expected
// return date to the requested date in the same statement that clears
// the pending request.
func (s *Service) ResolveExtension(ctx context.Context, tenantID, id, actorID string, approve bool) (*domain.Transaction, error) {
	t, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t.LenderID != actorID {
		return nil, ErrForbidden
	}

	if err := s.txns.ResolveExtension(ctx, id, approve, time.Now()); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			metrics.InvalidTransitionsTotal.WithLabelValues("extension_resolve").Inc()
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	typ := domain.NotifExchangeExtensionRejected
	content := notification.Content{}
	if approve {
		typ = domain.NotifExchangeExtensionApproved
		content.ReturnDate = t.ExtensionNewDate
	}
	s.notify(ctx, t, s.listingTitle(ctx, t), typ, t.BorrowerID, actorID, false, content)
	return s.load(ctx, tenantID, id)
}

// Cancel is the borrower backing out before pickup, from requested or
// confirmed only. It layers cancelled_at on the pre-cancel status and
// releases the reserved quantity. The lender is notified with a type
// that says how far the exchange had gotten.
func (s *Service) Cancel(ctx context.Context, tenantID, id, actorID, reason string) (*domain.Transaction, error) {
	t, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t.BorrowerID != actorID {
		return nil, ErrForbidden
	}
	if t.Status != domain.TransactionRequested && t.Status != domain.TransactionConfirmed {
		metrics.InvalidTransitionsTotal.WithLabelValues("cancel").Inc()
		return nil, ErrInvalidTransition
	}

	if err := s.txns.Cancel(ctx, id, t.Status, reason, time.Now()); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			metrics.InvalidTransitionsTotal.WithLabelValues("cancel").Inc()
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	if err := s.listings.RestoreQuantity(ctx, t.ListingID, t.Quantity); err != nil {
		s.log.Error("failed to restore quantity after cancellation",
			zap.String("transaction_id", id), zap.Error(err))
	}

	typ := domain.NotifExchangeCancelled
	if t.Status == domain.TransactionRequested {
		typ = domain.NotifExchangeRequestCancelled
	}
	s.notify(ctx, t, s.listingTitle(ctx, t), typ, t.LenderID, actorID, false, notification.Content{
		Reason: reason,
	})
	return s.load(ctx, tenantID, id)
}

func (s *Service) Get(ctx context.Context, tenantID, id, actorID string) (*domain.Transaction, error) {
	t, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t.BorrowerID != actorID && t.LenderID != actorID {
		return nil, ErrForbidden
	}
	return t, nil
}

func (s *Service) ListMine(ctx context.Context, tenantID, userID string) ([]domain.Transaction, error) {
	return s.txns.ListForUser(ctx, tenantID, userID)
}

func (s *Service) load(ctx context.Context, tenantID, id string) (*domain.Transaction, error) {
	t, err := s.txns.GetByID(ctx, tenantID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *Service) transition(ctx context.Context, id string, from domain.TransactionStatus, patch map[string]any, op string) error {
	err := s.txns.Transition(ctx, id, from, patch)
	if errors.Is(err, repository.ErrStaleState) {
		metrics.InvalidTransitionsTotal.WithLabelValues(op).Inc()
		return ErrInvalidTransition
	}
	return err
}

func (s *Service) listingTitle(ctx context.Context, t *domain.Transaction) string {
	l, err := s.listings.GetByID(ctx, t.TenantID, t.ListingID)
	if err != nil {
		return ""
	}
	return l.Title
}

// notify dispatches after a committed transition. Failures are logged
// and counted, never surfaced: the state change already happened and
// must not be rolled back over a notification.
func (s *Service) notify(ctx context.Context, t *domain.Transaction, listingTitle string, typ domain.NotificationType, recipientID, actorID string, actionRequired bool, content notification.Content) {
	content.ListingTitle = listingTitle
	in := notification.DispatchInput{
		TenantID:       t.TenantID,
		RecipientID:    recipientID,
		Type:           typ,
		Subject:        domain.SubjectRef{Kind: domain.SubjectTransaction, ID: t.ID},
		ListingID:      t.ListingID,
		ActorID:        actorID,
		ActionRequired: actionRequired,
		ActionURL:      s.actionURL(ctx, t.TenantID),
		Content:        content,
	}
	if _, _, err := s.dispatcher.Dispatch(ctx, in); err != nil {
		s.log.Error("notification dispatch failed",
			zap.String("type", string(typ)),
			zap.String("transaction_id", t.ID),
			zap.String("recipient_id", recipientID),
			zap.Error(err))
	}
}

func (s *Service) actionURL(ctx context.Context, tenantID string) string {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("/t/%s/dashboard?tab=transactions", tenant.Slug)
}

func counterparty(t *domain.Transaction, actorID string) (string, error) {
	switch actorID {
	case t.BorrowerID:
		return t.LenderID, nil
	case t.LenderID:
		return t.BorrowerID, nil
	}
	return "", ErrForbidden
}
