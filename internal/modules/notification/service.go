package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"neighborly/internal/domain"
	"neighborly/internal/pkg/logger"
	"neighborly/internal/pkg/metrics"
	"neighborly/internal/pkg/validator"
	"neighborly/internal/repository"
)

// DispatchInput describes one notification to be created. Title and
// message are rendered from Content, never supplied by the caller, so
// text stays consistent across direct handlers and the monitor.
type DispatchInput struct {
	TenantID       string                  `validate:"required"`
	RecipientID    string                  `validate:"required"`
	Type           domain.NotificationType `validate:"required"`
	Subject        domain.SubjectRef       `validate:"required"`
	ListingID      string // secondary reference for transaction subjects
	ActorID        string
	ActionRequired bool
	ActionURL      string
	Metadata       map[string]any
	Content        Content
}

type Service struct {
	store Store
	log   *zap.Logger
}

func NewService(store Store) *Service {
	return &Service{store: store, log: logger.Get()}
}

// Dispatch creates at most one notification per
// (subject, type, recipient) triple. A second call with the same triple
// returns the existing row untouched with created=false. Both
// user-action handlers and the return-date monitor rely on this to
// stay re-runnable.
func (s *Service) Dispatch(ctx context.Context, in DispatchInput) (*domain.Notification, bool, error) {
	if errs := validator.Validate(in); errs != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrDispatchFailed, errs)
	}

	existing, err := s.store.FindBySubject(ctx, in.Subject, in.Type, in.RecipientID)
	if err != nil {
		metrics.NotificationDispatchFailedTotal.Inc()
		return nil, false, fmt.Errorf("%w: lookup: %v", ErrDispatchFailed, err)
	}
	if existing != nil {
		metrics.NotificationsSuppressedTotal.Inc()
		return existing, false, nil
	}

	title, err := RenderTitle(in.Type, in.Content)
	if err != nil {
		return nil, false, err
	}
	message, err := RenderMessage(in.Type, in.Content)
	if err != nil {
		return nil, false, err
	}

	n := &domain.Notification{
		TenantID:       in.TenantID,
		RecipientID:    in.RecipientID,
		Type:           in.Type,
		Title:          title,
		Message:        message,
		ActionRequired: in.ActionRequired,
		ActionURL:      in.ActionURL,
	}
	setSubject(n, in.Subject)
	if in.ListingID != "" && in.Subject.Kind == domain.SubjectTransaction {
		id := in.ListingID
		n.ExchangeListingID = &id
	}
	if in.ActorID != "" {
		actor := in.ActorID
		n.ActorID = &actor
	}
	if in.Metadata != nil {
		raw, merr := json.Marshal(in.Metadata)
		if merr != nil {
			return nil, false, fmt.Errorf("%w: metadata: %v", ErrDispatchFailed, merr)
		}
		n.Metadata = raw
	}

	if err := s.store.Insert(ctx, n); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// A concurrent dispatch won the race; its row is the one
			// that counts.
			metrics.NotificationsSuppressedTotal.Inc()
			winner, ferr := s.store.FindBySubject(ctx, in.Subject, in.Type, in.RecipientID)
			if ferr == nil && winner != nil {
				return winner, false, nil
			}
			return n, false, nil
		}
		metrics.NotificationDispatchFailedTotal.Inc()
		return nil, false, fmt.Errorf("%w: insert: %v", ErrDispatchFailed, err)
	}

	metrics.NotificationsDispatchedTotal.WithLabelValues(string(in.Type)).Inc()
	s.log.Info("notification dispatched",
		zap.String("type", string(in.Type)),
		zap.String("recipient_id", in.RecipientID),
		zap.String("subject_kind", string(in.Subject.Kind)),
		zap.String("subject_id", in.Subject.ID))
	return n, true, nil
}

func setSubject(n *domain.Notification, ref domain.SubjectRef) {
	id := ref.ID
	switch ref.Kind {
	case domain.SubjectTransaction:
		n.ExchangeTransactionID = &id
	case domain.SubjectListing:
		n.ExchangeListingID = &id
	case domain.SubjectEvent:
		n.EventID = &id
	case domain.SubjectDocument:
		n.DocumentID = &id
	case domain.SubjectCheckIn:
		n.CheckInID = &id
	}
}

func (s *Service) List(ctx context.Context, tenantID, recipientID string, f repository.NotificationFilters, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListForRecipient(ctx, tenantID, recipientID, f, limit)
}

func (s *Service) UnreadCount(ctx context.Context, tenantID, recipientID string) (int64, error) {
	return s.store.CountUnread(ctx, tenantID, recipientID)
}

func (s *Service) MarkRead(ctx context.Context, id, recipientID string) error {
	err := s.store.MarkRead(ctx, id, recipientID, time.Now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) MarkAllRead(ctx context.Context, tenantID, recipientID string) error {
	return s.store.MarkAllRead(ctx, tenantID, recipientID, time.Now())
}

func (s *Service) ArchiveNotification(ctx context.Context, id, recipientID string) error {
	err := s.store.Archive(ctx, id, recipientID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) TakeAction(ctx context.Context, id, recipientID string, resp domain.ActionResponse) error {
	err := s.store.TakeAction(ctx, id, recipientID, resp)
	if errors.Is(err, repository.ErrStaleState) {
		return ErrActionAlreadyTaken
	}
	return err
}
