package monitor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"neighborly/internal/domain"
	"neighborly/internal/modules/notification"
	"neighborly/internal/pkg/logger"
	"neighborly/internal/pkg/metrics"
)

// reminderWindow is how far ahead of the expected return date the
// borrower gets a reminder.
const reminderWindow = 48 * time.Hour

// Result is one scan's tally. Because every dispatch is idempotent,
// re-running the scan over the same data yields zero sent counts.
type Result struct {
	Processed                int `json:"processed"`
	RemindersSent            int `json:"remindersSent"`
	OverdueNotificationsSent int `json:"overdueNotificationsSent"`
	Failures                 int `json:"failures"`
}

type Service struct {
	txns       TransactionStore
	listings   ListingStore
	dispatcher Dispatcher
	tenants    TenantDirectory
	log        *zap.Logger
}

func NewService(txns TransactionStore, listings ListingStore, dispatcher Dispatcher, tenants TenantDirectory) *Service {
	return &Service{
		txns:       txns,
		listings:   listings,
		dispatcher: dispatcher,
		tenants:    tenants,
		log:        logger.Get(),
	}
}

// Run scans every picked-up transaction with a known return date and
// sends reminders and overdue notices. The scan is stateless; the
// dispatch engine's dedupe is what keeps repeated runs quiet. One bad
// transaction never stops the rest of the scan.
func (s *Service) Run(ctx context.Context) (Result, error) {
	metrics.MonitorRunsTotal.Inc()
	start := time.Now()
	defer func() {
		metrics.MonitorRunDuration.Observe(time.Since(start).Seconds())
	}()

	var res Result

	txns, err := s.txns.ListAwaitingReturn(ctx)
	if err != nil {
		return res, fmt.Errorf("load transactions awaiting return: %w", err)
	}
	if len(txns) == 0 {
		return res, nil
	}

	seen := map[string]bool{}
	var tenantIDs []string
	for _, t := range txns {
		if !seen[t.TenantID] {
			seen[t.TenantID] = true
			tenantIDs = append(tenantIDs, t.TenantID)
		}
	}
	slugs, err := s.tenants.SlugsByIDs(ctx, tenantIDs)
	if err != nil {
		return res, fmt.Errorf("resolve tenant slugs: %w", err)
	}

	now := time.Now()
	for i := range txns {
		if err := ctx.Err(); err != nil {
			s.log.Warn("return-date scan stopped early",
				zap.Int("processed", res.Processed),
				zap.Int("remaining", len(txns)-i))
			return res, err
		}

		t := &txns[i]
		slug, ok := slugs[t.TenantID]
		if !ok {
			s.log.Warn("skipping transaction with unresolvable tenant",
				zap.String("transaction_id", t.ID),
				zap.String("tenant_id", t.TenantID))
			continue
		}
		res.Processed++

		due := *t.ExpectedReturnDate
		url := fmt.Sprintf("/t/%s/dashboard?tab=transactions", slug)
		title := s.listingTitle(ctx, t)

		switch {
		case due.Before(now):
			for _, recipient := range []string{t.BorrowerID, t.LenderID} {
				created, err := s.send(ctx, t, domain.NotifExchangeOverdue, recipient, url, title, due)
				if err != nil {
					res.Failures++
					continue
				}
				if created {
					res.OverdueNotificationsSent++
					metrics.MonitorOverdueSentTotal.Inc()
				}
			}

		case due.Sub(now) <= reminderWindow:
			created, err := s.send(ctx, t, domain.NotifExchangeReminder, t.BorrowerID, url, title, due)
			if err != nil {
				res.Failures++
				continue
			}
			if created {
				res.RemindersSent++
				metrics.MonitorRemindersSentTotal.Inc()
			}
		}
	}

	s.log.Info("return-date scan finished",
		zap.Int("processed", res.Processed),
		zap.Int("reminders_sent", res.RemindersSent),
		zap.Int("overdue_sent", res.OverdueNotificationsSent),
		zap.Int("failures", res.Failures),
		zap.Duration("took", time.Since(start)))
	return res, nil
}

func (s *Service) send(ctx context.Context, t *domain.Transaction, typ domain.NotificationType, recipientID, url, title string, due time.Time) (bool, error) {
	_, created, err := s.dispatcher.Dispatch(ctx, notification.DispatchInput{
		TenantID:    t.TenantID,
		RecipientID: recipientID,
		Type:        typ,
		Subject:     domain.SubjectRef{Kind: domain.SubjectTransaction, ID: t.ID},
		ListingID:   t.ListingID,
		ActionURL:   url,
		Content: notification.Content{
			ListingTitle: title,
			ReturnDate:   &due,
		},
	})
	if err != nil {
		metrics.MonitorFailuresTotal.Inc()
		s.log.Error("monitor dispatch failed",
			zap.String("type", string(typ)),
			zap.String("transaction_id", t.ID),
			zap.String("recipient_id", recipientID),
			zap.Error(err))
		return false, err
	}
	return created, nil
}

func (s *Service) listingTitle(ctx context.Context, t *domain.Transaction) string {
	l, err := s.listings.GetByID(ctx, t.TenantID, t.ListingID)
	if err != nil {
		return ""
	}
	return l.Title
}
