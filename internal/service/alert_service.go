package service

import (
	"context"
	"fmt"
	"time"

	"homecare-data/internal/derived"
	"homecare-data/internal/notify"

	"go.uber.org/zap"
)

const (
	// NotificationDocumentExpiry kind of the expiring-documents alert.
	NotificationDocumentExpiry = "document_expiry"
	documentExpirySubject      = "Documenti in scadenza"
)

// AlertService sends roster-wide expiry alerts ("Notifica Scadenze").
type AlertService interface {
	NotifyExpiring(ctx context.Context) (*NotifyResult, error)
	// Run notifies once, then every interval until ctx is done.
	Run(ctx context.Context, interval time.Duration) error
}

type NotifyResult struct {
	Notified  bool                       `json:"notified"`
	Count     int                        `json:"count"`
	Documents []derived.ExpiringDocument `json:"documents"`
}

type alertService struct {
	operators OperatorService
	notifier  notify.Notifier
	logger    *zap.Logger
	now       func() time.Time
}

func NewAlertService(operators OperatorService, notifier notify.Notifier, logger *zap.Logger) AlertService {
	return &alertService{
		operators: operators,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// NotifyExpiring nothing is sent when no document is expired or expiring.
func (s *alertService) NotifyExpiring(ctx context.Context) (*NotifyResult, error) {
	docs, err := s.operators.Expiring(ctx)
	if err != nil {
		return nil, err
	}
	res := &NotifyResult{Count: len(docs), Documents: docs}
	if len(docs) == 0 {
		return res, nil
	}

	n := notify.Notification{
		Kind:    NotificationDocumentExpiry,
		Subject: documentExpirySubject,
		Count:   len(docs),
		SentAt:  s.now().UTC(),
		Payload: docs,
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to send expiry notification: %w", err)
	}
	res.Notified = true
	s.logger.Info("expiry notification sent", zap.Int("documents", len(docs)))
	return res, nil
}

func (s *alertService) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("alert interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Starting expiry alerts", zap.Duration("interval", interval))

	if _, err := s.NotifyExpiring(ctx); err != nil {
		s.logger.Error("Failed to notify expiring documents", zap.Error(err))
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.NotifyExpiring(ctx); err != nil {
				s.logger.Error("Failed to notify expiring documents", zap.Error(err))
			}
		}
	}
}
