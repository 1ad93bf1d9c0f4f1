package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/config"
	"github.com/spec-kit/sla-engine/internal/events"
)

// NotificationService turns SLA conclusion events into alerts. Breaches and
// met targets are always logged; when a webhook URL is configured the event
// is also posted there as JSON. Delivery is best effort.
type NotificationService struct {
	cfg    config.NotificationConfig
	client *http.Client
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Register subscribes the service to the SLA conclusion events.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventSlaBreached, s.HandleBreached)
	dispatcher.Subscribe(events.EventSlaMet, s.HandleMet)
}

// HandleBreached alerts on a breached SLA.
func (s *NotificationService) HandleBreached(ctx context.Context, event events.Event) error {
	s.logger.Warn("sla breached",
		zap.String("ticket_id", event.TicketID),
		zap.String("policy_id", event.PolicyID),
		zap.Time("at", event.Timestamp))
	return s.postWebhook(ctx, event)
}

// HandleMet records a met SLA.
func (s *NotificationService) HandleMet(ctx context.Context, event events.Event) error {
	s.logger.Info("sla met",
		zap.String("ticket_id", event.TicketID),
		zap.String("policy_id", event.PolicyID),
		zap.Time("at", event.Timestamp))
	return s.postWebhook(ctx, event)
}

func (s *NotificationService) postWebhook(ctx context.Context, event events.Event) error {
	if s.cfg.WebhookURL == "" {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("webhook delivery failed", zap.String("ticket_id", event.TicketID), zap.Error(err))
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		s.logger.Warn("webhook rejected event",
			zap.String("ticket_id", event.TicketID),
			zap.Int("status", resp.StatusCode))
	}
	return nil
}
