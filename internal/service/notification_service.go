package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/barbershop-api/internal/config"
	"github.com/spec-kit/barbershop-api/internal/events"
)

// NotificationService fans domain events out to the shop's notification channels.
// Email and webhook delivery are logged stubs.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events and returns the types it listens on.
func (n *NotificationService) RegisterHandlers() []events.EventType {
	if n.dispatcher == nil {
		return nil
	}
	subscribed := []events.EventType{events.EventUserRegistered, events.EventUserDeleted}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventUserDeleted, n.handleUserDeleted)
	for _, t := range []events.EventType{events.EventScheduleCreated, events.EventScheduleUpdated, events.EventScheduleDeleted} {
		n.dispatcher.Subscribe(t, n.handleScheduleChanged)
		subscribed = append(subscribed, t)
	}
	return subscribed
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("user_id", event.SubjectID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.UserRegisteredPayload); ok {
		n.sendEmailStub(ctx, event, payload.Email)
	}
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("UserDeleted", zap.String("user_id", event.SubjectID), zap.String("actor_id", event.ActorID))
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) handleScheduleChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ScheduleChanged",
		zap.String("event_type", string(event.Type)),
		zap.String("schedule_id", event.SubjectID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailStub(_ context.Context, event events.Event, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || to == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
