package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/barbershop-api/internal/service"
)

// StartNotificationWorker subscribes the notification service to account and
// schedule events. Without a webhook URL only the email stub fires, which is
// worth a warning outside development.
func StartNotificationWorker(notificationService *service.NotificationService, webhookURL string, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	subscribed := notificationService.RegisterHandlers()
	names := make([]string, 0, len(subscribed))
	for _, t := range subscribed {
		names = append(names, string(t))
	}
	logger.Info("notification handlers registered", zap.Strings("events", names))
	if webhookURL == "" {
		logger.Warn("NOTIFY_WEBHOOK_URL not set; webhook notifications disabled")
	}
}
