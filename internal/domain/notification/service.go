package notification

import (
	"context"
	"log/slog"
)

// Notifier is the sink business services publish to. Delivery is best-effort:
// a returned error is logged by the caller and never rolls anything back.
type Notifier interface {
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error
}

// Service defines the notification service interface
type Service interface {
	Notifier

	GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, userID string) error

	// SSE subscription
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	// Lifecycle
	Stop()
}

// Send queues req on n and logs a failure instead of returning it.
func Send(ctx context.Context, n Notifier, req CreateNotificationRequest) {
	if n == nil {
		return
	}
	if err := n.QueueNotification(ctx, req); err != nil {
		slog.Warn("failed to queue notification",
			"recipient_id", req.RecipientID,
			"type", req.Type,
			"error", err)
	}
}
