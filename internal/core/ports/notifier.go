package ports

import (
	"context"

	"github.com/pniceshipping/portal/internal/core/domain"
)

// Notifier delivers one templated status message to a recipient. A returned
// error wrapping domain.ErrNotificationDelivery means all retry attempts were
// exhausted; domain.ErrValidation means no send was attempted.
type Notifier interface {
	Dispatch(ctx context.Context, status domain.ShipmentStatus, recipientName, recipientEmail, trackingNumber string) error
}

// NotificationJob is a queued best-effort dispatch.
type NotificationJob struct {
	Status         domain.ShipmentStatus
	RecipientName  string
	RecipientEmail string
	TrackingNumber string
}

// NotificationQueue accepts best-effort dispatch jobs. Enqueued jobs are
// processed asynchronously; failures are logged, never surfaced.
type NotificationQueue interface {
	Enqueue(job NotificationJob)
	EnqueueBatch(jobs []NotificationJob)
}
