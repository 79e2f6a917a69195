package domain

import "errors"

var ErrNotificationDelivery = errors.New("notification delivery failed")

// DispatchPolicy names the delivery-guarantee semantics of a notification
// call site. Blocking call sites refuse to commit the state change unless the
// customer was told; best-effort call sites commit first and send after.
type DispatchPolicy string

const (
	PolicyBlocking   DispatchPolicy = "blocking"
	PolicyBestEffort DispatchPolicy = "best_effort"
)

// NotificationRequest is the ephemeral payload handed to the dispatcher. It
// is never persisted; it exists only for the duration of a dispatch attempt.
type NotificationRequest struct {
	RecipientName  string `validate:"required"`
	RecipientEmail string `validate:"required,email"`
	TrackingNumber string `validate:"required"`
	Status         ShipmentStatus
	TextBody       string
	HTMLBody       string
}
