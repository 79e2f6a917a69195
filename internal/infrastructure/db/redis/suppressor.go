package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pniceshipping/portal/internal/core/domain"
)

const suppressionTTL = time.Hour

// NotificationSuppressor tracks recently sent notifications in Redis.
// Key format: notified:<tracking_number>:<status>
type NotificationSuppressor struct {
	client *redis.Client
}

// NewNotificationSuppressor wraps the given Redis client.
func NewNotificationSuppressor(client *redis.Client) *NotificationSuppressor {
	return &NotificationSuppressor{client: client}
}

// AlreadySent reports whether this (tracking, status) pair was mailed within
// the suppression window.
func (s *NotificationSuppressor) AlreadySent(ctx context.Context, trackingNumber string, status domain.ShipmentStatus) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(trackingNumber, status)).Result()
	if err != nil {
		return false, fmt.Errorf("suppression check: %w", err)
	}
	return n > 0, nil
}

// MarkSent records a delivered notification (expires after suppressionTTL).
func (s *NotificationSuppressor) MarkSent(ctx context.Context, trackingNumber string, status domain.ShipmentStatus) error {
	return s.client.Set(ctx, s.key(trackingNumber, status), "1", suppressionTTL).Err()
}

func (s *NotificationSuppressor) key(trackingNumber string, status domain.ShipmentStatus) string {
	return fmt.Sprintf("notified:%s:%s", trackingNumber, status)
}
