// Package notification delivers templated status emails through the external
// notification service, with bounded retry and explicit failure semantics.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pniceshipping/portal/internal/core/domain"
)

const (
	requestTimeout = 5 * time.Second
	maxAttempts    = 3
	baseDelay      = time.Second
	// jitterFraction spreads retry delays ±20% so synchronized failures do
	// not hammer the notification service in lockstep.
	jitterFraction = 0.2
)

// SleepFunc pauses for d or returns early with ctx.Err() on cancellation.
// Injectable so retry tests run without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// sendEmailRequest is the wire body for POST {base}/send-email.
type sendEmailRequest struct {
	UserName    string `json:"userName"`
	UserEmail   string `json:"userEmail"`
	PackageID   string `json:"packageId"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	HTMLMessage string `json:"htmlMessage"`
}

// sendEmailError is the error envelope the notification service returns on
// non-2xx responses.
type sendEmailError struct {
	Details string `json:"details"`
}

// Mailer implements ports.Notifier against the HTTP notification service.
//
// Dispatch is a blocking call: worst case it holds the caller for three
// request timeouts plus the backoff delays (~22s). Callers needing a tighter
// bound pass a context with their own deadline; cancellation is honored
// between attempts and inside each request.
type Mailer struct {
	baseURL  string
	client   *http.Client
	validate *validator.Validate
	sleep    SleepFunc
	logger   zerolog.Logger
}

// Option customizes a Mailer.
type Option func(*Mailer)

// WithSleep replaces the inter-attempt sleep. Tests use this to observe
// backoff delays without waiting them out.
func WithSleep(s SleepFunc) Option {
	return func(m *Mailer) { m.sleep = s }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Mailer) { m.client = c }
}

func NewMailer(baseURL string, logger zerolog.Logger, opts ...Option) *Mailer {
	m := &Mailer{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: requestTimeout},
		validate: validator.New(),
		sleep:    defaultSleep,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dispatch renders and sends one status notification. Invalid input fails
// fast with domain.ErrValidation before any network call. Transport failures
// are retried up to three total attempts with exponential backoff (1s, 2s,
// 4s base delays, one after each failed attempt); exhaustion surfaces
// domain.ErrNotificationDelivery.
func (m *Mailer) Dispatch(ctx context.Context, status domain.ShipmentStatus, recipientName, recipientEmail, trackingNumber string) error {
	text, html := renderBodies(status, trackingNumber)
	req := domain.NotificationRequest{
		RecipientName:  recipientName,
		RecipientEmail: recipientEmail,
		TrackingNumber: trackingNumber,
		Status:         status,
		TextBody:       text,
		HTMLBody:       html,
	}
	if err := m.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	body, err := json.Marshal(sendEmailRequest{
		UserName:    req.RecipientName,
		UserEmail:   req.RecipientEmail,
		PackageID:   req.TrackingNumber,
		Status:      string(req.Status),
		Message:     req.TextBody,
		HTMLMessage: req.HTMLBody,
	})
	if err != nil {
		return fmt.Errorf("%w: encode payload: %v", domain.ErrValidation, err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = m.send(ctx, body)
		if lastErr == nil {
			if attempt > 1 {
				m.logger.Info().
					Str("tracking_number", trackingNumber).
					Int("attempt", attempt).
					Msg("notification delivered after retry")
			}
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", domain.ErrNotificationDelivery, ctx.Err())
		}

		m.logger.Warn().Err(lastErr).
			Str("tracking_number", trackingNumber).
			Str("status", string(status)).
			Int("attempt", attempt).
			Msg("notification attempt failed")

		// The last delay runs before the failure surfaces, so a caller that
		// retries the whole dispatch keeps the 1s/2s/4s spacing against the
		// notification service.
		if err := m.sleep(ctx, withJitter(baseDelay<<(attempt-1))); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrNotificationDelivery, err)
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", domain.ErrNotificationDelivery, maxAttempts, lastErr)
}

// send performs one POST to the notification service.
func (m *Mailer) send(ctx context.Context, body []byte) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/send-email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var envelope sendEmailError
	if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&envelope); decodeErr == nil && envelope.Details != "" {
		return fmt.Errorf("notification service returned %d: %s", resp.StatusCode, envelope.Details)
	}
	return fmt.Errorf("notification service returned %d", resp.StatusCode)
}

// withJitter spreads d by ±jitterFraction.
func withJitter(d time.Duration) time.Duration {
	spread := float64(d) * jitterFraction
	return d + time.Duration((rand.Float64()*2-1)*spread)
}
