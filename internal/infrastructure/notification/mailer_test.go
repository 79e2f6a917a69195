package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pniceshipping/portal/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// recordingSleeper captures requested delays without waiting them out.
type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func newTestMailer(baseURL string, sleeper *recordingSleeper) *Mailer {
	return NewMailer(baseURL, discardLogger, WithSleep(sleeper.sleep))
}

// ---------------------------------------------------------------------------
// Success path
// ---------------------------------------------------------------------------

func TestMailer_Dispatch_SendsWireBody(t *testing.T) {
	var captured sendEmailRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := newTestMailer(srv.URL, &recordingSleeper{})
	err := m.Dispatch(context.Background(), domain.StatusReceived, "Marie Joseph", "marie@example.com", "PN-7A8B9C2D")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if path != "/send-email" {
		t.Errorf("posted to %q, want /send-email", path)
	}
	if captured.UserName != "Marie Joseph" || captured.UserEmail != "marie@example.com" {
		t.Errorf("recipient fields wrong: %+v", captured)
	}
	if captured.PackageID != "PN-7A8B9C2D" {
		t.Errorf("packageId = %q", captured.PackageID)
	}
	if captured.Status != "Recu📦" {
		t.Errorf("status = %q, want wire string", captured.Status)
	}
	if !strings.Contains(captured.Message, "PN-7A8B9C2D") {
		t.Errorf("message must embed the tracking number: %q", captured.Message)
	}
	if !strings.Contains(captured.HTMLMessage, "<strong>PN-7A8B9C2D</strong>") {
		t.Errorf("html message must embed the tracking number: %q", captured.HTMLMessage)
	}
	if strings.Contains(captured.Message, "{{") || strings.Contains(captured.HTMLMessage, "{{") {
		t.Error("placeholders must be fully substituted")
	}
}

func TestMailer_Dispatch_FirstAttemptSuccessDoesNotSleep(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sleeper := &recordingSleeper{}
	m := newTestMailer(srv.URL, sleeper)
	if err := m.Dispatch(context.Background(), domain.StatusInTransit, "Jean", "jean@example.com", "PN-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sleeper.delays) != 0 {
		t.Errorf("no backoff expected on first-attempt success, got %v", sleeper.delays)
	}
}

// ---------------------------------------------------------------------------
// Retry / backoff
// ---------------------------------------------------------------------------

func TestMailer_Dispatch_RetriesWithExponentialBackoff(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sleeper := &recordingSleeper{}
	m := newTestMailer(srv.URL, sleeper)
	err := m.Dispatch(context.Background(), domain.StatusAvailable, "Jean", "jean@example.com", "PN-2")
	if !errors.Is(err, domain.ErrNotificationDelivery) {
		t.Fatalf("expected ErrNotificationDelivery, got %v", err)
	}

	if got := attempts.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
	// One delay follows each failed attempt, the last one before the error
	// surfaces, so the full 1s/2s/4s sequence always runs.
	if len(sleeper.delays) != 3 {
		t.Fatalf("expected 3 backoff sleeps, got %d", len(sleeper.delays))
	}
	// Jitter spreads each base delay by at most ±20%.
	assertWithinJitter(t, sleeper.delays[0], time.Second)
	assertWithinJitter(t, sleeper.delays[1], 2*time.Second)
	assertWithinJitter(t, sleeper.delays[2], 4*time.Second)
}

func assertWithinJitter(t *testing.T, got, base time.Duration) {
	t.Helper()
	spread := time.Duration(float64(base) * jitterFraction)
	if got < base-spread || got > base+spread {
		t.Errorf("delay %v outside %v ±20%%", got, base)
	}
}

func TestMailer_Dispatch_RecoversMidRetry(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sleeper := &recordingSleeper{}
	m := newTestMailer(srv.URL, sleeper)
	if err := m.Dispatch(context.Background(), domain.StatusReceived, "Jean", "jean@example.com", "PN-3"); err != nil {
		t.Fatalf("third attempt succeeded, dispatch must too: %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestMailer_Dispatch_SurfacesServiceDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(sendEmailError{Details: "mailbox does not exist"})
	}))
	defer srv.Close()

	m := newTestMailer(srv.URL, &recordingSleeper{})
	err := m.Dispatch(context.Background(), domain.StatusReceived, "Jean", "jean@example.com", "PN-4")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "mailbox does not exist") {
		t.Errorf("service details missing from error: %v", err)
	}
}

func TestMailer_Dispatch_ContextCancelStopsRetries(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	m := NewMailer(srv.URL, discardLogger, WithSleep(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	err := m.Dispatch(ctx, domain.StatusReceived, "Jean", "jean@example.com", "PN-5")
	if !errors.Is(err, domain.ErrNotificationDelivery) {
		t.Fatalf("expected ErrNotificationDelivery, got %v", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("cancellation must stop further attempts, got %d", got)
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func TestMailer_Dispatch_InvalidEmailFailsFast(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := newTestMailer(srv.URL, &recordingSleeper{})
	err := m.Dispatch(context.Background(), domain.StatusReceived, "Jean", "not-an-email", "PN-6")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if hits.Load() != 0 {
		t.Error("validation failure must not reach the network")
	}
}

func TestMailer_Dispatch_MissingNameFailsFast(t *testing.T) {
	m := newTestMailer("http://127.0.0.1:0", &recordingSleeper{})
	err := m.Dispatch(context.Background(), domain.StatusReceived, "", "jean@example.com", "PN-7")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

func TestRenderBodies_KnownStatuses(t *testing.T) {
	for status := range statusTemplates {
		text, html := renderBodies(status, "PN-XYZ")
		if !strings.Contains(text, "PN-XYZ") || !strings.Contains(html, "PN-XYZ") {
			t.Errorf("status %q: tracking number missing", status)
		}
		if !strings.Contains(text, string(status)) {
			t.Errorf("status %q: wire status missing from text body", status)
		}
	}
}

func TestRenderBodies_UnknownStatusFallsBack(t *testing.T) {
	text, _ := renderBodies(domain.StatusPending, "PN-ABC")
	if !strings.Contains(text, "PN-ABC") {
		t.Errorf("generic template must still embed the tracking number: %q", text)
	}
	if strings.Contains(text, "{{") {
		t.Error("generic template placeholders must be substituted")
	}
}
