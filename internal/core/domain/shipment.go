package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ShipmentStatus is the lifecycle state of a shipment. The constant values are
// the exact wire strings persisted in the database and shown to customers;
// they double as the user-facing label and must never be rewritten.
type ShipmentStatus string

const (
	StatusPending   ShipmentStatus = "En attente⏳"
	StatusReceived  ShipmentStatus = "Recu📦"
	StatusInTransit ShipmentStatus = "En Transit✈️"
	StatusAvailable ShipmentStatus = "Disponible🟢"
	StatusDelivered ShipmentStatus = "Livré✅"
)

// allStatuses preserves lifecycle order: Pending → Received → InTransit →
// Available → Delivered.
var allStatuses = []ShipmentStatus{
	StatusPending,
	StatusReceived,
	StatusInTransit,
	StatusAvailable,
	StatusDelivered,
}

// ParseStatus maps a wire string back to its status, guarding against
// callers inventing states outside the closed set.
func ParseStatus(s string) (ShipmentStatus, error) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// IsValid reports whether s belongs to the closed status set.
func (s ShipmentStatus) IsValid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

var (
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrPartialNotFound  = errors.New("one or more shipments not found")
	ErrWeightRequired   = errors.New("shipment weight required")
	ErrValidation       = errors.New("validation failed")
	ErrUnknownStatus    = errors.New("unknown shipment status")
	ErrConflict         = errors.New("concurrent modification conflict")
	ErrForbidden        = errors.New("access forbidden")
)

// EventDateFormat is the wire format for StatusEvent timestamps, both in JSON
// and in persisted documents. Lexicographic order equals chronological order.
const EventDateFormat = "2006-01-02 15:04:05"

// StatusEvent is one immutable entry in a shipment's audit trail.
type StatusEvent struct {
	Date     string         `json:"date" bson:"date"`
	Status   ShipmentStatus `json:"status" bson:"status"`
	Location string         `json:"location" bson:"location"`
}

// NewStatusEvent stamps an event with the wire-formatted timestamp.
func NewStatusEvent(at time.Time, status ShipmentStatus, location string) StatusEvent {
	return StatusEvent{
		Date:     at.UTC().Format(EventDateFormat),
		Status:   status,
		Location: location,
	}
}

// At parses the event timestamp back into a time.Time.
func (e StatusEvent) At() (time.Time, error) {
	return time.Parse(EventDateFormat, e.Date)
}

// TrackingKeyLength is how many leading characters of a tracking number
// participate in lookups. Stored keys and queries are both truncated to this
// length; downstream consumers depend on the behavior.
const TrackingKeyLength = 20

// TrackingKey truncates a tracking number or query to its lookup key.
func TrackingKey(trackingNumber string) string {
	if len(trackingNumber) > TrackingKeyLength {
		return trackingNumber[:TrackingKeyLength]
	}
	return trackingNumber
}

// Shipment is the core aggregate root. Weight stays a decimal string because
// intake records shipments before they are weighed; it becomes mandatory at
// the Pending → Received confirmation.
type Shipment struct {
	ID                string         `json:"id" bson:"_id,omitempty"`
	TrackingNumber    string         `json:"tracking_number" bson:"tracking_number"`
	TrackingKey       string         `json:"-" bson:"tracking_key"`
	OwnerID           string         `json:"owner_id" bson:"owner_id"`
	RecipientName     string         `json:"recipient_name" bson:"recipient_name"`
	RecipientEmail    string         `json:"recipient_email" bson:"recipient_email"`
	RecipientPhone    string         `json:"recipient_phone,omitempty" bson:"recipient_phone,omitempty"`
	Category          string         `json:"category" bson:"category"`
	Weight            string         `json:"weight,omitempty" bson:"weight,omitempty"`
	Destination       string         `json:"destination" bson:"destination"`
	Status            ShipmentStatus `json:"status" bson:"status"`
	EstimatedDelivery time.Time      `json:"estimated_delivery" bson:"estimated_delivery"`
	CreatedAt         time.Time      `json:"created_at" bson:"created_at"`
	StatusHistory     []StatusEvent  `json:"status_history" bson:"status_history"`
	// Version guards read-modify-write cycles on the history ledger. Every
	// persisted append increments it; a stale writer misses its CAS filter.
	Version int64 `json:"-" bson:"version"`
}

// ParseWeight converts the decimal weight string into pounds. A missing,
// malformed, or non-positive weight returns ErrWeightRequired.
func ParseWeight(weight string) (float64, error) {
	w := strings.TrimSpace(weight)
	if w == "" {
		return 0, ErrWeightRequired
	}
	v, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot parse %q", ErrWeightRequired, weight)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: weight must be positive, got %s", ErrWeightRequired, weight)
	}
	return v, nil
}

// LastStatus returns the status of the newest ledger entry, or StatusPending
// for a shipment that has not left intake yet.
func (s *Shipment) LastStatus() ShipmentStatus {
	if len(s.StatusHistory) == 0 {
		return StatusPending
	}
	return s.StatusHistory[len(s.StatusHistory)-1].Status
}
