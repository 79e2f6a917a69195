package ports

import (
	"context"
	"time"

	"github.com/pniceshipping/portal/internal/core/domain"
)

// CreateShipmentInput carries all data needed to register a new shipment at
// intake. Weight is optional here; it becomes mandatory at confirmation.
type CreateShipmentInput struct {
	OwnerID        string
	RecipientName  string
	RecipientEmail string
	RecipientPhone string
	Category       string
	Weight         string
	Destination    string
}

// ShipmentResult is returned by the service after registering a shipment.
type ShipmentResult struct {
	ID                string
	TrackingNumber    string
	Status            string
	CreatedAt         time.Time
	EstimatedDelivery time.Time
}

// TransitionInput requests one state-machine transition.
type TransitionInput struct {
	ShipmentID string
	NewStatus  domain.ShipmentStatus
	// Location is the free-text ledger location. Empty selects the
	// per-status default templated against the shipment's destination.
	Location string
	// Policy overrides the configured per-status delivery-guarantee policy
	// when non-empty.
	Policy domain.DispatchPolicy
}

// TransitionResult reports the appended ledger entry and the policy that
// governed its notification.
type TransitionResult struct {
	Event  domain.StatusEvent
	Policy domain.DispatchPolicy
}

// GetShipmentInput identifies a shipment by (possibly truncated) tracking
// number. Role/OwnerID enforce portal scoping: customers only see their own.
type GetShipmentInput struct {
	TrackingNumber string
	Role           string
	OwnerID        string
}

// ListShipmentsInput carries all parameters for the list endpoint.
type ListShipmentsInput struct {
	Role        string
	OwnerID     string
	Status      string
	Destination string
	Search      string
	DateFrom    time.Time
	DateTo      time.Time
	Page        int
	Limit       int
}

// ListShipmentsResult is returned by ListShipments.
type ListShipmentsResult struct {
	Items      []*domain.Shipment
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ShipmentService defines the shipment lifecycle use cases.
type ShipmentService interface {
	CreateShipment(ctx context.Context, input CreateShipmentInput) (*ShipmentResult, error)
	// Transition advances a shipment and appends exactly one StatusEvent.
	// Failure modes: domain.ErrShipmentNotFound, domain.ErrWeightRequired
	// (Pending → Received without a positive weight), domain.ErrConflict,
	// and domain.ErrNotificationDelivery under a blocking policy.
	Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error)
	GetShipment(ctx context.Context, input GetShipmentInput) (*domain.Shipment, error)
	ListShipments(ctx context.Context, input ListShipmentsInput) (*ListShipmentsResult, error)
}
