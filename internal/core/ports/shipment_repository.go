package ports

import (
	"context"
	"time"

	"github.com/pniceshipping/portal/internal/core/domain"
)

// ListShipmentsFilter carries all query parameters for listing shipments.
// OwnerID scoping is enforced by the service layer (customers only see their
// own parcels; the admin console passes an empty owner).
type ListShipmentsFilter struct {
	OwnerID     string // empty = no filter (admin); non-empty = scoped to owner
	Status      string // optional: filter by exact wire status string
	Destination string // optional: filter by destination
	Search      string // optional: tracking-key prefix or recipient name match
	DateFrom    time.Time
	DateTo      time.Time
	Page        int // 1-based
	Limit       int // capped at 100 by the service
}

// StatusWrite is one shipment's pending ledger mutation: the appended event,
// the new head status, and the expected version for the CAS filter.
type StatusWrite struct {
	ShipmentID string
	Event      domain.StatusEvent
	Status     domain.ShipmentStatus
	// EstimatedDelivery is written alongside the status when non-zero.
	// Terminal (delivered) writes leave it untouched.
	EstimatedDelivery time.Time
	// ExpectedVersion is the version the caller read. The write only lands if
	// the row still carries it; a miss means a concurrent writer won.
	ExpectedVersion int64
}

// ShipmentRepository defines persistence operations for shipments.
type ShipmentRepository interface {
	Create(ctx context.Context, s *domain.Shipment) error
	FindByID(ctx context.Context, id string) (*domain.Shipment, error)
	// FindManyByIDs returns the shipments it finds; callers compare counts to
	// detect partially missing sets.
	FindManyByIDs(ctx context.Context, ids []string) ([]*domain.Shipment, error)
	// FindByTrackingKey matches on the truncated tracking key (first 20
	// characters of the stored tracking number).
	FindByTrackingKey(ctx context.Context, key string, ownerID string) (*domain.Shipment, error)
	List(ctx context.Context, filter ListShipmentsFilter) ([]*domain.Shipment, int64, error)
	// AppendStatus applies a StatusWrite atomically: sets status, pushes the
	// event onto status_history, bumps version. Returns domain.ErrConflict
	// when the ExpectedVersion no longer matches, domain.ErrShipmentNotFound
	// when the id does not exist.
	AppendStatus(ctx context.Context, w StatusWrite) error
}
