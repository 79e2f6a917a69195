package ports

import (
	"context"

	"github.com/pniceshipping/portal/internal/core/domain"
)

// DeliverInput requests a batch delivery of the given shipments.
type DeliverInput struct {
	ShipmentIDs []string
	OwnerID     string
}

// DeliverResult carries the created batch plus the delivered shipments so the
// caller can fan out one best-effort notification per parcel.
type DeliverResult struct {
	Batch     *domain.DeliveryBatch
	Snapshots []domain.ShipmentDeliverySnapshot
	Delivered []*domain.Shipment
}

// DeliveryService aggregates shipments into priced, auditable batches.
type DeliveryService interface {
	// Deliver atomically moves every referenced shipment to the terminal
	// state and persists the priced batch. Failure modes:
	// domain.ErrPartialNotFound (no side effects), domain.ErrWeightRequired,
	// domain.ErrUnknownDestination, domain.ErrConflict.
	Deliver(ctx context.Context, input DeliverInput) (*DeliverResult, error)
	// GetBatch returns a batch with its snapshots. A non-empty ownerID scopes
	// the lookup: a batch billed to someone else reads as not found.
	GetBatch(ctx context.Context, id, ownerID string) (*domain.DeliveryBatch, []domain.ShipmentDeliverySnapshot, error)
	ListBatches(ctx context.Context, ownerID string) ([]*domain.DeliveryBatch, error)
}
