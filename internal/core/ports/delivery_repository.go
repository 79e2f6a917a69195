package ports

import (
	"context"

	"github.com/pniceshipping/portal/internal/core/domain"
)

// DeliveryWrite bundles everything one batch delivery persists: the batch
// row, each shipment's terminal status write, and the frozen cost snapshots.
// Implementations commit the whole set in a single transaction or none of it.
type DeliveryWrite struct {
	Batch     *domain.DeliveryBatch
	Statuses  []StatusWrite
	Snapshots []domain.ShipmentDeliverySnapshot
}

// DeliveryRepository persists delivery batches and their snapshots.
type DeliveryRepository interface {
	// CreateDelivery atomically applies the whole DeliveryWrite. Any failed
	// step (including a CAS miss on a shipment, surfaced as
	// domain.ErrConflict) aborts every other write.
	CreateDelivery(ctx context.Context, w DeliveryWrite) error
	FindBatchByID(ctx context.Context, id string) (*domain.DeliveryBatch, error)
	ListBatches(ctx context.Context, ownerID string) ([]*domain.DeliveryBatch, error)
	ListSnapshots(ctx context.Context, batchID string) ([]domain.ShipmentDeliverySnapshot, error)
}
