package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pniceshipping/portal/internal/core/domain"
	"github.com/pniceshipping/portal/internal/core/ports"
	"github.com/pniceshipping/portal/internal/core/pricing"
)

// DeliveryService aggregates shipments into a billed batch: it prices each
// parcel, moves all of them to the terminal status, and persists the batch
// with its frozen per-shipment snapshots in one transaction.
type DeliveryService struct {
	shipments  ports.ShipmentRepository
	deliveries ports.DeliveryRepository
	rates      *pricing.Resolver
	// serviceFee is the flat per-shipment handling fee added on top of the
	// shipping cost.
	serviceFee float64
	logger     zerolog.Logger
}

func NewDeliveryService(
	shipments ports.ShipmentRepository,
	deliveries ports.DeliveryRepository,
	rates *pricing.Resolver,
	serviceFee float64,
	logger zerolog.Logger,
) *DeliveryService {
	return &DeliveryService{
		shipments:  shipments,
		deliveries: deliveries,
		rates:      rates,
		serviceFee: serviceFee,
		logger:     logger,
	}
}

// Deliver atomically delivers the given shipments as one priced batch.
// Either every shipment transitions and the batch exists, or nothing changed.
func (s *DeliveryService) Deliver(ctx context.Context, input ports.DeliverInput) (*ports.DeliverResult, error) {
	if len(input.ShipmentIDs) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	shipments, err := s.shipments.FindManyByIDs(ctx, input.ShipmentIDs)
	if err != nil {
		return nil, err
	}
	if len(shipments) != len(input.ShipmentIDs) {
		return nil, fmt.Errorf("%w: requested %d, found %d",
			domain.ErrPartialNotFound, len(input.ShipmentIDs), len(shipments))
	}

	ownerID := input.OwnerID
	if ownerID == "" {
		// Batches bill the shipments' owner even when staff trigger the
		// delivery.
		ownerID = shipments[0].OwnerID
	}
	// A batch is a billed unit for one client. Mixed-owner sets would land
	// one client's parcels on another client's invoice.
	for _, sh := range shipments {
		if sh.OwnerID != ownerID {
			return nil, fmt.Errorf("%w: shipment %s belongs to %s, batch owner is %s",
				domain.ErrValidation, sh.TrackingNumber, sh.OwnerID, ownerID)
		}
	}

	now := time.Now().UTC()
	batchID := uuid.NewString()

	var (
		totalWeight  float64
		shippingCost float64
		statuses     = make([]ports.StatusWrite, 0, len(shipments))
		snapshots    = make([]domain.ShipmentDeliverySnapshot, 0, len(shipments))
	)

	for _, sh := range shipments {
		weight, err := domain.ParseWeight(sh.Weight)
		if err != nil {
			return nil, fmt.Errorf("shipment %s: %w", sh.TrackingNumber, err)
		}
		cost, err := s.rates.Cost(sh.Category, sh.Destination, weight)
		if err != nil {
			return nil, fmt.Errorf("shipment %s: %w", sh.TrackingNumber, err)
		}

		totalWeight += weight
		shippingCost += cost

		statuses = append(statuses, ports.StatusWrite{
			ShipmentID:      sh.ID,
			Event:           domain.NewStatusEvent(now, domain.StatusDelivered, DeliveredLocation),
			Status:          domain.StatusDelivered,
			ExpectedVersion: sh.Version,
		})
		snapshots = append(snapshots, domain.ShipmentDeliverySnapshot{
			ID:          uuid.NewString(),
			BatchID:     batchID,
			ShipmentID:  sh.ID,
			Cost:        cost,
			Weight:      weight,
			Category:    sh.Category,
			Destination: sh.Destination,
		})
	}

	serviceFee := pricing.RoundCents(s.serviceFee * float64(len(shipments)))
	shippingCost = pricing.RoundCents(shippingCost)

	batch := &domain.DeliveryBatch{
		ID:           batchID,
		OwnerID:      ownerID,
		DeliveryDate: now,
		TotalWeight:  totalWeight,
		ServiceFee:   serviceFee,
		ShippingCost: shippingCost,
		TotalCost:    pricing.RoundCents(shippingCost + serviceFee),
		CreatedAt:    now,
	}

	if err := s.deliveries.CreateDelivery(ctx, ports.DeliveryWrite{
		Batch:     batch,
		Statuses:  statuses,
		Snapshots: snapshots,
	}); err != nil {
		s.logger.Error().Err(err).
			Str("owner_id", ownerID).
			Int("shipments", len(shipments)).
			Msg("batch delivery aborted")
		return nil, err
	}

	// Reflect the committed state on the returned shipments so callers can
	// fan out notifications without re-reading.
	for i, sh := range shipments {
		sh.Status = domain.StatusDelivered
		sh.StatusHistory = append(sh.StatusHistory, statuses[i].Event)
		sh.Version++
	}

	s.logger.Info().
		Str("batch_id", batch.ID).
		Str("owner_id", ownerID).
		Int("shipments", len(shipments)).
		Float64("total_cost", batch.TotalCost).
		Msg("delivery batch created")

	return &ports.DeliverResult{
		Batch:     batch,
		Snapshots: snapshots,
		Delivered: shipments,
	}, nil
}

// GetBatch returns a batch and its frozen snapshots. A non-empty ownerID
// restricts the lookup to that client's batches; a foreign batch id answers
// ErrBatchNotFound rather than confirming the batch exists.
func (s *DeliveryService) GetBatch(ctx context.Context, id, ownerID string) (*domain.DeliveryBatch, []domain.ShipmentDeliverySnapshot, error) {
	batch, err := s.deliveries.FindBatchByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if ownerID != "" && batch.OwnerID != ownerID {
		return nil, nil, domain.ErrBatchNotFound
	}
	snapshots, err := s.deliveries.ListSnapshots(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return batch, snapshots, nil
}

// ListBatches returns the billing history for an owner (all owners when empty).
func (s *DeliveryService) ListBatches(ctx context.Context, ownerID string) ([]*domain.DeliveryBatch, error) {
	return s.deliveries.ListBatches(ctx, ownerID)
}
