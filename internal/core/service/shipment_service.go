package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pniceshipping/portal/internal/core/domain"
	"github.com/pniceshipping/portal/internal/core/ports"
)

const (
	// estimatedDeliveryDays is re-applied on every non-terminal transition.
	estimatedDeliveryDays = 7
	// casRetries bounds how many times a transition re-reads and replays
	// after losing a version race to a concurrent writer.
	casRetries = 2
)

// DeliveredLocation is the fixed ledger location for the terminal status,
// written by the batch delivery flow.
const DeliveredLocation = "picked up at origin facility"

// NotificationPolicy decides, per status, whether a transition blocks on
// notification delivery or commits and sends best-effort. Making this an
// explicit table replaces the call-site-dependent behavior the portal grew
// organically.
type NotificationPolicy struct {
	// Blocking marks statuses whose transitions refuse to stand unless the
	// customer was notified.
	Blocking map[domain.ShipmentStatus]bool
	// NotifyBeforeCommit sends the blocking notification before the row is
	// written, so no status change exists the customer was never told about.
	NotifyBeforeCommit bool
}

// PolicyFor resolves the dispatch policy for a status.
func (p NotificationPolicy) PolicyFor(status domain.ShipmentStatus) domain.DispatchPolicy {
	if p.Blocking[status] {
		return domain.PolicyBlocking
	}
	return domain.PolicyBestEffort
}

// ShipmentService owns the shipment lifecycle: intake, the status state
// machine with its append-only audit ledger, and tracking lookups.
type ShipmentService struct {
	repo     ports.ShipmentRepository
	notifier ports.Notifier
	queue    ports.NotificationQueue
	policy   NotificationPolicy
	logger   zerolog.Logger
}

func NewShipmentService(
	repo ports.ShipmentRepository,
	notifier ports.Notifier,
	queue ports.NotificationQueue,
	policy NotificationPolicy,
	logger zerolog.Logger,
) *ShipmentService {
	return &ShipmentService{
		repo:     repo,
		notifier: notifier,
		queue:    queue,
		policy:   policy,
		logger:   logger,
	}
}

// CreateShipment registers a parcel at intake. The weight may be empty; it is
// demanded later, at the Pending → Received confirmation.
func (s *ShipmentService) CreateShipment(ctx context.Context, input ports.CreateShipmentInput) (*ports.ShipmentResult, error) {
	if input.Weight != "" {
		if _, err := domain.ParseWeight(input.Weight); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	}

	now := time.Now().UTC()
	trackingNumber := generateTrackingNumber()
	shipment := &domain.Shipment{
		TrackingNumber:    trackingNumber,
		TrackingKey:       domain.TrackingKey(trackingNumber),
		OwnerID:           input.OwnerID,
		RecipientName:     input.RecipientName,
		RecipientEmail:    input.RecipientEmail,
		RecipientPhone:    input.RecipientPhone,
		Category:          input.Category,
		Weight:            input.Weight,
		Destination:       input.Destination,
		Status:            domain.StatusPending,
		CreatedAt:         now,
		EstimatedDelivery: now.AddDate(0, 0, estimatedDeliveryDays),
		StatusHistory: []domain.StatusEvent{
			domain.NewStatusEvent(now, domain.StatusPending, defaultLocation(domain.StatusPending, input.Destination)),
		},
	}

	if err := s.repo.Create(ctx, shipment); err != nil {
		s.logger.Error().Err(err).Str("owner_id", input.OwnerID).Msg("failed to create shipment")
		return nil, err
	}

	s.logger.Info().
		Str("tracking_number", shipment.TrackingNumber).
		Str("owner_id", input.OwnerID).
		Str("destination", input.Destination).
		Msg("shipment created")

	return &ports.ShipmentResult{
		ID:                shipment.ID,
		TrackingNumber:    shipment.TrackingNumber,
		Status:            string(shipment.Status),
		CreatedAt:         shipment.CreatedAt,
		EstimatedDelivery: shipment.EstimatedDelivery,
	}, nil
}

// Transition advances a shipment to input.NewStatus, appending exactly one
// ledger entry. The machine does not enforce step adjacency (admins repair
// mis-scans by jumping states); it enforces existence, the weight
// precondition on confirmation, and ledger/ETA bookkeeping. The terminal
// status belongs to the batch delivery flow and is rejected here.
func (s *ShipmentService) Transition(ctx context.Context, input ports.TransitionInput) (*ports.TransitionResult, error) {
	if !input.NewStatus.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStatus, input.NewStatus)
	}
	if input.NewStatus == domain.StatusDelivered {
		return nil, fmt.Errorf("%w: delivered status is set by batch delivery", domain.ErrValidation)
	}

	policy := input.Policy
	if policy == "" {
		policy = s.policy.PolicyFor(input.NewStatus)
	}

	var (
		shipment *domain.Shipment
		event    domain.StatusEvent
		notified bool
		err      error
	)

	for attempt := 0; ; attempt++ {
		shipment, err = s.repo.FindByID(ctx, input.ShipmentID)
		if err != nil {
			return nil, err
		}

		// Confirmation needs the parcel weighed first; the caller is
		// expected to prompt for a weight and retry.
		if input.NewStatus == domain.StatusReceived && shipment.Status == domain.StatusPending {
			if _, err := domain.ParseWeight(shipment.Weight); err != nil {
				return nil, err
			}
		}

		location := input.Location
		if location == "" {
			location = defaultLocation(input.NewStatus, shipment.Destination)
		}

		now := time.Now().UTC()
		event = domain.NewStatusEvent(now, input.NewStatus, location)

		// Blocking policy, notify-before-commit: no status change may exist
		// that the customer was never told about.
		if policy == domain.PolicyBlocking && s.policy.NotifyBeforeCommit && !notified {
			if err := s.notifier.Dispatch(ctx, input.NewStatus, shipment.RecipientName, shipment.RecipientEmail, shipment.TrackingNumber); err != nil {
				s.logger.Error().Err(err).
					Str("tracking_number", shipment.TrackingNumber).
					Str("status", string(input.NewStatus)).
					Msg("blocking notification failed, transition aborted")
				return nil, err
			}
			notified = true
		}

		err = s.repo.AppendStatus(ctx, ports.StatusWrite{
			ShipmentID:        shipment.ID,
			Event:             event,
			Status:            input.NewStatus,
			EstimatedDelivery: now.AddDate(0, 0, estimatedDeliveryDays),
			ExpectedVersion:   shipment.Version,
		})
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) || attempt >= casRetries {
			return nil, err
		}
		s.logger.Warn().
			Str("shipment_id", shipment.ID).
			Int("attempt", attempt+1).
			Msg("ledger append lost version race, retrying")
	}

	s.logger.Info().
		Str("tracking_number", shipment.TrackingNumber).
		Str("status", string(input.NewStatus)).
		Str("policy", string(policy)).
		Msg("shipment transitioned")

	switch {
	case policy == domain.PolicyBlocking && !s.policy.NotifyBeforeCommit && !notified:
		if err := s.notifier.Dispatch(ctx, input.NewStatus, shipment.RecipientName, shipment.RecipientEmail, shipment.TrackingNumber); err != nil {
			// The status change is already committed; the caller learns the
			// customer was not told.
			s.logger.Error().Err(err).
				Str("tracking_number", shipment.TrackingNumber).
				Msg("post-commit blocking notification failed")
			return nil, err
		}
	case policy == domain.PolicyBestEffort:
		s.queue.Enqueue(ports.NotificationJob{
			Status:         input.NewStatus,
			RecipientName:  shipment.RecipientName,
			RecipientEmail: shipment.RecipientEmail,
			TrackingNumber: shipment.TrackingNumber,
		})
	}

	return &ports.TransitionResult{Event: event, Policy: policy}, nil
}

// GetShipment looks a shipment up by tracking number. Matching happens on the
// first 20 characters of both the stored number and the query.
func (s *ShipmentService) GetShipment(ctx context.Context, input ports.GetShipmentInput) (*domain.Shipment, error) {
	ownerFilter := ""
	if input.Role != domain.RoleAdmin {
		ownerFilter = input.OwnerID
	}
	return s.repo.FindByTrackingKey(ctx, domain.TrackingKey(input.TrackingNumber), ownerFilter)
}

// ListShipments returns a page of shipments, owner-scoped for customers.
func (s *ShipmentService) ListShipments(ctx context.Context, input ports.ListShipmentsInput) (*ports.ListShipmentsResult, error) {
	ownerFilter := input.OwnerID
	if input.Role == domain.RoleAdmin {
		ownerFilter = ""
	} else if ownerFilter == "" {
		return nil, domain.ErrForbidden
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	items, total, err := s.repo.List(ctx, ports.ListShipmentsFilter{
		OwnerID:     ownerFilter,
		Status:      input.Status,
		Destination: input.Destination,
		Search:      input.Search,
		DateFrom:    input.DateFrom,
		DateTo:      input.DateTo,
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return &ports.ListShipmentsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// generateTrackingNumber returns a tracking number in the format PN-XXXXXXXX.
func generateTrackingNumber() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("PN-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("PN-%08X", b)
}

// defaultLocation templates the ledger location for a status when the caller
// supplies none.
func defaultLocation(status domain.ShipmentStatus, destination string) string {
	switch status {
	case domain.StatusPending:
		return "En attente de réception au centre de tri"
	case domain.StatusReceived:
		return "Recu au centre de tri de Miami"
	case domain.StatusInTransit:
		return "En transit vers " + destination
	case domain.StatusAvailable:
		return "Package disponible at destination " + destination
	case domain.StatusDelivered:
		return DeliveredLocation
	default:
		return destination
	}
}
