package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pniceshipping/portal/internal/api/metrics"
	"github.com/pniceshipping/portal/internal/core/domain"
	"github.com/pniceshipping/portal/internal/core/ports"
)

// DeliveryHandler handles HTTP requests for batch deliveries.
type DeliveryHandler struct {
	service ports.DeliveryService
	queue   ports.NotificationQueue
}

func NewDeliveryHandler(service ports.DeliveryService, queue ports.NotificationQueue) *DeliveryHandler {
	return &DeliveryHandler{service: service, queue: queue}
}

// Create handles POST /v1/deliveries.
//
// @Summary      Deliver a batch of shipments and compute the invoice
// @Tags         deliveries
// @Accept       json
// @Produce      json
// @Param        body  body      createDeliveryRequest  true  "Shipment ids to deliver together"
// @Success      201   {object}  batchResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/deliveries [post]
func (h *DeliveryHandler) Create(c echo.Context) error {
	var req createDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Deliver(c.Request().Context(), ports.DeliverInput{
		ShipmentIDs: req.ShipmentIDs,
	})
	if err != nil {
		return err
	}

	metrics.BatchesCreatedTotal.Inc()
	metrics.BatchShipments.Observe(float64(len(result.Delivered)))
	metrics.BatchTotalCost.Observe(result.Batch.TotalCost)

	// Pickup confirmations are best-effort: the batch is already committed,
	// a failed email never rolls it back.
	jobs := make([]ports.NotificationJob, 0, len(result.Delivered))
	for _, s := range result.Delivered {
		jobs = append(jobs, ports.NotificationJob{
			Status:         domain.StatusDelivered,
			RecipientName:  s.RecipientName,
			RecipientEmail: s.RecipientEmail,
			TrackingNumber: s.TrackingNumber,
		})
	}
	h.queue.EnqueueBatch(jobs)

	return c.JSON(http.StatusCreated, toBatchResponse(result.Batch, result.Snapshots))
}

// Get handles GET /v1/deliveries/:id. Clients can only read batches billed
// to them; a foreign batch id answers 404.
//
// @Summary      Get a delivery batch with its billed shipment snapshots
// @Tags         deliveries
// @Produce      json
// @Param        id   path      string  true  "Batch id"
// @Success      200  {object}  batchResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/deliveries/{id} [get]
func (h *DeliveryHandler) Get(c echo.Context) error {
	role, ownerID, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	scope := ownerID
	if role == domain.RoleAdmin {
		scope = ""
	}

	batch, snapshots, err := h.service.GetBatch(c.Request().Context(), c.Param("id"), scope)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toBatchResponse(batch, snapshots))
}

// List handles GET /v1/deliveries. Clients see only their own batches; admins
// see everything.
//
// @Summary      List delivery batches
// @Tags         deliveries
// @Produce      json
// @Success      200  {object}  listBatchesResponse
// @Router       /v1/deliveries [get]
func (h *DeliveryHandler) List(c echo.Context) error {
	role, ownerID, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	scope := ownerID
	if role == domain.RoleAdmin {
		scope = ""
	}

	batches, err := h.service.ListBatches(c.Request().Context(), scope)
	if err != nil {
		return err
	}

	if batches == nil {
		batches = []*domain.DeliveryBatch{}
	}
	return c.JSON(http.StatusOK, listBatchesResponse{Data: batches})
}

func toBatchResponse(batch *domain.DeliveryBatch, snapshots []domain.ShipmentDeliverySnapshot) batchResponse {
	items := make([]snapshotResponse, len(snapshots))
	for i, s := range snapshots {
		items[i] = snapshotResponse{
			ID:          s.ID,
			ShipmentID:  s.ShipmentID,
			Cost:        s.Cost,
			Weight:      s.Weight,
			Category:    s.Category,
			Destination: s.Destination,
		}
	}
	return batchResponse{Batch: batch, Shipments: items}
}
