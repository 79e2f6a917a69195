package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pniceshipping/portal/internal/api/metrics"
	"github.com/pniceshipping/portal/internal/core/domain"
	"github.com/pniceshipping/portal/internal/core/ports"
)

// ShipmentHandler handles HTTP requests for shipment operations.
type ShipmentHandler struct {
	service ports.ShipmentService
}

func NewShipmentHandler(service ports.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// Create handles POST /v1/shipments.
//
// @Summary      Register a new shipment at intake
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        body  body      createShipmentRequest  true  "Shipment details"
// @Success      201   {object}  createShipmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/shipments [post]
func (h *ShipmentHandler) Create(c echo.Context) error {
	var req createShipmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	_, ownerID, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	result, err := h.service.CreateShipment(c.Request().Context(), toCreateInput(req, ownerID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toCreateResponse(result))
}

// Transition handles POST /v1/shipments/:tracking_number/status.
//
// @Summary      Advance a shipment through its lifecycle
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        tracking_number  path      string             true  "Tracking number (e.g. PN-7A8B9C2D)"
// @Param        body             body      transitionRequest  true  "New status"
// @Success      200              {object}  transitionResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Failure      502              {object}  errorResponse
// @Router       /v1/shipments/{tracking_number}/status [post]
func (h *ShipmentHandler) Transition(c echo.Context) error {
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, ownerID, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return err
	}

	shipment, err := h.service.GetShipment(c.Request().Context(), ports.GetShipmentInput{
		TrackingNumber: c.Param("tracking_number"),
		Role:           role,
		OwnerID:        ownerID,
	})
	if err != nil {
		return err
	}

	result, err := h.service.Transition(c.Request().Context(), ports.TransitionInput{
		ShipmentID: shipment.ID,
		NewStatus:  status,
		Location:   req.Location,
		Policy:     domain.DispatchPolicy(req.Policy),
	})
	if err != nil {
		metrics.TransitionErrorsTotal.WithLabelValues(transitionErrorReason(err)).Inc()
		return err
	}

	metrics.TransitionsTotal.WithLabelValues(string(status)).Inc()
	if result.Policy == domain.PolicyBlocking {
		metrics.NotificationsSentTotal.WithLabelValues(string(status), string(result.Policy)).Inc()
	}

	return c.JSON(http.StatusOK, transitionResponse{
		Event:  result.Event,
		Policy: string(result.Policy),
	})
}

// Get handles GET /v1/shipments/:tracking_number. Lookup matches on the first
// 20 characters of the tracking number, so truncated queries resolve too.
//
// @Summary      Get a shipment by (possibly truncated) tracking number
// @Tags         shipments
// @Produce      json
// @Param        tracking_number  path      string  true  "Tracking number or its first 20 characters"
// @Success      200              {object}  getShipmentResponse
// @Failure      404              {object}  errorResponse
// @Router       /v1/shipments/{tracking_number} [get]
func (h *ShipmentHandler) Get(c echo.Context) error {
	role, ownerID, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	shipment, err := h.service.GetShipment(c.Request().Context(), ports.GetShipmentInput{
		TrackingNumber: c.Param("tracking_number"),
		Role:           role,
		OwnerID:        ownerID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toGetResponse(shipment))
}

// List handles GET /v1/shipments.
//
// @Summary      List shipments
// @Tags         shipments
// @Produce      json
// @Param        status       query     string  false  "Filter by wire status string"
// @Param        destination  query     string  false  "Filter by destination"
// @Param        search       query     string  false  "Tracking prefix or recipient name"
// @Param        page         query     int     false  "Page (1-based)"
// @Param        limit        query     int     false  "Page size (max 100)"
// @Success      200          {object}  listShipmentsResponse
// @Router       /v1/shipments [get]
func (h *ShipmentHandler) List(c echo.Context) error {
	role, ownerID, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	dateFrom := parseQueryDate(c.QueryParam("date_from"))
	dateTo := parseQueryDate(c.QueryParam("date_to"))

	result, err := h.service.ListShipments(c.Request().Context(), ports.ListShipmentsInput{
		Role:        role,
		OwnerID:     ownerID,
		Status:      c.QueryParam("status"),
		Destination: c.QueryParam("destination"),
		Search:      c.QueryParam("search"),
		DateFrom:    dateFrom,
		DateTo:      dateTo,
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toListResponse(result))
}

func parseQueryDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func transitionErrorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrShipmentNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrWeightRequired):
		return "weight_required"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrNotificationDelivery):
		return "notification"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnknownStatus):
		return "validation"
	default:
		return "internal"
	}
}
