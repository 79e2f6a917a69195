package handler

import (
	"github.com/pniceshipping/portal/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// dateFormat renders date-only fields (estimated delivery, batch dates).
const dateFormat = "2006-01-02"

// --- Request / Response types ---

type createShipmentRequest struct {
	RecipientName  string `json:"recipient_name"  validate:"required"`
	RecipientEmail string `json:"recipient_email" validate:"required,email"`
	RecipientPhone string `json:"recipient_phone"`
	Category       string `json:"category"        validate:"required"`
	// Weight is a decimal string in pounds; optional until the parcel is
	// weighed at confirmation.
	Weight      string `json:"weight"      validate:"omitempty"`
	Destination string `json:"destination" validate:"required"`
}

type shipmentLinks struct {
	Self string `json:"self"`
}

type createShipmentResponse struct {
	ID                string        `json:"id"`
	TrackingNumber    string        `json:"tracking_number"`
	Status            string        `json:"status"`
	CreatedAt         string        `json:"created_at"`
	EstimatedDelivery string        `json:"estimated_delivery"`
	Links             shipmentLinks `json:"_links"`
}

type transitionRequest struct {
	Status   string `json:"status"   validate:"required"`
	Location string `json:"location"`
	// Policy optionally overrides the configured delivery-guarantee policy
	// for this transition.
	Policy string `json:"policy" validate:"omitempty,oneof=blocking best_effort"`
}

type transitionResponse struct {
	Event  domain.StatusEvent `json:"event"`
	Policy string             `json:"policy"`
}

// getShipmentResponse is the full shipment view. StatusHistory reuses the
// domain StatusEvent directly: its JSON shape is the wire contract.
type getShipmentResponse struct {
	ID                string               `json:"id"`
	TrackingNumber    string               `json:"tracking_number"`
	OwnerID           string               `json:"owner_id"`
	RecipientName     string               `json:"recipient_name"`
	RecipientEmail    string               `json:"recipient_email"`
	RecipientPhone    string               `json:"recipient_phone,omitempty"`
	Category          string               `json:"category"`
	Weight            string               `json:"weight,omitempty"`
	Destination       string               `json:"destination"`
	Status            string               `json:"status"`
	EstimatedDelivery string               `json:"estimated_delivery"`
	CreatedAt         string               `json:"created_at"`
	StatusHistory     []domain.StatusEvent `json:"status_history"`
	Links             shipmentLinks        `json:"_links"`
}

// shipmentSummaryResponse is the lightweight item used in list responses.
// It intentionally omits status_history to keep payloads small.
type shipmentSummaryResponse struct {
	ID                string        `json:"id"`
	TrackingNumber    string        `json:"tracking_number"`
	OwnerID           string        `json:"owner_id"`
	RecipientName     string        `json:"recipient_name"`
	Category          string        `json:"category"`
	Weight            string        `json:"weight,omitempty"`
	Destination       string        `json:"destination"`
	Status            string        `json:"status"`
	EstimatedDelivery string        `json:"estimated_delivery"`
	CreatedAt         string        `json:"created_at"`
	Links             shipmentLinks `json:"_links"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listShipmentsResponse struct {
	Data       []shipmentSummaryResponse `json:"data"`
	Pagination paginationResponse        `json:"pagination"`
}
