package handler

import (
	"time"

	"github.com/pniceshipping/portal/internal/core/domain"
	"github.com/pniceshipping/portal/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createShipmentRequest, ownerID string) ports.CreateShipmentInput {
	return ports.CreateShipmentInput{
		OwnerID:        ownerID,
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		RecipientPhone: req.RecipientPhone,
		Category:       req.Category,
		Weight:         req.Weight,
		Destination:    req.Destination,
	}
}

// --- Service result → HTTP response ---

func toCreateResponse(r *ports.ShipmentResult) createShipmentResponse {
	return createShipmentResponse{
		ID:                r.ID,
		TrackingNumber:    r.TrackingNumber,
		Status:            r.Status,
		CreatedAt:         r.CreatedAt.UTC().Format(time.RFC3339),
		EstimatedDelivery: r.EstimatedDelivery.UTC().Format(dateFormat),
		Links:             shipmentLinks{Self: "/v1/shipments/" + r.TrackingNumber},
	}
}

func toGetResponse(s *domain.Shipment) getShipmentResponse {
	return getShipmentResponse{
		ID:                s.ID,
		TrackingNumber:    s.TrackingNumber,
		OwnerID:           s.OwnerID,
		RecipientName:     s.RecipientName,
		RecipientEmail:    s.RecipientEmail,
		RecipientPhone:    s.RecipientPhone,
		Category:          s.Category,
		Weight:            s.Weight,
		Destination:       s.Destination,
		Status:            string(s.Status),
		EstimatedDelivery: s.EstimatedDelivery.UTC().Format(dateFormat),
		CreatedAt:         s.CreatedAt.UTC().Format(time.RFC3339),
		StatusHistory:     s.StatusHistory,
		Links:             shipmentLinks{Self: "/v1/shipments/" + s.TrackingNumber},
	}
}

func toListResponse(r *ports.ListShipmentsResult) listShipmentsResponse {
	items := make([]shipmentSummaryResponse, len(r.Items))
	for i, s := range r.Items {
		items[i] = toSummaryResponse(s)
	}
	return listShipmentsResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}

func toSummaryResponse(s *domain.Shipment) shipmentSummaryResponse {
	return shipmentSummaryResponse{
		ID:                s.ID,
		TrackingNumber:    s.TrackingNumber,
		OwnerID:           s.OwnerID,
		RecipientName:     s.RecipientName,
		Category:          s.Category,
		Weight:            s.Weight,
		Destination:       s.Destination,
		Status:            string(s.Status),
		EstimatedDelivery: s.EstimatedDelivery.UTC().Format(dateFormat),
		CreatedAt:         s.CreatedAt.UTC().Format(time.RFC3339),
		Links:             shipmentLinks{Self: "/v1/shipments/" + s.TrackingNumber},
	}
}
