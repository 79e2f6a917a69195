package handler

import (
	"github.com/pniceshipping/portal/internal/core/domain"
)

type createDeliveryRequest struct {
	ShipmentIDs []string `json:"shipment_ids" validate:"required,min=1,dive,required"`
}

type snapshotResponse struct {
	ID          string  `json:"id"`
	ShipmentID  string  `json:"shipment_id"`
	Cost        float64 `json:"cost"`
	Weight      float64 `json:"weight"`
	Category    string  `json:"category"`
	Destination string  `json:"destination"`
}

// batchResponse reuses the domain batch directly: its JSON tags are the
// billing wire contract.
type batchResponse struct {
	Batch     *domain.DeliveryBatch `json:"batch"`
	Shipments []snapshotResponse    `json:"shipments"`
}

type listBatchesResponse struct {
	Data []*domain.DeliveryBatch `json:"data"`
}
