package domain

import (
	"errors"
	"time"
)

var (
	ErrBatchNotFound      = errors.New("delivery batch not found")
	ErrUnknownDestination = errors.New("no per-pound rate configured for destination")
	ErrEmptyBatch         = errors.New("delivery batch requires at least one shipment")
)

// DeliveryBatch is a priced group of shipments delivered together and billed
// as a unit. Created exactly once per successful aggregation, immutable after.
type DeliveryBatch struct {
	ID           string    `json:"id" bson:"_id"`
	OwnerID      string    `json:"owner_id" bson:"ownerId"`
	DeliveryDate time.Time `json:"delivery_date" bson:"deliveryDate"`
	TotalWeight  float64   `json:"total_weight" bson:"totalWeight"`
	// ServiceFee is the flat per-shipment fee multiplied by the shipment count.
	ServiceFee   float64   `json:"service_fee" bson:"serviceFee"`
	ShippingCost float64   `json:"shipping_cost" bson:"shippingCost"`
	TotalCost    float64   `json:"total_cost" bson:"totalCost"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// ShipmentDeliverySnapshot freezes a shipment's cost-relevant fields as billed
// at delivery time. Shipment rows may be edited later; the snapshot is what
// the customer actually paid for and never changes.
type ShipmentDeliverySnapshot struct {
	ID          string  `json:"id" bson:"_id"`
	BatchID     string  `json:"batch_id" bson:"batch_id"`
	ShipmentID  string  `json:"shipment_id" bson:"shipment_id"`
	Cost        float64 `json:"cost" bson:"cost"`
	Weight      float64 `json:"weight" bson:"weight"`
	Category    string  `json:"category" bson:"category"`
	Destination string  `json:"destination" bson:"destination"`
}
