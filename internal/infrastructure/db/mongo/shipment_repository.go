package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pniceshipping/portal/internal/core/domain"
	"github.com/pniceshipping/portal/internal/core/ports"
)

const collectionShipments = "shipments"

type ShipmentRepository struct {
	col *mongo.Collection
}

func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	return &ShipmentRepository{col: db.Collection(collectionShipments)}
}

// shipmentDoc mirrors domain.Shipment with a native ObjectID so inserts get a
// database-generated identity.
type shipmentDoc struct {
	ID                primitive.ObjectID    `bson:"_id,omitempty"`
	TrackingNumber    string                `bson:"tracking_number"`
	TrackingKey       string                `bson:"tracking_key"`
	OwnerID           string                `bson:"owner_id"`
	RecipientName     string                `bson:"recipient_name"`
	RecipientEmail    string                `bson:"recipient_email"`
	RecipientPhone    string                `bson:"recipient_phone,omitempty"`
	Category          string                `bson:"category"`
	Weight            string                `bson:"weight,omitempty"`
	Destination       string                `bson:"destination"`
	Status            domain.ShipmentStatus `bson:"status"`
	EstimatedDelivery time.Time             `bson:"estimated_delivery"`
	CreatedAt         time.Time             `bson:"created_at"`
	StatusHistory     []domain.StatusEvent  `bson:"status_history"`
	Version           int64                 `bson:"version"`
}

func toDoc(s *domain.Shipment) shipmentDoc {
	return shipmentDoc{
		TrackingNumber:    s.TrackingNumber,
		TrackingKey:       s.TrackingKey,
		OwnerID:           s.OwnerID,
		RecipientName:     s.RecipientName,
		RecipientEmail:    s.RecipientEmail,
		RecipientPhone:    s.RecipientPhone,
		Category:          s.Category,
		Weight:            s.Weight,
		Destination:       s.Destination,
		Status:            s.Status,
		EstimatedDelivery: s.EstimatedDelivery,
		CreatedAt:         s.CreatedAt,
		StatusHistory:     s.StatusHistory,
		Version:           s.Version,
	}
}

func (d shipmentDoc) toDomain() *domain.Shipment {
	return &domain.Shipment{
		ID:                d.ID.Hex(),
		TrackingNumber:    d.TrackingNumber,
		TrackingKey:       d.TrackingKey,
		OwnerID:           d.OwnerID,
		RecipientName:     d.RecipientName,
		RecipientEmail:    d.RecipientEmail,
		RecipientPhone:    d.RecipientPhone,
		Category:          d.Category,
		Weight:            d.Weight,
		Destination:       d.Destination,
		Status:            d.Status,
		EstimatedDelivery: d.EstimatedDelivery,
		CreatedAt:         d.CreatedAt,
		StatusHistory:     d.StatusHistory,
		Version:           d.Version,
	}
}

// Create inserts a new shipment document and fills in the generated id.
func (r *ShipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toDoc(s))
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		s.ID = oid.Hex()
	}
	return nil
}

// FindByID retrieves a shipment by its hex object id.
func (r *ShipmentRepository) FindByID(ctx context.Context, id string) (*domain.Shipment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrShipmentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d shipmentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, err
	}
	return d.toDomain(), nil
}

// FindManyByIDs returns only the shipments whose ids exist; callers detect
// missing ones by comparing counts. Ids that are not valid hex are skipped
// for the same reason.
func (r *ShipmentRepository) FindManyByIDs(ctx context.Context, ids []string) ([]*domain.Shipment, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domain.Shipment
	for cursor.Next(ctx) {
		var d shipmentDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d.toDomain())
	}
	return out, cursor.Err()
}

// FindByTrackingKey matches on the stored 20-character tracking key. When
// ownerID is non-empty, an additional owner filter is applied.
func (r *ShipmentRepository) FindByTrackingKey(ctx context.Context, key string, ownerID string) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"tracking_key": key}
	if ownerID != "" {
		filter["owner_id"] = ownerID
	}

	var d shipmentDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, err
	}
	return d.toDomain(), nil
}

// List returns a page of shipments matching filter and the total count.
func (r *ShipmentRepository) List(ctx context.Context, f ports.ListShipmentsFilter) ([]*domain.Shipment, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Destination != "" {
		filter["destination"] = f.Destination
	}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"tracking_key": domain.TrackingKey(f.Search)},
			bson.M{"recipient_name": bson.M{"$regex": f.Search, "$options": "i"}},
		}
	}
	created := bson.M{}
	if !f.DateFrom.IsZero() {
		created["$gte"] = f.DateFrom
	}
	if !f.DateTo.IsZero() {
		created["$lte"] = f.DateTo
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var out []*domain.Shipment
	for cursor.Next(ctx) {
		var d shipmentDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, 0, err
		}
		out = append(out, d.toDomain())
	}
	return out, total, cursor.Err()
}

// AppendStatus atomically applies one StatusWrite: the filter carries the
// expected version, so a concurrent writer that already bumped it makes this
// update match nothing instead of clobbering the ledger.
func (r *ShipmentRepository) AppendStatus(ctx context.Context, w ports.StatusWrite) error {
	oid, err := primitive.ObjectIDFromHex(w.ShipmentID)
	if err != nil {
		return domain.ErrShipmentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"status": w.Status}
	if !w.EstimatedDelivery.IsZero() {
		set["estimated_delivery"] = w.EstimatedDelivery
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"status_history": w.Event},
		"$inc":  bson.M{"version": 1},
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid, "version": w.ExpectedVersion}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish a vanished row from a lost version race.
		n, countErr := r.col.CountDocuments(ctx, bson.M{"_id": oid})
		if countErr == nil && n == 0 {
			return domain.ErrShipmentNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the shipments collection.
func (r *ShipmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tracking_key", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
