package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pniceshipping/portal/internal/core/domain"
	"github.com/pniceshipping/portal/internal/core/ports"
)

const (
	collectionBatches   = "delivery_batches"
	collectionSnapshots = "shipment_snapshots"
)

// DeliveryRepository implements ports.DeliveryRepository using MongoDB
// multi-document transactions, so a batch delivery is all-or-nothing across
// the batch row, every shipment's terminal status, and the cost snapshots.
type DeliveryRepository struct {
	db *mongo.Database
}

func NewDeliveryRepository(db *mongo.Database) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// CreateDelivery applies the whole DeliveryWrite inside one transaction.
// A CAS miss on any shipment aborts everything with domain.ErrConflict.
func (r *DeliveryRepository) CreateDelivery(ctx context.Context, w ports.DeliveryWrite) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.db.Collection(collectionBatches).InsertOne(sc, w.Batch); err != nil {
			return nil, fmt.Errorf("insert batch: %w", err)
		}

		shipments := r.db.Collection(collectionShipments)
		for _, sw := range w.Statuses {
			oid, err := primitive.ObjectIDFromHex(sw.ShipmentID)
			if err != nil {
				return nil, domain.ErrShipmentNotFound
			}
			res, err := shipments.UpdateOne(sc,
				bson.M{"_id": oid, "version": sw.ExpectedVersion},
				bson.M{
					"$set":  bson.M{"status": sw.Status},
					"$push": bson.M{"status_history": sw.Event},
					"$inc":  bson.M{"version": 1},
				},
			)
			if err != nil {
				return nil, fmt.Errorf("deliver shipment %s: %w", sw.ShipmentID, err)
			}
			if res.MatchedCount == 0 {
				return nil, fmt.Errorf("deliver shipment %s: %w", sw.ShipmentID, domain.ErrConflict)
			}
		}

		if len(w.Snapshots) > 0 {
			docs := make([]interface{}, len(w.Snapshots))
			for i, snap := range w.Snapshots {
				docs[i] = snap
			}
			if _, err := r.db.Collection(collectionSnapshots).InsertMany(sc, docs); err != nil {
				return nil, fmt.Errorf("insert snapshots: %w", err)
			}
		}
		return nil, nil
	})
	return err
}

// FindBatchByID retrieves a delivery batch.
func (r *DeliveryRepository) FindBatchByID(ctx context.Context, id string) (*domain.DeliveryBatch, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var batch domain.DeliveryBatch
	err := r.db.Collection(collectionBatches).FindOne(ctx, bson.M{"_id": id}).Decode(&batch)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// ListBatches returns batches newest first, owner-scoped when ownerID is set.
func (r *DeliveryRepository) ListBatches(ctx context.Context, ownerID string) ([]*domain.DeliveryBatch, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if ownerID != "" {
		filter["ownerId"] = ownerID
	}

	opts := options.Find().SetSort(bson.D{{Key: "deliveryDate", Value: -1}})
	cursor, err := r.db.Collection(collectionBatches).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domain.DeliveryBatch
	for cursor.Next(ctx) {
		var batch domain.DeliveryBatch
		if err := cursor.Decode(&batch); err != nil {
			return nil, err
		}
		out = append(out, &batch)
	}
	return out, cursor.Err()
}

// ListSnapshots returns the frozen cost records for one batch.
func (r *DeliveryRepository) ListSnapshots(ctx context.Context, batchID string) ([]domain.ShipmentDeliverySnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.db.Collection(collectionSnapshots).Find(ctx, bson.M{"batch_id": batchID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []domain.ShipmentDeliverySnapshot
	for cursor.Next(ctx) {
		var snap domain.ShipmentDeliverySnapshot
		if err := cursor.Decode(&snap); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, cursor.Err()
}

// EnsureIndexes creates indexes for the batch and snapshot collections.
func (r *DeliveryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(collectionBatches).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "deliveryDate", Value: -1}},
	})
	if err != nil {
		return err
	}
	_, err = r.db.Collection(collectionSnapshots).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "batch_id", Value: 1}},
	})
	return err
}
