package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chefbazaar/backend/app/models"
)

// OrderRepository is the order store. Listings come back newest first.
type OrderRepository interface {
	Insert(ctx context.Context, o *models.Order) (string, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	SetOrderStatus(ctx context.Context, id, status string) (int64, error)
	SetPaymentStatus(ctx context.Context, id, status string) (int64, error)
	ListByUser(ctx context.Context, email string) ([]models.Order, error)
	ListByChef(ctx context.Context, chefID string) ([]models.Order, error)
	Count(ctx context.Context) (int64, error)
}

type mongoOrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{col: db.Collection(ColOrders)}
}

func (r *mongoOrderRepository) Insert(ctx context.Context, o *models.Order) (string, error) {
	res, err := r.col.InsertOne(ctx, o)
	if err != nil {
		return "", fmt.Errorf("orders: insert: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *mongoOrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var o models.Order
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("orders: find %s: %w", id, err)
	}
	return &o, nil
}

func (r *mongoOrderRepository) SetOrderStatus(ctx context.Context, id, status string) (int64, error) {
	return r.setField(ctx, id, "orderStatus", status)
}

func (r *mongoOrderRepository) SetPaymentStatus(ctx context.Context, id, status string) (int64, error) {
	return r.setField(ctx, id, "paymentStatus", status)
}

func (r *mongoOrderRepository) setField(ctx context.Context, id, field, value string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrNotFound
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return 0, fmt.Errorf("orders: set %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return 0, ErrNotFound
	}
	return res.ModifiedCount, nil
}

func (r *mongoOrderRepository) ListByUser(ctx context.Context, email string) ([]models.Order, error) {
	return r.list(ctx, bson.M{"userEmail": email})
}

func (r *mongoOrderRepository) ListByChef(ctx context.Context, chefID string) ([]models.Order, error) {
	return r.list(ctx, bson.M{"chefId": chefID})
}

func (r *mongoOrderRepository) list(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "orderTime", Value: -1}})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	defer cur.Close(ctx)

	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("orders: decode: %w", err)
	}
	return orders, nil
}

func (r *mongoOrderRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("orders: count: %w", err)
	}
	return n, nil
}
