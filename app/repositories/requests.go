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

// RequestRepository stores role escalation requests.
type RequestRepository interface {
	Insert(ctx context.Context, req *models.AdminRequest) (string, error)
	FindByID(ctx context.Context, id string) (*models.AdminRequest, error)
	SetStatus(ctx context.Context, id, status string) (int64, error)
	List(ctx context.Context, page, limit int64) ([]models.AdminRequest, int64, error)
}

type mongoRequestRepository struct {
	col *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) RequestRepository {
	return &mongoRequestRepository{col: db.Collection(ColRequests)}
}

func (r *mongoRequestRepository) Insert(ctx context.Context, req *models.AdminRequest) (string, error) {
	res, err := r.col.InsertOne(ctx, req)
	if err != nil {
		return "", fmt.Errorf("requests: insert: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *mongoRequestRepository) FindByID(ctx context.Context, id string) (*models.AdminRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var req models.AdminRequest
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("requests: find %s: %w", id, err)
	}
	return &req, nil
}

func (r *mongoRequestRepository) SetStatus(ctx context.Context, id, status string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrNotFound
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"requestStatus": status}})
	if err != nil {
		return 0, fmt.Errorf("requests: set status: %w", err)
	}
	if res.MatchedCount == 0 {
		return 0, ErrNotFound
	}
	return res.ModifiedCount, nil
}

func (r *mongoRequestRepository) List(ctx context.Context, page, limit int64) ([]models.AdminRequest, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("requests: count: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "requestTime", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("requests: list: %w", err)
	}
	defer cur.Close(ctx)

	var requests []models.AdminRequest
	if err := cur.All(ctx, &requests); err != nil {
		return nil, 0, fmt.Errorf("requests: decode: %w", err)
	}
	return requests, total, nil
}
