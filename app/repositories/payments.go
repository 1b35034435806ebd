package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chefbazaar/backend/app/models"
)

// PaymentRepository stores immutable payment receipts.
type PaymentRepository interface {
	Insert(ctx context.Context, p *models.Payment) error
	FindByTransaction(ctx context.Context, transactionID string) (*models.Payment, error)
	ListByUser(ctx context.Context, email string) ([]models.Payment, error)
	// ListSince returns receipts written at or after t, oldest first.
	// The reconciliation sweep walks these to repair missed order updates.
	ListSince(ctx context.Context, t time.Time) ([]models.Payment, error)
	TotalAmount(ctx context.Context) (float64, error)
	Count(ctx context.Context) (int64, error)
}

type mongoPaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) PaymentRepository {
	return &mongoPaymentRepository{col: db.Collection(ColPayments)}
}

func (r *mongoPaymentRepository) Insert(ctx context.Context, p *models.Payment) error {
	_, err := r.col.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("payments: insert: %w", err)
	}
	return nil
}

func (r *mongoPaymentRepository) FindByTransaction(ctx context.Context, transactionID string) (*models.Payment, error) {
	var p models.Payment
	err := r.col.FindOne(ctx, bson.M{"transactionId": transactionID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("payments: find %s: %w", transactionID, err)
	}
	return &p, nil
}

func (r *mongoPaymentRepository) ListByUser(ctx context.Context, email string) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "paidAt", Value: -1}})

	cur, err := r.col.Find(ctx, bson.M{"userEmail": email}, opts)
	if err != nil {
		return nil, fmt.Errorf("payments: list: %w", err)
	}
	defer cur.Close(ctx)

	var payments []models.Payment
	if err := cur.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("payments: decode: %w", err)
	}
	return payments, nil
}

func (r *mongoPaymentRepository) ListSince(ctx context.Context, t time.Time) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "paidAt", Value: 1}})

	cur, err := r.col.Find(ctx, bson.M{"paidAt": bson.M{"$gte": t}}, opts)
	if err != nil {
		return nil, fmt.Errorf("payments: list since: %w", err)
	}
	defer cur.Close(ctx)

	var payments []models.Payment
	if err := cur.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("payments: decode: %w", err)
	}
	return payments, nil
}

func (r *mongoPaymentRepository) TotalAmount(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amountPaid"}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("payments: total: %w", err)
	}
	defer cur.Close(ctx)

	var out []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, fmt.Errorf("payments: total decode: %w", err)
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Total, nil
}

func (r *mongoPaymentRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("payments: count: %w", err)
	}
	return n, nil
}
