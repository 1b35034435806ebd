package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chefbazaar/backend/app/models"
)

// UserRepository is the account store.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// SetRole writes role (and chefId when non-empty) and returns the
	// modified-document count the caller uses as a commit signal.
	SetRole(ctx context.Context, email, role, chefID string) (int64, error)
	SetStatus(ctx context.Context, email, status string) (int64, error)
	List(ctx context.Context, page, limit int64) ([]models.User, int64, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

type mongoUserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{col: db.Collection(ColUsers)}
}

func (r *mongoUserRepository) Create(ctx context.Context, u *models.User) error {
	_, err := r.col.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("users: insert: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: find %s: %w", email, err)
	}
	return &u, nil
}

func (r *mongoUserRepository) SetRole(ctx context.Context, email, role, chefID string) (int64, error) {
	set := bson.M{"role": role}
	if chefID != "" {
		set["chefId"] = chefID
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		return 0, fmt.Errorf("users: set role: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *mongoUserRepository) SetStatus(ctx context.Context, email, status string) (int64, error) {
	res, err := r.col.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return 0, fmt.Errorf("users: set status: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *mongoUserRepository) List(ctx context.Context, page, limit int64) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("users: count: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("users: decode: %w", err)
	}
	return users, total, nil
}

func (r *mongoUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"role": role})
	if err != nil {
		return 0, fmt.Errorf("users: count role %s: %w", role, err)
	}
	return n, nil
}
