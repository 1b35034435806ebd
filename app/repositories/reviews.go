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

// ReviewRepository stores meal reviews.
type ReviewRepository interface {
	Insert(ctx context.Context, rev *models.Review) (string, error)
	ListByFood(ctx context.Context, foodID string) ([]models.Review, error)
}

// FavoriteRepository stores buyer bookmarks, one per (userEmail, foodId).
type FavoriteRepository interface {
	Insert(ctx context.Context, f *models.Favorite) (string, error)
	ListByUser(ctx context.Context, email string) ([]models.Favorite, error)
	Delete(ctx context.Context, id, email string) (int64, error)
}

type mongoReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) ReviewRepository {
	return &mongoReviewRepository{col: db.Collection(ColReviews)}
}

func (r *mongoReviewRepository) Insert(ctx context.Context, rev *models.Review) (string, error) {
	res, err := r.col.InsertOne(ctx, rev)
	if err != nil {
		return "", fmt.Errorf("reviews: insert: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *mongoReviewRepository) ListByFood(ctx context.Context, foodID string) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.col.Find(ctx, bson.M{"foodId": foodID}, opts)
	if err != nil {
		return nil, fmt.Errorf("reviews: list: %w", err)
	}
	defer cur.Close(ctx)

	var reviews []models.Review
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("reviews: decode: %w", err)
	}
	return reviews, nil
}

type mongoFavoriteRepository struct {
	col *mongo.Collection
}

func NewFavoriteRepository(db *mongo.Database) FavoriteRepository {
	return &mongoFavoriteRepository{col: db.Collection(ColFavorites)}
}

func (r *mongoFavoriteRepository) Insert(ctx context.Context, f *models.Favorite) (string, error) {
	// Duplicate bookmarks are rejected, enforced by the unique
	// (userEmail, foodId) index and re-checked here for memory parity.
	n, err := r.col.CountDocuments(ctx, bson.M{"userEmail": f.UserEmail, "foodId": f.FoodID})
	if err != nil {
		return "", fmt.Errorf("favorites: check: %w", err)
	}
	if n > 0 {
		return "", ErrDuplicate
	}

	res, err := r.col.InsertOne(ctx, f)
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrDuplicate
	}
	if err != nil {
		return "", fmt.Errorf("favorites: insert: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *mongoFavoriteRepository) ListByUser(ctx context.Context, email string) ([]models.Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "addedAt", Value: -1}})

	cur, err := r.col.Find(ctx, bson.M{"userEmail": email}, opts)
	if err != nil {
		return nil, fmt.Errorf("favorites: list: %w", err)
	}
	defer cur.Close(ctx)

	var favorites []models.Favorite
	if err := cur.All(ctx, &favorites); err != nil {
		return nil, fmt.Errorf("favorites: decode: %w", err)
	}
	return favorites, nil
}

func (r *mongoFavoriteRepository) Delete(ctx context.Context, id, email string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid, "userEmail": email})
	if err != nil {
		return 0, fmt.Errorf("favorites: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return 0, ErrNotFound
	}
	return res.DeletedCount, nil
}
