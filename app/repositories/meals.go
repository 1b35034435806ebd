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

// MealRepository is the meal listing store.
type MealRepository interface {
	Insert(ctx context.Context, m *models.Meal) (string, error)
	FindByID(ctx context.Context, id string) (*models.Meal, error)
	// List sorts by price (ascending unless sortDesc) and optionally
	// filters by chefId.
	List(ctx context.Context, sortDesc bool, chefID string) ([]models.Meal, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type mongoMealRepository struct {
	col *mongo.Collection
}

func NewMealRepository(db *mongo.Database) MealRepository {
	return &mongoMealRepository{col: db.Collection(ColMeals)}
}

func (r *mongoMealRepository) Insert(ctx context.Context, m *models.Meal) (string, error) {
	res, err := r.col.InsertOne(ctx, m)
	if err != nil {
		return "", fmt.Errorf("meals: insert: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *mongoMealRepository) FindByID(ctx context.Context, id string) (*models.Meal, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var m models.Meal
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("meals: find %s: %w", id, err)
	}
	return &m, nil
}

func (r *mongoMealRepository) List(ctx context.Context, sortDesc bool, chefID string) ([]models.Meal, error) {
	order := 1
	if sortDesc {
		order = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: "price", Value: order}})

	filter := bson.M{}
	if chefID != "" {
		filter["chefId"] = chefID
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("meals: list: %w", err)
	}
	defer cur.Close(ctx)

	var meals []models.Meal
	if err := cur.All(ctx, &meals); err != nil {
		return nil, fmt.Errorf("meals: decode: %w", err)
	}
	return meals, nil
}

func (r *mongoMealRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrNotFound
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return 0, fmt.Errorf("meals: update: %w", err)
	}
	if res.MatchedCount == 0 {
		return 0, ErrNotFound
	}
	return res.ModifiedCount, nil
}

func (r *mongoMealRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("meals: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return 0, ErrNotFound
	}
	return res.DeletedCount, nil
}

func (r *mongoMealRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("meals: count: %w", err)
	}
	return n, nil
}
