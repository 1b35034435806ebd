package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/chefbazaar/backend/app/models"
	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/config"
	"github.com/chefbazaar/backend/pkg/database"
)

// chefbazaar db:indexes — create the indexes the API relies on.
var indexesCmd = &cobra.Command{
	Use:   "db:indexes",
	Short: "Create MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *mongo.Database) error {
			unique := options.Index().SetUnique(true)

			specs := map[string][]mongo.IndexModel{
				repositories.ColUsers: {
					{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
					{Keys: bson.D{{Key: "role", Value: 1}}},
				},
				repositories.ColPayments: {
					{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: unique},
					{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "paidAt", Value: -1}}},
					{Keys: bson.D{{Key: "paidAt", Value: 1}}},
				},
				repositories.ColFavorites: {
					{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "foodId", Value: 1}}, Options: unique},
				},
				repositories.ColOrders: {
					{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "orderTime", Value: -1}}},
					{Keys: bson.D{{Key: "chefId", Value: 1}, {Key: "orderTime", Value: -1}}},
				},
				repositories.ColMeals: {
					{Keys: bson.D{{Key: "chefId", Value: 1}}},
					{Keys: bson.D{{Key: "price", Value: 1}}},
				},
				repositories.ColReviews: {
					{Keys: bson.D{{Key: "foodId", Value: 1}, {Key: "createdAt", Value: -1}}},
				},
			}

			for col, ims := range specs {
				if _, err := db.Collection(col).Indexes().CreateMany(ctx, ims); err != nil {
					return fmt.Errorf("indexes for %s: %w", col, err)
				}
				fmt.Printf("indexed %s\n", col)
			}
			return nil
		})
	},
}

// chefbazaar db:seed — create the first admin account.
var seedCmd = &cobra.Command{
	Use:   "db:seed",
	Short: "Seed the first admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := config.Get("SEED_ADMIN_EMAIL", "admin@localchefbazaar.com")
		password := config.Get("SEED_ADMIN_PASSWORD", "")
		if password == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be set")
		}

		return withDB(func(ctx context.Context, db *mongo.Database) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}

			users := repositories.NewUserRepository(db)
			err = users.Create(ctx, &models.User{
				UID:          "local:" + email,
				Email:        email,
				DisplayName:  "Administrator",
				Role:         models.RoleAdmin,
				Status:       models.StatusActive,
				PasswordHash: string(hash),
				CreatedAt:    time.Now().UTC(),
			})
			if err == repositories.ErrDuplicate {
				fmt.Println("admin already exists, nothing to do")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("admin %s created\n", email)
			return nil
		})
	},
}

func withDB(fn func(context.Context, *mongo.Database) error) error {
	if err := config.Load(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := database.Connect(ctx)
	if err != nil {
		return err
	}
	defer database.Disconnect(client)

	return fn(ctx, client.Database(config.MongoDatabase()))
}
