package database

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"freight-dispatch-api-server/internal/auth"
	"freight-dispatch-api-server/internal/models"
	"freight-dispatch-api-server/internal/state"
)

// SeedCoordinator creates the default coordinator account if no user with
// its email exists yet. Every other account is created through the API.
func SeedCoordinator(db *mongo.Database) error {
	users := db.Collection("users")
	coordinatorEmail := "coordinator@example.com"

	count, err := users.CountDocuments(context.Background(), bson.M{"email": coordinatorEmail})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("Coordinator already exists. Seeding skipped.")
		return nil
	}

	log.Println("Coordinator not found. Seeding...")
	hashedPassword, err := auth.HashPassword("coordinatorpassword")
	if err != nil {
		return err
	}

	coordinator := models.User{
		Email:    coordinatorEmail,
		Name:     "Default Coordinator",
		Password: hashedPassword,
		Role:     state.RoleCoordinator,
		ActorID:  "coordinator-system",
		Status:   "active",
	}
	if _, err := users.InsertOne(context.Background(), coordinator); err != nil {
		return err
	}

	log.Println("Coordinator seeded successfully.")
	return nil
}
