package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	codeIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "code", Value: 1}},
		Options: options.Index().
			SetName("code_unique").
			SetUnique(true),
	}

	// The deletion guard looks orders up by the entities they reference.
	productRefIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "items.productId", Value: 1}},
		Options: options.Index().SetName("items_productId_index"),
	}
	accountRefIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "accountId", Value: 1}},
		Options: options.Index().SetName("accountId_index"),
	}

	log.Println("EnsureOrderIndexes: creating order indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{codeIndex, productRefIndex, accountRefIndex})
	if err != nil {
		log.Println("EnsureOrderIndexes: order index error:", err)
		return err
	}
	return nil
}

func EnsureAccountIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("accounts").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureAccountIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureAccountIndexes: email index error:", err)
		return err
	}
	return nil
}

func EnsureDiscountIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("discounts").Indexes()

	codeIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "code", Value: 1}},
		Options: options.Index().
			SetName("code_unique").
			SetUnique(true),
	}

	log.Println("EnsureDiscountIndexes: creating code_unique index")
	_, err := indexes.CreateOne(ctx, codeIndex)
	if err != nil {
		log.Println("EnsureDiscountIndexes: code index error:", err)
		return err
	}
	return nil
}
