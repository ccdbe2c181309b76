package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backoffice/internal/models"
	"backoffice/internal/rules"
)

// orderRefDoc is the projection decoded at the data-access boundary before
// it is handed to the deletion guard.
type orderRefDoc struct {
	Code   string        `bson:"code"`
	Status models.Status `bson:"status"`
	Total  float64       `bson:"total"`
}

func ordersReferencingProduct(ctx context.Context, db *mongo.Database, productID primitive.ObjectID) ([]rules.OrderRef, error) {
	return ordersReferencing(ctx, db, bson.M{"items.productId": productID})
}

func ordersReferencingAccount(ctx context.Context, db *mongo.Database, accountID primitive.ObjectID) ([]rules.OrderRef, error) {
	return ordersReferencing(ctx, db, bson.M{"accountId": accountID})
}

func ordersReferencing(ctx context.Context, db *mongo.Database, filter bson.M) ([]rules.OrderRef, error) {
	opts := options.Find().SetProjection(bson.M{"code": 1, "status": 1, "total": 1})

	cursor, err := db.Collection("orders").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []orderRefDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	refs := make([]rules.OrderRef, 0, len(docs))
	for _, doc := range docs {
		refs = append(refs, rules.OrderRef{Code: doc.Code, Status: doc.Status, Total: doc.Total})
	}
	return refs, nil
}

func parseConfirmQuery(c *gin.Context) (bool, bool) {
	raw := strings.TrimSpace(c.Query("confirm"))
	if raw == "" {
		return false, true
	}
	confirmed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return confirmed, true
}

// enforceDeletionGuard writes the rejection response when the decision does
// not permit deletion and reports whether the caller may proceed with the
// soft delete.
func enforceDeletionGuard(c *gin.Context, entity string, decision rules.DeletionDecision, confirmed bool) bool {
	switch decision.Outcome {
	case rules.DeletionBlocked:
		c.JSON(http.StatusConflict, gin.H{
			"error":          "active orders reference this " + entity,
			"blockingOrders": decision.Blocking,
		})
		return false
	case rules.DeletionAllowedWithHistory:
		if !confirmed {
			c.JSON(http.StatusConflict, gin.H{
				"error":                entity + " has historical orders; pass confirm=true to delete anyway",
				"requiresConfirmation": true,
				"historicalOrders":     decision.HistoricalCount,
			})
			return false
		}
	}
	return true
}
