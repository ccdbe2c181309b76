package handlers

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backoffice/internal/models"
	"backoffice/internal/rules"
)

/* =======================
   GET (ADMIN) – LIST
======================= */

func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(
			c.Query("page"),
			c.Query("limit"),
		)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		filter := bson.M{}

		if status := strings.TrimSpace(c.Query("status")); status != "" {
			if !rules.ValidStatus(models.Status(status)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
				return
			}
			filter["status"] = status
		}

		if payment := strings.TrimSpace(c.Query("paymentStatus")); payment != "" {
			filter["paymentStatus"] = payment
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["code"] = bson.M{"$regex": search, "$options": "i"}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		totalPages := int64(0)
		if total > 0 {
			totalPages = int64(math.Ceil(float64(total) / float64(limit)))
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": orders,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages,
			},
		})
	}
}

/* =======================
   GET (ADMIN) – SINGLE
======================= */

func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

/* =======================
   UPDATE STATUS
======================= */

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// UpdateOrderStatus moves an order one step through its lifecycle. The
// stored document is fetched fresh on every attempt and the transition is
// validated against that snapshot; a stale admin tab gets a 409 with both
// sides of the rejected transition.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		target := models.Status(strings.TrimSpace(req.Status))
		if !rules.ValidStatus(target) {
			respondWithError(c, http.StatusBadRequest, route, "unknown status")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		updated, err := rules.Transition(order, target, strings.TrimSpace(req.Note), actorFromContext(c), time.Now())
		if err != nil {
			var illegal *rules.IllegalTransitionError
			if errors.As(err, &illegal) {
				c.JSON(http.StatusConflict, gin.H{
					"error": "illegal status transition",
					"from":  illegal.From,
					"to":    illegal.To,
				})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "transition failed")
			return
		}

		update := bson.M{
			"$set": bson.M{
				"status":          updated.Status,
				"statusChangedAt": updated.StatusChangedAt,
			},
		}
		if n := len(updated.StatusNotes); n > len(order.StatusNotes) {
			update["$push"] = bson.M{"statusNotes": updated.StatusNotes[n-1]}
		}

		res, err := db.Collection("orders").UpdateOne(ctx, bson.M{"_id": orderID}, update)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		log.Printf("[%s] order %s: %s -> %s", route, updated.Code, order.Status, updated.Status)
		c.JSON(http.StatusOK, updated)
	}
}
