package handlers

import (
	"context"
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
   REQUEST / RESPONSE MODELS
======================= */

type discountCreateRequest struct {
	Code          string    `json:"code" binding:"required"`
	Description   string    `json:"description"`
	Type          string    `json:"type" binding:"required"`
	Value         float64   `json:"value" binding:"required"`
	MinOrderValue float64   `json:"minOrderValue"`
	StartsAt      time.Time `json:"startsAt" binding:"required"`
	EndsAt        time.Time `json:"endsAt" binding:"required"`
}

type discountUpdateRequest struct {
	Description   *string    `json:"description"`
	Type          *string    `json:"type"`
	Value         *float64   `json:"value"`
	MinOrderValue *float64   `json:"minOrderValue"`
	StartsAt      *time.Time `json:"startsAt"`
	EndsAt        *time.Time `json:"endsAt"`
}

// discountResponse decorates the stored document with its computed state so
// the dashboard does not re-implement the timeline rules.
type discountResponse struct {
	models.Discount
	State rules.DiscountState `json:"state"`
}

func decorateDiscount(d models.Discount, now time.Time) discountResponse {
	return discountResponse{Discount: d, State: rules.EvaluateDiscountStatus(d, now)}
}

/* =======================
   GET (ADMIN) – LIST
======================= */

func GetAllDiscounts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(
			c.Query("page"),
			c.Query("limit"),
		)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		filter := bson.M{
			"isDeleted": bson.M{"$ne": true},
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = []bson.M{
				{"code": bson.M{"$regex": search, "$options": "i"}},
				{"description": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("discounts").CountDocuments(ctx, filter)
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

		cursor, err := db.Collection("discounts").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var discounts []models.Discount
		if err := cursor.All(ctx, &discounts); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		now := time.Now()
		data := make([]discountResponse, 0, len(discounts))
		for _, d := range discounts {
			data = append(data, decorateDiscount(d, now))
		}

		c.JSON(http.StatusOK, gin.H{
			"data": data,
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
   CREATE
======================= */

func CreateDiscount(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/discounts"
		defer handlePanic(c, route)

		var req discountCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		discount := models.Discount{
			Code:          rules.NormalizeDiscountCode(req.Code),
			Description:   strings.TrimSpace(req.Description),
			Type:          models.DiscountType(req.Type),
			Value:         req.Value,
			MinOrderValue: req.MinOrderValue,
			StartsAt:      req.StartsAt,
			EndsAt:        req.EndsAt,
			CreatedAt:     time.Now(),
		}

		if err := rules.ValidateDiscount(discount); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("discounts").InsertOne(ctx, discount)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "code already exists"})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		discount.ID = res.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, decorateDiscount(discount, time.Now()))
	}
}

/* =======================
   UPDATE
======================= */

// UpdateDiscount edits everything except the code itself; a code is an
// identity customers may already hold, so changing it means creating a new
// discount.
func UpdateDiscount(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/discounts/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req discountUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Discount
		err = db.Collection("discounts").FindOne(
			ctx,
			bson.M{
				"_id":       id,
				"isDeleted": bson.M{"$ne": true},
			},
		).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "discount not found"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		updated := existing
		if req.Description != nil {
			updated.Description = strings.TrimSpace(*req.Description)
		}
		if req.Type != nil {
			updated.Type = models.DiscountType(*req.Type)
		}
		if req.Value != nil {
			updated.Value = *req.Value
		}
		if req.MinOrderValue != nil {
			updated.MinOrderValue = *req.MinOrderValue
		}
		if req.StartsAt != nil {
			updated.StartsAt = *req.StartsAt
		}
		if req.EndsAt != nil {
			updated.EndsAt = *req.EndsAt
		}

		if err := rules.ValidateDiscount(updated); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := db.Collection("discounts").UpdateOne(
			ctx,
			bson.M{
				"_id":       id,
				"isDeleted": bson.M{"$ne": true},
			},
			bson.M{"$set": bson.M{
				"description":   updated.Description,
				"type":          updated.Type,
				"value":         updated.Value,
				"minOrderValue": updated.MinOrderValue,
				"startsAt":      updated.StartsAt,
				"endsAt":        updated.EndsAt,
			}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if result.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "discount not found"})
			return
		}

		c.JSON(http.StatusOK, decorateDiscount(updated, time.Now()))
	}
}

/* =======================
   DELETE (SOFT)
======================= */

// DeleteDiscount soft-deletes, which the evaluator reports as Disabled from
// the next lookup on. Orders that already redeemed the code keep their
// recorded discount amount.
func DeleteDiscount(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/discounts/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		res, err := db.Collection("discounts").UpdateOne(
			ctx,
			bson.M{
				"_id":       id,
				"isDeleted": bson.M{"$ne": true},
			},
			bson.M{"$set": bson.M{
				"isDeleted": true,
				"deletedAt": now,
			}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "discount not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "discount deleted"})
	}
}
