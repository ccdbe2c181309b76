package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"backoffice/internal/models"
	"backoffice/internal/rules"
)

// PreviewDiscount tells the storefront what a code would do to a given
// subtotal without touching anything. An unknown code is a 404 so the UI can
// tell "no such code" apart from "code not usable yet" (422).
func PreviewDiscount(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /discounts/:code/preview"
		defer handlePanic(c, route)

		code := rules.NormalizeDiscountCode(c.Param("code"))
		if code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "code required"})
			return
		}

		subtotalRaw := strings.TrimSpace(c.Query("subtotal"))
		subtotal, err := strconv.ParseFloat(subtotalRaw, 64)
		if err != nil || subtotal < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "subtotal must be a non-negative number"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var discount models.Discount
		err = db.Collection("discounts").FindOne(ctx, bson.M{"code": code}).Decode(&discount)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "discount not found"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		application, err := rules.ApplyDiscount(discount, subtotal, time.Now())
		if err != nil {
			var notActive *rules.NotActiveError
			if errors.As(err, &notActive) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error": "discount code is not active",
					"state": notActive.State,
				})
				return
			}
			var belowMin *rules.BelowMinimumError
			if errors.As(err, &belowMin) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":         "order subtotal below discount minimum",
					"minOrderValue": belowMin.MinOrderValue,
					"subtotal":      belowMin.Subtotal,
				})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "evaluation failed")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"code":     discount.Code,
			"state":    rules.DiscountActive,
			"amount":   application.Amount,
			"total":    application.Total,
			"subtotal": subtotal,
		})
	}
}
