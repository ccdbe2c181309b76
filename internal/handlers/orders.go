package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backoffice/internal/models"
	"backoffice/internal/rules"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type createOrderRequest struct {
	Items         []createOrderItemRequest `json:"items" binding:"required"`
	ShippingFee   float64                  `json:"shippingFee"`
	PaymentMethod string                   `json:"paymentMethod" binding:"required"`
	DiscountCode  string                   `json:"discountCode"`
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		accountID, err := accountIDFromHeader(c.GetHeader("Authorization"), jwtSecret)
		if err != nil {
			log.Println("[ORDER] [ERROR] token validation failed:", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		order, err := buildOrderFromRequest(req)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		order.AccountID = accountID

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// The discount document is read up front; its effect is computed
		// inside the transaction once the subtotal is known.
		var discount *models.Discount
		if code := rules.NormalizeDiscountCode(req.DiscountCode); code != "" {
			var d models.Discount
			err := db.Collection("discounts").FindOne(ctx, bson.M{"code": code}).Decode(&d)
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusBadRequest, route, "unknown discount code")
				return
			}
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			discount = &d
		}

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		var orderID primitive.ObjectID
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			items := make([]models.OrderItem, 0, len(order.Items))
			subtotal := 0.0

			for _, item := range order.Items {
				var product models.Product
				err := db.Collection("products").FindOne(
					sessCtx,
					bson.M{
						"_id":       item.ProductID,
						"isActive":  true,
						"isDeleted": bson.M{"$ne": true},
					},
				).Decode(&product)
				if err == mongo.ErrNoDocuments {
					return nil, productNotFoundError{ProductID: item.ProductID}
				}
				if err != nil {
					return nil, err
				}

				if product.Stock < item.Quantity {
					return nil, outOfStockError{
						ProductID: item.ProductID,
						Available: product.Stock,
						Requested: item.Quantity,
					}
				}

				items = append(items, models.OrderItem{
					ProductID: item.ProductID,
					Name:      product.Name,
					Price:     product.Price,
					Quantity:  item.Quantity,
				})
				subtotal += product.Price * float64(item.Quantity)

				filter := bson.M{
					"_id":       item.ProductID,
					"isDeleted": bson.M{"$ne": true},
					"stock":     bson.M{"$gte": item.Quantity},
				}
				update := bson.M{"$inc": bson.M{"stock": -item.Quantity}}

				res, err := db.Collection("products").UpdateOne(sessCtx, filter, update)
				if err != nil {
					return nil, err
				}
				if res.MatchedCount == 0 {
					return nil, outOfStockError{
						ProductID: item.ProductID,
						Available: product.Stock,
						Requested: item.Quantity,
					}
				}
			}

			order.Items = items
			order.Subtotal = subtotal

			if discount != nil {
				application, err := rules.ApplyDiscount(*discount, subtotal, time.Now())
				if err != nil {
					return nil, err
				}
				order.DiscountCode = discount.Code
				order.DiscountAmount = application.Amount
			}

			order.Total = order.Subtotal + order.ShippingFee - order.DiscountAmount

			code, err := nextOrderCode(sessCtx, db)
			if err != nil {
				return nil, err
			}
			order.Code = code

			res, err := db.Collection("orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				orderID = id
			}
			return nil, nil
		})
		if err != nil {
			var stockErr outOfStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "insufficient stock",
					"productId": stockErr.ProductID.Hex(),
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			var notFoundErr productNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "product not found",
					"productId": notFoundErr.ProductID.Hex(),
				})
				return
			}
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
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !orderID.IsZero() {
			order.ID = orderID
		}

		if accountID != nil {
			log.Println("[ORDER] [INFO] order created for account:", accountID.Hex())
		} else {
			log.Println("[ORDER] [INFO] guest order created")
		}

		c.JSON(http.StatusCreated, gin.H{
			"orderId": order.ID.Hex(),
			"code":    order.Code,
			"total":   order.Total,
			"message": "order created",
		})
	}
}

/* =========================
   BUILD ORDER
========================= */

func buildOrderFromRequest(req createOrderRequest) (models.Order, error) {
	if len(req.Items) == 0 {
		return models.Order{}, errors.New("at least one item is required")
	}

	if req.PaymentMethod != "cash" && req.PaymentMethod != "card" {
		return models.Order{}, errors.New("invalid payment method")
	}

	if req.ShippingFee < 0 {
		return models.Order{}, errors.New("shippingFee must be zero or greater")
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return models.Order{}, errors.New("invalid productId")
		}

		if item.Quantity <= 0 {
			return models.Order{}, errors.New("quantity must be greater than zero")
		}

		items = append(items, models.OrderItem{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	now := time.Now()
	order := models.Order{
		Items:           items,
		ShippingFee:     req.ShippingFee,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   models.PaymentUnpaid,
		Status:          models.StatusPending,
		CreatedAt:       now,
		StatusChangedAt: now,
	}

	return order, nil
}

// nextOrderCode hands out sequential human-readable order codes from a
// counters document.
func nextOrderCode(ctx context.Context, db *mongo.Database) (string, error) {
	res := db.Collection("counters").FindOneAndUpdate(
		ctx,
		bson.M{"_id": "orderCode"},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	if err := res.Decode(&doc); err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%06d", doc.Seq), nil
}

func accountIDFromHeader(header, secret string) (*primitive.ObjectID, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("invalid token format")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || strings.TrimSpace(sub) == "" {
		return nil, errors.New("sub claim missing")
	}

	accountID, err := primitive.ObjectIDFromHex(sub)
	if err != nil {
		return nil, errors.New("invalid account id")
	}

	return &accountID, nil
}

type outOfStockError struct {
	ProductID primitive.ObjectID
	Available int
	Requested int
}

func (e outOfStockError) Error() string {
	return "product out of stock"
}

type productNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e productNotFoundError) Error() string {
	return "product not found"
}
