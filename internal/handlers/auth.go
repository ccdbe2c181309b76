package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"backoffice/internal/models"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/register"
		defer handlePanic(c, route)

		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "could not hash password")
			return
		}

		account := models.Account{
			Email:        email,
			PasswordHash: string(hash),
			Name:         strings.TrimSpace(req.Name),
			Role:         models.RoleCustomer,
			IsActive:     true,
			CreatedAt:    time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("accounts").InsertOne(ctx, account)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "email already registered")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		account.ID = res.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, account)
	}
}

func Login(db *mongo.Database, jwtSecret string, accessTTL time.Duration) gin.HandlerFunc {
	return loginHandler(db, jwtSecret, accessTTL, "POST /auth/login", nil)
}

// AdminLogin only accepts back-office roles, so a leaked customer credential
// can never open the dashboard.
func AdminLogin(db *mongo.Database, jwtSecret string, accessTTL time.Duration) gin.HandlerFunc {
	return loginHandler(db, jwtSecret, accessTTL, "POST /admin/login", []models.Role{
		models.RoleAdmin,
		models.RoleModerator,
	})
}

func loginHandler(db *mongo.Database, jwtSecret string, accessTTL time.Duration, route string, allowedRoles []models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		filter := bson.M{
			"email":     email,
			"isActive":  true,
			"isDeleted": bson.M{"$ne": true},
		}
		if len(allowedRoles) > 0 {
			filter["role"] = bson.M{"$in": allowedRoles}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var account models.Account
		if err := db.Collection("accounts").FindOne(ctx, filter).Decode(&account); err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		claims := jwt.MapClaims{
			"sub":   account.ID.Hex(),
			"role":  string(account.Role),
			"email": account.Email,
			"exp":   time.Now().Add(accessTTL).Unix(),
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(jwtSecret))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": signed})
	}
}
