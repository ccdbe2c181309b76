package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"backoffice/internal/config"
	"backoffice/internal/database"
	"backoffice/internal/handlers"
	"backoffice/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureAccountIndexes(db); err != nil {
		log.Printf("account index warning: %v", err)
	}
	if err := database.EnsureDiscountIndexes(db); err != nil {
		log.Printf("discount index warning: %v", err)
	}

	r := gin.Default()

	r.POST("/auth/register", handlers.Register(db))
	r.POST("/auth/login", handlers.Login(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))
	r.POST("/admin/login", handlers.AdminLogin(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	r.POST("/orders", handlers.CreateOrder(db, config.AppEnv.JWTSecret))
	r.GET("/discounts/:code/preview", handlers.PreviewDiscount(db))

	// Moderators and admins share the read side and day-to-day order flow.
	staff := r.Group("/admin/api")
	staff.Use(middleware.StaffAuth(config.AppEnv.JWTSecret))
	{
		staff.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		staff.GET("/orders", handlers.GetAllOrders(db))
		staff.GET("/orders/:id", handlers.GetOrder(db))
		staff.PATCH("/orders/:id/status", handlers.UpdateOrderStatus(db))

		staff.GET("/products", handlers.GetAllProducts(db))
		staff.GET("/accounts", handlers.GetAllAccounts(db))
		staff.GET("/discounts", handlers.GetAllDiscounts(db))
	}

	// Anything that creates, edits, or deletes records is admin-only.
	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))

		admin.PUT("/accounts/:id", handlers.UpdateAccount(db))
		admin.DELETE("/accounts/:id", handlers.DeleteAccount(db))

		admin.POST("/discounts", handlers.CreateDiscount(db))
		admin.PUT("/discounts/:id", handlers.UpdateDiscount(db))
		admin.DELETE("/discounts/:id", handlers.DeleteDiscount(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
