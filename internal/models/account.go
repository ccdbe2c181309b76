package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role controls which parts of the back-office an account may reach.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// Account is a store user. Deletion is always soft so that orders keeping a
// weak reference to the account stay readable.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Name         string             `bson:"name" json:"name"`
	Role         Role               `bson:"role" json:"role"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	IsDeleted    bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt    *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
