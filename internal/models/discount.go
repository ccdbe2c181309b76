package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DiscountType selects how a discount value is interpreted.
type DiscountType string

const (
	// DiscountPercentage takes Value percent off the order subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed takes Value off the order subtotal, capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
)

// Discount defines a redeemable discount code. Codes are stored upper-cased
// and matched case-insensitively. Evaluation never mutates the document;
// there is no redemption counter.
type Discount struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code          string             `bson:"code" json:"code"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Type          DiscountType       `bson:"type" json:"type"`
	Value         float64            `bson:"value" json:"value"`
	MinOrderValue float64            `bson:"minOrderValue" json:"minOrderValue"`
	StartsAt      time.Time          `bson:"startsAt" json:"startsAt"`
	EndsAt        time.Time          `bson:"endsAt" json:"endsAt"`
	IsDeleted     bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt     *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
