package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the fulfillment state of an order. Fulfillment and payment are
// independent dimensions; see PaymentStatus.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

// PaymentStatus tracks settlement separately from fulfillment.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// OrderItem is a weak reference to a product: it keeps the name and unit
// price as they were at checkout so the row stays readable after the
// product is soft-deleted.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// StatusNote is a single audit trail entry recorded on a status change.
type StatusNote struct {
	From  Status    `bson:"from" json:"from"`
	To    Status    `bson:"to" json:"to"`
	Note  string    `bson:"note,omitempty" json:"note,omitempty"`
	Actor string    `bson:"actor,omitempty" json:"actor,omitempty"`
	At    time.Time `bson:"at" json:"at"`
}

// Order defines the persisted order document. Orders are never hard-deleted;
// cancelled is the only soft end state reachable from the admin panel.
type Order struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Code            string              `bson:"code" json:"code"`
	AccountID       *primitive.ObjectID `bson:"accountId" json:"accountId"`
	Items           []OrderItem         `bson:"items" json:"items"`
	Subtotal        float64             `bson:"subtotal" json:"subtotal"`
	ShippingFee     float64             `bson:"shippingFee" json:"shippingFee"`
	DiscountCode    string              `bson:"discountCode,omitempty" json:"discountCode,omitempty"`
	DiscountAmount  float64             `bson:"discountAmount" json:"discountAmount"`
	Total           float64             `bson:"total" json:"total"`
	PaymentMethod   string              `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus   PaymentStatus       `bson:"paymentStatus" json:"paymentStatus"`
	Status          Status              `bson:"status" json:"status"`
	StatusNotes     []StatusNote        `bson:"statusNotes,omitempty" json:"statusNotes,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	StatusChangedAt time.Time           `bson:"statusChangedAt" json:"statusChangedAt"`
}
