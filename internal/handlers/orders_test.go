package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backoffice/internal/models"
)

func validCreateOrderRequest() createOrderRequest {
	return createOrderRequest{
		Items: []createOrderItemRequest{
			{ProductID: primitive.NewObjectID().Hex(), Quantity: 2},
		},
		ShippingFee:   15,
		PaymentMethod: "card",
	}
}

func TestBuildOrderFromRequestDefaults(t *testing.T) {
	order, err := buildOrderFromRequest(validCreateOrderRequest())
	if err != nil {
		t.Fatalf("buildOrderFromRequest returned error: %v", err)
	}

	if order.Status != models.StatusPending {
		t.Fatalf("expected new order to be pending, got %s", order.Status)
	}
	if order.PaymentStatus != models.PaymentUnpaid {
		t.Fatalf("expected new order to be unpaid, got %s", order.PaymentStatus)
	}
	if order.StatusChangedAt.IsZero() || order.StatusChangedAt != order.CreatedAt {
		t.Fatal("expected statusChangedAt to start equal to createdAt")
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("expected items to be carried over, got %+v", order.Items)
	}
}

func TestBuildOrderFromRequestRejectsEmptyItems(t *testing.T) {
	req := validCreateOrderRequest()
	req.Items = nil

	if _, err := buildOrderFromRequest(req); err == nil {
		t.Fatal("expected error for order with no items")
	}
}

func TestBuildOrderFromRequestRejectsBadPaymentMethod(t *testing.T) {
	req := validCreateOrderRequest()
	req.PaymentMethod = "crypto"

	if _, err := buildOrderFromRequest(req); err == nil {
		t.Fatal("expected error for unsupported payment method")
	}
}

func TestBuildOrderFromRequestRejectsNegativeShipping(t *testing.T) {
	req := validCreateOrderRequest()
	req.ShippingFee = -1

	if _, err := buildOrderFromRequest(req); err == nil {
		t.Fatal("expected error for negative shipping fee")
	}
}

func TestBuildOrderFromRequestRejectsBadQuantity(t *testing.T) {
	tests := []int{0, -3}
	for _, quantity := range tests {
		req := validCreateOrderRequest()
		req.Items[0].Quantity = quantity

		if _, err := buildOrderFromRequest(req); err == nil {
			t.Fatalf("expected error for quantity=%d", quantity)
		}
	}
}

func TestBuildOrderFromRequestRejectsInvalidProductID(t *testing.T) {
	req := validCreateOrderRequest()
	req.Items[0].ProductID = "not-an-object-id"

	if _, err := buildOrderFromRequest(req); err == nil {
		t.Fatal("expected error for malformed productId")
	}
}

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	if err != nil || page != 1 || limit != 20 {
		t.Fatalf("expected defaults 1/20, got %d/%d err=%v", page, limit, err)
	}

	if _, _, err := parsePaginationParams("0", ""); err == nil {
		t.Fatal("expected error for page=0")
	}
	if _, _, err := parsePaginationParams("", "101"); err == nil {
		t.Fatal("expected error for limit over cap")
	}
}
