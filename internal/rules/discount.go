package rules

import (
	"fmt"
	"math"
	"strings"
	"time"

	"backoffice/internal/models"
)

// DiscountState is the temporal classification of a discount code. The four
// states are mutually exclusive and partition the timeline at StartsAt
// (inclusive) and EndsAt (exclusive).
type DiscountState string

const (
	DiscountDisabled DiscountState = "disabled"
	DiscountUpcoming DiscountState = "upcoming"
	DiscountActive   DiscountState = "active"
	DiscountExpired  DiscountState = "expired"
)

// EvaluateDiscountStatus classifies a discount at the given instant. The
// deleted flag wins over everything; after that the window decides:
// now == StartsAt is already active, now == EndsAt is already expired.
func EvaluateDiscountStatus(d models.Discount, now time.Time) DiscountState {
	switch {
	case d.IsDeleted:
		return DiscountDisabled
	case now.Before(d.StartsAt):
		return DiscountUpcoming
	case !now.Before(d.EndsAt):
		return DiscountExpired
	default:
		return DiscountActive
	}
}

// NotActiveError is returned when a code exists but is not redeemable right
// now. State says why: disabled, upcoming, or expired.
type NotActiveError struct {
	Code  string
	State DiscountState
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("discount %q is not active (%s)", e.Code, e.State)
}

// BelowMinimumError is returned when the order subtotal does not reach the
// code's minimum order value.
type BelowMinimumError struct {
	Code          string
	MinOrderValue float64
	Subtotal      float64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("discount %q requires a minimum order of %.2f, got %.2f", e.Code, e.MinOrderValue, e.Subtotal)
}

// DiscountApplication is the monetary effect of a discount on a subtotal.
// Amount never exceeds the subtotal and Total is never negative.
type DiscountApplication struct {
	Amount float64 `json:"amount"`
	Total  float64 `json:"total"`
}

// ApplyDiscount computes the effect of d on an order subtotal at the given
// instant. Percentage amounts are rounded down to the smallest currency
// unit; fixed amounts are capped at the subtotal.
func ApplyDiscount(d models.Discount, subtotal float64, now time.Time) (DiscountApplication, error) {
	if state := EvaluateDiscountStatus(d, now); state != DiscountActive {
		return DiscountApplication{}, &NotActiveError{Code: d.Code, State: state}
	}
	if subtotal < d.MinOrderValue {
		return DiscountApplication{}, &BelowMinimumError{
			Code:          d.Code,
			MinOrderValue: d.MinOrderValue,
			Subtotal:      subtotal,
		}
	}

	var amount float64
	switch d.Type {
	case models.DiscountPercentage:
		amount = math.Floor(subtotal * d.Value / 100)
	case models.DiscountFixed:
		amount = d.Value
	default:
		return DiscountApplication{}, fmt.Errorf("unknown discount type %q", d.Type)
	}

	if amount > subtotal {
		amount = subtotal
	}

	return DiscountApplication{Amount: amount, Total: subtotal - amount}, nil
}

// NormalizeDiscountCode canonicalizes a code for storage and lookup.
func NormalizeDiscountCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateDiscount checks the invariants an admin-created discount must
// satisfy before it is persisted.
func ValidateDiscount(d models.Discount) error {
	if NormalizeDiscountCode(d.Code) == "" {
		return fmt.Errorf("code is required")
	}
	switch d.Type {
	case models.DiscountPercentage:
		if d.Value <= 0 || d.Value > 100 {
			return fmt.Errorf("percentage value must be in (0, 100]")
		}
	case models.DiscountFixed:
		if d.Value <= 0 {
			return fmt.Errorf("fixed value must be greater than 0")
		}
	default:
		return fmt.Errorf("type must be percentage or fixed")
	}
	if d.MinOrderValue < 0 {
		return fmt.Errorf("minOrderValue must be zero or greater")
	}
	if !d.StartsAt.Before(d.EndsAt) {
		return fmt.Errorf("startsAt must be before endsAt")
	}
	return nil
}
