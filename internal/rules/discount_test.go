package rules_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/models"
	"backoffice/internal/rules"
)

var (
	windowStart = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
)

func windowDiscount() models.Discount {
	return models.Discount{
		Code:     "SUMMER20",
		Type:     models.DiscountPercentage,
		Value:    20,
		StartsAt: windowStart,
		EndsAt:   windowEnd,
	}
}

func TestEvaluateDiscountStatusTimeline(t *testing.T) {
	d := windowDiscount()

	tests := []struct {
		name string
		now  time.Time
		want rules.DiscountState
	}{
		{"before_window", windowStart.Add(-time.Second), rules.DiscountUpcoming},
		{"exactly_at_start", windowStart, rules.DiscountActive},
		{"inside_window", windowStart.AddDate(0, 0, 10), rules.DiscountActive},
		{"exactly_at_end", windowEnd, rules.DiscountExpired},
		{"after_window", windowEnd.Add(time.Second), rules.DiscountExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.EvaluateDiscountStatus(d, tt.now))
		})
	}
}

func TestEvaluateDiscountStatusDeletedWins(t *testing.T) {
	d := windowDiscount()
	d.IsDeleted = true

	// Disabled beats the window, even mid-validity.
	assert.Equal(t, rules.DiscountDisabled, rules.EvaluateDiscountStatus(d, windowStart.AddDate(0, 0, 5)))
}

func TestApplyDiscountPercentage(t *testing.T) {
	d := windowDiscount()
	d.MinOrderValue = 100000

	app, err := rules.ApplyDiscount(d, 150000, windowStart.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 30000.0, app.Amount)
	assert.Equal(t, 120000.0, app.Total)
}

func TestApplyDiscountPercentageRoundsDown(t *testing.T) {
	d := windowDiscount()
	d.Value = 15

	app, err := rules.ApplyDiscount(d, 99.0, windowStart)
	require.NoError(t, err)
	// 99 * 15% = 14.85, floored to the smallest unit.
	assert.Equal(t, 14.0, app.Amount)
	assert.Equal(t, 85.0, app.Total)
}

func TestApplyDiscountFixedCappedAtSubtotal(t *testing.T) {
	d := windowDiscount()
	d.Type = models.DiscountFixed
	d.Value = 50000

	app, err := rules.ApplyDiscount(d, 30000, windowStart)
	require.NoError(t, err)
	assert.Equal(t, 30000.0, app.Amount)
	assert.Equal(t, 0.0, app.Total)
}

func TestApplyDiscountNotActive(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*models.Discount)
		now       time.Time
		wantState rules.DiscountState
	}{
		{"upcoming", func(*models.Discount) {}, windowStart.Add(-time.Hour), rules.DiscountUpcoming},
		{"expired", func(*models.Discount) {}, windowEnd, rules.DiscountExpired},
		{"disabled", func(d *models.Discount) { d.IsDeleted = true }, windowStart, rules.DiscountDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := windowDiscount()
			tt.mutate(&d)

			_, err := rules.ApplyDiscount(d, 500000, tt.now)
			require.Error(t, err)

			var notActive *rules.NotActiveError
			require.True(t, errors.As(err, &notActive))
			assert.Equal(t, tt.wantState, notActive.State)
		})
	}
}

func TestApplyDiscountBelowMinimum(t *testing.T) {
	d := windowDiscount()
	d.MinOrderValue = 100000

	_, err := rules.ApplyDiscount(d, 99999, windowStart)
	require.Error(t, err)

	var below *rules.BelowMinimumError
	require.True(t, errors.As(err, &below))
	assert.Equal(t, 100000.0, below.MinOrderValue)
	assert.Equal(t, 99999.0, below.Subtotal)
}

func TestApplyDiscountNeverExceedsSubtotal(t *testing.T) {
	d := windowDiscount()
	d.Value = 100

	app, err := rules.ApplyDiscount(d, 12345, windowStart)
	require.NoError(t, err)
	assert.LessOrEqual(t, app.Amount, 12345.0)
	assert.GreaterOrEqual(t, app.Total, 0.0)
}

func TestNormalizeDiscountCode(t *testing.T) {
	assert.Equal(t, "SUMMER20", rules.NormalizeDiscountCode("  summer20 "))
}

func TestValidateDiscount(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Discount)
		wantErr string
	}{
		{"valid", func(*models.Discount) {}, ""},
		{"missing_code", func(d *models.Discount) { d.Code = "  " }, "code is required"},
		{"percentage_over_100", func(d *models.Discount) { d.Value = 120 }, "percentage value must be in (0, 100]"},
		{"percentage_zero", func(d *models.Discount) { d.Value = 0 }, "percentage value must be in (0, 100]"},
		{"fixed_zero", func(d *models.Discount) { d.Type = models.DiscountFixed; d.Value = 0 }, "fixed value must be greater than 0"},
		{"unknown_type", func(d *models.Discount) { d.Type = "bogo" }, "type must be percentage or fixed"},
		{"negative_minimum", func(d *models.Discount) { d.MinOrderValue = -1 }, "minOrderValue must be zero or greater"},
		{"window_inverted", func(d *models.Discount) { d.EndsAt = d.StartsAt }, "startsAt must be before endsAt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := windowDiscount()
			tt.mutate(&d)

			err := rules.ValidateDiscount(d)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
			}
		})
	}
}
