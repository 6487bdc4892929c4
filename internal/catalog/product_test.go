package catalog

import (
	"testing"

	"github.com/digitaldudes/ottcart/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct() *Product {
	return &Product{
		ID:      "p1",
		Name:    "Netflix Premium",
		OttType: "Netflix",
		Status:  StatusActive,
		Profiles: []ProfileType{
			{
				ID:          "4k-family",
				Name:        "4K Family",
				ScreenCount: 4,
				Quality:     "4K",
				PricingOptions: []PricingOption{
					{Duration: domain.Duration{Value: 1, Unit: "month"}, Price: decimal.NewFromInt(899)},
					{Duration: domain.Duration{Value: 1, Unit: "year"}, Price: decimal.NewFromInt(9999)},
				},
			},
		},
	}
}

func TestSelection(t *testing.T) {
	item, err := Selection(testProduct(), "4k-family", 1)
	require.NoError(t, err)

	assert.Equal(t, "p1:4k-family:1-year", item.ID)
	assert.Equal(t, "p1", item.ProductID)
	assert.Equal(t, "Netflix Premium", item.Name)
	assert.Equal(t, "Netflix", item.OttType)
	assert.True(t, item.Price.Equal(decimal.NewFromInt(9999)))
	assert.Equal(t, 0, item.Quantity)
	require.NotNil(t, item.SelectedProfile)
	assert.Equal(t, 4, item.SelectedProfile.ScreenCount)
	require.NotNil(t, item.SelectedPricing)
	assert.Equal(t, "1-year", item.SelectedPricing.Duration.String())
}

func TestSelection_DistinctDurationsAreDistinctLines(t *testing.T) {
	monthly, err := Selection(testProduct(), "4k-family", 0)
	require.NoError(t, err)
	yearly, err := Selection(testProduct(), "4k-family", 1)
	require.NoError(t, err)

	cart := domain.Cart{}.Add(monthly).Add(yearly).Add(monthly)
	assert.Equal(t, 2, cart.Len())
	assert.Equal(t, 3, cart.ItemCount())
}

func TestSelection_Errors(t *testing.T) {
	disabled := testProduct()
	disabled.Status = StatusDisabled

	tests := []struct {
		name      string
		product   *Product
		profileID string
		index     int
		want      error
	}{
		{"nil product", nil, "4k-family", 0, ErrProductNotFound},
		{"disabled product", disabled, "4k-family", 0, ErrProductUnavailable},
		{"unknown profile", testProduct(), "basic", 0, ErrProfileNotFound},
		{"negative index", testProduct(), "4k-family", -1, ErrPricingNotFound},
		{"index out of range", testProduct(), "4k-family", 2, ErrPricingNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Selection(tt.product, tt.profileID, tt.index)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMinPrice_NoPricing(t *testing.T) {
	p := &Product{ID: "empty"}
	assert.True(t, p.MinPrice().IsZero())
}
