package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatINR(t *testing.T) {
	assert.Equal(t, "₹550", FormatINR(decimal.NewFromInt(550)))
	assert.Equal(t, "₹0", FormatINR(decimal.Zero))
	assert.Equal(t, "₹1,234", FormatINR(decimal.NewFromInt(1234)))
	assert.Equal(t, "₹100", FormatINR(decimal.RequireFromString("99.5")))
}
