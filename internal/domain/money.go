package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders amount as whole rupees with locale digit grouping, the way
// the storefront shows prices.
func FormatINR(amount decimal.Decimal) string {
	return inrPrinter.Sprintf("₹%d", amount.Round(0).IntPart())
}
