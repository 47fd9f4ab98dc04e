package summary

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// CurrencyCode is the single currency every amount is displayed in.
const CurrencyCode = money.INR

var hundred = decimal.NewFromInt(100)

// FormatAmount renders d in the display currency, e.g. "₹1,200.50".
func FormatAmount(d decimal.Decimal) string {
	minor := d.Mul(hundred).Round(0).IntPart()
	return money.New(minor, CurrencyCode).Display()
}
