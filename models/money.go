package models

import "github.com/shopspring/decimal"

// Money is an amount in minor currency units (paise, cents).
// All arithmetic that involves rates goes through decimal and is
// rounded back half-away-from-zero.
type Money int64

// Decimal returns the amount as a decimal in minor units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(m))
}

// MoneyFromDecimal rounds a minor-unit decimal to the nearest whole unit.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Round(0).IntPart())
}

// ClampZero floors negative amounts at zero for display.
func (m Money) ClampZero() Money {
	if m < 0 {
		return 0
	}
	return m
}
