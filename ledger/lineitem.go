package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/freightbooks/freightbooks/models"
)

var hundred = decimal.NewFromInt(100)

// LineItemAmounts are the derived money fields of one invoice line.
type LineItemAmounts struct {
	TaxableValue models.Money
	Amount       models.Money
}

// ComputeLineItem derives taxable value (quantity x rate) and gross amount
// (taxable value plus tax) for one line. Quantities may be fractional
// (tonnage, distance); results round half-away-from-zero to minor units.
func ComputeLineItem(quantity decimal.Decimal, rate models.Money, taxRate decimal.Decimal) (LineItemAmounts, error) {
	if !quantity.IsPositive() {
		return LineItemAmounts{}, Validationf("quantity must be positive, got %s", quantity)
	}
	if rate < 0 {
		return LineItemAmounts{}, Validationf("rate must be non-negative, got %d", rate)
	}
	if taxRate.IsNegative() {
		return LineItemAmounts{}, Validationf("tax_rate must be non-negative, got %s", taxRate)
	}

	taxable := models.MoneyFromDecimal(rate.Decimal().Mul(quantity))
	gross := models.MoneyFromDecimal(
		taxable.Decimal().Mul(decimal.NewFromInt(1).Add(taxRate.Div(hundred))))
	return LineItemAmounts{TaxableValue: taxable, Amount: gross}, nil
}
