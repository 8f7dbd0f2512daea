package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/freightbooks/freightbooks/models"
)

// Totals are the invoice-level aggregates over its line items.
type Totals struct {
	Subtotal  models.Money
	TotalTax  models.Money
	TdsAmount models.Money
	Amount    models.Money // subtotal + totalTax - tdsAmount; negative only when tdsRate > 100
	Warning   string       // non-fatal oddity worth surfacing to the caller
}

// ComputeTotals validates and prices every line item, then aggregates.
// Line order is preserved for display. A tdsRate above 100% is legal but
// flagged, since it drives the grand total negative.
func ComputeTotals(items []models.LineItemInput, tdsRate decimal.Decimal) ([]models.LineItem, Totals, error) {
	if len(items) == 0 {
		return nil, Totals{}, Validationf("at least one line item is required")
	}
	if tdsRate.IsNegative() {
		return nil, Totals{}, Validationf("tds_rate must be non-negative, got %s", tdsRate)
	}

	var t Totals
	lines := make([]models.LineItem, 0, len(items))
	for i, in := range items {
		amounts, err := ComputeLineItem(in.Quantity, in.Rate, in.TaxRate)
		if err != nil {
			return nil, Totals{}, Validationf("line item %d: %s", i+1, err.Error())
		}
		lines = append(lines, models.LineItem{
			Description:  in.Description,
			HsnCode:      in.HsnCode,
			Quantity:     in.Quantity,
			Rate:         in.Rate,
			TaxRate:      in.TaxRate,
			TaxableValue: amounts.TaxableValue,
			Amount:       amounts.Amount,
		})
		t.Subtotal += amounts.TaxableValue
		t.TotalTax += amounts.Amount - amounts.TaxableValue
	}

	t.TdsAmount = models.MoneyFromDecimal(t.Subtotal.Decimal().Mul(tdsRate).Div(hundred))
	t.Amount = t.Subtotal + t.TotalTax - t.TdsAmount
	if tdsRate.GreaterThan(hundred) {
		t.Warning = "tds_rate exceeds 100%; invoice amount is negative"
	}
	return lines, t, nil
}
