package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightbooks/freightbooks/models"
)

func TestComputeTotals(t *testing.T) {
	items := []models.LineItemInput{
		{Description: "Freight charges", Quantity: dec("1"), Rate: 100000, TaxRate: dec("18")},
		{Description: "Loading", Quantity: dec("2"), Rate: 5000, TaxRate: dec("0")},
	}

	t.Run("aggregates subtotal tax and grand total", func(t *testing.T) {
		lines, totals, err := ComputeTotals(items, dec("0"))
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, models.Money(110000), totals.Subtotal)
		assert.Equal(t, models.Money(18000), totals.TotalTax)
		assert.Equal(t, models.Money(0), totals.TdsAmount)
		assert.Equal(t, models.Money(128000), totals.Amount)
		assert.Empty(t, totals.Warning)
	})

	t.Run("tds comes off the subtotal", func(t *testing.T) {
		_, totals, err := ComputeTotals(items, dec("2"))
		require.NoError(t, err)
		assert.Equal(t, models.Money(2200), totals.TdsAmount) // 2% of 110000
		assert.Equal(t, models.Money(125800), totals.Amount)
	})

	t.Run("total tax equals sum of line tax", func(t *testing.T) {
		lines, totals, err := ComputeTotals(items, dec("0"))
		require.NoError(t, err)
		var sum models.Money
		for _, li := range lines {
			sum += li.Amount - li.TaxableValue
		}
		assert.Equal(t, totals.TotalTax, sum)
	})

	t.Run("line order is preserved", func(t *testing.T) {
		lines, _, err := ComputeTotals(items, dec("0"))
		require.NoError(t, err)
		assert.Equal(t, "Freight charges", lines[0].Description)
		assert.Equal(t, "Loading", lines[1].Description)
	})

	t.Run("tds above 100 percent warns and goes negative", func(t *testing.T) {
		_, totals, err := ComputeTotals(
			[]models.LineItemInput{{Description: "x", Quantity: dec("1"), Rate: 1000, TaxRate: dec("0")}},
			dec("150"))
		require.NoError(t, err)
		assert.Equal(t, models.Money(-500), totals.Amount)
		assert.NotEmpty(t, totals.Warning)
	})

	t.Run("rejects empty line items", func(t *testing.T) {
		_, _, err := ComputeTotals(nil, dec("0"))
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("rejects negative tds rate", func(t *testing.T) {
		_, _, err := ComputeTotals(items, dec("-1"))
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("bad line item is reported with its position", func(t *testing.T) {
		_, _, err := ComputeTotals([]models.LineItemInput{
			{Description: "ok", Quantity: dec("1"), Rate: 100, TaxRate: dec("0")},
			{Description: "bad", Quantity: dec("0"), Rate: 100, TaxRate: dec("0")},
		}, dec("0"))
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Contains(t, err.Error(), "line item 2")
	})
}
