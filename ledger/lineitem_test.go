package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightbooks/freightbooks/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeLineItem(t *testing.T) {
	t.Run("whole quantity no tax", func(t *testing.T) {
		got, err := ComputeLineItem(dec("2"), 50000, dec("0"))
		require.NoError(t, err)
		assert.Equal(t, models.Money(100000), got.TaxableValue)
		assert.Equal(t, models.Money(100000), got.Amount)
	})

	t.Run("with tax", func(t *testing.T) {
		got, err := ComputeLineItem(dec("1"), 100000, dec("18"))
		require.NoError(t, err)
		assert.Equal(t, models.Money(100000), got.TaxableValue)
		assert.Equal(t, models.Money(118000), got.Amount)
	})

	t.Run("fractional quantity rounds to minor units", func(t *testing.T) {
		// 2.5 tonnes at 333 paise
		got, err := ComputeLineItem(dec("2.5"), 333, dec("0"))
		require.NoError(t, err)
		assert.Equal(t, models.Money(833), got.TaxableValue) // 832.5 rounds up
	})

	t.Run("zero rate is legal", func(t *testing.T) {
		got, err := ComputeLineItem(dec("3"), 0, dec("18"))
		require.NoError(t, err)
		assert.Equal(t, models.Money(0), got.TaxableValue)
		assert.Equal(t, models.Money(0), got.Amount)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := ComputeLineItem(dec("0"), 100, dec("0"))
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))

		_, err = ComputeLineItem(dec("-1"), 100, dec("0"))
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("rejects negative rate", func(t *testing.T) {
		_, err := ComputeLineItem(dec("1"), -1, dec("0"))
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("rejects negative tax rate", func(t *testing.T) {
		_, err := ComputeLineItem(dec("1"), 100, dec("-5"))
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	})
}
