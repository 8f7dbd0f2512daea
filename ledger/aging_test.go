package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freightbooks/freightbooks/models"
)

// daysAgo formats a due date n whole days before the test's fixed today.
func daysAgo(n int) *string {
	s := today.AddDate(0, 0, -n).Format("2006-01-02")
	return &s
}

func TestDaysPastDue(t *testing.T) {
	assert.Equal(t, 15, DaysPastDue(daysAgo(15), today))
	assert.Equal(t, 0, DaysPastDue(daysAgo(0), today))
	assert.Equal(t, 0, DaysPastDue(daysAgo(-10), today), "future due date ages as zero")
	assert.Equal(t, 0, DaysPastDue(nil, today))
	empty := ""
	assert.Equal(t, 0, DaysPastDue(&empty, today))
}

func TestBuildAgingReport(t *testing.T) {
	t.Run("buckets by days past due", func(t *testing.T) {
		r := BuildAgingReport([]Outstanding{
			{DueDate: daysAgo(15), Balance: 100},
			{DueDate: daysAgo(45), Balance: 200},
			{DueDate: daysAgo(100), Balance: 50},
		}, "INR", today)

		assert.Equal(t, models.Money(100), r.B0to30)
		assert.Equal(t, models.Money(200), r.B31to60)
		assert.Equal(t, models.Money(0), r.B61to90)
		assert.Equal(t, models.Money(50), r.B90plus)
		assert.Equal(t, models.Money(350), r.Total)
		assert.Equal(t, 3, r.InvoiceCount)
	})

	t.Run("exact boundaries fall in the lower bucket", func(t *testing.T) {
		r := BuildAgingReport([]Outstanding{
			{DueDate: daysAgo(30), Balance: 10},
			{DueDate: daysAgo(60), Balance: 20},
			{DueDate: daysAgo(90), Balance: 30},
			{DueDate: daysAgo(91), Balance: 40},
		}, "INR", today)

		assert.Equal(t, models.Money(10), r.B0to30)
		assert.Equal(t, models.Money(20), r.B31to60)
		assert.Equal(t, models.Money(30), r.B61to90)
		assert.Equal(t, models.Money(40), r.B90plus)
	})

	t.Run("missing due date ages as current", func(t *testing.T) {
		r := BuildAgingReport([]Outstanding{{DueDate: nil, Balance: 500}}, "INR", today)
		assert.Equal(t, models.Money(500), r.B0to30)
	})

	t.Run("buckets partition the total", func(t *testing.T) {
		r := BuildAgingReport([]Outstanding{
			{DueDate: daysAgo(3), Balance: 111},
			{DueDate: daysAgo(33), Balance: 222},
			{DueDate: daysAgo(63), Balance: 333},
			{DueDate: daysAgo(93), Balance: 444},
			{DueDate: nil, Balance: 555},
		}, "INR", today)
		assert.Equal(t, r.Total, r.B0to30+r.B31to60+r.B61to90+r.B90plus)
		assert.InDelta(t, 100.0, r.Pct0to30+r.Pct31to60+r.Pct61to90+r.Pct90plus, 0.05)
	})

	t.Run("empty set has no percentages", func(t *testing.T) {
		r := BuildAgingReport(nil, "INR", today)
		assert.Equal(t, models.Money(0), r.Total)
		assert.Zero(t, r.Pct0to30)
		assert.Zero(t, r.Pct90plus)
		assert.Equal(t, 0, r.InvoiceCount)
	})

	t.Run("negative balances are clamped out", func(t *testing.T) {
		r := BuildAgingReport([]Outstanding{
			{DueDate: daysAgo(10), Balance: 100},
			{DueDate: daysAgo(10), Balance: -40},
		}, "INR", today)
		assert.Equal(t, models.Money(100), r.Total)
		assert.Equal(t, 1, r.InvoiceCount)
	})

	t.Run("stamps currency and as-of date", func(t *testing.T) {
		r := BuildAgingReport(nil, "USD", today)
		assert.Equal(t, "USD", r.Currency)
		assert.Equal(t, "2026-09-01", r.AsOf)
	})
}
