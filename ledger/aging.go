package ledger

import (
	"time"

	"github.com/freightbooks/freightbooks/models"
)

// Outstanding is the slice of an invoice the aging report needs.
type Outstanding struct {
	DueDate *string
	Balance models.Money // raw balance, positive for outstanding invoices
}

// BuildAgingReport buckets outstanding balances by days past due as of the
// given day: 0-30, 31-60, 61-90, 90+. Exactly 30/60/90 days falls in the
// lower bucket; invoices with no due date age as zero days. Percentages
// are of the grand total, zero when there is nothing outstanding.
func BuildAgingReport(invoices []Outstanding, currency string, today time.Time) models.AgingReport {
	r := models.AgingReport{
		Currency: currency,
		AsOf:     today.Format("2006-01-02"),
	}
	for _, inv := range invoices {
		bal := inv.Balance.ClampZero()
		if bal == 0 {
			continue
		}
		r.InvoiceCount++
		switch days := DaysPastDue(inv.DueDate, today); {
		case days <= 30:
			r.B0to30 += bal
		case days <= 60:
			r.B31to60 += bal
		case days <= 90:
			r.B61to90 += bal
		default:
			r.B90plus += bal
		}
		r.Total += bal
	}
	if r.Total > 0 {
		r.Pct0to30 = pct(r.B0to30, r.Total)
		r.Pct31to60 = pct(r.B31to60, r.Total)
		r.Pct61to90 = pct(r.B61to90, r.Total)
		r.Pct90plus = pct(r.B90plus, r.Total)
	}
	return r
}

// DaysPastDue is the whole days between the due date and today, floored
// at zero. Missing or unparseable due dates age as zero.
func DaysPastDue(dueDate *string, today time.Time) int {
	if dueDate == nil || *dueDate == "" {
		return 0
	}
	due, err := time.Parse("2006-01-02", *dueDate)
	if err != nil {
		return 0
	}
	day, err := time.Parse("2006-01-02", today.Format("2006-01-02"))
	if err != nil {
		return 0
	}
	days := int(day.Sub(due).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func pct(part, total models.Money) float64 {
	f, _ := part.Decimal().Mul(hundred).Div(total.Decimal()).Round(2).Float64()
	return f
}
