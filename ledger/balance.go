package ledger

import (
	"time"

	"github.com/freightbooks/freightbooks/models"
)

// Balance is the derived payment state of one invoice.
type Balance struct {
	PaidAmount models.Money
	RawBalance models.Money // amount - paid; negative means overpaid
	Status     string
}

// DeriveBalance recomputes an invoice's paid/balance/status from the sum of
// its completed payments. The status rules are ordered and non-overlapping:
//
//  1. raw balance <= 0            -> paid (settlement beats overdue)
//  2. past due date               -> overdue
//  3. ever sent or partly paid    -> sent
//  4. otherwise                   -> draft
//
// "Ever sent" means the invoice's current status has left draft, or any
// completed money has landed on it. The function is idempotent: with the
// same inputs it always produces the same output, so it is safe to run on
// every mutation.
func DeriveBalance(amount, completedPaid models.Money, dueDate *string, currentStatus string, today time.Time) Balance {
	b := Balance{
		PaidAmount: completedPaid,
		RawBalance: amount - completedPaid,
	}
	switch {
	case b.RawBalance <= 0:
		b.Status = models.InvoicePaid
	case pastDue(dueDate, today):
		b.Status = models.InvoiceOverdue
	case currentStatus != models.InvoiceDraft || completedPaid > 0:
		b.Status = models.InvoiceSent
	default:
		b.Status = models.InvoiceDraft
	}
	return b
}

// pastDue reports whether today is strictly after the due date. A due date
// of exactly today is not overdue, and no due date never goes overdue.
func pastDue(dueDate *string, today time.Time) bool {
	if dueDate == nil || *dueDate == "" {
		return false
	}
	return today.Format("2006-01-02") > *dueDate
}
