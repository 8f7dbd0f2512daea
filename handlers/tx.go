package handlers

import (
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/freightbooks/freightbooks/ledger"
	"github.com/freightbooks/freightbooks/models"
)

// withTx runs fn inside a transaction. Every mutation and the balance
// recompute it triggers share one transaction, so a failure leaves the
// payment, paid_amount and status all untouched. A busy/locked failure is
// retried once; everything else is surfaced as-is.
func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	err := runTx(db, fn)
	if err != nil && isBusy(err) {
		slog.Warn("transaction busy, retrying once", "error", err)
		time.Sleep(50 * time.Millisecond)
		err = runTx(db, fn)
	}
	return err
}

func runTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// recomputeInvoice re-derives paid_amount, raw_balance and status for one
// invoice from its completed payments, inside the caller's transaction.
// Idempotent; called after every payment or invoice mutation.
func recomputeInvoice(tx *sql.Tx, invoiceID int, today time.Time) error {
	var amount int64
	var dueDate *string
	var status string
	err := tx.QueryRow(`SELECT amount, due_date, status FROM invoices WHERE id = ?`, invoiceID).
		Scan(&amount, &dueDate, &status)
	if err == sql.ErrNoRows {
		return ledger.NotFoundf("invoice %d not found", invoiceID)
	}
	if err != nil {
		return err
	}

	var paid int64
	err = tx.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = ? AND status = 'completed'`,
		invoiceID).Scan(&paid)
	if err != nil {
		return err
	}

	b := ledger.DeriveBalance(models.Money(amount), models.Money(paid), dueDate, status, today)
	_, err = tx.Exec(
		`UPDATE invoices SET paid_amount = ?, raw_balance = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		int64(b.PaidAmount), int64(b.RawBalance), b.Status, invoiceID)
	return err
}
