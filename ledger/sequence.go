package ledger

import (
	"database/sql"
	"fmt"
)

// NextInvoiceNumber bumps the global invoice sequence and formats the next
// number. It must run inside the same transaction as the invoice insert so
// concurrent creates can never be issued the same number. Deleting an
// invoice never returns its number to the sequence.
func NextInvoiceNumber(tx *sql.Tx) (string, error) {
	var n int64
	err := tx.QueryRow(
		`UPDATE invoice_sequence SET last_value = last_value + 1 WHERE id = 1 RETURNING last_value`,
	).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("bumping invoice sequence: %w", err)
	}
	return fmt.Sprintf("INV-%06d", n), nil
}
