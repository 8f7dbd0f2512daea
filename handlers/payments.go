package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/freightbooks/freightbooks/ledger"
	"github.com/freightbooks/freightbooks/models"
)

const paymentSelectQuery = `SELECT p.id, p.shipment_id, p.invoice_id, p.amount, p.currency, p.method,
	p.transaction_num, p.date, p.notes, p.status, p.created_at, p.updated_at,
	i.invoice_number, s.reference
	FROM payments p
	LEFT JOIN invoices i ON p.invoice_id = i.id
	LEFT JOIN shipments s ON p.shipment_id = s.id`

func scanPayment(scanner interface{ Scan(...any) error }) (models.Payment, error) {
	var p models.Payment
	err := scanner.Scan(&p.ID, &p.ShipmentID, &p.InvoiceID, &p.Amount, &p.Currency, &p.Method,
		&p.TransactionNum, &p.Date, &p.Notes, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		&p.InvoiceNumber, &p.ShipmentReference)
	return p, err
}

func getPaymentByID(id int) (models.Payment, error) {
	return scanPayment(DB.QueryRow(paymentSelectQuery+" WHERE p.id = ?", id))
}

// checkPaymentTarget validates the payment's shipment and invoice linkage
// inside tx and returns the currency the payment settles in plus a warning
// when the amount dwarfs the invoice's outstanding balance.
func checkPaymentTarget(tx *sql.Tx, input *models.PaymentInput, excludePaymentID int) (currency, warning string, err error) {
	err = tx.QueryRow(`SELECT currency FROM shipments WHERE id = ?`, input.ShipmentID).Scan(&currency)
	if err == sql.ErrNoRows {
		return "", "", ledger.NotFoundf("shipment %d not found", input.ShipmentID)
	}
	if err != nil {
		return "", "", err
	}
	if input.InvoiceID == nil {
		return currency, "", nil
	}

	var invShipmentID int
	var invCurrency string
	var rawBalance int64
	err = tx.QueryRow(`SELECT shipment_id, currency, raw_balance FROM invoices WHERE id = ?`, *input.InvoiceID).
		Scan(&invShipmentID, &invCurrency, &rawBalance)
	if err == sql.ErrNoRows {
		return "", "", ledger.NotFoundf("invoice %d not found", *input.InvoiceID)
	}
	if err != nil {
		return "", "", err
	}
	if invShipmentID != input.ShipmentID {
		return "", "", ledger.Referentialf("invoice %d belongs to shipment %d, not %d",
			*input.InvoiceID, invShipmentID, input.ShipmentID)
	}
	if currency != invCurrency {
		return "", "", ledger.Referentialf("shipment currency %s does not match invoice currency %s",
			currency, invCurrency)
	}

	// Fat-finger guard: warn, never reject. Advance and bulk payments are
	// legitimate, so only a generous multiple of the outstanding balance
	// draws a warning. The payment being edited does not count against
	// its own headroom.
	outstanding := models.Money(rawBalance)
	if excludePaymentID > 0 {
		var prior int64
		err = tx.QueryRow(`SELECT COALESCE(SUM(amount), 0) FROM payments
			WHERE id = ? AND invoice_id = ? AND status = 'completed'`,
			excludePaymentID, *input.InvoiceID).Scan(&prior)
		if err != nil {
			return "", "", err
		}
		outstanding += models.Money(prior)
	}
	if outstanding > 0 && input.Amount > 5*outstanding {
		warning = fmt.Sprintf("payment of %d is more than 5x the outstanding balance %d; check for entry error",
			input.Amount, outstanding)
		slog.Warn("oversized payment recorded", "invoice_id", *input.InvoiceID,
			"amount", input.Amount, "outstanding", outstanding)
	} else if outstanding <= 0 {
		warning = "invoice is already settled; this payment overpays it"
	} else if input.Amount > outstanding {
		warning = "payment exceeds outstanding balance; invoice will be overpaid"
	}
	return invCurrency, warning, nil
}

// ListPayments lists all payments
// @Summary      List payments
// @Description  Get payments, filterable by invoice, shipment, status, method, or applied/unapplied state.
// @Tags         payments
// @Produce      json
// @Param        invoice_id   query     int     false  "Filter by invoice"
// @Param        shipment_id  query     int     false  "Filter by shipment"
// @Param        status       query     string  false  "Filter by status"
// @Param        method       query     string  false  "Filter by method"
// @Param        applied      query     bool    false  "true: only invoice-linked, false: only unapplied"
// @Success      200          {object}  Response{data=[]models.Payment}
// @Router       /payments [get]
// @Security     BasicAuth
func ListPayments(w http.ResponseWriter, r *http.Request) {
	query := paymentSelectQuery
	var conditions []string
	var args []any

	if iid := r.URL.Query().Get("invoice_id"); iid != "" {
		conditions = append(conditions, "p.invoice_id = ?")
		args = append(args, iid)
	}
	if sid := r.URL.Query().Get("shipment_id"); sid != "" {
		conditions = append(conditions, "p.shipment_id = ?")
		args = append(args, sid)
	}
	if s := r.URL.Query().Get("status"); s != "" {
		conditions = append(conditions, "p.status = ?")
		args = append(args, s)
	}
	if m := r.URL.Query().Get("method"); m != "" {
		conditions = append(conditions, "p.method = ?")
		args = append(args, m)
	}
	switch r.URL.Query().Get("applied") {
	case "true":
		conditions = append(conditions, "p.invoice_id IS NOT NULL")
	case "false":
		conditions = append(conditions, "p.invoice_id IS NULL")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.created_at DESC"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		payments = append(payments, p)
	}
	writeJSON(w, http.StatusOK, payments)
}

// GetPayment retrieves a single payment by ID
// @Summary      Get payment
// @Tags         payments
// @Produce      json
// @Param        id   path      int  true  "Payment ID"
// @Success      200  {object}  Response{data=models.Payment}
// @Failure      404  {object}  Response{error=string}
// @Router       /payments/{id} [get]
// @Security     BasicAuth
func GetPayment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	p, err := getPaymentByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "payment not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePayment records a payment
// @Summary      Record payment
// @Description  Record a payment against a shipment, optionally applied to one of its invoices. The linked invoice's balance and status are recomputed in the same transaction.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        payment  body      models.PaymentInput  true  "Payment contents"
// @Success      201      {object}  Response{data=models.Payment}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /payments [post]
// @Security     BasicAuth
func CreatePayment(w http.ResponseWriter, r *http.Request) {
	var input models.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var id int
	var warning string
	err := withTx(DB, func(tx *sql.Tx) error {
		currency, warn, err := checkPaymentTarget(tx, &input, 0)
		if err != nil {
			return err
		}
		warning = warn

		err = tx.QueryRow(`INSERT INTO payments (shipment_id, invoice_id, amount, currency, method, transaction_num, date, notes, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			input.ShipmentID, input.InvoiceID, int64(input.Amount), currency, input.Method,
			input.TransactionNum, input.Date, input.Notes, input.Status).Scan(&id)
		if err != nil {
			return err
		}
		if input.InvoiceID != nil {
			return recomputeInvoice(tx, *input.InvoiceID, time.Now())
		}
		return nil
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	p, err := getPaymentByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch created payment: "+err.Error())
		return
	}
	writeWarnJSON(w, http.StatusCreated, p, warning)
}

// UpdatePayment updates an existing payment
// @Summary      Update payment
// @Description  Update a payment. Both the previously linked and the newly linked invoice are recomputed.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Payment ID"
// @Param        payment  body      models.PaymentInput  true  "Updated payment contents"
// @Success      200      {object}  Response{data=models.Payment}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /payments/{id} [put]
// @Security     BasicAuth
func UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var warning string
	err := withTx(DB, func(tx *sql.Tx) error {
		var oldInvoiceID *int
		err := tx.QueryRow(`SELECT invoice_id FROM payments WHERE id = ?`, id).Scan(&oldInvoiceID)
		if err == sql.ErrNoRows {
			return ledger.NotFoundf("payment %d not found", id)
		}
		if err != nil {
			return err
		}

		currency, warn, err := checkPaymentTarget(tx, &input, id)
		if err != nil {
			return err
		}
		warning = warn

		_, err = tx.Exec(`UPDATE payments SET shipment_id = ?, invoice_id = ?, amount = ?, currency = ?,
			method = ?, transaction_num = ?, date = ?, notes = ?, status = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`,
			input.ShipmentID, input.InvoiceID, int64(input.Amount), currency, input.Method,
			input.TransactionNum, input.Date, input.Notes, input.Status, id)
		if err != nil {
			return err
		}

		// The payment may have moved between invoices; both sides need
		// their balance re-derived.
		now := time.Now()
		if oldInvoiceID != nil {
			if err := recomputeInvoice(tx, *oldInvoiceID, now); err != nil {
				return err
			}
		}
		if input.InvoiceID != nil && (oldInvoiceID == nil || *input.InvoiceID != *oldInvoiceID) {
			return recomputeInvoice(tx, *input.InvoiceID, now)
		}
		return nil
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	p, err := getPaymentByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch updated payment: "+err.Error())
		return
	}
	writeWarnJSON(w, http.StatusOK, p, warning)
}

// DeletePayment deletes a payment
// @Summary      Delete payment
// @Description  Remove a payment. The linked invoice's balance and status are recomputed, so a settled invoice reopens.
// @Tags         payments
// @Produce      json
// @Param        id   path      int  true  "Payment ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /payments/{id} [delete]
// @Security     BasicAuth
func DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	err := withTx(DB, func(tx *sql.Tx) error {
		var invoiceID *int
		err := tx.QueryRow(`SELECT invoice_id FROM payments WHERE id = ?`, id).Scan(&invoiceID)
		if err == sql.ErrNoRows {
			return ledger.NotFoundf("payment %d not found", id)
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM payments WHERE id = ?`, id); err != nil {
			return err
		}
		if invoiceID != nil {
			return recomputeInvoice(tx, *invoiceID, time.Now())
		}
		return nil
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
