package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/freightbooks/freightbooks/ledger"
	"github.com/freightbooks/freightbooks/models"
)

const invoiceSelectQuery = `SELECT i.id, i.shipment_id, i.invoice_number, i.customer_name, i.customer_gstin,
	i.place_of_supply, i.issue_date, i.due_date, i.currency,
	i.subtotal, i.total_tax, i.tds_rate, i.tds_amount, i.amount,
	i.paid_amount, i.raw_balance, i.status, i.created_at, i.updated_at,
	s.reference
	FROM invoices i
	LEFT JOIN shipments s ON i.shipment_id = s.id`

func scanInvoice(scanner interface{ Scan(...any) error }) (models.Invoice, error) {
	var inv models.Invoice
	err := scanner.Scan(&inv.ID, &inv.ShipmentID, &inv.InvoiceNumber, &inv.CustomerName, &inv.CustomerGstin,
		&inv.PlaceOfSupply, &inv.IssueDate, &inv.DueDate, &inv.Currency,
		&inv.Subtotal, &inv.TotalTax, &inv.TdsRate, &inv.TdsAmount, &inv.Amount,
		&inv.PaidAmount, &inv.RawBalance, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
		&inv.ShipmentReference)
	if err == nil {
		inv.BalanceAmount = inv.RawBalance.ClampZero()
	}
	return inv, err
}

func getInvoiceByID(id int) (models.Invoice, error) {
	inv, err := scanInvoice(DB.QueryRow(invoiceSelectQuery+" WHERE i.id = ?", id))
	if err != nil {
		return inv, err
	}
	inv.LineItems, err = loadLineItems(id)
	return inv, err
}

func loadLineItems(invoiceID int) ([]models.LineItem, error) {
	rows, err := DB.Query(`SELECT id, invoice_id, description, hsn_code, quantity, rate, tax_rate, taxable_value, amount
		FROM invoice_line_items WHERE invoice_id = ? ORDER BY position`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.LineItem{}
	for rows.Next() {
		var li models.LineItem
		if err := rows.Scan(&li.ID, &li.InvoiceID, &li.Description, &li.HsnCode,
			&li.Quantity, &li.Rate, &li.TaxRate, &li.TaxableValue, &li.Amount); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

func insertLineItems(tx *sql.Tx, invoiceID int, items []models.LineItem) error {
	for pos, li := range items {
		_, err := tx.Exec(`INSERT INTO invoice_line_items (invoice_id, position, description, hsn_code, quantity, rate, tax_rate, taxable_value, amount)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			invoiceID, pos, li.Description, li.HsnCode, li.Quantity.String(),
			int64(li.Rate), li.TaxRate.String(), int64(li.TaxableValue), int64(li.Amount))
		if err != nil {
			return err
		}
	}
	return nil
}

// ListInvoices lists all invoices
// @Summary      List invoices
// @Description  Get a list of invoices with derived paid/balance/status.
// @Tags         invoices
// @Produce      json
// @Param        status       query     string  false  "Filter by status"
// @Param        shipment_id  query     int     false  "Filter by shipment"
// @Param        from         query     string  false  "Issue date from (YYYY-MM-DD)"
// @Param        to           query     string  false  "Issue date to (YYYY-MM-DD)"
// @Param        search       query     string  false  "Search by invoice number or customer name"
// @Success      200          {object}  Response{data=[]models.Invoice}
// @Router       /invoices [get]
// @Security     BasicAuth
func ListInvoices(w http.ResponseWriter, r *http.Request) {
	query := invoiceSelectQuery
	var conditions []string
	var args []any

	if s := r.URL.Query().Get("status"); s != "" {
		conditions = append(conditions, "i.status = ?")
		args = append(args, s)
	}
	if sid := r.URL.Query().Get("shipment_id"); sid != "" {
		conditions = append(conditions, "i.shipment_id = ?")
		args = append(args, sid)
	}
	if from := r.URL.Query().Get("from"); from != "" {
		conditions = append(conditions, "i.issue_date >= ?")
		args = append(args, from)
	}
	if to := r.URL.Query().Get("to"); to != "" {
		conditions = append(conditions, "i.issue_date <= ?")
		args = append(args, to)
	}
	if search := r.URL.Query().Get("search"); search != "" {
		conditions = append(conditions, "(i.invoice_number LIKE ? OR i.customer_name LIKE ?)")
		s := "%" + search + "%"
		args = append(args, s, s)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY i.created_at DESC"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		invoices = append(invoices, inv)
	}
	writeJSON(w, http.StatusOK, invoices)
}

// GetInvoice retrieves a single invoice by ID
// @Summary      Get invoice
// @Description  Get an invoice with line items and derived payment state.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=models.Invoice}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id} [get]
// @Security     BasicAuth
func GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	inv, err := getInvoiceByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "invoice not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// CreateInvoice creates a new invoice
// @Summary      Create invoice
// @Description  Create a draft invoice against a shipment. Customer fields are snapshotted from the shipment and the invoice number is assigned from the global sequence.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        invoice  body      models.InvoiceInput  true  "Invoice contents"
// @Success      201      {object}  Response{data=models.Invoice}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /invoices [post]
// @Security     BasicAuth
func CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var input models.InvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	lines, totals, err := ledger.ComputeTotals(input.LineItems, input.TdsRate)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	var id int
	err = withTx(DB, func(tx *sql.Tx) error {
		var ship models.Shipment
		err := tx.QueryRow(`SELECT id, reference, customer_name, customer_gstin, place_of_supply, currency
			FROM shipments WHERE id = ?`, input.ShipmentID).
			Scan(&ship.ID, &ship.Reference, &ship.CustomerName, &ship.CustomerGstin, &ship.PlaceOfSupply, &ship.Currency)
		if err == sql.ErrNoRows {
			return ledger.NotFoundf("shipment %d not found", input.ShipmentID)
		}
		if err != nil {
			return err
		}

		number, err := ledger.NextInvoiceNumber(tx)
		if err != nil {
			return err
		}

		err = tx.QueryRow(`INSERT INTO invoices (shipment_id, invoice_number, customer_name, customer_gstin, place_of_supply,
			issue_date, due_date, currency, subtotal, total_tax, tds_rate, tds_amount, amount, paid_amount, raw_balance, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, 'draft') RETURNING id`,
			input.ShipmentID, number, ship.CustomerName, ship.CustomerGstin, ship.PlaceOfSupply,
			input.IssueDate, input.DueDate, ship.Currency,
			int64(totals.Subtotal), int64(totals.TotalTax), input.TdsRate.String(),
			int64(totals.TdsAmount), int64(totals.Amount), int64(totals.Amount)).Scan(&id)
		if err != nil {
			return err
		}
		return insertLineItems(tx, id, lines)
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	inv, err := getInvoiceByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch created invoice: "+err.Error())
		return
	}
	writeWarnJSON(w, http.StatusCreated, inv, totals.Warning)
}

// UpdateInvoice updates an existing invoice
// @Summary      Update invoice
// @Description  Update line items, dates or TDS of an invoice. Shipment and invoice number are immutable; totals and balance are recomputed.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Invoice ID"
// @Param        invoice  body      models.InvoiceInput  true  "Updated invoice contents"
// @Success      200      {object}  Response{data=models.Invoice}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /invoices/{id} [put]
// @Security     BasicAuth
func UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.InvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	err := withTx(DB, func(tx *sql.Tx) error {
		var shipmentID int
		err := tx.QueryRow(`SELECT shipment_id FROM invoices WHERE id = ?`, id).Scan(&shipmentID)
		if err == sql.ErrNoRows {
			return ledger.NotFoundf("invoice %d not found", id)
		}
		if err != nil {
			return err
		}

		if input.ShipmentID == 0 {
			input.ShipmentID = shipmentID
		}
		if input.ShipmentID != shipmentID {
			return ledger.Validationf("shipment_id cannot be changed")
		}
		if msg := input.Validate(); msg != "" {
			return ledger.Validationf("%s", msg)
		}

		lines, totals, err := ledger.ComputeTotals(input.LineItems, input.TdsRate)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`UPDATE invoices SET issue_date = ?, due_date = ?, subtotal = ?, total_tax = ?,
			tds_rate = ?, tds_amount = ?, amount = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			input.IssueDate, input.DueDate, int64(totals.Subtotal), int64(totals.TotalTax),
			input.TdsRate.String(), int64(totals.TdsAmount), int64(totals.Amount), id)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM invoice_line_items WHERE invoice_id = ?`, id); err != nil {
			return err
		}
		if err := insertLineItems(tx, id, lines); err != nil {
			return err
		}

		// Amount may have changed, so paid/balance/status must be re-derived.
		return recomputeInvoice(tx, id, time.Now())
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	inv, err := getInvoiceByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch updated invoice: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// SendInvoice marks a draft invoice as sent
// @Summary      Send invoice
// @Description  Move a draft invoice to sent. Idempotent; paid and overdue invoices are left alone.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=models.Invoice}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id}/send [post]
// @Security     BasicAuth
func SendInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	err := withTx(DB, func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE invoices SET status = 'sent', updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND status = 'draft'`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			var exists int
			if err := tx.QueryRow(`SELECT COUNT(*) FROM invoices WHERE id = ?`, id).Scan(&exists); err != nil {
				return err
			}
			if exists == 0 {
				return ledger.NotFoundf("invoice %d not found", id)
			}
			// Already past draft; nothing to do.
			return nil
		}
		// Sending can flip straight to overdue when the due date has passed.
		return recomputeInvoice(tx, id, time.Now())
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	inv, err := getInvoiceByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// DeleteInvoice deletes an invoice
// @Summary      Delete invoice
// @Description  Remove an invoice. Blocked while payments reference it; its number is never reused.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Failure      409  {object}  Response{error=string}
// @Router       /invoices/{id} [delete]
// @Security     BasicAuth
func DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	err := withTx(DB, func(tx *sql.Tx) error {
		var linked int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM payments WHERE invoice_id = ?`, id).Scan(&linked); err != nil {
			return err
		}
		if linked > 0 {
			return ledger.Conflictf("invoice has %d linked payment(s); delete or reassign them first", linked)
		}
		res, err := tx.Exec(`DELETE FROM invoices WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ledger.NotFoundf("invoice %d not found", id)
		}
		return nil
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
