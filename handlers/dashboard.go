package handlers

import (
	"net/http"

	"github.com/freightbooks/freightbooks/models"
)

type dashboardData struct {
	TotalShipments int `json:"total_shipments"`
	TotalInvoices  int `json:"total_invoices"`
	TotalPayments  int `json:"total_payments"`

	Receivable     models.Money `json:"receivable"`      // outstanding across open invoices
	OverdueAmount  models.Money `json:"overdue_amount"`  // outstanding on overdue invoices
	UnappliedTotal models.Money `json:"unapplied_total"` // completed payments with no invoice

	DraftInvoices   int `json:"draft_invoices"`
	OverdueInvoices int `json:"overdue_invoices"`

	RecentPayments []models.Payment `json:"recent_payments"`
}

// GetDashboard retrieves receivables summary statistics
// @Summary      Get dashboard
// @Description  Totals for shipments, invoices and payments, outstanding and overdue receivables, unapplied funds, and recent payments.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  Response{data=dashboardData}
// @Router       /dashboard [get]
// @Security     BasicAuth
func GetDashboard(w http.ResponseWriter, r *http.Request) {
	var d dashboardData

	DB.QueryRow("SELECT COUNT(*) FROM shipments").Scan(&d.TotalShipments)
	DB.QueryRow("SELECT COUNT(*) FROM invoices").Scan(&d.TotalInvoices)
	DB.QueryRow("SELECT COUNT(*) FROM payments").Scan(&d.TotalPayments)

	DB.QueryRow(`SELECT COALESCE(SUM(raw_balance), 0) FROM invoices WHERE raw_balance > 0`).Scan(&d.Receivable)
	DB.QueryRow(`SELECT COALESCE(SUM(raw_balance), 0) FROM invoices WHERE status = 'overdue'`).Scan(&d.OverdueAmount)
	DB.QueryRow(`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id IS NULL AND status = 'completed'`).Scan(&d.UnappliedTotal)

	DB.QueryRow("SELECT COUNT(*) FROM invoices WHERE status = 'draft'").Scan(&d.DraftInvoices)
	DB.QueryRow("SELECT COUNT(*) FROM invoices WHERE status = 'overdue'").Scan(&d.OverdueInvoices)

	rows, err := DB.Query(paymentSelectQuery + " ORDER BY p.created_at DESC LIMIT 5")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			p, err := scanPayment(rows)
			if err != nil {
				break
			}
			d.RecentPayments = append(d.RecentPayments, p)
		}
	}
	if d.RecentPayments == nil {
		d.RecentPayments = []models.Payment{}
	}

	writeJSON(w, http.StatusOK, d)
}
