package handlers

import (
	"net/http"
	"time"

	"github.com/freightbooks/freightbooks/ledger"
	"github.com/freightbooks/freightbooks/models"
)

// GetAgingReport returns the receivables aging report
// @Summary      Aging report
// @Description  Bucket outstanding invoice balances by days past due (0-30, 31-60, 61-90, 90+) for one currency.
// @Tags         reports
// @Produce      json
// @Param        currency  query     string  false  "Currency scope (default INR)"
// @Param        as_of     query     string  false  "Report date YYYY-MM-DD (default today)"
// @Success      200       {object}  Response{data=models.AgingReport}
// @Failure      400       {object}  Response{error=string}
// @Router       /reports/aging [get]
// @Security     BasicAuth
func GetAgingReport(w http.ResponseWriter, r *http.Request) {
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = "INR"
	}

	asOf := time.Now()
	if s := r.URL.Query().Get("as_of"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
			return
		}
		asOf = t
	}

	// Outstanding means a positive raw balance; settled (and overpaid)
	// invoices drop out. Recomputed on every call, never cached.
	rows, err := DB.Query(
		`SELECT due_date, raw_balance FROM invoices WHERE currency = ? AND raw_balance > 0`, currency)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var outstanding []ledger.Outstanding
	for rows.Next() {
		var o ledger.Outstanding
		var bal int64
		if err := rows.Scan(&o.DueDate, &bal); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		o.Balance = models.Money(bal)
		outstanding = append(outstanding, o)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ledger.BuildAgingReport(outstanding, currency, asOf))
}
