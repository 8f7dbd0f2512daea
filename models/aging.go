package models

// AgingReport buckets outstanding invoice balances by days past due.
// Balances land in the lower bucket on exact 30/60/90 boundaries, and the
// four buckets always sum to Total.
type AgingReport struct {
	Currency     string  `json:"currency"`
	AsOf         string  `json:"as_of"`
	B0to30       Money   `json:"b0_30"`
	B31to60      Money   `json:"b31_60"`
	B61to90      Money   `json:"b61_90"`
	B90plus      Money   `json:"b90p"`
	Total        Money   `json:"total"`
	Pct0to30     float64 `json:"pct0_30"`
	Pct31to60    float64 `json:"pct31_60"`
	Pct61to90    float64 `json:"pct61_90"`
	Pct90plus    float64 `json:"pct90p"`
	InvoiceCount int     `json:"invoice_count"`
}
