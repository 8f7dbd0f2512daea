package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses. Stored lowercase; paid always wins over overdue.
const (
	InvoiceDraft   = "draft"
	InvoiceSent    = "sent"
	InvoicePaid    = "paid"
	InvoiceOverdue = "overdue"
)

// Invoice is a receivable raised against a single shipment. Customer fields
// are snapshotted at creation so later shipment edits never alter an issued
// invoice. paid_amount, raw_balance and status are derived, never hand-set.
type Invoice struct {
	ID            int     `json:"id"`
	ShipmentID    int     `json:"shipment_id"`
	InvoiceNumber string  `json:"invoice_number"`
	CustomerName  string  `json:"customer_name"`
	CustomerGstin *string `json:"customer_gstin"`
	PlaceOfSupply *string `json:"place_of_supply"`
	IssueDate     string  `json:"issue_date"`
	DueDate       *string `json:"due_date"`
	Currency      string  `json:"currency"`

	Subtotal  Money           `json:"subtotal"`
	TotalTax  Money           `json:"total_tax"`
	TdsRate   decimal.Decimal `json:"tds_rate"`
	TdsAmount Money           `json:"tds_amount"`
	Amount    Money           `json:"amount"`

	PaidAmount    Money  `json:"paid_amount"`
	RawBalance    Money  `json:"raw_balance"`
	BalanceAmount Money  `json:"balance_amount"` // raw balance clamped at 0 for display
	Status        string `json:"status"`

	LineItems []LineItem `json:"line_items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	// Computed fields
	ShipmentReference *string `json:"shipment_reference,omitempty"`
}

// LineItem is owned by exactly one invoice; it has no identity of its own
// outside it and is replaced wholesale on invoice edit.
type LineItem struct {
	ID           int             `json:"id"`
	InvoiceID    int             `json:"invoice_id"`
	Description  string          `json:"description"`
	HsnCode      *string         `json:"hsn_code"`
	Quantity     decimal.Decimal `json:"quantity"`
	Rate         Money           `json:"rate"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	TaxableValue Money           `json:"taxable_value"`
	Amount       Money           `json:"amount"`
}

// LineItemInput is one line of an invoice create/update request.
type LineItemInput struct {
	Description string          `json:"description"`
	HsnCode     *string         `json:"hsn_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        Money           `json:"rate"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

// InvoiceInput is used for creating/updating invoices. ShipmentID is fixed
// after creation; invoice_number is always server-assigned.
type InvoiceInput struct {
	ShipmentID int             `json:"shipment_id"`
	IssueDate  string          `json:"issue_date"`
	DueDate    *string         `json:"due_date"`
	TdsRate    decimal.Decimal `json:"tds_rate"`
	LineItems  []LineItemInput `json:"line_items"`
}

func (i *InvoiceInput) Validate() string {
	if i.ShipmentID <= 0 {
		return "shipment_id is required"
	}
	if i.IssueDate == "" {
		return "issue_date is required"
	}
	if !ValidDate(i.IssueDate) {
		return "issue_date must be YYYY-MM-DD"
	}
	if i.DueDate != nil && *i.DueDate != "" && !ValidDate(*i.DueDate) {
		return "due_date must be YYYY-MM-DD"
	}
	if i.DueDate != nil && *i.DueDate != "" && *i.DueDate < i.IssueDate {
		return "due_date must not be before issue_date"
	}
	if len(i.LineItems) == 0 {
		return "at least one line item is required"
	}
	for _, li := range i.LineItems {
		if li.Description == "" {
			return "line item description is required"
		}
	}
	if i.TdsRate.IsNegative() {
		return "tds_rate must be non-negative"
	}
	return ""
}

// ValidDate reports whether s is a calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
