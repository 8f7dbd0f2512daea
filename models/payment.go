package models

import "time"

// Payment statuses. Only completed payments count toward an invoice's
// paid amount.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment methods. Every method except cash carries a transaction reference.
const (
	MethodUPI     = "upi"
	MethodCash    = "cash"
	MethodAccount = "account"
	MethodCheque  = "cheque"
	MethodOther   = "other"
)

// Payment is money received against a shipment. When invoice_id is set the
// payment is applied to that invoice; otherwise it is unapplied — recorded
// funds awaiting an invoice match. An applied payment's invoice must belong
// to the same shipment.
type Payment struct {
	ID             int       `json:"id"`
	ShipmentID     int       `json:"shipment_id"`
	InvoiceID      *int      `json:"invoice_id"`
	Amount         Money     `json:"amount"`
	Currency       string    `json:"currency"`
	Method         string    `json:"method"`
	TransactionNum *string   `json:"transaction_num"`
	Date           string    `json:"date"`
	Notes          *string   `json:"notes"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	// Computed fields
	InvoiceNumber     *string `json:"invoice_number,omitempty"`
	ShipmentReference *string `json:"shipment_reference,omitempty"`
}

// Applied reports whether the payment is matched to an invoice.
func (p *Payment) Applied() bool {
	return p.InvoiceID != nil
}

// PaymentInput is used for recording/updating payments.
type PaymentInput struct {
	ShipmentID     int     `json:"shipment_id"`
	InvoiceID      *int    `json:"invoice_id"`
	Amount         Money   `json:"amount"`
	Method         string  `json:"method"`
	TransactionNum *string `json:"transaction_num"`
	Date           string  `json:"date"`
	Notes          *string `json:"notes"`
	Status         string  `json:"status"`
}

func (p *PaymentInput) Validate() string {
	if p.ShipmentID <= 0 {
		return "shipment_id is required"
	}
	if p.Amount <= 0 {
		return "amount must be positive"
	}
	switch p.Method {
	case MethodUPI, MethodCash, MethodAccount, MethodCheque, MethodOther:
	default:
		return "method must be one of: upi, cash, account, cheque, other"
	}
	if p.Method != MethodCash && (p.TransactionNum == nil || *p.TransactionNum == "") {
		return "transaction_num is required for method " + p.Method
	}
	if p.Date == "" {
		return "date is required"
	}
	if !ValidDate(p.Date) {
		return "date must be YYYY-MM-DD"
	}
	switch p.Status {
	case "":
		p.Status = PaymentCompleted
	case PaymentPending, PaymentCompleted, PaymentFailed:
	default:
		return "status must be one of: pending, completed, failed"
	}
	if p.InvoiceID != nil && *p.InvoiceID <= 0 {
		return "invoice_id must be positive when set"
	}
	return ""
}
