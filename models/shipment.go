package models

import "time"

// Shipment is the billing-relevant view of a freight shipment. The rest of
// shipment tracking lives outside this service; invoices snapshot the
// customer fields from here at creation time.
type Shipment struct {
	ID            int       `json:"id"`
	Reference     string    `json:"reference"`
	CustomerName  string    `json:"customer_name"`
	CustomerGstin *string   `json:"customer_gstin"`
	PlaceOfSupply *string   `json:"place_of_supply"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	// Computed fields
	InvoiceCount int   `json:"invoice_count"`
	PaymentCount int   `json:"payment_count"`
	Outstanding  Money `json:"outstanding"`
}

// ShipmentInput is used for creating/updating shipments.
type ShipmentInput struct {
	Reference     string  `json:"reference"`
	CustomerName  string  `json:"customer_name"`
	CustomerGstin *string `json:"customer_gstin"`
	PlaceOfSupply *string `json:"place_of_supply"`
	Currency      string  `json:"currency"`
}

func (s *ShipmentInput) Validate() string {
	if s.Reference == "" {
		return "reference is required"
	}
	if s.CustomerName == "" {
		return "customer_name is required"
	}
	if s.Currency == "" {
		s.Currency = "INR"
	}
	if len(s.Currency) != 3 {
		return "currency must be a 3-letter ISO code"
	}
	return ""
}
