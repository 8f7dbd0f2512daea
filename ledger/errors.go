// Package ledger holds the receivables arithmetic: line-item and invoice
// totals, balance and status derivation, invoice numbering, and the aging
// report. Everything here is pure; persistence stays with the callers.
package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies ledger errors so handlers can map them to HTTP statuses
// without string matching.
type Kind int

const (
	KindValidation  Kind = iota + 1 // malformed or out-of-range input
	KindReferential                 // entities linked across the wrong shipment
	KindNotFound                    // unknown invoice/payment/shipment id
	KindConflict                    // blocked by existing linked records
)

// Error is a kind-tagged ledger error.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Referentialf(format string, args ...any) error {
	return &Error{Kind: KindReferential, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the error's kind, or 0 for non-ledger errors.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}
