package service

import "errors"

// Domain error taxonomy. Handlers map these to HTTP codes via errors.Is;
// services wrap them with fmt.Errorf("%w: …") to identify the offending
// line or field.
var (
	// ErrInsufficientStock: a conditional stock debit found fewer units than requested.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidDiscount: a line discount outside [0,100].
	ErrInvalidDiscount = errors.New("invalid discount")

	// ErrClosedRegister: a cash sale referenced a session that is not open.
	ErrClosedRegister = errors.New("no open cash session")

	// ErrAlreadyOpenSession: the operator already has an open session.
	ErrAlreadyOpenSession = errors.New("operator already has an open session")

	// ErrOverpayment: a payment exceeds the outstanding balance.
	ErrOverpayment = errors.New("payment exceeds outstanding balance")

	// ErrNotFound: the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)
