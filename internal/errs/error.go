package errs

import (
	"errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrBookUnavailable    = errors.New("Book is out of stock")
	ErrPermissionDenied   = errors.New("It's not your borrowing")
	ErrAlreadyReturned    = errors.New("Borrowing already returned")
	ErrInvalidPaymentType = errors.New("Payment type has to be either PAYMENT or FINE")
	ErrDuplicatePayment   = errors.New("a payment of this type already exists for this borrowing")
)

type ValidationErrorResponse struct {
	Message string `json:"message"`
	Errors  struct {
		AdditionalProperties string `json:"additionalProperties"`
	} `json:"errors"`
}
