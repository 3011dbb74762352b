// internal/services/errors.go
package services

import "errors"

var (
	ErrArtistNotFound        = errors.New("artist has no collection")
	ErrBatchNotFound         = errors.New("batch not found")
	ErrHistoryUnavailable    = errors.New("settlement history requires a database")
	ErrCardPaymentsDisabled  = errors.New("card payments are not configured")
	ErrPriceNotPayableByCard = errors.New("listing price is not a whole number of card minor units")
	ErrIntentPending         = errors.New("payment intent has not succeeded")
	ErrIntentMismatch        = errors.New("payment intent does not match the checkout")
)
