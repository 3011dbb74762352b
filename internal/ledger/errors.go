// internal/ledger/errors.go
package ledger

import "errors"

var (
	ErrUnauthorized          = errors.New("ledger: caller lacks required role")
	ErrAlreadyRegistered     = errors.New("ledger: artist already has a collection")
	ErrBatchAlreadyProcessed = errors.New("ledger: batch already processed")
	ErrInvalidConfig         = errors.New("ledger: invalid collection config")
	ErrInvalidRoyalty        = errors.New("ledger: royalty exceeds 10000 bps")
	ErrInvalidPrice          = errors.New("ledger: price must be greater than zero")
	ErrLengthMismatch        = errors.New("ledger: batch arrays must have equal non-zero length")
	ErrUnknownAsset          = errors.New("ledger: unknown asset")
	ErrNotListed             = errors.New("ledger: asset is not listed")
	ErrNotOwner              = errors.New("ledger: caller is not the owner")
	ErrWrongPayment          = errors.New("ledger: payment does not equal listing price")
	ErrInvalidRecipient      = errors.New("ledger: recipient is the zero identity")
	ErrUnknownCollection     = errors.New("ledger: unknown collection")
	ErrInsufficientFunds     = errors.New("ledger: insufficient funds")
	ErrPayoutRejected        = errors.New("ledger: payout recipient rejected funds")
	ErrInvalidAmount         = errors.New("ledger: amount must be greater than zero")
	ErrMissingBatchID        = errors.New("ledger: batch id is required")
)

// IsIdempotencyViolation reports errors that are safe to treat as a no-op on retry.
func IsIdempotencyViolation(err error) bool {
	return errors.Is(err, ErrAlreadyRegistered) || errors.Is(err, ErrBatchAlreadyProcessed)
}
