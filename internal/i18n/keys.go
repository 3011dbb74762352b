// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"
	KeyAuthForbidden    = "auth.forbidden"
	KeyRateLimited      = "auth.rate_limited"

	// Registry
	KeyCollectionDeployed      = "collection.deployed"
	KeyCollectionNotFound      = "collection.not_found"
	KeyArtistNotFound          = "artist.not_found"
	KeyArtistAlreadyRegistered = "artist.already_registered"
	KeyCollectionInvalidConfig = "collection.invalid_config"

	// Assets
	KeyAssetMinted           = "asset.minted"
	KeyAssetNotFound         = "asset.not_found"
	KeyAssetInvalidRoyalty   = "asset.invalid_royalty"
	KeyAssetInvalidRecipient = "asset.invalid_recipient"
	KeyAssetNotOwner         = "asset.not_owner"
	KeyAssetTransferred      = "asset.transferred"

	// Batches
	KeyBatchProcessed        = "batch.processed"
	KeyBatchAlreadyProcessed = "batch.already_processed"
	KeyBatchLengthMismatch   = "batch.length_mismatch"
	KeyBatchNotFound         = "batch.not_found"
	KeyBatchMissingID        = "batch.missing_id"

	// Listings and sales
	KeyListingCreated       = "listing.created"
	KeyListingCancelled     = "listing.cancelled"
	KeyListingNotActive     = "listing.not_active"
	KeyListingInvalidPrice  = "listing.invalid_price"
	KeyPurchaseSettled      = "purchase.settled"
	KeyPurchaseWrongPayment = "purchase.wrong_payment"

	// Payments
	KeyPaymentInsufficientFunds = "payment.insufficient_funds"
	KeyPaymentPayoutRejected    = "payment.payout_rejected"
	KeyPaymentInvalidAmount     = "payment.invalid_amount"
	KeyPaymentIntentPending     = "payment.intent_pending"
	KeyPaymentIntentMismatch    = "payment.intent_mismatch"
	KeyPaymentUnavailable       = "payment.unavailable"
	KeyDepositApplied           = "deposit.applied"
	KeyDepositDuplicate         = "deposit.duplicate"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationAddress  = "validation.invalid_address"
	KeyValidationAmount   = "validation.invalid_amount"

	// History
	KeyHistoryUnavailable = "history.unavailable"
)
