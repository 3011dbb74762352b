// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/digital-original/internal/i18n"
	"github.com/javajoker/digital-original/internal/ledger"
	"github.com/javajoker/digital-original/internal/services"
	"github.com/javajoker/digital-original/internal/utils"
)

type errorMapping struct {
	err    error
	status int
	code   string
	key    string
}

// Checked in order; the first match wins.
var errorMappings = []errorMapping{
	{ledger.ErrUnauthorized, http.StatusForbidden, "FORBIDDEN", i18n.KeyAuthForbidden},
	{ledger.ErrNotOwner, http.StatusForbidden, "NOT_OWNER", i18n.KeyAssetNotOwner},
	{ledger.ErrUnknownCollection, http.StatusNotFound, "COLLECTION_NOT_FOUND", i18n.KeyCollectionNotFound},
	{ledger.ErrUnknownAsset, http.StatusNotFound, "ASSET_NOT_FOUND", i18n.KeyAssetNotFound},
	{services.ErrArtistNotFound, http.StatusNotFound, "ARTIST_NOT_FOUND", i18n.KeyArtistNotFound},
	{services.ErrBatchNotFound, http.StatusNotFound, "BATCH_NOT_FOUND", i18n.KeyBatchNotFound},
	{ledger.ErrAlreadyRegistered, http.StatusConflict, "ALREADY_REGISTERED", i18n.KeyArtistAlreadyRegistered},
	{ledger.ErrBatchAlreadyProcessed, http.StatusConflict, "BATCH_ALREADY_PROCESSED", i18n.KeyBatchAlreadyProcessed},
	{ledger.ErrNotListed, http.StatusConflict, "NOT_LISTED", i18n.KeyListingNotActive},
	{ledger.ErrInvalidConfig, http.StatusBadRequest, "INVALID_CONFIG", i18n.KeyCollectionInvalidConfig},
	{ledger.ErrInvalidRoyalty, http.StatusBadRequest, "INVALID_ROYALTY", i18n.KeyAssetInvalidRoyalty},
	{ledger.ErrInvalidPrice, http.StatusBadRequest, "INVALID_PRICE", i18n.KeyListingInvalidPrice},
	{ledger.ErrLengthMismatch, http.StatusBadRequest, "LENGTH_MISMATCH", i18n.KeyBatchLengthMismatch},
	{ledger.ErrMissingBatchID, http.StatusBadRequest, "MISSING_BATCH_ID", i18n.KeyBatchMissingID},
	{ledger.ErrInvalidRecipient, http.StatusBadRequest, "INVALID_RECIPIENT", i18n.KeyAssetInvalidRecipient},
	{ledger.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT", i18n.KeyPaymentInvalidAmount},
	{utils.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT", i18n.KeyPaymentInvalidAmount},
	{ledger.ErrWrongPayment, http.StatusPaymentRequired, "WRONG_PAYMENT", i18n.KeyPurchaseWrongPayment},
	{ledger.ErrInsufficientFunds, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS", i18n.KeyPaymentInsufficientFunds},
	{ledger.ErrPayoutRejected, http.StatusConflict, "PAYOUT_REJECTED", i18n.KeyPaymentPayoutRejected},
	{services.ErrIntentPending, http.StatusPaymentRequired, "INTENT_PENDING", i18n.KeyPaymentIntentPending},
	{services.ErrIntentMismatch, http.StatusConflict, "INTENT_MISMATCH", i18n.KeyPaymentIntentMismatch},
	{services.ErrPriceNotPayableByCard, http.StatusBadRequest, "PRICE_NOT_PAYABLE_BY_CARD", i18n.KeyPaymentIntentMismatch},
	{services.ErrCardPaymentsDisabled, http.StatusServiceUnavailable, "PAYMENTS_UNAVAILABLE", i18n.KeyPaymentUnavailable},
	{services.ErrHistoryUnavailable, http.StatusServiceUnavailable, "HISTORY_UNAVAILABLE", i18n.KeyHistoryUnavailable},
}

// respondError writes the envelope for err. args fill placeholders in the
// localized message.
func respondError(c *gin.Context, err error, args ...interface{}) {
	lang := utils.GetLangFromContext(c)
	if ledger.IsIdempotencyViolation(err) {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Info("Retried request left the ledger unchanged")
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			utils.ErrorResponse(c, m.status, m.code, i18n.T(lang, m.key, args...), err.Error())
			return
		}
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("Unhandled request error")
	utils.InternalErrorResponse(c, "")
}

// bindJSON decodes and validates the request body, writing the error response itself.
func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

func requireCaller(c *gin.Context) (common.Address, bool) {
	caller, ok := utils.GetCallerFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
	}
	return caller, ok
}

func addressParam(c *gin.Context, name string) (common.Address, bool) {
	addr, err := utils.ParseIdentity(c.Param(name))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationAddress, name), nil)
		return common.Address{}, false
	}
	return addr, true
}

func tokenIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "token id"), nil)
		return 0, false
	}
	return id, true
}
