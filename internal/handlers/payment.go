// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/digital-original/internal/services"
	"github.com/javajoker/digital-original/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /vault/deposits
func (h *PaymentHandler) Deposit(c *gin.Context) {
	var req services.DepositRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.Deposit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Applied {
		utils.CreatedResponse(c, result)
		return
	}
	utils.SuccessResponse(c, result)
}

// GET /vault/accounts/:address
func (h *PaymentHandler) GetBalance(c *gin.Context) {
	account, ok := addressParam(c, "address")
	if !ok {
		return
	}

	utils.SuccessResponse(c, h.paymentService.Balance(account))
}

// POST /collections/:ref/tokens/:id/checkout
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	ref, ok := addressParam(c, "ref")
	if !ok {
		return
	}
	id, ok := tokenIDParam(c)
	if !ok {
		return
	}

	checkout, err := h.paymentService.CreateCheckout(c.Request.Context(), caller, ref, id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, checkout)
}

// POST /checkout/confirm
func (h *PaymentHandler) ConfirmCheckout(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.ConfirmCheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	settlement, err := h.paymentService.ConfirmCheckout(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, settlement)
}
