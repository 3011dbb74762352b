// internal/handlers/collection.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/digital-original/internal/i18n"
	"github.com/javajoker/digital-original/internal/services"
	"github.com/javajoker/digital-original/internal/utils"
)

type CollectionHandler struct {
	collectionService *services.CollectionService
}

func NewCollectionHandler(collectionService *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
	}
}

// POST /collections/:ref/tokens
func (h *CollectionHandler) Mint(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	ref, ok := addressParam(c, "ref")
	if !ok {
		return
	}

	var req services.MintRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.collectionService.Mint(c.Request.Context(), caller, ref, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, result)
}

// POST /collections/:ref/batches
func (h *CollectionHandler) BatchMint(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	ref, ok := addressParam(c, "ref")
	if !ok {
		return
	}

	var req services.BatchMintRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.collectionService.BatchMint(c.Request.Context(), caller, ref, &req)
	if err != nil {
		respondError(c, err, req.BatchID)
		return
	}

	utils.CreatedResponse(c, result)
}

// GET /collections/:ref/batches/:batchId
func (h *CollectionHandler) GetBatch(c *gin.Context) {
	ref, ok := addressParam(c, "ref")
	if !ok {
		return
	}

	batch, err := h.collectionService.GetBatch(ref, c.Param("batchId"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, batch)
}

// GET /collections/:ref/tokens/:id
func (h *CollectionHandler) GetToken(c *gin.Context) {
	ref, ok := addressParam(c, "ref")
	if !ok {
		return
	}
	id, ok := tokenIDParam(c)
	if !ok {
		return
	}

	token, err := h.collectionService.GetToken(ref, id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, token)
}

// GET /collections/:ref/tokens/:id/royalty?sale_price=
func (h *CollectionHandler) GetRoyalty(c *gin.Context) {
	ref, ok := addressParam(c, "ref")
	if !ok {
		return
	}
	id, ok := tokenIDParam(c)
	if !ok {
		return
	}
	salePrice := c.Query("sale_price")
	if salePrice == "" {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "sale_price"), nil)
		return
	}

	royalty, err := h.collectionService.Royalty(ref, id, salePrice)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, royalty)
}

// POST /collections/:ref/tokens/:id/listing
func (h *CollectionHandler) ListToken(c *gin.Context) {
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

	var req services.ListTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.collectionService.List(c.Request.Context(), caller, ref, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, token)
}

// DELETE /collections/:ref/tokens/:id/listing
func (h *CollectionHandler) CancelListing(c *gin.Context) {
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

	token, err := h.collectionService.CancelListing(c.Request.Context(), caller, ref, id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, token)
}

// POST /collections/:ref/tokens/:id/purchase
func (h *CollectionHandler) Purchase(c *gin.Context) {
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

	var req services.PurchaseRequest
	if !bindJSON(c, &req) {
		return
	}

	settlement, err := h.collectionService.Purchase(c.Request.Context(), caller, ref, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, settlement)
}

// POST /collections/:ref/tokens/:id/transfer
func (h *CollectionHandler) Transfer(c *gin.Context) {
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

	var req services.TransferRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.collectionService.Transfer(c.Request.Context(), caller, ref, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, token)
}

// GET /collections/:ref/owners/:address
func (h *CollectionHandler) GetHoldings(c *gin.Context) {
	ref, ok := addressParam(c, "ref")
	if !ok {
		return
	}
	owner, ok := addressParam(c, "address")
	if !ok {
		return
	}

	holdings, err := h.collectionService.Holdings(ref, owner)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, holdings)
}

// GET /collections/:ref/settlements
func (h *CollectionHandler) GetSettlements(c *gin.Context) {
	ref, ok := addressParam(c, "ref")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	result, err := h.collectionService.Settlements(c.Request.Context(), ref, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, result)
}
