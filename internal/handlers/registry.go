// internal/handlers/registry.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/digital-original/internal/services"
	"github.com/javajoker/digital-original/internal/utils"
)

type RegistryHandler struct {
	registryService *services.RegistryService
}

func NewRegistryHandler(registryService *services.RegistryService) *RegistryHandler {
	return &RegistryHandler{
		registryService: registryService,
	}
}

// GET /registry
func (h *RegistryHandler) GetInfo(c *gin.Context) {
	utils.SuccessResponse(c, h.registryService.Info())
}

// POST /collections
func (h *RegistryHandler) DeployCollection(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.DeployCollectionRequest
	if !bindJSON(c, &req) {
		return
	}

	collection, err := h.registryService.DeployCollection(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, collection)
}

// GET /collections
func (h *RegistryHandler) ListCollections(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.registryService.ListCollections(params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, result)
}

// GET /collections/:ref
func (h *RegistryHandler) GetCollection(c *gin.Context) {
	ref, ok := addressParam(c, "ref")
	if !ok {
		return
	}

	collection, err := h.registryService.GetCollection(ref)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, collection)
}

// GET /artists/:address
func (h *RegistryHandler) GetArtist(c *gin.Context) {
	artist, ok := addressParam(c, "address")
	if !ok {
		return
	}

	record, err := h.registryService.GetArtistRecord(artist)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, record)
}
