// internal/handlers/spg.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/manna-art/manna-backend/internal/services"
	"github.com/manna-art/manna-backend/internal/utils"
)

type SPGHandler struct {
	registry services.IPRegistry
}

func NewSPGHandler(registry services.IPRegistry) *SPGHandler {
	return &SPGHandler{registry: registry}
}

type createCollectionRequest struct {
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	IsPublicMinting  *bool  `json:"isPublicMinting"`
	MintFeeRecipient string `json:"mintFeeRecipient" validate:"omitempty,eth_address"`
}

// POST /spg/create
func (h *SPGHandler) CreateCollection(c *gin.Context) {
	var req createCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Cuerpo de la solicitud inválido")
		return
	}
	if req.Name == "" || req.Symbol == "" {
		utils.BadRequestResponse(c, "Todos los campos son requeridos")
		return
	}
	if errs := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(errs) > 0 {
		utils.BadRequestResponse(c, errs[0].Message)
		return
	}

	// Public minting by default: any wallet can mint into the
	// collection through the platform.
	isPublicMinting := true
	if req.IsPublicMinting != nil {
		isPublicMinting = *req.IsPublicMinting
	}

	result, err := h.registry.CreateCollection(c.Request.Context(), services.CollectionParams{
		Name:             req.Name,
		Symbol:           req.Symbol,
		IsPublicMinting:  isPublicMinting,
		MintFeeRecipient: req.MintFeeRecipient,
	})
	if err != nil {
		utils.InternalErrorResponse(c, "Error al crear la colección SPG")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"spgNftContract": result.ContractAddress,
		"txHash":         result.TxHash,
		"storyscanUrl":   h.registry.ExplorerURL(result.ContractAddress),
		"message":        "Colección SPG creada exitosamente",
	})
}
